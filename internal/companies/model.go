package companies

import "time"

// Document roles a company links.
const (
	RoleApplication = "application"
	RolePitchDeck   = "pitch_deck"
)

// Company represents a startup under evaluation. The two document references
// start empty and are filled by linking; an evaluation needs both.
type Company struct {
	ID               string
	UserID           string
	Name             string
	ApplicationDocID string
	PitchDeckDocID   string
	CreatedAt        time.Time
}
