package documents

import "time"

// Document represents an uploaded startup document and its journey through
// the analysis pipeline. Sensitivity, Summary and the key fields start empty
// and are filled in as the corresponding stage completes; empty string maps
// to NULL in the Postgres repo.
type Document struct {
	ID                  string
	UserID              string
	FileName            string
	MimeType            string
	SizeBytes           int64
	Format              string
	StorageKey          string
	TextKey             string
	Sensitivity         string
	SensitivityOverride string
	Summary             string
	SummarySource       string
	Status              string
	FailureCode         string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// EffectiveSensitivity returns the operator override when one is set,
// otherwise the label the classifier assigned. Empty means the document has
// not been classified yet.
func (d Document) EffectiveSensitivity() string {
	if d.SensitivityOverride != "" {
		return d.SensitivityOverride
	}
	return d.Sensitivity
}
