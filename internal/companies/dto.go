package companies

import "time"

// CompanyResponse is the outward-facing representation of a company.
type CompanyResponse struct {
	CompanyID        string    `json:"companyId"`
	Name             string    `json:"name"`
	ApplicationDocID string    `json:"applicationDocId,omitempty"`
	PitchDeckDocID   string    `json:"pitchDeckDocId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

func toResponse(company Company) CompanyResponse {
	return CompanyResponse{
		CompanyID:        company.ID,
		Name:             company.Name,
		ApplicationDocID: company.ApplicationDocID,
		PitchDeckDocID:   company.PitchDeckDocID,
		CreatedAt:        company.CreatedAt,
	}
}
