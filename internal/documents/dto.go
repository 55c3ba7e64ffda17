package documents

import "time"

// DocumentResponse is the outward-facing representation of a document. The
// sensitivity field carries the effective label (override wins), with the raw
// override exposed alongside so clients can tell the two apart.
type DocumentResponse struct {
	DocumentID          string    `json:"documentId"`
	FileName            string    `json:"fileName"`
	MimeType            string    `json:"mimeType"`
	SizeBytes           int64     `json:"sizeBytes"`
	Format              string    `json:"format"`
	Status              string    `json:"status"`
	Sensitivity         string    `json:"sensitivity,omitempty"`
	SensitivityOverride string    `json:"sensitivityOverride,omitempty"`
	Summary             string    `json:"summary,omitempty"`
	SummarySource       string    `json:"summarySource,omitempty"`
	FailureCode         string    `json:"failureCode,omitempty"`
	UploadedAt          time.Time `json:"uploadedAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID:          doc.ID,
		FileName:            doc.FileName,
		MimeType:            doc.MimeType,
		SizeBytes:           doc.SizeBytes,
		Format:              doc.Format,
		Status:              doc.Status,
		Sensitivity:         doc.EffectiveSensitivity(),
		SensitivityOverride: doc.SensitivityOverride,
		Summary:             doc.Summary,
		SummarySource:       doc.SummarySource,
		FailureCode:         doc.FailureCode,
		UploadedAt:          doc.CreatedAt,
		UpdatedAt:           doc.UpdatedAt,
	}
}
