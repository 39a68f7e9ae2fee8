package dto

import (
	"time"

	"github.com/noah-isme/stage-docs-api/internal/models"
)

// DocumentJobRequest captures POST /documents/jobs.
type DocumentJobRequest struct {
	Kind string   `json:"kind" binding:"required,oneof=assignment_order training_certificate"`
	IDs  []string `json:"ids" binding:"required,min=1,dive,required"`
}

// DocumentJobResponse exposes job progress and per-record results.
type DocumentJobResponse struct {
	ID         string                   `json:"id"`
	Kind       string                   `json:"kind"`
	Status     models.DocumentJobStatus `json:"status"`
	Progress   int                      `json:"progress"`
	Items      []models.DocumentJobItem `json:"items,omitempty"`
	ResultURL  *string                  `json:"resultUrl,omitempty"`
	Manifest   *string                  `json:"manifestUrl,omitempty"`
	Error      *string                  `json:"error,omitempty"`
	CreatedAt  time.Time                `json:"createdAt"`
	FinishedAt *time.Time               `json:"finishedAt,omitempty"`
}

// NewDocumentJobResponse projects a job row for clients.
func NewDocumentJobResponse(job *models.DocumentJob) *DocumentJobResponse {
	resp := &DocumentJobResponse{
		ID:         job.ID,
		Kind:       job.Kind,
		Status:     job.Status,
		Progress:   job.Progress,
		Items:      job.Items,
		ResultURL:  job.ResultURL,
		Manifest:   job.ManifestURL,
		CreatedAt:  job.CreatedAt,
		FinishedAt: job.FinishedAt,
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp
}
