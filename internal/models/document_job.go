package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DocumentJobStatus captures background job lifecycle states.
type DocumentJobStatus string

const (
	DocumentJobQueued     DocumentJobStatus = "QUEUED"
	DocumentJobProcessing DocumentJobStatus = "PROCESSING"
	DocumentJobFinished   DocumentJobStatus = "FINISHED"
	DocumentJobFailed     DocumentJobStatus = "FAILED"
)

// DocumentJob is a batch render persisted in document_jobs.
type DocumentJob struct {
	ID           string            `db:"id" json:"id"`
	Kind         string            `db:"kind" json:"kind"`
	Params       DocumentJobParams `db:"params" json:"params"`
	Status       DocumentJobStatus `db:"status" json:"status"`
	Progress     int               `db:"progress" json:"progress"`
	Items        DocumentJobItems  `db:"items" json:"items"`
	ResultURL    *string           `db:"result_url" json:"result_url,omitempty"`
	ManifestURL  *string           `db:"manifest_url" json:"manifest_url,omitempty"`
	CreatedBy    string            `db:"created_by" json:"created_by"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time        `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage *string           `db:"error_message" json:"error_message,omitempty"`
}

// DocumentJobParams stores the request persisted as JSONB.
type DocumentJobParams struct {
	IDs []string `json:"ids"`
}

// Value marshals params to JSON for persistence.
func (p DocumentJobParams) Value() (driver.Value, error) {
	if p.IDs == nil {
		p.IDs = []string{}
	}
	return marshalJSONB(p, "document job params")
}

// Scan unmarshals JSON payloads into the params struct.
func (p *DocumentJobParams) Scan(value interface{}) error {
	*p = DocumentJobParams{}
	return scanJSONB(value, p, "document job params")
}

// DocumentJobItem is the outcome for one record of a batch.
type DocumentJobItem struct {
	RecordID string `json:"recordId"`
	Filename string `json:"filename,omitempty"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// DocumentJobItems is persisted as a JSONB array.
type DocumentJobItems []DocumentJobItem

// Value marshals items to JSON for persistence.
func (items DocumentJobItems) Value() (driver.Value, error) {
	if items == nil {
		items = DocumentJobItems{}
	}
	return marshalJSONB([]DocumentJobItem(items), "document job items")
}

// Scan unmarshals JSON payloads into items.
func (items *DocumentJobItems) Scan(value interface{}) error {
	*items = nil
	return scanJSONB(value, (*[]DocumentJobItem)(items), "document job items")
}

func marshalJSONB(v interface{}, what string) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", what, err)
	}
	return data, nil
}

func scanJSONB(value interface{}, dest interface{}, what string) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for %s", value, what)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", what, err)
	}
	return nil
}

// ServiceActor is recorded as creator for jobs submitted with a service token.
const ServiceActor = "service_role"
