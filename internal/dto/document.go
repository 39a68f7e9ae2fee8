package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/stage-docs-api/pkg/document"
)

// Date accepts "2006-01-02" as well as RFC 3339 timestamps, the two forms the
// web client sends for date inputs.
type Date struct {
	time.Time
}

// UnmarshalJSON parses a quoted date; null and "" leave the zero value.
func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", raw)
}

// MarshalJSON renders the date as YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// AssignmentOrderRequest is the form state of an assignment, rendered without a
// stored record.
type AssignmentOrderRequest struct {
	StudentName    string `json:"studentName"`
	SupervisorName string `json:"supervisorName"`
	CompanyName    string `json:"companyName"`
	DepartmentName string `json:"departmentName"`
	Status         string `json:"status"`
	StartDate      Date   `json:"startDate"`
	EndDate        Date   `json:"endDate"`
}

// Subject maps the request onto the document input. No id is carried, so the
// document gets no verification seal.
func (r AssignmentOrderRequest) Subject() document.AssignmentSubject {
	return document.AssignmentSubject{
		StudentName:    r.StudentName,
		SupervisorName: r.SupervisorName,
		CompanyName:    r.CompanyName,
		DepartmentName: r.DepartmentName,
		Status:         r.Status,
		StartDate:      r.StartDate.Time,
		EndDate:        r.EndDate.Time,
	}
}

// CertificateRequest is the form state of an evaluation.
type CertificateRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	StartDate Date   `json:"startDate"`
	EndDate   Date   `json:"endDate"`
	Grade     int    `json:"grade"`
	Comment   string `json:"comment"`
}

// Subject maps the request onto the document input.
func (r CertificateRequest) Subject() document.EvaluationSubject {
	return document.EvaluationSubject{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		StartDate: r.StartDate.Time,
		EndDate:   r.EndDate.Time,
		Grade:     r.Grade,
		Comment:   r.Comment,
	}
}

// SealVerification is returned by the public verification endpoint.
type SealVerification struct {
	Valid     bool   `json:"valid"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Reference string `json:"reference"`
	Holder    string `json:"holder"`
	Year      int    `json:"year"`
	Summary   string `json:"summary,omitempty"`
}
