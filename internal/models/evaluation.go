package models

import (
	"time"

	"github.com/noah-isme/stage-docs-api/pkg/document"
)

// Evaluation is an evaluations row joined with its intern. Intern columns are
// nil when intern_id is unset or dangling.
type Evaluation struct {
	ID        string     `db:"id" json:"id"`
	InternID  *string    `db:"intern_id" json:"intern_id,omitempty"`
	Grade     int        `db:"grade" json:"grade"`
	Comment   *string    `db:"comment" json:"comment,omitempty"`
	FirstName *string    `db:"first_name" json:"first_name,omitempty"`
	LastName  *string    `db:"last_name" json:"last_name,omitempty"`
	StartDate *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Subject maps the row onto the document input. Missing intern data yields
// zero values that fail document validation.
func (e Evaluation) Subject() document.EvaluationSubject {
	s := document.EvaluationSubject{ID: e.ID, Grade: e.Grade}
	if e.FirstName != nil {
		s.FirstName = *e.FirstName
	}
	if e.LastName != nil {
		s.LastName = *e.LastName
	}
	if e.StartDate != nil {
		s.StartDate = *e.StartDate
	}
	if e.EndDate != nil {
		s.EndDate = *e.EndDate
	}
	if e.Comment != nil {
		s.Comment = *e.Comment
	}
	return s
}

// EvaluationFilter narrows evaluation listings.
type EvaluationFilter struct {
	InternID string
	MinGrade *int
	Page     int
	PageSize int
}
