package models

import (
	"time"

	"github.com/noah-isme/stage-docs-api/pkg/document"
)

// Assignment is a row of the assignments table.
type Assignment struct {
	ID         string    `db:"id" json:"id"`
	Student    string    `db:"student" json:"student"`
	Supervisor string    `db:"supervisor" json:"supervisor"`
	Company    string    `db:"company" json:"company"`
	Department string    `db:"department" json:"department"`
	Status     string    `db:"status" json:"status"`
	StartDate  time.Time `db:"start_date" json:"start_date"`
	EndDate    time.Time `db:"end_date" json:"end_date"`
	UserID     string    `db:"user_id" json:"user_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Subject maps the row onto the document input.
func (a Assignment) Subject() document.AssignmentSubject {
	return document.AssignmentSubject{
		ID:             a.ID,
		StudentName:    a.Student,
		SupervisorName: a.Supervisor,
		CompanyName:    a.Company,
		DepartmentName: a.Department,
		Status:         a.Status,
		StartDate:      a.StartDate,
		EndDate:        a.EndDate,
	}
}

// AssignmentFilter narrows assignment listings.
type AssignmentFilter struct {
	UserID   string
	Status   string
	Search   string
	Page     int
	PageSize int
}
