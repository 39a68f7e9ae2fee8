package document

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const dateLayout = "02/01/2006"

// Body is the filled-in template for one subject plus the terms that mark its
// emphasised lines.
type Body struct {
	Lines    []string
	Emphasis []string
}

// Subject is the record a document is issued for.
type Subject interface {
	Kind() *Kind
	Reference() string
	FullName() string
	Body() Body
}

// Upper upper-cases s with French rules.
func Upper(s string) string {
	return cases.Upper(language.French).String(strings.TrimSpace(s))
}

// FormatDate renders t the way French administrative documents print dates.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// AssignmentSubject is an internship placement.
type AssignmentSubject struct {
	ID             string    `json:"id"`
	StudentName    string    `json:"studentName" validate:"required"`
	SupervisorName string    `json:"supervisorName" validate:"required"`
	CompanyName    string    `json:"companyName" validate:"required"`
	DepartmentName string    `json:"departmentName" validate:"required"`
	Status         string    `json:"status"`
	StartDate      time.Time `json:"startDate" validate:"required"`
	EndDate        time.Time `json:"endDate" validate:"required,gtefield=StartDate"`
}

func (s AssignmentSubject) Kind() *Kind { return AssignmentOrder }

func (s AssignmentSubject) Reference() string { return s.ID }

func (s AssignmentSubject) FullName() string { return strings.TrimSpace(s.StudentName) }

func (s AssignmentSubject) Body() Body {
	student := Upper(s.StudentName)
	company := Upper(s.CompanyName)
	return Body{
		Lines: []string{
			"Par la présente, nous informons que :",
			"",
			"L'étudiant(e) : " + student,
			"",
			"est affecté(e) en stage dans l'entreprise : " + company,
			"Département : " + s.DepartmentName,
			"Sous la supervision de : " + s.SupervisorName,
			"",
			fmt.Sprintf("Période de stage : du %s au %s", FormatDate(s.StartDate), FormatDate(s.EndDate)),
			"",
			"Statut actuel : " + StatusLabel(s.Status),
			"",
			"Cette affectation est effective et doit être respectée par toutes les parties concernées.",
			"",
			"L'étudiant(e) devra se présenter à l'entreprise selon les modalités convenues",
			"et respecter le règlement intérieur de l'établissement d'accueil.",
		},
		Emphasis: []string{student, company},
	}
}

// EvaluationSubject is the final evaluation of an intern.
type EvaluationSubject struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName" validate:"required"`
	LastName  string    `json:"lastName" validate:"required"`
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required,gtefield=StartDate"`
	Grade     int       `json:"grade" validate:"min=0,max=20"`
	Comment   string    `json:"comment" validate:"max=400"`
}

func (s EvaluationSubject) Kind() *Kind { return TrainingCertificate }

func (s EvaluationSubject) Reference() string { return s.ID }

func (s EvaluationSubject) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(s.FirstName) + " " + strings.TrimSpace(s.LastName))
}

func (s EvaluationSubject) Body() Body {
	name := Upper(s.FullName())
	comment := strings.TrimSpace(s.Comment)
	if comment == "" {
		comment = "Néant."
	}
	return Body{
		Lines: []string{
			"Je soussigné(e), en qualité de responsable au sein du Ministère des",
			"Télécommunications, des Technologies Numériques et de la Poste,",
			"",
			"CERTIFIE PAR LA PRÉSENTE QUE :",
			"",
			"Monsieur/Madame",
			name,
			"",
			"a effectué un stage dans nos services du " + FormatDate(s.StartDate),
			"au " + FormatDate(s.EndDate) + ".",
			"",
			"ÉVALUATION FINALE :",
			fmt.Sprintf("Note obtenue : %d/20", s.Grade),
			"Appréciation : " + GradeLabel(s.Grade),
			"",
			"COMMENTAIRES :",
			comment,
		},
		Emphasis: []string{name},
	}
}
