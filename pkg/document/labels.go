package document

// Assignment statuses as stored upstream.
const (
	StatusPending   = "pending"
	StatusAssigned  = "assigned"
	StatusCompleted = "completed"
)

type gradeBand struct {
	min   int
	label string
}

// Descending, lower bound inclusive.
var gradeBands = []gradeBand{
	{16, "TRÈS BIEN"},
	{14, "BIEN"},
	{12, "ASSEZ BIEN"},
	{10, "PASSABLE"},
}

// GradeLabel returns the mention for a grade out of 20.
func GradeLabel(grade int) string {
	for _, band := range gradeBands {
		if grade >= band.min {
			return band.label
		}
	}
	return "INSUFFISANT"
}

// StatusLabel returns the French label for an assignment status. Unknown
// values read as finished.
func StatusLabel(status string) string {
	switch status {
	case StatusAssigned:
		return "AFFECTÉ"
	case StatusPending:
		return "EN ATTENTE"
	default:
		return "TERMINÉ"
	}
}
