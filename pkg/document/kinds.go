package document

// Kind is the configuration that turns the shared composer into one document
// type.
type Kind struct {
	Name       string
	FilePrefix string

	Title        string
	TitleSize    float64
	Subtitle     []string
	SubtitleSize float64

	// Markers are the section phrases rendered as highlight.
	Markers []string
	Theme   Theme
	Metrics Metrics

	Signatory  []string
	OuterFrame Color
	Watermark  bool
	// Seal paints the gold disc under the motto.
	Seal bool
	// LogoKey selects the institution logo for the right of the header.
	LogoKey string
}

const (
	KindAssignmentOrder     = "assignment_order"
	KindTrainingCertificate = "training_certificate"
)

// AssignmentOrder is the placement letter sent to the host company.
var AssignmentOrder = &Kind{
	Name:         KindAssignmentOrder,
	FilePrefix:   "affectation",
	Title:        "ORDRE D'AFFECTATION DE STAGE",
	TitleSize:    24,
	Subtitle:     []string{"Ministère du Travail, de l'Emploi et de la Fonction Publique"},
	SubtitleSize: 14,
	Markers:      []string{"Statut actuel", "Période de stage"},
	Theme: Theme{
		StyleHeading:   {Font: Font{Family: "Helvetica", Style: "B", Size: 24}, Color: Crimson},
		StyleEmphasis:  {Font: Font{Family: "Helvetica", Style: "B", Size: 15}, Color: Crimson},
		StyleHighlight: {Font: Font{Family: "Helvetica", Style: "B", Size: 13}, Color: Forest},
		StyleNormal:    {Font: Font{Family: "Helvetica", Size: 13}, Color: Black},
	},
	Metrics:    Metrics{FontSize: 13, LineHeight: 8, WrapAdvance: 6.5, MaxChars: 70},
	Signatory:  []string{"Le Responsable des Stages", "MTEFoP"},
	OuterFrame: Color{255, 0, 0},
	LogoKey:    KindAssignmentOrder,
}

// TrainingCertificate attests a completed internship and its final grade.
var TrainingCertificate = &Kind{
	Name:       KindTrainingCertificate,
	FilePrefix: "certificat_stage",
	Title:      "CERTIFICAT DE STAGE",
	TitleSize:  22,
	Subtitle: []string{
		"République Démocratique de Madagascar",
		"Ministère des Télécommunications, des Technologies Numériques",
		"et de la Poste (MTFoP)",
	},
	SubtitleSize: 12,
	Markers:      []string{"CERTIFIE PAR LA PRÉSENTE QUE", "ÉVALUATION FINALE", "COMMENTAIRES"},
	Theme: Theme{
		StyleHeading:   {Font: Font{Family: "Helvetica", Style: "B", Size: 22}, Color: Crimson},
		StyleEmphasis:  {Font: Font{Family: "Helvetica", Style: "B", Size: 13}, Color: Crimson},
		StyleHighlight: {Font: Font{Family: "Helvetica", Style: "B", Size: 12}, Color: Forest},
		StyleNormal:    {Font: Font{Family: "Helvetica", Size: 12}, Color: Black},
	},
	Metrics:    Metrics{FontSize: 12, LineHeight: 7, WrapAdvance: 5.5, MaxChars: 80},
	Signatory:  []string{"Le Directeur Général", "du MTFoP"},
	OuterFrame: Color{0, 128, 0},
	Watermark:  true,
	Seal:       true,
	LogoKey:    KindTrainingCertificate,
}

// Kinds lists every document kind by name.
var Kinds = map[string]*Kind{
	KindAssignmentOrder:     AssignmentOrder,
	KindTrainingCertificate: TrainingCertificate,
}

// KindByName looks up a kind.
func KindByName(name string) (*Kind, bool) {
	kind, ok := Kinds[name]
	return kind, ok
}
