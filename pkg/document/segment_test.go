package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmenterEmphasisWinsOverMarker(t *testing.T) {
	seg := Segmenter{Emphasis: []string{"JEAN RAKOTO"}, Markers: TrainingCertificate.Markers}

	assert.Equal(t, StyleEmphasis, seg.Classify("COMMENTAIRES : JEAN RAKOTO"))
	assert.Equal(t, StyleHighlight, seg.Classify("COMMENTAIRES :"))
	assert.Equal(t, StyleNormal, seg.Classify("au 01/06/2025."))
}

func TestSegmenterSkipsEmptyTerms(t *testing.T) {
	seg := Segmenter{Emphasis: []string{""}, Markers: []string{""}}
	assert.Equal(t, StyleNormal, seg.Classify("Département : Informatique"))
}

func TestSegmentSizesFromTheme(t *testing.T) {
	seg := Segmenter{Emphasis: []string{"ACME"}, Markers: AssignmentOrder.Markers}
	lines := seg.Segment([]string{"ACME", "", "Statut actuel : AFFECTÉ"}, AssignmentOrder.Theme)

	assert.Equal(t, StyleEmphasis, lines[0].Style)
	assert.Equal(t, 15.0, lines[0].FontSizePt)
	assert.Equal(t, StyleNormal, lines[1].Style)
	assert.Equal(t, StyleHighlight, lines[2].Style)
}

func TestGradeLabelBands(t *testing.T) {
	cases := map[int]string{
		0: "INSUFFISANT", 9: "INSUFFISANT",
		10: "PASSABLE", 11: "PASSABLE",
		12: "ASSEZ BIEN", 13: "ASSEZ BIEN",
		14: "BIEN", 15: "BIEN",
		16: "TRÈS BIEN", 20: "TRÈS BIEN",
	}
	for grade, want := range cases {
		assert.Equal(t, want, GradeLabel(grade), "grade %d", grade)
	}

	allowed := map[string]bool{"TRÈS BIEN": true, "BIEN": true, "ASSEZ BIEN": true, "PASSABLE": true, "INSUFFISANT": true}
	for grade := 0; grade <= 20; grade++ {
		assert.True(t, allowed[GradeLabel(grade)])
	}
}

func TestStatusLabelFallsBackToFinished(t *testing.T) {
	assert.Equal(t, "AFFECTÉ", StatusLabel("assigned"))
	assert.Equal(t, "EN ATTENTE", StatusLabel("pending"))
	for _, status := range []string{"completed", "", "cancelled", "ASSIGNED"} {
		assert.Equal(t, "TERMINÉ", StatusLabel(status))
	}
}
