package document

import "strings"

// Segmenter tags body lines by substring containment. Emphasis terms are
// checked before marker phrases, so a line holding both is emphasis.
type Segmenter struct {
	Emphasis []string
	Markers  []string
}

// Classify returns the style of a single logical line.
func (s Segmenter) Classify(line string) Style {
	if containsAny(line, s.Emphasis) {
		return StyleEmphasis
	}
	if containsAny(line, s.Markers) {
		return StyleHighlight
	}
	return StyleNormal
}

// Segment tags every line and sizes it from the theme.
func (s Segmenter) Segment(texts []string, theme Theme) []StyledLine {
	lines := make([]StyledLine, 0, len(texts))
	for _, text := range texts {
		style := StyleNormal
		if strings.TrimSpace(text) != "" {
			style = s.Classify(text)
		}
		lines = append(lines, StyledLine{
			Text:       text,
			Style:      style,
			FontSizePt: theme.Spec(style).Font.Size,
		})
	}
	return lines
}

func containsAny(line string, terms []string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(line, term) {
			return true
		}
	}
	return false
}
