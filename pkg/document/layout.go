package document

import "strings"

// StyleSpec is how one style renders.
type StyleSpec struct {
	Font  Font
	Color Color
}

// Theme maps each body style to its rendering.
type Theme map[Style]StyleSpec

// Spec returns the spec for style, falling back to the normal style.
func (t Theme) Spec(style Style) StyleSpec {
	if spec, ok := t[style]; ok {
		return spec
	}
	if spec, ok := t[StyleNormal]; ok {
		return spec
	}
	return StyleSpec{Font: Font{Family: "Helvetica", Size: 12}, Color: Black}
}

// Metrics are the line spacing rules for a body.
type Metrics struct {
	// FontSize is the reference size that MaxChars was tuned for.
	FontSize float64
	// LineHeight is the advance after each logical line.
	LineHeight float64
	// WrapAdvance is the advance between sub-lines of a wrapped line.
	WrapAdvance float64
	// MaxChars is the character budget per rendered line at FontSize.
	MaxChars int
}

// Budget scales MaxChars to the given font size. Larger text gets fewer chars.
func (m Metrics) Budget(size float64) int {
	if size <= 0 || m.FontSize <= 0 || size == m.FontSize {
		return m.MaxChars
	}
	budget := int(float64(m.MaxChars) * m.FontSize / size)
	if budget < 1 {
		return 1
	}
	return budget
}

// Wrap splits text greedily into lines of at most maxChars characters. Words
// are never broken, so a single word longer than the budget stands alone.
func Wrap(text string, maxChars int) []string {
	if len([]rune(text)) <= maxChars || maxChars <= 0 {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}

	var (
		lines  []string
		buffer strings.Builder
		size   int
	)
	for _, word := range strings.Fields(text) {
		n := len([]rune(word))
		if size > 0 && size+1+n > maxChars {
			lines = append(lines, buffer.String())
			buffer.Reset()
			size = 0
		}
		if size > 0 {
			buffer.WriteByte(' ')
			size++
		}
		buffer.WriteString(word)
		size += n
	}
	if size > 0 {
		lines = append(lines, buffer.String())
	}
	return lines
}

// Engine places styled body lines on a canvas.
type Engine struct {
	Theme   Theme
	Metrics Metrics
}

// Place draws lines centred on centerX starting at cursor and returns the
// cursor after the last line. Empty lines only advance the cursor.
func (e Engine) Place(canvas Canvas, cursor Cursor, lines []StyledLine, centerX float64) Cursor {
	for _, line := range lines {
		spec := e.Theme.Spec(line.Style)
		font := spec.Font
		if line.FontSizePt > 0 {
			font.Size = line.FontSizePt
		}

		parts := Wrap(line.Text, e.Metrics.Budget(font.Size))
		if len(parts) > 0 {
			canvas.SetFont(font)
			canvas.SetTextColor(spec.Color)
		}
		for i, part := range parts {
			if i > 0 {
				cursor = cursor.Down(e.Metrics.WrapAdvance)
			}
			canvas.Text(centerX, cursor.Y, part, AlignCenter)
		}
		cursor = cursor.Down(e.Metrics.LineHeight)
	}
	return cursor
}
