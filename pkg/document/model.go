// Package document lays out and renders the one-page official documents issued
// for internships: the assignment order and the training certificate.
package document

import "math"

// Color is an RGB triplet in the 0-255 range.
type Color struct {
	R, G, B int
}

// Palette shared by both document kinds.
var (
	Black     = Color{0, 0, 0}
	White     = Color{255, 255, 255}
	Gold      = Color{184, 134, 11}
	Crimson   = Color{220, 20, 60}
	Forest    = Color{34, 139, 34}
	Pale      = Color{200, 200, 200}
	SealGold  = Color{255, 215, 0}
	SealBrown = Color{139, 69, 19}
)

// ColorTriple holds the three bands of a horizontal rule, drawn left to right.
type ColorTriple [3]Color

// NationalColors is the red / white / green scheme used for every rule.
var NationalColors = ColorTriple{
	{255, 0, 0},
	{255, 255, 255},
	{0, 128, 0},
}

// Font selects a built-in face. Style is "", "B", "I" or "BI".
type Font struct {
	Family string
	Style  string
	Size   float64
}

// Box is a bounding box in page units (millimetres).
type Box struct {
	X, Y, W, H float64
}

// Align is the horizontal anchoring of a text run.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// Style tags a logical line with its rendering treatment.
type Style string

const (
	StyleHeading   Style = "heading"
	StyleEmphasis  Style = "emphasis"
	StyleHighlight Style = "highlight"
	StyleNormal    Style = "normal"
)

// StyledLine is one logical line of body text before wrapping.
type StyledLine struct {
	Text       string  `json:"text"`
	Style      Style   `json:"style"`
	FontSizePt float64 `json:"fontSizePt"`
}

// Cursor is the layout position for a single render. It only moves down.
type Cursor struct {
	X, Y float64
}

// Down returns the cursor advanced by dy. Negative values are ignored.
func (c Cursor) Down(dy float64) Cursor {
	c.Y += math.Max(0, dy)
	return c
}

// At returns the cursor moved to y, or unchanged when y is above it.
func (c Cursor) At(y float64) Cursor {
	if y > c.Y {
		c.Y = y
	}
	return c
}
