package document

// Asset is a raster image ready to be placed on a canvas.
type Asset struct {
	Name string
	// Type is the gofpdf image type: "PNG", "JPG" or "GIF".
	Type string
	Data []byte
}

// Metadata is embedded in the finalised document.
type Metadata struct {
	Title   string
	Subject string
	Author  string
	Creator string
}

// Canvas is a page-oriented drawing surface. Calls are additive and applied in
// order, so later calls paint over earlier ones.
type Canvas interface {
	PageSize() (width, height float64)

	SetFont(font Font)
	SetTextColor(color Color)
	SetDrawColor(color Color)
	SetFillColor(color Color)
	SetLineWidth(width float64)

	FillRect(box Box)
	StrokeRect(box Box)
	FillCircle(x, y, r float64)
	Line(x1, y1, x2, y2 float64)

	// Text draws a run with its baseline at y. With AlignCenter, x is the centre.
	Text(x, y float64, text string, align Align)
	// RotatedText draws a run centred on (x, y), rotated counter-clockwise by
	// angle degrees, at the given opacity (0..1).
	RotatedText(x, y float64, text string, angle, opacity float64)
	// Image places the asset in box. A nil or unreadable asset is skipped.
	Image(asset *Asset, box Box)

	// Finalize encodes the page. Errors come straight from the drawing library.
	Finalize() ([]byte, error)
}
