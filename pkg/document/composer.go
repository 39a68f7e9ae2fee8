package document

import "time"

// Composer phases, in drawing order.
const (
	PhaseHeader  = "header"
	PhaseRule    = "rule"
	PhaseTitle   = "title"
	PhaseBody    = "body"
	PhaseClosing = "closing"
)

const (
	pageMargin     = 20.0
	headerHeight   = 50.0
	ruleY          = 56.0
	ruleWidth      = 2.0
	titleY         = 72.0
	subtitleY      = 82.0
	subtitleStep   = 7.0
	bodyGap        = 14.0
	closingGap     = 10.0
	signatoryGap   = 12.0
	signatoryStep  = 6.0
	sealQRSize     = 22.0
	sealQRGap      = 5.0
	watermarkText  = "OFFICIEL"
	watermarkAlpha = 0.35
)

// Assets are the images a composer may place. Any of them may be nil.
type Assets struct {
	Emblem *Asset
	Logo   *Asset
	// Seal is the verification QR code.
	Seal *Asset
}

// Mark records where the cursor stood after a phase.
type Mark struct {
	Phase string  `json:"phase"`
	Y     float64 `json:"y"`
}

// Rendered describes one composed page.
type Rendered struct {
	Lines  []StyledLine
	Marks  []Mark
	Cursor Cursor
}

// Composer draws one document kind.
type Composer struct {
	Kind       *Kind
	IssuePlace string
}

// Compose runs header, rule, title, body and closing on canvas.
func (c Composer) Compose(canvas Canvas, body Body, assets Assets, issued time.Time) Rendered {
	kind := c.Kind
	width, height := canvas.PageSize()
	out := Rendered{}
	cursor := Cursor{X: pageMargin}

	mark := func(phase string) {
		out.Marks = append(out.Marks, Mark{Phase: phase, Y: cursor.Y})
	}

	cursor = c.header(canvas, cursor, width, assets)
	mark(PhaseHeader)

	cursor = c.rule(canvas, cursor, width)
	mark(PhaseRule)

	cursor = c.title(canvas, cursor, width)
	mark(PhaseTitle)

	seg := Segmenter{Emphasis: body.Emphasis, Markers: kind.Markers}
	out.Lines = seg.Segment(body.Lines, kind.Theme)
	engine := Engine{Theme: kind.Theme, Metrics: kind.Metrics}
	cursor = engine.Place(canvas, cursor.Down(bodyGap), out.Lines, width/2)
	mark(PhaseBody)

	cursor = c.closing(canvas, cursor, width, height, assets.Seal, issued)
	mark(PhaseClosing)

	out.Cursor = cursor
	return out
}

func (c Composer) header(canvas Canvas, cursor Cursor, width float64, assets Assets) Cursor {
	canvas.SetFillColor(White)
	canvas.FillRect(Box{X: 0, Y: 0, W: width, H: headerHeight})

	if assets.Emblem != nil {
		canvas.Image(assets.Emblem, Box{X: 15, Y: 10, W: 50, H: 40})
	}
	if assets.Logo != nil {
		canvas.Image(assets.Logo, Box{X: width - 65, Y: 10, W: 50, H: 40})
	}

	canvas.SetFont(Font{Family: "Helvetica", Style: "B", Size: 12})
	canvas.SetTextColor(Gold)
	canvas.Text(width/2, 24, "REPOBLIKAN'I MADAGASIKARA", AlignCenter)
	canvas.SetFont(Font{Family: "Helvetica", Style: "I", Size: 10})
	canvas.SetTextColor(Black)
	canvas.Text(width/2, 32, "Fitiavana - Tanindrazana - Fandrosoana", AlignCenter)

	if c.Kind.Seal {
		canvas.SetFillColor(SealGold)
		canvas.FillCircle(width/2, 41, 6)
		canvas.SetFont(Font{Family: "Helvetica", Style: "B", Size: 6})
		canvas.SetTextColor(SealBrown)
		canvas.Text(width/2, 42, "SCEAU", AlignCenter)
	}
	return cursor.At(headerHeight)
}

func (c Composer) rule(canvas Canvas, cursor Cursor, width float64) Cursor {
	cursor = cursor.At(ruleY)
	span := (width - 2*pageMargin) / 3
	canvas.SetLineWidth(ruleWidth)
	for i, color := range NationalColors {
		x := pageMargin + float64(i)*span
		canvas.SetDrawColor(color)
		canvas.Line(x, cursor.Y, x+span, cursor.Y)
	}
	return cursor
}

func (c Composer) title(canvas Canvas, cursor Cursor, width float64) Cursor {
	kind := c.Kind
	heading := kind.Theme.Spec(StyleHeading)
	font := heading.Font
	if kind.TitleSize > 0 {
		font.Size = kind.TitleSize
	}
	cursor = cursor.At(titleY)
	canvas.SetFont(font)
	canvas.SetTextColor(heading.Color)
	canvas.Text(width/2, cursor.Y, kind.Title, AlignCenter)

	canvas.SetFont(Font{Family: "Helvetica", Style: "I", Size: kind.SubtitleSize})
	canvas.SetTextColor(Black)
	for i, line := range kind.Subtitle {
		if i == 0 {
			cursor = cursor.At(subtitleY)
		} else {
			cursor = cursor.Down(subtitleStep)
		}
		canvas.Text(width/2, cursor.Y, line, AlignCenter)
	}
	return cursor
}

func (c Composer) closing(canvas Canvas, cursor Cursor, width, height float64, seal *Asset, issued time.Time) Cursor {
	kind := c.Kind
	place := c.IssuePlace
	if place == "" {
		place = "Antananarivo"
	}

	cursor = cursor.Down(closingGap)
	issueY := cursor.Y
	canvas.SetFont(Font{Family: "Helvetica", Style: "B", Size: 12})
	canvas.SetTextColor(Black)
	canvas.Text(pageMargin, cursor.Y, "Fait à "+place+", le :", AlignLeft)
	canvas.Text(pageMargin+62, cursor.Y, FormatDate(issued), AlignLeft)

	cursor = cursor.Down(signatoryGap)
	for i, line := range kind.Signatory {
		if i > 0 {
			cursor = cursor.Down(signatoryStep)
		}
		canvas.Text(width-pageMargin-60, cursor.Y, line, AlignLeft)
	}

	canvas.SetDrawColor(kind.OuterFrame)
	canvas.SetLineWidth(2.5)
	canvas.StrokeRect(Box{X: 5, Y: 5, W: width - 10, H: height - 10})
	canvas.SetDrawColor(Gold)
	canvas.SetLineWidth(0.8)
	canvas.StrokeRect(Box{X: 10, Y: 10, W: width - 20, H: height - 20})

	if kind.Watermark {
		canvas.SetFont(Font{Family: "Helvetica", Style: "B", Size: 40})
		canvas.SetTextColor(Pale)
		canvas.RotatedText(width/2, height/2, watermarkText, 45, watermarkAlpha)
	}

	// The QR code sits under the issue date, inside the inner frame.
	if seal != nil {
		top := issueY + sealQRGap
		if top+sealQRSize <= height-11 {
			canvas.Image(seal, Box{X: pageMargin, Y: top, W: sealQRSize, H: sealQRSize})
			cursor = cursor.At(top + sealQRSize)
		}
	}
	return cursor
}
