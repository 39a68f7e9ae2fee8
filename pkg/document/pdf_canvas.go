package document

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// PDFCanvas draws on a single A4 portrait page in millimetres.
type PDFCanvas struct {
	pdf    *gofpdf.Fpdf
	enc    *encoding.Encoder
	logger *zap.Logger
	images int
}

// NewPDFCanvas starts a document with one blank page and the given metadata.
func NewPDFCanvas(meta Metadata, logger *zap.Logger) *PDFCanvas {
	if logger == nil {
		logger = zap.NewNop()
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if meta.Title != "" {
		pdf.SetTitle(meta.Title, true)
	}
	if meta.Subject != "" {
		pdf.SetSubject(meta.Subject, true)
	}
	if meta.Author != "" {
		pdf.SetAuthor(meta.Author, true)
	}
	if meta.Creator != "" {
		pdf.SetCreator(meta.Creator, true)
	}
	pdf.AddPage()
	return &PDFCanvas{
		pdf:    pdf,
		enc:    encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()),
		logger: logger,
	}
}

// PageSize returns the page dimensions.
func (c *PDFCanvas) PageSize() (float64, float64) {
	return c.pdf.GetPageSize()
}

func (c *PDFCanvas) SetFont(font Font) {
	family := font.Family
	if family == "" {
		family = "Helvetica"
	}
	c.pdf.SetFont(family, font.Style, font.Size)
}

func (c *PDFCanvas) SetTextColor(color Color)   { c.pdf.SetTextColor(color.R, color.G, color.B) }
func (c *PDFCanvas) SetDrawColor(color Color)   { c.pdf.SetDrawColor(color.R, color.G, color.B) }
func (c *PDFCanvas) SetFillColor(color Color)   { c.pdf.SetFillColor(color.R, color.G, color.B) }
func (c *PDFCanvas) SetLineWidth(width float64) { c.pdf.SetLineWidth(width) }

func (c *PDFCanvas) FillRect(box Box)   { c.pdf.Rect(box.X, box.Y, box.W, box.H, "F") }
func (c *PDFCanvas) StrokeRect(box Box) { c.pdf.Rect(box.X, box.Y, box.W, box.H, "D") }

func (c *PDFCanvas) FillCircle(x, y, r float64) { c.pdf.Circle(x, y, r, "F") }

func (c *PDFCanvas) Line(x1, y1, x2, y2 float64) { c.pdf.Line(x1, y1, x2, y2) }

// Text draws text transcoded for the core fonts.
func (c *PDFCanvas) Text(x, y float64, text string, align Align) {
	encoded := c.encode(text)
	if align == AlignCenter {
		x -= c.pdf.GetStringWidth(encoded) / 2
	}
	c.pdf.Text(x, y, encoded)
}

func (c *PDFCanvas) RotatedText(x, y float64, text string, angle, opacity float64) {
	encoded := c.encode(text)
	width := c.pdf.GetStringWidth(encoded)
	if opacity > 0 && opacity < 1 {
		c.pdf.SetAlpha(opacity, "Normal")
		defer c.pdf.SetAlpha(1, "Normal")
	}
	c.pdf.TransformBegin()
	c.pdf.TransformRotate(angle, x, y)
	c.pdf.Text(x-width/2, y, encoded)
	c.pdf.TransformEnd()
}

// Image registers the asset and places it. Decoding failures are logged and
// cleared so they do not poison the rest of the document.
func (c *PDFCanvas) Image(asset *Asset, box Box) {
	if asset == nil || len(asset.Data) == 0 {
		c.logger.Warn("image skipped: asset not available", zap.Float64("x", box.X), zap.Float64("y", box.Y))
		return
	}
	if !c.pdf.Ok() {
		return
	}
	c.images++
	name := fmt.Sprintf("img%d-%s", c.images, asset.Name)
	opts := gofpdf.ImageOptions{ImageType: asset.Type, ReadDpi: false}
	c.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(asset.Data))
	if err := c.pdf.Error(); err != nil {
		c.logger.Warn("image skipped: decode failed", zap.String("asset", asset.Name), zap.Error(err))
		c.pdf.ClearError()
		return
	}
	c.pdf.ImageOptions(name, box.X, box.Y, box.W, box.H, false, opts, 0, "")
	if err := c.pdf.Error(); err != nil {
		c.logger.Warn("image skipped: placement failed", zap.String("asset", asset.Name), zap.Error(err))
		c.pdf.ClearError()
	}
}

// Finalize encodes the document. The error from gofpdf is returned as is.
func (c *PDFCanvas) Finalize() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := c.pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *PDFCanvas) encode(text string) string {
	out, err := c.enc.String(text)
	if err != nil {
		return text
	}
	return out
}
