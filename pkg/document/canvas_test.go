package document

import "errors"

type drawCall struct {
	Op    string
	Text  string
	X, Y  float64
	Font  Font
	Color Color
	Align Align
	Box   Box
	Asset *Asset
}

// recordingCanvas captures draw calls in order.
type recordingCanvas struct {
	width, height float64
	font          Font
	text          Color
	calls         []drawCall
	finalizeErr   error
}

func newRecordingCanvas() *recordingCanvas {
	return &recordingCanvas{width: 210, height: 297}
}

func (r *recordingCanvas) PageSize() (float64, float64) { return r.width, r.height }

func (r *recordingCanvas) SetFont(font Font) {
	r.font = font
	r.calls = append(r.calls, drawCall{Op: "font", Font: font})
}

func (r *recordingCanvas) SetTextColor(color Color) { r.text = color }

func (r *recordingCanvas) SetDrawColor(color Color) {
	r.calls = append(r.calls, drawCall{Op: "draw-color", Color: color})
}

func (r *recordingCanvas) SetFillColor(Color) {}

func (r *recordingCanvas) SetLineWidth(float64) {}

func (r *recordingCanvas) FillRect(box Box) {
	r.calls = append(r.calls, drawCall{Op: "fill-rect", Box: box})
}

func (r *recordingCanvas) StrokeRect(box Box) {
	r.calls = append(r.calls, drawCall{Op: "stroke-rect", Box: box})
}

func (r *recordingCanvas) FillCircle(x, y, _ float64) {
	r.calls = append(r.calls, drawCall{Op: "circle", X: x, Y: y})
}

func (r *recordingCanvas) Line(x1, y1, x2, _ float64) {
	r.calls = append(r.calls, drawCall{Op: "line", X: x1, Y: y1, Box: Box{X: x1, W: x2 - x1}})
}

func (r *recordingCanvas) Text(x, y float64, text string, align Align) {
	r.calls = append(r.calls, drawCall{Op: "text", Text: text, X: x, Y: y, Font: r.font, Color: r.text, Align: align})
}

func (r *recordingCanvas) RotatedText(x, y float64, text string, _, _ float64) {
	r.calls = append(r.calls, drawCall{Op: "rotated", Text: text, X: x, Y: y, Color: r.text})
}

func (r *recordingCanvas) Image(asset *Asset, box Box) {
	r.calls = append(r.calls, drawCall{Op: "image", Box: box, Asset: asset})
}

func (r *recordingCanvas) Finalize() ([]byte, error) {
	if r.finalizeErr != nil {
		return nil, r.finalizeErr
	}
	return []byte("%PDF-recorded"), nil
}

func (r *recordingCanvas) ops(op string) []drawCall {
	var out []drawCall
	for _, call := range r.calls {
		if call.Op == op {
			out = append(out, call)
		}
	}
	return out
}

func (r *recordingCanvas) texts() []string {
	var out []string
	for _, call := range r.ops("text") {
		out = append(out, call.Text)
	}
	return out
}

var errEncode = errors.New("pdf: encoding failure")
