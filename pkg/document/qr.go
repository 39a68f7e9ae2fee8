package document

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"golang.org/x/image/draw"
)

// QRAsset encodes content as a square PNG QR code of px pixels.
func QRAsset(content string, px int) (*Asset, error) {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	scaled, err := barcode.Scale(code, px, px)
	if err != nil {
		return nil, fmt.Errorf("scale qr: %w", err)
	}
	// barcode images are 16-bit gray, which gofpdf cannot read.
	gray := image.NewGray(scaled.Bounds())
	draw.Draw(gray, gray.Bounds(), scaled, scaled.Bounds().Min, draw.Src)

	buf := &bytes.Buffer{}
	if err := png.Encode(buf, gray); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return &Asset{Name: "seal", Type: "PNG", Data: buf.Bytes()}, nil
}
