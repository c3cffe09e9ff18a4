package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	xdraw "golang.org/x/image/draw"
)

const defaultQRSize = 300

// QRCode encodes payloads as square PNG QR symbols with high error correction,
// so a creased or partly smudged print still scans.
type QRCode struct {
	size int
}

func NewQRCode(size int) *QRCode {
	if size <= 0 {
		size = defaultQRSize
	}
	return &QRCode{size: size}
}

func (q *QRCode) PNG(content string) ([]byte, error) {
	code, err := qr.Encode(content, qr.H, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	scaled, err := barcode.Scale(code, q.size, q.size)
	if err != nil {
		return nil, fmt.Errorf("scale qr: %w", err)
	}

	// barcode images are 16-bit gray; 8 bits keep the PNG small.
	gray := image.NewGray(scaled.Bounds())
	xdraw.Draw(gray, gray.Bounds(), scaled, scaled.Bounds().Min, xdraw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("write qr png: %w", err)
	}
	return buf.Bytes(), nil
}
