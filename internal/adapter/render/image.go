package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
)

const (
	ticketWidth   = 900
	ticketHeight  = 360
	thermalWidth  = 576
	thermalHeight = 400
)

var (
	brand = color.RGBA{R: 0xB4, G: 0x1E, B: 0x2D, A: 0xFF}
	ink   = color.Black
	paper = color.White
)

// Renderer draws printable tickets and badges. It has no state.
type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

// TicketPNG is the landscape ticket mailed to online buyers.
func (r *Renderer) TicketPNG(c *domain.Credential, event *domain.Event, qrPNG []byte) ([]byte, error) {
	canvas := newCanvas(ticketWidth, ticketHeight)
	xdraw.Draw(canvas, image.Rect(0, 0, ticketWidth, 56), image.NewUniform(brand), image.Point{}, xdraw.Src)
	drawText(canvas, 24, 16, 2, color.White, truncate(eventName(c, event), 40))

	lines := []string{
		joinNonEmpty(" ", event.Date, event.Time),
		event.Location,
		"Titular: " + c.Holder.Name,
	}
	if seat := c.Seat(); seat != "" {
		lines = append(lines, "Asiento: "+seat)
	}
	if cat := c.CategoryName(); cat != "" {
		lines = append(lines, "Categoria: "+cat)
	}
	if c.Ticket != nil {
		lines = append(lines, fmt.Sprintf("Precio: %.2f", c.Ticket.Price))
	}
	y := 80
	for _, l := range lines {
		if l == "" {
			continue
		}
		drawText(canvas, 24, y, 2, ink, truncate(l, 38))
		y += 34
	}
	drawText(canvas, 24, ticketHeight-48, 3, brand, c.Code)

	if err := pasteQR(canvas, qrPNG, image.Rect(ticketWidth-300, 60, ticketWidth-20, 340)); err != nil {
		return nil, err
	}
	return encodePNG(canvas)
}

// ThermalPNG fits the 72 mm printable width of 80 mm receipt printers at
// 203 dpi.
func (r *Renderer) ThermalPNG(c *domain.Credential, event *domain.Event, qrPNG []byte) ([]byte, error) {
	canvas := newCanvas(thermalWidth, thermalHeight)

	drawText(canvas, 16, 12, 2, ink, truncate(eventName(c, event), 38))
	drawText(canvas, 16, 48, 2, ink, truncate(c.CategoryName(), 20))
	if c.Ticket != nil {
		drawText(canvas, 16, 80, 2, ink, fmt.Sprintf("%.2f", c.Ticket.Price))
		drawText(canvas, 16, 112, 1, ink, fmt.Sprintf("No. %04d", c.Ticket.Sequence))
	}
	drawText(canvas, 16, thermalHeight-40, 2, ink, c.Code)

	if err := pasteQR(canvas, qrPNG, image.Rect(thermalWidth-276, 60, thermalWidth-16, 320)); err != nil {
		return nil, err
	}
	return encodePNG(canvas)
}

func newCanvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(paper), image.Point{}, xdraw.Src)
	return img
}

// drawText writes s with its top-left corner at (x, y). basicfont only
// ships a 7x13 face, so larger sizes are drawn small and scaled up.
func drawText(dst *image.RGBA, x, y, scale int, col color.Color, s string) {
	if s == "" {
		return
	}
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face, Src: image.NewUniform(col)}
	w := d.MeasureString(s).Ceil()
	h := face.Height

	src := image.NewRGBA(image.Rect(0, 0, w, h))
	d.Dst = src
	d.Dot = fixed.P(0, face.Ascent)
	d.DrawString(s)

	target := image.Rect(x, y, x+w*scale, y+h*scale)
	xdraw.NearestNeighbor.Scale(dst, target, src, src.Bounds(), xdraw.Over, nil)
}

func pasteQR(dst *image.RGBA, qrPNG []byte, target image.Rectangle) error {
	if len(qrPNG) == 0 {
		return nil
	}
	src, err := png.Decode(bytes.NewReader(qrPNG))
	if err != nil {
		return fmt.Errorf("decode qr png: %w", err)
	}
	xdraw.NearestNeighbor.Scale(dst, target, src, src.Bounds(), xdraw.Src, nil)
	return nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("write png: %w", err)
	}
	return buf.Bytes(), nil
}

func eventName(c *domain.Credential, event *domain.Event) string {
	if event != nil && event.Name != "" {
		return event.Name
	}
	if c.Ticket != nil {
		return c.Ticket.EventName
	}
	return ""
}

// basicfont covers ASCII only; accented letters would render as boxes.
func truncate(s string, n int) string {
	s = asciiFold(s)
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "."
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
