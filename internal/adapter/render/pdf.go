package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
	"github.com/srgjo27/feria_ticket/internal/core/ports"
)

const defaultBadgeColor = "#8B5CF6"

// AccreditationPDF lays out one A6 badge per page: colour band with the
// category, holder, organisation, zones, QR and code.
func (r *Renderer) AccreditationPDF(event *domain.Event, badges []ports.Badge) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A6", "")
	pdf.SetMargins(8, 8, 8)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	for i, b := range badges {
		c := b.Credential
		details := c.Accreditation
		if details == nil {
			details = &domain.AccreditationDetails{}
		}
		pdf.AddPage()

		cr, cg, cb := hexColor(details.Color)
		pdf.SetFillColor(cr, cg, cb)
		pdf.Rect(0, 0, pageW, 22, "F")
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 16)
		pdf.SetXY(0, 6)
		pdf.CellFormat(pageW, 10, tr(strings.ToUpper(details.Category)), "", 0, "C", false, 0, "")

		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetXY(8, 26)
		if event != nil {
			pdf.CellFormat(pageW-16, 5, tr(event.Name), "", 1, "C", false, 0, "")
		}

		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetX(8)
		pdf.CellFormat(pageW-16, 8, tr(c.Holder.Name), "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, line := range []string{details.Organization, details.Role} {
			if line == "" {
				continue
			}
			pdf.SetX(8)
			pdf.CellFormat(pageW-16, 5, tr(line), "", 1, "C", false, 0, "")
		}

		if len(b.QR) > 0 {
			name := "qr-" + strconv.Itoa(i)
			opts := fpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(b.QR))
			size := 50.0
			pdf.ImageOptions(name, (pageW-size)/2, 58, size, size, false, opts, 0, "")
		}

		pdf.SetXY(8, 112)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(pageW-16, 5, tr("Zonas: "+strings.Join(details.Zones, ", ")), "", 1, "C", false, 0, "")
		pdf.SetFont("Courier", "B", 11)
		pdf.SetX(8)
		pdf.CellFormat(pageW-16, 6, c.Code, "", 1, "C", false, 0, "")
	}
	if len(badges) == 0 {
		pdf.AddPage()
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("build badge pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write badge pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func hexColor(s string) (int, int, int) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		s = strings.TrimPrefix(defaultBadgeColor, "#")
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		v, _ = strconv.ParseUint(strings.TrimPrefix(defaultBadgeColor, "#"), 16, 32)
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF)
}
