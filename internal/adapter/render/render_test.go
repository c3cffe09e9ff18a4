package render_test

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/feria_ticket/internal/adapter/render"
	"github.com/srgjo27/feria_ticket/internal/core/domain"
	"github.com/srgjo27/feria_ticket/internal/core/ports"
)

func qrFixture(t *testing.T) []byte {
	t.Helper()
	img, err := render.NewQRCode(200).PNG("payload-for-tests")
	require.NoError(t, err)
	return img
}

func TestQRCode_PNGSize(t *testing.T) {
	img, err := png.Decode(bytes.NewReader(qrFixture(t)))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestRenderer_ThermalPNGDimensions(t *testing.T) {
	c := &domain.Credential{
		ID: uuid.New(), Kind: domain.KindWalkIn, Code: "CF-GEN-0001ABCD",
		Ticket: &domain.TicketDetails{EventName: "Feria", Category: "General", Price: 5, Sequence: 1},
	}
	out, err := render.NewRenderer().ThermalPNG(c, &domain.Event{Name: "Feria de San Sebastián"}, qrFixture(t))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 576, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())
}

func TestRenderer_TicketPNG(t *testing.T) {
	c := &domain.Credential{
		ID: uuid.New(), Kind: domain.KindTicket, Code: "CF-1234ABCD-WXYZ",
		Holder: domain.Holder{Name: "María Pérez"},
		Ticket: &domain.TicketDetails{Seat: "M1-S2", Category: "VIP", Price: 25},
	}
	out, err := render.NewRenderer().TicketPNG(c, &domain.Event{Name: "Concierto", Date: "2026-01-20"}, qrFixture(t))
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(out))
	require.NoError(t, err)

	_, err = render.NewRenderer().TicketPNG(c, &domain.Event{}, []byte("not a png"))
	assert.Error(t, err)
}

func TestRenderer_AccreditationPDF(t *testing.T) {
	badge := ports.Badge{
		Credential: &domain.Credential{
			ID: uuid.New(), Kind: domain.KindAccreditation, Code: "AC-1234ABCD-WXYZ",
			Holder: domain.Holder{Name: "José Núñez"},
			Accreditation: &domain.AccreditationDetails{
				Category: "Prensa", Color: "#123456", Zones: []string{"Tarima", "Backstage"},
				Organization: "Diario", Role: "Fotógrafo",
			},
		},
		QR: qrFixture(t),
	}
	out, err := render.NewRenderer().AccreditationPDF(&domain.Event{Name: "Feria"}, []ports.Badge{badge, badge})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
