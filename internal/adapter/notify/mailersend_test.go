package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/feria_ticket/internal/core/ports"
	"github.com/srgjo27/feria_ticket/internal/platform/logger"
)

func TestMailerSend_MessageCarriesTicket(t *testing.T) {
	m := NewMailerSend("key", "boletos@feria.test", "Feria", logger.Discard())
	msg := m.message(ports.TicketMail{
		To: "ana@example.com", Name: "Ana <b>", EventName: "Feria", Code: "CF-1234ABCD-WXYZ",
		Seat: "M1-S2", Image: []byte{0x89, 'P', 'N', 'G'},
	})

	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, "ana@example.com")
	assert.Contains(t, body, "Tu entrada para Feria")
	assert.Contains(t, body, "entrada-CF-1234ABCD-WXYZ.png")
	assert.Contains(t, body, "M1-S2")
}

func TestMailerSend_NoAttachmentWithoutImage(t *testing.T) {
	m := NewMailerSend("key", "boletos@feria.test", "Feria", logger.Discard())
	raw, err := json.Marshal(m.message(ports.TicketMail{To: "a@b.c", Code: "X"}))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), ".png")
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(logger.Discard())
	assert.NoError(t, n.SendTicket(context.Background(), ports.TicketMail{To: "a@b.c"}))
}
