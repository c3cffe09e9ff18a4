package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
)

// SeatCache holds rendered seat maps keyed by event.
type SeatCache interface {
	Get(ctx context.Context, eventID uuid.UUID) (*domain.SeatMap, bool, error)
	Set(ctx context.Context, eventID uuid.UUID, m *domain.SeatMap) error
	Invalidate(ctx context.Context, eventID uuid.UUID) error
}

// TicketMail is what the buyer receives once a ticket is approved.
type TicketMail struct {
	To        string
	Name      string
	EventName string
	Code      string
	Seat      string
	Image     []byte
}

type Notifier interface {
	SendTicket(ctx context.Context, mail TicketMail) error
}

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Renderer draws printable credentials around an already rendered QR image.
type Renderer interface {
	TicketPNG(c *domain.Credential, event *domain.Event, qr []byte) ([]byte, error)
	ThermalPNG(c *domain.Credential, event *domain.Event, qr []byte) ([]byte, error)
	AccreditationPDF(event *domain.Event, badges []Badge) ([]byte, error)
}

type Badge struct {
	Credential *domain.Credential
	QR         []byte
}
