package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
	"github.com/srgjo27/feria_ticket/internal/core/integrity"
	"github.com/srgjo27/feria_ticket/internal/core/ports"
	"github.com/srgjo27/feria_ticket/internal/platform/metrics"
)

const maxWalkInBatch = 500

type WalkInRequest struct {
	EventID  string  `json:"event_id"`
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type WalkInResponse struct {
	Quantity int                `json:"quantity"`
	Tickets  []IssuedCredential `json:"tickets"`
}

// WalkInService prints box-office tickets. They are sold on the spot, so they
// are issued approved and carry signed payloads.
type WalkInService struct {
	events   ports.EventRepository
	tickets  ports.CredentialRepository
	issuer   *integrity.Issuer
	renderer ports.Renderer
	cache    ports.SeatCache
	locks    *EventLocks
	log      *logrus.Entry
}

func NewWalkInService(
	events ports.EventRepository,
	tickets ports.CredentialRepository,
	issuer *integrity.Issuer,
	renderer ports.Renderer,
	cache ports.SeatCache,
	locks *EventLocks,
	log *logrus.Entry,
) *WalkInService {
	if locks == nil {
		locks = NewEventLocks()
	}
	return &WalkInService{
		events:   events,
		tickets:  tickets,
		issuer:   issuer,
		renderer: renderer,
		cache:    cache,
		locks:    locks,
		log:      log,
	}
}

func (s *WalkInService) Generate(ctx context.Context, req WalkInRequest) (*WalkInResponse, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event id", domain.ErrInvalidInput)
	}
	if req.Quantity < 1 || req.Quantity > maxWalkInBatch {
		return nil, fmt.Errorf("%w: quantity must be between 1 and %d", domain.ErrInvalidInput, maxWalkInBatch)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: negative price", domain.ErrInvalidInput)
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = "General"
	}

	unlock := s.locks.Lock(eventID)
	defer unlock()

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", eventID, err)
	}
	if event.AvailableSeats < req.Quantity {
		return nil, fmt.Errorf("%w: %d left", domain.ErrInsufficientCapacity, event.AvailableSeats)
	}

	seq, err := s.tickets.NextSequence(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("next sequence: %w", err)
	}

	now := time.Now().UTC()
	creds := make([]*domain.Credential, 0, req.Quantity)
	issued := make([]IssuedCredential, 0, req.Quantity)
	for i := 0; i < req.Quantity; i++ {
		approvedAt := now
		c := &domain.Credential{
			ID:            uuid.New(),
			Kind:          domain.KindWalkIn,
			EventID:       eventID,
			PaymentStatus: domain.PaymentApproved,
			EntryStatus:   domain.EntryOutside,
			Version:       1,
			CreatedAt:     now,
			ApprovedAt:    &approvedAt,
			Ticket: &domain.TicketDetails{
				EventName:     event.Name,
				Sequence:      seq + i,
				Category:      category,
				Price:         req.Price,
				PaymentMethod: "cash",
				SaleType:      domain.SaleBoxOffice,
			},
		}
		out, err := s.issuer.IssueCredential(c)
		if err != nil {
			return nil, fmt.Errorf("issue walk-in ticket: %w", err)
		}
		creds = append(creds, c)
		issued = append(issued, IssuedCredential{Credential: c, QRImage: out.QRImage})
	}

	if err := s.events.AdjustAvailableSeats(ctx, eventID, -req.Quantity); err != nil {
		return nil, fmt.Errorf("reserve capacity: %w", err)
	}
	if err := s.tickets.CreateBatch(ctx, creds); err != nil {
		if rerr := s.events.AdjustAvailableSeats(ctx, eventID, req.Quantity); rerr != nil {
			s.log.WithError(rerr).WithField("event_id", eventID).Error("failed to return capacity")
		}
		return nil, fmt.Errorf("store walk-in tickets: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, eventID); err != nil {
			s.log.WithError(err).Warn("seat cache invalidation failed")
		}
	}
	metrics.CredentialsIssued.WithLabelValues(string(domain.KindWalkIn)).Add(float64(req.Quantity))

	s.log.WithFields(logrus.Fields{
		"event_id": eventID,
		"quantity": req.Quantity,
		"category": category,
	}).Info("walk-in tickets generated")

	return &WalkInResponse{Quantity: req.Quantity, Tickets: issued}, nil
}

// Image renders the thermal-printer ticket of a walk-in credential.
func (s *WalkInService) Image(ctx context.Context, id uuid.UUID) ([]byte, error) {
	c, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w", id, err)
	}
	if c.Kind != domain.KindWalkIn {
		return nil, fmt.Errorf("ticket %s is not a walk-in ticket: %w", id, domain.ErrNotFound)
	}
	event, err := s.events.GetByID(ctx, c.EventID)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", c.EventID, err)
	}
	qr, err := s.issuer.Render(c.QRPayload)
	if err != nil {
		return nil, err
	}
	return s.renderer.ThermalPNG(c, event, qr)
}
