package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
	"github.com/srgjo27/feria_ticket/internal/core/ports"
)

// reservationSeconds is echoed to clients; nothing enforces it.
const reservationSeconds = 600

type SeatService struct {
	events  ports.EventRepository
	tickets ports.CredentialRepository
	cache   ports.SeatCache
	log     *logrus.Entry
}

func NewSeatService(events ports.EventRepository, tickets ports.CredentialRepository, cache ports.SeatCache, log *logrus.Entry) *SeatService {
	return &SeatService{events: events, tickets: tickets, cache: cache, log: log}
}

// Configure stores a new layout and resets capacity to the layout's size
// minus the units already sold.
func (s *SeatService) Configure(ctx context.Context, eventID uuid.UUID, layout domain.SeatLayout) (*domain.SeatMap, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", eventID, err)
	}

	sold, err := s.tickets.List(ctx, domain.CredentialFilter{EventID: &eventID})
	if err != nil {
		return nil, fmt.Errorf("sold tickets: %w", err)
	}
	held := 0
	for _, c := range sold {
		if c.PaymentStatus != domain.PaymentRejected {
			held++
		}
	}

	event.SeatLayout = layout
	event.AvailableSeats = layout.Capacity() - held
	if event.AvailableSeats < 0 {
		event.AvailableSeats = 0
	}
	if err := s.events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("store layout: %w", err)
	}
	s.invalidate(ctx, eventID)

	s.log.WithFields(logrus.Fields{
		"event_id": eventID,
		"type":     layout.Type,
		"capacity": layout.Capacity(),
	}).Info("seat layout configured")

	return s.build(ctx, event)
}

// Map returns the seat map, served from cache when possible.
func (s *SeatService) Map(ctx context.Context, eventID uuid.UUID) (*domain.SeatMap, error) {
	if s.cache != nil {
		m, ok, err := s.cache.Get(ctx, eventID)
		if err != nil {
			s.log.WithError(err).Warn("seat cache read failed")
		} else if ok {
			return m, nil
		}
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", eventID, err)
	}
	m, err := s.build(ctx, event)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, eventID, m); err != nil {
			s.log.WithError(err).Warn("seat cache write failed")
		}
	}
	return m, nil
}

func (s *SeatService) build(ctx context.Context, event *domain.Event) (*domain.SeatMap, error) {
	held, err := s.tickets.HeldSeats(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("held seats: %w", err)
	}

	m := &domain.SeatMap{
		EventID:       event.ID.String(),
		Type:          event.SeatLayout.Type,
		Layout:        event.SeatLayout,
		TotalCapacity: event.SeatLayout.Capacity(),
		Occupied:      []string{},
		Pending:       []string{},
		Available:     event.AvailableSeats,
	}
	if m.Type == "" {
		m.Type = domain.LayoutGeneral
	}
	for _, h := range held {
		if h.PaymentStatus == domain.PaymentApproved {
			m.Occupied = append(m.Occupied, h.Seat)
		} else {
			m.Pending = append(m.Pending, h.Seat)
		}
	}
	return m, nil
}

// Reserve checks the requested seats against the current map. The returned
// expiry is advisory: nothing is held and Purchase re-checks every seat.
func (s *SeatService) Reserve(ctx context.Context, req domain.ReserveRequest) (*domain.Reservation, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event id", domain.ErrInvalidInput)
	}
	if len(req.Seats) == 0 {
		return nil, fmt.Errorf("%w: no seats selected", domain.ErrInvalidInput)
	}

	m, err := s.Map(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var taken []string
	for _, seat := range req.Seats {
		if m.Layout.HasTables() && !m.Layout.HasSeat(seat) {
			return nil, fmt.Errorf("%w: seat %s does not exist", domain.ErrInvalidInput, seat)
		}
		if m.Taken(seat) {
			taken = append(taken, seat)
		}
	}
	if len(taken) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrSeatsTaken, strings.Join(taken, ", "))
	}

	session := req.SessionID
	if session == "" {
		session = uuid.NewString()
	}
	return &domain.Reservation{
		Seats:     append([]string(nil), req.Seats...),
		SessionID: session,
		ExpiresIn: reservationSeconds,
	}, nil
}

func (s *SeatService) invalidate(ctx context.Context, eventID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		s.log.WithError(err).WithField("event_id", eventID).Warn("seat cache invalidation failed")
	}
}
