package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
	"github.com/srgjo27/feria_ticket/internal/core/ports"
	"github.com/srgjo27/feria_ticket/internal/platform/metrics"
)

type DashboardStats struct {
	TotalEvents    int     `json:"total_events"`
	TicketsSold    int     `json:"tickets_sold"`
	Approved       int     `json:"approved"`
	Pending        int     `json:"pending"`
	Inside         int     `json:"inside"`
	Accreditations int     `json:"accreditations"`
	Revenue        float64 `json:"revenue"`
}

type Occupancy struct {
	EventID              uuid.UUID `json:"event_id"`
	EventName            string    `json:"event_name"`
	Capacity             int       `json:"capacity"`
	InsideTickets        int       `json:"inside_tickets"`
	InsideAccreditations int       `json:"inside_accreditations"`
	TotalInside          int       `json:"total_inside"`
	Percent              float64   `json:"percent"`
}

type Attendance struct {
	EventID         uuid.UUID      `json:"event_id"`
	Entries         int            `json:"entries"`
	Exits           int            `json:"exits"`
	UniqueAttendees int            `json:"unique_attendees"`
	ByCategory      map[string]int `json:"by_category"`
}

type StatsService struct {
	events         ports.EventRepository
	tickets        ports.CredentialRepository
	accreditations ports.CredentialRepository
	log            *logrus.Entry
}

func NewStatsService(events ports.EventRepository, tickets, accreditations ports.CredentialRepository, log *logrus.Entry) *StatsService {
	return &StatsService{events: events, tickets: tickets, accreditations: accreditations, log: log}
}

func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	tickets, err := s.tickets.List(ctx, domain.CredentialFilter{})
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	badges, err := s.accreditations.List(ctx, domain.CredentialFilter{})
	if err != nil {
		return nil, fmt.Errorf("list accreditations: %w", err)
	}

	out := &DashboardStats{TotalEvents: len(events), Accreditations: len(badges)}
	for _, t := range tickets {
		switch t.PaymentStatus {
		case domain.PaymentApproved:
			out.Approved++
			if t.Ticket != nil {
				out.Revenue += t.Ticket.Price
			}
		case domain.PaymentPending:
			out.Pending++
		default:
			continue
		}
		out.TicketsSold++
		if t.IsInside() {
			out.Inside++
		}
	}
	for _, b := range badges {
		if b.IsInside() {
			out.Inside++
		}
	}
	out.Revenue = math.Round(out.Revenue*100) / 100
	return out, nil
}

// Occupancy counts who is inside an event right now. Capacity is what is
// still for sale plus what has been sold.
func (s *StatsService) Occupancy(ctx context.Context, eventID uuid.UUID) (*Occupancy, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", eventID, err)
	}
	filter := domain.CredentialFilter{EventID: &eventID}
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	badges, err := s.accreditations.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list accreditations: %w", err)
	}

	out := &Occupancy{EventID: event.ID, EventName: event.Name, Capacity: event.AvailableSeats}
	for _, t := range tickets {
		if t.PaymentStatus != domain.PaymentRejected {
			out.Capacity++
		}
		if t.IsInside() {
			out.InsideTickets++
		}
	}
	for _, b := range badges {
		if b.IsInside() {
			out.InsideAccreditations++
		}
	}
	out.TotalInside = out.InsideTickets + out.InsideAccreditations
	if out.Capacity > 0 {
		out.Percent = math.Round(float64(out.InsideTickets)/float64(out.Capacity)*1000) / 10
	}
	return out, nil
}

func (s *StatsService) Attendance(ctx context.Context, eventID uuid.UUID) (*Attendance, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, fmt.Errorf("event %s: %w", eventID, err)
	}
	filter := domain.CredentialFilter{EventID: &eventID}
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	badges, err := s.accreditations.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list accreditations: %w", err)
	}

	out := &Attendance{EventID: eventID, ByCategory: map[string]int{}}
	for _, c := range append(tickets, badges...) {
		entered := false
		for _, a := range c.AccessHistory {
			switch a.Action {
			case domain.AccessEnter:
				out.Entries++
				entered = true
			case domain.AccessExit:
				out.Exits++
			}
		}
		if entered {
			out.UniqueAttendees++
			cat := c.CategoryName()
			if cat == "" {
				cat = "General"
			}
			out.ByCategory[cat]++
		}
	}
	return out, nil
}

// RunOccupancyRefresh keeps the attendees-inside gauge current until ctx is
// cancelled.
func (s *StatsService) RunOccupancyRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.WithField("interval", interval.String()).Info("occupancy refresh worker started")
	s.refreshOccupancy(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("occupancy refresh worker stopped")
			return
		case <-ticker.C:
			s.refreshOccupancy(ctx)
		}
	}
}

func (s *StatsService) refreshOccupancy(ctx context.Context) {
	events, err := s.events.List(ctx)
	if err != nil {
		s.log.WithError(err).Error("occupancy refresh: list events failed")
		return
	}

	for _, e := range events {
		occ, err := s.Occupancy(ctx, e.ID)
		if err != nil {
			s.log.WithError(err).WithField("event_id", e.ID).Warn("occupancy refresh failed")
			continue
		}
		metrics.AttendeesInside.WithLabelValues(e.ID.String()).Set(float64(occ.TotalInside))
	}
}
