package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
)

type EventStore struct {
	mu     sync.RWMutex
	events map[uuid.UUID]domain.Event
}

func NewEventStore() *EventStore {
	return &EventStore{events: make(map[uuid.UUID]domain.Event)}
}

func copyEvent(e domain.Event) *domain.Event {
	e.SeatLayout.Tables = append([]domain.Table(nil), e.SeatLayout.Tables...)
	e.SeatLayout.GeneralZones = append([]domain.GeneralZone(nil), e.SeatLayout.GeneralZones...)
	return &e
}

func (s *EventStore) Create(_ context.Context, event *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = *copyEvent(*event)
	return nil
}

func (s *EventStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyEvent(e), nil
}

func (s *EventStore) List(_ context.Context) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, *copyEvent(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *EventStore) Update(_ context.Context, event *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.ID]; !ok {
		return domain.ErrNotFound
	}
	s.events[event.ID] = *copyEvent(*event)
	return nil
}

func (s *EventStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *EventStore) AdjustAvailableSeats(_ context.Context, id uuid.UUID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	if e.AvailableSeats+delta < 0 {
		return domain.ErrInsufficientCapacity
	}
	e.AvailableSeats += delta
	s.events[id] = e
	return nil
}

type CategoryStore struct {
	mu         sync.RWMutex
	categories map[uuid.UUID]domain.Category
}

func NewCategoryStore() *CategoryStore {
	return &CategoryStore{categories: make(map[uuid.UUID]domain.Category)}
}

func (s *CategoryStore) Create(_ context.Context, c *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = *c
	return nil
}

func (s *CategoryStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s *CategoryStore) List(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *CategoryStore) Update(_ context.Context, c *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return domain.ErrNotFound
	}
	s.categories[c.ID] = *c
	return nil
}

func (s *CategoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

type AccreditationCategoryStore struct {
	mu         sync.RWMutex
	categories map[uuid.UUID]domain.AccreditationCategory
}

func NewAccreditationCategoryStore() *AccreditationCategoryStore {
	return &AccreditationCategoryStore{categories: make(map[uuid.UUID]domain.AccreditationCategory)}
}

func (s *AccreditationCategoryStore) Create(_ context.Context, c *domain.AccreditationCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	cp.Zones = append([]string(nil), c.Zones...)
	s.categories[c.ID] = cp
	return nil
}

func (s *AccreditationCategoryStore) GetByID(_ context.Context, id uuid.UUID) (*domain.AccreditationCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c.Zones = append([]string(nil), c.Zones...)
	return &c, nil
}

func (s *AccreditationCategoryStore) List(_ context.Context) ([]domain.AccreditationCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AccreditationCategory, 0, len(s.categories))
	for _, c := range s.categories {
		c.Zones = append([]string(nil), c.Zones...)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *AccreditationCategoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

type AdminStore struct {
	mu     sync.RWMutex
	admins map[string]domain.Admin
}

func NewAdminStore() *AdminStore {
	return &AdminStore{admins: make(map[string]domain.Admin)}
}

func (s *AdminStore) GetByUsername(_ context.Context, username string) (*domain.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.admins[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (s *AdminStore) Create(_ context.Context, admin *domain.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[admin.Username]; ok {
		return domain.ErrAlreadyExists
	}
	s.admins[admin.Username] = *admin
	return nil
}

func (s *AdminStore) List(_ context.Context) ([]domain.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Admin, 0, len(s.admins))
	for _, a := range s.admins {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *AdminStore) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[username]; !ok {
		return domain.ErrNotFound
	}
	delete(s.admins, username)
	return nil
}
