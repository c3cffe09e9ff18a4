package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
)

type PaymentMethodStore struct {
	mu      sync.RWMutex
	methods map[uuid.UUID]domain.PaymentMethod
}

func NewPaymentMethodStore() *PaymentMethodStore {
	return &PaymentMethodStore{methods: make(map[uuid.UUID]domain.PaymentMethod)}
}

func (s *PaymentMethodStore) Create(_ context.Context, m *domain.PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods[m.ID] = *m
	return nil
}

func (s *PaymentMethodStore) GetByID(_ context.Context, id uuid.UUID) (*domain.PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.methods[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

func (s *PaymentMethodStore) List(_ context.Context) ([]domain.PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PaymentMethod, 0, len(s.methods))
	for _, m := range s.methods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *PaymentMethodStore) Update(_ context.Context, m *domain.PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.methods[m.ID]; !ok {
		return domain.ErrNotFound
	}
	s.methods[m.ID] = *m
	return nil
}

func (s *PaymentMethodStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.methods[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.methods, id)
	return nil
}

type TableCategoryStore struct {
	mu         sync.RWMutex
	categories map[uuid.UUID]domain.TableCategory
}

func NewTableCategoryStore() *TableCategoryStore {
	return &TableCategoryStore{categories: make(map[uuid.UUID]domain.TableCategory)}
}

func (s *TableCategoryStore) Create(_ context.Context, c *domain.TableCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.Name == c.Name {
			return domain.ErrAlreadyExists
		}
	}
	s.categories[c.ID] = *c
	return nil
}

func (s *TableCategoryStore) GetByID(_ context.Context, id uuid.UUID) (*domain.TableCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s *TableCategoryStore) List(_ context.Context) ([]domain.TableCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TableCategory, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *TableCategoryStore) Update(_ context.Context, c *domain.TableCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, existing := range s.categories {
		if id != c.ID && existing.Name == c.Name {
			return domain.ErrAlreadyExists
		}
	}
	s.categories[c.ID] = *c
	return nil
}

func (s *TableCategoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

type SiteConfigStore struct {
	mu  sync.RWMutex
	cfg *domain.SiteConfig
}

func NewSiteConfigStore() *SiteConfigStore {
	return &SiteConfigStore{}
}

func (s *SiteConfigStore) Get(_ context.Context) (*domain.SiteConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cfg == nil {
		return nil, domain.ErrNotFound
	}
	return s.cfg.Clone(), nil
}

func (s *SiteConfigStore) Save(_ context.Context, cfg *domain.SiteConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg.Clone()
	return nil
}
