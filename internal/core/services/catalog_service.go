package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
	"github.com/srgjo27/feria_ticket/internal/core/ports"
)

type EventRequest struct {
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	Date           string             `json:"date"`
	Time           string             `json:"time"`
	Location       string             `json:"location"`
	Category       string             `json:"category"`
	Price          float64            `json:"price"`
	ImageURL       string             `json:"image_url"`
	ExternalLink   string             `json:"external_link"`
	AvailableSeats int                `json:"available_seats"`
	SeatLayout     *domain.SeatLayout `json:"seat_layout,omitempty"`
}

type CategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
	Order int    `json:"order"`
}

type CatalogService struct {
	events     ports.EventRepository
	categories ports.CategoryRepository
	cache      ports.SeatCache
	log        *logrus.Entry
}

func NewCatalogService(events ports.EventRepository, categories ports.CategoryRepository, cache ports.SeatCache, log *logrus.Entry) *CatalogService {
	return &CatalogService{events: events, categories: categories, cache: cache, log: log}
}

func (s *CatalogService) CreateEvent(ctx context.Context, req EventRequest) (*domain.Event, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: event name is required", domain.ErrInvalidInput)
	}
	if req.Price < 0 || req.AvailableSeats < 0 {
		return nil, fmt.Errorf("%w: price and seats must not be negative", domain.ErrInvalidInput)
	}

	e := &domain.Event{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Date:           req.Date,
		Time:           req.Time,
		Location:       req.Location,
		Category:       req.Category,
		Price:          req.Price,
		ImageURL:       req.ImageURL,
		ExternalLink:   req.ExternalLink,
		AvailableSeats: req.AvailableSeats,
		SeatLayout:     domain.SeatLayout{Type: domain.LayoutGeneral},
		CreatedAt:      time.Now().UTC(),
	}
	if req.SeatLayout != nil {
		if err := req.SeatLayout.Validate(); err != nil {
			return nil, err
		}
		e.SeatLayout = *req.SeatLayout
		if c := e.SeatLayout.Capacity(); c > 0 && e.AvailableSeats == 0 {
			e.AvailableSeats = c
		}
	}

	if err := s.events.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("store event: %w", err)
	}
	s.log.WithField("event_id", e.ID).Info("event created")
	return e, nil
}

func (s *CatalogService) UpdateEvent(ctx context.Context, id uuid.UUID, patch domain.EventPatch) (*domain.Event, error) {
	if patch.Price != nil && *patch.Price < 0 {
		return nil, fmt.Errorf("%w: negative price", domain.ErrInvalidInput)
	}
	if patch.AvailableSeats != nil && *patch.AvailableSeats < 0 {
		return nil, fmt.Errorf("%w: negative seats", domain.ErrInvalidInput)
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: event name is required", domain.ErrInvalidInput)
	}

	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", id, err)
	}
	patch.Apply(e)
	if err := s.events.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	s.invalidate(ctx, id)
	return e, nil
}

func (s *CatalogService) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.log.WithField("event_id", id).Info("event deleted")
	return nil
}

func (s *CatalogService) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	return s.events.GetByID(ctx, id)
}

func (s *CatalogService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.events.List(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, req CategoryRequest) (*domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrInvalidInput)
	}
	c := &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		Slug:      Slugify(name),
		Color:     req.Color,
		Icon:      req.Icon,
		Order:     req.Order,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("store category: %w", err)
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req CategoryRequest) (*domain.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", id, err)
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		c.Name = name
		c.Slug = Slugify(name)
	}
	if req.Color != "" {
		c.Color = req.Color
	}
	if req.Icon != "" {
		c.Icon = req.Icon
	}
	c.Order = req.Order
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categories.Delete(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// Slugify lowercases name, strips accents and joins words with dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFD.String(strings.ToLower(name)) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (s *CatalogService) invalidate(ctx context.Context, eventID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		s.log.WithError(err).WithField("event_id", eventID).Warn("seat cache invalidation failed")
	}
}
