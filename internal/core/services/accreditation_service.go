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

type AccreditationCategoryRequest struct {
	Name        string   `json:"name"`
	Color       string   `json:"color"`
	Zones       []string `json:"zones"`
	Capacity    int      `json:"capacity"`
	Description string   `json:"description"`
}

type AccreditationRequest struct {
	EventID      string `json:"event_id"`
	CategoryID   string `json:"category_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Organization string `json:"organization"`
	Role         string `json:"role"`
}

// AccreditationService issues staff, press and guest badges. Badges are
// issued by operators and need no payment approval.
type AccreditationService struct {
	events         ports.EventRepository
	accreditations ports.CredentialRepository
	categories     ports.AccreditationCategoryRepository
	issuer         *integrity.Issuer
	renderer       ports.Renderer
	locks          *keyLock
	log            *logrus.Entry
}

func NewAccreditationService(
	events ports.EventRepository,
	accreditations ports.CredentialRepository,
	categories ports.AccreditationCategoryRepository,
	issuer *integrity.Issuer,
	renderer ports.Renderer,
	log *logrus.Entry,
) *AccreditationService {
	return &AccreditationService{
		events:         events,
		accreditations: accreditations,
		categories:     categories,
		issuer:         issuer,
		renderer:       renderer,
		locks:          newKeyLock(),
		log:            log,
	}
}

func (s *AccreditationService) CreateCategory(ctx context.Context, req AccreditationCategoryRequest) (*domain.AccreditationCategory, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrInvalidInput)
	}
	if req.Capacity < 0 {
		return nil, fmt.Errorf("%w: negative capacity", domain.ErrInvalidInput)
	}
	zones := make([]string, 0, len(req.Zones))
	for _, z := range req.Zones {
		if z = strings.TrimSpace(z); z != "" {
			zones = append(zones, z)
		}
	}

	cat := &domain.AccreditationCategory{
		ID:          uuid.New(),
		Name:        name,
		Color:       req.Color,
		Zones:       zones,
		Capacity:    req.Capacity,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if cat.Color == "" {
		cat.Color = "#8B5CF6"
	}
	if err := s.categories.Create(ctx, cat); err != nil {
		return nil, fmt.Errorf("store accreditation category: %w", err)
	}
	return cat, nil
}

func (s *AccreditationService) ListCategories(ctx context.Context) ([]domain.AccreditationCategory, error) {
	return s.categories.List(ctx)
}

func (s *AccreditationService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categories.Delete(ctx, id)
}

// Create issues an approved badge. A category with a positive capacity
// limits how many badges of it one event may have.
func (s *AccreditationService) Create(ctx context.Context, req AccreditationRequest) (*IssuedCredential, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event id", domain.ErrInvalidInput)
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid category id", domain.ErrInvalidInput)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: holder name is required", domain.ErrInvalidInput)
	}

	unlock := s.locks.Lock(eventID.String() + "/" + categoryID.String())
	defer unlock()

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", eventID, err)
	}
	cat, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("accreditation category %s: %w", categoryID, err)
	}

	if cat.Capacity > 0 {
		existing, err := s.accreditations.List(ctx, domain.CredentialFilter{EventID: &eventID})
		if err != nil {
			return nil, fmt.Errorf("count accreditations: %w", err)
		}
		used := 0
		for _, c := range existing {
			if c.Accreditation != nil && c.Accreditation.CategoryID == categoryID {
				used++
			}
		}
		if used >= cat.Capacity {
			return nil, fmt.Errorf("%w: category %s is full (%d)", domain.ErrInsufficientCapacity, cat.Name, cat.Capacity)
		}
	}

	now := time.Now().UTC()
	c := &domain.Credential{
		ID:            uuid.New(),
		Kind:          domain.KindAccreditation,
		EventID:       event.ID,
		PaymentStatus: domain.PaymentApproved,
		EntryStatus:   domain.EntryOutside,
		Holder: domain.Holder{
			Name:  name,
			Email: normalizeEmail(req.Email),
			Phone: strings.TrimSpace(req.Phone),
		},
		Version:    1,
		CreatedAt:  now,
		ApprovedAt: &now,
		Accreditation: &domain.AccreditationDetails{
			CategoryID:   cat.ID,
			Category:     cat.Name,
			Color:        cat.Color,
			Zones:        append([]string(nil), cat.Zones...),
			Organization: strings.TrimSpace(req.Organization),
			Role:         strings.TrimSpace(req.Role),
		},
	}

	out, err := s.issuer.IssueCredential(c)
	if err != nil {
		return nil, fmt.Errorf("issue accreditation: %w", err)
	}
	if err := s.accreditations.CreateBatch(ctx, []*domain.Credential{c}); err != nil {
		return nil, fmt.Errorf("store accreditation: %w", err)
	}
	metrics.CredentialsIssued.WithLabelValues(string(domain.KindAccreditation)).Inc()

	s.log.WithFields(logrus.Fields{
		"credential_id": c.ID,
		"event_id":      eventID,
		"category":      cat.Name,
	}).Info("accreditation issued")

	return &IssuedCredential{Credential: c, QRImage: out.QRImage}, nil
}

// List returns the badges of one event, or all badges when eventID is empty.
func (s *AccreditationService) List(ctx context.Context, eventID string) ([]domain.Credential, error) {
	var filter domain.CredentialFilter
	if eventID != "" {
		id, err := uuid.Parse(eventID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid event id", domain.ErrInvalidInput)
		}
		filter.EventID = &id
	}
	return s.accreditations.List(ctx, filter)
}

func (s *AccreditationService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.accreditations.Delete(ctx, id)
}

func (s *AccreditationService) PDF(ctx context.Context, id uuid.UUID) ([]byte, error) {
	c, err := s.accreditations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("accreditation %s: %w", id, err)
	}
	event, err := s.events.GetByID(ctx, c.EventID)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", c.EventID, err)
	}
	badge, err := s.badge(c)
	if err != nil {
		return nil, err
	}
	return s.renderer.AccreditationPDF(event, []ports.Badge{badge})
}

// EventPDF prints every badge of an event, one per page.
func (s *AccreditationService) EventPDF(ctx context.Context, eventID uuid.UUID) ([]byte, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", eventID, err)
	}
	creds, err := s.accreditations.List(ctx, domain.CredentialFilter{EventID: &eventID})
	if err != nil {
		return nil, fmt.Errorf("list accreditations: %w", err)
	}
	if len(creds) == 0 {
		return nil, fmt.Errorf("no accreditations for event %s: %w", eventID, domain.ErrNotFound)
	}

	badges := make([]ports.Badge, 0, len(creds))
	for i := range creds {
		b, err := s.badge(&creds[i])
		if err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return s.renderer.AccreditationPDF(event, badges)
}

func (s *AccreditationService) badge(c *domain.Credential) (ports.Badge, error) {
	qr, err := s.issuer.Render(c.QRPayload)
	if err != nil {
		return ports.Badge{}, fmt.Errorf("render badge qr %s: %w", c.ID, err)
	}
	return ports.Badge{Credential: c, QR: qr}, nil
}
