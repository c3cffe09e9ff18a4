package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
	"github.com/srgjo27/feria_ticket/internal/core/ports"
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Older admin clients send the payment type in Spanish.
var paymentTypeAliases = map[string]domain.PaymentMethodType{
	"banco":    domain.PaymentBank,
	"movil":    domain.PaymentMobile,
	"efectivo": domain.PaymentCash,
	"otro":     domain.PaymentOther,
}

type SiteConfigRequest struct {
	Banner         string            `json:"banner"`
	Logo           string            `json:"logo"`
	PrimaryColor   string            `json:"primary_color"`
	SecondaryColor string            `json:"secondary_color"`
	AccentColor    string            `json:"accent_color"`
	SocialLinks    map[string]string `json:"social_links"`
}

type PaymentMethodRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Details  string `json:"details"`
	Icon     string `json:"icon"`
	ImageURL string `json:"image_url"`
	Order    int    `json:"order"`
	Active   *bool  `json:"active,omitempty"`
}

type TableCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// SettingsService manages the site document, the payment methods buyers can
// choose and the categories tables are labelled with.
type SettingsService struct {
	config  ports.SiteConfigRepository
	methods ports.PaymentMethodRepository
	tables  ports.TableCategoryRepository
	now     func() time.Time
	log     *logrus.Entry
}

func NewSettingsService(
	config ports.SiteConfigRepository,
	methods ports.PaymentMethodRepository,
	tables ports.TableCategoryRepository,
	log *logrus.Entry,
) *SettingsService {
	return &SettingsService{config: config, methods: methods, tables: tables, now: time.Now, log: log}
}

// SiteConfig returns the site document, storing the defaults on first read.
func (s *SettingsService) SiteConfig(ctx context.Context) (*domain.SiteConfig, error) {
	cfg, err := s.config.Get(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load site config: %w", err)
	}

	cfg = domain.DefaultSiteConfig(s.now().UTC())
	if err := s.config.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("seed site config: %w", err)
	}
	s.log.Info("default site config stored")
	return cfg, nil
}

// UpdateSiteConfig replaces the whole document. Empty colors fall back to the
// defaults and missing networks are stored blank.
func (s *SettingsService) UpdateSiteConfig(ctx context.Context, req SiteConfigRequest) (*domain.SiteConfig, error) {
	cfg := domain.DefaultSiteConfig(s.now().UTC())
	cfg.Banner = strings.TrimSpace(req.Banner)
	cfg.Logo = strings.TrimSpace(req.Logo)

	for _, c := range []struct {
		name string
		in   string
		dst  *string
	}{
		{"primary_color", req.PrimaryColor, &cfg.PrimaryColor},
		{"secondary_color", req.SecondaryColor, &cfg.SecondaryColor},
		{"accent_color", req.AccentColor, &cfg.AccentColor},
	} {
		v := strings.TrimSpace(c.in)
		if v == "" {
			continue
		}
		if !hexColor.MatchString(v) {
			return nil, fmt.Errorf("%w: %s must be a hex color", domain.ErrInvalidInput, c.name)
		}
		*c.dst = v
	}

	for network, link := range req.SocialLinks {
		key := strings.ToLower(strings.TrimSpace(network))
		if _, known := cfg.SocialLinks[key]; !known {
			return nil, fmt.Errorf("%w: unknown social network %q", domain.ErrInvalidInput, network)
		}
		cfg.SocialLinks[key] = strings.TrimSpace(link)
	}

	if err := s.config.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("save site config: %w", err)
	}
	s.log.Info("site config updated")
	return cfg, nil
}

// ListPaymentMethods returns every method, or only the active ones for buyers.
func (s *SettingsService) ListPaymentMethods(ctx context.Context, activeOnly bool) ([]domain.PaymentMethod, error) {
	methods, err := s.methods.List(ctx)
	if err != nil {
		return nil, err
	}
	if !activeOnly {
		return methods, nil
	}
	out := methods[:0]
	for _, m := range methods {
		if m.Active {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r PaymentMethodRequest) paymentType() (domain.PaymentMethodType, error) {
	raw := strings.ToLower(strings.TrimSpace(r.Type))
	if raw == "" {
		return domain.PaymentBank, nil
	}
	if t, ok := paymentTypeAliases[raw]; ok {
		return t, nil
	}
	t := domain.PaymentMethodType(raw)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown payment type %q", domain.ErrInvalidInput, r.Type)
	}
	return t, nil
}

func (s *SettingsService) CreatePaymentMethod(ctx context.Context, req PaymentMethodRequest) (*domain.PaymentMethod, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: payment method name is required", domain.ErrInvalidInput)
	}
	typ, err := req.paymentType()
	if err != nil {
		return nil, err
	}

	m := &domain.PaymentMethod{
		ID:        uuid.New(),
		Name:      name,
		Type:      typ,
		Details:   strings.TrimSpace(req.Details),
		Icon:      req.Icon,
		ImageURL:  req.ImageURL,
		Order:     req.Order,
		Active:    req.Active == nil || *req.Active,
		CreatedAt: s.now().UTC(),
	}
	if err := s.methods.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("store payment method: %w", err)
	}
	s.log.WithField("payment_method", m.Name).Info("payment method created")
	return m, nil
}

func (s *SettingsService) UpdatePaymentMethod(ctx context.Context, id uuid.UUID, req PaymentMethodRequest) (*domain.PaymentMethod, error) {
	m, err := s.methods.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("payment method %s: %w", id, err)
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		m.Name = name
	}
	if req.Type != "" {
		if m.Type, err = req.paymentType(); err != nil {
			return nil, err
		}
	}
	m.Details = strings.TrimSpace(req.Details)
	m.Icon = req.Icon
	m.ImageURL = req.ImageURL
	m.Order = req.Order
	if req.Active != nil {
		m.Active = *req.Active
	}
	if err := s.methods.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update payment method: %w", err)
	}
	return m, nil
}

func (s *SettingsService) DeletePaymentMethod(ctx context.Context, id uuid.UUID) error {
	return s.methods.Delete(ctx, id)
}

func (s *SettingsService) ListTableCategories(ctx context.Context) ([]domain.TableCategory, error) {
	return s.tables.List(ctx)
}

func tableColor(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "#10B981", nil
	}
	if !hexColor.MatchString(v) {
		return "", fmt.Errorf("%w: color must be a hex color", domain.ErrInvalidInput)
	}
	return v, nil
}

func (s *SettingsService) CreateTableCategory(ctx context.Context, req TableCategoryRequest) (*domain.TableCategory, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: table category name is required", domain.ErrInvalidInput)
	}
	color, err := tableColor(req.Color)
	if err != nil {
		return nil, err
	}
	c := &domain.TableCategory{ID: uuid.New(), Name: name, Color: color, CreatedAt: s.now().UTC()}
	if err := s.tables.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("store table category: %w", err)
	}
	return c, nil
}

func (s *SettingsService) UpdateTableCategory(ctx context.Context, id uuid.UUID, req TableCategoryRequest) (*domain.TableCategory, error) {
	c, err := s.tables.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("table category %s: %w", id, err)
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		c.Name = name
	}
	if req.Color != "" {
		if c.Color, err = tableColor(req.Color); err != nil {
			return nil, err
		}
	}
	if err := s.tables.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update table category: %w", err)
	}
	return c, nil
}

func (s *SettingsService) DeleteTableCategory(ctx context.Context, id uuid.UUID) error {
	return s.tables.Delete(ctx, id)
}
