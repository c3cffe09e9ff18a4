package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
)

type PaymentMethodRepository struct {
	db *sql.DB
}

func NewPaymentMethodRepository(db *sql.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

const paymentMethodColumns = `id, name, type, details, icon, image_url, sort_order, active, created_at`

func scanPaymentMethod(row rowScanner) (*domain.PaymentMethod, error) {
	var m domain.PaymentMethod
	err := row.Scan(&m.ID, &m.Name, &m.Type, &m.Details, &m.Icon, &m.ImageURL, &m.Order, &m.Active, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PaymentMethodRepository) Create(ctx context.Context, m *domain.PaymentMethod) error {
	query := `
	INSERT INTO payment_methods (` + paymentMethodColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query, m.ID, m.Name, m.Type, m.Details, m.Icon, m.ImageURL, m.Order, m.Active, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert payment method: %w", err)
	}
	return nil
}

func (r *PaymentMethodRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMethod, error) {
	m, err := scanPaymentMethod(r.db.QueryRowContext(ctx,
		`SELECT `+paymentMethodColumns+` FROM payment_methods WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment method %s: %w", id, err)
	}
	return m, nil
}

func (r *PaymentMethodRepository) List(ctx context.Context) ([]domain.PaymentMethod, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+paymentMethodColumns+` FROM payment_methods ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	defer rows.Close()

	var out []domain.PaymentMethod
	for rows.Next() {
		m, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *PaymentMethodRepository) Update(ctx context.Context, m *domain.PaymentMethod) error {
	query := `
	UPDATE payment_methods
	SET name = $1, type = $2, details = $3, icon = $4, image_url = $5, sort_order = $6, active = $7
	WHERE id = $8
	`
	res, err := r.db.ExecContext(ctx, query, m.Name, m.Type, m.Details, m.Icon, m.ImageURL, m.Order, m.Active, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update payment method %s: %w", m.ID, err)
	}
	return expectOneRow(res)
}

func (r *PaymentMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payment_methods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payment method %s: %w", id, err)
	}
	return expectOneRow(res)
}

type TableCategoryRepository struct {
	db *sql.DB
}

func NewTableCategoryRepository(db *sql.DB) *TableCategoryRepository {
	return &TableCategoryRepository{db: db}
}

func (r *TableCategoryRepository) Create(ctx context.Context, c *domain.TableCategory) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO table_categories (id, name, color, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Color, c.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: table category %q", domain.ErrAlreadyExists, c.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to insert table category: %w", err)
	}
	return nil
}

func (r *TableCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TableCategory, error) {
	var c domain.TableCategory
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, color, created_at FROM table_categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Color, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load table category %s: %w", id, err)
	}
	return &c, nil
}

func (r *TableCategoryRepository) List(ctx context.Context) ([]domain.TableCategory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, color, created_at FROM table_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list table categories: %w", err)
	}
	defer rows.Close()

	var out []domain.TableCategory
	for rows.Next() {
		var c domain.TableCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *TableCategoryRepository) Update(ctx context.Context, c *domain.TableCategory) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE table_categories SET name = $1, color = $2 WHERE id = $3`, c.Name, c.Color, c.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: table category %q", domain.ErrAlreadyExists, c.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to update table category %s: %w", c.ID, err)
	}
	return expectOneRow(res)
}

func (r *TableCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM table_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete table category %s: %w", id, err)
	}
	return expectOneRow(res)
}

// SiteConfigRepository keeps the site document in a single row with id 1.
type SiteConfigRepository struct {
	db *sql.DB
}

func NewSiteConfigRepository(db *sql.DB) *SiteConfigRepository {
	return &SiteConfigRepository{db: db}
}

func (r *SiteConfigRepository) Get(ctx context.Context) (*domain.SiteConfig, error) {
	var (
		c     domain.SiteConfig
		links []byte
	)
	err := r.db.QueryRowContext(ctx, `
	SELECT banner, logo, primary_color, secondary_color, accent_color, social_links, updated_at
	FROM site_config WHERE id = 1
	`).Scan(&c.Banner, &c.Logo, &c.PrimaryColor, &c.SecondaryColor, &c.AccentColor, &links, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load site config: %w", err)
	}
	if err := json.Unmarshal(links, &c.SocialLinks); err != nil {
		return nil, fmt.Errorf("decode social links: %w", err)
	}
	return &c, nil
}

func (r *SiteConfigRepository) Save(ctx context.Context, c *domain.SiteConfig) error {
	links, err := json.Marshal(c.SocialLinks)
	if err != nil {
		return fmt.Errorf("encode social links: %w", err)
	}
	query := `
	INSERT INTO site_config (id, banner, logo, primary_color, secondary_color, accent_color, social_links, updated_at)
	VALUES (1, $1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE SET
		banner = EXCLUDED.banner,
		logo = EXCLUDED.logo,
		primary_color = EXCLUDED.primary_color,
		secondary_color = EXCLUDED.secondary_color,
		accent_color = EXCLUDED.accent_color,
		social_links = EXCLUDED.social_links,
		updated_at = EXCLUDED.updated_at
	`
	_, err = r.db.ExecContext(ctx, query, c.Banner, c.Logo, c.PrimaryColor, c.SecondaryColor, c.AccentColor, links, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save site config: %w", err)
	}
	return nil
}
