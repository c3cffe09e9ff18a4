package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `
	INSERT INTO categories (id, name, slug, color, icon, sort_order, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Slug, c.Color, c.Icon, c.Order, c.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: category slug %q already exists", domain.ErrInvalidInput, c.Slug)
	}
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := `SELECT id, name, slug, color, icon, sort_order, created_at FROM categories WHERE id = $1`

	var c domain.Category
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Slug, &c.Color, &c.Icon, &c.Order, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load category %s: %w", id, err)
	}
	return &c, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slug, color, icon, sort_order, created_at FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Color, &c.Icon, &c.Order, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	query := `UPDATE categories SET name = $1, slug = $2, color = $3, icon = $4, sort_order = $5 WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query, c.Name, c.Slug, c.Color, c.Icon, c.Order, c.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: category slug %q already exists", domain.ErrInvalidInput, c.Slug)
	}
	if err != nil {
		return fmt.Errorf("failed to update category %s: %w", c.ID, err)
	}
	return expectOneRow(res)
}

func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category %s: %w", id, err)
	}
	return expectOneRow(res)
}

type AccreditationCategoryRepository struct {
	db *sql.DB
}

func NewAccreditationCategoryRepository(db *sql.DB) *AccreditationCategoryRepository {
	return &AccreditationCategoryRepository{db: db}
}

func (r *AccreditationCategoryRepository) Create(ctx context.Context, c *domain.AccreditationCategory) error {
	query := `
	INSERT INTO accreditation_categories (id, name, color, zones, capacity, description, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Color, pq.Array(c.Zones), c.Capacity, c.Description, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert accreditation category: %w", err)
	}
	return nil
}

func (r *AccreditationCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AccreditationCategory, error) {
	query := `SELECT id, name, color, zones, capacity, description, created_at FROM accreditation_categories WHERE id = $1`

	var c domain.AccreditationCategory
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Color, pq.Array(&c.Zones), &c.Capacity, &c.Description, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load accreditation category %s: %w", id, err)
	}
	return &c, nil
}

func (r *AccreditationCategoryRepository) List(ctx context.Context) ([]domain.AccreditationCategory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, color, zones, capacity, description, created_at FROM accreditation_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accreditation categories: %w", err)
	}
	defer rows.Close()

	var out []domain.AccreditationCategory
	for rows.Next() {
		var c domain.AccreditationCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, pq.Array(&c.Zones), &c.Capacity, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *AccreditationCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accreditation_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete accreditation category %s: %w", id, err)
	}
	return expectOneRow(res)
}

type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	var a domain.Admin
	err := r.db.QueryRowContext(ctx,
		`SELECT username, password_hash, role, created_at FROM admins WHERE username = $1`, username,
	).Scan(&a.Username, &a.PasswordHash, &a.Role, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}
	return &a, nil
}

func (r *AdminRepository) Create(ctx context.Context, a *domain.Admin) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admins (username, password_hash, role, created_at) VALUES ($1, $2, $3, $4)`,
		a.Username, a.PasswordHash, a.Role, a.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: user %q", domain.ErrAlreadyExists, a.Username)
	}
	if err != nil {
		return fmt.Errorf("failed to insert admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) List(ctx context.Context) ([]domain.Admin, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT username, password_hash, role, created_at FROM admins ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	var out []domain.Admin
	for rows.Next() {
		var a domain.Admin
		if err := rows.Scan(&a.Username, &a.PasswordHash, &a.Role, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AdminRepository) Delete(ctx context.Context, username string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admins WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("failed to delete admin %s: %w", username, err)
	}
	return expectOneRow(res)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
