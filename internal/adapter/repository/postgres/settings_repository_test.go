package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/feria_ticket/internal/adapter/repository/postgres"
	"github.com/srgjo27/feria_ticket/internal/core/domain"
)

func TestSiteConfigRepository_MissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewSiteConfigRepository(db)

	mock.ExpectQuery(`FROM site_config WHERE id = 1`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSiteConfigRepository_SaveAndGet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewSiteConfigRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC)
	cfg := domain.DefaultSiteConfig(now)
	cfg.SocialLinks["instagram"] = "@feria"

	mock.ExpectExec(`INSERT INTO site_config .+ ON CONFLICT \(id\) DO UPDATE`).
		WithArgs("", "", "#FACC15", "#3B82F6", "#EF4444", sqlmock.AnyArg(), now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Save(ctx, cfg))

	mock.ExpectQuery(`FROM site_config WHERE id = 1`).
		WillReturnRows(sqlmock.NewRows([]string{"banner", "logo", "primary_color", "secondary_color", "accent_color", "social_links", "updated_at"}).
			AddRow("b.jpg", "", "#FACC15", "#3B82F6", "#EF4444", []byte(`{"instagram":"@feria","tiktok":""}`), now))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b.jpg", got.Banner)
	assert.Equal(t, map[string]string{"instagram": "@feria", "tiktok": ""}, got.SocialLinks)
	assert.Equal(t, now, got.UpdatedAt)
}

func TestPaymentMethodRepository_CreateAndList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewPaymentMethodRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	m := &domain.PaymentMethod{ID: uuid.New(), Name: "Pago Movil", Type: domain.PaymentMobile, Order: 1, Active: true, CreatedAt: now}

	mock.ExpectExec(`INSERT INTO payment_methods`).
		WithArgs(m.ID, "Pago Movil", domain.PaymentMobile, "", "", "", 1, true, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(ctx, m))

	mock.ExpectQuery(`FROM payment_methods ORDER BY sort_order, name`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "type", "details", "icon", "image_url", "sort_order", "active", "created_at"}).
			AddRow(m.ID.String(), "Pago Movil", "mobile", "0414", "", "", 1, true, now))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.PaymentMobile, list[0].Type)
	assert.Equal(t, "0414", list[0].Details)
	assert.True(t, list[0].Active)
}

func TestPaymentMethodRepository_UpdateMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewPaymentMethodRepository(db)

	mock.ExpectExec(`UPDATE payment_methods`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.PaymentMethod{ID: uuid.New(), Name: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTableCategoryRepository_DuplicateName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewTableCategoryRepository(db)

	mock.ExpectExec(`INSERT INTO table_categories`).WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &domain.TableCategory{ID: uuid.New(), Name: "VIP", Color: "#10B981"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestAdminRepository_DuplicateUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewAdminRepository(db)

	mock.ExpectExec(`INSERT INTO admins`).
		WithArgs("taquilla", "hash", domain.RoleValidator, sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &domain.Admin{Username: "taquilla", PasswordHash: "hash", Role: domain.RoleValidator})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestAdminRepository_ListAndDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewAdminRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM admins ORDER BY username`).
		WillReturnRows(sqlmock.NewRows([]string{"username", "password_hash", "role", "created_at"}).
			AddRow("admin", "h1", "admin", now).
			AddRow("taquilla", "h2", "validator", now))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, domain.RoleValidator, users[1].Role)

	mock.ExpectExec(`DELETE FROM admins WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, "ghost"), domain.ErrNotFound)
}
