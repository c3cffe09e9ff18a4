package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/feria_ticket/internal/adapter/repository/memory"
	"github.com/srgjo27/feria_ticket/internal/core/domain"
	"github.com/srgjo27/feria_ticket/internal/core/ports/mocks"
	"github.com/srgjo27/feria_ticket/internal/core/services"
	"github.com/srgjo27/feria_ticket/internal/platform/logger"
)

func newSettingsService() (*services.SettingsService, *memory.SiteConfigStore) {
	configs := memory.NewSiteConfigStore()
	svc := services.NewSettingsService(configs, memory.NewPaymentMethodStore(), memory.NewTableCategoryStore(), logger.Discard())
	return svc, configs
}

func TestSiteConfig_SeedsDefaultsOnFirstRead(t *testing.T) {
	ctx := context.Background()
	svc, configs := newSettingsService()

	_, err := configs.Get(ctx)
	require.ErrorIs(t, err, domain.ErrNotFound)

	cfg, err := svc.SiteConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "#FACC15", cfg.PrimaryColor)
	assert.Equal(t, "#3B82F6", cfg.SecondaryColor)
	assert.Equal(t, "#EF4444", cfg.AccentColor)
	assert.Len(t, cfg.SocialLinks, len(domain.SocialNetworks))

	stored, err := configs.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg.UpdatedAt, stored.UpdatedAt)
}

func TestSiteConfig_UpdateReplacesDocument(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSettingsService()

	_, err := svc.UpdateSiteConfig(ctx, services.SiteConfigRequest{
		Banner:       "https://cdn.example.com/banner.jpg",
		PrimaryColor: "#123456",
		SocialLinks:  map[string]string{"Instagram": " @feria "},
	})
	require.NoError(t, err)

	cfg, err := svc.UpdateSiteConfig(ctx, services.SiteConfigRequest{SecondaryColor: "#abc"})
	require.NoError(t, err)
	assert.Empty(t, cfg.Banner)
	assert.Equal(t, "#FACC15", cfg.PrimaryColor)
	assert.Equal(t, "#abc", cfg.SecondaryColor)
	assert.Equal(t, "", cfg.SocialLinks["instagram"])

	got, err := svc.SiteConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestSiteConfig_UpdateValidation(t *testing.T) {
	svc, _ := newSettingsService()
	ctx := context.Background()

	_, err := svc.UpdateSiteConfig(ctx, services.SiteConfigRequest{AccentColor: "rojo"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdateSiteConfig(ctx, services.SiteConfigRequest{SocialLinks: map[string]string{"myspace": "x"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSiteConfig_StoreFailure(t *testing.T) {
	configs := mocks.NewSiteConfigRepository(t)
	configs.On("Get", mock.Anything).Return(nil, domain.ErrNotFound).Once()
	configs.On("Save", mock.Anything, mock.AnythingOfType("*domain.SiteConfig")).Return(errors.New("db down")).Once()

	svc := services.NewSettingsService(configs, memory.NewPaymentMethodStore(), memory.NewTableCategoryStore(), logger.Discard())
	_, err := svc.SiteConfig(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestPaymentMethods_CRUD(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSettingsService()

	bank, err := svc.CreatePaymentMethod(ctx, services.PaymentMethodRequest{Name: "Banco de Venezuela", Details: "0102-..."})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentBank, bank.Type)
	assert.True(t, bank.Active)

	cash, err := svc.CreatePaymentMethod(ctx, services.PaymentMethodRequest{Name: "Efectivo", Type: "efectivo", Order: -1})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCash, cash.Type)

	off := false
	_, err = svc.UpdatePaymentMethod(ctx, bank.ID, services.PaymentMethodRequest{Type: "mobile", Active: &off})
	require.NoError(t, err)

	all, err := svc.ListPaymentMethods(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Efectivo", all[0].Name)
	assert.Equal(t, domain.PaymentMobile, all[1].Type)
	assert.Equal(t, "Banco de Venezuela", all[1].Name)

	active, err := svc.ListPaymentMethods(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, cash.ID, active[0].ID)

	require.NoError(t, svc.DeletePaymentMethod(ctx, cash.ID))
	assert.ErrorIs(t, svc.DeletePaymentMethod(ctx, cash.ID), domain.ErrNotFound)
}

func TestPaymentMethods_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSettingsService()

	_, err := svc.CreatePaymentMethod(ctx, services.PaymentMethodRequest{Type: "bank"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.CreatePaymentMethod(ctx, services.PaymentMethodRequest{Name: "Cripto", Type: "crypto"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdatePaymentMethod(ctx, uuid.New(), services.PaymentMethodRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTableCategories_CRUD(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSettingsService()

	vip, err := svc.CreateTableCategory(ctx, services.TableCategoryRequest{Name: "VIP"})
	require.NoError(t, err)
	assert.Equal(t, "#10B981", vip.Color)

	_, err = svc.CreateTableCategory(ctx, services.TableCategoryRequest{Name: "VIP"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = svc.CreateTableCategory(ctx, services.TableCategoryRequest{Name: "Oro", Color: "gold"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	updated, err := svc.UpdateTableCategory(ctx, vip.ID, services.TableCategoryRequest{Color: "#FFD700"})
	require.NoError(t, err)
	assert.Equal(t, "VIP", updated.Name)
	assert.Equal(t, "#FFD700", updated.Color)

	cats, err := svc.ListTableCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)

	require.NoError(t, svc.DeleteTableCategory(ctx, vip.ID))
	_, err = svc.UpdateTableCategory(ctx, vip.ID, services.TableCategoryRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
