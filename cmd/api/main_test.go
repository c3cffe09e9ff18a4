package main

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/feria_ticket/internal/platform/config"
	"github.com/srgjo27/feria_ticket/internal/platform/logger"
)

func assertWired(t *testing.T, st stores) {
	t.Helper()
	assert.NotNil(t, st.events)
	assert.NotNil(t, st.categories)
	assert.NotNil(t, st.tickets)
	assert.NotNil(t, st.accreditations)
	assert.NotNil(t, st.badgeCategories)
	assert.NotNil(t, st.admins)
	assert.NotNil(t, st.paymentMethods)
	assert.NotNil(t, st.tableCategories)
	assert.NotNil(t, st.siteConfig)
}

func TestOpenStores_Memory(t *testing.T) {
	st, closeFn, err := openStores(context.Background(), config.Config{Store: config.StoreMemory}, logger.Discard())
	require.NoError(t, err)
	defer closeFn()
	assertWired(t, st)
}

func TestPostgresStores(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	assertWired(t, postgresStores(db))
}

func TestNewIssuer(t *testing.T) {
	cfg := config.Config{QRCipher: "gcm", QREncryptionKey: "ciudad_feria_secret_key_2026_tachira_venezuela"}
	iss, err := newIssuer(cfg, logger.Discard())
	require.NoError(t, err)
	assert.NotNil(t, iss)

	cfg.QRCipher = "ecb"
	_, err = newIssuer(cfg, logger.Discard())
	assert.Error(t, err)
}
