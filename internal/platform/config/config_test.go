package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("QR_ENCRYPTION_KEY", "k")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("STORE", "memory")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "gcm", cfg.QRCipher)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 30*time.Second, cfg.SeatCacheTTL)
	assert.Empty(t, cfg.RedisAddr())
}

func TestFromEnv_RequiresKeys(t *testing.T) {
	t.Setenv("QR_ENCRYPTION_KEY", "")
	t.Setenv("JWT_SECRET", "s")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "QR_ENCRYPTION_KEY")
}

func TestFromEnv_BadValues(t *testing.T) {
	t.Setenv("QR_ENCRYPTION_KEY", "k")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("STORE", "mongo")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "STORE")

	t.Setenv("STORE", "memory")
	t.Setenv("QR_CIPHER", "ecb")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "QR_CIPHER")

	t.Setenv("QR_CIPHER", "CFB")
	t.Setenv("JWT_TTL_HOURS", "abc")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "cfb", cfg.QRCipher)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("FERIA_TEST_REDIS=cache\nREDIS_PORT=6380\n"), 0o600))

	t.Setenv("QR_ENCRYPTION_KEY", "k")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("STORE", "memory")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "")
	os.Unsetenv("REDIS_PORT")
	t.Cleanup(func() { os.Unsetenv("FERIA_TEST_REDIS") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis:6380", cfg.RedisAddr())
	assert.Equal(t, "cache", os.Getenv("FERIA_TEST_REDIS"))

	_, err = Load(filepath.Join(dir, "missing.env"))
	assert.NoError(t, err)
}
