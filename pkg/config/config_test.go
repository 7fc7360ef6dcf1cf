package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Server.Store)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "0 2 * * *", cfg.Cron.StatusSyncSchedule)
	assert.False(t, cfg.Storage.Enabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORE", "memory")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("R2_ACCOUNT_ID", "acct")
	t.Setenv("R2_ACCESS_KEY", "key")
	t.Setenv("R2_SECRET_KEY", "secret")
	t.Setenv("R2_BUCKET_NAME", "bucket")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Server.Store)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
	assert.True(t, cfg.Storage.Enabled())
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SERVICE_NAME=rentdesk-test\nSEED_ON_START=false\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("SERVICE_NAME")
		os.Unsetenv("SEED_ON_START")
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "rentdesk-test", cfg.Server.ServiceName)
	assert.False(t, cfg.Seed.OnStart)
}
