package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("assetd")
	require.NoError(t, err)

	assert.Equal(t, "assetd", cfg.Service.Name)
	assert.Equal(t, "data/uploads", cfg.Storage.Root)
	assert.Equal(t, "data/uploads/.temp", cfg.Storage.TempDir)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.ChunkSize)
	assert.Equal(t, "memory", cfg.Upload.SessionStore)
	assert.Equal(t, 24*time.Hour, cfg.Upload.SessionTTL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_ROOT", "/var/lib/assets")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("UPLOAD_SESSION_TTL", "2h")

	cfg, err := Load("assetd")
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/assets", cfg.Storage.Root)
	assert.Equal(t, "redis", cfg.Upload.SessionStore)
	assert.Equal(t, 2*time.Hour, cfg.Upload.SessionTTL)
}

func TestValidateRejectsSharedRootAndTempDir(t *testing.T) {
	t.Setenv("STORAGE_ROOT", "/data/x")
	t.Setenv("STORAGE_TEMP_DIR", "/data/x")

	_, err := Load("assetd")
	assert.Error(t, err)
}

func TestValidateRejectsUnknownSessionStore(t *testing.T) {
	t.Setenv("SESSION_STORE", "etcd")

	_, err := Load("assetd")
	assert.Error(t, err)
}
