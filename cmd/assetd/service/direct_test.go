package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/creatorhub/assetd/cmd/assetd/models"
	"github.com/creatorhub/assetd/common/logger"
	"github.com/creatorhub/assetd/common/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDirectFixture(t *testing.T) (*DirectUploadService, *storage.Store) {
	t.Helper()
	base := t.TempDir()
	log := logger.New("error", "text")
	store := storage.NewStore(filepath.Join(base, "uploads"), filepath.Join(base, "uploads", ".temp"), log)
	return NewDirectUploadService(store, "/uploads", log), store
}

func TestDirectUploadWritesAtStorageKey(t *testing.T) {
	direct, store := newDirectFixture(t)

	payload := []byte("single shot payload")
	result, err := direct.Upload(context.Background(), "asset-x/index.png", bytes.NewReader(payload))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "asset-x/index.png", result.Key)
	assert.Equal(t, int64(len(payload)), result.Size)
	assert.Equal(t, "/uploads/asset-x/index.png", result.URL)

	data, err := os.ReadFile(filepath.Join(store.AssetDir("asset-x"), "index.png"))
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestDirectUploadOverwritesExisting(t *testing.T) {
	direct, store := newDirectFixture(t)

	_, err := direct.Upload(context.Background(), "asset-y/index.txt", bytes.NewReader([]byte("version one")))
	require.NoError(t, err)
	result, err := direct.Upload(context.Background(), "asset-y/index.txt", bytes.NewReader([]byte("two")))
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Size)

	data, err := os.ReadFile(filepath.Join(store.AssetDir("asset-y"), "index.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), data)
}

func TestDirectUploadRejectsNonIndexFileName(t *testing.T) {
	direct, _ := newDirectFixture(t)

	for _, key := range []string{"asset-w/payload.png", "asset-w/index.", "asset-w/indexhtml"} {
		_, err := direct.Upload(context.Background(), key, bytes.NewReader([]byte("x")))
		assert.ErrorIs(t, err, models.ErrValidation, "key %q", key)
	}
}

func TestDirectUploadReplacingExtensionKeepsSingleIndex(t *testing.T) {
	direct, store := newDirectFixture(t)

	_, err := direct.Upload(context.Background(), "asset-v/index.mp4", bytes.NewReader([]byte("video")))
	require.NoError(t, err)
	_, err = direct.Upload(context.Background(), "asset-v/index.png", bytes.NewReader([]byte("image")))
	require.NoError(t, err)

	// The directory must stay resolvable: one index entry, the latest write
	path, err := store.FindIndexFile("asset-v")
	require.NoError(t, err)
	assert.Equal(t, "index.png", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("image"), data)
}

func TestDirectUploadRejectsMalformedKey(t *testing.T) {
	direct, _ := newDirectFixture(t)

	for _, key := range []string{"", "nokeyseparator", "/index.png", "asset-z/"} {
		_, err := direct.Upload(context.Background(), key, bytes.NewReader([]byte("x")))
		assert.ErrorIs(t, err, models.ErrValidation, "key %q", key)
	}
}

func TestDirectUploadRejectsTraversalKey(t *testing.T) {
	direct, _ := newDirectFixture(t)

	_, err := direct.Upload(context.Background(), "../escape/index.png", bytes.NewReader([]byte("x")))
	require.Error(t, err)

	_, err = direct.Upload(context.Background(), "asset-z/../index.png", bytes.NewReader([]byte("x")))
	require.Error(t, err)
}
