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

func newResolverFixture(t *testing.T) (*ResolverService, *storage.Store) {
	t.Helper()
	base := t.TempDir()
	log := logger.New("error", "text")
	store := storage.NewStore(filepath.Join(base, "uploads"), filepath.Join(base, "uploads", ".temp"), log)
	return NewResolverService(store, log), store
}

func TestResolveFindsIndexFile(t *testing.T) {
	resolver, store := newResolverFixture(t)

	payload := []byte("fake video bytes")
	_, err := store.WriteAsset("asset-a", "index.mp4", bytes.NewReader(payload))
	require.NoError(t, err)

	resolved, err := resolver.Resolve(context.Background(), "asset-a")
	require.NoError(t, err)
	assert.Equal(t, "video/mp4", resolved.MimeType)
	assert.Equal(t, "mp4", resolved.Ext)
	assert.Equal(t, int64(len(payload)), resolved.SizeBytes)
	assert.Equal(t, "index.mp4", filepath.Base(resolved.Path))
}

func TestResolveIsIdempotent(t *testing.T) {
	resolver, store := newResolverFixture(t)

	_, err := store.WriteAsset("asset-b", "index.html", bytes.NewReader([]byte("<p>x</p>")))
	require.NoError(t, err)

	first, err := resolver.Resolve(context.Background(), "asset-b")
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), "asset-b")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveUnknownAssetReturnsNotFound(t *testing.T) {
	resolver, _ := newResolverFixture(t)

	_, err := resolver.Resolve(context.Background(), "no-such-asset")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestResolveTraversalAttemptReturnsNotFound(t *testing.T) {
	resolver, _ := newResolverFixture(t)

	for _, id := range []string{"..", "../x", "a/b"} {
		_, err := resolver.Resolve(context.Background(), id)
		assert.ErrorIs(t, err, models.ErrNotFound, "id %q", id)
	}
}

func TestResolveAmbiguousDirectoryIsServerError(t *testing.T) {
	resolver, store := newResolverFixture(t)

	_, err := store.WriteAsset("asset-c", "index.png", bytes.NewReader([]byte("a")))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(store.AssetDir("asset-c"), "index.jpg"), []byte("b"), 0o644))

	_, err = resolver.Resolve(context.Background(), "asset-c")
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, err, storage.ErrAmbiguousIndex)
}

func TestInlineExt(t *testing.T) {
	assert.True(t, InlineExt("html"))
	assert.True(t, InlineExt("PDF"))
	assert.False(t, InlineExt("mp4"))
	assert.False(t, InlineExt("zip"))
}
