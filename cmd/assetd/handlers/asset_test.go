package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/creatorhub/assetd/cmd/assetd/service"
	"github.com/creatorhub/assetd/common/bootstrap"
	"github.com/creatorhub/assetd/common/logger"
	"github.com/creatorhub/assetd/common/storage"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssetFixture(t *testing.T) (*echo.Echo, *storage.Store) {
	t.Helper()
	base := t.TempDir()
	log := logger.New("error", "text")
	store := storage.NewStore(filepath.Join(base, "uploads"), filepath.Join(base, "uploads", ".temp"), log)
	components := &bootstrap.Components{Logger: log}
	resolver := service.NewResolverService(store, log)

	e := echo.New()
	h := NewAssetHandler(components, resolver, nil)
	e.GET("/api/assets/:id/view", h.View)
	e.GET("/api/assets/:id/download", h.Download)
	return e, store
}

func TestViewStreamsAssetWithHeaders(t *testing.T) {
	e, store := newAssetFixture(t)

	payload := []byte("<html><body>app</body></html>")
	_, err := store.WriteAsset("site-asset", "index.html", bytes.NewReader(payload))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/assets/site-asset/view", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, rec.Body.Bytes())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "inline", rec.Header().Get("Content-Disposition"))
}

func TestViewUnknownAssetReturns404(t *testing.T) {
	e, _ := newAssetFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/assets/missing/view", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadSetsAttachmentDisposition(t *testing.T) {
	e, store := newAssetFixture(t)

	_, err := store.WriteAsset("dl-asset", "index.zip", bytes.NewReader([]byte("zipbytes")))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/assets/dl-asset/download", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "file.zip")
}
