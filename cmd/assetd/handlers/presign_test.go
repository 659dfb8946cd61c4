package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/creatorhub/assetd/cmd/assetd/models"
	"github.com/creatorhub/assetd/cmd/assetd/service"
	"github.com/creatorhub/assetd/common/bootstrap"
	"github.com/creatorhub/assetd/common/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryAssetCreator accepts every asset without a database
type memoryAssetCreator struct {
	created []*models.Asset
}

func (m *memoryAssetCreator) Create(ctx context.Context, asset *models.Asset) error {
	m.created = append(m.created, asset)
	return nil
}

func newPresignFixture(t *testing.T) *echo.Echo {
	t.Helper()
	log := logger.New("error", "text")
	components := &bootstrap.Components{Logger: log}
	registrar := service.NewRegistrarService(&memoryAssetCreator{}, service.NewMemorySessionStore(), "/uploads", log)

	e := echo.New()
	h := NewPresignHandler(components, registrar)
	e.POST("/api/admin/assets/presign", h.CreatePresign)
	return e
}

func presignRequest(t *testing.T, payload map[string]interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/assets/presign", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestCreatePresignReturnsAllocation(t *testing.T) {
	e := newPresignFixture(t)

	req := presignRequest(t, map[string]interface{}{
		"fileName": "lecture.mp4",
		"mimeType": "video/mp4",
		"fileSize": 1024,
		"category": "video",
	})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.PresignResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	_, err := uuid.Parse(resp.AssetID)
	require.NoError(t, err)
	assert.Equal(t, resp.AssetID+"/index.mp4", resp.StorageKey)
	assert.Equal(t, "/uploads/"+resp.AssetID+"/index.mp4", resp.CDNUrl)
	assert.NotEmpty(t, resp.UploadURL)
}

func TestCreatePresignRejectsBadMIME(t *testing.T) {
	e := newPresignFixture(t)

	req := presignRequest(t, map[string]interface{}{
		"fileName": "script.sh",
		"mimeType": "text/x-shellscript",
		"fileSize": 10,
	})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePresignRejectsOversizeDeclaration(t *testing.T) {
	e := newPresignFixture(t)

	req := presignRequest(t, map[string]interface{}{
		"fileName": "huge.mp4",
		"mimeType": "video/mp4",
		"fileSize": 2001 * 1024 * 1024,
		"category": "video",
	})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePresignRejectsGarbageBody(t *testing.T) {
	e := newPresignFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/assets/presign", bytes.NewReader([]byte("not json")))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
