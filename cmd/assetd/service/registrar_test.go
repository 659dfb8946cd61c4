package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/creatorhub/assetd/cmd/assetd/models"
	"github.com/creatorhub/assetd/common/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAssetCreator records created assets
type mockAssetCreator struct {
	created []*models.Asset
	err     error
}

func (m *mockAssetCreator) Create(ctx context.Context, asset *models.Asset) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, asset)
	return nil
}

func newTestRegistrar(creator *mockAssetCreator) (*RegistrarService, *MemorySessionStore) {
	sessions := NewMemorySessionStore()
	log := logger.New("error", "text")
	return NewRegistrarService(creator, sessions, "/uploads", log), sessions
}

func TestRegisterAllocatesAssetAndSession(t *testing.T) {
	creator := &mockAssetCreator{}
	registrar, sessions := newTestRegistrar(creator)

	resp, err := registrar.Register(context.Background(), &models.PresignRequest{
		FileName: "lecture.mp4",
		MimeType: "video/mp4",
		FileSize: 50 * 1024 * 1024,
		Category: "video",
	})
	require.NoError(t, err)

	id, err := uuid.Parse(resp.AssetID)
	require.NoError(t, err, "asset id must be a valid uuid")

	assert.Equal(t, resp.AssetID+"/index.mp4", resp.StorageKey)
	assert.Equal(t, "/uploads/"+resp.AssetID+"/index.mp4", resp.CDNUrl)
	assert.Contains(t, resp.UploadURL, "key=")

	require.Len(t, creator.created, 1)
	assert.Equal(t, id, creator.created[0].ID)
	assert.Equal(t, "lecture.mp4", creator.created[0].OriginalName)
	assert.Equal(t, models.KindVideo, creator.created[0].Kind)

	session, err := sessions.Get(context.Background(), resp.AssetID)
	require.NoError(t, err)
	assert.Equal(t, 0, session.NextChunk)
	assert.Equal(t, models.CategoryVideo, session.Category)
	assert.Equal(t, int64(50*1024*1024), session.DeclaredSize)
}

func TestRegisterNeverReusesAssetIDs(t *testing.T) {
	registrar, _ := newTestRegistrar(&mockAssetCreator{})

	req := &models.PresignRequest{FileName: "a.png", MimeType: "image/png", FileSize: 100}

	first, err := registrar.Register(context.Background(), req)
	require.NoError(t, err)
	second, err := registrar.Register(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.AssetID, second.AssetID)
}

func TestRegisterRejectsDisallowedMIME(t *testing.T) {
	creator := &mockAssetCreator{}
	registrar, sessions := newTestRegistrar(creator)

	_, err := registrar.Register(context.Background(), &models.PresignRequest{
		FileName: "malware.sh",
		MimeType: "text/x-shellscript",
		FileSize: 10,
	})
	require.ErrorIs(t, err, models.ErrValidation)

	// Rejection must leave no trace
	assert.Empty(t, creator.created)
	ids, err := sessions.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRegisterEnforcesCategoryCeiling(t *testing.T) {
	registrar, _ := newTestRegistrar(&mockAssetCreator{})

	cases := []struct {
		category string
		size     int64
		ok       bool
	}{
		{"video", 2000 * 1024 * 1024, true},
		{"video", 2000*1024*1024 + 1, false},
		{"image", 100 * 1024 * 1024, true},
		{"image", 100*1024*1024 + 1, false},
		{"html_app", 500*1024*1024 + 1, false},
		{"", 500 * 1024 * 1024, true},
		{"", 500*1024*1024 + 1, false},
		// Unrecognized categories fall back to the generic ceiling
		{"bogus", 500 * 1024 * 1024, true},
		{"bogus", 500*1024*1024 + 1, false},
	}

	for _, tc := range cases {
		mime := "video/mp4"
		name := "file.mp4"
		if strings.HasPrefix(tc.category, "image") {
			mime = "image/png"
			name = "file.png"
		}

		_, err := registrar.Register(context.Background(), &models.PresignRequest{
			FileName: name,
			MimeType: mime,
			FileSize: tc.size,
			Category: tc.category,
		})

		if tc.ok {
			assert.NoError(t, err, "category %q size %d", tc.category, tc.size)
		} else {
			assert.ErrorIs(t, err, models.ErrValidation, "category %q size %d", tc.category, tc.size)
		}
	}
}

func TestRegisterRequiresNameAndSize(t *testing.T) {
	registrar, _ := newTestRegistrar(&mockAssetCreator{})

	_, err := registrar.Register(context.Background(), &models.PresignRequest{FileName: "", FileSize: 10})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = registrar.Register(context.Background(), &models.PresignRequest{FileName: "a.png", FileSize: 0})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestRegisterInfersMIMEFromExtension(t *testing.T) {
	creator := &mockAssetCreator{}
	registrar, _ := newTestRegistrar(creator)

	resp, err := registrar.Register(context.Background(), &models.PresignRequest{
		FileName: "bundle.zip",
		FileSize: 1024,
	})
	require.NoError(t, err)

	require.Len(t, creator.created, 1)
	assert.Equal(t, "application/zip", creator.created[0].Mime)
	assert.True(t, strings.HasSuffix(resp.StorageKey, "/index.zip"))
}

func TestRegisterSurfacesRepositoryFailure(t *testing.T) {
	creator := &mockAssetCreator{err: errors.New("connection refused")}
	registrar, sessions := newTestRegistrar(creator)

	_, err := registrar.Register(context.Background(), &models.PresignRequest{
		FileName: "a.png",
		MimeType: "image/png",
		FileSize: 10,
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrValidation)

	ids, err := sessions.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids, "no session should be opened when registration fails")
}
