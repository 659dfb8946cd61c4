package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/creatorhub/assetd/cmd/assetd/models"
	"github.com/creatorhub/assetd/common/logger"
	"github.com/creatorhub/assetd/common/storage"
)

// DirectUploadService handles the non-chunked path: one blocking write of
// the whole payload. It shares the {assetId}/index.{ext} naming with the
// finalizer so downstream readers never need to know which path produced
// an asset.
type DirectUploadService struct {
	store      *storage.Store
	publicBase string
	log        *logger.Logger
}

// NewDirectUploadService creates a new direct upload service
func NewDirectUploadService(store *storage.Store, publicBase string, log *logger.Logger) *DirectUploadService {
	return &DirectUploadService{
		store:      store,
		publicBase: publicBase,
		log:        log,
	}
}

// Upload writes the payload at the storage key the registrar issued.
// Key format is {assetId}/{fileName}, i.e. the storageKey from presign.
func (s *DirectUploadService) Upload(ctx context.Context, key string, payload io.Reader) (*models.DirectUploadResult, error) {
	assetID, fileName, ok := strings.Cut(key, "/")
	if !ok || assetID == "" || fileName == "" {
		return nil, fmt.Errorf("malformed storage key %q: %w", key, models.ErrValidation)
	}

	// Readers locate assets by scanning for exactly one index.* entry, so the
	// write side only accepts the naming the registrar issues
	if !strings.HasPrefix(fileName, "index.") || fileName == "index." {
		return nil, fmt.Errorf("storage key %q must name an index file: %w", key, models.ErrValidation)
	}

	size, err := s.store.WriteAsset(assetID, fileName, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to write asset %s: %w", assetID, err)
	}

	url := fmt.Sprintf("%s/%s", strings.TrimSuffix(s.publicBase, "/"), key)

	s.log.Info("direct upload complete",
		"asset_id", assetID,
		"key", key,
		"size", size,
	)

	return &models.DirectUploadResult{
		Success: true,
		Key:     key,
		Size:    size,
		URL:     url,
	}, nil
}
