package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/creatorhub/assetd/cmd/assetd/models"
	"github.com/creatorhub/assetd/common/logger"
	"github.com/creatorhub/assetd/common/queue"
	"github.com/creatorhub/assetd/common/storage"
	"github.com/google/uuid"
)

// TopicAssetFinalized is the queue topic completion events are published to
const TopicAssetFinalized = "asset.finalized"

// AssetSizer is the slice of the asset repository the finalizer needs
type AssetSizer interface {
	UpdateSize(ctx context.Context, assetID uuid.UUID, sizeBytes int64) error
}

// FinalizerService materializes a complete accumulation file into its
// permanent content-addressed location and signals completion. It never
// creates content records: "asset materialized" and "content published"
// are separate steps so a re-run upload cannot duplicate content entries.
type FinalizerService struct {
	store      *storage.Store
	assets     AssetSizer
	events     queue.Queue
	publicBase string
	log        *logger.Logger
}

// NewFinalizerService creates a new finalizer service
func NewFinalizerService(store *storage.Store, assets AssetSizer, events queue.Queue, publicBase string, log *logger.Logger) *FinalizerService {
	return &FinalizerService{
		store:      store,
		assets:     assets,
		events:     events,
		publicBase: publicBase,
		log:        log,
	}
}

// Finalize moves the session's temp artifact to {assetId}/index.{ext} and
// returns the public URL and finished size. The URL must equal the one the
// registrar promised at presign time; the naming scheme is load-bearing for
// every already-issued link.
func (s *FinalizerService) Finalize(ctx context.Context, session *models.UploadSession) (string, int64, error) {
	ext := storage.FileExt(session.FileName)

	// Re-check the ceiling against real bytes before materializing; the
	// registrar only saw the declared size.
	received, err := s.store.TempSize(session.AssetID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to finalize asset %s: %w", session.AssetID, err)
	}
	if received > session.Category.MaxSize() {
		if rmErr := s.store.RemoveTemp(session.AssetID); rmErr != nil {
			s.log.Warn("oversize temp cleanup failed", "asset_id", session.AssetID, "error", rmErr)
		}
		return "", 0, fmt.Errorf("upload of %d bytes exceeds %s limit: %w",
			received, session.Category, models.ErrValidation)
	}

	size, err := s.store.Materialize(session.AssetID, ext)
	if err != nil {
		return "", 0, fmt.Errorf("failed to materialize asset %s: %w", session.AssetID, err)
	}

	if session.DeclaredSize > 0 && size != session.DeclaredSize {
		// Accepted, but worth a trace: the client declared a different total
		s.log.Warn("finalized size differs from declaration",
			"asset_id", session.AssetID,
			"declared", session.DeclaredSize,
			"actual", size,
		)
	}

	url := fmt.Sprintf("%s/%s/index.%s", strings.TrimSuffix(s.publicBase, "/"), session.AssetID, ext)

	// Patch the registry row with the real byte count; the row itself was
	// created at registration.
	if id, parseErr := uuid.Parse(session.AssetID); parseErr == nil {
		if err := s.assets.UpdateSize(ctx, id, size); err != nil {
			s.log.Warn("asset size update failed", "asset_id", session.AssetID, "error", err)
		}
	}

	s.publishFinalized(ctx, session.AssetID, url, size)

	s.log.Info("asset finalized",
		"asset_id", session.AssetID,
		"url", url,
		"size", size,
	)

	return url, size, nil
}

// publishFinalized emits the completion event registry consumers subscribe to
func (s *FinalizerService) publishFinalized(ctx context.Context, assetID, url string, size int64) {
	event := models.FinalizedEvent{
		AssetID:   assetID,
		URL:       url,
		SizeBytes: size,
		Finalized: time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Error("failed to marshal finalized event", "asset_id", assetID, "error", err)
		return
	}

	if err := s.events.Publish(ctx, TopicAssetFinalized, assetID, payload); err != nil {
		s.log.Error("failed to publish finalized event", "asset_id", assetID, "error", err)
	}
}
