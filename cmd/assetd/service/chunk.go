package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/creatorhub/assetd/cmd/assetd/models"
	"github.com/creatorhub/assetd/common/logger"
	"github.com/creatorhub/assetd/common/storage"
)

// ChunkDescriptor carries one chunk call's full addressing information.
// The receiver holds no per-request memory beyond the session store and
// the accumulation file, so every call must be self-describing.
type ChunkDescriptor struct {
	AssetID     string
	ChunkIndex  int
	TotalChunks int
	FileName    string
	Payload     io.Reader
}

// ChunkService is the stateless chunk receiver: it appends one chunk's
// bytes to the session's accumulation file and, on the last chunk, hands
// the session to the finalizer.
type ChunkService struct {
	sessions  SessionStore
	store     *storage.Store
	finalizer *FinalizerService
	log       *logger.Logger
}

// NewChunkService creates a new chunk service
func NewChunkService(sessions SessionStore, store *storage.Store, finalizer *FinalizerService, log *logger.Logger) *ChunkService {
	return &ChunkService{
		sessions:  sessions,
		store:     store,
		finalizer: finalizer,
		log:       log,
	}
}

// Receive appends one chunk. Chunks must arrive in strictly increasing
// order: a chunk whose index is not the session's next expected index is
// rejected without touching the artifact, so a client retry of an
// already-applied chunk cannot corrupt the assembly.
func (s *ChunkService) Receive(ctx context.Context, desc *ChunkDescriptor) (*models.ChunkResult, error) {
	if desc.TotalChunks < 1 || desc.ChunkIndex < 0 || desc.ChunkIndex >= desc.TotalChunks {
		return nil, fmt.Errorf("chunk index %d out of range for %d chunks: %w",
			desc.ChunkIndex, desc.TotalChunks, models.ErrValidation)
	}

	unlock, err := s.sessions.Lock(ctx, desc.AssetID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock upload: %w", err)
	}
	defer unlock()

	session, err := s.sessions.Get(ctx, desc.AssetID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("no open upload for asset %s: %w", desc.AssetID, models.ErrValidation)
		}
		return nil, fmt.Errorf("failed to load upload session: %w", err)
	}

	if desc.ChunkIndex != session.NextChunk {
		return nil, fmt.Errorf("expected chunk %d, got %d: %w",
			session.NextChunk, desc.ChunkIndex, models.ErrValidation)
	}

	n, err := s.store.AppendChunk(desc.AssetID, desc.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to append chunk %d: %w", desc.ChunkIndex, err)
	}

	session.NextChunk++
	session.ReceivedSize += n

	s.log.Debug("chunk received",
		"asset_id", desc.AssetID,
		"chunk", desc.ChunkIndex+1,
		"total", desc.TotalChunks,
		"bytes", n,
	)

	// The bumped counter must be durable before finalize runs: a retry of a
	// failed final chunk has already had its bytes appended, so it must fail
	// the order check rather than append them again
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update upload session: %w", err)
	}

	// Last chunk by the caller's accounting: materialize and close the session
	if desc.ChunkIndex == desc.TotalChunks-1 {
		url, size, err := s.finalizer.Finalize(ctx, session)
		if err != nil {
			// A validation failure is terminal and the finalizer has already
			// discarded the temp artifact; keeping the session open would let
			// a retried final chunk rebuild a truncated asset from scratch
			if errors.Is(err, models.ErrValidation) {
				if delErr := s.sessions.Delete(ctx, desc.AssetID); delErr != nil {
					s.log.Warn("session cleanup failed", "asset_id", desc.AssetID, "error", delErr)
				}
			}
			return nil, err
		}

		if err := s.sessions.Delete(ctx, desc.AssetID); err != nil {
			s.log.Warn("session cleanup failed", "asset_id", desc.AssetID, "error", err)
		}

		return &models.ChunkResult{
			Success:    true,
			Complete:   true,
			ChunkIndex: desc.ChunkIndex,
			URL:        url,
			Size:       size,
		}, nil
	}

	return &models.ChunkResult{
		Success:    true,
		Complete:   false,
		ChunkIndex: desc.ChunkIndex,
	}, nil
}
