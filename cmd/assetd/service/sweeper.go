package service

import (
	"context"
	"time"

	"github.com/creatorhub/assetd/common/logger"
	"github.com/creatorhub/assetd/common/storage"
)

// Sweeper reclaims orphaned uploads: a client that crashes mid-upload
// leaves a session and a partial accumulation file with no owner. The
// sweeper deletes both once a session has been open longer than maxAge
// without completing.
type Sweeper struct {
	sessions SessionStore
	store    *storage.Store
	maxAge   time.Duration
	interval time.Duration
	log      *logger.Logger
}

// NewSweeper creates a new orphan sweeper
func NewSweeper(sessions SessionStore, store *storage.Store, maxAge, interval time.Duration, log *logger.Logger) *Sweeper {
	return &Sweeper{
		sessions: sessions,
		store:    store,
		maxAge:   maxAge,
		interval: interval,
		log:      log,
	}
}

// Run sweeps periodically until the context is cancelled
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("orphan sweeper started", "max_age", s.maxAge, "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("orphan sweeper stopped")
			return
		case <-ticker.C:
			if swept := s.Sweep(ctx); swept > 0 {
				s.log.Info("swept orphaned uploads", "count", swept)
			}
		}
	}
}

// Sweep runs one pass and returns how many orphans were reclaimed
func (s *Sweeper) Sweep(ctx context.Context) int {
	ids, err := s.sessions.List(ctx)
	if err != nil {
		s.log.Error("sweep failed to list sessions", "error", err)
		return 0
	}

	cutoff := time.Now().Add(-s.maxAge)
	swept := 0

	for _, id := range ids {
		session, err := s.sessions.Get(ctx, id)
		if err != nil {
			// Session record already expired; still reclaim the temp file
			// and the index entry
			if rmErr := s.store.RemoveTemp(id); rmErr != nil {
				s.log.Warn("orphan temp cleanup failed", "asset_id", id, "error", rmErr)
				continue
			}
			if delErr := s.sessions.Delete(ctx, id); delErr != nil {
				s.log.Warn("orphan session cleanup failed", "asset_id", id, "error", delErr)
			}
			swept++
			continue
		}

		if session.CreatedAt.After(cutoff) {
			continue
		}

		if err := s.store.RemoveTemp(id); err != nil {
			s.log.Warn("orphan temp cleanup failed", "asset_id", id, "error", err)
			continue
		}
		if err := s.sessions.Delete(ctx, id); err != nil {
			s.log.Warn("orphan session cleanup failed", "asset_id", id, "error", err)
			continue
		}

		s.log.Info("reclaimed orphaned upload",
			"asset_id", id,
			"opened_at", session.CreatedAt,
			"received", session.ReceivedSize,
		)
		swept++
	}

	return swept
}
