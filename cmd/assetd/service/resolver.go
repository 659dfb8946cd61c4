package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/creatorhub/assetd/cmd/assetd/models"
	"github.com/creatorhub/assetd/common/logger"
	"github.com/creatorhub/assetd/common/storage"
)

// ResolvedAsset is the outcome of locating a finished artifact by id
type ResolvedAsset struct {
	Path      string
	MimeType  string
	Ext       string
	SizeBytes int64
}

// ResolverService locates finished artifacts knowing only the asset id.
// It scans the asset directory for the single index.* file rather than
// consulting stored metadata; that keeps readers decoupled from upload
// internals at the cost of one directory read per access.
type ResolverService struct {
	store *storage.Store
	log   *logger.Logger
}

// NewResolverService creates a new resolver service
func NewResolverService(store *storage.Store, log *logger.Logger) *ResolverService {
	return &ResolverService{
		store: store,
		log:   log,
	}
}

// Resolve finds the artifact for an asset id and infers its MIME type from
// the extension. Resolution is read-only and idempotent.
func (s *ResolverService) Resolve(ctx context.Context, assetID string) (*ResolvedAsset, error) {
	path, err := s.store.FindIndexFile(assetID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrBadAssetID) {
			return nil, fmt.Errorf("asset %s: %w", assetID, models.ErrNotFound)
		}
		// Ambiguous directories violate the single-index invariant and are
		// a server-side defect, not a client error
		return nil, fmt.Errorf("failed to resolve asset %s: %w", assetID, err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat asset %s: %w", assetID, err)
	}

	ext := storage.FileExt(path)

	return &ResolvedAsset{
		Path:      path,
		MimeType:  storage.MIMEForExt(ext),
		Ext:       ext,
		SizeBytes: fi.Size(),
	}, nil
}

// InlineExt reports whether a file of this extension should be displayed
// inline without a filename hint (html/pdf open in the browser directly)
func InlineExt(ext string) bool {
	switch strings.ToLower(ext) {
	case "html", "htm", "pdf":
		return true
	default:
		return false
	}
}
