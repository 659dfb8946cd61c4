package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/creatorhub/assetd/cmd/assetd/models"
	"github.com/creatorhub/assetd/common/logger"
	"github.com/creatorhub/assetd/common/storage"
	"github.com/google/uuid"
)

// AssetCreator is the slice of the asset repository the registrar needs
type AssetCreator interface {
	Create(ctx context.Context, asset *models.Asset) error
}

// RegistrarService handles the presign step: it validates the declared
// file against the MIME allow-list and category ceiling, allocates the
// asset id, and promises the destination naming before any byte flows.
// Nothing is created on disk here; directories appear lazily when the
// first chunk (or the direct PUT) arrives.
type RegistrarService struct {
	assets     AssetCreator
	sessions   SessionStore
	publicBase string
	log        *logger.Logger
}

// NewRegistrarService creates a new registrar service
func NewRegistrarService(assets AssetCreator, sessions SessionStore, publicBase string, log *logger.Logger) *RegistrarService {
	return &RegistrarService{
		assets:     assets,
		sessions:   sessions,
		publicBase: publicBase,
		log:        log,
	}
}

// Register validates an upload declaration and opens a fresh session.
// Registration is never idempotent: two identical calls yield two asset ids.
func (s *RegistrarService) Register(ctx context.Context, req *models.PresignRequest) (*models.PresignResponse, error) {
	if req.FileName == "" || req.FileSize <= 0 {
		return nil, fmt.Errorf("file name and size are required: %w", models.ErrValidation)
	}

	mimeType := req.MimeType
	if mimeType == "" {
		// Some file inputs send no MIME type; infer from the extension
		mimeType = inferMIME(req.FileName)
	}

	if !models.MIMEAllowed(mimeType) {
		return nil, fmt.Errorf("unsupported file type %s: %w", mimeType, models.ErrValidation)
	}

	category := models.Category(req.Category)
	if req.Category == "" {
		category = models.CategoryUploads
	} else if !category.Known() {
		s.log.Debug("unrecognized category, using generic ceiling",
			"category", req.Category,
			"file", req.FileName,
		)
	}

	// Ceiling is enforced against the declared size only; the receiver
	// trusts it until finalize re-checks the real byte count.
	if req.FileSize > category.MaxSize() {
		return nil, fmt.Errorf("file size %d exceeds %s limit of %d bytes: %w",
			req.FileSize, category, category.MaxSize(), models.ErrValidation)
	}

	assetID := uuid.New()
	ext := storage.FileExt(req.FileName)
	storageKey := fmt.Sprintf("%s/index.%s", assetID, ext)
	cdnURL := fmt.Sprintf("%s/%s", strings.TrimSuffix(s.publicBase, "/"), storageKey)

	asset := &models.Asset{
		ID:           assetID,
		StorageKey:   storageKey,
		OriginalName: req.FileName,
		Mime:         mimeType,
		SizeBytes:    req.FileSize,
		Kind:         models.KindForExt(ext),
		Public:       true,
		CDNUrl:       cdnURL,
		CreatedAt:    time.Now(),
	}

	if err := s.assets.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to register asset: %w", err)
	}

	session := &models.UploadSession{
		AssetID:      assetID.String(),
		FileName:     req.FileName,
		MimeType:     mimeType,
		DeclaredSize: req.FileSize,
		Category:     category,
		NextChunk:    0,
		CreatedAt:    time.Now(),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to open upload session: %w", err)
	}

	s.log.Info("upload registered",
		"asset_id", assetID,
		"file", req.FileName,
		"mime", mimeType,
		"category", category,
		"declared_size", req.FileSize,
	)

	return &models.PresignResponse{
		AssetID:    assetID.String(),
		UploadURL:  "/api/admin/assets/upload?key=" + url.QueryEscape(storageKey),
		StorageKey: storageKey,
		CDNUrl:     cdnURL,
	}, nil
}

// inferMIME guesses a MIME type from the extension when the client sent none
func inferMIME(fileName string) string {
	switch storage.FileExt(fileName) {
	case "html", "htm":
		return "text/html"
	case "zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}
