package repository

import (
	"context"
	"fmt"

	"github.com/creatorhub/assetd/cmd/assetd/models"
	"github.com/creatorhub/assetd/common/db"
	"github.com/google/uuid"
)

// AssetRepository handles database operations for asset registry rows
type AssetRepository struct {
	db *db.DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *db.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// Create inserts a new asset row
func (r *AssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	query := `
		INSERT INTO asset (
			id, storage_key, original_name, mime, size_bytes,
			kind, public, cdn_url, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		asset.ID,
		asset.StorageKey,
		asset.OriginalName,
		asset.Mime,
		asset.SizeBytes,
		asset.Kind,
		asset.Public,
		asset.CDNUrl,
		asset.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}

	return nil
}

// UpdateSize patches the real byte count once finalization knows it
func (r *AssetRepository) UpdateSize(ctx context.Context, assetID uuid.UUID, sizeBytes int64) error {
	query := `UPDATE asset SET size_bytes = $2 WHERE id = $1`

	_, err := r.db.Exec(ctx, query, assetID, sizeBytes)
	if err != nil {
		return fmt.Errorf("failed to update asset size: %w", err)
	}

	return nil
}

// GetByID retrieves an asset row by its ID
func (r *AssetRepository) GetByID(ctx context.Context, assetID uuid.UUID) (*models.Asset, error) {
	query := `
		SELECT id, storage_key, original_name, mime, size_bytes,
		       kind, public, cdn_url, created_at
		FROM asset
		WHERE id = $1
	`

	asset := &models.Asset{}
	err := r.db.QueryRow(ctx, query, assetID).Scan(
		&asset.ID,
		&asset.StorageKey,
		&asset.OriginalName,
		&asset.Mime,
		&asset.SizeBytes,
		&asset.Kind,
		&asset.Public,
		&asset.CDNUrl,
		&asset.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return asset, nil
}

// List retrieves the most recently registered assets
func (r *AssetRepository) List(ctx context.Context, limit int) ([]*models.Asset, error) {
	query := `
		SELECT id, storage_key, original_name, mime, size_bytes,
		       kind, public, cdn_url, created_at
		FROM asset
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []*models.Asset
	for rows.Next() {
		asset := &models.Asset{}
		err := rows.Scan(
			&asset.ID,
			&asset.StorageKey,
			&asset.OriginalName,
			&asset.Mime,
			&asset.SizeBytes,
			&asset.Kind,
			&asset.Public,
			&asset.CDNUrl,
			&asset.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}

	return assets, nil
}
