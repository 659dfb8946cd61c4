package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/creatorhub/assetd/cmd/assetd/models"
	"github.com/creatorhub/assetd/cmd/assetd/repository"
	"github.com/creatorhub/assetd/cmd/assetd/service"
	"github.com/creatorhub/assetd/common/bootstrap"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// cacheControl is sent with every resolved asset; finished artifacts are
// immutable so an hour of shared caching is safe
const cacheControl = "public, max-age=3600"

// AssetHandler serves finished assets and registry listings
type AssetHandler struct {
	components *bootstrap.Components
	resolver   *service.ResolverService
	assets     *repository.AssetRepository
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(components *bootstrap.Components, resolver *service.ResolverService, assets *repository.AssetRepository) *AssetHandler {
	return &AssetHandler{
		components: components,
		resolver:   resolver,
		assets:     assets,
	}
}

// View streams an asset inline
// GET /api/assets/:id/view
func (h *AssetHandler) View(c echo.Context) error {
	return h.serve(c, false)
}

// Download streams an asset as an attachment named after the original upload
// GET /api/assets/:id/download
func (h *AssetHandler) Download(c echo.Context) error {
	return h.serve(c, true)
}

// List returns the most recently registered assets
// GET /api/assets
func (h *AssetHandler) List(c echo.Context) error {
	assets, err := h.assets.List(c.Request().Context(), 100)
	if err != nil {
		h.components.Logger.Error("asset list failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list assets")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"assets": assets,
		"count":  len(assets),
	})
}

func (h *AssetHandler) serve(c echo.Context, attachment bool) error {
	assetID := c.Param("id")

	resolved, err := h.resolver.Resolve(c.Request().Context(), assetID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "asset not found")
		}
		h.components.Logger.Error("asset resolution failed", "asset_id", assetID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve asset")
	}

	f, err := os.Open(resolved.Path)
	if err != nil {
		h.components.Logger.Error("asset open failed", "asset_id", assetID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read asset")
	}
	defer f.Close()

	c.Response().Header().Set("Cache-Control", cacheControl)
	c.Response().Header().Set("Content-Disposition", h.disposition(c, assetID, resolved, attachment))

	return c.Stream(http.StatusOK, resolved.MimeType, f)
}

// disposition picks inline vs attachment and a filename hint. The original
// upload name comes from the registry when available; resolution itself
// never needs it.
func (h *AssetHandler) disposition(c echo.Context, assetID string, resolved *service.ResolvedAsset, attachment bool) string {
	if !attachment && service.InlineExt(resolved.Ext) {
		return "inline"
	}

	name := "file." + resolved.Ext
	if id, err := uuid.Parse(assetID); err == nil {
		if asset, err := h.assets.GetByID(c.Request().Context(), id); err == nil && asset.OriginalName != "" {
			name = asset.OriginalName
		}
	}

	if attachment {
		return fmt.Sprintf("attachment; filename=%q", name)
	}
	return fmt.Sprintf("inline; filename=%q", name)
}
