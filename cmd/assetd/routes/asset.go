package routes

import (
	"github.com/creatorhub/assetd/cmd/assetd/container"
	"github.com/creatorhub/assetd/cmd/assetd/handlers"
	"github.com/labstack/echo/v4"
)

// RegisterAssetRoutes registers the public asset endpoints
func RegisterAssetRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewAssetHandler(c.Components, c.Resolver, c.AssetRepo)

	assets := e.Group("/api/assets")
	{
		assets.GET("", h.List)                  // GET /api/assets
		assets.GET("/:id/view", h.View)         // GET /api/assets/:id/view
		assets.GET("/:id/download", h.Download) // GET /api/assets/:id/download
	}
}
