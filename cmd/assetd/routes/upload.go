package routes

import (
	"github.com/creatorhub/assetd/cmd/assetd/container"
	"github.com/creatorhub/assetd/cmd/assetd/handlers"
	"github.com/creatorhub/assetd/cmd/assetd/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterUploadRoutes registers the admin upload endpoints
func RegisterUploadRoutes(e *echo.Echo, c *container.Container) {
	presign := handlers.NewPresignHandler(c.Components, c.Registrar)
	chunk := handlers.NewChunkHandler(c.Components, c.Chunks)
	direct := handlers.NewDirectHandler(c.Components, c.Direct)

	// Upload routes behind the admin token check
	admin := e.Group("/api/admin/assets")
	admin.Use(middleware.AdminAuthMiddleware(c.Components.Config.Service.AdminToken))
	{
		admin.POST("/presign", presign.CreatePresign)   // POST /api/admin/assets/presign
		admin.POST("/upload-chunk", chunk.UploadChunk)  // POST /api/admin/assets/upload-chunk
		admin.PUT("/upload", direct.Upload)             // PUT  /api/admin/assets/upload?key=...
	}
}
