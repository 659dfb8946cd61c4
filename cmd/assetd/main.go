package main

import (
	"context"
	"fmt"
	"os"

	"github.com/creatorhub/assetd/cmd/assetd/container"
	"github.com/creatorhub/assetd/cmd/assetd/routes"
	"github.com/creatorhub/assetd/cmd/assetd/service"
	"github.com/creatorhub/assetd/common/bootstrap"
	"github.com/creatorhub/assetd/common/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bootstrap common components (DB, logger, queue, telemetry)
	components, err := bootstrap.Setup(ctx, "assetd")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap assetd: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	// Initialize service container (singleton pattern - all services created once)
	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	// Initialize Echo server
	e := setupEcho()

	// Setup middleware
	setupMiddleware(e)

	// Health check
	e.GET("/health", echo.WrapHandler(server.HealthHandler()))

	// Register all routes
	registerRoutes(e, serviceContainer)

	// Log finalized assets; future registry consumers subscribe the same way
	err = components.Queue.Subscribe(ctx, service.TopicAssetFinalized, func(ctx context.Context, key string, value []byte) error {
		components.Logger.Info("asset finalized event", "asset_id", key, "event", string(value))
		return nil
	})
	if err != nil {
		components.Logger.Warn("finalized event subscription failed", "error", err)
	}

	// Reclaim abandoned upload sessions in the background
	go serviceContainer.Sweeper.Run(ctx)

	// Start server with graceful shutdown
	srv := server.New("assetd", components.Config.Service.Port, e, components.Logger)
	if err := srv.Start(); err != nil {
		components.Logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	routes.RegisterUploadRoutes(e, serviceContainer)
	routes.RegisterAssetRoutes(e, serviceContainer)
}
