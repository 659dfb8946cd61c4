package container

import (
	"fmt"

	"github.com/creatorhub/assetd/cmd/assetd/repository"
	"github.com/creatorhub/assetd/cmd/assetd/service"
	"github.com/creatorhub/assetd/common/bootstrap"
	rediscommon "github.com/creatorhub/assetd/common/redis"
	"github.com/creatorhub/assetd/common/storage"
	"github.com/redis/go-redis/v9"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	// Components
	Components *bootstrap.Components
	Redis      *rediscommon.Client
	Store      *storage.Store

	// Repositories
	AssetRepo *repository.AssetRepository

	// Services
	Sessions  service.SessionStore
	Registrar *service.RegistrarService
	Finalizer *service.FinalizerService
	Chunks    *service.ChunkService
	Direct    *service.DirectUploadService
	Resolver  *service.ResolverService
	Sweeper   *service.Sweeper
}

// NewContainer initializes all services and repositories once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	cfg := components.Config

	store := storage.NewStore(cfg.Storage.Root, cfg.Storage.TempDir, components.Logger)

	// Session bookkeeping lives in memory by default; redis is opt-in so one
	// instance can survive restarts and several can share sessions
	var redisClient *rediscommon.Client
	var sessions service.SessionStore
	switch cfg.Upload.SessionStore {
	case "redis":
		raw := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		redisClient = rediscommon.NewClient(raw, components.Logger)
		sessions = service.NewRedisSessionStore(redisClient, cfg.Upload.SessionTTL)
	case "memory":
		sessions = service.NewMemorySessionStore()
	default:
		return nil, fmt.Errorf("unknown session store type: %s", cfg.Upload.SessionStore)
	}

	// Initialize repositories
	assetRepo := repository.NewAssetRepository(components.DB)

	// Initialize services (bottom-up: dependencies first)
	registrar := service.NewRegistrarService(assetRepo, sessions, cfg.Storage.PublicBaseURL, components.Logger)
	finalizer := service.NewFinalizerService(store, assetRepo, components.Queue, cfg.Storage.PublicBaseURL, components.Logger)
	chunks := service.NewChunkService(sessions, store, finalizer, components.Logger)
	direct := service.NewDirectUploadService(store, cfg.Storage.PublicBaseURL, components.Logger)
	resolver := service.NewResolverService(store, components.Logger)
	sweeper := service.NewSweeper(sessions, store, cfg.Upload.SessionTTL, cfg.Upload.SweepInterval, components.Logger)

	return &Container{
		Components: components,
		Redis:      redisClient,
		Store:      store,
		AssetRepo:  assetRepo,
		Sessions:   sessions,
		Registrar:  registrar,
		Finalizer:  finalizer,
		Chunks:     chunks,
		Direct:     direct,
		Resolver:   resolver,
		Sweeper:    sweeper,
	}, nil
}
