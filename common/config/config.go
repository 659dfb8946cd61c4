package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all service configuration
type Config struct {
	Service   ServiceConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Upload    UploadConfig
	Telemetry TelemetryConfig
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name        string
	Port        int
	Environment string
	LogLevel    string
	LogFormat   string
	AdminToken  string
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	Host        string
	Port        int
	Database    string
	User        string
	Password    string
	MaxConns    int
	MinConns    int
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// StorageConfig holds asset storage settings
type StorageConfig struct {
	// Root is the directory finished assets live under: {Root}/{assetId}/index.{ext}
	Root string
	// TempDir is the non-public staging directory for chunk accumulation files
	TempDir string
	// PublicBaseURL is the URL prefix a finished asset is served from
	PublicBaseURL string
}

// UploadConfig holds chunked-upload settings
type UploadConfig struct {
	// ChunkSize is the byte size the client splitter uses per chunk
	ChunkSize int64
	// DirectThreshold is the size below which the client uses the single-PUT path
	DirectThreshold int64
	// SessionStore selects "memory" for dev or "redis" for production
	SessionStore string
	// SessionTTL bounds how long an upload session may stay open
	SessionTTL time.Duration
	// SweepInterval is how often the orphan sweeper runs
	SweepInterval time.Duration
}

// TelemetryConfig holds observability settings
type TelemetryConfig struct {
	EnablePprof bool
	PprofPort   int
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{
			Name:        serviceName,
			Port:        getEnvInt("PORT", 8080),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"),
			AdminToken:  getEnv("ADMIN_TOKEN", ""),
		},
		Database: DatabaseConfig{
			Host:        getEnv("POSTGRES_HOST", "localhost"),
			Port:        getEnvInt("POSTGRES_PORT", 5432),
			Database:    getEnv("POSTGRES_DB", "assetd"),
			User:        getEnv("POSTGRES_USER", "assetd"),
			Password:    getEnv("POSTGRES_PASSWORD", "assetd"),
			MaxConns:    getEnvInt("POSTGRES_MAX_CONNS", 20),
			MinConns:    getEnvInt("POSTGRES_MIN_CONNS", 5),
			MaxIdleTime: getEnvDuration("POSTGRES_MAX_IDLE_TIME", 30*time.Minute),
			MaxLifetime: getEnvDuration("POSTGRES_MAX_LIFETIME", 1*time.Hour),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Root:          getEnv("STORAGE_ROOT", "data/uploads"),
			TempDir:       getEnv("STORAGE_TEMP_DIR", "data/uploads/.temp"),
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", "/uploads"),
		},
		Upload: UploadConfig{
			ChunkSize:       getEnvInt64("UPLOAD_CHUNK_SIZE", 5*1024*1024),
			DirectThreshold: getEnvInt64("UPLOAD_DIRECT_THRESHOLD", 10*1024*1024),
			SessionStore:    getEnv("SESSION_STORE", "memory"),
			SessionTTL:      getEnvDuration("UPLOAD_SESSION_TTL", 24*time.Hour),
			SweepInterval:   getEnvDuration("UPLOAD_SWEEP_INTERVAL", 1*time.Hour),
		},
		Telemetry: TelemetryConfig{
			EnablePprof: getEnvBool("ENABLE_PPROF", true),
			PprofPort:   getEnvInt("PPROF_PORT", 6060),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Service.Port)
	}

	if c.Storage.Root == "" {
		return fmt.Errorf("storage root is required")
	}

	if c.Storage.Root == c.Storage.TempDir {
		return fmt.Errorf("temp dir must differ from storage root")
	}

	if c.Upload.ChunkSize < 1 {
		return fmt.Errorf("chunk size must be positive")
	}

	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("max_conns must be >= min_conns")
	}

	switch c.Upload.SessionStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown session store type: %s", c.Upload.SessionStore)
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
	)
}

// RedisAddr returns host:port for the Redis client
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
