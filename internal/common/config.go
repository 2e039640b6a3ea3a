package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Storage  StorageConfig
	Engine   EngineConfig
	Log      LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string        `env:"DB_DRIVER" envDefault:"sqlite"`
	DSN              string        `env:"DB_URL" envDefault:"file:permit-readiness.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"`
	MaxConns         int32         `env:"DB_MAX_CONNS" envDefault:"20"`
	MinConns         int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	MaxConnLifetime  time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"30m"`
	MaxConnIdleTime  time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	DialTimeout      time.Duration `env:"DB_DIAL_TIMEOUT" envDefault:"3s"`
	StatementTimeout time.Duration `env:"DB_STATEMENT_TIMEOUT" envDefault:"0s"`
	AutoMigrate      bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr        string        `env:"GRPC_ADDR" envDefault:":9090"`
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	MaxUploadBytes  int64         `env:"MAX_UPLOAD_BYTES" envDefault:"52428800"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// StorageConfig selects where uploaded files live.
type StorageConfig struct {
	Backend        string `env:"STORAGE_BACKEND" envDefault:"local"`
	Dir            string `env:"STORAGE_DIR" envDefault:"./uploads"`
	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET" envDefault:"permit-documents"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	MinioRegion    string `env:"MINIO_REGION"`
}

// EngineConfig tunes validation and ingestion.
type EngineConfig struct {
	TemplateDir      string        `env:"TEMPLATE_DIR"`
	WatchDir         string        `env:"WATCH_DIR"`
	WatchProjectID   string        `env:"WATCH_PROJECT_ID"`
	QueueWorkers     int           `env:"QUEUE_WORKERS" envDefault:"4"`
	QueueSize        int           `env:"QUEUE_SIZE" envDefault:"256"`
	ValidateTimeout  time.Duration `env:"VALIDATE_TIMEOUT" envDefault:"1m"`
	MaxExtractPages  int           `env:"MAX_EXTRACT_PAGES" envDefault:"0"`
	BatchConcurrency int           `env:"BATCH_CONCURRENCY" envDefault:"4"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, NewAppError("CONFIG_ERROR", "parse env", err)
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	return cfg, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("DB_DRIVER must be postgres or sqlite, got %q", c.Database.Driver), ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" && c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "at least one of GRPC_ADDR or HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_UPLOAD_BYTES must be positive", ErrInvalidInput)
	}
	switch c.Storage.Backend {
	case "local":
		if c.Storage.Dir == "" {
			return NewAppError("CONFIG_ERROR", "STORAGE_DIR is required for local storage", ErrInvalidInput)
		}
	case "minio":
		if c.Storage.MinioEndpoint == "" || c.Storage.MinioBucket == "" {
			return NewAppError("CONFIG_ERROR", "MINIO_ENDPOINT and MINIO_BUCKET are required for minio storage", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("STORAGE_BACKEND must be local or minio, got %q", c.Storage.Backend), ErrInvalidInput)
	}
	if (c.Engine.WatchDir == "") != (c.Engine.WatchProjectID == "") {
		return NewAppError("CONFIG_ERROR", "WATCH_DIR and WATCH_PROJECT_ID must be set together", ErrInvalidInput)
	}
	if c.Engine.QueueWorkers <= 0 {
		return NewAppError("CONFIG_ERROR", "QUEUE_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}
