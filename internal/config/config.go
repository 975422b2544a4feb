// Package config defines all configuration structures for the LabelScan
// services.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// RateLimitPerMinute caps requests per client on /api routes; 0 disables it.
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig holds Redis connection parameters for the score cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	ScoreTTL     time.Duration `mapstructure:"score_ttl"`
}

// DatabaseConfig groups the data stores.
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// KafkaConfig holds Apache Kafka producer/consumer parameters.
type KafkaConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Brokers         []string      `mapstructure:"brokers"`
	GroupID         string        `mapstructure:"group_id"`
	ClientID        string        `mapstructure:"client_id"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
	BatchTimeout    time.Duration `mapstructure:"batch_timeout"`
	AutoCreateTopic bool          `mapstructure:"auto_create_topics"`
}

// MessagingConfig groups the brokers.
type MessagingConfig struct {
	Kafka KafkaConfig `mapstructure:"kafka"`
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters.
type MinIOConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Region        string        `mapstructure:"region"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	ImageBucket   string        `mapstructure:"image_bucket"`
	CatalogBucket string        `mapstructure:"catalog_bucket"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// StorageConfig groups object storage.
type StorageConfig struct {
	MinIO MinIOConfig `mapstructure:"minio"`
}

// Catalog sources.
const (
	CatalogSourceEmbedded = "embedded"
	CatalogSourceFile     = "file"
	CatalogSourceMinIO    = "minio"
)

// CatalogConfig selects where the risk catalog is loaded from.
type CatalogConfig struct {
	Source    string `mapstructure:"source"` // "embedded" | "file" | "minio"
	Path      string `mapstructure:"path"`
	ObjectKey string `mapstructure:"object_key"`
	Strict    bool   `mapstructure:"strict"`
}

// ScoringConfig holds scoring defaults.
type ScoringConfig struct {
	DefaultFrequency string `mapstructure:"default_frequency"`
}

// AuthConfig holds bearer-token verification parameters.
type AuthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
	Audience  string `mapstructure:"audience"`
}

// PrometheusConfig holds metrics exposition parameters.
type PrometheusConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// MonitoringConfig groups logging and metrics.
type MonitoringConfig struct {
	Logging    logging.LogConfig `mapstructure:"logging"`
	Prometheus PrometheusConfig  `mapstructure:"prometheus"`
}

// WorkerConfig holds OCR ingestion worker parameters.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	HealthPort  int `mapstructure:"health_port"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure shared by the API server, the
// worker and the CLI.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Messaging  MessagingConfig  `mapstructure:"messaging"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Scoring    ScoringConfig    `mapstructure:"scoring"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Worker     WorkerConfig     `mapstructure:"worker"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.RateLimitPerMinute < 0 {
		return fmt.Errorf("config: server.rate_limit_per_minute must be >= 0")
	}

	// Postgres
	pg := c.Database.Postgres
	if pg.Host == "" {
		return fmt.Errorf("config: database.postgres.host is required")
	}
	if pg.Port < 1 || pg.Port > 65535 {
		return fmt.Errorf("config: database.postgres.port %d is out of range [1, 65535]", pg.Port)
	}
	if pg.DBName == "" {
		return fmt.Errorf("config: database.postgres.db_name is required")
	}
	if pg.MaxOpenConns < 1 {
		return fmt.Errorf("config: database.postgres.max_open_conns must be >= 1, got %d", pg.MaxOpenConns)
	}

	// Redis
	if c.Database.Redis.Enabled && c.Database.Redis.Addr == "" {
		return fmt.Errorf("config: database.redis.addr is required when the cache is enabled")
	}
	if c.Database.Redis.DB < 0 {
		return fmt.Errorf("config: database.redis.db must be >= 0, got %d", c.Database.Redis.DB)
	}

	// Kafka
	if c.Messaging.Kafka.Enabled {
		if len(c.Messaging.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: messaging.kafka.brokers must contain at least one broker address")
		}
		if c.Messaging.Kafka.GroupID == "" {
			return fmt.Errorf("config: messaging.kafka.group_id is required")
		}
	}

	// MinIO
	if c.Storage.MinIO.Enabled && c.Storage.MinIO.Endpoint == "" {
		return fmt.Errorf("config: storage.minio.endpoint is required when storage is enabled")
	}

	// Catalog
	switch c.Catalog.Source {
	case CatalogSourceEmbedded:
	case CatalogSourceFile:
		if c.Catalog.Path == "" {
			return fmt.Errorf("config: catalog.path is required for the file source")
		}
	case CatalogSourceMinIO:
		if !c.Storage.MinIO.Enabled {
			return fmt.Errorf("config: catalog.source minio requires storage.minio.enabled")
		}
		if c.Catalog.ObjectKey == "" {
			return fmt.Errorf("config: catalog.object_key is required for the minio source")
		}
	default:
		return fmt.Errorf("config: catalog.source %q is invalid; expected embedded|file|minio", c.Catalog.Source)
	}

	// Scoring
	if _, err := scoring.ParseFrequency(c.Scoring.DefaultFrequency); err != nil {
		return fmt.Errorf("config: scoring.default_frequency %q is invalid; expected Daily|Weekly|Rare", c.Scoring.DefaultFrequency)
	}

	// Auth
	if c.Auth.Enabled && len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("config: auth.jwt_secret must be at least 16 bytes when auth is enabled")
	}

	// Worker
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be >= 1, got %d", c.Worker.Concurrency)
	}

	// Logging
	switch c.Monitoring.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: monitoring.logging.level %q is invalid; expected debug|info|warn|error", c.Monitoring.Logging.Level)
	}
	switch c.Monitoring.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: monitoring.logging.format %q is invalid; expected json|console", c.Monitoring.Logging.Format)
	}

	return nil
}

//Personal.AI order the ending
