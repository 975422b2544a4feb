package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost = "0.0.0.0"
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultDBHost         = "localhost"
	DefaultDBPort         = 5432
	DefaultDBName         = "labelscan"
	DefaultDBMaxOpenConns = 25
	DefaultDBMaxIdleConns = 5

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "labelscan:"
	DefaultScoreTTL       = 24 * time.Hour

	DefaultKafkaBroker   = "localhost:9092"
	DefaultKafkaGroupID  = "labelscan-worker"
	DefaultKafkaClientID = "labelscan"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultImageBucket   = "labelscan-images"
	DefaultCatalogBucket = "labelscan-catalogs"

	DefaultFrequency = "Weekly"

	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "labelscan"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultWorkerConcurrency = 4
	DefaultWorkerHealthPort  = 8081
)

// ApplyDefaults fills every zero-value field in cfg with the default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  Boolean switches are
// not defaulted: false is indistinguishable from unset.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = 10 << 20
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	// ── Postgres ──────────────────────────────────────────────────────────────
	pg := &cfg.Database.Postgres
	if pg.Host == "" {
		pg.Host = DefaultDBHost
	}
	if pg.Port == 0 {
		pg.Port = DefaultDBPort
	}
	if pg.DBName == "" {
		pg.DBName = DefaultDBName
	}
	if pg.SSLMode == "" {
		pg.SSLMode = "disable"
	}
	if pg.MaxOpenConns == 0 {
		pg.MaxOpenConns = DefaultDBMaxOpenConns
	}
	if pg.MaxIdleConns == 0 {
		pg.MaxIdleConns = DefaultDBMaxIdleConns
	}
	if pg.ConnMaxLifetime == 0 {
		pg.ConnMaxLifetime = 30 * time.Minute
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	rd := &cfg.Database.Redis
	if rd.Addr == "" {
		rd.Addr = DefaultRedisAddr
	}
	if rd.KeyPrefix == "" {
		rd.KeyPrefix = DefaultRedisKeyPrefix
	}
	if rd.ScoreTTL == 0 {
		rd.ScoreTTL = DefaultScoreTTL
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	kf := &cfg.Messaging.Kafka
	if len(kf.Brokers) == 0 {
		kf.Brokers = []string{DefaultKafkaBroker}
	}
	if kf.GroupID == "" {
		kf.GroupID = DefaultKafkaGroupID
	}
	if kf.ClientID == "" {
		kf.ClientID = DefaultKafkaClientID
	}
	if kf.MaxRetries == 0 {
		kf.MaxRetries = 3
	}
	if kf.RetryBackoff == 0 {
		kf.RetryBackoff = time.Second
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	mn := &cfg.Storage.MinIO
	if mn.Endpoint == "" {
		mn.Endpoint = DefaultMinIOEndpoint
	}
	if mn.ImageBucket == "" {
		mn.ImageBucket = DefaultImageBucket
	}
	if mn.CatalogBucket == "" {
		mn.CatalogBucket = DefaultCatalogBucket
	}
	if mn.PresignExpiry == 0 {
		mn.PresignExpiry = 15 * time.Minute
	}

	// ── Catalog / scoring ─────────────────────────────────────────────────────
	if cfg.Catalog.Source == "" {
		cfg.Catalog.Source = CatalogSourceEmbedded
	}
	if cfg.Scoring.DefaultFrequency == "" {
		cfg.Scoring.DefaultFrequency = DefaultFrequency
	}

	// ── Monitoring ────────────────────────────────────────────────────────────
	if cfg.Monitoring.Prometheus.Path == "" {
		cfg.Monitoring.Prometheus.Path = DefaultMetricsPath
	}
	if cfg.Monitoring.Prometheus.Namespace == "" {
		cfg.Monitoring.Prometheus.Namespace = DefaultMetricsNamespace
	}
	if cfg.Monitoring.Logging.Level == "" {
		cfg.Monitoring.Logging.Level = DefaultLogLevel
	}
	if cfg.Monitoring.Logging.Format == "" {
		cfg.Monitoring.Logging.Format = DefaultLogFormat
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.HealthPort == 0 {
		cfg.Worker.HealthPort = DefaultWorkerHealthPort
	}
}

// NewDefaultConfig returns a Config with every default applied.  It is valid
// as-is and runs with the embedded catalog and no optional backends.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending
