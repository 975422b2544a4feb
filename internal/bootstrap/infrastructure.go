// Package bootstrap assembles the infrastructure clients and application
// services shared by the API server, the worker and the CLI.
package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/turtacn/LabelScan-Intelligence/internal/config"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/storage/minio"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
)

// Components selects which clients Open connects.  Optional stores are
// connected only when they are also enabled in the config.
type Components struct {
	Postgres bool
	Redis    bool
	MinIO    bool
	Kafka    bool
	Metrics  bool
}

// AllComponents is what the long-running processes need.
var AllComponents = Components{Postgres: true, Redis: true, MinIO: true, Kafka: true, Metrics: true}

// Infrastructure holds the connected clients.  Any field may be nil when the
// component was not requested or is disabled.
type Infrastructure struct {
	Postgres       *postgres.Connection
	Redis          *redis.Client
	MinIO          *minio.Client
	Producer       *kafka.Producer
	Metrics        *prometheus.AppMetrics
	MetricsHandler http.Handler

	logger logging.Logger
}

// Open connects the requested components.  On failure everything opened so
// far is closed.
func Open(ctx context.Context, cfg *config.Config, want Components, log logging.Logger) (*Infrastructure, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	infra := &Infrastructure{logger: log}

	if want.Metrics && cfg.Monitoring.Prometheus.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Monitoring.Prometheus.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, log)
		if err != nil {
			return nil, err
		}
		infra.Metrics = prometheus.NewAppMetrics(collector)
		infra.MetricsHandler = collector.Handler()
	}

	if want.Postgres {
		if cfg.Database.Postgres.AutoMigrate {
			if err := postgres.RunMigrations(cfg.Database.Postgres, log); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "schema migration failed")
			}
		}
		conn, err := postgres.NewConnection(cfg.Database.Postgres, log)
		if err != nil {
			return nil, err
		}
		infra.Postgres = conn
	}

	if want.Redis && cfg.Database.Redis.Enabled {
		rc, err := redis.NewClient(cfg.Database.Redis, log)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.Redis = rc
	}

	if want.MinIO && cfg.Storage.MinIO.Enabled {
		mc, err := minio.NewClient(cfg.Storage.MinIO, log)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.MinIO = mc
	}

	if want.Kafka && cfg.Messaging.Kafka.Enabled {
		kc := cfg.Messaging.Kafka
		producer, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:         kc.Brokers,
			ClientID:        kc.ClientID,
			MaxRetries:      kc.MaxRetries,
			BatchTimeout:    kc.BatchTimeout,
			AutoCreateTopic: kc.AutoCreateTopic,
		}, log)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.Producer = producer
		if kc.AutoCreateTopic {
			ensureTopics(ctx, kc.Brokers, log)
		}
	}

	log.Info("infrastructure initialized",
		logging.Bool("postgres", infra.Postgres != nil),
		logging.Bool("redis", infra.Redis != nil),
		logging.Bool("minio", infra.MinIO != nil),
		logging.Bool("kafka", infra.Producer != nil),
		logging.Bool("metrics", infra.Metrics != nil))
	return infra, nil
}

// ensureTopics provisions the default topics.  Failures are logged; the
// writer's own auto-creation still applies.
func ensureTopics(ctx context.Context, brokers []string, log logging.Logger) {
	tm, err := kafka.NewTopicManager(brokers, log)
	if err != nil {
		log.Warn("kafka topic manager unavailable", logging.Err(err))
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := tm.EnsureTopics(ctx, kafka.DefaultTopics()); err != nil {
		log.Warn("failed to provision kafka topics", logging.Err(err))
	}
}

// Close releases every open client in reverse dependency order.
func (i *Infrastructure) Close() {
	if i.Producer != nil {
		if err := i.Producer.Close(); err != nil {
			i.logger.Warn("kafka producer close failed", logging.Err(err))
		}
	}
	if i.MinIO != nil {
		_ = i.MinIO.Close()
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			i.logger.Warn("redis close failed", logging.Err(err))
		}
	}
	if i.Postgres != nil {
		if err := i.Postgres.Close(); err != nil {
			i.logger.Warn("postgres close failed", logging.Err(err))
		}
	}
}

// Check is a named readiness probe of one connected component.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Checks returns a probe for every connected store.  Kafka is left out: the
// writer connects lazily and the consumer reports its own fetch errors.
func (i *Infrastructure) Checks() []Check {
	var checks []Check
	if i.Postgres != nil {
		checks = append(checks, Check{Name: "postgres", Fn: i.Postgres.HealthCheck})
	}
	if i.Redis != nil {
		checks = append(checks, Check{Name: "redis", Fn: i.Redis.Ping})
	}
	if i.MinIO != nil {
		mc := i.MinIO
		checks = append(checks, Check{Name: "minio", Fn: func(ctx context.Context) error {
			status, err := mc.HealthCheck(ctx)
			if err != nil {
				return err
			}
			if !status.Healthy {
				return errors.New(errors.ErrCodeServiceUnavailable, status.Error)
			}
			return nil
		}})
	}
	return checks
}

// RecordReload returns a catalog reload recorder backed by the metrics, or
// nil when metrics are off.
func (i *Infrastructure) RecordReload() func(version string, entries int, err error) {
	if i.Metrics == nil {
		return nil
	}
	m := i.Metrics
	return func(version string, entries int, err error) {
		prometheus.RecordCatalogReload(m, version, entries, err)
	}
}

// RecordHealth returns a health recorder backed by the metrics, or nil.
func (i *Infrastructure) RecordHealth() func(component string, up bool) {
	if i.Metrics == nil {
		return nil
	}
	m := i.Metrics
	return func(component string, up bool) {
		prometheus.SetHealth(m, component, up)
	}
}

//Personal.AI order the ending
