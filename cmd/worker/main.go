// Command worker consumes OCR results from Kafka and saves them as scored
// scans.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/LabelScan-Intelligence/internal/bootstrap"
	"github.com/turtacn/LabelScan-Intelligence/internal/config"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LabelScan-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

// Build-time variables injected via ldflags.
var version = "dev"

const (
	defaultHealthPort = 8081
	shutdownTimeout   = 30 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: LABELSCAN_* environment only)")
	workerCount := flag.Int("workers", 0, "number of consumers in the group (default: worker.concurrency)")
	flag.Parse()

	if err := run(*configPath, *workerCount); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, workerCount int) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.Monitoring.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.SetDefault(logger)

	kc := cfg.Messaging.Kafka
	if !kc.Enabled {
		return fmt.Errorf("the worker requires messaging.kafka.enabled")
	}
	numWorkers := cfg.Worker.Concurrency
	if workerCount > 0 {
		numWorkers = workerCount
	}

	logger.Info("starting LabelScan worker",
		logging.String("version", version),
		logging.Int("workers", numWorkers),
		logging.String("topic", kafka.TopicOCRCompleted))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, err := bootstrap.Open(ctx, cfg, bootstrap.AllComponents, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	mgr, err := bootstrap.NewCatalogManager(ctx, cfg, infra, logger)
	if err != nil {
		return err
	}
	svc, err := bootstrap.NewScanService(cfg, infra, mgr, logger)
	if err != nil {
		return err
	}

	defaultFreq, err := scoring.ParseFrequency(cfg.Scoring.DefaultFrequency)
	if err != nil {
		return err
	}
	var locks *redis.LockFactory
	if infra.Redis != nil {
		locks = redis.NewLockFactory(infra.Redis, cfg.Database.Redis.KeyPrefix)
	}
	handler := NewOCRHandler(OCRHandlerConfig{
		Scans:            svc,
		Locks:            locks,
		DefaultFrequency: defaultFreq,
		Metrics:          infra.Metrics,
		Logger:           logger,
	})

	var deadLetter kafka.MessagePublisher
	if infra.Producer != nil {
		deadLetter = infra.Producer
	}

	consumers := make([]*kafka.Consumer, 0, numWorkers)
	defer func() {
		for i, c := range consumers {
			if err := c.Close(); err != nil {
				logger.Warn("consumer close failed", logging.Int("consumer", i), logging.Err(err))
			}
			st := c.Stats()
			logger.Info("consumer stopped",
				logging.Int("consumer", i),
				logging.Int64("processed", st.Processed),
				logging.Int64("failed", st.Failed),
				logging.Int64("dead_lettered", st.DeadLettered))
		}
	}()
	for i := 0; i < numWorkers; i++ {
		c, err := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers: kc.Brokers,
			GroupID: kc.GroupID,
			Topics:  []string{kafka.TopicOCRCompleted},
			RetryConfig: kafka.RetryConfig{
				MaxRetries:      kc.MaxRetries,
				RetryBackoff:    kc.RetryBackoff,
				DeadLetterTopic: kafka.TopicDeadLetter,
			},
		}, deadLetter, logger.With(logging.Int("consumer", i)))
		if err != nil {
			return err
		}
		c.Subscribe(kafka.TopicOCRCompleted, handler.Handle)
		if err := c.Start(ctx); err != nil {
			return err
		}
		consumers = append(consumers, c)
	}

	healthSrv := startHealthServer(cfg, infra, logger)
	logger.Info("worker pool started", logging.Int("workers", len(consumers)))

	<-ctx.Done()
	logger.Info("received shutdown signal, draining consumers")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("health server shutdown error", logging.Err(err))
	}
	return nil
}

// startHealthServer serves /healthz, /readyz and, when enabled, the metrics
// endpoint on worker.health_port.
func startHealthServer(cfg *config.Config, infra *bootstrap.Infrastructure, logger logging.Logger) *http.Server {
	port := defaultHealthPort
	if cfg.Worker.HealthPort > 0 {
		port = cfg.Worker.HealthPort
	}

	var checkers []handlers.HealthChecker
	for _, c := range infra.Checks() {
		checkers = append(checkers, handlers.NewChecker(c.Name, c.Fn))
	}
	health := handlers.NewHealthHandler(version, infra.RecordHealth(), checkers...)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", health.Liveness)
	mux.HandleFunc("/readyz", health.Readiness)
	if infra.MetricsHandler != nil {
		mux.Handle(cfg.Monitoring.Prometheus.Path, infra.MetricsHandler)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("health server listening", logging.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", logging.Err(err))
		}
	}()
	return srv
}

//Personal.AI order the ending
