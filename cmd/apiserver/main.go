// Command apiserver serves the LabelScan REST API.
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

	appcatalog "github.com/turtacn/LabelScan-Intelligence/internal/application/catalog"
	appscan "github.com/turtacn/LabelScan-Intelligence/internal/application/scan"
	"github.com/turtacn/LabelScan-Intelligence/internal/bootstrap"
	"github.com/turtacn/LabelScan-Intelligence/internal/config"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/auth/token"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/LabelScan-Intelligence/internal/interfaces/http"
	"github.com/turtacn/LabelScan-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/LabelScan-Intelligence/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var version = "dev"

// limiterPruneInterval is how often idle in-process rate limit buckets are
// dropped.
const limiterPruneInterval = 5 * time.Minute

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: LABELSCAN_* environment only)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.Monitoring.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.SetDefault(logger)

	logger.Info("starting LabelScan API server",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()),
		logging.String("catalog_source", cfg.Catalog.Source))

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

	router, err := buildRouter(ctx, cfg, infra, mgr, svc, logger)
	if err != nil {
		return err
	}

	go reloadOnHangup(ctx, mgr, logger)
	if configPath != "" {
		watchConfig(ctx, configPath, infra, mgr, logger)
	}

	return httpserver.NewServer(cfg.Server, router, logger).Run(ctx)
}

// buildRouter wires handlers and middleware around the scan service.  infra
// may be nil when no optional backends are connected.
func buildRouter(ctx context.Context, cfg *config.Config, infra *bootstrap.Infrastructure, mgr *appcatalog.Manager, svc appscan.Service, logger logging.Logger) (http.Handler, error) {
	if infra == nil {
		infra = &bootstrap.Infrastructure{}
	}

	checkers := []handlers.HealthChecker{
		handlers.NewChecker("catalog", func(context.Context) error {
			_, err := mgr.Snapshot()
			return err
		}),
	}
	for _, c := range infra.Checks() {
		checkers = append(checkers, handlers.NewChecker(c.Name, c.Fn))
	}

	var validator middleware.TokenValidator
	if cfg.Auth.Enabled {
		v, err := token.NewVerifier(cfg.Auth)
		if err != nil {
			return nil, err
		}
		validator = v
	}

	rc := httpserver.RouterConfig{
		ScanHandler:    handlers.NewScanHandler(svc, logger, cfg.Server.MaxBodySize),
		CatalogHandler: handlers.NewCatalogHandler(mgr, logger),
		HealthHandler:  handlers.NewHealthHandler(version, infra.RecordHealth(), checkers...),
		Auth:           middleware.NewAuthMiddleware(validator, middleware.AuthConfig{}, logger),
		Metrics:        infra.MetricsHandler,
		MetricsPath:    cfg.Monitoring.Prometheus.Path,
		Logger:         logger,
	}
	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		cors := middleware.DefaultCORSConfig(cfg.Server.CORSAllowedOrigins)
		rc.CORS = &cors
	}
	if m := infra.Metrics; m != nil {
		rc.Recorder = func(method, route string, statusCode int, duration time.Duration) {
			prometheus.RecordHTTPRequest(m, method, route, statusCode, duration)
		}
	}

	if limit := cfg.Server.RateLimitPerMinute; limit > 0 {
		if infra.Redis != nil {
			rc.RateLimiter = middleware.NewRedisWindowLimiter(infra.Redis.Underlying(), limit, time.Minute)
		} else {
			tb := middleware.NewTokenBucketLimiter(float64(limit)/60, limit)
			go pruneLimiter(ctx, tb, logger)
			rc.RateLimiter = tb
		}
	}

	return httpserver.NewRouter(rc), nil
}

func pruneLimiter(ctx context.Context, tb *middleware.TokenBucketLimiter, logger logging.Logger) {
	ticker := time.NewTicker(limiterPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := tb.Prune(limiterPruneInterval); n > 0 {
				logger.Debug("pruned idle rate limit buckets", logging.Int("count", n))
			}
		}
	}
}

// reloadOnHangup reloads the catalog from its current source on SIGHUP.
func reloadOnHangup(ctx context.Context, mgr *appcatalog.Manager, logger logging.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := mgr.Load(ctx); err != nil {
				logger.Error("catalog reload failed", logging.Err(err))
			}
		}
	}
}

// watchConfig applies runtime-safe changes from the config file: the log
// level and the catalog source.  Everything else needs a restart.
func watchConfig(ctx context.Context, path string, infra *bootstrap.Infrastructure, mgr *appcatalog.Manager, logger logging.Logger) {
	onChange := func(next *config.Config) {
		if setter, ok := logger.(logging.LevelSetter); ok {
			setter.SetLevel(next.Monitoring.Logging.Level)
		}
		src, err := bootstrap.CatalogSource(next.Catalog, infra.MinIO)
		if err != nil {
			logger.Error("ignoring catalog change", logging.Err(err))
			return
		}
		if err := mgr.Reload(ctx, src); err != nil {
			logger.Error("catalog reload failed", logging.Err(err), logging.String("source", src.Describe()))
		}
	}
	onError := func(err error) {
		logger.Warn("config change rejected", logging.Err(err))
	}
	if err := config.Watch(path, onChange, onError); err != nil {
		logger.Warn("config watch disabled", logging.Err(err))
		return
	}
	logger.Info("watching config for changes", logging.String("path", path))
}

//Personal.AI order the ending
