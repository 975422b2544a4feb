package bootstrap

import (
	"context"

	appcatalog "github.com/turtacn/LabelScan-Intelligence/internal/application/catalog"
	appscan "github.com/turtacn/LabelScan-Intelligence/internal/application/scan"
	"github.com/turtacn/LabelScan-Intelligence/internal/config"
	domaincatalog "github.com/turtacn/LabelScan-Intelligence/internal/domain/catalog"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/storage/minio"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
)

// CatalogSource resolves the configured catalog source.  store is required
// only for the minio source.
func CatalogSource(cfg config.CatalogConfig, store *minio.Client) (domaincatalog.Source, error) {
	switch cfg.Source {
	case "", config.CatalogSourceEmbedded:
		return domaincatalog.EmbeddedSource{}, nil
	case config.CatalogSourceFile:
		if cfg.Path == "" {
			return nil, errors.InvalidParam("catalog.path is required for the file source")
		}
		return domaincatalog.FileSource{Path: cfg.Path}, nil
	case config.CatalogSourceMinIO:
		if store == nil {
			return nil, errors.New(errors.ErrCodeServiceUnavailable, "catalog source minio requires an object store")
		}
		if cfg.ObjectKey == "" {
			return nil, errors.InvalidParam("catalog.object_key is required for the minio source")
		}
		return minio.NewCatalogSource(store, cfg.ObjectKey), nil
	}
	return nil, errors.InvalidParam("unknown catalog source").WithDetail(cfg.Source)
}

// NewCatalogManager builds and loads the catalog manager for cfg.  It is
// enough for stateless evaluation; NewScanService adds the history.
func NewCatalogManager(ctx context.Context, cfg *config.Config, infra *Infrastructure, log logging.Logger) (*appcatalog.Manager, error) {
	if infra == nil {
		infra = &Infrastructure{logger: logging.NewNopLogger()}
	}
	src, err := CatalogSource(cfg.Catalog, infra.MinIO)
	if err != nil {
		return nil, err
	}
	mcfg := appcatalog.ManagerConfig{
		Source: src,
		Strict: cfg.Catalog.Strict,
		Record: infra.RecordReload(),
		Logger: log,
	}
	if sc := infra.ScoreCache(cfg); sc != nil {
		mcfg.Cache = sc
	}
	mgr, err := appcatalog.NewManager(mcfg)
	if err != nil {
		return nil, err
	}
	if err := mgr.Load(ctx); err != nil {
		return nil, err
	}
	return mgr, nil
}

// ScoreCache returns the redis score cache, or nil when redis is off.
func (i *Infrastructure) ScoreCache(cfg *config.Config) *redis.ScoreCache {
	if i.Redis == nil {
		return nil
	}
	cache := redis.NewRedisCache(i.Redis, i.logger, redis.WithPrefix(cfg.Database.Redis.KeyPrefix))
	return redis.NewScoreCache(cache, cfg.Database.Redis.ScoreTTL, i.logger)
}

// NewScanService wires the scan service over the open infrastructure and
// attaches it to mgr so catalog reloads reach it.  Postgres is required.
func NewScanService(cfg *config.Config, infra *Infrastructure, mgr *appcatalog.Manager, log logging.Logger) (appscan.Service, error) {
	if infra == nil || infra.Postgres == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "scan history requires postgres")
	}
	eng := mgr.Engine()
	if eng == nil {
		return nil, errors.New(errors.ErrCodeEngineNotReady, "no catalog loaded")
	}

	scfg := appscan.ServiceConfig{
		Engine:         eng,
		Repository:     repositories.NewPostgresScanRepo(infra.Postgres, log),
		Logger:         log,
		ImageURLExpiry: cfg.Storage.MinIO.PresignExpiry,
	}
	if sc := infra.ScoreCache(cfg); sc != nil {
		scfg.Cache = sc
	}
	if infra.Producer != nil {
		scfg.Publisher = kafka.NewScanEventPublisher(infra.Producer)
	}
	if infra.MinIO != nil {
		scfg.Images = minio.NewImageStore(infra.MinIO, log)
	}
	if infra.Metrics != nil {
		scfg.Metrics = prometheus.NewScanMetrics(infra.Metrics)
	}

	svc, err := appscan.NewService(scfg)
	if err != nil {
		return nil, err
	}
	mgr.SetTarget(svc)
	return svc, nil
}

//Personal.AI order the ending
