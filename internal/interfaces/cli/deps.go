package cli

import (
	"context"

	appcatalog "github.com/turtacn/LabelScan-Intelligence/internal/application/catalog"
	appscan "github.com/turtacn/LabelScan-Intelligence/internal/application/scan"
	"github.com/turtacn/LabelScan-Intelligence/internal/bootstrap"
	domaincatalog "github.com/turtacn/LabelScan-Intelligence/internal/domain/catalog"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/storage/minio"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
)

// Migrator applies and inspects schema migrations.
type Migrator interface {
	Up() error
	Down(steps int) error
	Status() (version uint, dirty bool, err error)
	Force(version int) error
	Close() error
}

// CatalogPublisher uploads a catalog document to shared storage.
type CatalogPublisher interface {
	Publish(ctx context.Context, data []byte) (*domaincatalog.Catalog, error)
	Describe() string
}

// CommandDependencies builds the backends commands need.  Each factory
// returns a release func the command calls when done.
type CommandDependencies struct {
	OpenCatalog      func(ctx context.Context, cc *CLIContext) (*appcatalog.Manager, func(), error)
	OpenScans        func(ctx context.Context, cc *CLIContext) (appscan.Service, func(), error)
	OpenMigrator     func(ctx context.Context, cc *CLIContext) (Migrator, error)
	OpenCatalogStore func(ctx context.Context, cc *CLIContext) (CatalogPublisher, func(), error)
}

func (d CommandDependencies) withDefaults() CommandDependencies {
	if d.OpenCatalog == nil {
		d.OpenCatalog = openCatalog
	}
	if d.OpenScans == nil {
		d.OpenScans = openScans
	}
	if d.OpenMigrator == nil {
		d.OpenMigrator = openMigrator
	}
	if d.OpenCatalogStore == nil {
		d.OpenCatalogStore = openCatalogStore
	}
	return d
}

// openCatalog connects minio only when the catalog lives there.
func openCatalog(ctx context.Context, cc *CLIContext) (*appcatalog.Manager, func(), error) {
	want := bootstrap.Components{MinIO: cc.Config.Catalog.Source == "minio"}
	infra, err := bootstrap.Open(ctx, cc.Config, want, cc.Logger)
	if err != nil {
		return nil, nil, err
	}
	mgr, err := bootstrap.NewCatalogManager(ctx, cc.Config, infra, cc.Logger)
	if err != nil {
		infra.Close()
		return nil, nil, err
	}
	return mgr, infra.Close, nil
}

// openScans connects everything the scan service publishes to, so history
// edits made from the CLI emit the same events as the API.
func openScans(ctx context.Context, cc *CLIContext) (appscan.Service, func(), error) {
	want := bootstrap.Components{Postgres: true, Redis: true, MinIO: true, Kafka: true}
	infra, err := bootstrap.Open(ctx, cc.Config, want, cc.Logger)
	if err != nil {
		return nil, nil, err
	}
	mgr, err := bootstrap.NewCatalogManager(ctx, cc.Config, infra, cc.Logger)
	if err != nil {
		infra.Close()
		return nil, nil, err
	}
	svc, err := bootstrap.NewScanService(cc.Config, infra, mgr, cc.Logger)
	if err != nil {
		infra.Close()
		return nil, nil, err
	}
	return svc, infra.Close, nil
}

func openMigrator(_ context.Context, cc *CLIContext) (Migrator, error) {
	mg, err := postgres.OpenMigrator(cc.Config.Database.Postgres, cc.Logger)
	if err != nil {
		return nil, err
	}
	return mg, nil
}

func openCatalogStore(ctx context.Context, cc *CLIContext) (CatalogPublisher, func(), error) {
	if !cc.Config.Storage.MinIO.Enabled {
		return nil, nil, errors.New(errors.ErrCodeServiceUnavailable, "catalog push requires storage.minio.enabled")
	}
	key := cc.Config.Catalog.ObjectKey
	if key == "" {
		return nil, nil, errors.InvalidParam("catalog.object_key is required to push a catalog")
	}
	infra, err := bootstrap.Open(ctx, cc.Config, bootstrap.Components{MinIO: true}, cc.Logger)
	if err != nil {
		return nil, nil, err
	}
	return minio.NewCatalogSource(infra.MinIO, key), infra.Close, nil
}

//Personal.AI order the ending
