// Package catalog manages the live risk catalog: loading it from a source,
// compiling the scoring engine over it, and swapping both atomically when the
// catalog is reloaded.
package catalog

import (
	"context"
	"sync"
	"time"

	domaincatalog "github.com/turtacn/LabelScan-Intelligence/internal/domain/catalog"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
	engine "github.com/turtacn/LabelScan-Intelligence/internal/intelligence/scoring"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
)

// -----------------------------------------------------------------------
// Collaborator interfaces
// -----------------------------------------------------------------------

// EngineTarget receives the engine compiled after every successful load.
type EngineTarget interface {
	SwapEngine(e engine.Evaluator)
}

// CacheInvalidator drops cached results computed under an old catalog.
type CacheInvalidator interface {
	InvalidateCatalog(ctx context.Context, fingerprint string) (int64, error)
}

// ReloadRecorder receives one observation per load attempt.
type ReloadRecorder func(version string, entries int, err error)

// -----------------------------------------------------------------------
// Manager
// -----------------------------------------------------------------------

// Snapshot is the state of the live catalog.
type Snapshot struct {
	Version     string                `json:"version"`
	Fingerprint string                `json:"fingerprint"`
	Entries     int                   `json:"entries"`
	Categories  []string              `json:"categories"`
	Source      string                `json:"source"`
	LoadedAt    time.Time             `json:"loaded_at"`
	Issues      []domaincatalog.Issue `json:"issues"`
}

// ManagerConfig holds the dependencies of a Manager.  Source is mandatory.
type ManagerConfig struct {
	Source        domaincatalog.Source
	Strict        bool
	EngineOptions []engine.EngineOption
	Target        EngineTarget
	Cache         CacheInvalidator
	Record        ReloadRecorder
	Logger        logging.Logger
}

// Manager owns the live catalog and engine.
type Manager struct {
	cfg ManagerConfig
	log logging.Logger

	mu       sync.RWMutex
	target   EngineTarget
	source   domaincatalog.Source
	catalog  *domaincatalog.Catalog
	engine   *engine.Engine
	issues   []domaincatalog.Issue
	loadedAt time.Time
}

// NewManager creates a Manager.  Nothing is loaded until Load is called.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Source == nil {
		return nil, errors.InvalidParam("catalog manager requires a source")
	}
	log := cfg.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Manager{cfg: cfg, log: log.Named("catalog"), source: cfg.Source, target: cfg.Target}, nil
}

// SetTarget attaches t after construction, for targets that are built from
// the first loaded engine.  When a catalog is already live t receives its
// engine immediately.
func (m *Manager) SetTarget(t EngineTarget) {
	m.mu.Lock()
	m.target = t
	eng := m.engine
	m.mu.Unlock()
	if t != nil && eng != nil {
		t.SwapEngine(eng)
	}
}

// Load fetches the catalog from the configured source and makes it live.
// On failure the previous catalog stays live.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.RLock()
	src := m.source
	m.mu.RUnlock()
	return m.load(ctx, src)
}

// Reload switches to src and loads from it.  The source is only replaced when
// the load succeeds.
func (m *Manager) Reload(ctx context.Context, src domaincatalog.Source) error {
	if src == nil {
		return errors.InvalidParam("catalog source is nil")
	}
	return m.load(ctx, src)
}

func (m *Manager) load(ctx context.Context, src domaincatalog.Source) (err error) {
	var cat *domaincatalog.Catalog
	defer func() {
		if m.cfg.Record == nil {
			return
		}
		if cat != nil && err == nil {
			m.cfg.Record(cat.Version(), cat.Len(), nil)
		} else {
			m.cfg.Record("", 0, err)
		}
	}()

	cat, issues, err := domaincatalog.Load(ctx, src, domaincatalog.LoadOptions{Strict: m.cfg.Strict})
	if err != nil {
		m.log.Error("catalog load failed", logging.String("source", src.Describe()), logging.Err(err))
		return err
	}
	for _, is := range issues {
		m.log.Warn("catalog issue", logging.String("issue", is.String()))
	}

	opts := append([]engine.EngineOption{engine.WithLogger(m.log)}, m.cfg.EngineOptions...)
	eng, err := engine.NewEngine(cat, opts...)
	if err != nil {
		return err
	}

	m.mu.Lock()
	previous := m.catalog
	m.source = src
	m.catalog = cat
	m.engine = eng
	m.issues = issues
	m.loadedAt = time.Now().UTC()
	target := m.target
	m.mu.Unlock()

	if target != nil {
		target.SwapEngine(eng)
	}
	if previous != nil && previous.Fingerprint() != cat.Fingerprint() && m.cfg.Cache != nil {
		n, cerr := m.cfg.Cache.InvalidateCatalog(ctx, previous.Fingerprint())
		if cerr != nil {
			m.log.Warn("failed to invalidate cached scores",
				logging.String("version", previous.Version()),
				logging.String("fingerprint", previous.Fingerprint()),
				logging.Err(cerr))
		} else {
			m.log.Info("invalidated cached scores",
				logging.String("version", previous.Version()),
				logging.String("fingerprint", previous.Fingerprint()),
				logging.Int64("keys", n))
		}
	}

	m.log.Info("catalog loaded",
		logging.String("source", src.Describe()),
		logging.String("version", cat.Version()),
		logging.Int("entries", cat.Len()),
		logging.Int("issues", len(issues)))
	return nil
}

// Engine returns the live engine, or nil before the first successful load.
func (m *Manager) Engine() *engine.Engine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.engine
}

// Catalog returns the live catalog, or nil before the first successful load.
func (m *Manager) Catalog() *domaincatalog.Catalog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.catalog
}

// Snapshot describes the live catalog.
func (m *Manager) Snapshot() (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.catalog == nil {
		return nil, errors.New(errors.ErrCodeEngineNotReady, "no catalog loaded")
	}
	return &Snapshot{
		Version:     m.catalog.Version(),
		Fingerprint: m.catalog.Fingerprint(),
		Entries:     m.catalog.Len(),
		Categories:  m.catalog.Categories(),
		Source:      m.source.Describe(),
		LoadedAt:    m.loadedAt,
		Issues:      append(make([]domaincatalog.Issue, 0, len(m.issues)), m.issues...),
	}, nil
}

//Personal.AI order the ending
