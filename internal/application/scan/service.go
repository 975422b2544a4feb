// Package scan orchestrates label scans: stateless evaluation through the
// score cache, and the persisted scan history with its image archive,
// lifecycle events and metrics.
package scan

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	domainscan "github.com/turtacn/LabelScan-Intelligence/internal/domain/scan"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LabelScan-Intelligence/internal/intelligence/extractor"
	engine "github.com/turtacn/LabelScan-Intelligence/internal/intelligence/scoring"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

// -----------------------------------------------------------------------
// Request / Response DTOs
// -----------------------------------------------------------------------

// SubmitRequest describes a scan to evaluate and save.
type SubmitRequest struct {
	OwnerID   string            `json:"owner_id"`
	Name      string            `json:"name,omitempty"`
	Text      string            `json:"text"`
	Frequency scoring.Frequency `json:"frequency"`
	// ExtractFromOCR treats Text as raw OCR output and keeps only the part
	// after the "Ingredients" heading.
	ExtractFromOCR bool `json:"extract_from_ocr,omitempty"`
	// ImageKey references an image archived earlier, e.g. by the OCR pipeline.
	ImageKey string             `json:"image_key,omitempty"`
	Image    *domainscan.Image `json:"-"`
}

// HistoryQuery selects a page of a caller's scans.
type HistoryQuery struct {
	Page      int               `json:"page"`
	PageSize  int               `json:"page_size"`
	Frequency scoring.Frequency `json:"frequency,omitempty"`
	Grade     scoring.Grade     `json:"grade,omitempty"`
}

// HistoryPage is one page of scans, newest first.
type HistoryPage struct {
	Items    []*domainscan.Scan `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// -----------------------------------------------------------------------
// Collaborator interfaces
// -----------------------------------------------------------------------

// ScoreCache memoises engine results.  Keys include the catalog fingerprint,
// so an edited catalog never serves stale results even when its version
// label is unchanged.
type ScoreCache interface {
	Get(ctx context.Context, text string, freq scoring.Frequency, fingerprint string) (*scoring.ScoreResult, bool, error)
	Set(ctx context.Context, text string, freq scoring.Frequency, fingerprint string, res *scoring.ScoreResult) error
}

// Metrics receives operational telemetry from the service.
type Metrics interface {
	RecordEvaluation(freq scoring.Frequency, res *scoring.ScoreResult, duration time.Duration)
	RecordCacheAccess(hit bool)
	RecordScanOperation(op string, err error)
}

type noopMetrics struct{}

func (noopMetrics) RecordEvaluation(scoring.Frequency, *scoring.ScoreResult, time.Duration) {}
func (noopMetrics) RecordCacheAccess(bool)                                                 {}
func (noopMetrics) RecordScanOperation(string, error)                                      {}

// -----------------------------------------------------------------------
// Service Interface
// -----------------------------------------------------------------------

// Service is the application-level API for scans.
type Service interface {
	// Evaluate scores text without persisting anything.
	Evaluate(ctx context.Context, text string, freq scoring.Frequency) (*scoring.ScoreResult, error)
	// Submit evaluates text and saves the scan for the caller.
	Submit(ctx context.Context, req *SubmitRequest) (*domainscan.Scan, error)
	// Get returns one of the caller's scans.
	Get(ctx context.Context, ownerID, id string) (*domainscan.Scan, error)
	// History lists the caller's scans, newest first.
	History(ctx context.Context, ownerID string, q HistoryQuery) (*HistoryPage, error)
	// Recompute re-evaluates the stored text under a new frequency.
	Recompute(ctx context.Context, ownerID, id string, freq scoring.Frequency) (*domainscan.Scan, error)
	// Delete removes one of the caller's scans and its archived image.
	Delete(ctx context.Context, ownerID, id string) error
	// ImageURL returns a time-limited download link for the scan's image.
	ImageURL(ctx context.Context, ownerID, id string) (string, error)
	// SwapEngine replaces the evaluator, e.g. after a catalog reload.
	SwapEngine(e engine.Evaluator)
	// CatalogVersion reports the catalog revision currently used.
	CatalogVersion() string
}

// -----------------------------------------------------------------------
// Service Implementation
// -----------------------------------------------------------------------

// ServiceConfig holds the dependencies of the scan service.  Engine and
// Repository are mandatory; the rest degrade to no-ops when nil.
type ServiceConfig struct {
	Engine         engine.Evaluator
	Repository     domainscan.Repository
	Cache          ScoreCache
	Publisher      domainscan.EventPublisher
	Images         domainscan.ImageStore
	Metrics        Metrics
	Logger         logging.Logger
	ImageURLExpiry time.Duration
}

type serviceImpl struct {
	engine      atomic.Value // engine.Evaluator
	repo        domainscan.Repository
	cache       ScoreCache
	publisher   domainscan.EventPublisher
	images      domainscan.ImageStore
	metrics     Metrics
	logger      logging.Logger
	urlExpiry   time.Duration
	evaluations singleflight.Group
}

type engineHolder struct{ e engine.Evaluator }

// NewService constructs a Service with all required dependencies.
func NewService(cfg ServiceConfig) (Service, error) {
	if cfg.Engine == nil {
		return nil, errors.New(errors.ErrCodeEngineNotReady, "scan service requires a scoring engine")
	}
	if cfg.Repository == nil {
		return nil, errors.InvalidParam("scan service requires a repository")
	}
	s := &serviceImpl{
		repo:      cfg.Repository,
		cache:     cfg.Cache,
		publisher: cfg.Publisher,
		images:    cfg.Images,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		urlExpiry: cfg.ImageURLExpiry,
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	if s.logger == nil {
		s.logger = logging.NewNopLogger()
	}
	s.logger = s.logger.Named("scan")
	if s.urlExpiry <= 0 {
		s.urlExpiry = 15 * time.Minute
	}
	s.engine.Store(engineHolder{cfg.Engine})
	return s, nil
}

func (s *serviceImpl) evaluator() engine.Evaluator {
	return s.engine.Load().(engineHolder).e
}

func (s *serviceImpl) SwapEngine(e engine.Evaluator) {
	if e == nil {
		return
	}
	old := s.CatalogVersion()
	s.engine.Store(engineHolder{e})
	s.logger.Info("scoring engine swapped",
		logging.String("old_catalog_version", old),
		logging.String("catalog_version", e.CatalogVersion()))
}

func (s *serviceImpl) CatalogVersion() string {
	return s.evaluator().CatalogVersion()
}

// Evaluate consults the cache, then collapses concurrent identical
// evaluations into one engine call.
func (s *serviceImpl) Evaluate(ctx context.Context, text string, freq scoring.Frequency) (*scoring.ScoreResult, error) {
	if !freq.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidFrequency, "unknown frequency %q", string(freq))
	}
	ev := s.evaluator()
	fingerprint := ev.CatalogFingerprint()

	if s.cache != nil {
		res, hit, err := s.cache.Get(ctx, text, freq, fingerprint)
		if err != nil {
			s.logger.Warn("score cache lookup failed", logging.Err(err))
		}
		s.metrics.RecordCacheAccess(hit)
		if hit {
			return res, nil
		}
	}

	key := fingerprint + "\x00" + string(freq) + "\x00" + text
	v, err, _ := s.evaluations.Do(key, func() (interface{}, error) {
		start := time.Now()
		res, err := ev.Evaluate(text, freq)
		if err != nil {
			return nil, err
		}
		s.metrics.RecordEvaluation(freq, res, time.Since(start))
		if s.cache != nil {
			if cerr := s.cache.Set(ctx, text, freq, fingerprint, res); cerr != nil {
				s.logger.Warn("score cache store failed", logging.Err(cerr))
			}
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*scoring.ScoreResult), nil
}

func (s *serviceImpl) Submit(ctx context.Context, req *SubmitRequest) (sc *domainscan.Scan, err error) {
	defer func() { s.metrics.RecordScanOperation("submit", err) }()

	if req == nil {
		return nil, errors.InvalidParam("submit request must not be nil")
	}
	if req.OwnerID == "" {
		return nil, errors.Unauthorized("owner id is required")
	}
	text := req.Text
	if req.ExtractFromOCR {
		text = extractor.ExtractIngredients(text)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New(errors.ErrCodeScanTextEmpty, "no ingredient text to score")
	}

	res, err := s.Evaluate(ctx, text, req.Frequency)
	if err != nil {
		return nil, err
	}
	sc, err = domainscan.NewScan(req.OwnerID, req.Name, text, req.Frequency, res, s.CatalogVersion())
	if err != nil {
		return nil, err
	}
	sc.ImageKey = req.ImageKey

	if req.Image != nil && s.images != nil {
		key, perr := s.images.Put(ctx, sc.OwnerID, sc.ID, req.Image)
		if perr != nil {
			return nil, errors.Wrap(perr, errors.ErrCodeScanImageFailed, "failed to archive label image")
		}
		sc.ImageKey = key
	}

	if err = s.repo.Create(ctx, sc); err != nil {
		if req.Image != nil && sc.ImageKey != "" && s.images != nil {
			if derr := s.images.Delete(ctx, sc.ImageKey); derr != nil {
				s.logger.Warn("failed to remove orphaned image", logging.String("image_key", sc.ImageKey), logging.Err(derr))
			}
		}
		return nil, err
	}

	s.logger.Info("scan saved",
		logging.String("scan_id", sc.ID),
		logging.String("owner_id", sc.OwnerID),
		logging.Int("score", sc.Score),
		logging.String("grade", string(sc.Grade)))
	s.publish(ctx, domainscan.EventScored, sc)
	return sc, nil
}

func (s *serviceImpl) Get(ctx context.Context, ownerID, id string) (*domainscan.Scan, error) {
	if ownerID == "" {
		return nil, errors.Unauthorized("owner id is required")
	}
	sc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sc.OwnedBy(ownerID) {
		return nil, errors.New(errors.ErrCodeScanForbidden, "scan belongs to another user").WithDetail(id)
	}
	return sc, nil
}

func (s *serviceImpl) History(ctx context.Context, ownerID string, q HistoryQuery) (*HistoryPage, error) {
	if ownerID == "" {
		return nil, errors.Unauthorized("owner id is required")
	}
	if q.Page < 1 {
		q.Page = 1
	}
	size := clampPageSize(q.PageSize)
	listOpts := []domainscan.ListOption{domainscan.WithPagination((q.Page-1)*size, size)}
	if q.Frequency != "" {
		listOpts = append(listOpts, domainscan.WithFrequency(q.Frequency))
	}
	if q.Grade != "" {
		listOpts = append(listOpts, domainscan.WithGrade(q.Grade))
	}

	items, total, err := s.repo.ListByOwner(ctx, ownerID, listOpts...)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domainscan.Scan{}
	}
	return &HistoryPage{Items: items, Total: total, Page: q.Page, PageSize: size}, nil
}

func clampPageSize(size int) int {
	if size < 1 {
		return domainscan.DefaultPageSize
	}
	if size > domainscan.MaxPageSize {
		return domainscan.MaxPageSize
	}
	return size
}

// Recompute never re-runs OCR extraction: the stored text is the input.
func (s *serviceImpl) Recompute(ctx context.Context, ownerID, id string, freq scoring.Frequency) (sc *domainscan.Scan, err error) {
	defer func() { s.metrics.RecordScanOperation("recompute", err) }()

	if !freq.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidFrequency, "unknown frequency %q", string(freq))
	}
	sc, err = s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	res, err := s.Evaluate(ctx, sc.ExtractedText, freq)
	if err != nil {
		return nil, err
	}
	sc.Rescore(freq, res, s.CatalogVersion())
	if err = s.repo.UpdateScore(ctx, sc); err != nil {
		return nil, err
	}
	s.publish(ctx, domainscan.EventRecomputed, sc)
	return sc, nil
}

func (s *serviceImpl) Delete(ctx context.Context, ownerID, id string) (err error) {
	defer func() { s.metrics.RecordScanOperation("delete", err) }()

	sc, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err = s.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}
	if sc.ImageKey != "" && s.images != nil {
		if derr := s.images.Delete(ctx, sc.ImageKey); derr != nil {
			s.logger.Warn("failed to delete scan image", logging.String("image_key", sc.ImageKey), logging.Err(derr))
		}
	}
	s.publish(ctx, domainscan.EventDeleted, sc)
	return nil
}

func (s *serviceImpl) ImageURL(ctx context.Context, ownerID, id string) (string, error) {
	sc, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return "", err
	}
	if sc.ImageKey == "" || s.images == nil {
		return "", errors.NotFound("scan has no archived image").WithDetail(id)
	}
	url, err := s.images.PresignedURL(ctx, sc.ImageKey, s.urlExpiry)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "failed to sign image url")
	}
	return url, nil
}

// publish is best effort: a delivery failure is logged and never fails the
// operation that produced the event.
func (s *serviceImpl) publish(ctx context.Context, t domainscan.EventType, sc *domainscan.Scan) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, domainscan.NewEvent(t, sc)); err != nil {
		s.logger.Warn("failed to publish scan event",
			logging.String("event_type", string(t)),
			logging.String("scan_id", sc.ID),
			logging.Err(err))
	}
}

//Personal.AI order the ending
