package scan

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	domainscan "github.com/turtacn/LabelScan-Intelligence/internal/domain/scan"
	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

// -----------------------------------------------------------------------
// Mock: Repository
// -----------------------------------------------------------------------

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, s *domainscan.Scan) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*domainscan.Scan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainscan.Scan), args.Error(1)
}

func (m *mockRepository) ListByOwner(ctx context.Context, ownerID string, opts ...domainscan.ListOption) ([]*domainscan.Scan, int64, error) {
	args := m.Called(ctx, ownerID, domainscan.ApplyListOptions(opts...))
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domainscan.Scan), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepository) UpdateScore(ctx context.Context, s *domainscan.Scan) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockRepository) Delete(ctx context.Context, id, ownerID string) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

func (m *mockRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

// -----------------------------------------------------------------------
// Mock: ScoreCache
// -----------------------------------------------------------------------

type mapCache struct {
	store  map[string]*scoring.ScoreResult
	getErr error
	setErr error
	gets   int
	sets   int
}

func newMapCache() *mapCache {
	return &mapCache{store: make(map[string]*scoring.ScoreResult)}
}

func (c *mapCache) key(text string, freq scoring.Frequency, fingerprint string) string {
	return fingerprint + "|" + string(freq) + "|" + text
}

func (c *mapCache) Get(_ context.Context, text string, freq scoring.Frequency, fingerprint string) (*scoring.ScoreResult, bool, error) {
	c.gets++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	res, ok := c.store[c.key(text, freq, fingerprint)]
	return res, ok, nil
}

func (c *mapCache) Set(_ context.Context, text string, freq scoring.Frequency, fingerprint string, res *scoring.ScoreResult) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.store[c.key(text, freq, fingerprint)] = res
	return nil
}

// -----------------------------------------------------------------------
// Mock: EventPublisher / ImageStore / Metrics
// -----------------------------------------------------------------------

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, evt *domainscan.Event) error {
	return m.Called(ctx, evt).Error(0)
}

type mockImageStore struct {
	mock.Mock
}

func (m *mockImageStore) Put(ctx context.Context, ownerID, scanID string, img *domainscan.Image) (string, error) {
	args := m.Called(ctx, ownerID, scanID, img)
	return args.String(0), args.Error(1)
}

func (m *mockImageStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockImageStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}

type recordingMetrics struct {
	evaluations int
	hits        int
	misses      int
	ops         map[string][]error
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{ops: make(map[string][]error)}
}

func (m *recordingMetrics) RecordEvaluation(scoring.Frequency, *scoring.ScoreResult, time.Duration) {
	m.evaluations++
}

func (m *recordingMetrics) RecordCacheAccess(hit bool) {
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *recordingMetrics) RecordScanOperation(op string, err error) {
	m.ops[op] = append(m.ops[op], err)
}

//Personal.AI order the ending
