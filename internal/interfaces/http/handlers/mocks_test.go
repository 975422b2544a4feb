package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	appcatalog "github.com/turtacn/LabelScan-Intelligence/internal/application/catalog"
	appscan "github.com/turtacn/LabelScan-Intelligence/internal/application/scan"
	domainscan "github.com/turtacn/LabelScan-Intelligence/internal/domain/scan"
	engine "github.com/turtacn/LabelScan-Intelligence/internal/intelligence/scoring"
	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

type mockScanService struct {
	mock.Mock
}

var _ appscan.Service = (*mockScanService)(nil)

func (m *mockScanService) Evaluate(ctx context.Context, text string, freq scoring.Frequency) (*scoring.ScoreResult, error) {
	args := m.Called(ctx, text, freq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scoring.ScoreResult), args.Error(1)
}

func (m *mockScanService) Submit(ctx context.Context, req *appscan.SubmitRequest) (*domainscan.Scan, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainscan.Scan), args.Error(1)
}

func (m *mockScanService) Get(ctx context.Context, ownerID, id string) (*domainscan.Scan, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainscan.Scan), args.Error(1)
}

func (m *mockScanService) History(ctx context.Context, ownerID string, q appscan.HistoryQuery) (*appscan.HistoryPage, error) {
	args := m.Called(ctx, ownerID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appscan.HistoryPage), args.Error(1)
}

func (m *mockScanService) Recompute(ctx context.Context, ownerID, id string, freq scoring.Frequency) (*domainscan.Scan, error) {
	args := m.Called(ctx, ownerID, id, freq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainscan.Scan), args.Error(1)
}

func (m *mockScanService) Delete(ctx context.Context, ownerID, id string) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *mockScanService) ImageURL(ctx context.Context, ownerID, id string) (string, error) {
	args := m.Called(ctx, ownerID, id)
	return args.String(0), args.Error(1)
}

func (m *mockScanService) SwapEngine(e engine.Evaluator) { m.Called(e) }

func (m *mockScanService) CatalogVersion() string { return m.Called().String(0) }

type stubCatalogState struct {
	snap *appcatalog.Snapshot
	err  error
}

func (s stubCatalogState) Snapshot() (*appcatalog.Snapshot, error) { return s.snap, s.err }

//Personal.AI order the ending
