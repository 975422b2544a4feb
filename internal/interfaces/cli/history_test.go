package cli

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appscan "github.com/turtacn/LabelScan-Intelligence/internal/application/scan"
	domainscan "github.com/turtacn/LabelScan-Intelligence/internal/domain/scan"
	engine "github.com/turtacn/LabelScan-Intelligence/internal/intelligence/scoring"
	apperrors "github.com/turtacn/LabelScan-Intelligence/pkg/errors"
	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

// MockScanService is a mock implementation of appscan.Service
type MockScanService struct {
	mock.Mock
}

var _ appscan.Service = (*MockScanService)(nil)

func (m *MockScanService) Evaluate(ctx context.Context, text string, freq scoring.Frequency) (*scoring.ScoreResult, error) {
	args := m.Called(ctx, text, freq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scoring.ScoreResult), args.Error(1)
}

func (m *MockScanService) Submit(ctx context.Context, req *appscan.SubmitRequest) (*domainscan.Scan, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainscan.Scan), args.Error(1)
}

func (m *MockScanService) Get(ctx context.Context, ownerID, id string) (*domainscan.Scan, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainscan.Scan), args.Error(1)
}

func (m *MockScanService) History(ctx context.Context, ownerID string, q appscan.HistoryQuery) (*appscan.HistoryPage, error) {
	args := m.Called(ctx, ownerID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appscan.HistoryPage), args.Error(1)
}

func (m *MockScanService) Recompute(ctx context.Context, ownerID, id string, freq scoring.Frequency) (*domainscan.Scan, error) {
	args := m.Called(ctx, ownerID, id, freq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainscan.Scan), args.Error(1)
}

func (m *MockScanService) Delete(ctx context.Context, ownerID, id string) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockScanService) ImageURL(ctx context.Context, ownerID, id string) (string, error) {
	args := m.Called(ctx, ownerID, id)
	return args.String(0), args.Error(1)
}

func (m *MockScanService) SwapEngine(e engine.Evaluator) { m.Called(e) }

func (m *MockScanService) CatalogVersion() string { return m.Called().String(0) }

func scanDeps(svc appscan.Service) (CommandDependencies, *bool) {
	released := false
	return CommandDependencies{
		OpenScans: func(context.Context, *CLIContext) (appscan.Service, func(), error) {
			return svc, func() { released = true }, nil
		},
	}, &released
}

func sampleScan(id string) *domainscan.Scan {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domainscan.Scan{
		ID:             id,
		OwnerID:        "user-1",
		Name:           "Cereal",
		ExtractedText:  "Sugar, Oats",
		Frequency:      scoring.FrequencyWeekly,
		Score:          84,
		Grade:          scoring.GradeB,
		CatalogVersion: "2024.11-1",
		ScoreDetails: &scoring.ScoreResult{
			Score:   84,
			Grade:   scoring.GradeB,
			Meaning: scoring.MeaningGood,
			Risks: []scoring.MatchedRisk{{
				Name: "sugar", Tier: "Medium Concern", WeightedPenalty: -16, Category: "Added Sugars",
				Evidence: scoring.Evidence{Token: "sugar", Position: 1, IsTop3: true},
			}},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestHistoryListCmd(t *testing.T) {
	svc := new(MockScanService)
	deps, released := scanDeps(svc)

	want := appscan.HistoryQuery{Page: 2, PageSize: 5, Frequency: scoring.FrequencyDaily, Grade: scoring.GradeB}
	svc.On("History", mock.Anything, "user-1", want).Return(&appscan.HistoryPage{
		Items: []*domainscan.Scan{sampleScan("scan-1")}, Total: 6, Page: 2, PageSize: 5,
	}, nil)

	out, err := runCLI(t, deps, "", "history", "list", "--owner", "user-1",
		"--page", "2", "--page-size", "5", "--frequency", "daily", "--grade", "b")
	require.NoError(t, err)
	assert.Contains(t, out, "page 2, 1 of 6 scans")
	assert.Contains(t, out, "scan-1")
	assert.True(t, *released)
	svc.AssertExpectations(t)
}

func TestHistoryListCmd_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code apperrors.ErrorCode
	}{
		{"bad frequency", []string{"history", "list", "--owner", "u", "--frequency", "monthly"}, apperrors.ErrCodeInvalidFrequency},
		{"bad grade", []string{"history", "list", "--owner", "u", "--grade", "E"}, apperrors.ErrCodeBadRequest},
		{"blank owner", []string{"history", "list", "--owner", "  "}, apperrors.ErrCodeBadRequest},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockScanService)
			deps, _ := scanDeps(svc)
			_, err := runCLI(t, deps, "", tc.args...)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, tc.code), "got %v", err)
			svc.AssertNotCalled(t, "History", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHistoryCmd_OwnerRequired(t *testing.T) {
	svc := new(MockScanService)
	deps, _ := scanDeps(svc)
	_, err := runCLI(t, deps, "", "history", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner")
}

func TestHistoryShowCmd(t *testing.T) {
	svc := new(MockScanService)
	deps, _ := scanDeps(svc)
	svc.On("Get", mock.Anything, "user-1", "scan-1").Return(sampleScan("scan-1"), nil)

	out, err := runCLI(t, deps, "", "history", "show", "scan-1", "--owner", "user-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Cereal (scan-1)")
	assert.Contains(t, out, "Score: 84/100")
	assert.Contains(t, out, "sugar")
}

func TestHistoryShowCmd_NotFound(t *testing.T) {
	svc := new(MockScanService)
	deps, _ := scanDeps(svc)
	svc.On("Get", mock.Anything, "user-1", "missing").
		Return(nil, apperrors.New(apperrors.ErrCodeScanNotFound, "scan not found"))

	_, err := runCLI(t, deps, "", "history", "show", "missing", "--owner", "user-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeScanNotFound))
}

func TestHistoryRecomputeCmd(t *testing.T) {
	svc := new(MockScanService)
	deps, _ := scanDeps(svc)
	recomputed := sampleScan("scan-1")
	recomputed.Frequency = scoring.FrequencyRare
	svc.On("Recompute", mock.Anything, "user-1", "scan-1", scoring.FrequencyRare).Return(recomputed, nil)

	out, err := runCLI(t, deps, "", "history", "recompute", "scan-1", "--owner", "user-1", "--frequency", "RARE", "-o", "json")
	require.NoError(t, err)

	var got domainscan.Scan
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "scan-1", got.ID)
	assert.Equal(t, scoring.FrequencyRare, got.Frequency)
	svc.AssertExpectations(t)
}

func TestHistoryRecomputeCmd_FrequencyRequired(t *testing.T) {
	svc := new(MockScanService)
	deps, _ := scanDeps(svc)
	_, err := runCLI(t, deps, "", "history", "recompute", "scan-1", "--owner", "user-1")
	require.Error(t, err)
	svc.AssertNotCalled(t, "Recompute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHistoryDeleteCmd(t *testing.T) {
	svc := new(MockScanService)
	deps, _ := scanDeps(svc)
	svc.On("Delete", mock.Anything, "user-1", "scan-1").Return(nil)
	svc.On("Delete", mock.Anything, "user-2", "scan-1").
		Return(apperrors.New(apperrors.ErrCodeScanForbidden, "scan belongs to another owner"))

	out, err := runCLI(t, deps, "", "history", "delete", "scan-1", "--owner", "user-1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted scan scan-1")

	_, err = runCLI(t, deps, "", "history", "delete", "scan-1", "--owner", "user-2")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeScanForbidden))
}

//Personal.AI order the ending
