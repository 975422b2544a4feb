package scan

import (
	"context"

	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

// Repository persists scans.  Implementations return an error carrying
// errors.ErrCodeScanNotFound when a scan does not exist.
type Repository interface {
	Create(ctx context.Context, s *Scan) error
	GetByID(ctx context.Context, id string) (*Scan, error)
	ListByOwner(ctx context.Context, ownerID string, opts ...ListOption) ([]*Scan, int64, error)
	UpdateScore(ctx context.Context, s *Scan) error
	Delete(ctx context.Context, id, ownerID string) error
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListOptions encapsulates history query parameters.  Results are always
// ordered newest first.
type ListOptions struct {
	Offset    int
	Limit     int
	Frequency scoring.Frequency
	Grade     scoring.Grade
}

// ListOption is a functional option for ListOptions.
type ListOption func(*ListOptions)

// WithPagination sets offset and limit, clamping them to sane bounds.
func WithPagination(offset, limit int) ListOption {
	return func(o *ListOptions) {
		if offset < 0 {
			offset = 0
		}
		if limit < 1 {
			limit = DefaultPageSize
		}
		if limit > MaxPageSize {
			limit = MaxPageSize
		}
		o.Offset = offset
		o.Limit = limit
	}
}

// WithFrequency restricts results to one frequency.
func WithFrequency(f scoring.Frequency) ListOption {
	return func(o *ListOptions) {
		o.Frequency = f
	}
}

// WithGrade restricts results to one grade.
func WithGrade(g scoring.Grade) ListOption {
	return func(o *ListOptions) {
		o.Grade = g
	}
}

// ApplyListOptions resolves opts over the defaults.
func ApplyListOptions(opts ...ListOption) ListOptions {
	o := ListOptions{Limit: DefaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

//Personal.AI order the ending
