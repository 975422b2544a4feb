package scan

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

// ─────────────────────────────────────────────────────────────────────────────
// Label images
// ─────────────────────────────────────────────────────────────────────────────

// Image is an uploaded label photograph archived alongside a scan.
type Image struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// ImageStore archives label images.  Keys are opaque to callers.
type ImageStore interface {
	Put(ctx context.Context, ownerID, scanID string, img *Image) (string, error)
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Events
// ─────────────────────────────────────────────────────────────────────────────

// EventType names a scan lifecycle event.
type EventType string

const (
	EventScored     EventType = "scan.scored"
	EventRecomputed EventType = "scan.recomputed"
	EventDeleted    EventType = "scan.deleted"
)

// Event is published after a scan changes.
type Event struct {
	ID             string            `json:"id"`
	Type           EventType         `json:"type"`
	ScanID         string            `json:"scan_id"`
	OwnerID        string            `json:"owner_id"`
	Frequency      scoring.Frequency `json:"frequency,omitempty"`
	Score          int               `json:"score"`
	Grade          scoring.Grade     `json:"grade,omitempty"`
	AutoFailed     bool              `json:"auto_failed"`
	CatalogVersion string            `json:"catalog_version,omitempty"`
	OccurredAt     time.Time         `json:"occurred_at"`
}

// NewEvent snapshots s for an event of type t.
func NewEvent(t EventType, s *Scan) *Event {
	evt := &Event{
		ID:             uuid.New().String(),
		Type:           t,
		ScanID:         s.ID,
		OwnerID:        s.OwnerID,
		Frequency:      s.Frequency,
		Score:          s.Score,
		Grade:          s.Grade,
		CatalogVersion: s.CatalogVersion,
		OccurredAt:     time.Now().UTC(),
	}
	if s.ScoreDetails != nil {
		evt.AutoFailed = s.ScoreDetails.AutoFailed()
	}
	return evt
}

// EventPublisher delivers scan events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, evt *Event) error
}

//Personal.AI order the ending
