// Package scan models a persisted label scan: the ingredient text a caller
// submitted, the frequency it was scored under and the resulting score.
package scan

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

// DefaultName is used when a scan is saved without a product name.
const DefaultName = "Untitled Scan"

const maxNameLength = 256

// Scan is one saved evaluation of an ingredient declaration.
type Scan struct {
	ID             string               `json:"id"`
	OwnerID        string               `json:"owner_id"`
	Name           string               `json:"name"`
	ExtractedText  string               `json:"extracted_text"`
	Frequency      scoring.Frequency    `json:"frequency"`
	Score          int                  `json:"score"`
	Grade          scoring.Grade        `json:"grade"`
	ScoreDetails   *scoring.ScoreResult `json:"score_details"`
	CatalogVersion string               `json:"catalog_version"`
	ImageKey       string               `json:"image_key,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// NewScan builds a scan for ownerID from an evaluated text.
func NewScan(ownerID, name, text string, freq scoring.Frequency, result *scoring.ScoreResult, catalogVersion string) (*Scan, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	now := time.Now().UTC()
	s := &Scan{
		ID:             uuid.New().String(),
		OwnerID:        ownerID,
		Name:           name,
		ExtractedText:  text,
		CatalogVersion: catalogVersion,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.apply(freq, result)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the invariants of a scan.
func (s *Scan) Validate() error {
	if s.ID == "" {
		return errors.InvalidParam("scan id cannot be empty")
	}
	if _, err := uuid.Parse(s.ID); err != nil {
		return errors.InvalidParam("scan id must be a UUID").WithDetail(s.ID)
	}
	if s.OwnerID == "" {
		return errors.InvalidParam("owner id cannot be empty")
	}
	if len(s.Name) > maxNameLength {
		return errors.InvalidParam("name cannot be longer than 256 characters")
	}
	if strings.TrimSpace(s.ExtractedText) == "" {
		return errors.New(errors.ErrCodeScanTextEmpty, "scan text cannot be empty")
	}
	if !s.Frequency.Valid() {
		return errors.Newf(errors.ErrCodeInvalidFrequency, "unknown frequency %q", string(s.Frequency))
	}
	if s.ScoreDetails == nil {
		return errors.InvalidParam("score details are required")
	}
	return nil
}

// Rescore replaces the stored result after the text was evaluated again,
// typically under a different frequency.
func (s *Scan) Rescore(freq scoring.Frequency, result *scoring.ScoreResult, catalogVersion string) {
	s.apply(freq, result)
	s.CatalogVersion = catalogVersion
	s.UpdatedAt = time.Now().UTC()
}

func (s *Scan) apply(freq scoring.Frequency, result *scoring.ScoreResult) {
	s.Frequency = freq
	s.ScoreDetails = result
	if result != nil {
		s.Score = result.Score
		s.Grade = result.Grade
	}
}

// OwnedBy reports whether ownerID may read or modify the scan.
func (s *Scan) OwnedBy(ownerID string) bool {
	return ownerID != "" && s.OwnerID == ownerID
}

// Summary is the list view of a scan.
type Summary struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Score     int               `json:"score"`
	Grade     scoring.Grade     `json:"grade"`
	Frequency scoring.Frequency `json:"frequency"`
	CreatedAt time.Time         `json:"created_at"`
}

// Summarize returns the list view of s.
func (s *Scan) Summarize() Summary {
	return Summary{
		ID:        s.ID,
		Name:      s.Name,
		Score:     s.Score,
		Grade:     s.Grade,
		Frequency: s.Frequency,
		CreatedAt: s.CreatedAt,
	}
}

//Personal.AI order the ending
