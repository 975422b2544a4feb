package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

const scoreKeyspace = "score:"

// ScoreCache memoises engine results keyed by catalog fingerprint, frequency
// and a SHA-256 of the ingredient text.  Results are deterministic for that
// triple, so entries never need invalidation; InvalidateCatalog only
// reclaims memory after a catalog change.
type ScoreCache struct {
	cache Cache
	ttl   time.Duration
	log   logging.Logger
}

// NewScoreCache builds a ScoreCache over cache.  A zero ttl uses the cache
// default.
func NewScoreCache(cache Cache, ttl time.Duration, log logging.Logger) *ScoreCache {
	return &ScoreCache{cache: cache, ttl: ttl, log: log}
}

// ScoreKey is the cache key for one evaluation.
func ScoreKey(text string, freq scoring.Frequency, fingerprint string) string {
	sum := sha256.Sum256([]byte(text))
	return scoreKeyspace + fingerprint + ":" + string(freq) + ":" + hex.EncodeToString(sum[:])
}

// Get returns the cached result, or ok=false on a miss.
func (s *ScoreCache) Get(ctx context.Context, text string, freq scoring.Frequency, fingerprint string) (*scoring.ScoreResult, bool, error) {
	var res scoring.ScoreResult
	err := s.cache.Get(ctx, ScoreKey(text, freq, fingerprint), &res)
	if err == ErrCacheMiss {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &res, true, nil
}

// Set stores res.
func (s *ScoreCache) Set(ctx context.Context, text string, freq scoring.Frequency, fingerprint string, res *scoring.ScoreResult) error {
	return s.cache.Set(ctx, ScoreKey(text, freq, fingerprint), res, s.ttl)
}

// InvalidateCatalog drops every result computed under the catalog with
// fingerprint.
func (s *ScoreCache) InvalidateCatalog(ctx context.Context, fingerprint string) (int64, error) {
	n, err := s.cache.DeleteByPrefix(ctx, scoreKeyspace+fingerprint+":")
	if err != nil {
		return n, err
	}
	s.log.Info("score cache invalidated",
		logging.String("catalog_fingerprint", fingerprint),
		logging.Int64("deleted", n))
	return n, nil
}

//Personal.AI order the ending
