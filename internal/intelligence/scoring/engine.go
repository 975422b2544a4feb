// Package scoring implements the ingredient-list risk scoring pipeline:
// tokenisation, normalisation, catalog matching, position/percent weighting,
// the Auto-Fail short circuit, stacking rules and final aggregation.
//
// An Engine is built once over an immutable catalog and holds no per-scan
// state; Evaluate is a pure function of (text, frequency, catalog) and is safe
// for concurrent use.
package scoring

import (
	"github.com/turtacn/LabelScan-Intelligence/internal/domain/catalog"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

// Evaluator is the scoring contract consumed by the application layer.
type Evaluator interface {
	Evaluate(text string, freq scoring.Frequency) (*scoring.ScoreResult, error)
	CatalogVersion() string
	// CatalogFingerprint identifies the catalog content.  Two engines with
	// equal fingerprints score every input identically.
	CatalogFingerprint() string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRules replaces the default stacking rules.
func WithRules(rules ...Rule) EngineOption {
	return func(e *Engine) {
		e.rules = append([]Rule(nil), rules...)
	}
}

// WithLogger sets the engine logger.
func WithLogger(log logging.Logger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Engine scores ingredient declarations against one catalog.
type Engine struct {
	catalog *catalog.Catalog
	matcher *matcher
	rules   []Rule
	log     logging.Logger
}

// NewEngine compiles cat for matching.
func NewEngine(cat *catalog.Catalog, opts ...EngineOption) (*Engine, error) {
	if cat == nil {
		return nil, errors.New(errors.ErrCodeEngineNotReady, "scoring engine requires a catalog")
	}
	e := &Engine{
		catalog: cat,
		matcher: newMatcher(cat),
		rules:   DefaultRules(),
		log:     logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log.Debug("scoring engine ready",
		logging.String("catalog_version", cat.Version()),
		logging.Int("entries", cat.Len()),
		logging.Int("rules", len(e.rules)))
	return e, nil
}

// Catalog returns the catalog the engine was built over.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// CatalogVersion identifies the catalog revision used for scoring.
func (e *Engine) CatalogVersion() string { return e.catalog.Version() }

// CatalogFingerprint returns the content hash of the injected catalog.
func (e *Engine) CatalogFingerprint() string { return e.catalog.Fingerprint() }

// EvaluateLabel parses a frequency label and evaluates text.
func (e *Engine) EvaluateLabel(text, label string) (*scoring.ScoreResult, error) {
	freq, err := scoring.ParseFrequency(label)
	if err != nil {
		return nil, err
	}
	return e.Evaluate(text, freq)
}

// Evaluate scores an ingredient declaration.  An unknown frequency is rejected
// before any work is done.
func (e *Engine) Evaluate(text string, freq scoring.Frequency) (*scoring.ScoreResult, error) {
	if !freq.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidFrequency, "unknown frequency %q", string(freq))
	}

	tokens := Tokenize(text)
	matched := e.matcher.match(tokens)
	risks := matched.risks
	if risks == nil {
		risks = []scoring.MatchedRisk{}
	}

	if matched.autoFail {
		sortByBaseDescending(risks)
		e.log.Debug("auto-fail ingredient matched",
			logging.Int("tokens", len(tokens)),
			logging.Int("risks", len(risks)))
		return &scoring.ScoreResult{
			Score:             0,
			Grade:             scoring.GradeF,
			Meaning:           scoring.MeaningAvoid,
			Risks:             risks,
			RulePenalties:     []scoring.RulePenalty{},
			CategoryBreakdown: matched.breakdown,
		}, nil
	}

	rulePenalties := applyRules(e.rules, risks)
	score := Aggregate(risks, rulePenalties, freq)
	grade, meaning := scoring.GradeFor(score)
	sortByWeighted(risks)

	e.log.Debug("ingredients scored",
		logging.Int("tokens", len(tokens)),
		logging.Int("risks", len(risks)),
		logging.Int("rules", len(rulePenalties)),
		logging.Int("score", score),
		logging.String("frequency", freq.String()))

	return &scoring.ScoreResult{
		Score:             score,
		Grade:             grade,
		Meaning:           meaning,
		Risks:             risks,
		RulePenalties:     rulePenalties,
		CategoryBreakdown: matched.breakdown,
	}, nil
}

//Personal.AI order the ending
