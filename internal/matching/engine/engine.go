// internal/matching/engine/engine.go

// Package engine implements the program matching pipeline: ordered hard
// pre-filters, five-factor scoring and ranked shortlist assembly. The
// engine performs no I/O; callers materialize every record before a
// call and handle persistence of the results themselves.
package engine

import (
	"sort"
	"time"

	"grantmatch-workers/internal/matching/eligibility"
	"grantmatch-workers/internal/matching/taxonomy"
	"grantmatch-workers/internal/models"
)

// Config carries the tuned constants of the pipeline. The thresholds
// were calibrated against the containment-based keyword semantics in
// the taxonomy package; changing one without re-deriving the others
// shifts the score distribution.
type Config struct {
	// CompatibilityThreshold is the minimum cross-sector relevance the
	// industry pre-filter accepts.
	CompatibilityThreshold float64
	// CrossIndustryThreshold is the minimum relevance that still earns
	// a cross-industry scoring bonus.
	CrossIndustryThreshold float64
	// MinimumScore drops weaker candidates after scoring.
	MinimumScore int
	// DefaultLimit bounds the shortlist when the caller does not.
	DefaultLimit int
	// HistoricalTRLSlack widens the hard TRL window in
	// historical-reference mode.
	HistoricalTRLSlack int
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		CompatibilityThreshold: 0.4,
		CrossIndustryThreshold: 0.5,
		MinimumScore:           45,
		DefaultLimit:           3,
		HistoricalTRLSlack:     3,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.CompatibilityThreshold <= 0 {
		c.CompatibilityThreshold = def.CompatibilityThreshold
	}
	if c.CrossIndustryThreshold <= 0 {
		c.CrossIndustryThreshold = def.CrossIndustryThreshold
	}
	if c.MinimumScore <= 0 {
		c.MinimumScore = def.MinimumScore
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = def.DefaultLimit
	}
	if c.HistoricalTRLSlack <= 0 {
		c.HistoricalTRLSlack = def.HistoricalTRLSlack
	}
	return c
}

// Options tunes a single matching call. Non-positive numeric fields
// select the engine's configured defaults.
type Options struct {
	Limit        int
	MinimumScore int
	// IncludeExpired switches to historical-reference mode: the user is
	// studying a past award landscape rather than preparing an
	// application, so the target-type and industry filters lift and the
	// TRL window widens.
	IncludeExpired bool
}

// Engine scores funding programs against organization profiles. It is
// immutable after construction and safe for concurrent use.
type Engine struct {
	table *taxonomy.Table
	cfg   Config
	now   func() time.Time
}

// New builds an engine over the given taxonomy table. A nil table
// selects the default taxonomy.
func New(table *taxonomy.Table, cfg Config) *Engine {
	if table == nil {
		table = taxonomy.Default()
	}
	return &Engine{table: table, cfg: cfg.withDefaults(), now: time.Now}
}

// FindMatchingPrograms ranks the candidates for one organization and
// returns the shortlist. A nil organization or empty candidate list
// yields an empty, non-nil slice: "no match" is a result, not an
// error.
func (e *Engine) FindMatchingPrograms(org *models.Organization, candidates []models.FundingProgram, opts Options) []models.MatchScore {
	results := []models.MatchScore{}
	if org == nil || len(candidates) == 0 {
		return results
	}

	now := e.now()
	limit := opts.Limit
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}
	minScore := opts.MinimumScore
	if minScore <= 0 {
		minScore = e.cfg.MinimumScore
	}

	for i := range candidates {
		prog := &candidates[i]
		det, ok := e.passesFilters(org, prog, now, opts.IncludeExpired)
		if !ok {
			continue
		}
		breakdown, reasons := e.scoreProgram(org, prog, now)
		total := breakdown.Total()
		if total < minScore {
			continue
		}
		results = append(results, models.MatchScore{
			ProgramID:   prog.ID,
			Score:       total,
			Breakdown:   breakdown,
			Reasons:     reasons,
			Eligibility: det,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		ri, rj := tierRank(results[i]), tierRank(results[j])
		if ri != rj {
			return ri < rj
		}
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// ScoreCandidate computes the full score record for a single pair,
// without shortlist filtering. Callers that need the hard-filter
// semantics use FindMatchingPrograms instead.
func (e *Engine) ScoreCandidate(org *models.Organization, prog *models.FundingProgram) *models.MatchScore {
	if org == nil || prog == nil {
		return nil
	}
	now := e.now()
	det := eligibility.Evaluate(org, prog, now)
	breakdown, reasons := e.scoreProgram(org, prog, now)
	return &models.MatchScore{
		ProgramID:   prog.ID,
		Score:       breakdown.Total(),
		Breakdown:   breakdown,
		Reasons:     reasons,
		Eligibility: &det,
	}
}

func tierRank(m models.MatchScore) int {
	if m.Eligibility == nil {
		return models.ConditionallyEligible.Rank()
	}
	return m.Eligibility.Level.Rank()
}
