// Package novelty scores generated hypotheses against prior art and a
// contradiction matrix, and gates whole batches on the result.
package novelty

import (
	"context"

	"causalgate/domain/core"
	"causalgate/domain/hypothesis"
	"causalgate/internal"
	"causalgate/ports"
)

// InterventionValueFloor is fixed; it is not part of Thresholds
const InterventionValueFloor = 0.4

// Thresholds are the configurable blocking floors
type Thresholds struct {
	Novelty        float64 `json:"novelty"`
	Falsifiability float64 `json:"falsifiability"`
	Contradiction  float64 `json:"contradiction"`
}

// DefaultThresholds returns the stock floors
func DefaultThresholds() Thresholds {
	return Thresholds{Novelty: 0.3, Falsifiability: 0.5, Contradiction: 0.5}
}

// Scorer computes NoveltyProofs. It is safe for concurrent use.
type Scorer struct {
	thresholds  Thresholds
	rows        []hypothesis.ContradictionRow
	lookup      ports.PriorArtLookup
	cache       ports.AnalysisCache
	concurrency int
	logger      *internal.Logger
}

// Option configures a Scorer
type Option func(*Scorer)

// WithThresholds overrides the default floors
func WithThresholds(t Thresholds) Option {
	return func(s *Scorer) { s.thresholds = t }
}

// WithContradictionRows sets the contradiction matrix
func WithContradictionRows(rows []hypothesis.ContradictionRow) Option {
	return func(s *Scorer) { s.rows = append([]hypothesis.ContradictionRow(nil), rows...) }
}

// WithCache memoizes pairwise similarities
func WithCache(c ports.AnalysisCache) Option {
	return func(s *Scorer) { s.cache = c }
}

// WithConcurrency bounds concurrent prior-art lookups in ScoreBatch
func WithConcurrency(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *internal.Logger) Option {
	return func(s *Scorer) { s.logger = l.With("novelty") }
}

// NewScorer creates a scorer over lookup. A nil lookup means no prior art.
func NewScorer(lookup ports.PriorArtLookup, opts ...Option) *Scorer {
	s := &Scorer{
		thresholds:  DefaultThresholds(),
		lookup:      lookup,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Thresholds returns the active floors
func (s *Scorer) Thresholds() Thresholds { return s.thresholds }

// Score looks up prior art for h and scores it. A failed lookup does not
// return an error: the proof is blocked with prior_art_lookup_failed.
func (s *Scorer) Score(ctx context.Context, h hypothesis.Hypothesis) hypothesis.NoveltyProof {
	if h.ID == "" {
		h.ID = core.NewHypothesisID().String()
	}
	var priorArt []hypothesis.PriorArt
	if s.lookup != nil {
		found, err := s.lookup.Lookup(ctx, h)
		if err != nil {
			s.logger.Warn("%v", core.NewPriorArtError(h.ID, err))
			return s.lookupFailed(h)
		}
		priorArt = found
	}
	return s.ScoreWithPriorArt(ctx, h, priorArt)
}

// ScoreWithPriorArt scores h against an already fetched prior-art list
func (s *Scorer) ScoreWithPriorArt(ctx context.Context, h hypothesis.Hypothesis, priorArt []hypothesis.PriorArt) hypothesis.NoveltyProof {
	contradiction, matched := contradictionSignal(h, s.rows)
	proof := hypothesis.NoveltyProof{
		HypothesisID:                  h.ID,
		PriorArtDistance:              round3(priorArtDistance(ctx, s.cache, h, priorArt)),
		ContradictionResolvedScore:    round3(contradiction),
		MechanismDifferentiationScore: round3(mechanismDifferentiation(ctx, s.cache, h, priorArt)),
		InterventionValueScore:        round3(interventionValue(h)),
		FalsifiabilityScore:           round3(falsifiability(h)),
		ContradictionRowsMatched:      matched,
	}

	failed := make(map[string]bool)
	if proof.PriorArtDistance < s.thresholds.Novelty {
		failed[hypothesis.ReasonPriorArtOverlap] = true
	}
	if proof.FalsifiabilityScore < s.thresholds.Falsifiability {
		failed[hypothesis.ReasonFalsifiabilityWeak] = true
	}
	if proof.ContradictionResolvedScore < s.thresholds.Contradiction {
		failed[hypothesis.ReasonContradictionUnresolved] = true
	}
	if matched == 0 {
		failed[hypothesis.ReasonNoContradictionRows] = true
	}
	if proof.InterventionValueScore < InterventionValueFloor {
		failed[hypothesis.ReasonInterventionValueLow] = true
	}
	return finish(proof, failed)
}

func (s *Scorer) lookupFailed(h hypothesis.Hypothesis) hypothesis.NoveltyProof {
	return finish(hypothesis.NoveltyProof{HypothesisID: h.ID}, map[string]bool{
		hypothesis.ReasonPriorArtLookupFailed: true,
	})
}

// finish orders the failed reasons canonically and sets the status
func finish(proof hypothesis.NoveltyProof, failed map[string]bool) hypothesis.NoveltyProof {
	proof.BlockedReasons = orderedReasons(failed)
	proof.ProofStatus = hypothesis.ProofPass
	if len(proof.BlockedReasons) > 0 {
		proof.ProofStatus = hypothesis.ProofBlocked
	}
	return proof
}

func orderedReasons(set map[string]bool) []string {
	reasons := []string{}
	for _, r := range hypothesis.ReasonOrder {
		if set[r] {
			reasons = append(reasons, r)
		}
	}
	return reasons
}
