package novelty

import (
	"context"

	"causalgate/domain/hypothesis"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

// Summary holds per-signal means over a batch, excluding failed lookups
type Summary struct {
	Scored                   int     `json:"scored"`
	Passed                   int     `json:"passed"`
	LookupFailures           int     `json:"lookup_failures"`
	MeanPriorArtDistance     float64 `json:"mean_prior_art_distance"`
	MeanFalsifiability       float64 `json:"mean_falsifiability"`
	MeanInterventionValue    float64 `json:"mean_intervention_value"`
	MeanContradictionResolve float64 `json:"mean_contradiction_resolved"`
}

// BatchResult is the scored batch plus its gate decision
type BatchResult struct {
	Proofs   []hypothesis.NoveltyProof `json:"proofs"`
	Decision hypothesis.GateDecision   `json:"decision"`
	Reasons  []string                  `json:"reasons"`
	Summary  Summary                   `json:"summary"`
}

// ScoreBatch scores every hypothesis with bounded concurrent lookups. Each
// item is isolated: a failing lookup blocks only its own proof. Proofs keep
// input order.
func (s *Scorer) ScoreBatch(ctx context.Context, hs []hypothesis.Hypothesis) BatchResult {
	proofs := make([]hypothesis.NoveltyProof, len(hs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, h := range hs {
		g.Go(func() error {
			proofs[i] = s.Score(gctx, h)
			return nil
		})
	}
	_ = g.Wait()

	decision, reasons := Gate(proofs)
	result := BatchResult{
		Proofs:   proofs,
		Decision: decision,
		Reasons:  reasons,
		Summary:  summarize(proofs),
	}
	s.logger.Debug("batch of %d: decision=%s reasons=%v", len(hs), decision, reasons)
	return result
}

// Gate passes a batch when at least one proof passes. Otherwise it asks for
// recovery with the union of blocked reasons.
func Gate(proofs []hypothesis.NoveltyProof) (hypothesis.GateDecision, []string) {
	union := make(map[string]bool)
	for _, p := range proofs {
		if p.ProofStatus == hypothesis.ProofPass {
			return hypothesis.GatePass, []string{}
		}
		for _, r := range p.BlockedReasons {
			union[r] = true
		}
	}
	return hypothesis.GateRecover, orderedReasons(union)
}

func summarize(proofs []hypothesis.NoveltyProof) Summary {
	var sum Summary
	var distance, falsif, value, contra []float64
	for _, p := range proofs {
		if len(p.BlockedReasons) == 1 && p.BlockedReasons[0] == hypothesis.ReasonPriorArtLookupFailed {
			sum.LookupFailures++
			continue
		}
		sum.Scored++
		if p.ProofStatus == hypothesis.ProofPass {
			sum.Passed++
		}
		distance = append(distance, p.PriorArtDistance)
		falsif = append(falsif, p.FalsifiabilityScore)
		value = append(value, p.InterventionValueScore)
		contra = append(contra, p.ContradictionResolvedScore)
	}
	sum.MeanPriorArtDistance = mean(distance)
	sum.MeanFalsifiability = mean(falsif)
	sum.MeanInterventionValue = mean(value)
	sum.MeanContradictionResolve = mean(contra)
	return sum
}

func mean(values []float64) float64 {
	m, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	r, err := stats.Round(m, 3)
	if err != nil {
		return 0
	}
	return r
}
