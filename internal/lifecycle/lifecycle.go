// Package lifecycle derives hypothesis lifecycle states and decides which
// hypotheses may be recommended, and in what order.
package lifecycle

import (
	"sort"
	"strings"

	"causalgate/domain/hypothesis"
)

// SignificanceLevel is the p-value at or above which a validated hypothesis
// counts as falsified
const SignificanceLevel = 0.05

// State derives the lifecycle state of h. A missing or short falsifier
// retracts the hypothesis before its validation result is even read.
func State(h hypothesis.Hypothesis) hypothesis.LifecycleState {
	if !h.HasFalsifier() {
		return hypothesis.StateRetracted
	}
	v := h.ValidationResult
	if v == nil {
		return hypothesis.StateProposed
	}
	if !v.Success {
		return hypothesis.StateFalsified
	}
	if m := v.Metrics; m != nil {
		if m.PValue != nil && *m.PValue >= SignificanceLevel {
			return hypothesis.StateFalsified
		}
		if m.ConclusionValid != nil && !*m.ConclusionValid {
			return hypothesis.StateFalsified
		}
	}
	return hypothesis.StateTested
}

// Annotate returns a copy of hs with LifecycleState recomputed on each item
func Annotate(hs []hypothesis.Hypothesis) []hypothesis.Hypothesis {
	out := make([]hypothesis.Hypothesis, len(hs))
	for i, h := range hs {
		h.LifecycleState = State(h)
		out[i] = h
	}
	return out
}

// IsRecommendationEligible reports whether h may be recommended at all.
// Falsified and retracted hypotheses are never eligible.
func IsRecommendationEligible(h hypothesis.Hypothesis) bool {
	switch State(h) {
	case hypothesis.StateProposed, hypothesis.StateTested:
		return len(strings.TrimSpace(h.Falsifier)) >= hypothesis.MinFalsifierLength
	default:
		return false
	}
}

// OrderForRecommendation returns hs sorted by intervention value, highest
// first. Novelty only breaks ties; ID makes the order total.
func OrderForRecommendation(hs []hypothesis.Hypothesis) []hypothesis.Hypothesis {
	out := append([]hypothesis.Hypothesis(nil), hs...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if av, bv := score(a.InterventionValueScore), score(b.InterventionValueScore); av != bv {
			return av > bv
		}
		if an, bn := score(a.NoveltyScore), score(b.NoveltyScore); an != bn {
			return an > bn
		}
		return a.ID < b.ID
	})
	return out
}

// Recommend filters hs to eligible hypotheses and orders them
func Recommend(hs []hypothesis.Hypothesis) []hypothesis.Hypothesis {
	eligible := make([]hypothesis.Hypothesis, 0, len(hs))
	for _, h := range hs {
		if IsRecommendationEligible(h) {
			h.LifecycleState = State(h)
			eligible = append(eligible, h)
		}
	}
	return OrderForRecommendation(eligible)
}

func score(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
