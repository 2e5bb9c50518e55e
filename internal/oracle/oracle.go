// Package oracle runs the fixed compliance battery: deterministic scenario
// families, each with a pass-rate threshold, that any build of the engine
// must reproduce exactly.
package oracle

import (
	"causalgate/internal"

	"github.com/montanaflynn/stats"
)

// Family names
const (
	FamilyFalsification   = "falsification_transitions"
	FamilyCounterfactual  = "counterfactual_stability"
	FamilyDominance       = "intervention_dominance"
	FamilyIdentifiability = "identifiability_gate"
	FamilyOverclaim       = "overclaim_absence"
)

// Case is one scenario inside a family
type Case struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// FamilyResult is one scored family. Counterfactual stability reports one
// result per graph variant.
type FamilyResult struct {
	Family    string  `json:"family"`
	Variant   string  `json:"variant,omitempty"`
	Threshold float64 `json:"threshold"`
	PassRate  float64 `json:"pass_rate"`
	Passed    bool    `json:"passed"`
	Cases     []Case  `json:"cases"`
}

// Label is the family name plus its variant, if any
func (f FamilyResult) Label() string {
	if f.Variant == "" {
		return f.Family
	}
	return f.Family + "/" + f.Variant
}

// Report is the whole battery outcome
type Report struct {
	Families []FamilyResult `json:"families"`
	Passed   bool           `json:"passed"`
	MeanRate float64        `json:"mean_pass_rate"`
}

// Run executes every family in fixed order
func Run(logger *internal.Logger) Report {
	logger = logger.With("oracle")

	var families []FamilyResult
	families = append(families, falsificationTransitions())
	families = append(families, counterfactualStability()...)
	families = append(families, interventionDominance())
	families = append(families, identifiabilityGate())
	families = append(families, overclaimAbsence())

	report := Report{Families: families, Passed: true}
	rates := make([]float64, 0, len(families))
	for _, f := range families {
		rates = append(rates, f.PassRate)
		if !f.Passed {
			report.Passed = false
			logger.Warn("%s failed: %.4f < %.2f", f.Label(), f.PassRate, f.Threshold)
		}
	}
	if m, err := stats.Mean(rates); err == nil {
		report.MeanRate, _ = stats.Round(m, 4)
	}
	logger.Info("oracle complete: %d families, passed=%v", len(families), report.Passed)
	return report
}

func score(family, variant string, threshold float64, cases []Case) FamilyResult {
	outcomes := make([]float64, len(cases))
	for i, c := range cases {
		if c.Passed {
			outcomes[i] = 1
		}
	}
	rate, err := stats.Mean(outcomes)
	if err != nil {
		rate = 0
	}
	rate, _ = stats.Round(rate, 4)
	return FamilyResult{
		Family:    family,
		Variant:   variant,
		Threshold: threshold,
		PassRate:  rate,
		Passed:    rate >= threshold,
		Cases:     cases,
	}
}
