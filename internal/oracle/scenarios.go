package oracle

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"causalgate/domain/causal"
	"causalgate/domain/hypothesis"
	"causalgate/domain/verdict"
	"causalgate/internal/causalgraph"
	"causalgate/internal/disclosure"
	"causalgate/internal/lifecycle"
	"causalgate/internal/mechanism"
)

// Pass thresholds per family
const (
	ThresholdFalsification  = 1.0
	ThresholdCounterfactual = 0.90
	ThresholdDominance      = 0.95
	ThresholdIdentifiable   = 1.0
	ThresholdOverclaim      = 1.0
)

const oracleFalsifier = "Reject if the treated group shows no change within 30 days."

func ptr[T any](v T) *T { return &v }

func falsificationTransitions() FamilyResult {
	tests := []struct {
		name   string
		h      hypothesis.Hypothesis
		expect hypothesis.LifecycleState
	}{
		{"missing falsifier retracts", hypothesis.Hypothesis{ID: "f1"}, hypothesis.StateRetracted},
		{"short falsifier retracts despite success", hypothesis.Hypothesis{ID: "f2", Falsifier: "None.",
			ValidationResult: &hypothesis.ValidationResult{Success: true}}, hypothesis.StateRetracted},
		{"untested stays proposed", hypothesis.Hypothesis{ID: "f3", Falsifier: oracleFalsifier}, hypothesis.StateProposed},
		{"failed validation falsifies", hypothesis.Hypothesis{ID: "f4", Falsifier: oracleFalsifier,
			ValidationResult: &hypothesis.ValidationResult{Success: false}}, hypothesis.StateFalsified},
		{"p at 0.05 falsifies", hypothesis.Hypothesis{ID: "f5", Falsifier: oracleFalsifier,
			ValidationResult: &hypothesis.ValidationResult{Success: true, Metrics: &hypothesis.ValidationMetrics{PValue: ptr(0.05)}}}, hypothesis.StateFalsified},
		{"invalid conclusion falsifies", hypothesis.Hypothesis{ID: "f6", Falsifier: oracleFalsifier,
			ValidationResult: &hypothesis.ValidationResult{Success: true, Metrics: &hypothesis.ValidationMetrics{ConclusionValid: ptr(false)}}}, hypothesis.StateFalsified},
		{"significant result is tested", hypothesis.Hypothesis{ID: "f7", Falsifier: oracleFalsifier,
			ValidationResult: &hypothesis.ValidationResult{Success: true, Metrics: &hypothesis.ValidationMetrics{PValue: ptr(0.01), ConclusionValid: ptr(true)}}}, hypothesis.StateTested},
	}

	cases := make([]Case, 0, len(tests))
	for _, tt := range tests {
		tt.h.InterventionValueScore = ptr(1.0)
		tt.h.NoveltyScore = ptr(100.0)
		state := lifecycle.State(tt.h)
		eligible := lifecycle.IsRecommendationEligible(tt.h)
		wantEligible := tt.expect == hypothesis.StateProposed || tt.expect == hypothesis.StateTested
		cases = append(cases, Case{
			Name:   tt.name,
			Passed: state == tt.expect && eligible == wantEligible,
			Detail: fmt.Sprintf("state=%s eligible=%v", state, eligible),
		})
	}
	return score(FamilyFalsification, "", ThresholdFalsification, cases)
}

// cropGraph is the semantic graph every counterfactual variant encodes
func cropGraph() causal.Structure {
	e := func(from, to string, sign causal.Sign, s float64) causal.Edge {
		return causal.Edge{From: from, To: to, Sign: sign, Strength: ptr(s)}
	}
	return causal.Structure{
		Nodes: []causal.Node{
			{Name: "Rain", Kind: causal.KindExogenous},
			{Name: "Irrigation", Kind: causal.KindIntervention},
			{Name: "SoilMoisture", Kind: causal.KindObservable},
			{Name: "Pests", Kind: causal.KindObservable},
			{Name: "Pesticide", Kind: causal.KindIntervention},
			{Name: "Fertilizer", Kind: causal.KindIntervention},
			{Name: "Runoff", Kind: causal.KindObservable},
			{Name: "Yield", Kind: causal.KindObservable},
		},
		Edges: []causal.Edge{
			e("Rain", "SoilMoisture", causal.SignPositive, 1.2),
			e("Irrigation", "SoilMoisture", causal.SignPositive, 0.8),
			e("SoilMoisture", "Yield", causal.SignPositive, 1.0),
			e("Pests", "Yield", causal.SignNegative, 0.6),
			e("Pesticide", "Pests", causal.SignNegative, 1.5),
			e("Fertilizer", "Yield", causal.SignPositive, 0.5),
			e("Fertilizer", "Runoff", causal.SignPositive, 1.0),
		},
	}
}

var cropLevers = []string{"Rain", "Irrigation", "SoilMoisture", "Pests", "Pesticide", "Fertilizer"}

type graphVariant struct {
	name  string
	build func() causal.Structure
}

var graphVariants = []graphVariant{
	{"reordered", func() causal.Structure {
		s := cropGraph()
		for i, j := 0, len(s.Edges)-1; i < j; i, j = i+1, j-1 {
			s.Edges[i], s.Edges[j] = s.Edges[j], s.Edges[i]
		}
		for i, j := 0, len(s.Nodes)-1; i < j; i, j = i+1, j-1 {
			s.Nodes[i], s.Nodes[j] = s.Nodes[j], s.Nodes[i]
		}
		return s
	}},
	{"renamed", func() causal.Structure {
		s := cropGraph()
		rename := map[string]string{"SoilMoisture": "soil_moisture", "Yield": "YIELD", "Pests": "pests", "Rain": "Rain "}
		for i := range s.Nodes {
			if n, ok := rename[s.Nodes[i].Name]; ok {
				s.Nodes[i].Name = n
			}
		}
		for i := range s.Edges {
			if n, ok := rename[s.Edges[i].From]; ok {
				s.Edges[i].From = n
			}
			if n, ok := rename[s.Edges[i].To]; ok {
				s.Edges[i].To = n
			}
		}
		return s
	}},
	{"feedback", func() causal.Structure {
		s := cropGraph()
		s.Edges = append(s.Edges, causal.Edge{From: "Yield", To: "Pests", Sign: causal.SignNegative, Strength: ptr(0.1)})
		return s
	}},
}

// leverEffects returns the counterfactual difference in Yield for raising each lever from 0 to 1
func leverEffects(s causal.Structure) (map[string]float64, error) {
	m := causalgraph.NewModel(s)
	effects := make(map[string]float64, len(cropLevers))
	for _, lever := range cropLevers {
		r, err := m.QueryCounterfactual(lever, 1, "Yield", nil)
		if err != nil {
			return nil, err
		}
		effects[lever] = r.Difference
	}
	return effects, nil
}

// ranks orders levers by |effect| descending, name ascending on ties
func ranks(effects map[string]float64) map[string]int {
	names := append([]string(nil), cropLevers...)
	sort.SliceStable(names, func(i, j int) bool {
		a, b := math.Abs(effects[names[i]]), math.Abs(effects[names[j]])
		if a != b {
			return a > b
		}
		return names[i] < names[j]
	})
	out := make(map[string]int, len(names))
	for i, n := range names {
		out[n] = i
	}
	return out
}

func counterfactualStability() []FamilyResult {
	baseline, err := leverEffects(cropGraph())
	if err != nil {
		return []FamilyResult{score(FamilyCounterfactual, "baseline", ThresholdCounterfactual, []Case{{Name: "baseline", Detail: err.Error()}})}
	}
	baseRanks := ranks(baseline)

	results := make([]FamilyResult, 0, len(graphVariants))
	for _, v := range graphVariants {
		effects, err := leverEffects(v.build())
		if err != nil {
			results = append(results, score(FamilyCounterfactual, v.name, ThresholdCounterfactual, []Case{{Name: v.name, Detail: err.Error()}}))
			continue
		}
		variantRanks := ranks(effects)
		cases := make([]Case, 0, len(cropLevers))
		for _, lever := range cropLevers {
			sameSign := math.Signbit(effects[lever]) == math.Signbit(baseline[lever]) && effects[lever] != 0
			cases = append(cases, Case{
				Name:   lever,
				Passed: sameSign && variantRanks[lever] == baseRanks[lever],
				Detail: fmt.Sprintf("delta=%.4f baseline=%.4f rank=%d/%d", effects[lever], baseline[lever], variantRanks[lever], baseRanks[lever]),
			})
		}
		results = append(results, score(FamilyCounterfactual, v.name, ThresholdCounterfactual, cases))
	}
	return results
}

// DominanceScenarios is the number of paired ranking conflicts generated
const DominanceScenarios = 20

func interventionDominance() FamilyResult {
	cases := make([]Case, 0, DominanceScenarios)
	for i := 0; i < DominanceScenarios; i++ {
		jitter := float64(i%5) * 0.01
		novel := hypothesis.Hypothesis{
			ID: fmt.Sprintf("novel-%02d", i), Falsifier: oracleFalsifier,
			NoveltyScore: ptr(92 - float64(i%3)), InterventionValueScore: ptr(0.18 + jitter),
		}
		actionable := hypothesis.Hypothesis{
			ID: fmt.Sprintf("actionable-%02d", i), Falsifier: oracleFalsifier,
			NoveltyScore: ptr(36 + float64(i%4)), InterventionValueScore: ptr(0.84 - jitter),
		}
		ranked := lifecycle.Recommend([]hypothesis.Hypothesis{novel, actionable})
		cases = append(cases, Case{
			Name:   fmt.Sprintf("pair-%02d", i),
			Passed: len(ranked) == 2 && ranked[0].ID == actionable.ID,
		})
	}
	return score(FamilyDominance, "", ThresholdDominance, cases)
}

func identifiabilityGate() FamilyResult {
	confounded := causalgraph.NewModel(causal.Structure{Edges: []causal.Edge{
		{From: "Confounder", To: "Treatment"},
		{From: "Confounder", To: "Outcome"},
		{From: "Treatment", To: "Outcome"},
	}})
	direct := causalgraph.NewModel(causal.Structure{Edges: []causal.Edge{{From: "Treatment", To: "Outcome"}}})

	tests := []struct {
		name         string
		model        *causalgraph.Model
		adjustment   []string
		known        []string
		identifiable bool
		missing      []string
	}{
		{"confounder unadjusted", confounded, nil, []string{"Confounder"}, false, []string{"Confounder"}},
		{"confounder adjusted", confounded, []string{"Confounder"}, []string{"Confounder"}, true, []string{}},
		{"no confounding", direct, nil, nil, true, []string{}},
		{"known confounder outside graph", confounded, []string{"Confounder"}, []string{"SES"}, false, []string{"SES"}},
	}

	cases := make([]Case, 0, len(tests))
	for _, tt := range tests {
		r := tt.model.CheckIdentifiability("Treatment", "Outcome", tt.adjustment, tt.known)
		cases = append(cases, Case{
			Name:   tt.name,
			Passed: r.Identifiable == tt.identifiable && strings.Join(r.Missing, ",") == strings.Join(tt.missing, ","),
			Detail: fmt.Sprintf("identifiable=%v missing=%v", r.Identifiable, r.Missing),
		})
	}
	return score(FamilyIdentifiability, "", ThresholdIdentifiable, cases)
}

func overclaimAbsence() FamilyResult {
	graph := causalgraph.NewModel(causal.Structure{Edges: []causal.Edge{
		{From: "Confounder", To: "Treatment"},
		{From: "Confounder", To: "Outcome"},
		{From: "Treatment", To: "Outcome"},
	}})
	gate := disclosure.NewGate(graph, nil)

	var cases []Case
	requests := []disclosure.Request{
		{Treatment: "Treatment", Outcome: "Outcome"},
		{Treatment: "Treatment", Outcome: "Outcome", AdjustmentSet: []string{"Age"}, KnownConfounders: []string{"Confounder"}},
		{Treatment: "Treatment", Outcome: "Outcome", AdjustmentSet: []string{"Confounder"}},
		{Treatment: "Treatment", Outcome: "Outcome", AdjustmentSet: []string{"Confounder"}, Validation: &disclosure.EmpiricalValidation{Source: "trial"}},
	}
	for _, req := range requests {
		d := gate.Decide(req)
		v := disclosure.CheckOverclaim(disclosure.Statement(req, d), d.Class)
		cases = append(cases, Case{
			Name:   "statement " + string(d.Class),
			Passed: len(v) == 0,
			Detail: fmt.Sprintf("violations=%d", len(v)),
		})
	}

	controls := []struct {
		name  string
		text  string
		class verdict.OutputClass
	}{
		{"banner without support", "Status: Identified. Treatment lowers Outcome.", verdict.ClassInterventionInferred},
		{"intervention claim on association", "If we increase Treatment, Outcome falls.", verdict.ClassAssociationOnly},
		{"undisclosed inferred claim", "Raising Treatment will reduce Outcome.", verdict.ClassInterventionInferred},
	}
	for _, c := range controls {
		v := disclosure.CheckOverclaim(c.text, c.class)
		cases = append(cases, Case{
			Name:   "flags " + c.name,
			Passed: len(v) > 0,
			Detail: fmt.Sprintf("violations=%d", len(v)),
		})
	}

	mech, err := mechanism.NewGate(mechanism.DefaultPolicy()).Evaluate(context.Background(), mechanism.Request{
		Text:       "In this model the effect precedes cause.",
		Checkpoint: verdict.CheckpointPreRelease,
	})
	cases = append(cases, Case{
		Name:   "blocks effect-precedes-cause",
		Passed: err == nil && mech.Status == verdict.StatusBlocked,
		Detail: fmt.Sprintf("status=%s", mech.Status),
	})

	return score(FamilyOverclaim, "", ThresholdOverclaim, cases)
}
