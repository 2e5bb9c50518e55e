package causalgraph

import (
	"math"

	"causalgate/domain/causal"
)

// QueryAssociation finds the shortest directed path cause→effect (breadth
// first, ties broken by edge order, at most MaxHops) and scales the observed
// cause value by the path weight. When no path exists the degenerate path
// [cause, effect] is scored, which costs MissingEdgePenalty for the absent hop.
//
// The result is observational only; see causal.AssociationDisclaimer.
func (m *Model) QueryAssociation(cause, effect string, observed map[string]float64) (causal.AssociationResult, error) {
	if err := checkFiniteMap("observed", observed); err != nil {
		return causal.AssociationResult{}, err
	}

	causeKey, effectKey := Normalize(cause), Normalize(effect)
	keys, found := m.shortestPath(causeKey, effectKey)
	if !found {
		keys = []string{causeKey, effectKey}
	}

	weight := 1.0
	for i := 0; i+1 < len(keys); i++ {
		edge, ok := m.edgeBetween(keys[i], keys[i+1])
		if !ok {
			weight *= MissingEdgePenalty
			continue
		}
		weight *= edge.Sign.Multiplier() * edge.EffectiveStrength() * AssociationDecay
	}

	path := make([]string, len(keys))
	for i, k := range keys {
		fallback := k
		switch {
		case k == causeKey:
			fallback = cause
		case k == effectKey:
			fallback = effect
		}
		path[i] = m.displayName(k, fallback)
	}

	obs := normalizedValues(observed)
	return causal.AssociationResult{
		Rung:       causal.RungAssociation,
		Cause:      cause,
		Effect:     effect,
		Path:       path,
		PathFound:  found,
		PathWeight: round(weight, 4),
		Value:      round(obs[causeKey]*weight, 4),
		Disclaimer: causal.AssociationDisclaimer,
	}, nil
}

func (m *Model) shortestPath(from, to string) ([]string, bool) {
	if from == to {
		return []string{from}, true
	}

	parent := map[string]string{from: ""}
	depth := map[string]int{from: 0}
	queue := []string{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if depth[current] >= MaxHops {
			continue
		}
		for _, ei := range m.directed[current] {
			next := Normalize(m.edges[ei].To)
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = current
			depth[next] = depth[current] + 1
			if next == to {
				return unwind(parent, from, to), true
			}
			queue = append(queue, next)
		}
	}
	return nil, false
}

func unwind(parent map[string]string, from, to string) []string {
	var reversed []string
	for at := to; ; at = parent[at] {
		reversed = append(reversed, at)
		if at == from {
			break
		}
	}
	path := make([]string, len(reversed))
	for i, k := range reversed {
		path[len(reversed)-1-i] = k
	}
	return path
}

type propagation struct {
	key   string
	delta float64
	depth int
}

// QueryIntervention models do(variable=value): the delta value−baseline[variable]
// spreads breadth first along directed edges, attenuated per hop by
// sign×strength×InterventionDecay, for at most MaxHops, dropping branches once
// |delta| < DeltaPruneThreshold. Deltas accumulate over every walk reaching a node.
func (m *Model) QueryIntervention(variable string, value float64, outcome string, baseline map[string]float64) (causal.InterventionResult, error) {
	if err := checkFinite("value", value); err != nil {
		return causal.InterventionResult{}, err
	}
	if err := checkFiniteMap("baseline", baseline); err != nil {
		return causal.InterventionResult{}, err
	}

	base := normalizedValues(baseline)
	originKey, outcomeKey := Normalize(variable), Normalize(outcome)

	deltas, order := m.propagate(originKey, value-base[originKey])

	rounded := make(map[string]float64, len(order))
	for _, k := range order {
		fallback := k
		if k == originKey {
			fallback = variable
		}
		rounded[m.displayName(k, fallback)] = round(deltas[k], 4)
	}

	effect := deltas[outcomeKey]
	return causal.InterventionResult{
		Rung:              causal.RungIntervention,
		Variable:          variable,
		Value:             value,
		Outcome:           outcome,
		BaselineOutcome:   round(base[outcomeKey], 4),
		Effect:            round(effect, 4),
		IntervenedOutcome: round(base[outcomeKey]+effect, 4),
		Deltas:            rounded,
		Visited:           len(order),
	}, nil
}

// propagate returns the accumulated delta per node and the order nodes were first reached
func (m *Model) propagate(originKey string, initial float64) (map[string]float64, []string) {
	deltas := map[string]float64{originKey: initial}
	order := []string{originKey}
	queue := []propagation{{key: originKey, delta: initial, depth: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.depth >= MaxHops {
			continue
		}
		for _, ei := range m.directed[current.key] {
			edge := m.edges[ei]
			next := current.delta * edge.Sign.Multiplier() * edge.EffectiveStrength() * InterventionDecay
			if math.Abs(next) < DeltaPruneThreshold {
				continue
			}
			key := Normalize(edge.To)
			if _, seen := deltas[key]; !seen {
				order = append(order, key)
			}
			deltas[key] += next
			queue = append(queue, propagation{key: key, delta: next, depth: current.depth + 1})
		}
	}
	return deltas, order
}

// QueryCounterfactual answers "what would outcome have been had variable been
// value" by running the intervention with the observed world as baseline.
func (m *Model) QueryCounterfactual(variable string, value float64, outcome string, observed map[string]float64) (causal.CounterfactualResult, error) {
	intervention, err := m.QueryIntervention(variable, value, outcome, observed)
	if err != nil {
		return causal.CounterfactualResult{}, err
	}

	factual := normalizedValues(observed)[Normalize(outcome)]
	return causal.CounterfactualResult{
		Rung:                  causal.RungCounterfactual,
		Variable:              variable,
		Value:                 value,
		Outcome:               outcome,
		FactualOutcome:        round(factual, 4),
		CounterfactualOutcome: intervention.IntervenedOutcome,
		Difference:            round(intervention.IntervenedOutcome-factual, 4),
	}, nil
}
