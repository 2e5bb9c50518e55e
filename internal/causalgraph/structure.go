package causalgraph

import (
	"causalgate/domain/causal"
)

type pathFrame struct {
	path []string
	seen map[string]bool
}

// CheckDSeparation enumerates every simple path between x and y over the
// undirected skeleton (at most MaxHops edges). A path is open when none of its
// interior nodes is conditioned on; x and y are d-separated iff no path is open.
// Collider structure is not modelled.
func (m *Model) CheckDSeparation(x, y string, conditionedOn []string) causal.DSeparationResult {
	xKey, yKey := Normalize(x), Normalize(y)
	conditioned := keySet(conditionedOn)

	result := causal.DSeparationResult{
		X:             x,
		Y:             y,
		ConditionedOn: append([]string{}, conditionedOn...),
		OpenPaths:     [][]string{},
		BlockedPaths:  [][]string{},
	}
	if xKey == yKey {
		result.Separated = false
		return result
	}

	for _, path := range m.simplePaths(xKey, yKey) {
		open := true
		for _, interior := range path[1 : len(path)-1] {
			if conditioned[interior] {
				open = false
				break
			}
		}

		named := make([]string, len(path))
		for i, k := range path {
			fallback := k
			switch k {
			case xKey:
				fallback = x
			case yKey:
				fallback = y
			}
			named[i] = m.displayName(k, fallback)
		}
		if open {
			result.OpenPaths = append(result.OpenPaths, named)
		} else {
			result.BlockedPaths = append(result.BlockedPaths, named)
		}
	}

	result.Separated = len(result.OpenPaths) == 0
	return result
}

// simplePaths runs a stack-based DFS, never revisiting a node within one path
func (m *Model) simplePaths(from, to string) [][]string {
	var paths [][]string
	stack := []pathFrame{{path: []string{from}, seen: map[string]bool{from: true}}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		last := frame.path[len(frame.path)-1]
		if last == to {
			paths = append(paths, frame.path)
			continue
		}
		if len(frame.path)-1 >= MaxHops {
			continue
		}

		neighbors := m.undirect[last]
		// push in reverse so neighbors pop in edge order
		for i := len(neighbors) - 1; i >= 0; i-- {
			next := neighbors[i]
			if frame.seen[next] {
				continue
			}
			path := make([]string, len(frame.path), len(frame.path)+1)
			copy(path, frame.path)
			seen := make(map[string]bool, len(frame.seen)+1)
			for k := range frame.seen {
				seen[k] = true
			}
			seen[next] = true
			stack = append(stack, pathFrame{path: append(path, next), seen: seen})
		}
	}
	return paths
}

// StructuralConfounders returns every node with a directed edge into both
// treatment and outcome, in edge order.
func (m *Model) StructuralConfounders(treatment, outcome string) []string {
	tKey, oKey := Normalize(treatment), Normalize(outcome)
	seen := make(map[string]bool)
	var confounders []string

	for _, e := range m.edges {
		from := Normalize(e.From)
		if Normalize(e.To) != tKey || from == tKey || from == oKey || seen[from] {
			continue
		}
		if _, ok := m.edgeBetween(from, oKey); ok {
			seen[from] = true
			confounders = append(confounders, m.displayName(from, e.From))
		}
	}
	return confounders
}

// CheckIdentifiability applies the common-parent backdoor rule: the effect is
// identifiable iff the adjustment set covers every structural confounder and
// every externally known confounder.
func (m *Model) CheckIdentifiability(treatment, outcome string, adjustmentSet, knownConfounders []string) causal.IdentifiabilityResult {
	structural := m.StructuralConfounders(treatment, outcome)

	var required []string
	requiredKeys := make(map[string]bool)
	for _, name := range append(append([]string{}, structural...), knownConfounders...) {
		key := Normalize(name)
		if requiredKeys[key] {
			continue
		}
		requiredKeys[key] = true
		required = append(required, m.displayName(key, name))
	}

	adjusted := keySet(adjustmentSet)
	missing := []string{}
	for _, name := range required {
		if !adjusted[Normalize(name)] {
			missing = append(missing, name)
		}
	}

	if structural == nil {
		structural = []string{}
	}
	if required == nil {
		required = []string{}
	}
	return causal.IdentifiabilityResult{
		Treatment:             treatment,
		Outcome:               outcome,
		StructuralConfounders: structural,
		Required:              required,
		AdjustmentSet:         append([]string{}, adjustmentSet...),
		Missing:               missing,
		Identifiable:          len(missing) == 0,
	}
}

// CheckConfounderCompleteness measures how much of the required confounder
// set a provided set covers. Coverage is (|required|-|missing|)/max(1,|required|).
func CheckConfounderCompleteness(required, provided []string) causal.CompletenessResult {
	requiredList := dedupe(required)
	providedList := dedupe(provided)
	providedKeys := keySet(providedList)
	requiredKeys := keySet(requiredList)

	missing := []string{}
	for _, name := range requiredList {
		if !providedKeys[Normalize(name)] {
			missing = append(missing, name)
		}
	}
	extras := []string{}
	for _, name := range providedList {
		if !requiredKeys[Normalize(name)] {
			extras = append(extras, name)
		}
	}

	denominator := len(requiredList)
	if denominator < 1 {
		denominator = 1
	}
	return causal.CompletenessResult{
		Coverage: round(float64(len(requiredList)-len(missing))/float64(denominator), 4),
		Missing:  missing,
		Extras:   extras,
	}
}

func keySet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[Normalize(n)] = true
	}
	return set
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		key := Normalize(n)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}
