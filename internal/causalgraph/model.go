// Package causalgraph holds the two-tier causal graph (fixed physics tier plus
// one replaceable custom tier) and the association, intervention,
// counterfactual, d-separation and identifiability operators over it.
//
// A Model follows a single-writer-then-many-readers discipline: call Hydrate
// (or NewModel with a structure) before issuing concurrent queries.
package causalgraph

import (
	"math"
	"regexp"
	"strings"

	"causalgate/domain/causal"
)

// Traversal bounds. The graph is not guaranteed acyclic.
const (
	MaxHops             = 6
	AssociationDecay    = 0.85
	InterventionDecay   = 0.7
	MissingEdgePenalty  = 0.5
	DeltaPruneThreshold = 1e-4
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// Normalize is the single name comparison key used everywhere: lowercase with
// every non-alphanumeric character stripped.
func Normalize(name string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "")
}

func strength(v float64) *float64 { return &v }

// innate is the fixed physics tier. It is never mutated.
var innate = causal.Structure{
	Nodes: []causal.Node{
		{Name: "Time", Kind: causal.KindExogenous, Domain: "physics"},
		{Name: "Energy", Kind: causal.KindLatent, Domain: "physics"},
		{Name: "Work", Kind: causal.KindObservable, Domain: "physics"},
		{Name: "Entropy", Kind: causal.KindObservable, Domain: "physics"},
		{Name: "Information", Kind: causal.KindLatent, Domain: "physics"},
	},
	Edges: []causal.Edge{
		{From: "Time", To: "Entropy", ConstraintKind: causal.ConstraintEntropy, Reversible: false, Sign: causal.SignPositive, Strength: strength(1.0)},
		{From: "Energy", To: "Work", ConstraintKind: causal.ConstraintConservation, Reversible: true, Sign: causal.SignPositive, Strength: strength(1.0)},
		{From: "Information", To: "Entropy", ConstraintKind: causal.ConstraintEntropy, Reversible: false, Sign: causal.SignNegative, Strength: strength(0.5)},
	},
}

// InnateStructure returns a copy of the fixed physics tier
func InnateStructure() causal.Structure {
	return copyStructure(innate)
}

// Model is a causal graph with an immutable innate tier and a custom tier
// replaced wholesale by Hydrate.
type Model struct {
	custom causal.Structure

	// derived views over innate+custom, rebuilt on Hydrate
	edges     []causal.Edge
	names     map[string]string
	directed  map[string][]int
	undirect  map[string][]string
	edgeIndex map[[2]string]int
}

// NewModel creates a model hydrated with the given custom structure
func NewModel(custom causal.Structure) *Model {
	m := &Model{}
	m.Hydrate(custom.Nodes, custom.Edges)
	return m
}

// Hydrate replaces the custom tier. It is idempotent and performs no
// validation beyond shape: dangling edge endpoints are kept as-is.
func (m *Model) Hydrate(nodes []causal.Node, edges []causal.Edge) {
	m.custom = copyStructure(causal.Structure{Nodes: nodes, Edges: edges})
	m.rebuild()
}

// CustomStructure returns a copy of the current custom tier
func (m *Model) CustomStructure() causal.Structure {
	return copyStructure(m.custom)
}

// FullStructure returns innate followed by custom nodes and edges
func (m *Model) FullStructure() causal.Structure {
	full := causal.Structure{
		Nodes: make([]causal.Node, 0, len(innate.Nodes)+len(m.custom.Nodes)),
		Edges: make([]causal.Edge, 0, len(innate.Edges)+len(m.custom.Edges)),
	}
	full.Nodes = append(full.Nodes, innate.Nodes...)
	full.Nodes = append(full.Nodes, m.custom.Nodes...)
	full.Edges = append(full.Edges, innate.Edges...)
	full.Edges = append(full.Edges, m.custom.Edges...)
	return copyStructure(full)
}

func (m *Model) rebuild() {
	full := m.FullStructure()
	m.edges = full.Edges
	m.names = make(map[string]string)
	m.directed = make(map[string][]int)
	m.undirect = make(map[string][]string)
	m.edgeIndex = make(map[[2]string]int)

	remember := func(name string) string {
		key := Normalize(name)
		if _, ok := m.names[key]; !ok {
			m.names[key] = name
		}
		return key
	}

	for _, n := range full.Nodes {
		remember(n.Name)
	}

	seenUndirected := make(map[[2]string]bool)
	for i, e := range full.Edges {
		from := remember(e.From)
		to := remember(e.To)
		m.directed[from] = append(m.directed[from], i)

		pair := [2]string{from, to}
		if _, ok := m.edgeIndex[pair]; !ok {
			m.edgeIndex[pair] = i
		}

		if !seenUndirected[pair] {
			seenUndirected[pair] = true
			seenUndirected[[2]string{to, from}] = true
			m.undirect[from] = append(m.undirect[from], to)
			if from != to {
				m.undirect[to] = append(m.undirect[to], from)
			}
		}
	}
}

// displayName maps a normalized key back to the first spelling seen in the
// graph, or returns fallback for names the graph does not know.
func (m *Model) displayName(key, fallback string) string {
	if name, ok := m.names[key]; ok {
		return name
	}
	return fallback
}

// edgeBetween returns the first edge from→to in structure order
func (m *Model) edgeBetween(fromKey, toKey string) (causal.Edge, bool) {
	i, ok := m.edgeIndex[[2]string{fromKey, toKey}]
	if !ok {
		return causal.Edge{}, false
	}
	return m.edges[i], true
}

func copyStructure(s causal.Structure) causal.Structure {
	out := causal.Structure{
		Nodes: append([]causal.Node(nil), s.Nodes...),
		Edges: make([]causal.Edge, len(s.Edges)),
	}
	for i, e := range s.Edges {
		if e.Strength != nil {
			e.Strength = strength(*e.Strength)
		}
		out.Edges[i] = e
	}
	return out
}

// round rounds half away from zero to the given number of decimals and
// folds negative zero into zero so repeated runs stay bit-identical.
func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0
	}
	return r
}
