package causalgraph

import (
	"errors"
	"math"
	"testing"

	"causalgate/domain/causal"
	"causalgate/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

// confoundedGraph is the canonical Confounder→Treatment, Confounder→Outcome, Treatment→Outcome triangle
func confoundedGraph() *Model {
	return NewModel(causal.Structure{
		Nodes: []causal.Node{
			{Name: "Confounder", Kind: causal.KindLatent},
			{Name: "Treatment", Kind: causal.KindIntervention},
			{Name: "Outcome", Kind: causal.KindObservable},
		},
		Edges: []causal.Edge{
			{From: "Confounder", To: "Treatment", Sign: causal.SignPositive},
			{From: "Confounder", To: "Outcome", Sign: causal.SignPositive},
			{From: "Treatment", To: "Outcome", Sign: causal.SignPositive},
		},
	})
}

func chainGraph() *Model {
	return NewModel(causal.Structure{
		Edges: []causal.Edge{
			{From: "A", To: "B", Sign: causal.SignPositive, Strength: f(1.0)},
			{From: "B", To: "C", Sign: causal.SignNegative, Strength: f(2.0)},
		},
	})
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Blood Pressure", "bloodpressure"},
		{"blood_pressure", "bloodpressure"},
		{"CO2-Level!", "co2level"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Normalize(tt.input), "Normalize(%q)", tt.input)
	}
}

func TestHydrateReplacesCustomTier(t *testing.T) {
	m := NewModel(causal.Structure{Nodes: []causal.Node{{Name: "A"}}, Edges: []causal.Edge{{From: "A", To: "B"}}})
	m.Hydrate([]causal.Node{{Name: "X"}}, nil)

	custom := m.CustomStructure()
	require.Len(t, custom.Nodes, 1)
	assert.Equal(t, "X", custom.Nodes[0].Name)
	assert.Empty(t, custom.Edges)

	full := m.FullStructure()
	innate := InnateStructure()
	assert.Len(t, full.Nodes, len(innate.Nodes)+1)
	assert.Len(t, full.Edges, len(innate.Edges))
	assert.Equal(t, innate.Nodes[0], full.Nodes[0], "innate tier comes first")
}

func TestHydrateIsIdempotent(t *testing.T) {
	payload := causal.Structure{Edges: []causal.Edge{{From: "A", To: "B"}}}
	m := NewModel(payload)
	first := m.FullStructure()
	m.Hydrate(payload.Nodes, payload.Edges)
	assert.Equal(t, first, m.FullStructure())
}

func TestHydrateDoesNotAliasCallerSlices(t *testing.T) {
	edges := []causal.Edge{{From: "A", To: "B", Strength: f(1.5)}}
	m := NewModel(causal.Structure{Edges: edges})
	*edges[0].Strength = 0.1
	edges[0].To = "Z"

	custom := m.CustomStructure()
	assert.Equal(t, "B", custom.Edges[0].To)
	assert.Equal(t, 1.5, *custom.Edges[0].Strength)
}

func TestInnateTierCannotBeMutatedThroughCopies(t *testing.T) {
	s := InnateStructure()
	s.Nodes[0].Name = "Mutated"
	*s.Edges[0].Strength = 1.9
	again := InnateStructure()
	assert.Equal(t, "Time", again.Nodes[0].Name)
	assert.Equal(t, 1.0, *again.Edges[0].Strength)
}

func TestQueryAssociationChain(t *testing.T) {
	m := chainGraph()
	res, err := m.QueryAssociation("a", "C", map[string]float64{"A": 2})
	require.NoError(t, err)

	assert.True(t, res.PathFound)
	assert.Equal(t, []string{"A", "B", "C"}, res.Path)
	// (1*1*0.85) * (-1*2*0.85) = -1.445
	assert.Equal(t, -1.445, res.PathWeight)
	assert.Equal(t, -2.89, res.Value)
	assert.Equal(t, causal.RungAssociation, res.Rung)
	assert.Equal(t, causal.AssociationDisclaimer, res.Disclaimer)
}

func TestQueryAssociationNoPathIsDegenerate(t *testing.T) {
	m := chainGraph()
	res, err := m.QueryAssociation("C", "A", map[string]float64{"C": 3})
	require.NoError(t, err)

	assert.False(t, res.PathFound)
	assert.Equal(t, []string{"C", "A"}, res.Path)
	assert.Equal(t, MissingEdgePenalty, res.PathWeight)
	assert.Equal(t, 1.5, res.Value)
}

func TestQueryAssociationDefaultsObservedToZero(t *testing.T) {
	res, err := chainGraph().QueryAssociation("A", "C", nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Value)
	assert.False(t, math.Signbit(res.Value), "negative zero must be folded")
}

func TestQueryAssociationShortestPathPrefersFewerHops(t *testing.T) {
	m := NewModel(causal.Structure{Edges: []causal.Edge{
		{From: "A", To: "B"},
		{From: "B", To: "D"},
		{From: "A", To: "D", Strength: f(0.5)},
	}})
	res, err := m.QueryAssociation("A", "D", map[string]float64{"A": 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "D"}, res.Path)
	assert.Equal(t, 0.425, res.PathWeight)
}

func TestQueryAssociationRespectsHopBound(t *testing.T) {
	var edges []causal.Edge
	names := []string{"N0", "N1", "N2", "N3", "N4", "N5", "N6", "N7"}
	for i := 0; i+1 < len(names); i++ {
		edges = append(edges, causal.Edge{From: names[i], To: names[i+1]})
	}
	m := NewModel(causal.Structure{Edges: edges})

	within, err := m.QueryAssociation("N0", "N6", nil)
	require.NoError(t, err)
	assert.True(t, within.PathFound)

	beyond, err := m.QueryAssociation("N0", "N7", nil)
	require.NoError(t, err)
	assert.False(t, beyond.PathFound)
}

func TestQueryAssociationClampsStrength(t *testing.T) {
	m := NewModel(causal.Structure{Edges: []causal.Edge{{From: "A", To: "B", Strength: f(10)}}})
	res, err := m.QueryAssociation("A", "B", map[string]float64{"A": 1})
	require.NoError(t, err)
	assert.Equal(t, 1.7, res.PathWeight)
}

func TestQueryInterventionChain(t *testing.T) {
	m := chainGraph()
	res, err := m.QueryIntervention("A", 1, "C", map[string]float64{"C": 10})
	require.NoError(t, err)

	// A: 1, B: 0.7, C: 0.7 * -1 * 2 * 0.7 = -0.98
	assert.Equal(t, -0.98, res.Effect)
	assert.Equal(t, 9.02, res.IntervenedOutcome)
	assert.Equal(t, 10.0, res.BaselineOutcome)
	assert.Equal(t, 1.0, res.Deltas["A"])
	assert.Equal(t, 0.7, res.Deltas["B"])
	assert.Equal(t, 3, res.Visited)
}

func TestQueryInterventionOriginDeltaIsRelativeToBaseline(t *testing.T) {
	res, err := chainGraph().QueryIntervention("A", 5, "B", map[string]float64{"A": 4})
	require.NoError(t, err)
	assert.Equal(t, 0.7, res.Effect)
}

func TestQueryInterventionAccumulatesAcrossPaths(t *testing.T) {
	m := NewModel(causal.Structure{Edges: []causal.Edge{
		{From: "X", To: "M1"},
		{From: "X", To: "M2"},
		{From: "M1", To: "Y"},
		{From: "M2", To: "Y"},
	}})
	res, err := m.QueryIntervention("X", 1, "Y", nil)
	require.NoError(t, err)
	assert.Equal(t, 0.98, res.Effect) // 2 * 0.7 * 0.7
}

func TestQueryInterventionCycleTerminates(t *testing.T) {
	m := NewModel(causal.Structure{Edges: []causal.Edge{
		{From: "A", To: "B", Strength: f(2)},
		{From: "B", To: "A", Strength: f(2)},
	}})
	res, err := m.QueryIntervention("A", 1, "B", nil)
	require.NoError(t, err)
	assert.Greater(t, res.Effect, 0.0)
	assert.Equal(t, 2, res.Visited)
}

func TestQueryInterventionPrunesTinyDeltas(t *testing.T) {
	m := NewModel(causal.Structure{Edges: []causal.Edge{{From: "A", To: "B", Strength: f(0.1)}}})
	res, err := m.QueryIntervention("A", 0.001, "B", nil)
	require.NoError(t, err)
	// 0.001 * 0.1 * 0.7 = 7e-5 < 1e-4
	assert.Equal(t, 0.0, res.Effect)
	assert.Equal(t, 1, res.Visited)
}

func TestQueryCounterfactual(t *testing.T) {
	m := chainGraph()
	observed := map[string]float64{"A": 1, "B": 0.7, "C": 5}
	res, err := m.QueryCounterfactual("A", 3, "C", observed)
	require.NoError(t, err)

	// delta at origin = 3 - 1 = 2; C delta = 2 * 0.7 * -1.4 = -1.96
	assert.Equal(t, 5.0, res.FactualOutcome)
	assert.Equal(t, 3.04, res.CounterfactualOutcome)
	assert.Equal(t, -1.96, res.Difference)
	assert.Equal(t, causal.RungCounterfactual, res.Rung)
}

func TestQueriesRejectNonFiniteInputs(t *testing.T) {
	m := chainGraph()

	_, err := m.QueryAssociation("A", "C", map[string]float64{"A": math.NaN()})
	assert.True(t, errors.Is(err, core.ErrNonFiniteInput))

	_, err = m.QueryIntervention("A", math.Inf(1), "C", nil)
	assert.True(t, errors.Is(err, core.ErrNonFiniteInput))

	_, err = m.QueryCounterfactual("A", 1, "C", map[string]float64{"C": math.Inf(-1)})
	assert.True(t, errors.Is(err, core.ErrNonFiniteInput))
}

func TestQueriesAreDeterministic(t *testing.T) {
	m := confoundedGraph()
	observed := map[string]float64{"Treatment": 1.3, "Outcome": 2.1, "Confounder": 0.4}

	for i := 0; i < 20; i++ {
		a1, _ := m.QueryAssociation("Confounder", "Outcome", observed)
		a2, _ := m.QueryAssociation("Confounder", "Outcome", observed)
		assert.Equal(t, a1, a2)

		i1, _ := m.QueryIntervention("Confounder", 2, "Outcome", observed)
		i2, _ := m.QueryIntervention("Confounder", 2, "Outcome", observed)
		assert.Equal(t, i1, i2)

		c1, _ := m.QueryCounterfactual("Treatment", 0, "Outcome", observed)
		c2, _ := m.QueryCounterfactual("Treatment", 0, "Outcome", observed)
		assert.Equal(t, c1, c2)
	}
}

func TestInnateTierParticipatesInQueries(t *testing.T) {
	m := NewModel(causal.Structure{})
	res, err := m.QueryAssociation("time", "ENTROPY", map[string]float64{"Time": 1})
	require.NoError(t, err)
	assert.True(t, res.PathFound)
	assert.Equal(t, []string{"Time", "Entropy"}, res.Path)
	assert.Equal(t, 0.85, res.Value)
}
