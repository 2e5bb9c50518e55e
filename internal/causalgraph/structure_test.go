package causalgraph

import (
	"testing"

	"causalgate/domain/causal"

	"github.com/stretchr/testify/assert"
)

func TestCheckIdentifiabilityCanonicalConfounder(t *testing.T) {
	m := confoundedGraph()

	unadjusted := m.CheckIdentifiability("Treatment", "Outcome", nil, []string{"Confounder"})
	assert.False(t, unadjusted.Identifiable)
	assert.Equal(t, []string{"Confounder"}, unadjusted.Missing)
	assert.Equal(t, []string{"Confounder"}, unadjusted.StructuralConfounders)

	adjusted := m.CheckIdentifiability("Treatment", "Outcome", []string{"Confounder"}, []string{"Confounder"})
	assert.True(t, adjusted.Identifiable)
	assert.Empty(t, adjusted.Missing)
}

func TestCheckIdentifiabilityNormalizesNames(t *testing.T) {
	m := confoundedGraph()
	res := m.CheckIdentifiability("treatment", "OUTCOME", []string{"con-founder"}, nil)
	assert.True(t, res.Identifiable)
	assert.Equal(t, []string{"Confounder"}, res.Required)
}

func TestCheckIdentifiabilityKnownConfounderOutsideGraph(t *testing.T) {
	m := NewModel(causal.Structure{Edges: []causal.Edge{{From: "Treatment", To: "Outcome"}}})

	res := m.CheckIdentifiability("Treatment", "Outcome", []string{"Age"}, []string{"Age", "Income"})
	assert.False(t, res.Identifiable)
	assert.Empty(t, res.StructuralConfounders)
	assert.Equal(t, []string{"Income"}, res.Missing)
}

func TestCheckIdentifiabilityNoConfounders(t *testing.T) {
	m := NewModel(causal.Structure{Edges: []causal.Edge{{From: "Treatment", To: "Outcome"}}})
	res := m.CheckIdentifiability("Treatment", "Outcome", nil, nil)
	assert.True(t, res.Identifiable)
	assert.Empty(t, res.Required)
	assert.NotNil(t, res.Missing)
}

func TestCheckDSeparation(t *testing.T) {
	m := NewModel(causal.Structure{Edges: []causal.Edge{
		{From: "X", To: "M"},
		{From: "M", To: "Y"},
	}})

	open := m.CheckDSeparation("X", "Y", nil)
	assert.False(t, open.Separated)
	assert.Equal(t, [][]string{{"X", "M", "Y"}}, open.OpenPaths)

	blocked := m.CheckDSeparation("X", "Y", []string{"m"})
	assert.True(t, blocked.Separated)
	assert.Equal(t, [][]string{{"X", "M", "Y"}}, blocked.BlockedPaths)
}

func TestCheckDSeparationUsesUndirectedSkeleton(t *testing.T) {
	m := confoundedGraph()
	res := m.CheckDSeparation("Treatment", "Outcome", []string{"Confounder"})
	// the direct edge is a path with no interior nodes, so it stays open
	assert.False(t, res.Separated)
	assert.Contains(t, res.OpenPaths, []string{"Treatment", "Outcome"})
	assert.Contains(t, res.BlockedPaths, []string{"Treatment", "Confounder", "Outcome"})
}

func TestCheckDSeparationDisconnected(t *testing.T) {
	m := NewModel(causal.Structure{Edges: []causal.Edge{{From: "A", To: "B"}}})
	res := m.CheckDSeparation("A", "Unknown", nil)
	assert.True(t, res.Separated)
	assert.Empty(t, res.OpenPaths)
}

func TestCheckDSeparationSameNode(t *testing.T) {
	res := chainGraph().CheckDSeparation("A", "a", nil)
	assert.False(t, res.Separated)
}

func TestCheckDSeparationBoundsPathLength(t *testing.T) {
	var edges []causal.Edge
	names := []string{"N0", "N1", "N2", "N3", "N4", "N5", "N6", "N7"}
	for i := 0; i+1 < len(names); i++ {
		edges = append(edges, causal.Edge{From: names[i], To: names[i+1]})
	}
	m := NewModel(causal.Structure{Edges: edges})
	assert.True(t, m.CheckDSeparation("N0", "N7", nil).Separated, "7-hop path exceeds bound")
	assert.False(t, m.CheckDSeparation("N0", "N6", nil).Separated)
}

func TestCheckConfounderCompleteness(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		provided []string
		coverage float64
		missing  []string
		extras   []string
	}{
		{"full", []string{"Age", "Income"}, []string{"age", "INCOME"}, 1, []string{}, []string{}},
		{"partial", []string{"Age", "Income", "Region"}, []string{"Age", "Diet"}, 0.3333, []string{"Income", "Region"}, []string{"Diet"}},
		{"nothing required", nil, []string{"Age"}, 0, []string{}, []string{"Age"}},
		{"duplicates collapse", []string{"Age", "age"}, nil, 0, []string{"Age"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CheckConfounderCompleteness(tt.required, tt.provided)
			assert.Equal(t, tt.coverage, res.Coverage)
			assert.Equal(t, tt.missing, res.Missing)
			assert.Equal(t, tt.extras, res.Extras)
		})
	}
}
