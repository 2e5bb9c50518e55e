// Package template loads domain templates: the graph hydration payload plus
// the contradiction matrix and prior-art corpus that go with it. YAML and
// JSON files are both accepted.
package template

import (
	"fmt"
	"math"
	"os"
	"strings"

	"causalgate/domain/causal"
	"causalgate/domain/core"
	"causalgate/domain/hypothesis"

	"gopkg.in/yaml.v3"
)

// Template is one domain's hydration payload
type Template struct {
	Name          string                        `yaml:"name" json:"name"`
	Domain        string                        `yaml:"domain,omitempty" json:"domain,omitempty"`
	Nodes         []causal.Node                 `yaml:"nodes" json:"nodes"`
	Edges         []causal.Edge                 `yaml:"edges" json:"edges"`
	Contradiction []hypothesis.ContradictionRow `yaml:"contradictions,omitempty" json:"contradictions,omitempty"`
	PriorArt      []hypothesis.PriorArt         `yaml:"prior_art,omitempty" json:"prior_art,omitempty"`
}

// Structure returns the graph part of the template
func (t *Template) Structure() causal.Structure {
	return causal.Structure{Nodes: t.Nodes, Edges: t.Edges}
}

// Load reads a template file
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a template. The payload is untrusted but treated
// forgivingly: edges missing an endpoint are dropped, non-finite strengths
// are cleared and unrecognized signs become unknown.
func Parse(data []byte) (*Template, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, core.ErrEmptyPayload
	}
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, core.NewValidationError("template", err.Error())
	}
	if len(t.Nodes) == 0 && len(t.Edges) == 0 {
		return nil, core.ErrEmptyPayload
	}

	nodes := t.Nodes[:0]
	for _, n := range t.Nodes {
		if strings.TrimSpace(n.Name) == "" {
			continue
		}
		nodes = append(nodes, n)
	}
	t.Nodes = nodes

	edges := t.Edges[:0]
	for _, e := range t.Edges {
		if strings.TrimSpace(e.From) == "" || strings.TrimSpace(e.To) == "" {
			continue
		}
		if e.Strength != nil && (math.IsNaN(*e.Strength) || math.IsInf(*e.Strength, 0)) {
			e.Strength = nil
		}
		switch e.Sign {
		case causal.SignPositive, causal.SignNegative, causal.SignUnknown:
		default:
			e.Sign = causal.SignUnknown
		}
		edges = append(edges, e)
	}
	t.Edges = edges
	return &t, nil
}
