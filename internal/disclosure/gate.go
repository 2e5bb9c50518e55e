// Package disclosure maps an identifiability result to the intervention
// output class generated text is allowed to use, and checks text for
// certainty language its class does not permit.
package disclosure

import (
	"causalgate/domain/causal"
	"causalgate/domain/verdict"
	"causalgate/internal"
)

// EmpiricalValidation is externally supplied evidence that an intervention
// effect was observed. Graph structure alone never supplies it.
type EmpiricalValidation struct {
	Source string   `json:"source"`
	PValue *float64 `json:"p_value,omitempty"`
}

// Request is one disclosure decision
type Request struct {
	Treatment        string               `json:"treatment"`
	Outcome          string               `json:"outcome"`
	AdjustmentSet    []string             `json:"adjustment_set"`
	KnownConfounders []string             `json:"known_confounders"`
	Validation       *EmpiricalValidation `json:"validation,omitempty"`
}

// Decision is the gated output class plus the identifiability evidence behind it
type Decision struct {
	Class              verdict.OutputClass          `json:"class"`
	Allowed            bool                         `json:"allowed"`
	Identifiability    causal.IdentifiabilityResult `json:"identifiability"`
	RequiredDisclosure string                       `json:"required_disclosure,omitempty"`
	Rationale          string                       `json:"rationale"`
}

// Identifier is the graph capability the gate needs
type Identifier interface {
	CheckIdentifiability(treatment, outcome string, adjustmentSet, knownConfounders []string) causal.IdentifiabilityResult
}

// Disclosure texts attached to each non-supported class
const (
	DisclosureAssociationOnly = "Only an association was estimated; no claim about the effect of intervening may be made."
	DisclosurePartial         = "The intervention effect is inferred under partial confounder control and is uncertain; state the uncontrolled confounders as a limitation."
)

// Gate decides output classes against one graph
type Gate struct {
	graph  Identifier
	logger *internal.Logger
}

// NewGate creates a disclosure gate over graph
func NewGate(graph Identifier, logger *internal.Logger) *Gate {
	return &Gate{graph: graph, logger: logger.With("disclosure")}
}

// Decide runs the identifiability check and classifies the claim:
//
//	association_only        no adjustment attempted
//	intervention_inferred   adjustment attempted but confounders missing, or
//	                        fully adjusted without empirical validation
//	intervention_supported  fully adjusted and empirically validated
func (g *Gate) Decide(req Request) Decision {
	ident := g.graph.CheckIdentifiability(req.Treatment, req.Outcome, req.AdjustmentSet, req.KnownConfounders)

	var d Decision
	switch {
	case len(req.AdjustmentSet) == 0:
		d = Decision{
			Class:              verdict.ClassAssociationOnly,
			RequiredDisclosure: DisclosureAssociationOnly,
			Rationale:          "no adjustment set was supplied",
		}
	case !ident.Identifiable:
		d = Decision{
			Class:              verdict.ClassInterventionInferred,
			RequiredDisclosure: DisclosurePartial,
			Rationale:          "adjustment set leaves required confounders uncontrolled",
		}
	case req.Validation == nil:
		d = Decision{
			Class:              verdict.ClassInterventionInferred,
			RequiredDisclosure: DisclosurePartial,
			Rationale:          "identified from graph structure only; no empirical validation supplied",
		}
	default:
		d = Decision{
			Class:     verdict.ClassInterventionSupported,
			Rationale: "adjustment set closes every required confounder and empirical validation is present",
		}
	}

	d.Identifiability = ident
	d.Allowed = d.Class == verdict.ClassInterventionSupported
	g.logger.Debug("%s -> %s: class=%s missing=%v", req.Treatment, req.Outcome, d.Class, ident.Missing)
	return d
}
