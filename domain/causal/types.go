package causal

// NodeKind classifies a variable in the causal graph
type NodeKind string

const (
	KindObservable   NodeKind = "observable"
	KindLatent       NodeKind = "latent"
	KindExogenous    NodeKind = "exogenous"
	KindIntervention NodeKind = "intervention"
)

// ConstraintKind names the physical or logical law an edge encodes
type ConstraintKind string

const (
	ConstraintCausality    ConstraintKind = "causality"
	ConstraintConservation ConstraintKind = "conservation"
	ConstraintEntropy      ConstraintKind = "entropy"
	ConstraintLocality     ConstraintKind = "locality"
)

// Sign is the direction of influence carried by an edge
type Sign string

const (
	SignPositive Sign = "+"
	SignNegative Sign = "-"
	SignUnknown  Sign = "unknown"
)

// Multiplier converts a sign into a propagation factor. Unknown and unset
// signs propagate as positive: the magnitude is kept, the direction is not asserted.
func (s Sign) Multiplier() float64 {
	if s == SignNegative {
		return -1
	}
	return 1
}

// Strength bounds
const (
	MinStrength     = 0.1
	MaxStrength     = 2.0
	DefaultStrength = 1.0
)

// Node is a variable in the graph. Name is the unique key; comparisons go
// through causalgraph.Normalize.
type Node struct {
	Name   string   `json:"name" yaml:"name"`
	Kind   NodeKind `json:"kind" yaml:"kind"`
	Domain string   `json:"domain,omitempty" yaml:"domain,omitempty"`
}

// Edge is a directed causal link. From/To need not resolve to declared nodes.
type Edge struct {
	From           string         `json:"from" yaml:"from"`
	To             string         `json:"to" yaml:"to"`
	ConstraintKind ConstraintKind `json:"constraint_kind,omitempty" yaml:"constraint_kind,omitempty"`
	Reversible     bool           `json:"reversible" yaml:"reversible"`
	Sign           Sign           `json:"sign,omitempty" yaml:"sign,omitempty"`
	Strength       *float64       `json:"strength,omitempty" yaml:"strength,omitempty"`
}

// EffectiveStrength returns the clamped strength, defaulting to 1
func (e Edge) EffectiveStrength() float64 {
	if e.Strength == nil {
		return DefaultStrength
	}
	s := *e.Strength
	if s < MinStrength {
		return MinStrength
	}
	if s > MaxStrength {
		return MaxStrength
	}
	return s
}

// Structure is a flat node/edge listing, used both for hydration payloads
// and for the full (innate + custom) view of a graph.
type Structure struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Rung is a level of Pearl's ladder of causation
type Rung string

const (
	RungAssociation    Rung = "association"
	RungIntervention   Rung = "intervention"
	RungCounterfactual Rung = "counterfactual"
)

// AssociationDisclaimer is attached to every association result
const AssociationDisclaimer = "Observational association only (Rung 1). This value is not a causal estimate and must not be reported as the effect of intervening on the cause."

// AssociationResult is the output of a Rung 1 query
type AssociationResult struct {
	Rung       Rung     `json:"rung"`
	Cause      string   `json:"cause"`
	Effect     string   `json:"effect"`
	Path       []string `json:"path"`
	PathFound  bool     `json:"path_found"`
	PathWeight float64  `json:"path_weight"`
	Value      float64  `json:"value"`
	Disclaimer string   `json:"disclaimer"`
}

// InterventionResult is the output of a do(variable=value) query
type InterventionResult struct {
	Rung              Rung               `json:"rung"`
	Variable          string             `json:"variable"`
	Value             float64            `json:"value"`
	Outcome           string             `json:"outcome"`
	BaselineOutcome   float64            `json:"baseline_outcome"`
	Effect            float64            `json:"effect"`
	IntervenedOutcome float64            `json:"intervened_outcome"`
	Deltas            map[string]float64 `json:"deltas"`
	Visited           int                `json:"visited"`
}

// CounterfactualResult is the output of a Rung 3 query
type CounterfactualResult struct {
	Rung                  Rung    `json:"rung"`
	Variable              string  `json:"variable"`
	Value                 float64 `json:"value"`
	Outcome               string  `json:"outcome"`
	FactualOutcome        float64 `json:"factual_outcome"`
	CounterfactualOutcome float64 `json:"counterfactual_outcome"`
	Difference            float64 `json:"difference"`
}

// DSeparationResult reports the enumerated paths between two nodes
type DSeparationResult struct {
	X             string     `json:"x"`
	Y             string     `json:"y"`
	ConditionedOn []string   `json:"conditioned_on"`
	Separated     bool       `json:"separated"`
	OpenPaths     [][]string `json:"open_paths"`
	BlockedPaths  [][]string `json:"blocked_paths"`
}

// IdentifiabilityResult reports whether an adjustment set closes every
// required confounder for treatment→outcome.
type IdentifiabilityResult struct {
	Treatment             string   `json:"treatment"`
	Outcome               string   `json:"outcome"`
	StructuralConfounders []string `json:"structural_confounders"`
	Required              []string `json:"required"`
	AdjustmentSet         []string `json:"adjustment_set"`
	Missing               []string `json:"missing"`
	Identifiable          bool     `json:"identifiable"`
}

// CompletenessResult reports confounder coverage of a provided set
type CompletenessResult struct {
	Coverage float64  `json:"coverage"`
	Missing  []string `json:"missing"`
	Extras   []string `json:"extras"`
}
