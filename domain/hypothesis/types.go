package hypothesis

import "strings"

// LifecycleState is derived from a hypothesis' falsifier and validation
// result. It is recomputed on every read and never stored as truth.
type LifecycleState string

const (
	StateProposed  LifecycleState = "proposed"
	StateTested    LifecycleState = "tested"
	StateFalsified LifecycleState = "falsified"
	StateRetracted LifecycleState = "retracted"
)

// MinFalsifierLength is the trimmed length a falsifier needs to count as a real one
const MinFalsifierLength = 20

// ValidationMetrics carries optional statistical backing for a validation run
type ValidationMetrics struct {
	PValue          *float64 `json:"p_value,omitempty"`
	ConclusionValid *bool    `json:"conclusion_valid,omitempty"`
}

// ValidationResult is supplied by an external validation run
type ValidationResult struct {
	Success bool               `json:"success"`
	Metrics *ValidationMetrics `json:"metrics,omitempty"`
}

// Hypothesis is a generated idea as handed to the governance core
type Hypothesis struct {
	ID                     string            `json:"id"`
	Thesis                 string            `json:"thesis"`
	Mechanism              string            `json:"mechanism"`
	Prediction             string            `json:"prediction"`
	Falsifier              string            `json:"falsifier"`
	ConfounderSet          []string          `json:"confounder_set,omitempty"`
	NoveltyScore           *float64          `json:"novelty_score,omitempty"`
	InterventionValueScore *float64          `json:"intervention_value_score,omitempty"`
	IdentifiabilityScore   *float64          `json:"identifiability_score,omitempty"`
	ValidationResult       *ValidationResult `json:"validation_result,omitempty"`
	LifecycleState         LifecycleState    `json:"lifecycle_state,omitempty"`
}

// HasFalsifier reports whether the trimmed falsifier meets the minimum length
func (h Hypothesis) HasFalsifier() bool {
	return len(strings.TrimSpace(h.Falsifier)) >= MinFalsifierLength
}

// Text is the claim body used by lexical scorers
func (h Hypothesis) Text() string {
	return strings.TrimSpace(h.Thesis + " " + h.Mechanism)
}

// PriorArt is one entry returned by a prior-art lookup. Similarity, when
// present, is authoritative; otherwise the scorer computes one from Text.
type PriorArt struct {
	ID         string   `json:"id"`
	Title      string   `json:"title,omitempty"`
	Text       string   `json:"text"`
	Similarity *float64 `json:"similarity,omitempty"`
}

// ContradictionRow is one known tension in the literature a hypothesis may
// touch. A row matches when any keyword appears in the hypothesis.
type ContradictionRow struct {
	ID       string   `json:"id"`
	Tension  string   `json:"tension"`
	Keywords []string `json:"keywords"`
}

// ProofStatus is the per-idea novelty verdict
type ProofStatus string

const (
	ProofPass    ProofStatus = "pass"
	ProofBlocked ProofStatus = "blocked"
)

// Blocked reason vocabulary, in canonical order
const (
	ReasonPriorArtOverlap         = "prior_art_overlap_above_threshold"
	ReasonFalsifiabilityWeak      = "falsifiability_signal_insufficient"
	ReasonContradictionUnresolved = "contradiction_resolution_insufficient"
	ReasonNoContradictionRows     = "no_contradiction_rows_matched"
	ReasonInterventionValueLow    = "intervention_value_below_floor"
	ReasonPriorArtLookupFailed    = "prior_art_lookup_failed"
)

// ReasonOrder fixes the ordering of blocked reasons in every output
var ReasonOrder = []string{
	ReasonPriorArtOverlap,
	ReasonFalsifiabilityWeak,
	ReasonContradictionUnresolved,
	ReasonNoContradictionRows,
	ReasonInterventionValueLow,
	ReasonPriorArtLookupFailed,
}

// NoveltyProof is the scored record for one hypothesis
type NoveltyProof struct {
	HypothesisID                  string      `json:"hypothesis_id"`
	PriorArtDistance              float64     `json:"prior_art_distance"`
	ContradictionResolvedScore    float64     `json:"contradiction_resolved_score"`
	MechanismDifferentiationScore float64     `json:"mechanism_differentiation_score"`
	InterventionValueScore        float64     `json:"intervention_value_score"`
	FalsifiabilityScore           float64     `json:"falsifiability_score"`
	ContradictionRowsMatched      int         `json:"contradiction_rows_matched"`
	ProofStatus                   ProofStatus `json:"proof_status"`
	BlockedReasons                []string    `json:"blocked_reasons"`
}

// GateDecision is the batch-level novelty verdict
type GateDecision string

const (
	GatePass    GateDecision = "pass"
	GateRecover GateDecision = "recover"
)
