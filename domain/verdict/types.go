package verdict

// Severity of a single violation
type Severity string

const (
	SeverityFatal   Severity = "fatal"
	SeverityWarning Severity = "warning"
)

// Violation is one detector hit against generated text
type Violation struct {
	Axiom        string   `json:"axiom"`
	Category     string   `json:"category,omitempty"`
	Severity     Severity `json:"severity"`
	EvidenceSpan string   `json:"evidence_span"`
	Reason       string   `json:"reason"`
}

// GateStatus is the outcome of a text gate
type GateStatus string

const (
	StatusPass    GateStatus = "pass"
	StatusWarning GateStatus = "warning"
	StatusBlocked GateStatus = "blocked"
)

// Checkpoint names a point in the generation pipeline where the mechanism gate runs
type Checkpoint string

const (
	CheckpointPreSynthesis  Checkpoint = "pre_synthesis"
	CheckpointPostSynthesis Checkpoint = "post_synthesis"
	CheckpointPreRelease    Checkpoint = "pre_release"
)

// Checkpoints lists every valid checkpoint in pipeline order
var Checkpoints = []Checkpoint{CheckpointPreSynthesis, CheckpointPostSynthesis, CheckpointPreRelease}

// ParseCheckpoint validates a checkpoint name
func ParseCheckpoint(s string) (Checkpoint, bool) {
	for _, c := range Checkpoints {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// OutputClass is the intervention-disclosure class a claim is allowed to use
type OutputClass string

const (
	ClassAssociationOnly       OutputClass = "association_only"
	ClassInterventionInferred  OutputClass = "intervention_inferred"
	ClassInterventionSupported OutputClass = "intervention_supported"
)

// CountBySeverity tallies fatal and warning violations
func CountBySeverity(violations []Violation) (fatal, warning int) {
	for _, v := range violations {
		switch v.Severity {
		case SeverityFatal:
			fatal++
		case SeverityWarning:
			warning++
		}
	}
	return fatal, warning
}

// Decision is an auditable record of one gate outcome, written to the verdict ledger
type Decision struct {
	Gate        string   `json:"gate" db:"gate"`
	Subject     string   `json:"subject" db:"subject"`
	Status      string   `json:"status" db:"status"`
	Reasons     []string `json:"reasons" db:"-"`
	Fingerprint string   `json:"fingerprint" db:"fingerprint"`
}
