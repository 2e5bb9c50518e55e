package mechanism

import (
	"fmt"
	"strings"

	"causalgate/domain/verdict"
)

// CorrectionHeader opens every correction prompt
const CorrectionHeader = "## MECHANISM CONSTRAINT VIOLATIONS"

// ResponseTemplate is the fixed five-part structure a retry must follow
var ResponseTemplate = []string{
	"Observation: state what was actually observed, with its source.",
	"Hypothesis: state one causal mechanism consistent with physical law.",
	"Prediction: state a measurable consequence of the hypothesis.",
	"Falsification: state the observation that would prove the hypothesis wrong.",
	"Test: describe the study or intervention that would produce that observation.",
}

// BuildCorrectionPrompt renders violations as "axiom - reason - evidence"
// lines followed by the response template, for re-injection into generation.
func BuildCorrectionPrompt(violations []verdict.Violation) string {
	var b strings.Builder
	b.WriteString(CorrectionHeader)
	b.WriteString("\n")
	for _, v := range violations {
		fmt.Fprintf(&b, "- [%s] %s - %s - \"%s\"\n", v.Severity, v.Axiom, v.Reason, v.EvidenceSpan)
	}
	b.WriteString("\nRewrite the response using exactly this structure:\n")
	for i, line := range ResponseTemplate {
		fmt.Fprintf(&b, "%d. %s\n", i+1, line)
	}
	return b.String()
}
