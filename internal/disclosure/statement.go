package disclosure

import (
	"fmt"
	"strings"

	"causalgate/domain/verdict"
)

// Statement renders a one-paragraph claim about treatment and outcome that
// stays within the decision's output class
func Statement(req Request, d Decision) string {
	adjusted := "nothing"
	if len(req.AdjustmentSet) > 0 {
		adjusted = strings.Join(req.AdjustmentSet, ", ")
	}

	switch d.Class {
	case verdict.ClassInterventionSupported:
		source := ""
		if req.Validation != nil && req.Validation.Source != "" {
			source = fmt.Sprintf(" (%s)", req.Validation.Source)
		}
		return fmt.Sprintf("Status: Identified. Adjusting for %s, the effect of %s on %s is identified and empirically supported%s.",
			adjusted, req.Treatment, req.Outcome, source)
	case verdict.ClassInterventionInferred:
		s := fmt.Sprintf("Adjusting for %s, changing %s may shift %s. %s", adjusted, req.Treatment, req.Outcome, DisclosurePartial)
		if missing := d.Identifiability.Missing; len(missing) > 0 {
			s += fmt.Sprintf(" Uncontrolled: %s.", strings.Join(missing, ", "))
		}
		return s
	default:
		return fmt.Sprintf("%s is associated with %s in observed data. %s", req.Treatment, req.Outcome, DisclosureAssociationOnly)
	}
}
