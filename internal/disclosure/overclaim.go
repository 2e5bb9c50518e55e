package disclosure

import (
	"regexp"

	"causalgate/domain/verdict"
)

// AxiomInterventionDisclosure tags every overclaim violation
const AxiomInterventionDisclosure = "InterventionDisclosure"

var (
	identifiedBanner     = regexp.MustCompile(`(?i)\bstatus\s*:\s*\**\s*identified\b|\bcausal\s+effect\s+(is\s+)?identified\b|\[\s*identified\s*\]`)
	interventionLanguage = regexp.MustCompile(`(?i)\bdo\s*\(|\bintervening\s+on\b|\bif\s+we\s+(increase|decrease|raise|lower|set|remove|add)\b|\b(increasing|decreasing|raising|lowering)\s+\w+\s+will\b|\bwill\s+(cause|reduce|increase|decrease|prevent)\b`)
	certaintyLanguage    = regexp.MustCompile(`(?i)\b(proves?|proven|definitively|conclusively|guarantee[sd]?)\b`)
	limitationLanguage   = regexp.MustCompile(`(?i)\b(uncertain(ty)?|limitations?|partial(ly)?|may|might|caveat|unmeasured|uncontrolled|confound\w*)\b`)
)

// CheckOverclaim returns the violations text commits against the output class
// it was granted. An "Identified" banner without intervention_supported is fatal.
func CheckOverclaim(text string, class verdict.OutputClass) []verdict.Violation {
	violations := []verdict.Violation{}
	if class == verdict.ClassInterventionSupported {
		return violations
	}

	if span := identifiedBanner.FindString(text); span != "" {
		violations = append(violations, verdict.Violation{
			Axiom:        AxiomInterventionDisclosure,
			Category:     "identified_banner",
			Severity:     verdict.SeverityFatal,
			EvidenceSpan: span,
			Reason:       "status banner claims identification without intervention_supported backing",
		})
	}
	if span := certaintyLanguage.FindString(text); span != "" {
		violations = append(violations, verdict.Violation{
			Axiom:        AxiomInterventionDisclosure,
			Category:     "certainty_language",
			Severity:     verdict.SeverityFatal,
			EvidenceSpan: span,
			Reason:       "certainty language requires an empirically supported intervention",
		})
	}

	switch class {
	case verdict.ClassAssociationOnly:
		if span := interventionLanguage.FindString(text); span != "" {
			violations = append(violations, verdict.Violation{
				Axiom:        AxiomInterventionDisclosure,
				Category:     "intervention_claim",
				Severity:     verdict.SeverityWarning,
				EvidenceSpan: span,
				Reason:       "association-only result described as the effect of an intervention",
			})
		}
	case verdict.ClassInterventionInferred:
		if interventionLanguage.MatchString(text) && !limitationLanguage.MatchString(text) {
			violations = append(violations, verdict.Violation{
				Axiom:        AxiomInterventionDisclosure,
				Category:     "missing_limitation",
				Severity:     verdict.SeverityWarning,
				EvidenceSpan: interventionLanguage.FindString(text),
				Reason:       "inferred intervention claim without an uncertainty or limitation disclosure",
			})
		}
	}
	return violations
}
