package mechanism

import (
	"sort"

	"causalgate/domain/verdict"
)

// Domain selects an optional Tier 2 checker
type Domain string

const (
	DomainNone                Domain = ""
	DomainEcology             Domain = "ecology"
	DomainCognitivePsychology Domain = "cognitive_psychology"
	DomainSelfishGene         Domain = "selfish_gene"
)

// checker is a Tier 2 domain extension. It only ever adds violations on top
// of Tier 1; it never removes or reclassifies them.
type checker func(text string) []verdict.Violation

// domainCheckers is the closed domain → checker table
var domainCheckers = map[Domain]checker{
	DomainEcology:             tableChecker(ecologyDetectors),
	DomainCognitivePsychology: tableChecker(cognitiveDetectors),
	DomainSelfishGene:         tableChecker(selfishGeneDetectors),
}

// Domains lists the domains with a Tier 2 checker, sorted
func Domains() []Domain {
	out := make([]Domain, 0, len(domainCheckers))
	for d := range domainCheckers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// KnownDomain reports whether d has a Tier 2 checker
func KnownDomain(d Domain) bool {
	_, ok := domainCheckers[d]
	return ok
}

func tableChecker(detectors []detector) checker {
	return func(text string) []verdict.Violation {
		var out []verdict.Violation
		for _, d := range detectors {
			if v, ok := d.match(text); ok {
				out = append(out, v)
			}
		}
		return out
	}
}

const (
	AxiomEcology     = "Ecology"
	AxiomCognition   = "CognitivePsychology"
	AxiomSelfishGene = "SelfishGene"
)

var ecologyDetectors = []detector{
	rule(AxiomEcology, "unbounded_growth", fatal, `\bpopulations?\s+(grows?|increases?|expands?)\s+(without\s+(limit|bound)|indefinitely|forever)\b`,
		"populations are bounded by carrying capacity"),
	rule(AxiomEcology, "energy_pyramid", fatal, `\b(predators?|top\s+consumers?)\s+(outnumber|outweigh)\s+(their\s+)?prey\b[^.]*\b(always|sustainably|indefinitely)\b`,
		"trophic energy transfer cannot sustain a consumer biomass exceeding its prey indefinitely"),
	rule(AxiomEcology, "balance_of_nature", warning, `\b(balance|harmony)\s+of\s+nature\b`,
		"'balance of nature' is not a mechanism; name the regulating feedback"),
}

var cognitiveDetectors = []detector{
	rule(AxiomCognition, "ten_percent_brain", fatal, `\b(only\s+)?use\s+(only\s+)?10\s*%\s+of\s+(our|their|the)\s+brains?\b`,
		"the ten-percent-of-the-brain claim is contradicted by imaging evidence"),
	rule(AxiomCognition, "hemisphere_typing", warning, `\b(left|right)[\s-]brained\b`,
		"hemispheric personality typing is not supported as a causal mechanism"),
	rule(AxiomCognition, "universal_effect", warning, `\b(100\s*%|all)\s+of\s+(people|participants|subjects)\s+(will|always)\b`,
		"behavioral effects are distributional; universal claims need a falsifiable boundary"),
}

var selfishGeneDetectors = []detector{
	rule(AxiomSelfishGene, "group_selection", fatal, `\bfor\s+the\s+good\s+of\s+the\s+(species|group|population)\b`,
		"selection acts on replicators, not for the good of the species"),
	rule(AxiomSelfishGene, "intentional_genes", warning, `\bgenes?\s+(want|wants|intend|intends|try|tries|decide|decides)\s+to\b`,
		"intentional language for genes must be cashed out as differential replication"),
	rule(AxiomSelfishGene, "unexplained_altruism", warning, `\baltruis(m|tic)\b[^.]*\bwithout\s+(any\s+)?(kin|reciproc|benefit)\w*\b`,
		"altruism must be explained by kin selection, reciprocity or another replicator-level benefit"),
}
