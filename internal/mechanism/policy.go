package mechanism

import (
	"fmt"
	"sort"
	"strings"

	"causalgate/domain/core"
	"causalgate/domain/verdict"
)

// AxiomPolicy decides how violations of one axiom count toward the gate.
//
//	PolicyFatal   keep detected severities
//	PolicyWarning downgrade every violation of the axiom to warning
//	PolicySkip    drop the axiom's violations entirely
type AxiomPolicy string

const (
	PolicyFatal   AxiomPolicy = "fatal"
	PolicyWarning AxiomPolicy = "warning"
	PolicySkip    AxiomPolicy = "skip"
)

// DefaultMaxWarnings is the warning ceiling above which the gate blocks
const DefaultMaxWarnings = 3

// Policy is the per-axiom policy table plus the warning ceiling
type Policy struct {
	Axioms      map[string]AxiomPolicy
	MaxWarnings int
}

// DefaultPolicy enforces every axiom at its detected severity
func DefaultPolicy() Policy {
	return Policy{Axioms: map[string]AxiomPolicy{}, MaxWarnings: DefaultMaxWarnings}
}

// PolicyKey converts an axiom name to its policy key: NoSycophancy → no_sycophancy
func PolicyKey(axiom string) string {
	var b strings.Builder
	for i, r := range axiom {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParsePolicy builds a Policy from config-style string maps
func ParsePolicy(axioms map[string]string, maxWarnings int) (Policy, error) {
	p := DefaultPolicy()
	if maxWarnings > 0 {
		p.MaxWarnings = maxWarnings
	}
	for key, value := range axioms {
		ap := AxiomPolicy(strings.ToLower(strings.TrimSpace(value)))
		switch ap {
		case PolicyFatal, PolicyWarning, PolicySkip:
		default:
			return Policy{}, fmt.Errorf("%w: %q for %q", core.ErrUnknownPolicy, value, key)
		}
		p.Axioms[strings.ToLower(strings.TrimSpace(key))] = ap
	}
	return p, nil
}

func (p Policy) forAxiom(axiom string) AxiomPolicy {
	if ap, ok := p.Axioms[PolicyKey(axiom)]; ok {
		return ap
	}
	return PolicyFatal
}

// Apply reclassifies raw violations according to the policy, preserving order
func (p Policy) Apply(raw []verdict.Violation) []verdict.Violation {
	effective := make([]verdict.Violation, 0, len(raw))
	for _, v := range raw {
		switch p.forAxiom(v.Axiom) {
		case PolicySkip:
			continue
		case PolicyWarning:
			v.Severity = verdict.SeverityWarning
		}
		effective = append(effective, v)
	}
	return effective
}

// Fingerprint identifies the policy for cache keys and ledger records
func (p Policy) Fingerprint() core.Hash {
	keys := make([]string, 0, len(p.Axioms))
	for k := range p.Axioms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := []string{fmt.Sprintf("max_warnings=%d", p.MaxWarnings)}
	for _, k := range keys {
		parts = append(parts, k+"="+string(p.Axioms[k]))
	}
	return core.Fingerprint(parts...)
}
