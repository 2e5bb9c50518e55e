// Package mechanism implements the mechanism constraint gate: a deterministic
// lexical classifier for physical-axiom and epistemic-discipline violations
// in generated text, applied at fixed checkpoints of a generation pipeline.
package mechanism

import (
	"context"
	"encoding/json"
	"fmt"

	"causalgate/domain/core"
	"causalgate/domain/verdict"
	"causalgate/internal"
	"causalgate/ports"
)

// Request is one gate evaluation
type Request struct {
	Text       string             `json:"text"`
	Checkpoint verdict.Checkpoint `json:"checkpoint"`
	Domain     Domain             `json:"domain,omitempty"`
}

// Result is the checkpoint-tagged gate outcome
type Result struct {
	Checkpoint       verdict.Checkpoint  `json:"checkpoint"`
	Domain           Domain              `json:"domain,omitempty"`
	Status           verdict.GateStatus  `json:"status"`
	Violations       []verdict.Violation `json:"violations"`
	FatalCount       int                 `json:"fatal_count"`
	WarningCount     int                 `json:"warning_count"`
	CorrectionPrompt string              `json:"correction_prompt,omitempty"`
	Fingerprint      string              `json:"fingerprint"`
}

// Blocked reports whether the result must not be released
func (r Result) Blocked() bool {
	return r.Status == verdict.StatusBlocked
}

// Gate evaluates text against Tier 1 axioms and an optional Tier 2 domain.
// A Gate holds no mutable state of its own and is safe for concurrent use
// when its cache is.
type Gate struct {
	policy Policy
	cache  ports.AnalysisCache
	logger *internal.Logger
}

// Option configures a Gate
type Option func(*Gate)

// WithCache memoizes raw detections in the given cache
func WithCache(cache ports.AnalysisCache) Option {
	return func(g *Gate) { g.cache = cache }
}

// WithLogger sets the gate logger
func WithLogger(logger *internal.Logger) Option {
	return func(g *Gate) { g.logger = logger.With("mechanism") }
}

// NewGate creates a gate with the given policy
func NewGate(policy Policy, opts ...Option) *Gate {
	if policy.Axioms == nil {
		policy.Axioms = map[string]AxiomPolicy{}
	}
	g := &Gate{policy: policy}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Policy returns the gate's policy
func (g *Gate) Policy() Policy {
	return g.policy
}

// Evaluate runs Tier 1 detectors, then the domain's Tier 2 checker if one
// exists, applies the policy and decides pass/warning/blocked.
func (g *Gate) Evaluate(ctx context.Context, req Request) (Result, error) {
	if _, ok := verdict.ParseCheckpoint(string(req.Checkpoint)); !ok {
		return Result{}, fmt.Errorf("%w: %q", core.ErrUnknownCheckpoint, req.Checkpoint)
	}

	fingerprint := core.Fingerprint(req.Text, string(req.Domain))
	raw := g.detect(ctx, req.Text, req.Domain, fingerprint)
	effective := g.policy.Apply(raw)
	fatalCount, warningCount := verdict.CountBySeverity(effective)

	status := verdict.StatusPass
	switch {
	case fatalCount > 0 || warningCount > g.policy.MaxWarnings:
		status = verdict.StatusBlocked
	case warningCount > 0:
		status = verdict.StatusWarning
	}

	result := Result{
		Checkpoint:   req.Checkpoint,
		Domain:       req.Domain,
		Status:       status,
		Violations:   effective,
		FatalCount:   fatalCount,
		WarningCount: warningCount,
		Fingerprint:  fingerprint.String(),
	}
	if len(effective) > 0 {
		result.CorrectionPrompt = BuildCorrectionPrompt(effective)
	}

	g.logger.Debug("checkpoint=%s text=%s status=%s fatal=%d warning=%d",
		req.Checkpoint, fingerprint.Short(), status, fatalCount, warningCount)
	return result, nil
}

// EvaluateAll runs the same text through every checkpoint in pipeline order
func (g *Gate) EvaluateAll(ctx context.Context, text string, domain Domain) ([]Result, error) {
	results := make([]Result, 0, len(verdict.Checkpoints))
	for _, cp := range verdict.Checkpoints {
		r, err := g.Evaluate(ctx, Request{Text: text, Checkpoint: cp, Domain: domain})
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// Detect returns the raw, pre-policy violations for text
func Detect(text string, domain Domain) []verdict.Violation {
	violations := detectTier1(text)
	if check, ok := domainCheckers[domain]; ok {
		violations = append(violations, check(text)...)
	}
	if violations == nil {
		violations = []verdict.Violation{}
	}
	return violations
}

func (g *Gate) detect(ctx context.Context, text string, domain Domain, fingerprint core.Hash) []verdict.Violation {
	if domain != DomainNone && !KnownDomain(domain) {
		g.logger.Debug("no tier 2 checker for domain %q, running tier 1 only", domain)
	}
	if g.cache == nil {
		return Detect(text, domain)
	}

	key := "mechanism:" + fingerprint.String()
	if data, ok := g.cache.Get(ctx, key); ok {
		var cached []verdict.Violation
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached
		}
		g.cache.Evict(ctx, key)
	}

	violations := Detect(text, domain)
	if data, err := json.Marshal(violations); err == nil {
		g.cache.Set(ctx, key, data)
	}
	return violations
}
