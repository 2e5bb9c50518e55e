package mechanism

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"causalgate/domain/core"
	"causalgate/domain/verdict"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
	sets int
}

func newCountingCache() *countingCache {
	return &countingCache{data: map[string][]byte{}}
}

func (c *countingCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if ok {
		c.hits++
	}
	return v, ok
}

func (c *countingCache) Set(_ context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = value
}

func (c *countingCache) Evict(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

func evaluate(t *testing.T, g *Gate, text string) Result {
	t.Helper()
	r, err := g.Evaluate(context.Background(), Request{Text: text, Checkpoint: verdict.CheckpointPreRelease})
	require.NoError(t, err)
	return r
}

func axioms(vs []verdict.Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Axiom
	}
	return out
}

func TestEffectPrecedesCauseIsBlocked(t *testing.T) {
	r := evaluate(t, NewGate(DefaultPolicy()), "In this system the effect precedes cause by several seconds.")

	require.NotEmpty(t, r.Violations)
	assert.Equal(t, AxiomReversibility, r.Violations[0].Axiom)
	assert.Equal(t, verdict.SeverityFatal, r.Violations[0].Severity)
	assert.Equal(t, "effect precedes cause", r.Violations[0].EvidenceSpan)
	assert.Equal(t, verdict.StatusBlocked, r.Status)
	assert.True(t, r.Blocked())
}

func TestDetectorFamilies(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		axiom    string
		category string
		severity verdict.Severity
	}{
		{"retrocausal", "A retrocausal signal explains the result.", AxiomReversibility, "retrocausality", verdict.SeverityFatal},
		{"backward in time", "The information travels backward in time.", AxiomReversibility, "backward_time", verdict.SeverityFatal},
		{"future causes past", "The future causes the past here.", AxiomReversibility, "future_causes_past", verdict.SeverityFatal},
		{"perpetual motion", "This is a perpetual motion machine.", AxiomConservation, "perpetual_motion", verdict.SeverityFatal},
		{"energy from nothing", "The cell draws energy from nothing.", AxiomConservation, "energy_from_nothing", verdict.SeverityFatal},
		{"perfect efficiency", "The turbine is 100% efficient.", AxiomEntropy, "perfect_efficiency", verdict.SeverityFatal},
		{"spontaneous ordering", "Molecules spontaneously organize into crystals at constant temperature with no input.", AxiomEntropy, "spontaneous_ordering", verdict.SeverityFatal},
		{"maxwell demon", "A Maxwell demon sorts molecules without energy cost.", AxiomEntropy, "free_maxwell_demon", verdict.SeverityFatal},
		{"unknowable", "The mechanism is unknowable.", AxiomFalsifiability, "unfalsifiable", verdict.SeverityFatal},
		{"impossible to verify", "It is impossible to verify this.", AxiomFalsifiability, "unfalsifiable", verdict.SeverityFatal},
		{"cannot be questioned", "This result cannot be questioned.", AxiomFalsifiability, "unfalsifiable", verdict.SeverityFatal},
		{"hedge", "Sleep might matter.", AxiomFalsifiability, "hedge", verdict.SeverityWarning},
		{"agreement", "You're absolutely right about that.", AxiomNoSycophancy, CategoryAgreementWithoutEvidence, verdict.SeverityFatal},
		{"performative", "What a great question about soil.", AxiomNoSycophancy, CategoryPerformativeValidation, verdict.SeverityWarning},
		{"accommodation", "As you suggested, the drug works.", AxiomNoSycophancy, CategoryAccommodationOverTruth, verdict.SeverityWarning},
		{"both sides", "It could be argued either way.", AxiomNoSycophancy, CategoryHedgingWithoutFalsification, verdict.SeverityWarning},
		{"surrender", "Honestly, who's to say what drives it.", AxiomNoSycophancy, CategoryEpistemicSurrender, verdict.SeverityFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := false
			for _, v := range Detect(tt.text, DomainNone) {
				if v.Axiom == tt.axiom && v.Category == tt.category {
					found = true
					assert.Equal(t, tt.severity, v.Severity)
					assert.NotEmpty(t, v.EvidenceSpan)
					assert.NotEmpty(t, v.Reason)
				}
			}
			assert.True(t, found, "expected %s/%s violation for %q", tt.axiom, tt.category, tt.text)
		})
	}
}

func TestCleanTextPasses(t *testing.T) {
	r := evaluate(t, NewGate(DefaultPolicy()), "Observation: nitrogen runoff rose 12% after fertilizer subsidies began.")
	assert.Equal(t, verdict.StatusPass, r.Status)
	assert.Empty(t, r.Violations)
	assert.Empty(t, r.CorrectionPrompt)
}

func TestHypothesisWithoutCriteriaWarns(t *testing.T) {
	gate := NewGate(DefaultPolicy())

	r := evaluate(t, gate, "Our hypothesis is that shade lowers soil temperature.")
	require.Len(t, r.Violations, 1)
	assert.Equal(t, "missing_criteria", r.Violations[0].Category)
	assert.Equal(t, verdict.StatusWarning, r.Status)

	withCriteria := evaluate(t, gate, "Our hypothesis is that shade lowers soil temperature; reject it if shaded plots are not cooler.")
	assert.Equal(t, verdict.StatusPass, withCriteria.Status)

	falsifiable := evaluate(t, gate, "Fertilizer causes algal blooms, falsified by blooms in unfertilized lakes.")
	assert.Equal(t, verdict.StatusPass, falsifiable.Status)
}

func TestWarningCeilingBlocks(t *testing.T) {
	text := "Perhaps it might work. It could possibly help. What a great question. It could be argued."
	r := evaluate(t, NewGate(DefaultPolicy()), text)
	assert.Equal(t, 0, r.FatalCount)
	assert.Greater(t, r.WarningCount, DefaultMaxWarnings)
	assert.Equal(t, verdict.StatusBlocked, r.Status)

	lenient, err := ParsePolicy(nil, 10)
	require.NoError(t, err)
	assert.Equal(t, verdict.StatusWarning, evaluate(t, NewGate(lenient), text).Status)
}

func TestPolicyReclassifiesSeverity(t *testing.T) {
	text := "The mechanism is unknowable."

	downgraded, err := ParsePolicy(map[string]string{"falsifiability": "warning"}, 0)
	require.NoError(t, err)
	r := evaluate(t, NewGate(downgraded), text)
	assert.Equal(t, verdict.StatusWarning, r.Status)
	assert.Equal(t, 0, r.FatalCount)

	skipped, err := ParsePolicy(map[string]string{"Falsifiability": "skip"}, 0)
	require.NoError(t, err)
	r = evaluate(t, NewGate(skipped), text)
	assert.Equal(t, verdict.StatusPass, r.Status)
	assert.Empty(t, r.Violations)
}

func TestSycophancyPolicyKey(t *testing.T) {
	p, err := ParsePolicy(map[string]string{"no_sycophancy": "warning"}, 0)
	require.NoError(t, err)
	r := evaluate(t, NewGate(p), "I completely agree with you.")
	require.NotEmpty(t, r.Violations)
	assert.Equal(t, verdict.SeverityWarning, r.Violations[0].Severity)
	assert.Equal(t, verdict.StatusWarning, r.Status)
}

func TestParsePolicyRejectsUnknown(t *testing.T) {
	_, err := ParsePolicy(map[string]string{"entropy": "lenient"}, 0)
	assert.True(t, errors.Is(err, core.ErrUnknownPolicy))
}

func TestPolicyKey(t *testing.T) {
	assert.Equal(t, "no_sycophancy", PolicyKey(AxiomNoSycophancy))
	assert.Equal(t, "reversibility", PolicyKey(AxiomReversibility))
	assert.Equal(t, "cognitive_psychology", PolicyKey(AxiomCognition))
}

func TestUnknownCheckpointRejected(t *testing.T) {
	_, err := NewGate(DefaultPolicy()).Evaluate(context.Background(), Request{Text: "x", Checkpoint: "mid_synthesis"})
	assert.True(t, errors.Is(err, core.ErrUnknownCheckpoint))
}

func TestEvaluateAllTagsEveryCheckpoint(t *testing.T) {
	results, err := NewGate(DefaultPolicy()).EvaluateAll(context.Background(), "Energy from nothing powers it.", DomainNone)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, cp := range verdict.Checkpoints {
		assert.Equal(t, cp, results[i].Checkpoint)
		assert.Equal(t, results[0].Violations, results[i].Violations, "detection is checkpoint independent")
	}
}

func TestDeterministicViolationOrder(t *testing.T) {
	text := "You're absolutely right: a perpetual motion engine where the effect precedes the cause might be unknowable."
	first := Detect(text, DomainSelfishGene)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Detect(text, DomainSelfishGene))
	}
	assert.Equal(t, []string{
		AxiomReversibility,
		AxiomConservation,
		AxiomFalsifiability,
		AxiomFalsifiability,
		AxiomNoSycophancy,
	}, axioms(first))
}

func TestTier2RunsAfterTier1(t *testing.T) {
	text := "The trait spread for the good of the species, and it is perpetual motion."

	tier1Only := Detect(text, DomainNone)
	withDomain := Detect(text, DomainSelfishGene)

	require.Len(t, withDomain, len(tier1Only)+1)
	assert.Equal(t, tier1Only, withDomain[:len(tier1Only)])
	assert.Equal(t, AxiomSelfishGene, withDomain[len(withDomain)-1].Axiom)
}

func TestTier2Domains(t *testing.T) {
	tests := []struct {
		domain Domain
		text   string
		axiom  string
	}{
		{DomainEcology, "The deer population grows without limit once wolves leave.", AxiomEcology},
		{DomainCognitivePsychology, "Most people only use 10% of their brain.", AxiomCognition},
		{DomainSelfishGene, "Genes want to survive.", AxiomSelfishGene},
	}
	for _, tt := range tests {
		t.Run(string(tt.domain), func(t *testing.T) {
			assert.Contains(t, axioms(Detect(tt.text, tt.domain)), tt.axiom)
			assert.NotContains(t, axioms(Detect(tt.text, DomainNone)), tt.axiom)
		})
	}
}

func TestUnknownDomainRunsTier1Only(t *testing.T) {
	text := "Perpetual motion for the good of the species."
	assert.Equal(t, Detect(text, DomainNone), Detect(text, Domain("astrology")))
	assert.False(t, KnownDomain("astrology"))
	assert.Len(t, Domains(), 3)
}

func TestCorrectionPrompt(t *testing.T) {
	r := evaluate(t, NewGate(DefaultPolicy()), "The effect precedes the cause.")
	prompt := r.CorrectionPrompt

	assert.True(t, strings.HasPrefix(prompt, CorrectionHeader))
	assert.Contains(t, prompt, "Reversibility - an effect cannot precede its cause - \"effect precedes the cause\"")
	for i, part := range []string{"Observation:", "Hypothesis:", "Prediction:", "Falsification:", "Test:"} {
		assert.Contains(t, prompt, string(rune('1'+i))+". "+part)
	}
}

func TestCacheMemoizesDetections(t *testing.T) {
	cache := newCountingCache()
	gate := NewGate(DefaultPolicy(), WithCache(cache))
	text := "Perpetual motion is possible."

	first := evaluate(t, gate, text)
	second := evaluate(t, gate, text)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, cache.hits)
}

func TestCacheIsPolicyIndependent(t *testing.T) {
	cache := newCountingCache()
	text := "The mechanism is unknowable."

	strict := evaluate(t, NewGate(DefaultPolicy(), WithCache(cache)), text)
	skip, _ := ParsePolicy(map[string]string{"falsifiability": "skip"}, 0)
	lenient := evaluate(t, NewGate(skip, WithCache(cache)), text)

	assert.Equal(t, verdict.StatusBlocked, strict.Status)
	assert.Equal(t, verdict.StatusPass, lenient.Status)
	assert.Equal(t, 1, cache.hits)
}

func TestCorruptCacheEntryIsEvicted(t *testing.T) {
	cache := newCountingCache()
	gate := NewGate(DefaultPolicy(), WithCache(cache))
	text := "Perpetual motion again."
	key := "mechanism:" + core.Fingerprint(text, "").String()
	cache.data[key] = []byte("{not json")

	r := evaluate(t, gate, text)
	assert.Equal(t, verdict.StatusBlocked, r.Status)
	assert.NotEqual(t, "{not json", string(cache.data[key]))
}
