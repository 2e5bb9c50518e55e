package container

import (
	"context"
	"testing"

	"causalgate/domain/hypothesis"
	"causalgate/internal/config"
	"causalgate/internal/mechanism"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const agronomyTemplate = "../../adapters/template/testdata/agronomy.yaml"

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestInitWithTemplate(t *testing.T) {
	c, err := New(config.Default())
	require.NoError(t, err)
	require.NoError(t, c.Init(context.Background(), agronomyTemplate))
	defer c.Shutdown(context.Background())

	assert.NotNil(t, c.Cache)
	assert.Nil(t, c.Ledger)
	assert.Equal(t, mechanism.DomainEcology, c.Domain())
	assert.Len(t, c.Contradictions, 2)

	r, err := c.Graph.QueryIntervention("Pesticide", 1, "Yield", nil)
	require.NoError(t, err)
	assert.Equal(t, 0.441, r.Effect)

	proof := c.NoveltyScorer().Score(context.Background(), hypothesis.Hypothesis{
		ID:         "h",
		Thesis:     "Pesticide rotation changes yield through resistance.",
		Mechanism:  "Rotating classes slows resistance because pests cannot adapt to all modes at once.",
		Prediction: "Rotated plots lose 10% fewer plants to pests.",
		Falsifier:  "Reject if rotated plots show no difference in pest damage after two seasons.",
	})
	assert.Equal(t, 1, proof.ContradictionRowsMatched)
}

func TestInitWithoutTemplateUsesInnateTier(t *testing.T) {
	c, err := New(config.Default())
	require.NoError(t, err)
	require.NoError(t, c.Init(context.Background(), ""))

	assert.Equal(t, mechanism.DomainNone, c.Domain())
	assert.Len(t, c.Graph.FullStructure().Nodes, 5)
	assert.Nil(t, c.PriorArt)
}

func TestInitRejectsBadPolicy(t *testing.T) {
	cfg := config.Default()
	cfg.Gate.Policy["reversibility"] = "ignore"
	c, err := New(cfg)
	require.NoError(t, err)
	assert.Error(t, c.Init(context.Background(), ""))
}

func TestConfigDomainOverridesTemplate(t *testing.T) {
	cfg := config.Default()
	cfg.Gate.Domain = string(mechanism.DomainSelfishGene)
	c, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.Init(context.Background(), agronomyTemplate))
	assert.Equal(t, mechanism.DomainSelfishGene, c.Domain())
}
