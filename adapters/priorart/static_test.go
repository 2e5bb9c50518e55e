package priorart

import (
	"context"
	"testing"

	"causalgate/domain/hypothesis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []hypothesis.PriorArt{
	{ID: "p1", Title: "Irrigation trials", Text: "Supplemental irrigation increases cereal yield."},
	{ID: "p2", Title: "Pest resistance", Text: "Rotating pesticide classes slows resistance."},
}

func TestStaticLookupReturnsWholeCorpus(t *testing.T) {
	out, err := NewStaticLookup(corpus, 0).Lookup(context.Background(), hypothesis.Hypothesis{Thesis: "anything"})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestStaticLookupFiltersBySharedTerms(t *testing.T) {
	h := hypothesis.Hypothesis{Thesis: "Irrigation timing changes cereal yield."}
	out, err := NewStaticLookup(corpus, 2).Lookup(context.Background(), h)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "p1", out[0].ID)
}

func TestStaticLookupHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStaticLookup(corpus, 0).Lookup(ctx, hypothesis.Hypothesis{})
	assert.ErrorIs(t, err, context.Canceled)
}
