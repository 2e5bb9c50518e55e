package ports

import (
	"context"

	"causalgate/domain/hypothesis"
)

// PriorArtLookup is the novelty scorer's only I/O boundary. Implementations
// may hit search services; errors are isolated per hypothesis by the caller.
type PriorArtLookup interface {
	Lookup(ctx context.Context, h hypothesis.Hypothesis) ([]hypothesis.PriorArt, error)
}

// PriorArtLookupFunc adapts a plain function to PriorArtLookup
type PriorArtLookupFunc func(ctx context.Context, h hypothesis.Hypothesis) ([]hypothesis.PriorArt, error)

// Lookup calls f(ctx, h)
func (f PriorArtLookupFunc) Lookup(ctx context.Context, h hypothesis.Hypothesis) ([]hypothesis.PriorArt, error) {
	return f(ctx, h)
}
