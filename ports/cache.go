package ports

import "context"

// AnalysisCache memoizes deterministic analyses (detector hits, pairwise
// similarities) across calls. The caller owns the cache; gates only read and
// write through it, so a nil cache simply disables memoization.
type AnalysisCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Evict(ctx context.Context, key string)
}
