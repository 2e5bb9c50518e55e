package causalgraph

import (
	"math"
	"sort"

	"causalgate/domain/core"
)

// checkFinite rejects NaN/±Inf before any traversal
func checkFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return core.NewNonFiniteError(field, v)
	}
	return nil
}

// checkFiniteMap validates every value of an observed/baseline map in sorted
// key order so the reported field is deterministic.
func checkFiniteMap(field string, values map[string]float64) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := checkFinite(field+"["+k+"]", values[k]); err != nil {
			return err
		}
	}
	return nil
}

// normalizedValues re-keys a value map by normalized name. When two spellings
// collide the lexically first original key wins.
func normalizedValues(values map[string]float64) map[string]float64 {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]float64, len(values))
	for _, k := range keys {
		nk := Normalize(k)
		if _, ok := out[nk]; !ok {
			out[nk] = values[k]
		}
	}
	return out
}
