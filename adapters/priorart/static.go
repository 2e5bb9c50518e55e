// Package priorart provides prior-art lookup strategies
package priorart

import (
	"context"
	"strings"

	"causalgate/domain/hypothesis"
	"causalgate/ports"
)

// StaticLookup serves prior art from a fixed in-memory corpus. An entry is
// returned when it shares at least MinSharedTerms content words with the
// hypothesis; with MinSharedTerms zero the whole corpus is returned.
type StaticLookup struct {
	corpus         []hypothesis.PriorArt
	MinSharedTerms int
}

var _ ports.PriorArtLookup = (*StaticLookup)(nil)

// NewStaticLookup creates a lookup over corpus
func NewStaticLookup(corpus []hypothesis.PriorArt, minSharedTerms int) *StaticLookup {
	return &StaticLookup{corpus: append([]hypothesis.PriorArt(nil), corpus...), MinSharedTerms: minSharedTerms}
}

// Lookup returns matching entries in corpus order
func (s *StaticLookup) Lookup(ctx context.Context, h hypothesis.Hypothesis) ([]hypothesis.PriorArt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.MinSharedTerms <= 0 {
		return append([]hypothesis.PriorArt(nil), s.corpus...), nil
	}

	terms := words(h.Text())
	var out []hypothesis.PriorArt
	for _, p := range s.corpus {
		shared := 0
		for w := range words(p.Title + " " + p.Text) {
			if terms[w] {
				shared++
			}
		}
		if shared >= s.MinSharedTerms {
			out = append(out, p)
		}
	}
	return out, nil
}

func words(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if len(w) >= 4 {
			set[w] = true
		}
	}
	return set
}
