package novelty

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"causalgate/domain/core"
	"causalgate/domain/hypothesis"
	"causalgate/ports"

	"gonum.org/v1/gonum/floats"
)

var tokenSplit = regexp.MustCompile(`[^a-z0-9]+`)

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "that": true, "this": true, "with": true,
	"from": true, "are": true, "was": true, "were": true, "its": true, "their": true,
	"into": true, "than": true, "then": true, "when": true, "which": true, "will": true,
	"has": true, "have": true, "been": true, "not": true, "but": true, "our": true,
}

var (
	resolutionCues = regexp.MustCompile(`(?i)\b(because|reconcil\w*|explains?\s+why|whereas|only\s+when|only\s+if|under\s+conditions?|moderat\w*|depends?\s+on|resolv\w*|distinguish\w*|boundary\s+condition)\b`)
	actionVerbs    = regexp.MustCompile(`(?i)\b(increas\w*|reduc\w*|administer\w*|remov\w*|add\w*|restrict\w*|interven\w*|treat\w*|block\w*|rais\w*|lower\w*|introduc\w*|limit\w*|withdraw\w*|suppl\w*)\b`)
	quantitative   = regexp.MustCompile(`\d|%`)
	refutationCues = regexp.MustCompile(`(?i)\b(if|unless|reject\w*|fail\w*|falsif\w*|refut\w*|would\s+not|does\s+not|no)\b`)
	measureCues    = regexp.MustCompile(`(?i)\b(measur\w*|observ\w*|within|after|rate|levels?|compar\w*|control\s+group|baseline)\b`)
)

// tokenize lowercases text and keeps content words of three or more characters
func tokenize(text string) []string {
	var tokens []string
	for _, t := range tokenSplit.Split(strings.ToLower(text), -1) {
		if len(t) < 3 || stopwords[t] {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// cosine is the cosine similarity of the term-frequency vectors of a and b
func cosine(a, b string) float64 {
	ta, tb := tokenize(a), tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	index := make(map[string]int)
	for _, t := range append(append([]string{}, ta...), tb...) {
		if _, ok := index[t]; !ok {
			index[t] = len(index)
		}
	}
	va := make([]float64, len(index))
	vb := make([]float64, len(index))
	for _, t := range ta {
		va[index[t]]++
	}
	for _, t := range tb {
		vb[index[t]]++
	}

	na, nb := floats.Norm(va, 2), floats.Norm(vb, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp(floats.Dot(va, vb) / (na * nb))
}

// similarity is cosine memoized through the injected cache under an
// order-independent key
func similarity(ctx context.Context, cache ports.AnalysisCache, a, b string) float64 {
	if cache == nil {
		return cosine(a, b)
	}
	pair := []string{a, b}
	sort.Strings(pair)
	key := "similarity:" + core.Fingerprint(pair...).String()

	if raw, ok := cache.Get(ctx, key); ok {
		if v, err := strconv.ParseFloat(string(raw), 64); err == nil && !math.IsNaN(v) {
			return v
		}
		cache.Evict(ctx, key)
	}
	v := cosine(a, b)
	cache.Set(ctx, key, []byte(strconv.FormatFloat(v, 'g', -1, 64)))
	return v
}

// priorArtDistance is 1 minus the highest similarity to any prior-art entry.
// A supplied Similarity wins over the computed one.
func priorArtDistance(ctx context.Context, cache ports.AnalysisCache, h hypothesis.Hypothesis, priorArt []hypothesis.PriorArt) float64 {
	best := 0.0
	for _, p := range priorArt {
		var s float64
		if p.Similarity != nil && !math.IsNaN(*p.Similarity) {
			s = clamp(*p.Similarity)
		} else {
			s = similarity(ctx, cache, h.Text(), p.Text)
		}
		best = math.Max(best, s)
	}
	return clamp(1 - best)
}

// contradictionSignal counts the contradiction rows h touches and scores how
// explicitly its mechanism and prediction resolve the tension
func contradictionSignal(h hypothesis.Hypothesis, rows []hypothesis.ContradictionRow) (float64, int) {
	text := strings.ToLower(h.Thesis + " " + h.Mechanism + " " + h.Prediction)
	matched := 0
	for _, row := range rows {
		for _, kw := range row.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(text, kw) {
				matched++
				break
			}
		}
	}
	if matched == 0 {
		return 0, 0
	}
	cues := len(resolutionCues.FindAllString(h.Mechanism+" "+h.Prediction, -1))
	return clamp(0.25 + 0.25*math.Min(float64(cues), 3)), matched
}

// mechanismDifferentiation rewards a mechanism that is both substantive and
// lexically distinct from the thesis and from every prior-art entry
func mechanismDifferentiation(ctx context.Context, cache ports.AnalysisCache, h hypothesis.Hypothesis, priorArt []hypothesis.PriorArt) float64 {
	tokens := tokenize(h.Mechanism)
	if len(tokens) == 0 {
		return 0
	}
	substance := math.Min(float64(len(tokens))/8, 1)

	overlap := similarity(ctx, cache, h.Mechanism, h.Thesis)
	for _, p := range priorArt {
		overlap = math.Max(overlap, similarity(ctx, cache, h.Mechanism, p.Text))
	}
	return clamp(substance * (1 - overlap))
}

// interventionValue uses a supplied score, else counts concrete levers in
// the mechanism and prediction
func interventionValue(h hypothesis.Hypothesis) float64 {
	if h.InterventionValueScore != nil && !math.IsNaN(*h.InterventionValueScore) {
		return clamp(*h.InterventionValueScore)
	}
	text := h.Mechanism + " " + h.Prediction
	levers := len(actionVerbs.FindAllString(text, -1))
	score := 0.2 + 0.15*math.Min(float64(levers), 3)
	if quantitative.MatchString(h.Prediction) {
		score += 0.15
	}
	return clamp(score)
}

// falsifiability scores how concretely the falsifier names a refuting
// observation. Falsifiers too short to count score zero.
func falsifiability(h hypothesis.Hypothesis) float64 {
	if !h.HasFalsifier() {
		return 0
	}
	score := 0.4
	if refutationCues.MatchString(h.Falsifier) {
		score += 0.2
	}
	if quantitative.MatchString(h.Falsifier) {
		score += 0.2
	}
	if measureCues.MatchString(h.Falsifier) {
		score += 0.2
	}
	return clamp(score)
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func round3(v float64) float64 {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return 0
	}
	return r
}
