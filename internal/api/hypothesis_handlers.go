package api

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"causalgate/domain/core"
	"causalgate/domain/hypothesis"
	"causalgate/domain/verdict"
	"causalgate/internal/lifecycle"
	"causalgate/internal/novelty"
	"causalgate/internal/oracle"
	"causalgate/ports"

	"github.com/gin-gonic/gin"
)

// HypothesesRequest carries a batch of hypotheses
type HypothesesRequest struct {
	Hypotheses []hypothesis.Hypothesis `json:"hypotheses" binding:"required"`
}

// LifecycleEntry is one hypothesis' derived state
type LifecycleEntry struct {
	ID       string                    `json:"id"`
	State    hypothesis.LifecycleState `json:"state"`
	Eligible bool                      `json:"eligible"`
}

func (s *Server) handleLifecycle(c *gin.Context) {
	var req HypothesesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	entries := make([]LifecycleEntry, 0, len(req.Hypotheses))
	for _, h := range req.Hypotheses {
		entries = append(entries, LifecycleEntry{
			ID:       h.ID,
			State:    lifecycle.State(h),
			Eligible: lifecycle.IsRecommendationEligible(h),
		})
	}
	c.JSON(http.StatusOK, gin.H{"hypotheses": entries})
}

func (s *Server) handleRecommend(c *gin.Context) {
	var req HypothesesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := checkScores(req.Hypotheses); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommended": lifecycle.Recommend(req.Hypotheses)})
}

// NoveltyRequest is the body of POST /v1/novelty/score. Inline prior art
// replaces the server's lookup for this request.
type NoveltyRequest struct {
	Hypotheses     []hypothesis.Hypothesis       `json:"hypotheses" binding:"required"`
	PriorArt       []hypothesis.PriorArt         `json:"prior_art,omitempty"`
	Contradictions []hypothesis.ContradictionRow `json:"contradictions,omitempty"`
}

func (s *Server) handleNoveltyScore(c *gin.Context) {
	var req NoveltyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := checkScores(req.Hypotheses); err != nil {
		respondError(c, err)
		return
	}

	lookup := s.priorArt
	if req.PriorArt != nil {
		inline := req.PriorArt
		lookup = ports.PriorArtLookupFunc(func(context.Context, hypothesis.Hypothesis) ([]hypothesis.PriorArt, error) {
			return inline, nil
		})
	}
	rows := s.contradictions
	if req.Contradictions != nil {
		rows = req.Contradictions
	}

	opts := append(append([]novelty.Option{}, s.noveltyOpts...),
		novelty.WithContradictionRows(rows), novelty.WithLogger(s.logger))
	result := novelty.NewScorer(lookup, opts...).ScoreBatch(c.Request.Context(), req.Hypotheses)

	s.record(c.Request.Context(), verdict.Decision{
		Gate:        "novelty",
		Subject:     batchSubject(result.Proofs),
		Status:      string(result.Decision),
		Reasons:     result.Reasons,
		Fingerprint: core.Fingerprint(batchIDs(result.Proofs)...).String(),
	})
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleOracle(c *gin.Context) {
	report := oracle.Run(s.logger)
	switch c.Query("format") {
	case "markdown":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown()))
	case "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML())
	default:
		c.JSON(http.StatusOK, report)
	}
}

// checkScores rejects NaN or infinite optional scores before ranking
func checkScores(hs []hypothesis.Hypothesis) error {
	for _, h := range hs {
		scores := []struct {
			field string
			value *float64
		}{
			{"novelty_score", h.NoveltyScore},
			{"intervention_value_score", h.InterventionValueScore},
			{"identifiability_score", h.IdentifiabilityScore},
		}
		for _, sc := range scores {
			if sc.value != nil && (math.IsNaN(*sc.value) || math.IsInf(*sc.value, 0)) {
				return core.NewNonFiniteError(h.ID+"."+sc.field, *sc.value)
			}
		}
	}
	return nil
}

func batchIDs(proofs []hypothesis.NoveltyProof) []string {
	ids := make([]string, 0, len(proofs))
	for _, p := range proofs {
		ids = append(ids, p.HypothesisID)
	}
	return ids
}

func batchSubject(proofs []hypothesis.NoveltyProof) string {
	switch len(proofs) {
	case 0:
		return "empty batch"
	case 1:
		return proofs[0].HypothesisID
	default:
		return proofs[0].HypothesisID + " +" + strconv.Itoa(len(proofs)-1)
	}
}
