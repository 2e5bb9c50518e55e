package api

import (
	"net/http"

	"causalgate/domain/core"
	"causalgate/domain/verdict"
	"causalgate/internal/disclosure"
	"causalgate/internal/mechanism"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleMechanism(c *gin.Context) {
	var req mechanism.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Checkpoint == "" {
		req.Checkpoint = verdict.CheckpointPreRelease
	}
	result, err := s.mechanism.Evaluate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	s.record(c.Request.Context(), verdict.Decision{
		Gate:        "mechanism",
		Subject:     string(result.Checkpoint),
		Status:      string(result.Status),
		Reasons:     axioms(result.Violations),
		Fingerprint: result.Fingerprint,
	})
	c.JSON(http.StatusOK, result)
}

// DisclosureRequest is the body of POST /v1/gates/disclosure. When Text is
// set it is also checked for overclaim language against the decided class.
type DisclosureRequest struct {
	GraphOverride
	disclosure.Request
	Text string `json:"text,omitempty"`
}

// DisclosureResponse is the decision plus any overclaim violations in Text
type DisclosureResponse struct {
	disclosure.Decision
	Statement  string              `json:"statement"`
	Violations []verdict.Violation `json:"violations"`
	Status     verdict.GateStatus  `json:"status"`
}

func (s *Server) handleDisclosure(c *gin.Context) {
	var req DisclosureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Treatment == "" || req.Outcome == "" {
		badRequest(c, core.NewValidationError("treatment/outcome", "both are required"))
		return
	}

	gate := disclosure.NewGate(s.model(req.GraphOverride), s.logger)
	decision := gate.Decide(req.Request)

	violations := []verdict.Violation{}
	if req.Text != "" {
		violations = disclosure.CheckOverclaim(req.Text, decision.Class)
	}
	fatal, warning := verdict.CountBySeverity(violations)
	status := verdict.StatusPass
	switch {
	case fatal > 0:
		status = verdict.StatusBlocked
	case warning > 0:
		status = verdict.StatusWarning
	}

	s.record(c.Request.Context(), verdict.Decision{
		Gate:        "disclosure",
		Subject:     req.Treatment + "->" + req.Outcome,
		Status:      string(decision.Class),
		Reasons:     append([]string{}, decision.Identifiability.Missing...),
		Fingerprint: core.Fingerprint(req.Treatment, req.Outcome, req.Text).String(),
	})
	c.JSON(http.StatusOK, DisclosureResponse{
		Decision:   decision,
		Statement:  disclosure.Statement(req.Request, decision),
		Violations: violations,
		Status:     status,
	})
}

func axioms(violations []verdict.Violation) []string {
	out := make([]string, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.Axiom)
	}
	return out
}
