package api

import (
	"net/http"

	"causalgate/domain/causal"
	"causalgate/internal/causalgraph"

	"github.com/gin-gonic/gin"
)

// GraphOverride lets a request query an inline graph instead of the
// server's hydrated one
type GraphOverride struct {
	Graph *causal.Structure `json:"graph,omitempty"`
}

func (s *Server) model(o GraphOverride) *causalgraph.Model {
	if o.Graph != nil {
		return causalgraph.NewModel(*o.Graph)
	}
	return s.graph
}

// AssociationRequest is the body of POST /v1/graph/association
type AssociationRequest struct {
	GraphOverride
	Cause    string             `json:"cause" binding:"required"`
	Effect   string             `json:"effect" binding:"required"`
	Observed map[string]float64 `json:"observed"`
}

func (s *Server) handleAssociation(c *gin.Context) {
	var req AssociationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := s.model(req.GraphOverride).QueryAssociation(req.Cause, req.Effect, req.Observed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// InterventionRequest is the body of POST /v1/graph/intervention
type InterventionRequest struct {
	GraphOverride
	Variable string             `json:"variable" binding:"required"`
	Value    float64            `json:"value"`
	Outcome  string             `json:"outcome" binding:"required"`
	Baseline map[string]float64 `json:"baseline"`
}

func (s *Server) handleIntervention(c *gin.Context) {
	var req InterventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := s.model(req.GraphOverride).QueryIntervention(req.Variable, req.Value, req.Outcome, req.Baseline)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CounterfactualRequest is the body of POST /v1/graph/counterfactual
type CounterfactualRequest struct {
	GraphOverride
	Variable string             `json:"variable" binding:"required"`
	Value    float64            `json:"value"`
	Outcome  string             `json:"outcome" binding:"required"`
	Observed map[string]float64 `json:"observed"`
}

func (s *Server) handleCounterfactual(c *gin.Context) {
	var req CounterfactualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := s.model(req.GraphOverride).QueryCounterfactual(req.Variable, req.Value, req.Outcome, req.Observed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DSeparationRequest is the body of POST /v1/graph/dseparation
type DSeparationRequest struct {
	GraphOverride
	X             string   `json:"x" binding:"required"`
	Y             string   `json:"y" binding:"required"`
	ConditionedOn []string `json:"conditioned_on"`
}

func (s *Server) handleDSeparation(c *gin.Context) {
	var req DSeparationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, s.model(req.GraphOverride).CheckDSeparation(req.X, req.Y, req.ConditionedOn))
}

// IdentifiabilityRequest is the body of POST /v1/graph/identifiability
type IdentifiabilityRequest struct {
	GraphOverride
	Treatment        string   `json:"treatment" binding:"required"`
	Outcome          string   `json:"outcome" binding:"required"`
	AdjustmentSet    []string `json:"adjustment_set"`
	KnownConfounders []string `json:"known_confounders"`
}

// IdentifiabilityResponse adds confounder coverage to the identifiability result
type IdentifiabilityResponse struct {
	causal.IdentifiabilityResult
	Completeness causal.CompletenessResult `json:"completeness"`
}

func (s *Server) handleIdentifiability(c *gin.Context) {
	var req IdentifiabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result := s.model(req.GraphOverride).CheckIdentifiability(req.Treatment, req.Outcome, req.AdjustmentSet, req.KnownConfounders)
	c.JSON(http.StatusOK, IdentifiabilityResponse{
		IdentifiabilityResult: result,
		Completeness:          causalgraph.CheckConfounderCompleteness(result.Required, req.AdjustmentSet),
	})
}
