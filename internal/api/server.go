// Package api exposes the causal queries and governance gates over HTTP.
// Every handler is stateless: results depend only on the request body and the
// server's fixed configuration.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"causalgate/domain/causal"
	"causalgate/domain/hypothesis"
	"causalgate/domain/verdict"
	"causalgate/internal"
	"causalgate/internal/causalgraph"
	"causalgate/internal/mechanism"
	"causalgate/internal/novelty"
	"causalgate/ports"

	"github.com/gin-gonic/gin"
)

// Deps wires the engine components into a Server. Graph, Mechanism and
// Novelty are required; Ledger and Cache are optional.
type Deps struct {
	Graph          *causalgraph.Model
	Mechanism      *mechanism.Gate
	Novelty        []novelty.Option
	PriorArt       ports.PriorArtLookup
	Contradictions []hypothesis.ContradictionRow
	Ledger         ports.VerdictLedger
	Logger         *internal.Logger
}

// Server is the HTTP transport
type Server struct {
	router         *gin.Engine
	graph          *causalgraph.Model
	mechanism      *mechanism.Gate
	noveltyOpts    []novelty.Option
	priorArt       ports.PriorArtLookup
	contradictions []hypothesis.ContradictionRow
	ledger         ports.VerdictLedger
	hub            *DecisionHub
	logger         *internal.Logger
}

// NewServer builds the router and registers every route
func NewServer(deps Deps) *Server {
	s := &Server{
		router:         gin.New(),
		graph:          deps.Graph,
		mechanism:      deps.Mechanism,
		noveltyOpts:    deps.Novelty,
		priorArt:       deps.PriorArt,
		contradictions: deps.Contradictions,
		ledger:         deps.Ledger,
		hub:            NewDecisionHub(deps.Logger),
		logger:         deps.Logger.With("api"),
	}
	if s.graph == nil {
		s.graph = causalgraph.NewModel(causal.Structure{})
	}
	if s.mechanism == nil {
		s.mechanism = mechanism.NewGate(mechanism.DefaultPolicy())
	}
	s.router.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/v1")
	{
		graph := v1.Group("/graph")
		graph.POST("/association", s.handleAssociation)
		graph.POST("/intervention", s.handleIntervention)
		graph.POST("/counterfactual", s.handleCounterfactual)
		graph.POST("/dseparation", s.handleDSeparation)
		graph.POST("/identifiability", s.handleIdentifiability)

		gates := v1.Group("/gates")
		gates.POST("/mechanism", s.handleMechanism)
		gates.POST("/disclosure", s.handleDisclosure)

		hyp := v1.Group("/hypotheses")
		hyp.POST("/lifecycle", s.handleLifecycle)
		hyp.POST("/recommend", s.handleRecommend)

		v1.POST("/novelty/score", s.handleNoveltyScore)
		v1.GET("/oracle", s.handleOracle)
		v1.GET("/decisions/stream", s.handleDecisionStream)
	}
}

// Handler returns the router for embedding or tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Hub returns the decision stream hub
func (s *Server) Hub() *DecisionHub {
	return s.hub
}

// record publishes a decision to stream subscribers and appends it to the
// ledger. Ledger failures are logged only.
func (s *Server) record(ctx context.Context, d verdict.Decision) {
	s.hub.Publish(d)
	if s.ledger == nil {
		return
	}
	if err := s.ledger.RecordDecision(ctx, d); err != nil {
		s.logger.Warn("ledger: %v", err)
	}
}
