package container

import (
	"context"
	"fmt"

	"causalgate/adapters/cache"
	"causalgate/adapters/postgres"
	"causalgate/adapters/priorart"
	"causalgate/adapters/template"
	"causalgate/domain/causal"
	"causalgate/domain/hypothesis"
	"causalgate/internal"
	"causalgate/internal/api"
	"causalgate/internal/causalgraph"
	"causalgate/internal/config"
	"causalgate/internal/errors"
	"causalgate/internal/mechanism"
	"causalgate/internal/migration"
	"causalgate/internal/novelty"
	"causalgate/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB     *sqlx.DB
	Cache  ports.AnalysisCache
	Ledger ports.VerdictLedger

	// Domain template
	Template *template.Template

	// Engine components
	Graph          *causalgraph.Model
	Mechanism      *mechanism.Gate
	PriorArt       ports.PriorArtLookup
	Contradictions []hypothesis.ContradictionRow

	redis *cache.RedisCache
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level)),
	}, nil
}

// Init builds every component. templatePath may be empty, in which case
// only the innate tier is hydrated.
func (c *Container) Init(ctx context.Context, templatePath string) error {
	if err := c.initCache(ctx); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	if err := c.initTemplate(templatePath); err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}
	if err := c.initMechanism(); err != nil {
		return fmt.Errorf("failed to initialize mechanism gate: %w", err)
	}
	if c.Config.Ledger.DatabaseURL != "" {
		if err := c.initLedger(ctx); err != nil {
			return fmt.Errorf("failed to initialize verdict ledger: %w", err)
		}
	}
	return nil
}

func (c *Container) initCache(ctx context.Context) error {
	if c.Config.Cache.RedisURL == "" {
		c.Cache = cache.NewMemoryCache(c.Config.Cache.MaxEntries)
		return nil
	}
	rc, err := cache.NewRedisCache(ctx, c.Config.Cache.RedisURL, c.Logger)
	if err != nil {
		return err
	}
	c.redis = rc
	c.Cache = rc
	c.Logger.Info("using redis analysis cache")
	return nil
}

func (c *Container) initTemplate(path string) error {
	structure := causal.Structure{}
	if path != "" {
		tpl, err := template.Load(path)
		if err != nil {
			return err
		}
		c.Template = tpl
		structure = tpl.Structure()
		c.Contradictions = tpl.Contradiction
		c.PriorArt = priorart.NewStaticLookup(tpl.PriorArt, 0)
		c.Logger.Info("hydrated template %q: %d nodes, %d edges", tpl.Name, len(tpl.Nodes), len(tpl.Edges))
	}
	c.Graph = causalgraph.NewModel(structure)
	return nil
}

func (c *Container) initMechanism() error {
	policy, err := mechanism.ParsePolicy(c.Config.Gate.Policy, c.Config.Gate.MaxWarnings)
	if err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	c.Mechanism = mechanism.NewGate(policy, mechanism.WithCache(c.Cache), mechanism.WithLogger(c.Logger))
	return nil
}

func (c *Container) initLedger(ctx context.Context) error {
	db, err := sqlx.Connect("postgres", c.Config.Ledger.DatabaseURL)
	if err != nil {
		return errors.DatabaseError("failed to connect to database", err)
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return errors.Wrap(err, "database migration failed")
	}
	c.DB = db
	c.Ledger = postgres.NewVerdictLedger(db)
	return nil
}

// Domain is the Tier 2 domain from config, else from the template
func (c *Container) Domain() mechanism.Domain {
	if c.Config.Gate.Domain != "" {
		return mechanism.Domain(c.Config.Gate.Domain)
	}
	if c.Template != nil {
		return mechanism.Domain(c.Template.Domain)
	}
	return mechanism.DomainNone
}

// NoveltyOptions returns scorer options derived from config
func (c *Container) NoveltyOptions() []novelty.Option {
	return []novelty.Option{
		novelty.WithThresholds(novelty.Thresholds{
			Novelty:        c.Config.Novelty.NoveltyThreshold,
			Falsifiability: c.Config.Novelty.FalsifiabilityThreshold,
			Contradiction:  c.Config.Novelty.ContradictionThreshold,
		}),
		novelty.WithConcurrency(c.Config.Novelty.Concurrency),
		novelty.WithCache(c.Cache),
		novelty.WithContradictionRows(c.Contradictions),
		novelty.WithLogger(c.Logger),
	}
}

// NoveltyScorer builds a scorer over the template's prior art
func (c *Container) NoveltyScorer() *novelty.Scorer {
	return novelty.NewScorer(c.PriorArt, c.NoveltyOptions()...)
}

// APIDeps wires the HTTP server
func (c *Container) APIDeps() api.Deps {
	return api.Deps{
		Graph:          c.Graph,
		Mechanism:      c.Mechanism,
		Novelty:        c.NoveltyOptions(),
		PriorArt:       c.PriorArt,
		Contradictions: c.Contradictions,
		Ledger:         c.Ledger,
		Logger:         c.Logger,
	}
}

// Shutdown releases the database and cache connections
func (c *Container) Shutdown(ctx context.Context) error {
	var firstErr error
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			firstErr = err
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
