package migration

import (
	"context"

	"causalgate/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the verdict ledger schema
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order. Every step is
// idempotent.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createGateDecisionsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create gate_decisions table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createGateDecisionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS gate_decisions (
			id BIGSERIAL PRIMARY KEY,
			gate VARCHAR(64) NOT NULL,
			subject TEXT NOT NULL,
			status VARCHAR(32) NOT NULL,
			reasons TEXT[] NOT NULL DEFAULT '{}',
			fingerprint VARCHAR(64) NOT NULL,
			recorded_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_gate_decisions_gate ON gate_decisions(gate, recorded_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_gate_decisions_fingerprint ON gate_decisions(fingerprint)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
