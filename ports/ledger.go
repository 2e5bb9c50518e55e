package ports

import (
	"context"

	"causalgate/domain/verdict"
)

// VerdictLedger provides append-only storage for gate decisions.
// It is an audit trail only: gates never read back from it.
type VerdictLedger interface {
	RecordDecision(ctx context.Context, decision verdict.Decision) error
}

// VerdictLedgerReader lists recorded decisions for audit tooling
type VerdictLedgerReader interface {
	ListDecisions(ctx context.Context, gate string, limit int) ([]verdict.Decision, error)
}
