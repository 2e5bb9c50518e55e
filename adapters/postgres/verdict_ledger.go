package postgres

import (
	"context"
	"time"

	"causalgate/domain/verdict"
	"causalgate/internal/errors"
	"causalgate/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// VerdictLedgerImpl implements VerdictLedger for PostgreSQL
type VerdictLedgerImpl struct {
	db  *sqlx.DB
	now func() time.Time
}

var (
	_ ports.VerdictLedger       = (*VerdictLedgerImpl)(nil)
	_ ports.VerdictLedgerReader = (*VerdictLedgerImpl)(nil)
)

// NewVerdictLedger creates a new PostgreSQL verdict ledger
func NewVerdictLedger(db *sqlx.DB) *VerdictLedgerImpl {
	return &VerdictLedgerImpl{db: db, now: time.Now}
}

type decisionRow struct {
	Gate        string         `db:"gate"`
	Subject     string         `db:"subject"`
	Status      string         `db:"status"`
	Reasons     pq.StringArray `db:"reasons"`
	Fingerprint string         `db:"fingerprint"`
	RecordedAt  time.Time      `db:"recorded_at"`
}

// RecordDecision appends one gate decision
func (l *VerdictLedgerImpl) RecordDecision(ctx context.Context, decision verdict.Decision) error {
	reasons := decision.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	row := decisionRow{
		Gate:        decision.Gate,
		Subject:     decision.Subject,
		Status:      decision.Status,
		Reasons:     pq.StringArray(reasons),
		Fingerprint: decision.Fingerprint,
		RecordedAt:  l.now().UTC(),
	}
	_, err := l.db.NamedExecContext(ctx, `
		INSERT INTO gate_decisions (gate, subject, status, reasons, fingerprint, recorded_at)
		VALUES (:gate, :subject, :status, :reasons, :fingerprint, :recorded_at)
	`, row)
	if err != nil {
		return errors.DatabaseError("failed to record gate decision", err)
	}
	return nil
}

// ListDecisions returns the most recent decisions for gate, newest first
func (l *VerdictLedgerImpl) ListDecisions(ctx context.Context, gate string, limit int) ([]verdict.Decision, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []decisionRow
	err := l.db.SelectContext(ctx, &rows, `
		SELECT gate, subject, status, reasons, fingerprint, recorded_at
		FROM gate_decisions
		WHERE gate = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT $2
	`, gate, limit)
	if err != nil {
		return nil, errors.DatabaseError("failed to list gate decisions", err)
	}

	decisions := make([]verdict.Decision, 0, len(rows))
	for _, r := range rows {
		decisions = append(decisions, verdict.Decision{
			Gate:        r.Gate,
			Subject:     r.Subject,
			Status:      r.Status,
			Reasons:     []string(r.Reasons),
			Fingerprint: r.Fingerprint,
		})
	}
	return decisions, nil
}
