package postgres

import (
	"context"
	"os"
	"testing"

	"causalgate/domain/verdict"
	"causalgate/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T) *sqlx.DB {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	db, err := sqlx.Connect("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migration.NewRunner().Run(context.Background(), db))
	return db
}

func TestVerdictLedgerRoundTrip(t *testing.T) {
	db := connect(t)
	ledger := NewVerdictLedger(db)
	ctx := context.Background()
	gate := "ledger_test_" + t.Name()

	_, err := db.ExecContext(ctx, `DELETE FROM gate_decisions WHERE gate = $1`, gate)
	require.NoError(t, err)

	require.NoError(t, ledger.RecordDecision(ctx, verdict.Decision{
		Gate: gate, Subject: "text-1", Status: "blocked",
		Reasons: []string{"Reversibility"}, Fingerprint: "abc",
	}))
	require.NoError(t, ledger.RecordDecision(ctx, verdict.Decision{
		Gate: gate, Subject: "text-2", Status: "pass", Fingerprint: "def",
	}))

	decisions, err := ledger.ListDecisions(ctx, gate, 10)
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	assert.Equal(t, "text-2", decisions[0].Subject)
	assert.Empty(t, decisions[0].Reasons)
	assert.Equal(t, []string{"Reversibility"}, decisions[1].Reasons)
}
