package excel

import (
	"path/filepath"
	"testing"

	"causalgate/domain/hypothesis"
	"causalgate/internal/oracle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteOracleReport(t *testing.T) {
	report := oracle.Run(nil)
	path := filepath.Join(t.TempDir(), "oracle.xlsx")

	require.NoError(t, WriteOracleReport(path, report))

	rows, err := ReadOracleSummary(path)
	require.NoError(t, err)
	require.Len(t, rows, len(report.Families))
	for i, row := range rows {
		assert.Equal(t, report.Families[i].Label(), row.Label)
		assert.Equal(t, report.Families[i].Passed, row.Passed)
		assert.InDelta(t, report.Families[i].PassRate, row.PassRate, 1e-9)
	}
}

func TestWriteNoveltyProofs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proofs.xlsx")
	proofs := []hypothesis.NoveltyProof{
		{HypothesisID: "h1", ProofStatus: hypothesis.ProofPass, PriorArtDistance: 0.8, BlockedReasons: []string{}},
		{HypothesisID: "h2", ProofStatus: hypothesis.ProofBlocked, BlockedReasons: []string{
			hypothesis.ReasonPriorArtOverlap, hypothesis.ReasonFalsifiabilityWeak,
		}},
	}
	require.NoError(t, WriteNoveltyProofs(path, proofs))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetProofs)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "h2", rows[2][0])
	assert.Equal(t, "prior_art_overlap_above_threshold, falsifiability_signal_insufficient", rows[2][8])
}
