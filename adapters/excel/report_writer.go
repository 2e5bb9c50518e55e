package excel

import (
	"fmt"
	"strconv"

	"causalgate/domain/hypothesis"
	"causalgate/internal/oracle"

	"github.com/xuri/excelize/v2"
)

// Sheet names used by the report writers
const (
	SheetOracle = "Oracle"
	SheetCases  = "Cases"
	SheetProofs = "NoveltyProofs"
)

// WriteOracleReport saves the oracle report as a workbook with a family
// summary sheet and a per-case sheet
func WriteOracleReport(path string, report oracle.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetOracle); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetCases); err != nil {
		return fmt.Errorf("failed to create cases sheet: %w", err)
	}

	summary := [][]interface{}{{"Family", "Pass rate", "Threshold", "Cases", "Passed"}}
	var cases [][]interface{}
	cases = append(cases, []interface{}{"Family", "Case", "Passed", "Detail"})
	for _, fam := range report.Families {
		summary = append(summary, []interface{}{fam.Label(), fam.PassRate, fam.Threshold, len(fam.Cases), fam.Passed})
		for _, c := range fam.Cases {
			cases = append(cases, []interface{}{fam.Label(), c.Name, c.Passed, c.Detail})
		}
	}
	summary = append(summary, []interface{}{"overall", report.MeanRate, "", "", report.Passed})

	if err := writeRows(f, SheetOracle, summary); err != nil {
		return err
	}
	if err := writeRows(f, SheetCases, cases); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetOracle, "A", "A", 40); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// WriteNoveltyProofs saves one row per proof
func WriteNoveltyProofs(path string, proofs []hypothesis.NoveltyProof) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetProofs); err != nil {
		return fmt.Errorf("failed to name proofs sheet: %w", err)
	}
	rows := [][]interface{}{{
		"Hypothesis", "Status", "Prior-art distance", "Contradiction resolved", "Mechanism differentiation",
		"Intervention value", "Falsifiability", "Rows matched", "Blocked reasons",
	}}
	for _, p := range proofs {
		reasons := ""
		for i, r := range p.BlockedReasons {
			if i > 0 {
				reasons += ", "
			}
			reasons += r
		}
		rows = append(rows, []interface{}{
			p.HypothesisID, string(p.ProofStatus), p.PriorArtDistance, p.ContradictionResolvedScore,
			p.MechanismDifferentiationScore, p.InterventionValueScore, p.FalsifiabilityScore,
			p.ContradictionRowsMatched, reasons,
		})
	}
	if err := writeRows(f, SheetProofs, rows); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// writeRows writes rows starting at A1 and bolds the header row
func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

// FamilySummary is one row read back from the oracle summary sheet
type FamilySummary struct {
	Label    string
	PassRate float64
	Passed   bool
}

// ReadOracleSummary reads the family rows of a workbook written by
// WriteOracleReport, excluding the overall row
func ReadOracleSummary(path string) ([]FamilySummary, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetOracle)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", SheetOracle, err)
	}
	var out []FamilySummary
	for i, row := range rows {
		if i == 0 || len(row) < 5 || row[0] == "overall" {
			continue
		}
		rate, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad pass rate %q", i+1, row[1])
		}
		passed, err := strconv.ParseBool(row[4])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad passed flag %q", i+1, row[4])
		}
		out = append(out, FamilySummary{Label: row[0], PassRate: rate, Passed: passed})
	}
	return out, nil
}
