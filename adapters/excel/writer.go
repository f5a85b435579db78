package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"veritas/domain/swarm"
)

// WriteAuditWorkbook exports a finished run to an xlsx workbook with three
// sheets: Summary, Ballots, Snapshots. Meant for offline audit of a run.
func WriteAuditWorkbook(verdict *swarm.VerdictDistribution, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummarySheet(f, verdict); err != nil {
		return err
	}
	if err := writeBallotSheet(f, verdict.Ballots); err != nil {
		return err
	}
	if err := writeSnapshotSheet(f, verdict.Snapshots); err != nil {
		return err
	}

	// Drop the default sheet excelize creates
	f.DeleteSheet("Sheet1")

	return f.SaveAs(path)
}

func writeSummarySheet(f *excelize.File, v *swarm.VerdictDistribution) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	kappa := "undefined"
	if v.FleissKappa.Defined {
		kappa = fmt.Sprintf("%.4f", v.FleissKappa.Value)
	}
	convergedAt := ""
	if v.ConvergedAt != nil {
		convergedAt = fmt.Sprintf("%d", *v.ConvergedAt)
	}

	rows := [][]interface{}{
		{"Run ID", v.RunID.String()},
		{"Question", v.Question},
		{"Commitment", v.Commitment.String()},
		{"P(YES)", v.PYes()},
		{"P(NO)", v.PNo()},
		{"P(NULL)", v.PNull()},
		{"Entropy (bits)", v.Entropy},
		{"Fleiss' kappa", kappa},
		{"Effective sample size", v.EffectiveSampleSize},
		{"Ballots", len(v.Ballots)},
		{"Iterations", v.Iterations},
		{"Committee size", v.CommitteeSize},
		{"Converged at", convergedAt},
		{"Termination", string(v.Termination)},
		{"Incomplete", v.Incomplete},
	}
	for _, cat := range swarm.Categories {
		ci := v.CredibleIntervals[cat]
		rows = append(rows, []interface{}{
			fmt.Sprintf("95%% CI %s", cat),
			fmt.Sprintf("[%.4f, %.4f]", ci.Lower, ci.Upper),
		})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeBallotSheet(f *excelize.File, ballots []swarm.Ballot) error {
	const sheet = "Ballots"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{"Iteration", "Archetype", "Model", "Vote", "Supporting", "Refuting", "Reasoning"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, b := range ballots {
		row := []interface{}{
			b.Iteration,
			b.Archetype.String(),
			b.Model.String(),
			string(b.Vote),
			joinInts(b.Supporting),
			joinInts(b.Refuting),
			b.Reasoning,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeSnapshotSheet(f *excelize.File, snapshots []swarm.IterationSnapshot) error {
	const sheet = "Snapshots"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{"Iteration", "N(YES)", "N(NO)", "N(NULL)", "P(YES)", "P(NO)", "P(NULL)", "Entropy"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, s := range snapshots {
		row := []interface{}{
			s.Iteration,
			s.Counts[0], s.Counts[1], s.Counts[2],
			s.PosteriorMean[0], s.PosteriorMean[1], s.PosteriorMean[2],
			s.Entropy,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}
