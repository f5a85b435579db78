package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"veritas/adapters/excel"
	"veritas/domain/swarm"
)

// RenderReportMarkdown builds a human-readable audit report for one run
func RenderReportMarkdown(v *swarm.VerdictDistribution) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Verdict report\n\n")
	fmt.Fprintf(&sb, "**Question:** %s\n\n", v.Question)
	fmt.Fprintf(&sb, "**Run:** `%s` — %s", v.RunID, v.Termination)
	if v.ConvergedAt != nil {
		fmt.Fprintf(&sb, " (converged at iteration %d)", *v.ConvergedAt)
	}
	sb.WriteString("\n\n")

	sb.WriteString("## Posterior\n\n")
	sb.WriteString("| Category | Mean | 95% CI |\n|---|---|---|\n")
	for i, cat := range swarm.Categories {
		ci := v.CredibleIntervals[cat]
		fmt.Fprintf(&sb, "| %s | %.4f | [%.4f, %.4f] |\n", cat, v.PosteriorMean[i], ci.Lower, ci.Upper)
	}
	fmt.Fprintf(&sb, "\nEntropy: %.3f bits\n\n", v.Entropy)

	sb.WriteString("## Reliability\n\n")
	if v.FleissKappa.Defined {
		fmt.Fprintf(&sb, "- Fleiss' kappa: %.4f\n", v.FleissKappa.Value)
	} else {
		sb.WriteString("- Fleiss' kappa: undefined (insufficient or degenerate agreement data)\n")
	}
	fmt.Fprintf(&sb, "- Effective sample size: %.1f of %d ballots\n\n", v.EffectiveSampleSize, len(v.Ballots))

	sb.WriteString("## Ballot rationales\n\n")
	for _, b := range v.Ballots {
		fmt.Fprintf(&sb, "### Iteration %d — %s (%s): %s\n\n", b.Iteration, b.Archetype, b.Model, b.Vote)
		if b.Reasoning != "" {
			fmt.Fprintf(&sb, "%s\n\n", b.Reasoning)
		}
	}

	return sb.String()
}

// RenderReportHTML renders the markdown report to HTML
func RenderReportHTML(v *swarm.VerdictDistribution) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(RenderReportMarkdown(v)), p, renderer)
}

// ExportWorkbook writes the run's audit workbook into dir and returns its path
func ExportWorkbook(v *swarm.VerdictDistribution, dir string) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("verdict-%s.xlsx", v.RunID))
	if err := excel.WriteAuditWorkbook(v, path); err != nil {
		return "", err
	}
	return path, nil
}
