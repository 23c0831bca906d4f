package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/balance-dispatcher/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

func renderView(report domain.RunReport, s styles) string {
	title := "Dispatch summary"
	if report.DryRun {
		title += " (dry run)"
	}

	lines := []string{
		s.title.Render(title),
		s.header.Render(headerLine(report)),
	}

	if len(report.Results) == 0 {
		lines = append(lines, s.empty.Render("No agent groups in the ledger."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines, s.section.Render(tallyLine(report.Tally(), report.DryRun, s)))

	failures := make([]string, 0)
	for _, result := range report.Results {
		if result.Outcome.Kind != domain.OutcomeFailed {
			continue
		}
		failures = append(failures, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.agent.Render(string(result.Agent)),
			" ",
			s.detail.Render(result.Outcome.Reason),
		))
	}
	if len(failures) > 0 {
		block := append([]string{s.failed.Render("Failures:")}, failures...)
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, block...)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func headerLine(report domain.RunReport) string {
	parts := []string{fmt.Sprintf("agents: %d", len(report.Results))}
	if report.RunID != "" {
		parts = append(parts, "run: "+report.RunID)
	}
	if d := report.Duration(); d > 0 {
		parts = append(parts, "took: "+d.Round(time.Second).String())
	}
	return strings.Join(parts, "  ")
}

func tallyLine(t domain.Tally, dryRun bool, s styles) string {
	parts := make([]string, 0, 4)
	if dryRun {
		parts = append(parts, s.dryRun.Render(fmt.Sprintf("would send: %d", t.DryRun)))
	} else {
		parts = append(parts, s.sent.Render(fmt.Sprintf("sent: %d", t.Sent)))
	}
	parts = append(parts,
		s.skipped.Render(fmt.Sprintf("skipped: %d", t.Skipped)),
		s.failed.Render(fmt.Sprintf("failed: %d", t.Failed)),
	)
	return strings.Join(parts, "  ")
}

// ResultLine is the plain per-recipient status line printed while a run
// progresses.
func ResultLine(result domain.RecipientResult) string {
	label := "[" + result.Outcome.Kind.Label() + "]"

	switch result.Outcome.Kind {
	case domain.OutcomeSkippedNoContact:
		return fmt.Sprintf("%s agent %s has no registered phone", label, result.Agent)
	case domain.OutcomeFailed:
		return fmt.Sprintf("%s agent %s -> %s: %s", label, result.Agent, phoneOrUnknown(result.Phone), result.Outcome.Reason)
	case domain.OutcomeDryRun:
		return fmt.Sprintf("%s would send %s to agent %s -> %s", label, result.Artifact, result.Agent, result.Phone)
	default:
		return fmt.Sprintf("%s sent to agent %s -> %s", label, result.Agent, result.Phone)
	}
}

func phoneOrUnknown(phone domain.PhoneNumber) string {
	if phone == "" {
		return "?"
	}
	return string(phone)
}
