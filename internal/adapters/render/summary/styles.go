package summary

import (
	"github.com/bnema/balance-dispatcher/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	section lipgloss.Style
	empty   lipgloss.Style
	sent    lipgloss.Style
	skipped lipgloss.Style
	failed  lipgloss.Style
	dryRun  lipgloss.Style
	agent   lipgloss.Style
	detail  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		section: lipgloss.NewStyle().MarginTop(1),
		empty:   lipgloss.NewStyle().Faint(true),
		sent:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		skipped: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		failed:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		dryRun:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		agent:   lipgloss.NewStyle().Bold(true),
		detail:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

func (s styles) outcome(kind domain.OutcomeKind) lipgloss.Style {
	switch kind {
	case domain.OutcomeSent:
		return s.sent
	case domain.OutcomeSkippedNoContact:
		return s.skipped
	case domain.OutcomeFailed:
		return s.failed
	default:
		return s.dryRun
	}
}
