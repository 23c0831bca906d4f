package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/balance-dispatcher/internal/application"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const sessionSpinnerLabel = "Waiting for WhatsApp Web login..."

type sessionOpenDoneMsg struct {
	session *application.Session
	err     error
}

type sessionSpinnerModel struct {
	spinner spinner.Model
	label   string
	open    tea.Cmd
	session *application.Session
	err     error
	done    bool
}

func newSessionSpinnerModel(label string, open tea.Cmd) sessionSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return sessionSpinnerModel{
		spinner: s,
		label:   label,
		open:    open,
	}
}

func (m sessionSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.open)
}

func (m sessionSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case sessionOpenDoneMsg:
		m.done = true
		m.session = msg.session
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m sessionSpinnerModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

// spinnerOpener shows a spinner while the wrapped opener waits for the chat
// client to become ready, which includes the QR login on a fresh profile.
type spinnerOpener struct {
	inner  application.SessionOpener
	output io.Writer
}

func (o spinnerOpener) Open(ctx context.Context) (*application.Session, error) {
	openCmd := func() tea.Msg {
		session, err := o.inner.Open(ctx)
		if err == nil && ctx.Err() != nil {
			_ = session.Close()
			return sessionOpenDoneMsg{err: ctx.Err()}
		}
		return sessionOpenDoneMsg{session: session, err: err}
	}

	p := tea.NewProgram(
		newSessionSpinnerModel(sessionSpinnerLabel, openCmd),
		tea.WithInput(nil),
		tea.WithOutput(o.output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	result, ok := finalModel.(sessionSpinnerModel)
	if !ok {
		return nil, fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.session, result.err
}
