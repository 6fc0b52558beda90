package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

const refreshInterval = 50 * time.Millisecond

// tickMsg advances the progress bar.
type tickMsg time.Time

// doneMsg carries the outcome of the backend call.
type doneMsg struct {
	err error
}

// progressModel is the bubbletea model shown while a simulated backend call
// is in flight. The bar fills over the expected delay and completes when the
// call returns.
type progressModel struct {
	label    string
	expected time.Duration
	started  time.Time
	cancel   context.CancelFunc
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
	err      error
}

// newProgressModel creates a new progress model.
func newProgressModel(label string, expected time.Duration, cancel context.CancelFunc) progressModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return progressModel{
		label:    label,
		expected: expected,
		started:  time.Now(),
		cancel:   cancel,
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init returns the initial command (start ticking).
func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, tickCmd()

	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m progressModel) renderContent() string {
	if m.done || m.quitting {
		return ""
	}

	status := m.theme.statusStyle().Render(m.label)
	bar := m.progress.ViewAs(m.percent(time.Now()))
	hint := m.theme.hintStyle().Render("Press Ctrl+C to cancel")

	return fmt.Sprintf("%s %s\n%s\n", status, bar, hint)
}

// percent estimates completion from elapsed time. It never reports 100%
// before the call has returned.
func (m progressModel) percent(now time.Time) float64 {
	if m.done {
		return 1
	}
	if m.expected <= 0 {
		return 0
	}
	return min(float64(now.Sub(m.started))/float64(m.expected), 0.99)
}

// tickCmd returns a command that sends a tick after the refresh interval.
func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// withProgress runs call and, when stderr is a terminal and the backend is
// expected to take a while, shows a progress bar until it returns. Ctrl+C
// cancels the call's context.
func withProgress(ctx context.Context, label string, expected time.Duration, call func(context.Context) error) error {
	if expected <= 0 || !term.IsTerminal(int(os.Stderr.Fd())) {
		return call(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(label, expected, cancel), tea.WithOutput(os.Stderr))

	result := make(chan error, 1)
	go func() {
		err := call(ctx)
		result <- err
		p.Send(doneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		logger.Debug("progress UI unavailable", "error", err)
	}
	return <-result
}
