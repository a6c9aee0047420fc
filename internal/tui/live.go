// Package tui is the live solve view: a small bubbletea program that
// shows progress while the orchestrator works and the convergence
// profile once it is done.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/MacroFinanceHub/dynare/internal/model"
	"github.com/MacroFinanceHub/dynare/internal/num"
	"github.com/MacroFinanceHub/dynare/internal/steadystate"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// DoneMsg carries the solve result into the program.
type DoneMsg struct {
	YS      num.Vec
	Status  steadystate.Status
	History []float64
	Err     error
}

type tickMsg time.Time

type Model struct {
	desc    *model.Descriptor
	results <-chan DoneMsg

	frame   int
	started time.Time
	done    bool
	result  DoneMsg
}

func NewLive(desc *model.Descriptor, results <-chan DoneMsg) Model {
	return Model{desc: desc, results: results, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.waitForResult())
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) waitForResult() tea.Cmd {
	return func() tea.Msg { return <-m.results }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter":
			if m.done {
				return m, tea.Quit
			}
		}
	case tickMsg:
		if m.done {
			return m, nil
		}
		m.frame++
		return m, tick()
	case DoneMsg:
		m.done = true
		m.result = msg
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("steady state: %s", m.desc.Name)))
	b.WriteString("\n\n")

	if !m.done {
		b.WriteString(fmt.Sprintf("%s solving  %s\n",
			spinnerFrames[m.frame%len(spinnerFrames)],
			dimStyle.Render(time.Since(m.started).Round(time.Millisecond).String())))
		return b.String()
	}

	if m.result.Err != nil {
		b.WriteString(failStyle.Render(fmt.Sprintf("error: %v", m.result.Err)))
		b.WriteString("\n")
		return b.String()
	}

	if m.result.Status.Ok() {
		b.WriteString(okStyle.Render("converged"))
	} else {
		b.WriteString(failStyle.Render(m.result.Status.String()))
	}
	b.WriteString("\n\n")

	if len(m.result.History) > 1 {
		b.WriteString(dimStyle.Render("residual norm per iteration"))
		b.WriteString("\n")
		b.WriteString(asciigraph.Plot(m.result.History, asciigraph.Height(8), asciigraph.Width(60)))
		b.WriteString("\n\n")
	}

	for i, v := range m.result.YS {
		b.WriteString(fmt.Sprintf("  %-12s %.6g\n", m.desc.VarName(i), v))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("press q to quit"))
	return b.String()
}

// Run drives a live view around the supplied solve function.
func Run(desc *model.Descriptor, solve func() DoneMsg) error {
	results := make(chan DoneMsg, 1)
	go func() { results <- solve() }()

	_, err := tea.NewProgram(NewLive(desc, results)).Run()
	return err
}
