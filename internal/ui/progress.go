// Package ui implements a Bubbletea progress console for the mastering
// pipeline (SPEC_FULL.md §8), consuming internal/events.Event messages the
// same way the teacher's internal/ui consumed Pass 1/Pass 2 progress
// messages: a Model/Update/View trio wired to a running tea.Program via
// Sink, with a bubbles/progress bar and lipgloss framing.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/jivemaster/internal/cli"
	"github.com/linuxmatters/jivemaster/internal/events"
)

// stages lists the orchestrator's five named stages (spec §4.10) in
// order, keyed by the 2xxx info code that opens each one.
var stages = []struct {
	code  int
	label string
}{
	{events.CodeLoadingAnalysis, "Loading & analysis"},
	{events.CodeMatchingLevels, "Matching levels"},
	{events.CodeMatchingFrequency, "Matching frequencies"},
	{events.CodeCorrectingLevels, "Correcting levels"},
	{events.CodeFinalizeSaving, "Finalize & saving"},
}

// logLine is one warning/error surfaced below the stage tracker.
type logLine struct {
	level   events.Level
	message string
}

// doneMsg signals the pipeline goroutine has returned.
type doneMsg struct{ err error }

// quitMsg is sent after the completion screen has been shown briefly.
type quitMsg struct{}

// Model is the Bubbletea model driving the mastering console.
type Model struct {
	bar       progress.Model
	stageIdx  int
	stageDone bool
	logs      []logLine
	startTime time.Time
	elapsed   time.Duration
	err       error
	quitting  bool
	width     int
}

// NewModel creates a fresh mastering progress console.
func NewModel() *Model {
	bar := progress.New(
		progress.WithGradient(string(cli.ConsoleBlue), string(cli.ConsoleCyan)),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)
	return &Model{bar: bar, startTime: time.Now()}
}

// Sink adapts a running *tea.Program into an events.Sink: every Emit call
// forwards the event as a tea.Msg, the same pattern the teacher used to
// funnel its Pass 1 analysis goroutine's callbacks into p.Send.
type Sink struct {
	Program *tea.Program
}

func (s Sink) Emit(e events.Event) { s.Program.Send(e) }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = clampInt(msg.Width-20, 10, 50)
		return m, nil

	case events.Event:
		return m.handleEvent(msg)

	case doneMsg:
		m.err = msg.err
		m.quitting = true
		m.elapsed = time.Since(m.startTime)
		return m, tea.Tick(800*time.Millisecond, func(time.Time) tea.Msg { return quitMsg{} })

	case quitMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) handleEvent(e events.Event) (tea.Model, tea.Cmd) {
	switch e.Level {
	case events.Warning, events.Error:
		m.logs = append(m.logs, logLine{level: e.Level, message: e.Message})
	}

	for i, st := range stages {
		if st.code == e.Code {
			m.stageIdx = i
			m.stageDone = false
			return m, nil
		}
	}
	if e.Code == events.CodeTaskComplete {
		m.stageIdx = len(stages) - 1
		m.stageDone = true
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var s strings.Builder

	title := lipgloss.NewStyle().Bold(true).Foreground(cli.ConsoleBlue).Render("jivemaster")
	s.WriteString(title)
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(lipgloss.NewStyle().Foreground(cli.ConsoleAmber).Bold(true).Render("Mastering failed"))
		s.WriteString("\n\n")
		s.WriteString(m.err.Error())
		s.WriteString("\n")
		return border(s.String(), cli.ConsoleAmber)
	}

	percent := float64(m.stageIdx) / float64(len(stages)-1)
	if m.stageDone {
		percent = 1
	}
	s.WriteString(stages[m.stageIdx].label)
	s.WriteString("\n")
	s.WriteString(m.bar.ViewAs(percent))
	s.WriteString(fmt.Sprintf("  %d%%\n", int(percent*100)))

	for i, st := range stages {
		marker := "  "
		style := lipgloss.NewStyle().Foreground(cli.WarmGray)
		switch {
		case i < m.stageIdx || (i == m.stageIdx && m.stageDone):
			marker = "✓ "
			style = lipgloss.NewStyle().Foreground(cli.ConsoleGreen)
		case i == m.stageIdx:
			marker = "▸ "
			style = lipgloss.NewStyle().Foreground(cli.ConsoleCyan).Bold(true)
		}
		s.WriteString(style.Render(marker + st.label))
		s.WriteString("\n")
	}

	if len(m.logs) > 0 {
		s.WriteString("\n")
		for _, l := range m.logs {
			color := cli.ConsoleAmber
			prefix := "warn"
			if l.level == events.Error {
				prefix = "error"
			}
			s.WriteString(lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("[%s] %s", prefix, l.message)))
			s.WriteString("\n")
		}
	}

	if m.quitting {
		elapsed := m.elapsed
		if elapsed == 0 {
			elapsed = time.Since(m.startTime)
		}
		s.WriteString("\n")
		s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(cli.ConsoleGreen).Render("✓ Mastering complete"))
		s.WriteString(fmt.Sprintf("  (%s)\n", formatDuration(elapsed)))
	}

	return border(s.String(), cli.ConsoleBlue)
}

// Err returns the pipeline error, if Run() (the pipeline goroutine's
// completion) reported one.
func (m *Model) Err() error { return m.err }

// Done reports the pipeline goroutine has finished (success or error).
func Done(err error) tea.Msg { return doneMsg{err: err} }

func border(content string, color lipgloss.Color) string {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(1, 2).
		Render(content)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
