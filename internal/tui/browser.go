// internal/tui/browser.go
// Package tui is the interactive comparison browser started by 'hetero browse'.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/strin/HeteroSampler/internal/compare"
	"github.com/strin/HeteroSampler/internal/report"
)

const (
	headerHeight = 2
	footerHeight = 2
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	badgeStyle  = lipgloss.NewStyle().Background(lipgloss.Color("229")).Foreground(lipgloss.Color("0")).Padding(0, 1).MarginLeft(1)
)

// model steps through the rows of a comparison report one example at a time.
type model struct {
	report   *compare.Report
	title    string
	color    bool
	current  int
	viewport viewport.Model
	width    int
	height   int
}

func newModel(rep *compare.Report, title string, color bool) *model {
	m := &model{
		report:   rep,
		title:    title,
		color:    color,
		viewport: viewport.New(100, 20),
	}
	m.refresh()
	return m
}

func (m *model) Init() tea.Cmd {
	return nil
}

// Update handles navigation keys and forwards the rest to the viewport.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "n", "right":
			m.jump(1)
			return m, nil
		case "p", "left":
			m.jump(-1)
			return m, nil
		case "N":
			m.jumpDisagreement(1)
			return m, nil
		case "P":
			m.jumpDisagreement(-1)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 1)
		m.refresh()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *model) jump(delta int) {
	next := m.current + delta
	if next < 0 || next >= len(m.report.Rows) {
		return
	}
	m.current = next
	m.refresh()
}

// jumpDisagreement moves to the nearest row in direction delta that has at
// least one disagreement.
func (m *model) jumpDisagreement(delta int) {
	for i := m.current + delta; i >= 0 && i < len(m.report.Rows); i += delta {
		if m.report.Rows[i].Disagreements > 0 {
			m.current = i
			m.refresh()
			return
		}
	}
}

func (m *model) refresh() {
	if len(m.report.Rows) == 0 {
		m.viewport.SetContent("No examples to show.")
		return
	}
	m.viewport.SetContent(m.rowContent())
	m.viewport.GotoTop()
}

// rowContent is the rendered row followed by the features of every
// position where the runs disagree.
func (m *model) rowContent() string {
	var b strings.Builder
	b.WriteString(report.RenderRow(m.report, m.current, report.TerminalOptions{Color: m.color}))
	row := m.report.Rows[m.current]
	if row.Disagreements == 0 {
		return b.String()
	}
	b.WriteString("\nDisagreements:\n")
	for pos, word := range row.Words {
		if row.Runs[0].Colors[pos] == compare.ColorNeutral {
			continue
		}
		fmt.Fprintf(&b, "  %d %s (truth %s)\n", pos, word, row.TruthTags[pos])
		for r, rr := range row.Runs {
			line := fmt.Sprintf("    %-12s %-6s", rr.Name, rr.Tags[pos])
			if tip := row.Tooltip(r, pos); tip != "" {
				line += " " + tip
			}
			b.WriteString(strings.TrimRight(line, " ") + "\n")
		}
	}
	return b.String()
}

func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}
	header := headerStyle.Render(m.title)
	if n := len(m.report.Rows); n > 0 {
		header += badgeStyle.Render(fmt.Sprintf("example %d/%d", m.current+1, n))
	}
	footer := footerStyle.Render("n/p next/prev  N/P next/prev disagreement  up/down scroll  q quit")
	return fmt.Sprintf("%s\n\n%s\n\n%s", header, m.viewport.View(), footer)
}

// Run starts the browser on rep and blocks until the user quits.
func Run(rep *compare.Report, title string, color bool) error {
	p := tea.NewProgram(newModel(rep, title, color), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}
