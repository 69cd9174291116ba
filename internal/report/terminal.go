package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/strin/HeteroSampler/internal/compare"
)

var (
	rowTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	rowBadgeStyle = lipgloss.NewStyle().Faint(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// TerminalOptions controls terminal rendering.
type TerminalOptions struct {
	// Color enables ANSI colours; see ColorEnabled.
	Color bool
}

// ColorEnabled reports whether f is an interactive terminal that should get colour.
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type palette struct {
	enabled bool
}

func (p palette) paint(c compare.Color, selected bool, text string) string {
	var attrs []color.Attribute
	switch c {
	case compare.ColorCorrect:
		attrs = append(attrs, color.FgGreen)
	case compare.ColorIncorrect:
		attrs = append(attrs, color.FgRed)
	}
	if selected {
		attrs = append(attrs, color.Underline)
	}
	if len(attrs) == 0 {
		return text
	}
	col := color.New(attrs...)
	if p.enabled {
		col.EnableColor()
	} else {
		col.DisableColor()
	}
	return col.Sprint(text)
}

// RenderTerminal returns rep as aligned, coloured text blocks, one per example.
// Selected positions are underlined, or marked with '*' when colour is off.
func RenderTerminal(rep *compare.Report, opts TerminalOptions) string {
	var b strings.Builder
	for i := range rep.Rows {
		b.WriteString(RenderRow(rep, i, opts))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderRow renders the i-th row of rep the same way RenderTerminal does,
// without the trailing blank line.
func RenderRow(rep *compare.Report, i int, opts TerminalOptions) string {
	p := palette{enabled: opts.Color}
	labelWidth := len("Truth")
	for _, name := range rep.RunNames {
		labelWidth = max(labelWidth, len(name))
	}
	label := func(s string) string {
		padded := fmt.Sprintf("%-*s", labelWidth, s)
		if opts.Color {
			return labelStyle.Render(padded)
		}
		return padded
	}

	var b strings.Builder
	row := rep.Rows[i]
	title := fmt.Sprintf("#%d", row.Index)
	badge := fmt.Sprintf("%d disagreement(s)", row.Disagreements)
	if row.Key != "" {
		badge = row.Key + ", " + badge
	}
	if opts.Color {
		title = rowTitleStyle.Render(title)
		badge = rowBadgeStyle.Render(badge)
	}
	fmt.Fprintf(&b, "%s %s\n", title, badge)

	widths := make([]int, len(row.Words))
	for j := range row.Words {
		widths[j] = max(len(row.Words[j]), len(row.TruthTags[j]))
		for _, rr := range row.Runs {
			widths[j] = max(widths[j], len(rr.Tags[j])+1)
		}
	}

	b.WriteString(label("Words"))
	for j, w := range row.Words {
		fmt.Fprintf(&b, "  %-*s", widths[j], w)
	}
	b.WriteString("\n")
	b.WriteString(label("Truth"))
	for j, t := range row.TruthTags {
		fmt.Fprintf(&b, "  %-*s", widths[j], t)
	}
	b.WriteString("\n")
	for _, rr := range row.Runs {
		b.WriteString(label(rr.Name))
		for j, tag := range rr.Tags {
			text := tag
			if rr.Selected[j] && !opts.Color {
				text += "*"
			}
			pad := strings.Repeat(" ", widths[j]-len(text))
			b.WriteString("  " + p.paint(rr.Colors[j], rr.Selected[j], text) + pad)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// WriteTerminal renders rep to w.
func WriteTerminal(w io.Writer, rep *compare.Report, opts TerminalOptions) error {
	_, err := io.WriteString(w, RenderTerminal(rep, opts))
	return err
}
