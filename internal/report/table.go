package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/strin/HeteroSampler/internal/compare"
	"github.com/strin/HeteroSampler/internal/metrics"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))

// TableOptions controls table rendering.
type TableOptions struct {
	Color bool
}

// WriteTable aligns rows under header with tabwriter and styles the header
// line when colour is on.
func WriteTable(w io.Writer, opts TableOptions, header []string, rows [][]string) error {
	var buf strings.Builder
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	out := buf.String()
	if opts.Color {
		// style after alignment so escape codes do not skew column widths
		head, rest, _ := strings.Cut(out, "\n")
		out = headerStyle.Render(head) + "\n" + rest
	}
	_, err := io.WriteString(w, out)
	return err
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// WriteSummaryTable prints one line per run summary.
func WriteSummaryTable(w io.Writer, summaries []metrics.Summary, opts TableOptions) error {
	header := []string{"RUN", "EXAMPLES", "TOKENS", "ACCURACY", "TOKEN ACC", "MEAN DIST", "MEAN TIME", "WEIGHTING", "TIME SD", "SELECTED", "WARNINGS"}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		weighting := s.Weighting
		if weighting == "" {
			weighting = "-"
		}
		rows = append(rows, []string{
			s.Name,
			strconv.Itoa(s.Examples),
			strconv.Itoa(s.Tokens),
			formatOptional(s.Accuracy),
			formatFloat(s.TokenAccuracy),
			formatFloat(s.MeanDistance),
			formatOptional(s.MeanTime),
			weighting,
			formatFloat(s.Time.StdDev),
			formatOptional(s.SelectionRate),
			strconv.Itoa(s.Warnings),
		})
	}
	return WriteTable(w, opts, header, rows)
}

// WriteFeatureTable prints a feature vector sorted by name.
func WriteFeatureTable(w io.Writer, features map[string]float64, opts TableOptions) error {
	keys := make([]string, 0, len(features))
	for k := range features {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, formatFloat(features[k])})
	}
	return WriteTable(w, opts, []string{"FEATURE", "MEAN"}, rows)
}

// WriteSweepTable prints the time/accuracy trade-off, fastest run first.
func WriteSweepTable(w io.Writer, points []metrics.SweepPoint, opts TableOptions) error {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		acc := formatFloat(p.Accuracy)
		if p.Recomputed {
			acc += " (from dist)"
		}
		frontier := ""
		if p.Frontier {
			frontier = "*"
		}
		rows = append(rows, []string{p.Name, formatFloat(p.MeanTime), acc, frontier})
	}
	return WriteTable(w, opts, []string{"RUN", "MEAN TIME", "ACCURACY", "FRONTIER"}, rows)
}

// WriteComparisonSummary prints per-run win/loss counts of a comparison.
func WriteComparisonSummary(w io.Writer, rep *compare.Report, opts TableOptions) error {
	rows := make([][]string, 0, len(rep.Summary))
	for _, s := range rep.Summary {
		rows = append(rows, []string{
			s.Name,
			strconv.Itoa(s.Tokens),
			strconv.Itoa(s.Correct),
			strconv.Itoa(s.Wins),
			strconv.Itoa(s.Losses),
			strconv.Itoa(s.Selected),
		})
	}
	return WriteTable(w, opts, []string{"RUN", "TOKENS", "CORRECT", "WINS", "LOSSES", "SELECTED"}, rows)
}
