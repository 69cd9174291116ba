// Package compare aligns several runs over the same test set token by token
// and classifies every prediction for display.
package compare

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"strconv"
	"strings"

	"github.com/strin/HeteroSampler/internal/record"
)

var (
	// ErrRecordCountMismatch reports runs with different numbers of examples.
	ErrRecordCountMismatch = errors.New("record count mismatch")
	// ErrNoRuns reports a comparison called without input.
	ErrNoRuns = errors.New("no runs to compare")
)

// PosteriorSource looks up the corpus tag distribution of a word.
type PosteriorSource interface {
	Lookup(word string) (map[string]float64, bool)
}

// Options tunes a comparison.
type Options struct {
	// Posterior, when set, annotates every word with its corpus tag posterior.
	Posterior PosteriorSource
	// OnlyDisagreements drops rows where every run agrees at every position.
	OnlyDisagreements bool
}

// Compare aligns runs example by example. names labels the runs in the report;
// nil falls back to each run's Name. Inputs are never modified.
func Compare(runs []*record.RunRecord, names []string, opts Options) (*Report, error) {
	if len(runs) == 0 {
		return nil, ErrNoRuns
	}
	if names == nil {
		for _, r := range runs {
			names = append(names, r.Name)
		}
	}
	if len(names) != len(runs) {
		return nil, fmt.Errorf("got %d names for %d runs", len(names), len(runs))
	}
	count := len(runs[0].Examples)
	for i, r := range runs[1:] {
		if len(r.Examples) != count {
			return nil, fmt.Errorf("%w: %s has %d examples, %s has %d",
				ErrRecordCountMismatch, names[i+1], len(r.Examples), names[0], count)
		}
	}

	rep := &Report{
		RunNames: append([]string(nil), names...),
		Examples: count,
		Summary:  make([]RunSummary, len(runs)),
	}
	for n := range runs {
		rep.Summary[n].Name = names[n]
	}
	for i := 0; i < count; i++ {
		row, err := alignExample(runs, names, i, opts)
		if err != nil {
			return nil, err
		}
		tally(rep.Summary, row)
		if opts.OnlyDisagreements && row.Disagreements == 0 {
			continue
		}
		rep.Rows = append(rep.Rows, row)
	}
	return rep, nil
}

func alignExample(runs []*record.RunRecord, names []string, i int, opts Options) (Row, error) {
	first := runs[0].Examples[i]
	truth, err := record.SplitTokens(first.Truth)
	if err != nil {
		return Row{}, fmt.Errorf("%s example %d truth: %w", names[0], i, err)
	}
	n := len(truth)
	row := Row{
		Index:     i,
		Key:       first.Key,
		Words:     record.Words(truth),
		TruthTags: record.Tags(truth),
		Runs:      make([]RunRow, len(runs)),
	}

	for r, run := range runs {
		ex := run.Examples[i]
		pred, err := record.SplitTokens(ex.Predicted)
		if err != nil {
			return Row{}, fmt.Errorf("%s example %d predicted: %w", names[r], i, err)
		}
		if err := checkLengths(ex, n, len(pred)); err != nil {
			return Row{}, fmt.Errorf("%s example %d: %w", names[r], i, err)
		}
		rr := RunRow{
			Name:     names[r],
			Tags:     record.Tags(pred),
			Colors:   make([]Color, n),
			Correct:  make([]bool, n),
			HasMask:  ex.HasMask(),
			Selected: make([]bool, n),
		}
		hasFeatures := ex.Features != nil || ex.TokenFeatures != nil
		if hasFeatures {
			rr.Features = make([]map[string]float64, n)
		}
		for j := 0; j < n; j++ {
			rr.Correct[j] = rr.Tags[j] == row.TruthTags[j]
			rr.Selected[j] = ex.HasMask() && ex.Mask[j] == 1
			if hasFeatures {
				rr.Features[j] = maps.Clone(ex.FeaturesAt(j))
			}
		}
		row.Runs[r] = rr
	}

	for j := 0; j < n; j++ {
		agree := true
		for r := 1; r < len(runs); r++ {
			if row.Runs[r].Tags[j] != row.Runs[0].Tags[j] {
				agree = false
				break
			}
		}
		if !agree {
			row.Disagreements++
		}
		for r := range row.Runs {
			switch {
			case agree:
				row.Runs[r].Colors[j] = ColorNeutral
			case row.Runs[r].Correct[j]:
				row.Runs[r].Colors[j] = ColorCorrect
			default:
				row.Runs[r].Colors[j] = ColorIncorrect
			}
		}
	}

	if opts.Posterior != nil {
		row.Posteriors = make([]Posterior, n)
		for j, w := range row.Words {
			if tags, ok := opts.Posterior.Lookup(w); ok {
				row.Posteriors[j] = Posterior{Seen: true, Tags: maps.Clone(tags)}
			}
		}
	}
	return row, nil
}

// checkLengths enforces that every token-aligned field of ex has n entries.
func checkLengths(ex record.ExampleRecord, n, predicted int) error {
	if predicted != n {
		return fmt.Errorf("%w: truth has %d tokens, predicted has %d", record.ErrLengthMismatch, n, predicted)
	}
	if t := record.TokenCount(ex.Truth); t != n {
		return fmt.Errorf("%w: truth has %d tokens, reference truth has %d", record.ErrLengthMismatch, t, n)
	}
	if ex.Mask != nil && len(ex.Mask) != n {
		return fmt.Errorf("%w: truth has %d tokens, mask has %d", record.ErrLengthMismatch, n, len(ex.Mask))
	}
	if ex.TokenFeatures != nil && len(ex.TokenFeatures) != n {
		return fmt.Errorf("%w: truth has %d tokens, %d feature blocks", record.ErrLengthMismatch, n, len(ex.TokenFeatures))
	}
	return nil
}

func tally(sum []RunSummary, row Row) {
	for r, rr := range row.Runs {
		s := &sum[r]
		for j := range rr.Tags {
			s.Tokens++
			if rr.Correct[j] {
				s.Correct++
			}
			if rr.Selected[j] {
				s.Selected++
			}
			switch rr.Colors[j] {
			case ColorCorrect:
				s.Wins++
			case ColorIncorrect:
				s.Losses++
			}
		}
	}
}

// formatFeatures renders a feature map as "name: value" pairs in name order.
func formatFeatures(m map[string]float64) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + strconv.FormatFloat(m[k], 'g', 4, 64)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
