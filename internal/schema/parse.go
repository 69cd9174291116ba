// Package schema turns the element stream of one experiment log into a
// record.RunRecord using an ordered table of path rules.
package schema

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/strin/HeteroSampler/internal/record"
	"github.com/strin/HeteroSampler/internal/scilog"
)

// FeatureMode decides how feat blocks attach to an example.
type FeatureMode int

const (
	// FeatureAuto keeps a single block per example and one block per token otherwise.
	FeatureAuto FeatureMode = iota
	// FeatureExample merges every block into the example's feature map.
	FeatureExample
	// FeatureToken always stores blocks per token.
	FeatureToken
)

func (m FeatureMode) String() string {
	switch m {
	case FeatureExample:
		return "example"
	case FeatureToken:
		return "token"
	default:
		return "auto"
	}
}

// ParseFeatureMode maps a config value to a FeatureMode. Empty means auto.
func ParseFeatureMode(s string) (FeatureMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FeatureAuto, nil
	case "example":
		return FeatureExample, nil
	case "token":
		return FeatureToken, nil
	default:
		return FeatureAuto, fmt.Errorf("unknown feature mode %q (want auto, example or token)", s)
	}
}

// Options controls a single parse.
type Options struct {
	FeatureMode    FeatureMode
	SkipBlankLines bool
}

// Parse drains r and returns the run it describes. Non-fatal diagnostics are
// collected in the run's Warnings.
func Parse(r io.Reader, name string, opts Options) (*record.RunRecord, error) {
	x := newExtractor(name, opts.FeatureMode)
	b := scilog.NewBuilder(name, scilog.BuilderOptions{SkipBlankLines: opts.SkipBlankLines})
	if err := b.Run(r, x); err != nil {
		return nil, err
	}
	x.finish()
	run := x.run
	run.Warnings = append(append(run.Warnings, b.Warnings()...), x.warnings...)
	return run, nil
}

// ParseFile parses the log at path; the run is named after the path.
func ParseFile(path string, opts Options) (*record.RunRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}
	defer f.Close()
	run, err := Parse(f, path, opts)
	if err != nil {
		return nil, fmt.Errorf("parse log %s: %w", path, err)
	}
	return run, nil
}
