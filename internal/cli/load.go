package hetero

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/strin/HeteroSampler/internal/appconfig"
	"github.com/strin/HeteroSampler/internal/metrics"
	"github.com/strin/HeteroSampler/internal/record"
	"github.com/strin/HeteroSampler/internal/report"
	"github.com/strin/HeteroSampler/internal/runset"
)

// loadRuns parses paths concurrently with the configured parse options.
func loadRuns(ctx context.Context, cfg *appconfig.Config, paths []string) (*runset.Batch, error) {
	opts, err := cfg.ParseOptions()
	if err != nil {
		return nil, err
	}
	return runset.LoadAll(ctx, paths, runset.Options{Parse: opts, Workers: cfg.WorkerCount()})
}

// loadRun parses a single path with the configured parse options.
func loadRun(cfg *appconfig.Config, path string) (*record.RunRecord, error) {
	opts, err := cfg.ParseOptions()
	if err != nil {
		return nil, err
	}
	return runset.Load(path, opts)
}

// requireWeighting returns the configured time weighting or a usage error.
func requireWeighting(cfg *appconfig.Config) (metrics.TimeWeighting, error) {
	w, err := cfg.TimeWeighting()
	if errors.Is(err, metrics.ErrWeightingRequired) {
		return w, errors.New("time weighting required: pass --weighting raw|length or set metrics.time_weighting")
	}
	return w, err
}

// splitNames parses a comma-separated --names value; empty means none.
func splitNames(s string, want int) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	names := strings.Split(s, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	if len(names) != want {
		return nil, fmt.Errorf("--names lists %d name(s) for %d run(s)", len(names), want)
	}
	return names, nil
}

// colorFor reports whether output to w should be coloured.
func colorFor(w any) bool {
	f, ok := w.(*os.File)
	return ok && report.ColorEnabled(f)
}
