package runset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/strin/HeteroSampler/internal/logging"
	"github.com/strin/HeteroSampler/internal/record"
	"github.com/strin/HeteroSampler/internal/schema"
)

// LogFileNames are the log names the runner writes inside an output
// directory, in lookup order.
var LogFileNames = []string{"policy.xml", "stop.xml", "experiment.xml"}

// ResolveLogPath maps a run directory to the log inside it. File paths are
// returned unchanged.
func ResolveLogPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat run %s: %w", path, err)
	}
	if !info.IsDir() {
		return path, nil
	}
	for _, name := range LogFileNames {
		candidate := filepath.Join(path, name)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("run directory %s contains none of %v", path, LogFileNames)
}

// Options controls a batch load.
type Options struct {
	Parse schema.Options
	// Workers bounds concurrent parses; zero means GOMAXPROCS.
	Workers int
	// SkipFailed logs and drops runs that fail to parse instead of failing the batch.
	SkipFailed bool
}

// Failure records a run dropped under SkipFailed.
type Failure struct {
	Path string
	Err  error
}

// Batch is the result of one LoadAll call. Runs and Paths are index-aligned
// and keep the input order, minus any failures.
type Batch struct {
	ID     uuid.UUID
	Runs   []*record.RunRecord
	Paths  []string
	Failed []Failure
}

// LoadAll parses every path concurrently, one run per log. Each parse is
// independent; the first error cancels the rest unless SkipFailed is set.
func LoadAll(ctx context.Context, paths []string, opts Options) (*Batch, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	runs := make([]*record.RunRecord, len(paths))
	resolved := make([]string, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			run, logPath, err := loadOne(p, opts.Parse)
			if err != nil {
				if opts.SkipFailed {
					errs[i] = err
					return nil
				}
				return err
			}
			runs[i] = run
			resolved[i] = logPath
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := &Batch{ID: uuid.New()}
	for i := range paths {
		if errs[i] != nil {
			logging.Warn("skipping run %s: %v", paths[i], errs[i])
			b.Failed = append(b.Failed, Failure{Path: paths[i], Err: errs[i]})
			continue
		}
		b.Runs = append(b.Runs, runs[i])
		b.Paths = append(b.Paths, resolved[i])
	}
	logging.LogEvent("[PARSE] batch %s loaded %d run(s), %d failed", b.ID, len(b.Runs), len(b.Failed))
	return b, nil
}

func loadOne(path string, opts schema.Options) (*record.RunRecord, string, error) {
	logPath, err := ResolveLogPath(path)
	if err != nil {
		return nil, "", err
	}
	run, err := schema.ParseFile(logPath, opts)
	if err != nil {
		return nil, "", err
	}
	run.Name = path
	for _, w := range run.Warnings {
		logging.Warn("%s: %s", logPath, w)
	}
	logging.LogRun("parse", path, "loaded", map[string]any{
		"log":      logPath,
		"examples": len(run.Examples),
		"warnings": len(run.Warnings),
	})
	return run, logPath, nil
}

// Load parses a single run path, resolving directories like LoadAll.
func Load(path string, opts schema.Options) (*record.RunRecord, error) {
	run, _, err := loadOne(path, opts)
	return run, err
}
