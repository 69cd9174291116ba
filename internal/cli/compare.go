// internal/cli/compare.go
package hetero

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/strin/HeteroSampler/internal/appconfig"
	"github.com/strin/HeteroSampler/internal/compare"
	"github.com/strin/HeteroSampler/internal/corpus"
	"github.com/strin/HeteroSampler/internal/logging"
	"github.com/strin/HeteroSampler/internal/report"
)

type compareOptions struct {
	names  string
	output string
	title  string
}

var compareOpts compareOptions

// compareCmd aligns several runs of the same test set and renders the result.
var compareCmd = &cobra.Command{
	Use:   "compare <log> <log>...",
	Short: "Compare runs token by token",
	Long: `Align the examples of several runs over the same test set and mark, per
token, whether every run agrees or which runs are correct. Output is a coloured
terminal view, a standalone HTML page or JSON. --corpus annotates each word with
its training-corpus tag posterior.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		rep, err := buildComparison(cmd.Context(), cfg, args, compareOpts.names)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if compareOpts.output != "" {
			f, err := os.Create(compareOpts.output)
			if err != nil {
				return fmt.Errorf("create output %s: %w", compareOpts.output, err)
			}
			defer f.Close()
			out = f
		}
		title := compareOpts.title
		if title == "" {
			title = strings.Join(rep.RunNames, " vs ")
		}
		if err := renderComparison(out, cfg.CompareFormat(), rep, title); err != nil {
			return err
		}
		if compareOpts.output != "" {
			cmd.Printf("Report written to %s\n", compareOpts.output)
		}
		return nil
	},
}

// buildComparison loads the runs and compares them with the configured
// corpus oracle and row filter.
func buildComparison(ctx context.Context, cfg *appconfig.Config, paths []string, names string) (*compare.Report, error) {
	labels, err := splitNames(names, len(paths))
	if err != nil {
		return nil, err
	}
	batch, err := loadRuns(ctx, cfg, paths)
	if err != nil {
		return nil, err
	}
	if labels == nil {
		for _, run := range batch.Runs {
			labels = append(labels, filepath.Base(run.Name))
		}
	}

	opts := compare.Options{OnlyDisagreements: cfg.Compare.OnlyDiff}
	mode, err := cfg.CorpusMode()
	if err != nil {
		return nil, err
	}
	if path := strings.TrimSpace(cfg.Compare.Corpus); path != "" {
		post, err := corpus.LoadPosterior(path, mode)
		if err != nil {
			return nil, err
		}
		opts.Posterior = post
	} else if len(batch.Runs) > 0 {
		if post := referencedPosterior(batch.Runs[0].CorpusReference, batch.Paths[0], mode); post != nil {
			opts.Posterior = post
		}
	}

	rep, err := compare.Compare(batch.Runs, labels, opts)
	if err != nil {
		return nil, err
	}
	logging.LogRun("compare", strings.Join(labels, ","), "compared", map[string]any{
		"examples": rep.Examples,
		"rows":     len(rep.Rows),
	})
	return rep, nil
}

// referencedPosterior loads the corpus named in the first run's args. Relative
// references are tried from the working directory, then next to the log. A
// missing or unreadable corpus only drops the annotation.
func referencedPosterior(ref, logPath string, mode corpus.Mode) corpus.Posterior {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	candidates := []string{ref}
	if !filepath.IsAbs(ref) {
		candidates = append(candidates, filepath.Join(filepath.Dir(logPath), ref))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		post, err := corpus.LoadPosterior(path, mode)
		if err != nil {
			logging.Warn("corpus %s referenced by %s: %v", path, logPath, err)
			return nil
		}
		logging.LogRun("compare", logPath, "corpus", map[string]any{"corpus": path})
		return post
	}
	logging.Warn("corpus %s referenced by %s not found; skipping posteriors", ref, logPath)
	return nil
}

func renderComparison(out io.Writer, format string, rep *compare.Report, title string) error {
	switch format {
	case "html":
		return report.WriteHTML(out, rep, title)
	case "json":
		return report.WriteJSON(out, rep)
	case "terminal":
		color := colorFor(out)
		if err := report.WriteTerminal(out, rep, report.TerminalOptions{Color: color}); err != nil {
			return err
		}
		return report.WriteComparisonSummary(out, rep, report.TableOptions{Color: color})
	default:
		return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(appconfig.Formats, ", "))
	}
}

func init() {
	compareCmd.Flags().StringVar(&compareOpts.names, "names", "", "comma-separated run labels, one per log")
	compareCmd.Flags().StringVarP(&compareOpts.output, "output", "o", "", "write the report to this file instead of stdout")
	compareCmd.Flags().StringVar(&compareOpts.title, "title", "", "report title (default: run labels)")
	compareCmd.Flags().String("format", "", "output format: terminal, html or json")
	compareCmd.Flags().String("corpus", "", "training corpus for word tag posteriors")
	compareCmd.Flags().String("corpus-mode", "", "corpus tag column: auto, pos or ner")
	compareCmd.Flags().Bool("only-diff", false, "only show examples where the runs disagree")

	_ = viper.BindPFlag("compare.format", compareCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("compare.corpus", compareCmd.Flags().Lookup("corpus"))
	_ = viper.BindPFlag("compare.corpus_mode", compareCmd.Flags().Lookup("corpus-mode"))
	_ = viper.BindPFlag("compare.only_diff", compareCmd.Flags().Lookup("only-diff"))

	rootCmd.AddCommand(compareCmd)
}
