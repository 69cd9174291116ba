// internal/cli/inspect.go
package hetero

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strin/HeteroSampler/internal/metrics"
	"github.com/strin/HeteroSampler/internal/record"
	"github.com/strin/HeteroSampler/internal/report"
)

var inspectJSON bool

// inspectCmd parses one log and prints what it contains.
var inspectCmd = &cobra.Command{
	Use:   "inspect <log>",
	Short: "Parse a log and print its run summary",
	Long: `Parse one experiment log (or a run directory holding policy.xml, stop.xml or
experiment.xml) and print the recovered accuracy, arguments, learned parameters,
example counts and any parse warnings.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		run, err := loadRun(cfg, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if inspectJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		}
		w, _ := cfg.TimeWeighting()
		return writeInspect(out, run, metrics.Summarize(run, w), colorFor(out))
	},
}

func writeInspect(out io.Writer, run *record.RunRecord, s metrics.Summary, color bool) error {
	fmt.Fprintf(out, "Run:       %s\n", run.Name)
	fmt.Fprintf(out, "Examples:  %d (%d tokens)\n", s.Examples, s.Tokens)
	acc := "not logged"
	if run.HasAccuracy() {
		acc = strconv.FormatFloat(*run.Accuracy, 'f', 4, 64)
	}
	fmt.Fprintf(out, "Accuracy:  %s (token accuracy %.4f)\n", acc, s.TokenAccuracy)
	if s.MeanTime != nil {
		fmt.Fprintf(out, "Mean time: %.4f (%s)\n", *s.MeanTime, s.Weighting)
	}
	if s.SelectionRate != nil {
		fmt.Fprintf(out, "Selected:  %d tokens (%.2f%%)\n", s.MaskedTokens, *s.SelectionRate*100)
	}
	if run.CorpusReference != "" {
		fmt.Fprintf(out, "Corpus:    %s\n", run.CorpusReference)
	}
	if run.EmissionInterval != nil {
		fmt.Fprintf(out, "Test lag:  %g\n", *run.EmissionInterval)
	}
	if n := len(run.ScoreTrace); n > 0 {
		fmt.Fprintf(out, "Scores:    %d test pass(es), last %.4f\n", n, run.ScoreTrace[n-1])
	}
	if len(run.Args) > 0 {
		keys := make([]string, 0, len(run.Args))
		for k := range run.Args {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + "=" + run.Args[k]
		}
		fmt.Fprintf(out, "Args:      %s\n", strings.Join(pairs, " "))
	}
	if len(run.Parameters) > 0 {
		fmt.Fprintf(out, "\nParameters (%d):\n", len(run.Parameters))
		keys := make([]string, 0, len(run.Parameters))
		for k := range run.Parameters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([][]string, len(keys))
		for i, k := range keys {
			rows[i] = []string{k, strconv.FormatFloat(run.Parameters[k], 'g', -1, 64)}
		}
		if err := report.WriteTable(out, report.TableOptions{Color: color}, []string{"FEATURE", "WEIGHT"}, rows); err != nil {
			return err
		}
	}
	if len(run.Warnings) > 0 {
		fmt.Fprintf(out, "\nWarnings (%d):\n", len(run.Warnings))
		for _, w := range run.Warnings {
			fmt.Fprintf(out, "  %s\n", w)
		}
	}
	return nil
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the parsed run record as JSON")
	rootCmd.AddCommand(inspectCmd)
}
