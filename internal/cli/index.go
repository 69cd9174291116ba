// internal/cli/index.go
package hetero

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/strin/HeteroSampler/internal/metrics"
	"github.com/strin/HeteroSampler/internal/report"
	"github.com/strin/HeteroSampler/internal/runset"
	"github.com/strin/HeteroSampler/internal/store"
)

var indexSkipFailed bool

// indexCmd records run summaries in the SQLite run index.
var indexCmd = &cobra.Command{
	Use:   "index <log>...",
	Short: "Add runs to the run index",
	Long: `Parse the given logs and store one summary row per run, plus its learned
parameters, in the SQLite run index (--db or store.path). Runs indexed together
share a batch id.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		opts, err := cfg.ParseOptions()
		if err != nil {
			return err
		}
		batch, err := runset.LoadAll(cmd.Context(), args, runset.Options{
			Parse:      opts,
			Workers:    cfg.WorkerCount(),
			SkipFailed: indexSkipFailed,
		})
		if err != nil {
			return err
		}
		w, _ := cfg.TimeWeighting()

		s, err := store.Open(cmd.Context(), cfg.StorePath())
		if err != nil {
			return err
		}
		defer s.Close()
		for i, run := range batch.Runs {
			if _, err := s.Put(cmd.Context(), batch.ID, batch.Paths[i], run, metrics.Summarize(run, w)); err != nil {
				return err
			}
		}
		cmd.Printf("Indexed %d run(s) into %s (batch %s)\n", len(batch.Runs), cfg.StorePath(), batch.ID)
		for _, f := range batch.Failed {
			cmd.Printf("Skipped %s: %v\n", f.Path, f.Err)
		}
		return nil
	},
}

// indexListCmd prints the run index.
var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		s, err := store.Open(cmd.Context(), cfg.StorePath())
		if err != nil {
			return err
		}
		defer s.Close()
		entries, err := s.List(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No runs indexed.")
			return nil
		}
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{
				strconv.FormatInt(e.ID, 10),
				shortBatch(e.BatchID),
				e.Name,
				strconv.Itoa(e.Examples),
				accuracyText(e.Accuracy),
				accuracyText(e.MeanTimeRaw),
				accuracyText(e.MeanTimeLength),
				parameterNames(e.Parameters),
			})
		}
		header := []string{"ID", "BATCH", "RUN", "EXAMPLES", "ACCURACY", "TIME RAW", "TIME LENGTH", "PARAMETERS"}
		return report.WriteTable(out, report.TableOptions{Color: colorFor(out)}, header, rows)
	},
}

func shortBatch(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func parameterNames(params map[string]float64) string {
	if len(params) == 0 {
		return "-"
	}
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	const limit = 4
	if len(names) > limit {
		return strings.Join(names[:limit], ",") + fmt.Sprintf(",+%d", len(names)-limit)
	}
	return strings.Join(names, ",")
}

func init() {
	indexCmd.PersistentFlags().String("db", "", "run index path (default hetero.db)")
	_ = viper.BindPFlag("store.path", indexCmd.PersistentFlags().Lookup("db"))
	indexCmd.Flags().BoolVar(&indexSkipFailed, "skip-failed", false, "index the runs that parse and report the rest")

	indexCmd.AddCommand(indexListCmd)
	rootCmd.AddCommand(indexCmd)
}
