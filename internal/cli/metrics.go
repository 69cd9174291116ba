// internal/cli/metrics.go
package hetero

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strin/HeteroSampler/internal/metrics"
	"github.com/strin/HeteroSampler/internal/report"
)

type metricsOptions struct {
	features bool
	json     bool
}

var metricsOpts metricsOptions

// metricsCmd prints one summary line per run.
var metricsCmd = &cobra.Command{
	Use:   "metrics <log>...",
	Short: "Print accuracy and time metrics for one or more runs",
	Long: `Parse every log concurrently and print a summary table: logged and
recomputed accuracy, mean distance, mean time under the chosen weighting and
mask selection rate. --features adds each run's mean feature vector.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		w, err := requireWeighting(cfg)
		if err != nil {
			return err
		}
		batch, err := loadRuns(cmd.Context(), cfg, args)
		if err != nil {
			return err
		}
		summaries := make([]metrics.Summary, len(batch.Runs))
		for i, run := range batch.Runs {
			summaries[i] = metrics.Summarize(run, w)
		}

		out := cmd.OutOrStdout()
		if metricsOpts.json {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(summaries)
		}
		opts := report.TableOptions{Color: colorFor(out)}
		if err := report.WriteSummaryTable(out, summaries, opts); err != nil {
			return err
		}
		if !metricsOpts.features {
			return nil
		}
		for _, run := range batch.Runs {
			fv, err := metrics.MeanFeatureVector(run)
			if err != nil {
				return fmt.Errorf("features of %s: %w", run.Name, err)
			}
			fmt.Fprintf(out, "\nMean features: %s\n", run.Name)
			if err := report.WriteFeatureTable(out, fv, opts); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsOpts.features, "features", false, "also print each run's mean feature vector")
	metricsCmd.Flags().BoolVar(&metricsOpts.json, "json", false, "print summaries as JSON")
	rootCmd.AddCommand(metricsCmd)
}
