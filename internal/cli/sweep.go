// internal/cli/sweep.go
package hetero

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/strin/HeteroSampler/internal/metrics"
	"github.com/strin/HeteroSampler/internal/report"
	"github.com/strin/HeteroSampler/internal/runset"
)

type sweepOptions struct {
	manifest string
	json     bool
}

var sweepOpts sweepOptions

// sweepCmd tabulates the time/accuracy trade-off of a run set.
var sweepCmd = &cobra.Command{
	Use:   "sweep [--manifest runs.yaml | <log>...]",
	Short: "Tabulate time against accuracy over a set of runs",
	Long: `Place every run of a sweep on the time/accuracy plane, fastest first, and
mark the runs no other run beats on both axes. Runs come from a YAML manifest
or from the positional arguments. Manifest settings apply unless the matching
flag is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *getConfig()
		paths := args
		var labels []string
		if sweepOpts.manifest != "" {
			m, err := runset.LoadManifest(sweepOpts.manifest)
			if err != nil {
				return err
			}
			if m.Weighting != "" && !cmd.Flags().Changed("weighting") {
				cfg.Metrics.TimeWeighting = m.Weighting
			}
			if m.FeatureMode != "" && !cmd.Flags().Changed("feature-mode") {
				cfg.Parse.FeatureMode = m.FeatureMode
			}
			if m.SkipBlankLines != nil && !cmd.Flags().Changed("skip-blank-lines") {
				cfg.Parse.SkipBlankLines = *m.SkipBlankLines
			}
			paths = append(m.Paths(), args...)
			labels = m.Labels()
		}
		if len(paths) == 0 {
			return errors.New("no runs: pass --manifest or one or more logs")
		}

		w, err := requireWeighting(&cfg)
		if err != nil {
			return err
		}
		batch, err := loadRuns(cmd.Context(), &cfg, paths)
		if err != nil {
			return err
		}
		for i := range labels {
			batch.Runs[i].Name = labels[i]
		}
		points, err := metrics.Sweep(batch.Runs, w)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if sweepOpts.json {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(points)
		}
		return report.WriteSweepTable(out, points, report.TableOptions{Color: colorFor(out)})
	},
}

func init() {
	sweepCmd.Flags().StringVarP(&sweepOpts.manifest, "manifest", "m", "", "YAML manifest listing the runs")
	sweepCmd.Flags().BoolVar(&sweepOpts.json, "json", false, "print sweep points as JSON")
	rootCmd.AddCommand(sweepCmd)
}
