// internal/cli/oracle.go
package hetero

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strin/HeteroSampler/internal/metrics"
	"github.com/strin/HeteroSampler/internal/report"
)

// oracleCmd reports the best-of-two accuracy of a pair of runs.
var oracleCmd = &cobra.Command{
	Use:   "oracle <log-a> <log-b>",
	Short: "Accuracy of picking the better of two runs per example",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		batch, err := loadRuns(cmd.Context(), getConfig(), args)
		if err != nil {
			return err
		}
		a, b := batch.Runs[0], batch.Runs[1]
		oracle, err := metrics.OracleAccuracy(a, b)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		rows := [][]string{}
		for _, run := range batch.Runs {
			s := metrics.Summarize(run, metrics.WeightUnset)
			rows = append(rows, []string{run.Name, accuracyText(run.Accuracy), fmt.Sprintf("%.4f", s.TokenAccuracy)})
		}
		if err := report.WriteTable(out, report.TableOptions{Color: colorFor(out)}, []string{"RUN", "ACCURACY", "TOKEN ACC"}, rows); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nOracle accuracy: %.4f\n", oracle)
		return nil
	},
}

func accuracyText(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *v)
}

func init() {
	rootCmd.AddCommand(oracleCmd)
}
