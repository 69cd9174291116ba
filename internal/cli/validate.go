// internal/cli/validate.go
package hetero

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strin/HeteroSampler/internal/logging"
	"github.com/strin/HeteroSampler/internal/report"
)

// validateCmd checks saved JSON reports against the report schema.
var validateCmd = &cobra.Command{
	Use:   "validate <report.json>...",
	Short: "Check exported comparison reports against the JSON Schema",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var failed int
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read report %s: %w", path, err)
			}
			if err := report.ValidateJSON(data); err != nil {
				failed++
				logging.Warn("%s: %v", path, err)
				cmd.Printf("%s: invalid: %v\n", path, err)
				continue
			}
			cmd.Printf("%s: valid\n", path)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d report(s) failed validation", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
