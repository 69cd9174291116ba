// internal/cli/schema.go
package hetero

import (
	"github.com/spf13/cobra"

	"github.com/strin/HeteroSampler/internal/report"
)

// schemaCmd prints the JSON Schema that 'compare --format json' output follows.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of comparison reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := cmd.OutOrStdout().Write(report.Schema())
		return err
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
