// internal/cli/browse.go
package hetero

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strin/HeteroSampler/internal/compare"
	"github.com/strin/HeteroSampler/internal/report"
	"github.com/strin/HeteroSampler/internal/tui"
)

var browseNames string

// startBrowser is swapped out in tests.
var startBrowser = func(rep *compare.Report, title string) error {
	return tui.Run(rep, title, report.ColorEnabled(os.Stdout))
}

// browseCmd opens the comparison in an interactive pager.
var browseCmd = &cobra.Command{
	Use:   "browse <log> <log>...",
	Short: "Browse a comparison interactively",
	Long:  `Compare runs like 'hetero compare' and step through the examples in a terminal UI (n/p to move, q to quit).`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := buildComparison(cmd.Context(), getConfig(), args, browseNames)
		if err != nil {
			return err
		}
		return startBrowser(rep, strings.Join(rep.RunNames, " vs "))
	},
}

func init() {
	browseCmd.Flags().StringVar(&browseNames, "names", "", "comma-separated run labels, one per log")
	rootCmd.AddCommand(browseCmd)
}
