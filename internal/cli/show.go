// internal/cli/show.go
package hetero

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/strin/HeteroSampler/internal/appconfig"
)

// showCmd represents the 'show' command group for displaying resources.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Group commands for displaying resources",
	Long:  `The 'show' command groups subcommands that display resources or information related to hetero.`,
}

// showConfigCmd prints the merged configuration.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the config file is loaded properly and overridden by flags accordingly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !showFileOnly {
			appconfig.ShowConfig(cmd.OutOrStdout(), viper.ConfigFileUsed(), *getConfig())
			return nil
		}
		// Re-read the file alone so flag and environment overrides drop out.
		file := viper.ConfigFileUsed()
		if file == "" {
			file = getConfig().ConfigPath
		}
		cfg, err := appconfig.Load(file)
		if err != nil {
			return err
		}
		appconfig.ShowConfig(cmd.OutOrStdout(), cfg.ConfigPath, cfg)
		return nil
	},
}

var showFileOnly bool

func init() {
	showConfigCmd.Flags().BoolVar(&showFileOnly, "file-only", false, "show the config file's values without flag overrides")
	showCmd.AddCommand(showConfigCmd)
	rootCmd.AddCommand(showCmd)
}
