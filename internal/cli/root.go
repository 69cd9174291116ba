// internal/cli/root.go
package hetero

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/strin/HeteroSampler/internal/appconfig"
	"github.com/strin/HeteroSampler/internal/logging"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
)

var rootCmd = &cobra.Command{
	Use:           "hetero",
	Short:         "hetero: analyse and compare sequential-inference experiment logs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 1) Load config (file or defaults)
		if err := ensureConfigLoaded(); err != nil {
			return err
		}

		// 2) If user did NOT set a flag, copy the config value into the flag so
		//    both pflags and viper reflect the same, final value.
		for _, name := range []string{"debug", "skip-blank-lines"} {
			if f := cmd.Flags().Lookup(name); f != nil && !f.Changed {
				_ = cmd.Flags().Set(name, strconv.FormatBool(viper.GetBool(flagKeys[name])))
			}
		}

		// 3) Materialize the fully merged configuration into currentConfig
		//    (flags > config > defaults).
		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ConfigPath = viper.ConfigFileUsed()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		currentConfig = &cfg

		if err := logging.Init(cfg.LogFilePath()); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		// Reports go to stdout; log lines only join them in debug mode.
		logging.SetQuiet(!cfg.Debug)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Close()
	},
}

// flagKeys maps persistent flag names to their viper keys.
var flagKeys = map[string]string{
	"debug":            "debug",
	"logFile":          "logFile",
	"workers":          "workers",
	"weighting":        "metrics.time_weighting",
	"feature-mode":     "parse.feature_mode",
	"skip-blank-lines": "parse.skip_blank_lines",
}

// Execute runs the root command and exits 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/hetero.yaml)")

	rootCmd.PersistentFlags().Bool("debug", false, "echo log lines to the console")
	rootCmd.PersistentFlags().String("logFile", "", "log file path (default hetero.log)")
	rootCmd.PersistentFlags().Int("workers", 0, "concurrent log parses (default GOMAXPROCS)")
	rootCmd.PersistentFlags().String("weighting", "", "time weighting for mean time: raw or length")
	rootCmd.PersistentFlags().String("feature-mode", "", "feature block handling: auto, example or token")
	rootCmd.PersistentFlags().Bool("skip-blank-lines", false, "skip blank lines inside open elements instead of ending the log")

	// Bind flags to Viper keys (flags override config)
	for flag, key := range flagKeys {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config file if there is one.
func ensureConfigLoaded() error {
	viper.SetDefault("debug", false)
	viper.SetDefault("parse.skip_blank_lines", false)
	viper.SetDefault("compare.format", "terminal")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			// No file: fine, we'll use defaults/flags
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// getConfig returns the merged configuration of the running command.
func getConfig() *appconfig.Config {
	if currentConfig == nil {
		return &appconfig.Config{}
	}
	return currentConfig
}
