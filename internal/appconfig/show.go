package appconfig

import (
	"fmt"
	"io"

	"github.com/k0kubun/pp"
)

// ShowConfig prints the source file and the merged configuration.
func ShowConfig(out io.Writer, file string, cfg Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Log File:        %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Debug:           %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Workers:         %d\n", cfg.WorkerCount())
	fmt.Fprintf(out, "  Store:           %s\n", cfg.StorePath())
	fmt.Fprintf(out, "  Compare Format:  %s\n", cfg.CompareFormat())
	weighting := cfg.Metrics.TimeWeighting
	if weighting == "" {
		weighting = "(unset; pass --weighting)"
	}
	fmt.Fprintf(out, "  Time Weighting:  %s\n", weighting)
	if cfg.Debug {
		fmt.Fprintln(out)
		pp.Fprintln(out, cfg)
	}
}
