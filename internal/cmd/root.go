package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd assembles the parking-lot command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "parking-lot",
		Short: "Single-floor parking lot slot allocator",
		Long: `parking-lot allocates numbered slots to cars, always choosing the nearest
free slot, and answers lookups by registration number and colour.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "Config file (yaml, toml or json)")
	rootCmd.PersistentFlags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus slot gauges to this file on exit")

	rootCmd.AddCommand(NewShellCmd(opts))
	rootCmd.AddCommand(NewRunCmd(opts))

	return rootCmd
}
