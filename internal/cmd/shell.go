package cmd

import (
	"github.com/spf13/cobra"
)

// NewShellCmd creates the interactive shell command
func NewShellCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands from standard input",
		Long: `Reads parking lot commands from standard input, one per line, and prints
each result. Type "help" for the command list and "exit" to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
