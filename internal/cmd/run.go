package cmd

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the command that executes a command file
func NewRunCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Run commands from a file",
		Long: `Executes every parking lot command in the given file, one per line.

Example:
  parking-lot run testdata/session.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrapf(err, "failed to open %s", args[0])
			}
			defer func() { _ = f.Close() }()

			return runSession(cmd.Context(), opts, f, cmd.OutOrStdout())
		},
	}
}
