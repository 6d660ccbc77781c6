package cmd

import (
	"github.com/spf13/cobra"
)

// evalCmd represents the eval command.
var evalCmd = newEvalCmd()

func newEvalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval term",
		Short: "Reduce a term to normal form",
		Long: `Type-check a term and reduce it to normal form. Opaque definitions stay
folded.

` + termSyntaxHelp,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return invoke(cmd, "eval", invocation(args))
		},
	}
}

func init() {
	rootCmd.AddCommand(evalCmd)
}
