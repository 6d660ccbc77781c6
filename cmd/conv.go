package cmd

import (
	"github.com/spf13/cobra"
)

// convCmd represents the conv command.
var convCmd = newConvCmd()

func newConvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conv term term",
		Short: "Decide whether two terms are definitionally equal",
		Long: `Decide whether two terms are convertible: equal up to reduction and
unfolding of transparent definitions.

` + termSyntaxHelp,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return invoke(cmd, "conv", invocation(args))
		},
	}
}

func init() {
	rootCmd.AddCommand(convCmd)
}
