package cmd

import (
	"github.com/spf13/cobra"

	"github.com/MathisBD/rocq/internal/dispatch"
)

var definePolymorphicFlag bool
var defineOpaqueFlag bool

// defineCmd represents the define command.
var defineCmd = newDefineCmd()

func newDefineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "define name [: type] := body",
		Short: "Elaborate a definition and declare it",
		Long: `Elaborate a definition and declare it in the environment. The type
annotation may be omitted; holes written "_" are solved by the elaborator.

` + termSyntaxHelp,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv := invocation(args)
			inv.Modifiers = dispatch.Modifiers{
				Polymorphic: definePolymorphicFlag,
				Opaque:      defineOpaqueFlag,
			}

			return invoke(cmd, "define", inv)
		},
	}

	configureDefineFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(defineCmd)
}

func configureDefineFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&definePolymorphicFlag, "polymorphic", false, "mark the definition as polymorphic")
	cmd.Flags().BoolVar(&defineOpaqueFlag, "opaque", false, "keep the definition from unfolding during conversion")
}
