package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var checkAgainstFlag string
var checkJobsFlag int

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check term...",
		Short: "Type-check terms",
		Long: `Type-check each term independently, against the --against type when one
is given. Terms containing spaces must be quoted or parenthesized.

` + termSyntaxHelp,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if checkAgainstFlag != "" {
				args = append(args, ":", checkAgainstFlag)
			}

			return invoke(cmd, "check", invocation(args))
		},
	}

	configureCheckFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func configureCheckFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&checkAgainstFlag, "against", "", "type to check every term against")

	cmd.Flags().IntVarP(&checkJobsFlag, jobsFlagName, "j", viper.GetInt(checkJobsKey), "number of terms checked concurrently")
	bindFlagToConfig(cmd.Flags().Lookup(jobsFlagName), checkJobsKey)
}
