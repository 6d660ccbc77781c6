package cmd

import (
	"github.com/spf13/cobra"
)

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run script...",
		Short: "Run interpreter scripts",
		Long: `Run one or more scripts against a single environment, in order. A script
holds one command per line; blank lines and "--" comments are ignored.
Execution stops at the first failing line, reported with its position.

` + termSyntaxHelp,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newSession(cmd)
			if err != nil {
				return err
			}

			for _, path := range args {
				if err := runScriptFile(cmd, session, path); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
}
