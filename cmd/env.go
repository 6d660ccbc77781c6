package cmd

import (
	"github.com/spf13/cobra"
)

var envFormatFlag string

// envCmd represents the env command.
var envCmd = newEnvCmd()

func newEnvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "List the environment",
		Long:  `List every declaration in declaration order.`,
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var args []string
			if envFormatFlag != "" {
				args = append(args, envFormatFlag)
			}

			return invoke(cmd, "env", invocation(args))
		},
	}

	configureEnvFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(envCmd)
}

func configureEnvFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&envFormatFlag, "format", "table", "output format (table or yaml)")
}
