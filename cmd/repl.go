package cmd

import (
	"bytes"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MathisBD/rocq/internal/controller"
	"github.com/MathisBD/rocq/internal/domain"
)

// replCmd represents the repl command.
var replCmd = newReplCmd()

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Long: `Start an interactive session against a single environment. With a
terminal attached this is a full-screen prompt; otherwise lines are read
from standard input. "exit" or "quit" ends the session.

` + termSyntaxHelp,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			space := viper.GetString(namespaceKey)
			engine := domain.NewEngine(domain.NewGlobalContext(), space, viper.GetInt(maxStepsKey))

			if err := preloadScripts(cmd, engine, space); err != nil {
				return err
			}

			buffer := &bytes.Buffer{}
			session := controller.NewSession(
				engine,
				controller.NewSimpleUI(buffer, space),
				controller.WithJobs(viper.GetInt(checkJobsKey)),
			)

			repl := controller.NewRepl(session, buffer, cmd.OutOrStdout())
			interactive := controller.IsTTY(os.Stdin) && controller.IsTTY(os.Stdout)

			return repl.Run(cmd.Context(), cmd.InOrStdin(), interactive)
		},
	}
}

func init() {
	rootCmd.AddCommand(replCmd)
}
