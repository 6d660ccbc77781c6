// Package cmd provides the root command and CLI setup for rocq.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/MathisBD/rocq/internal/controller"
	"github.com/MathisBD/rocq/internal/dispatch"
	"github.com/MathisBD/rocq/internal/domain"
)

// namespaceFlag is a root-level flag qualifying every bare name.
var namespaceFlag string

// maxStepsFlag bounds definition unfolding during conversion.
var maxStepsFlag int

// preloadFlag lists scripts run silently before a command, so one-shot
// commands have an environment to work in.
var preloadFlag []string

// verboseFlag switches file logging to debug level.
var verboseFlag bool

const termSyntaxHelp = `Terms use a small dependent lambda-calculus syntax:
  - Type                     the universe
  - fun (x : A) => b         abstraction (the annotation may be omitted)
  - (x : A) -> B             dependent function type
  - A -> B                   function type
  - f a b                    application
  - _                        a hole for the elaborator to solve`

const rootLongDescription = `Rocq is a small interpreter for a dependent lambda-calculus: it elaborates
definitions into a global environment and answers type-checking, conversion
and evaluation questions about them.

` + termSyntaxHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rocq",
		Short: "Dependent lambda-calculus interpreter",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(
		&namespaceFlag, namespaceFlagName, "n",
		viper.GetString(namespaceKey),
		"namespace qualifying bare names",
	)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(namespaceFlagName), namespaceKey)

	cmd.PersistentFlags().IntVar(
		&maxStepsFlag, maxStepsFlagName,
		viper.GetInt(maxStepsKey),
		"unfolding budget for conversion and normalization",
	)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(maxStepsFlagName), maxStepsKey)

	cmd.PersistentFlags().StringArrayVar(
		&preloadFlag, preloadFlagName,
		viper.GetStringSlice(preloadKey),
		"script to run before the command (can be repeated)",
	)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(preloadFlagName), preloadKey)

	cmd.PersistentFlags().BoolVar(
		&verboseFlag, verboseFlagName,
		viper.GetBool(logVerboseKey),
		"log at debug level",
	)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// newSession builds the interpreter stack one command run operates on:
// a fresh global context, the engine configured from viper, and the command
// table writing to the cobra output stream. Preload scripts run first,
// silently, so their declarations are in scope.
func newSession(cmd *cobra.Command) (*controller.Session, error) {
	space := viper.GetString(namespaceKey)
	engine := domain.NewEngine(domain.NewGlobalContext(), space, viper.GetInt(maxStepsKey))

	if err := preloadScripts(cmd, engine, space); err != nil {
		return nil, err
	}

	ui := controller.NewSimpleUI(cmd.OutOrStdout(), space)

	return controller.NewSession(engine, ui, controller.WithJobs(viper.GetInt(checkJobsKey))), nil
}

func preloadScripts(cmd *cobra.Command, engine domain.Engine, space string) error {
	scripts := viper.GetStringSlice(preloadKey)
	if len(scripts) == 0 {
		return nil
	}

	session := controller.NewSession(engine, controller.NewSimpleUI(io.Discard, space))

	for _, path := range scripts {
		if err := runScriptFile(cmd, session, path); err != nil {
			return err
		}
	}

	return nil
}

func runScriptFile(cmd *cobra.Command, session *controller.Session, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	defer file.Close()

	return session.RunScript(cmd.Context(), file, path)
}

// invoke routes a cobra invocation to the named registry command.
func invoke(cmd *cobra.Command, name string, inv dispatch.Invocation) error {
	session, err := newSession(cmd)
	if err != nil {
		return err
	}

	command, ok := session.Registry().Lookup(name)
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}

	return command.Run(cmd.Context(), inv)
}

// invocation builds an Invocation from cobra args, treating each arg as one
// top-level argument and the joined args as the raw tail.
func invocation(args []string) dispatch.Invocation {
	return dispatch.Invocation{
		Args: args,
		Tail: strings.Join(args, " "),
	}
}
