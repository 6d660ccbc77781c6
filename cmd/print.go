package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
)

var printDepthFlag int

// printCmd represents the print command.
var printCmd = newPrintCmd()

func newPrintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print name",
		Short: "Show a declaration",
		Long:  `Show a declared symbol with its type, body and attributes.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if printDepthFlag > 0 {
				args = append(args, strconv.Itoa(printDepthFlag))
			}

			return invoke(cmd, "print", invocation(args))
		},
	}

	configurePrintFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(printCmd)
}

func configurePrintFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&printDepthFlag, "depth", 0, "elide subterms nested deeper than this (0 shows everything)")
}
