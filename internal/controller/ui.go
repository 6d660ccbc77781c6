// Package controller hosts the interpreter commands and renders their
// results.
package controller

import (
	"context"
	"fmt"

	"github.com/MathisBD/rocq/internal/dispatch"
	"github.com/MathisBD/rocq/internal/domain"
)

// EnvFormat selects how the environment listing is rendered.
type EnvFormat int

// Available EnvFormat values.
const (
	EnvTable EnvFormat = iota
	EnvYAML
)

// ParseEnvFormat maps a format name to an EnvFormat.
func ParseEnvFormat(name string) (EnvFormat, error) {
	switch name {
	case "", "table":
		return EnvTable, nil
	case "yaml":
		return EnvYAML, nil
	}

	return EnvTable, fmt.Errorf("unknown environment format %q (want table or yaml)", name)
}

// UI defines the interface for displaying command results.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	// DisplayDefined reports a successful definition. The entry is shown
	// only when the result carries an echo.
	DisplayDefined(ctx context.Context, result domain.DefineResult)
	// DisplayChecked reports every result of a check batch. It returns the
	// first per-term failure so hosts can count the command as failed.
	DisplayChecked(ctx context.Context, results []domain.CheckResult) error
	// DisplayEval shows a normal form and its type.
	DisplayEval(ctx context.Context, result domain.EvalResult)
	// DisplayConvertible shows a convertibility verdict.
	DisplayConvertible(ctx context.Context, result domain.ConvResult)
	// DisplayEntry shows one declaration, elided below depth when depth > 0.
	DisplayEntry(ctx context.Context, entry domain.EnvEntry, depth int)
	// DisplayEnv lists the whole environment in declaration order.
	DisplayEnv(ctx context.Context, entries []domain.EnvEntry, format EnvFormat) error
	// DisplayHelp lists the registered commands.
	DisplayHelp(ctx context.Context, commands []*dispatch.Command)
	// DisplayError renders a command failure, with a type diff for
	// mismatches.
	DisplayError(ctx context.Context, err error)
}
