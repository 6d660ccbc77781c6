package controller

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MathisBD/rocq/internal/adapter"
	"github.com/MathisBD/rocq/internal/dispatch"
	"github.com/MathisBD/rocq/internal/domain"
	m "github.com/MathisBD/rocq/internal/model"
)

// Session hosts one interpreter: an engine, a UI and the command table
// operating on them. Commands are registered once at construction; hosts
// feed lines through Run or RunScript.
type Session struct {
	engine   domain.Engine
	ui       UI
	registry *dispatch.Registry
	jobs     int
}

// SessionOption is a functional option for NewSession.
type SessionOption func(*Session)

// WithJobs bounds how many terms a check command elaborates concurrently.
func WithJobs(jobs int) SessionOption {
	return func(s *Session) {
		if jobs > 0 {
			s.jobs = jobs
		}
	}
}

// NewSession creates a Session with the built-in commands registered.
func NewSession(engine domain.Engine, ui UI, opts ...SessionOption) *Session {
	s := &Session{
		engine:   engine,
		ui:       ui,
		registry: dispatch.NewRegistry(),
		jobs:     1,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerBuiltins()

	return s
}

// Registry exposes the command table so hosts can register their own
// commands next to the built-ins.
func (s *Session) Registry() *dispatch.Registry {
	return s.registry
}

// Run executes one input line.
func (s *Session) Run(ctx context.Context, line string) error {
	return s.registry.Dispatch(ctx, line)
}

// RunScript executes lines from r in order and stops at the first failure,
// reported with the script name and line number.
func (s *Session) RunScript(ctx context.Context, r io.Reader, name string) error {
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		if err := s.registry.Dispatch(ctx, scanner.Text()); err != nil {
			return fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	return nil
}

func (s *Session) registerBuiltins() {
	s.registry.Register(&dispatch.Command{
		Name:    "define",
		Usage:   "[polymorphic] [opaque] define name [: type] := body",
		Summary: "Elaborate a definition and declare it",
		Run:     s.runDefine,
	})
	s.registry.Register(&dispatch.Command{
		Name:    "check",
		Usage:   "check term... [: type]",
		Summary: "Type-check terms, against a type when one is given",
		Run:     s.runCheck,
	})
	s.registry.Register(&dispatch.Command{
		Name:    "eval",
		Usage:   "eval term",
		Summary: "Reduce a term to normal form",
		Run:     s.runEval,
	})
	s.registry.Register(&dispatch.Command{
		Name:    "conv",
		Usage:   "conv term term",
		Summary: "Decide whether two terms are definitionally equal",
		Run:     s.runConv,
	})
	s.registry.Register(&dispatch.Command{
		Name:    "print",
		Usage:   "print name [depth]",
		Summary: "Show a declaration, optionally elided below a depth",
		Run:     s.runPrint,
	})
	s.registry.Register(&dispatch.Command{
		Name:    "env",
		Usage:   "env [table|yaml]",
		Summary: "List the environment in declaration order",
		Run:     s.runEnv,
	})
	s.registry.Register(&dispatch.Command{
		Name:    "help",
		Usage:   "help",
		Summary: "List the available commands",
		Run:     s.runHelp,
	})
}

func (s *Session) runDefine(ctx context.Context, inv dispatch.Invocation) error {
	def, err := dispatch.ParseDefinition(inv.Tail)
	if err != nil {
		return err
	}

	if err := validateName(def.Name); err != nil {
		return err
	}

	req := domain.DefineRequest{
		Name: def.Name,
		Options: domain.DeclareOptions{
			Polymorphic: inv.Modifiers.Polymorphic,
			Opaque:      inv.Modifiers.Opaque,
		},
		Echo: true,
	}

	if def.Type != "" {
		ty, err := adapter.Term(def.Type)
		if err != nil {
			return err
		}

		req.Type = ty
	}

	body, err := adapter.Term(def.Body)
	if err != nil {
		return err
	}
	req.Body = body

	result, err := s.engine.Define(ctx, req)
	if err != nil {
		return err
	}

	s.ui.DisplayDefined(ctx, result)

	return nil
}

// runCheck checks each whitespace-delimited argument as a term; terms with
// spaces must be parenthesized. A trailing ": type" checks every term
// against that type.
func (s *Session) runCheck(ctx context.Context, inv dispatch.Invocation) error {
	if err := rejectModifiers(inv); err != nil {
		return err
	}

	args := inv.Args

	var against m.Expr
	for i, arg := range args {
		if arg != ":" {
			continue
		}

		if i == len(args)-1 {
			return fmt.Errorf(`expected a type after ":"`)
		}

		ty, err := adapter.Term(strings.Join(args[i+1:], " "))
		if err != nil {
			return err
		}

		against = ty
		args = args[:i]

		break
	}

	terms, err := parseArgs(args)
	if err != nil {
		return err
	}

	results, err := s.engine.Check(ctx, domain.CheckRequest{
		Terms:   terms,
		Against: against,
		Jobs:    s.jobs,
	})
	if err != nil {
		return err
	}

	return s.ui.DisplayChecked(ctx, results)
}

func (s *Session) runEval(ctx context.Context, inv dispatch.Invocation) error {
	if err := rejectModifiers(inv); err != nil {
		return err
	}

	term, err := adapter.Term(inv.Tail)
	if err != nil {
		return err
	}

	result, err := s.engine.Eval(ctx, domain.EvalRequest{Term: term})
	if err != nil {
		return err
	}

	s.ui.DisplayEval(ctx, result)

	return nil
}

func (s *Session) runConv(ctx context.Context, inv dispatch.Invocation) error {
	if err := rejectModifiers(inv); err != nil {
		return err
	}

	if len(inv.Args) != 2 {
		return fmt.Errorf("conv takes exactly two terms, got %d", len(inv.Args))
	}

	terms, err := parseArgs(inv.Args)
	if err != nil {
		return err
	}

	result, err := s.engine.Conv(ctx, domain.ConvRequest{Left: terms[0], Right: terms[1]})
	if err != nil {
		return err
	}

	s.ui.DisplayConvertible(ctx, result)

	return nil
}

func (s *Session) runPrint(ctx context.Context, inv dispatch.Invocation) error {
	if err := rejectModifiers(inv); err != nil {
		return err
	}

	if len(inv.Args) < 1 || len(inv.Args) > 2 {
		return fmt.Errorf("print takes a name and an optional depth")
	}

	depth := 0
	if len(inv.Args) == 2 {
		n, err := strconv.Atoi(inv.Args[1])
		if err != nil || n < 1 {
			return fmt.Errorf("the print depth must be a positive integer, got %q", inv.Args[1])
		}

		depth = n
	}

	entry, err := s.engine.Show(ctx, inv.Args[0])
	if err != nil {
		return err
	}

	s.ui.DisplayEntry(ctx, entry, depth)

	return nil
}

func (s *Session) runEnv(ctx context.Context, inv dispatch.Invocation) error {
	if err := rejectModifiers(inv); err != nil {
		return err
	}

	if len(inv.Args) > 1 {
		return fmt.Errorf("env takes at most a format name")
	}

	name := ""
	if len(inv.Args) == 1 {
		name = inv.Args[0]
	}

	format, err := ParseEnvFormat(name)
	if err != nil {
		return err
	}

	entries, err := s.engine.Entries(ctx)
	if err != nil {
		return err
	}

	return s.ui.DisplayEnv(ctx, entries, format)
}

func (s *Session) runHelp(ctx context.Context, inv dispatch.Invocation) error {
	if err := rejectModifiers(inv); err != nil {
		return err
	}

	s.ui.DisplayHelp(ctx, s.registry.Commands())

	return nil
}

// validateName accepts exactly the names the term grammar reads back as a
// reference, so every declared name stays printable and printable names
// stay parseable.
func validateName(name string) error {
	expr, err := adapter.Term(name)
	if err != nil {
		return fmt.Errorf("invalid definition name %q: %w", name, err)
	}

	ref, ok := expr.(*m.SName)
	if !ok || ref.Name != name {
		return fmt.Errorf("invalid definition name %q", name)
	}

	return nil
}

func parseArgs(args []string) ([]m.Expr, error) {
	terms := make([]m.Expr, 0, len(args))
	for _, arg := range args {
		term, err := adapter.Term(arg)
		if err != nil {
			return nil, err
		}

		terms = append(terms, term)
	}

	return terms, nil
}

func rejectModifiers(inv dispatch.Invocation) error {
	if inv.Modifiers.Any() {
		return fmt.Errorf("modifiers apply to define only")
	}

	return nil
}
