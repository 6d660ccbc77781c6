package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"github.com/MathisBD/rocq/internal/adapter"
	"github.com/MathisBD/rocq/internal/dispatch"
	"github.com/MathisBD/rocq/internal/domain"
	m "github.com/MathisBD/rocq/internal/model"
)

// SimpleUI implements UI by writing plain lines to an output stream.
type SimpleUI struct {
	out     io.Writer
	printer *adapter.Printer
	space   string
}

// NewSimpleUI creates a SimpleUI writing to out. Symbols in the given
// namespace are shown unqualified.
func NewSimpleUI(out io.Writer, space string) *SimpleUI {
	return &SimpleUI{
		out:     out,
		printer: adapter.NewPrinter(adapter.WithSpace(space)),
		space:   space,
	}
}

// DisplayDefined prints the declared name, with its elaborated type when the
// result carries an echo.
func (s *SimpleUI) DisplayDefined(ctx context.Context, result domain.DefineResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	if result.Echoed {
		s.printf("%s : %s\n", s.printer.Symbol(result.Sym), s.printer.Term(result.Entry.Type))
		return
	}

	s.printf("%s is declared\n", s.printer.Symbol(result.Sym))
}

// DisplayChecked prints one line per checked term and returns the first
// failure.
func (s *SimpleUI) DisplayChecked(ctx context.Context, results []domain.CheckResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var firstErr error

	for _, result := range results {
		if result.Err != nil {
			s.renderError(result.Err)

			if firstErr == nil {
				firstErr = result.Err
			}

			continue
		}

		s.printf("%s : %s\n", s.printer.Term(result.Term), s.printer.Term(result.Type))
	}

	return firstErr
}

// DisplayEval prints the normal form and its type.
func (s *SimpleUI) DisplayEval(ctx context.Context, result domain.EvalResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("= %s\n: %s\n", s.printer.Term(result.Normal), s.printer.Term(result.Type))
}

// DisplayConvertible prints the verdict.
func (s *SimpleUI) DisplayConvertible(ctx context.Context, result domain.ConvResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	if result.Convertible {
		s.printf("convertible\n")
		return
	}

	s.printf("not convertible\n")
}

// DisplayEntry prints one declaration, with subterms below depth elided when
// depth > 0.
func (s *SimpleUI) DisplayEntry(ctx context.Context, entry domain.EnvEntry, depth int) {
	if err := ctx.Err(); err != nil {
		return
	}

	printer := s.printer
	if depth > 0 {
		printer = adapter.NewPrinter(adapter.WithSpace(s.space), adapter.WithDepth(depth))
	}

	s.printf("%s\n", printer.Entry(entry.Sym, entry.Entry))
}

// DisplayEnv lists the environment as a table or as yaml.
func (s *SimpleUI) DisplayEnv(ctx context.Context, entries []domain.EnvEntry, format EnvFormat) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if format == EnvYAML {
		return s.renderEnvYAML(entries)
	}

	s.printf("%s", renderEnvTable(s.printer, entries))

	return nil
}

func renderEnvTable(printer *adapter.Printer, entries []domain.EnvEntry) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Name", "Type", "Body", "Flags"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
	})

	for _, entry := range entries {
		table.Append([]string{
			printer.Symbol(entry.Sym),
			printer.Term(entry.Entry.Type),
			printer.Term(entry.Entry.Body),
			strings.Join(entryFlags(entry.Entry), ", "),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total %d", len(entries)),
		"", "", "",
	})

	table.Render()

	return tableBuffer.String()
}

// envEntryDoc is the yaml shape of one declaration.
type envEntryDoc struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Body        string `yaml:"body"`
	Polymorphic bool   `yaml:"polymorphic,omitempty"`
	Opaque      bool   `yaml:"opaque,omitempty"`
}

func (s *SimpleUI) renderEnvYAML(entries []domain.EnvEntry) error {
	docs := make([]envEntryDoc, 0, len(entries))
	for _, entry := range entries {
		docs = append(docs, envEntryDoc{
			Name:        s.printer.Symbol(entry.Sym),
			Type:        s.printer.Term(entry.Entry.Type),
			Body:        s.printer.Term(entry.Entry.Body),
			Polymorphic: entry.Entry.Polymorphic,
			Opaque:      entry.Entry.Opaque,
		})
	}

	out, err := yaml.Marshal(docs)
	if err != nil {
		return fmt.Errorf("failed to render the environment as yaml: %w", err)
	}

	s.printf("%s", out)

	return nil
}

func entryFlags(entry m.Entry) []string {
	var flags []string
	if entry.Polymorphic {
		flags = append(flags, "polymorphic")
	}
	if entry.Opaque {
		flags = append(flags, "opaque")
	}

	return flags
}

// DisplayHelp lists the registered commands with their usage lines.
func (s *SimpleUI) DisplayHelp(ctx context.Context, commands []*dispatch.Command) {
	if err := ctx.Err(); err != nil {
		return
	}

	for _, cmd := range commands {
		s.printf("%-40s %s\n", cmd.Usage, cmd.Summary)
	}
}

// DisplayError prints the failure. Type mismatches additionally get a
// unified diff of the expected and actual types.
func (s *SimpleUI) DisplayError(ctx context.Context, err error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return
	}

	s.renderError(err)
}

func (s *SimpleUI) renderError(err error) {
	s.printf("error: %v\n", err)

	var typingErr *domain.TypingError
	if !errors.As(err, &typingErr) {
		return
	}

	if typingErr.Reason != domain.ReasonMismatch || typingErr.Expected == nil || typingErr.Actual == nil {
		return
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(s.printer.Term(typingErr.Expected)),
		B:        difflib.SplitLines(s.printer.Term(typingErr.Actual)),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  1,
	}

	text, diffErr := difflib.GetUnifiedDiffString(diff)
	if diffErr != nil {
		return
	}

	s.printf("%s", text)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}
