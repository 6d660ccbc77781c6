package adapter

import (
	"fmt"
	"strings"

	m "github.com/MathisBD/rocq/internal/model"
)

// Printer renders core terms back into the surface grammar. Binder hints are
// freshened against the enclosing binders, unresolved holes come out as ?N,
// and rendering can be cut off at a depth for large terms.
type Printer struct {
	space string
	depth int
}

// PrinterOption configures a Printer.
type PrinterOption func(*Printer)

// WithSpace elides the given namespace from symbol renderings, so Top.Nat
// prints as Nat when the printer's space is Top.
func WithSpace(space string) PrinterOption {
	return func(p *Printer) {
		p.space = space
	}
}

// WithDepth cuts rendering off below the given nesting depth. Zero or
// negative means unlimited.
func WithDepth(depth int) PrinterOption {
	return func(p *Printer) {
		p.depth = depth
	}
}

// NewPrinter creates a Printer.
func NewPrinter(opts ...PrinterOption) *Printer {
	p := &Printer{}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Rendering precedence, lowest binds loosest.
const (
	precArrow = iota
	precApp
	precAtom
)

// Term renders t.
func (p *Printer) Term(t m.Term) string {
	depth := p.depth
	if depth <= 0 {
		depth = -1
	}

	return p.render(t, nil, precArrow, depth)
}

// Symbol renders a symbol, eliding the printer's namespace.
func (p *Printer) Symbol(sym m.Symbol) string {
	if sym.Space == p.space {
		return sym.Ident
	}

	return sym.Full()
}

func (p *Printer) render(t m.Term, names []string, prec, depth int) string {
	if depth == 0 {
		return "..."
	}

	switch x := t.(type) {
	case *m.Sort:
		return "Type"

	case *m.Var:
		if x.Index >= 0 && x.Index < len(names) {
			return names[len(names)-1-x.Index]
		}
		if x.Hint != "" {
			return x.Hint
		}

		return fmt.Sprintf("#%d", x.Index)

	case *m.Const:
		return p.Symbol(x.Sym)

	case *m.Meta:
		return fmt.Sprintf("?%d", x.ID)

	case *m.Lam:
		name := freshName(binderName(x.Binder, x.Body), names)
		s := fmt.Sprintf("fun (%s : %s) => %s",
			name,
			p.render(x.Dom, names, precArrow, down(depth)),
			p.render(x.Body, append(names, name), precArrow, down(depth)))

		return paren(s, prec > precArrow)

	case *m.Pi:
		if !m.Uses(x.Cod, 0) {
			s := fmt.Sprintf("%s -> %s",
				p.render(x.Dom, names, precApp, down(depth)),
				p.render(x.Cod, append(names, "_"), precArrow, down(depth)))

			return paren(s, prec > precArrow)
		}

		name := freshName(binderName(x.Binder, x.Cod), names)
		s := fmt.Sprintf("(%s : %s) -> %s",
			name,
			p.render(x.Dom, names, precArrow, down(depth)),
			p.render(x.Cod, append(names, name), precArrow, down(depth)))

		return paren(s, prec > precArrow)

	case *m.App:
		s := fmt.Sprintf("%s %s",
			p.render(x.Fn, names, precApp, down(depth)),
			p.render(x.Arg, names, precAtom, down(depth)))

		return paren(s, prec > precApp)

	default:
		return fmt.Sprintf("<%T>", t)
	}
}

func down(depth int) int {
	if depth < 0 {
		return depth
	}

	return depth - 1
}

func paren(s string, need bool) string {
	if need {
		return "(" + s + ")"
	}

	return s
}

// binderName picks a display name for a binder: the recorded hint, or a
// stand-in when the hint is missing and the binder is referenced.
func binderName(hint string, body m.Term) string {
	if hint != "" && hint != "_" {
		return hint
	}
	if m.Uses(body, 0) {
		return "x"
	}

	return "_"
}

// freshName primes the name until it avoids every enclosing binder.
func freshName(name string, names []string) string {
	if name == "_" {
		return name
	}

	for taken(name, names) {
		name += "'"
	}

	return name
}

func taken(name string, names []string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}

	return false
}

// Entry renders a declaration the way listings show it: name, flags, type
// and body.
func (p *Printer) Entry(sym m.Symbol, entry m.Entry) string {
	var b strings.Builder

	b.WriteString(p.Symbol(sym))
	b.WriteString(" : ")
	b.WriteString(p.Term(entry.Type))
	b.WriteString(" := ")
	b.WriteString(p.Term(entry.Body))

	var flags []string
	if entry.Polymorphic {
		flags = append(flags, "polymorphic")
	}
	if entry.Opaque {
		flags = append(flags, "opaque")
	}
	if len(flags) > 0 {
		b.WriteString("  [")
		b.WriteString(strings.Join(flags, ", "))
		b.WriteString("]")
	}

	return b.String()
}
