// Package domain implements the elaboration core: the global naming context,
// per-invocation elaboration state, interning of surface syntax, the two
// type-checking strategies, convertibility and definition declaration.
package domain

import (
	"errors"
	"log/slog"

	m "github.com/MathisBD/rocq/internal/model"
	"github.com/MathisBD/rocq/pkg"
)

// GlobalContext is the shared, append-only map from symbols to declared
// entries. It is safe for concurrent use; invocations read it through
// point-in-time views so a declaration landing mid-check is never observed.
type GlobalContext struct {
	log pkg.AppendLog[m.Symbol, m.Entry]
}

// NewGlobalContext returns an empty context.
func NewGlobalContext() *GlobalContext {
	return &GlobalContext{log: pkg.NewAppendLog[m.Symbol, m.Entry]()}
}

// Insert adds a declaration. A symbol can be declared at most once; a second
// insert fails with NameCollisionError and leaves the first entry in place.
func (c *GlobalContext) Insert(sym m.Symbol, entry m.Entry) error {
	seq, err := c.log.Insert(sym, entry)
	if err != nil {
		if errors.Is(err, pkg.ErrDuplicateKey) {
			return &NameCollisionError{Sym: sym}
		}

		return err
	}

	slog.Debug("Declared symbol", "symbol", sym.Full(), "seq", seq)

	return nil
}

// View snapshots the context at the current moment. Entries inserted later
// are invisible through the returned view.
func (c *GlobalContext) View() ContextView {
	return ContextView{view: c.log.View()}
}

// ContextView is a point-in-time, read-only view of the global context.
type ContextView struct {
	view pkg.View[m.Symbol, m.Entry]
}

// Lookup returns the entry declared under sym, if the view contains it.
func (v ContextView) Lookup(sym m.Symbol) (m.Entry, bool) {
	return v.view.Get(sym)
}

// Len returns the number of entries visible through the view.
func (v ContextView) Len() int {
	return int(v.view.Len())
}

// Range calls fn for every visible entry in declaration order. It stops and
// returns the first error fn reports.
func (v ContextView) Range(fn func(m.Symbol, m.Entry) error) error {
	return v.view.Range(fn)
}
