package domain

import (
	"log/slog"

	m "github.com/MathisBD/rocq/internal/model"
)

// DeclareOptions carries the flags a definition is declared with. The zero
// value means monomorphic and transparent, which is the default for plain
// definitions.
type DeclareOptions struct {
	Polymorphic bool
	Opaque      bool
}

// Declare publishes a checked definition in the global context. Body and
// type are zonked first and must come out fully determined: a surviving hole
// aborts the declaration. Validation happens before the insert, so a failed
// declaration leaves the context untouched; the insert itself is atomic, so
// of two racing declarations of the same symbol exactly one lands.
func Declare(gc *GlobalContext, s *State, sym m.Symbol, body, ty m.Term, opts DeclareOptions) error {
	zb := s.Zonk(body)
	zt := s.Zonk(ty)

	if ids := m.Metas(&m.App{Fn: zb, Arg: zt}); len(ids) > 0 {
		return &DeclarationError{Sym: sym, Err: &UnderspecifiedTermError{Metas: ids}}
	}

	// Context entries are closed terms; open ones would leak binder indices
	// into later invocations.
	if !m.Closed(zb) || !m.Closed(zt) {
		return &DeclarationError{Sym: sym, Err: &TypingError{Reason: ReasonMalformed, Term: zb, Detail: "definition mentions variables outside any binder"}}
	}

	if err := gc.Insert(sym, m.Entry{
		Body:        zb,
		Type:        zt,
		Polymorphic: opts.Polymorphic,
		Opaque:      opts.Opaque,
	}); err != nil {
		return &DeclarationError{Sym: sym, Err: err}
	}

	slog.Info("Definition declared",
		"symbol", sym.Full(),
		"polymorphic", opts.Polymorphic,
		"opaque", opts.Opaque)

	return nil
}
