package domain

import (
	"fmt"
	"log/slog"

	m "github.com/MathisBD/rocq/internal/model"
)

// DefaultMaxSteps bounds reduction work per call when no budget is
// configured.
const DefaultMaxSteps = 10000

// MetaKind records which syntactic position a hole was created for. Term
// holes must be solved by checking; type holes may be defaulted by the
// frontend when nothing constrains them.
type MetaKind int

const (
	// KindTerm marks a hole standing for a term.
	KindTerm MetaKind = iota
	// KindType marks a hole standing for a type, such as a missing binder
	// annotation.
	KindType
)

func (k MetaKind) String() string {
	switch k {
	case KindTerm:
		return "term"
	case KindType:
		return "type"
	default:
		return fmt.Sprintf("MetaKind(%d)", int(k))
	}
}

type binding struct {
	kind  MetaKind
	hint  string
	term  m.Term
	bound bool
}

// State is the working memory of a single invocation: a context snapshot plus
// the metavariable store. It is exclusively owned by its invocation and must
// not be shared across goroutines.
type State struct {
	view     ContextView
	store    map[m.MetaID]*binding
	order    []m.MetaID
	next     m.MetaID
	maxSteps int
	space    string
}

// StateOption configures a State.
type StateOption func(*State)

// WithMaxSteps sets the reduction budget for Whnf, Normalize and
// Convertible. Values below one fall back to the default.
func WithMaxSteps(n int) StateOption {
	return func(s *State) {
		if n > 0 {
			s.maxSteps = n
		}
	}
}

// WithNamespace sets the namespace used to qualify bare names during
// interning.
func WithNamespace(space string) StateOption {
	return func(s *State) {
		s.space = space
	}
}

// NewState creates a fresh state over a snapshot of ctx. The store starts
// empty and metavariable identifiers are fresh per state.
func NewState(ctx *GlobalContext, opts ...StateOption) *State {
	s := &State{
		view:     ctx.View(),
		store:    make(map[m.MetaID]*binding),
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Fresh allocates an unassigned metavariable of the given kind. The hint
// names the position the hole came from and is used only for logging.
func (s *State) Fresh(kind MetaKind, hint string) m.MetaID {
	id := s.next
	s.next++
	s.store[id] = &binding{kind: kind, hint: hint}
	s.order = append(s.order, id)

	slog.Debug("Fresh metavariable", "id", id, "kind", kind.String(), "hint", hint)

	return id
}

// KindOf returns the kind a metavariable was created with.
func (s *State) KindOf(id m.MetaID) (MetaKind, bool) {
	b, ok := s.store[id]
	if !ok {
		return 0, false
	}

	return b.kind, true
}

// Unassigned returns the metavariables without an assignment, in allocation
// order.
func (s *State) Unassigned() []m.MetaID {
	var ids []m.MetaID

	for _, id := range s.order {
		if !s.store[id].bound {
			ids = append(ids, id)
		}
	}

	return ids
}

// Assign records t as the solution of id. The assignment is validated before
// anything is committed: every metavariable inside t must exist in this
// store, and t must not refer back to id through any chain of assignments.
// Assigning an already-solved metavariable succeeds only when the new term is
// structurally equal to the existing solution after zonking.
//
// Solutions may be open: a hole under a binder is solved at the position it
// occupies, and holes occur at exactly one position each, so the indices in a
// solution are relative to that position.
func (s *State) Assign(id m.MetaID, t m.Term) error {
	b, ok := s.store[id]
	if !ok {
		return &ConstraintError{Meta: id, Detail: fmt.Sprintf("?%d does not exist in this state", id)}
	}

	for _, other := range m.Metas(t) {
		if _, ok := s.store[other]; !ok {
			return &ConstraintError{Meta: id, Detail: fmt.Sprintf("solution for ?%d mentions foreign hole ?%d", id, other)}
		}
	}

	if s.occursIn(id, t) {
		return &ConstraintError{Meta: id, Detail: fmt.Sprintf("cyclic solution for ?%d", id)}
	}

	if b.bound {
		if m.Equal(s.Zonk(b.term), s.Zonk(t)) {
			return nil
		}

		return &ConstraintError{Meta: id, Detail: fmt.Sprintf("conflicting solutions for ?%d", id)}
	}

	b.term = t
	b.bound = true

	slog.Debug("Assigned metavariable", "id", id, "hint", b.hint)

	return nil
}

// occursIn reports whether id is reachable from t, following assignments.
func (s *State) occursIn(id m.MetaID, t m.Term) bool {
	for _, other := range m.Metas(t) {
		if other == id {
			return true
		}

		if b, ok := s.store[other]; ok && b.bound && s.occursIn(id, b.term) {
			return true
		}
	}

	return false
}

// Resolve follows the assignment chain from id to a term that is not itself
// a bare metavariable. It reports false when the chain ends at an unassigned
// hole or does not terminate.
func (s *State) Resolve(id m.MetaID) (m.Term, bool) {
	seen := make(map[m.MetaID]bool)

	cur := id
	for {
		if seen[cur] {
			return nil, false
		}
		seen[cur] = true

		b, ok := s.store[cur]
		if !ok || !b.bound {
			return nil, false
		}

		next, ok := b.term.(*m.Meta)
		if !ok {
			return b.term, true
		}
		cur = next.ID
	}
}

// Zonk replaces every solved metavariable in t with its solution, recursively,
// so the result mentions only unassigned holes.
func (s *State) Zonk(t m.Term) m.Term {
	switch x := t.(type) {
	case *m.Meta:
		b, ok := s.store[x.ID]
		if !ok || !b.bound {
			return x
		}

		return s.Zonk(b.term)
	case *m.Lam:
		return &m.Lam{Binder: x.Binder, Dom: s.Zonk(x.Dom), Body: s.Zonk(x.Body)}
	case *m.Pi:
		return &m.Pi{Binder: x.Binder, Dom: s.Zonk(x.Dom), Cod: s.Zonk(x.Cod)}
	case *m.App:
		return &m.App{Fn: s.Zonk(x.Fn), Arg: s.Zonk(x.Arg)}
	default:
		return t
	}
}

// Unresolved returns the metavariables still undetermined in t after zonking.
func (s *State) Unresolved(t m.Term) []m.MetaID {
	return m.Metas(s.Zonk(t))
}

// Context returns the snapshot this state elaborates against.
func (s *State) Context() ContextView {
	return s.view
}

// Refresh replaces the snapshot with a current view of ctx. Later lookups see
// declarations made since the state was created; the metavariable store is
// kept.
func (s *State) Refresh(ctx *GlobalContext) {
	s.view = ctx.View()
}
