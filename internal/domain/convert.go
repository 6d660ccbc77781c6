package domain

import (
	"fmt"

	m "github.com/MathisBD/rocq/internal/model"
)

// Whnf reduces t to weak head normal form: beta steps at the head, solved
// metavariables followed to their solutions, and non-opaque constants
// unfolded when they block a head. Reduction shares the state's step budget
// and fails with ConstraintError when it runs out.
func (s *State) Whnf(t m.Term) (m.Term, error) {
	fuel := s.maxSteps
	return s.whnf(t, &fuel)
}

func (s *State) whnf(t m.Term, fuel *int) (m.Term, error) {
	for {
		switch x := t.(type) {
		case *m.Meta:
			// Assignment chains are acyclic (Assign rejects cycles), so
			// walking them needs no budget.
			b, ok := s.store[x.ID]
			if !ok || !b.bound {
				return x, nil
			}
			t = b.term

		case *m.Const:
			entry, ok := s.view.Lookup(x.Sym)
			if !ok || entry.Opaque {
				return x, nil
			}
			if err := s.spend(fuel); err != nil {
				return nil, err
			}
			t = entry.Body

		case *m.App:
			fn, err := s.whnf(x.Fn, fuel)
			if err != nil {
				return nil, err
			}
			if lam, ok := fn.(*m.Lam); ok {
				if err := s.spend(fuel); err != nil {
					return nil, err
				}
				// Zonk before substituting so indices inside solved holes
				// take part in the shift.
				t = m.Open(s.Zonk(lam.Body), x.Arg)
				continue
			}

			return &m.App{Fn: fn, Arg: x.Arg}, nil

		default:
			return t, nil
		}
	}
}

func (s *State) spend(fuel *int) error {
	if *fuel <= 0 {
		return &ConstraintError{Detail: fmt.Sprintf("reduction exceeded the budget of %d steps", s.maxSteps)}
	}
	*fuel--

	return nil
}

// Normalize reduces t everywhere, including under binders and inside stuck
// applications. Unassigned metavariables are left in place.
func (s *State) Normalize(t m.Term) (m.Term, error) {
	fuel := s.maxSteps
	return s.normalize(t, &fuel)
}

func (s *State) normalize(t m.Term, fuel *int) (m.Term, error) {
	w, err := s.whnf(t, fuel)
	if err != nil {
		return nil, err
	}

	switch x := w.(type) {
	case *m.Lam:
		dom, err := s.normalize(x.Dom, fuel)
		if err != nil {
			return nil, err
		}
		body, err := s.normalize(x.Body, fuel)
		if err != nil {
			return nil, err
		}

		return &m.Lam{Binder: x.Binder, Dom: dom, Body: body}, nil

	case *m.Pi:
		dom, err := s.normalize(x.Dom, fuel)
		if err != nil {
			return nil, err
		}
		cod, err := s.normalize(x.Cod, fuel)
		if err != nil {
			return nil, err
		}

		return &m.Pi{Binder: x.Binder, Dom: dom, Cod: cod}, nil

	case *m.App:
		fn, err := s.normalize(x.Fn, fuel)
		if err != nil {
			return nil, err
		}
		arg, err := s.normalize(x.Arg, fuel)
		if err != nil {
			return nil, err
		}

		return &m.App{Fn: fn, Arg: arg}, nil

	default:
		return w, nil
	}
}

// Convertible decides definitional equality of a and b: both sides reduce to
// weak head normal form and are compared structurally, recursing under
// binders. A hole on one side is solved against the other side's head, so a
// successful comparison may extend the store. The only error conditions are
// an exhausted reduction budget and an inconsistent solution, such as a
// cyclic one; an ordinary disagreement reports false with a nil error.
func (s *State) Convertible(a, b m.Term) (bool, error) {
	fuel := s.maxSteps
	return s.conv(a, b, &fuel)
}

func (s *State) conv(a, b m.Term, fuel *int) (bool, error) {
	wa, err := s.whnf(a, fuel)
	if err != nil {
		return false, err
	}
	wb, err := s.whnf(b, fuel)
	if err != nil {
		return false, err
	}

	// After whnf a surviving Meta is the unassigned end of its chain.
	if ma, ok := wa.(*m.Meta); ok {
		if mb, ok := wb.(*m.Meta); ok && ma.ID == mb.ID {
			return true, nil
		}

		return s.solve(ma.ID, wb)
	}
	if mb, ok := wb.(*m.Meta); ok {
		return s.solve(mb.ID, wa)
	}

	switch x := wa.(type) {
	case *m.Sort:
		_, ok := wb.(*m.Sort)
		return ok, nil

	case *m.Var:
		y, ok := wb.(*m.Var)
		return ok && x.Index == y.Index, nil

	case *m.Const:
		// Both heads are opaque or undeclared here, otherwise whnf would
		// have unfolded them.
		y, ok := wb.(*m.Const)
		return ok && x.Sym == y.Sym, nil

	case *m.Lam:
		y, ok := wb.(*m.Lam)
		if !ok {
			return false, nil
		}
		if ok, err := s.conv(x.Dom, y.Dom, fuel); !ok || err != nil {
			return ok, err
		}

		return s.conv(x.Body, y.Body, fuel)

	case *m.Pi:
		y, ok := wb.(*m.Pi)
		if !ok {
			return false, nil
		}
		if ok, err := s.conv(x.Dom, y.Dom, fuel); !ok || err != nil {
			return ok, err
		}

		return s.conv(x.Cod, y.Cod, fuel)

	case *m.App:
		y, ok := wb.(*m.App)
		if !ok {
			return false, nil
		}
		if ok, err := s.conv(x.Fn, y.Fn, fuel); !ok || err != nil {
			return ok, err
		}

		return s.conv(x.Arg, y.Arg, fuel)

	default:
		return false, nil
	}
}

func (s *State) solve(id m.MetaID, t m.Term) (bool, error) {
	if err := s.Assign(id, t); err != nil {
		return false, err
	}

	return true, nil
}
