package domain

import (
	"fmt"

	m "github.com/MathisBD/rocq/internal/model"
)

// Infer synthesizes the type of t bottom-up. It never allocates
// metavariables and is strict about existing ones: an unassigned hole in a
// position whose type is needed fails with UnderspecifiedTermError. Checking
// an application argument may still solve holes through Convertible.
func (s *State) Infer(t m.Term) (m.Term, error) {
	return s.inferIn(nil, t)
}

// inferIn synthesizes under a typing environment: env holds the domain of
// every binder crossed so far, outermost first.
func (s *State) inferIn(env []m.Term, t m.Term) (m.Term, error) {
	switch x := t.(type) {
	case *m.Sort:
		// The single universe types itself.
		return m.Universe, nil

	case *m.Var:
		if x.Index < 0 || x.Index >= len(env) {
			return nil, &TypingError{
				Reason: ReasonUnboundVariable,
				Term:   x,
				Detail: fmt.Sprintf("variable index %d escapes its scope", x.Index),
			}
		}
		// The stored domain is relative to the binders outside it; zonk so
		// shifting sees the indices inside any solved holes, then shift it
		// under the binders crossed since.
		return m.Shift(s.Zonk(env[len(env)-1-x.Index]), x.Index+1), nil

	case *m.Const:
		entry, ok := s.view.Lookup(x.Sym)
		if !ok {
			return nil, &TypingError{
				Reason: ReasonUnboundVariable,
				Term:   x,
				Detail: fmt.Sprintf("constant %s is not in the context", x.Sym.Full()),
			}
		}

		return entry.Type, nil

	case *m.Meta:
		if solution, ok := s.Resolve(x.ID); ok {
			return s.inferIn(env, solution)
		}

		return nil, &UnderspecifiedTermError{Metas: s.Unresolved(x)}

	case *m.Lam:
		if err := s.ensureType(env, x.Dom); err != nil {
			return nil, err
		}
		bodyTy, err := s.inferIn(append(env, x.Dom), x.Body)
		if err != nil {
			return nil, err
		}

		return &m.Pi{Binder: x.Binder, Dom: x.Dom, Cod: bodyTy}, nil

	case *m.Pi:
		if err := s.ensureType(env, x.Dom); err != nil {
			return nil, err
		}
		if err := s.ensureType(append(env, x.Dom), x.Cod); err != nil {
			return nil, err
		}

		return m.Universe, nil

	case *m.App:
		fnTy, err := s.inferIn(env, x.Fn)
		if err != nil {
			return nil, err
		}
		red, err := s.Whnf(fnTy)
		if err != nil {
			return nil, err
		}
		pi, ok := red.(*m.Pi)
		if !ok {
			return nil, &TypingError{
				Reason: ReasonNonFunction,
				Term:   x.Fn,
				Actual: red,
				Detail: "the head of an application is not a function",
			}
		}
		argTy, err := s.inferIn(env, x.Arg)
		if err != nil {
			return nil, err
		}
		ok, err = s.Convertible(argTy, pi.Dom)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &TypingError{
				Reason:   ReasonMismatch,
				Term:     x.Arg,
				Expected: pi.Dom,
				Actual:   argTy,
			}
		}

		return m.Open(s.Zonk(pi.Cod), x.Arg), nil

	default:
		return nil, &TypingError{Reason: ReasonMalformed, Term: t, Detail: fmt.Sprintf("unknown term form %T", t)}
	}
}

// ensureType verifies that t can stand in a type position: its synthesized
// type must reduce to the universe.
func (s *State) ensureType(env []m.Term, t m.Term) error {
	ty, err := s.inferIn(env, t)
	if err != nil {
		return err
	}
	red, err := s.Whnf(ty)
	if err != nil {
		return err
	}
	if _, ok := red.(*m.Sort); !ok {
		return &TypingError{
			Reason: ReasonMalformed,
			Term:   t,
			Actual: red,
			Detail: "used as a type but does not live in the universe",
		}
	}

	return nil
}

// Check validates t against an expected type, descending through binders
// before falling back to synthesis. Going expected-first lets holes in
// binder annotations pick up their solution from the expected domain, so
// Check succeeds on terms Infer alone would reject as underspecified. The
// returned type is the validated one; it is convertible with expected.
func (s *State) Check(t, expected m.Term) (m.Term, error) {
	return s.checkIn(nil, t, expected)
}

func (s *State) checkIn(env []m.Term, t, expected m.Term) (m.Term, error) {
	red, err := s.Whnf(expected)
	if err != nil {
		return nil, err
	}

	if lam, ok := t.(*m.Lam); ok {
		if pi, ok := red.(*m.Pi); ok {
			ok, err := s.Convertible(lam.Dom, pi.Dom)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, &TypingError{
					Reason:   ReasonMismatch,
					Term:     lam.Dom,
					Expected: pi.Dom,
					Actual:   lam.Dom,
					Detail:   "binder annotation disagrees with the expected domain",
				}
			}
			// The annotation and the expected domain agree; one of them
			// still has to be a type.
			if err := s.ensureType(env, pi.Dom); err != nil {
				return nil, err
			}
			if _, err := s.checkIn(append(env, pi.Dom), lam.Body, pi.Cod); err != nil {
				return nil, err
			}

			return expected, nil
		}
	}

	actual, err := s.inferIn(env, t)
	if err != nil {
		return nil, err
	}
	ok, err := s.Convertible(actual, red)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &TypingError{
			Reason:   ReasonMismatch,
			Term:     t,
			Expected: expected,
			Actual:   actual,
		}
	}

	return actual, nil
}
