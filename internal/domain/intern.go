package domain

import (
	"fmt"

	m "github.com/MathisBD/rocq/internal/model"
)

// Intern translates surface syntax into a core term. Names resolve to the
// innermost matching binder first, then to a context lookup qualified by the
// state's namespace. Every hole and missing binder annotation allocates a
// fresh metavariable, so interning grows the store as a side effect.
func (s *State) Intern(e m.Expr) (m.Term, error) {
	return s.intern(e, nil, false)
}

// InternType interns surface syntax that stands in a type position, such as
// the annotation of a definition. Holes created here are type holes.
func (s *State) InternType(e m.Expr) (m.Term, error) {
	return s.intern(e, nil, true)
}

// InternAll interns a sequence of terms against the same state, left to
// right, so holes allocated for earlier terms stay visible to later ones. An
// empty sequence is rejected with ArityError.
func (s *State) InternAll(exprs []m.Expr) ([]m.Term, error) {
	if len(exprs) == 0 {
		return nil, &ArityError{What: "term"}
	}

	terms := make([]m.Term, 0, len(exprs))

	for _, e := range exprs {
		t, err := s.Intern(e)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}

	return terms, nil
}

func (s *State) intern(e m.Expr, locals []string, asType bool) (m.Term, error) {
	switch x := e.(type) {
	case *m.SName:
		for i := len(locals) - 1; i >= 0; i-- {
			if locals[i] == x.Name && x.Name != "_" {
				return &m.Var{Index: len(locals) - 1 - i, Hint: x.Name}, nil
			}
		}

		sym := m.ParseSymbol(x.Name, s.space)
		if _, ok := s.view.Lookup(sym); !ok {
			return nil, &UnknownReferenceError{Name: x.Name}
		}

		return &m.Const{Sym: sym}, nil

	case *m.SHole:
		kind := KindTerm
		if asType {
			kind = KindType
		}

		return &m.Meta{ID: s.Fresh(kind, "hole")}, nil

	case *m.SType:
		return m.Universe, nil

	case *m.SFun:
		dom, err := s.internAnnotation(x.Ann, x.Param, locals)
		if err != nil {
			return nil, err
		}

		body, err := s.intern(x.Body, append(locals, x.Param), asType)
		if err != nil {
			return nil, err
		}

		return &m.Lam{Binder: x.Param, Dom: dom, Body: body}, nil

	case *m.SArrow:
		dom, err := s.intern(x.Dom, locals, true)
		if err != nil {
			return nil, err
		}

		binder := x.Param
		if binder == "" {
			binder = "_"
		}

		cod, err := s.intern(x.Cod, append(locals, binder), true)
		if err != nil {
			return nil, err
		}

		return &m.Pi{Binder: binder, Dom: dom, Cod: cod}, nil

	case *m.SApp:
		fn, err := s.intern(x.Fn, locals, false)
		if err != nil {
			return nil, err
		}

		arg, err := s.intern(x.Arg, locals, false)
		if err != nil {
			return nil, err
		}

		return &m.App{Fn: fn, Arg: arg}, nil

	default:
		return nil, fmt.Errorf("unknown surface form %T", e)
	}
}

// internAnnotation interns a binder annotation, allocating a type hole when
// the binder was written without one.
func (s *State) internAnnotation(ann m.Expr, param string, locals []string) (m.Term, error) {
	if ann == nil {
		return &m.Meta{ID: s.Fresh(KindType, "type of "+param)}, nil
	}

	return s.intern(ann, locals, true)
}
