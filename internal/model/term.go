package model

// Term is a core term: the structurally uniform representation used for
// checking, reduction and comparison. Bound variables use de Bruijn indices;
// binders keep the user-written name only as a printing hint.
type Term interface {
	isTerm()
}

// Sort is the universe of types. The calculus has a single universe with
// Type : Type.
type Sort struct{}

// Var is a bound variable as a de Bruijn index. Hint carries the surface name
// for printing and has no semantic meaning.
type Var struct {
	Index int
	Hint  string
}

// Const references a declared Symbol in the global context.
type Const struct {
	Sym Symbol
}

// Meta references a metavariable owned by the elaboration state.
type Meta struct {
	ID MetaID
}

// Lam is an abstraction: fun (x : Dom) => Body.
type Lam struct {
	Binder string
	Dom    Term
	Body   Term
}

// Pi is a dependent function type: (x : Dom) -> Cod.
type Pi struct {
	Binder string
	Dom    Term
	Cod    Term
}

// App is an application.
type App struct {
	Fn  Term
	Arg Term
}

func (*Sort) isTerm()  {}
func (*Var) isTerm()   {}
func (*Const) isTerm() {}
func (*Meta) isTerm()  {}
func (*Lam) isTerm()   {}
func (*Pi) isTerm()    {}
func (*App) isTerm()   {}

// Universe is the canonical Sort value. Terms are immutable by convention, so
// sharing it is safe.
var Universe = &Sort{}

// Equal reports structural equality. Binder names and variable hints are
// ignored: with de Bruijn indices alpha-equivalent terms are structurally
// identical. Metavariables compare by identity.
func Equal(a, b Term) bool {
	switch x := a.(type) {
	case *Sort:
		_, ok := b.(*Sort)
		return ok
	case *Var:
		y, ok := b.(*Var)
		return ok && x.Index == y.Index
	case *Const:
		y, ok := b.(*Const)
		return ok && x.Sym == y.Sym
	case *Meta:
		y, ok := b.(*Meta)
		return ok && x.ID == y.ID
	case *Lam:
		y, ok := b.(*Lam)
		return ok && Equal(x.Dom, y.Dom) && Equal(x.Body, y.Body)
	case *Pi:
		y, ok := b.(*Pi)
		return ok && Equal(x.Dom, y.Dom) && Equal(x.Cod, y.Cod)
	case *App:
		y, ok := b.(*App)
		return ok && Equal(x.Fn, y.Fn) && Equal(x.Arg, y.Arg)
	}

	return false
}

// mapVars rebuilds t applying onVar to every variable, tracking how many
// binders have been crossed. Leaves without variables are shared, not copied.
func mapVars(t Term, cutoff int, onVar func(cutoff int, v *Var) Term) Term {
	switch x := t.(type) {
	case *Var:
		return onVar(cutoff, x)
	case *Lam:
		return &Lam{
			Binder: x.Binder,
			Dom:    mapVars(x.Dom, cutoff, onVar),
			Body:   mapVars(x.Body, cutoff+1, onVar),
		}
	case *Pi:
		return &Pi{
			Binder: x.Binder,
			Dom:    mapVars(x.Dom, cutoff, onVar),
			Cod:    mapVars(x.Cod, cutoff+1, onVar),
		}
	case *App:
		return &App{
			Fn:  mapVars(x.Fn, cutoff, onVar),
			Arg: mapVars(x.Arg, cutoff, onVar),
		}
	default:
		return t
	}
}

// ShiftAbove adds d to every variable index at or above the cutoff.
func ShiftAbove(t Term, d, cutoff int) Term {
	return mapVars(t, cutoff, func(c int, v *Var) Term {
		if v.Index >= c {
			return &Var{Index: v.Index + d, Hint: v.Hint}
		}

		return v
	})
}

// Shift adds d to every free variable index in t.
func Shift(t Term, d int) Term {
	return ShiftAbove(t, d, 0)
}

// subst replaces variable j (relative to the binders crossed) with s.
func subst(t Term, j int, s Term) Term {
	return mapVars(t, 0, func(c int, v *Var) Term {
		if v.Index == j+c {
			return Shift(s, c)
		}

		return v
	})
}

// Open instantiates the bound variable of a binder body with arg: the usual
// beta step body[0 := arg] with the surrounding indices adjusted.
func Open(body, arg Term) Term {
	return Shift(subst(body, 0, Shift(arg, 1)), -1)
}

// Uses reports whether t references the variable with the given index,
// counting binder crossings. The printer uses it to decide between the
// "(x : A) -> B" and "A -> B" renderings.
func Uses(t Term, index int) bool {
	found := false
	mapVars(t, 0, func(c int, v *Var) Term {
		if v.Index == index+c {
			found = true
		}

		return v
	})

	return found
}

// Closed reports whether t has no free variables. Open terms cannot be stored
// in the global context or assigned to metavariables.
func Closed(t Term) bool {
	closed := true
	mapVars(t, 0, func(c int, v *Var) Term {
		if v.Index >= c {
			closed = false
		}

		return v
	})

	return closed
}

// Metas collects the metavariables syntactically present in t, in traversal
// order, without duplicates.
func Metas(t Term) []MetaID {
	var ids []MetaID

	seen := make(map[MetaID]bool)

	var walk func(Term)
	walk = func(t Term) {
		switch x := t.(type) {
		case *Meta:
			if !seen[x.ID] {
				seen[x.ID] = true
				ids = append(ids, x.ID)
			}
		case *Lam:
			walk(x.Dom)
			walk(x.Body)
		case *Pi:
			walk(x.Dom)
			walk(x.Cod)
		case *App:
			walk(x.Fn)
			walk(x.Arg)
		}
	}
	walk(t)

	return ids
}
