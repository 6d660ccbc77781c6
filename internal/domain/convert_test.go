package domain

import (
	"errors"
	"testing"

	m "github.com/MathisBD/rocq/internal/model"
)

// convContext declares reduction fixtures straight into the context. Bodies
// are inserted unchecked on purpose: reduction and comparison must not care.
func convContext(t *testing.T) *GlobalContext {
	t.Helper()

	gc := NewGlobalContext()

	identity := &m.Lam{Binder: "x", Dom: m.Universe, Body: &m.Var{Index: 0}}
	selfApply := &m.Lam{Binder: "x", Dom: m.Universe, Body: &m.App{Fn: &m.Var{Index: 0}, Arg: &m.Var{Index: 0}}}

	fixtures := []struct {
		name   string
		entry  m.Entry
	}{
		{"A", m.Entry{Body: m.Universe, Type: m.Universe}},
		{"O", m.Entry{Body: m.Universe, Type: m.Universe, Opaque: true}},
		{"P", m.Entry{Body: m.Universe, Type: m.Universe, Opaque: true}},
		{"id", m.Entry{Body: identity, Type: &m.Pi{Binder: "x", Dom: m.Universe, Cod: m.Universe}}},
		{"selfapp", m.Entry{Body: selfApply, Type: m.Universe}},
	}
	for _, f := range fixtures {
		if err := gc.Insert(m.NewSymbol("Top", f.name), f.entry); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	return gc
}

func ref(name string) *m.Const {
	return &m.Const{Sym: m.NewSymbol("Top", name)}
}

func TestState_Whnf(t *testing.T) {
	gc := convContext(t)

	t.Run("beta reduces at the head", func(t *testing.T) {
		st := NewState(gc)

		// (fun (x : Type) => x) O
		term := &m.App{
			Fn:  &m.Lam{Binder: "x", Dom: m.Universe, Body: &m.Var{Index: 0}},
			Arg: ref("O"),
		}

		red, err := st.Whnf(term)
		if err != nil {
			t.Fatalf("Whnf failed: %v", err)
		}
		if !m.Equal(red, ref("O")) {
			t.Errorf("expected Top.O, got %v", red)
		}
	})

	t.Run("unfolds transparent constants", func(t *testing.T) {
		st := NewState(gc)

		red, err := st.Whnf(ref("A"))
		if err != nil {
			t.Fatalf("Whnf failed: %v", err)
		}
		if !m.Equal(red, m.Universe) {
			t.Errorf("expected the universe, got %v", red)
		}
	})

	t.Run("keeps opaque constants folded", func(t *testing.T) {
		st := NewState(gc)

		red, err := st.Whnf(ref("O"))
		if err != nil {
			t.Fatalf("Whnf failed: %v", err)
		}
		if !m.Equal(red, ref("O")) {
			t.Errorf("expected Top.O to stay folded, got %v", red)
		}
	})

	t.Run("unfolds a constant blocking a beta step", func(t *testing.T) {
		st := NewState(gc)

		red, err := st.Whnf(&m.App{Fn: ref("id"), Arg: ref("O")})
		if err != nil {
			t.Fatalf("Whnf failed: %v", err)
		}
		if !m.Equal(red, ref("O")) {
			t.Errorf("expected Top.O, got %v", red)
		}
	})

	t.Run("follows solved holes", func(t *testing.T) {
		st := NewState(gc)
		id := st.Fresh(KindTerm, "t")
		if err := st.Assign(id, ref("A")); err != nil {
			t.Fatalf("Assign failed: %v", err)
		}

		red, err := st.Whnf(&m.Meta{ID: id})
		if err != nil {
			t.Fatalf("Whnf failed: %v", err)
		}
		if !m.Equal(red, m.Universe) {
			t.Errorf("expected the solution to reduce through, got %v", red)
		}
	})

	t.Run("stops on the reduction budget", func(t *testing.T) {
		st := NewState(gc, WithMaxSteps(50))

		// selfapp selfapp loops forever.
		_, err := st.Whnf(&m.App{Fn: ref("selfapp"), Arg: ref("selfapp")})

		var ce *ConstraintError
		if !errors.As(err, &ce) {
			t.Fatalf("expected ConstraintError when the budget runs out, got %v", err)
		}
	})
}

func TestState_Normalize(t *testing.T) {
	gc := convContext(t)

	t.Run("reduces under binders", func(t *testing.T) {
		st := NewState(gc)

		// fun (y : A) => (fun (x : Type) => x) y
		term := &m.Lam{
			Binder: "y",
			Dom:    ref("A"),
			Body: &m.App{
				Fn:  &m.Lam{Binder: "x", Dom: m.Universe, Body: &m.Var{Index: 0}},
				Arg: &m.Var{Index: 0},
			},
		}

		normal, err := st.Normalize(term)
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}

		want := &m.Lam{Binder: "y", Dom: m.Universe, Body: &m.Var{Index: 0}}
		if !m.Equal(normal, want) {
			t.Errorf("expected fun (y : Type) => y, got %v", normal)
		}
	})

	t.Run("reduces inside stuck applications", func(t *testing.T) {
		st := NewState(gc)

		// O ((fun (x : Type) => x) A) is stuck at the head but not inside.
		term := &m.App{
			Fn: ref("O"),
			Arg: &m.App{
				Fn:  &m.Lam{Binder: "x", Dom: m.Universe, Body: &m.Var{Index: 0}},
				Arg: ref("A"),
			},
		}

		normal, err := st.Normalize(term)
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if !m.Equal(normal, &m.App{Fn: ref("O"), Arg: m.Universe}) {
			t.Errorf("expected the argument to reduce, got %v", normal)
		}
	})

	t.Run("keeps open holes in place", func(t *testing.T) {
		st := NewState(gc)
		id := st.Fresh(KindTerm, "t")

		normal, err := st.Normalize(&m.App{Fn: ref("O"), Arg: &m.Meta{ID: id}})
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if !m.Equal(normal, &m.App{Fn: ref("O"), Arg: &m.Meta{ID: id}}) {
			t.Errorf("expected the hole to survive, got %v", normal)
		}
	})
}

func TestState_Convertible(t *testing.T) {
	gc := convContext(t)

	t.Run("reflexive on terms with open holes", func(t *testing.T) {
		st := NewState(gc)
		id := st.Fresh(KindTerm, "t")

		term := &m.Lam{Binder: "x", Dom: m.Universe, Body: &m.App{Fn: ref("O"), Arg: &m.Meta{ID: id}}}

		ok, err := st.Convertible(term, term)
		if err != nil {
			t.Fatalf("Convertible failed: %v", err)
		}
		if !ok {
			t.Errorf("expected a term to be convertible with itself")
		}
		if len(st.Unassigned()) != 1 {
			t.Errorf("expected reflexivity to leave the hole open")
		}
	})

	t.Run("identifies beta delta equal terms", func(t *testing.T) {
		st := NewState(gc)

		left := &m.App{Fn: ref("id"), Arg: ref("O")}

		ok, err := st.Convertible(left, ref("O"))
		if err != nil {
			t.Fatalf("Convertible failed: %v", err)
		}
		if !ok {
			t.Errorf("expected id O to be convertible with O")
		}
	})

	t.Run("distinguishes opaque constants", func(t *testing.T) {
		st := NewState(gc)

		ok, err := st.Convertible(ref("O"), ref("P"))
		if err != nil {
			t.Fatalf("Convertible failed: %v", err)
		}
		if ok {
			t.Errorf("expected distinct opaque constants to differ")
		}
	})

	t.Run("solves a hole against the other side", func(t *testing.T) {
		st := NewState(gc)
		id := st.Fresh(KindTerm, "t")

		ok, err := st.Convertible(&m.Meta{ID: id}, ref("O"))
		if err != nil {
			t.Fatalf("Convertible failed: %v", err)
		}
		if !ok {
			t.Errorf("expected the comparison to succeed by solving the hole")
		}

		solution, resolved := st.Resolve(id)
		if !resolved || !m.Equal(solution, ref("O")) {
			t.Errorf("expected ?%d to be solved to Top.O, got %v", id, solution)
		}
	})

	t.Run("solves a hole at an applied head", func(t *testing.T) {
		st := NewState(gc)
		id := st.Fresh(KindTerm, "f")

		left := &m.App{Fn: &m.Meta{ID: id}, Arg: ref("P")}
		right := &m.App{Fn: ref("O"), Arg: ref("P")}

		ok, err := st.Convertible(left, right)
		if err != nil {
			t.Fatalf("Convertible failed: %v", err)
		}
		if !ok {
			t.Errorf("expected the head hole to be solved")
		}

		solution, resolved := st.Resolve(id)
		if !resolved || !m.Equal(solution, ref("O")) {
			t.Errorf("expected ?%d to be solved to Top.O, got %v", id, solution)
		}
	})

	t.Run("rejects a cyclic solution", func(t *testing.T) {
		st := NewState(gc)
		id := st.Fresh(KindTerm, "t")

		_, err := st.Convertible(&m.Meta{ID: id}, &m.App{Fn: ref("O"), Arg: &m.Meta{ID: id}})

		var ce *ConstraintError
		if !errors.As(err, &ce) {
			t.Fatalf("expected ConstraintError for a cyclic solution, got %v", err)
		}
	})

	t.Run("plain disagreement is not an error", func(t *testing.T) {
		st := NewState(gc)

		ok, err := st.Convertible(m.Universe, ref("O"))
		if err != nil {
			t.Fatalf("Convertible failed: %v", err)
		}
		if ok {
			t.Errorf("expected the universe and an opaque constant to differ")
		}
	})
}

func TestState_Convertible_OpacityGatesUnfolding(t *testing.T) {
	// g is a transparent alias of the opaque f: g x and f x agree, while an
	// unrelated opaque h never equals f.
	gc := convContext(t)

	f := &m.Lam{Binder: "x", Dom: ref("O"), Body: &m.Var{Index: 0}}
	fTy := &m.Pi{Binder: "x", Dom: ref("O"), Cod: ref("O")}

	for name, entry := range map[string]m.Entry{
		"f": {Body: f, Type: fTy, Opaque: true},
		"g": {Body: ref("f"), Type: fTy},
		"h": {Body: f, Type: fTy, Opaque: true},
	} {
		if err := gc.Insert(m.NewSymbol("Top", name), entry); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	st := NewState(gc)

	ok, err := st.Convertible(&m.App{Fn: ref("g"), Arg: ref("P")}, &m.App{Fn: ref("f"), Arg: ref("P")})
	if err != nil {
		t.Fatalf("Convertible failed: %v", err)
	}
	if !ok {
		t.Errorf("expected g to unfold to f")
	}

	ok, err = st.Convertible(&m.App{Fn: ref("h"), Arg: ref("P")}, &m.App{Fn: ref("f"), Arg: ref("P")})
	if err != nil {
		t.Fatalf("Convertible failed: %v", err)
	}
	if ok {
		t.Errorf("expected the opaque h to stay distinct from f")
	}
}
