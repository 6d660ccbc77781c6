package domain_test

import (
	"context"
	"testing"

	"github.com/MathisBD/rocq/internal/domain"
	m "github.com/MathisBD/rocq/internal/model"
)

// Church numerals drive every engine operation against one shared
// environment: definitions build on each other, conversion decides an
// arithmetic equation by reduction alone, and evaluation produces the
// literal numeral.
func TestChurchNumeralIntegration(t *testing.T) {
	eng, _ := newTestEngine()
	ctx := context.Background()

	churchNat := darrow("A", univ(),
		arrow(arrow(nm("A"), nm("A")), arrow(nm("A"), nm("A"))))

	if _, err := eng.Define(ctx, domain.DefineRequest{
		Name:    "CNat",
		Body:    churchNat,
		Options: domain.DeclareOptions{Polymorphic: true},
	}); err != nil {
		t.Fatalf("define CNat: %v", err)
	}

	numeralBody := func(applied m.Expr) m.Expr {
		return fnT("A", univ(), fnT("f", arrow(nm("A"), nm("A")), fnT("x", nm("A"), applied)))
	}

	defs := []struct {
		name string
		ty   m.Expr
		body m.Expr
	}{
		{
			name: "czero",
			ty:   nm("CNat"),
			body: numeralBody(nm("x")),
		},
		{
			// The binder annotation is left as a hole to be solved
			// against the declared type.
			name: "csucc",
			ty:   arrow(nm("CNat"), nm("CNat")),
			body: fn("n", numeralBody(
				ap(nm("f"), ap(ap(ap(nm("n"), nm("A")), nm("f")), nm("x"))))),
		},
		{
			name: "cplus",
			ty:   arrow(nm("CNat"), arrow(nm("CNat"), nm("CNat"))),
			body: fn("n", fn("k", numeralBody(
				ap(ap(ap(nm("n"), nm("A")), nm("f")),
					ap(ap(ap(nm("k"), nm("A")), nm("f")), nm("x")))))),
		},
		{name: "cone", body: ap(nm("csucc"), nm("czero"))},
		{name: "ctwo", body: ap(nm("csucc"), nm("cone"))},
	}

	for _, def := range defs {
		if _, err := eng.Define(ctx, domain.DefineRequest{
			Name: def.name,
			Type: def.ty,
			Body: def.body,
		}); err != nil {
			t.Fatalf("define %s: %v", def.name, err)
		}
	}

	onePlusOne := ap(ap(nm("cplus"), nm("cone")), nm("cone"))

	conv, err := eng.Conv(ctx, domain.ConvRequest{Left: onePlusOne, Right: nm("ctwo")})
	if err != nil {
		t.Fatalf("conv cplus cone cone ~ ctwo: %v", err)
	}
	if !conv.Convertible {
		t.Error("expected cplus cone cone to be convertible with ctwo")
	}

	conv, err = eng.Conv(ctx, domain.ConvRequest{Left: nm("cone"), Right: nm("ctwo")})
	if err != nil {
		t.Fatalf("conv cone ~ ctwo: %v", err)
	}
	if conv.Convertible {
		t.Error("expected cone and ctwo to stay distinct")
	}

	// 1 + 1 also reduces to the numeral written out by hand.
	literalTwo := numeralBody(ap(nm("f"), ap(nm("f"), nm("x"))))

	conv, err = eng.Conv(ctx, domain.ConvRequest{Left: onePlusOne, Right: literalTwo})
	if err != nil {
		t.Fatalf("conv cplus cone cone ~ literal: %v", err)
	}
	if !conv.Convertible {
		t.Error("expected cplus cone cone to reduce to the literal numeral for 2")
	}

	res, err := eng.Eval(ctx, domain.EvalRequest{Term: onePlusOne})
	if err != nil {
		t.Fatalf("eval cplus cone cone: %v", err)
	}
	if _, ok := res.Normal.(*m.Lam); !ok {
		t.Errorf("expected a lambda normal form, got %T", res.Normal)
	}

	shown, err := eng.Show(ctx, "CNat")
	if err != nil {
		t.Fatalf("show CNat: %v", err)
	}
	if !shown.Entry.Polymorphic {
		t.Error("expected CNat to keep its polymorphic attribute")
	}

	entries, err := eng.Entries(ctx)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 6 {
		t.Errorf("expected 6 declarations, got %d", len(entries))
	}
}
