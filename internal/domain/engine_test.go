package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MathisBD/rocq/internal/domain"
	m "github.com/MathisBD/rocq/internal/model"
)

// Surface shorthand for tests.
func nm(name string) m.Expr               { return &m.SName{Name: name} }
func hole() m.Expr                        { return &m.SHole{} }
func univ() m.Expr                        { return &m.SType{} }
func fn(param string, body m.Expr) m.Expr { return &m.SFun{Param: param, Body: body} }
func fnT(param string, ann, body m.Expr) m.Expr {
	return &m.SFun{Param: param, Ann: ann, Body: body}
}
func arrow(dom, cod m.Expr) m.Expr { return &m.SArrow{Dom: dom, Cod: cod} }
func darrow(param string, dom, cod m.Expr) m.Expr {
	return &m.SArrow{Param: param, Dom: dom, Cod: cod}
}
func ap(f, a m.Expr) m.Expr { return &m.SApp{Fn: f, Arg: a} }

func newTestEngine() (domain.Engine, *domain.GlobalContext) {
	gc := domain.NewGlobalContext()
	return domain.NewEngine(gc, "Top", 0), gc
}

func mustDefine(t *testing.T, eng domain.Engine, req domain.DefineRequest) domain.DefineResult {
	t.Helper()

	res, err := eng.Define(context.Background(), req)
	require.NoError(t, err)

	return res
}

func TestEngine_Define_DefaultsUnconstrainedTypeHoles(t *testing.T) {
	// Arrange
	eng, _ := newTestEngine()

	// Act: define Id := fun x => x, with no annotation anywhere.
	res, err := eng.Define(context.Background(), domain.DefineRequest{
		Name: "Id",
		Body: fn("x", nm("x")),
		Echo: true,
	})

	// Assert: the missing binder annotation defaulted to the universe.
	require.NoError(t, err)
	assert.Equal(t, "Top.Id", res.Sym.Full())
	require.True(t, res.Echoed)

	wantBody := &m.Lam{Binder: "x", Dom: m.Universe, Body: &m.Var{Index: 0}}
	wantType := &m.Pi{Binder: "x", Dom: m.Universe, Cod: m.Universe}
	assert.True(t, m.Equal(res.Entry.Body, wantBody), "body: %v", res.Entry.Body)
	assert.True(t, m.Equal(res.Entry.Type, wantType), "type: %v", res.Entry.Type)
}

func TestEngine_Define_NeverDefaultsTermHoles(t *testing.T) {
	// Arrange
	eng, gc := newTestEngine()

	// Act: define Broken := _.
	_, err := eng.Define(context.Background(), domain.DefineRequest{
		Name: "Broken",
		Body: hole(),
	})

	// Assert
	var under *domain.UnderspecifiedTermError
	require.True(t, errors.As(err, &under), "expected an unresolved hole, got %v", err)
	assert.Equal(t, 0, gc.View().Len(), "a failed define must not publish anything")
}

func TestEngine_Define_DependentIdentity(t *testing.T) {
	// Arrange
	eng, _ := newTestEngine()

	// Act: define id : (A : Type) -> A -> A := fun A => fun a => a.
	res, err := eng.Define(context.Background(), domain.DefineRequest{
		Name: "id",
		Type: darrow("A", univ(), arrow(nm("A"), nm("A"))),
		Body: fn("A", fn("a", nm("a"))),
		Echo: true,
	})

	// Assert: the binder holes were solved from the expected type.
	require.NoError(t, err)
	require.True(t, res.Echoed)

	wantBody := &m.Lam{
		Binder: "A",
		Dom:    m.Universe,
		Body:   &m.Lam{Binder: "a", Dom: &m.Var{Index: 0}, Body: &m.Var{Index: 0}},
	}
	assert.True(t, m.Equal(res.Entry.Body, wantBody), "body: %v", res.Entry.Body)
}

func TestEngine_Define_RejectsMismatchedAnnotation(t *testing.T) {
	// Arrange
	eng, _ := newTestEngine()
	mustDefine(t, eng, domain.DefineRequest{Name: "A", Body: univ()})

	// Act: define bad : A -> A := fun (x : Type -> Type) => x.
	_, err := eng.Define(context.Background(), domain.DefineRequest{
		Name: "bad",
		Type: arrow(nm("A"), nm("A")),
		Body: fnT("x", arrow(univ(), univ()), nm("x")),
	})

	// Assert
	var te *domain.TypingError
	require.True(t, errors.As(err, &te), "expected a typing error, got %v", err)
	assert.Equal(t, domain.ReasonMismatch, te.Reason)
}

func TestEngine_Define_RejectsRedeclaration(t *testing.T) {
	// Arrange
	eng, _ := newTestEngine()
	mustDefine(t, eng, domain.DefineRequest{Name: "Once", Body: univ()})

	// Act
	_, err := eng.Define(context.Background(), domain.DefineRequest{Name: "Once", Body: univ()})

	// Assert
	var collision *domain.NameCollisionError
	require.True(t, errors.As(err, &collision), "expected a collision, got %v", err)
}

func TestEngine_Define_UnknownBodyReference(t *testing.T) {
	// Arrange
	eng, _ := newTestEngine()

	// Act
	_, err := eng.Define(context.Background(), domain.DefineRequest{
		Name: "ghost",
		Body: nm("NoSuchThing"),
	})

	// Assert
	var unknown *domain.UnknownReferenceError
	require.True(t, errors.As(err, &unknown), "expected an unknown reference, got %v", err)
	assert.Equal(t, "NoSuchThing", unknown.Name)
}

func TestEngine_Check_Batch(t *testing.T) {
	// Arrange
	eng, _ := newTestEngine()
	mustDefine(t, eng, domain.DefineRequest{Name: "A", Body: univ()})
	mustDefine(t, eng, domain.DefineRequest{
		Name: "f",
		Type: arrow(nm("A"), nm("A")),
		Body: fn("x", nm("x")),
	})

	// Act: check three terms, one of them broken, on two workers.
	results, err := eng.Check(context.Background(), domain.CheckRequest{
		Terms: []m.Expr{
			nm("f"),
			ap(nm("f"), nm("A")),
			ap(nm("A"), nm("A")),
		},
		Jobs: 2,
	})

	// Assert: results stay aligned with the inputs and failures stay local.
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.NoError(t, results[0].Err)
	assert.True(t, m.Equal(results[0].Type, &m.Pi{Binder: "_", Dom: &m.Const{Sym: m.NewSymbol("Top", "A")}, Cod: &m.Const{Sym: m.NewSymbol("Top", "A")}}),
		"type of f: %v", results[0].Type)

	require.NoError(t, results[1].Err)

	var te *domain.TypingError
	require.True(t, errors.As(results[2].Err, &te), "expected the third term to fail, got %v", results[2].Err)
	assert.Equal(t, domain.ReasonNonFunction, te.Reason)
}

func TestEngine_Check_Against(t *testing.T) {
	// Arrange
	eng, _ := newTestEngine()
	mustDefine(t, eng, domain.DefineRequest{Name: "A", Body: univ()})

	// Act
	results, err := eng.Check(context.Background(), domain.CheckRequest{
		Terms:   []m.Expr{fn("x", nm("x")), univ()},
		Against: arrow(nm("A"), nm("A")),
	})

	// Assert: the lambda checks against A -> A, the universe does not.
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.NoError(t, results[0].Err)

	var te *domain.TypingError
	require.True(t, errors.As(results[1].Err, &te), "expected a mismatch, got %v", results[1].Err)
	assert.Equal(t, domain.ReasonMismatch, te.Reason)
}

func TestEngine_Check_RejectsEmptyBatch(t *testing.T) {
	eng, _ := newTestEngine()

	_, err := eng.Check(context.Background(), domain.CheckRequest{})

	var arity *domain.ArityError
	require.True(t, errors.As(err, &arity), "expected ArityError, got %v", err)
}

func TestEngine_Eval(t *testing.T) {
	// Arrange
	eng, _ := newTestEngine()
	mustDefine(t, eng, domain.DefineRequest{
		Name:    "B",
		Body:    univ(),
		Options: domain.DeclareOptions{Opaque: true},
	})
	mustDefine(t, eng, domain.DefineRequest{
		Name: "apply",
		Type: darrow("T", univ(), arrow(nm("T"), nm("T"))),
		Body: fn("T", fn("x", nm("x"))),
	})

	// Act: eval apply Type B, which beta-reduces away while the opaque B
	// stays folded.
	res, err := eng.Eval(context.Background(), domain.EvalRequest{
		Term: ap(ap(nm("apply"), univ()), nm("B")),
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, m.Equal(res.Normal, &m.Const{Sym: m.NewSymbol("Top", "B")}), "normal form: %v", res.Normal)
	assert.True(t, m.Equal(res.Type, m.Universe), "type: %v", res.Type)
}

func TestEngine_Conv_OpacityScenario(t *testing.T) {
	// Arrange: g is a transparent alias of f; h is an opaque twin of f.
	eng, _ := newTestEngine()
	mustDefine(t, eng, domain.DefineRequest{Name: "A", Body: univ()})
	mustDefine(t, eng, domain.DefineRequest{
		Name: "f",
		Body: fnT("x", nm("A"), nm("x")),
	})
	mustDefine(t, eng, domain.DefineRequest{Name: "g", Body: nm("f")})
	mustDefine(t, eng, domain.DefineRequest{
		Name:    "h",
		Body:    fnT("x", nm("A"), nm("x")),
		Options: domain.DeclareOptions{Opaque: true},
	})
	mustDefine(t, eng, domain.DefineRequest{
		Name:    "c",
		Type:    nm("A"),
		Body:    nm("A"),
		Options: domain.DeclareOptions{Opaque: true},
	})

	t.Run("a transparent alias unfolds", func(t *testing.T) {
		res, err := eng.Conv(context.Background(), domain.ConvRequest{
			Left:  ap(nm("g"), nm("c")),
			Right: ap(nm("f"), nm("c")),
		})
		require.NoError(t, err)
		assert.True(t, res.Convertible)
	})

	t.Run("an opaque definition stays folded", func(t *testing.T) {
		res, err := eng.Conv(context.Background(), domain.ConvRequest{
			Left:  ap(nm("h"), nm("c")),
			Right: ap(nm("f"), nm("c")),
		})
		require.NoError(t, err)
		assert.False(t, res.Convertible)
	})
}

func TestEngine_ShowAndEntries(t *testing.T) {
	// Arrange
	eng, _ := newTestEngine()
	mustDefine(t, eng, domain.DefineRequest{Name: "First", Body: univ()})
	mustDefine(t, eng, domain.DefineRequest{Name: "Second", Body: fn("x", nm("x"))})

	t.Run("show resolves bare and qualified names alike", func(t *testing.T) {
		bare, err := eng.Show(context.Background(), "First")
		require.NoError(t, err)

		qualified, err := eng.Show(context.Background(), "Top.First")
		require.NoError(t, err)

		assert.Equal(t, bare.Sym, qualified.Sym)
	})

	t.Run("show rejects unknown symbols", func(t *testing.T) {
		_, err := eng.Show(context.Background(), "Missing")

		var unknown *domain.UnknownReferenceError
		require.True(t, errors.As(err, &unknown), "expected an unknown reference, got %v", err)
	})

	t.Run("entries come back in declaration order", func(t *testing.T) {
		entries, err := eng.Entries(context.Background())
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "Top.First", entries[0].Sym.Full())
		assert.Equal(t, "Top.Second", entries[1].Sym.Full())
	})
}

func TestEngine_DefinitionsComposeAcrossInvocations(t *testing.T) {
	// Arrange
	eng, _ := newTestEngine()

	// Act: each define sees the previous one through a fresh snapshot.
	mustDefine(t, eng, domain.DefineRequest{Name: "A", Body: univ()})
	mustDefine(t, eng, domain.DefineRequest{
		Name: "twice",
		Type: arrow(nm("A"), nm("A")),
		Body: fn("x", nm("x")),
	})
	res, err := eng.Eval(context.Background(), domain.EvalRequest{
		Term: ap(nm("twice"), ap(nm("twice"), nm("A"))),
	})

	// Assert: A unfolds to the universe during normalization.
	require.NoError(t, err)
	assert.True(t, m.Equal(res.Normal, m.Universe), "normal form: %v", res.Normal)
}
