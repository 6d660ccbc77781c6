package domain

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	m "github.com/MathisBD/rocq/internal/model"
)

// Engine runs interpreter operations against a shared global context. Every
// call elaborates in a private state over a point-in-time snapshot, so
// concurrent calls never observe each other's half-finished work; only a
// successful Define publishes anything.
type Engine interface {
	// Define elaborates a definition and declares it in the global context.
	Define(ctx context.Context, req DefineRequest) (DefineResult, error)
	// Check type-checks each term independently, against an expected type
	// when one is given. Per-term failures land in the matching result; the
	// returned error reports only cancellation.
	Check(ctx context.Context, req CheckRequest) ([]CheckResult, error)
	// Eval type-checks a term and reduces it to normal form.
	Eval(ctx context.Context, req EvalRequest) (EvalResult, error)
	// Conv decides whether two terms are definitionally equal.
	Conv(ctx context.Context, req ConvRequest) (ConvResult, error)
	// Show looks up a declared symbol.
	Show(ctx context.Context, name string) (EnvEntry, error)
	// Entries lists all declarations in declaration order.
	Entries(ctx context.Context) ([]EnvEntry, error)
}

// DefineRequest names a definition and its surface parts. Type may be nil
// for an unannotated definition. Echo asks for the stored entry to be read
// back in the result.
type DefineRequest struct {
	Name    string
	Type    m.Expr
	Body    m.Expr
	Options DeclareOptions
	Echo    bool
}

// DefineResult reports the declared symbol and, when echo was requested, the
// entry as the context now holds it.
type DefineResult struct {
	Sym    m.Symbol
	Entry  m.Entry
	Echoed bool
}

// CheckRequest holds the terms to check. Against is the optional expected
// type, elaborated once per term so each check stays independent. Jobs bounds
// how many terms are checked concurrently.
type CheckRequest struct {
	Terms   []m.Expr
	Against m.Expr
	Jobs    int
}

// CheckResult pairs a checked term with its type, or with the failure that
// rejected it.
type CheckResult struct {
	Term m.Term
	Type m.Term
	Err  error
}

// EvalRequest holds the term to evaluate.
type EvalRequest struct {
	Term m.Expr
}

// EvalResult reports the elaborated term, its type and its normal form.
type EvalResult struct {
	Term   m.Term
	Type   m.Term
	Normal m.Term
}

// ConvRequest holds the two sides of a convertibility question.
type ConvRequest struct {
	Left  m.Expr
	Right m.Expr
}

// ConvResult reports the elaborated sides and the verdict.
type ConvResult struct {
	Left        m.Term
	Right       m.Term
	Convertible bool
}

// EnvEntry pairs a declared symbol with its entry.
type EnvEntry struct {
	Sym   m.Symbol
	Entry m.Entry
}

type engine struct {
	gc       *GlobalContext
	space    string
	maxSteps int
}

// NewEngine creates an Engine over gc. Bare names are qualified with space;
// maxSteps bounds reduction per call, falling back to DefaultMaxSteps when
// not positive.
func NewEngine(gc *GlobalContext, space string, maxSteps int) Engine {
	return &engine{gc: gc, space: space, maxSteps: maxSteps}
}

func (e *engine) newState() *State {
	return NewState(e.gc, WithNamespace(e.space), WithMaxSteps(e.maxSteps))
}

// Define implements Engine.
func (e *engine) Define(ctx context.Context, req DefineRequest) (DefineResult, error) {
	if err := ctx.Err(); err != nil {
		return DefineResult{}, err
	}

	sym := m.ParseSymbol(req.Name, e.space)
	st := e.newState()

	var ty, body m.Term

	if req.Type != nil {
		var err error
		if ty, err = st.InternType(req.Type); err != nil {
			return DefineResult{}, err
		}
		if body, err = st.Intern(req.Body); err != nil {
			return DefineResult{}, err
		}
		if err := e.retryingDefaults(st, func() error {
			return st.ensureType(nil, ty)
		}); err != nil {
			return DefineResult{}, err
		}
		if err := e.retryingDefaults(st, func() error {
			_, err := st.Check(body, ty)
			return err
		}); err != nil {
			return DefineResult{}, err
		}
	} else {
		var err error
		if body, err = st.Intern(req.Body); err != nil {
			return DefineResult{}, err
		}
		if err := e.retryingDefaults(st, func() error {
			ty, err = st.Infer(body)
			return err
		}); err != nil {
			return DefineResult{}, err
		}
	}

	if err := Declare(e.gc, st, sym, body, ty, req.Options); err != nil {
		return DefineResult{}, err
	}

	res := DefineResult{Sym: sym}
	if req.Echo {
		st.Refresh(e.gc)
		res.Entry, res.Echoed = st.Context().Lookup(sym)
	}

	return res, nil
}

// retryingDefaults runs an elaboration step and, when it fails only because
// type holes are still open, defaults every unconstrained type hole to the
// universe and retries once. Term holes are never defaulted, so a definition
// with a genuinely missing piece still fails.
func (e *engine) retryingDefaults(st *State, run func() error) error {
	err := run()
	if err == nil {
		return nil
	}

	var under *UnderspecifiedTermError
	if !errors.As(err, &under) {
		return err
	}
	if !e.defaultTypeHoles(st) {
		return err
	}

	return run()
}

func (e *engine) defaultTypeHoles(st *State) bool {
	defaulted := false

	for _, id := range st.Unassigned() {
		kind, ok := st.KindOf(id)
		if !ok || kind != KindType {
			continue
		}
		if err := st.Assign(id, m.Universe); err == nil {
			slog.Debug("Defaulted type hole to the universe", "id", id)

			defaulted = true
		}
	}

	return defaulted
}

// Check implements Engine.
func (e *engine) Check(ctx context.Context, req CheckRequest) ([]CheckResult, error) {
	if len(req.Terms) == 0 {
		return nil, &ArityError{What: "term"}
	}

	jobs := req.Jobs
	if jobs < 1 {
		jobs = 1
	}

	slog.Debug("Checking terms", "count", len(req.Terms), "jobs", jobs)

	results := make([]CheckResult, len(req.Terms))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, expr := range req.Terms {
		i, expr := i, expr // per-iteration copies; module's go directive predates Go 1.22 loopvar semantics
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.checkOne(expr, req.Against)

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// checkOne runs a single independent check in a fresh state.
func (e *engine) checkOne(expr, against m.Expr) CheckResult {
	st := e.newState()

	t, err := st.Intern(expr)
	if err != nil {
		return CheckResult{Err: err}
	}

	var ty m.Term

	if against != nil {
		expected, err := st.InternType(against)
		if err != nil {
			return CheckResult{Err: err}
		}
		if err := e.retryingDefaults(st, func() error {
			return st.ensureType(nil, expected)
		}); err != nil {
			return CheckResult{Err: err}
		}
		if err := e.retryingDefaults(st, func() error {
			ty, err = st.Check(t, expected)
			return err
		}); err != nil {
			return CheckResult{Term: st.Zonk(t), Err: err}
		}
	} else {
		if err := e.retryingDefaults(st, func() error {
			ty, err = st.Infer(t)
			return err
		}); err != nil {
			return CheckResult{Term: st.Zonk(t), Err: err}
		}
	}

	return CheckResult{Term: st.Zonk(t), Type: st.Zonk(ty)}
}

// Eval implements Engine.
func (e *engine) Eval(ctx context.Context, req EvalRequest) (EvalResult, error) {
	if err := ctx.Err(); err != nil {
		return EvalResult{}, err
	}

	st := e.newState()

	t, err := st.Intern(req.Term)
	if err != nil {
		return EvalResult{}, err
	}

	var ty m.Term
	if err := e.retryingDefaults(st, func() error {
		ty, err = st.Infer(t)
		return err
	}); err != nil {
		return EvalResult{}, err
	}

	normal, err := st.Normalize(t)
	if err != nil {
		return EvalResult{}, err
	}

	return EvalResult{
		Term:   st.Zonk(t),
		Type:   st.Zonk(ty),
		Normal: st.Zonk(normal),
	}, nil
}

// Conv implements Engine.
func (e *engine) Conv(ctx context.Context, req ConvRequest) (ConvResult, error) {
	if err := ctx.Err(); err != nil {
		return ConvResult{}, err
	}

	st := e.newState()

	terms, err := st.InternAll([]m.Expr{req.Left, req.Right})
	if err != nil {
		return ConvResult{}, err
	}

	ok, err := st.Convertible(terms[0], terms[1])
	if err != nil {
		return ConvResult{}, err
	}

	return ConvResult{
		Left:        st.Zonk(terms[0]),
		Right:       st.Zonk(terms[1]),
		Convertible: ok,
	}, nil
}

// Show implements Engine.
func (e *engine) Show(ctx context.Context, name string) (EnvEntry, error) {
	if err := ctx.Err(); err != nil {
		return EnvEntry{}, err
	}

	sym := m.ParseSymbol(name, e.space)

	entry, ok := e.gc.View().Lookup(sym)
	if !ok {
		return EnvEntry{}, &UnknownReferenceError{Name: name}
	}

	return EnvEntry{Sym: sym, Entry: entry}, nil
}

// Entries implements Engine.
func (e *engine) Entries(ctx context.Context) ([]EnvEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []EnvEntry

	err := e.gc.View().Range(func(sym m.Symbol, entry m.Entry) error {
		entries = append(entries, EnvEntry{Sym: sym, Entry: entry})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}
