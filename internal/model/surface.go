package model

// Expr is a surface expression: the parsed form of user-written term syntax,
// before interning resolves names and allocates metavariables. The surface
// grammar produces it; the interner consumes it.
type Expr interface {
	isExpr()
}

// SName is an identifier occurrence: a bound variable or a reference to a
// declared Symbol, resolved during interning.
type SName struct {
	Name string
}

// SHole is an elided position written "_".
type SHole struct{}

// SType is the universe literal.
type SType struct{}

// SFun is an abstraction "fun (x : T) => body". Ann is nil when the binder
// was written without an annotation.
type SFun struct {
	Param string
	Ann   Expr
	Body  Expr
}

// SArrow is a function type "(x : A) -> B", or "A -> B" when Param is empty.
type SArrow struct {
	Param string
	Dom   Expr
	Cod   Expr
}

// SApp is an application by juxtaposition.
type SApp struct {
	Fn  Expr
	Arg Expr
}

func (*SName) isExpr()  {}
func (*SHole) isExpr()  {}
func (*SType) isExpr()  {}
func (*SFun) isExpr()   {}
func (*SArrow) isExpr() {}
func (*SApp) isExpr()   {}
