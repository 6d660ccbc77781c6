package domain

import (
	"fmt"
	"strings"

	m "github.com/MathisBD/rocq/internal/model"
)

// TypingReason classifies why type checking rejected a term.
type TypingReason string

const (
	// ReasonUnboundVariable marks a variable index outside the binders in
	// scope, or a constant missing from the context snapshot.
	ReasonUnboundVariable TypingReason = "unbound-variable"
	// ReasonNonFunction marks an application whose head is not a function.
	ReasonNonFunction TypingReason = "non-function-application"
	// ReasonMismatch marks a term whose type disagrees with the expected one.
	ReasonMismatch TypingReason = "mismatch"
	// ReasonMalformed marks a binder annotation or expected type that is not
	// itself a type.
	ReasonMalformed TypingReason = "malformed"
)

// NameCollisionError reports an attempt to declare a symbol that the global
// context already holds.
type NameCollisionError struct {
	Sym m.Symbol
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("symbol %s is already declared", e.Sym.Full())
}

// UnknownReferenceError reports a lookup of a symbol the context snapshot
// does not contain.
type UnknownReferenceError struct {
	Name string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("unknown reference %q", e.Name)
}

// ArityError reports an argument bound to the wrong shape, such as an empty
// term list where at least one term is required.
type ArityError struct {
	What string
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("expected at least one %s", e.What)
}

// UnderspecifiedTermError reports unresolved metavariables in a term at a
// point where the term must be fully determined.
type UnderspecifiedTermError struct {
	Metas []m.MetaID
}

func (e *UnderspecifiedTermError) Error() string {
	holes := make([]string, len(e.Metas))
	for i, id := range e.Metas {
		holes[i] = fmt.Sprintf("?%d", id)
	}

	return fmt.Sprintf("term contains unresolved holes: %s", strings.Join(holes, ", "))
}

// TypingError reports a type-checking failure. Term is the offending subterm;
// Expected and Actual are set for mismatches and are left unzonked so callers
// can render them against the state that produced them.
type TypingError struct {
	Reason   TypingReason
	Term     m.Term
	Expected m.Term
	Actual   m.Term
	Detail   string
}

func (e *TypingError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("typing error: %s", e.Reason)
	}

	return fmt.Sprintf("typing error: %s: %s", e.Reason, e.Detail)
}

// ConstraintError reports an inconsistency in the metavariable store: a cyclic
// assignment, a conflicting reassignment, or reduction running out of budget.
type ConstraintError struct {
	Meta   m.MetaID
	Detail string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint error: %s", e.Detail)
}

// DeclarationError wraps the failure that aborted a definition, keeping the
// symbol the caller tried to declare.
type DeclarationError struct {
	Sym m.Symbol
	Err error
}

func (e *DeclarationError) Error() string {
	return fmt.Sprintf("cannot declare %s: %v", e.Sym.Full(), e.Err)
}

func (e *DeclarationError) Unwrap() error {
	return e.Err
}
