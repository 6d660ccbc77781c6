package model

// Entry is what the global context stores for a declared Symbol. Body and
// Type are fully resolved terms (no metavariables); both are immutable once
// the entry is inserted.
type Entry struct {
	Body Term
	Type Term

	// Polymorphic marks a universe-polymorphic declaration. With a single
	// universe the flag has no checking consequence yet, but it is recorded
	// and reported as declared.
	Polymorphic bool

	// Opaque prevents the convertibility engine from unfolding the body.
	Opaque bool
}
