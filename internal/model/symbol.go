// Package model defines the data structures for the term workbench: symbols,
// core terms, surface expressions and global-context entries.
package model

import "strings"

// Symbol identifies a declared constant by its canonical path, a namespace
// plus an identifier (for example "Top.Id"). Symbols are immutable values and
// compare by their full path, which makes them usable as map keys.
type Symbol struct {
	Space string
	Ident string
}

// NewSymbol builds a Symbol in the given namespace.
func NewSymbol(space, ident string) Symbol {
	return Symbol{Space: space, Ident: ident}
}

// ParseSymbol splits a dotted path into a Symbol. A bare identifier gets the
// supplied default namespace; a path keeps everything before the last dot as
// its namespace.
func ParseSymbol(path, defaultSpace string) Symbol {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return Symbol{Space: path[:i], Ident: path[i+1:]}
	}

	return Symbol{Space: defaultSpace, Ident: path}
}

// Full returns the canonical dotted path.
func (s Symbol) Full() string {
	if s.Space == "" {
		return s.Ident
	}

	return s.Space + "." + s.Ident
}

func (s Symbol) String() string {
	return s.Full()
}

// MetaID names a metavariable. Identities are only meaningful within the
// elaboration state that allocated them.
type MetaID uint64
