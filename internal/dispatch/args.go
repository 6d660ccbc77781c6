package dispatch

import (
	"fmt"
	"strings"
	"unicode"
)

// Modifier keywords recognized before a command word.
const (
	modPolymorphic = "polymorphic"
	modOpaque      = "opaque"
)

// commentMarker introduces a comment running to the end of the line. Two
// adjacent dashes never occur inside a term, so a plain substring scan is
// enough.
const commentMarker = "--"

// Modifiers are the optional attribute keywords of an invocation. Both
// default to false.
type Modifiers struct {
	Polymorphic bool
	Opaque      bool
}

// Any reports whether at least one modifier is set.
func (m Modifiers) Any() bool {
	return m.Polymorphic || m.Opaque
}

// Definition is the textual shape of a define tail: name [: type] := body.
type Definition struct {
	Name string
	Type string
	Body string
}

// ParseDefinition splits a define tail into its parts. The type is empty
// when the annotation is omitted. The parts are raw term text; parsing them
// is the caller's concern.
func ParseDefinition(tail string) (Definition, error) {
	lhs, body, ok := strings.Cut(tail, ":=")
	if !ok {
		return Definition{}, fmt.Errorf(`expected ":=" between the name and the body`)
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return Definition{}, fmt.Errorf("the definition body is empty")
	}

	name, ty, annotated := strings.Cut(lhs, ":")
	name = strings.TrimSpace(name)
	ty = strings.TrimSpace(ty)

	if name == "" {
		return Definition{}, fmt.Errorf("the definition name is empty")
	}
	if len(strings.Fields(name)) != 1 {
		return Definition{}, fmt.Errorf("the definition name must be a single identifier, got %q", name)
	}
	if annotated && ty == "" {
		return Definition{}, fmt.Errorf("the type annotation is empty")
	}

	return Definition{Name: name, Type: ty, Body: body}, nil
}

// SplitArgs splits s at whitespace outside parentheses, so a parenthesized
// term counts as one argument. Unbalanced parentheses are left for the term
// parser to report.
func SplitArgs(s string) []string {
	var args []string

	depth := 0
	start := -1

	for i, r := range s {
		switch {
		case r == '(':
			depth++
			if start < 0 {
				start = i
			}
		case r == ')':
			if depth > 0 {
				depth--
			}
			if start < 0 {
				start = i
			}
		case unicode.IsSpace(r) && depth == 0:
			if start >= 0 {
				args = append(args, s[start:i])
				start = -1
			}
		default:
			if start < 0 {
				start = i
			}
		}
	}

	if start >= 0 {
		args = append(args, s[start:])
	}

	return args
}

func stripComment(line string) string {
	if i := strings.Index(line, commentMarker); i >= 0 {
		line = line[:i]
	}

	return strings.TrimSpace(line)
}

// splitWord peels the first whitespace-delimited word off s.
func splitWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)

	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}

	return s[:i], strings.TrimSpace(s[i:])
}
