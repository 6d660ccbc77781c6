// Package adapter translates between surface text and core terms: parsing
// the term grammar into surface syntax and rendering elaborated terms back.
package adapter

import (
	"fmt"

	m "github.com/MathisBD/rocq/internal/model"
)

// ParseError reports where and why parsing failed. Columns are 1-based.
type ParseError struct {
	Src string
	Col int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at column %d: %s", e.Col, e.Msg)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokHole
	tokType
	tokFun
	tokLParen
	tokRParen
	tokColon
	tokArrow
	tokDArrow
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokHole:
		return "'_'"
	case tokType:
		return "'Type'"
	case tokFun:
		return "'fun'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokColon:
		return "':'"
	case tokArrow:
		return "'->'"
	case tokDArrow:
		return "'=>'"
	default:
		return "unknown token"
	}
}

type token struct {
	kind tokenKind
	text string
	col  int // 1-based start column
}

func isIdentStart(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b == '_'
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || b >= '0' && b <= '9' || b == '.' || b == '\''
}

// lex scans src into tokens. The term grammar is single-line, so positions
// are plain columns.
func lex(src string) ([]token, error) {
	var toks []token

	i := 0
	for i < len(src) {
		switch b := src[i]; {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			i++

		case b == '(':
			toks = append(toks, token{kind: tokLParen, col: i + 1})
			i++

		case b == ')':
			toks = append(toks, token{kind: tokRParen, col: i + 1})
			i++

		case b == '-' && i+1 < len(src) && src[i+1] == '>':
			toks = append(toks, token{kind: tokArrow, col: i + 1})
			i += 2

		case b == '=' && i+1 < len(src) && src[i+1] == '>':
			toks = append(toks, token{kind: tokDArrow, col: i + 1})
			i += 2

		case b == ':':
			toks = append(toks, token{kind: tokColon, col: i + 1})
			i++

		case isIdentStart(b):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			text := src[start:i]

			kind := tokIdent
			switch text {
			case "_":
				kind = tokHole
			case "Type":
				kind = tokType
			case "fun":
				kind = tokFun
			}
			toks = append(toks, token{kind: kind, text: text, col: start + 1})

		default:
			return nil, &ParseError{Src: src, Col: i + 1, Msg: fmt.Sprintf("unexpected character %q", b)}
		}
	}

	toks = append(toks, token{kind: tokEOF, col: len(src) + 1})

	return toks, nil
}

type parser struct {
	src  string
	toks []token
	pos  int
}

// Term parses a complete surface term:
//
//	term  := arrow
//	arrow := "(" IDENT ":" term ")" "->" arrow
//	       | app ("->" arrow)?
//	app   := atom atom*
//	atom  := IDENT | "_" | "Type" | "(" term ")" | "fun" binder "=>" term
//
// Arrows associate to the right, application to the left. Trailing input is
// an error.
func Term(src string) (m.Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}

	p := &parser{src: src, toks: toks}

	expr, err := p.arrow()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, p.errorf("expected %s, found %s", tokEOF, p.peek().kind)
	}

	return expr, nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}

	return p.toks[p.pos+n]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}

	return t
}

func (p *parser) accept(kind tokenKind) bool {
	if p.peek().kind == kind {
		p.pos++
		return true
	}

	return false
}

func (p *parser) expect(kind tokenKind) (token, error) {
	if p.peek().kind != kind {
		return token{}, p.errorf("expected %s, found %s", kind, p.peek().kind)
	}

	return p.next(), nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Src: p.src, Col: p.peek().col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) arrow() (m.Expr, error) {
	// "(x : A) -> B" needs two tokens of lookahead to tell a binder group
	// from a parenthesized term.
	if p.peek().kind == tokLParen && isBinderName(p.peekAt(1).kind) && p.peekAt(2).kind == tokColon {
		p.next()
		param := p.next().text
		p.next()

		dom, err := p.arrow()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		if _, err := p.expect(tokArrow); err != nil {
			return nil, err
		}
		cod, err := p.arrow()
		if err != nil {
			return nil, err
		}

		return &m.SArrow{Param: param, Dom: dom, Cod: cod}, nil
	}

	left, err := p.app()
	if err != nil {
		return nil, err
	}
	if p.accept(tokArrow) {
		cod, err := p.arrow()
		if err != nil {
			return nil, err
		}

		return &m.SArrow{Dom: left, Cod: cod}, nil
	}

	return left, nil
}

func (p *parser) app() (m.Expr, error) {
	head, err := p.atom()
	if err != nil {
		return nil, err
	}

	for startsAtom(p.peek().kind) {
		arg, err := p.atom()
		if err != nil {
			return nil, err
		}
		head = &m.SApp{Fn: head, Arg: arg}
	}

	return head, nil
}

func startsAtom(kind tokenKind) bool {
	switch kind {
	case tokIdent, tokHole, tokType, tokFun, tokLParen:
		return true
	default:
		return false
	}
}

// isBinderName reports whether a token can name a binder; "_" binds nothing
// but is accepted anywhere a binder name is.
func isBinderName(kind tokenKind) bool {
	return kind == tokIdent || kind == tokHole
}

func (p *parser) atom() (m.Expr, error) {
	switch t := p.peek(); t.kind {
	case tokIdent:
		p.next()
		return &m.SName{Name: t.text}, nil

	case tokHole:
		p.next()
		return &m.SHole{}, nil

	case tokType:
		p.next()
		return &m.SType{}, nil

	case tokFun:
		p.next()
		return p.fun()

	case tokLParen:
		p.next()
		expr, err := p.arrow()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}

		return expr, nil

	default:
		return nil, p.errorf("expected a term, found %s", t.kind)
	}
}

// fun parses the binder and body after the "fun" keyword. The binder is
// either a bare name or an annotated "(x : A)" group.
func (p *parser) fun() (m.Expr, error) {
	var (
		param string
		ann   m.Expr
	)

	switch p.peek().kind {
	case tokIdent, tokHole:
		param = p.next().text

	case tokLParen:
		p.next()
		if !isBinderName(p.peek().kind) {
			return nil, p.errorf("expected a binder name, found %s", p.peek().kind)
		}
		param = p.next().text
		if _, err := p.expect(tokColon); err != nil {
			return nil, err
		}
		annotation, err := p.arrow()
		if err != nil {
			return nil, err
		}
		ann = annotation
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}

	default:
		return nil, p.errorf("expected a binder, found %s", p.peek().kind)
	}

	if _, err := p.expect(tokDArrow); err != nil {
		return nil, err
	}

	body, err := p.arrow()
	if err != nil {
		return nil, err
	}

	return &m.SFun{Param: param, Ann: ann, Body: body}, nil
}
