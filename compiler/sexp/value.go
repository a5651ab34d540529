// Package sexp holds the canonical nested-list form of a syntax tree.
//
// A canonical tree is built from symbols, strings, numbers, booleans, nil
// and lists. Its text rendering uses bracketed, comma-separated lists with
// colon-prefixed symbols:
//
//	[:call, nil, :puts, [:arglist, [:str, "hi"]]]
package sexp

import (
	"strconv"
	"strings"
)

// Value is one element of a canonical tree.
type Value interface {
	String() string
	sexp()
}

// Sym is a symbol such as :lasgn or :"*rest".
type Sym string

// Str is a string literal.
type Str string

// Int is an integer literal.
type Int int64

// Float is a floating point literal.
type Float float64

// Bool is true or false.
type Bool bool

// NilValue is the nil atom. Use Nil.
type NilValue struct{}

// Nil is the single nil atom.
var Nil = NilValue{}

// List is a bracketed sequence. Tagged lists start with a Sym.
type List []Value

func (Sym) sexp()      {}
func (Str) sexp()      {}
func (Int) sexp()      {}
func (Float) sexp()    {}
func (Bool) sexp()     {}
func (NilValue) sexp() {}
func (List) sexp()     {}

func (s Sym) String() string {
	if isPlainSymbol(string(s)) {
		return ":" + string(s)
	}
	return ":" + strconv.Quote(string(s))
}

func (s Str) String() string { return strconv.Quote(string(s)) }

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

func (f Float) String() string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 64)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (NilValue) String() string { return "nil" }

func (l List) String() string {
	var sb strings.Builder
	l.write(&sb)
	return sb.String()
}

func (l List) write(sb *strings.Builder) {
	sb.WriteByte('[')
	for i, v := range l {
		if i > 0 {
			sb.WriteString(", ")
		}
		if sub, ok := v.(List); ok {
			sub.write(sb)
		} else {
			sb.WriteString(v.String())
		}
	}
	sb.WriteByte(']')
}

// L builds a list from its arguments.
func L(items ...Value) List { return List(items) }

// Tag returns the leading symbol of a tagged list, or "" when v is not one.
func Tag(v Value) string {
	l, ok := v.(List)
	if !ok || len(l) == 0 {
		return ""
	}
	s, ok := l[0].(Sym)
	if !ok {
		return ""
	}
	return string(s)
}

// IsNil reports whether v is the nil atom or a Go nil.
func IsNil(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(NilValue)
	return ok
}

// Equal reports whether two trees are structurally identical.
func Equal(a, b Value) bool {
	if IsNil(a) || IsNil(b) {
		return IsNil(a) && IsNil(b)
	}
	switch x := a.(type) {
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

var operatorSymbols = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true,
	"==": true, "===": true, "!=": true, "=~": true, "!~": true,
	"<": true, ">": true, "<=": true, ">=": true, "<=>": true,
	"<<": true, ">>": true, "&": true, "|": true, "^": true, "~": true,
	"!": true, "+@": true, "-@": true, "`": true,
}

// isPlainSymbol reports whether name prints without quotes.
func isPlainSymbol(name string) bool {
	if name == "" {
		return false
	}
	if operatorSymbols[name] {
		return true
	}
	rest := name
	switch {
	case strings.HasPrefix(rest, "@@"):
		rest = rest[2:]
	case strings.HasPrefix(rest, "@"):
		rest = rest[1:]
	case strings.HasPrefix(rest, "$"):
		rest = rest[1:]
		if len(rest) == 1 && strings.ContainsRune("!~&`'+*$?:<>./\\;0123456789", rune(rest[0])) {
			return true
		}
	}
	if rest == "" || isDigit(rest[0]) {
		return false
	}
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if isIdent(c) {
			continue
		}
		if i == len(rest)-1 && (c == '?' || c == '!' || c == '=') && len(rest) == len(name) {
			continue
		}
		return false
	}
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdent(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}
