package sexp

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenLBracket
	tokenRBracket
	tokenComma
	tokenSymbol
	tokenString
	tokenInteger
	tokenFloat
	tokenWord
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "EOF"
	case tokenLBracket:
		return "'['"
	case tokenRBracket:
		return "']'"
	case tokenComma:
		return "','"
	case tokenSymbol:
		return "symbol"
	case tokenString:
		return "string"
	case tokenInteger:
		return "integer"
	case tokenFloat:
		return "float"
	case tokenWord:
		return "word"
	}
	return fmt.Sprintf("token(%d)", int(t))
}

type token struct {
	Type  tokenType
	Value string
	Line  int
}

type lexer struct {
	input string
	pos   int
	line  int
	err   error
}

func newLexer(input string) *lexer {
	return &lexer{input: input, line: 1}
}

func (l *lexer) fail(format string, args ...interface{}) token {
	if l.err == nil {
		l.err = fmt.Errorf("line %d: %s", l.line, fmt.Sprintf(format, args...))
	}
	return token{Type: tokenEOF, Line: l.line}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '#':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) nextToken() token {
	l.skipSpace()
	if l.pos >= len(l.input) {
		return token{Type: tokenEOF, Line: l.line}
	}
	c := l.input[l.pos]
	switch {
	case c == '[':
		l.pos++
		return token{Type: tokenLBracket, Line: l.line}
	case c == ']':
		l.pos++
		return token{Type: tokenRBracket, Line: l.line}
	case c == ',':
		l.pos++
		return token{Type: tokenComma, Line: l.line}
	case c == '"':
		s, err := l.readQuoted()
		if err != nil {
			return l.fail("%v", err)
		}
		return token{Type: tokenString, Value: s, Line: l.line}
	case c == ':':
		l.pos++
		if l.pos < len(l.input) && l.input[l.pos] == '"' {
			s, err := l.readQuoted()
			if err != nil {
				return l.fail("%v", err)
			}
			return token{Type: tokenSymbol, Value: s, Line: l.line}
		}
		name := l.readBare()
		if name == "" {
			return l.fail("empty symbol")
		}
		return token{Type: tokenSymbol, Value: name, Line: l.line}
	case c == '-' || c == '+' || isDigit(c):
		return l.readNumber()
	case isIdent(c):
		return token{Type: tokenWord, Value: l.readBare(), Line: l.line}
	}
	return l.fail("unexpected character %q", c)
}

// readBare consumes characters up to the next delimiter.
func (l *lexer) readBare() string {
	start := l.pos
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == ',' || c == ']' || c == '[' || c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			break
		}
		l.pos++
	}
	return l.input[start:l.pos]
}

func (l *lexer) readQuoted() (string, error) {
	start := l.pos
	l.pos++
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '\\':
			l.pos += 2
			continue
		case '\n':
			l.line++
		case '"':
			l.pos++
			return strconv.Unquote(l.input[start:l.pos])
		}
		l.pos++
	}
	return "", fmt.Errorf("unterminated string")
}

func (l *lexer) readNumber() token {
	text := l.readBare()
	if strings.ContainsAny(text, ".eE") || strings.HasSuffix(text, "Inf") {
		return token{Type: tokenFloat, Value: text, Line: l.line}
	}
	return token{Type: tokenInteger, Value: text, Line: l.line}
}

type parser struct {
	lexer        *lexer
	currentToken token
}

// Parse reads a single canonical tree from its text rendering. Commas
// between elements are optional and '#' starts a comment.
func Parse(input string) (Value, error) {
	p := &parser{lexer: newLexer(input)}
	p.nextToken()

	result, err := p.parseDatum()
	if p.lexer.err != nil {
		return nil, p.lexer.err
	}
	if err != nil {
		return nil, err
	}
	if p.currentToken.Type != tokenEOF {
		return nil, fmt.Errorf("line %d: expected EOF but got %s", p.currentToken.Line, p.currentToken.Type)
	}
	return result, nil
}

// MustParse is Parse for trees known to be well formed.
func MustParse(input string) Value {
	v, err := Parse(input)
	if err != nil {
		panic(fmt.Sprintf("sexp: %v", err))
	}
	return v
}

func (p *parser) nextToken() {
	p.currentToken = p.lexer.nextToken()
}

func (p *parser) parseDatum() (Value, error) {
	tok := p.currentToken
	switch tok.Type {
	case tokenLBracket:
		return p.parseList()
	case tokenSymbol:
		p.nextToken()
		return Sym(tok.Value), nil
	case tokenString:
		p.nextToken()
		return Str(tok.Value), nil
	case tokenInteger:
		n, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad integer %q", tok.Line, tok.Value)
		}
		p.nextToken()
		return Int(n), nil
	case tokenFloat:
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad float %q", tok.Line, tok.Value)
		}
		p.nextToken()
		return Float(f), nil
	case tokenWord:
		p.nextToken()
		switch tok.Value {
		case "nil":
			return Nil, nil
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		case "Inf", "NaN":
			f, _ := strconv.ParseFloat(tok.Value, 64)
			return Float(f), nil
		}
		return nil, fmt.Errorf("line %d: unknown word %q", tok.Line, tok.Value)
	}
	return nil, fmt.Errorf("line %d: unexpected token: %s", tok.Line, tok.Type)
}

func (p *parser) parseList() (Value, error) {
	items := List{}
	p.nextToken() // consume '['

	for p.currentToken.Type != tokenRBracket && p.currentToken.Type != tokenEOF {
		if p.currentToken.Type == tokenComma {
			p.nextToken()
			continue
		}
		item, err := p.parseDatum()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if p.currentToken.Type != tokenRBracket {
		return nil, fmt.Errorf("line %d: expected ']' but got %s", p.currentToken.Line, p.currentToken.Type)
	}
	p.nextToken() // consume ']'
	return items, nil
}
