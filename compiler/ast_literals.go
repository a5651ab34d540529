package compiler

// ---------------------------------------------------------------------------
// Literals
// ---------------------------------------------------------------------------

// NilLiteral represents nil.
type NilLiteral struct{ Pos }

func (n *NilLiteral) node() {}

// TrueLiteral represents true.
type TrueLiteral struct{ Pos }

func (n *TrueLiteral) node() {}

// FalseLiteral represents false.
type FalseLiteral struct{ Pos }

func (n *FalseLiteral) node() {}

// Self represents the receiver of the current method.
type Self struct{ Pos }

func (n *Self) node() {}

// NumberLiteral represents an integer literal.
type NumberLiteral struct {
	Pos
	Value int64
}

func (n *NumberLiteral) node() {}

// FloatLiteral represents a floating-point literal.
type FloatLiteral struct {
	Pos
	Value float64
}

func (n *FloatLiteral) node() {}

// SymbolLiteral represents a symbol literal (:foo).
type SymbolLiteral struct {
	Pos
	Value string
}

func (n *SymbolLiteral) node() {}

// StringLiteral represents a plain string, or a backtick command string
// when Execute is set.
type StringLiteral struct {
	Pos
	Value   string
	Execute bool
}

func (n *StringLiteral) node() {}

// DynamicKind selects the flavor of an interpolated literal.
type DynamicKind int

const (
	DynamicStr DynamicKind = iota
	DynamicSym
	DynamicExecute
	DynamicRegex
	DynamicRegexOnce
)

func (k DynamicKind) tag() string {
	switch k {
	case DynamicSym:
		return "dsym"
	case DynamicExecute:
		return "dxstr"
	case DynamicRegex:
		return "dregx"
	case DynamicRegexOnce:
		return "dregx_once"
	}
	return "dstr"
}

// DynamicString represents an interpolated literal: a leading string
// followed by the interpolated parts.
type DynamicString struct {
	Pos
	Kind    DynamicKind
	Value   string
	Parts   []Node
	Options int // regex flags; zero for the other kinds
}

func (n *DynamicString) node() {}

// ToString represents one interpolated #{...} segment.
type ToString struct {
	Pos
	Value Node // nil for an empty segment
}

func (n *ToString) node() {}

// RegexLiteral represents a regular expression without interpolation.
type RegexLiteral struct {
	Pos
	Source  string
	Options int
}

func (n *RegexLiteral) node() {}

// ArrayLiteral represents [a, b, c]. An empty Body is the empty array.
type ArrayLiteral struct {
	Pos
	Body []Node
}

func (n *ArrayLiteral) node() {}

// HashLiteral represents {k => v}; Array alternates keys and values.
type HashLiteral struct {
	Pos
	Array []Node
}

func (n *HashLiteral) node() {}

// Range represents a..b, or a...b when Exclusive.
type Range struct {
	Pos
	Start     Node
	Finish    Node
	Exclusive bool
}

func (n *Range) node() {}

// Encoding represents __ENCODING__.
type Encoding struct {
	Pos
	Name string
}

func (n *Encoding) node() {}
