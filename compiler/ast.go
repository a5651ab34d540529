package compiler

// ---------------------------------------------------------------------------
// AST: typed syntax tree nodes
// ---------------------------------------------------------------------------

// Node is the interface implemented by all AST nodes.
type Node interface {
	Line() int
	node() // marker method
}

// Pos records the source line a node was built from.
type Pos struct {
	LineNum int
}

func (p Pos) Line() int { return p.LineNum }

func at(line int) Pos { return Pos{LineNum: line} }

// Parameters is implemented by the argument nodes an Iter can carry.
type Parameters interface {
	Node
	Arity() int
	RequiredArgs() int
	TotalArgs() int
	PostArgs() int
	RestIndex() int
}

// Rest index sentinels shared by all parameter shapes.
const (
	// NoRestIndex: the parameter list has no rest parameter.
	NoRestIndex = -1
	// DiscardedRestIndex: a rest is accepted syntactically but its value
	// is thrown away, e.g. |a,| or a block with no parameters at all.
	DiscardedRestIndex = -2
	// PatternRestIndex: the first required parameter is a destructuring
	// pattern, which receives the whole incoming argument.
	PatternRestIndex = -3
)

// isNil reports whether n is absent or a nil literal.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	_, ok := n.(*NilLiteral)
	return ok
}

// orNil substitutes a nil literal for an absent optional body.
func orNil(n Node, line int) Node {
	if n == nil {
		return &NilLiteral{Pos: at(line)}
	}
	return n
}
