package compiler

// ---------------------------------------------------------------------------
// Control flow and operators
// ---------------------------------------------------------------------------

// If represents if/unless and the ternary operator. Body and Else are
// never nil after construction.
type If struct {
	Pos
	Condition Node
	Body      Node
	Else      Node
}

func (n *If) node() {}

// While represents while and until loops. CheckFirst is false for the
// begin...end while form, which runs the body once before testing.
type While struct {
	Pos
	Condition  Node
	Body       Node
	CheckFirst bool
	Until      bool
}

func (n *While) node() {}

// Case represents case/when. Receiver is nil for a receiverless case.
type Case struct {
	Pos
	Receiver Node
	Whens    []*When
	Else     Node
}

func (n *Case) node() {}

// When is one clause of a case. Exactly one of Single and Conditions is
// used for the fixed conditions; Splat holds a trailing *list condition.
type When struct {
	Pos
	Conditions Node // *ArrayLiteral or any other node
	Single     Node
	Splat      *SplatWhen
	Body       Node
}

func (n *When) node() {}

// SplatWhen is the *list condition of a when clause.
type SplatWhen struct {
	Pos
	Condition Node
}

func (n *SplatWhen) node() {}

// Flip represents the flip-flop operator in a condition (.. or ...).
type Flip struct {
	Pos
	Start     Node
	Finish    Node
	Exclusive bool
}

func (n *Flip) node() {}

// Match represents a bare regex literal used as a condition.
type Match struct {
	Pos
	Pattern *RegexLiteral
}

func (n *Match) node() {}

// MatchKind distinguishes regex =~ value from value =~ regex.
type MatchKind int

const (
	MatchPatternFirst MatchKind = iota // match2: /re/ =~ value
	MatchValueFirst                    // match3: value =~ /re/
)

// MatchOp represents =~ with a regex literal on one side.
type MatchOp struct {
	Pos
	Kind    MatchKind
	Pattern Node
	Value   Node
}

func (n *MatchOp) node() {}

// JumpKind selects a loop or block jump.
type JumpKind int

const (
	JumpBreak JumpKind = iota
	JumpNext
	JumpRedo
	JumpRetry
)

func (k JumpKind) tag() string {
	switch k {
	case JumpNext:
		return "next"
	case JumpRedo:
		return "redo"
	case JumpRetry:
		return "retry"
	}
	return "break"
}

// Jump represents break, next, redo and retry. A break always carries a
// value (nil when omitted); next carries one only when given.
type Jump struct {
	Pos
	Kind  JumpKind
	Value Node
}

func (n *Jump) node() {}

// Return represents return with an optional value.
type Return struct {
	Pos
	Value Node
}

func (n *Return) node() {}

// LogicalOp selects && or ||.
type LogicalOp int

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
)

// Logical represents a && b and a || b.
type Logical struct {
	Pos
	Op    LogicalOp
	Left  Node
	Right Node
}

func (n *Logical) node() {}

// Not represents !value.
type Not struct {
	Pos
	Value Node
}

func (n *Not) node() {}

// Negate represents unary minus applied to a literal.
type Negate struct {
	Pos
	Value Node
}

func (n *Negate) node() {}

// OpAssign1 represents recv[args] op= value.
type OpAssign1 struct {
	Pos
	Receiver  Node
	Arguments *ActualArguments
	Op        string
	Value     Node
}

func (n *OpAssign1) node() {}

// OpAssign2 represents recv.name op= value.
type OpAssign2 struct {
	Pos
	Receiver Node
	Name     string
	Assign   string // the setter name, name with a trailing "="
	Op       string
	Value    Node
}

func (n *OpAssign2) node() {}

// OpAssignLogical represents a &&= b and a ||= b. Right is the assignment
// performed when the test passes.
type OpAssignLogical struct {
	Pos
	Op    LogicalOp
	Left  Node
	Right Node
}

func (n *OpAssignLogical) node() {}

// Defined represents defined?(expr).
type Defined struct {
	Pos
	Expression Node
}

func (n *Defined) node() {}

// opSymbol maps the parser's op-assign operator names to their symbols.
func opSymbol(op string) string {
	switch op {
	case "or":
		return "||"
	case "and":
		return "&&"
	}
	return op
}
