package compiler

// ---------------------------------------------------------------------------
// Exception Clause Normalizer
// ---------------------------------------------------------------------------

// DefaultRescueCondition is the class a bare rescue clause catches.
const DefaultRescueCondition = "StandardError"

// Begin is a begin...end block; it serializes as its contents.
type Begin struct {
	Pos
	Rescue Node
}

func (n *Begin) node() {}

// Ensure represents body ensure ensure_body end.
type Ensure struct {
	Pos
	Body   Node
	Ensure Node
}

func (n *Ensure) node() {}

// Rescue represents body rescue clauses else else_body end.
type Rescue struct {
	Pos
	Body   Node
	Rescue *RescueCondition
	Else   Node
}

func (n *Rescue) node() {}

// RescueSplat is a *list rescue condition evaluated at runtime.
type RescueSplat struct {
	Pos
	Value Node
}

func (n *RescueSplat) node() {}

// RescueCondition is one normalized rescue clause. Clauses chain through
// Next in source order.
type RescueCondition struct {
	Pos
	// Conditions is the fixed list of exception classes. It is empty (not
	// nil) when the clause only has a *list condition.
	Conditions *ArrayLiteral
	Splat      *RescueSplat
	// Assignment is the extracted `var = $!` that binds the exception.
	Assignment Node
	Body       Node
	Next       *RescueCondition
}

func (n *RescueCondition) node() {}

// newRescueCondition normalizes the condition list and extracts the
// exception binding from the head of the body.
func newRescueCondition(line int, conditions, body Node, next *RescueCondition) (*RescueCondition, error) {
	n := &RescueCondition{Pos: at(line), Next: next}

	switch c := conditions.(type) {
	case nil:
		n.Conditions = &ArrayLiteral{Pos: at(line), Body: []Node{&ConstantAccess{Pos: at(line), Name: DefaultRescueCondition}}}
	case *ArrayLiteral:
		n.Conditions = c
	case *ConcatArgs:
		arr, ok := c.Array.(*ArrayLiteral)
		if !ok {
			return nil, errorAt(MalformedConstruction, line, "rescue condition prefix must be a list, got %T", c.Array)
		}
		n.Conditions = arr
		n.Splat = &RescueSplat{Pos: at(line), Value: c.Rest}
	case *SplatValue:
		n.Conditions = &ArrayLiteral{Pos: at(line)}
		n.Splat = &RescueSplat{Pos: at(line), Value: c.Value}
	default:
		n.Conditions = &ArrayLiteral{Pos: at(line), Body: []Node{c}}
	}

	switch b := body.(type) {
	case nil:
		n.Body = &NilLiteral{Pos: at(line)}
	case *Block:
		if len(b.Array) > 0 && capturesException(b.Array[0]) {
			n.Assignment = b.Array[0]
			b.Array = b.Array[1:]
		}
		n.Body = b
	default:
		if capturesException(b) {
			n.Assignment = b
			n.Body = &NilLiteral{Pos: at(line)}
		} else {
			n.Body = b
		}
	}
	return n, nil
}

// capturesException reports whether n assigns the current exception to a
// variable or through a single-argument setter.
func capturesException(n Node) bool {
	var value Node
	switch x := n.(type) {
	case *LocalVariableAssignment:
		value = x.Value
	case *VariableAssignment:
		value = x.Value
	case *Send:
		if x.Kind != AttrAssignSend || x.Arguments == nil || len(x.Arguments.Array) == 0 {
			return false
		}
		value = x.Arguments.Array[len(x.Arguments.Array)-1]
	default:
		return false
	}
	_, ok := value.(*CurrentException)
	return ok
}

// Clauses returns the chain starting at n.
func (n *RescueCondition) Clauses() []*RescueCondition {
	var out []*RescueCondition
	for c := n; c != nil; c = c.Next {
		out = append(out, c)
	}
	return out
}
