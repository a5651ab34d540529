package compiler

// ---------------------------------------------------------------------------
// Message sends, blocks and argument lists
// ---------------------------------------------------------------------------

// SendKind selects the serialized form of a Send.
type SendKind int

const (
	CallSend       SendKind = iota // recv.name(args)
	AttrAssignSend                 // recv.name = v, recv[k] = v
)

// Send represents a method call.
//
// A Send whose Receiver is Self may name a local variable instead of a
// method: when CheckForLocal is set (or the unit is an eval), resolution
// looks the name up and records the result in Variable so the generator
// can emit a local read rather than a call.
type Send struct {
	Pos
	Kind       SendKind
	Receiver   Node
	Name       string
	Privately  bool
	VCallStyle bool
	// Arguments is nil for a call written without an argument list.
	Arguments *ActualArguments
	// Block is an *Iter, *For or *BlockPass, or the inlined body of a
	// specialized send that runs its block in place.
	Block         Node
	CheckForLocal bool
	Variable      *Reference
	Special       *Specialization
}

func (n *Send) node() {}

// Specialization records the transform that rewrote a call.
type Specialization struct {
	Transform string
	// Operator is the fast instruction selected for an operator send.
	Operator string
	// Original is the method name before a rename.
	Original string
	// InlineBlock marks sends whose attached block body runs in the
	// enclosing scope instead of a new block scope.
	InlineBlock bool
}

// ActualArguments is the normalized argument list of a call: a fixed
// prefix plus an optional splat (a *SplatValue or *CollectSplat).
type ActualArguments struct {
	Array []Node
	Splat Node
	// Pushed is set for recv[args] = value where args ends in a splat.
	Pushed *PushArgs
}

// Size is the number of fixed arguments.
func (a *ActualArguments) Size() int {
	if a.Pushed != nil {
		if a.pushedSplat() {
			return 1
		}
		if arr, ok := a.Pushed.Arguments.(*ArrayLiteral); ok {
			return len(arr.Body) + 1
		}
		return 2
	}
	return len(a.Array)
}

// StackSize is the number of values the arguments occupy when pushed.
func (a *ActualArguments) StackSize() int {
	n := a.Size()
	if a.IsSplat() {
		n++
	}
	return n
}

// IsSplat reports whether the argument count is only known at runtime.
func (a *ActualArguments) IsSplat() bool {
	if a.Pushed != nil {
		return a.pushedSplat()
	}
	return a.Splat != nil
}

func (a *ActualArguments) pushedSplat() bool {
	switch a.Pushed.Arguments.(type) {
	case *SplatValue, *ConcatArgs:
		return true
	}
	return false
}

// nodes returns the argument nodes in evaluation order.
func (a *ActualArguments) nodes() []Node {
	if a == nil {
		return nil
	}
	if a.Pushed != nil {
		return []Node{a.Pushed.Arguments, a.Pushed.Value}
	}
	out := append([]Node(nil), a.Array...)
	if a.Splat != nil {
		out = append(out, a.Splat)
	}
	return out
}

// newActualArguments normalizes the parser's argument shapes.
func newActualArguments(line int, args Node) *ActualArguments {
	a := &ActualArguments{}
	switch x := args.(type) {
	case nil:
	case *SplatValue:
		a.Splat = x
	case *ConcatArgs:
		switch arr := x.Array.(type) {
		case *ArrayLiteral:
			a.Array = arr.Body
			a.Splat = &SplatValue{Pos: at(line), Value: x.Rest}
		case *PushArgs:
			a.Splat = &CollectSplat{Pos: at(line), Parts: []Node{arr, &SplatValue{Pos: at(line), Value: x.Rest}}}
		default:
			a.Splat = &CollectSplat{Pos: at(line), Parts: []Node{x.Array, x.Rest}}
		}
	case *PushArgs:
		if ca, ok := x.Arguments.(*ConcatArgs); ok {
			if arr, ok := ca.Array.(*ArrayLiteral); ok {
				a.Array = arr.Body
				a.Splat = &CollectSplat{Pos: at(line), Parts: []Node{&SplatValue{Pos: at(line), Value: ca.Rest}, x.Value}}
				return a
			}
		}
		a.Splat = &CollectSplat{Pos: at(line), Parts: []Node{x.Arguments, x.Value}}
	case *ArrayLiteral:
		a.Array = x.Body
	default:
		a.Array = []Node{args}
	}
	return a
}

// CollectSplat gathers several splatted parts into one runtime list.
type CollectSplat struct {
	Pos
	Parts []Node
}

func (n *CollectSplat) node() {}

// BlockPass represents &blk in an argument list.
type BlockPass struct {
	Pos
	Body Node
}

func (n *BlockPass) node() {}

// Super represents super with explicit arguments.
type Super struct {
	Pos
	Arguments *ActualArguments
	Block     Node
}

func (n *Super) node() {}

// ZSuper represents a bare super that forwards the current arguments.
type ZSuper struct {
	Pos
	Block Node
}

func (n *ZSuper) node() {}

// Yield represents yield. ArgumentCount and YieldSplat describe how the
// generator passes the values to the block.
type Yield struct {
	Pos
	Arguments     *ActualArguments
	ArgumentCount int
	YieldSplat    bool
}

func (n *Yield) node() {}

// Iter is a block literal attached to a call. It introduces a block
// scope; Locals lists the block-local declarations (|a; b|).
type Iter struct {
	Pos
	Arguments Parameters
	Body      Node
	Locals    []string
	Scope     ScopeID
}

func (n *Iter) node() {}

// For is a for loop attached to the iterated receiver's each. Its scope is
// transparent: loop variables live in the enclosing scope.
type For struct {
	Pos
	Arguments *ForArguments
	Body      Node
	Scope     ScopeID
}

func (n *For) node() {}

// PreExe is a BEGIN { } block hoisted to the start of the unit.
type PreExe struct {
	Pos
	Block *Iter
}

func (n *PreExe) node() {}
