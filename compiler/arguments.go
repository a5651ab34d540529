package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Parameter Binder
// ---------------------------------------------------------------------------

// RestKind describes the rest parameter of a formal argument list.
type RestKind int

const (
	NoRest        RestKind = iota
	NamedRest              // *args
	AnonymousRest          // *
	DiscardedRest          // trailing comma, as in |a,|
)

// anonymousRestName is the hidden local holding an anonymous rest value.
// It can never collide with a source-level local.
const anonymousRestName = "@unnamed_splat"

// RequiredArg is one leading or trailing required parameter: a plain name
// or a nested destructuring pattern.
type RequiredArg struct {
	Name    string
	Pattern *PatternArguments
}

// FormalArguments is the parameter list of a method or block.
type FormalArguments struct {
	Pos
	Required []RequiredArg
	Defaults *DefaultArguments
	Rest     string // set for NamedRest
	RestKind RestKind
	Post     []string
	BlockArg *BlockArgument
}

func (n *FormalArguments) node() {}

// Optional returns the names of the parameters with default values.
func (n *FormalArguments) Optional() []string {
	if n.Defaults == nil {
		return nil
	}
	return n.Defaults.Names()
}

// HasRest reports whether extra arguments are collected.
func (n *FormalArguments) HasRest() bool {
	return n.RestKind == NamedRest || n.RestKind == AnonymousRest
}

// RequiredArgs counts the leading and trailing required parameters.
func (n *FormalArguments) RequiredArgs() int { return len(n.Required) + len(n.Post) }

// PostArgs counts the required parameters after the rest.
func (n *FormalArguments) PostArgs() int { return len(n.Post) }

// TotalArgs counts every positional parameter except the rest.
func (n *FormalArguments) TotalArgs() int {
	return len(n.Required) + len(n.Optional()) + len(n.Post)
}

// Arity is the required count when no rest is present. With a rest it is
// -(required + optional + post + 1).
func (n *FormalArguments) Arity() int {
	if n.HasRest() {
		return -(n.TotalArgs() + 1)
	}
	return n.RequiredArgs()
}

// RestIndex is the slot the rest value is stored in, NoRestIndex when there
// is no rest, or DiscardedRestIndex when a rest is accepted and dropped.
// A leading pattern parameter yields PatternRestIndex unless the rest is
// discarded.
func (n *FormalArguments) RestIndex() int {
	if n.RestKind == DiscardedRest {
		return DiscardedRestIndex
	}
	if len(n.Required) > 0 && n.Required[0].Pattern != nil {
		return PatternRestIndex
	}
	if n.HasRest() {
		return len(n.Required) + len(n.Optional())
	}
	return NoRestIndex
}

// Names lists the parameter names in slot order. Pattern parameters
// contribute the name of their formal slot once mapped.
func (n *FormalArguments) Names() []string {
	var names []string
	for _, r := range n.Required {
		if r.Pattern != nil {
			if r.Pattern.Argument != nil {
				names = append(names, r.Pattern.Argument.Name)
			}
			continue
		}
		names = append(names, r.Name)
	}
	names = append(names, n.Optional()...)
	switch n.RestKind {
	case NamedRest:
		names = append(names, n.Rest)
	case AnonymousRest:
		names = append(names, anonymousRestName)
	}
	names = append(names, n.Post...)
	if n.BlockArg != nil {
		names = append(names, n.BlockArg.Name)
	}
	return names
}

// validate rejects contradictory parameter lists.
func (n *FormalArguments) validate() error {
	if n.RestKind == NamedRest && n.Rest == "" {
		return errorAt(ShapeInconsistency, n.Line(), "named rest parameter without a name")
	}
	if n.RestKind != NamedRest && n.Rest != "" {
		return errorAt(ShapeInconsistency, n.Line(), "rest name %q given for a %s rest", n.Rest, n.RestKind)
	}
	if len(n.Post) > 0 && !n.HasRest() && n.Defaults == nil {
		return errorAt(ShapeInconsistency, n.Line(), "post parameters require a rest or optional parameter")
	}
	seen := make(map[string]bool)
	check := func(name string) error {
		if name == "_" || name == "" {
			return nil
		}
		if seen[name] {
			return errorAt(ShapeInconsistency, n.Line(), "duplicated argument name %q", name)
		}
		seen[name] = true
		return nil
	}
	for _, r := range n.Required {
		if r.Pattern != nil {
			for _, name := range r.Pattern.Variables() {
				if err := check(name); err != nil {
					return err
				}
			}
			continue
		}
		if err := check(r.Name); err != nil {
			return err
		}
	}
	for _, name := range n.Optional() {
		if err := check(name); err != nil {
			return err
		}
	}
	if err := check(n.Rest); err != nil {
		return err
	}
	for _, name := range n.Post {
		if err := check(name); err != nil {
			return err
		}
	}
	if n.BlockArg != nil {
		if err := check(n.BlockArg.Name); err != nil {
			return err
		}
	}
	return nil
}

// MapArguments binds every parameter to a local of scope in slot order:
// required (a pattern binds only its leftmost variable), optional, rest,
// post and finally the block parameter. An underscore required parameter
// is renamed _<index> so repeated underscores get distinct slots.
func (n *FormalArguments) MapArguments(scope SlotScope) error {
	for i := range n.Required {
		r := &n.Required[i]
		if r.Pattern != nil {
			if err := r.Pattern.MapArguments(scope); err != nil {
				return err
			}
			continue
		}
		if r.Name == "_" {
			r.Name = fmt.Sprintf("_%d", i)
		}
		scope.Allocate(r.Name)
	}
	if n.Defaults != nil {
		n.Defaults.MapArguments(scope)
	}
	switch n.RestKind {
	case NamedRest:
		scope.Allocate(n.Rest)
	case AnonymousRest:
		scope.Allocate(anonymousRestName)
	}
	for _, name := range n.Post {
		scope.Allocate(name)
	}
	if n.BlockArg != nil {
		if scope.Owns(n.BlockArg.Name) {
			return errorAt(MalformedConstruction, n.BlockArg.Line(), "block parameter %q already bound", n.BlockArg.Name)
		}
		r := scope.Bind(n.BlockArg.Name)
		n.BlockArg.Ref = &r
	}
	return nil
}

// Patterns returns the destructuring parameters in order.
func (n *FormalArguments) Patterns() []*PatternArguments {
	var out []*PatternArguments
	for _, r := range n.Required {
		if r.Pattern != nil {
			out = append(out, r.Pattern)
		}
	}
	return out
}

func (k RestKind) String() string {
	switch k {
	case NamedRest:
		return "named"
	case AnonymousRest:
		return "anonymous"
	case DiscardedRest:
		return "discarded"
	}
	return "no"
}

// DefaultArguments holds the optional parameters as assignments of their
// default values.
type DefaultArguments struct {
	Pos
	Arguments []*LocalVariableAssignment
}

func (n *DefaultArguments) node() {}

// Names returns the optional parameter names in order.
func (n *DefaultArguments) Names() []string {
	names := make([]string, len(n.Arguments))
	for i, a := range n.Arguments {
		names[i] = a.Name
	}
	return names
}

// MapArguments binds each optional parameter in order.
func (n *DefaultArguments) MapArguments(scope SlotScope) {
	for _, a := range n.Arguments {
		r := scope.Allocate(a.Name)
		a.Ref = &r
	}
}

// BlockArgument is the &blk parameter.
type BlockArgument struct {
	Pos
	Name string
	Ref  *Reference
}

func (n *BlockArgument) node() {}

// PatternVariable is a plain name inside a destructuring parameter.
type PatternVariable struct {
	Pos
	Name string
	Ref  *Reference
}

func (n *PatternVariable) node() {}

// PatternArguments is a destructuring parameter such as (a, (b, c)).
// Elements are *PatternVariable or nested *PatternArguments.
type PatternArguments struct {
	Pos
	Elements []Node
	// Argument is the variable that receives the whole value as the
	// formal slot; set by MapArguments.
	Argument *PatternVariable
}

func (n *PatternArguments) node() {}

// MapArguments binds the leftmost, depth-first variable of the pattern as
// the formal slot. The remaining variables are bound by destructuring.
func (n *PatternArguments) MapArguments(scope SlotScope) error {
	elements := n.Elements
	for len(elements) > 0 {
		switch first := elements[0].(type) {
		case *PatternVariable:
			n.Argument = first
			r := scope.Bind(first.Name)
			first.Ref = &r
			return nil
		case *PatternArguments:
			elements = first.Elements
		default:
			return errorAt(MalformedConstruction, n.Line(), "unexpected %T in parameter pattern", first)
		}
	}
	return errorAt(MalformedConstruction, n.Line(), "parameter pattern binds no variable")
}

// Variables lists every name in the pattern in pre-order.
func (n *PatternArguments) Variables() []string {
	var names []string
	for _, e := range n.Elements {
		switch x := e.(type) {
		case *PatternVariable:
			names = append(names, x.Name)
		case *PatternArguments:
			names = append(names, x.Variables()...)
		}
	}
	return names
}

// DeclareLocals binds every remaining pattern variable in pre-order.
func (n *PatternArguments) DeclareLocals(scope Scope) {
	for _, e := range n.Elements {
		switch x := e.(type) {
		case *PatternVariable:
			if x.Ref == nil {
				r := scope.Bind(x.Name)
				x.Ref = &r
			}
		case *PatternArguments:
			x.DeclareLocals(scope)
		}
	}
}

// patternFromTargets converts a destructuring target set into a parameter
// pattern.
func patternFromTargets(m *MultipleAssignment) (*PatternArguments, error) {
	p := &PatternArguments{Pos: m.Pos}
	if m.Left == nil {
		return p, nil
	}
	for _, t := range m.Left.Body {
		switch x := t.(type) {
		case *MultipleAssignment:
			sub, err := patternFromTargets(x)
			if err != nil {
				return nil, err
			}
			p.Elements = append(p.Elements, sub)
		case *LocalVariableAssignment:
			p.Elements = append(p.Elements, &PatternVariable{Pos: x.Pos, Name: x.Name})
		default:
			return nil, errorAt(MalformedConstruction, t.Line(), "parameter pattern target must be a name or a nested pattern, got %T", t)
		}
	}
	return p, nil
}

// ---------------------------------------------------------------------------
// Block parameters written as destructuring targets
// ---------------------------------------------------------------------------

// PreludeKind describes how a block unpacks the values it is called with.
type PreludeKind int

const (
	NoPrelude PreludeKind = iota
	SinglePrelude
	MultiPrelude
	SplatPrelude
	EmptyPrelude
)

func (k PreludeKind) String() string {
	switch k {
	case SinglePrelude:
		return "single"
	case MultiPrelude:
		return "multi"
	case SplatPrelude:
		return "splat"
	case EmptyPrelude:
		return "empty"
	}
	return "none"
}

// IterArguments is a block parameter list given as a destructuring target
// set, a single assignment target, &blk alone, or nothing.
type IterArguments struct {
	Pos
	Prelude       PreludeKind
	arity         int
	Optional      int
	requiredArgs  int
	SplatIndex    int
	Arguments     Node // *MultipleAssignment or a single target; nil otherwise
	Splat         Node
	Block         Node
	explicitEmpty bool
}

func (n *IterArguments) node() {}

func (n *IterArguments) Arity() int        { return n.arity }
func (n *IterArguments) RequiredArgs() int { return n.requiredArgs }
func (n *IterArguments) TotalArgs() int    { return n.requiredArgs }
func (n *IterArguments) PostArgs() int     { return 0 }
func (n *IterArguments) RestIndex() int    { return n.SplatIndex }

// newIterArguments derives arity, prelude and splat index from the shape
// of the block parameters.
func newIterArguments(line int, args Node) *IterArguments {
	n := &IterArguments{Pos: at(line), SplatIndex: NoRestIndex}
	switch x := args.(type) {
	case *emptyParameters:
		n.explicitEmpty = true
	case *MultipleAssignment:
		x.IterArguments = true
		if x.Splat != nil {
			n.Optional = 1
			if sp, ok := x.Splat.(*MultipleSplat); ok && sp.Kind == EmptySplat {
				n.SplatIndex = DiscardedRestIndex
				x.Splat = nil
				n.Prelude = EmptyPrelude
			} else {
				x.Splat = splatTarget(x.Splat)
				n.Splat = x.Splat
			}
			if x.Left != nil {
				size := len(x.Left.Body)
				n.Prelude = MultiPrelude
				n.arity = -(size + 1)
				n.requiredArgs = size
				if n.SplatIndex == NoRestIndex {
					n.SplatIndex = size
				}
			} else {
				if n.Prelude == NoPrelude {
					n.Prelude = SplatPrelude
				}
				n.arity = -1
				if n.SplatIndex == NoRestIndex {
					n.SplatIndex = 0
				}
			}
		} else if x.Left != nil {
			size := len(x.Left.Body)
			n.Prelude = MultiPrelude
			n.arity = size
			n.requiredArgs = size
			if size == 1 {
				n.SplatIndex = DiscardedRestIndex
			}
		} else {
			n.SplatIndex = 0
			n.Prelude = MultiPrelude
			n.arity = -1
		}
		n.Block = x.Block
		n.Arguments = x
	case nil:
		n.arity = -1
		n.SplatIndex = DiscardedRestIndex
	case *BlockPass:
		n.arity = -1
		n.SplatIndex = DiscardedRestIndex
		n.Block = x
	default:
		n.Arguments = args
		n.arity = 1
		n.requiredArgs = 1
		n.Prelude = SinglePrelude
	}
	return n
}

// splatTarget unwraps a rest wrapper to the target it assigns.
func splatTarget(n Node) Node {
	if sp, ok := n.(*MultipleSplat); ok && sp.Value != nil {
		return sp.Value
	}
	return n
}

// Names lists the block parameter names.
func (n *IterArguments) Names() []string {
	switch x := n.Arguments.(type) {
	case *MultipleAssignment:
		var names []string
		if x.Left != nil {
			for _, t := range x.Left.Body {
				if name := targetName(t); name != "" {
					names = append(names, name)
				}
			}
		}
		if name := targetName(n.Splat); name != "" {
			names = append(names, name)
		}
		return names
	case nil:
		return nil
	default:
		if name := targetName(x); name != "" {
			return []string{name}
		}
	}
	return nil
}

// emptyParameters is the explicit || parameter list.
type emptyParameters struct{ Pos }

func (n *emptyParameters) node() {}

// ForArguments is the loop variable of a for loop: one plain target or a
// destructuring target set.
type ForArguments struct {
	Pos
	Target Node
}

func (n *ForArguments) node() {}

func (n *ForArguments) destructures() bool {
	_, ok := n.Target.(*MultipleAssignment)
	return ok
}

func (n *ForArguments) Arity() int { return n.RequiredArgs() }

func (n *ForArguments) RequiredArgs() int {
	if n.destructures() {
		return 0
	}
	return 1
}

func (n *ForArguments) TotalArgs() int { return n.RequiredArgs() }
func (n *ForArguments) PostArgs() int  { return 0 }

// RestIndex is 0 for a destructuring loop variable, which receives the
// whole yielded list.
func (n *ForArguments) RestIndex() int {
	if n.destructures() {
		return 0
	}
	return NoRestIndex
}

// targetName returns the variable name assigned by a target node.
func targetName(n Node) string {
	switch x := n.(type) {
	case *LocalVariableAssignment:
		return x.Name
	case *VariableAssignment:
		return x.Name
	case *PatternVariable:
		return x.Name
	case *MultipleSplat:
		return targetName(x.Value)
	}
	return ""
}
