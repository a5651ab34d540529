package compiler

// ---------------------------------------------------------------------------
// Destructuring Engine
// ---------------------------------------------------------------------------

// SplatKind selects how a destructuring rest target is wrapped.
type SplatKind int

const (
	// SplatAssign: rest target of a multiple assignment with a right side.
	SplatAssign SplatKind = iota
	// SplatArray: rest-only target over a fixed right side.
	SplatArray
	// SplatWrapped: rest target without a right side (block parameters).
	SplatWrapped
	// EmptySplat: an anonymous rest (*) that discards its values.
	EmptySplat
)

// MultipleSplat wraps the rest target of a multiple assignment.
type MultipleSplat struct {
	Pos
	Kind  SplatKind
	Value Node // nil for EmptySplat
	Size  int  // right side length for SplatArray and EmptySplat
}

func (n *MultipleSplat) node() {}

// AnonymousSplat is the parser's marker for a bare * target.
type AnonymousSplat struct{ Pos }

func (n *AnonymousSplat) node() {}

// PostArg carries the rest target together with the targets after it.
type PostArg struct {
	Pos
	Into Node
	Rest *ArrayLiteral
}

func (n *PostArg) node() {}

// MultipleAssignment represents a, (b, c), *d, e = values and the same
// target shapes used as block parameters.
type MultipleAssignment struct {
	Pos
	Left  *ArrayLiteral // may be nil when only a rest is given
	Right Node          // nil for block and pattern targets
	Splat Node          // *MultipleSplat, or the bare target when Right is a splat
	Post  *ArrayLiteral // targets after the rest
	Block Node          // |&b| in block parameters
	// Fixed is set when the right side is a literal list of more than one
	// element.
	Fixed         bool
	IterArguments bool
}

func (n *MultipleAssignment) node() {}

// newMultipleAssignment wraps the rest target according to the shape of
// the assignment and validates every target.
func newMultipleAssignment(line int, left *ArrayLiteral, right Node, splat Node) (*MultipleAssignment, error) {
	m := &MultipleAssignment{Pos: at(line), Left: left, Right: right}

	if pa, ok := splat.(*PostArg); ok {
		m.Post = pa.Rest
		splat = pa.Into
	} else if arr, ok := right.(*ArrayLiteral); ok {
		m.Fixed = len(arr.Body) > 1
	}

	if err := m.checkTargets(left, "target"); err != nil {
		return nil, err
	}
	if err := m.checkTargets(m.Post, "post target"); err != nil {
		return nil, err
	}

	switch s := splat.(type) {
	case nil:
	case *AnonymousSplat:
		size := 0
		if m.Fixed {
			size = len(right.(*ArrayLiteral).Body)
		}
		m.Splat = &MultipleSplat{Pos: at(line), Kind: EmptySplat, Size: size}
	default:
		if !isRestTarget(s) {
			return nil, errorAt(MalformedConstruction, line, "rest target must be a name or a nested pattern, got %T", s)
		}
		switch {
		case left != nil && right != nil:
			m.Splat = &MultipleSplat{Pos: at(line), Kind: SplatAssign, Value: s}
		case left != nil:
			m.Splat = &MultipleSplat{Pos: at(line), Kind: SplatWrapped, Value: s}
		case m.Fixed:
			m.Splat = &MultipleSplat{Pos: at(line), Kind: SplatArray, Value: s, Size: len(right.(*ArrayLiteral).Body)}
		default:
			if _, ok := right.(*SplatValue); ok {
				m.Splat = s
			} else {
				m.Splat = &MultipleSplat{Pos: at(line), Kind: SplatWrapped, Value: s}
			}
		}
	}
	return m, nil
}

func (m *MultipleAssignment) checkTargets(list *ArrayLiteral, what string) error {
	if list == nil {
		return nil
	}
	for _, t := range list.Body {
		if _, ok := t.(*SplatValue); ok {
			return errorAt(ShapeInconsistency, t.Line(), "more than one rest target in one destructuring level")
		}
		if !isTarget(t) {
			return errorAt(MalformedConstruction, t.Line(), "%s must be assignable, got %T", what, t)
		}
	}
	return nil
}

// isTarget reports whether n can appear as a destructuring target.
func isTarget(n Node) bool {
	switch x := n.(type) {
	case *LocalVariableAssignment, *VariableAssignment, *ConstantAssignment,
		*MultipleAssignment, *PatternVariable:
		return true
	case *Send:
		return x.Kind == AttrAssignSend
	}
	return false
}

// isRestTarget reports whether n can receive the rest of a destructuring.
func isRestTarget(n Node) bool {
	switch x := n.(type) {
	case *LocalVariableAssignment, *VariableAssignment, *ConstantAssignment, *MultipleAssignment:
		return true
	case *Send:
		return x.Kind == AttrAssignSend
	}
	return false
}

// RestTarget returns the node that receives the rest values, or nil when
// there is no rest or the rest is anonymous.
func (m *MultipleAssignment) RestTarget() Node {
	switch s := m.Splat.(type) {
	case nil:
		return nil
	case *MultipleSplat:
		return s.Value
	default:
		return s
	}
}

// HasRest reports whether the target set absorbs extra values.
func (m *MultipleAssignment) HasRest() bool { return m.Splat != nil }

func (m *MultipleAssignment) leftTargets() []Node {
	if m.Left == nil {
		return nil
	}
	return m.Left.Body
}

func (m *MultipleAssignment) postTargets() []Node {
	if m.Post == nil {
		return nil
	}
	return m.Post.Body
}

// DeclareLocals binds every plain-name target in left-to-right pre-order:
// the leading targets (descending into nested sets), then the rest target,
// then the post targets. It runs before the right side is resolved so the
// right side already sees the targets' scoping.
func (m *MultipleAssignment) DeclareLocals(scope Scope) {
	for _, t := range m.leftTargets() {
		declareTarget(scope, t)
	}
	if rest := m.RestTarget(); rest != nil {
		declareTarget(scope, rest)
	}
	for _, t := range m.postTargets() {
		declareTarget(scope, t)
	}
}

func declareTarget(scope Scope, t Node) {
	switch x := t.(type) {
	case *LocalVariableAssignment:
		if x.Ref == nil {
			r := scope.Bind(x.Name)
			x.Ref = &r
		}
	case *PatternVariable:
		if x.Ref == nil {
			r := scope.Bind(x.Name)
			x.Ref = &r
		}
	case *MultipleAssignment:
		x.DeclareLocals(scope)
	}
}

// PlanMode says when destructuring shapes its values.
type PlanMode int

const (
	// StaticPlan: the right side is a literal list; shaping is fixed now.
	StaticPlan PlanMode = iota
	// CoercedPlan: a single value is treated as a one-element list.
	CoercedPlan
	// RuntimePlan: the values come from a splat or a block call; the
	// generator shapes them at runtime.
	RuntimePlan
)

func (m PlanMode) String() string {
	switch m {
	case CoercedPlan:
		return "coerced"
	case RuntimePlan:
		return "runtime"
	}
	return "static"
}

// Binding pairs one target with the value it receives.
type Binding struct {
	Target Node
	// Value is the bound expression for static and coerced plans: an
	// element of the right side, a NilLiteral pad, or an ArrayLiteral slice
	// for the rest. It is nil in runtime plans.
	Value Node
	Rest  bool
	// Nested is the plan for a target that is itself a target set.
	Nested *Plan
}

// Plan is the shaping contract handed to the generator.
type Plan struct {
	Mode     PlanMode
	Bindings []Binding
	Pad      int // targets that receive nil
	Excess   int // right side values discarded
}

// Plan computes how the right side is distributed over the targets.
func (m *MultipleAssignment) Plan() *Plan {
	values, mode := m.classify(m.Right)
	return m.planFor(values, mode)
}

// classify describes a right side as a list of values.
func (m *MultipleAssignment) classify(right Node) ([]Node, PlanMode) {
	switch r := right.(type) {
	case nil:
		return nil, RuntimePlan
	case *ArrayLiteral:
		for _, v := range r.Body {
			if _, ok := v.(*SplatValue); ok {
				return nil, RuntimePlan
			}
		}
		return r.Body, StaticPlan
	case *SplatValue, *ConcatArgs, *PushArgs:
		return nil, RuntimePlan
	}
	if len(m.leftTargets())+len(m.postTargets()) > 1 || m.HasRest() {
		return []Node{right}, CoercedPlan
	}
	return []Node{right}, StaticPlan
}

func (m *MultipleAssignment) planFor(values []Node, mode PlanMode) *Plan {
	p := &Plan{Mode: mode}
	left, post := m.leftTargets(), m.postTargets()
	rest := m.RestTarget()

	if mode == RuntimePlan {
		for _, t := range left {
			p.bind(t, nil, false)
		}
		if rest != nil {
			p.bind(rest, nil, true)
		}
		for _, t := range post {
			p.bind(t, nil, false)
		}
		return p
	}

	n, l, q := len(values), len(left), len(post)
	for i, t := range left {
		p.bind(t, p.valueAt(values, i, m.Line()), false)
	}

	if !m.HasRest() {
		if n > l {
			p.Excess = n - l
		}
		for i, t := range post {
			p.bind(t, p.valueAt(values, l+i, m.Line()), false)
		}
		return p
	}

	var restValues []Node
	postStart := l
	if n >= l+q {
		restValues = values[l : n-q]
		postStart = n - q
	} else if n < l {
		postStart = n
	}
	if rest != nil {
		p.bind(rest, &ArrayLiteral{Pos: m.Pos, Body: restValues}, true)
	}
	for i, t := range post {
		p.bind(t, p.valueAt(values, postStart+i, m.Line()), false)
	}
	return p
}

// valueAt returns values[i], or a nil pad when the list is short.
func (p *Plan) valueAt(values []Node, i, line int) Node {
	if i < len(values) {
		return values[i]
	}
	p.Pad++
	return &NilLiteral{Pos: at(line)}
}

func (p *Plan) bind(t Node, v Node, rest bool) {
	b := Binding{Target: t, Value: v, Rest: rest}
	if nested, ok := t.(*MultipleAssignment); ok {
		if p.Mode == RuntimePlan || v == nil {
			b.Nested = nested.planFor(nil, RuntimePlan)
		} else {
			values, mode := nested.classify(v)
			b.Nested = nested.planFor(values, mode)
		}
	}
	p.Bindings = append(p.Bindings, b)
}
