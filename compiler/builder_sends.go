package compiler

// ---------------------------------------------------------------------------
// Builder: calls, blocks and parameter lists
// ---------------------------------------------------------------------------

// dispatch offers a call to the enabled transforms.
func (b *Builder) dispatch(c *Call) *Send {
	if s := Dispatch(b.transforms, c); s != nil {
		b.log.Debugf("line %d: %s specialized by %s", c.Line, c.Name, s.Special.Transform)
		return s
	}
	return nil
}

// splitBlockPass separates a trailing &blk from the argument node.
func splitBlockPass(args Node) (Node, *BlockPass) {
	if bp, ok := args.(*BlockPass); ok {
		return nil, bp
	}
	return args, nil
}

func (b *Builder) send(c *Call, vcall bool) *Send {
	if s := b.dispatch(c); s != nil {
		return s
	}
	s := &Send{
		Pos:        at(c.Line),
		Receiver:   c.Receiver,
		Name:       c.Name,
		Privately:  c.Privately,
		VCallStyle: vcall,
	}
	if c.Arguments != nil {
		s.Arguments = newActualArguments(c.Line, c.Arguments)
	}
	return s
}

// Call builds recv.name(args). args is nil when no argument list was
// written and may be a lone *BlockPass.
func (b *Builder) Call(line int, receiver Node, name string, args Node) *Send {
	args, blockArg := splitBlockPass(args)
	s := b.send(&Call{Line: line, Receiver: receiver, Name: name, Arguments: args}, false)
	if blockArg != nil {
		b.AttachBlock(s, blockArg)
	}
	return s
}

// FCall builds name(args) with an implicit self receiver.
func (b *Builder) FCall(line int, name string, args Node) *Send {
	args, blockArg := splitBlockPass(args)
	s := b.send(&Call{Line: line, Receiver: b.Self(line), Name: name, Arguments: args, Privately: true}, false)
	if blockArg != nil {
		b.AttachBlock(s, blockArg)
	}
	return s
}

// VCall builds a bare identifier the parser knows to be a call.
func (b *Builder) VCall(line int, name string) *Send {
	return b.send(&Call{Line: line, Receiver: b.Self(line), Name: name, Privately: true}, true)
}

// LocalOrCall builds a bare identifier that is a local when a variable of
// that name is visible at resolution time and a call otherwise.
func (b *Builder) LocalOrCall(line int, name string) *Send {
	s := b.VCall(line, name)
	s.CheckForLocal = true
	return s
}

// AttrAssign builds recv.name = args.
func (b *Builder) AttrAssign(line int, receiver Node, name string, args Node) *Send {
	return &Send{
		Pos:       at(line),
		Kind:      AttrAssignSend,
		Receiver:  receiver,
		Name:      name + "=",
		Privately: isSelf(receiver),
		Arguments: newActualArguments(line, args),
	}
}

// ElementAssign builds recv[args] = value, with the value as the last
// argument.
func (b *Builder) ElementAssign(line int, receiver Node, args Node) *Send {
	s := &Send{
		Pos:       at(line),
		Kind:      AttrAssignSend,
		Receiver:  receiver,
		Name:      "[]=",
		Privately: isSelf(receiver),
	}
	if pa, ok := args.(*PushArgs); ok {
		s.Arguments = &ActualArguments{Pushed: pa}
	} else {
		s.Arguments = newActualArguments(line, args)
	}
	return s
}

// Super builds super(args).
func (b *Builder) Super(line int, args Node) *Super {
	args, blockArg := splitBlockPass(args)
	s := &Super{Pos: at(line), Arguments: newActualArguments(line, args)}
	if blockArg != nil {
		s.Block = blockArg
	}
	return s
}

// ZSuper builds a bare super.
func (b *Builder) ZSuper(line int) *ZSuper { return &ZSuper{Pos: at(line)} }

// Yield builds yield args. Unless unwrap is set, a literal list argument
// is passed as one value.
func (b *Builder) Yield(line int, args Node, unwrap bool) *Yield {
	if arr, ok := args.(*ArrayLiteral); ok && !unwrap {
		args = &ArrayLiteral{Pos: at(line), Body: []Node{arr}}
	}
	a := newActualArguments(line, args)
	y := &Yield{Pos: at(line), Arguments: a, ArgumentCount: a.Size()}
	if a.IsSplat() {
		var value Node
		if sv, ok := a.Splat.(*SplatValue); ok {
			value = sv.Value
		}
		if _, isArray := value.(*ArrayLiteral); isArray && !unwrap {
			y.ArgumentCount++
		} else {
			y.YieldSplat = true
		}
	}
	return y
}

// AttachBlock attaches a block literal or a &blk argument to a call.
// Sends specialized to run their block in place keep only the block body.
func (b *Builder) AttachBlock(call Node, block Node) Node {
	switch c := call.(type) {
	case *Send:
		if _, ok := c.Block.(*BlockPass); ok && block != nil {
			if _, iter := block.(*Iter); iter {
				b.fail(errorAt(MalformedConstruction, c.Line(), "both block argument and block given to %s", c.Name))
				return c
			}
		}
		if c.Special != nil && c.Special.InlineBlock {
			if iter, ok := block.(*Iter); ok {
				c.Block = iter.Body
				if c.Special.Transform == "privately" {
					markPrivate(iter.Body)
				}
				return c
			}
		}
		c.Block = block
	case *Super:
		c.Block = block
	case *ZSuper:
		c.Block = block
	default:
		b.fail(errorAt(MalformedConstruction, call.Line(), "block attached to %T", call))
	}
	return call
}

// markPrivate makes every send in body skip visibility checks.
func markPrivate(body Node) {
	Walk(body, func(n Node) bool {
		if s, ok := n.(*Send); ok {
			s.Privately = true
		}
		return true
	})
}

// EmptyParameters is the explicit || block parameter list.
func (b *Builder) EmptyParameters(line int) Node { return &emptyParameters{Pos: at(line)} }

// Iter builds a block literal. args is nil, EmptyParameters, a
// *FormalArguments, a destructuring target set, a single assignment
// target or a lone *BlockPass. locals lists the block-local declarations.
func (b *Builder) Iter(line int, args Node, body Node, locals ...string) *Iter {
	var params Parameters
	if fa, ok := args.(*FormalArguments); ok {
		params = fa
	} else {
		params = newIterArguments(line, args)
	}
	return &Iter{Pos: at(line), Arguments: params, Body: orNil(body, line), Locals: locals, Scope: NoScope}
}

// For builds for target in receiver; body; end as receiver.each with a
// transparent loop block.
func (b *Builder) For(line int, receiver, target, body Node) *Send {
	if !isTarget(target) {
		b.fail(errorAt(MalformedConstruction, line, "for loop variable must be assignable, got %T", target))
	}
	loop := &For{Pos: at(line), Arguments: &ForArguments{Pos: at(line), Target: target}, Body: orNil(body, line), Scope: NoScope}
	s := &Send{Pos: at(line), Receiver: receiver, Name: "each"}
	s.Block = loop
	return s
}

// Destructuring

// MultipleAssignment builds left, *splat = right. left may be nil when only
// a rest target is written and right is nil for parameter targets. splat is
// nil, an AnonymousSplat, a rest target, or a PostArg carrying the rest and
// the targets after it.
func (b *Builder) MultipleAssignment(line int, left *ArrayLiteral, right, splat Node) *MultipleAssignment {
	m, err := newMultipleAssignment(line, left, right, splat)
	if err != nil {
		b.fail(err)
		return &MultipleAssignment{Pos: at(line), Left: left, Right: right}
	}
	return m
}

func (b *Builder) PostArg(line int, into Node, rest *ArrayLiteral) *PostArg {
	return &PostArg{Pos: at(line), Into: into, Rest: rest}
}

func (b *Builder) AnonymousSplat(line int) *AnonymousSplat {
	return &AnonymousSplat{Pos: at(line)}
}

// Param is one required parameter: a name, or a destructuring target set.
type Param struct {
	Name    string
	Pattern *MultipleAssignment
}

// ParamList is a method or block parameter list as the parser delivers
// it. Optional holds the default-value assignments in order.
type ParamList struct {
	Required []Param
	Optional []*LocalVariableAssignment
	RestKind RestKind
	Rest     string
	Post     []string
	Block    string
}

// FormalArguments builds and validates a parameter list.
func (b *Builder) FormalArguments(line int, p ParamList) *FormalArguments {
	fa := &FormalArguments{Pos: at(line), Rest: p.Rest, RestKind: p.RestKind, Post: p.Post}
	for _, r := range p.Required {
		if r.Pattern == nil {
			fa.Required = append(fa.Required, RequiredArg{Name: r.Name})
			continue
		}
		pat, err := patternFromTargets(r.Pattern)
		if err != nil {
			b.fail(err)
			continue
		}
		fa.Required = append(fa.Required, RequiredArg{Pattern: pat})
	}
	if len(p.Optional) > 0 {
		fa.Defaults = &DefaultArguments{Pos: at(line), Arguments: p.Optional}
	}
	if p.Block != "" {
		fa.BlockArg = &BlockArgument{Pos: at(line), Name: p.Block}
	}
	if err := fa.validate(); err != nil {
		b.fail(err)
	}
	return fa
}
