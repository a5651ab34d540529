package compiler

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the node just visited.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// Children returns the direct child nodes of n in evaluation order. Absent
// optional children are omitted.
func Children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if c != nil {
				out = append(out, c)
			}
		}
	}

	switch n := n.(type) {
	case *DynamicString:
		add(n.Parts...)
	case *ToString:
		add(n.Value)
	case *ArrayLiteral:
		add(n.Body...)
	case *HashLiteral:
		add(n.Array...)
	case *Range:
		add(n.Start, n.Finish)

	case *LocalVariableAssignment:
		add(n.Value)
	case *VariableAssignment:
		add(n.Value)
	case *ScopedConstant:
		add(n.Parent)
	case *ConstantAssignment:
		add(n.Constant, n.Value)

	case *SplatValue:
		add(n.Value)
	case *ConcatArgs:
		add(n.Array, n.Rest)
	case *PushArgs:
		add(n.Arguments, n.Value)
	case *SValue:
		add(n.Value)
	case *ToArray:
		add(n.Value)
	case *CollectSplat:
		add(n.Parts...)
	case *BlockPass:
		add(n.Body)

	case *If:
		add(n.Condition, n.Body, n.Else)
	case *While:
		add(n.Condition, n.Body)
	case *Case:
		add(n.Receiver)
		for _, w := range n.Whens {
			add(w)
		}
		add(n.Else)
	case *When:
		add(n.Single, n.Conditions)
		if n.Splat != nil {
			add(n.Splat)
		}
		add(n.Body)
	case *SplatWhen:
		add(n.Condition)
	case *Flip:
		add(n.Start, n.Finish)
	case *Match:
		if n.Pattern != nil {
			add(n.Pattern)
		}
	case *MatchOp:
		add(n.Pattern, n.Value)
	case *Jump:
		add(n.Value)
	case *Return:
		add(n.Value)
	case *Logical:
		add(n.Left, n.Right)
	case *Not:
		add(n.Value)
	case *Negate:
		add(n.Value)
	case *OpAssign1:
		add(n.Receiver)
		add(n.Arguments.nodes()...)
		add(n.Value)
	case *OpAssign2:
		add(n.Receiver, n.Value)
	case *OpAssignLogical:
		add(n.Left, n.Right)
	case *Defined:
		add(n.Expression)

	case *Send:
		add(n.Receiver)
		add(n.Arguments.nodes()...)
		add(n.Block)
	case *Super:
		add(n.Arguments.nodes()...)
		add(n.Block)
	case *ZSuper:
		add(n.Block)
	case *Yield:
		add(n.Arguments.nodes()...)
	case *Iter:
		if n.Arguments != nil {
			add(n.Arguments)
		}
		add(n.Body)
	case *For:
		if n.Arguments != nil {
			add(n.Arguments)
		}
		add(n.Body)
	case *PreExe:
		if n.Block != nil {
			add(n.Block)
		}

	case *FormalArguments:
		for _, r := range n.Required {
			if r.Pattern != nil {
				add(r.Pattern)
			}
		}
		if n.Defaults != nil {
			add(n.Defaults)
		}
		if n.BlockArg != nil {
			add(n.BlockArg)
		}
	case *DefaultArguments:
		for _, a := range n.Arguments {
			add(a)
		}
	case *PatternArguments:
		add(n.Elements...)
	case *IterArguments:
		add(n.Arguments)
		if _, ok := n.Arguments.(*MultipleAssignment); !ok {
			add(n.Block)
		}
	case *ForArguments:
		add(n.Target)
	case *MultipleAssignment:
		if n.Left != nil {
			add(n.Left.Body...)
		}
		add(n.Splat)
		if n.Post != nil {
			add(n.Post.Body...)
		}
		add(n.Block, n.Right)
	case *MultipleSplat:
		add(n.Value)
	case *PostArg:
		add(n.Into)
		if n.Rest != nil {
			add(n.Rest)
		}

	case *Begin:
		add(n.Rescue)
	case *Ensure:
		add(n.Body, n.Ensure)
	case *Rescue:
		add(n.Body)
		if n.Rescue != nil {
			add(n.Rescue)
		}
		add(n.Else)
	case *RescueCondition:
		if n.Conditions != nil {
			add(n.Conditions)
		}
		if n.Splat != nil {
			add(n.Splat)
		}
		add(n.Assignment, n.Body)
		if n.Next != nil {
			add(n.Next)
		}
	case *RescueSplat:
		add(n.Value)

	case *Container:
		for _, pe := range n.PreExe {
			add(pe)
		}
		add(n.Body)
	case *Block:
		add(n.Array...)
	case *Alias:
		add(n.To, n.From)
	case *Undef:
		add(n.Name)
	case *Define:
		if n.Arguments != nil {
			add(n.Arguments)
		}
		if n.Body != nil {
			add(n.Body)
		}
	case *DefineSingleton:
		add(n.Receiver)
		if n.Body != nil {
			add(n.Body)
		}
	case *ModuleName:
		add(n.Parent)
	case *ModuleScope:
		add(n.Body)
	case *Class:
		if n.Name != nil {
			add(n.Name)
		}
		add(n.Superclass)
		if n.Body != nil {
			add(n.Body)
		}
	case *Module:
		if n.Name != nil {
			add(n.Name)
		}
		if n.Body != nil {
			add(n.Body)
		}
	case *SClass:
		add(n.Receiver)
		if n.Body != nil {
			add(n.Body)
		}
	}
	return out
}
