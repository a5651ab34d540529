package compiler

import (
	"fmt"

	"github.com/chazu/garnet/compiler/sexp"
)

// ---------------------------------------------------------------------------
// Canonical serialization
// ---------------------------------------------------------------------------

// ToSexp renders a tree in the canonical nested-list form. It reads only
// the tree: resolution results and transform records are not part of the
// output, so a tree renders the same before and after resolution.
func ToSexp(n Node) sexp.Value {
	return sx(n)
}

func sym(s string) sexp.Sym { return sexp.Sym(s) }

func tagged(tag string, items ...sexp.Value) sexp.List {
	return append(sexp.List{sym(tag)}, items...)
}

// sx renders n, or nil when n is absent.
func sx(n Node) sexp.Value {
	switch n := n.(type) {
	case nil:
		return sexp.Nil

	// Literals
	case *NilLiteral:
		return tagged("nil")
	case *TrueLiteral:
		return tagged("true")
	case *FalseLiteral:
		return tagged("false")
	case *Self:
		return tagged("self")
	case *NumberLiteral:
		return tagged("lit", sexp.Int(n.Value))
	case *FloatLiteral:
		return tagged("lit", sexp.Float(n.Value))
	case *SymbolLiteral:
		return tagged("lit", sym(n.Value))
	case *StringLiteral:
		if n.Execute {
			return tagged("xstr", sexp.Str(n.Value))
		}
		return tagged("str", sexp.Str(n.Value))
	case *DynamicString:
		out := tagged(n.Kind.tag(), sexp.Str(n.Value))
		for _, p := range n.Parts {
			out = append(out, sx(p))
		}
		if n.Options != 0 {
			out = append(out, sexp.Int(n.Options))
		}
		return out
	case *ToString:
		if n.Value == nil {
			return tagged("evstr")
		}
		return tagged("evstr", sx(n.Value))
	case *RegexLiteral:
		return tagged("regex", sexp.Str(n.Source), sexp.Int(n.Options))
	case *ArrayLiteral:
		return tagged("array", list(n.Body)...)
	case *HashLiteral:
		return tagged("hash", list(n.Array)...)
	case *Range:
		if n.Exclusive {
			return tagged("dot3", sx(n.Start), sx(n.Finish))
		}
		return tagged("dot2", sx(n.Start), sx(n.Finish))
	case *Encoding:
		return tagged("encoding", sexp.Str(n.Name))

	// Variables and constants
	case *LocalVariableAccess:
		return tagged("lvar", sym(n.Name))
	case *LocalVariableAssignment:
		return assignment("lasgn", n.Name, n.Value)
	case *VariableAccess:
		return tagged(n.Kind.accessTag(), sym(n.Name))
	case *VariableAssignment:
		return assignment(n.Kind.assignTag(), n.Name, n.Value)
	case *CurrentException:
		return tagged("gvar", sym("$!"))
	case *BackRef:
		return tagged("back_ref", sym(n.Kind))
	case *NthRef:
		return tagged("nth_ref", sexp.Int(n.Which))
	case *ConstantAccess:
		return tagged("const", sym(n.Name))
	case *ScopedConstant:
		return tagged("colon2", sx(n.Parent), sym(n.Name))
	case *ToplevelConstant:
		return tagged("colon3", sym(n.Name))
	case *ConstantAssignment:
		var target sexp.Value
		if c, ok := n.Constant.(*ConstantAccess); ok {
			target = sym(c.Name)
		} else {
			target = sx(n.Constant)
		}
		out := tagged("cdecl", target)
		if n.Value != nil {
			out = append(out, sx(n.Value))
		}
		return out

	// Value wrappers
	case *SplatValue:
		return tagged("splat", sx(n.Value))
	case *ConcatArgs:
		return tagged("argscat", sx(n.Array), sx(n.Rest))
	case *PushArgs:
		return tagged("argspush", sx(n.Arguments), sx(n.Value))
	case *SValue:
		return tagged("svalue", sx(n.Value))
	case *ToArray:
		return tagged("to_ary", sx(n.Value))
	case *CollectSplat:
		return tagged("collect_splat", list(n.Parts)...)
	case *BlockPass:
		return tagged("block_pass", sx(n.Body))

	// Control flow
	case *If:
		var els sexp.Value = sexp.Nil
		if !isNil(n.Else) {
			els = sx(n.Else)
		}
		return tagged("if", sx(n.Condition), sx(orNil(n.Body, n.Line())), els)
	case *While:
		tag := "while"
		if n.Until {
			tag = "until"
		}
		return tagged(tag, sx(n.Condition), sx(orNil(n.Body, n.Line())), sexp.Bool(n.CheckFirst))
	case *Case:
		whens := tagged("whens")
		for _, w := range n.Whens {
			whens = append(whens, sx(w))
		}
		return tagged("case", sx(n.Receiver), whens, sx(n.Else))
	case *When:
		var conds sexp.List
		switch {
		case n.Single != nil:
			conds = tagged("array", sx(n.Single))
		case n.Conditions != nil:
			if c, ok := sx(n.Conditions).(sexp.List); ok {
				conds = c
			}
		default:
			conds = tagged("array")
		}
		if n.Splat != nil {
			conds = append(conds, sx(n.Splat))
		}
		return tagged("when", conds, sx(orNil(n.Body, n.Line())))
	case *SplatWhen:
		return tagged("when", sx(n.Condition), sexp.Nil)
	case *Flip:
		if n.Exclusive {
			return tagged("flip3", sx(n.Start), sx(n.Finish))
		}
		return tagged("flip2", sx(n.Start), sx(n.Finish))
	case *Match:
		return tagged("match", sx(n.Pattern))
	case *MatchOp:
		tag := "match2"
		if n.Kind == MatchValueFirst {
			tag = "match3"
		}
		return tagged(tag, sx(n.Pattern), sx(n.Value))
	case *Jump:
		switch n.Kind {
		case JumpBreak:
			return tagged("break", sx(orNil(n.Value, n.Line())))
		case JumpNext:
			if n.Value == nil {
				return tagged("next")
			}
			return tagged("next", sx(n.Value))
		}
		return tagged(n.Kind.tag())
	case *Return:
		if n.Value == nil {
			return tagged("return")
		}
		return tagged("return", sx(n.Value))
	case *Logical:
		if n.Op == LogicalOr {
			return tagged("or", sx(n.Left), sx(n.Right))
		}
		return tagged("and", sx(n.Left), sx(n.Right))
	case *Not:
		return tagged("not", sx(n.Value))
	case *Negate:
		return tagged("negate", sx(n.Value))
	case *OpAssign1:
		args := tagged("arglist", argumentList(n.Arguments)...)
		return tagged("op_asgn1", sx(n.Receiver), args, sym(opSymbol(n.Op)), sx(n.Value))
	case *OpAssign2:
		return tagged("op_asgn2", sx(n.Receiver), sym(n.Assign), sym(opSymbol(n.Op)), sx(n.Value))
	case *OpAssignLogical:
		if n.Op == LogicalOr {
			return tagged("op_asgn_or", sx(n.Left), sx(n.Right))
		}
		return tagged("op_asgn_and", sx(n.Left), sx(n.Right))
	case *Defined:
		return tagged("defined", sx(n.Expression))

	// Sends
	case *Send:
		return sendSexp(n)
	case *Super:
		out := tagged("super", argumentList(n.Arguments)...)
		if bp, ok := n.Block.(*BlockPass); ok {
			out = append(out, sx(bp))
		}
		return wrapBlock(out, n.Block)
	case *ZSuper:
		return wrapBlock(tagged("zsuper"), n.Block)
	case *Yield:
		return tagged("yield", argumentList(n.Arguments)...)
	case *Iter:
		return tagged("iter", parameterSexp(n.Arguments), sx(orNil(n.Body, n.Line())))
	case *For:
		return tagged("for", sx(n.Arguments), sx(orNil(n.Body, n.Line())))
	case *PreExe:
		return sexp.Nil

	// Parameters and destructuring
	case *FormalArguments:
		return formalSexp(n)
	case *IterArguments:
		return iterArgumentsSexp(n)
	case *ForArguments:
		return sx(n.Target)
	case *DefaultArguments:
		out := tagged("block")
		for _, a := range n.Arguments {
			out = append(out, sx(a))
		}
		return out
	case *BlockArgument:
		return sym("&" + n.Name)
	case *PatternVariable:
		return tagged("lasgn", sym(n.Name))
	case *PatternArguments:
		left := tagged("array")
		for _, e := range n.Elements {
			left = append(left, sx(e))
		}
		return tagged("masgn", left)
	case *emptyParameters:
		return sexp.Int(0)
	case *MultipleAssignment:
		return masgnSexp(n)
	case *MultipleSplat:
		switch n.Kind {
		case SplatAssign:
			return tagged("splat_assign", sx(n.Value))
		case EmptySplat:
			return tagged("splat")
		}
		return tagged("splat", sx(n.Value))
	case *AnonymousSplat:
		return tagged("splat")
	case *PostArg:
		return tagged("post_arg", sx(n.Into), sx(n.Rest))

	// Exceptions
	case *Begin:
		return sx(n.Rescue)
	case *Ensure:
		return tagged("ensure", sx(n.Body), sx(n.Ensure))
	case *Rescue:
		out := tagged("rescue", sx(n.Body), sx(n.Rescue))
		if n.Else != nil {
			out = append(out, sx(n.Else))
		}
		return out
	case *RescueCondition:
		return resbodySexp(n)
	case *RescueSplat:
		return tagged("splat", sx(n.Value))

	// Definitions
	case *Container:
		out := tagged(n.Kind.String())
		for _, pe := range n.PreExe {
			pre := tagged("iter", sym("pre_exe"))
			if pe.Block != nil {
				pre = append(pre, parameterSexp(pe.Block.Arguments), sx(orNil(pe.Block.Body, pe.Line())))
			}
			out = append(out, pre)
		}
		return append(out, sx(n.Body))
	case *Block:
		return tagged("block", list(n.Array)...)
	case *Alias:
		return tagged("alias", sx(n.To), sx(n.From))
	case *VAlias:
		return tagged("valias", sym(n.To), sym(n.From))
	case *Undef:
		return tagged("undef", sx(n.Name))
	case *Define:
		return tagged("defn", sym(n.Name), formalSexp(n.Arguments), tagged("scope", sx(n.Body)))
	case *DefineSingleton:
		d := n.Body
		return tagged("defs", sx(n.Receiver), sym(d.Name), formalSexp(d.Arguments), tagged("scope", sx(d.Body)))
	case *ModuleName:
		switch n.Kind {
		case ScopedName:
			return tagged("colon2", sx(n.Parent), sym(n.Name))
		case ToplevelName:
			return tagged("colon3", sym(n.Name))
		}
		return sym(n.Name)
	case *ModuleScope:
		if n.Body == nil {
			return tagged("scope")
		}
		return tagged("scope", sx(n.Body))
	case *Class:
		var super sexp.Value = sexp.Nil
		if !isNil(n.Superclass) {
			super = sx(n.Superclass)
		}
		return tagged("class", sx(n.Name), super, scopeSexp(n.Body))
	case *Module:
		return tagged("module", sx(n.Name), scopeSexp(n.Body))
	case *SClass:
		return tagged("sclass", sx(n.Receiver), scopeSexp(n.Body))
	}
	panic(fmt.Sprintf("compiler: no serialization for %T", n))
}

func list(nodes []Node) []sexp.Value {
	out := make([]sexp.Value, len(nodes))
	for i, n := range nodes {
		out[i] = sx(n)
	}
	return out
}

func assignment(tag, name string, value Node) sexp.List {
	out := tagged(tag, sym(name))
	if value != nil {
		out = append(out, sx(value))
	}
	return out
}

func scopeSexp(s *ModuleScope) sexp.Value {
	if s == nil {
		return tagged("scope")
	}
	return sx(s)
}

// argumentList renders the items of an argument list without a tag.
func argumentList(a *ActualArguments) []sexp.Value {
	if a == nil {
		return nil
	}
	if a.Pushed != nil {
		return []sexp.Value{sx(a.Pushed)}
	}
	out := list(a.Array)
	if a.Splat != nil {
		out = append(out, sx(a.Splat))
	}
	return out
}

func sendSexp(n *Send) sexp.Value {
	tag := "call"
	if n.Kind == AttrAssignSend {
		tag = "attrasgn"
	}
	var recv sexp.Value = sexp.Nil
	if !n.Privately {
		recv = sx(n.Receiver)
	}

	var args sexp.Value = sexp.Nil
	if !n.VCallStyle {
		arglist := tagged("arglist", argumentList(n.Arguments)...)
		if bp, ok := n.Block.(*BlockPass); ok {
			arglist = append(arglist, sx(bp))
		}
		args = arglist
	}

	call := tagged(tag, recv, sym(n.Name), args)
	if f, ok := n.Block.(*For); ok {
		return tagged("for", sx(n.Receiver), sx(f.Arguments), sx(orNil(f.Body, f.Line())))
	}
	return wrapBlock(call, n.Block)
}

// wrapBlock wraps a call in the iter form when it carries a block literal.
func wrapBlock(call sexp.List, block Node) sexp.Value {
	iter, ok := block.(*Iter)
	if !ok {
		return call
	}
	return tagged("iter", call, parameterSexp(iter.Arguments), sx(orNil(iter.Body, iter.Line())))
}

func parameterSexp(p Parameters) sexp.Value {
	if p == nil {
		return sexp.Nil
	}
	return sx(p)
}

func iterArgumentsSexp(n *IterArguments) sexp.Value {
	if n.explicitEmpty {
		return sexp.Int(0)
	}
	if n.Arguments != nil {
		return sx(n.Arguments)
	}
	if n.Block != nil {
		return tagged("masgn", tagged("array", sx(n.Block)))
	}
	return sexp.Nil
}

func formalSexp(n *FormalArguments) sexp.List {
	out := tagged("args")
	if n == nil {
		return out
	}
	for _, r := range n.Required {
		if r.Pattern != nil {
			out = append(out, sx(r.Pattern))
			continue
		}
		out = append(out, sym(r.Name))
	}
	for _, name := range n.Optional() {
		out = append(out, sym(name))
	}
	switch n.RestKind {
	case NamedRest:
		out = append(out, sym("*"+n.Rest))
	case AnonymousRest:
		out = append(out, sym("*"))
	}
	for _, name := range n.Post {
		out = append(out, sym(name))
	}
	if n.BlockArg != nil {
		out = append(out, sx(n.BlockArg))
	}
	if n.Defaults != nil {
		out = append(out, sx(n.Defaults))
	}
	return out
}

func masgnSexp(n *MultipleAssignment) sexp.List {
	left := tagged("array")
	if n.Left != nil {
		left = append(left, list(n.Left.Body)...)
	}
	if n.Splat != nil {
		left = append(left, tagged("splat", sx(n.Splat)))
	}
	if n.Post != nil {
		left = append(left, list(n.Post.Body)...)
	}
	if n.Block != nil {
		left = append(left, sx(n.Block))
	}
	out := tagged("masgn", left)
	if n.Right != nil {
		out = append(out, sx(n.Right))
	}
	return out
}

func resbodySexp(n *RescueCondition) sexp.List {
	conds := tagged("array")
	if n.Conditions != nil {
		conds = append(conds, list(n.Conditions.Body)...)
	}
	if n.Assignment != nil {
		conds = append(conds, sx(n.Assignment))
	}
	if n.Splat != nil {
		conds = append(conds, sx(n.Splat))
	}

	out := tagged("resbody", conds)
	switch b := n.Body.(type) {
	case nil:
		out = append(out, sexp.Nil)
	case *Block:
		out = append(out, sexp.List(list(b.Array)))
	default:
		out = append(out, sx(b))
	}
	if n.Next != nil {
		out = append(out, sx(n.Next))
	}
	return out
}
