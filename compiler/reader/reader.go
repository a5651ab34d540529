// Package reader drives a compiler.Builder from a raw parse tree written
// in the canonical text syntax.
//
// The raw form follows the canonical tags wherever the two agree, so most
// canonical output reads back unchanged. The differences are the ones a
// parser sees before normalization:
//
//	[:newline, N, node]       sets the source line for node and its children
//	[:call, nil, :m, nil]     a bare identifier known to be a call
//	[:ident, :m]              a bare identifier that may be a local
//	[:resbody, conds, body]   conds is the list as written; a binding is the
//	                          first statement of body
//	[:yield, a, b]            several arguments are passed unwrapped
//	[:iter, call, params, body, [:locals, :x]]
//	                          block-local declarations ride in a fifth item
//
// A tree may be wrapped in [:script, body], [:snippet, body] or
// [:eval, body] to pick the unit kind.
package reader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/garnet/compiler"
	"github.com/chazu/garnet/compiler/sexp"
)

// ErrInvalid is wrapped by every error about the shape of a raw tree.
var ErrInvalid = errors.New("invalid parse tree")

type reader struct {
	b    *compiler.Builder
	line int
	err  error
}

// Read builds the node for raw through b. Construction errors are left in
// the builder for the unit to report; Read itself fails only on trees it
// cannot interpret.
func Read(b *compiler.Builder, raw sexp.Value) (compiler.Node, error) {
	r := &reader{b: b, line: 1}
	n := r.node(raw)
	if r.err != nil {
		return nil, r.err
	}
	return n, nil
}

func (r *reader) fail(format string, args ...interface{}) {
	if r.err == nil {
		r.err = fmt.Errorf("line %d: %s: %w", r.line, fmt.Sprintf(format, args...), ErrInvalid)
	}
}

// ---------------------------------------------------------------------------
// Atom helpers
// ---------------------------------------------------------------------------

func (r *reader) at(l sexp.List, i int) sexp.Value {
	if i < len(l) {
		return l[i]
	}
	return sexp.Nil
}

func (r *reader) symbol(l sexp.List, i int) string {
	if s, ok := r.at(l, i).(sexp.Sym); ok {
		return string(s)
	}
	r.fail("%s: item %d must be a symbol, got %s", sexp.Tag(l), i, r.at(l, i))
	return ""
}

func (r *reader) text(l sexp.List, i int) string {
	switch s := r.at(l, i).(type) {
	case sexp.Str:
		return string(s)
	case sexp.Sym:
		return string(s)
	}
	r.fail("%s: item %d must be a string, got %s", sexp.Tag(l), i, r.at(l, i))
	return ""
}

func (r *reader) integer(l sexp.List, i int) int64 {
	if n, ok := r.at(l, i).(sexp.Int); ok {
		return int64(n)
	}
	r.fail("%s: item %d must be an integer, got %s", sexp.Tag(l), i, r.at(l, i))
	return 0
}

func (r *reader) flag(l sexp.List, i int) bool {
	b, ok := r.at(l, i).(sexp.Bool)
	return ok && bool(b)
}

func (r *reader) arity(l sexp.List, min, max int) bool {
	n := len(l) - 1
	if n < min || (max >= 0 && n > max) {
		r.fail("%s: wrong number of items (%d)", sexp.Tag(l), n)
		return false
	}
	return true
}

// opt reads an optional child: absent and nil are both no node.
func (r *reader) opt(l sexp.List, i int) compiler.Node {
	return r.node(r.at(l, i))
}

func (r *reader) nodes(items []sexp.Value) []compiler.Node {
	out := make([]compiler.Node, 0, len(items))
	for _, v := range items {
		out = append(out, r.node(v))
	}
	return out
}

// ---------------------------------------------------------------------------
// Nodes
// ---------------------------------------------------------------------------

func (r *reader) node(v sexp.Value) compiler.Node {
	if r.err != nil || sexp.IsNil(v) {
		return nil
	}
	l, ok := v.(sexp.List)
	if !ok || len(l) == 0 {
		r.fail("expected a tagged list, got %s", v)
		return nil
	}
	b, line := r.b, r.line

	switch tag := sexp.Tag(l); tag {
	case "newline":
		if !r.arity(l, 2, 2) {
			return nil
		}
		saved := r.line
		r.line = int(r.integer(l, 1))
		n := r.node(l[2])
		r.line = saved
		return n

	// Literals
	case "nil":
		return b.Nil(line)
	case "true":
		return b.True(line)
	case "false":
		return b.False(line)
	case "self":
		return b.Self(line)
	case "lit":
		if !r.arity(l, 1, 1) {
			return nil
		}
		switch x := l[1].(type) {
		case sexp.Int:
			return b.Number(line, int64(x))
		case sexp.Float:
			return b.Float(line, float64(x))
		case sexp.Sym:
			return b.Symbol(line, string(x))
		}
		r.fail("lit: unsupported literal %s", l[1])
		return nil
	case "str":
		return b.String(line, r.text(l, 1))
	case "xstr":
		return b.ExecuteString(line, r.text(l, 1))
	case "dstr", "dsym", "dxstr", "dregx", "dregx_once":
		return r.dynamic(l)
	case "evstr":
		return b.EvStr(line, r.opt(l, 1))
	case "regex":
		return b.Regex(line, r.text(l, 1), int(r.integer(l, 2)))
	case "array":
		return b.Array(line, r.nodes(l[1:])...)
	case "hash":
		return b.Hash(line, r.nodes(l[1:])...)
	case "dot2", "dot3":
		return b.Range(line, r.opt(l, 1), r.opt(l, 2), tag == "dot3")
	case "encoding":
		return b.Encoding(line, r.text(l, 1))

	// Variables and constants
	case "lvar":
		return b.LocalAccess(line, r.symbol(l, 1))
	case "lasgn":
		return b.LocalAssign(line, r.symbol(l, 1), r.opt(l, 2))
	case "ivar":
		return b.Variable(line, compiler.InstanceVar, r.symbol(l, 1))
	case "cvar":
		return b.Variable(line, compiler.ClassVar, r.symbol(l, 1))
	case "gvar":
		return b.GlobalVariable(line, r.symbol(l, 1))
	case "iasgn":
		return b.Assign(line, compiler.InstanceVar, r.symbol(l, 1), r.opt(l, 2))
	case "cvasgn":
		return b.Assign(line, compiler.ClassVar, r.symbol(l, 1), r.opt(l, 2))
	case "cvdecl":
		return b.Assign(line, compiler.ClassVarDecl, r.symbol(l, 1), r.opt(l, 2))
	case "gasgn":
		return b.Assign(line, compiler.GlobalVar, r.symbol(l, 1), r.opt(l, 2))
	case "back_ref":
		return b.BackRef(line, r.symbol(l, 1))
	case "nth_ref":
		return b.NthRef(line, int(r.integer(l, 1)))
	case "const":
		return b.Const(line, r.symbol(l, 1))
	case "colon2":
		return b.ScopedConst(line, r.opt(l, 1), r.symbol(l, 2))
	case "colon3":
		return b.ToplevelConst(line, r.symbol(l, 1))
	case "cdecl":
		var target compiler.Node
		if name, ok := r.at(l, 1).(sexp.Sym); ok {
			target = b.Const(line, string(name))
		} else {
			target = r.opt(l, 1)
		}
		return b.ConstAssign(line, target, r.opt(l, 2))

	// Value wrappers
	case "splat":
		return b.Splat(line, r.opt(l, 1))
	case "argscat":
		return b.ConcatArgs(line, r.opt(l, 1), r.opt(l, 2))
	case "argspush":
		return b.PushArgs(line, r.opt(l, 1), r.opt(l, 2))
	case "svalue":
		return b.SValue(line, r.opt(l, 1))
	case "to_ary":
		return b.ToArray(line, r.opt(l, 1))
	case "block_pass":
		return b.BlockPass(line, r.opt(l, 1))

	// Operators
	case "and":
		return b.And(line, r.opt(l, 1), r.opt(l, 2))
	case "or":
		return b.Or(line, r.opt(l, 1), r.opt(l, 2))
	case "not":
		return b.Not(line, r.opt(l, 1))
	case "negate":
		return b.Negate(line, r.opt(l, 1))
	case "op_asgn1":
		if !r.arity(l, 4, 4) {
			return nil
		}
		return b.OpAssign1(line, r.opt(l, 1), r.arguments(l[2]), operator(r.symbol(l, 3)), r.opt(l, 4))
	case "op_asgn2":
		if !r.arity(l, 4, 4) {
			return nil
		}
		return b.OpAssign2(line, r.opt(l, 1), strings.TrimSuffix(r.symbol(l, 2), "="), operator(r.symbol(l, 3)), r.opt(l, 4))
	case "op_asgn_or":
		return b.OpAssignOr(line, r.opt(l, 1), r.opt(l, 2))
	case "op_asgn_and":
		return b.OpAssignAnd(line, r.opt(l, 1), r.opt(l, 2))

	// Control flow
	case "if":
		return b.If(line, r.opt(l, 1), r.opt(l, 2), r.opt(l, 3))
	case "while":
		return b.While(line, r.opt(l, 1), r.opt(l, 2), r.flag(l, 3))
	case "until":
		return b.Until(line, r.opt(l, 1), r.opt(l, 2), r.flag(l, 3))
	case "case":
		return r.caseNode(l)
	case "when":
		return b.When(line, r.opt(l, 1), r.opt(l, 2))
	case "flip2", "flip3":
		return b.Flip(line, r.opt(l, 1), r.opt(l, 2), tag == "flip3")
	case "match":
		pattern, ok := r.at(l, 1).(sexp.List)
		if !ok || sexp.Tag(pattern) != "regex" {
			r.fail("match: expected a regex, got %s", r.at(l, 1))
			return nil
		}
		return b.Match(line, r.text(pattern, 1), int(r.integer(pattern, 2)))
	case "match2":
		return b.Match2(line, r.opt(l, 1), r.opt(l, 2))
	case "match3":
		return b.Match3(line, r.opt(l, 1), r.opt(l, 2))
	case "break":
		return b.Break(line, r.opt(l, 1))
	case "next":
		return b.Next(line, r.opt(l, 1))
	case "redo":
		return b.Redo(line)
	case "retry":
		return b.Retry(line)
	case "return":
		return b.Return(line, r.opt(l, 1))
	case "defined":
		return b.Defined(line, r.opt(l, 1))

	// Definitions
	case "block":
		return b.Block(line, r.nodes(l[1:])...)
	case "alias":
		return b.Alias(line, r.opt(l, 1), r.opt(l, 2))
	case "valias":
		return b.VAlias(line, r.symbol(l, 1), r.symbol(l, 2))
	case "undef":
		return b.Undef(line, r.opt(l, 1))
	case "defn":
		if !r.arity(l, 3, 3) {
			return nil
		}
		return b.Define(line, r.symbol(l, 1), r.formals(l[2]), r.scopeBody(l[3]))
	case "defs":
		if !r.arity(l, 4, 4) {
			return nil
		}
		return b.DefineSingleton(line, r.opt(l, 1), r.symbol(l, 2), r.formals(l[3]), r.scopeBody(l[4]))
	case "class":
		return b.Class(line, r.moduleName(r.at(l, 1)), r.opt(l, 2), r.scopeBody(r.at(l, 3)))
	case "module":
		return b.Module(line, r.moduleName(r.at(l, 1)), r.scopeBody(r.at(l, 2)))
	case "sclass":
		return b.SClass(line, r.opt(l, 1), r.scopeBody(r.at(l, 2)))
	case "preexe":
		return b.PreExe(line, r.opt(l, 1))

	// Sends
	case "call":
		return r.call(l)
	case "ident":
		return b.LocalOrCall(line, r.symbol(l, 1))
	case "attrasgn":
		if !r.arity(l, 3, 3) {
			return nil
		}
		recv, name := r.opt(l, 1), r.symbol(l, 2)
		if name == "[]=" {
			if pushed, ok := l[3].(sexp.List); ok && sexp.Tag(pushed) == "argspush" {
				return b.ElementAssign(line, recv, r.node(pushed))
			}
			return b.ElementAssign(line, recv, r.arguments(l[3]))
		}
		return b.AttrAssign(line, recv, strings.TrimSuffix(name, "="), r.arguments(l[3]))
	case "super":
		args, pass := r.splitArgs(l[1:])
		s := b.Super(line, args)
		if pass != nil {
			b.AttachBlock(s, pass)
		}
		return s
	case "zsuper":
		return b.ZSuper(line)
	case "yield":
		switch len(l) {
		case 1:
			return b.Yield(line, nil, false)
		case 2:
			return b.Yield(line, r.node(l[1]), false)
		}
		args, _ := r.splitArgs(l[1:])
		return b.Yield(line, args, true)
	case "iter":
		return r.iter(l)
	case "for":
		if !r.arity(l, 3, 3) {
			return nil
		}
		return b.For(line, r.opt(l, 1), r.opt(l, 2), r.opt(l, 3))

	// Destructuring
	case "masgn":
		return r.masgn(l)

	// Exceptions
	case "begin":
		return b.Begin(line, r.opt(l, 1))
	case "ensure":
		return b.Ensure(line, r.opt(l, 1), r.opt(l, 2))
	case "rescue":
		if !r.arity(l, 2, 3) {
			return nil
		}
		clause, ok := r.at(l, 2).(sexp.List)
		if !ok || sexp.Tag(clause) != "resbody" {
			r.fail("rescue: expected a resbody, got %s", r.at(l, 2))
			return nil
		}
		return b.Rescue(line, r.opt(l, 1), r.resbody(clause), r.opt(l, 3))
	case "resbody":
		return r.resbody(l)
	}

	r.fail("unknown node :%s", sexp.Tag(l))
	return nil
}

// operator maps the rendered operator of an op-assignment back to the
// parser's spelling.
func operator(op string) string {
	switch op {
	case "||":
		return "or"
	case "&&":
		return "and"
	}
	return op
}

func (r *reader) dynamic(l sexp.List) compiler.Node {
	kinds := map[string]compiler.DynamicKind{
		"dstr":       compiler.DynamicStr,
		"dsym":       compiler.DynamicSym,
		"dxstr":      compiler.DynamicExecute,
		"dregx":      compiler.DynamicRegex,
		"dregx_once": compiler.DynamicRegexOnce,
	}
	parts := l[2:]
	options := 0
	if n := len(parts); n > 0 {
		if o, ok := parts[n-1].(sexp.Int); ok {
			options = int(o)
			parts = parts[:n-1]
		}
	}
	return r.b.Dynamic(r.line, kinds[sexp.Tag(l)], r.text(l, 1), r.nodes(parts), options)
}

func (r *reader) caseNode(l sexp.List) compiler.Node {
	if !r.arity(l, 2, 3) {
		return nil
	}
	list, ok := l[2].(sexp.List)
	if !ok || sexp.Tag(list) != "whens" {
		r.fail("case: expected a whens list, got %s", l[2])
		return nil
	}
	var whens []*compiler.When
	for _, item := range list[1:] {
		w, ok := r.node(item).(*compiler.When)
		if !ok {
			r.fail("case: %s is not a when clause", item)
			return nil
		}
		whens = append(whens, w)
	}
	return r.b.Case(r.line, r.opt(l, 1), whens, r.opt(l, 3))
}

// scopeBody unwraps [:scope] and [:scope, body].
func (r *reader) scopeBody(v sexp.Value) compiler.Node {
	l, ok := v.(sexp.List)
	if !ok || sexp.Tag(l) != "scope" {
		r.fail("expected a scope, got %s", v)
		return nil
	}
	return r.opt(l, 1)
}

func (r *reader) moduleName(v sexp.Value) compiler.Node {
	if name, ok := v.(sexp.Sym); ok {
		return r.b.Const(r.line, string(name))
	}
	return r.node(v)
}

// ---------------------------------------------------------------------------
// Sends and arguments
// ---------------------------------------------------------------------------

func (r *reader) call(l sexp.List) compiler.Node {
	if !r.arity(l, 3, 3) {
		return nil
	}
	b, line := r.b, r.line
	name := r.symbol(l, 2)
	recv := r.opt(l, 1)

	if sexp.IsNil(l[3]) {
		if recv == nil {
			return b.VCall(line, name)
		}
		return b.Call(line, recv, name, nil)
	}
	args, pass := r.argumentList(l[3])
	var s *compiler.Send
	if recv == nil {
		s = b.FCall(line, name, args)
	} else {
		s = b.Call(line, recv, name, args)
	}
	if pass != nil {
		b.AttachBlock(s, pass)
	}
	return s
}

// argumentList reads [:arglist, ...] into an argument node and an optional
// trailing block argument.
func (r *reader) argumentList(v sexp.Value) (compiler.Node, *compiler.BlockPass) {
	l, ok := v.(sexp.List)
	if !ok || sexp.Tag(l) != "arglist" {
		return r.node(v), nil
	}
	return r.splitArgs(l[1:])
}

// arguments reads an argument list that cannot carry a block argument.
func (r *reader) arguments(v sexp.Value) compiler.Node {
	args, pass := r.argumentList(v)
	if pass != nil {
		r.fail("block argument not allowed here")
	}
	return args
}

func (r *reader) splitArgs(items []sexp.Value) (compiler.Node, *compiler.BlockPass) {
	nodes := r.nodes(items)
	var pass *compiler.BlockPass
	if n := len(nodes); n > 0 {
		if bp, ok := nodes[n-1].(*compiler.BlockPass); ok {
			pass = bp
			nodes = nodes[:n-1]
		}
	}
	switch len(nodes) {
	case 0:
		return nil, pass
	case 1:
		switch nodes[0].(type) {
		case *compiler.SplatValue, *compiler.ConcatArgs, *compiler.PushArgs:
			return nodes[0], pass
		}
	}
	last := len(nodes) - 1
	if sv, ok := nodes[last].(*compiler.SplatValue); ok {
		return r.b.ConcatArgs(r.line, r.b.Array(r.line, nodes[:last]...), sv.Value), pass
	}
	return r.b.Array(r.line, nodes...), pass
}

func (r *reader) iter(l sexp.List) compiler.Node {
	if !r.arity(l, 3, 4) {
		return nil
	}
	call := r.opt(l, 1)
	var locals []string
	if extra, ok := r.at(l, 4).(sexp.List); ok && sexp.Tag(extra) == "locals" {
		for i := 1; i < len(extra); i++ {
			locals = append(locals, r.symbol(extra, i))
		}
	}
	iter := r.b.Iter(r.line, r.blockParameters(l[2]), r.opt(l, 3), locals...)
	if call == nil {
		return iter
	}
	return r.b.AttachBlock(call, iter)
}

func (r *reader) blockParameters(v sexp.Value) compiler.Node {
	if n, ok := v.(sexp.Int); ok && n == 0 {
		return r.b.EmptyParameters(r.line)
	}
	if l, ok := v.(sexp.List); ok && sexp.Tag(l) == "args" {
		return r.formals(l)
	}
	return r.node(v)
}

// ---------------------------------------------------------------------------
// Parameters and destructuring
// ---------------------------------------------------------------------------

// formals reads [:args, names..., [:block, defaults...]]. A name with a
// default is optional; names after the rest parameter, or after the
// optional ones when there is no rest, are post parameters.
func (r *reader) formals(v sexp.Value) *compiler.FormalArguments {
	l, ok := v.(sexp.List)
	if !ok || sexp.Tag(l) != "args" {
		r.fail("expected an args list, got %s", v)
		return nil
	}
	var p compiler.ParamList
	items := l[1:]

	defaults := map[string]*compiler.LocalVariableAssignment{}
	if n := len(items); n > 0 {
		if blk, ok := items[n-1].(sexp.List); ok && sexp.Tag(blk) == "block" {
			items = items[:n-1]
			for _, d := range blk[1:] {
				a, ok := r.node(d).(*compiler.LocalVariableAssignment)
				if !ok {
					r.fail("args: default %s is not a local assignment", d)
					return nil
				}
				defaults[a.Name] = a
				p.Optional = append(p.Optional, a)
			}
		}
	}

	seenOptional := false
	for _, item := range items {
		if pattern, ok := item.(sexp.List); ok {
			m, ok := r.node(pattern).(*compiler.MultipleAssignment)
			if !ok {
				r.fail("args: %s is not a parameter", item)
				return nil
			}
			p.Required = append(p.Required, compiler.Param{Pattern: m})
			continue
		}
		sym, ok := item.(sexp.Sym)
		if !ok {
			r.fail("args: %s is not a parameter", item)
			return nil
		}
		name := string(sym)
		switch {
		case name == "*":
			p.RestKind = compiler.AnonymousRest
		case strings.HasPrefix(name, "*"):
			p.RestKind, p.Rest = compiler.NamedRest, name[1:]
		case strings.HasPrefix(name, "&"):
			p.Block = name[1:]
		case defaults[name] != nil:
			seenOptional = true
		case p.RestKind != compiler.NoRest || seenOptional:
			p.Post = append(p.Post, name)
		default:
			p.Required = append(p.Required, compiler.Param{Name: name})
		}
	}
	return r.b.FormalArguments(r.line, p)
}

// masgn reads [:masgn, [:array, targets...], right]. A [:splat] target
// marks the rest position; targets after it are post targets.
func (r *reader) masgn(l sexp.List) compiler.Node {
	if !r.arity(l, 1, 2) {
		return nil
	}
	b, line := r.b, r.line
	var targets sexp.List
	if !sexp.IsNil(l[1]) {
		t, ok := l[1].(sexp.List)
		if !ok || sexp.Tag(t) != "array" {
			r.fail("masgn: expected a target array, got %s", l[1])
			return nil
		}
		targets = t[1:]
	}

	var left, post []compiler.Node
	var splat compiler.Node
	seenSplat := false
	for _, t := range targets {
		if tl, ok := t.(sexp.List); ok && sexp.Tag(tl) == "splat" && !seenSplat {
			seenSplat = true
			if len(tl) == 1 {
				splat = b.AnonymousSplat(line)
			} else {
				splat = r.splatTarget(tl[1])
			}
			continue
		}
		if seenSplat {
			post = append(post, r.node(t))
		} else {
			left = append(left, r.node(t))
		}
	}
	if len(post) > 0 {
		splat = b.PostArg(line, splat, b.Array(line, post...))
	}

	var leftArray *compiler.ArrayLiteral
	if len(left) > 0 || !seenSplat {
		leftArray = b.Array(line, left...)
	}
	return b.MultipleAssignment(line, leftArray, r.opt(l, 2), splat)
}

// splatTarget accepts a rest target as written or as rendered.
func (r *reader) splatTarget(v sexp.Value) compiler.Node {
	if l, ok := v.(sexp.List); ok && sexp.Tag(l) == "splat_assign" {
		return r.opt(l, 1)
	}
	return r.node(v)
}

// ---------------------------------------------------------------------------
// Exceptions
// ---------------------------------------------------------------------------

func (r *reader) resbody(l sexp.List) *compiler.RescueCondition {
	if !r.arity(l, 2, 3) {
		return nil
	}
	line := r.line
	conditions := r.opt(l, 1)
	body := r.resbodyBody(l[2])
	var next *compiler.RescueCondition
	if nl, ok := r.at(l, 3).(sexp.List); ok {
		if sexp.Tag(nl) != "resbody" {
			r.fail("resbody: expected a resbody, got %s", nl)
			return nil
		}
		next = r.resbody(nl)
	}
	if r.err != nil {
		return nil
	}
	return r.b.RescueCondition(line, conditions, body, next)
}

// resbodyBody accepts a single node, a [:block ...] or an untagged list of
// statements.
func (r *reader) resbodyBody(v sexp.Value) compiler.Node {
	l, ok := v.(sexp.List)
	if !ok || len(l) == 0 {
		return r.node(v)
	}
	if _, tagged := l[0].(sexp.Sym); tagged {
		return r.node(v)
	}
	return r.b.Block(r.line, r.nodes(l)...)
}
