package compiler

import (
	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// Resolution: one top-down pass over a finished unit
// ---------------------------------------------------------------------------

// Site says how a resolved name was used.
type Site int

const (
	ReadSite      Site = iota // local read
	WriteSite                 // assignment or destructuring target
	ParameterSite             // formal parameter
	CallSite                  // receiverless call found to name a local
)

func (s Site) String() string {
	switch s {
	case WriteSite:
		return "write"
	case ParameterSite:
		return "parameter"
	case CallSite:
		return "call"
	}
	return "read"
}

// Resolution records the storage chosen for one use of a name.
type Resolution struct {
	Line  int
	Name  string
	Scope ScopeID
	Site  Site
	Ref   Reference
}

// ScopeInfo describes one scope of a resolved unit.
type ScopeInfo struct {
	ID     ScopeID
	Kind   ScopeKind
	Parent ScopeID
	Line   int
	// Module is set for class and module bodies, where constants and
	// methods are defined on the body's module.
	Module    bool
	Slots     int
	Variables []Variable
}

// Script finishes body as a script unit and resolves it.
func (b *Builder) Script(body Node) (*Unit, error) {
	return b.finish(ScriptUnit, body, nil)
}

// Snippet finishes body as a snippet unit, used for code compiled without
// a file of its own.
func (b *Builder) Snippet(body Node) (*Unit, error) {
	return b.finish(SnippetUnit, body, nil)
}

// Eval finishes body as an eval unit. frames describes the runtime frames
// visible to the evaluated code, innermost first.
func (b *Builder) Eval(body Node, frames []EvalFrame) (*Unit, error) {
	return b.finish(EvalUnit, body, frames)
}

func (b *Builder) finish(kind ContainerKind, body Node, frames []EvalFrame) (*Unit, error) {
	preExe := b.preExe
	b.preExe = nil
	if err := b.Err(); err != nil {
		return nil, err
	}

	u := newUnit(kind)
	u.Root = &Container{
		Pos:    at(lineOf(body)),
		Kind:   kind,
		Name:   kind.unitName(),
		Body:   orNil(body, lineOf(body)),
		PreExe: preExe,
		Scope:  NoScope,
	}

	r := &resolver{u: u, log: b.log}
	r.container(u.Root, frames)
	if r.err != nil {
		return nil, r.err
	}
	b.log.Debugf("%s unit %s: %d scopes, %d variables, %d references",
		kind, u.ID, len(u.scopes), len(u.vars), len(u.refs))
	return u, nil
}

func lineOf(n Node) int {
	if n == nil {
		return 0
	}
	return n.Line()
}

// References returns every resolved use in resolution order.
func (u *Unit) References() []Resolution { return u.refs }

// Scopes describes every scope in creation order.
func (u *Unit) Scopes() []ScopeInfo {
	out := make([]ScopeInfo, len(u.scopes))
	for i, rec := range u.scopes {
		info := ScopeInfo{
			ID:     ScopeID(i),
			Kind:   rec.kind,
			Parent: rec.parent,
			Line:   rec.line,
			Module: rec.kind == ClassScope || rec.kind == ModuleBodyScope,
			Slots:  rec.slots,
		}
		for _, id := range rec.order {
			info.Variables = append(info.Variables, u.vars[id])
		}
		out[i] = info
	}
	return out
}

type resolver struct {
	u   *Unit
	log commonlog.Logger
	err error
}

func (r *resolver) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *resolver) note(line int, name string, scope ScopeID, site Site, ref Reference) {
	r.u.refs = append(r.u.refs, Resolution{Line: line, Name: name, Scope: scope, Site: site, Ref: ref})
}

func (r *resolver) container(c *Container, frames []EvalFrame) {
	kind := TopScope
	if c.Kind == EvalUnit {
		kind = EvalScope
	}
	c.Scope = r.u.newScope(kind, NoScope, c.Line())
	r.u.record(c.Scope).frames = frames

	for _, pe := range c.PreExe {
		r.iter(pe.Block, c.Scope)
	}
	r.visit(c.Body, c.Scope)
}

func (r *resolver) bind(line int, name string, s ScopeID, site Site, ref **Reference) {
	if name == "" {
		r.fail(errorAt(UnresolvableVariable, line, "variable without a name"))
		return
	}
	if *ref == nil {
		v := r.u.Scope(s).Bind(name)
		*ref = &v
	}
	r.note(line, name, s, site, **ref)
}

func (r *resolver) visit(n Node, s ScopeID) {
	if r.err != nil {
		return
	}
	switch n := n.(type) {
	case nil:
		return
	case *LocalVariableAccess:
		r.bind(n.Line(), n.Name, s, ReadSite, &n.Ref)
	case *LocalVariableAssignment:
		r.bind(n.Line(), n.Name, s, WriteSite, &n.Ref)
		r.visit(n.Value, s)
	case *PatternVariable:
		r.bind(n.Line(), n.Name, s, WriteSite, &n.Ref)
	case *MultipleAssignment:
		n.DeclareLocals(r.u.Scope(s))
		r.visit(n.Right, s)
		for _, t := range n.leftTargets() {
			r.visit(t, s)
		}
		r.visit(n.Splat, s)
		for _, t := range n.postTargets() {
			r.visit(t, s)
		}
		r.visit(n.Block, s)
	case *Send:
		if n.Kind == CallSend && n.Arguments == nil && isSelf(n.Receiver) &&
			(n.CheckForLocal || r.u.Kind == EvalUnit) {
			if ref, ok := r.u.Scope(s).Resolve(n.Name); ok {
				n.Variable = &ref
				r.note(n.Line(), n.Name, s, CallSite, ref)
			}
		}
		r.children(n, s)
	case *Iter:
		r.iter(n, s)
	case *For:
		r.forLoop(n, s)
	case *PreExe:
		// hoisted; resolved with the container
	case *Define:
		r.method(n, s)
	case *DefineSingleton:
		r.visit(n.Receiver, s)
		r.method(n.Body, s)
	case *Class:
		r.visit(n.Name, s)
		r.visit(n.Superclass, s)
		r.body(n.Body, s)
	case *Module:
		r.visit(n.Name, s)
		r.body(n.Body, s)
	case *SClass:
		r.visit(n.Receiver, s)
		r.body(n.Body, s)
	default:
		r.children(n, s)
	}
}

func (r *resolver) children(n Node, s ScopeID) {
	for _, c := range Children(n) {
		r.visit(c, s)
	}
}

// pattern notes the variables bound by destructuring a parameter. arg
// holds the formal slot and was already noted as a parameter.
func (r *resolver) pattern(p *PatternArguments, arg *PatternVariable, s ScopeID) {
	for _, e := range p.Elements {
		switch x := e.(type) {
		case *PatternVariable:
			if x != arg {
				r.visit(x, s)
			}
		case *PatternArguments:
			r.pattern(x, arg, s)
		}
	}
}

func (r *resolver) method(d *Define, parent ScopeID) {
	d.Scope = r.u.newScope(MethodScope, parent, d.Line())
	r.parameters(d.Arguments, d.Scope)
	r.visit(d.Body, d.Scope)
}

func (r *resolver) body(m *ModuleScope, parent ScopeID) {
	if m == nil {
		return
	}
	kind := ClassScope
	switch m.Kind {
	case ModuleBody:
		kind = ModuleBodyScope
	case SingletonBody:
		kind = SingletonScope
	}
	m.Scope = r.u.newScope(kind, parent, m.Line())
	r.visit(m.Body, m.Scope)
}

func (r *resolver) iter(it *Iter, parent ScopeID) {
	if it == nil {
		return
	}
	it.Scope = r.u.newScope(BlockScope, parent, it.Line())
	if len(it.Locals) > 0 {
		locals := make(map[string]bool, len(it.Locals))
		for _, name := range it.Locals {
			locals[name] = true
		}
		r.u.record(it.Scope).blockLocals = locals
	}
	r.parameters(it.Arguments, it.Scope)
	r.visit(it.Body, it.Scope)
}

func (r *resolver) forLoop(f *For, parent ScopeID) {
	f.Scope = r.u.newScope(ForScope, parent, f.Line())
	if f.Arguments != nil {
		r.visit(f.Arguments.Target, f.Scope)
	}
	r.visit(f.Body, f.Scope)
}

// parameters binds a parameter list in the scope it introduces: the
// formal slots first, then the default values, then the variables bound
// by destructuring.
func (r *resolver) parameters(p Parameters, id ScopeID) {
	if r.err != nil {
		return
	}
	sc := r.u.Scope(id)
	switch a := p.(type) {
	case nil:
	case *FormalArguments:
		if a == nil {
			return
		}
		if err := a.MapArguments(sc); err != nil {
			r.fail(err)
			return
		}
		for _, name := range a.Names() {
			if a.BlockArg != nil && name == a.BlockArg.Name {
				continue
			}
			r.note(a.Line(), name, id, ParameterSite, sc.Bind(name))
		}
		if a.BlockArg != nil {
			r.note(a.BlockArg.Line(), a.BlockArg.Name, id, ParameterSite, *a.BlockArg.Ref)
		}
		if a.Defaults != nil {
			for _, d := range a.Defaults.Arguments {
				r.visit(d.Value, id)
			}
		}
		for _, pat := range a.Patterns() {
			pat.DeclareLocals(sc)
			r.pattern(pat, pat.Argument, id)
		}
	case *IterArguments:
		r.visit(a.Arguments, id)
		if _, ok := a.Arguments.(*MultipleAssignment); !ok {
			r.visit(a.Block, id)
		}
	}
}
