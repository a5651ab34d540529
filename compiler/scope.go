package compiler

import (
	"fmt"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Scope Chain: per-unit arena of scopes and variables
// ---------------------------------------------------------------------------

// ScopeID indexes a scope in its Unit.
type ScopeID int32

// NoScope marks a node whose scope has not been created.
const NoScope ScopeID = -1

// VarID indexes a variable in its Unit.
type VarID int32

// ScopeKind identifies what introduced a scope.
type ScopeKind int

const (
	TopScope ScopeKind = iota // script or snippet body
	MethodScope
	ClassScope
	ModuleBodyScope
	SingletonScope
	BlockScope
	ForScope
	EvalScope
)

func (k ScopeKind) String() string {
	switch k {
	case TopScope:
		return "top"
	case MethodScope:
		return "method"
	case ClassScope:
		return "class"
	case ModuleBodyScope:
		return "module"
	case SingletonScope:
		return "sclass"
	case BlockScope:
		return "block"
	case ForScope:
		return "for"
	case EvalScope:
		return "eval"
	}
	return fmt.Sprintf("ScopeKind(%d)", int(k))
}

// VariableKind distinguishes the storage a Variable describes.
type VariableKind int

const (
	// LocalVariable owns a slot in its scope.
	LocalVariable VariableKind = iota
	// NestedVariable is a slot in an enclosing runtime frame, found by an
	// eval scope. Depth counts frames from the eval scope outward.
	NestedVariable
	// EvalVariable is looked up by name in the dynamic environment.
	EvalVariable
)

// Variable is one entry in the variable arena.
type Variable struct {
	Kind  VariableKind
	Name  string
	Scope ScopeID
	Slot  int
	Depth int
}

// RefKind selects the instruction family used to reach a variable.
type RefKind int

const (
	LocalRef  RefKind = iota // slot in the current frame
	NestedRef                // slot Depth frames out
	EvalRef                  // name lookup in the dynamic environment
)

func (k RefKind) String() string {
	switch k {
	case NestedRef:
		return "nested"
	case EvalRef:
		return "eval"
	}
	return "local"
}

// Reference is resolved storage for one variable use.
type Reference struct {
	Kind  RefKind
	Name  string
	Slot  int
	Depth int
	Var   VarID
}

func (r Reference) String() string {
	switch r.Kind {
	case LocalRef:
		return fmt.Sprintf("local %d", r.Slot)
	case NestedRef:
		return fmt.Sprintf("nested %d:%d", r.Depth, r.Slot)
	}
	return "eval " + r.Name
}

// deeper threads a reference through one more closure boundary.
func (r Reference) deeper() Reference {
	if r.Kind == EvalRef {
		return r
	}
	r.Kind = NestedRef
	r.Depth++
	return r
}

// EvalFrame describes one runtime frame visible to an eval unit, listed
// innermost first. Locals are the frame method's slot names in slot order;
// Dynamic lists names previously introduced by eval in that frame.
type EvalFrame struct {
	Locals  []string `toml:"locals" yaml:"locals"`
	ForEval bool     `toml:"for_eval" yaml:"for_eval"`
	Dynamic []string `toml:"dynamic" yaml:"dynamic"`
}

func (f EvalFrame) slot(name string) (int, bool) {
	for i, n := range f.Locals {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

func (f EvalFrame) defines(name string) bool {
	for _, n := range f.Dynamic {
		if n == name {
			return true
		}
	}
	return false
}

type scopeRecord struct {
	kind        ScopeKind
	parent      ScopeID
	line        int
	names       map[string]VarID
	order       []VarID // in first-request order
	slots       int
	blockLocals map[string]bool
	frames      []EvalFrame
}

// Unit owns every scope and variable of one compilation unit. Nodes refer
// into it by ScopeID and VarID.
type Unit struct {
	ID   uuid.UUID
	Kind ContainerKind
	Root *Container

	scopes []*scopeRecord
	vars   []Variable
	refs   []Resolution
}

func newUnit(kind ContainerKind) *Unit {
	return &Unit{ID: uuid.New(), Kind: kind}
}

func (u *Unit) newScope(kind ScopeKind, parent ScopeID, line int) ScopeID {
	id := ScopeID(len(u.scopes))
	u.scopes = append(u.scopes, &scopeRecord{
		kind:   kind,
		parent: parent,
		line:   line,
		names:  make(map[string]VarID),
	})
	return id
}

func (u *Unit) record(id ScopeID) *scopeRecord { return u.scopes[id] }

func (u *Unit) addVar(scope ScopeID, v Variable) VarID {
	rec := u.record(scope)
	id := VarID(len(u.vars))
	v.Scope = scope
	u.vars = append(u.vars, v)
	rec.names[v.Name] = id
	rec.order = append(rec.order, id)
	return id
}

// newLocal allocates the next slot in scope.
func (u *Unit) newLocal(scope ScopeID, name string) VarID {
	rec := u.record(scope)
	slot := rec.slots
	rec.slots++
	return u.addVar(scope, Variable{Kind: LocalVariable, Name: name, Slot: slot})
}

func (u *Unit) reference(id VarID) Reference {
	v := u.vars[id]
	switch v.Kind {
	case LocalVariable:
		return Reference{Kind: LocalRef, Name: v.Name, Slot: v.Slot, Var: id}
	case NestedVariable:
		return Reference{Kind: NestedRef, Name: v.Name, Slot: v.Slot, Depth: v.Depth, Var: id}
	}
	return Reference{Kind: EvalRef, Name: v.Name, Var: id}
}

func (u *Unit) nestedReference(id VarID) Reference {
	r := u.reference(id)
	if r.Kind == LocalRef {
		r.Kind = NestedRef
	}
	return r
}

// Variable returns a variable by ID.
func (u *Unit) Variable(id VarID) Variable { return u.vars[id] }

// Scope returns the resolution view of a scope.
func (u *Unit) Scope(id ScopeID) SlotScope {
	switch u.record(id).kind {
	case BlockScope:
		return blockScope{u, id}
	case ForScope:
		return forScope{u, id}
	case EvalScope:
		return evalScope{u, id}
	}
	return closedScope{u, id}
}

// ---------------------------------------------------------------------------
// Scope views
// ---------------------------------------------------------------------------

// Scope resolves names to storage.
//
// Resolve looks a name up without creating anything and reports whether
// it was found. Bind returns storage for an assignment target, creating a
// local in the nearest scope that may own one when the name is unknown.
type Scope interface {
	Resolve(name string) (Reference, bool)
	Bind(name string) Reference
}

// SlotScope is a concrete scope of a Unit. Allocate creates storage for a
// name in this scope, or returns the existing storage when the name is
// already owned here.
type SlotScope interface {
	Scope
	ID() ScopeID
	Allocate(name string) Reference
	Owns(name string) bool
}

func (u *Unit) owns(id ScopeID, name string) bool {
	_, ok := u.record(id).names[name]
	return ok
}

// closedScope: method bodies, class and module bodies, the top level.
type closedScope struct {
	u  *Unit
	id ScopeID
}

func (s closedScope) ID() ScopeID { return s.id }

func (s closedScope) Owns(name string) bool { return s.u.owns(s.id, name) }

func (s closedScope) Resolve(name string) (Reference, bool) {
	if v, ok := s.u.record(s.id).names[name]; ok {
		return s.u.nestedReference(v), true
	}
	return Reference{}, false
}

func (s closedScope) Allocate(name string) Reference {
	if v, ok := s.u.record(s.id).names[name]; ok {
		return s.u.reference(v)
	}
	return s.u.reference(s.u.newLocal(s.id, name))
}

func (s closedScope) Bind(name string) Reference { return s.Allocate(name) }

// blockScope: block bodies. Lookups fall through to the parent one
// closure level deeper.
type blockScope struct {
	u  *Unit
	id ScopeID
}

func (s blockScope) ID() ScopeID { return s.id }

func (s blockScope) Owns(name string) bool { return s.u.owns(s.id, name) }

func (s blockScope) parent() SlotScope { return s.u.Scope(s.u.record(s.id).parent) }

func (s blockScope) Resolve(name string) (Reference, bool) {
	rec := s.u.record(s.id)
	if v, ok := rec.names[name]; ok {
		return s.u.nestedReference(v), true
	}
	if rec.blockLocals[name] {
		return s.u.nestedReference(s.u.newLocal(s.id, name)), true
	}
	if r, ok := s.parent().Resolve(name); ok {
		return r.deeper(), true
	}
	return Reference{}, false
}

func (s blockScope) Allocate(name string) Reference {
	if v, ok := s.u.record(s.id).names[name]; ok {
		return s.u.reference(v)
	}
	return s.u.reference(s.u.newLocal(s.id, name))
}

func (s blockScope) Bind(name string) Reference {
	rec := s.u.record(s.id)
	if v, ok := rec.names[name]; ok {
		return s.u.reference(v)
	}
	if rec.blockLocals[name] {
		return s.u.reference(s.u.newLocal(s.id, name))
	}
	if r, ok := s.parent().Resolve(name); ok {
		return r.deeper()
	}
	return s.u.reference(s.u.newLocal(s.id, name))
}

// forScope: the transparent scope of a for loop. It owns nothing.
type forScope struct {
	u  *Unit
	id ScopeID
}

func (s forScope) ID() ScopeID { return s.id }

func (s forScope) Owns(string) bool { return false }

func (s forScope) parent() SlotScope { return s.u.Scope(s.u.record(s.id).parent) }

func (s forScope) Resolve(name string) (Reference, bool) {
	if r, ok := s.parent().Resolve(name); ok {
		return r.deeper(), true
	}
	return Reference{}, false
}

// Allocate creates the variable in the nearest scope that owns storage
// and returns it seen from inside the loop.
func (s forScope) Allocate(name string) Reference {
	r := s.parent().Allocate(name)
	if r.Kind == LocalRef {
		r = s.u.nestedReference(r.Var)
	}
	return r.deeper()
}

func (s forScope) Bind(name string) Reference {
	if r, ok := s.Resolve(name); ok {
		return r
	}
	return s.Allocate(name)
}

// evalScope: the root scope of an eval unit. Unknown names are searched
// for in the runtime frames the eval was started from.
type evalScope struct {
	u  *Unit
	id ScopeID
}

func (s evalScope) ID() ScopeID { return s.id }

func (s evalScope) Owns(name string) bool { return s.u.owns(s.id, name) }

func (s evalScope) Resolve(name string) (Reference, bool) {
	rec := s.u.record(s.id)
	if v, ok := rec.names[name]; ok {
		return s.u.nestedReference(v), true
	}
	depth := 1
	for _, f := range rec.frames {
		if !f.ForEval {
			if slot, ok := f.slot(name); ok {
				v := s.u.addVar(s.id, Variable{Kind: NestedVariable, Name: name, Slot: slot, Depth: depth})
				return s.u.nestedReference(v), true
			}
		}
		if f.defines(name) {
			v := s.u.addVar(s.id, Variable{Kind: EvalVariable, Name: name})
			return s.u.nestedReference(v), true
		}
		depth++
	}
	return Reference{}, false
}

func (s evalScope) Allocate(name string) Reference {
	if v, ok := s.u.record(s.id).names[name]; ok {
		return s.u.reference(v)
	}
	return s.u.reference(s.u.addVar(s.id, Variable{Kind: EvalVariable, Name: name}))
}

func (s evalScope) Bind(name string) Reference {
	if r, ok := s.Resolve(name); ok {
		return r
	}
	return s.Allocate(name)
}
