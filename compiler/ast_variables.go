package compiler

import "sort"

// ---------------------------------------------------------------------------
// Variables, constants and value wrappers
// ---------------------------------------------------------------------------

// LocalVariableAccess reads a local variable. Ref is filled in when the
// unit is resolved.
type LocalVariableAccess struct {
	Pos
	Name string
	Ref  *Reference
}

func (n *LocalVariableAccess) node() {}

// LocalVariableAssignment writes a local variable. Value is nil when the
// node is a destructuring or parameter target.
type LocalVariableAssignment struct {
	Pos
	Name  string
	Value Node
	Ref   *Reference
}

func (n *LocalVariableAssignment) node() {}

// AccessKind distinguishes the non-local variable families.
type AccessKind int

const (
	InstanceVar AccessKind = iota
	ClassVar
	ClassVarDecl // assignment only: class variable declared in a class body
	GlobalVar
)

func (k AccessKind) accessTag() string {
	switch k {
	case InstanceVar:
		return "ivar"
	case GlobalVar:
		return "gvar"
	}
	return "cvar"
}

func (k AccessKind) assignTag() string {
	switch k {
	case InstanceVar:
		return "iasgn"
	case ClassVar:
		return "cvasgn"
	case ClassVarDecl:
		return "cvdecl"
	}
	return "gasgn"
}

// VariableAccess reads an instance, class or global variable.
type VariableAccess struct {
	Pos
	Kind AccessKind
	Name string
}

func (n *VariableAccess) node() {}

// VariableAssignment writes an instance, class or global variable.
type VariableAssignment struct {
	Pos
	Kind  AccessKind
	Name  string
	Value Node
}

func (n *VariableAssignment) node() {}

// CurrentException represents $!, the exception being handled.
type CurrentException struct{ Pos }

func (n *CurrentException) node() {}

// backRefModes maps the back-reference kinds to their runtime modes.
var backRefModes = map[string]int{
	"~": 0,
	"&": 1,
	"`": 2,
	"'": 3,
	"+": 4,
}

// BackRef represents $~, $&, $`, $' and $+.
type BackRef struct {
	Pos
	Kind string
}

func (n *BackRef) node() {}

// Mode returns the runtime selector for the back-reference kind.
func (n *BackRef) Mode() int { return backRefModes[n.Kind] }

// BackRefKinds lists the accepted back-reference kinds.
func BackRefKinds() []string {
	kinds := make([]string, 0, len(backRefModes))
	for k := range backRefModes {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return backRefModes[kinds[i]] < backRefModes[kinds[j]] })
	return kinds
}

// NthRefMode is the runtime selector shared by all numbered match groups.
const NthRefMode = 5

// NthRef represents $1, $2, ...
type NthRef struct {
	Pos
	Which int
}

func (n *NthRef) node() {}

// englishBackRefs maps the English library aliases onto back-references.
var englishBackRefs = map[string]string{
	"$LAST_MATCH_INFO":  "~",
	"$MATCH":            "&",
	"$PREMATCH":         "`",
	"$POSTMATCH":        "'",
	"$LAST_PAREN_MATCH": "+",
}

// ConstantAccess represents a bare constant (Foo).
type ConstantAccess struct {
	Pos
	Name string
}

func (n *ConstantAccess) node() {}

// ScopedConstant represents Parent::Name.
type ScopedConstant struct {
	Pos
	Parent Node
	Name   string
}

func (n *ScopedConstant) node() {}

// ToplevelConstant represents ::Name.
type ToplevelConstant struct {
	Pos
	Name string
}

func (n *ToplevelConstant) node() {}

// ConstantAssignment represents Foo = value. Constant is one of the three
// constant node types.
type ConstantAssignment struct {
	Pos
	Constant Node
	Value    Node
}

func (n *ConstantAssignment) node() {}

// SplatValue represents *value in an argument or array position.
type SplatValue struct {
	Pos
	Value Node
}

func (n *SplatValue) node() {}

// ConcatArgs represents a fixed prefix followed by a splatted rest.
type ConcatArgs struct {
	Pos
	Array Node
	Rest  Node
}

func (n *ConcatArgs) node() {}

// PushArgs represents a splatted prefix followed by one more value.
type PushArgs struct {
	Pos
	Arguments Node
	Value     Node
}

func (n *PushArgs) node() {}

// SValue represents a splat on the right of a single assignment.
type SValue struct {
	Pos
	Value Node
}

func (n *SValue) node() {}

// ToArray represents an implicit to_ary conversion.
type ToArray struct {
	Pos
	Value Node
}

func (n *ToArray) node() {}
