package compiler

// ---------------------------------------------------------------------------
// Definitions and scope-introducing bodies
// ---------------------------------------------------------------------------

// ContainerKind selects the kind of compilation unit.
type ContainerKind int

const (
	ScriptUnit ContainerKind = iota
	SnippetUnit
	EvalUnit
)

func (k ContainerKind) String() string {
	switch k {
	case SnippetUnit:
		return "snippet"
	case EvalUnit:
		return "eval"
	}
	return "script"
}

// unitName is the method name the runtime gives a unit's body.
func (k ContainerKind) unitName() string {
	switch k {
	case SnippetUnit:
		return "__snippet__"
	case EvalUnit:
		return "__eval_script__"
	}
	return "__script__"
}

// Container is the root of a compilation unit.
type Container struct {
	Pos
	Kind   ContainerKind
	Name   string
	Body   Node
	PreExe []*PreExe
	Scope  ScopeID
}

func (n *Container) node() {}

// Block is a statement sequence.
type Block struct {
	Pos
	Array []Node
}

func (n *Block) node() {}

// Alias represents alias new old.
type Alias struct {
	Pos
	To   Node
	From Node
}

func (n *Alias) node() {}

// VAlias represents alias $new $old.
type VAlias struct {
	Pos
	To   string
	From string
}

func (n *VAlias) node() {}

// Undef represents undef name.
type Undef struct {
	Pos
	Name Node
}

func (n *Undef) node() {}

// Define represents def name(args) body. The method body is a closed
// scope.
type Define struct {
	Pos
	Name      string
	Arguments *FormalArguments
	Body      *Block
	Scope     ScopeID
}

func (n *Define) node() {}

// DefineSingleton represents def recv.name(args) body.
type DefineSingleton struct {
	Pos
	Receiver Node
	Body     *Define
}

func (n *DefineSingleton) node() {}

// NameKind selects how a class or module name is written.
type NameKind int

const (
	PlainName    NameKind = iota // Foo
	ScopedName                   // Parent::Foo
	ToplevelName                 // ::Foo
)

// ModuleName is the name of a class or module definition.
type ModuleName struct {
	Pos
	Kind   NameKind
	Name   string
	Parent Node // for ScopedName
}

func (n *ModuleName) node() {}

// BodyKind selects the flavor of a class-like body scope.
type BodyKind int

const (
	ClassBody BodyKind = iota
	ModuleBody
	SingletonBody
)

// ModuleScope is the closed scope of a class, module or singleton class
// body.
type ModuleScope struct {
	Pos
	Kind  BodyKind
	Name  string
	Body  Node
	Scope ScopeID
}

func (n *ModuleScope) node() {}

// Class represents class Name < Super; body; end. Body is nil for an
// empty class.
type Class struct {
	Pos
	Name       *ModuleName
	Superclass Node
	Body       *ModuleScope
}

func (n *Class) node() {}

// Module represents module Name; body; end.
type Module struct {
	Pos
	Name *ModuleName
	Body *ModuleScope
}

func (n *Module) node() {}

// SClass represents class << recv; body; end.
type SClass struct {
	Pos
	Receiver Node
	Body     *ModuleScope
}

func (n *SClass) node() {}
