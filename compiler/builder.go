package compiler

import (
	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// Builder: the construction surface used by the parser
// ---------------------------------------------------------------------------

// Builder constructs trees bottom-up. Parsers call one method per
// construct; the builder normalizes shapes, runs the transform dispatch for
// calls and validates what can be checked locally. Construction errors are
// recorded rather than returned so the parser can finish its pass; the
// first one is reported when the unit is finished.
type Builder struct {
	transforms []Transform
	log        commonlog.Logger
	errs       []error
	preExe     []*PreExe
}

// Option configures a Builder.
type Option func(*Builder)

// WithTransforms replaces the enabled transforms. An empty list disables
// call specialization.
func WithTransforms(ts []Transform) Option {
	return func(b *Builder) { b.transforms = ts }
}

// WithLogger sets the logger used for construction diagnostics.
func WithLogger(log commonlog.Logger) Option {
	return func(b *Builder) { b.log = log }
}

// NewBuilder returns a builder with the default transform category
// enabled.
func NewBuilder(opts ...Option) *Builder {
	ts, _ := TransformsFor(DefaultCategory)
	b := &Builder{
		transforms: ts,
		log:        commonlog.GetLogger("garnet.compiler"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) fail(err error) {
	b.log.Debugf("construction error: %s", err)
	b.errs = append(b.errs, err)
}

// Err returns the first recorded construction error.
func (b *Builder) Err() error {
	if len(b.errs) == 0 {
		return nil
	}
	return b.errs[0]
}

// Errors returns every recorded construction error in order.
func (b *Builder) Errors() []error { return b.errs }

// Literals

func (b *Builder) Nil(line int) *NilLiteral     { return &NilLiteral{Pos: at(line)} }
func (b *Builder) True(line int) *TrueLiteral   { return &TrueLiteral{Pos: at(line)} }
func (b *Builder) False(line int) *FalseLiteral { return &FalseLiteral{Pos: at(line)} }
func (b *Builder) Self(line int) *Self          { return &Self{Pos: at(line)} }

func (b *Builder) Number(line int, v int64) *NumberLiteral {
	return &NumberLiteral{Pos: at(line), Value: v}
}

func (b *Builder) Float(line int, v float64) *FloatLiteral {
	return &FloatLiteral{Pos: at(line), Value: v}
}

func (b *Builder) Symbol(line int, name string) *SymbolLiteral {
	return &SymbolLiteral{Pos: at(line), Value: name}
}

func (b *Builder) String(line int, s string) *StringLiteral {
	return &StringLiteral{Pos: at(line), Value: s}
}

// ExecuteString builds a backtick literal.
func (b *Builder) ExecuteString(line int, s string) *StringLiteral {
	return &StringLiteral{Pos: at(line), Value: s, Execute: true}
}

// Dynamic builds an interpolated literal of the given kind.
func (b *Builder) Dynamic(line int, kind DynamicKind, s string, parts []Node, options int) *DynamicString {
	return &DynamicString{Pos: at(line), Kind: kind, Value: s, Parts: parts, Options: options}
}

// EvStr builds one #{...} segment; value may be nil.
func (b *Builder) EvStr(line int, value Node) *ToString {
	return &ToString{Pos: at(line), Value: value}
}

func (b *Builder) Regex(line int, source string, options int) *RegexLiteral {
	return &RegexLiteral{Pos: at(line), Source: source, Options: options}
}

func (b *Builder) Array(line int, elements ...Node) *ArrayLiteral {
	return &ArrayLiteral{Pos: at(line), Body: elements}
}

func (b *Builder) Hash(line int, elements ...Node) Node {
	if len(elements)%2 != 0 {
		b.fail(errorAt(ShapeInconsistency, line, "hash literal with %d elements", len(elements)))
	}
	return &HashLiteral{Pos: at(line), Array: elements}
}

func (b *Builder) Range(line int, start, finish Node, exclusive bool) *Range {
	return &Range{Pos: at(line), Start: start, Finish: finish, Exclusive: exclusive}
}

func (b *Builder) Encoding(line int, name string) *Encoding {
	return &Encoding{Pos: at(line), Name: name}
}

// Variables

func (b *Builder) LocalAccess(line int, name string) *LocalVariableAccess {
	return &LocalVariableAccess{Pos: at(line), Name: name}
}

// LocalAssign builds a local assignment; value is nil for a target.
func (b *Builder) LocalAssign(line int, name string, value Node) *LocalVariableAssignment {
	return &LocalVariableAssignment{Pos: at(line), Name: name, Value: value}
}

// Variable builds an instance, class or global variable read. Global
// names go through GlobalVariable.
func (b *Builder) Variable(line int, kind AccessKind, name string) Node {
	switch kind {
	case GlobalVar:
		return b.GlobalVariable(line, name)
	case ClassVarDecl:
		b.fail(errorAt(MalformedConstruction, line, "class variable declaration %s used as a read", name))
	}
	return &VariableAccess{Pos: at(line), Kind: kind, Name: name}
}

// GlobalVariable builds a global read. $! and the match globals become
// their dedicated nodes.
func (b *Builder) GlobalVariable(line int, name string) Node {
	switch name {
	case "$!":
		return &CurrentException{Pos: at(line)}
	case "$~":
		return &BackRef{Pos: at(line), Kind: "~"}
	}
	if kind, ok := englishBackRefs[name]; ok {
		return &BackRef{Pos: at(line), Kind: kind}
	}
	return &VariableAccess{Pos: at(line), Kind: GlobalVar, Name: name}
}

// Assign builds an instance, class or global variable assignment.
func (b *Builder) Assign(line int, kind AccessKind, name string, value Node) *VariableAssignment {
	return &VariableAssignment{Pos: at(line), Kind: kind, Name: name, Value: value}
}

// BackRef builds $~, $&, $`, $' or $+ from the character after the $.
func (b *Builder) BackRef(line int, kind string) Node {
	if _, ok := backRefModes[kind]; !ok {
		b.fail(errorAt(MalformedConstruction, line, "unknown back-reference kind %q", kind))
	}
	return &BackRef{Pos: at(line), Kind: kind}
}

func (b *Builder) NthRef(line int, which int) Node {
	if which < 1 {
		b.fail(errorAt(MalformedConstruction, line, "match group reference $%d", which))
	}
	return &NthRef{Pos: at(line), Which: which}
}

func (b *Builder) Const(line int, name string) *ConstantAccess {
	return &ConstantAccess{Pos: at(line), Name: name}
}

func (b *Builder) ScopedConst(line int, parent Node, name string) *ScopedConstant {
	return &ScopedConstant{Pos: at(line), Parent: parent, Name: name}
}

func (b *Builder) ToplevelConst(line int, name string) *ToplevelConstant {
	return &ToplevelConstant{Pos: at(line), Name: name}
}

// ConstAssign builds Name = value, Parent::Name = value or ::Name = value.
func (b *Builder) ConstAssign(line int, constant Node, value Node) *ConstantAssignment {
	switch constant.(type) {
	case *ConstantAccess, *ScopedConstant, *ToplevelConstant:
	default:
		b.fail(errorAt(MalformedConstruction, line, "constant assignment to %T", constant))
	}
	return &ConstantAssignment{Pos: at(line), Constant: constant, Value: value}
}

// Value wrappers

func (b *Builder) Splat(line int, value Node) *SplatValue {
	return &SplatValue{Pos: at(line), Value: value}
}

func (b *Builder) ConcatArgs(line int, array, rest Node) *ConcatArgs {
	return &ConcatArgs{Pos: at(line), Array: array, Rest: rest}
}

func (b *Builder) PushArgs(line int, arguments, value Node) *PushArgs {
	return &PushArgs{Pos: at(line), Arguments: arguments, Value: value}
}

func (b *Builder) SValue(line int, value Node) *SValue {
	return &SValue{Pos: at(line), Value: value}
}

func (b *Builder) ToArray(line int, value Node) *ToArray {
	return &ToArray{Pos: at(line), Value: value}
}

func (b *Builder) BlockPass(line int, body Node) *BlockPass {
	return &BlockPass{Pos: at(line), Body: body}
}

// Operators

func (b *Builder) And(line int, left, right Node) *Logical {
	return &Logical{Pos: at(line), Op: LogicalAnd, Left: left, Right: right}
}

func (b *Builder) Or(line int, left, right Node) *Logical {
	return &Logical{Pos: at(line), Op: LogicalOr, Left: left, Right: right}
}

func (b *Builder) Not(line int, value Node) *Not { return &Not{Pos: at(line), Value: value} }

func (b *Builder) Negate(line int, value Node) *Negate {
	return &Negate{Pos: at(line), Value: value}
}

// OpAssign1 builds recv[args] op= value.
func (b *Builder) OpAssign1(line int, receiver, args Node, op string, value Node) *OpAssign1 {
	return &OpAssign1{Pos: at(line), Receiver: receiver, Arguments: newActualArguments(line, args), Op: op, Value: value}
}

// OpAssign2 builds recv.name op= value.
func (b *Builder) OpAssign2(line int, receiver Node, name, op string, value Node) *OpAssign2 {
	return &OpAssign2{Pos: at(line), Receiver: receiver, Name: name, Assign: name + "=", Op: op, Value: value}
}

// OpAssignOr builds left ||= right; right is the assignment node.
func (b *Builder) OpAssignOr(line int, left, right Node) *OpAssignLogical {
	return &OpAssignLogical{Pos: at(line), Op: LogicalOr, Left: left, Right: right}
}

// OpAssignAnd builds left &&= right.
func (b *Builder) OpAssignAnd(line int, left, right Node) *OpAssignLogical {
	return &OpAssignLogical{Pos: at(line), Op: LogicalAnd, Left: left, Right: right}
}

// Control flow

func (b *Builder) If(line int, condition, body, els Node) *If {
	return &If{Pos: at(line), Condition: condition, Body: body, Else: els}
}

func (b *Builder) While(line int, condition, body Node, checkFirst bool) *While {
	return &While{Pos: at(line), Condition: condition, Body: orNil(body, line), CheckFirst: checkFirst}
}

func (b *Builder) Until(line int, condition, body Node, checkFirst bool) *While {
	return &While{Pos: at(line), Condition: condition, Body: orNil(body, line), CheckFirst: checkFirst, Until: true}
}

func (b *Builder) Case(line int, receiver Node, whens []*When, els Node) *Case {
	return &Case{Pos: at(line), Receiver: receiver, Whens: whens, Else: els}
}

// When builds one when clause. A trailing *list condition arrives either
// as a ConcatArgs, a bare SplatValue, or a nested When at the end of the
// condition list; all three become the clause's splat.
func (b *Builder) When(line int, conditions, body Node) *When {
	w := &When{Pos: at(line), Body: orNil(body, line)}

	if ca, ok := conditions.(*ConcatArgs); ok {
		w.Splat = &SplatWhen{Pos: at(line), Condition: ca.Rest}
		conditions = ca.Array
	}

	switch c := conditions.(type) {
	case *ArrayLiteral:
		if n := len(c.Body); n > 0 {
			if last, ok := c.Body[n-1].(*When); ok {
				c.Body = c.Body[:n-1]
				switch {
				case last.Conditions != nil:
					if arr, ok := last.Conditions.(*ArrayLiteral); ok {
						c.Body = append(c.Body, arr.Body...)
					} else {
						w.Splat = &SplatWhen{Pos: at(line), Condition: last.Conditions}
					}
				case last.Single != nil:
					w.Splat = &SplatWhen{Pos: at(line), Condition: last.Single}
				}
			}
		}
		if len(c.Body) == 1 && w.Splat == nil {
			w.Single = c.Body[0]
		} else {
			w.Conditions = c
		}
	case *SplatValue:
		w.Splat = &SplatWhen{Pos: at(line), Condition: c.Value}
	case nil:
		if w.Splat == nil {
			b.fail(errorAt(MalformedConstruction, line, "when clause without conditions"))
		}
	default:
		w.Conditions = c
	}
	return w
}

func (b *Builder) Flip(line int, start, finish Node, exclusive bool) *Flip {
	return &Flip{Pos: at(line), Start: start, Finish: finish, Exclusive: exclusive}
}

// Match builds a bare regex literal used as a condition.
func (b *Builder) Match(line int, source string, options int) *Match {
	return &Match{Pos: at(line), Pattern: b.Regex(line, source, options)}
}

// Match2 builds /re/ =~ value.
func (b *Builder) Match2(line int, pattern, value Node) *MatchOp {
	return &MatchOp{Pos: at(line), Kind: MatchPatternFirst, Pattern: pattern, Value: value}
}

// Match3 builds value =~ /re/.
func (b *Builder) Match3(line int, pattern, value Node) *MatchOp {
	return &MatchOp{Pos: at(line), Kind: MatchValueFirst, Pattern: pattern, Value: value}
}

func (b *Builder) Break(line int, value Node) *Jump {
	return &Jump{Pos: at(line), Kind: JumpBreak, Value: orNil(value, line)}
}

func (b *Builder) Next(line int, value Node) *Jump {
	return &Jump{Pos: at(line), Kind: JumpNext, Value: value}
}

func (b *Builder) Redo(line int) *Jump  { return &Jump{Pos: at(line), Kind: JumpRedo} }
func (b *Builder) Retry(line int) *Jump { return &Jump{Pos: at(line), Kind: JumpRetry} }

func (b *Builder) Return(line int, value Node) *Return {
	return &Return{Pos: at(line), Value: value}
}

func (b *Builder) Defined(line int, expr Node) *Defined {
	return &Defined{Pos: at(line), Expression: expr}
}

// Definitions

func (b *Builder) Block(line int, statements ...Node) *Block {
	return &Block{Pos: at(line), Array: statements}
}

func (b *Builder) Alias(line int, to, from Node) *Alias {
	return &Alias{Pos: at(line), To: to, From: from}
}

func (b *Builder) VAlias(line int, to, from string) *VAlias {
	return &VAlias{Pos: at(line), To: to, From: from}
}

func (b *Builder) Undef(line int, name Node) *Undef {
	return &Undef{Pos: at(line), Name: name}
}

// methodBody turns a method body into a non-empty statement block.
func methodBody(line int, body Node) *Block {
	var blk *Block
	switch x := body.(type) {
	case nil:
		blk = &Block{Pos: at(line)}
	case *Block:
		blk = x
	default:
		blk = &Block{Pos: at(line), Array: []Node{x}}
	}
	if len(blk.Array) == 0 {
		blk.Array = append(blk.Array, &NilLiteral{Pos: at(line)})
	}
	return blk
}

// Define builds def name(args) body. args may be nil for a method without
// parameters.
func (b *Builder) Define(line int, name string, args *FormalArguments, body Node) *Define {
	if args == nil {
		args = &FormalArguments{Pos: at(line)}
	}
	return &Define{Pos: at(line), Name: name, Arguments: args, Body: methodBody(line, body), Scope: NoScope}
}

// DefineSingleton builds def recv.name(args) body.
func (b *Builder) DefineSingleton(line int, receiver Node, name string, args *FormalArguments, body Node) *DefineSingleton {
	return &DefineSingleton{Pos: at(line), Receiver: receiver, Body: b.Define(line, name, args, body)}
}

// moduleName interprets the name of a class or module definition.
func (b *Builder) moduleName(line int, name Node) *ModuleName {
	switch x := name.(type) {
	case *ConstantAccess:
		return &ModuleName{Pos: at(line), Kind: PlainName, Name: x.Name}
	case *SymbolLiteral:
		return &ModuleName{Pos: at(line), Kind: PlainName, Name: x.Value}
	case *ToplevelConstant:
		return &ModuleName{Pos: at(line), Kind: ToplevelName, Name: x.Name}
	case *ScopedConstant:
		return &ModuleName{Pos: at(line), Kind: ScopedName, Name: x.Name, Parent: x.Parent}
	}
	b.fail(errorAt(MalformedConstruction, line, "class or module name must be a constant, got %T", name))
	return &ModuleName{Pos: at(line)}
}

func moduleScope(line int, kind BodyKind, name string, body Node) *ModuleScope {
	if body == nil {
		return nil
	}
	return &ModuleScope{Pos: at(line), Kind: kind, Name: name, Body: body, Scope: NoScope}
}

// Class builds class Name < Super; body; end. superclass and body may be
// nil.
func (b *Builder) Class(line int, name, superclass, body Node) *Class {
	n := b.moduleName(line, name)
	return &Class{
		Pos:        at(line),
		Name:       n,
		Superclass: orNil(superclass, line),
		Body:       moduleScope(line, ClassBody, n.Name, body),
	}
}

// Module builds module Name; body; end.
func (b *Builder) Module(line int, name, body Node) *Module {
	n := b.moduleName(line, name)
	return &Module{Pos: at(line), Name: n, Body: moduleScope(line, ModuleBody, n.Name, body)}
}

// SClass builds class << recv; body; end.
func (b *Builder) SClass(line int, receiver, body Node) *SClass {
	return &SClass{Pos: at(line), Receiver: receiver, Body: moduleScope(line, SingletonBody, "", body)}
}

// PreExe registers a BEGIN { } block. The returned node marks the place it
// was written and renders as nothing.
func (b *Builder) PreExe(line int, body Node) *PreExe {
	pe := &PreExe{Pos: at(line), Block: b.Iter(line, nil, body)}
	b.preExe = append(b.preExe, pe)
	return pe
}

// Exceptions

func (b *Builder) Begin(line int, body Node) *Begin {
	return &Begin{Pos: at(line), Rescue: orNil(body, line)}
}

func (b *Builder) Ensure(line int, body, ensure Node) *Ensure {
	return &Ensure{Pos: at(line), Body: orNil(body, line), Ensure: orNil(ensure, line)}
}

// Rescue builds body rescue clauses else els end. els may be nil.
func (b *Builder) Rescue(line int, body Node, clauses *RescueCondition, els Node) *Rescue {
	if clauses == nil {
		b.fail(errorAt(MalformedConstruction, line, "rescue without a clause"))
	}
	return &Rescue{Pos: at(line), Body: orNil(body, line), Rescue: clauses, Else: els}
}

// RescueCondition builds one rescue clause; next chains the clause that
// follows it in source order.
func (b *Builder) RescueCondition(line int, conditions, body Node, next *RescueCondition) *RescueCondition {
	rc, err := newRescueCondition(line, conditions, body, next)
	if err != nil {
		b.fail(err)
		return &RescueCondition{Pos: at(line), Conditions: &ArrayLiteral{Pos: at(line)}, Body: orNil(body, line), Next: next}
	}
	return rc
}
