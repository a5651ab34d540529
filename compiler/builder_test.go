package compiler

import (
	"errors"
	"strings"
	"testing"
)

func TestConstructionErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder)
		want  error
	}{
		{"odd hash", func(b *Builder) { b.Hash(1, b.Number(1, 1)) }, ErrShape},
		{"match group zero", func(b *Builder) { b.NthRef(1, 0) }, ErrMalformed},
		{"unknown back-reference", func(b *Builder) { b.BackRef(1, "?") }, ErrMalformed},
		{"class variable declaration read", func(b *Builder) { b.Variable(1, ClassVarDecl, "@@a") }, ErrMalformed},
		{"constant assignment to a call", func(b *Builder) { b.ConstAssign(1, b.VCall(1, "a"), b.Nil(1)) }, ErrMalformed},
		{"class named by a string", func(b *Builder) { b.Class(1, b.String(1, "A"), nil, nil) }, ErrMalformed},
		{"when without conditions", func(b *Builder) { b.When(1, nil, b.Nil(1)) }, ErrMalformed},
		{"block on a literal", func(b *Builder) { b.AttachBlock(b.Number(1, 1), b.Iter(1, nil, nil)) }, ErrMalformed},
		{"for over a literal", func(b *Builder) { b.For(1, b.VCall(1, "xs"), b.Number(1, 1), nil) }, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			tt.build(b)
			err := b.Err()
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			var cerr *Error
			if !errors.As(err, &cerr) {
				t.Fatalf("err is %T, want *Error", err)
			}
			if !strings.HasPrefix(cerr.Error(), "line 1: ") {
				t.Errorf("message %q does not carry the line", cerr.Error())
			}
		})
	}
}

func TestErrorKinds(t *testing.T) {
	err := errorAt(UnresolvableVariable, 9, "no storage for %s", "x")
	if !errors.Is(err, ErrUnresolvable) || errors.Is(err, ErrShape) {
		t.Errorf("errors.Is mismatch for %v", err)
	}
	if got := err.Kind.String(); got != "unresolvable variable" {
		t.Errorf("Kind = %s", got)
	}
	if got := ErrorKind(42).String(); got != "ErrorKind(42)" {
		t.Errorf("unknown kind = %s", got)
	}
}

func TestScriptFailsWithRecordedErrors(t *testing.T) {
	b := NewBuilder()
	b.NthRef(1, 0)
	b.Hash(2, b.Nil(2))
	if n := len(b.Errors()); n != 2 {
		t.Fatalf("Errors() = %d, want 2", n)
	}
	u, err := b.Script(b.Nil(3))
	if u != nil || !errors.Is(err, ErrMalformed) {
		t.Errorf("Script = %v, %v; want the first recorded error", u, err)
	}
}

func TestGlobalVariables(t *testing.T) {
	b := NewBuilder()
	tests := []struct {
		name string
		want string
	}{
		{"$!", "[:gvar, :$!]"},
		{"$~", "[:back_ref, :~]"},
		{"$MATCH", "[:back_ref, :&]"},
		{"$PREMATCH", "[:back_ref, :`]"},
		{"$LAST_PAREN_MATCH", "[:back_ref, :+]"},
		{"$stdout", "[:gvar, :$stdout]"},
	}
	for _, tt := range tests {
		if got := render(b.GlobalVariable(1, tt.name)); got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, got, tt.want)
		}
	}
	if got := render(b.Variable(1, GlobalVar, "$!")); got != "[:gvar, :$!]" {
		t.Errorf("global read through Variable = %s", got)
	}
	if got := b.BackRef(1, "'").(*BackRef).Mode(); got != 3 {
		t.Errorf("post-match mode = %d, want 3", got)
	}
	if got, want := strings.Join(BackRefKinds(), ""), "~&`'+"; got != want {
		t.Errorf("BackRefKinds() = %q, want %q", got, want)
	}
}

func TestYieldArgumentCount(t *testing.T) {
	b := NewBuilder()
	pair := func() Node { return b.Array(1, b.Number(1, 1), b.Number(1, 2)) }

	tests := []struct {
		name  string
		y     *Yield
		count int
		splat bool
	}{
		{"no arguments", b.Yield(1, nil, false), 0, false},
		{"list passed whole", b.Yield(1, pair(), false), 1, false},
		{"list unwrapped", b.Yield(1, pair(), true), 2, false},
		{"single value", b.Yield(1, b.LocalAccess(1, "x"), false), 1, false},
		{"splat", b.Yield(1, b.Splat(1, b.LocalAccess(1, "xs")), false), 0, true},
		{"splat of a literal list", b.Yield(1, b.Splat(1, pair()), false), 1, false},
		{"prefix and splat", b.Yield(1, b.ConcatArgs(1, b.Array(1, b.Number(1, 1)), b.LocalAccess(1, "xs")), false), 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.y.ArgumentCount != tt.count || tt.y.YieldSplat != tt.splat {
				t.Errorf("count/splat = %d/%v, want %d/%v", tt.y.ArgumentCount, tt.y.YieldSplat, tt.count, tt.splat)
			}
		})
	}
}

func TestElementAssign(t *testing.T) {
	b := NewBuilder()
	plain := b.ElementAssign(1, b.LocalAccess(1, "h"), b.Array(1, b.Symbol(1, "k"), b.Number(1, 1)))
	if plain.Name != "[]=" || plain.Arguments.Size() != 2 || plain.Arguments.IsSplat() {
		t.Errorf("plain element assignment = %+v", plain.Arguments)
	}

	pushed := b.ElementAssign(1, b.LocalAccess(1, "h"),
		b.PushArgs(1, b.Splat(1, b.LocalAccess(1, "keys")), b.Number(1, 1)))
	if pushed.Arguments.Pushed == nil || !pushed.Arguments.IsSplat() || pushed.Arguments.Size() != 1 {
		t.Errorf("splatted element assignment = %+v", pushed.Arguments)
	}

	self := b.ElementAssign(1, b.Self(1), b.Array(1, b.Number(1, 1), b.Number(1, 2)))
	if !self.Privately {
		t.Error("element assignment on self is private")
	}
}

func TestDefinitions(t *testing.T) {
	b := NewBuilder()
	def := b.Define(1, "empty", nil, nil)
	if len(def.Body.Array) != 1 {
		t.Fatalf("empty method body = %v", def.Body.Array)
	}
	if _, ok := def.Body.Array[0].(*NilLiteral); !ok {
		t.Errorf("empty method body holds %T, want nil", def.Body.Array[0])
	}
	if got, want := render(def), "[:defn, :empty, [:args], [:scope, [:block, [:nil]]]]"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	names := []struct {
		node Node
		kind NameKind
	}{
		{b.Const(1, "A"), PlainName},
		{b.Symbol(1, "A"), PlainName},
		{b.ToplevelConst(1, "A"), ToplevelName},
		{b.ScopedConst(1, b.Const(1, "Outer"), "A"), ScopedName},
	}
	for _, n := range names {
		c := b.Class(1, n.node, nil, nil)
		if c.Name.Kind != n.kind || c.Name.Name != "A" {
			t.Errorf("class name from %T = %+v", n.node, c.Name)
		}
		if c.Body != nil {
			t.Error("a class without a body has no body scope")
		}
	}
	if err := b.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOpAssignTargets(t *testing.T) {
	b := NewBuilder()
	op := b.OpAssign2(1, b.LocalAccess(1, "obj"), "count", "+", b.Number(1, 1))
	if op.Name != "count" || op.Assign != "count=" || op.Op != "+" {
		t.Errorf("attribute op-assign = %+v", op)
	}
}

func TestPreExeHoisted(t *testing.T) {
	b := NewBuilder()
	assign := b.LocalAssign(2, "seen", b.True(2))
	pe := b.PreExe(2, assign)
	read := b.LocalAccess(3, "seen")

	u, err := b.Script(b.Block(1, pe, read))
	if err != nil {
		t.Fatal(err)
	}
	if len(u.Root.PreExe) != 1 || u.Root.PreExe[0] != pe {
		t.Fatalf("pre-exe blocks = %v", u.Root.PreExe)
	}
	if pe.Block.Scope == NoScope {
		t.Error("pre-exe block was not resolved")
	}
	if read.Ref.Var == assign.Ref.Var {
		t.Error("a variable assigned in a pre-exe block stays in that block")
	}

	// A second unit starts with no pending pre-exe blocks.
	u2, err := b.Script(b.Nil(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(u2.Root.PreExe) != 0 {
		t.Error("pre-exe blocks leaked into the next unit")
	}
}
