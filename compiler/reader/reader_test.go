package reader

import (
	"errors"
	"strings"
	"testing"

	"github.com/chazu/garnet/compiler"
	"github.com/chazu/garnet/compiler/sexp"
)

func TestCanonicalFormsReadBack(t *testing.T) {
	tests := []string{
		`[:script, [:block, [:lasgn, :a, [:lit, 1]], [:call, [:lvar, :a], :+, [:arglist, [:lit, 2]]]]]`,
		`[:script, [:if, [:true], [:str, "yes"], nil]]`,
		`[:script, [:defn, :m, [:args, :a, :"*r"], [:scope, [:block, [:lvar, :a]]]]]`,
		`[:script, [:masgn, [:array, [:lasgn, :a], [:lasgn, :b]], [:array, [:lit, 1], [:lit, 2]]]]`,
		`[:script, [:masgn, [:array, [:lasgn, :a], [:splat, [:splat_assign, [:lasgn, :r]]], [:lasgn, :c]], [:array, [:lit, 1], [:lit, 2], [:lit, 3]]]]`,
		`[:script, [:iter, [:call, [:lvar, :x], :each, [:arglist]], [:lasgn, :a], [:lvar, :a]]]`,
		`[:script, [:iter, [:call, [:lvar, :x], :each, [:arglist]], 0, [:nil]]]`,
		`[:script, [:for, [:lvar, :xs], [:lasgn, :i], [:lvar, :i]]]`,
		`[:script, [:case, [:lvar, :v], [:whens, [:when, [:array, [:lit, 1]], [:lit, 10]], ` +
			`[:when, [:array, [:lit, 1], [:lit, 2], [:when, [:lvar, :x], nil]], [:nil]]], nil]]`,
		`[:script, [:class, :A, [:const, :Base], [:scope, [:cdecl, :B, [:lit, 1]]]]]`,
		`[:script, [:module, [:colon2, [:const, :Outer], :Inner], [:scope]]]`,
		`[:script, [:call, nil, :puts, [:arglist, [:dstr, "a", [:evstr, [:lit, 1]]]]]]`,
		`[:snippet, [:call, nil, :work, nil]]`,
		`[:script, [:op_asgn_or, [:ivar, :@a], [:iasgn, :@a, [:lit, 1]]]]`,
		`[:script, [:while, [:true], [:break, [:nil]], true]]`,
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			raw := sexp.MustParse(src)
			u, err := Build(raw, Options{})
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if got := compiler.ToSexp(u.Root); !sexp.Equal(got, raw) {
				t.Errorf("got  %s\nwant %s", got, raw)
			}
		})
	}
}

func TestNewlineSetsLine(t *testing.T) {
	b := compiler.NewBuilder()
	n, err := Read(b, sexp.MustParse(`[:block, [:newline, 3, [:lasgn, :a, [:lit, 1]]], [:newline, 7, [:lvar, :a]]]`))
	if err != nil {
		t.Fatal(err)
	}
	stmts := n.(*compiler.Block).Array
	if stmts[0].Line() != 3 || stmts[1].Line() != 7 {
		t.Errorf("lines = %d, %d; want 3, 7", stmts[0].Line(), stmts[1].Line())
	}
	if v := stmts[0].(*compiler.LocalVariableAssignment).Value; v.Line() != 3 {
		t.Errorf("child line = %d, want the enclosing 3", v.Line())
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line string
	}{
		{"unknown node", `[:newline, 3, [:frobnicate, 1]]`, "line 3: "},
		{"bad symbol", `[:lvar, "a"]`, "line 1: "},
		{"bad literal", `[:lit, "a"]`, "line 1: "},
		{"bare atom", `[:block, 1]`, "line 1: "},
		{"defn arity", `[:defn, :m]`, "line 1: "},
		{"args entry", `[:defn, :m, [:args, 1], [:scope]]`, "line 1: "},
		{"rescue without resbody", `[:rescue, [:nil], [:nil]]`, "line 1: "},
		{"case without whens", `[:case, nil, [:lit, 1], nil]`, "line 1: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(compiler.NewBuilder(), sexp.MustParse(tt.src))
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v, want invalid parse tree", err)
			}
			if !strings.HasPrefix(err.Error(), tt.line) {
				t.Errorf("message %q does not start with %q", err.Error(), tt.line)
			}
		})
	}
}

func TestFormalParameters(t *testing.T) {
	b := compiler.NewBuilder()
	n, err := Read(b, sexp.MustParse(
		`[:defn, :m, [:args, :a, :b, :"*r", :c, :"&blk", [:block, [:lasgn, :b, [:lvar, :a]]]], [:scope]]`))
	if err != nil {
		t.Fatal(err)
	}
	args := n.(*compiler.Define).Arguments
	if args.RequiredArgs() != 2 || args.TotalArgs() != 3 || args.PostArgs() != 1 {
		t.Errorf("required/total/post = %d/%d/%d", args.RequiredArgs(), args.TotalArgs(), args.PostArgs())
	}
	if args.RestKind != compiler.NamedRest || args.Rest != "r" || args.BlockArg == nil || args.BlockArg.Name != "blk" {
		t.Errorf("rest/block = %v %q %v", args.RestKind, args.Rest, args.BlockArg)
	}
	if err := b.Err(); err != nil {
		t.Fatal(err)
	}
}

func TestBuildResolvesScopes(t *testing.T) {
	u, err := Parse(`[:block,
		[:lasgn, :a, [:lit, 1]],
		[:iter, [:call, nil, :each, [:arglist]], nil, [:newline, 2, [:lvar, :a]]]]`, Options{})
	if err != nil {
		t.Fatal(err)
	}
	var read *compiler.LocalVariableAccess
	compiler.Walk(u.Root, func(n compiler.Node) bool {
		if lv, ok := n.(*compiler.LocalVariableAccess); ok {
			read = lv
		}
		return true
	})
	if read == nil || read.Ref == nil {
		t.Fatal("read of a not resolved")
	}
	if read.Ref.Kind != compiler.NestedRef || read.Ref.Depth != 1 || read.Ref.Slot != 0 {
		t.Errorf("ref = %s, want nested 1:0", read.Ref)
	}
}

func TestIdentBecomesLocal(t *testing.T) {
	u, err := Parse(`[:block, [:lasgn, :a, [:lit, 1]], [:ident, :a], [:ident, :b]]`, Options{})
	if err != nil {
		t.Fatal(err)
	}
	stmts := u.Root.Body.(*compiler.Block).Array
	if s := stmts[1].(*compiler.Send); s.Variable == nil {
		t.Error("a is assigned before use and reads as a local")
	}
	if s := stmts[2].(*compiler.Send); s.Variable != nil {
		t.Error("b is unknown and stays a call")
	}
}

func TestYieldArguments(t *testing.T) {
	b := compiler.NewBuilder()
	n, err := Read(b, sexp.MustParse(`[:yield, [:lit, 1], [:lit, 2]]`))
	if err != nil {
		t.Fatal(err)
	}
	if y := n.(*compiler.Yield); y.ArgumentCount != 2 {
		t.Errorf("ArgumentCount = %d, want 2", y.ArgumentCount)
	}

	n, err = Read(b, sexp.MustParse(`[:yield, [:array, [:lit, 1], [:lit, 2]]]`))
	if err != nil {
		t.Fatal(err)
	}
	if y := n.(*compiler.Yield); y.ArgumentCount != 1 {
		t.Errorf("ArgumentCount = %d, want 1 for a list passed whole", y.ArgumentCount)
	}
}

func TestCallWithBlockArgument(t *testing.T) {
	b := compiler.NewBuilder()
	n, err := Read(b, sexp.MustParse(`[:call, [:lvar, :xs], :map, [:arglist, [:lit, 1], [:block_pass, [:lvar, :f]]]]`))
	if err != nil {
		t.Fatal(err)
	}
	s := n.(*compiler.Send)
	if _, ok := s.Block.(*compiler.BlockPass); !ok || s.Arguments.Size() != 1 {
		t.Errorf("block = %T, args = %d", s.Block, s.Arguments.Size())
	}
}

func TestRescueBodyBinding(t *testing.T) {
	u, err := Parse(`[:rescue, [:call, nil, :work, nil],
		[:resbody, [:array, [:const, :IOError]], [[:lasgn, :e, [:gvar, :$!]], [:lvar, :e]]]]`, Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := `[:script, [:rescue, [:call, nil, :work, nil], ` +
		`[:resbody, [:array, [:const, :IOError], [:lasgn, :e, [:gvar, :$!]]], [[:lvar, :e]]]]]`
	if got := compiler.ToSexp(u.Root).String(); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestBuildEvalUnit(t *testing.T) {
	frames := []compiler.EvalFrame{{Locals: []string{"x"}}}
	u, err := Build(sexp.MustParse(`[:eval, [:lvar, :x]]`), Options{Frames: frames})
	if err != nil {
		t.Fatal(err)
	}
	if u.Kind != compiler.EvalUnit {
		t.Fatalf("kind = %s, want eval", u.Kind)
	}
	read := u.Root.Body.(*compiler.LocalVariableAccess)
	if read.Ref.Kind != compiler.NestedRef || read.Ref.Depth != 1 || read.Ref.Slot != 0 {
		t.Errorf("ref = %s, want the frame's slot 0", read.Ref)
	}
}

func TestBuildReportsConstructionErrors(t *testing.T) {
	_, err := Parse(`[:nth_ref, 0]`, Options{})
	if !errors.Is(err, compiler.ErrMalformed) {
		t.Errorf("err = %v, want malformed construction", err)
	}
	if errors.Is(err, ErrInvalid) {
		t.Error("a well formed tree must not be reported as invalid")
	}
}

func TestBuildTransforms(t *testing.T) {
	u, err := Parse(`[:call, [:lit, 1], :+, [:arglist, [:lit, 2]]]`, Options{Transforms: []compiler.Transform{}})
	if err != nil {
		t.Fatal(err)
	}
	if s := u.Root.Body.(*compiler.Send); s.Special != nil {
		t.Errorf("transform %s applied with none enabled", s.Special.Transform)
	}
}

func TestParseKind(t *testing.T) {
	for name, want := range map[string]compiler.ContainerKind{
		"": compiler.ScriptUnit, "script": compiler.ScriptUnit,
		"snippet": compiler.SnippetUnit, "eval": compiler.EvalUnit,
	} {
		got, err := ParseKind(name)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %s, %v", name, got, err)
		}
	}
	if _, err := ParseKind("module"); err == nil {
		t.Error("unknown kind accepted")
	}
}
