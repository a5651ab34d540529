package compiler

import (
	"errors"
	"reflect"
	"testing"
)

type masgnFixture struct {
	b *Builder
}

func newMasgnFixture() masgnFixture { return masgnFixture{b: NewBuilder()} }

func (f masgnFixture) lasgn(name string) *LocalVariableAssignment {
	return f.b.LocalAssign(1, name, nil)
}

func (f masgnFixture) ints(vs ...int64) *ArrayLiteral {
	nodes := make([]Node, len(vs))
	for i, v := range vs {
		nodes[i] = f.b.Number(1, v)
	}
	return f.b.Array(1, nodes...)
}

func (f masgnFixture) targets(names ...string) *ArrayLiteral {
	nodes := make([]Node, len(names))
	for i, name := range names {
		nodes[i] = f.lasgn(name)
	}
	return f.b.Array(1, nodes...)
}

// bound renders each binding's value, or "-" for an unbound runtime slot.
func bound(p *Plan) []string {
	out := make([]string, len(p.Bindings))
	for i, bd := range p.Bindings {
		if bd.Value == nil {
			out[i] = "-"
			continue
		}
		out[i] = render(bd.Value)
	}
	return out
}

func TestPlanStatic(t *testing.T) {
	f := newMasgnFixture()

	tests := []struct {
		name   string
		m      *MultipleAssignment
		mode   PlanMode
		values []string
		pad    int
		excess int
	}{
		{
			"even",
			f.b.MultipleAssignment(1, f.targets("a", "b"), f.ints(1, 2), nil),
			StaticPlan, []string{"[:lit, 1]", "[:lit, 2]"}, 0, 0,
		},
		{
			"padded",
			f.b.MultipleAssignment(1, f.targets("a", "b", "c"), f.ints(1), nil),
			StaticPlan, []string{"[:lit, 1]", "[:nil]", "[:nil]"}, 2, 0,
		},
		{
			"excess",
			f.b.MultipleAssignment(1, f.targets("a", "b"), f.ints(1, 2, 3), nil),
			StaticPlan, []string{"[:lit, 1]", "[:lit, 2]"}, 0, 1,
		},
		{
			"coerced single value",
			f.b.MultipleAssignment(1, f.targets("a", "b"), f.b.LocalAccess(1, "x"), nil),
			CoercedPlan, []string{"[:lvar, :x]", "[:nil]"}, 1, 0,
		},
		{
			"rest in the middle",
			f.b.MultipleAssignment(1, f.targets("a"), f.ints(1, 2, 3, 4),
				f.b.PostArg(1, f.lasgn("r"), f.targets("c"))),
			StaticPlan, []string{"[:lit, 1]", "[:array, [:lit, 2], [:lit, 3]]", "[:lit, 4]"}, 0, 0,
		},
		{
			"short with rest and post",
			f.b.MultipleAssignment(1, f.targets("a"), f.ints(1),
				f.b.PostArg(1, f.lasgn("r"), f.targets("c"))),
			StaticPlan, []string{"[:lit, 1]", "[:array]", "[:nil]"}, 1, 0,
		},
		{
			"anonymous rest discards",
			f.b.MultipleAssignment(1, f.targets("a"), f.ints(1, 2, 3), f.b.AnonymousSplat(1)),
			StaticPlan, []string{"[:lit, 1]"}, 0, 0,
		},
		{
			"rest only",
			f.b.MultipleAssignment(1, nil, f.ints(1, 2), f.lasgn("r")),
			StaticPlan, []string{"[:array, [:lit, 1], [:lit, 2]]"}, 0, 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.m.Plan()
			if p.Mode != tt.mode {
				t.Errorf("Mode = %s, want %s", p.Mode, tt.mode)
			}
			if got := bound(p); !reflect.DeepEqual(got, tt.values) {
				t.Errorf("values = %v, want %v", got, tt.values)
			}
			if p.Pad != tt.pad || p.Excess != tt.excess {
				t.Errorf("pad/excess = %d/%d, want %d/%d", p.Pad, p.Excess, tt.pad, tt.excess)
			}
		})
	}
	if err := f.b.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPlanRestBindingIsMarked(t *testing.T) {
	f := newMasgnFixture()
	m := f.b.MultipleAssignment(1, f.targets("a"), f.ints(1, 2, 3), f.lasgn("r"))
	p := m.Plan()
	if len(p.Bindings) != 2 || p.Bindings[0].Rest || !p.Bindings[1].Rest {
		t.Fatalf("bindings = %+v", p.Bindings)
	}
	if name := targetName(p.Bindings[1].Target); name != "r" {
		t.Errorf("rest target = %q, want r", name)
	}
}

func TestPlanNested(t *testing.T) {
	f := newMasgnFixture()
	inner := f.b.MultipleAssignment(1, f.targets("b", "c"), nil, nil)
	m := f.b.MultipleAssignment(1, f.b.Array(1, f.lasgn("a"), inner),
		f.b.Array(1, f.b.Number(1, 1), f.ints(2, 3)), nil)

	p := m.Plan()
	if len(p.Bindings) != 2 {
		t.Fatalf("bindings = %d, want 2", len(p.Bindings))
	}
	nested := p.Bindings[1].Nested
	if nested == nil {
		t.Fatal("nested target has no plan")
	}
	if nested.Mode != StaticPlan {
		t.Errorf("nested mode = %s, want static", nested.Mode)
	}
	if got, want := bound(nested), []string{"[:lit, 2]", "[:lit, 3]"}; !reflect.DeepEqual(got, want) {
		t.Errorf("nested values = %v, want %v", got, want)
	}
}

func TestPlanRuntime(t *testing.T) {
	f := newMasgnFixture()
	inner := f.b.MultipleAssignment(1, f.targets("c", "d"), nil, nil)

	tests := []struct {
		name  string
		right Node
	}{
		{"splat", f.b.Splat(1, f.b.LocalAccess(1, "x"))},
		{"splat inside list", f.b.Array(1, f.b.Number(1, 1), f.b.Splat(1, f.b.LocalAccess(1, "x")))},
		{"concat", f.b.ConcatArgs(1, f.ints(1), f.b.LocalAccess(1, "x"))},
		{"block parameters", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := f.b.MultipleAssignment(1, f.b.Array(1, f.lasgn("a"), inner), tt.right, f.lasgn("r"))
			p := m.Plan()
			if p.Mode != RuntimePlan {
				t.Fatalf("Mode = %s, want runtime", p.Mode)
			}
			if got, want := bound(p), []string{"-", "-", "-"}; !reflect.DeepEqual(got, want) {
				t.Errorf("values = %v, want %v", got, want)
			}
			if n := p.Bindings[1].Nested; n == nil || n.Mode != RuntimePlan || len(n.Bindings) != 2 {
				t.Errorf("nested plan = %+v", n)
			}
			if p.Pad != 0 || p.Excess != 0 {
				t.Errorf("runtime plans carry no pad or excess")
			}
		})
	}
}

func TestMultipleAssignmentErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder)
		want  error
	}{
		{
			"two rests at one level",
			func(b *Builder) {
				b.MultipleAssignment(2, b.Array(2, b.Splat(2, b.LocalAssign(2, "a", nil))), b.Nil(2), b.LocalAssign(2, "r", nil))
			},
			ErrShape,
		},
		{
			"literal target",
			func(b *Builder) {
				b.MultipleAssignment(2, b.Array(2, b.Number(2, 1)), b.Nil(2), nil)
			},
			ErrMalformed,
		},
		{
			"unassignable rest",
			func(b *Builder) {
				b.MultipleAssignment(2, b.Array(2, b.LocalAssign(2, "a", nil)), b.Nil(2), b.LocalAccess(2, "x"))
			},
			ErrMalformed,
		},
		{
			"unassignable post target",
			func(b *Builder) {
				post := b.PostArg(2, b.LocalAssign(2, "r", nil), b.Array(2, b.Self(2)))
				b.MultipleAssignment(2, nil, b.Nil(2), post)
			},
			ErrMalformed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			tt.build(b)
			if err := b.Err(); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if _, err := b.Script(b.Nil(3)); err == nil {
				t.Error("Script must fail once a construction error was recorded")
			}
		})
	}
}

func TestDeclareLocalsOrder(t *testing.T) {
	f := newMasgnFixture()
	inner := f.b.MultipleAssignment(1, f.targets("b", "c"), nil, nil)
	post := f.b.PostArg(1, f.lasgn("r"), f.targets("d"))
	// a, (b, c), *r, d = d, a
	right := f.b.Array(1, f.b.LocalAccess(1, "d"), f.b.LocalAccess(1, "a"))
	m := f.b.MultipleAssignment(1, f.b.Array(1, f.lasgn("a"), inner), right, post)

	u, err := f.b.Script(m)
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, v := range u.Scopes()[u.Root.Scope].Variables {
		names = append(names, v.Name)
	}
	if want := []string{"a", "b", "c", "r", "d"}; !reflect.DeepEqual(names, want) {
		t.Errorf("declaration order = %v, want %v", names, want)
	}

	readD := right.Body[0].(*LocalVariableAccess)
	if readD.Ref.Slot != 4 {
		t.Errorf("right side d read slot %d, want 4", readD.Ref.Slot)
	}
}

func TestMultipleAssignmentSexp(t *testing.T) {
	f := newMasgnFixture()

	tests := []struct {
		name string
		m    *MultipleAssignment
		want string
	}{
		{
			"plain",
			f.b.MultipleAssignment(1, f.targets("a", "b"), f.ints(1, 2), nil),
			`[:masgn, [:array, [:lasgn, :a], [:lasgn, :b]], [:array, [:lit, 1], [:lit, 2]]]`,
		},
		{
			"rest",
			f.b.MultipleAssignment(1, f.targets("a"), f.ints(1, 2), f.lasgn("r")),
			`[:masgn, [:array, [:lasgn, :a], [:splat, [:splat_assign, [:lasgn, :r]]]], [:array, [:lit, 1], [:lit, 2]]]`,
		},
		{
			"anonymous rest",
			f.b.MultipleAssignment(1, f.targets("a"), f.ints(1, 2), f.b.AnonymousSplat(1)),
			`[:masgn, [:array, [:lasgn, :a], [:splat, [:splat]]], [:array, [:lit, 1], [:lit, 2]]]`,
		},
		{
			"post targets",
			f.b.MultipleAssignment(1, f.targets("a"), f.ints(1, 2, 3), f.b.PostArg(1, f.lasgn("r"), f.targets("c"))),
			`[:masgn, [:array, [:lasgn, :a], [:splat, [:splat_assign, [:lasgn, :r]]], [:lasgn, :c]], [:array, [:lit, 1], [:lit, 2], [:lit, 3]]]`,
		},
		{
			"splat right side",
			f.b.MultipleAssignment(1, nil, f.b.Splat(1, f.b.LocalAccess(1, "x")), f.lasgn("r")),
			`[:masgn, [:array, [:splat, [:lasgn, :r]]], [:splat, [:lvar, :x]]]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(tt.m); got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}
