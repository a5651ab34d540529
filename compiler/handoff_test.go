package compiler

import (
	"testing"

	"github.com/chazu/garnet/compiler/sexp"
)

func handoffUnit(t *testing.T) *Unit {
	t.Helper()
	b := NewBuilder()
	read := b.LocalAccess(3, "a")
	inner, _ := attach(b, 3, "each", nil, b.Call(3, read, "+", b.Array(3, b.Number(3, 1))))
	params := b.FormalArguments(2, ParamList{Required: []Param{{Name: "a"}}, RestKind: NamedRest, Rest: "r"})
	def := b.Define(2, "m", params, inner)
	u, err := b.Script(b.Block(1, b.LocalAssign(1, "top", b.Nil(1)), def))
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestHandoff_Contents(t *testing.T) {
	u := handoffUnit(t)
	h, err := u.Handoff()
	if err != nil {
		t.Fatalf("Handoff: %v", err)
	}

	if h.Unit != u.ID || h.Kind != ScriptUnit {
		t.Errorf("unit header = %v %s", h.Unit, h.Kind)
	}
	if len(h.Scopes) != 3 {
		t.Fatalf("scopes = %d, want 3", len(h.Scopes))
	}
	if got := h.Scopes[0].Locals; len(got) != 1 || got[0] != "top" {
		t.Errorf("top locals = %v", got)
	}
	method := h.Scopes[1]
	if method.Kind != MethodScope || method.Slots != 2 || method.Locals[0] != "a" || method.Locals[1] != "r" {
		t.Errorf("method scope = %+v", method)
	}
	if block := h.Scopes[2]; block.Kind != BlockScope || block.Parent != 1 || block.Slots != 0 {
		t.Errorf("block scope = %+v", block)
	}

	var found bool
	for _, r := range h.References {
		if r.Name == "a" && r.Site == ReadSite {
			found = true
			if r.Kind != NestedRef || r.Depth != 1 || r.Slot != 0 || r.Line != 3 {
				t.Errorf("read of a = %+v", r)
			}
		}
	}
	if !found {
		t.Error("read of a missing from references")
	}

	if len(h.Transforms) != 1 || h.Transforms[0].Transform != "fast_math" || h.Transforms[0].Operator != "meta_send_op_plus" {
		t.Errorf("transforms = %+v", h.Transforms)
	}

	tree, err := h.Canonical()
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	if !sexp.Equal(tree, ToSexp(u.Root)) {
		t.Errorf("canonical tree = %s", tree)
	}
}

func TestHandoff_CBORRoundTrip(t *testing.T) {
	h, err := handoffUnit(t).Handoff()
	if err != nil {
		t.Fatal(err)
	}
	data, err := MarshalHandoff(h)
	if err != nil {
		t.Fatalf("MarshalHandoff: %v", err)
	}
	got, err := UnmarshalHandoff(data)
	if err != nil {
		t.Fatalf("UnmarshalHandoff: %v", err)
	}

	if got.Unit != h.Unit {
		t.Error("Unit mismatch")
	}
	if string(got.Tree) != string(h.Tree) {
		t.Error("Tree mismatch")
	}
	if len(got.Scopes) != len(h.Scopes) || len(got.References) != len(h.References) {
		t.Fatalf("got %d scopes, %d refs; want %d, %d", len(got.Scopes), len(got.References), len(h.Scopes), len(h.References))
	}
	for i := range h.References {
		if got.References[i] != h.References[i] {
			t.Errorf("reference %d: got %+v, want %+v", i, got.References[i], h.References[i])
		}
	}

	again, err := MarshalHandoff(got)
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != string(data) {
		t.Error("re-encoding a decoded hand-off must give identical bytes")
	}
}

func TestUnmarshalHandoff_Garbage(t *testing.T) {
	if _, err := UnmarshalHandoff([]byte{0xff, 0x00}); err == nil {
		t.Error("expected an error for malformed input")
	}
}
