package sexp

import (
	"bytes"
	"testing"
)

func TestStringRendering(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Sym("lasgn"), ":lasgn"},
		{Sym("*rest"), `:"*rest"`},
		{Sym("*"), ":*"},
		{Sym("&blk"), `:"&blk"`},
		{Sym("@ivar"), ":@ivar"},
		{Sym("@@cvar"), ":@@cvar"},
		{Sym("$!"), ":$!"},
		{Sym("$stdout"), ":$stdout"},
		{Sym("empty?"), ":empty?"},
		{Sym("x="), ":x="},
		{Sym("[]="), `:"[]="`},
		{Sym("==="), ":==="},
		{Sym("@x="), `:"@x="`},
		{Str("a\"b\n"), `"a\"b\n"`},
		{Int(-42), "-42"},
		{Float(3), "3.0"},
		{Float(1.5), "1.5"},
		{Nil, "nil"},
		{Bool(true), "true"},
		{L(Sym("call"), Nil, Sym("foo"), L(Sym("arglist"))), "[:call, nil, :foo, [:arglist]]"},
		{List{}, "[]"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	inputs := []string{
		`[:call, nil, :foo, [:arglist]]`,
		`[:args, :a, :"*rest", :c, :"&blk", [:block, [:lasgn, :b, [:lit, 1]]]]`,
		`[:str, "hello \"world\""]`,
		`[:lit, -1.25]`,
		`[:masgn, [:array, [:lasgn, :a], [:splat, [:lasgn, :b]]], [:array, [:lit, 1], [:lit, 2]]]`,
		`[:gvar, :$!]`,
		`[:true, false, nil]`,
		`[:call, [:lvar, :a], :==, [:arglist, [:lit, 1]]]`,
	}
	for _, in := range inputs {
		v, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got := v.String(); got != in {
			t.Errorf("round trip = %s, want %s", got, in)
		}
	}
}

func TestParseOptionalCommasAndComments(t *testing.T) {
	v, err := Parse("[:block # statements\n  [:lit 1]\n  [:lit 2]]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := L(Sym("block"), L(Sym("lit"), Int(1)), L(Sym("lit"), Int(2)))
	if !Equal(v, want) {
		t.Errorf("got %s, want %s", v, want)
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		`[:call`,
		`[:lit, 1]]`,
		`[:str, "unterminated]`,
		`[bogus]`,
		``,
	}
	for _, in := range bad {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", in)
		}
	}
}

func TestTagAndEqual(t *testing.T) {
	v := MustParse(`[:iter, [:call, nil, :each, nil], nil, [:nil]]`)
	if Tag(v) != "iter" {
		t.Errorf("Tag = %q, want iter", Tag(v))
	}
	if Tag(Int(1)) != "" {
		t.Error("Tag of atom should be empty")
	}
	if Equal(Sym("a"), Str("a")) {
		t.Error("symbol and string with same text should differ")
	}
	if !Equal(nil, Nil) {
		t.Error("Go nil and Nil should be equal")
	}
}

func TestWireRoundTrip(t *testing.T) {
	v := MustParse(`[:script, [:lasgn, :a, [:lit, 1.5]], [:str, "s"], [:lit, -7], [:lit, 18446744073], nil, true]`)
	data, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !Equal(got, v) {
		t.Errorf("wire round trip = %s, want %s", got, v)
	}

	again, err := Marshal(got)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("canonical encoding is not stable")
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := Unmarshal([]byte{0xff, 0x00}); err == nil {
		t.Error("expected error for invalid CBOR")
	}
}

func TestPretty(t *testing.T) {
	v := MustParse(`[:block, [:lasgn, :alpha, [:lit, 1]], [:lasgn, :beta, [:lit, 2]]]`)
	got := Pretty(v, 30)
	want := "[:block,\n [:lasgn, :alpha, [:lit, 1]],\n [:lasgn, :beta, [:lit, 2]]]"
	if got != want {
		t.Errorf("Pretty =\n%s\nwant\n%s", got, want)
	}
	if short := Pretty(Sym("x"), 10); short != ":x" {
		t.Errorf("Pretty atom = %s", short)
	}
}
