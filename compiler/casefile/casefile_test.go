package casefile

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/chazu/garnet/compiler"
)

const fence = "```"

func TestExtract_Basic(t *testing.T) {
	markdown := `# Locals

## Test: assignment
` + fence + `garnet-script
[:lasgn, :a, [:lit, 1]]
` + fence + `
` + fence + `sexp
[:lasgn, :a, [:lit, 1]]
` + fence + `

## Test: snippet call
` + fence + `garnet-snippet
[:call, nil, :work, nil]
` + fence + `
` + fence + `scopes
- {id: 0, kind: top, slots: 0}
` + fence

	cases, err := Extract([]byte(markdown))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 2)

	c1 := cases[0]
	be.Equal(t, c1.Name, "assignment")
	be.Equal(t, c1.Line, 3)
	be.Equal(t, c1.Input, "[:lasgn, :a, [:lit, 1]]")
	be.Equal(t, c1.InputType, InputScript)
	be.Equal(t, c1.Kind(), compiler.ScriptUnit)
	be.Equal(t, len(c1.Assertions), 1)
	be.Equal(t, c1.Assertions[0].Type, AssertSexp)
	be.Equal(t, c1.Assertions[0].Tree.String(), "[:lasgn, :a, [:lit, 1]]")

	c2 := cases[1]
	be.Equal(t, c2.Kind(), compiler.SnippetUnit)
	be.Equal(t, c2.Assertions[0].Type, AssertScopes)
	be.True(t, c2.Assertions[0].Tree == nil)
}

func TestExtract_Frames(t *testing.T) {
	markdown := `## Test: eval reads a frame local
` + fence + `garnet-eval
[:lvar, :x]
` + fence + `
` + fence + `frames
- locals: [x, y]
- dynamic: [z]
  for_eval: true
` + fence + `
` + fence + `refs
- {line: 1, name: x, site: read, storage: nested 1:0}
` + fence

	cases, err := Extract([]byte(markdown))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 1)
	c := cases[0]
	be.Equal(t, c.Kind(), compiler.EvalUnit)
	be.Equal(t, len(c.Frames), 2)
	be.Equal(t, c.Frames[0].Locals, []string{"x", "y"})
	be.Equal(t, c.Frames[1].Dynamic, []string{"z"})
	be.True(t, c.Frames[1].ForEval)
}

func TestExtract_UntaggedFencesAreCommentary(t *testing.T) {
	markdown := fence + `
free text outside a case
` + fence + `

## Test: with notes
` + fence + `garnet-script
[:nil]
` + fence + `
` + fence + `
notes inside a case
` + fence + `
` + fence + `error
nothing
` + fence

	cases, err := Extract([]byte(markdown))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 1)
	be.Equal(t, len(cases[0].Assertions), 1)
	be.Equal(t, cases[0].Assertions[0].Type, AssertError)
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     string
	}{
		{
			"fence outside a case",
			fence + "sexp\n[:nil]\n" + fence + "\n",
			"outside of a test case",
		},
		{
			"no input",
			"## Test: empty\n" + fence + "sexp\n[:nil]\n" + fence + "\n",
			"has no input fence",
		},
		{
			"no assertion",
			"## Test: lonely\n" + fence + "garnet-script\n[:nil]\n" + fence + "\n",
			"has no assertion fences",
		},
		{
			"two inputs",
			"## Test: twice\n" + fence + "garnet-script\n[:nil]\n" + fence + "\n" +
				fence + "garnet-script\n[:nil]\n" + fence + "\n",
			"multiple input fences",
		},
		{
			"unknown language",
			"## Test: odd\n" + fence + "garnet-script\n[:nil]\n" + fence + "\n" +
				fence + "ruby\nnil\n" + fence + "\n",
			"unknown fence language 'ruby'",
		},
		{
			"bad sexp",
			"## Test: broken\n" + fence + "garnet-script\n[:nil]\n" + fence + "\n" +
				fence + "sexp\n[:nil\n" + fence + "\n",
			"sexp assertion",
		},
		{
			"frames outside eval",
			"## Test: framed\n" + fence + "garnet-script\n[:nil]\n" + fence + "\n" +
				fence + "frames\n- locals: [x]\n" + fence + "\n" +
				fence + "sexp\n[:nil]\n" + fence + "\n",
			"not an eval case",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract([]byte(tt.markdown))
			be.Err(t, err, tt.want)
		})
	}
}
