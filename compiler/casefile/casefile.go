// Package casefile extracts compiler test cases from Markdown documents.
//
// A case starts at a heading "Test: name". It holds one input fence with
// the raw parse tree and one or more assertion fences:
//
//	## Test: nested block read
//	```garnet-script
//	[:block, [:lasgn, :a, [:lit, 1]], [:iter, [:call, nil, :each, [:arglist]], nil, [:lvar, :a]]]
//	```
//	```refs
//	- {line: 1, name: a, site: write, storage: local 0}
//	- {line: 1, name: a, site: read, storage: nested 1:0}
//	```
//
// Eval cases may add a frames fence describing the visible runtime frames.
package casefile

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/chazu/garnet/compiler"
	"github.com/chazu/garnet/compiler/sexp"
)

// InputType is the language of an input fence.
type InputType string

const (
	InputScript  InputType = "garnet-script"
	InputSnippet InputType = "garnet-snippet"
	InputEval    InputType = "garnet-eval"
)

// AssertionType is the language of an assertion fence.
type AssertionType string

const (
	AssertSexp   AssertionType = "sexp"   // canonical tree of the unit body
	AssertScopes AssertionType = "scopes" // scope table, report YAML form
	AssertRefs   AssertionType = "refs"   // resolved references, report YAML form
	AssertError  AssertionType = "error"  // expected error message fragment
)

const framesFence = "frames"

// Assertion is one assertion fence.
type Assertion struct {
	Type    AssertionType
	Content string
	Line    int
	Tree    sexp.Value // parsed content of a sexp assertion
}

// Case is one test case.
type Case struct {
	Name       string
	Line       int
	Input      string
	InputType  InputType
	Frames     []compiler.EvalFrame
	Assertions []Assertion
}

// Kind is the unit kind the input fence asks for.
func (c *Case) Kind() compiler.ContainerKind {
	switch c.InputType {
	case InputSnippet:
		return compiler.SnippetUnit
	case InputEval:
		return compiler.EvalUnit
	}
	return compiler.ScriptUnit
}

// Extract parses a Markdown document and returns its cases in order.
func Extract(markdown []byte) ([]Case, error) {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(markdown))

	var cases []Case
	var current *Case

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, markdown)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkContinue, nil
			}
			if current != nil {
				if err := validate(current); err != nil {
					return ast.WalkStop, err
				}
				cases = append(cases, *current)
			}
			current = &Case{Name: strings.TrimPrefix(heading, "Test: "), Line: lineOf(n, markdown)}

		case *ast.FencedCodeBlock:
			language := string(n.Language(markdown))
			content := strings.TrimRight(blockContent(n, markdown), "\n")
			line := lineOf(n, markdown)

			if current == nil {
				if language != "" {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence outside of a test case", line, language)
				}
				return ast.WalkContinue, nil
			}

			switch {
			case language == "":
				// untagged fences are commentary
			case isInput(language):
				if current.Input != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple input fences in test '%s'", line, current.Name)
				}
				current.Input = content
				current.InputType = InputType(language)
			case language == framesFence:
				if err := yaml.Unmarshal([]byte(content), &current.Frames); err != nil {
					return ast.WalkStop, fmt.Errorf("line %d: frames in test '%s': %w", line, current.Name, err)
				}
			case isAssertion(language):
				a := Assertion{Type: AssertionType(language), Content: content, Line: line}
				if a.Type == AssertSexp {
					tree, err := sexp.Parse(content)
					if err != nil {
						return ast.WalkStop, fmt.Errorf("line %d: sexp assertion in test '%s': %w", line, current.Name, err)
					}
					a.Tree = tree
				}
				current.Assertions = append(current.Assertions, a)
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", line, language, current.Name)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("casefile: %w", err)
	}

	if current != nil {
		if err := validate(current); err != nil {
			return nil, fmt.Errorf("casefile: %w", err)
		}
		cases = append(cases, *current)
	}
	return cases, nil
}

func isInput(language string) bool {
	switch InputType(language) {
	case InputScript, InputSnippet, InputEval:
		return true
	}
	return false
}

func isAssertion(language string) bool {
	switch AssertionType(language) {
	case AssertSexp, AssertScopes, AssertRefs, AssertError:
		return true
	}
	return false
}

func validate(c *Case) error {
	if c.Input == "" {
		return fmt.Errorf("test '%s' has no input fence", c.Name)
	}
	if len(c.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", c.Name)
	}
	if len(c.Frames) > 0 && c.InputType != InputEval {
		return fmt.Errorf("test '%s' has frames but is not an eval case", c.Name)
	}
	return nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func blockContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

// lineOf returns the 1-based source line of a node's first segment.
func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	return bytes.Count(source[:start], []byte("\n")) + 1
}
