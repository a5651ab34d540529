package reader

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/chazu/garnet/compiler"
	"github.com/chazu/garnet/compiler/sexp"
)

// Options controls how Build finishes a unit.
type Options struct {
	// Kind is used when the tree carries no unit wrapper.
	Kind compiler.ContainerKind
	// Transforms replaces the builder's enabled transforms when non-nil.
	Transforms []compiler.Transform
	// Frames describes the runtime frames visible to an eval unit.
	Frames []compiler.EvalFrame
	Logger commonlog.Logger
}

// Build reads raw and finishes it as a unit.
func Build(raw sexp.Value, opts Options) (*compiler.Unit, error) {
	var bopts []compiler.Option
	if opts.Transforms != nil {
		bopts = append(bopts, compiler.WithTransforms(opts.Transforms))
	}
	if opts.Logger != nil {
		bopts = append(bopts, compiler.WithLogger(opts.Logger))
	}
	b := compiler.NewBuilder(bopts...)

	kind, body := unwrapUnit(raw, opts.Kind)
	n, err := Read(b, body)
	if err != nil {
		return nil, fmt.Errorf("reader: %w", err)
	}

	switch kind {
	case compiler.SnippetUnit:
		return b.Snippet(n)
	case compiler.EvalUnit:
		return b.Eval(n, opts.Frames)
	}
	return b.Script(n)
}

// Parse reads the text form of a raw tree and builds it.
func Parse(text string, opts Options) (*compiler.Unit, error) {
	raw, err := sexp.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("reader: %w", err)
	}
	return Build(raw, opts)
}

// ParseKind maps a unit kind name to its ContainerKind.
func ParseKind(name string) (compiler.ContainerKind, error) {
	switch name {
	case "", "script":
		return compiler.ScriptUnit, nil
	case "snippet":
		return compiler.SnippetUnit, nil
	case "eval":
		return compiler.EvalUnit, nil
	}
	return 0, fmt.Errorf("unknown unit kind %q", name)
}

func unwrapUnit(raw sexp.Value, kind compiler.ContainerKind) (compiler.ContainerKind, sexp.Value) {
	l, ok := raw.(sexp.List)
	if !ok || len(l) != 2 {
		return kind, raw
	}
	switch sexp.Tag(l) {
	case "script":
		return compiler.ScriptUnit, l[1]
	case "snippet":
		return compiler.SnippetUnit, l[1]
	case "eval":
		return compiler.EvalUnit, l[1]
	}
	return kind, raw
}
