// Garnet CLI - builds compiler units from raw parse trees
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/garnet/cache"
	"github.com/chazu/garnet/compiler"
	"github.com/chazu/garnet/compiler/hash"
	"github.com/chazu/garnet/compiler/reader"
	"github.com/chazu/garnet/compiler/report"
	"github.com/chazu/garnet/compiler/sexp"
	"github.com/chazu/garnet/manifest"
)

var log = commonlog.GetLogger("garnet.cli")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	pretty bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("garnet", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbosity := fs.Int("v", 0, "Log verbosity (0 = errors only)")
	unit := fs.String("unit", "", "Unit kind for trees without a wrapper: script, snippet, eval")
	transforms := fs.String("transforms", "", "Comma separated transform categories, \"all\" or \"none\"")
	format := fs.String("format", "", "Output format: sexp, cbor, yaml")
	showHash := fs.Bool("hash", false, "Print the unit hash instead of the tree")
	scopes := fs.Bool("scopes", false, "Print the scope table after the tree")
	noCache := fs.Bool("no-cache", false, "Skip the unit cache")
	dir := fs.String("C", ".", "Look for garnet.toml starting in this directory")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: garnet [options] [files...]\n\n")
		fmt.Fprintf(stderr, "Reads raw parse trees and prints the built compiler unit.\n")
		fmt.Fprintf(stderr, "With no files, or with \"-\", the tree is read from stdin.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  garnet tree.sexp                    # Print the canonical tree\n")
		fmt.Fprintf(stderr, "  garnet -format yaml tree.sexp       # Print scopes and references\n")
		fmt.Fprintf(stderr, "  garnet -transforms none -hash t.sexp  # Hash without transforms\n")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	m, err := manifest.FindAndLoad(*dir)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if m == nil {
		m = manifest.Default()
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["v"] {
		m.Log.Verbosity = *verbosity
	}
	if set["unit"] {
		m.Compiler.Unit = *unit
	}
	if set["transforms"] {
		m.Compiler.Transforms = splitCategories(*transforms)
	}
	if set["format"] {
		m.Output.Format = *format
	}
	if set["scopes"] {
		m.Output.Scopes = *scopes
	}
	if *noCache {
		m.Cache.Enabled = false
	}

	var logFile *string
	if path := m.LogFile(); path != "" {
		logFile = &path
	}
	commonlog.Configure(m.Log.Verbosity, logFile)

	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	if f, ok := stdout.(*os.File); ok {
		c.pretty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	paths := fs.Args()
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	for _, path := range paths {
		if err := c.process(m, path, *showHash); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}

func splitCategories(s string) []string {
	if s == "" || s == "none" {
		return []string{}
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *cli) process(m *manifest.Manifest, path string, showHash bool) error {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(c.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	kind, err := m.UnitKind()
	if err != nil {
		return err
	}
	transforms, err := m.Transforms()
	if err != nil {
		return err
	}

	log.Infof("building %s as %s", path, kind)
	u, err := reader.Parse(string(data), reader.Options{
		Kind:       kind,
		Transforms: transforms,
		Frames:     m.Eval.Frames,
		Logger:     commonlog.GetLogger("garnet.compiler"),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if showHash {
		key := hash.HashUnit(u)
		_, err := fmt.Fprintf(c.stdout, "%s  %s\n", hex.EncodeToString(key[:]), path)
		return err
	}

	switch m.Output.Format {
	case manifest.FormatCBOR:
		h, err := c.handoff(m, u)
		if err != nil {
			return err
		}
		data, err := compiler.MarshalHandoff(h)
		if err != nil {
			return err
		}
		_, err = c.stdout.Write(data)
		return err

	case manifest.FormatYAML:
		r, err := report.New(u)
		if err != nil {
			return err
		}
		if !m.Output.Scopes {
			r.Scopes = nil
		}
		out, err := r.YAML()
		if err != nil {
			return err
		}
		_, err = c.stdout.Write(out)
		return err
	}

	tree := compiler.ToSexp(u.Root)
	if c.pretty {
		fmt.Fprintln(c.stdout, sexp.Pretty(tree, 80))
	} else {
		fmt.Fprintln(c.stdout, tree.String())
	}
	if m.Output.Scopes {
		c.printScopes(u)
	}
	return nil
}

// handoff returns the hand-off for u, served from the cache when a unit
// with the same content and lines was stored before.
func (c *cli) handoff(m *manifest.Manifest, u *compiler.Unit) (*compiler.Handoff, error) {
	if !m.Cache.Enabled {
		return u.Handoff()
	}
	store, err := cache.Open(m.CachePath())
	if err != nil {
		return nil, err
	}
	defer store.Close()

	h, err := store.Lookup(u)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		return nil, err
	}
	if _, err := store.Store(u); err != nil {
		return nil, err
	}
	return u.Handoff()
}

func (c *cli) printScopes(u *compiler.Unit) {
	for _, s := range u.Scopes() {
		var names []string
		for _, v := range s.Variables {
			names = append(names, v.Name)
		}
		fmt.Fprintf(c.stdout, "; scope %d %s parent=%d slots=%d vars=[%s]\n",
			s.ID, s.Kind, s.Parent, s.Slots, strings.Join(names, " "))
	}
}
