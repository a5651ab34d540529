// Package manifest handles garnet.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/garnet/compiler"
)

// FileName is the manifest file looked up by Load and FindAndLoad.
const FileName = "garnet.toml"

// Manifest represents a garnet.toml project configuration.
type Manifest struct {
	Project  Project  `toml:"project"`
	Compiler Compiler `toml:"compiler"`
	Eval     Eval     `toml:"eval"`
	Cache    Cache    `toml:"cache"`
	Log      Log      `toml:"log"`
	Output   Output   `toml:"output"`

	// Dir is the directory containing the garnet.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Compiler configures how units are built.
type Compiler struct {
	// Transforms lists the enabled transform categories. "all" enables
	// every category and an empty list disables transforms.
	Transforms []string `toml:"transforms"`
	Unit       string   `toml:"unit"`
}

// Eval describes the runtime frames visible to eval units.
type Eval struct {
	Frames []compiler.EvalFrame `toml:"frames"`
}

// Cache configures the unit cache.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Log configures logging.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Output configures what the CLI prints.
type Output struct {
	Format string `toml:"format"`
	Scopes bool   `toml:"scopes"`
}

// Output formats.
const (
	FormatSexp = "sexp"
	FormatCBOR = "cbor"
	FormatYAML = "yaml"
)

const defaultCachePath = ".garnet/cache.db"

// Default returns the configuration used when no garnet.toml exists.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults(nil)
	if wd, err := os.Getwd(); err == nil {
		m.Dir = wd
	}
	return m
}

// Load parses a garnet.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	meta, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse error in %s: unknown key %s", path, undecoded[0])
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults(&meta)
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a garnet.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

func (m *Manifest) applyDefaults(meta *toml.MetaData) {
	// An explicit empty list turns transforms off, so only a missing key
	// gets the default category.
	if meta == nil || !meta.IsDefined("compiler", "transforms") {
		m.Compiler.Transforms = []string{"default"}
	}
	if m.Compiler.Unit == "" {
		m.Compiler.Unit = "script"
	}
	if m.Output.Format == "" {
		m.Output.Format = FormatSexp
	}
	if m.Cache.Path == "" {
		m.Cache.Path = defaultCachePath
	}
}

func (m *Manifest) validate() error {
	if _, err := m.UnitKind(); err != nil {
		return err
	}
	switch m.Output.Format {
	case FormatSexp, FormatCBOR, FormatYAML:
	default:
		return fmt.Errorf("unknown output format %q", m.Output.Format)
	}
	if _, err := m.Transforms(); err != nil {
		return err
	}
	if len(m.Eval.Frames) > 0 && m.Compiler.Unit != "eval" {
		return fmt.Errorf("eval frames given for a %s unit", m.Compiler.Unit)
	}
	return nil
}

// Transforms returns the enabled transforms. The result is non-nil even
// when empty, so a builder given it runs with no transforms at all.
func (m *Manifest) Transforms() ([]compiler.Transform, error) {
	if len(m.Compiler.Transforms) == 0 {
		return []compiler.Transform{}, nil
	}
	return compiler.TransformsFor(m.Compiler.Transforms...)
}

// UnitKind returns the unit kind built for trees without a unit wrapper.
func (m *Manifest) UnitKind() (compiler.ContainerKind, error) {
	switch m.Compiler.Unit {
	case "", "script":
		return compiler.ScriptUnit, nil
	case "snippet":
		return compiler.SnippetUnit, nil
	case "eval":
		return compiler.EvalUnit, nil
	}
	return 0, fmt.Errorf("unknown unit kind %q", m.Compiler.Unit)
}

// CachePath returns the absolute path of the unit cache database.
func (m *Manifest) CachePath() string {
	return m.resolve(m.Cache.Path)
}

// LogFile returns the absolute path of the log file, or "" for stderr.
func (m *Manifest) LogFile() string {
	if m.Log.File == "" {
		return ""
	}
	return m.resolve(m.Log.File)
}

func (m *Manifest) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.Dir, path)
}
