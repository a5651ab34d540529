// Package report describes a finished unit in a form meant for people:
// its scopes, the storage picked for each variable use and the calls
// rewritten by transforms.
package report

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/chazu/garnet/compiler"
	"github.com/chazu/garnet/compiler/hash"
)

// Report is the scope report of one unit.
type Report struct {
	Unit       string      `yaml:"unit"`
	Kind       string      `yaml:"kind"`
	Hash       string      `yaml:"hash"`
	Scopes     []Scope     `yaml:"scopes"`
	References []Reference `yaml:"references,omitempty"`
	Transforms []Rewrite   `yaml:"transforms,omitempty"`
}

// Scope is one scope of the unit. Parent is absent for the outermost one.
type Scope struct {
	ID     int      `yaml:"id"`
	Kind   string   `yaml:"kind"`
	Parent *int     `yaml:"parent,omitempty"`
	Slots  int      `yaml:"slots"`
	Locals []string `yaml:"locals,omitempty,flow"`
	Eval   []string `yaml:"eval,omitempty,flow"`
}

// Reference is one resolved variable use.
type Reference struct {
	Line    int    `yaml:"line"`
	Name    string `yaml:"name"`
	Site    string `yaml:"site"`
	Storage string `yaml:"storage"`
}

// Rewrite is one call specialized by a transform.
type Rewrite struct {
	Line      int    `yaml:"line"`
	Name      string `yaml:"name"`
	Transform string `yaml:"transform"`
}

// New builds the report for u.
func New(u *compiler.Unit) (*Report, error) {
	h, err := u.Handoff()
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	sum := hash.HashUnit(u)
	r := &Report{
		Unit: h.Unit.String(),
		Kind: h.Kind.String(),
		Hash: hex.EncodeToString(sum[:]),
	}
	for i, s := range h.Scopes {
		sc := Scope{ID: i, Kind: s.Kind.String(), Slots: s.Slots, Locals: s.Locals, Eval: s.EvalNames}
		if s.Parent != compiler.NoScope {
			p := int(s.Parent)
			sc.Parent = &p
		}
		r.Scopes = append(r.Scopes, sc)
	}
	for _, ref := range h.References {
		storage := compiler.Reference{Kind: ref.Kind, Name: ref.Name, Slot: ref.Slot, Depth: ref.Depth}
		r.References = append(r.References, Reference{
			Line:    ref.Line,
			Name:    ref.Name,
			Site:    ref.Site.String(),
			Storage: storage.String(),
		})
	}
	for _, t := range h.Transforms {
		r.Transforms = append(r.Transforms, Rewrite{Line: t.Line, Name: t.Name, Transform: t.Transform})
	}
	return r, nil
}

// YAML renders the report.
func (r *Report) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("report: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("report: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeScopes reads a scope list written in the report's YAML form.
func DecodeScopes(data []byte) ([]Scope, error) {
	var out []Scope
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("report: decode scopes: %w", err)
	}
	return out, nil
}

// DecodeReferences reads a reference list written in the report's YAML
// form.
func DecodeReferences(data []byte) ([]Reference, error) {
	var out []Reference
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("report: decode references: %w", err)
	}
	return out, nil
}
