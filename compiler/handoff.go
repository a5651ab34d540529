package compiler

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/chazu/garnet/compiler/sexp"
)

var handoffEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("compiler: failed to create CBOR enc mode: %v", err))
	}
	handoffEncMode = em
}

// Handoff is everything the code generator needs from one finished unit:
// the canonical tree, the slot layout of every scope, and the storage
// chosen for every variable use.
type Handoff struct {
	Unit       uuid.UUID        `cbor:"1,keyasint"`
	Kind       ContainerKind    `cbor:"2,keyasint"`
	Tree       []byte           `cbor:"3,keyasint"` // canonical CBOR of the tree
	Scopes     []HandoffScope   `cbor:"4,keyasint"`
	References []HandoffRef     `cbor:"5,keyasint,omitempty"`
	Transforms []HandoffRewrite `cbor:"6,keyasint,omitempty"`
}

// HandoffScope is the storage layout of one scope. Locals holds the slot
// names in slot order; EvalNames lists the names this eval scope binds
// dynamically.
type HandoffScope struct {
	Kind      ScopeKind `cbor:"1,keyasint"`
	Parent    ScopeID   `cbor:"2,keyasint"`
	Line      int       `cbor:"3,keyasint"`
	Slots     int       `cbor:"4,keyasint"`
	Locals    []string  `cbor:"5,keyasint,omitempty"`
	EvalNames []string  `cbor:"6,keyasint,omitempty"`
}

// HandoffRef is the resolved storage for one variable use.
type HandoffRef struct {
	Line  int     `cbor:"1,keyasint"`
	Name  string  `cbor:"2,keyasint"`
	Scope ScopeID `cbor:"3,keyasint"`
	Site  Site    `cbor:"4,keyasint"`
	Kind  RefKind `cbor:"5,keyasint"`
	Slot  int     `cbor:"6,keyasint"`
	Depth int     `cbor:"7,keyasint"`
}

// HandoffRewrite records a send specialized by a transform.
type HandoffRewrite struct {
	Line      int    `cbor:"1,keyasint"`
	Name      string `cbor:"2,keyasint"`
	Transform string `cbor:"3,keyasint"`
	Operator  string `cbor:"4,keyasint,omitempty"`
	Original  string `cbor:"5,keyasint,omitempty"`
	Inline    bool   `cbor:"6,keyasint,omitempty"`
}

// Handoff collects the generator's view of the unit.
func (u *Unit) Handoff() (*Handoff, error) {
	tree, err := sexp.Marshal(ToSexp(u.Root))
	if err != nil {
		return nil, fmt.Errorf("compiler: encode tree: %w", err)
	}
	h := &Handoff{Unit: u.ID, Kind: u.Kind, Tree: tree}

	for _, info := range u.Scopes() {
		hs := HandoffScope{Kind: info.Kind, Parent: info.Parent, Line: info.Line, Slots: info.Slots}
		if info.Slots > 0 {
			hs.Locals = make([]string, info.Slots)
		}
		for _, v := range info.Variables {
			switch v.Kind {
			case LocalVariable:
				hs.Locals[v.Slot] = v.Name
			case EvalVariable:
				hs.EvalNames = append(hs.EvalNames, v.Name)
			}
		}
		h.Scopes = append(h.Scopes, hs)
	}

	for _, r := range u.refs {
		h.References = append(h.References, HandoffRef{
			Line:  r.Line,
			Name:  r.Name,
			Scope: r.Scope,
			Site:  r.Site,
			Kind:  r.Ref.Kind,
			Slot:  r.Ref.Slot,
			Depth: r.Ref.Depth,
		})
	}

	Walk(u.Root, func(n Node) bool {
		if s, ok := n.(*Send); ok && s.Special != nil {
			h.Transforms = append(h.Transforms, HandoffRewrite{
				Line:      s.Line(),
				Name:      s.Name,
				Transform: s.Special.Transform,
				Operator:  s.Special.Operator,
				Original:  s.Special.Original,
				Inline:    s.Special.InlineBlock,
			})
		}
		return true
	})
	return h, nil
}

// Canonical decodes the canonical tree carried by the hand-off.
func (h *Handoff) Canonical() (sexp.Value, error) {
	return sexp.Unmarshal(h.Tree)
}

// MarshalHandoff serializes a Handoff to canonical CBOR.
func MarshalHandoff(h *Handoff) ([]byte, error) {
	return handoffEncMode.Marshal(h)
}

// UnmarshalHandoff deserializes a Handoff from CBOR bytes.
func UnmarshalHandoff(data []byte) (*Handoff, error) {
	var h Handoff
	if err := cbor.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("compiler: unmarshal handoff: %w", err)
	}
	return &h, nil
}
