package hash

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/chazu/garnet/compiler"
	"github.com/chazu/garnet/compiler/sexp"
)

// ---------------------------------------------------------------------------
// Deterministic binary serialization of canonical trees and scope tables.
//
// Encoding conventions:
//   - First byte: HashVersion (0x01)
//   - Integers: big-endian fixed-width (int64=8B, uint32=4B)
//   - Slots, depths, scope ids: int64
//   - Floats: IEEE 754 big-endian 8B
//   - Strings: uint32 big-endian length + UTF-8 bytes
//   - Booleans: single byte (0/1)
//   - Lists: uint32 element count, then the elements inline (flat)
// ---------------------------------------------------------------------------

// Serialize produces a deterministic byte serialization of a finished
// unit: its kind, its canonical tree, its scopes and its references.
// Local and nested references are written as (depth, slot) pairs only;
// names appear only where storage is looked up by name.
func Serialize(u *compiler.Unit) []byte {
	s := &serializer{buf: make([]byte, 0, 512)}
	s.writeByte(HashVersion)
	s.writeByte(TagUnit)
	s.writeByte(byte(u.Kind))
	s.serializeValue(compiler.ToSexp(u.Root))

	scopes := u.Scopes()
	s.writeByte(TagScopeTable)
	s.writeUint32(uint32(len(scopes)))
	for _, sc := range scopes {
		s.serializeScope(sc)
	}

	refs := u.References()
	s.writeByte(TagReferenceTable)
	s.writeUint32(uint32(len(refs)))
	for _, r := range refs {
		s.serializeReference(r)
	}
	return s.buf
}

// SerializeValue produces a deterministic byte serialization of a
// canonical tree value.
func SerializeValue(v sexp.Value) []byte {
	s := &serializer{buf: make([]byte, 0, 256)}
	s.writeByte(HashVersion)
	s.serializeValue(v)
	return s.buf
}

type serializer struct {
	buf []byte
}

func (s *serializer) writeByte(b byte) {
	s.buf = append(s.buf, b)
}

func (s *serializer) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeInt64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeFloat64(v float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeString(v string) {
	s.writeUint32(uint32(len(v)))
	s.buf = append(s.buf, v...)
}

func (s *serializer) writeInt(v int) {
	s.writeInt64(int64(v))
}

func (s *serializer) serializeValue(v sexp.Value) {
	switch x := v.(type) {
	case nil, sexp.NilValue:
		s.writeByte(TagNil)

	case sexp.Sym:
		s.writeByte(TagSymbol)
		s.writeString(string(x))

	case sexp.Str:
		s.writeByte(TagString)
		s.writeString(string(x))

	case sexp.Int:
		s.writeByte(TagInt)
		s.writeInt64(int64(x))

	case sexp.Float:
		s.writeByte(TagFloat)
		s.writeFloat64(float64(x))

	case sexp.Bool:
		s.writeByte(TagBool)
		if x {
			s.writeByte(1)
		} else {
			s.writeByte(0)
		}

	case sexp.List:
		s.writeByte(TagList)
		s.writeUint32(uint32(len(x)))
		for _, item := range x {
			s.serializeValue(item)
		}

	default:
		panic(fmt.Sprintf("hash: unknown tree value %T", v))
	}
}

func (s *serializer) serializeScope(sc compiler.ScopeInfo) {
	s.writeByte(TagScope)
	s.writeByte(byte(sc.Kind))
	s.writeInt(int(sc.Parent))
	s.writeInt(sc.Slots)
	s.writeUint32(uint32(len(sc.Variables)))
	for _, v := range sc.Variables {
		s.writeByte(byte(v.Kind))
		s.writeString(v.Name)
		s.writeInt(v.Slot)
		s.writeInt(v.Depth)
	}
}

func (s *serializer) serializeReference(r compiler.Resolution) {
	switch r.Ref.Kind {
	case compiler.LocalRef:
		s.writeByte(TagLocalRef)
		s.writeInt(r.Ref.Slot)
	case compiler.NestedRef:
		s.writeByte(TagNestedRef)
		s.writeInt(r.Ref.Depth)
		s.writeInt(r.Ref.Slot)
	case compiler.EvalRef:
		s.writeByte(TagEvalRef)
		s.writeString(r.Ref.Name)
	}
	s.writeByte(byte(r.Site))
	s.writeInt(int(r.Scope))
}
