package sexp

import (
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"
)

// SymbolTag is the CBOR tag number wrapping symbol text (RFC 8746 identifier).
const SymbolTag = 39

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("sexp: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes a tree to canonical CBOR. Equal trees always produce
// identical bytes.
func Marshal(v Value) ([]byte, error) {
	return cborEncMode.Marshal(ToInterface(v))
}

// Unmarshal decodes a tree produced by Marshal.
func Unmarshal(data []byte) (Value, error) {
	var raw interface{}
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("sexp: unmarshal: %w", err)
	}
	v, err := FromInterface(raw)
	if err != nil {
		return nil, fmt.Errorf("sexp: unmarshal: %w", err)
	}
	return v, nil
}

// ToInterface lowers a tree to plain Go values suitable for embedding in a
// larger CBOR document. Symbols become tagged strings.
func ToInterface(v Value) interface{} {
	switch x := v.(type) {
	case nil, NilValue:
		return nil
	case Sym:
		return cbor.Tag{Number: SymbolTag, Content: string(x)}
	case Str:
		return string(x)
	case Int:
		return int64(x)
	case Float:
		return float64(x)
	case Bool:
		return bool(x)
	case List:
		out := make([]interface{}, len(x))
		for i, item := range x {
			out[i] = ToInterface(item)
		}
		return out
	}
	panic(fmt.Sprintf("sexp: unknown value %T", v))
}

// FromInterface is the inverse of ToInterface over decoded CBOR data.
func FromInterface(raw interface{}) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Nil, nil
	case cbor.Tag:
		if x.Number != SymbolTag {
			return nil, fmt.Errorf("unexpected tag %d", x.Number)
		}
		s, ok := x.Content.(string)
		if !ok {
			return nil, fmt.Errorf("symbol content is %T", x.Content)
		}
		return Sym(s), nil
	case string:
		return Str(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d out of range", x)
		}
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case float64:
		return Float(x), nil
	case float32:
		return Float(float64(x)), nil
	case bool:
		return Bool(x), nil
	case []interface{}:
		out := make(List, len(x))
		for i, item := range x {
			v, err := FromInterface(item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("unexpected CBOR value %T", raw)
}
