package hash

import (
	"crypto/sha256"

	"github.com/chazu/garnet/compiler"
	"github.com/chazu/garnet/compiler/sexp"
)

// HashUnit computes the SHA-256 content hash of a finished unit.
//
// The hash covers the canonical tree, the slot layout of every scope and
// the storage resolved for every variable use. Line numbers and the unit's
// random ID are not part of it, so the same source compiled twice, or
// reformatted without changing its structure, hashes identically.
func HashUnit(u *compiler.Unit) [32]byte {
	return sha256.Sum256(Serialize(u))
}

// HashTree hashes the canonical form of a tree alone.
func HashTree(n compiler.Node) [32]byte {
	return sha256.Sum256(SerializeValue(compiler.ToSexp(n)))
}

// HashValue hashes a canonical tree value.
func HashValue(v sexp.Value) [32]byte {
	return sha256.Sum256(SerializeValue(v))
}
