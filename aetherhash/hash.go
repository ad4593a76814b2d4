// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package aetherhash implements the cryptographic primitives of spec.md
// §4.4: content hashing, vertex identity hashing, and VRF-style sort-key
// derivation, all built on Blake3 (the teacher's own hash choice via
// github.com/zeebo/blake3).
package aetherhash

import (
	"github.com/zeebo/blake3"
)

// Size is the fixed digest length used throughout the DAG: a 32-byte
// collision-resistant content hash.
const Size = 32

// Hash is a fixed 32-byte content digest.
type Hash [Size]byte

// Bytes returns a copy of the underlying bytes.
func (h Hash) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, h[:])
	return b
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Compare returns -1, 0, or 1 in the usual lexicographic byte order; used
// to break ties between equal VRF sort keys, per spec.md §4.2.
func (h Hash) Compare(o Hash) int {
	for i := range h {
		if h[i] != o[i] {
			if h[i] < o[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Sum computes the 256-bit Blake3 digest of data.
func Sum(data ...[]byte) Hash {
	hasher := blake3.New()
	for _, d := range data {
		hasher.Write(d) //nolint:errcheck // hash.Hash.Write never errors
	}
	var out Hash
	copy(out[:], hasher.Sum(nil))
	return out
}

// VRFSortKey computes k(v) = H(vertexHash ‖ seed), the per-vertex sort key
// used to order vertices within an Aether-sort layer (spec.md §4.2/§4.3).
func VRFSortKey(vertexHash Hash, seed Hash) Hash {
	return Sum(vertexHash[:], seed[:])
}
