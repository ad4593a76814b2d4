// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package types holds the wire-level data model of spec.md §3: vertices,
// Certificates of Availability (CoA), and the messages exchanged between
// validators.
package types

import (
	"encoding/binary"

	"github.com/luxfi/aether/aetherhash"
)

// ValidatorID is a validator's stable index in [0, n), also used as the bit
// index into signer bitmaps (spec.md §3: n ≤ 64).
type ValidatorID uint8

// Hash aliases the canonical 32-byte content digest.
type Hash = aetherhash.Hash

// Vertex is an immutable proposal: a round, its author, a reference to an
// external payload batch, and the ordinal positions of its certified
// parents in round-1 (spec.md §3).
type Vertex struct {
	Round         uint64
	Author        ValidatorID
	BatchHash     Hash
	ParentIndices []uint32
}

// canonicalEncoding returns the fixed-layout byte encoding whose hash is the
// vertex's identity. The layout is committed as version 1 of the wire
// format (spec.md §6): round (8B LE), author (1B), batch hash (32B),
// parent count (4B LE), then each parent index (4B LE). This is Aether's
// stand-in for the zero-copy archival format ("rkyv") of the distilled
// original — Go has no equivalent zero-copy archival crate in this corpus,
// so the canonical bytes are produced with a fixed-order encoding/binary
// sequence instead (see wire/frame.go and wire/messages.go for the full wire
// format).
func (v *Vertex) canonicalEncoding() []byte {
	buf := make([]byte, 8+1+aetherhash.Size+4+4*len(v.ParentIndices))
	off := 0
	binary.LittleEndian.PutUint64(buf[off:], v.Round)
	off += 8
	buf[off] = byte(v.Author)
	off++
	copy(buf[off:], v.BatchHash[:])
	off += aetherhash.Size
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(v.ParentIndices)))
	off += 4
	for _, idx := range v.ParentIndices {
		binary.LittleEndian.PutUint32(buf[off:], idx)
		off += 4
	}
	return buf
}

// Hash returns the vertex's identity: the hash of its canonical
// serialization (spec.md §3: "A vertex's identity = hash of its canonical
// byte serialization").
func (v *Vertex) Hash() Hash {
	return aetherhash.Sum(v.canonicalEncoding())
}

// PartialCoA maps signer ID to that signer's partial signature bytes over a
// vertex hash — the pre-quorum collector state of spec.md §3.
type PartialCoA map[ValidatorID][]byte

// AggregatedCoA is the O(1)-size Certificate of Availability: a vertex
// hash, a 48-byte BLS aggregate, and the bitmap of contributing signers
// (spec.md §3, §6: 32 + 48 + 8 = 88 bytes fixed).
type AggregatedCoA struct {
	VertexHash Hash
	AggSig     [48]byte
	Bitmap     uint64
}

// CertifiedVertex pairs a vertex with the CoA that certifies it.
type CertifiedVertex struct {
	Vertex Vertex
	CoA    AggregatedCoA
}

// SkipVote is one validator's vote to bypass a round whose anchor failed to
// certify within the round timeout (spec.md §9, §6, completed per
// SPEC_FULL §4). AnchorIndex is the wire-format's ordinal slot (spec.md §6:
// "SkipVote(round, anchor_index, signer, sig)"); it is reserved for a future
// anchor-candidate commitment and is 0 in this implementation, since no
// anchor exists yet for a round being skipped.
type SkipVote struct {
	Round       uint64
	AnchorIndex uint32
	SignerID    ValidatorID
	Sig         [48]byte
}

// SkipCert is a quorum of SkipVotes for the same round, sufficient to
// advance committed_round past a failed anchor without emitting vertices
// for that round.
type SkipCert struct {
	Round  uint64
	Votes  []SkipVote
	Bitmap uint64
}
