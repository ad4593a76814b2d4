// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/luxfi/aether/types"
)

// EncodeVertex serializes v as version 1's Vertex layout: round (8B LE),
// author (1B), batch hash (32B), parent count (4B LE), then each parent
// index (4B LE) — the same layout as the vertex's canonical hash input
// (types.Vertex.Hash), so a decoded vertex hashes identically to the one
// that was encoded.
func EncodeVertex(v types.Vertex) []byte {
	buf := make([]byte, 8+1+32+4+4*len(v.ParentIndices))
	off := 0
	binary.LittleEndian.PutUint64(buf[off:], v.Round)
	off += 8
	buf[off] = byte(v.Author)
	off++
	copy(buf[off:], v.BatchHash[:])
	off += 32
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(v.ParentIndices)))
	off += 4
	for _, idx := range v.ParentIndices {
		binary.LittleEndian.PutUint32(buf[off:], idx)
		off += 4
	}
	return buf
}

// DecodeVertex parses the layout written by EncodeVertex.
func DecodeVertex(buf []byte) (types.Vertex, error) {
	if len(buf) < 8+1+32+4 {
		return types.Vertex{}, fmt.Errorf("wire: vertex frame too short: %d bytes", len(buf))
	}
	off := 0
	round := binary.LittleEndian.Uint64(buf[off:])
	off += 8
	author := types.ValidatorID(buf[off])
	off++
	var batchHash types.Hash
	copy(batchHash[:], buf[off:off+32])
	off += 32
	count := binary.LittleEndian.Uint32(buf[off:])
	off += 4
	if len(buf) != off+4*int(count) {
		return types.Vertex{}, fmt.Errorf("wire: vertex frame declares %d parents, has %d bytes remaining", count, len(buf)-off)
	}
	parents := make([]uint32, count)
	for i := range parents {
		parents[i] = binary.LittleEndian.Uint32(buf[off:])
		off += 4
	}
	return types.Vertex{Round: round, Author: author, BatchHash: batchHash, ParentIndices: parents}, nil
}

// PartialCoAMessage is the wire form of one or more partial signatures over
// the same vertex hash, batched in a single frame (spec.md §6's CoA
// variant; original_source/src/types.rs's CoA.signatures is a Vec of pairs
// for the same reason — amortizing frame overhead across partials
// gathered since the last flush).
type PartialCoAMessage struct {
	VertexHash types.Hash
	Signers    []types.ValidatorID
	Sigs       [][]byte // each exactly 48 bytes
}

// EncodePartialCoA serializes msg as: vertex hash (32B), signer count (4B
// LE), then for each signer: signer id (1B) and its 48-byte signature.
func EncodePartialCoA(msg PartialCoAMessage) ([]byte, error) {
	if len(msg.Signers) != len(msg.Sigs) {
		return nil, fmt.Errorf("wire: %d signers but %d signatures", len(msg.Signers), len(msg.Sigs))
	}
	buf := make([]byte, 32+4+len(msg.Signers)*(1+48))
	off := 0
	copy(buf[off:], msg.VertexHash[:])
	off += 32
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(msg.Signers)))
	off += 4
	for i, signer := range msg.Signers {
		sig := msg.Sigs[i]
		if len(sig) != 48 {
			return nil, fmt.Errorf("wire: signature %d has %d bytes, want 48", i, len(sig))
		}
		buf[off] = byte(signer)
		off++
		copy(buf[off:], sig)
		off += 48
	}
	return buf, nil
}

// DecodePartialCoA parses the layout written by EncodePartialCoA.
func DecodePartialCoA(buf []byte) (PartialCoAMessage, error) {
	if len(buf) < 32+4 {
		return PartialCoAMessage{}, fmt.Errorf("wire: partial CoA frame too short: %d bytes", len(buf))
	}
	var msg PartialCoAMessage
	off := 0
	copy(msg.VertexHash[:], buf[off:off+32])
	off += 32
	count := binary.LittleEndian.Uint32(buf[off:])
	off += 4
	if len(buf) != off+int(count)*(1+48) {
		return PartialCoAMessage{}, fmt.Errorf("wire: partial CoA frame declares %d signers, size mismatch", count)
	}
	msg.Signers = make([]types.ValidatorID, count)
	msg.Sigs = make([][]byte, count)
	for i := 0; i < int(count); i++ {
		msg.Signers[i] = types.ValidatorID(buf[off])
		off++
		sig := make([]byte, 48)
		copy(sig, buf[off:off+48])
		msg.Sigs[i] = sig
		off += 48
	}
	return msg, nil
}

// EncodeAggregatedCoA serializes agg as: vertex hash (32B), aggregate
// signature (48B), signer bitmap (8B LE) — the fixed 88-byte layout of
// spec.md §6.
func EncodeAggregatedCoA(agg types.AggregatedCoA) []byte {
	buf := make([]byte, 32+48+8)
	off := 0
	copy(buf[off:], agg.VertexHash[:])
	off += 32
	copy(buf[off:], agg.AggSig[:])
	off += 48
	binary.LittleEndian.PutUint64(buf[off:], agg.Bitmap)
	return buf
}

// DecodeAggregatedCoA parses the layout written by EncodeAggregatedCoA.
func DecodeAggregatedCoA(buf []byte) (types.AggregatedCoA, error) {
	if len(buf) != 32+48+8 {
		return types.AggregatedCoA{}, fmt.Errorf("wire: aggregated CoA frame must be %d bytes, got %d", 32+48+8, len(buf))
	}
	var agg types.AggregatedCoA
	off := 0
	copy(agg.VertexHash[:], buf[off:off+32])
	off += 32
	copy(agg.AggSig[:], buf[off:off+48])
	off += 48
	agg.Bitmap = binary.LittleEndian.Uint64(buf[off:])
	return agg, nil
}

// EncodeSkipVote serializes vote as: round (8B LE), anchor index (4B LE),
// signer (1B), signature (48B) — matching the variant named in spec.md §6,
// "SkipVote(round, anchor_index, signer, sig)".
func EncodeSkipVote(vote types.SkipVote) []byte {
	buf := make([]byte, 8+4+1+48)
	off := 0
	binary.LittleEndian.PutUint64(buf[off:], vote.Round)
	off += 8
	binary.LittleEndian.PutUint32(buf[off:], vote.AnchorIndex)
	off += 4
	buf[off] = byte(vote.SignerID)
	off++
	copy(buf[off:], vote.Sig[:])
	return buf
}

// DecodeSkipVote parses the layout written by EncodeSkipVote.
func DecodeSkipVote(buf []byte) (types.SkipVote, error) {
	if len(buf) != 8+4+1+48 {
		return types.SkipVote{}, fmt.Errorf("wire: skip vote frame must be %d bytes, got %d", 8+4+1+48, len(buf))
	}
	var vote types.SkipVote
	off := 0
	vote.Round = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	vote.AnchorIndex = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	vote.SignerID = types.ValidatorID(buf[off])
	off++
	copy(vote.Sig[:], buf[off:off+48])
	return vote, nil
}
