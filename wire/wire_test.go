// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/aether/types"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("hello vertex")
	require.NoError(t, WriteFrame(&buf, TagVertex, payload))

	tag, got, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, TagVertex, tag)
	require.Equal(t, payload, got)
}

func TestFrameRoundTripEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, TagAggregatedCoA, nil))

	tag, got, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, TagAggregatedCoA, tag)
	require.Empty(t, got)
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	var header [4]byte
	header[3] = 0xff // length field far beyond MaxFrameSize
	buf.Write(header[:])
	_, _, err := ReadFrame(&buf)
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestReadFrameRejectsTruncatedStream(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, TagVertex, []byte("a full payload")))
	truncated := buf.Bytes()[:6]
	_, _, err := ReadFrame(bytes.NewReader(truncated))
	require.Error(t, err)
}

func TestVertexEncodeDecodeRoundTrip(t *testing.T) {
	v := types.Vertex{Round: 7, Author: 3, BatchHash: types.Hash{0xAB, 0xCD}, ParentIndices: []uint32{1, 2, 3}}
	decoded, err := DecodeVertex(EncodeVertex(v))
	require.NoError(t, err)
	require.Equal(t, v, decoded)
	require.Equal(t, v.Hash(), decoded.Hash())
}

func TestVertexEncodeDecodeRoundTripGenesis(t *testing.T) {
	v := types.Vertex{Round: 0, Author: 0, BatchHash: types.Hash{0x01}}
	decoded, err := DecodeVertex(EncodeVertex(v))
	require.NoError(t, err)
	require.Equal(t, v.Round, decoded.Round)
	require.Equal(t, v.Author, decoded.Author)
	require.Empty(t, decoded.ParentIndices)
}

func TestPartialCoAEncodeDecodeRoundTrip(t *testing.T) {
	sig := make([]byte, 48)
	sig[0] = 0x42
	msg := PartialCoAMessage{
		VertexHash: types.Hash{0x01, 0x02},
		Signers:    []types.ValidatorID{0, 2},
		Sigs:       [][]byte{sig, sig},
	}
	buf, err := EncodePartialCoA(msg)
	require.NoError(t, err)

	decoded, err := DecodePartialCoA(buf)
	require.NoError(t, err)
	require.Equal(t, msg.VertexHash, decoded.VertexHash)
	require.Equal(t, msg.Signers, decoded.Signers)
	require.Equal(t, msg.Sigs, decoded.Sigs)
}

func TestPartialCoARejectsMismatchedLengths(t *testing.T) {
	_, err := EncodePartialCoA(PartialCoAMessage{
		Signers: []types.ValidatorID{0, 1},
		Sigs:    [][]byte{make([]byte, 48)},
	})
	require.Error(t, err)
}

func TestAggregatedCoAEncodeDecodeRoundTrip(t *testing.T) {
	agg := types.AggregatedCoA{VertexHash: types.Hash{0x09}, AggSig: [48]byte{0x01, 0x02}, Bitmap: 0b0111}
	decoded, err := DecodeAggregatedCoA(EncodeAggregatedCoA(agg))
	require.NoError(t, err)
	require.Equal(t, agg, decoded)
}

func TestSkipVoteEncodeDecodeRoundTrip(t *testing.T) {
	vote := types.SkipVote{Round: 42, AnchorIndex: 0, SignerID: 3, Sig: [48]byte{0xAA}}
	decoded, err := DecodeSkipVote(EncodeSkipVote(vote))
	require.NoError(t, err)
	require.Equal(t, vote, decoded)
}
