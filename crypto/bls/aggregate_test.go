// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bls

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// committee builds n keypairs for the worked n=4 example of spec.md §8 (S1-S5).
func committee(t *testing.T, n int) ([]*PrivateKey, []*PublicKey) {
	t.Helper()
	sks := make([]*PrivateKey, n)
	pks := make([]*PublicKey, n)
	for i := 0; i < n; i++ {
		sk, err := GenerateKey()
		require.NoError(t, err)
		sks[i] = sk
		pks[i] = sk.PublicKey()
	}
	return sks, pks
}

func TestAggregateAndVerifyBatchQuorum(t *testing.T) {
	// n=4, f=1, q=3 (spec.md §8 boundary behavior).
	sks, pks := committee(t, 4)
	msg := []byte("vertex hash")

	ctx := NewContext()
	partials := make([]Partial, 0, 3)
	for id := 0; id < 3; id++ {
		sig, err := sks[id].Sign(msg)
		require.NoError(t, err)
		partials = append(partials, Partial{SignerID: uint8(id), Sig: sig.Bytes()})
	}

	agg, bitmap, _, err := ctx.Aggregate(partials, 3)
	require.NoError(t, err)
	require.Equal(t, uint64(0b0111), bitmap)

	ok, _, err := ctx.VerifyBatch([]VerifyItem{{
		Msg:            msg,
		AggSig:         agg.Bytes(),
		PublicKeys:     pks,
		Bitmap:         bitmap,
		ExpectedQuorum: 3,
	}})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestAggregateInsufficientSignatures(t *testing.T) {
	sks, _ := committee(t, 4)
	msg := []byte("vertex hash")

	ctx := NewContext()
	sig, err := sks[0].Sign(msg)
	require.NoError(t, err)

	_, _, _, err = ctx.Aggregate([]Partial{{SignerID: 0, Sig: sig.Bytes()}}, 3)
	require.ErrorIs(t, err, ErrInsufficientSignatures)
}

func TestAggregateRejectsSignerOutOfRange(t *testing.T) {
	sks, _ := committee(t, 2)
	msg := []byte("x")
	sig0, err := sks[0].Sign(msg)
	require.NoError(t, err)
	sig1, err := sks[1].Sign(msg)
	require.NoError(t, err)

	ctx := NewContext()
	_, _, _, err = ctx.Aggregate([]Partial{
		{SignerID: 0, Sig: sig0.Bytes()},
		{SignerID: 64, Sig: sig1.Bytes()},
	}, 2)
	require.ErrorIs(t, err, ErrSignerOutOfRange)
}

func TestAggregateRejectsDuplicateSigner(t *testing.T) {
	sks, _ := committee(t, 2)
	msg := []byte("x")
	sig0, err := sks[0].Sign(msg)
	require.NoError(t, err)

	ctx := NewContext()
	_, _, _, err = ctx.Aggregate([]Partial{
		{SignerID: 0, Sig: sig0.Bytes()},
		{SignerID: 0, Sig: sig0.Bytes()},
	}, 1)
	require.ErrorIs(t, err, ErrDuplicateSigner)
}

func TestAggregateRejectsMalformedSignature(t *testing.T) {
	sks, _ := committee(t, 3)
	msg := []byte("x")
	sig0, err := sks[0].Sign(msg)
	require.NoError(t, err)
	sig1, err := sks[1].Sign(msg)
	require.NoError(t, err)

	garbage := make([]byte, SignatureSize)
	for i := range garbage {
		garbage[i] = 0xff
	}

	ctx := NewContext()
	_, _, _, err = ctx.Aggregate([]Partial{
		{SignerID: 0, Sig: sig0.Bytes()},
		{SignerID: 1, Sig: sig1.Bytes()},
		{SignerID: 2, Sig: garbage},
	}, 3)
	require.Error(t, err)
}

func TestVerifyBatchIsolatesForgedAggregate(t *testing.T) {
	// spec.md §8 S5: a batch of several aggregates with one bad entry
	// fails as a batch but each isolates correctly when re-verified alone.
	sks, pks := committee(t, 4)
	ctx := NewContext()

	goodMsg := []byte("good vertex")
	partials := make([]Partial, 0, 3)
	for id := 0; id < 3; id++ {
		sig, err := sks[id].Sign(goodMsg)
		require.NoError(t, err)
		partials = append(partials, Partial{SignerID: uint8(id), Sig: sig.Bytes()})
	}
	goodAgg, goodBitmap, _, err := ctx.Aggregate(partials, 3)
	require.NoError(t, err)

	// A second "aggregate" that is really just a single valid signature
	// reused as if it cleared quorum over an unrelated message — forged
	// from the verifier's point of view.
	forgedMsg := []byte("forged vertex")
	forgedSig, err := sks[0].Sign([]byte("something else entirely"))
	require.NoError(t, err)

	items := []VerifyItem{
		{Msg: goodMsg, AggSig: goodAgg.Bytes(), PublicKeys: pks, Bitmap: goodBitmap, ExpectedQuorum: 3},
		{Msg: forgedMsg, AggSig: forgedSig.Bytes(), PublicKeys: pks, Bitmap: goodBitmap, ExpectedQuorum: 3},
	}
	ok, _, err := ctx.VerifyBatch(items)
	require.NoError(t, err)
	require.False(t, ok, "batch containing a forged aggregate must fail as a whole")

	okGood, _, err := ctx.VerifyBatch(items[:1])
	require.NoError(t, err)
	require.True(t, okGood, "the good aggregate verifies in isolation")

	okForged, _, err := ctx.VerifyBatch(items[1:])
	require.NoError(t, err)
	require.False(t, okForged, "the forged aggregate fails in isolation too")
}

func TestVerifyBatchEmptyIsTriviallyTrue(t *testing.T) {
	ctx := NewContext()
	ok, _, err := ctx.VerifyBatch(nil)
	require.NoError(t, err)
	require.True(t, ok)
}
