// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bls

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	sk, err := GenerateKey()
	require.NoError(t, err)
	pk := sk.PublicKey()

	msg := []byte("vertex hash bytes")
	sig, err := sk.Sign(msg)
	require.NoError(t, err)
	require.True(t, pk.Verify(sig, msg))
}

func TestVerifyRejectsWrongMessage(t *testing.T) {
	sk, err := GenerateKey()
	require.NoError(t, err)
	pk := sk.PublicKey()

	sig, err := sk.Sign([]byte("message A"))
	require.NoError(t, err)
	require.False(t, pk.Verify(sig, []byte("message B")))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	sk1, err := GenerateKey()
	require.NoError(t, err)
	sk2, err := GenerateKey()
	require.NoError(t, err)

	msg := []byte("some message")
	sig, err := sk1.Sign(msg)
	require.NoError(t, err)
	require.False(t, sk2.PublicKey().Verify(sig, msg))
}

func TestPublicKeyBytesRoundTrip(t *testing.T) {
	sk, err := GenerateKey()
	require.NoError(t, err)
	pk := sk.PublicKey()

	decoded, err := PublicKeyFromBytes(pk.Bytes())
	require.NoError(t, err)
	require.True(t, pk.Equal(decoded))
}

func TestSignatureBytesRoundTrip(t *testing.T) {
	sk, err := GenerateKey()
	require.NoError(t, err)
	sig, err := sk.Sign([]byte("msg"))
	require.NoError(t, err)

	decoded, err := SignatureFromBytes(sig.Bytes())
	require.NoError(t, err)
	require.Equal(t, sig.Bytes(), decoded.Bytes())
}

func TestPublicKeyFromBytesRejectsGarbage(t *testing.T) {
	garbage := make([]byte, PublicKeySize)
	for i := range garbage {
		garbage[i] = 0xff
	}
	_, err := PublicKeyFromBytes(garbage)
	require.Error(t, err)
}
