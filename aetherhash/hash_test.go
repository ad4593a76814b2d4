// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package aetherhash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSumDeterministic(t *testing.T) {
	a := Sum([]byte("hello"), []byte("world"))
	b := Sum([]byte("hello"), []byte("world"))
	require.Equal(t, a, b)
}

func TestSumDistinguishesInputs(t *testing.T) {
	a := Sum([]byte("hello"))
	b := Sum([]byte("hellp"))
	require.NotEqual(t, a, b)
}

func TestIsZero(t *testing.T) {
	var z Hash
	require.True(t, z.IsZero())
	require.False(t, Sum([]byte("x")).IsZero())
}

func TestCompare(t *testing.T) {
	a := Hash{0x01}
	b := Hash{0x02}
	require.Equal(t, -1, a.Compare(b))
	require.Equal(t, 1, b.Compare(a))
	require.Equal(t, 0, a.Compare(a))
}

func TestVRFSortKeyDeterministic(t *testing.T) {
	v := Sum([]byte("vertex"))
	s := Sum([]byte("seed"))
	k1 := VRFSortKey(v, s)
	k2 := VRFSortKey(v, s)
	require.Equal(t, k1, k2)

	other := VRFSortKey(v, Sum([]byte("different-seed")))
	require.NotEqual(t, k1, other)
}
