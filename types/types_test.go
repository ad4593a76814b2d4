// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVertexHashDeterministic(t *testing.T) {
	v := Vertex{Round: 3, Author: 1, BatchHash: Hash{0xAB}, ParentIndices: []uint32{0, 1, 2}}
	require.Equal(t, v.Hash(), v.Hash())
}

func TestVertexHashDistinguishesFields(t *testing.T) {
	base := Vertex{Round: 3, Author: 1, BatchHash: Hash{0xAB}, ParentIndices: []uint32{0, 1, 2}}
	variants := []Vertex{
		{Round: 4, Author: 1, BatchHash: Hash{0xAB}, ParentIndices: []uint32{0, 1, 2}},
		{Round: 3, Author: 2, BatchHash: Hash{0xAB}, ParentIndices: []uint32{0, 1, 2}},
		{Round: 3, Author: 1, BatchHash: Hash{0xAC}, ParentIndices: []uint32{0, 1, 2}},
		{Round: 3, Author: 1, BatchHash: Hash{0xAB}, ParentIndices: []uint32{0, 1, 3}},
		{Round: 3, Author: 1, BatchHash: Hash{0xAB}, ParentIndices: []uint32{0, 1}},
	}
	baseHash := base.Hash()
	for i, v := range variants {
		require.NotEqual(t, baseHash, v.Hash(), "variant %d should hash differently", i)
	}
}

func TestVertexHashEmptyParents(t *testing.T) {
	v := Vertex{Round: 0, Author: 0, BatchHash: Hash{}}
	require.NotPanics(t, func() { v.Hash() })
}
