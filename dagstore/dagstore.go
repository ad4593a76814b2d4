// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dagstore holds certified vertices and their Certificates of
// Availability, validates parenthood, and linearizes the certified DAG via
// Aether-sort (spec.md §4.2).
package dagstore

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/luxfi/aether/aetherhash"
	"github.com/luxfi/aether/types"
	"github.com/luxfi/aether/utils/set"
)

var (
	// ErrVertexMismatch is returned when a hash already maps to a
	// byte-different vertex (a hash must uniquely determine its bytes).
	ErrVertexMismatch = errors.New("dagstore: vertex hash collides with a different vertex")
	// ErrParentNotCertified is returned when insert_certified is called
	// for a vertex whose parents are not all certified in round−1.
	ErrParentNotCertified = errors.New("dagstore: parent not certified in round-1")
	// ErrAnchorNotCertified is returned when Aether-sort is asked to
	// traverse from an uncertified anchor.
	ErrAnchorNotCertified = errors.New("dagstore: anchor is not certified")
	// ErrCausalHole is returned when a certified vertex's parent index is
	// out of range of the round's certified list at traversal time.
	ErrCausalHole = errors.New("dagstore: parent index out of range — causal hole")
)

// Store is the append-only certified-DAG state of spec.md §3:
// vertices, certs, round_to_vertices, and committed_round. All mutation is
// expected to be serialized within the owning consensus task (spec.md §5);
// the mutex here guards the rare case of an external read (metrics, a
// snapshot for aether_sort) racing a write from that task.
type Store struct {
	mu sync.RWMutex

	n int
	f int

	vertices        map[types.Hash]types.Vertex
	certs           map[types.Hash]types.AggregatedCoA
	roundToVertices map[uint64][]types.Hash
	committedRound  uint64
}

// New returns an empty store for a committee of size n with Byzantine
// tolerance f = ⌊(n−1)/3⌋.
func New(n, f int) *Store {
	return &Store{
		n:               n,
		f:               f,
		vertices:        make(map[types.Hash]types.Vertex),
		certs:           make(map[types.Hash]types.AggregatedCoA),
		roundToVertices: make(map[uint64][]types.Hash),
	}
}

// CommittedRound returns the highest round whose anchor has been
// linearized.
func (s *Store) CommittedRound() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committedRound
}

// Vertex returns the vertex for hash h, if known.
func (s *Store) Vertex(h types.Hash) (types.Vertex, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vertices[h]
	return v, ok
}

// IsCertified reports whether h has a stored CoA.
func (s *Store) IsCertified(h types.Hash) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.certs[h]
	return ok
}

// CertifiedInRound returns the ordered list of certified vertex hashes for
// round r, in order of certification on this node (spec.md §9: "order of
// first certification on this node").
func (s *Store) CertifiedInRound(r uint64) []types.Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.roundToVertices[r]
	out := make([]types.Hash, len(list))
	copy(out, list)
	return out
}

// PutVertex records vertex bytes before certification (the Pending state of
// spec.md §4.3's state table). It is a no-op if the hash is already known
// with identical bytes, and an error if the hash collides with a different
// vertex.
func (s *Store) PutVertex(v types.Vertex) (types.Hash, error) {
	h := v.Hash()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.vertices[h]; ok {
		if !sameVertex(existing, v) {
			return h, ErrVertexMismatch
		}
		return h, nil
	}
	s.vertices[h] = v
	return h, nil
}

// ValidateParents reports whether parentHashes are a valid parent set for
// vertex v: exactly n−f entries, each resolving to a vertex certified in
// round v.Round−1, with n−f distinct authors (spec.md §4.2, invariant 5).
func (s *Store) ValidateParents(v types.Vertex, parentHashes []types.Hash) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := s.n - s.f
	if len(parentHashes) != want {
		return false
	}

	authors := set.NewSet[types.ValidatorID](want)
	for _, ph := range parentHashes {
		parent, ok := s.vertices[ph]
		if !ok {
			return false
		}
		if v.Round == 0 || parent.Round != v.Round-1 {
			return false
		}
		if _, ok := s.certs[ph]; !ok {
			return false
		}
		if authors.Contains(parent.Author) {
			return false
		}
		authors.Add(parent.Author)
	}
	return authors.Len() == want
}

// InsertCertified writes a certified vertex through to vertices, certs, and
// round_to_vertices. The caller must already have verified coa against the
// vertex's content hash (spec.md §3, invariant 2); InsertCertified itself
// enforces only that parents (for round > 0) are already certified, since
// CoA verification is the signature engine's concern, not the store's.
func (s *Store) InsertCertified(v types.Vertex, coa types.AggregatedCoA) error {
	h := v.Hash()
	if h != coa.VertexHash {
		return fmt.Errorf("dagstore: coa vertex hash %x does not match vertex hash %x", coa.VertexHash, h)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.vertices[h]; ok && !sameVertex(existing, v) {
		return ErrVertexMismatch
	}

	if v.Round > 0 {
		for _, idx := range v.ParentIndices {
			parentRound := v.Round - 1
			list := s.roundToVertices[parentRound]
			if int(idx) >= len(list) {
				return fmt.Errorf("%w: round %d index %d", ErrCausalHole, parentRound, idx)
			}
			if _, ok := s.certs[list[idx]]; !ok {
				return ErrParentNotCertified
			}
		}
	}

	if _, already := s.certs[h]; already {
		return nil // certification is monotone: once certified, never re-applied
	}

	s.vertices[h] = v
	s.certs[h] = coa
	s.roundToVertices[v.Round] = append(s.roundToVertices[v.Round], h)
	return nil
}

// AdvanceCommitted moves committed_round forward to r if r is greater than
// the current value (spec.md §3, invariant 4: monotone non-decreasing).
func (s *Store) AdvanceCommitted(r uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r > s.committedRound {
		s.committedRound = r
	}
}

// AetherSort linearizes the certified sub-DAG reachable from anchor,
// grouped by round and VRF-seeded within each round, per spec.md §4.2.
//
// Edge cases (spec.md §4.2): the anchor must already be certified; a
// traversed parent index out of range of its round's certified list is a
// causal hole and fails loudly rather than dropping the vertex silently;
// ties in VRF sort key (a hash collision) break on raw vertex-hash byte
// order; vertices at round == committed_round are excluded as already
// committed.
func (s *Store) AetherSort(anchor types.Hash, seed types.Hash) ([]types.Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.certs[anchor]; !ok {
		return nil, ErrAnchorNotCertified
	}

	// Snapshot the per-round certified lists so the traversal sees a
	// consistent view even though s.mu is only read-locked (spec.md §4.2:
	// "a snapshot — implementers must provide a consistent view").
	snapshot := make(map[uint64][]types.Hash, len(s.roundToVertices))
	for r, list := range s.roundToVertices {
		cp := make([]types.Hash, len(list))
		copy(cp, list)
		snapshot[r] = cp
	}

	visited := make(map[types.Hash]struct{})
	var reachable []types.Hash
	stack := []types.Hash{anchor}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[cur]; seen {
			continue
		}
		visited[cur] = struct{}{}

		v, ok := s.vertices[cur]
		if !ok {
			return nil, fmt.Errorf("dagstore: traversed hash %x has no stored vertex", cur)
		}
		if v.Round <= s.committedRound {
			continue
		}
		reachable = append(reachable, cur)

		if v.Round == 0 {
			continue
		}
		parentRound := v.Round - 1
		list := snapshot[parentRound]
		for _, idx := range v.ParentIndices {
			if int(idx) >= len(list) {
				return nil, fmt.Errorf("%w: round %d index %d", ErrCausalHole, parentRound, idx)
			}
			stack = append(stack, list[idx])
		}
	}

	layers := make(map[uint64][]types.Hash)
	for _, h := range reachable {
		v := s.vertices[h]
		layers[v.Round] = append(layers[v.Round], h)
	}

	rounds := make([]uint64, 0, len(layers))
	for r := range layers {
		rounds = append(rounds, r)
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i] < rounds[j] })

	out := make([]types.Hash, 0, len(reachable))
	for _, r := range rounds {
		layer := layers[r]
		keys := make(map[types.Hash]types.Hash, len(layer))
		for _, h := range layer {
			keys[h] = aetherhash.VRFSortKey(h, seed)
		}
		sort.Slice(layer, func(i, j int) bool {
			ki, kj := keys[layer[i]], keys[layer[j]]
			if c := ki.Compare(kj); c != 0 {
				return c < 0
			}
			return layer[i].Compare(layer[j]) < 0
		})
		out = append(out, layer...)
	}
	return out, nil
}

func sameVertex(a, b types.Vertex) bool {
	return a.Hash() == b.Hash()
}
