// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consensus

import (
	"errors"

	"go.uber.org/zap"

	"github.com/luxfi/aether/types"
)

// ErrBackpressure is returned by ProposeNext when drift or the in-flight
// verification window blocks further proposal (spec.md §4.3).
var ErrBackpressure = errors.New("consensus: backpressure active")

// ErrInsufficientParents is returned when round−1 does not yet have enough
// certified vertices to form a valid parent set.
var ErrInsufficientParents = errors.New("consensus: round-1 has too few certified vertices")

// ProposeNext authors this validator's vertex for the current round,
// referencing the first n−f certified vertices of round−1 as parents by
// their local ordinal position, then advances round (spec.md §4.3:
// "timer-driven proposal"). It is a no-op error, not a panic, when
// backpressure or an incomplete parent round blocks authorship — callers
// are expected to retry on the next timer tick.
func (e *Engine) ProposeNext(batchHash types.Hash) (types.Vertex, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Drift() >= uint64(e.params.MaxDrift) {
		return types.Vertex{}, ErrBackpressure
	}
	if e.inFlight.Len() >= e.params.VerificationWindow {
		return types.Vertex{}, ErrBackpressure
	}

	round := e.round
	var parents []uint32
	if round > 0 {
		want := e.params.Quorum()
		certified := e.store.CertifiedInRound(round - 1)
		if len(certified) < want {
			return types.Vertex{}, ErrInsufficientParents
		}
		parents = make([]uint32, want)
		for i := 0; i < want; i++ {
			parents[i] = uint32(i)
		}
	}

	v := types.Vertex{
		Round:         round,
		Author:        e.self,
		BatchHash:     batchHash,
		ParentIndices: parents,
	}

	key := authorRound{round: round, author: e.self}
	e.authoredHashes[key] = v.Hash()
	e.round++

	e.observe().Info("proposed vertex", zap.Uint64("proposed_round", round), zap.String("hash", hex(v.Hash())))
	return v, nil
}
