// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consensus

import (
	"encoding/binary"
	"errors"

	"go.uber.org/zap"

	"github.com/luxfi/aether/aetherhash"
	"github.com/luxfi/aether/types"
)

// ErrNoCandidateAnchor is returned by FinalizeRound when no vertex in the
// round has certified yet; the caller should drive the skip-certificate
// path instead (spec.md §4.3, §9).
var ErrNoCandidateAnchor = errors.New("consensus: no certified vertex in round")

// seedFor derives seed_r = H(anchor_{r-1}.CoA.AggSig ‖ r_le) (spec.md §4.3,
// §4.4). Round 0 has no predecessor anchor, so seed_0 is defined as
// H(zero-48-bytes ‖ 0_le) — a fixed genesis seed every validator computes
// identically without needing a prior commit.
func seedFor(round uint64, prevAnchorAggSig [48]byte) types.Hash {
	var roundBytes [8]byte
	binary.LittleEndian.PutUint64(roundBytes[:], round)
	return aetherhash.Sum(prevAnchorAggSig[:], roundBytes[:])
}

// FinalizeRound selects round's anchor (the certified vertex minimizing the
// VRF-seeded sort key, spec.md §4.3), derives the seed for round+1, commits
// the round via Aether-sort, and advances committed_round. It is meant to
// be called by a timer once a round is considered closed (spec.md §5: round
// timeouts), not on every certification — selecting too eagerly would let a
// later, lower-keyed certification in the same round invalidate an earlier
// choice.
func (e *Engine) FinalizeRound(round uint64) ([]types.Hash, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if existing, ok := e.anchors[round]; ok {
		seed := e.seeds[round]
		return e.store.AetherSort(existing, seed)
	}

	candidates := e.store.CertifiedInRound(round)
	if len(candidates) == 0 {
		return nil, ErrNoCandidateAnchor
	}

	seed, ok := e.seeds[round]
	if !ok {
		seed = seedFor(round, [48]byte{})
	}

	anchor := candidates[0]
	best := aetherhash.VRFSortKey(anchor, seed)
	for _, h := range candidates[1:] {
		key := aetherhash.VRFSortKey(h, seed)
		if key.Compare(best) < 0 || (key.Compare(best) == 0 && h.Compare(anchor) < 0) {
			anchor, best = h, key
		}
	}
	e.anchors[round] = anchor

	anchorCert, ok := e.anchorCoA(anchor)
	if ok {
		e.seeds[round+1] = seedFor(round+1, anchorCert.AggSig)
	}

	log, err := e.store.AetherSort(anchor, seed)
	if err != nil {
		return nil, err
	}
	e.store.AdvanceCommitted(round)
	if e.mx != nil {
		e.mx.Drift.Set(float64(e.Drift()))
	}
	e.observe().Info("round finalized", zap.Uint64("finalized_round", round), zap.String("anchor", hex(anchor)), zap.Int("log_len", len(log)))
	return log, nil
}

func (e *Engine) anchorCoA(h types.Hash) (types.AggregatedCoA, bool) {
	coa, ok := e.lastCoA[h]
	return coa, ok
}

// tryAdvanceAnchor is a hook for future eager-finalization policies; the
// current design finalizes rounds only via the timer-driven FinalizeRound,
// so this is presently a no-op retained for that extension point.
func (e *Engine) tryAdvanceAnchor(round uint64) {}
