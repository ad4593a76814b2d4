// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package consensus drives the per-vertex Certificate-of-Availability state
// machine of spec.md §4.3: it collects partial signatures, aggregates and
// verifies them in adaptively-sized batches, promotes vertices to certified,
// and authors this validator's own proposals under drift/window backpressure.
package consensus

import (
	"github.com/luxfi/aether/types"
)

// State is a vertex hash's position in the state table of spec.md §4.3.
type State int

const (
	// Unknown is the implicit state before any bytes or partials exist.
	Unknown State = iota
	// Pending holds vertex bytes with no partials yet; the first partial
	// moves the collector to Collecting.
	Pending
	// Collecting holds ≥1 partial, short of quorum.
	Collecting
	// Verifying holds an aggregate submitted to batch verification.
	Verifying
	// Certified is terminal: a valid CoA is stored in the DAG.
	Certified
	// Rejected is terminal for this vertex hash within this round: the
	// aggregate failed verification and partials were cleared.
	Rejected
)

func (s State) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case Pending:
		return "pending"
	case Collecting:
		return "collecting"
	case Verifying:
		return "verifying"
	case Certified:
		return "certified"
	case Rejected:
		return "rejected"
	default:
		return "invalid"
	}
}

// collector is the pre-quorum bookkeeping for one vertex hash: the vertex
// bytes (once known), the partial-signature map, and the current state.
// Ownership is the consensus task's alone (spec.md §5); Engine never hands
// out a pointer to one.
type collector struct {
	state    State
	vertex   *types.Vertex
	partials types.PartialCoA
}

func newCollector() *collector {
	return &collector{
		state:    Unknown,
		partials: make(types.PartialCoA),
	}
}

// addPartial merges signer's partial, first-write-wins (spec.md §4.3:
// "ignoring duplicates from the same signer ... do not replace to avoid
// equivocation-assisted rollback"). Returns true if this call actually added
// a new signer.
func (c *collector) addPartial(signer types.ValidatorID, sig []byte) bool {
	if _, exists := c.partials[signer]; exists {
		return false
	}
	c.partials[signer] = sig
	if c.state == Unknown || c.state == Pending {
		c.state = Collecting
	}
	return true
}
