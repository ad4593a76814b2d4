// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consensus

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/luxfi/aether/crypto/bls"
	"github.com/luxfi/aether/types"
)

var (
	// ErrEquivocation is returned when a second, distinct vertex hash
	// arrives for a (round, author) pair already seen (spec.md §3,
	// invariant 1).
	ErrEquivocation = errors.New("consensus: equivocating author")
	// ErrMalformedVertex is returned when a vertex fails basic
	// well-formedness checks before it is persisted.
	ErrMalformedVertex = errors.New("consensus: malformed vertex")
)

// VertexReceived handles a newly seen vertex: validates well-formedness,
// persists its bytes, signs its canonical hash, and returns the partial CoA
// this validator should broadcast to its peers (spec.md §4.3).
//
// A malformed vertex is rejected and not propagated (spec.md §7: "reject
// vertex; do not propagate"); a second distinct vertex from an
// already-seen (round, author) is equivocation and is likewise rejected,
// leaving the first-seen vertex as the only candidate for certification.
func (e *Engine) VertexReceived(v types.Vertex) (types.ValidatorID, []byte, types.Hash, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if int(v.Author) >= len(e.pks) {
		return 0, nil, types.Hash{}, fmt.Errorf("%w: author %d out of range", ErrMalformedVertex, v.Author)
	}
	if v.Round > 0 && len(v.ParentIndices) != e.params.Quorum() {
		return 0, nil, types.Hash{}, fmt.Errorf("%w: round %d has %d parent indices, want %d", ErrMalformedVertex, v.Round, len(v.ParentIndices), e.params.Quorum())
	}

	h := v.Hash()
	key := authorRound{round: v.Round, author: v.Author}
	if existing, ok := e.authoredHashes[key]; ok && existing != h {
		return 0, nil, types.Hash{}, fmt.Errorf("%w: validator %d round %d", ErrEquivocation, v.Author, v.Round)
	}
	e.authoredHashes[key] = h

	c, ok := e.collectors[h]
	if !ok {
		c = newCollector()
		e.collectors[h] = c
	}
	if c.vertex == nil {
		c.vertex = &v
		if c.state == Unknown {
			c.state = Pending
		}
	}

	sig, err := e.sk.Sign(h.Bytes())
	if err != nil {
		return 0, nil, types.Hash{}, fmt.Errorf("consensus: sign vertex %x: %w", h, err)
	}

	e.observe().Debug("vertex received", zap.String("hash", hex(h)), zap.Uint64("vertex_round", v.Round))
	return e.self, sig.Bytes(), h, nil
}

// CoAReceived merges one signer's partial signature for vertex hash h into
// that hash's collector, ignoring a repeat from the same signer (spec.md
// §4.3, §7, §8: "applying CoAReceived twice has the same effect as once").
// Once the collector reaches quorum it is promoted to Verifying and the
// resulting aggregate is handed to the adaptive batching queue.
func (e *Engine) CoAReceived(h types.Hash, signer types.ValidatorID, sig []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.collectors[h]
	if !ok {
		c = newCollector()
		e.collectors[h] = c
	}
	if !c.addPartial(signer, sig) {
		return nil // duplicate signer: no error surfaced, per spec.md §7
	}

	q := e.params.Quorum()
	if len(c.partials) < q || c.state == Verifying || c.state == Certified || c.state == Rejected {
		return nil
	}

	partials := make([]bls.Partial, 0, len(c.partials))
	for id, s := range c.partials {
		partials = append(partials, bls.Partial{SignerID: uint8(id), Sig: s})
	}
	aggSig, bitmap, _, err := e.bls.Aggregate(partials, q)
	if err != nil {
		// Quorum shortfall or a malformed partial: drop any partial that
		// does not decode to a valid signature, retain the rest of the
		// collector, and keep accumulating so a replacement signer can
		// still bring it to quorum (spec.md §7).
		for id, s := range c.partials {
			if _, derr := bls.SignatureFromBytes(s); derr != nil {
				delete(c.partials, id)
			}
		}
		e.observe().Debug("aggregate attempt below quorum or malformed", zap.String("hash", hex(h)), zap.Error(err))
		if e.mx != nil {
			e.mx.QuorumShortfalls.Inc()
		}
		return nil
	}

	var sigBytes [48]byte
	copy(sigBytes[:], aggSig.Bytes())
	agg := types.AggregatedCoA{VertexHash: h, AggSig: sigBytes, Bitmap: bitmap}

	c.state = Verifying
	e.enqueueVerification(h, c.vertex.Round, agg)
	return nil
}

// AggregatedCoAReceived feeds an already-aggregated CoA directly into the
// verification queue, bypassing collector accumulation (spec.md §4.3).
func (e *Engine) AggregatedCoAReceived(v types.Vertex, agg types.AggregatedCoA) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	h := v.Hash()
	if h != agg.VertexHash {
		return fmt.Errorf("%w: aggregate targets %x, vertex hashes to %x", ErrMalformedVertex, agg.VertexHash, h)
	}
	c, ok := e.collectors[h]
	if !ok {
		c = newCollector()
		e.collectors[h] = c
	}
	if c.vertex == nil {
		c.vertex = &v
	}
	if c.state == Certified || c.state == Rejected {
		return nil
	}
	c.state = Verifying
	e.enqueueVerification(h, v.Round, agg)
	return nil
}

func hex(h types.Hash) string {
	const digits = "0123456789abcdef"
	b := h.Bytes()
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = digits[c>>4]
		out[i*2+1] = digits[c&0x0f]
	}
	return string(out)
}
