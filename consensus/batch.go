// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consensus

import (
	"go.uber.org/zap"

	"github.com/luxfi/aether/crypto/bls"
	"github.com/luxfi/aether/types"
)

// enqueueVerification adds agg to the batch queue and flushes it if the
// current drift's trigger threshold is met. Caller must hold e.mu.
func (e *Engine) enqueueVerification(h types.Hash, round uint64, agg types.AggregatedCoA) {
	e.inFlight.Add(h)
	e.verifyQueue = append(e.verifyQueue, queuedAggregate{hash: h, round: round, agg: agg})
	if e.mx != nil {
		e.mx.InFlightVerifications.Set(float64(e.inFlight.Len()))
	}
	e.flushIfTriggered()
}

// flushIfTriggered applies the adaptive batching policy of spec.md §4.3:
// normal trigger ≥8 queued, high-drift (>10) trigger ≥4 queued, hard
// trigger (drift >15) verifies immediately regardless of queue size.
// Caller must hold e.mu.
func (e *Engine) flushIfTriggered() {
	drift := e.Drift()
	n := len(e.verifyQueue)

	hardTrigger := int(drift) > e.params.HardTriggerThreshold
	highDriftTrigger := int(drift) > e.params.HighDriftThreshold && n >= e.params.HighDriftBatchSize
	normalTrigger := n >= e.params.NormalBatchSize

	if n == 0 || (!hardTrigger && !highDriftTrigger && !normalTrigger) {
		return
	}
	e.verifyNow(e.verifyQueue)
	e.verifyQueue = nil
}

// verifyNow runs batched verification over batch. On success every item is
// promoted to certified. On failure (spec.md §7, §8 S5) every item's
// in-flight slot is released and each is re-verified individually to
// quarantine the offending aggregate(s); the rest certify.
func (e *Engine) verifyNow(batch []queuedAggregate) {
	items := make([]bls.VerifyItem, len(batch))
	for i, qa := range batch {
		items[i] = bls.VerifyItem{
			Msg:            qa.hash.Bytes(),
			AggSig:         qa.agg.AggSig[:],
			PublicKeys:     e.pks,
			Bitmap:         qa.agg.Bitmap,
			ExpectedQuorum: e.params.Quorum(),
		}
	}

	e.batchSizeAvg.Observe(float64(len(batch)))

	ok, vm, err := e.bls.VerifyBatch(items)
	if err != nil || !ok {
		if err != nil {
			e.observe().Warn("batch verification error", zap.Error(err), zap.Int("batch_size", len(batch)))
		} else {
			e.observe().Warn("batch verification failed; isolating offender", zap.Int("batch_size", len(batch)))
		}
		if e.mx != nil {
			e.mx.BatchVerifyFailures.Inc()
		}
		if len(batch) == 1 {
			e.rejectVertex(batch[0].hash)
			return
		}
		for _, qa := range batch {
			e.verifyNow([]queuedAggregate{qa})
		}
		return
	}

	e.observe().Debug("batch verified", zap.Int("batch_size", len(batch)), zap.Int("pairings", vm.PairingCount))
	for _, qa := range batch {
		e.promote(qa)
	}
}

// promote writes a verified aggregate through to the DAG store and marks
// its collector Certified. Caller must hold e.mu.
func (e *Engine) promote(qa queuedAggregate) {
	e.inFlight.Remove(qa.hash)
	if e.mx != nil {
		e.mx.InFlightVerifications.Set(float64(e.inFlight.Len()))
	}

	c, ok := e.collectors[qa.hash]
	if !ok || c.vertex == nil {
		e.observe().Warn("promote called for unknown vertex", zap.String("hash", hex(qa.hash)))
		return
	}
	if err := e.store.InsertCertified(*c.vertex, qa.agg); err != nil {
		e.observe().Warn("insert certified failed", zap.String("hash", hex(qa.hash)), zap.Error(err))
		return
	}
	c.state = Certified
	e.lastCoA[qa.hash] = qa.agg
	if e.mx != nil {
		e.mx.CertifiedVertices.Inc()
	}
	e.observe().Info("vertex certified", zap.String("hash", hex(qa.hash)), zap.Uint64("vertex_round", qa.round))

	e.tryAdvanceAnchor(qa.round)
}

// rejectVertex clears a failed aggregate's collector (terminal for this
// vertex hash this round, spec.md §4.3) and releases its in-flight slot.
func (e *Engine) rejectVertex(h types.Hash) {
	e.inFlight.Remove(h)
	if e.mx != nil {
		e.mx.InFlightVerifications.Set(float64(e.inFlight.Len()))
	}
	if c, ok := e.collectors[h]; ok {
		c.state = Rejected
		c.partials = make(types.PartialCoA)
	}
	e.observe().Warn("vertex rejected: aggregate failed verification", zap.String("hash", hex(h)))
}
