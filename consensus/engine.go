// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consensus

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/luxfi/aether/config"
	"github.com/luxfi/aether/crypto/bls"
	"github.com/luxfi/aether/dagstore"
	"github.com/luxfi/aether/log"
	"github.com/luxfi/aether/metrics"
	"github.com/luxfi/aether/types"
	"github.com/luxfi/aether/utils/set"
	"github.com/luxfi/aether/utils/wrappers"
)

// Engine is one validator's consensus task: it owns the DAG store, the
// per-vertex collectors, the verification queue, and this validator's own
// proposal state. Per spec.md §5, every field below is touched only from
// the goroutine that calls Engine's event-handling methods; external
// observers must go through those methods rather than share the struct.
type Engine struct {
	mu sync.Mutex

	self   types.ValidatorID
	params config.Parameters
	sk     *bls.PrivateKey
	pks    []*bls.PublicKey // indexed by ValidatorID, stable for the committee's lifetime

	bls   *bls.Context
	store *dagstore.Store
	log   log.Logger
	mx    *metrics.ConsensusMetrics

	collectors map[types.Hash]*collector
	lastCoA    map[types.Hash]types.AggregatedCoA

	// batchSizeAvg tracks the running average verification batch size, a
	// process-local gauge on the adaptive batching policy of spec.md §4.3.
	batchSizeAvg metrics.Averager

	round          uint64
	inFlight       set.Set[types.Hash] // vertex hashes awaiting aggregate verification
	verifyQueue    []queuedAggregate
	authoredHashes map[authorRound]types.Hash // equivocation detection (spec.md §3, invariant 1)

	anchors map[uint64]types.Hash // round -> this node's chosen anchor, once certified
	seeds   map[uint64]types.Hash // round -> VRF seed derived from round-1's anchor CoA

	skip *skipTracker
}

type authorRound struct {
	round  uint64
	author types.ValidatorID
}

type queuedAggregate struct {
	hash   types.Hash
	round  uint64
	agg    types.AggregatedCoA
}

// New constructs an Engine for validator self, given the committee's public
// keys (indexed by ValidatorID) and this validator's own signing key. reg
// registers the engine's process-local averager; a nil reg gets a private
// registry, so tests and callers without prometheus exposition can pass nil.
func New(self types.ValidatorID, sk *bls.PrivateKey, pks []*bls.PublicKey, params config.Parameters, store *dagstore.Store, logger log.Logger, mx *metrics.ConsensusMetrics, reg prometheus.Registerer) (*Engine, error) {
	if err := params.Valid(); err != nil {
		return nil, fmt.Errorf("consensus: %w", err)
	}
	if int(self) >= len(pks) {
		return nil, fmt.Errorf("consensus: self id %d out of range of %d public keys", self, len(pks))
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	var errs wrappers.Errs
	batchSizeAvg := metrics.NewAveragerWithErrs("aether_verify_batch_size", "aggregate verification batch size", reg, &errs)
	if errs.Errored() {
		return nil, fmt.Errorf("consensus: %w", errs.Err())
	}

	return &Engine{
		self:           self,
		params:         params,
		sk:             sk,
		pks:            pks,
		bls:            bls.NewContext(),
		store:          store,
		log:            logger,
		mx:             mx,
		collectors:     make(map[types.Hash]*collector),
		lastCoA:        make(map[types.Hash]types.AggregatedCoA),
		batchSizeAvg:   batchSizeAvg,
		inFlight:       set.NewSet[types.Hash](0),
		authoredHashes: make(map[authorRound]types.Hash),
		anchors:        make(map[uint64]types.Hash),
		seeds:          make(map[uint64]types.Hash),
		skip:           newSkipTracker(),
	}, nil
}

// Drift returns round − committed_round, the backpressure signal of
// spec.md §4.3.
func (e *Engine) Drift() uint64 {
	committed := e.store.CommittedRound()
	if e.round < committed {
		return 0
	}
	return e.round - committed
}

// observe records fields useful to every log line this engine emits.
func (e *Engine) observe() log.Logger {
	return e.log.With(zap.Uint64("round", e.round), zap.Uint8("validator", uint8(e.self)))
}
