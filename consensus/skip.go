// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consensus

import (
	"encoding/binary"

	"go.uber.org/zap"

	"github.com/luxfi/aether/crypto/bls"
	"github.com/luxfi/aether/types"
)

// skipTracker accumulates SkipVotes per round, completing the reserved but
// unspecified skip-round protocol of spec.md §9: a quorum of votes bypasses
// a round whose anchor failed to certify within the round timeout,
// advancing committed_round without emitting vertices for that round.
type skipTracker struct {
	votes map[uint64]map[types.ValidatorID][48]byte
}

func newSkipTracker() *skipTracker {
	return &skipTracker{votes: make(map[uint64]map[types.ValidatorID][48]byte)}
}

// skipMessage is the canonical message a SkipVote signs: the round number,
// little-endian. Domain-separated from a vertex hash by length (8 bytes
// versus 32) so a vote can never be replayed as a vertex signature.
func skipMessage(round uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], round)
	return b[:]
}

// VoteSkip signs a SkipVote for round, for this validator to broadcast when
// its local round timeout elapses with no certified anchor (spec.md §5,
// §9).
func (e *Engine) VoteSkip(round uint64) (types.SkipVote, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sig, err := e.sk.Sign(skipMessage(round))
	if err != nil {
		return types.SkipVote{}, err
	}
	var sigBytes [48]byte
	copy(sigBytes[:], sig.Bytes())
	return types.SkipVote{Round: round, SignerID: e.self, Sig: sigBytes}, nil
}

// SkipVoteReceived merges a peer's SkipVote, first-write-wins per signer
// like CoAReceived, and returns a completed SkipCert once quorum is
// reached. Reaching quorum advances committed_round past round without an
// anchor, unblocking proposal for round+1 (spec.md §9).
func (e *Engine) SkipVoteReceived(vote types.SkipVote) (*types.SkipCert, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	byRound, ok := e.skip.votes[vote.Round]
	if !ok {
		byRound = make(map[types.ValidatorID][48]byte)
		e.skip.votes[vote.Round] = byRound
	}
	if _, dup := byRound[vote.SignerID]; dup {
		return nil, nil
	}
	byRound[vote.SignerID] = vote.Sig

	q := e.params.Quorum()
	if len(byRound) < q {
		return nil, nil
	}

	partials := make([]bls.Partial, 0, len(byRound))
	for id, sig := range byRound {
		partials = append(partials, bls.Partial{SignerID: uint8(id), Sig: sig[:]})
	}
	aggSig, bitmap, _, err := e.bls.Aggregate(partials, q)
	if err != nil {
		return nil, err
	}

	pks := e.pks
	ok2, _, err := e.bls.VerifyBatch([]bls.VerifyItem{{
		Msg:            skipMessage(vote.Round),
		AggSig:         aggSig.Bytes(),
		PublicKeys:     pks,
		Bitmap:         bitmap,
		ExpectedQuorum: q,
	}})
	if err != nil || !ok2 {
		return nil, nil
	}

	votes := make([]types.SkipVote, 0, len(byRound))
	for id, sig := range byRound {
		votes = append(votes, types.SkipVote{Round: vote.Round, SignerID: id, Sig: sig})
	}
	cert := &types.SkipCert{Round: vote.Round, Votes: votes, Bitmap: bitmap}

	e.store.AdvanceCommitted(vote.Round)
	if e.mx != nil {
		e.mx.RoundsSkipped.Inc()
		e.mx.Drift.Set(float64(e.Drift()))
	}
	e.observe().Info("round skipped via quorum skip-cert", zap.Uint64("skipped_round", vote.Round))
	return cert, nil
}
