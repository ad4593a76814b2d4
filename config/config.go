// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config holds the consensus parameters of spec.md §3/§4.3, in the
// style of the teacher's own config.Parameters: a plain struct with
// yaml/json tags, sane defaults, and a Valid() method enforcing the
// invariants the rest of the module assumes.
package config

import (
	"fmt"
	"time"
)

// Parameters configures one validator's consensus engine.
type Parameters struct {
	// N is the number of validators in the committee. N must be in
	// [4, 64] (spec.md §3: n ≤ 64, and n=4 is the smallest BFT case).
	N int `json:"n" yaml:"n"`

	// MaxDrift bounds round − committed_round; proposal stalls once the
	// uncommitted distance reaches this (spec.md §4.3).
	MaxDrift int `json:"maxDrift" yaml:"maxDrift"`

	// VerificationWindow bounds the number of vertex hashes awaiting
	// aggregate verification at once (spec.md §4.3).
	VerificationWindow int `json:"verificationWindow" yaml:"verificationWindow"`

	// NormalBatchSize is the aggregate-queue trigger under normal drift.
	NormalBatchSize int `json:"normalBatchSize" yaml:"normalBatchSize"`
	// HighDriftBatchSize is the smaller trigger once drift exceeds
	// HighDriftThreshold (spec.md §4.3: smaller batches trade throughput
	// for latency).
	HighDriftBatchSize int `json:"highDriftBatchSize" yaml:"highDriftBatchSize"`
	// HighDriftThreshold is the drift at which the smaller batch trigger
	// applies.
	HighDriftThreshold int `json:"highDriftThreshold" yaml:"highDriftThreshold"`
	// HardTriggerThreshold is the drift at which queued aggregates are
	// verified immediately regardless of batch size.
	HardTriggerThreshold int `json:"hardTriggerThreshold" yaml:"hardTriggerThreshold"`

	// RoundTimeout is the wall-clock deadline after which a round's
	// anchor is bypassed via the skip-certificate path (spec.md §5, §9).
	RoundTimeout time.Duration `json:"roundTimeout" yaml:"roundTimeout"`

	// ReconnectBackoff is the fixed peer-reconnection delay (spec.md §5).
	ReconnectBackoff time.Duration `json:"reconnectBackoff" yaml:"reconnectBackoff"`

	// OutboundChannelCapacity bounds each per-peer send channel
	// (spec.md §6).
	OutboundChannelCapacity int `json:"outboundChannelCapacity" yaml:"outboundChannelCapacity"`
}

// DefaultParameters matches the worked examples of spec.md §4.3 and §5.
var DefaultParameters = Parameters{
	N:                       4,
	MaxDrift:                50,
	VerificationWindow:      200,
	NormalBatchSize:         8,
	HighDriftBatchSize:      4,
	HighDriftThreshold:      10,
	HardTriggerThreshold:    15,
	RoundTimeout:            2 * time.Second,
	ReconnectBackoff:        500 * time.Millisecond,
	OutboundChannelCapacity: 100_000,
}

// F returns the Byzantine tolerance bound f = ⌊(n−1)/3⌋.
func (p Parameters) F() int {
	return (p.N - 1) / 3
}

// Quorum returns q = n − f, the distinct-signer count required to certify.
func (p Parameters) Quorum() int {
	return p.N - p.F()
}

// Valid returns an error if the parameters violate an invariant the rest of
// the module assumes.
func (p Parameters) Valid() error {
	switch {
	case p.N < 4:
		return fmt.Errorf("n = %d: fails the condition that n >= 4", p.N)
	case p.N > 64:
		return fmt.Errorf("n = %d: fails the condition that n <= 64 (signer bitmap is 64 bits)", p.N)
	case p.MaxDrift <= 0:
		return fmt.Errorf("maxDrift = %d: fails the condition that maxDrift > 0", p.MaxDrift)
	case p.VerificationWindow <= 0:
		return fmt.Errorf("verificationWindow = %d: fails the condition that verificationWindow > 0", p.VerificationWindow)
	case p.NormalBatchSize <= 0:
		return fmt.Errorf("normalBatchSize = %d: fails the condition that normalBatchSize > 0", p.NormalBatchSize)
	case p.HighDriftBatchSize <= 0 || p.HighDriftBatchSize > p.NormalBatchSize:
		return fmt.Errorf("highDriftBatchSize = %d: fails the condition that 0 < highDriftBatchSize <= normalBatchSize", p.HighDriftBatchSize)
	case p.HighDriftThreshold <= 0:
		return fmt.Errorf("highDriftThreshold = %d: fails the condition that highDriftThreshold > 0", p.HighDriftThreshold)
	case p.HardTriggerThreshold <= p.HighDriftThreshold:
		return fmt.Errorf("hardTriggerThreshold = %d: fails the condition that hardTriggerThreshold > highDriftThreshold (%d)", p.HardTriggerThreshold, p.HighDriftThreshold)
	case p.RoundTimeout <= 0:
		return fmt.Errorf("roundTimeout = %s: fails the condition that roundTimeout > 0", p.RoundTimeout)
	}
	return nil
}
