// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bls

import (
	"errors"
	"fmt"
	"time"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// Partial is one signer's contribution to a Certificate of Availability.
type Partial struct {
	SignerID uint8
	Sig      []byte // compressed 48-byte G1 point
}

// AggregateMetrics reports the cost of an aggregation, surfacing the
// original's BlsAggregateMetrics (original_source/src/bls_crypto.rs).
type AggregateMetrics struct {
	Elapsed        time.Duration
	SignatureCount int
}

var (
	// ErrInsufficientSignatures is returned when fewer than q partials are supplied.
	ErrInsufficientSignatures = errors.New("bls: insufficient signatures for quorum")
	// ErrSignerOutOfRange is returned when a signer ID is >= MaxValidators.
	ErrSignerOutOfRange = errors.New("bls: signer id out of range")
	// ErrDuplicateSigner is returned when a signer appears twice in the same aggregate.
	ErrDuplicateSigner = errors.New("bls: duplicate signer in aggregate")
)

// Aggregate combines partial signatures over the same message into a single
// 48-byte aggregate signature plus the signer bitmap, per spec.md §4.1.
// It fails when |partials| < q, any signer ID >= MaxValidators, any signer
// repeats, or any signature fails to decompress to a valid curve point.
func (c *Context) Aggregate(partials []Partial, q int) (*Signature, uint64, AggregateMetrics, error) {
	start := time.Now()

	if len(partials) < q {
		return nil, 0, AggregateMetrics{}, ErrInsufficientSignatures
	}

	var bitmap uint64
	decoded := make([]bls12381.G1Affine, 0, len(partials))
	for _, p := range partials {
		if p.SignerID >= MaxValidators {
			return nil, 0, AggregateMetrics{}, fmt.Errorf("%w: %d", ErrSignerOutOfRange, p.SignerID)
		}
		bit := uint64(1) << p.SignerID
		if bitmap&bit != 0 {
			return nil, 0, AggregateMetrics{}, fmt.Errorf("%w: %d", ErrDuplicateSigner, p.SignerID)
		}

		point, err := c.decompressSignature(p.Sig)
		if err != nil {
			return nil, 0, AggregateMetrics{}, fmt.Errorf("signer %d: %w", p.SignerID, err)
		}

		decoded = append(decoded, point)
		bitmap |= bit
	}

	var accum bls12381.G1Jac
	accum.FromAffine(&decoded[0])
	for i := 1; i < len(decoded); i++ {
		var jac bls12381.G1Jac
		jac.FromAffine(&decoded[i])
		accum.AddAssign(&jac)
	}

	var result bls12381.G1Affine
	result.FromJacobian(&accum)

	return &Signature{point: result}, bitmap, AggregateMetrics{
		Elapsed:        time.Since(start),
		SignatureCount: len(decoded),
	}, nil
}
