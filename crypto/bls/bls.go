// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bls

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// Sign signs msg under the protocol's DST, hashing to G1 per
// BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_.
func (sk *PrivateKey) Sign(msg []byte) (*Signature, error) {
	h, err := bls12381.HashToG1(msg, DST)
	if err != nil {
		return nil, fmt.Errorf("bls: hash to curve: %w", err)
	}
	var skBig = sk.scalarBigInt()
	var sig bls12381.G1Affine
	sig.ScalarMultiplication(&h, &skBig)
	return &Signature{point: sig}, nil
}

// Verify checks a single signature: e(sig, G2) == e(H(msg), pk).
func (pk *PublicKey) Verify(sig *Signature, msg []byte) bool {
	h, err := bls12381.HashToG1(msg, DST)
	if err != nil {
		return false
	}
	var negPk bls12381.G2Affine
	negPk.Neg(&pk.point)

	_, _, _, g2Gen := bls12381.Generators()
	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{sig.point, h},
		[]bls12381.G2Affine{g2Gen, negPk},
	)
	return err == nil && ok
}
