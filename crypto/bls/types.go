// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bls implements the aggregated-signature engine: BLS12-381
// signing, aggregation and batched pairing verification over 48-byte G1
// signatures and 96-byte G2 public keys, with process-wide decompression
// and aggregate-public-key caches.
package bls

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Object sizes fixed by the protocol (spec.md §6).
const (
	SignatureSize = 48 // compressed G1 point
	PublicKeySize = 96 // compressed G2 point

	// MaxValidators bounds the signer bitmap to 64 bits (spec.md §3).
	MaxValidators = 64
)

// DST is the domain-separation tag for the ciphersuite fixed by the
// protocol: the standard BLS12-381 G1, XMD:SHA-256, SSWU, random-oracle,
// no-fallback suite (spec.md §4.1).
var DST = []byte("BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_")

// ErrInvalidPoint is returned when a byte string does not decode to a
// valid, in-subgroup curve point.
var ErrInvalidPoint = errors.New("bls: invalid curve point")

// PrivateKey is a BLS12-381 secret scalar.
type PrivateKey struct {
	scalar fr.Element
}

// PublicKey is a point on G2.
type PublicKey struct {
	point bls12381.G2Affine
}

// Signature is a point on G1.
type Signature struct {
	point bls12381.G1Affine
}

// GenerateKey produces a new random keypair.
func GenerateKey() (*PrivateKey, error) {
	var sk fr.Element
	if _, err := sk.SetRandom(); err != nil {
		return nil, fmt.Errorf("bls: generate key: %w", err)
	}
	return &PrivateKey{scalar: sk}, nil
}

// PublicKey derives the public key pk = sk * G2.
func (sk *PrivateKey) PublicKey() *PublicKey {
	_, _, _, g2Gen := bls12381.Generators()
	var skBig big.Int
	sk.scalar.BigInt(&skBig)
	var pk bls12381.G2Affine
	pk.ScalarMultiplication(&g2Gen, &skBig)
	return &PublicKey{point: pk}
}

// scalarBigInt returns the secret scalar as a big.Int for point multiplication.
func (sk *PrivateKey) scalarBigInt() big.Int {
	var b big.Int
	sk.scalar.BigInt(&b)
	return b
}

// Bytes returns the compressed 32-byte scalar.
func (sk *PrivateKey) Bytes() []byte {
	b := sk.scalar.Bytes()
	return b[:]
}

// PrivateKeyFromBytes deserializes a 32-byte scalar.
func PrivateKeyFromBytes(data []byte) (*PrivateKey, error) {
	if len(data) != 32 {
		return nil, fmt.Errorf("bls: private key must be 32 bytes, got %d", len(data))
	}
	var sk fr.Element
	sk.SetBytes(data)
	return &PrivateKey{scalar: sk}, nil
}

// Bytes returns the compressed 96-byte G2 encoding.
func (pk *PublicKey) Bytes() []byte {
	b := pk.point.Bytes()
	return b[:]
}

// Hex returns the hex-encoded compressed public key.
func (pk *PublicKey) Hex() string {
	return hex.EncodeToString(pk.Bytes())
}

// Equal reports whether two public keys encode the same point.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	return pk.point.Equal(&other.point)
}

// PublicKeyFromBytes decompresses and subgroup-checks a 96-byte G2 point.
func PublicKeyFromBytes(data []byte) (*PublicKey, error) {
	if len(data) != PublicKeySize {
		return nil, fmt.Errorf("bls: public key must be %d bytes, got %d", PublicKeySize, len(data))
	}
	var p bls12381.G2Affine
	if _, err := p.SetBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	if p.IsInfinity() || !p.IsInSubGroup() {
		return nil, ErrInvalidPoint
	}
	return &PublicKey{point: p}, nil
}

// Bytes returns the compressed 48-byte G1 encoding.
func (sig *Signature) Bytes() []byte {
	b := sig.point.Bytes()
	return b[:]
}

// Hex returns the hex-encoded compressed signature.
func (sig *Signature) Hex() string {
	return hex.EncodeToString(sig.Bytes())
}

// SignatureFromBytes decompresses and subgroup-checks a 48-byte G1 point.
func SignatureFromBytes(data []byte) (*Signature, error) {
	if len(data) != SignatureSize {
		return nil, fmt.Errorf("bls: signature must be %d bytes, got %d", SignatureSize, len(data))
	}
	var p bls12381.G1Affine
	if _, err := p.SetBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	if p.IsInfinity() || !p.IsInSubGroup() {
		return nil, ErrInvalidPoint
	}
	return &Signature{point: p}, nil
}
