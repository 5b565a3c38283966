package crypto

import (
	"errors"
	"fmt"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// BLS12-381 signature scheme using gnark-crypto.
//
// Signatures are G1 points, public keys G2 points. Signatures over the same
// message aggregate into a single 48-byte proof, which is what makes BLS
// attractive for compressing a quorum certificate's vote list.

// blsDomainSeparationTag is the hash-to-curve DST for signing.
var blsDomainSeparationTag = []byte("BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_")

var (
	// ErrInvalidBLSSignature indicates BLS signature verification failed.
	ErrInvalidBLSSignature = errors.New("invalid BLS signature")

	// ErrEmptySignatures indicates no signatures provided for aggregation.
	ErrEmptySignatures = errors.New("no signatures to aggregate")

	// ErrEmptyPublicKeys indicates no public keys provided for aggregation.
	ErrEmptyPublicKeys = errors.New("no public keys to aggregate")
)

const (
	// BLSPublicKeySize is the size of a compressed G2 public key in bytes,
	// excluding the scheme prefix.
	BLSPublicKeySize = 96

	// BLSSignatureSize is the size of a compressed G1 signature in bytes.
	BLSSignatureSize = 48
)

// BLSPrivateKey wraps a BLS12-381 private key scalar.
type BLSPrivateKey struct {
	scalar fr.Element
	pub    []byte // scheme-prefixed public key
}

// BLSPublicKey wraps a BLS12-381 public key (G2 point).
type BLSPublicKey struct {
	point bls12381.G2Affine
}

// BLSSignature wraps a BLS12-381 signature (G1 point).
type BLSSignature struct {
	point bls12381.G1Affine
}

// GenerateBLSKey generates a new BLS12-381 key pair.
func GenerateBLSKey() (*BLSPrivateKey, error) {
	var scalar fr.Element
	if _, err := scalar.SetRandom(); err != nil {
		return nil, fmt.Errorf("failed to generate random scalar: %w", err)
	}

	sk := &BLSPrivateKey{scalar: scalar}
	sk.pub = prefixKey(SchemeBLS12381, sk.publicKey().Bytes())
	return sk, nil
}

// publicKey derives the G2 public key point from the private scalar.
func (sk *BLSPrivateKey) publicKey() *BLSPublicKey {
	var pk bls12381.G2Affine
	_, _, _, g2Gen := bls12381.Generators()
	pk.ScalarMultiplication(&g2Gen, sk.scalar.BigInt(new(big.Int)))
	return &BLSPublicKey{point: pk}
}

// Public returns the scheme-prefixed public key bytes.
func (sk *BLSPrivateKey) Public() []byte {
	return sk.pub
}

// Sign signs a message: the message is hashed to G1 and multiplied by the
// private scalar. Returns the compressed 48-byte signature.
func (sk *BLSPrivateKey) Sign(message []byte) ([]byte, error) {
	hashPoint, err := bls12381.HashToG1(message, blsDomainSeparationTag)
	if err != nil {
		return nil, fmt.Errorf("failed to hash message to G1: %w", err)
	}

	var sig bls12381.G1Affine
	sig.ScalarMultiplication(&hashPoint, sk.scalar.BigInt(new(big.Int)))

	sigBytes := sig.Bytes()
	return sigBytes[:], nil
}

// Bytes returns the 32-byte scalar representation.
// WARNING: handle with care - this exposes sensitive key material.
func (sk *BLSPrivateKey) Bytes() []byte {
	b := sk.scalar.Bytes()
	return b[:]
}

// BLSPrivateKeyFromBytes reconstructs a private key from its scalar bytes.
func BLSPrivateKeyFromBytes(data []byte) (*BLSPrivateKey, error) {
	if len(data) != fr.Bytes {
		return nil, fmt.Errorf("invalid private key length: expected %d, got %d", fr.Bytes, len(data))
	}

	var scalar fr.Element
	scalar.SetBytes(data)

	sk := &BLSPrivateKey{scalar: scalar}
	sk.pub = prefixKey(SchemeBLS12381, sk.publicKey().Bytes())
	return sk, nil
}

// Verify verifies a signature over a message with this public key by
// checking e(H(m), pk) == e(sig, G2).
func (pk *BLSPublicKey) Verify(message []byte, signature *BLSSignature) bool {
	hashPoint, err := bls12381.HashToG1(message, blsDomainSeparationTag)
	if err != nil {
		return false
	}

	_, _, _, g2Gen := bls12381.Generators()

	left, err := bls12381.Pair([]bls12381.G1Affine{hashPoint}, []bls12381.G2Affine{pk.point})
	if err != nil {
		return false
	}

	right, err := bls12381.Pair([]bls12381.G1Affine{signature.point}, []bls12381.G2Affine{g2Gen})
	if err != nil {
		return false
	}

	return left.Equal(&right)
}

// Bytes returns the compressed 96-byte G2 point representation (without
// scheme prefix).
func (pk *BLSPublicKey) Bytes() []byte {
	b := pk.point.Bytes()
	return b[:]
}

// BLSPublicKeyFromBytes reconstructs a public key from its compressed G2
// bytes (without scheme prefix).
func BLSPublicKeyFromBytes(data []byte) (*BLSPublicKey, error) {
	var point bls12381.G2Affine
	if _, err := point.SetBytes(data); err != nil {
		return nil, fmt.Errorf("failed to deserialize public key: %w", err)
	}

	return &BLSPublicKey{point: point}, nil
}

// Bytes returns the compressed 48-byte G1 point representation.
func (sig *BLSSignature) Bytes() []byte {
	b := sig.point.Bytes()
	return b[:]
}

// BLSSignatureFromBytes reconstructs a signature from its compressed G1
// bytes.
func BLSSignatureFromBytes(data []byte) (*BLSSignature, error) {
	var point bls12381.G1Affine
	if _, err := point.SetBytes(data); err != nil {
		return nil, fmt.Errorf("failed to deserialize signature: %w", err)
	}

	return &BLSSignature{point: point}, nil
}

// AggregateSignatures aggregates multiple BLS signatures into one.
func AggregateSignatures(signatures []*BLSSignature) (*BLSSignature, error) {
	if len(signatures) == 0 {
		return nil, ErrEmptySignatures
	}

	var aggPoint bls12381.G1Jac
	aggPoint.FromAffine(&signatures[0].point)

	for i := 1; i < len(signatures); i++ {
		var point bls12381.G1Jac
		point.FromAffine(&signatures[i].point)
		aggPoint.AddAssign(&point)
	}

	var result bls12381.G1Affine
	result.FromJacobian(&aggPoint)

	return &BLSSignature{point: result}, nil
}

// AggregatePublicKeys aggregates multiple BLS public keys into one. Used to
// verify an aggregate signature over a common message.
func AggregatePublicKeys(publicKeys []*BLSPublicKey) (*BLSPublicKey, error) {
	if len(publicKeys) == 0 {
		return nil, ErrEmptyPublicKeys
	}

	var aggPoint bls12381.G2Jac
	aggPoint.FromAffine(&publicKeys[0].point)

	for i := 1; i < len(publicKeys); i++ {
		var point bls12381.G2Jac
		point.FromAffine(&publicKeys[i].point)
		aggPoint.AddAssign(&point)
	}

	var result bls12381.G2Affine
	result.FromJacobian(&aggPoint)

	return &BLSPublicKey{point: result}, nil
}

// VerifyAggregated verifies an aggregate signature over a common message
// signed by multiple public keys.
//
// All signers must have signed the SAME message. This is the case for votes
// aggregated into a certificate, which share one digest by construction.
func VerifyAggregated(message []byte, aggregatedSig *BLSSignature, publicKeys []*BLSPublicKey) error {
	if len(publicKeys) == 0 {
		return ErrEmptyPublicKeys
	}

	aggPK, err := AggregatePublicKeys(publicKeys)
	if err != nil {
		return fmt.Errorf("failed to aggregate public keys: %w", err)
	}

	if !aggPK.Verify(message, aggregatedSig) {
		return ErrInvalidBLSSignature
	}

	return nil
}
