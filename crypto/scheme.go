// Package crypto provides the signing and verification capability consumed
// by the hotstuff verification core.
//
// Two signature schemes are supported:
//  1. Ed25519 - stdlib, fast individual sign/verify (ed25519.go)
//  2. BLS12-381 - gnark-crypto, O(1) signature aggregation (bls.go)
//
// Public keys are marshaled with a one-byte scheme prefix, so an identity
// carries everything needed to pick the right verifier. Mixed-scheme
// authority sets verify uniformly through Verify.
package crypto

import "crypto/ed25519"

// Scheme prefix bytes. The prefix is the first byte of every marshaled
// public key.
const (
	// SchemeEd25519 prefixes a 32-byte Ed25519 public key.
	SchemeEd25519 byte = 0x01

	// SchemeBLS12381 prefixes a 96-byte compressed BLS12-381 G2 public key.
	SchemeBLS12381 byte = 0x02
)

// PrivateKey is a signing key of any supported scheme.
type PrivateKey interface {
	// Public returns the scheme-prefixed public key bytes.
	Public() []byte

	// Sign signs the given message.
	Sign(message []byte) ([]byte, error)
}

// Verify verifies a signature over a message under a scheme-prefixed public
// key. An empty key, an unknown scheme prefix, or malformed key or signature
// bytes all verify as false: a verifier must never be reachable with a panic
// from adversarial input.
func Verify(publicKey, message, signature []byte) bool {
	if len(publicKey) < 1 {
		return false
	}

	switch publicKey[0] {
	case SchemeEd25519:
		key := publicKey[1:]
		if len(key) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(key), message, signature)

	case SchemeBLS12381:
		pk, err := BLSPublicKeyFromBytes(publicKey[1:])
		if err != nil {
			return false
		}
		sig, err := BLSSignatureFromBytes(signature)
		if err != nil {
			return false
		}
		return pk.Verify(message, sig)

	default:
		return false
	}
}
