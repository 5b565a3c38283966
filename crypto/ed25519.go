package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
)

// Ed25519 signature scheme using stdlib crypto/ed25519.
//
// Ed25519 signatures cannot be aggregated, but individual sign/verify is
// fast and the keys are small. This is the default scheme for authority
// identities.

var (
	// ErrInvalidEd25519KeySize indicates wrong key size.
	ErrInvalidEd25519KeySize = errors.New("invalid Ed25519 key size")
)

const (
	// Ed25519PublicKeySize is the size of an Ed25519 public key in bytes,
	// excluding the scheme prefix.
	Ed25519PublicKeySize = ed25519.PublicKeySize // 32 bytes

	// Ed25519PrivateKeySize is the size of an Ed25519 private key in bytes.
	Ed25519PrivateKeySize = ed25519.PrivateKeySize // 64 bytes

	// Ed25519SignatureSize is the size of an Ed25519 signature in bytes.
	Ed25519SignatureSize = ed25519.SignatureSize // 64 bytes
)

// Ed25519PrivateKey wraps a stdlib Ed25519 private key.
type Ed25519PrivateKey struct {
	key ed25519.PrivateKey
	pub []byte // scheme-prefixed public key
}

// GenerateEd25519Key generates a new Ed25519 key pair.
func GenerateEd25519Key() (*Ed25519PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Ed25519 key: %w", err)
	}

	return &Ed25519PrivateKey{key: priv, pub: prefixKey(SchemeEd25519, pub)}, nil
}

// Ed25519PrivateKeyFromBytes reconstructs a private key from its 64 raw
// bytes.
func Ed25519PrivateKeyFromBytes(data []byte) (*Ed25519PrivateKey, error) {
	if len(data) != Ed25519PrivateKeySize {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidEd25519KeySize, Ed25519PrivateKeySize, len(data))
	}

	key := ed25519.PrivateKey(data)
	pub, _ := key.Public().(ed25519.PublicKey)
	return &Ed25519PrivateKey{key: key, pub: prefixKey(SchemeEd25519, pub)}, nil
}

// Public returns the scheme-prefixed public key bytes.
func (sk *Ed25519PrivateKey) Public() []byte {
	return sk.pub
}

// Sign signs a message with this private key.
func (sk *Ed25519PrivateKey) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(sk.key, message), nil
}

// Bytes returns the 64-byte private key.
// WARNING: handle with care - this exposes sensitive key material.
func (sk *Ed25519PrivateKey) Bytes() []byte {
	return []byte(sk.key)
}

func prefixKey(scheme byte, key []byte) []byte {
	out := make([]byte, 1+len(key))
	out[0] = scheme
	copy(out[1:], key)
	return out
}
