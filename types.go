// Package hotstuff implements the message-verification and quorum-formation
// core of a HotStuff-style BFT consensus engine.
//
// The package defines the protocol messages (Proposal, Vote, Timeout) and
// the aggregated certificates built from them (QC, TC), together with the
// rules that judge an adversarial network input: only a correctly-signed
// proposal from a recognized authority is accepted, only a correctly-signed
// vote from a recognized authority counts, and a certificate is valid only
// if it aggregates enough distinct, validly-signed votes to cross the
// Byzantine safety threshold.
//
// The core never initiates network action and holds no state: every
// verification takes an AuthorityList snapshot and message values as
// explicit arguments, making all operations safe for concurrent use.
package hotstuff

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Hash represents an opaque payload identifier (typically a block hash).
// Implementations must be comparable and suitable for use as map keys.
type Hash interface {
	// Bytes returns the raw byte representation of the hash.
	Bytes() []byte

	// Equals returns true if this hash equals the other hash.
	// Must be consistent with Bytes() comparison.
	Equals(other Hash) bool

	// String returns a human-readable representation (typically hex-encoded).
	String() string
}

// ViewNumber identifies one round of the protocol. Views increase
// monotonically; a wrap of the 64-bit counter is a configuration error,
// not a protocol case.
type ViewNumber uint64

// DigestSize is the byte length of a message digest.
const DigestSize = 32

// Digest is a fixed-size content fingerprint, used both as a payload
// identifier and as the signing target for protocol messages.
// Digests are equality-comparable with ==.
type Digest [DigestSize]byte

// NewDigest fingerprints arbitrary content with blake2b-256.
func NewDigest(content []byte) Digest {
	return blake2b.Sum256(content)
}

// DigestFromBytes reconstructs a Digest from its raw byte representation.
func DigestFromBytes(data []byte) (Digest, error) {
	if len(data) != DigestSize {
		return Digest{}, fmt.Errorf("invalid digest length: expected %d, got %d", DigestSize, len(data))
	}
	var d Digest
	copy(d[:], data)
	return d, nil
}

// Bytes returns the raw byte representation of the digest.
func (d Digest) Bytes() []byte {
	return d[:]
}

// Equals implements Hash, so a Digest can itself serve as a payload
// identifier.
func (d Digest) Equals(other Hash) bool {
	if o, ok := other.(Digest); ok {
		return d == o
	}
	return false
}

// String returns the hex-encoded digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// AuthoritySignature is a signature produced by an authority over a message
// digest. It is opaque to this package beyond being verifiable against an
// AuthorityId. Absence of a signature is represented by a nil
// *AuthoritySignature, distinct from a present-but-invalid signature.
type AuthoritySignature []byte

// Bytes returns the raw signature bytes.
func (s AuthoritySignature) Bytes() []byte {
	return s
}

// Signer produces signatures that verify against the signer's AuthorityId.
// The concrete schemes in the crypto package satisfy this interface; callers
// with external key management (HSMs, remote keystores) can supply their own.
type Signer interface {
	// Public returns the scheme-prefixed public key bytes, i.e. the raw
	// form of the signer's AuthorityId.
	Public() []byte

	// Sign signs the given message.
	Sign(message []byte) ([]byte, error)
}

// SignerAuthority returns the AuthorityId under which the signer's
// signatures verify.
func SignerAuthority(s Signer) AuthorityId {
	return AuthorityId(s.Public())
}
