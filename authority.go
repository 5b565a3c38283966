package hotstuff

import (
	"encoding/hex"

	"github.com/Web3MQ/madara-hotstuff/crypto"
)

// AuthorityId identifies a validator entitled to propose and vote. It holds
// the scheme-prefixed raw public key bytes, so it is comparable, usable as a
// map key, and carries everything needed to verify a signature. Immutable
// once created.
type AuthorityId string

// AuthorityIdFromKey wraps scheme-prefixed public key bytes as an
// AuthorityId.
func AuthorityIdFromKey(publicKey []byte) AuthorityId {
	return AuthorityId(publicKey)
}

// Bytes returns the scheme-prefixed public key bytes.
func (id AuthorityId) Bytes() []byte {
	return []byte(id)
}

// String returns a truncated hex representation of the identity.
func (id AuthorityId) String() string {
	if len(id) <= 9 {
		return hex.EncodeToString([]byte(id))
	}
	return hex.EncodeToString([]byte(id[:9])) + "..."
}

// AuthorityWeight is the non-negative voting power of an authority.
type AuthorityWeight uint64

// Authority pairs an identity with its voting weight.
type Authority struct {
	ID     AuthorityId
	Weight AuthorityWeight
}

// AuthorityList is an ordered sequence of weighted authorities. Ids are
// unique within a list. The list is owned by the caller (the epoch manager):
// this package only reads it for the duration of a verification call and
// never caches it, since epoch rotation can change membership between calls.
type AuthorityList []Authority

// Contains reports whether id is a member of the list.
func (l AuthorityList) Contains(id AuthorityId) bool {
	_, ok := l.Weight(id)
	return ok
}

// Weight returns the voting weight of id and whether id is a member.
func (l AuthorityList) Weight(id AuthorityId) (AuthorityWeight, bool) {
	for _, a := range l {
		if a.ID == id {
			return a.Weight, true
		}
	}
	return 0, false
}

// TotalWeight returns the sum of all weights in the list.
func (l AuthorityList) TotalWeight() AuthorityWeight {
	var total AuthorityWeight
	for _, a := range l {
		total += a.Weight
	}
	return total
}

// index builds a weight lookup table for one verification pass. Built fresh
// per call; never retained across calls.
func (l AuthorityList) index() map[AuthorityId]AuthorityWeight {
	m := make(map[AuthorityId]AuthorityWeight, len(l))
	for _, a := range l {
		m[a.ID] = a.Weight
	}
	return m
}

// WeightThresholdToBuildQC returns the minimal accumulated weight that
// strictly exceeds two thirds of totalWeight, i.e. the smallest integer t
// with 2*totalWeight/3 < t. Computed as 2*floor(totalWeight/3) +
// max(1, totalWeight mod 3) to stay exact in integer arithmetic.
func WeightThresholdToBuildQC(totalWeight AuthorityWeight) AuthorityWeight {
	floorOneThird := totalWeight / 3
	res := 2 * floorOneThird
	divRemainder := totalWeight % 3
	if divRemainder <= 1 {
		res++
	} else {
		res += divRemainder
	}
	return res
}

// verifySignature checks sig over digest under the public key embedded in
// id. The scheme is dispatched on the key prefix.
func verifySignature(id AuthorityId, digest Digest, sig AuthoritySignature) bool {
	return crypto.Verify([]byte(id), digest[:], sig)
}
