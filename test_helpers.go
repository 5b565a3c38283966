package hotstuff

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Web3MQ/madara-hotstuff/crypto"
)

// Compile-time interface verification.
var (
	_ Hash   = TestHash{}
	_ Hash   = Digest{}
	_ Signer = (*crypto.Ed25519PrivateKey)(nil)
	_ Signer = (*crypto.BLSPrivateKey)(nil)
)

// TestHash implements Hash for testing using SHA256, standing in for an
// application block hash.
type TestHash [32]byte

// NewTestHash creates a test hash from a string.
func NewTestHash(data string) TestHash {
	return sha256.Sum256([]byte(data))
}

func (h TestHash) Bytes() []byte {
	return h[:]
}

func (h TestHash) Equals(other Hash) bool {
	if otherTest, ok := other.(TestHash); ok {
		return h == otherTest
	}
	return false
}

func (h TestHash) String() string {
	return hex.EncodeToString(h[:8])
}

// generateEd25519Signers creates n fresh Ed25519 keys.
func generateEd25519Signers(t *testing.T, n int) []*crypto.Ed25519PrivateKey {
	t.Helper()

	signers := make([]*crypto.Ed25519PrivateKey, n)
	for i := 0; i < n; i++ {
		key, err := crypto.GenerateEd25519Key()
		require.NoError(t, err, "generate Ed25519 key %d", i)
		signers[i] = key
	}
	return signers
}

// generateBLSSigners creates n fresh BLS12-381 keys.
func generateBLSSigners(t *testing.T, n int) []*crypto.BLSPrivateKey {
	t.Helper()

	signers := make([]*crypto.BLSPrivateKey, n)
	for i := 0; i < n; i++ {
		key, err := crypto.GenerateBLSKey()
		require.NoError(t, err, "generate BLS key %d", i)
		signers[i] = key
	}
	return signers
}

// equalWeightAuthorities builds an authority list assigning weight 1 to each
// signer, in order.
func equalWeightAuthorities(signers ...Signer) AuthorityList {
	list := make(AuthorityList, 0, len(signers))
	for _, s := range signers {
		list = append(list, Authority{ID: SignerAuthority(s), Weight: 1})
	}
	return list
}

// signedVotesFor produces one valid signed vote per signer for the given
// proposal digest and view.
func signedVotesFor(t *testing.T, proposalHash Digest, view ViewNumber, signers ...Signer) []*Vote {
	t.Helper()

	votes := make([]*Vote, 0, len(signers))
	for _, s := range signers {
		vote, err := NewSignedVote(proposalHash, view, s)
		require.NoError(t, err)
		votes = append(votes, vote)
	}
	return votes
}

// asSigners widens a concrete key slice to []Signer for the variadic
// helpers.
func asSigners[S Signer](keys []S) []Signer {
	signers := make([]Signer, len(keys))
	for i, k := range keys {
		signers[i] = k
	}
	return signers
}
