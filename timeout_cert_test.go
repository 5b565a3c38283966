package hotstuff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeoutVerify(t *testing.T) {
	keys := generateEd25519Signers(t, 3)
	authorities := equalWeightAuthorities(asSigners(keys[:2])...)

	view := ViewNumber(4)

	normal, err := NewSignedTimeout(view, keys[0])
	require.NoError(t, err)

	wrongBytes, err := keys[0].Sign([]byte("not the timeout digest"))
	require.NoError(t, err)
	wrongSig := AuthoritySignature(wrongBytes)

	outsider, err := NewSignedTimeout(view, keys[2])
	require.NoError(t, err)

	cases := []struct {
		describe string
		timeout  *Timeout
		want     error
	}{
		{
			describe: "null signature",
			timeout:  NewTimeout(view, SignerAuthority(keys[0]), nil),
			want:     ErrNullSignature,
		},
		{
			describe: "invalid signature",
			timeout:  NewTimeout(view, SignerAuthority(keys[0]), &wrongSig),
			want:     ErrInvalidSignature,
		},
		{
			describe: "unknown voter",
			timeout:  outsider,
			want:     ErrUnknownAuthority,
		},
		{
			describe: "normal timeout",
			timeout:  normal,
			want:     nil,
		},
	}

	for _, tc := range cases {
		err := tc.timeout.Verify(authorities)
		if tc.want == nil {
			assert.NoError(t, err, "timeout verify failed: %s", tc.describe)
		} else {
			assert.ErrorIs(t, err, tc.want, "timeout verify failed: %s", tc.describe)
		}
	}
}

func TestTCFromTimeouts(t *testing.T) {
	keys := generateEd25519Signers(t, 4)
	authorities := equalWeightAuthorities(asSigners(keys[:3])...)

	view := ViewNumber(6)

	timeouts := make([]*Timeout, 0, 3)
	for _, k := range keys[:3] {
		timeout, err := NewSignedTimeout(view, k)
		require.NoError(t, err)
		timeouts = append(timeouts, timeout)
	}

	t.Run("assembles verifiable certificate", func(t *testing.T) {
		tc, err := TCFromTimeouts(view, timeouts, authorities)
		require.NoError(t, err)
		assert.Equal(t, view, tc.View())
		assert.Len(t, tc.Votes(), 3)
		assert.NoError(t, tc.Verify(authorities))
	})

	t.Run("insufficient weight", func(t *testing.T) {
		_, err := TCFromTimeouts(view, timeouts[:2], authorities)
		assert.ErrorIs(t, err, ErrInsufficientQuorum)
	})

	t.Run("duplicate timeouts count once", func(t *testing.T) {
		padded := []*Timeout{timeouts[0], timeouts[0], timeouts[1], timeouts[1]}
		_, err := TCFromTimeouts(view, padded, authorities)
		assert.ErrorIs(t, err, ErrInsufficientQuorum)
	})

	t.Run("unsigned timeout rejected", func(t *testing.T) {
		unsigned := NewTimeout(view, SignerAuthority(keys[0]), nil)
		_, err := TCFromTimeouts(view, []*Timeout{unsigned}, authorities)
		assert.ErrorIs(t, err, ErrNullSignature)
	})

	t.Run("unknown voter rejected", func(t *testing.T) {
		outsider, err := NewSignedTimeout(view, keys[3])
		require.NoError(t, err)
		_, err = TCFromTimeouts(view, []*Timeout{outsider}, authorities)
		assert.ErrorIs(t, err, ErrUnknownAuthority)
	})

	t.Run("mismatched view rejected", func(t *testing.T) {
		stray, err := NewSignedTimeout(view+1, keys[0])
		require.NoError(t, err)
		_, err = TCFromTimeouts(view, []*Timeout{stray}, authorities)
		assert.Error(t, err)
	})
}

func TestTCVerify(t *testing.T) {
	keys := generateEd25519Signers(t, 4)
	authorities := equalWeightAuthorities(asSigners(keys[:3])...)

	view := ViewNumber(8)

	votes := make([]QCVote, 0, 3)
	for _, k := range keys[:3] {
		timeout, err := NewSignedTimeout(view, k)
		require.NoError(t, err)
		votes = append(votes, QCVote{Authority: timeout.Voter(), Signature: *timeout.Signature()})
	}

	outsider, err := NewSignedTimeout(view, keys[3])
	require.NoError(t, err)

	// A signature from a member over the wrong content.
	wrongBytes, err := keys[2].Sign([]byte("other content"))
	require.NoError(t, err)
	corrupted := append(append([]QCVote{}, votes[:2]...), QCVote{Authority: votes[2].Authority, Signature: wrongBytes})

	cases := []struct {
		describe string
		tc       *TC
		want     error
	}{
		{
			describe: "full quorum",
			tc:       NewTC(view, votes),
			want:     nil,
		},
		{
			describe: "two votes of three",
			tc:       NewTC(view, votes[:2]),
			want:     ErrInsufficientQuorum,
		},
		{
			describe: "duplicate voter",
			tc:       NewTC(view, append(append([]QCVote{}, votes...), votes[0])),
			want:     ErrDuplicateVote,
		},
		{
			describe: "unknown voter",
			tc:       NewTC(view, append(append([]QCVote{}, votes[:2]...), QCVote{Authority: outsider.Voter(), Signature: *outsider.Signature()})),
			want:     ErrUnknownAuthority,
		},
		{
			describe: "corrupted signature",
			tc:       NewTC(view, corrupted),
			want:     ErrInvalidSignature,
		},
	}

	for _, c := range cases {
		err := c.tc.Verify(authorities)
		if c.want == nil {
			assert.NoError(t, err, "TC verify failed: %s", c.describe)
		} else {
			assert.ErrorIs(t, err, c.want, "TC verify failed: %s", c.describe)
		}
	}
}

func TestTCDigestMatchesTimeoutDigest(t *testing.T) {
	keys := generateEd25519Signers(t, 2)

	view := ViewNumber(12)
	timeout, err := NewSignedTimeout(view, keys[0])
	require.NoError(t, err)

	tc := NewTC(view, []QCVote{{Authority: timeout.Voter(), Signature: *timeout.Signature()}})
	assert.Equal(t, timeout.Digest(), tc.Digest())

	// The digest covers the view only, never the voter.
	other, err := NewSignedTimeout(view, keys[1])
	require.NoError(t, err)
	assert.Equal(t, timeout.Digest(), other.Digest())

	assert.NotEqual(t, tc.Digest(), NewTC(view+1, nil).Digest())

	// Timeouts and votes for the same view never share a digest.
	assert.NotEqual(t, tc.Digest(), voteDigest(Digest{}, view))
}

func TestTCSerialization(t *testing.T) {
	keys := generateEd25519Signers(t, 3)
	authorities := equalWeightAuthorities(asSigners(keys)...)

	view := ViewNumber(14)
	timeouts := make([]*Timeout, 0, len(keys))
	for _, k := range keys {
		timeout, err := NewSignedTimeout(view, k)
		require.NoError(t, err)
		timeouts = append(timeouts, timeout)
	}

	original, err := TCFromTimeouts(view, timeouts, authorities)
	require.NoError(t, err)

	restored, err := TCFromBytes(original.Bytes())
	require.NoError(t, err)

	assert.Equal(t, original.View(), restored.View())
	assert.Equal(t, original.Votes(), restored.Votes())
	assert.Equal(t, original.Digest(), restored.Digest())
	assert.NoError(t, restored.Verify(authorities))
}

func TestTCFromBytesInvalidInput(t *testing.T) {
	_, err := TCFromBytes(nil)
	assert.Error(t, err)

	_, err = TCFromBytes(make([]byte, 4))
	assert.Error(t, err)

	truncated := NewTC(1, nil).Bytes()
	truncated[len(truncated)-1] = 3
	_, err = TCFromBytes(truncated)
	assert.Error(t, err)
}
