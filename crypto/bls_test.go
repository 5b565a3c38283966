package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBLSSignVerify(t *testing.T) {
	sk, err := GenerateBLSKey()
	require.NoError(t, err)

	pub := sk.Public()
	require.Len(t, pub, 1+BLSPublicKeySize)
	assert.Equal(t, SchemeBLS12381, pub[0])

	message := []byte("vote content")
	sig, err := sk.Sign(message)
	require.NoError(t, err)
	require.Len(t, sig, BLSSignatureSize)

	assert.True(t, Verify(pub, message, sig))
	assert.False(t, Verify(pub, []byte("other content"), sig))

	other, err := GenerateBLSKey()
	require.NoError(t, err)
	assert.False(t, Verify(other.Public(), message, sig))
}

func TestBLSVerifyRejectsMalformedInput(t *testing.T) {
	sk, err := GenerateBLSKey()
	require.NoError(t, err)

	message := []byte("vote content")
	sig, err := sk.Sign(message)
	require.NoError(t, err)

	// Garbage signature bytes fail to deserialize, never panic.
	garbage := make([]byte, BLSSignatureSize)
	assert.False(t, Verify(sk.Public(), message, garbage))
	assert.False(t, Verify(sk.Public(), message, sig[:BLSSignatureSize-1]))
	assert.False(t, Verify(sk.Public(), message, nil))

	// Garbage public key bytes likewise.
	badKey := append([]byte{SchemeBLS12381}, make([]byte, BLSPublicKeySize)...)
	assert.False(t, Verify(badKey, message, sig))
}

func TestBLSPrivateKeyRoundTrip(t *testing.T) {
	sk, err := GenerateBLSKey()
	require.NoError(t, err)

	restored, err := BLSPrivateKeyFromBytes(sk.Bytes())
	require.NoError(t, err)
	assert.Equal(t, sk.Public(), restored.Public())

	message := []byte("content")
	sig, err := restored.Sign(message)
	require.NoError(t, err)
	assert.True(t, Verify(sk.Public(), message, sig))

	_, err = BLSPrivateKeyFromBytes([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestBLSAggregation(t *testing.T) {
	const n = 4
	message := []byte("common digest")

	keys := make([]*BLSPrivateKey, n)
	sigs := make([]*BLSSignature, n)
	pubs := make([]*BLSPublicKey, n)
	for i := range keys {
		sk, err := GenerateBLSKey()
		require.NoError(t, err)
		keys[i] = sk

		sigBytes, err := sk.Sign(message)
		require.NoError(t, err)
		sig, err := BLSSignatureFromBytes(sigBytes)
		require.NoError(t, err)
		sigs[i] = sig

		pk, err := BLSPublicKeyFromBytes(sk.Public()[1:])
		require.NoError(t, err)
		pubs[i] = pk
	}

	agg, err := AggregateSignatures(sigs)
	require.NoError(t, err)
	assert.Len(t, agg.Bytes(), BLSSignatureSize)

	require.NoError(t, VerifyAggregated(message, agg, pubs))

	// Dropping a signer from the key set breaks verification.
	assert.ErrorIs(t, VerifyAggregated(message, agg, pubs[:n-1]), ErrInvalidBLSSignature)

	// So does a different message.
	assert.ErrorIs(t, VerifyAggregated([]byte("other digest"), agg, pubs), ErrInvalidBLSSignature)

	// An aggregate over a subset verifies against exactly that subset.
	partial, err := AggregateSignatures(sigs[:2])
	require.NoError(t, err)
	require.NoError(t, VerifyAggregated(message, partial, pubs[:2]))
	assert.ErrorIs(t, VerifyAggregated(message, partial, pubs), ErrInvalidBLSSignature)
}

func TestBLSAggregationEmptyInputs(t *testing.T) {
	_, err := AggregateSignatures(nil)
	assert.ErrorIs(t, err, ErrEmptySignatures)

	_, err = AggregatePublicKeys(nil)
	assert.ErrorIs(t, err, ErrEmptyPublicKeys)

	sk, err := GenerateBLSKey()
	require.NoError(t, err)
	sigBytes, err := sk.Sign([]byte("m"))
	require.NoError(t, err)
	sig, err := BLSSignatureFromBytes(sigBytes)
	require.NoError(t, err)

	assert.ErrorIs(t, VerifyAggregated([]byte("m"), sig, nil), ErrEmptyPublicKeys)
}

func TestBLSSignatureRoundTrip(t *testing.T) {
	sk, err := GenerateBLSKey()
	require.NoError(t, err)

	sigBytes, err := sk.Sign([]byte("m"))
	require.NoError(t, err)

	sig, err := BLSSignatureFromBytes(sigBytes)
	require.NoError(t, err)
	assert.Equal(t, sigBytes, sig.Bytes())

	pk, err := BLSPublicKeyFromBytes(sk.Public()[1:])
	require.NoError(t, err)
	assert.Equal(t, sk.Public()[1:], pk.Bytes())
	assert.True(t, pk.Verify([]byte("m"), sig))
	assert.False(t, pk.Verify([]byte("n"), sig))
}
