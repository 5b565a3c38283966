package hotstuff

import (
	"encoding/binary"
	"fmt"
)

// Vote is a single authority's signed endorsement of a specific proposal.
//
// The vote's digest deliberately covers only (proposalHash, view) - not the
// voter or the signature - so every vote for the same proposal in the same
// view signs the same content, and the QC aggregating those votes shares
// their digest. Votes are ephemeral: a leader consumes them while forming a
// QC and does not persist them beyond aggregation.
type Vote struct {
	proposalHash Digest
	view         ViewNumber
	voter        AuthorityId
	signature    *AuthoritySignature
}

// NewVote constructs a vote with the signature as given. A nil signature
// represents an unsigned draft.
func NewVote(proposalHash Digest, view ViewNumber, voter AuthorityId, signature *AuthoritySignature) *Vote {
	return &Vote{
		proposalHash: proposalHash,
		view:         view,
		voter:        voter,
		signature:    signature,
	}
}

// NewSignedVote constructs a vote and signs its digest with the given
// signer. The voter identity is derived from the signer's public key.
func NewSignedVote(proposalHash Digest, view ViewNumber, signer Signer) (*Vote, error) {
	v := NewVote(proposalHash, view, SignerAuthority(signer), nil)

	digest := v.Digest()
	sigBytes, err := signer.Sign(digest[:])
	if err != nil {
		return nil, fmt.Errorf("failed to sign vote: %w", err)
	}

	sig := AuthoritySignature(sigBytes)
	v.signature = &sig
	return v, nil
}

// ProposalHash returns the digest of the proposal being endorsed.
func (v *Vote) ProposalHash() Digest {
	return v.proposalHash
}

// View returns the view number of this vote.
func (v *Vote) View() ViewNumber {
	return v.view
}

// Voter returns the identity of the endorsing authority.
func (v *Vote) Voter() AuthorityId {
	return v.voter
}

// Signature returns the vote's signature, or nil if unsigned.
func (v *Vote) Signature() *AuthoritySignature {
	return v.signature
}

// Digest returns the signing target of the vote, computed over
// (proposalHash, view) only. It equals the digest of the QC aggregating
// votes for the same proposal and view.
func (v *Vote) Digest() Digest {
	return voteDigest(v.proposalHash, v.view)
}

// Verify judges the vote against an authority-set snapshot:
//
//  1. an absent signature fails with ErrNullSignature,
//  2. a voter outside the list fails with UnknownAuthorityError,
//  3. a signature that does not verify against Digest() under the voter's
//     key fails with InvalidSignatureError.
func (v *Vote) Verify(authorities AuthorityList) error {
	if v.signature == nil {
		return ErrNullSignature
	}
	if !authorities.Contains(v.voter) {
		return UnknownAuthorityError{Authority: v.voter}
	}
	if !verifySignature(v.voter, v.Digest(), *v.signature) {
		return InvalidSignatureError{Authority: v.voter}
	}
	return nil
}

// Bytes serializes the vote.
// Format: [proposalHash:32][view:8][voterLen:2][voter][hasSig:1][sigLen:2][sig]
func (v *Vote) Bytes() []byte {
	voterBytes := v.voter.Bytes()

	size := DigestSize + 8 + 2 + len(voterBytes) + 1
	if v.signature != nil {
		size += 2 + len(*v.signature)
	}
	result := make([]byte, size)

	offset := 0
	copy(result[offset:], v.proposalHash[:])
	offset += DigestSize

	binary.BigEndian.PutUint64(result[offset:], uint64(v.view))
	offset += 8

	binary.BigEndian.PutUint16(result[offset:], uint16(len(voterBytes)))
	offset += 2
	copy(result[offset:], voterBytes)
	offset += len(voterBytes)

	if v.signature == nil {
		result[offset] = 0
		return result
	}

	result[offset] = 1
	offset++
	binary.BigEndian.PutUint16(result[offset:], uint16(len(*v.signature)))
	offset += 2
	copy(result[offset:], *v.signature)

	return result
}

// VoteFromBytes reconstructs a Vote from serialized bytes.
func VoteFromBytes(data []byte) (*Vote, error) {
	if len(data) < DigestSize+8+2+1 {
		return nil, fmt.Errorf("data too short for vote: %d bytes", len(data))
	}

	offset := 0
	var proposalHash Digest
	copy(proposalHash[:], data[offset:offset+DigestSize])
	offset += DigestSize

	view := ViewNumber(binary.BigEndian.Uint64(data[offset:]))
	offset += 8

	voterLen := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2
	if len(data) < offset+voterLen+1 {
		return nil, fmt.Errorf("data too short for voter")
	}
	voter := AuthorityId(data[offset : offset+voterLen])
	offset += voterLen

	hasSig := data[offset]
	offset++

	var signature *AuthoritySignature
	if hasSig == 1 {
		if len(data) < offset+2 {
			return nil, fmt.Errorf("data too short for signature length")
		}
		sigLen := int(binary.BigEndian.Uint16(data[offset:]))
		offset += 2
		if len(data) < offset+sigLen {
			return nil, fmt.Errorf("data too short for signature")
		}
		sig := make(AuthoritySignature, sigLen)
		copy(sig, data[offset:offset+sigLen])
		signature = &sig
	}

	return &Vote{
		proposalHash: proposalHash,
		view:         view,
		voter:        voter,
		signature:    signature,
	}, nil
}
