package hotstuff

import (
	"encoding/binary"
	"fmt"
)

// Timeout is a single authority's signed declaration that a view expired
// without a certified proposal. Timeouts are the TC analog of votes: the
// signed content is the view alone, so all timeouts for one view share one
// digest with the TC that aggregates them.
type Timeout struct {
	view      ViewNumber
	voter     AuthorityId
	signature *AuthoritySignature
}

// NewTimeout constructs a timeout with the signature as given.
func NewTimeout(view ViewNumber, voter AuthorityId, signature *AuthoritySignature) *Timeout {
	return &Timeout{view: view, voter: voter, signature: signature}
}

// NewSignedTimeout constructs a timeout and signs its digest with the given
// signer.
func NewSignedTimeout(view ViewNumber, signer Signer) (*Timeout, error) {
	t := NewTimeout(view, SignerAuthority(signer), nil)

	digest := t.Digest()
	sigBytes, err := signer.Sign(digest[:])
	if err != nil {
		return nil, fmt.Errorf("failed to sign timeout: %w", err)
	}

	sig := AuthoritySignature(sigBytes)
	t.signature = &sig
	return t, nil
}

// View returns the view that timed out.
func (t *Timeout) View() ViewNumber {
	return t.view
}

// Voter returns the identity of the declaring authority.
func (t *Timeout) Voter() AuthorityId {
	return t.voter
}

// Signature returns the timeout's signature, or nil if unsigned.
func (t *Timeout) Signature() *AuthoritySignature {
	return t.signature
}

// Digest returns the signing target, computed over the view only.
func (t *Timeout) Digest() Digest {
	return timeoutDigest(t.view)
}

// Verify applies the same judgment as Vote.Verify with the timeout's voter
// in the voter role.
func (t *Timeout) Verify(authorities AuthorityList) error {
	if t.signature == nil {
		return ErrNullSignature
	}
	if !authorities.Contains(t.voter) {
		return UnknownAuthorityError{Authority: t.voter}
	}
	if !verifySignature(t.voter, t.Digest(), *t.signature) {
		return InvalidSignatureError{Authority: t.voter}
	}
	return nil
}

// TC is a Timeout Certificate: the structural mirror of a QC aggregating
// timeouts instead of proposal votes. It proves that sufficient voting
// weight declared a view expired, justifying entry into the next view
// without a committed proposal. The pacemaker constructs and consumes TCs;
// this package supplies the same verification contract as for QCs so both
// certificate kinds are judged uniformly.
type TC struct {
	view  ViewNumber
	votes []QCVote
}

// NewTC constructs a TC with the given vote list. No validation is
// performed; Verify judges the result.
func NewTC(view ViewNumber, votes []QCVote) *TC {
	return &TC{view: view, votes: votes}
}

// TCFromTimeouts assembles a certificate from individually collected
// timeouts for a view, under the same deduplication and weight-threshold
// rules as QCFromVotes.
func TCFromTimeouts(view ViewNumber, timeouts []*Timeout, authorities AuthorityList) (*TC, error) {
	weights := authorities.index()

	seen := make(map[AuthorityId]struct{}, len(timeouts))
	votes := make([]QCVote, 0, len(timeouts))
	var accumulated AuthorityWeight

	for _, timeout := range timeouts {
		if timeout.View() != view {
			return nil, fmt.Errorf("timeout view %d does not match TC view %d", timeout.View(), view)
		}
		if timeout.Signature() == nil {
			return nil, ErrNullSignature
		}

		weight, ok := weights[timeout.Voter()]
		if !ok {
			return nil, UnknownAuthorityError{Authority: timeout.Voter()}
		}

		if _, dup := seen[timeout.Voter()]; dup {
			continue
		}
		seen[timeout.Voter()] = struct{}{}

		votes = append(votes, QCVote{Authority: timeout.Voter(), Signature: *timeout.Signature()})
		accumulated += weight
	}

	if accumulated < WeightThresholdToBuildQC(authorities.TotalWeight()) {
		return nil, ErrInsufficientQuorum
	}

	return NewTC(view, votes), nil
}

// View returns the view this TC certifies as expired.
func (tc *TC) View() ViewNumber {
	return tc.view
}

// Votes returns a copy of the certificate's vote list.
func (tc *TC) Votes() []QCVote {
	out := make([]QCVote, len(tc.votes))
	copy(out, tc.votes)
	return out
}

// Digest returns the common signed content digest shared with every Timeout
// for the same view.
func (tc *TC) Digest() Digest {
	return timeoutDigest(tc.view)
}

// Verify judges the certificate under the identical quorum rule as
// QC.Verify, with the view alone as the common signed content.
func (tc *TC) Verify(authorities AuthorityList) error {
	weights := authorities.index()
	digest := tc.Digest()

	seen := make(map[AuthorityId]struct{}, len(tc.votes))
	var accumulated AuthorityWeight

	for _, v := range tc.votes {
		weight, ok := weights[v.Authority]
		if !ok {
			return UnknownAuthorityError{Authority: v.Authority}
		}
		if _, dup := seen[v.Authority]; dup {
			return DuplicateVoteError{Authority: v.Authority}
		}
		seen[v.Authority] = struct{}{}

		if !verifySignature(v.Authority, digest, v.Signature) {
			return InvalidSignatureError{Authority: v.Authority}
		}
		accumulated += weight
	}

	total := authorities.TotalWeight()
	if total > 0 && accumulated < WeightThresholdToBuildQC(total) {
		return ErrInsufficientQuorum
	}

	return nil
}

// Bytes serializes the TC.
// Format: [view:8][voteCount:2]([authLen:2][auth][sigLen:2][sig])*
func (tc *TC) Bytes() []byte {
	size := 8 + 2
	for _, v := range tc.votes {
		size += 2 + len(v.Authority) + 2 + len(v.Signature)
	}
	result := make([]byte, size)

	offset := 0
	binary.BigEndian.PutUint64(result[offset:], uint64(tc.view))
	offset += 8

	binary.BigEndian.PutUint16(result[offset:], uint16(len(tc.votes)))
	offset += 2

	for _, v := range tc.votes {
		binary.BigEndian.PutUint16(result[offset:], uint16(len(v.Authority)))
		offset += 2
		copy(result[offset:], v.Authority)
		offset += len(v.Authority)

		binary.BigEndian.PutUint16(result[offset:], uint16(len(v.Signature)))
		offset += 2
		copy(result[offset:], v.Signature)
		offset += len(v.Signature)
	}

	return result
}

// TCFromBytes reconstructs a TC from serialized bytes.
func TCFromBytes(data []byte) (*TC, error) {
	if len(data) < 8+2 {
		return nil, fmt.Errorf("data too short for TC: %d bytes", len(data))
	}

	offset := 0
	view := ViewNumber(binary.BigEndian.Uint64(data[offset:]))
	offset += 8

	voteCount := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2

	votes := make([]QCVote, 0, voteCount)
	for i := 0; i < voteCount; i++ {
		if len(data) < offset+2 {
			return nil, fmt.Errorf("data too short for timeout %d authority length", i)
		}
		authLen := int(binary.BigEndian.Uint16(data[offset:]))
		offset += 2
		if len(data) < offset+authLen+2 {
			return nil, fmt.Errorf("data too short for timeout %d authority", i)
		}
		authority := AuthorityId(data[offset : offset+authLen])
		offset += authLen

		sigLen := int(binary.BigEndian.Uint16(data[offset:]))
		offset += 2
		if len(data) < offset+sigLen {
			return nil, fmt.Errorf("data too short for timeout %d signature", i)
		}
		sig := make(AuthoritySignature, sigLen)
		copy(sig, data[offset:offset+sigLen])
		offset += sigLen

		votes = append(votes, QCVote{Authority: authority, Signature: sig})
	}

	return &TC{view: view, votes: votes}, nil
}
