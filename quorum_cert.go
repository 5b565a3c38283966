package hotstuff

import (
	"encoding/binary"
	"fmt"

	"github.com/Web3MQ/madara-hotstuff/crypto"
)

// QC is a Quorum Certificate: an aggregation of votes proving that voting
// weight strictly exceeding two thirds of the authority set endorsed one
// proposal in one view.
//
// QC validation is the cornerstone of consensus safety. A forged QC can
// cause replicas to commit conflicting blocks. Verify therefore insists on
// distinct, recognized, validly-signed voters and re-checks the weight
// threshold even for certificates this process assembled itself.
//
// The QC's digest equals the digest of any Vote referencing the same
// (proposalHash, view): the vote list contributes nothing to it. The zero
// view, empty-vote QC is the canonical genesis justification; it passes
// Verify only against an empty (zero-total-weight) authority list, so
// callers that permit genesis must gate on IsGenesis explicitly.
type QC struct {
	proposalHash Digest
	view         ViewNumber
	votes        []QCVote
}

// QCVote is one (authority, signature) entry of a certificate's vote list.
type QCVote struct {
	Authority AuthorityId
	Signature AuthoritySignature
}

// NewQC constructs a QC with the given vote list. No validation is
// performed; Verify judges the result.
func NewQC(proposalHash Digest, view ViewNumber, votes []QCVote) *QC {
	return &QC{
		proposalHash: proposalHash,
		view:         view,
		votes:        votes,
	}
}

// GenesisQC returns the "no justification yet" certificate embedded in the
// first proposal after genesis.
func GenesisQC() *QC {
	return &QC{}
}

// QCFromVotes assembles a certificate from individually collected votes for
// (proposalHash, view). Votes are deduplicated by authority; unsigned votes
// and votes referencing a different proposal or view are rejected outright.
// Fails with ErrInsufficientQuorum if the distinct voters' weight does not
// cross the threshold. The returned QC's Digest equals each contributing
// vote's Digest, and Verify on it independently re-validates everything
// checked here.
func QCFromVotes(proposalHash Digest, view ViewNumber, votes []*Vote, authorities AuthorityList) (*QC, error) {
	weights := authorities.index()

	seen := make(map[AuthorityId]struct{}, len(votes))
	qcVotes := make([]QCVote, 0, len(votes))
	var accumulated AuthorityWeight

	for _, vote := range votes {
		if vote.View() != view {
			return nil, fmt.Errorf("vote view %d does not match QC view %d", vote.View(), view)
		}
		if vote.ProposalHash() != proposalHash {
			return nil, fmt.Errorf("vote proposal hash does not match QC proposal hash")
		}
		if vote.Signature() == nil {
			return nil, ErrNullSignature
		}

		weight, ok := weights[vote.Voter()]
		if !ok {
			return nil, UnknownAuthorityError{Authority: vote.Voter()}
		}

		// An authority voting twice contributes one unit of weight.
		if _, dup := seen[vote.Voter()]; dup {
			continue
		}
		seen[vote.Voter()] = struct{}{}

		qcVotes = append(qcVotes, QCVote{Authority: vote.Voter(), Signature: *vote.Signature()})
		accumulated += weight
	}

	if accumulated < WeightThresholdToBuildQC(authorities.TotalWeight()) {
		return nil, ErrInsufficientQuorum
	}

	return NewQC(proposalHash, view, qcVotes), nil
}

// ProposalHash returns the digest of the proposal this QC certifies.
func (qc *QC) ProposalHash() Digest {
	return qc.proposalHash
}

// View returns the view in which this QC was formed.
func (qc *QC) View() ViewNumber {
	return qc.view
}

// Votes returns a copy of the certificate's vote list.
func (qc *QC) Votes() []QCVote {
	out := make([]QCVote, len(qc.votes))
	copy(out, qc.votes)
	return out
}

// IsGenesis reports whether this is the canonical empty justification
// (view 0, no votes).
func (qc *QC) IsGenesis() bool {
	return qc.view == 0 && len(qc.votes) == 0 && qc.proposalHash == Digest{}
}

// Digest returns the common signed content digest shared with every Vote
// for the same (proposalHash, view). The vote list is excluded.
func (qc *QC) Digest() Digest {
	return voteDigest(qc.proposalHash, qc.view)
}

// Verify judges the certificate against an authority-set snapshot. Each
// vote entry is checked in list order:
//
//  1. an authority outside the list fails with UnknownAuthorityError,
//  2. an authority appearing twice fails with DuplicateVoteError,
//  3. a signature that does not verify against Digest() under the
//     authority's key fails with InvalidSignatureError.
//
// The distinct validated voters' weight must then strictly exceed two
// thirds of the list's total weight, else ErrInsufficientQuorum. A QC with
// no votes verifies only when the total weight is zero.
func (qc *QC) Verify(authorities AuthorityList) error {
	weights := authorities.index()
	digest := qc.Digest()

	seen := make(map[AuthorityId]struct{}, len(qc.votes))
	var accumulated AuthorityWeight

	for _, v := range qc.votes {
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

// AggregateBLS folds the certificate's individual vote signatures into a
// single 48-byte BLS aggregate. All voters signed the same digest, so the
// aggregate verifies against their aggregated public keys (see
// crypto.VerifyAggregated). Fails if any voter is not a BLS identity.
//
// The aggregate is a transport/persistence optimization: Verify always
// judges the individual vote list, which is what attributes a failure to a
// specific authority.
func (qc *QC) AggregateBLS() (AuthoritySignature, error) {
	if len(qc.votes) == 0 {
		return nil, crypto.ErrEmptySignatures
	}

	signatures := make([]*crypto.BLSSignature, 0, len(qc.votes))
	for _, v := range qc.votes {
		key := v.Authority.Bytes()
		if len(key) < 1 || key[0] != crypto.SchemeBLS12381 {
			return nil, fmt.Errorf("authority %s is not a BLS12-381 identity", v.Authority)
		}
		sig, err := crypto.BLSSignatureFromBytes(v.Signature)
		if err != nil {
			return nil, fmt.Errorf("failed to parse BLS signature from authority %s: %w", v.Authority, err)
		}
		signatures = append(signatures, sig)
	}

	agg, err := crypto.AggregateSignatures(signatures)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate BLS signatures: %w", err)
	}

	return agg.Bytes(), nil
}

// Bytes serializes the QC.
// Format: [proposalHash:32][view:8][voteCount:2]([authLen:2][auth][sigLen:2][sig])*
func (qc *QC) Bytes() []byte {
	size := DigestSize + 8 + 2
	for _, v := range qc.votes {
		size += 2 + len(v.Authority) + 2 + len(v.Signature)
	}
	result := make([]byte, size)

	offset := 0
	copy(result[offset:], qc.proposalHash[:])
	offset += DigestSize

	binary.BigEndian.PutUint64(result[offset:], uint64(qc.view))
	offset += 8

	binary.BigEndian.PutUint16(result[offset:], uint16(len(qc.votes)))
	offset += 2

	for _, v := range qc.votes {
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

// QCFromBytes reconstructs a QC from serialized bytes.
func QCFromBytes(data []byte) (*QC, error) {
	if len(data) < DigestSize+8+2 {
		return nil, fmt.Errorf("data too short for QC: %d bytes", len(data))
	}

	offset := 0
	var proposalHash Digest
	copy(proposalHash[:], data[offset:offset+DigestSize])
	offset += DigestSize

	view := ViewNumber(binary.BigEndian.Uint64(data[offset:]))
	offset += 8

	voteCount := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2

	votes := make([]QCVote, 0, voteCount)
	for i := 0; i < voteCount; i++ {
		if len(data) < offset+2 {
			return nil, fmt.Errorf("data too short for vote %d authority length", i)
		}
		authLen := int(binary.BigEndian.Uint16(data[offset:]))
		offset += 2
		if len(data) < offset+authLen+2 {
			return nil, fmt.Errorf("data too short for vote %d authority", i)
		}
		authority := AuthorityId(data[offset : offset+authLen])
		offset += authLen

		sigLen := int(binary.BigEndian.Uint16(data[offset:]))
		offset += 2
		if len(data) < offset+sigLen {
			return nil, fmt.Errorf("data too short for vote %d signature", i)
		}
		sig := make(AuthoritySignature, sigLen)
		copy(sig, data[offset:offset+sigLen])
		offset += sigLen

		votes = append(votes, QCVote{Authority: authority, Signature: sig})
	}

	return &QC{
		proposalHash: proposalHash,
		view:         view,
		votes:        votes,
	}, nil
}
