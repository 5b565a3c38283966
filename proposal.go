package hotstuff

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Proposal is a leader's signed claim that the payload identified by
// payload extends the chain at the given view, carrying the certificate
// that justified entering that view: the QC for the preceding proposal, or
// additionally a TC when the previous view expired.
//
// The proposal's digest covers {qc, tc, payload, view, author} and is
// stable regardless of signature presence, so a leader signs exactly the
// content every replica recomputes. A proposal is immutable after
// construction; Sign sets the signature once.
//
// The payload type H is opaque to this package - consensus only ever
// fingerprints it.
type Proposal[H Hash] struct {
	qc        *QC
	tc        *TC
	payload   H
	view      ViewNumber
	author    AuthorityId
	signature *AuthoritySignature
}

// NewProposal constructs a proposal with the signature field set as given.
// A nil signature represents an unsigned draft prior to signing. A nil qc
// is normalized to the genesis justification.
func NewProposal[H Hash](qc *QC, tc *TC, payload H, view ViewNumber, author AuthorityId, signature *AuthoritySignature) *Proposal[H] {
	if qc == nil {
		qc = GenesisQC()
	}
	return &Proposal[H]{
		qc:        qc,
		tc:        tc,
		payload:   payload,
		view:      view,
		author:    author,
		signature: signature,
	}
}

// NewSignedProposal constructs a proposal and signs its digest with the
// given signer. The author identity is derived from the signer's public
// key.
func NewSignedProposal[H Hash](qc *QC, tc *TC, payload H, view ViewNumber, signer Signer) (*Proposal[H], error) {
	p := NewProposal(qc, tc, payload, view, SignerAuthority(signer), nil)
	if err := p.Sign(signer); err != nil {
		return nil, err
	}
	return p, nil
}

// Sign signs the proposal's digest and sets the signature field. The field
// is set once; signing an already-signed proposal fails.
func (p *Proposal[H]) Sign(signer Signer) error {
	if p.signature != nil {
		return errors.New("proposal is already signed")
	}
	if SignerAuthority(signer) != p.author {
		return fmt.Errorf("signer %s is not the proposal author %s", SignerAuthority(signer), p.author)
	}

	digest := p.Digest()
	sigBytes, err := signer.Sign(digest[:])
	if err != nil {
		return fmt.Errorf("failed to sign proposal: %w", err)
	}

	sig := AuthoritySignature(sigBytes)
	p.signature = &sig
	return nil
}

// JustifyQC returns the certificate justifying this proposal's view entry.
func (p *Proposal[H]) JustifyQC() *QC {
	return p.qc
}

// JustifyTC returns the timeout certificate carried when the previous view
// expired, or nil.
func (p *Proposal[H]) JustifyTC() *TC {
	return p.tc
}

// Payload returns the opaque payload identifier.
func (p *Proposal[H]) Payload() H {
	return p.payload
}

// View returns the view this proposal is made for.
func (p *Proposal[H]) View() ViewNumber {
	return p.view
}

// Author returns the identity of the proposing leader.
func (p *Proposal[H]) Author() AuthorityId {
	return p.author
}

// Signature returns the proposal's signature, or nil if unsigned.
func (p *Proposal[H]) Signature() *AuthoritySignature {
	return p.signature
}

// Digest returns the signing target of the proposal, computed over
// {qc, tc, payload, view, author}. Signature presence does not change it.
func (p *Proposal[H]) Digest() Digest {
	return NewDigest(proposalContent(p.qc, p.tc, p.payload, p.view, p.author))
}

// Verify judges the proposal against an authority-set snapshot:
//
//  1. an absent signature fails with ErrNullSignature,
//  2. an author outside the list fails with UnknownAuthorityError,
//  3. a signature that does not verify against Digest() under the author's
//     key fails with InvalidSignatureError.
//
// Verify does NOT recurse into the embedded qc/tc: a proposal may
// legitimately carry a justification formed under a different, possibly
// stale, authority set, so the caller verifies certificates separately
// against the set they were formed under.
func (p *Proposal[H]) Verify(authorities AuthorityList) error {
	if p.signature == nil {
		return ErrNullSignature
	}
	if !authorities.Contains(p.author) {
		return UnknownAuthorityError{Authority: p.author}
	}
	if !verifySignature(p.author, p.Digest(), *p.signature) {
		return InvalidSignatureError{Authority: p.author}
	}
	return nil
}

// Bytes serializes the proposal.
// Format: [view:8][authorLen:2][author][payloadLen:2][payload]
//         [qcLen:4][qc][hasTC:1][tcLen:4][tc]?[hasSig:1][sigLen:2][sig]?
func (p *Proposal[H]) Bytes() []byte {
	authorBytes := p.author.Bytes()
	payloadBytes := p.payload.Bytes()
	qcBytes := p.qc.Bytes()

	var tcBytes []byte
	if p.tc != nil {
		tcBytes = p.tc.Bytes()
	}

	size := 8 + 2 + len(authorBytes) + 2 + len(payloadBytes) + 4 + len(qcBytes) + 1
	if p.tc != nil {
		size += 4 + len(tcBytes)
	}
	size++
	if p.signature != nil {
		size += 2 + len(*p.signature)
	}
	result := make([]byte, size)

	offset := 0
	binary.BigEndian.PutUint64(result[offset:], uint64(p.view))
	offset += 8

	binary.BigEndian.PutUint16(result[offset:], uint16(len(authorBytes)))
	offset += 2
	copy(result[offset:], authorBytes)
	offset += len(authorBytes)

	binary.BigEndian.PutUint16(result[offset:], uint16(len(payloadBytes)))
	offset += 2
	copy(result[offset:], payloadBytes)
	offset += len(payloadBytes)

	binary.BigEndian.PutUint32(result[offset:], uint32(len(qcBytes)))
	offset += 4
	copy(result[offset:], qcBytes)
	offset += len(qcBytes)

	if p.tc != nil {
		result[offset] = 1
		offset++
		binary.BigEndian.PutUint32(result[offset:], uint32(len(tcBytes)))
		offset += 4
		copy(result[offset:], tcBytes)
		offset += len(tcBytes)
	} else {
		result[offset] = 0
		offset++
	}

	if p.signature != nil {
		result[offset] = 1
		offset++
		binary.BigEndian.PutUint16(result[offset:], uint16(len(*p.signature)))
		offset += 2
		copy(result[offset:], *p.signature)
	} else {
		result[offset] = 0
	}

	return result
}

// ProposalFromBytes reconstructs a Proposal from serialized bytes. The
// payload identifier is opaque to this package, so the caller supplies its
// decoder.
func ProposalFromBytes[H Hash](data []byte, payloadFromBytes func([]byte) (H, error)) (*Proposal[H], error) {
	if len(data) < 8+2 {
		return nil, fmt.Errorf("data too short for proposal: %d bytes", len(data))
	}

	offset := 0
	view := ViewNumber(binary.BigEndian.Uint64(data[offset:]))
	offset += 8

	authorLen := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2
	if len(data) < offset+authorLen+2 {
		return nil, fmt.Errorf("data too short for author")
	}
	author := AuthorityId(data[offset : offset+authorLen])
	offset += authorLen

	payloadLen := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2
	if len(data) < offset+payloadLen+4 {
		return nil, fmt.Errorf("data too short for payload")
	}
	payload, err := payloadFromBytes(data[offset : offset+payloadLen])
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	offset += payloadLen

	qcLen := int(binary.BigEndian.Uint32(data[offset:]))
	offset += 4
	if len(data) < offset+qcLen+1 {
		return nil, fmt.Errorf("data too short for QC")
	}
	qc, err := QCFromBytes(data[offset : offset+qcLen])
	if err != nil {
		return nil, fmt.Errorf("failed to decode QC: %w", err)
	}
	offset += qcLen

	hasTC := data[offset]
	offset++

	var tc *TC
	if hasTC == 1 {
		if len(data) < offset+4 {
			return nil, fmt.Errorf("data too short for TC length")
		}
		tcLen := int(binary.BigEndian.Uint32(data[offset:]))
		offset += 4
		if len(data) < offset+tcLen {
			return nil, fmt.Errorf("data too short for TC")
		}
		tc, err = TCFromBytes(data[offset : offset+tcLen])
		if err != nil {
			return nil, fmt.Errorf("failed to decode TC: %w", err)
		}
		offset += tcLen
	}

	if len(data) < offset+1 {
		return nil, fmt.Errorf("data too short for signature flag")
	}
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

	return &Proposal[H]{
		qc:        qc,
		tc:        tc,
		payload:   payload,
		view:      view,
		author:    author,
		signature: signature,
	}, nil
}
