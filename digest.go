package hotstuff

import "encoding/binary"

// Canonical signed-content encodings.
//
// A message digest covers the content fields only, never the signature or a
// certificate's vote list, so the digest of a message is stable regardless
// of who has signed it. Votes and QCs referencing the same
// (proposalHash, view) share one encoding - and therefore one digest - which
// is what lets a leader verify collected votes against the certificate it is
// assembling. Timeouts and TCs share the analogous encoding over the view
// alone.

// voteContent is the common signed content of a Vote and of the QC that
// aggregates votes for the same (proposalHash, view).
// Format: [proposalHash:32][view:8]
func voteContent(proposalHash Digest, view ViewNumber) []byte {
	buf := make([]byte, DigestSize+8)
	copy(buf, proposalHash[:])
	binary.BigEndian.PutUint64(buf[DigestSize:], uint64(view))
	return buf
}

func voteDigest(proposalHash Digest, view ViewNumber) Digest {
	return NewDigest(voteContent(proposalHash, view))
}

// timeoutContent is the common signed content of a Timeout and of the TC
// that aggregates timeouts for the same view.
// Format: [view:8]
func timeoutContent(view ViewNumber) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(view))
	return buf
}

func timeoutDigest(view ViewNumber) Digest {
	return NewDigest(timeoutContent(view))
}

// proposalContent encodes the content fields of a Proposal. The embedded
// certificates contribute through their own digests, which already exclude
// their vote lists.
// Format: [qcDigest:32][hasTC:1][tcDigest:32?][payloadLen:2][payload][view:8][authorLen:2][author]
func proposalContent[H Hash](qc *QC, tc *TC, payload H, view ViewNumber, author AuthorityId) []byte {
	payloadBytes := payload.Bytes()
	authorBytes := author.Bytes()

	size := DigestSize + 1
	if tc != nil {
		size += DigestSize
	}
	size += 2 + len(payloadBytes) + 8 + 2 + len(authorBytes)
	buf := make([]byte, size)

	offset := 0
	qcDigest := qc.Digest()
	copy(buf[offset:], qcDigest[:])
	offset += DigestSize

	if tc != nil {
		buf[offset] = 1
		offset++
		tcDigest := tc.Digest()
		copy(buf[offset:], tcDigest[:])
		offset += DigestSize
	} else {
		buf[offset] = 0
		offset++
	}

	binary.BigEndian.PutUint16(buf[offset:], uint16(len(payloadBytes)))
	offset += 2
	copy(buf[offset:], payloadBytes)
	offset += len(payloadBytes)

	binary.BigEndian.PutUint64(buf[offset:], uint64(view))
	offset += 8

	binary.BigEndian.PutUint16(buf[offset:], uint16(len(authorBytes)))
	offset += 2
	copy(buf[offset:], authorBytes)

	return buf
}
