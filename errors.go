package hotstuff

import (
	"errors"
	"fmt"
)

// Verification error kinds.
//
// Every verification failure is locally recoverable: the caller (pacemaker,
// chain-safety logic) decides whether to discard the message, penalize the
// sender, or request retransmission. This package never panics on malformed
// input - adversarial messages are the expected common case.
//
// Kinds carrying an offending AuthorityId are typed errors that also match
// their sentinel via errors.Is, so callers can branch on the class and
// extract the authority with errors.As.
var (
	// ErrNullSignature indicates a message that must carry a signature
	// has none.
	ErrNullSignature = errors.New("message is not signed")

	// ErrInvalidSignature indicates a present signature does not verify
	// against the claimed signer's key and the message digest.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrUnknownAuthority indicates the named author or voter is not in
	// the supplied authority list.
	ErrUnknownAuthority = errors.New("unknown authority")

	// ErrDuplicateVote indicates the same authority appears more than once
	// in a certificate's vote list.
	ErrDuplicateVote = errors.New("duplicate vote")

	// ErrInsufficientQuorum indicates the accumulated validated weight does
	// not cross the Byzantine threshold.
	ErrInsufficientQuorum = errors.New("insufficient quorum weight")
)

// InvalidSignatureError reports a signature that fails verification under
// the claimed signer's key.
type InvalidSignatureError struct {
	Authority AuthorityId
}

func (e InvalidSignatureError) Error() string {
	return fmt.Sprintf("invalid signature from authority %s", e.Authority)
}

// Is matches ErrInvalidSignature.
func (e InvalidSignatureError) Is(target error) bool {
	return target == ErrInvalidSignature
}

// UnknownAuthorityError reports an author or voter absent from the
// authority list.
type UnknownAuthorityError struct {
	Authority AuthorityId
}

func (e UnknownAuthorityError) Error() string {
	return fmt.Sprintf("authority %s is not in the authority set", e.Authority)
}

// Is matches ErrUnknownAuthority.
func (e UnknownAuthorityError) Is(target error) bool {
	return target == ErrUnknownAuthority
}

// DuplicateVoteError reports an authority contributing more than one vote
// to a single certificate.
type DuplicateVoteError struct {
	Authority AuthorityId
}

func (e DuplicateVoteError) Error() string {
	return fmt.Sprintf("duplicate vote from authority %s", e.Authority)
}

// Is matches ErrDuplicateVote.
func (e DuplicateVoteError) Is(target error) bool {
	return target == ErrDuplicateVote
}
