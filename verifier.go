package hotstuff

import (
	"errors"

	"go.uber.org/zap"
)

// Verifier is the configured entry point the surrounding engine feeds
// adversarial messages through. The type methods (Proposal.Verify and
// friends) implement the verification contract and stay pure; the Verifier
// wraps them with structured logging of rejections and with the one
// selectable compatibility behavior described below.
//
// Legacy vote errors: earlier deployments reported ErrNullSignature for a
// vote whose signature was produced by the wrong signer, where the
// proposal analog correctly reports InvalidSignatureError. The principled
// contract (InvalidSignatureError for a present-but-wrong signature) is the
// default; WithLegacyVoteErrors reproduces the older behavior for
// deployments that need bit-for-bit compatible rejections.
type Verifier[H Hash] struct {
	logger           *zap.Logger
	legacyVoteErrors bool
}

// VerifierOption is a functional option for configuring a Verifier.
type VerifierOption[H Hash] func(*Verifier[H]) error

// NewVerifier creates a Verifier with the given options.
func NewVerifier[H Hash](opts ...VerifierOption[H]) (*Verifier[H], error) {
	v := &Verifier[H]{
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// WithLogger sets the logger for rejected-message reporting.
func WithLogger[H Hash](logger *zap.Logger) VerifierOption[H] {
	return func(v *Verifier[H]) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		v.logger = logger
		return nil
	}
}

// WithLegacyVoteErrors makes VerifyVote report ErrNullSignature instead of
// InvalidSignatureError when a vote carries a signature by the wrong key.
func WithLegacyVoteErrors[H Hash](enabled bool) VerifierOption[H] {
	return func(v *Verifier[H]) error {
		v.legacyVoteErrors = enabled
		return nil
	}
}

// VerifyProposal judges a candidate proposal before the replica votes on it.
func (v *Verifier[H]) VerifyProposal(p *Proposal[H], authorities AuthorityList) error {
	if err := p.Verify(authorities); err != nil {
		v.logger.Debug("rejected proposal",
			zap.Uint64("view", uint64(p.View())),
			zap.Stringer("author", p.Author()),
			zap.Error(err))
		return err
	}
	return nil
}

// VerifyVote judges a collected vote before it counts toward a QC.
func (v *Verifier[H]) VerifyVote(vote *Vote, authorities AuthorityList) error {
	err := vote.Verify(authorities)
	if err == nil {
		return nil
	}

	if v.legacyVoteErrors && errors.Is(err, ErrInvalidSignature) {
		err = ErrNullSignature
	}

	v.logger.Debug("rejected vote",
		zap.Uint64("view", uint64(vote.View())),
		zap.Stringer("voter", vote.Voter()),
		zap.Error(err))
	return err
}

// VerifyQC judges a quorum certificate embedded in a proposal or received
// from a leader.
func (v *Verifier[H]) VerifyQC(qc *QC, authorities AuthorityList) error {
	if err := qc.Verify(authorities); err != nil {
		v.logger.Debug("rejected QC",
			zap.Uint64("view", uint64(qc.View())),
			zap.Int("votes", len(qc.votes)),
			zap.Error(err))
		return err
	}
	return nil
}

// VerifyTC judges a timeout certificate under the same quorum rule as a QC.
func (v *Verifier[H]) VerifyTC(tc *TC, authorities AuthorityList) error {
	if err := tc.Verify(authorities); err != nil {
		v.logger.Debug("rejected TC",
			zap.Uint64("view", uint64(tc.View())),
			zap.Int("votes", len(tc.votes)),
			zap.Error(err))
		return err
	}
	return nil
}
