package contract

import "errors"

var (
	ErrInsufficientBalance     = errors.New("insufficient balance")
	ErrTransferFailed          = errors.New("transfer failed")
	ErrProposalNotActive       = errors.New("proposal not active")
	ErrProposalStillActive     = errors.New("proposal still active")
	ErrVotingPeriodEnded       = errors.New("voting period ended")
	ErrVotingPeriodNotEnded    = errors.New("voting period not ended")
	ErrProposalNotApproved     = errors.New("proposal not approved")
	ErrProposalAlreadyExecuted = errors.New("proposal already executed")
	ErrTimelockNotExpired      = errors.New("timelock not expired")
	ErrInvalidParameters       = errors.New("invalid parameters")
	// ErrQuorumNotReached is a rejection reason, reported through CloseResult.
	ErrQuorumNotReached = errors.New("quorum not reached")
	// ErrNoMajority is the rejection reason when quorum was met but yes <= no.
	ErrNoMajority = errors.New("no majority")

	ErrProposalNotFound   = errors.New("proposal not found")
	ErrAlreadyVoted       = errors.New("already voted")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotInitialized     = errors.New("governance not initialized")
	ErrAlreadyInitialized = errors.New("governance already initialized")
	ErrInvalidProposal    = errors.New("invalid proposal")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidConfig      = errors.New("invalid config")
	ErrEscrowMismatch     = errors.New("escrow mismatch")
)

// reasonFromString maps a stored reject reason back to its sentinel.
func reasonFromString(s string) error {
	switch s {
	case "":
		return nil
	case ErrQuorumNotReached.Error():
		return ErrQuorumNotReached
	case ErrNoMajority.Error():
		return ErrNoMajority
	default:
		return errors.New(s)
	}
}

// Reason returns why a closed proposal was rejected, nil otherwise.
func (p *Proposal) Reason() error {
	return reasonFromString(p.RejectReason)
}
