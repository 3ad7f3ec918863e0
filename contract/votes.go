package contract

import (
	"fmt"

	"ridegov/sdk"
)

// -----------------------------------------------------------------------------
// Voting
// -----------------------------------------------------------------------------

// Vote casts one yes/no ballot. Review and Voting both accept ballots; the
// window closes at VotingEndTime. The receipt is written in the same
// transaction as the tally so a voter can never be counted twice.
// Example payload: e.Vote("user:bob", 3, true)
func (e *Engine) Vote(voter sdk.Address, id uint64, support bool) (*Proposal, error) {
	if !voter.IsValid() {
		return nil, fmt.Errorf("%w: invalid voter %q", ErrUnauthorized, voter)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	var out *Proposal
	err := e.update("vote", func(tx *txn) error {
		p, err := loadProposal(tx, id)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return fmt.Errorf("%w: proposal %d", ErrProposalNotActive, id)
		}
		now := e.now()
		if now >= p.VotingEndTime {
			return fmt.Errorf("%w: voting ended at %d", ErrVotingPeriodEnded, p.VotingEndTime)
		}
		prev, err := loadBallot(tx, id, voter)
		if err != nil {
			return err
		}
		if prev != nil {
			return fmt.Errorf("%w: %s on proposal %d", ErrAlreadyVoted, voter, id)
		}
		if support {
			p.VoteYes++
		} else {
			p.VoteNo++
		}
		p.TotalVotes = p.VoteYes + p.VoteNo
		b := &Ballot{Voter: voter, Support: support, CastAt: now}
		saveBallot(tx, id, b)
		saveProposal(tx, p)
		emitVoteCasted(tx, p, b)
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.metrics.voted(support)
	return out, nil
}

// Ballot returns voter's receipt on proposal id, or nil if they did not vote.
func (e *Engine) Ballot(id uint64, voter sdk.Address) (*Ballot, error) {
	var b *Ballot
	err := e.store.View(func(st State) error {
		if _, err := loadProposal(st, id); err != nil {
			return err
		}
		var err error
		b, err = loadBallot(st, id, voter)
		return err
	})
	return b, err
}

// Ballots lists every receipt cast on proposal id.
func (e *Engine) Ballots(id uint64) ([]*Ballot, error) {
	var out []*Ballot
	err := e.store.View(func(st State) error {
		if _, err := loadProposal(st, id); err != nil {
			return err
		}
		var err error
		out, err = loadBallots(st, id)
		return err
	})
	return out, err
}
