package contract

import (
	"fmt"

	"ridegov/sdk"
)

// loadProposal decodes one proposal and reports ErrProposalNotFound when the
// id was never created (or was reserved by a failed create).
func loadProposal(st State, id uint64) (*Proposal, error) {
	data := st.Get(proposalKey(id))
	if data == nil {
		return nil, fmt.Errorf("%w: %d", ErrProposalNotFound, id)
	}
	prpsl, err := DecodeProposal(data)
	if err != nil {
		return nil, fmt.Errorf("decode proposal %d: %w", id, err)
	}
	return prpsl, nil
}

func saveProposal(st State, prpsl *Proposal) {
	st.Set(proposalKey(prpsl.ID), EncodeProposal(prpsl))
}

// loadProposals walks every stored proposal in id order.
func loadProposals(st State) ([]*Proposal, error) {
	var out []*Proposal
	err := st.Scan(proposalPrefix(), func(key string, value []byte) error {
		prpsl, err := DecodeProposal(value)
		if err != nil {
			return fmt.Errorf("decode proposal key %x: %w", key, err)
		}
		out = append(out, prpsl)
		return nil
	})
	return out, err
}

// loadBallot returns nil when the voter has no receipt on the proposal.
func loadBallot(st State, id uint64, voter sdk.Address) (*Ballot, error) {
	data := st.Get(ballotKey(id, voter))
	if data == nil {
		return nil, nil
	}
	b, err := DecodeBallot(data)
	if err != nil {
		return nil, fmt.Errorf("decode ballot %d/%s: %w", id, voter, err)
	}
	return b, nil
}

func saveBallot(st State, id uint64, b *Ballot) {
	st.Set(ballotKey(id, b.Voter), EncodeBallot(b))
}

// loadBallots lists every receipt of one proposal in voter order.
func loadBallots(st State, id uint64) ([]*Ballot, error) {
	var out []*Ballot
	err := st.Scan(ballotPrefix(id), func(key string, value []byte) error {
		b, err := DecodeBallot(value)
		if err != nil {
			return fmt.Errorf("decode ballot key %x: %w", key, err)
		}
		out = append(out, b)
		return nil
	})
	return out, err
}
