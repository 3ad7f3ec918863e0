package contract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridegov/contract"
)

func TestVoteDuringReviewAndVoting(t *testing.T) {
	gt := SetupGovernanceTest(t)
	prpsl := createGenericProposal(t, gt, alice)

	p, err := gt.engine.Vote(bob, prpsl.ID, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), p.VoteYes)
	assert.Equal(t, uint64(1), p.TotalVotes)

	gt.at(prpsl.ReviewEndTime)
	p, err = gt.engine.Vote(outsider, prpsl.ID, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), p.VoteNo)
	assert.Equal(t, uint64(2), p.TotalVotes)
}

func TestVoteWindowEdge(t *testing.T) {
	gt := SetupGovernanceTest(t)
	prpsl := createGenericProposal(t, gt, alice)
	castVotes(t, gt, prpsl.ID, 7, 3)

	gt.at(prpsl.VotingEndTime - 1)
	p, err := gt.engine.Vote(bob, prpsl.ID, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), p.TotalVotes)

	gt.at(prpsl.VotingEndTime)
	_, err = gt.engine.Vote(outsider, prpsl.ID, true)
	require.ErrorIs(t, err, contract.ErrVotingPeriodEnded)

	stored, err := gt.engine.GetProposal(prpsl.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), stored.TotalVotes)
}

func TestVoteTwiceRejected(t *testing.T) {
	gt := SetupGovernanceTest(t)
	prpsl := createGenericProposal(t, gt, alice)

	_, err := gt.engine.Vote(bob, prpsl.ID, true)
	require.NoError(t, err)
	_, err = gt.engine.Vote(bob, prpsl.ID, false)
	require.ErrorIs(t, err, contract.ErrAlreadyVoted)

	stored, err := gt.engine.GetProposal(prpsl.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stored.VoteYes)
	assert.Equal(t, uint64(0), stored.VoteNo)

	ballot, err := gt.engine.Ballot(prpsl.ID, bob)
	require.NoError(t, err)
	require.NotNil(t, ballot)
	assert.True(t, ballot.Support)
	assert.Equal(t, genesis.Unix(), ballot.CastAt)
}

func TestVoteOnClosedProposal(t *testing.T) {
	gt := SetupGovernanceTest(t)
	prpsl := createGenericProposal(t, gt, alice)
	gt.at(prpsl.VotingEndTime)
	_, err := gt.engine.CloseProposal(alice, prpsl.ID)
	require.NoError(t, err)

	_, err = gt.engine.Vote(bob, prpsl.ID, true)
	require.ErrorIs(t, err, contract.ErrProposalNotActive)
}

func TestVoteReceiptsArePerProposal(t *testing.T) {
	gt := SetupGovernanceTest(t)
	first := createGenericProposal(t, gt, alice)
	second := createGenericProposal(t, gt, alice)

	_, err := gt.engine.Vote(bob, first.ID, true)
	require.NoError(t, err)
	_, err = gt.engine.Vote(bob, second.ID, false)
	require.NoError(t, err)

	none, err := gt.engine.Ballot(first.ID, outsider)
	require.NoError(t, err)
	assert.Nil(t, none)

	ballots, err := gt.engine.Ballots(second.ID)
	require.NoError(t, err)
	require.Len(t, ballots, 1)
	assert.Equal(t, bob, ballots[0].Voter)
	assert.False(t, ballots[0].Support)
}

func TestVoteUnknownProposalOrVoter(t *testing.T) {
	gt := SetupGovernanceTest(t)
	_, err := gt.engine.Vote(bob, 9, true)
	require.ErrorIs(t, err, contract.ErrProposalNotFound)

	prpsl := createGenericProposal(t, gt, alice)
	_, err = gt.engine.Vote("", prpsl.ID, true)
	require.ErrorIs(t, err, contract.ErrUnauthorized)

	_, err = gt.engine.Ballot(9, bob)
	require.ErrorIs(t, err, contract.ErrProposalNotFound)
}
