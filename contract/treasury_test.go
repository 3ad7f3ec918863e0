package contract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridegov/contract"
	"ridegov/sdk"
)

func TestDepositGrowsPool(t *testing.T) {
	gt := SetupGovernanceTest(t)
	createGenericProposal(t, gt, alice)

	tr, err := gt.engine.Deposit(bob, 250)
	require.NoError(t, err)
	assert.Equal(t, contract.Amount(250), tr.Deposits)
	assert.Equal(t, testDeposit, tr.TotalLocked, "donations are not escrow")
	assert.Equal(t, startFunds-250, gt.balance(t, bob))
	assert.Equal(t, int64(testDeposit)+250, gt.balance(t, gt.cfg.TreasuryAddress))
}

func TestDepositRejected(t *testing.T) {
	gt := SetupGovernanceTest(t)
	_, err := gt.engine.Deposit(bob, 0)
	require.ErrorIs(t, err, contract.ErrInvalidAmount)

	_, err = gt.engine.Deposit(outsider, 1)
	require.ErrorIs(t, err, contract.ErrInsufficientBalance)
	assert.Zero(t, gt.treasury(t).Deposits)

	fresh := newUninitialized(t, contract.NewMemoryStore(), sdk.NewMemoryLedger())
	_, err = fresh.engine.Deposit(alice, 1)
	require.ErrorIs(t, err, contract.ErrNotInitialized)
}

// TestEscrowConservation walks several proposals through every outcome and
// audits the books after each step.
func TestEscrowConservation(t *testing.T) {
	gt := SetupGovernanceTest(t)
	audit := func() *contract.EscrowReport {
		t.Helper()
		rep, err := gt.engine.AuditEscrow()
		require.NoError(t, err)
		assert.Equal(t, rep.Expected, rep.TotalLocked)
		return rep
	}

	passing := createParamsProposal(t, gt, alice)
	failing := createGenericProposal(t, gt, bob)
	quiet := createGenericProposal(t, gt, alice)
	rep := audit()
	assert.Equal(t, []uint64{0, 1, 2}, rep.Holding)
	assert.Equal(t, 3*testDeposit, rep.TotalLocked)

	castVotes(t, gt, passing.ID, 60, 1)
	castVotes(t, gt, failing.ID, 1, 60)
	_, err := gt.engine.Deposit(bob, 77)
	require.NoError(t, err)
	audit()

	gt.at(passing.VotingEndTime)
	for _, id := range []uint64{passing.ID, failing.ID, quiet.ID} {
		_, err := gt.engine.CloseProposal(outsider, id)
		require.NoError(t, err)
	}
	rep = audit()
	assert.Equal(t, []uint64{passing.ID}, rep.Holding)
	assert.Equal(t, testDeposit, rep.TotalLocked)

	gt.at(passing.ExecutionTime)
	_, err = gt.engine.ExecuteProposal(outsider, passing.ID)
	require.NoError(t, err)
	rep = audit()
	assert.Empty(t, rep.Holding)
	assert.Zero(t, rep.TotalLocked)

	tr := gt.treasury(t)
	assert.Equal(t, 2*testDeposit, tr.Forfeited)
	assert.Equal(t, contract.Amount(77), tr.Deposits)
	assert.Equal(t, int64(tr.Forfeited+tr.Deposits), gt.balance(t, gt.cfg.TreasuryAddress))
	assert.Equal(t, tr.Forfeited+tr.Deposits, rep.Pool)
}

func TestAuditDetectsDrainedTreasury(t *testing.T) {
	gt := SetupGovernanceTest(t)
	createGenericProposal(t, gt, alice)

	// someone moves escrow out behind the engine's back
	require.NoError(t, gt.ledger.Transfer(gt.cfg.TreasuryAddress, outsider, 1))

	rep, err := gt.engine.AuditEscrow()
	require.ErrorIs(t, err, contract.ErrEscrowMismatch)
	require.NotNil(t, rep)
	assert.False(t, rep.Balanced())
	assert.Equal(t, testDeposit-1, rep.LedgerBalance)
}
