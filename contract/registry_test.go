package contract_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridegov/contract"
	"ridegov/sdk"
)

func TestInitializeSeedsRecords(t *testing.T) {
	gt := SetupGovernanceTest(t)

	reg, err := gt.engine.Registry()
	require.NoError(t, err)
	assert.Equal(t, gt.cfg.GovernanceAddress, reg.ID)
	assert.Equal(t, adminAddress, reg.Authority)
	assert.Equal(t, uint32(50_000), reg.MaxRideDistance)
	assert.Equal(t, "flexible", reg.CancellationPolicy)
	assert.Equal(t, uint64(0), reg.ProposalCount)

	tr := gt.treasury(t)
	assert.Equal(t, adminAddress, tr.Authority)
	assert.Equal(t, gt.cfg.TreasuryAddress, tr.Account)
	assert.Zero(t, tr.TotalLocked)

	assert.Equal(t, contract.DefaultParams(adminAddress), *gt.params(t))
}

func TestInitializeTwice(t *testing.T) {
	gt := SetupGovernanceTest(t)
	err := gt.engine.Initialize(alice, contract.InitArgs{})
	require.ErrorIs(t, err, contract.ErrAlreadyInitialized)

	reg, err := gt.engine.Registry()
	require.NoError(t, err)
	assert.Equal(t, adminAddress, reg.Authority)
}

func TestInitializeWithParams(t *testing.T) {
	gt := newUninitialized(t, contract.NewMemoryStore(), sdk.NewMemoryLedger())
	p := candidateParams()
	require.NoError(t, gt.engine.Initialize(adminAddress, contract.InitArgs{Params: &p}))

	want := candidateParams()
	want.Authority = adminAddress
	assert.Equal(t, want, *gt.params(t))
}

func TestInitializeRejectsBadInput(t *testing.T) {
	gt := newUninitialized(t, contract.NewMemoryStore(), sdk.NewMemoryLedger())
	p := candidateParams()
	p.PlatformFeePercentage = 101
	err := gt.engine.Initialize(adminAddress, contract.InitArgs{Params: &p})
	require.ErrorIs(t, err, contract.ErrInvalidParameters)

	err = gt.engine.Initialize(adminAddress, contract.InitArgs{CancellationPolicy: strings.Repeat("p", contract.MaxPolicyLength+1)})
	require.ErrorIs(t, err, contract.ErrInvalidParameters)

	_, err = gt.engine.Registry()
	require.ErrorIs(t, err, contract.ErrNotInitialized)
}

func TestUpdatePolicyByAuthority(t *testing.T) {
	gt := SetupGovernanceTest(t)
	reg, err := gt.engine.UpdatePolicy(adminAddress, 80_000, "strict")
	require.NoError(t, err)
	assert.Equal(t, uint32(80_000), reg.MaxRideDistance)
	assert.Equal(t, "strict", reg.CancellationPolicy)

	// policy changes never touch the governed parameter set
	assert.Equal(t, contract.DefaultParams(adminAddress), *gt.params(t))
}

func TestUpdatePolicyRejected(t *testing.T) {
	gt := SetupGovernanceTest(t)
	_, err := gt.engine.UpdatePolicy(alice, 1, "mine now")
	require.ErrorIs(t, err, contract.ErrUnauthorized)

	_, err = gt.engine.UpdatePolicy(adminAddress, 1, strings.Repeat("p", contract.MaxPolicyLength+1))
	require.ErrorIs(t, err, contract.ErrInvalidParameters)

	reg, err := gt.engine.Registry()
	require.NoError(t, err)
	assert.Equal(t, "flexible", reg.CancellationPolicy)
}

func TestUpdatePolicyBeforeInit(t *testing.T) {
	gt := newUninitialized(t, contract.NewMemoryStore(), sdk.NewMemoryLedger())
	_, err := gt.engine.UpdatePolicy(adminAddress, 1, "x")
	require.ErrorIs(t, err, contract.ErrNotInitialized)
}
