package contract_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"ridegov/contract"
	"ridegov/sdk"
)

const (
	adminAddress sdk.Address = "user:admin"
	alice        sdk.Address = "user:alice"
	bob          sdk.Address = "user:bob"
	outsider     sdk.Address = "user:outsider"

	testDeposit contract.Amount = 1_000
	startFunds  int64           = 10_000
)

var genesis = time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC)

// govTest bundles one engine with the collaborators tests poke at directly.
type govTest struct {
	engine *contract.Engine
	ledger *sdk.MemoryLedger
	clock  *clock.Mock
	cfg    contract.Config
	store  contract.Store
}

// testConfig keeps the production shape but with small numbers: quorum is
// 10% of a 500 supply, so 50 ballots.
func testConfig() contract.Config {
	cfg := contract.DefaultConfig()
	cfg.MinProposalDeposit = testDeposit
	cfg.TotalSupply = 500
	cfg.QuorumPercentage = 10
	cfg.ReviewPeriod = time.Hour
	cfg.VotingPeriod = 2 * time.Hour
	cfg.Timelock = time.Hour
	cfg.MaxVotingPeriod = 24 * time.Hour
	cfg.MaxTimelock = 24 * time.Hour
	return cfg
}

// SetupGovernanceTest builds an initialized engine on a memory store with
// alice and bob funded.
func SetupGovernanceTest(t *testing.T, opts ...contract.Option) *govTest {
	t.Helper()
	return setupOnStore(t, contract.NewMemoryStore(), sdk.NewMemoryLedger(), opts...)
}

func setupOnStore(t *testing.T, store contract.Store, ledger *sdk.MemoryLedger, opts ...contract.Option) *govTest {
	t.Helper()
	gt := newUninitialized(t, store, ledger, opts...)
	require.NoError(t, gt.engine.Initialize(adminAddress, contract.InitArgs{
		MaxRideDistance:    50_000,
		CancellationPolicy: "flexible",
	}))
	return gt
}

func newUninitialized(t *testing.T, store contract.Store, ledger *sdk.MemoryLedger, opts ...contract.Option) *govTest {
	t.Helper()
	sdk.ConfigureTests()
	cfg := testConfig()
	clk := sdk.FixedClock(genesis)
	base := []contract.Option{
		contract.WithConfig(cfg),
		contract.WithClock(clk),
		contract.WithLogger(sdk.Logger()),
	}
	eng, err := contract.NewEngine(store, ledger, append(base, opts...)...)
	require.NoError(t, err)
	for _, addr := range []sdk.Address{alice, bob} {
		require.NoError(t, ledger.Mint(addr, startFunds))
	}
	return &govTest{engine: eng, ledger: ledger, clock: clk, cfg: cfg, store: store}
}

// at moves the clock to a unix second.
func (gt *govTest) at(unix int64) {
	gt.clock.Set(time.Unix(unix, 0))
}

func (gt *govTest) balance(t *testing.T, addr sdk.Address) int64 {
	t.Helper()
	bal, err := gt.ledger.GetBalance(addr)
	require.NoError(t, err)
	return bal
}

func (gt *govTest) treasury(t *testing.T) *contract.Treasury {
	t.Helper()
	tr, err := gt.engine.Treasury()
	require.NoError(t, err)
	return tr
}

func (gt *govTest) params(t *testing.T) *contract.ParameterSet {
	t.Helper()
	p, err := gt.engine.Params()
	require.NoError(t, err)
	return p
}

// candidateParams differs from the defaults in every governed field.
func candidateParams() contract.ParameterSet {
	return contract.ParameterSet{
		MinCancellationCharge:          250,
		RiderCancellationPercentage:    40,
		DriverCancellationPercentage:   40,
		PlatformCancellationPercentage: 20,
		PlatformFeePercentage:          12,
		DailySubscriptionFee:           750,
		MinRideDistance:                800,
	}
}

func createParamsProposal(t *testing.T, gt *govTest, creator sdk.Address) *contract.Proposal {
	t.Helper()
	p := candidateParams()
	prpsl, err := gt.engine.CreateProposal(creator, contract.CreateProposalArgs{
		Title:          "rebalance cancellation split",
		Description:    "shift ten points from riders to drivers",
		ProposedParams: &p,
	})
	require.NoError(t, err)
	return prpsl
}

func createGenericProposal(t *testing.T, gt *govTest, creator sdk.Address) *contract.Proposal {
	t.Helper()
	prpsl, err := gt.engine.CreateProposal(creator, contract.CreateProposalArgs{
		Title:   "pick the next city",
		Options: []string{"lisbon", "porto"},
	})
	require.NoError(t, err)
	return prpsl
}

// castVotes sends yes and no ballots from distinct generated voters.
func castVotes(t *testing.T, gt *govTest, id uint64, yes, no int) {
	t.Helper()
	for i := 0; i < yes; i++ {
		_, err := gt.engine.Vote(sdk.Address(fmt.Sprintf("user:yes%d", i)), id, true)
		require.NoError(t, err)
	}
	for i := 0; i < no; i++ {
		_, err := gt.engine.Vote(sdk.Address(fmt.Sprintf("user:no%d", i)), id, false)
		require.NoError(t, err)
	}
}

// approveProposal runs a proposal through a passing vote and close.
func approveProposal(t *testing.T, gt *govTest, prpsl *contract.Proposal) *contract.Proposal {
	t.Helper()
	castVotes(t, gt, prpsl.ID, 60, 5)
	gt.at(prpsl.VotingEndTime)
	res, err := gt.engine.CloseProposal(bob, prpsl.ID)
	require.NoError(t, err)
	require.True(t, res.Decision.Approved)
	return res.Proposal
}

// failingLedger refuses any transfer paid by failFrom.
type failingLedger struct {
	*sdk.MemoryLedger
	failFrom sdk.Address
}

func (l *failingLedger) Transfer(from, to sdk.Address, amount int64) error {
	if from == l.failFrom {
		return fmt.Errorf("ledger offline")
	}
	return l.MemoryLedger.Transfer(from, to, amount)
}
