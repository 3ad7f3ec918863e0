package contract_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridegov/contract"
	"ridegov/sdk"
)

func TestParameterSetValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *contract.ParameterSet)
		ok     bool
	}{
		{"defaults", func(p *contract.ParameterSet) {}, true},
		{"split exactly 100", func(p *contract.ParameterSet) { p.RiderCancellationPercentage = 60; p.DriverCancellationPercentage = 20 }, true},
		{"all zero", func(p *contract.ParameterSet) { *p = contract.ParameterSet{} }, true},
		{"split over 100", func(p *contract.ParameterSet) { p.RiderCancellationPercentage = 51 }, false},
		{"fee over 100", func(p *contract.ParameterSet) { p.PlatformFeePercentage = 101 }, false},
		{"single share over 100", func(p *contract.ParameterSet) { *p = contract.ParameterSet{DriverCancellationPercentage: 200} }, false},
		{"negative charge", func(p *contract.ParameterSet) { p.MinCancellationCharge = -1 }, false},
		{"negative subscription", func(p *contract.ParameterSet) { p.DailySubscriptionFee = -1 }, false},
		{"negative distance", func(p *contract.ParameterSet) { p.MinRideDistance = -1 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := contract.DefaultParams(adminAddress)
			tc.mutate(&p)
			err := p.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, contract.ErrInvalidParameters)
			}
		})
	}

	var missing *contract.ParameterSet
	assert.ErrorIs(t, missing.Validate(), contract.ErrInvalidParameters)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, contract.DefaultConfig().Validate())

	cases := map[string]func(c *contract.Config){
		"zero deposit":         func(c *contract.Config) { c.MinProposalDeposit = 0 },
		"sub-second review":    func(c *contract.Config) { c.ReviewPeriod = time.Millisecond },
		"zero voting":          func(c *contract.Config) { c.VotingPeriod = 0 },
		"zero timelock":        func(c *contract.Config) { c.Timelock = 0 },
		"quorum over 100":      func(c *contract.Config) { c.QuorumPercentage = 101 },
		"no supply":            func(c *contract.Config) { c.TotalSupply = 0 },
		"max voting too small": func(c *contract.Config) { c.MaxVotingPeriod = time.Hour },
		"max timelock small":   func(c *contract.Config) { c.MaxTimelock = time.Hour },
		"no treasury":          func(c *contract.Config) { c.TreasuryAddress = "" },
		"shared account":       func(c *contract.Config) { c.GovernanceAddress = c.TreasuryAddress },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := contract.DefaultConfig()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), contract.ErrInvalidConfig)
		})
	}
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.QuorumPercentage = 150
	_, err := contract.NewEngine(contract.NewMemoryStore(), nil)
	require.Error(t, err)
	_, err = contract.NewEngine(contract.NewMemoryStore(), sdk.NewMemoryLedger(), contract.WithConfig(cfg))
	require.ErrorIs(t, err, contract.ErrInvalidConfig)
}
