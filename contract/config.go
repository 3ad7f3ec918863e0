package contract

import (
	"fmt"
	"time"

	"ridegov/sdk"
)

// Config carries the tunable protocol constants. Nothing in the engine reads
// a package-level default directly; tests shrink the periods through here.
type Config struct {
	MinProposalDeposit Amount
	ReviewPeriod       time.Duration
	VotingPeriod       time.Duration
	Timelock           time.Duration
	QuorumPercentage   uint8
	// TotalSupply is only the quorum denominator.
	TotalSupply Amount

	// TreasuryAddress is the ledger account escrowed deposits sit in.
	TreasuryAddress sdk.Address
	// GovernanceAddress is the registry identity stamped on executed params.
	GovernanceAddress sdk.Address

	MaxVotingPeriod time.Duration
	MaxTimelock     time.Duration
}

// DefaultConfig mirrors the production tokenomics.
func DefaultConfig() Config {
	return Config{
		MinProposalDeposit: DefaultMinProposalDeposit,
		ReviewPeriod:       DefaultReviewPeriod,
		VotingPeriod:       DefaultVotingPeriod,
		Timelock:           DefaultTimelock,
		QuorumPercentage:   DefaultQuorumPercentage,
		TotalSupply:        DefaultTotalSupply,
		TreasuryAddress:    DefaultTreasuryAddress,
		GovernanceAddress:  DefaultGovernanceAddress,
		MaxVotingPeriod:    DefaultMaxVotingPeriod,
		MaxTimelock:        DefaultMaxTimelock,
	}
}

// Validate rejects configs that would break the strictly increasing
// timestamps or make quorum meaningless.
func (c Config) Validate() error {
	if c.MinProposalDeposit <= 0 {
		return fmt.Errorf("%w: min proposal deposit must be positive", ErrInvalidConfig)
	}
	periods := []struct {
		name string
		d    time.Duration
	}{
		{"review period", c.ReviewPeriod},
		{"voting period", c.VotingPeriod},
		{"timelock", c.Timelock},
	}
	for _, p := range periods {
		if p.d < time.Second {
			return fmt.Errorf("%w: %s must be at least 1s, got %s", ErrInvalidConfig, p.name, p.d)
		}
	}
	if c.MaxVotingPeriod < c.VotingPeriod {
		return fmt.Errorf("%w: max voting period %s below default %s", ErrInvalidConfig, c.MaxVotingPeriod, c.VotingPeriod)
	}
	if c.MaxTimelock < c.Timelock {
		return fmt.Errorf("%w: max timelock %s below default %s", ErrInvalidConfig, c.MaxTimelock, c.Timelock)
	}
	if c.QuorumPercentage > 100 {
		return fmt.Errorf("%w: quorum percentage %d above 100", ErrInvalidConfig, c.QuorumPercentage)
	}
	if c.TotalSupply <= 0 {
		return fmt.Errorf("%w: total supply must be positive", ErrInvalidConfig)
	}
	if !c.TreasuryAddress.IsValid() || !c.GovernanceAddress.IsValid() {
		return fmt.Errorf("%w: treasury and governance addresses are required", ErrInvalidConfig)
	}
	if c.TreasuryAddress == c.GovernanceAddress {
		return fmt.Errorf("%w: treasury and governance must be distinct accounts", ErrInvalidConfig)
	}
	return nil
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}
