package contract

import (
	"time"

	"ridegov/sdk"
)

// -----------------------------------------------------------------------------
// Protocol Defaults
// -----------------------------------------------------------------------------

const (
	// DefaultMinProposalDeposit is 111,111 tokens at 9 decimals.
	DefaultMinProposalDeposit Amount = 111_111 * Amount(sdk.AssetScale)
	DefaultReviewPeriod              = 3 * 24 * time.Hour
	DefaultVotingPeriod              = 7 * 24 * time.Hour
	DefaultTimelock                  = 2 * 24 * time.Hour
	DefaultQuorumPercentage   uint8  = 10
	// DefaultTotalSupply is 1,111,111,111 tokens at 9 decimals.
	DefaultTotalSupply Amount = 1_111_111_111 * Amount(sdk.AssetScale)

	// override ceilings for per-proposal voting period and timelock
	DefaultMaxVotingPeriod = 30 * 24 * time.Hour
	DefaultMaxTimelock     = 30 * 24 * time.Hour

	DefaultTreasuryAddress   sdk.Address = "system:treasury"
	DefaultGovernanceAddress sdk.Address = "system:governance"
)

// Initial ParameterSet values used when Initialize gets no override.
const (
	DefaultMinCancellationCharge          int64 = 100
	DefaultRiderCancellationPercentage    uint8 = 50
	DefaultDriverCancellationPercentage   uint8 = 30
	DefaultPlatformCancellationPercentage uint8 = 20
	DefaultPlatformFeePercentage          uint8 = 10
	DefaultDailySubscriptionFee           int64 = 500
	DefaultMinRideDistance                int64 = 1000
)

// -----------------------------------------------------------------------------
// Validation Limits
// -----------------------------------------------------------------------------

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
	MaxPolicyLength      = 200
	MaxOptions           = 10
	MaxOptionTextLength  = 50
)

// -----------------------------------------------------------------------------
// Storage Key Prefixes
// -----------------------------------------------------------------------------

const (
	// kRegistry holds the singleton Registry record.
	kRegistry byte = 0x01
	// kTreasury holds the singleton Treasury record.
	kTreasury byte = 0x02
	// kParams holds the live ParameterSet.
	kParams byte = 0x03
	// kProposalMeta contains encoded Proposal records.
	kProposalMeta byte = 0x10
	// kBallot stores one receipt per proposal+voter.
	kBallot byte = 0x20
)
