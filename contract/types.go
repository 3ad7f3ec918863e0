package contract

import (
	"fmt"

	"ridegov/sdk"
)

// Amount is a token quantity in base units (9 decimals).
type Amount int64

// AmountToUnits exposes the raw int64 for ledger transfers.
func AmountToUnits(v Amount) int64 {
	return int64(v)
}

// String renders the amount as whole tokens for logs.
func (a Amount) String() string {
	return sdk.FormatUnits(int64(a))
}

// ProposalKind tags what a proposal does when it is executed.
type ProposalKind uint8

const (
	KindGeneric         ProposalKind = 0
	KindParameterUpdate ProposalKind = 1
)

// String serializes the kind into the short codes used by events and the CLI.
func (k ProposalKind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindParameterUpdate:
		return "params"
	default:
		return "unknown"
	}
}

func (k ProposalKind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// ParseProposalKind is the inverse of String.
func ParseProposalKind(raw string) (ProposalKind, error) {
	switch raw {
	case "generic":
		return KindGeneric, nil
	case "params":
		return KindParameterUpdate, nil
	}
	return 0, fmt.Errorf("unknown proposal kind %q", raw)
}

// Phase is the lifecycle position of a proposal at a given instant. It is
// never stored; it is derived from the flags and the clock on every read.
type Phase uint8

const (
	PhaseReview   Phase = 1
	PhaseVoting   Phase = 2
	PhaseApproved Phase = 3
	PhaseRejected Phase = 4
	PhaseExecuted Phase = 5
)

// String prints the phase as lower-case text for events and logs.
func (p Phase) String() string {
	switch p {
	case PhaseReview:
		return "review"
	case PhaseVoting:
		return "voting"
	case PhaseApproved:
		return "approved"
	case PhaseRejected:
		return "rejected"
	case PhaseExecuted:
		return "executed"
	default:
		return "unspecified"
	}
}

func (p Phase) MarshalYAML() (any, error) {
	return p.String(), nil
}

// ParsePhase accepts the names printed by String.
func ParsePhase(raw string) (Phase, error) {
	for p := PhaseReview; p <= PhaseExecuted; p++ {
		if p.String() == raw {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", raw)
}

// ReleaseOutcome decides where an escrowed deposit goes when it leaves escrow.
type ReleaseOutcome uint8

const (
	// Refund sends the deposit back to the depositor.
	Refund ReleaseOutcome = 1
	// Forfeit keeps the deposit in the treasury's general pool.
	Forfeit ReleaseOutcome = 2
)

func (o ReleaseOutcome) String() string {
	switch o {
	case Refund:
		return "refund"
	case Forfeit:
		return "forfeit"
	default:
		return "unknown"
	}
}

// ParameterSet is the governed operational configuration. It is only ever
// replaced as a whole.
type ParameterSet struct {
	Authority                      sdk.Address `yaml:"authority" toml:"-"`
	MinCancellationCharge          int64       `yaml:"min_cancellation_charge" toml:"min_cancellation_charge"`
	RiderCancellationPercentage    uint8       `yaml:"rider_cancellation_percentage" toml:"rider_cancellation_percentage"`
	DriverCancellationPercentage   uint8       `yaml:"driver_cancellation_percentage" toml:"driver_cancellation_percentage"`
	PlatformCancellationPercentage uint8       `yaml:"platform_cancellation_percentage" toml:"platform_cancellation_percentage"`
	PlatformFeePercentage          uint8       `yaml:"platform_fee_percentage" toml:"platform_fee_percentage"`
	DailySubscriptionFee           int64       `yaml:"daily_subscription_fee" toml:"daily_subscription_fee"`
	MinRideDistance                int64       `yaml:"min_ride_distance" toml:"min_ride_distance"`
}

// Registry is the process-wide governance identity.
type Registry struct {
	// ID is the registry's own identity; executed proposals stamp it as the
	// ParameterSet authority.
	ID                 sdk.Address `yaml:"id"`
	Authority          sdk.Address `yaml:"authority"`
	MaxRideDistance    uint32      `yaml:"max_ride_distance"`
	CancellationPolicy string      `yaml:"cancellation_policy"`
	ProposalCount      uint64      `yaml:"proposal_count"`
}

// Treasury is the escrow ledger for proposal deposits.
type Treasury struct {
	Authority sdk.Address `yaml:"authority"`
	Account   sdk.Address `yaml:"account"`
	// TotalLocked is the sum of deposits of proposals that are still open or
	// approved but not yet executed.
	TotalLocked Amount `yaml:"total_locked"`
	// Forfeited accumulates deposits of rejected proposals.
	Forfeited Amount `yaml:"forfeited"`
	// Deposits accumulates direct donations into the pool.
	Deposits Amount `yaml:"deposits"`
}

// Proposal is one instance of the lifecycle state machine and stays around
// as an audit record after it finishes.
type Proposal struct {
	ID             uint64        `yaml:"id"`
	Creator        sdk.Address   `yaml:"creator"`
	Kind           ProposalKind  `yaml:"kind"`
	Title          string        `yaml:"title"`
	Description    string        `yaml:"description"`
	Options        []string      `yaml:"options,omitempty"`
	ProposedParams *ParameterSet `yaml:"proposed_params,omitempty"`

	CreatedAt     int64 `yaml:"created_at"`
	ReviewEndTime int64 `yaml:"review_end_time"`
	VotingEndTime int64 `yaml:"voting_end_time"`
	ExecutionTime int64 `yaml:"execution_time"`

	VoteYes    uint64 `yaml:"vote_yes"`
	VoteNo     uint64 `yaml:"vote_no"`
	TotalVotes uint64 `yaml:"total_votes"`

	IsActive   bool `yaml:"is_active"`
	IsApproved bool `yaml:"is_approved"`
	IsExecuted bool `yaml:"is_executed"`

	Deposit Amount `yaml:"deposit"`
	// DepositReleased flips when the deposit leaves escrow (forfeit at close
	// or refund at execution).
	DepositReleased bool   `yaml:"deposit_released"`
	RejectReason    string `yaml:"reject_reason,omitempty"`
	ClosedAt        int64  `yaml:"closed_at,omitempty"`
	ExecutedAt      int64  `yaml:"executed_at,omitempty"`
	Tx              string `yaml:"tx"`
}

// Ballot is the per-voter receipt that makes a second vote detectable.
type Ballot struct {
	Voter   sdk.Address `yaml:"voter"`
	Support bool        `yaml:"support"`
	CastAt  int64       `yaml:"cast_at"`
}

// Tally is the vote count handed to the decision function.
type Tally struct {
	Yes uint64
	No  uint64
}

// Total returns yes+no.
func (t Tally) Total() uint64 {
	return t.Yes + t.No
}

// Tally extracts the current counts.
func (p *Proposal) Tally() Tally {
	return Tally{Yes: p.VoteYes, No: p.VoteNo}
}

// Phase derives the lifecycle phase at now. A proposal whose voting window
// elapsed without a close still reports Voting.
func (p *Proposal) Phase(now int64) Phase {
	switch {
	case p.IsExecuted:
		return PhaseExecuted
	case p.IsActive && now < p.ReviewEndTime:
		return PhaseReview
	case p.IsActive:
		return PhaseVoting
	case p.IsApproved:
		return PhaseApproved
	default:
		return PhaseRejected
	}
}

// holdsEscrow reports whether the proposal's deposit is still counted in
// Treasury.TotalLocked.
func (p *Proposal) holdsEscrow() bool {
	return !p.DepositReleased && (p.IsActive || (p.IsApproved && !p.IsExecuted))
}

// InitArgs seeds the singleton records on first start.
type InitArgs struct {
	MaxRideDistance    uint32
	CancellationPolicy string
	// Params overrides the built-in parameter defaults when set.
	Params *ParameterSet
}

// CreateProposalArgs is the caller-supplied part of a new proposal.
type CreateProposalArgs struct {
	Title       string
	Description string
	// Options marks a generic proposal; ProposedParams marks a parameter
	// update. Exactly one kind is inferred from which one is set.
	Options        []string
	ProposedParams *ParameterSet
	// VotingPeriod and Timelock override the configured defaults when > 0.
	VotingPeriodSecs int64
	TimelockSecs     int64
}

// CloseResult reports the decision computed at close.
type CloseResult struct {
	Proposal *Proposal
	Decision Decision
	// Reason is nil for approvals and names the rejection cause otherwise.
	Reason error
}

// ProposalFilter narrows ListProposals.
type ProposalFilter struct {
	Creator sdk.Address
	Phases  []Phase
	Kind    *ProposalKind
}
