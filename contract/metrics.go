package contract

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	ProposalsCreated  *prometheus.CounterVec
	VotesCast         *prometheus.CounterVec
	ProposalsClosed   *prometheus.CounterVec
	ProposalsExecuted *prometheus.CounterVec
	EscrowLocked      prometheus.Gauge
	TreasuryDeposits  prometheus.Counter
	Rejections        *prometheus.CounterVec
}

// NewMetrics builds the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ProposalsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ridegov",
			Name:      "proposals_created_total",
			Help:      "Proposals opened, by kind.",
		}, []string{"kind"}),
		VotesCast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ridegov",
			Name:      "votes_cast_total",
			Help:      "Ballots accepted, by side.",
		}, []string{"side"}),
		ProposalsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ridegov",
			Name:      "proposals_closed_total",
			Help:      "Proposals decided, by result.",
		}, []string{"result"}),
		ProposalsExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ridegov",
			Name:      "proposals_executed_total",
			Help:      "Approved proposals applied, by kind.",
		}, []string{"kind"}),
		EscrowLocked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ridegov",
			Name:      "escrow_locked_units",
			Help:      "Deposit units currently held in escrow, as of the last lifecycle change.",
		}),
		TreasuryDeposits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ridegov",
			Name:      "treasury_deposit_units_total",
			Help:      "Units donated to the treasury pool.",
		}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ridegov",
			Name:      "operation_rejections_total",
			Help:      "Operations refused, by operation and error kind.",
		}, []string{"op", "kind"}),
	}
	for _, c := range []prometheus.Collector{
		m.ProposalsCreated,
		m.VotesCast,
		m.ProposalsClosed,
		m.ProposalsExecuted,
		m.EscrowLocked,
		m.TreasuryDeposits,
		m.Rejections,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// created records a new proposal. locked is the committed escrow total, so
// the gauge is right even on a registry built after earlier proposals.
func (m *Metrics) created(p *Proposal, locked Amount) {
	if m == nil {
		return
	}
	m.ProposalsCreated.WithLabelValues(p.Kind.String()).Inc()
	m.EscrowLocked.Set(float64(locked))
}

func (m *Metrics) voted(support bool) {
	if m == nil {
		return
	}
	side := "no"
	if support {
		side = "yes"
	}
	m.VotesCast.WithLabelValues(side).Inc()
}

func (m *Metrics) closed(res *CloseResult, locked Amount) {
	if m == nil {
		return
	}
	result := "approved"
	switch {
	case errors.Is(res.Reason, ErrQuorumNotReached):
		result = "quorum_not_reached"
	case res.Reason != nil:
		result = "no_majority"
	}
	m.ProposalsClosed.WithLabelValues(result).Inc()
	m.EscrowLocked.Set(float64(locked))
}

func (m *Metrics) executed(p *Proposal, locked Amount) {
	if m == nil {
		return
	}
	m.ProposalsExecuted.WithLabelValues(p.Kind.String()).Inc()
	m.EscrowLocked.Set(float64(locked))
}

func (m *Metrics) deposited(amount Amount) {
	if m == nil {
		return
	}
	m.TreasuryDeposits.Add(float64(amount))
}

// rejected buckets an error by the first taxonomy kind it wraps.
func (m *Metrics) rejected(op string, err error) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(op, errorKind(err)).Inc()
}

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrInsufficientBalance, "insufficient_balance"},
	{ErrTransferFailed, "transfer_failed"},
	{ErrProposalNotActive, "proposal_not_active"},
	{ErrProposalStillActive, "proposal_still_active"},
	{ErrVotingPeriodEnded, "voting_period_ended"},
	{ErrVotingPeriodNotEnded, "voting_period_not_ended"},
	{ErrProposalNotApproved, "proposal_not_approved"},
	{ErrProposalAlreadyExecuted, "proposal_already_executed"},
	{ErrTimelockNotExpired, "timelock_not_expired"},
	{ErrInvalidParameters, "invalid_parameters"},
	{ErrProposalNotFound, "proposal_not_found"},
	{ErrAlreadyVoted, "already_voted"},
	{ErrUnauthorized, "unauthorized"},
	{ErrNotInitialized, "not_initialized"},
	{ErrAlreadyInitialized, "already_initialized"},
	{ErrInvalidProposal, "invalid_proposal"},
	{ErrInvalidAmount, "invalid_amount"},
}

func errorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "other"
}
