package contract

// Decision is what close computes from a tally. It carries the threshold
// used so events and the CLI can show why a proposal failed.
type Decision struct {
	Yes            uint64
	No             uint64
	QuorumRequired uint64
	QuorumMet      bool
	Majority       bool
	Approved       bool
}

// Reason is nil for approvals. Missing quorum wins over a lost majority.
func (d Decision) Reason() error {
	switch {
	case d.Approved:
		return nil
	case !d.QuorumMet:
		return ErrQuorumNotReached
	default:
		return ErrNoMajority
	}
}

// DecisionFunc is the approval rule. It must stay pure: same inputs, same
// decision, no state access.
type DecisionFunc func(t Tally, supply Amount, quorumPct uint8) Decision

// Decide approves when the ballots cast reach quorumPct percent of supply
// and yes strictly beats no. A tie is a rejection.
func Decide(t Tally, supply Amount, quorumPct uint8) Decision {
	required := QuorumThreshold(supply, quorumPct)
	d := Decision{
		Yes:            t.Yes,
		No:             t.No,
		QuorumRequired: required,
		QuorumMet:      t.Total() >= required,
		Majority:       t.Yes > t.No,
	}
	d.Approved = d.QuorumMet && d.Majority
	return d
}

// QuorumThreshold is ceil(supply * pct / 100) without overflowing on large
// supplies.
func QuorumThreshold(supply Amount, pct uint8) uint64 {
	if supply <= 0 || pct == 0 {
		return 0
	}
	s := uint64(supply)
	q := uint64(pct)
	return s/100*q + (s%100*q+99)/100
}
