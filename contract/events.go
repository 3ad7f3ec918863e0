package contract

import (
	"github.com/rs/zerolog"

	"ridegov/sdk"
)

// Every event is one log line with a short evt code so indexers can grep
// without parsing messages. Events are queued on the txn and only written
// after the store committed.

// emitInitializedEvent marks the bootstrap, "gi".
func emitInitializedEvent(tx *txn, reg *Registry) {
	tx.emit(func(l zerolog.Logger) {
		l.Info().
			Str("evt", "gi").
			Str("by", reg.Authority.String()).
			Str("registry", reg.ID.String()).
			Uint32("max_ride", reg.MaxRideDistance).
			Msg("governance initialized")
	})
}

// emitPolicyUpdatedEvent logs the direct authority path, "gp".
func emitPolicyUpdatedEvent(tx *txn, reg *Registry, by sdk.Address) {
	tx.emit(func(l zerolog.Logger) {
		l.Info().
			Str("evt", "gp").
			Str("by", by.String()).
			Uint32("max_ride", reg.MaxRideDistance).
			Str("policy", reg.CancellationPolicy).
			Msg("policy updated")
	})
}

// emitProposalCreatedEvent keeps observers updated with a short pc line for every new idea.
func emitProposalCreatedEvent(tx *txn, p *Proposal) {
	tx.emit(func(l zerolog.Logger) {
		l.Info().
			Str("evt", "pc").
			Uint64("id", p.ID).
			Str("by", p.Creator.String()).
			Stringer("kind", p.Kind).
			Int64("review_end", p.ReviewEndTime).
			Int64("voting_end", p.VotingEndTime).
			Str("tx", p.Tx).
			Msg("proposal created")
	})
}

// emitVoteCasted includes the side so tallies can be replayed from logs only.
func emitVoteCasted(tx *txn, p *Proposal, b *Ballot) {
	tx.emit(func(l zerolog.Logger) {
		l.Info().
			Str("evt", "v").
			Uint64("id", p.ID).
			Str("by", b.Voter.String()).
			Bool("yes", b.Support).
			Uint64("y", p.VoteYes).
			Uint64("n", p.VoteNo).
			Msg("vote cast")
	})
}

// emitProposalClosedEvent writes the ps state flip plus the px line when the
// proposal passed and now waits for its timelock.
func emitProposalClosedEvent(tx *txn, p *Proposal, d Decision, by sdk.Address) {
	tx.emit(func(l zerolog.Logger) {
		ev := l.Info().
			Str("evt", "ps").
			Uint64("id", p.ID).
			Str("by", by.String()).
			Stringer("s", p.Phase(p.ClosedAt)).
			Uint64("y", d.Yes).
			Uint64("n", d.No).
			Uint64("quorum", d.QuorumRequired)
		if reason := d.Reason(); reason != nil {
			ev = ev.Str("reason", reason.Error())
		}
		ev.Msg("proposal closed")
		if d.Approved {
			l.Info().
				Str("evt", "px").
				Uint64("id", p.ID).
				Int64("ready", p.ExecutionTime).
				Msg("execution scheduled")
		}
	})
}

// emitProposalParamChangedEvent spells out field diffs so auditors can track sensitive flips.
func emitProposalParamChangedEvent(tx *txn, id uint64, c paramChange) {
	tx.emit(func(l zerolog.Logger) {
		l.Info().
			Str("evt", "pm").
			Uint64("id", id).
			Str("f", c.Field).
			Str("old", c.Old).
			Str("new", c.New).
			Msg("parameter changed")
	})
}

// emitProposalExecutedEvent leaves the pr result line.
func emitProposalExecutedEvent(tx *txn, p *Proposal, by sdk.Address) {
	tx.emit(func(l zerolog.Logger) {
		result := "noop"
		if p.Kind == KindParameterUpdate {
			result = "params"
		}
		l.Info().
			Str("evt", "pr").
			Uint64("id", p.ID).
			Str("by", by.String()).
			Str("r", result).
			Msg("proposal executed")
	})
}

func emitTreasuryLockEvent(tx *txn, from sdk.Address, amount, locked Amount) {
	tx.emit(func(l zerolog.Logger) {
		l.Debug().
			Str("evt", "tl").
			Str("from", from.String()).
			Stringer("am", amount).
			Stringer("locked", locked).
			Msg("deposit escrowed")
	})
}

func emitTreasuryReleaseEvent(tx *txn, to sdk.Address, amount Amount, outcome ReleaseOutcome, locked Amount) {
	tx.emit(func(l zerolog.Logger) {
		l.Debug().
			Str("evt", "tr").
			Str("to", to.String()).
			Stringer("am", amount).
			Stringer("o", outcome).
			Stringer("locked", locked).
			Msg("deposit released")
	})
}

func emitTreasuryDepositEvent(tx *txn, from sdk.Address, amount Amount) {
	tx.emit(func(l zerolog.Logger) {
		l.Info().
			Str("evt", "td").
			Str("from", from.String()).
			Stringer("am", amount).
			Msg("treasury deposit")
	})
}
