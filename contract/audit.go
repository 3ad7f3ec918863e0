package contract

import (
	"fmt"

	"github.com/samber/lo"
)

// EscrowReport is the result of recomputing the escrow books from scratch.
type EscrowReport struct {
	TotalLocked Amount `yaml:"total_locked"`
	// Expected sums the deposits of proposals that still hold escrow.
	Expected Amount `yaml:"expected"`
	// Holding lists the ids counted into Expected.
	Holding []uint64 `yaml:"holding"`
	// LedgerBalance is what the external ledger says the treasury account has.
	LedgerBalance Amount `yaml:"ledger_balance"`
	// Pool is TotalLocked + Forfeited + Deposits, the minimum the account must hold.
	Pool Amount `yaml:"pool"`
}

// Balanced is true when both the escrow total and the ledger agree.
func (r *EscrowReport) Balanced() bool {
	return r.TotalLocked == r.Expected && r.LedgerBalance >= r.TotalLocked
}

// AuditEscrow checks that TotalLocked equals the deposits of every proposal
// in Review, Voting or approved-but-unexecuted, and that the ledger still
// covers it. The report is returned even on mismatch.
func (e *Engine) AuditEscrow() (*EscrowReport, error) {
	var (
		t     *Treasury
		props []*Proposal
	)
	err := e.store.View(func(st State) error {
		var err error
		if t, err = loadTreasury(st); err != nil {
			return err
		}
		props, err = loadProposals(st)
		return err
	})
	if err != nil {
		return nil, err
	}
	holding := lo.Filter(props, func(p *Proposal, _ int) bool { return p.holdsEscrow() })
	bal, err := e.ledger.GetBalance(t.Account)
	if err != nil {
		return nil, fmt.Errorf("%w: balance of %s: %w", ErrTransferFailed, t.Account, err)
	}
	rep := &EscrowReport{
		TotalLocked:   t.TotalLocked,
		Expected:      lo.SumBy(holding, func(p *Proposal) Amount { return p.Deposit }),
		Holding:       lo.Map(holding, func(p *Proposal, _ int) uint64 { return p.ID }),
		LedgerBalance: Amount(bal),
		Pool:          t.TotalLocked + t.Forfeited + t.Deposits,
	}
	if !rep.Balanced() {
		e.log.Error().
			Str("evt", "ea").
			Stringer("locked", rep.TotalLocked).
			Stringer("expected", rep.Expected).
			Stringer("ledger", rep.LedgerBalance).
			Msg("escrow mismatch")
		return rep, fmt.Errorf("%w: locked %s, proposals hold %s, ledger has %s",
			ErrEscrowMismatch, rep.TotalLocked, rep.Expected, rep.LedgerBalance)
	}
	return rep, nil
}
