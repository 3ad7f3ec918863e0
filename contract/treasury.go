package contract

import (
	"fmt"

	"ridegov/sdk"
)

// lock pulls amount from the depositor into the treasury account and counts
// it as escrowed. Nothing is written when the transfer fails.
func (e *Engine) lock(tx *txn, t *Treasury, from sdk.Address, amount Amount) error {
	if amount <= 0 {
		return fmt.Errorf("%w: lock %d", ErrInvalidAmount, amount)
	}
	if t.TotalLocked > maxAmount-amount {
		return fmt.Errorf("%w: escrow total overflows", ErrInvalidAmount)
	}
	if err := e.ledger.Transfer(from, t.Account, AmountToUnits(amount)); err != nil {
		return transferErr(err, "escrow lock")
	}
	t.TotalLocked += amount
	saveTreasury(tx, t)
	emitTreasuryLockEvent(tx, from, amount, t.TotalLocked)
	return nil
}

// release takes amount out of escrow. Refund pays it back to the depositor,
// Forfeit leaves it in the treasury pool. Releasing more than is locked means
// the books are already broken, so it panics.
func (e *Engine) release(tx *txn, t *Treasury, to sdk.Address, amount Amount, outcome ReleaseOutcome) error {
	if amount > t.TotalLocked || amount < 0 {
		panic(fmt.Sprintf("escrow underflow: release %d with %d locked", amount, t.TotalLocked))
	}
	switch outcome {
	case Refund:
		if err := e.ledger.Transfer(t.Account, to, AmountToUnits(amount)); err != nil {
			return transferErr(err, "escrow refund")
		}
	case Forfeit:
		t.Forfeited += amount
	default:
		panic(fmt.Sprintf("unknown release outcome %d", outcome))
	}
	t.TotalLocked -= amount
	saveTreasury(tx, t)
	emitTreasuryReleaseEvent(tx, to, amount, outcome, t.TotalLocked)
	return nil
}

// Deposit donates amount from the caller to the treasury pool. It is never
// escrow and does not move TotalLocked.
// Example payload: e.Deposit("user:alice", 5*Amount(sdk.AssetScale))
func (e *Engine) Deposit(from sdk.Address, amount Amount) (*Treasury, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: deposit %d", ErrInvalidAmount, amount)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	var out *Treasury
	err := e.update("deposit", func(tx *txn) error {
		t, err := loadTreasury(tx)
		if err != nil {
			return err
		}
		if t.Deposits > maxAmount-amount {
			return fmt.Errorf("%w: deposit pool overflows", ErrInvalidAmount)
		}
		if err := e.ledger.Transfer(from, t.Account, AmountToUnits(amount)); err != nil {
			return transferErr(err, "deposit")
		}
		t.Deposits += amount
		saveTreasury(tx, t)
		emitTreasuryDepositEvent(tx, from, amount)
		out = t
		return nil
	})
	if err == nil {
		e.metrics.deposited(amount)
	}
	return out, err
}

// Treasury returns the escrow record.
func (e *Engine) Treasury() (*Treasury, error) {
	var t *Treasury
	err := e.store.View(func(st State) error {
		var err error
		t, err = loadTreasury(st)
		return err
	})
	return t, err
}

const maxAmount = Amount(1<<63 - 1)
