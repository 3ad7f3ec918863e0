package sdk

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrInsufficientFunds is returned by a ledger when the payer cannot cover a transfer.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidTransfer covers zero/negative amounts and malformed addresses.
	ErrInvalidTransfer = errors.New("invalid transfer")
)

// Ledger is the external fungible-token ledger. Transfers are atomic and
// report failure synchronously; implementations never retry on our behalf.
type Ledger interface {
	GetBalance(addr Address) (int64, error)
	Transfer(from, to Address, amount int64) error
}

// MemoryLedger keeps balances in a map, used by tests and local simulations.
type MemoryLedger struct {
	mu       sync.RWMutex
	balances map[Address]int64
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[Address]int64)}
}

// Mint credits units out of thin air, only meant for seeding balances.
func (l *MemoryLedger) Mint(to Address, amount int64) error {
	if amount <= 0 || !to.IsValid() {
		return fmt.Errorf("%w: mint %d to %q", ErrInvalidTransfer, amount, to)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[to] > maxUnits-amount {
		return fmt.Errorf("%w: balance of %s overflows", ErrInvalidTransfer, to)
	}
	l.balances[to] += amount
	return nil
}

// GetBalance returns zero for unknown accounts.
func (l *MemoryLedger) GetBalance(addr Address) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[addr], nil
}

// Transfer moves amount from one account to another or fails without touching either.
func (l *MemoryLedger) Transfer(from, to Address, amount int64) error {
	if err := checkTransfer(from, to, amount); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[from] < amount {
		return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientFunds, from, l.balances[from], amount)
	}
	if l.balances[to] > maxUnits-amount {
		return fmt.Errorf("%w: balance of %s overflows", ErrInvalidTransfer, to)
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

const maxUnits = int64(1<<63 - 1)

// checkTransfer holds the argument rules shared by every ledger implementation.
func checkTransfer(from, to Address, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount %d", ErrInvalidTransfer, amount)
	}
	if !from.IsValid() || !to.IsValid() {
		return fmt.Errorf("%w: bad address %q -> %q", ErrInvalidTransfer, from, to)
	}
	if from == to {
		return fmt.Errorf("%w: self transfer on %s", ErrInvalidTransfer, from)
	}
	return nil
}
