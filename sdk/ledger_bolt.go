package sdk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var balancesBucket = []byte("balances")

// BoltLedger persists balances in a bbolt file. The CLI uses it as the
// stand-in for the real token ledger; it must live in its own file because
// the engine holds a write transaction on the state file while transferring.
type BoltLedger struct {
	db *bolt.DB
}

// OpenBoltLedger opens or creates the ledger file at path.
func OpenBoltLedger(path string) (*BoltLedger, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, fmt.Errorf("ledger %s is in use by another process", path)
		}
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(balancesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init ledger %s: %w", path, err)
	}
	return &BoltLedger{db: db}, nil
}

// Close releases the file lock.
func (l *BoltLedger) Close() error {
	return l.db.Close()
}

// Mint credits units to an account, used by the faucet command.
func (l *BoltLedger) Mint(to Address, amount int64) error {
	if amount <= 0 || !to.IsValid() {
		return fmt.Errorf("%w: mint %d to %q", ErrInvalidTransfer, amount, to)
	}
	return l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(balancesBucket)
		bal := readUnits(b, to)
		if bal > maxUnits-amount {
			return fmt.Errorf("%w: balance of %s overflows", ErrInvalidTransfer, to)
		}
		return writeUnits(b, to, bal+amount)
	})
}

func (l *BoltLedger) GetBalance(addr Address) (int64, error) {
	var bal int64
	err := l.db.View(func(tx *bolt.Tx) error {
		bal = readUnits(tx.Bucket(balancesBucket), addr)
		return nil
	})
	return bal, err
}

func (l *BoltLedger) Transfer(from, to Address, amount int64) error {
	if err := checkTransfer(from, to, amount); err != nil {
		return err
	}
	return l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(balancesBucket)
		src := readUnits(b, from)
		if src < amount {
			return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientFunds, from, src, amount)
		}
		dst := readUnits(b, to)
		if dst > maxUnits-amount {
			return fmt.Errorf("%w: balance of %s overflows", ErrInvalidTransfer, to)
		}
		if err := writeUnits(b, from, src-amount); err != nil {
			return err
		}
		return writeUnits(b, to, dst+amount)
	})
}

func readUnits(b *bolt.Bucket, addr Address) int64 {
	v := b.Get([]byte(addr))
	if len(v) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(v))
}

func writeUnits(b *bolt.Bucket, addr Address, units int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(units))
	return b.Put([]byte(addr), buf[:])
}
