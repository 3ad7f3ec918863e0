package contract

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"ridegov/sdk"
)

// Engine drives proposals through their lifecycle against a Store and an
// external Ledger. Mutating calls are serialized; each one is a single store
// transaction so a failure never leaves partial state behind.
type Engine struct {
	mu      sync.Mutex
	store   Store
	ledger  sdk.Ledger
	clock   sdk.Clock
	cfg     Config
	log     zerolog.Logger
	metrics *Metrics
	decide  DecisionFunc
}

type Option func(*Engine)

func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

func WithClock(c sdk.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithDecisionFunc swaps the approval rule, e.g. for a stake-weighted policy.
func WithDecisionFunc(fn DecisionFunc) Option {
	return func(e *Engine) { e.decide = fn }
}

// NewEngine wires the collaborators. Defaults: DefaultConfig, wall clock,
// the process logger and no metrics.
func NewEngine(store Store, ledger sdk.Ledger, opts ...Option) (*Engine, error) {
	if store == nil || ledger == nil {
		return nil, errors.New("engine needs a store and a ledger")
	}
	e := &Engine{
		store:  store,
		ledger: ledger,
		clock:  sdk.NewClock(),
		cfg:    DefaultConfig(),
		log:    sdk.Logger(),
		decide: Decide,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	e.log = e.log.With().Str("component", "governance").Logger()
	return e, nil
}

// Config returns the protocol constants the engine runs with.
func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) now() int64 {
	return sdk.NowUnix(e.clock)
}

// txn is the State of one operation plus the events it will emit once the
// store committed.
type txn struct {
	State
	events []func(zerolog.Logger)
}

func (t *txn) emit(fn func(zerolog.Logger)) {
	t.events = append(t.events, fn)
}

// update runs fn in one store transaction and flushes its events on commit.
// The caller holds e.mu.
func (e *Engine) update(op string, fn func(tx *txn) error) error {
	tx := &txn{}
	err := e.store.Update(func(st State) error {
		tx.State = st
		tx.events = tx.events[:0]
		return fn(tx)
	})
	if err != nil {
		e.metrics.rejected(op, err)
		e.log.Debug().Str("op", op).Err(err).Msg("operation rejected")
		return err
	}
	for _, ev := range tx.events {
		ev(e.log)
	}
	return nil
}

// transferErr maps a ledger failure onto the governance taxonomy.
func transferErr(err error, what string) error {
	if errors.Is(err, sdk.ErrInsufficientFunds) {
		return fmt.Errorf("%w: %s: %w", ErrInsufficientBalance, what, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrTransferFailed, what, err)
}
