package contract

import (
	"fmt"

	"ridegov/sdk"
)

// Initialize creates the registry, the treasury and the first parameter set.
// The caller becomes authority of the registry and the treasury.
// Example payload: e.Initialize("user:admin", InitArgs{MaxRideDistance: 50000, CancellationPolicy: "flex"})
func (e *Engine) Initialize(caller sdk.Address, args InitArgs) error {
	if !caller.IsValid() {
		return fmt.Errorf("%w: invalid caller %q", ErrUnauthorized, caller)
	}
	if len(args.CancellationPolicy) > MaxPolicyLength {
		return fmt.Errorf("%w: cancellation policy longer than %d bytes", ErrInvalidParameters, MaxPolicyLength)
	}
	params := DefaultParams(caller)
	if args.Params != nil {
		params = *args.Params
		params.Authority = caller
	}
	if err := params.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.update("init", func(tx *txn) error {
		if isInitialized(tx) {
			return ErrAlreadyInitialized
		}
		reg := &Registry{
			ID:                 e.cfg.GovernanceAddress,
			Authority:          caller,
			MaxRideDistance:    args.MaxRideDistance,
			CancellationPolicy: args.CancellationPolicy,
		}
		saveRegistry(tx, reg)
		saveTreasury(tx, &Treasury{
			Authority: caller,
			Account:   e.cfg.TreasuryAddress,
		})
		saveParams(tx, &params)
		emitInitializedEvent(tx, reg)
		return nil
	})
}

// UpdatePolicy changes the soft policy fields directly. Only the registry
// authority may call it; it never goes through a vote.
func (e *Engine) UpdatePolicy(caller sdk.Address, maxRideDistance uint32, policy string) (*Registry, error) {
	if len(policy) > MaxPolicyLength {
		return nil, fmt.Errorf("%w: cancellation policy longer than %d bytes", ErrInvalidParameters, MaxPolicyLength)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	var out *Registry
	err := e.update("policy", func(tx *txn) error {
		reg, err := loadRegistry(tx)
		if err != nil {
			return err
		}
		if reg.Authority != caller {
			return fmt.Errorf("%w: %s is not the registry authority", ErrUnauthorized, caller)
		}
		reg.MaxRideDistance = maxRideDistance
		reg.CancellationPolicy = policy
		saveRegistry(tx, reg)
		emitPolicyUpdatedEvent(tx, reg, caller)
		out = reg
		return nil
	})
	return out, err
}

// Registry returns the governance identity record.
func (e *Engine) Registry() (*Registry, error) {
	var reg *Registry
	err := e.store.View(func(st State) error {
		var err error
		reg, err = loadRegistry(st)
		return err
	})
	return reg, err
}
