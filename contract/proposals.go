package contract

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"ridegov/sdk"
)

// -----------------------------------------------------------------------------
// Create Proposal
// -----------------------------------------------------------------------------

// CreateProposal escrows the creator's deposit and opens a proposal in Review.
// A ParameterUpdate proposal carries ProposedParams, a Generic one carries
// Options. The id is reserved before the deposit moves, so a failed lock
// burns an id.
// Example payload: e.CreateProposal("user:alice", CreateProposalArgs{Title: "raise fee", ProposedParams: &p})
func (e *Engine) CreateProposal(creator sdk.Address, args CreateProposalArgs) (*Proposal, error) {
	if !creator.IsValid() {
		return nil, fmt.Errorf("%w: invalid creator %q", ErrInvalidProposal, creator)
	}
	kind, err := e.validateCreateArgs(&args)
	if err != nil {
		return nil, err
	}
	votingSecs, timelockSecs, err := e.resolvePeriods(args)
	if err != nil {
		return nil, err
	}
	deposit := e.cfg.MinProposalDeposit

	e.mu.Lock()
	defer e.mu.Unlock()

	// precheck so an underfunded creator does not burn an id
	err = e.store.View(func(st State) error {
		if !isInitialized(st) {
			return ErrNotInitialized
		}
		return e.checkBalance(creator, deposit)
	})
	if err != nil {
		e.metrics.rejected("create", err)
		return nil, err
	}

	id, err := e.reserveProposalID()
	if err != nil {
		return nil, err
	}

	var (
		prpsl  *Proposal
		locked Amount
	)
	err = e.update("create", func(tx *txn) error {
		t, err := loadTreasury(tx)
		if err != nil {
			return err
		}
		now := e.now()
		p := &Proposal{
			ID:          id,
			Creator:     creator,
			Kind:        kind,
			Title:       args.Title,
			Description: args.Description,
			CreatedAt:   now,
			IsActive:    true,
			Deposit:     deposit,
			Tx:          uuid.NewString(),
		}
		if kind == KindParameterUpdate {
			proposed := *args.ProposedParams
			proposed.Authority = ""
			p.ProposedParams = &proposed
		} else {
			p.Options = slices.Clone(args.Options)
		}
		p.ReviewEndTime = now + seconds(e.cfg.ReviewPeriod)
		p.VotingEndTime = p.ReviewEndTime + votingSecs
		p.ExecutionTime = p.VotingEndTime + timelockSecs

		if err := e.lock(tx, t, creator, deposit); err != nil {
			return err
		}
		saveProposal(tx, p)
		emitProposalCreatedEvent(tx, p)
		prpsl = p
		locked = t.TotalLocked
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.metrics.created(prpsl, locked)
	return prpsl, nil
}

// checkBalance is the pre-lock stake check; the ledger transfer is still the
// final word.
func (e *Engine) checkBalance(creator sdk.Address, deposit Amount) error {
	bal, err := e.ledger.GetBalance(creator)
	if err != nil {
		return fmt.Errorf("%w: balance of %s: %w", ErrTransferFailed, creator, err)
	}
	if Amount(bal) < deposit {
		return fmt.Errorf("%w: %s holds %s, deposit is %s", ErrInsufficientBalance, creator, Amount(bal), deposit)
	}
	return nil
}

// validateCreateArgs checks the content limits and picks the kind.
func (e *Engine) validateCreateArgs(args *CreateProposalArgs) (ProposalKind, error) {
	if args.Title == "" {
		return 0, fmt.Errorf("%w: title is required", ErrInvalidProposal)
	}
	if len(args.Title) > MaxTitleLength {
		return 0, fmt.Errorf("%w: title longer than %d bytes", ErrInvalidProposal, MaxTitleLength)
	}
	if len(args.Description) > MaxDescriptionLength {
		return 0, fmt.Errorf("%w: description longer than %d bytes", ErrInvalidProposal, MaxDescriptionLength)
	}
	if !utf8.ValidString(args.Title) || !utf8.ValidString(args.Description) {
		return 0, fmt.Errorf("%w: title and description must be utf-8", ErrInvalidProposal)
	}
	if args.ProposedParams != nil {
		if len(args.Options) > 0 {
			return 0, fmt.Errorf("%w: a parameter update takes no options", ErrInvalidProposal)
		}
		if err := args.ProposedParams.Validate(); err != nil {
			return 0, err
		}
		return KindParameterUpdate, nil
	}
	if len(args.Options) > MaxOptions {
		return 0, fmt.Errorf("%w: more than %d options", ErrInvalidProposal, MaxOptions)
	}
	for i, opt := range args.Options {
		if opt == "" || len(opt) > MaxOptionTextLength {
			return 0, fmt.Errorf("%w: option %d must be 1..%d bytes", ErrInvalidProposal, i, MaxOptionTextLength)
		}
	}
	if len(lo.Uniq(args.Options)) != len(args.Options) {
		return 0, fmt.Errorf("%w: duplicate options", ErrInvalidProposal)
	}
	return KindGeneric, nil
}

// resolvePeriods applies the per-proposal overrides on top of the config.
func (e *Engine) resolvePeriods(args CreateProposalArgs) (int64, int64, error) {
	voting := seconds(e.cfg.VotingPeriod)
	timelock := seconds(e.cfg.Timelock)
	if args.VotingPeriodSecs < 0 || args.TimelockSecs < 0 {
		return 0, 0, fmt.Errorf("%w: negative period override", ErrInvalidProposal)
	}
	if args.VotingPeriodSecs > 0 {
		if args.VotingPeriodSecs > seconds(e.cfg.MaxVotingPeriod) {
			return 0, 0, fmt.Errorf("%w: voting period above %s", ErrInvalidProposal, e.cfg.MaxVotingPeriod)
		}
		voting = args.VotingPeriodSecs
	}
	if args.TimelockSecs > 0 {
		if args.TimelockSecs > seconds(e.cfg.MaxTimelock) {
			return 0, 0, fmt.Errorf("%w: timelock above %s", ErrInvalidProposal, e.cfg.MaxTimelock)
		}
		timelock = args.TimelockSecs
	}
	return voting, timelock, nil
}

// -----------------------------------------------------------------------------
// Close Proposal
// -----------------------------------------------------------------------------

// CloseProposal decides a proposal once its voting window is over. Anyone may
// call it. A rejected proposal forfeits its deposit right away; an approved
// one keeps it locked until execution. Missing quorum is not a call failure,
// it comes back as CloseResult.Reason.
func (e *Engine) CloseProposal(caller sdk.Address, id uint64) (*CloseResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var (
		res    *CloseResult
		locked Amount
	)
	err := e.update("close", func(tx *txn) error {
		p, err := loadProposal(tx, id)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return fmt.Errorf("%w: proposal %d already closed", ErrProposalNotActive, id)
		}
		now := e.now()
		if now < p.VotingEndTime {
			return fmt.Errorf("%w: voting ends at %d", ErrVotingPeriodNotEnded, p.VotingEndTime)
		}
		d := e.decide(p.Tally(), e.cfg.TotalSupply, e.cfg.QuorumPercentage)
		p.IsActive = false
		p.IsApproved = d.Approved
		p.ClosedAt = now
		t, err := loadTreasury(tx)
		if err != nil {
			return err
		}
		if !d.Approved {
			p.RejectReason = d.Reason().Error()
			if err := e.release(tx, t, p.Creator, p.Deposit, Forfeit); err != nil {
				return err
			}
			p.DepositReleased = true
		}
		saveProposal(tx, p)
		emitProposalClosedEvent(tx, p, d, caller)
		res = &CloseResult{Proposal: p, Decision: d, Reason: d.Reason()}
		locked = t.TotalLocked
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.metrics.closed(res, locked)
	return res, nil
}

// -----------------------------------------------------------------------------
// Execute Proposal
// -----------------------------------------------------------------------------

// ExecuteProposal applies an approved proposal after its timelock and refunds
// the deposit. Params are validated again first; if that or the refund fails
// nothing changes.
func (e *Engine) ExecuteProposal(caller sdk.Address, id uint64) (*Proposal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var (
		out    *Proposal
		locked Amount
	)
	err := e.update("execute", func(tx *txn) error {
		p, err := loadProposal(tx, id)
		if err != nil {
			return err
		}
		switch {
		case p.IsExecuted:
			return fmt.Errorf("%w: proposal %d", ErrProposalAlreadyExecuted, id)
		case p.IsActive:
			return fmt.Errorf("%w: proposal %d is not closed", ErrProposalStillActive, id)
		case !p.IsApproved:
			return fmt.Errorf("%w: proposal %d", ErrProposalNotApproved, id)
		}
		now := e.now()
		if now < p.ExecutionTime {
			return fmt.Errorf("%w: executable at %d", ErrTimelockNotExpired, p.ExecutionTime)
		}
		if p.Kind == KindParameterUpdate {
			if err := p.ProposedParams.Validate(); err != nil {
				return err
			}
		}
		reg, err := loadRegistry(tx)
		if err != nil {
			return err
		}
		t, err := loadTreasury(tx)
		if err != nil {
			return err
		}
		if err := e.release(tx, t, p.Creator, p.Deposit, Refund); err != nil {
			return err
		}
		if p.Kind == KindParameterUpdate {
			live, err := loadParams(tx)
			if err != nil {
				return err
			}
			for _, c := range applyParams(tx, live, *p.ProposedParams, reg.ID) {
				emitProposalParamChangedEvent(tx, p.ID, c)
			}
		}
		p.IsExecuted = true
		p.DepositReleased = true
		p.ExecutedAt = now
		saveProposal(tx, p)
		emitProposalExecutedEvent(tx, p, caller)
		out = p
		locked = t.TotalLocked
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.metrics.executed(out, locked)
	return out, nil
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

// GetProposal loads one proposal by id.
func (e *Engine) GetProposal(id uint64) (*Proposal, error) {
	var p *Proposal
	err := e.store.View(func(st State) error {
		var err error
		p, err = loadProposal(st, id)
		return err
	})
	return p, err
}

// ListProposals returns proposals in id order narrowed by filter; phases are
// judged at the engine clock.
func (e *Engine) ListProposals(filter ProposalFilter) ([]*Proposal, error) {
	var all []*Proposal
	err := e.store.View(func(st State) error {
		if !isInitialized(st) {
			return ErrNotInitialized
		}
		var err error
		all, err = loadProposals(st)
		return err
	})
	if err != nil {
		return nil, err
	}
	now := e.now()
	return lo.Filter(all, func(p *Proposal, _ int) bool {
		if filter.Creator != "" && p.Creator != filter.Creator {
			return false
		}
		if filter.Kind != nil && p.Kind != *filter.Kind {
			return false
		}
		if len(filter.Phases) > 0 && !lo.Contains(filter.Phases, p.Phase(now)) {
			return false
		}
		return true
	}), nil
}

// Phase reports where proposal id sits right now.
func (e *Engine) Phase(id uint64) (Phase, error) {
	p, err := e.GetProposal(id)
	if err != nil {
		return 0, err
	}
	return p.Phase(e.now()), nil
}
