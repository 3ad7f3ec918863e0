package contract

import "strconv"

// reserveProposalID hands out the current counter and bumps it in its own
// committed transaction, so a create that fails afterwards leaves a gap.
func (e *Engine) reserveProposalID() (uint64, error) {
	var id uint64
	err := e.store.Update(func(st State) error {
		reg, err := loadRegistry(st)
		if err != nil {
			return err
		}
		id = nextProposalID(reg)
		saveRegistry(st, reg)
		return nil
	})
	return id, err
}

// nextProposalID returns the current count then increments it.
func nextProposalID(reg *Registry) uint64 {
	id := reg.ProposalCount
	reg.ProposalCount++
	return id
}

// UInt64ToString turns an id into decimal text for logs and cli output.
// Example payload: UInt64ToString(9001)
func UInt64ToString(val uint64) string {
	return strconv.FormatUint(val, 10)
}
