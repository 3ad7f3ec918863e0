package contract

import "fmt"

// -----------------------------------------------------------------------------
// Registry State
// -----------------------------------------------------------------------------

// isInitialized is true once Initialize committed the registry record.
func isInitialized(st State) bool {
	return st.Get(registryKey()) != nil
}

// loadRegistry fails with ErrNotInitialized before Initialize ran.
func loadRegistry(st State) (*Registry, error) {
	data := st.Get(registryKey())
	if data == nil {
		return nil, ErrNotInitialized
	}
	reg, err := DecodeRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	return reg, nil
}

func saveRegistry(st State, reg *Registry) {
	st.Set(registryKey(), EncodeRegistry(reg))
}

// -----------------------------------------------------------------------------
// ParameterSet State
// -----------------------------------------------------------------------------

func loadParams(st State) (*ParameterSet, error) {
	data := st.Get(paramsKey())
	if data == nil {
		return nil, ErrNotInitialized
	}
	p, err := DecodeParams(data)
	if err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	return p, nil
}

func saveParams(st State, p *ParameterSet) {
	st.Set(paramsKey(), EncodeParams(p))
}
