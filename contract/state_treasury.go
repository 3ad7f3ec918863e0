package contract

import "fmt"

// loadTreasury fails with ErrNotInitialized before Initialize ran.
func loadTreasury(st State) (*Treasury, error) {
	data := st.Get(treasuryKey())
	if data == nil {
		return nil, ErrNotInitialized
	}
	t, err := DecodeTreasury(data)
	if err != nil {
		return nil, fmt.Errorf("decode treasury: %w", err)
	}
	return t, nil
}

func saveTreasury(st State, t *Treasury) {
	st.Set(treasuryKey(), EncodeTreasury(t))
}
