package contract

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// State is the key/value view one transaction sees.
type State interface {
	Set(key string, value []byte)
	Get(key string) []byte
	Delete(key string)
	// Scan visits keys with the prefix in ascending byte order.
	Scan(prefix string, fn func(key string, value []byte) error) error
}

// Store hands out transactional States. Update commits only when fn returns
// nil; View must not write.
type Store interface {
	View(fn func(State) error) error
	Update(fn func(State) error) error
	Close() error
}

var errReadOnly = errors.New("write in read-only transaction")

// MemoryStore keeps everything in a map. Writes made inside Update are
// buffered and land only if the callback succeeds.
type MemoryStore struct {
	mu sync.RWMutex
	db map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{db: make(map[string][]byte)}
}

func (m *MemoryStore) View(fn func(State) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := &memState{base: m.db, readOnly: true}
	if err := fn(st); err != nil {
		return err
	}
	return st.err
}

func (m *MemoryStore) Update(fn func(State) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := &memState{base: m.db, writes: make(map[string][]byte)}
	if err := fn(st); err != nil {
		return err
	}
	if st.err != nil {
		return st.err
	}
	for k, v := range st.writes {
		if v == nil {
			delete(m.db, k)
			continue
		}
		m.db[k] = v
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// memState overlays pending writes on the committed map; a nil value in
// writes marks a delete.
type memState struct {
	base     map[string][]byte
	writes   map[string][]byte
	readOnly bool
	err      error
}

func (s *memState) Set(key string, value []byte) {
	if s.readOnly {
		s.err = errReadOnly
		return
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.writes[key] = cp
}

func (s *memState) Get(key string) []byte {
	if v, ok := s.writes[key]; ok {
		return v
	}
	return s.base[key]
}

func (s *memState) Delete(key string) {
	if s.readOnly {
		s.err = errReadOnly
		return
	}
	s.writes[key] = nil
}

func (s *memState) Scan(prefix string, fn func(key string, value []byte) error) error {
	keys := make([]string, 0)
	seen := make(map[string]bool)
	for k := range s.base {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	for k := range s.writes {
		if strings.HasPrefix(k, prefix) && !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := s.Get(k)
		if v == nil {
			continue
		}
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}
