package contract

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var stateBucket = []byte("governance")

// BoltStore keeps governance records in one bbolt bucket. Every Update is a
// single bbolt read-write transaction, so a failed operation rolls back.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens or creates the state file at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, fmt.Errorf("state %s is in use by another process", path)
		}
		return nil, fmt.Errorf("open state %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(stateBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init state %s: %w", path, err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) View(fn func(State) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		st := &boltState{b: tx.Bucket(stateBucket)}
		if err := fn(st); err != nil {
			return err
		}
		return st.err
	})
}

func (s *BoltStore) Update(fn func(State) error) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		st := &boltState{b: tx.Bucket(stateBucket)}
		if err := fn(st); err != nil {
			return err
		}
		return st.err
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// boltState remembers the first write error so the enclosing transaction
// rolls back even though State.Set has no error return.
type boltState struct {
	b   *bolt.Bucket
	err error
}

func (s *boltState) Set(key string, value []byte) {
	if s.err != nil {
		return
	}
	s.err = s.b.Put([]byte(key), value)
}

// Get copies the value out since bbolt memory is only valid for the tx.
func (s *boltState) Get(key string) []byte {
	v := s.b.Get([]byte(key))
	if v == nil {
		return nil
	}
	return bytes.Clone(v)
}

func (s *boltState) Delete(key string) {
	if s.err != nil {
		return
	}
	s.err = s.b.Delete([]byte(key))
}

func (s *boltState) Scan(prefix string, fn func(key string, value []byte) error) error {
	c := s.b.Cursor()
	p := []byte(prefix)
	for k, v := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = c.Next() {
		if err := fn(string(k), bytes.Clone(v)); err != nil {
			return err
		}
	}
	return nil
}
