package ledger

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/agentstation/congressmap/pkg/errors"
)

// MemoryStore keeps the ledger in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	data  []byte
	saves int
}

// NewMemoryStore returns a store seeded with l, or empty when l is nil.
func NewMemoryStore(l *Ledger) *MemoryStore {
	s := &MemoryStore{}
	if l != nil {
		s.data, _ = json.Marshal(l)
	}
	return s
}

// Load implements Store. The ledger is decoded from a private copy so
// callers never share state with the store.
func (s *MemoryStore) Load(ctx context.Context) (Ledger, error) {
	if err := ctx.Err(); err != nil {
		return Ledger{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return New(), nil
	}
	return Decode(s.data)
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, l Ledger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(l)
	if err != nil {
		return errors.WrapResource("save", "ledger", "", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Decode parses a persisted ledger. Missing items or warnings decode as
// empty collections.
func Decode(data []byte) (Ledger, error) {
	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return Ledger{}, errors.WrapParse("json", "", err)
	}
	if l.Items == nil {
		l.Items = map[string]Item{}
	}
	if l.Warnings == nil {
		l.Warnings = []string{}
	}
	return l, nil
}
