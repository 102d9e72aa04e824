// Package storage is the host ledger store. Every component of the election
// core is persisted here as a cbor artifact under a prefixed key, and every
// public ledger call runs as one write batch that is either committed as a
// whole or discarded. The following prefixes are used:
//   - 'n/' for per-creator nonces
//   - 'k/' for entity kinds
//   - 'e/', 'b/', 'p/', 't/', 'a/' for elections, ballots, pools, tokens and allowances
//   - 'pv/', 'pi/', 'pj/' for pool votes, vote index and used nonces
//   - 'tb/', 'tu/', 'te/', 'tc/' for token balances, utilization buckets,
//     allowed elections and closed elections
//   - 'ab/', 'ae/' for allowance balances and allowed elections
package storage

import (
	"errors"
	"fmt"
	"sync"

	"go.vocdoni.io/dvote/db"
)

var (
	// ErrNotFound is returned when an artifact is not present in the store.
	ErrNotFound = errors.New("not found")
	// ErrReadOnly is returned when a write is attempted inside View.
	ErrReadOnly = errors.New("read-only transaction")
)

// Storage wraps a key-value database and serializes every call into a
// strict total order.
type Storage struct {
	db         db.Database
	globalLock sync.Mutex
}

// New creates a new Storage instance.
func New(database db.Database) *Storage {
	return &Storage{db: database}
}

// Close closes the storage.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Update runs fn inside a write transaction. The transaction is committed
// only if fn returns nil, otherwise every write performed by fn is
// discarded.
func (s *Storage) Update(fn func(tx *Tx) error) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	wTx := s.db.WriteTx()
	if err := fn(&Tx{wTx: wTx}); err != nil {
		wTx.Discard()
		return err
	}
	if err := wTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// View runs fn against a read-only snapshot of the store.
func (s *Storage) View(fn func(tx *Tx) error) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	wTx := s.db.WriteTx()
	defer wTx.Discard()
	return fn(&Tx{wTx: wTx, readOnly: true})
}
