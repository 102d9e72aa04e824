package storage

import (
	"bytes"
	"errors"
	"fmt"

	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// Tx is a transaction over the store. Reads observe the writes already
// performed in the same transaction.
type Tx struct {
	wTx      db.WriteTx
	readOnly bool
}

func (tx *Tx) prefixed(prefix []byte) *prefixeddb.PrefixedWriteTx {
	return prefixeddb.NewPrefixedWriteTx(tx.wTx, prefix)
}

// GetRaw returns the raw value stored under prefix+key, or ErrNotFound.
func (tx *Tx) GetRaw(prefix, key []byte) ([]byte, error) {
	v, err := tx.prefixed(prefix).Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return bytes.Clone(v), nil
}

// Get decodes the artifact stored under prefix+key into out. Returns
// ErrNotFound if there is no such artifact.
func (tx *Tx) Get(prefix, key []byte, out any) error {
	data, err := tx.GetRaw(prefix, key)
	if err != nil {
		return err
	}
	return decodeArtifact(data, out)
}

// Has reports whether prefix+key holds a value.
func (tx *Tx) Has(prefix, key []byte) (bool, error) {
	_, err := tx.GetRaw(prefix, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// SetRaw stores value under prefix+key.
func (tx *Tx) SetRaw(prefix, key, value []byte) error {
	if tx.readOnly {
		return ErrReadOnly
	}
	return tx.prefixed(prefix).Set(key, value)
}

// Set encodes a and stores it under prefix+key.
func (tx *Tx) Set(prefix, key []byte, a any) error {
	data, err := encodeArtifact(a)
	if err != nil {
		return err
	}
	return tx.SetRaw(prefix, key, data)
}

// Delete removes prefix+key. Deleting a missing key is not an error.
func (tx *Tx) Delete(prefix, key []byte) error {
	if tx.readOnly {
		return ErrReadOnly
	}
	return tx.prefixed(prefix).Delete(key)
}

// Iterate calls fn, in key order, for every key under prefix+sub. The key
// passed to fn has prefix+sub stripped. Iteration stops when fn returns
// false. Keys and values are copies and may be retained.
func (tx *Tx) Iterate(prefix, sub []byte, fn func(key, value []byte) bool) error {
	if err := tx.prefixed(prefix).Iterate(sub, func(k, v []byte) bool {
		return fn(bytes.Clone(k), bytes.Clone(v))
	}); err != nil {
		return fmt.Errorf("iterate: %w", err)
	}
	return nil
}
