// Package registry implements an ordered set with constant time membership
// and index lookups. Removal swaps the last member into the freed slot, so
// positions are not stable across removals; every member also gets a
// sequence id that survives removals and is never reused.
package registry

import (
	"fmt"

	"github.com/vocdoni/ballotbox/types"
)

// Registry is an ordered set of unique members. The zero value is an empty
// registry ready to use. Exported fields are the persisted form; the
// position index is rebuilt on first use after decoding.
type Registry[T comparable] struct {
	Items  []T
	IDs    []uint64
	NextID uint64

	index map[T]int
}

func (r *Registry[T]) ensureIndex() {
	if r.index != nil {
		return
	}
	r.index = make(map[T]int, len(r.Items))
	for i, v := range r.Items {
		r.index[v] = i
	}
}

// Add appends v. Returns types.ErrDuplicateEntry if v is already a member.
func (r *Registry[T]) Add(v T) error {
	r.ensureIndex()
	if _, ok := r.index[v]; ok {
		return fmt.Errorf("%w: %v already registered", types.ErrDuplicateEntry, v)
	}
	r.index[v] = len(r.Items)
	r.Items = append(r.Items, v)
	r.IDs = append(r.IDs, r.NextID)
	r.NextID++
	return nil
}

// Remove deletes v by moving the last member into its slot. Returns
// types.ErrNotFound if v is not a member.
func (r *Registry[T]) Remove(v T) error {
	r.ensureIndex()
	i, ok := r.index[v]
	if !ok {
		return fmt.Errorf("%w: %v not registered", types.ErrNotFound, v)
	}
	last := len(r.Items) - 1
	if i != last {
		moved := r.Items[last]
		r.Items[i] = moved
		r.IDs[i] = r.IDs[last]
		r.index[moved] = i
	}
	var zero T
	r.Items[last] = zero
	r.Items = r.Items[:last]
	r.IDs = r.IDs[:last]
	delete(r.index, v)
	return nil
}

// Contains reports whether v is a member.
func (r *Registry[T]) Contains(v T) bool {
	r.ensureIndex()
	_, ok := r.index[v]
	return ok
}

// IndexOf returns the current position of v.
func (r *Registry[T]) IndexOf(v T) (int, bool) {
	r.ensureIndex()
	i, ok := r.index[v]
	return i, ok
}

// At returns the member at position i.
func (r *Registry[T]) At(i int) (T, error) {
	if i < 0 || i >= len(r.Items) {
		var zero T
		return zero, fmt.Errorf("%w: index %d out of range [0,%d)", types.ErrNotFound, i, len(r.Items))
	}
	return r.Items[i], nil
}

// Count returns the number of members.
func (r *Registry[T]) Count() int {
	return len(r.Items)
}

// StableID returns the sequence id assigned to v when it was added.
func (r *Registry[T]) StableID(v T) (uint64, bool) {
	i, ok := r.IndexOf(v)
	if !ok {
		return 0, false
	}
	return r.IDs[i], true
}

// Members returns a copy of the members in registry order.
func (r *Registry[T]) Members() []T {
	out := make([]T, len(r.Items))
	copy(out, r.Items)
	return out
}
