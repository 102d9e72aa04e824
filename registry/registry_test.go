package registry

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/fxamacker/cbor/v2"
	"github.com/vocdoni/ballotbox/types"
	"pgregory.net/rapid"
)

func TestAddDuplicate(t *testing.T) {
	c := qt.New(t)
	var r Registry[string]
	c.Assert(r.Add("a"), qt.IsNil)
	c.Assert(r.Add("a"), qt.ErrorIs, types.ErrDuplicateEntry)
	c.Assert(r.Count(), qt.Equals, 1)
}

func TestRemoveMissing(t *testing.T) {
	c := qt.New(t)
	var r Registry[string]
	c.Assert(r.Remove("a"), qt.ErrorIs, types.ErrNotFound)
	_, err := r.At(0)
	c.Assert(err, qt.ErrorIs, types.ErrNotFound)
}

func TestRemoveFirstMovesLast(t *testing.T) {
	c := qt.New(t)
	var r Registry[string]
	for _, v := range []string{"a", "b", "c"} {
		c.Assert(r.Add(v), qt.IsNil)
	}
	c.Assert(r.Remove("a"), qt.IsNil)
	c.Assert(r.Members(), qt.DeepEquals, []string{"c", "b"})
	i, ok := r.IndexOf("c")
	c.Assert(ok, qt.IsTrue)
	c.Assert(i, qt.Equals, 0)
	c.Assert(r.Contains("a"), qt.IsFalse)
}

func TestRemoveEachOfThree(t *testing.T) {
	all := []string{"a", "b", "c"}
	for _, removed := range all {
		t.Run(removed, func(t *testing.T) {
			c := qt.New(t)
			var r Registry[string]
			for _, v := range all {
				c.Assert(r.Add(v), qt.IsNil)
			}
			c.Assert(r.Remove(removed), qt.IsNil)
			c.Assert(r.Count(), qt.Equals, 2)
			for _, v := range all {
				if v == removed {
					c.Assert(r.Contains(v), qt.IsFalse)
					continue
				}
				i, ok := r.IndexOf(v)
				c.Assert(ok, qt.IsTrue)
				got, err := r.At(i)
				c.Assert(err, qt.IsNil)
				c.Assert(got, qt.Equals, v)
			}
		})
	}
}

func TestStableIDSurvivesRemoval(t *testing.T) {
	c := qt.New(t)
	var r Registry[string]
	for _, v := range []string{"a", "b", "c"} {
		c.Assert(r.Add(v), qt.IsNil)
	}
	idC, _ := r.StableID("c")
	c.Assert(r.Remove("a"), qt.IsNil)
	got, ok := r.StableID("c")
	c.Assert(ok, qt.IsTrue)
	c.Assert(got, qt.Equals, idC)

	// ids are never reused, even for a re-added member
	c.Assert(r.Add("a"), qt.IsNil)
	idA, _ := r.StableID("a")
	c.Assert(idA, qt.Equals, uint64(3))
}

func TestIndexRebuiltAfterDecode(t *testing.T) {
	c := qt.New(t)
	var r Registry[string]
	for _, v := range []string{"x", "y", "z"} {
		c.Assert(r.Add(v), qt.IsNil)
	}
	data, err := cbor.Marshal(r)
	c.Assert(err, qt.IsNil)

	var decoded Registry[string]
	c.Assert(cbor.Unmarshal(data, &decoded), qt.IsNil)
	c.Assert(decoded.Contains("y"), qt.IsTrue)
	c.Assert(decoded.Add("y"), qt.ErrorIs, types.ErrDuplicateEntry)
	c.Assert(decoded.Remove("x"), qt.IsNil)
	c.Assert(decoded.Members(), qt.DeepEquals, []string{"z", "y"})
}

// TestRegistryModel checks the registry against a plain set under random
// add/remove sequences: every member is reachable through its index, the
// list is contiguous and stable ids never change.
func TestRegistryModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var r Registry[uint8]
		model := map[uint8]uint64{}
		ops := rapid.SliceOfN(rapid.Uint8Range(0, 15), 1, 64).Draw(t, "ops")
		for _, v := range ops {
			if _, ok := model[v]; ok {
				if err := r.Remove(v); err != nil {
					t.Fatalf("remove %d: %v", v, err)
				}
				delete(model, v)
				continue
			}
			if err := r.Add(v); err != nil {
				t.Fatalf("add %d: %v", v, err)
			}
			id, _ := r.StableID(v)
			model[v] = id
		}
		if r.Count() != len(model) {
			t.Fatalf("count %d, model %d", r.Count(), len(model))
		}
		for v, id := range model {
			i, ok := r.IndexOf(v)
			if !ok {
				t.Fatalf("%d missing", v)
			}
			if got, _ := r.At(i); got != v {
				t.Fatalf("At(%d)=%d, want %d", i, got, v)
			}
			if got, _ := r.StableID(v); got != id {
				t.Fatalf("stable id of %d changed from %d to %d", v, id, got)
			}
		}
	})
}
