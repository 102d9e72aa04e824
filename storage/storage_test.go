package storage

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/db/metadb"
)

type testArtifact struct {
	Name  string `cbor:"0,keyasint"`
	Count uint64 `cbor:"1,keyasint"`
}

func TestUpdateCommits(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	err := stg.Update(func(tx *Tx) error {
		if err := tx.Set(PoolPrefix, []byte("pool1"), testArtifact{Name: "pool1", Count: 3}); err != nil {
			return err
		}
		// writes are visible inside the same transaction
		var got testArtifact
		if err := tx.Get(PoolPrefix, []byte("pool1"), &got); err != nil {
			return err
		}
		c.Check(got.Count, qt.Equals, uint64(3))
		return nil
	})
	c.Assert(err, qt.IsNil)

	err = stg.View(func(tx *Tx) error {
		var got testArtifact
		if err := tx.Get(PoolPrefix, []byte("pool1"), &got); err != nil {
			return err
		}
		c.Assert(got, qt.DeepEquals, testArtifact{Name: "pool1", Count: 3})
		return nil
	})
	c.Assert(err, qt.IsNil)
}

func TestUpdateDiscardsOnError(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))
	errBoom := errors.New("boom")

	err := stg.Update(func(tx *Tx) error {
		if err := tx.SetRaw(TokenBalancePrefix, []byte("a"), []byte{1}); err != nil {
			return err
		}
		if err := tx.SetRaw(TokenBalancePrefix, []byte("b"), []byte{2}); err != nil {
			return err
		}
		return errBoom
	})
	c.Assert(err, qt.ErrorIs, errBoom)

	err = stg.View(func(tx *Tx) error {
		for _, k := range []string{"a", "b"} {
			ok, err := tx.Has(TokenBalancePrefix, []byte(k))
			c.Assert(err, qt.IsNil)
			c.Assert(ok, qt.IsFalse)
		}
		_, err := tx.GetRaw(TokenBalancePrefix, []byte("a"))
		c.Assert(err, qt.ErrorIs, ErrNotFound)
		return nil
	})
	c.Assert(err, qt.IsNil)
}

func TestViewIsReadOnly(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	err := stg.View(func(tx *Tx) error {
		return tx.SetRaw(PoolPrefix, []byte("x"), []byte{1})
	})
	c.Assert(err, qt.ErrorIs, ErrReadOnly)

	err = stg.View(func(tx *Tx) error {
		return tx.Delete(PoolPrefix, []byte("x"))
	})
	c.Assert(err, qt.ErrorIs, ErrReadOnly)
}

func TestIterateOrderAndPrefixes(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))
	token := []byte("token")

	c.Assert(stg.Update(func(tx *Tx) error {
		for _, ts := range []uint64{300, 10, 256, 20} {
			if err := tx.SetRaw(TokenUtilizationPrefix, Key(token, Uint64Key(ts)), []byte{byte(ts)}); err != nil {
				return err
			}
		}
		// same token id under another prefix must not leak into the scan
		return tx.SetRaw(TokenBalancePrefix, Key(token, Uint64Key(1)), []byte{9})
	}), qt.IsNil)

	var seen []uint64
	c.Assert(stg.View(func(tx *Tx) error {
		return tx.Iterate(TokenUtilizationPrefix, token, func(k, _ []byte) bool {
			seen = append(seen, Uint64FromKey(k))
			return true
		})
	}), qt.IsNil)
	c.Assert(seen, qt.DeepEquals, []uint64{10, 20, 256, 300})

	// early stop
	seen = nil
	c.Assert(stg.View(func(tx *Tx) error {
		return tx.Iterate(TokenUtilizationPrefix, token, func(k, _ []byte) bool {
			seen = append(seen, Uint64FromKey(k))
			return len(seen) < 2
		})
	}), qt.IsNil)
	c.Assert(seen, qt.HasLen, 2)
}

func TestDelete(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	c.Assert(stg.Update(func(tx *Tx) error {
		return tx.SetRaw(PoolNoncePrefix, []byte("jti"), []byte{1})
	}), qt.IsNil)
	c.Assert(stg.Update(func(tx *Tx) error {
		return tx.Delete(PoolNoncePrefix, []byte("jti"))
	}), qt.IsNil)
	c.Assert(stg.View(func(tx *Tx) error {
		ok, err := tx.Has(PoolNoncePrefix, []byte("jti"))
		c.Assert(ok, qt.IsFalse)
		return err
	}), qt.IsNil)
}
