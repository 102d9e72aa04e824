package ledger

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/types"
)

// CheckLink reports whether pool and ballot are linked: each one lists the
// other in its registry and both belong to the same election. A missing
// pool or ballot yields false.
func (l *Ledger) CheckLink(poolID, ballotID common.Address) (bool, error) {
	var ok bool
	err := l.view(func(t *txn) error {
		var err error
		ok, err = t.checkLink(poolID, ballotID)
		return err
	})
	return ok, err
}

// CheckConfig reports whether pool is fully wired: it lists at least one
// ballot, every listed ballot is linked back to it, and its election
// registers the pool and each of those ballots.
func (l *Ledger) CheckConfig(poolID common.Address) (bool, error) {
	var ok bool
	err := l.view(func(t *txn) error {
		var err error
		ok, err = t.checkConfig(poolID)
		return err
	})
	return ok, err
}

// lookup returns false on types.ErrNotFound and propagates any other error.
func lookup(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, types.ErrNotFound) {
		return false, nil
	}
	return false, err
}

func (t *txn) checkLink(poolID, ballotID common.Address) (bool, error) {
	p, err := t.pool(poolID)
	if found, err := lookup(err); !found {
		return false, err
	}
	b, err := t.ballot(ballotID)
	if found, err := lookup(err); !found {
		return false, err
	}
	return linked(p, b), nil
}

func linked(p *Pool, b *Ballot) bool {
	return p.Ballots.Contains(b.ID) && b.Pools.Contains(p.ID) && p.Election == b.Election
}

func (t *txn) checkConfig(poolID common.Address) (bool, error) {
	p, err := t.pool(poolID)
	if found, err := lookup(err); !found {
		return false, err
	}
	if p.Ballots.Count() == 0 {
		return false, nil
	}
	el, err := t.election(p.Election)
	if found, err := lookup(err); !found {
		return false, err
	}
	if !el.Pools.Contains(p.ID) {
		return false, nil
	}
	for _, ballotID := range p.Ballots.Members() {
		b, err := t.ballot(ballotID)
		if found, err := lookup(err); !found {
			return false, err
		}
		if !linked(p, b) || !el.Ballots.Contains(b.ID) {
			return false, nil
		}
	}
	return true, nil
}

// checkReady gates election activation on every registered pool being
// fully wired to it.
func (t *txn) checkReady(el *Election) error {
	for _, poolID := range el.Pools.Members() {
		p, err := t.pool(poolID)
		if err != nil {
			return err
		}
		if p.Election != el.ID {
			return fmt.Errorf("%w: pool %s belongs to election %s",
				types.ErrInvalidState, poolID.Hex(), p.Election.Hex())
		}
		ok, err := t.checkConfig(poolID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: pool %s is not fully linked", types.ErrInvalidState, poolID.Hex())
		}
	}
	return nil
}
