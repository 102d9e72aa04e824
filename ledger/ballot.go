package ledger

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/access"
	"github.com/vocdoni/ballotbox/registry"
	"github.com/vocdoni/ballotbox/types"
)

// CreateBallot creates a ballot of election. The caller becomes the owner
// and admin, if set, an additional admin. The ballot starts with the ALL
// group and no pools.
func (l *Ledger) CreateBallot(caller, electionID, admin common.Address, metadataRef string) (common.Address, error) {
	var id common.Address
	err := l.update(func(t *txn) error {
		var err error
		id, err = t.createBallot(caller, electionID, admin, metadataRef)
		return err
	})
	return id, err
}

func (t *txn) createBallot(caller, electionID, admin common.Address, metadataRef string) (common.Address, error) {
	if _, err := t.election(electionID); err != nil {
		return common.Address{}, err
	}
	id, err := t.newID(caller, types.KindBallot)
	if err != nil {
		return common.Address{}, err
	}
	b := &Ballot{
		ID:          id,
		Election:    electionID,
		MetadataRef: metadataRef,
		Access:      access.New(caller),
		GroupPools:  map[string]*registry.Registry[common.Address]{},
		PoolGroups:  map[string]*registry.Registry[string]{},
		CreatedAt:   t.now.Unix(),
	}
	if admin != (common.Address{}) {
		if err := b.Access.AddAdmin(caller, admin); err != nil {
			return common.Address{}, err
		}
	}
	if err := b.addGroup(GroupAll); err != nil {
		return common.Address{}, err
	}
	t.emit(Event{Type: EventCreated, Kind: types.KindBallot, Entity: id, Caller: caller, Target: electionID})
	return id, t.saveBallot(b)
}

// Ballot returns ballot id.
func (l *Ledger) Ballot(id common.Address) (*Ballot, error) {
	var b *Ballot
	err := l.view(func(t *txn) error {
		var err error
		b, err = t.ballot(id)
		return err
	})
	return b, err
}

// withBallot loads ballot id, checks caller is an admin, applies fn and
// saves it back.
func (l *Ledger) withBallot(caller, id common.Address, fn func(t *txn, b *Ballot) error) error {
	return l.update(func(t *txn) error {
		b, err := t.ballot(id)
		if err != nil {
			return err
		}
		if err := b.Access.RequireAdmin(caller); err != nil {
			return err
		}
		if err := fn(t, b); err != nil {
			return err
		}
		return t.saveBallot(b)
	})
}

func (b *Ballot) ensureMaps() {
	if b.GroupPools == nil {
		b.GroupPools = map[string]*registry.Registry[common.Address]{}
	}
	if b.PoolGroups == nil {
		b.PoolGroups = map[string]*registry.Registry[string]{}
	}
}

func (b *Ballot) addGroup(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty group name", types.ErrInvalidInput)
	}
	if err := b.Groups.Add(name); err != nil {
		return err
	}
	b.ensureMaps()
	b.GroupPools[name] = &registry.Registry[common.Address]{}
	return nil
}

func (b *Ballot) groupPools(group string) (*registry.Registry[common.Address], error) {
	if !b.Groups.Contains(group) {
		return nil, fmt.Errorf("%w: group %q", types.ErrNotFound, group)
	}
	b.ensureMaps()
	r, ok := b.GroupPools[group]
	if !ok {
		r = &registry.Registry[common.Address]{}
		b.GroupPools[group] = r
	}
	return r, nil
}

func (b *Ballot) poolGroups(pool common.Address) (*registry.Registry[string], error) {
	if !b.Pools.Contains(pool) {
		return nil, fmt.Errorf("%w: pool %s is not linked to ballot %s", types.ErrNotFound, pool.Hex(), b.ID.Hex())
	}
	b.ensureMaps()
	r, ok := b.PoolGroups[pool.Hex()]
	if !ok {
		r = &registry.Registry[string]{}
		b.PoolGroups[pool.Hex()] = r
	}
	return r, nil
}

// AddGroup adds a named group. Admin only.
func (l *Ledger) AddGroup(caller, ballotID common.Address, name string) error {
	return l.withBallot(caller, ballotID, func(_ *txn, b *Ballot) error {
		return b.addGroup(name)
	})
}

// RemoveGroup removes a group and every membership in it. The ALL group
// cannot be removed. Admin only.
func (l *Ledger) RemoveGroup(caller, ballotID common.Address, name string) error {
	return l.withBallot(caller, ballotID, func(_ *txn, b *Ballot) error {
		if name == GroupAll {
			return fmt.Errorf("%w: group %s cannot be removed", types.ErrInvalidInput, GroupAll)
		}
		members, err := b.groupPools(name)
		if err != nil {
			return err
		}
		for _, pool := range members.Members() {
			groups, err := b.poolGroups(pool)
			if err != nil {
				return err
			}
			if err := groups.Remove(name); err != nil {
				return err
			}
		}
		delete(b.GroupPools, name)
		return b.Groups.Remove(name)
	})
}

// AddPoolToBallot links pool on the ballot side. The pool joins the ALL
// group. Admin only.
func (l *Ledger) AddPoolToBallot(caller, ballotID, poolID common.Address) error {
	return l.withBallot(caller, ballotID, func(t *txn, b *Ballot) error {
		if _, err := t.pool(poolID); err != nil {
			return err
		}
		return b.addPool(poolID)
	})
}

func (b *Ballot) addPool(poolID common.Address) error {
	if err := b.Pools.Add(poolID); err != nil {
		return err
	}
	return b.addPoolToGroup(poolID, GroupAll)
}

func (b *Ballot) addPoolToGroup(poolID common.Address, group string) error {
	members, err := b.groupPools(group)
	if err != nil {
		return err
	}
	groups, err := b.poolGroups(poolID)
	if err != nil {
		return err
	}
	if err := members.Add(poolID); err != nil {
		return err
	}
	return groups.Add(group)
}

// RemovePoolFromBallot unlinks pool on the ballot side and drops it from
// every group. Admin only.
func (l *Ledger) RemovePoolFromBallot(caller, ballotID, poolID common.Address) error {
	return l.withBallot(caller, ballotID, func(_ *txn, b *Ballot) error {
		groups, err := b.poolGroups(poolID)
		if err != nil {
			return err
		}
		for _, group := range groups.Members() {
			members, err := b.groupPools(group)
			if err != nil {
				return err
			}
			if err := members.Remove(poolID); err != nil {
				return err
			}
		}
		delete(b.PoolGroups, poolID.Hex())
		return b.Pools.Remove(poolID)
	})
}

// AddPoolToGroup adds a linked pool to an existing group. Admin only.
func (l *Ledger) AddPoolToGroup(caller, ballotID, poolID common.Address, group string) error {
	return l.withBallot(caller, ballotID, func(_ *txn, b *Ballot) error {
		return b.addPoolToGroup(poolID, group)
	})
}

// RemovePoolFromGroup removes a linked pool from a group. Admin only.
func (l *Ledger) RemovePoolFromGroup(caller, ballotID, poolID common.Address, group string) error {
	return l.withBallot(caller, ballotID, func(_ *txn, b *Ballot) error {
		members, err := b.groupPools(group)
		if err != nil {
			return err
		}
		groups, err := b.poolGroups(poolID)
		if err != nil {
			return err
		}
		if err := members.Remove(poolID); err != nil {
			return err
		}
		return groups.Remove(group)
	})
}

// GroupCount returns the number of groups of ballot, ALL included.
func (l *Ledger) GroupCount(ballotID common.Address) (int, error) {
	b, err := l.Ballot(ballotID)
	if err != nil {
		return 0, err
	}
	return b.Groups.Count(), nil
}

// GroupAt returns the i-th group of ballot.
func (l *Ledger) GroupAt(ballotID common.Address, i int) (string, error) {
	b, err := l.Ballot(ballotID)
	if err != nil {
		return "", err
	}
	return b.Groups.At(i)
}

// PoolGroupCount returns the number of groups pool belongs to in ballot.
func (l *Ledger) PoolGroupCount(ballotID, poolID common.Address) (int, error) {
	b, err := l.Ballot(ballotID)
	if err != nil {
		return 0, err
	}
	groups, err := b.poolGroups(poolID)
	if err != nil {
		return 0, err
	}
	return groups.Count(), nil
}

// PoolGroupAt returns the i-th group pool belongs to in ballot.
func (l *Ledger) PoolGroupAt(ballotID, poolID common.Address, i int) (string, error) {
	b, err := l.Ballot(ballotID)
	if err != nil {
		return "", err
	}
	groups, err := b.poolGroups(poolID)
	if err != nil {
		return "", err
	}
	return groups.At(i)
}

// GroupPoolCount returns the number of pools in a group of ballot.
func (l *Ledger) GroupPoolCount(ballotID common.Address, group string) (int, error) {
	b, err := l.Ballot(ballotID)
	if err != nil {
		return 0, err
	}
	members, err := b.groupPools(group)
	if err != nil {
		return 0, err
	}
	return members.Count(), nil
}

// GroupPoolAt returns the i-th pool of a group of ballot.
func (l *Ledger) GroupPoolAt(ballotID common.Address, group string, i int) (common.Address, error) {
	b, err := l.Ballot(ballotID)
	if err != nil {
		return common.Address{}, err
	}
	members, err := b.groupPools(group)
	if err != nil {
		return common.Address{}, err
	}
	return members.At(i)
}

// BallotPoolCount returns the number of pools linked to ballot.
func (l *Ledger) BallotPoolCount(ballotID common.Address) (int, error) {
	b, err := l.Ballot(ballotID)
	if err != nil {
		return 0, err
	}
	return b.Pools.Count(), nil
}

// BallotPoolAt returns the i-th pool linked to ballot.
func (l *Ledger) BallotPoolAt(ballotID common.Address, i int) (common.Address, error) {
	b, err := l.Ballot(ballotID)
	if err != nil {
		return common.Address{}, err
	}
	return b.Pools.At(i)
}

// VotesByGroup returns every stored vote of every pool in a group of
// ballot, sorted by ciphertext. The order carries no meaning beyond being
// deterministic. Fails with types.ErrInvalidState if any pool of the group
// is not linked both ways to the ballot.
func (l *Ledger) VotesByGroup(ballotID common.Address, group string) ([]types.HexBytes, error) {
	var votes []types.HexBytes
	err := l.view(func(t *txn) error {
		b, err := t.ballot(ballotID)
		if err != nil {
			return err
		}
		members, err := b.groupPools(group)
		if err != nil {
			return err
		}
		for _, poolID := range members.Members() {
			ok, err := t.checkLink(poolID, ballotID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: pool %s is not linked to ballot %s",
					types.ErrInvalidState, poolID.Hex(), ballotID.Hex())
			}
			poolVotes, err := t.poolVotes(poolID)
			if err != nil {
				return err
			}
			for _, v := range poolVotes {
				votes = append(votes, v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(votes, func(i, j int) bool {
		return bytes.Compare(votes[i], votes[j]) < 0
	})
	return votes, nil
}
