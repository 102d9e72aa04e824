package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/access"
	"github.com/vocdoni/ballotbox/keyholder"
	"github.com/vocdoni/ballotbox/log"
	"github.com/vocdoni/ballotbox/types"
)

// ElectionConfig holds the parameters of a new election.
type ElectionConfig struct {
	UID string `json:"uid"`
	// VoteSource is the token or allowance each cast vote consumes a voting
	// right from.
	VoteSource common.Address `json:"voteSource"`
	// VoteOwner is the account funding the election: the allowance account
	// deducted from, or the holder token withdrawals are returned to.
	// Defaults to the creator.
	VoteOwner    common.Address `json:"voteOwner"`
	AllowUpdates bool           `json:"allowUpdates"`
	AutoActivate bool           `json:"autoActivate"`
	// Revealer publishes the key pair. Defaults to the creator.
	Revealer    common.Address `json:"revealer"`
	Gateway     common.Address `json:"gateway"`
	MetadataRef string         `json:"metadataRef"`
	// BalanceDate is the token balance snapshot date, it cannot be in the
	// future.
	BalanceDate time.Time `json:"balanceDate,omitempty"`
}

// CreateElection creates an election owned by the caller. With AutoActivate
// the election is activated within the same call.
func (l *Ledger) CreateElection(caller common.Address, cfg *ElectionConfig) (common.Address, error) {
	var id common.Address
	err := l.update(func(t *txn) error {
		var err error
		if id, err = t.createElection(caller, cfg); err != nil {
			return err
		}
		if cfg.AutoActivate {
			return t.activate(caller, id)
		}
		return nil
	})
	return id, err
}

// CreateBasicElection creates an election together with one pool and one
// ballot, all three owned by the caller and linked to each other. With
// AutoActivate the three of them are activated within the same call.
func (l *Ledger) CreateBasicElection(caller common.Address, cfg *ElectionConfig, ballotMetadataRef string) (electionID, ballotID, poolID common.Address, err error) {
	err = l.update(func(t *txn) error {
		var err error
		if electionID, err = t.createElection(caller, cfg); err != nil {
			return err
		}
		if poolID, err = t.createPool(caller, electionID, cfg.Gateway, cfg.UID); err != nil {
			return err
		}
		if ballotID, err = t.createBallot(caller, electionID, common.Address{}, ballotMetadataRef); err != nil {
			return err
		}
		if err := t.link(electionID, ballotID, poolID); err != nil {
			return err
		}
		if !cfg.AutoActivate {
			return nil
		}
		for _, id := range []common.Address{poolID, ballotID, electionID} {
			if err := t.activate(caller, id); err != nil {
				return err
			}
		}
		return nil
	})
	return electionID, ballotID, poolID, err
}

// link cross-registers a ballot and a pool with each other and with their
// election.
func (t *txn) link(electionID, ballotID, poolID common.Address) error {
	el, err := t.election(electionID)
	if err != nil {
		return err
	}
	b, err := t.ballot(ballotID)
	if err != nil {
		return err
	}
	p, err := t.pool(poolID)
	if err != nil {
		return err
	}
	if err := el.Ballots.Add(ballotID); err != nil {
		return err
	}
	if err := el.Pools.Add(poolID); err != nil {
		return err
	}
	if err := b.addPool(poolID); err != nil {
		return err
	}
	if err := p.Ballots.Add(ballotID); err != nil {
		return err
	}
	if err := t.saveElection(el); err != nil {
		return err
	}
	if err := t.saveBallot(b); err != nil {
		return err
	}
	return t.savePool(p)
}

func (t *txn) createElection(caller common.Address, cfg *ElectionConfig) (common.Address, error) {
	if cfg == nil {
		return common.Address{}, fmt.Errorf("%w: missing election config", types.ErrInvalidInput)
	}
	sourceKind, err := t.kindOf(cfg.VoteSource)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return common.Address{}, err
	}
	if sourceKind != types.KindToken && sourceKind != types.KindAllowance {
		return common.Address{}, fmt.Errorf("%w: vote source %s is neither a token nor an allowance",
			types.ErrInvalidInput, cfg.VoteSource.Hex())
	}
	var balanceDate int64
	if !cfg.BalanceDate.IsZero() {
		if cfg.BalanceDate.After(t.now) {
			return common.Address{}, fmt.Errorf("%w: balance date %s is in the future",
				types.ErrInvalidInput, cfg.BalanceDate.Format(time.RFC3339))
		}
		balanceDate = cfg.BalanceDate.Unix()
	}
	voteOwner := cfg.VoteOwner
	if voteOwner == (common.Address{}) {
		voteOwner = caller
	}
	revealer := cfg.Revealer
	if revealer == (common.Address{}) {
		revealer = caller
	}
	id, err := t.newID(caller, types.KindElection)
	if err != nil {
		return common.Address{}, err
	}
	el := &Election{
		ID:           id,
		UID:          cfg.UID,
		Access:       access.New(caller),
		Keys:         keyholder.New(revealer),
		AllowUpdates: cfg.AllowUpdates,
		AutoActivate: cfg.AutoActivate,
		Gateway:      cfg.Gateway,
		MetadataRef:  cfg.MetadataRef,
		VoteSource:   cfg.VoteSource,
		SourceKind:   sourceKind,
		VoteOwner:    voteOwner,
		BalanceDate:  balanceDate,
		CreatedAt:    t.now.Unix(),
	}
	log.Debugw("election created", "id", id.Hex(), "uid", cfg.UID, "source", cfg.VoteSource.Hex())
	t.emit(Event{Type: EventCreated, Kind: types.KindElection, Entity: id, Caller: caller, Target: cfg.VoteSource})
	return id, t.saveElection(el)
}

// Election returns election id.
func (l *Ledger) Election(id common.Address) (*Election, error) {
	var el *Election
	err := l.view(func(t *txn) error {
		var err error
		el, err = t.election(id)
		return err
	})
	return el, err
}

// withElection loads election id, applies fn and saves it back.
func (l *Ledger) withElection(id common.Address, fn func(t *txn, el *Election) error) error {
	return l.update(func(t *txn) error {
		el, err := t.election(id)
		if err != nil {
			return err
		}
		if err := fn(t, el); err != nil {
			return err
		}
		return t.saveElection(el)
	})
}

// AddBallot registers ballot with the election. Admin only.
func (l *Ledger) AddBallot(caller, electionID, ballotID common.Address) error {
	return l.withElection(electionID, func(t *txn, el *Election) error {
		if err := el.Access.RequireAdmin(caller); err != nil {
			return err
		}
		if _, err := t.ballot(ballotID); err != nil {
			return err
		}
		return el.Ballots.Add(ballotID)
	})
}

// RemoveBallot unregisters ballot. Positions of the remaining ballots may
// change. Admin only.
func (l *Ledger) RemoveBallot(caller, electionID, ballotID common.Address) error {
	return l.withElection(electionID, func(_ *txn, el *Election) error {
		if err := el.Access.RequireAdmin(caller); err != nil {
			return err
		}
		return el.Ballots.Remove(ballotID)
	})
}

// AddPool registers pool with the election. Admin only.
func (l *Ledger) AddPool(caller, electionID, poolID common.Address) error {
	return l.withElection(electionID, func(t *txn, el *Election) error {
		if err := el.Access.RequireAdmin(caller); err != nil {
			return err
		}
		if _, err := t.pool(poolID); err != nil {
			return err
		}
		return el.Pools.Add(poolID)
	})
}

// RemovePool unregisters pool. Positions of the remaining pools may change.
// Admin only.
func (l *Ledger) RemovePool(caller, electionID, poolID common.Address) error {
	return l.withElection(electionID, func(_ *txn, el *Election) error {
		if err := el.Access.RequireAdmin(caller); err != nil {
			return err
		}
		return el.Pools.Remove(poolID)
	})
}

// BallotCount returns the number of ballots registered with the election.
func (l *Ledger) BallotCount(electionID common.Address) (int, error) {
	el, err := l.Election(electionID)
	if err != nil {
		return 0, err
	}
	return el.Ballots.Count(), nil
}

// BallotAt returns the i-th registered ballot.
func (l *Ledger) BallotAt(electionID common.Address, i int) (common.Address, error) {
	el, err := l.Election(electionID)
	if err != nil {
		return common.Address{}, err
	}
	return el.Ballots.At(i)
}

// PoolCount returns the number of pools registered with the election.
func (l *Ledger) PoolCount(electionID common.Address) (int, error) {
	el, err := l.Election(electionID)
	if err != nil {
		return 0, err
	}
	return el.Pools.Count(), nil
}

// PoolAt returns the i-th registered pool.
func (l *Ledger) PoolAt(electionID common.Address, i int) (common.Address, error) {
	el, err := l.Election(electionID)
	if err != nil {
		return common.Address{}, err
	}
	return el.Pools.At(i)
}

// SetPublicKey publishes the election public key. Revealer only, rejected
// once the election is CLOSED.
func (l *Ledger) SetPublicKey(caller, electionID common.Address, key []byte) error {
	return l.withElection(electionID, func(t *txn, el *Election) error {
		if err := el.Keys.SetPublicKey(caller, el.Phase.Current(), key); err != nil {
			return err
		}
		t.emit(Event{Type: EventKeyPublished, Kind: types.KindElection, Entity: el.ID, Caller: caller})
		return nil
	})
}

// SetPrivateKey releases the election private key. Revealer only, and only
// once the election is CLOSED.
func (l *Ledger) SetPrivateKey(caller, electionID common.Address, key []byte) error {
	return l.withElection(electionID, func(t *txn, el *Election) error {
		if err := el.Keys.SetPrivateKey(caller, el.Phase.Current(), key); err != nil {
			return err
		}
		t.emit(Event{Type: EventKeyReleased, Kind: types.KindElection, Entity: el.ID, Caller: caller})
		return nil
	})
}

// SetKeys stores both keys in one call: the public key first, then the
// private key. Either may be empty; nothing is stored if any step fails.
func (l *Ledger) SetKeys(caller, electionID common.Address, public, private []byte) error {
	if len(public) == 0 && len(private) == 0 {
		return fmt.Errorf("%w: no key provided", types.ErrInvalidInput)
	}
	return l.withElection(electionID, func(t *txn, el *Election) error {
		if len(public) > 0 {
			if err := el.Keys.SetPublicKey(caller, el.Phase.Current(), public); err != nil {
				return err
			}
			t.emit(Event{Type: EventKeyPublished, Kind: types.KindElection, Entity: el.ID, Caller: caller})
		}
		if len(private) > 0 {
			if err := el.Keys.SetPrivateKey(caller, el.Phase.Current(), private); err != nil {
				return err
			}
			t.emit(Event{Type: EventKeyReleased, Kind: types.KindElection, Entity: el.ID, Caller: caller})
		}
		return nil
	})
}

// PublicKey returns the published public key, empty if none.
func (l *Ledger) PublicKey(electionID common.Address) (types.HexBytes, error) {
	el, err := l.Election(electionID)
	if err != nil {
		return nil, err
	}
	return el.Keys.PublicKey, nil
}

// PrivateKey returns the released private key, empty if none.
func (l *Ledger) PrivateKey(electionID common.Address) (types.HexBytes, error) {
	el, err := l.Election(electionID)
	if err != nil {
		return nil, err
	}
	return el.Keys.PrivateKey, nil
}

// SetVoteOwner changes the account funding the election. Admin only.
func (l *Ledger) SetVoteOwner(caller, electionID, owner common.Address) error {
	return l.withElection(electionID, func(_ *txn, el *Election) error {
		if err := el.Access.RequireAdmin(caller); err != nil {
			return err
		}
		if owner == (common.Address{}) {
			return fmt.Errorf("%w: empty vote owner", types.ErrInvalidInput)
		}
		el.VoteOwner = owner
		return nil
	})
}

// WithdrawVotes returns amount unspent tokens held by the election to its
// vote owner. Vote owner only.
func (l *Ledger) WithdrawVotes(caller, electionID common.Address, amount *types.BigInt) error {
	return l.update(func(t *txn) error {
		el, err := t.withdrawable(caller, electionID)
		if err != nil {
			return err
		}
		return t.transfer(el.VoteSource, el.ID, el.VoteOwner, amount)
	})
}

// WithdrawAllVotes returns every unspent token held by the election to its
// vote owner. Vote owner only.
func (l *Ledger) WithdrawAllVotes(caller, electionID common.Address) error {
	return l.update(func(t *txn) error {
		el, err := t.withdrawable(caller, electionID)
		if err != nil {
			return err
		}
		balance, err := t.balanceOf(el.VoteSource, el.ID)
		if err != nil {
			return err
		}
		if balance.Sign() == 0 {
			return nil
		}
		return t.transfer(el.VoteSource, el.ID, el.VoteOwner, balance)
	})
}

func (t *txn) withdrawable(caller, electionID common.Address) (*Election, error) {
	el, err := t.election(electionID)
	if err != nil {
		return nil, err
	}
	if caller != el.VoteOwner {
		return nil, fmt.Errorf("%w: %s is not the vote owner", types.ErrUnauthorized, caller.Hex())
	}
	if el.SourceKind != types.KindToken {
		return nil, fmt.Errorf("%w: election is not funded by a token", types.ErrInvalidState)
	}
	return el, nil
}

// spendFromSource consumes one voting right for a vote cast in el.
func (t *txn) spendFromSource(el *Election) error {
	switch el.SourceKind {
	case types.KindToken:
		return t.spendVote(el.VoteSource, el.ID)
	case types.KindAllowance:
		return t.deduct(el.VoteSource, el.ID, el.VoteOwner)
	}
	return fmt.Errorf("%w: election %s has no vote source", types.ErrInvalidState, el.ID.Hex())
}

// closeOnSource marks a closing election as closed on its vote token, if
// the token registered it.
func (t *txn) closeOnSource(el *Election) error {
	if el.SourceKind != types.KindToken {
		return nil
	}
	registered, err := t.tokenElectionRegistered(el.VoteSource, el.ID)
	if err != nil || !registered {
		return err
	}
	return t.closeTokenElection(el.VoteSource, el.ID)
}
