package ledger

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/access"
	"github.com/vocdoni/ballotbox/log"
	"github.com/vocdoni/ballotbox/storage"
	"github.com/vocdoni/ballotbox/types"
)

// Submission is a vote handed over by the gateway.
type Submission struct {
	VoteID types.HexBytes `json:"voteId"`
	Vote   types.HexBytes `json:"vote"`
	// Nonce is the one-time token (jti) of this submission.
	Nonce types.HexBytes `json:"nonce"`
	// Proof is an optional opaque reference stored along the vote.
	Proof string `json:"proof,omitempty"`
	// AuthID must be on the pool auth id list when the pool holds one.
	AuthID string `json:"authId,omitempty"`
}

func (s *Submission) validate() error {
	switch {
	case len(s.VoteID) == 0:
		return fmt.Errorf("%w: empty vote id", types.ErrInvalidInput)
	case len(s.Vote) == 0:
		return fmt.Errorf("%w: empty vote", types.ErrInvalidInput)
	case len(s.Nonce) == 0:
		return fmt.Errorf("%w: empty nonce", types.ErrInvalidInput)
	}
	return nil
}

// CreatePool creates a pool of election with the given gateway. The caller
// becomes the pool owner. The pool is not linked to anything yet.
func (l *Ledger) CreatePool(caller, electionID, gateway common.Address, uid string) (common.Address, error) {
	var id common.Address
	err := l.update(func(t *txn) error {
		var err error
		id, err = t.createPool(caller, electionID, gateway, uid)
		return err
	})
	return id, err
}

func (t *txn) createPool(caller, electionID, gateway common.Address, uid string) (common.Address, error) {
	if _, err := t.election(electionID); err != nil {
		return common.Address{}, err
	}
	if gateway == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: empty gateway", types.ErrInvalidInput)
	}
	id, err := t.newID(caller, types.KindPool)
	if err != nil {
		return common.Address{}, err
	}
	p := &Pool{
		ID:        id,
		UID:       uid,
		Election:  electionID,
		Gateway:   gateway,
		Access:    access.New(caller),
		CreatedAt: t.now.Unix(),
	}
	t.emit(Event{Type: EventCreated, Kind: types.KindPool, Entity: id, Caller: caller, Target: electionID})
	return id, t.savePool(p)
}

// Pool returns pool id.
func (l *Ledger) Pool(id common.Address) (*Pool, error) {
	var p *Pool
	err := l.view(func(t *txn) error {
		var err error
		p, err = t.pool(id)
		return err
	})
	return p, err
}

// withPool loads pool id, applies fn and saves it back.
func (l *Ledger) withPool(id common.Address, fn func(t *txn, p *Pool) error) error {
	return l.update(func(t *txn) error {
		p, err := t.pool(id)
		if err != nil {
			return err
		}
		if err := fn(t, p); err != nil {
			return err
		}
		return t.savePool(p)
	})
}

// AddBallotToPool registers ballot on the pool side. Admin only.
func (l *Ledger) AddBallotToPool(caller, poolID, ballotID common.Address) error {
	return l.withPool(poolID, func(t *txn, p *Pool) error {
		if err := p.Access.RequireAdmin(caller); err != nil {
			return err
		}
		if _, err := t.ballot(ballotID); err != nil {
			return err
		}
		return p.Ballots.Add(ballotID)
	})
}

// RemoveBallotFromPool unregisters ballot on the pool side. Admin only.
func (l *Ledger) RemoveBallotFromPool(caller, poolID, ballotID common.Address) error {
	return l.withPool(poolID, func(_ *txn, p *Pool) error {
		if err := p.Access.RequireAdmin(caller); err != nil {
			return err
		}
		return p.Ballots.Remove(ballotID)
	})
}

// AddAuthID appends id to the pool auth id list. Admin only, and only while
// the pool is VOTING.
func (l *Ledger) AddAuthID(caller, poolID common.Address, id string) error {
	return l.withPool(poolID, func(_ *txn, p *Pool) error {
		if err := p.Access.RequireAdmin(caller); err != nil {
			return err
		}
		if err := p.Phase.RequirePhase(types.PhaseVoting); err != nil {
			return err
		}
		if id == "" {
			return fmt.Errorf("%w: empty auth id", types.ErrInvalidInput)
		}
		return p.AuthIDs.Add(id)
	})
}

// SetAuthIDRef stores a reference to an externally hosted auth id list.
// Admin only.
func (l *Ledger) SetAuthIDRef(caller, poolID common.Address, ref string) error {
	return l.withPool(poolID, func(_ *txn, p *Pool) error {
		if err := p.Access.RequireAdmin(caller); err != nil {
			return err
		}
		p.AuthIDRef = ref
		return nil
	})
}

// AuthIDCount returns the number of inline auth ids of pool.
func (l *Ledger) AuthIDCount(poolID common.Address) (int, error) {
	p, err := l.Pool(poolID)
	if err != nil {
		return 0, err
	}
	return p.AuthIDs.Count(), nil
}

// AuthIDAt returns the i-th inline auth id of pool.
func (l *Ledger) AuthIDAt(poolID common.Address, i int) (string, error) {
	p, err := l.Pool(poolID)
	if err != nil {
		return "", err
	}
	return p.AuthIDs.At(i)
}

// CastVote stores a new vote. Only the pool gateway may call it, while both
// the pool and its election are VOTING. The nonce must never have been
// used in this pool and the vote id must not hold a vote yet. One voting
// right is consumed from the election vote source.
func (l *Ledger) CastVote(caller, poolID common.Address, s *Submission) error {
	return l.update(func(t *txn) error {
		p, el, err := t.intake(caller, poolID, s)
		if err != nil {
			return err
		}
		voteKey := storage.Key(p.ID.Bytes(), s.VoteID)
		if ok, err := t.tx.Has(storage.PoolVotePrefix, voteKey); err != nil {
			return err
		} else if ok {
			return fmt.Errorf("%w: vote %x already cast", types.ErrDuplicateEntry, []byte(s.VoteID))
		}
		if err := t.spendFromSource(el); err != nil {
			return err
		}
		rec := &VoteRecord{
			Vote:      s.Vote,
			Proof:     s.Proof,
			Index:     p.VoteCount,
			UpdatedAt: t.now.Unix(),
		}
		if err := t.tx.Set(storage.PoolVotePrefix, voteKey, rec); err != nil {
			return err
		}
		if err := t.tx.SetRaw(storage.PoolVoteIndexPrefix,
			storage.Key(p.ID.Bytes(), storage.Uint64Key(rec.Index)), s.VoteID); err != nil {
			return err
		}
		p.VoteCount++
		log.Debugw("vote cast", "pool", p.ID.Hex(), "voteId", s.VoteID.String(), "index", rec.Index)
		t.emit(Event{Type: EventVoteCast, Kind: types.KindPool, Entity: p.ID, Caller: caller, Target: el.ID, VoteID: s.VoteID})
		return t.savePool(p)
	})
}

// UpdateVote overwrites a stored vote. Requires the election to allow
// updates, a prior vote under the same id and a fresh nonce. Only the
// latest vote is kept and no voting right is consumed.
func (l *Ledger) UpdateVote(caller, poolID common.Address, s *Submission) error {
	return l.update(func(t *txn) error {
		p, el, err := t.intake(caller, poolID, s)
		if err != nil {
			return err
		}
		if !el.AllowUpdates {
			return fmt.Errorf("%w: election %s does not allow vote updates", types.ErrInvalidState, el.ID.Hex())
		}
		voteKey := storage.Key(p.ID.Bytes(), s.VoteID)
		rec := &VoteRecord{}
		if err := t.tx.Get(storage.PoolVotePrefix, voteKey, rec); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%w: no vote %x to update", types.ErrNotFound, []byte(s.VoteID))
			}
			return err
		}
		rec.Vote = s.Vote
		rec.Proof = s.Proof
		rec.UpdatedAt = t.now.Unix()
		if err := t.tx.Set(storage.PoolVotePrefix, voteKey, rec); err != nil {
			return err
		}
		log.Debugw("vote updated", "pool", p.ID.Hex(), "voteId", s.VoteID.String())
		t.emit(Event{Type: EventVoteUpdated, Kind: types.KindPool, Entity: p.ID, Caller: caller, Target: el.ID, VoteID: s.VoteID})
		return nil
	})
}

// intake runs the checks shared by CastVote and UpdateVote and burns the
// submission nonce.
func (t *txn) intake(caller, poolID common.Address, s *Submission) (*Pool, *Election, error) {
	if s == nil {
		return nil, nil, fmt.Errorf("%w: missing submission", types.ErrInvalidInput)
	}
	p, err := t.pool(poolID)
	if err != nil {
		return nil, nil, err
	}
	if caller != p.Gateway {
		return nil, nil, fmt.Errorf("%w: %s is not the pool gateway", types.ErrUnauthorized, caller.Hex())
	}
	if err := p.Phase.RequirePhase(types.PhaseVoting); err != nil {
		return nil, nil, err
	}
	el, err := t.election(p.Election)
	if err != nil {
		return nil, nil, err
	}
	if err := el.Phase.RequirePhase(types.PhaseVoting); err != nil {
		return nil, nil, fmt.Errorf("election: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, nil, err
	}
	if p.AuthIDs.Count() > 0 && !p.AuthIDs.Contains(s.AuthID) {
		return nil, nil, fmt.Errorf("%w: auth id %q not allowed", types.ErrUnauthorized, s.AuthID)
	}
	nonceKey := storage.Key(p.ID.Bytes(), s.Nonce)
	if ok, err := t.tx.Has(storage.PoolNoncePrefix, nonceKey); err != nil {
		return nil, nil, err
	} else if ok {
		return nil, nil, fmt.Errorf("%w: nonce %x already used", types.ErrDuplicateEntry, []byte(s.Nonce))
	}
	if err := t.tx.SetRaw(storage.PoolNoncePrefix, nonceKey, []byte{1}); err != nil {
		return nil, nil, err
	}
	return p, el, nil
}

// VoteCount returns the number of distinct vote ids stored in pool.
func (l *Ledger) VoteCount(poolID common.Address) (uint64, error) {
	p, err := l.Pool(poolID)
	if err != nil {
		return 0, err
	}
	return p.VoteCount, nil
}

// VoteIDAt returns the vote id cast in i-th place in pool.
func (l *Ledger) VoteIDAt(poolID common.Address, i uint64) (types.HexBytes, error) {
	var voteID []byte
	err := l.view(func(t *txn) error {
		var err error
		voteID, err = t.voteIDAt(poolID, i)
		return err
	})
	return voteID, err
}

func (t *txn) voteIDAt(poolID common.Address, i uint64) ([]byte, error) {
	if _, err := t.pool(poolID); err != nil {
		return nil, err
	}
	voteID, err := t.tx.GetRaw(storage.PoolVoteIndexPrefix, storage.Key(poolID.Bytes(), storage.Uint64Key(i)))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: no vote at index %d", types.ErrNotFound, i)
	}
	return voteID, err
}

// Vote returns the latest vote stored under voteID in pool.
func (l *Ledger) Vote(poolID common.Address, voteID []byte) (*VoteRecord, error) {
	var rec *VoteRecord
	err := l.view(func(t *txn) error {
		var err error
		rec, err = t.vote(poolID, voteID)
		return err
	})
	return rec, err
}

func (t *txn) vote(poolID common.Address, voteID []byte) (*VoteRecord, error) {
	if _, err := t.pool(poolID); err != nil {
		return nil, err
	}
	rec := &VoteRecord{}
	if err := t.tx.Get(storage.PoolVotePrefix, storage.Key(poolID.Bytes(), voteID), rec); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: vote %x", types.ErrNotFound, voteID)
		}
		return nil, err
	}
	return rec, nil
}

// Proof returns the proof reference stored with voteID, empty if none.
func (l *Ledger) Proof(poolID common.Address, voteID []byte) (string, error) {
	rec, err := l.Vote(poolID, voteID)
	if err != nil {
		return "", err
	}
	return rec.Proof, nil
}

// ProofAt returns the proof reference stored with the i-th vote of pool.
func (l *Ledger) ProofAt(poolID common.Address, i uint64) (string, error) {
	var proof string
	err := l.view(func(t *txn) error {
		voteID, err := t.voteIDAt(poolID, i)
		if err != nil {
			return err
		}
		rec, err := t.vote(poolID, voteID)
		if err != nil {
			return err
		}
		proof = rec.Proof
		return nil
	})
	return proof, err
}

// poolVotes returns every stored vote of pool, keyed by vote id.
func (t *txn) poolVotes(poolID common.Address) (map[string][]byte, error) {
	votes := make(map[string][]byte)
	var decodeErr error
	if err := t.tx.Iterate(storage.PoolVotePrefix, poolID.Bytes(), func(k, v []byte) bool {
		rec := &VoteRecord{}
		if err := storage.DecodeArtifact(v, rec); err != nil {
			decodeErr = fmt.Errorf("vote %x: %w", k, err)
			return false
		}
		votes[string(k)] = rec.Vote
		return true
	}); err != nil {
		return nil, err
	}
	return votes, decodeErr
}
