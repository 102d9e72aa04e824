package ledger

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/vocdoni/ballotbox/storage"
	"github.com/vocdoni/ballotbox/types"
)

func entityPrefix(kind types.Kind) ([]byte, error) {
	switch kind {
	case types.KindElection:
		return storage.ElectionPrefix, nil
	case types.KindBallot:
		return storage.BallotPrefix, nil
	case types.KindPool:
		return storage.PoolPrefix, nil
	case types.KindToken:
		return storage.TokenPrefix, nil
	case types.KindAllowance:
		return storage.AllowancePrefix, nil
	}
	return nil, fmt.Errorf("%w: unknown entity kind %d", types.ErrInvalidInput, kind)
}

func newEntity(kind types.Kind) (controlled, error) {
	switch kind {
	case types.KindElection:
		return &Election{}, nil
	case types.KindBallot:
		return &Ballot{}, nil
	case types.KindPool:
		return &Pool{}, nil
	case types.KindToken:
		return &Token{}, nil
	case types.KindAllowance:
		return &Allowance{}, nil
	}
	return nil, fmt.Errorf("%w: unknown entity kind %d", types.ErrInvalidInput, kind)
}

// newID derives the id of the next entity created by creator and records
// its kind. Ids follow the contract address scheme, so they live in the
// same space as any other principal.
func (t *txn) newID(creator common.Address, kind types.Kind) (common.Address, error) {
	var nonce uint64
	raw, err := t.tx.GetRaw(storage.NoncePrefix, creator.Bytes())
	switch {
	case err == nil:
		nonce = storage.Uint64FromKey(raw)
	case !errors.Is(err, storage.ErrNotFound):
		return common.Address{}, err
	}
	id := crypto.CreateAddress(creator, nonce)
	if err := t.tx.SetRaw(storage.NoncePrefix, creator.Bytes(), storage.Uint64Key(nonce+1)); err != nil {
		return common.Address{}, err
	}
	if ok, err := t.tx.Has(storage.KindPrefix, id.Bytes()); err != nil {
		return common.Address{}, err
	} else if ok {
		return common.Address{}, fmt.Errorf("%w: entity %s", types.ErrDuplicateEntry, id.Hex())
	}
	if err := t.tx.SetRaw(storage.KindPrefix, id.Bytes(), []byte{byte(kind)}); err != nil {
		return common.Address{}, err
	}
	return id, nil
}

// kindOf returns the kind of entity id, or types.ErrNotFound.
func (t *txn) kindOf(id common.Address) (types.Kind, error) {
	raw, err := t.tx.GetRaw(storage.KindPrefix, id.Bytes())
	if errors.Is(err, storage.ErrNotFound) {
		return types.KindUnknown, fmt.Errorf("%w: entity %s", types.ErrNotFound, id.Hex())
	}
	if err != nil {
		return types.KindUnknown, err
	}
	if len(raw) != 1 {
		return types.KindUnknown, fmt.Errorf("corrupt kind record for %s", id.Hex())
	}
	return types.Kind(raw[0]), nil
}

// load decodes entity id of the given kind into out.
func (t *txn) load(kind types.Kind, id common.Address, out any) error {
	got, err := t.kindOf(id)
	if err != nil {
		return err
	}
	if got != kind {
		return fmt.Errorf("%w: %s is a %s, not a %s", types.ErrNotFound, id.Hex(), got, kind)
	}
	prefix, err := entityPrefix(kind)
	if err != nil {
		return err
	}
	if err := t.tx.Get(prefix, id.Bytes(), out); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s %s", types.ErrNotFound, kind, id.Hex())
		}
		return err
	}
	return nil
}

func (t *txn) save(kind types.Kind, id common.Address, e any) error {
	prefix, err := entityPrefix(kind)
	if err != nil {
		return err
	}
	return t.tx.Set(prefix, id.Bytes(), e)
}

// loadAny decodes entity id whatever its kind.
func (t *txn) loadAny(id common.Address) (types.Kind, controlled, error) {
	kind, err := t.kindOf(id)
	if err != nil {
		return kind, nil, err
	}
	e, err := newEntity(kind)
	if err != nil {
		return kind, nil, err
	}
	if err := t.load(kind, id, e); err != nil {
		return kind, nil, err
	}
	return kind, e, nil
}

func (t *txn) election(id common.Address) (*Election, error) {
	e := &Election{}
	return e, t.load(types.KindElection, id, e)
}

func (t *txn) ballot(id common.Address) (*Ballot, error) {
	b := &Ballot{}
	return b, t.load(types.KindBallot, id, b)
}

func (t *txn) pool(id common.Address) (*Pool, error) {
	p := &Pool{}
	return p, t.load(types.KindPool, id, p)
}

func (t *txn) token(id common.Address) (*Token, error) {
	tk := &Token{}
	return tk, t.load(types.KindToken, id, tk)
}

func (t *txn) allowance(id common.Address) (*Allowance, error) {
	a := &Allowance{}
	return a, t.load(types.KindAllowance, id, a)
}

func (t *txn) saveElection(e *Election) error { return t.save(types.KindElection, e.ID, e) }
func (t *txn) saveBallot(b *Ballot) error { return t.save(types.KindBallot, b.ID, b) }
func (t *txn) savePool(p *Pool) error { return t.save(types.KindPool, p.ID, p) }
func (t *txn) saveToken(tk *Token) error { return t.save(types.KindToken, tk.ID, tk) }
func (t *txn) saveAllowance(a *Allowance) error { return t.save(types.KindAllowance, a.ID, a) }

// KindOf returns the kind of entity id.
func (l *Ledger) KindOf(id common.Address) (types.Kind, error) {
	var kind types.Kind
	err := l.view(func(t *txn) error {
		var err error
		kind, err = t.kindOf(id)
		return err
	})
	return kind, err
}
