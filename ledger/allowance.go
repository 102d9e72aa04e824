package ledger

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/access"
	"github.com/vocdoni/ballotbox/storage"
	"github.com/vocdoni/ballotbox/types"
)

// CreateAllowance creates a vote allowance owned by the caller.
func (l *Ledger) CreateAllowance(caller common.Address) (common.Address, error) {
	var id common.Address
	err := l.update(func(t *txn) error {
		var err error
		if id, err = t.newID(caller, types.KindAllowance); err != nil {
			return err
		}
		t.emit(Event{Type: EventCreated, Kind: types.KindAllowance, Entity: id, Caller: caller})
		return t.saveAllowance(&Allowance{
			ID:        id,
			Access:    access.New(caller),
			CreatedAt: t.now.Unix(),
		})
	})
	return id, err
}

func allowanceKey(allowanceID, account common.Address) []byte {
	return storage.Key(allowanceID.Bytes(), account.Bytes())
}

func (t *txn) allowanceOf(allowanceID, account common.Address) (uint64, error) {
	raw, err := t.tx.GetRaw(storage.AllowanceBalancePrefix, allowanceKey(allowanceID, account))
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return storage.Uint64FromKey(raw), nil
}

func (t *txn) setAllowance(allowanceID, account common.Address, votes uint64) error {
	return t.tx.SetRaw(storage.AllowanceBalancePrefix, allowanceKey(allowanceID, account), storage.Uint64Key(votes))
}

// AddVotes grants n additional votes to account. Admin only.
func (l *Ledger) AddVotes(caller, allowanceID, account common.Address, n uint64) error {
	return l.update(func(t *txn) error {
		a, err := t.allowance(allowanceID)
		if err != nil {
			return err
		}
		if err := a.Access.RequireAdmin(caller); err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: no votes to add", types.ErrInvalidInput)
		}
		votes, err := t.allowanceOf(allowanceID, account)
		if err != nil {
			return err
		}
		if votes+n < votes {
			return fmt.Errorf("%w: allowance overflow", types.ErrInvalidInput)
		}
		t.emit(Event{
			Type:   EventVotesAdded,
			Kind:   types.KindAllowance,
			Entity: allowanceID,
			Caller: caller,
			Target: account,
			Amount: new(types.BigInt).SetUint64(n),
		})
		return t.setAllowance(allowanceID, account, votes+n)
	})
}

// AllowanceOf returns the remaining votes of account.
func (l *Ledger) AllowanceOf(allowanceID, account common.Address) (uint64, error) {
	var votes uint64
	err := l.view(func(t *txn) error {
		if _, err := t.allowance(allowanceID); err != nil {
			return err
		}
		var err error
		votes, err = t.allowanceOf(allowanceID, account)
		return err
	})
	return votes, err
}

func allowanceElectionKey(allowanceID, account, electionID common.Address) []byte {
	return storage.Key(allowanceID.Bytes(), account.Bytes(), electionID.Bytes())
}

// AddAccountElection allows election to deduct from the caller's votes.
func (l *Ledger) AddAccountElection(caller, allowanceID, electionID common.Address) error {
	return l.update(func(t *txn) error {
		if _, err := t.allowance(allowanceID); err != nil {
			return err
		}
		key := allowanceElectionKey(allowanceID, caller, electionID)
		if ok, err := t.tx.Has(storage.AllowanceElectionPrefix, key); err != nil {
			return err
		} else if ok {
			return fmt.Errorf("%w: election %s already allowed", types.ErrDuplicateEntry, electionID.Hex())
		}
		return t.tx.SetRaw(storage.AllowanceElectionPrefix, key, []byte{1})
	})
}

// RemoveAccountElection revokes the right of election to deduct from the
// caller's votes.
func (l *Ledger) RemoveAccountElection(caller, allowanceID, electionID common.Address) error {
	return l.update(func(t *txn) error {
		if _, err := t.allowance(allowanceID); err != nil {
			return err
		}
		key := allowanceElectionKey(allowanceID, caller, electionID)
		if ok, err := t.tx.Has(storage.AllowanceElectionPrefix, key); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("%w: election %s not allowed", types.ErrNotFound, electionID.Hex())
		}
		return t.tx.Delete(storage.AllowanceElectionPrefix, key)
	})
}

// ElectionIsAllowed reports whether election may deduct from account.
func (l *Ledger) ElectionIsAllowed(allowanceID, account, electionID common.Address) (bool, error) {
	var ok bool
	err := l.view(func(t *txn) error {
		if _, err := t.allowance(allowanceID); err != nil {
			return err
		}
		var err error
		ok, err = t.tx.Has(storage.AllowanceElectionPrefix, allowanceElectionKey(allowanceID, account, electionID))
		return err
	})
	return ok, err
}

// Deduct consumes one vote of account on behalf of the calling election.
func (l *Ledger) Deduct(caller, allowanceID, account common.Address) error {
	return l.update(func(t *txn) error {
		return t.deduct(allowanceID, caller, account)
	})
}

func (t *txn) deduct(allowanceID, electionID, account common.Address) error {
	a, err := t.allowance(allowanceID)
	if err != nil {
		return err
	}
	if a.Access.IsLocked() {
		return fmt.Errorf("%w: allowance %s is locked", types.ErrInvalidState, allowanceID.Hex())
	}
	ok, err := t.tx.Has(storage.AllowanceElectionPrefix, allowanceElectionKey(allowanceID, account, electionID))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s may not deduct from %s", types.ErrUnauthorized, electionID.Hex(), account.Hex())
	}
	votes, err := t.allowanceOf(allowanceID, account)
	if err != nil {
		return err
	}
	if votes == 0 {
		return fmt.Errorf("%w: %s has no votes left", types.ErrInsufficientBalance, account.Hex())
	}
	t.emit(Event{
		Type:   EventVotesDeducted,
		Kind:   types.KindAllowance,
		Entity: allowanceID,
		Caller: electionID,
		Target: account,
		Amount: types.NewInt(1),
	})
	return t.setAllowance(allowanceID, account, votes-1)
}
