package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/access"
	"github.com/vocdoni/ballotbox/log"
	"github.com/vocdoni/ballotbox/storage"
	"github.com/vocdoni/ballotbox/types"
)

// DefaultGranularity is the utilization bucket width used when a token is
// created without one.
const DefaultGranularity = time.Hour

// TokenConfig holds the parameters of a new vote token.
type TokenConfig struct {
	// Stake receives restaked units and generated units. Defaults to the
	// creator.
	Stake common.Address `json:"stake"`
	// GenerationRate is the number of units minted to Stake per unit spent.
	GenerationRate uint64        `json:"generationRate"`
	Mode           SpendMode     `json:"mode"`
	Granularity    time.Duration `json:"granularity"`
	// Unit is the amount a single vote consumes. Defaults to 1.
	Unit *types.BigInt `json:"unit,omitempty"`
}

// CreateToken creates a vote token owned by the caller, with no supply.
func (l *Ledger) CreateToken(caller common.Address, cfg *TokenConfig) (common.Address, error) {
	if cfg == nil {
		cfg = &TokenConfig{}
	}
	granularity := cfg.Granularity
	if granularity == 0 {
		granularity = DefaultGranularity
	}
	if granularity < time.Second {
		return common.Address{}, fmt.Errorf("%w: granularity must be at least one second", types.ErrInvalidInput)
	}
	if cfg.Mode != SpendRestake && cfg.Mode != SpendBurn {
		return common.Address{}, fmt.Errorf("%w: unknown spend mode %d", types.ErrInvalidInput, cfg.Mode)
	}
	unit := types.NewInt(1)
	if cfg.Unit != nil {
		if cfg.Unit.Sign() <= 0 {
			return common.Address{}, fmt.Errorf("%w: unit must be positive", types.ErrInvalidInput)
		}
		unit = new(types.BigInt).SetBigInt(cfg.Unit.MathBigInt())
	}
	stake := cfg.Stake
	if stake == (common.Address{}) {
		stake = caller
	}
	var id common.Address
	err := l.update(func(t *txn) error {
		var err error
		if id, err = t.newID(caller, types.KindToken); err != nil {
			return err
		}
		tk := &Token{
			ID:             id,
			Access:         access.New(caller),
			Stake:          stake,
			GenerationRate: cfg.GenerationRate,
			Mode:           cfg.Mode,
			Granularity:    uint64(granularity / time.Second),
			Unit:           unit,
			Supply:         types.NewInt(0),
			CreatedAt:      t.now.Unix(),
		}
		t.emit(Event{Type: EventCreated, Kind: types.KindToken, Entity: id, Caller: caller})
		return t.saveToken(tk)
	})
	return id, err
}

// Token returns token id.
func (l *Ledger) Token(id common.Address) (*Token, error) {
	var tk *Token
	err := l.view(func(t *txn) error {
		var err error
		tk, err = t.token(id)
		return err
	})
	return tk, err
}

func balanceKey(tokenID, holder common.Address) []byte {
	return storage.Key(tokenID.Bytes(), holder.Bytes())
}

func (t *txn) balanceOf(tokenID, holder common.Address) (*types.BigInt, error) {
	raw, err := t.tx.GetRaw(storage.TokenBalancePrefix, balanceKey(tokenID, holder))
	if errors.Is(err, storage.ErrNotFound) {
		return types.NewInt(0), nil
	}
	if err != nil {
		return nil, err
	}
	return new(types.BigInt).SetBytes(raw), nil
}

func (t *txn) setBalance(tokenID, holder common.Address, v *types.BigInt) error {
	if v.Sign() < 0 {
		return fmt.Errorf("negative balance for %s", holder.Hex())
	}
	return t.tx.SetRaw(storage.TokenBalancePrefix, balanceKey(tokenID, holder), v.Bytes())
}

func (t *txn) addBalance(tokenID, holder common.Address, delta *types.BigInt) error {
	balance, err := t.balanceOf(tokenID, holder)
	if err != nil {
		return err
	}
	return t.setBalance(tokenID, holder, balance.Add(balance, delta))
}

func (t *txn) subBalance(tokenID, holder common.Address, delta *types.BigInt) error {
	balance, err := t.balanceOf(tokenID, holder)
	if err != nil {
		return err
	}
	if balance.Cmp(delta) < 0 {
		return fmt.Errorf("%w: %s holds %s, needs %s", types.ErrInsufficientBalance, holder.Hex(), balance, delta)
	}
	return t.setBalance(tokenID, holder, balance.Sub(balance, delta))
}

func positive(amount *types.BigInt) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be positive", types.ErrInvalidInput)
	}
	return nil
}

// BalanceOf returns the balance of holder.
func (l *Ledger) BalanceOf(tokenID, holder common.Address) (*types.BigInt, error) {
	var balance *types.BigInt
	err := l.view(func(t *txn) error {
		if _, err := t.token(tokenID); err != nil {
			return err
		}
		var err error
		balance, err = t.balanceOf(tokenID, holder)
		return err
	})
	return balance, err
}

// TotalSupply returns the token supply.
func (l *Ledger) TotalSupply(tokenID common.Address) (*types.BigInt, error) {
	tk, err := l.Token(tokenID)
	if err != nil {
		return nil, err
	}
	return tk.Supply, nil
}

// Mint creates amount units for to. Owner or minter only.
func (l *Ledger) Mint(caller, tokenID, to common.Address, amount *types.BigInt) error {
	return l.update(func(t *txn) error {
		tk, err := t.token(tokenID)
		if err != nil {
			return err
		}
		if !tk.Access.IsOwner(caller) && !tk.Minters.Contains(caller) {
			return fmt.Errorf("%w: %s is not a minter", types.ErrUnauthorized, caller.Hex())
		}
		if err := positive(amount); err != nil {
			return err
		}
		if err := t.mint(tk, to, amount); err != nil {
			return err
		}
		t.emit(Event{Type: EventMinted, Kind: types.KindToken, Entity: tk.ID, Caller: caller, Target: to, Amount: amount})
		return t.saveToken(tk)
	})
}

func (t *txn) mint(tk *Token, to common.Address, amount *types.BigInt) error {
	if err := t.addBalance(tk.ID, to, amount); err != nil {
		return err
	}
	tk.Supply = new(types.BigInt).Add(tk.Supply, amount)
	return nil
}

// AddMinter allows minter to mint. Owner only.
func (l *Ledger) AddMinter(caller, tokenID, minter common.Address) error {
	return l.withToken(tokenID, func(_ *txn, tk *Token) error {
		if err := tk.Access.RequireOwner(caller); err != nil {
			return err
		}
		return tk.Minters.Add(minter)
	})
}

// RemoveMinter revokes the minting right of minter. Owner only.
func (l *Ledger) RemoveMinter(caller, tokenID, minter common.Address) error {
	return l.withToken(tokenID, func(_ *txn, tk *Token) error {
		if err := tk.Access.RequireOwner(caller); err != nil {
			return err
		}
		return tk.Minters.Remove(minter)
	})
}

// IsMinter reports whether p may mint.
func (l *Ledger) IsMinter(tokenID, p common.Address) (bool, error) {
	tk, err := l.Token(tokenID)
	if err != nil {
		return false, err
	}
	return tk.Access.IsOwner(p) || tk.Minters.Contains(p), nil
}

func (l *Ledger) withToken(id common.Address, fn func(t *txn, tk *Token) error) error {
	return l.update(func(t *txn) error {
		tk, err := t.token(id)
		if err != nil {
			return err
		}
		if err := fn(t, tk); err != nil {
			return err
		}
		return t.saveToken(tk)
	})
}

// Transfer moves amount units from the caller to to.
func (l *Ledger) Transfer(caller, tokenID, to common.Address, amount *types.BigInt) error {
	return l.update(func(t *txn) error {
		return t.transfer(tokenID, caller, to, amount)
	})
}

func (t *txn) transfer(tokenID, from, to common.Address, amount *types.BigInt) error {
	if _, err := t.token(tokenID); err != nil {
		return err
	}
	if err := positive(amount); err != nil {
		return err
	}
	if err := t.subBalance(tokenID, from, amount); err != nil {
		return err
	}
	if err := t.addBalance(tokenID, to, amount); err != nil {
		return err
	}
	t.emit(Event{Type: EventTransferred, Kind: types.KindToken, Entity: tokenID, Caller: from, Target: to, Amount: amount})
	return nil
}

func tokenElectionKey(tokenID, electionID common.Address) []byte {
	return storage.Key(tokenID.Bytes(), electionID.Bytes())
}

// AddElection allows election to spend its own balance. Admin only.
func (l *Ledger) AddElection(caller, tokenID, electionID common.Address) error {
	return l.update(func(t *txn) error {
		tk, err := t.token(tokenID)
		if err != nil {
			return err
		}
		if err := tk.Access.RequireAdmin(caller); err != nil {
			return err
		}
		if _, err := t.election(electionID); err != nil {
			return err
		}
		key := tokenElectionKey(tokenID, electionID)
		if ok, err := t.tx.Has(storage.TokenElectionPrefix, key); err != nil {
			return err
		} else if ok {
			return fmt.Errorf("%w: election %s already allowed", types.ErrDuplicateEntry, electionID.Hex())
		}
		return t.tx.SetRaw(storage.TokenElectionPrefix, key, []byte{1})
	})
}

// RemoveElection revokes the spending right of election. Admin only.
func (l *Ledger) RemoveElection(caller, tokenID, electionID common.Address) error {
	return l.update(func(t *txn) error {
		tk, err := t.token(tokenID)
		if err != nil {
			return err
		}
		if err := tk.Access.RequireAdmin(caller); err != nil {
			return err
		}
		registered, err := t.tokenElectionRegistered(tokenID, electionID)
		if err != nil {
			return err
		}
		if !registered {
			return fmt.Errorf("%w: election %s not allowed", types.ErrNotFound, electionID.Hex())
		}
		return t.tx.Delete(storage.TokenElectionPrefix, tokenElectionKey(tokenID, electionID))
	})
}

func (t *txn) tokenElectionRegistered(tokenID, electionID common.Address) (bool, error) {
	return t.tx.Has(storage.TokenElectionPrefix, tokenElectionKey(tokenID, electionID))
}

func (t *txn) tokenElectionClosed(tokenID, electionID common.Address) (bool, error) {
	return t.tx.Has(storage.TokenClosedPrefix, tokenElectionKey(tokenID, electionID))
}

// ElectionAllowed reports whether election may currently spend: it is on
// the allow list and has not been closed on the token.
func (l *Ledger) ElectionAllowed(tokenID, electionID common.Address) (bool, error) {
	var allowed bool
	err := l.view(func(t *txn) error {
		if _, err := t.token(tokenID); err != nil {
			return err
		}
		var err error
		allowed, err = t.electionAllowed(tokenID, electionID)
		return err
	})
	return allowed, err
}

func (t *txn) electionAllowed(tokenID, electionID common.Address) (bool, error) {
	registered, err := t.tokenElectionRegistered(tokenID, electionID)
	if err != nil || !registered {
		return false, err
	}
	closed, err := t.tokenElectionClosed(tokenID, electionID)
	return !closed, err
}

// CloseElection marks the calling election as no longer allowed to spend,
// independently of the allow list. Registered elections only.
func (l *Ledger) CloseElection(caller, tokenID common.Address) error {
	return l.update(func(t *txn) error {
		if _, err := t.token(tokenID); err != nil {
			return err
		}
		registered, err := t.tokenElectionRegistered(tokenID, caller)
		if err != nil {
			return err
		}
		if !registered {
			return fmt.Errorf("%w: %s is not a registered election", types.ErrUnauthorized, caller.Hex())
		}
		return t.closeTokenElection(tokenID, caller)
	})
}

func (t *txn) closeTokenElection(tokenID, electionID common.Address) error {
	return t.tx.SetRaw(storage.TokenClosedPrefix, tokenElectionKey(tokenID, electionID), []byte{1})
}

// SpendVote consumes one unit of the calling election's balance.
func (l *Ledger) SpendVote(caller, tokenID common.Address) error {
	return l.update(func(t *txn) error {
		return t.spendVote(tokenID, caller)
	})
}

// spendVote consumes one unit held by electionID. The unit is moved to the
// stake (SpendRestake) or destroyed (SpendBurn); in both modes
// GenerationRate units are minted to the stake, and the spend is recorded
// in the current utilization bucket.
func (t *txn) spendVote(tokenID, electionID common.Address) error {
	tk, err := t.token(tokenID)
	if err != nil {
		return err
	}
	if tk.Access.IsLocked() {
		return fmt.Errorf("%w: token %s is locked", types.ErrInvalidState, tokenID.Hex())
	}
	allowed, err := t.electionAllowed(tokenID, electionID)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: %s may not spend", types.ErrUnauthorized, electionID.Hex())
	}
	if err := t.subBalance(tokenID, electionID, tk.Unit); err != nil {
		return err
	}
	switch tk.Mode {
	case SpendRestake:
		if err := t.addBalance(tokenID, tk.Stake, tk.Unit); err != nil {
			return err
		}
	case SpendBurn:
		tk.Supply = new(types.BigInt).Sub(tk.Supply, tk.Unit)
	}
	if tk.GenerationRate > 0 {
		generated := new(types.BigInt).Mul(new(types.BigInt).SetUint64(tk.GenerationRate), tk.Unit)
		if err := t.mint(tk, tk.Stake, generated); err != nil {
			return err
		}
	}
	bucket := bucketStart(t.now, tk.Granularity)
	if err := t.addUtilization(tokenID, bucket); err != nil {
		return err
	}
	log.Debugw("vote spent", "token", tokenID.Hex(), "election", electionID.Hex(), "bucket", bucket)
	t.emit(Event{Type: EventVoteSpent, Kind: types.KindToken, Entity: tokenID, Caller: electionID, Target: tk.Stake, Amount: tk.Unit})
	return t.saveToken(tk)
}

// SetGranularity changes the utilization bucket width. Owner only. Past
// buckets keep the width they were recorded with.
func (l *Ledger) SetGranularity(caller, tokenID common.Address, width time.Duration) error {
	return l.withToken(tokenID, func(_ *txn, tk *Token) error {
		if err := tk.Access.RequireOwner(caller); err != nil {
			return err
		}
		if width < time.Second {
			return fmt.Errorf("%w: granularity must be at least one second", types.ErrInvalidInput)
		}
		tk.Granularity = uint64(width / time.Second)
		return nil
	})
}
