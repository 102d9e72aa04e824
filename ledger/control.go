package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/access"
	"github.com/vocdoni/ballotbox/types"
)

// withControl loads entity id, applies fn to its access control and saves
// it back.
func (l *Ledger) withControl(id common.Address, fn func(ac *access.Control) error) error {
	return l.update(func(t *txn) error {
		kind, e, err := t.loadAny(id)
		if err != nil {
			return err
		}
		if err := fn(e.control()); err != nil {
			return err
		}
		return t.save(kind, id, e)
	})
}

// readControl applies fn to the access control of entity id.
func (l *Ledger) readControl(id common.Address, fn func(ac *access.Control)) error {
	return l.view(func(t *txn) error {
		_, e, err := t.loadAny(id)
		if err != nil {
			return err
		}
		fn(e.control())
		return nil
	})
}

// AddAdmin grants admin rights on entity id to admin. Owner only.
func (l *Ledger) AddAdmin(caller, id, admin common.Address) error {
	return l.withControl(id, func(ac *access.Control) error {
		return ac.AddAdmin(caller, admin)
	})
}

// RemoveAdmin revokes the admin rights of admin on entity id. Owner only.
func (l *Ledger) RemoveAdmin(caller, id, admin common.Address) error {
	return l.withControl(id, func(ac *access.Control) error {
		return ac.RemoveAdmin(caller, admin)
	})
}

// RemoveSelf drops the admin rights of caller on entity id.
func (l *Ledger) RemoveSelf(caller, id common.Address) error {
	return l.withControl(id, func(ac *access.Control) error {
		return ac.RemoveSelf(caller)
	})
}

// Lock sets the lock flag of entity id. Admin only.
func (l *Ledger) Lock(caller, id common.Address) error {
	return l.withControl(id, func(ac *access.Control) error {
		return ac.Lock(caller)
	})
}

// Unlock clears the lock flag of entity id. Admin only.
func (l *Ledger) Unlock(caller, id common.Address) error {
	return l.withControl(id, func(ac *access.Control) error {
		return ac.Unlock(caller)
	})
}

// AddAuthorized adds authID to the external authorization list of entity
// id. Admin only.
func (l *Ledger) AddAuthorized(caller, id, authID common.Address) error {
	return l.withControl(id, func(ac *access.Control) error {
		return ac.AddAuthorized(caller, authID)
	})
}

// RemoveAuthorized removes authID from the external authorization list of
// entity id. Admin only.
func (l *Ledger) RemoveAuthorized(caller, id, authID common.Address) error {
	return l.withControl(id, func(ac *access.Control) error {
		return ac.RemoveAuthorized(caller, authID)
	})
}

// IsAdmin reports whether p is an admin of entity id.
func (l *Ledger) IsAdmin(id, p common.Address) (bool, error) {
	var ok bool
	err := l.readControl(id, func(ac *access.Control) { ok = ac.IsAdmin(p) })
	return ok, err
}

// IsLocked reports whether entity id is locked.
func (l *Ledger) IsLocked(id common.Address) (bool, error) {
	var ok bool
	err := l.readControl(id, func(ac *access.Control) { ok = ac.IsLocked() })
	return ok, err
}

// IsAuthorized reports whether authID is on the external authorization list
// of entity id.
func (l *Ledger) IsAuthorized(id, authID common.Address) (bool, error) {
	var ok bool
	err := l.readControl(id, func(ac *access.Control) { ok = ac.IsAuthorized(authID) })
	return ok, err
}

// Activate moves election, ballot or pool id from BUILDING to VOTING. An
// election is only activated when every registered pool passes
// CheckConfig.
func (l *Ledger) Activate(caller, id common.Address) error {
	return l.update(func(t *txn) error {
		return t.activate(caller, id)
	})
}

// Close moves election, ballot or pool id from VOTING to CLOSED. Closing an
// election registered with its vote token also closes it on the token.
func (l *Ledger) Close(caller, id common.Address) error {
	return l.update(func(t *txn) error {
		kind, e, err := t.loadPhased(id)
		if err != nil {
			return err
		}
		if err := e.machine().Close(e.control(), caller); err != nil {
			return err
		}
		if el, ok := e.(*Election); ok {
			if err := t.closeOnSource(el); err != nil {
				return err
			}
		}
		t.emitPhase(kind, id, caller, e.machine().Current())
		return t.save(kind, id, e)
	})
}

// Abort moves election, ballot or pool id to ABORTED, regardless of the
// lock.
func (l *Ledger) Abort(caller, id common.Address) error {
	return l.update(func(t *txn) error {
		kind, e, err := t.loadPhased(id)
		if err != nil {
			return err
		}
		if err := e.machine().Abort(e.control(), caller); err != nil {
			return err
		}
		t.emitPhase(kind, id, caller, e.machine().Current())
		return t.save(kind, id, e)
	})
}

// Phase returns the phase of election, ballot or pool id.
func (l *Ledger) Phase(id common.Address) (types.Phase, error) {
	var p types.Phase
	err := l.view(func(t *txn) error {
		_, e, err := t.loadPhased(id)
		if err != nil {
			return err
		}
		p = e.machine().Current()
		return nil
	})
	return p, err
}

// IsClosed reports whether election, ballot or pool id is CLOSED.
func (l *Ledger) IsClosed(id common.Address) (bool, error) {
	p, err := l.Phase(id)
	return p == types.PhaseClosed, err
}

func (t *txn) loadPhased(id common.Address) (types.Kind, phased, error) {
	kind, e, err := t.loadAny(id)
	if err != nil {
		return kind, nil, err
	}
	p, ok := e.(phased)
	if !ok {
		return kind, nil, fmt.Errorf("%w: a %s has no lifecycle", types.ErrInvalidInput, kind)
	}
	return kind, p, nil
}

func (t *txn) activate(caller, id common.Address) error {
	kind, e, err := t.loadPhased(id)
	if err != nil {
		return err
	}
	if err := e.machine().Activate(e.control(), caller); err != nil {
		return err
	}
	if el, ok := e.(*Election); ok {
		if err := t.checkReady(el); err != nil {
			return err
		}
	}
	t.emitPhase(kind, id, caller, e.machine().Current())
	return t.save(kind, id, e)
}

func (t *txn) emitPhase(kind types.Kind, id, caller common.Address, p types.Phase) {
	t.emit(Event{
		Type:   EventPhaseChanged,
		Kind:   kind,
		Entity: id,
		Caller: caller,
		Phase:  p,
	})
}
