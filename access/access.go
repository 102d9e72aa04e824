// Package access implements the admin set, external authorization list and
// lock flag shared by every component. The owner is fixed at creation, is
// always an admin and can never be removed.
package access

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/registry"
	"github.com/vocdoni/ballotbox/types"
)

// Control is the access control state of one component.
type Control struct {
	Owner      common.Address
	Admins     registry.Registry[common.Address]
	Authorized registry.Registry[common.Address]
	Locked     bool
}

// New returns the access control of a component created by owner.
func New(owner common.Address) Control {
	return Control{Owner: owner}
}

// IsOwner reports whether p is the owner.
func (a *Control) IsOwner(p common.Address) bool {
	return p == a.Owner
}

// IsAdmin reports whether p is the owner or a registered admin.
func (a *Control) IsAdmin(p common.Address) bool {
	return a.IsOwner(p) || a.Admins.Contains(p)
}

// IsLocked reports whether the lock flag is set.
func (a *Control) IsLocked() bool {
	return a.Locked
}

// RequireOwner returns types.ErrUnauthorized unless caller is the owner.
func (a *Control) RequireOwner(caller common.Address) error {
	if !a.IsOwner(caller) {
		return fmt.Errorf("%w: %s is not the owner", types.ErrUnauthorized, caller.Hex())
	}
	return nil
}

// RequireAdmin returns types.ErrUnauthorized unless caller is an admin.
func (a *Control) RequireAdmin(caller common.Address) error {
	if !a.IsAdmin(caller) {
		return fmt.Errorf("%w: %s is not an admin", types.ErrUnauthorized, caller.Hex())
	}
	return nil
}

// AddAdmin grants admin rights to p. Owner only, idempotent.
func (a *Control) AddAdmin(caller, p common.Address) error {
	if err := a.RequireOwner(caller); err != nil {
		return err
	}
	if a.IsAdmin(p) {
		return nil
	}
	return a.Admins.Add(p)
}

// RemoveAdmin revokes the admin rights of p. Owner only; the owner itself
// cannot be removed.
func (a *Control) RemoveAdmin(caller, p common.Address) error {
	if err := a.RequireOwner(caller); err != nil {
		return err
	}
	if a.IsOwner(p) {
		return fmt.Errorf("%w: the owner cannot be removed", types.ErrInvalidInput)
	}
	if !a.Admins.Contains(p) {
		return nil
	}
	return a.Admins.Remove(p)
}

// RemoveSelf drops the admin rights of the caller.
func (a *Control) RemoveSelf(caller common.Address) error {
	if err := a.RequireAdmin(caller); err != nil {
		return err
	}
	if a.IsOwner(caller) {
		return fmt.Errorf("%w: the owner cannot be removed", types.ErrInvalidInput)
	}
	return a.Admins.Remove(caller)
}

// Lock sets the lock flag. Admin only.
func (a *Control) Lock(caller common.Address) error {
	if err := a.RequireAdmin(caller); err != nil {
		return err
	}
	a.Locked = true
	return nil
}

// Unlock clears the lock flag. Admin only.
func (a *Control) Unlock(caller common.Address) error {
	if err := a.RequireAdmin(caller); err != nil {
		return err
	}
	a.Locked = false
	return nil
}

// AddAuthorized adds id to the external authorization list. Admin only,
// idempotent.
func (a *Control) AddAuthorized(caller, id common.Address) error {
	if err := a.RequireAdmin(caller); err != nil {
		return err
	}
	if a.Authorized.Contains(id) {
		return nil
	}
	return a.Authorized.Add(id)
}

// RemoveAuthorized removes id from the external authorization list.
func (a *Control) RemoveAuthorized(caller, id common.Address) error {
	if err := a.RequireAdmin(caller); err != nil {
		return err
	}
	if !a.Authorized.Contains(id) {
		return nil
	}
	return a.Authorized.Remove(id)
}

// IsAuthorized reports whether id is on the external authorization list.
func (a *Control) IsAuthorized(id common.Address) bool {
	return a.Authorized.Contains(id)
}
