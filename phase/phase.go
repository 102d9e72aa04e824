// Package phase implements the component lifecycle:
//
//	BUILDING -> VOTING -> CLOSED
//	    \          \         \
//	     +----------+---------+--> ABORTED
//
// Activate and Close are blocked by the component lock; Abort is not.
package phase

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/access"
	"github.com/vocdoni/ballotbox/types"
)

// Machine holds the current phase of a component. The zero value is
// BUILDING.
type Machine struct {
	Phase types.Phase
}

// Current returns the current phase.
func (m *Machine) Current() types.Phase {
	return m.Phase
}

// IsClosed reports whether the component reached CLOSED.
func (m *Machine) IsClosed() bool {
	return m.Phase == types.PhaseClosed
}

// Activate moves BUILDING to VOTING.
func (m *Machine) Activate(ac *access.Control, caller common.Address) error {
	return m.transition(ac, caller, types.PhaseBuilding, types.PhaseVoting)
}

// Close moves VOTING to CLOSED.
func (m *Machine) Close(ac *access.Control, caller common.Address) error {
	return m.transition(ac, caller, types.PhaseVoting, types.PhaseClosed)
}

// Abort moves any phase but ABORTED to ABORTED, regardless of the lock.
func (m *Machine) Abort(ac *access.Control, caller common.Address) error {
	if err := ac.RequireAdmin(caller); err != nil {
		return err
	}
	if m.Phase == types.PhaseAborted {
		return fmt.Errorf("%w: already aborted", types.ErrInvalidState)
	}
	m.Phase = types.PhaseAborted
	return nil
}

// RequirePhase returns types.ErrInvalidState unless the current phase is p.
func (m *Machine) RequirePhase(p types.Phase) error {
	if m.Phase != p {
		return fmt.Errorf("%w: phase is %s, want %s", types.ErrInvalidState, m.Phase, p)
	}
	return nil
}

func (m *Machine) transition(ac *access.Control, caller common.Address, from, to types.Phase) error {
	if err := ac.RequireAdmin(caller); err != nil {
		return err
	}
	if ac.IsLocked() {
		return fmt.Errorf("%w: locked", types.ErrInvalidState)
	}
	if err := m.RequirePhase(from); err != nil {
		return err
	}
	m.Phase = to
	return nil
}
