package phase

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/ballotbox/access"
	"github.com/vocdoni/ballotbox/types"
	"github.com/vocdoni/ballotbox/util"
)

var allPhases = []types.Phase{
	types.PhaseBuilding,
	types.PhaseVoting,
	types.PhaseClosed,
	types.PhaseAborted,
}

func TestTransitionsFromEveryPhase(t *testing.T) {
	owner := util.RandomAddress()
	for _, from := range allPhases {
		t.Run(from.String(), func(t *testing.T) {
			c := qt.New(t)
			ac := access.New(owner)

			m := Machine{Phase: from}
			err := m.Activate(&ac, owner)
			if from == types.PhaseBuilding {
				c.Assert(err, qt.IsNil)
				c.Assert(m.Current(), qt.Equals, types.PhaseVoting)
			} else {
				c.Assert(err, qt.ErrorIs, types.ErrInvalidState)
				c.Assert(m.Current(), qt.Equals, from)
			}

			m = Machine{Phase: from}
			err = m.Close(&ac, owner)
			if from == types.PhaseVoting {
				c.Assert(err, qt.IsNil)
				c.Assert(m.IsClosed(), qt.IsTrue)
			} else {
				c.Assert(err, qt.ErrorIs, types.ErrInvalidState)
				c.Assert(m.Current(), qt.Equals, from)
			}

			m = Machine{Phase: from}
			err = m.Abort(&ac, owner)
			if from == types.PhaseAborted {
				c.Assert(err, qt.ErrorIs, types.ErrInvalidState)
			} else {
				c.Assert(err, qt.IsNil)
			}
			c.Assert(m.Current(), qt.Equals, types.PhaseAborted)
			c.Assert(m.IsClosed(), qt.IsFalse)
		})
	}
}

func TestAbortedIsTerminal(t *testing.T) {
	c := qt.New(t)
	owner := util.RandomAddress()
	ac := access.New(owner)
	m := Machine{}
	c.Assert(m.Abort(&ac, owner), qt.IsNil)
	c.Assert(m.Activate(&ac, owner), qt.ErrorIs, types.ErrInvalidState)
	c.Assert(m.Close(&ac, owner), qt.ErrorIs, types.ErrInvalidState)
	c.Assert(m.Abort(&ac, owner), qt.ErrorIs, types.ErrInvalidState)
}

func TestLockGate(t *testing.T) {
	c := qt.New(t)
	owner := util.RandomAddress()
	ac := access.New(owner)
	m := Machine{}

	c.Assert(ac.Lock(owner), qt.IsNil)
	c.Assert(m.Activate(&ac, owner), qt.ErrorIs, types.ErrInvalidState)
	c.Assert(m.Current(), qt.Equals, types.PhaseBuilding)
	c.Assert(ac.Unlock(owner), qt.IsNil)
	c.Assert(m.Activate(&ac, owner), qt.IsNil)

	c.Assert(ac.Lock(owner), qt.IsNil)
	c.Assert(m.Close(&ac, owner), qt.ErrorIs, types.ErrInvalidState)
	c.Assert(m.Current(), qt.Equals, types.PhaseVoting)
	c.Assert(ac.Unlock(owner), qt.IsNil)
	c.Assert(m.Close(&ac, owner), qt.IsNil)

	// abort ignores the lock
	c.Assert(ac.Lock(owner), qt.IsNil)
	c.Assert(m.Abort(&ac, owner), qt.IsNil)
}

func TestAdminOnly(t *testing.T) {
	c := qt.New(t)
	owner, other := util.RandomAddress(), util.RandomAddress()
	ac := access.New(owner)
	m := Machine{}
	c.Assert(m.Activate(&ac, other), qt.ErrorIs, types.ErrUnauthorized)
	c.Assert(m.Abort(&ac, other), qt.ErrorIs, types.ErrUnauthorized)
	c.Assert(ac.AddAdmin(owner, other), qt.IsNil)
	c.Assert(m.Activate(&ac, other), qt.IsNil)
}
