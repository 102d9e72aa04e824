package keyholder

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/ballotbox/types"
	"github.com/vocdoni/ballotbox/util"
)

func TestPrivateKeyOnlyWhenClosed(t *testing.T) {
	c := qt.New(t)
	revealer := util.RandomAddress()
	h := New(revealer)
	c.Assert(h.PrivateKey, qt.HasLen, 0)
	c.Assert(h.PublicKey, qt.HasLen, 0)

	for _, p := range []types.Phase{types.PhaseBuilding, types.PhaseVoting, types.PhaseAborted} {
		c.Assert(h.SetPrivateKey(revealer, p, []byte("priv")), qt.ErrorIs, types.ErrInvalidState)
	}
	c.Assert(h.SetPrivateKey(revealer, types.PhaseClosed, []byte("priv")), qt.IsNil)
	c.Assert(h.PrivateKey, qt.DeepEquals, []byte("priv"))
}

func TestPublicKeyBlockedWhenClosed(t *testing.T) {
	c := qt.New(t)
	revealer := util.RandomAddress()
	h := New(revealer)

	c.Assert(h.SetPublicKey(revealer, types.PhaseBuilding, []byte("pub1")), qt.IsNil)
	c.Assert(h.SetPublicKey(revealer, types.PhaseVoting, []byte("pub2")), qt.IsNil)
	c.Assert(h.SetPublicKey(revealer, types.PhaseClosed, []byte("pub3")), qt.ErrorIs, types.ErrInvalidState)
	c.Assert(h.PublicKey, qt.DeepEquals, []byte("pub2"))
}

func TestRevealerOnly(t *testing.T) {
	c := qt.New(t)
	h := New(util.RandomAddress())
	other := util.RandomAddress()
	c.Assert(h.SetPublicKey(other, types.PhaseVoting, []byte("pub")), qt.ErrorIs, types.ErrUnauthorized)
	c.Assert(h.SetPrivateKey(other, types.PhaseClosed, []byte("priv")), qt.ErrorIs, types.ErrUnauthorized)
	c.Assert(h.SetPublicKey(h.Revealer, types.PhaseVoting, nil), qt.ErrorIs, types.ErrInvalidInput)
}
