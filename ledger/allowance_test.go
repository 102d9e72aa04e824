package ledger

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/ballotbox/types"
	"github.com/vocdoni/ballotbox/util"
)

func (tl *testLedger) allowanceElection(account common.Address) (allowance, election, pool common.Address) {
	c := tl.c
	allowance, err := tl.CreateAllowance(tl.owner)
	c.Assert(err, qt.IsNil)
	election, _, pool, err = tl.CreateBasicElection(tl.owner, &ElectionConfig{
		UID:          "allowance",
		VoteSource:   allowance,
		VoteOwner:    account,
		AutoActivate: true,
		Gateway:      tl.gateway,
	}, "")
	c.Assert(err, qt.IsNil)
	return allowance, election, pool
}

func TestAllowanceVotes(t *testing.T) {
	tl := newTestLedger(t)
	c := tl.c
	account := util.RandomAddress()
	allowance, election, pool := tl.allowanceElection(account)

	c.Assert(tl.AddVotes(account, allowance, account, 2), qt.ErrorIs, types.ErrUnauthorized)
	c.Assert(tl.AddVotes(tl.owner, allowance, account, 0), qt.ErrorIs, types.ErrInvalidInput)
	c.Assert(tl.AddVotes(tl.owner, allowance, account, 2), qt.IsNil)
	votes, err := tl.AllowanceOf(allowance, account)
	c.Assert(err, qt.IsNil)
	c.Assert(votes, qt.Equals, uint64(2))

	// the account has not opted the election in yet
	err = tl.CastVote(tl.gateway, pool, submission("v0", "ct0", "n0"))
	c.Assert(err, qt.ErrorIs, types.ErrUnauthorized)

	c.Assert(tl.AddAccountElection(account, allowance, election), qt.IsNil)
	c.Assert(tl.AddAccountElection(account, allowance, election), qt.ErrorIs, types.ErrDuplicateEntry)
	ok, err := tl.ElectionIsAllowed(allowance, account, election)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)

	c.Assert(tl.CastVote(tl.gateway, pool, submission("v1", "ct1", "n1")), qt.IsNil)
	c.Assert(tl.CastVote(tl.gateway, pool, submission("v2", "ct2", "n2")), qt.IsNil)
	err = tl.CastVote(tl.gateway, pool, submission("v3", "ct3", "n3"))
	c.Assert(err, qt.ErrorIs, types.ErrInsufficientBalance)
	votes, err = tl.AllowanceOf(allowance, account)
	c.Assert(err, qt.IsNil)
	c.Assert(votes, qt.Equals, uint64(0))
	c.Assert(tl.countEvents(EventVotesDeducted), qt.Equals, 2)

	c.Assert(tl.AddVotes(tl.owner, allowance, account, 1), qt.IsNil)
	c.Assert(tl.Lock(tl.owner, allowance), qt.IsNil)
	err = tl.CastVote(tl.gateway, pool, submission("v3", "ct3", "n3"))
	c.Assert(err, qt.ErrorIs, types.ErrInvalidState)
	c.Assert(tl.Unlock(tl.owner, allowance), qt.IsNil)

	c.Assert(tl.RemoveAccountElection(account, allowance, election), qt.IsNil)
	c.Assert(tl.RemoveAccountElection(account, allowance, election), qt.ErrorIs, types.ErrNotFound)
	err = tl.CastVote(tl.gateway, pool, submission("v3", "ct3", "n3"))
	c.Assert(err, qt.ErrorIs, types.ErrUnauthorized)
}

func TestDeductDirect(t *testing.T) {
	tl := newTestLedger(t)
	c := tl.c
	account := util.RandomAddress()
	election := util.RandomAddress()
	allowance, err := tl.CreateAllowance(tl.owner)
	c.Assert(err, qt.IsNil)
	c.Assert(tl.AddVotes(tl.owner, allowance, account, 1), qt.IsNil)

	c.Assert(tl.Deduct(election, allowance, account), qt.ErrorIs, types.ErrUnauthorized)
	c.Assert(tl.AddAccountElection(account, allowance, election), qt.IsNil)
	c.Assert(tl.Deduct(election, allowance, account), qt.IsNil)
	c.Assert(tl.Deduct(election, allowance, account), qt.ErrorIs, types.ErrInsufficientBalance)

	// opting in is per account
	other := util.RandomAddress()
	c.Assert(tl.AddVotes(tl.owner, allowance, other, 1), qt.IsNil)
	c.Assert(tl.Deduct(election, allowance, other), qt.ErrorIs, types.ErrUnauthorized)

	_, err = tl.AllowanceOf(util.RandomAddress(), account)
	c.Assert(err, qt.ErrorIs, types.ErrNotFound)
}

func TestWithdrawFromAllowanceElection(t *testing.T) {
	tl := newTestLedger(t)
	account := util.RandomAddress()
	_, election, _ := tl.allowanceElection(account)
	tl.c.Assert(tl.WithdrawAllVotes(account, election), qt.ErrorIs, types.ErrInvalidState)
}
