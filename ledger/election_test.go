package ledger

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/ballotbox/storage"
	"github.com/vocdoni/ballotbox/types"
	"github.com/vocdoni/ballotbox/util"
)

func TestCreateElectionValidation(t *testing.T) {
	tl := newTestLedger(t)
	c := tl.c
	token := tl.newToken(&TokenConfig{}, 0)

	_, err := tl.CreateElection(tl.owner, &ElectionConfig{VoteSource: util.RandomAddress()})
	c.Assert(err, qt.ErrorIs, types.ErrInvalidInput)

	// another election is not a vote source
	other, err := tl.CreateElection(tl.owner, &ElectionConfig{VoteSource: token})
	c.Assert(err, qt.IsNil)
	_, err = tl.CreateElection(tl.owner, &ElectionConfig{VoteSource: other})
	c.Assert(err, qt.ErrorIs, types.ErrInvalidInput)

	_, err = tl.CreateElection(tl.owner, &ElectionConfig{
		VoteSource:  token,
		BalanceDate: testStart.Add(time.Minute),
	})
	c.Assert(err, qt.ErrorIs, types.ErrInvalidInput)

	id, err := tl.CreateElection(tl.owner, &ElectionConfig{
		UID:         "past",
		VoteSource:  token,
		BalanceDate: testStart.Add(-time.Hour),
	})
	c.Assert(err, qt.IsNil)
	el, err := tl.Election(id)
	c.Assert(err, qt.IsNil)
	c.Assert(el.BalanceDate, qt.Equals, testStart.Add(-time.Hour).Unix())
	c.Assert(el.VoteOwner, qt.Equals, tl.owner)
	c.Assert(el.Keys.Revealer, qt.Equals, tl.owner)
	c.Assert(el.SourceKind, qt.Equals, types.KindToken)
	c.Assert(el.CreatedAt, qt.Equals, testStart.Unix())
}

func TestCreateElectionCorruptSource(t *testing.T) {
	tl := newTestLedger(t)
	c := tl.c

	source := util.RandomAddress()
	c.Assert(tl.stg.Update(func(tx *storage.Tx) error {
		return tx.SetRaw(storage.KindPrefix, source.Bytes(), []byte{1, 2})
	}), qt.IsNil)
	_, err := tl.CreateElection(tl.owner, &ElectionConfig{VoteSource: source})
	c.Assert(err, qt.ErrorMatches, "corrupt kind record for .*")
	c.Assert(err, qt.Not(qt.ErrorIs), types.ErrInvalidInput)
}

func TestCreateBasicElection(t *testing.T) {
	tl := newTestLedger(t)
	c := tl.c
	_, election, ballot, pool := tl.votingElection(false, 0)

	for _, id := range []common.Address{election, ballot, pool} {
		c.Assert(tl.phase(id), qt.Equals, types.PhaseVoting)
	}
	ok, err := tl.CheckConfig(pool)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	got, err := tl.BallotAt(election, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, ballot)
	got, err = tl.PoolAt(election, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, pool)
	p, err := tl.Pool(pool)
	c.Assert(err, qt.IsNil)
	c.Assert(p.Gateway, qt.Equals, tl.gateway)
	c.Assert(p.Election, qt.Equals, election)

	// the pool needs a gateway
	token := tl.newToken(&TokenConfig{}, 0)
	_, _, _, err = tl.CreateBasicElection(tl.owner, &ElectionConfig{
		VoteSource:   token,
		AutoActivate: true,
	}, "")
	c.Assert(err, qt.ErrorIs, types.ErrInvalidInput)
}

func TestActivationRequiresWiredPools(t *testing.T) {
	tl := newTestLedger(t)
	c := tl.c
	token := tl.newToken(&TokenConfig{}, 0)
	election, err := tl.CreateElection(tl.owner, &ElectionConfig{VoteSource: token, Gateway: tl.gateway})
	c.Assert(err, qt.IsNil)
	pool, err := tl.CreatePool(tl.owner, election, tl.gateway, "p")
	c.Assert(err, qt.IsNil)
	c.Assert(tl.AddPool(tl.owner, election, pool), qt.IsNil)

	c.Assert(tl.Activate(tl.owner, election), qt.ErrorIs, types.ErrInvalidState)
	c.Assert(tl.phase(election), qt.Equals, types.PhaseBuilding)

	ballot, err := tl.CreateBallot(tl.owner, election, common.Address{}, "")
	c.Assert(err, qt.IsNil)
	c.Assert(tl.AddPoolToBallot(tl.owner, ballot, pool), qt.IsNil)
	c.Assert(tl.AddBallotToPool(tl.owner, pool, ballot), qt.IsNil)
	c.Assert(tl.Activate(tl.owner, election), qt.ErrorIs, types.ErrInvalidState)

	c.Assert(tl.AddBallot(tl.owner, election, ballot), qt.IsNil)
	c.Assert(tl.Activate(tl.owner, election), qt.IsNil)
}

func TestElectionRegistries(t *testing.T) {
	tl := newTestLedger(t)
	c := tl.c
	token := tl.newToken(&TokenConfig{}, 0)
	election, err := tl.CreateElection(tl.owner, &ElectionConfig{VoteSource: token})
	c.Assert(err, qt.IsNil)

	var ballots []common.Address
	for i := 0; i < 3; i++ {
		b, err := tl.CreateBallot(tl.owner, election, common.Address{}, "")
		c.Assert(err, qt.IsNil)
		c.Assert(tl.AddBallot(tl.owner, election, b), qt.IsNil)
		ballots = append(ballots, b)
	}
	c.Assert(tl.AddBallot(tl.owner, election, ballots[0]), qt.ErrorIs, types.ErrDuplicateEntry)
	c.Assert(tl.AddBallot(tl.owner, election, util.RandomAddress()), qt.ErrorIs, types.ErrNotFound)
	c.Assert(tl.AddBallot(util.RandomAddress(), election, ballots[0]), qt.ErrorIs, types.ErrUnauthorized)

	// removal moves the last entry into the freed slot
	c.Assert(tl.RemoveBallot(tl.owner, election, ballots[0]), qt.IsNil)
	n, err := tl.BallotCount(election)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 2)
	got, err := tl.BallotAt(election, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, ballots[2])
	_, err = tl.BallotAt(election, 2)
	c.Assert(err, qt.ErrorIs, types.ErrNotFound)
	c.Assert(tl.RemoveBallot(tl.owner, election, ballots[0]), qt.ErrorIs, types.ErrNotFound)
}

func TestKeyCustody(t *testing.T) {
	tl := newTestLedger(t)
	c := tl.c
	_, election, _, _ := tl.votingElection(false, 0)
	pub, priv := []byte("public"), []byte("private")

	c.Assert(tl.SetPublicKey(tl.owner, election, pub), qt.ErrorIs, types.ErrUnauthorized)
	c.Assert(tl.SetPublicKey(tl.revealer, election, nil), qt.ErrorIs, types.ErrInvalidInput)
	c.Assert(tl.SetPublicKey(tl.revealer, election, pub), qt.IsNil)
	c.Assert(tl.SetPrivateKey(tl.revealer, election, priv), qt.ErrorIs, types.ErrInvalidState)

	got, err := tl.PublicKey(election)
	c.Assert(err, qt.IsNil)
	c.Assert(string(got), qt.Equals, "public")
	got, err = tl.PrivateKey(election)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.HasLen, 0)

	c.Assert(tl.Close(tl.owner, election), qt.IsNil)
	c.Assert(tl.SetPublicKey(tl.revealer, election, []byte("late")), qt.ErrorIs, types.ErrInvalidState)
	c.Assert(tl.SetPrivateKey(tl.owner, election, priv), qt.ErrorIs, types.ErrUnauthorized)
	c.Assert(tl.SetPrivateKey(tl.revealer, election, priv), qt.IsNil)
	got, err = tl.PrivateKey(election)
	c.Assert(err, qt.IsNil)
	c.Assert(string(got), qt.Equals, "private")
	c.Assert(tl.countEvents(EventKeyPublished), qt.Equals, 1)
	c.Assert(tl.countEvents(EventKeyReleased), qt.Equals, 1)
}

func TestSetKeysIsAtomic(t *testing.T) {
	tl := newTestLedger(t)
	c := tl.c
	_, election, _, _ := tl.votingElection(false, 0)

	// the private key is rejected while voting, so the public key is not kept
	err := tl.SetKeys(tl.revealer, election, []byte("public"), []byte("private"))
	c.Assert(err, qt.ErrorIs, types.ErrInvalidState)
	got, err := tl.PublicKey(election)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.HasLen, 0)
	c.Assert(tl.countEvents(EventKeyPublished), qt.Equals, 0)

	c.Assert(tl.SetKeys(tl.revealer, election, nil, nil), qt.ErrorIs, types.ErrInvalidInput)
	c.Assert(tl.SetKeys(tl.revealer, election, []byte("public"), nil), qt.IsNil)
	c.Assert(tl.Close(tl.owner, election), qt.IsNil)
	c.Assert(tl.SetKeys(tl.revealer, election, nil, []byte("private")), qt.IsNil)
	got, err = tl.PrivateKey(election)
	c.Assert(err, qt.IsNil)
	c.Assert(string(got), qt.Equals, "private")
	c.Assert(tl.countEvents(EventKeyPublished), qt.Equals, 1)
	c.Assert(tl.countEvents(EventKeyReleased), qt.Equals, 1)
}

func TestCloseElectionStopsSpending(t *testing.T) {
	tl := newTestLedger(t)
	c := tl.c
	token, election, _, pool := tl.votingElection(false, 5)

	c.Assert(tl.Close(tl.owner, election), qt.IsNil)
	ok, err := tl.ElectionAllowed(token, election)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
	c.Assert(tl.SpendVote(election, token), qt.ErrorIs, types.ErrUnauthorized)

	// the pool is still voting but its election is not
	err = tl.CastVote(tl.gateway, pool, submission("v1", "ct1", "n1"))
	c.Assert(err, qt.ErrorIs, types.ErrInvalidState)
	c.Assert(tl.balance(token, election), qt.Equals, int64(5))
}

func TestWithdrawVotes(t *testing.T) {
	tl := newTestLedger(t)
	c := tl.c
	token, election, _, _ := tl.votingElection(false, 5)
	funder := util.RandomAddress()

	c.Assert(tl.WithdrawVotes(funder, election, types.NewInt(1)), qt.ErrorIs, types.ErrUnauthorized)
	c.Assert(tl.WithdrawVotes(tl.owner, election, types.NewInt(2)), qt.IsNil)
	c.Assert(tl.balance(token, tl.owner), qt.Equals, int64(47))
	c.Assert(tl.WithdrawVotes(tl.owner, election, types.NewInt(4)), qt.ErrorIs, types.ErrInsufficientBalance)

	c.Assert(tl.SetVoteOwner(funder, election, funder), qt.ErrorIs, types.ErrUnauthorized)
	c.Assert(tl.SetVoteOwner(tl.owner, election, common.Address{}), qt.ErrorIs, types.ErrInvalidInput)
	c.Assert(tl.SetVoteOwner(tl.owner, election, funder), qt.IsNil)
	c.Assert(tl.WithdrawVotes(tl.owner, election, types.NewInt(1)), qt.ErrorIs, types.ErrUnauthorized)
	c.Assert(tl.WithdrawAllVotes(funder, election), qt.IsNil)
	c.Assert(tl.balance(token, funder), qt.Equals, int64(3))
	c.Assert(tl.balance(token, election), qt.Equals, int64(0))
	c.Assert(tl.WithdrawAllVotes(funder, election), qt.IsNil)
}
