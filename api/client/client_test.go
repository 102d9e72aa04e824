package client

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/ballotbox/api"
	"github.com/vocdoni/ballotbox/crypto/ethereum"
	"github.com/vocdoni/ballotbox/ledger"
	"github.com/vocdoni/ballotbox/storage"
	"github.com/vocdoni/ballotbox/types"
	"go.vocdoni.io/dvote/db/metadb"
)

func TestClientVotes(t *testing.T) {
	c := qt.New(t)
	l := ledger.New(storage.New(metadb.NewTest(t)))
	a, err := api.New(&api.APIConfig{Ledger: l})
	c.Assert(err, qt.IsNil)
	srv := httptest.NewServer(a.Router())
	defer srv.Close()

	gw := ethereum.NewSignKeys()
	c.Assert(gw.Generate(), qt.IsNil)
	owner := common.HexToAddress("0x02")
	token, err := l.CreateToken(owner, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(l.Mint(owner, token, owner, types.NewInt(5)), qt.IsNil)
	election, ballot, pool, err := l.CreateBasicElection(owner, &ledger.ElectionConfig{
		VoteSource:   token,
		AllowUpdates: true,
		AutoActivate: true,
		Gateway:      gw.Address(),
	}, "")
	c.Assert(err, qt.IsNil)
	c.Assert(l.AddElection(owner, token, election), qt.IsNil)
	c.Assert(l.Transfer(owner, token, election, types.NewInt(5)), qt.IsNil)

	cli, err := New(srv.URL)
	c.Assert(err, qt.IsNil)

	// writes need a signer
	c.Assert(cli.CastVote(pool, &api.VoteRequest{VoteID: []byte("v1"), Vote: []byte("ct")}), qt.ErrorMatches, "no signer configured")
	cli.SetSigner(gw)

	vote := &api.VoteRequest{VoteID: []byte("v1"), Vote: []byte("ct")}
	c.Assert(cli.CastVote(pool, vote), qt.IsNil)
	c.Assert(vote.Nonce, qt.HasLen, 16)

	// a fresh nonce per call, so the update goes through
	c.Assert(cli.UpdateVote(pool, &api.VoteRequest{VoteID: []byte("v1"), Vote: []byte("ct2")}), qt.IsNil)

	err = cli.CastVote(pool, &api.VoteRequest{VoteID: []byte("v1"), Vote: []byte("ct3")})
	var apiErr *APIError
	c.Assert(err, qt.ErrorAs, &apiErr)
	c.Assert(apiErr.Status, qt.Equals, http.StatusConflict)
	c.Assert(apiErr.Code, qt.Equals, api.ErrDuplicateEntry.Code)

	got, err := cli.Vote(pool, []byte("v1"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(got.Vote), qt.Equals, "ct2")

	root, err := cli.VotesRoot(pool)
	c.Assert(err, qt.IsNil)
	c.Assert(root.VoteCount, qt.Equals, uint64(1))

	tab, err := cli.GroupVotes(ballot, ledger.GroupAll)
	c.Assert(err, qt.IsNil)
	c.Assert(tab.Votes, qt.HasLen, 1)

	util, err := cli.Utilization(token, time.Unix(0, 0))
	c.Assert(err, qt.IsNil)
	c.Assert(util.Votes, qt.Equals, uint64(1))

	el, err := cli.Election(election)
	c.Assert(err, qt.IsNil)
	c.Assert(el.Revealer, qt.Equals, owner)
	p, err := cli.Pool(pool)
	c.Assert(err, qt.IsNil)
	c.Assert(p.VoteCount, qt.Equals, uint64(1))

	// the owner is the revealer, the gateway key is refused
	err = cli.SetElectionKeys(election, &api.KeysRequest{PublicKey: []byte("pk")})
	c.Assert(err, qt.ErrorAs, &apiErr)
	c.Assert(apiErr.Code, qt.Equals, api.ErrUnauthorized.Code)
}

func TestRequestRetriesTransportFailures(t *testing.T) {
	c := qt.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	cli, err := New(srv.URL)
	c.Assert(err, qt.IsNil)
	srv.Close()

	cli.SetRetries(2)
	_, _, err = cli.Request(HTTPGET, nil, nil, api.PingEndpoint)
	c.Assert(err, qt.ErrorMatches, "http request ultimately failed after retries: .*")
}

func TestServerErrorsAreNotRetried(t *testing.T) {
	c := qt.New(t)
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == api.PingEndpoint {
			w.WriteHeader(http.StatusOK)
			return
		}
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	cli, err := New(srv.URL)
	c.Assert(err, qt.IsNil)

	_, status, err := cli.Request(HTTPGET, nil, nil, "fail")
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, http.StatusInternalServerError)
	c.Assert(calls, qt.Equals, 1)
}

func TestClientManage(t *testing.T) {
	c := qt.New(t)
	l := ledger.New(storage.New(metadb.NewTest(t)))
	a, err := api.New(&api.APIConfig{Ledger: l})
	c.Assert(err, qt.IsNil)
	srv := httptest.NewServer(a.Router())
	defer srv.Close()

	owner := ethereum.NewSignKeys()
	c.Assert(owner.Generate(), qt.IsNil)
	cli, err := New(srv.URL)
	c.Assert(err, qt.IsNil)
	cli.SetSigner(owner)

	token, err := cli.CreateToken(&api.CreateTokenRequest{})
	c.Assert(err, qt.IsNil)
	// two identical mints in the same second, told apart by their nonce
	c.Assert(cli.Mint(token, owner.Address(), types.NewInt(2)), qt.IsNil)
	c.Assert(cli.Mint(token, owner.Address(), types.NewInt(2)), qt.IsNil)

	created, err := cli.CreateElection(&api.CreateElectionRequest{
		ElectionConfig: ledger.ElectionConfig{VoteSource: token, Gateway: owner.Address()},
		Basic:          true,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(created.Pool, qt.IsNotNil)
	c.Assert(cli.AllowElection(token, created.ID), qt.IsNil)
	c.Assert(cli.Transfer(token, created.ID, types.NewInt(3)), qt.IsNil)
	c.Assert(cli.SetPhase(created.ID, api.PhaseActivate), qt.IsNil)

	ent, err := cli.Entity(created.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(ent.Kind, qt.Equals, types.KindElection)
	c.Assert(*ent.Phase, qt.Equals, types.PhaseVoting)

	bal, err := l.BalanceOf(token, created.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(bal.MathBigInt().Int64(), qt.Equals, int64(3))

	err = cli.SetPhase(created.ID, "pause")
	var apiErr *APIError
	c.Assert(err, qt.ErrorAs, &apiErr)
	c.Assert(apiErr.Code, qt.Equals, api.ErrMalformedAction.Code)
}
