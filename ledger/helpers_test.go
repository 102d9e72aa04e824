package ledger

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/ballotbox/storage"
	"github.com/vocdoni/ballotbox/types"
	"github.com/vocdoni/ballotbox/util"
	"go.vocdoni.io/dvote/db/metadb"
)

var testStart = time.Unix(1_700_000_000, 0)

type testLedger struct {
	*Ledger
	c     *qt.C
	clock *clock.Mock

	owner    common.Address
	gateway  common.Address
	revealer common.Address
	stake    common.Address

	events []Event
}

func newTestLedger(t *testing.T) *testLedger {
	clk := clock.NewMock()
	clk.Set(testStart)
	tl := &testLedger{
		Ledger:   New(storage.New(metadb.NewTest(t)), WithClock(clk)),
		c:        qt.New(t),
		clock:    clk,
		owner:    util.RandomAddress(),
		gateway:  util.RandomAddress(),
		revealer: util.RandomAddress(),
		stake:    util.RandomAddress(),
	}
	tl.Subscribe(func(e Event) {
		tl.events = append(tl.events, e)
	})
	return tl
}

// newToken creates a token and mints supply to the owner.
func (tl *testLedger) newToken(cfg *TokenConfig, supply int64) common.Address {
	if cfg.Stake == (common.Address{}) {
		cfg.Stake = tl.stake
	}
	token, err := tl.CreateToken(tl.owner, cfg)
	tl.c.Assert(err, qt.IsNil)
	if supply > 0 {
		tl.c.Assert(tl.Mint(tl.owner, token, tl.owner, types.NewInt(supply)), qt.IsNil)
	}
	return token
}

// votingElection creates an active basic election funded with funds units
// of a fresh token.
func (tl *testLedger) votingElection(allowUpdates bool, funds int64) (token, election, ballot, pool common.Address) {
	token = tl.newToken(&TokenConfig{}, 50)
	election, ballot, pool = tl.fundedElection(token, allowUpdates, funds)
	return token, election, ballot, pool
}

// fundedElection creates an active basic election spending from token and
// transfers funds units from the owner to it.
func (tl *testLedger) fundedElection(token common.Address, allowUpdates bool, funds int64) (election, ballot, pool common.Address) {
	election, ballot, pool, err := tl.CreateBasicElection(tl.owner, &ElectionConfig{
		UID:          "basic",
		VoteSource:   token,
		AllowUpdates: allowUpdates,
		AutoActivate: true,
		Revealer:     tl.revealer,
		Gateway:      tl.gateway,
		MetadataRef:  "ipfs://election",
	}, "ipfs://ballot")
	tl.c.Assert(err, qt.IsNil)
	tl.c.Assert(tl.AddElection(tl.owner, token, election), qt.IsNil)
	if funds > 0 {
		tl.c.Assert(tl.Transfer(tl.owner, token, election, types.NewInt(funds)), qt.IsNil)
	}
	return election, ballot, pool
}

func (tl *testLedger) balance(token, holder common.Address) int64 {
	b, err := tl.BalanceOf(token, holder)
	tl.c.Assert(err, qt.IsNil)
	return b.MathBigInt().Int64()
}

func (tl *testLedger) supply(token common.Address) int64 {
	s, err := tl.TotalSupply(token)
	tl.c.Assert(err, qt.IsNil)
	return s.MathBigInt().Int64()
}

func (tl *testLedger) phase(id common.Address) types.Phase {
	p, err := tl.Phase(id)
	tl.c.Assert(err, qt.IsNil)
	return p
}

func (tl *testLedger) countEvents(typ EventType) int {
	n := 0
	for _, e := range tl.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func submission(voteID, vote, nonce string) *Submission {
	return &Submission{
		VoteID: []byte(voteID),
		Vote:   []byte(vote),
		Nonce:  []byte(nonce),
	}
}
