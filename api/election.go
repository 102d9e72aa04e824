package api

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/access"
	"github.com/vocdoni/ballotbox/log"
)

func accessInfo(ac *access.Control) AccessInfo {
	return AccessInfo{
		Owner:  ac.Owner,
		Admins: ac.Admins.Members(),
		Locked: ac.Locked,
	}
}

// election returns the election info
// GET /elections/{electionId}
func (a *API) election(w http.ResponseWriter, r *http.Request) {
	id, err := addressParam(r, ElectionURLParam)
	if err != nil {
		writeErr(w, err)
		return
	}
	el, err := a.ledger.Election(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpWriteJSON(w, &ElectionResponse{
		ID:           el.ID,
		UID:          el.UID,
		Phase:        el.Phase.Current(),
		Access:       accessInfo(&el.Access),
		Ballots:      el.Ballots.Members(),
		Pools:        el.Pools.Members(),
		AllowUpdates: el.AllowUpdates,
		Gateway:      el.Gateway,
		MetadataRef:  el.MetadataRef,
		VoteSource:   el.VoteSource,
		SourceKind:   el.SourceKind,
		VoteOwner:    el.VoteOwner,
		Revealer:     el.Keys.Revealer,
		PublicKey:    el.Keys.PublicKey,
		PrivateKey:   el.Keys.PrivateKey,
		BalanceDate:  el.BalanceDate,
		CreatedAt:    el.CreatedAt,
	})
}

// setElectionKeys publishes the public key and/or releases the private key
// of an election. Signed by the revealer.
// POST /elections/{electionId}/keys
func (a *API) setElectionKeys(w http.ResponseWriter, r *http.Request) {
	id, err := addressParam(r, ElectionURLParam)
	if err != nil {
		writeErr(w, err)
		return
	}
	req := &KeysRequest{}
	caller, err := decodeSigned(r, req)
	if err != nil {
		writeErr(w, err)
		return
	}
	if len(req.PublicKey) == 0 && len(req.PrivateKey) == 0 {
		ErrMalformedBody.Withf("no key provided").Write(w)
		return
	}
	if err := a.ledger.SetKeys(caller, id, req.PublicKey, req.PrivateKey); err != nil {
		writeErr(w, err)
		return
	}
	log.Infow("election keys stored", "election", id.Hex(),
		"public", len(req.PublicKey) > 0, "private", len(req.PrivateKey) > 0)
	httpWriteOK(w)
}

// createElection creates an election owned by the signer. With Basic set
// its pool and ballot are created along.
// POST /elections
func (a *API) createElection(w http.ResponseWriter, r *http.Request) {
	req := &CreateElectionRequest{}
	a.managedCreate(w, r, req, func(caller common.Address) (*CreatedResponse, error) {
		if !req.Basic {
			id, err := a.ledger.CreateElection(caller, &req.ElectionConfig)
			if err != nil {
				return nil, err
			}
			return &CreatedResponse{ID: id}, nil
		}
		id, ballot, pool, err := a.ledger.CreateBasicElection(caller, &req.ElectionConfig, req.BallotMetadataRef)
		if err != nil {
			return nil, err
		}
		return &CreatedResponse{ID: id, Ballot: &ballot, Pool: &pool}, nil
	})
}

// electionBallot registers or drops a ballot. Signed by an admin.
// POST /elections/{electionId}/ballots
func (a *API) electionBallot(w http.ResponseWriter, r *http.Request) {
	req := &MemberRequest{}
	a.managedWrite(w, r, ElectionURLParam, req, func(caller, id common.Address) error {
		if req.Remove {
			return a.ledger.RemoveBallot(caller, id, req.Member)
		}
		return a.ledger.AddBallot(caller, id, req.Member)
	})
}

// electionPool registers or drops a pool. Signed by an admin.
// POST /elections/{electionId}/pools
func (a *API) electionPool(w http.ResponseWriter, r *http.Request) {
	req := &MemberRequest{}
	a.managedWrite(w, r, ElectionURLParam, req, func(caller, id common.Address) error {
		if req.Remove {
			return a.ledger.RemovePool(caller, id, req.Member)
		}
		return a.ledger.AddPool(caller, id, req.Member)
	})
}

// setVoteOwner changes the account funding the election. Signed by an
// admin.
// POST /elections/{electionId}/voteOwner
func (a *API) setVoteOwner(w http.ResponseWriter, r *http.Request) {
	req := &VoteOwnerRequest{}
	a.managedWrite(w, r, ElectionURLParam, req, func(caller, id common.Address) error {
		return a.ledger.SetVoteOwner(caller, id, req.Owner)
	})
}

// withdrawVotes returns unspent tokens to the vote owner. Signed by the
// vote owner.
// POST /elections/{electionId}/withdraw
func (a *API) withdrawVotes(w http.ResponseWriter, r *http.Request) {
	req := &WithdrawRequest{}
	a.managedWrite(w, r, ElectionURLParam, req, func(caller, id common.Address) error {
		if req.Amount == nil {
			return a.ledger.WithdrawAllVotes(caller, id)
		}
		return a.ledger.WithdrawVotes(caller, id, req.Amount)
	})
}
