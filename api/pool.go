package api

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/log"
)

// pool returns the pool info
// GET /pools/{poolId}
func (a *API) pool(w http.ResponseWriter, r *http.Request) {
	id, err := addressParam(r, PoolURLParam)
	if err != nil {
		writeErr(w, err)
		return
	}
	p, err := a.ledger.Pool(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpWriteJSON(w, &PoolResponse{
		ID:        p.ID,
		UID:       p.UID,
		Election:  p.Election,
		Gateway:   p.Gateway,
		Phase:     p.Phase.Current(),
		Access:    accessInfo(&p.Access),
		Ballots:   p.Ballots.Members(),
		AuthIDs:   p.AuthIDs.Count(),
		AuthIDRef: p.AuthIDRef,
		VoteCount: p.VoteCount,
		CreatedAt: p.CreatedAt,
	})
}

// checkPool reports whether the pool is fully linked to its ballots and
// election.
// GET /pools/{poolId}/check
func (a *API) checkPool(w http.ResponseWriter, r *http.Request) {
	id, err := addressParam(r, PoolURLParam)
	if err != nil {
		writeErr(w, err)
		return
	}
	ok, err := a.ledger.CheckConfig(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpWriteJSON(w, &CheckResponse{Pool: id, OK: ok})
}

// castVote stores a new vote. Signed by the pool gateway.
// POST /pools/{poolId}/votes
func (a *API) castVote(w http.ResponseWriter, r *http.Request) {
	a.submitVote(w, r, a.ledger.CastVote)
}

// updateVote overwrites a stored vote. Signed by the pool gateway.
// PUT /pools/{poolId}/votes
func (a *API) updateVote(w http.ResponseWriter, r *http.Request) {
	a.submitVote(w, r, a.ledger.UpdateVote)
}

func (a *API) submitVote(w http.ResponseWriter, r *http.Request,
	submit func(caller, poolID common.Address, s *VoteRequest) error,
) {
	id, err := addressParam(r, PoolURLParam)
	if err != nil {
		writeErr(w, err)
		return
	}
	vote := &VoteRequest{}
	caller, err := decodeSigned(r, vote)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := submit(caller, id, vote); err != nil {
		log.Debugw("vote rejected", "pool", id.Hex(), "caller", caller.Hex(), "error", err.Error())
		writeErr(w, err)
		return
	}
	httpWriteOK(w)
}

// vote returns a stored vote with its inclusion proof against the current
// pool root.
// GET /pools/{poolId}/votes/{voteId}
func (a *API) vote(w http.ResponseWriter, r *http.Request) {
	id, err := addressParam(r, PoolURLParam)
	if err != nil {
		writeErr(w, err)
		return
	}
	voteID, err := hexParam(r, VoteURLParam)
	if err != nil {
		writeErr(w, err)
		return
	}
	rec, err := a.ledger.Vote(id, voteID)
	if err != nil {
		writeErr(w, err)
		return
	}
	proof, err := a.ledger.VoteProof(id, voteID)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpWriteJSON(w, &VoteResponse{
		VoteID:    voteID,
		Vote:      rec.Vote,
		Proof:     rec.Proof,
		Index:     rec.Index,
		UpdatedAt: rec.UpdatedAt,
		Inclusion: proof,
	})
}

// votesRoot returns the commitment root over the latest pool votes.
// GET /pools/{poolId}/root
func (a *API) votesRoot(w http.ResponseWriter, r *http.Request) {
	id, err := addressParam(r, PoolURLParam)
	if err != nil {
		writeErr(w, err)
		return
	}
	count, err := a.ledger.VoteCount(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	root, err := a.ledger.VotesRoot(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpWriteJSON(w, &RootResponse{Pool: id, Root: root, VoteCount: count})
}

// createPool creates a pool for an election, owned by the signer.
// POST /pools
func (a *API) createPool(w http.ResponseWriter, r *http.Request) {
	req := &CreatePoolRequest{}
	a.managedCreate(w, r, req, func(caller common.Address) (*CreatedResponse, error) {
		id, err := a.ledger.CreatePool(caller, req.Election, req.Gateway, req.UID)
		if err != nil {
			return nil, err
		}
		return &CreatedResponse{ID: id}, nil
	})
}

// poolBallot links or unlinks a ballot on the pool side. Signed by an admin.
// POST /pools/{poolId}/ballots
func (a *API) poolBallot(w http.ResponseWriter, r *http.Request) {
	req := &MemberRequest{}
	a.managedWrite(w, r, PoolURLParam, req, func(caller, id common.Address) error {
		if req.Remove {
			return a.ledger.RemoveBallotFromPool(caller, id, req.Member)
		}
		return a.ledger.AddBallotToPool(caller, id, req.Member)
	})
}

// poolAuth adds an auth id or sets the auth id list reference, one per
// request. Signed by an admin.
// POST /pools/{poolId}/auth
func (a *API) poolAuth(w http.ResponseWriter, r *http.Request) {
	req := &PoolAuthRequest{}
	a.managedWrite(w, r, PoolURLParam, req, func(caller, id common.Address) error {
		switch {
		case req.AuthID != "" && req.Ref != "":
			return ErrMalformedBody.Withf("set either authId or ref")
		case req.Ref != "":
			return a.ledger.SetAuthIDRef(caller, id, req.Ref)
		default:
			return a.ledger.AddAuthID(caller, id, req.AuthID)
		}
	})
}
