package api

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
)

// ballot returns the ballot info with its groups
// GET /ballots/{ballotId}
func (a *API) ballot(w http.ResponseWriter, r *http.Request) {
	id, err := addressParam(r, BallotURLParam)
	if err != nil {
		writeErr(w, err)
		return
	}
	b, err := a.ledger.Ballot(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	groups := make([]GroupInfo, 0, b.Groups.Count())
	for _, name := range b.Groups.Members() {
		info := GroupInfo{Name: name}
		if members, ok := b.GroupPools[name]; ok {
			info.Pools = members.Members()
		}
		groups = append(groups, info)
	}
	httpWriteJSON(w, &BallotResponse{
		ID:          b.ID,
		Election:    b.Election,
		Phase:       b.Phase.Current(),
		Access:      accessInfo(&b.Access),
		MetadataRef: b.MetadataRef,
		Pools:       b.Pools.Members(),
		Groups:      groups,
		CreatedAt:   b.CreatedAt,
	})
}

// groupVotes returns every vote stored in the pools of a ballot group.
// GET /ballots/{ballotId}/groups/{group}/votes
func (a *API) groupVotes(w http.ResponseWriter, r *http.Request) {
	id, err := addressParam(r, BallotURLParam)
	if err != nil {
		writeErr(w, err)
		return
	}
	group := chi.URLParam(r, GroupURLParam)
	votes, err := a.ledger.VotesByGroup(id, group)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpWriteJSON(w, &VotesResponse{Ballot: id, Group: group, Votes: votes})
}

// createBallot creates a ballot for an election, owned by the signer.
// POST /ballots
func (a *API) createBallot(w http.ResponseWriter, r *http.Request) {
	req := &CreateBallotRequest{}
	a.managedCreate(w, r, req, func(caller common.Address) (*CreatedResponse, error) {
		id, err := a.ledger.CreateBallot(caller, req.Election, req.Admin, req.MetadataRef)
		if err != nil {
			return nil, err
		}
		return &CreatedResponse{ID: id}, nil
	})
}

// ballotGroup adds or removes a group. Signed by an admin.
// POST /ballots/{ballotId}/groups
func (a *API) ballotGroup(w http.ResponseWriter, r *http.Request) {
	req := &GroupRequest{}
	a.managedWrite(w, r, BallotURLParam, req, func(caller, id common.Address) error {
		if req.Remove {
			return a.ledger.RemoveGroup(caller, id, req.Group)
		}
		return a.ledger.AddGroup(caller, id, req.Group)
	})
}

// ballotPool links or unlinks a pool on the ballot side, or moves it in or
// out of a group when one is given. Signed by an admin.
// POST /ballots/{ballotId}/pools
func (a *API) ballotPool(w http.ResponseWriter, r *http.Request) {
	req := &BallotPoolRequest{}
	a.managedWrite(w, r, BallotURLParam, req, func(caller, id common.Address) error {
		switch {
		case req.Group != "" && req.Remove:
			return a.ledger.RemovePoolFromGroup(caller, id, req.Pool, req.Group)
		case req.Group != "":
			return a.ledger.AddPoolToGroup(caller, id, req.Pool, req.Group)
		case req.Remove:
			return a.ledger.RemovePoolFromBallot(caller, id, req.Pool)
		default:
			return a.ledger.AddPoolToBallot(caller, id, req.Pool)
		}
	})
}
