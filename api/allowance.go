package api

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
)

// createAllowance creates a vote allowance owned by the signer.
// POST /allowances
func (a *API) createAllowance(w http.ResponseWriter, r *http.Request) {
	a.managedCreate(w, r, &Stamp{}, func(caller common.Address) (*CreatedResponse, error) {
		id, err := a.ledger.CreateAllowance(caller)
		if err != nil {
			return nil, err
		}
		return &CreatedResponse{ID: id}, nil
	})
}

// addAllowanceVotes grants votes to an account. Signed by an admin.
// POST /allowances/{allowanceId}/votes
func (a *API) addAllowanceVotes(w http.ResponseWriter, r *http.Request) {
	req := &AllowanceVotesRequest{}
	a.managedWrite(w, r, AllowanceURLParam, req, func(caller, id common.Address) error {
		return a.ledger.AddVotes(caller, id, req.Account, req.Votes)
	})
}

// allowanceElection lets the signing account allow or disallow an election
// to deduct from its votes.
// POST /allowances/{allowanceId}/elections
func (a *API) allowanceElection(w http.ResponseWriter, r *http.Request) {
	req := &MemberRequest{}
	a.managedWrite(w, r, AllowanceURLParam, req, func(caller, id common.Address) error {
		if req.Remove {
			return a.ledger.RemoveAccountElection(caller, id, req.Member)
		}
		return a.ledger.AddAccountElection(caller, id, req.Member)
	})
}

// allowanceAccount returns the votes left to an account
// GET /allowances/{allowanceId}/accounts/{holder}
func (a *API) allowanceAccount(w http.ResponseWriter, r *http.Request) {
	id, err := addressParam(r, AllowanceURLParam)
	if err != nil {
		writeErr(w, err)
		return
	}
	account, err := addressParam(r, HolderURLParam)
	if err != nil {
		writeErr(w, err)
		return
	}
	votes, err := a.ledger.AllowanceOf(id, account)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpWriteJSON(w, &AllowanceResponse{Allowance: id, Account: account, Votes: votes})
}
