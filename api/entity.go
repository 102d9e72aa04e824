package api

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/types"
)

// entity returns the kind, phase and lock flag of any entity
// GET /entities/{entityId}
func (a *API) entity(w http.ResponseWriter, r *http.Request) {
	id, err := addressParam(r, EntityURLParam)
	if err != nil {
		writeErr(w, err)
		return
	}
	kind, err := a.ledger.KindOf(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	locked, err := a.ledger.IsLocked(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	resp := &EntityResponse{ID: id, Kind: kind, Locked: locked}
	switch kind {
	case types.KindElection, types.KindBallot, types.KindPool:
		phase, err := a.ledger.Phase(id)
		if err != nil {
			writeErr(w, err)
			return
		}
		resp.Phase = &phase
	}
	httpWriteJSON(w, resp)
}

// setPhase activates, closes or aborts an election, ballot or pool. Signed
// by an admin.
// POST /entities/{entityId}/phase
func (a *API) setPhase(w http.ResponseWriter, r *http.Request) {
	req := &PhaseRequest{}
	a.managedWrite(w, r, EntityURLParam, req, func(caller, id common.Address) error {
		switch req.Action {
		case PhaseActivate:
			return a.ledger.Activate(caller, id)
		case PhaseClose:
			return a.ledger.Close(caller, id)
		case PhaseAbort:
			return a.ledger.Abort(caller, id)
		default:
			return ErrMalformedAction.Withf("%q", req.Action)
		}
	})
}

// setAdmin grants or revokes admin rights. Removing the caller itself drops
// its own rights, any other removal is reserved to the owner.
// POST /entities/{entityId}/admins
func (a *API) setAdmin(w http.ResponseWriter, r *http.Request) {
	req := &MemberRequest{}
	a.managedWrite(w, r, EntityURLParam, req, func(caller, id common.Address) error {
		switch {
		case !req.Remove:
			return a.ledger.AddAdmin(caller, id, req.Member)
		case req.Member == caller:
			return a.ledger.RemoveSelf(caller, id)
		default:
			return a.ledger.RemoveAdmin(caller, id, req.Member)
		}
	})
}

// setAuthorized edits the external authorization list. Signed by an admin.
// POST /entities/{entityId}/authorized
func (a *API) setAuthorized(w http.ResponseWriter, r *http.Request) {
	req := &MemberRequest{}
	a.managedWrite(w, r, EntityURLParam, req, func(caller, id common.Address) error {
		if req.Remove {
			return a.ledger.RemoveAuthorized(caller, id, req.Member)
		}
		return a.ledger.AddAuthorized(caller, id, req.Member)
	})
}

// setLock sets or clears the lock flag. Signed by an admin.
// POST /entities/{entityId}/lock
func (a *API) setLock(w http.ResponseWriter, r *http.Request) {
	req := &LockRequest{}
	a.managedWrite(w, r, EntityURLParam, req, func(caller, id common.Address) error {
		if req.Locked {
			return a.ledger.Lock(caller, id)
		}
		return a.ledger.Unlock(caller, id)
	})
}
