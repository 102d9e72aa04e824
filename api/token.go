package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/ledger"
)

// spendModes maps the request names of the spend modes.
var spendModes = map[string]ledger.SpendMode{
	"":        ledger.SpendRestake,
	"restake": ledger.SpendRestake,
	"burn":    ledger.SpendBurn,
}

// granularity converts a bucket width in seconds.
func granularity(seconds uint64) (time.Duration, error) {
	if seconds > math.MaxInt64/uint64(time.Second) {
		return 0, ErrMalformedBody.Withf("granularity %d too large", seconds)
	}
	return time.Duration(seconds) * time.Second, nil
}

// token returns the token info
// GET /tokens/{tokenId}
func (a *API) token(w http.ResponseWriter, r *http.Request) {
	id, err := addressParam(r, TokenURLParam)
	if err != nil {
		writeErr(w, err)
		return
	}
	tk, err := a.ledger.Token(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpWriteJSON(w, &TokenResponse{
		ID:             tk.ID,
		Access:         accessInfo(&tk.Access),
		Stake:          tk.Stake,
		GenerationRate: tk.GenerationRate,
		Mode:           tk.Mode.String(),
		Granularity:    tk.Granularity,
		Unit:           tk.Unit,
		Supply:         tk.Supply,
		CreatedAt:      tk.CreatedAt,
	})
}

// balance returns the token balance of a holder
// GET /tokens/{tokenId}/balances/{holder}
func (a *API) balance(w http.ResponseWriter, r *http.Request) {
	id, err := addressParam(r, TokenURLParam)
	if err != nil {
		writeErr(w, err)
		return
	}
	holder, err := addressParam(r, HolderURLParam)
	if err != nil {
		writeErr(w, err)
		return
	}
	balance, err := a.ledger.BalanceOf(id, holder)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpWriteJSON(w, &BalanceResponse{Token: id, Holder: holder, Balance: balance})
}

// utilization returns the votes spent and the non-empty windows since a
// unix time, zero when not given.
// GET /tokens/{tokenId}/utilization?since=<unix>
func (a *API) utilization(w http.ResponseWriter, r *http.Request) {
	id, err := addressParam(r, TokenURLParam)
	if err != nil {
		writeErr(w, err)
		return
	}
	var since int64
	if s := r.URL.Query().Get(SinceQueryParam); s != "" {
		if since, err = strconv.ParseInt(s, 10, 64); err != nil || since < 0 {
			ErrMalformedParam.Withf("%s %q", SinceQueryParam, s).Write(w)
			return
		}
	}
	ts := time.Unix(since, 0)
	votes, err := a.ledger.UtilizationSince(id, ts)
	if err != nil {
		writeErr(w, err)
		return
	}
	windows, err := a.ledger.WindowCountSince(id, ts)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpWriteJSON(w, &UtilizationResponse{Token: id, Since: since, Votes: votes, Windows: windows})
}

// createToken creates a vote token owned by the signer.
// POST /tokens
func (a *API) createToken(w http.ResponseWriter, r *http.Request) {
	req := &CreateTokenRequest{}
	a.managedCreate(w, r, req, func(caller common.Address) (*CreatedResponse, error) {
		mode, ok := spendModes[req.Mode]
		if !ok {
			return nil, ErrMalformedBody.Withf("unknown spend mode %q", req.Mode)
		}
		width, err := granularity(req.Granularity)
		if err != nil {
			return nil, err
		}
		id, err := a.ledger.CreateToken(caller, &ledger.TokenConfig{
			Stake:          req.Stake,
			GenerationRate: req.GenerationRate,
			Mode:           mode,
			Granularity:    width,
			Unit:           req.Unit,
		})
		if err != nil {
			return nil, err
		}
		return &CreatedResponse{ID: id}, nil
	})
}

// mint creates new units. Signed by the owner or a minter.
// POST /tokens/{tokenId}/mint
func (a *API) mint(w http.ResponseWriter, r *http.Request) {
	req := &AmountRequest{}
	a.managedWrite(w, r, TokenURLParam, req, func(caller, id common.Address) error {
		return a.ledger.Mint(caller, id, req.To, req.Amount)
	})
}

// transfer moves units from the signer.
// POST /tokens/{tokenId}/transfer
func (a *API) transfer(w http.ResponseWriter, r *http.Request) {
	req := &AmountRequest{}
	a.managedWrite(w, r, TokenURLParam, req, func(caller, id common.Address) error {
		return a.ledger.Transfer(caller, id, req.To, req.Amount)
	})
}

// tokenMinter adds or removes a minter. Signed by the owner.
// POST /tokens/{tokenId}/minters
func (a *API) tokenMinter(w http.ResponseWriter, r *http.Request) {
	req := &MemberRequest{}
	a.managedWrite(w, r, TokenURLParam, req, func(caller, id common.Address) error {
		if req.Remove {
			return a.ledger.RemoveMinter(caller, id, req.Member)
		}
		return a.ledger.AddMinter(caller, id, req.Member)
	})
}

// tokenElection allows or disallows an election to spend. Signed by an
// admin.
// POST /tokens/{tokenId}/elections
func (a *API) tokenElection(w http.ResponseWriter, r *http.Request) {
	req := &MemberRequest{}
	a.managedWrite(w, r, TokenURLParam, req, func(caller, id common.Address) error {
		if req.Remove {
			return a.ledger.RemoveElection(caller, id, req.Member)
		}
		return a.ledger.AddElection(caller, id, req.Member)
	})
}

// setGranularity changes the utilization bucket width. Signed by the owner.
// POST /tokens/{tokenId}/granularity
func (a *API) setGranularity(w http.ResponseWriter, r *http.Request) {
	req := &GranularityRequest{}
	a.managedWrite(w, r, TokenURLParam, req, func(caller, id common.Address) error {
		width, err := granularity(req.Granularity)
		if err != nil {
			return err
		}
		return a.ledger.SetGranularity(caller, id, width)
	})
}
