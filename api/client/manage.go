package client

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/api"
	"github.com/vocdoni/ballotbox/types"
)

// Stamped is implemented by every management payload of the api package.
type Stamped interface {
	StampAt(t time.Time)
}

// Manage signs and posts a management payload to endpoint, one of the api
// *Endpoint constants, with its URL parameter replaced by id. The payload
// is stamped with the current time unless it already carries a timestamp.
// The answer is decoded into out when not nil.
func (c *HTTPclient) Manage(endpoint string, id common.Address, req Stamped, out any) error {
	req.StampAt(time.Now())
	return c.signedCall(HTTPPOST, req, out, fillParam(endpoint, id))
}

// fillParam replaces the first URL parameter of endpoint with id.
func fillParam(endpoint string, id common.Address) string {
	start := strings.Index(endpoint, "{")
	end := strings.Index(endpoint, "}")
	if start < 0 || end < start {
		return endpoint
	}
	return endpoint[:start] + id.Hex() + endpoint[end+1:]
}

// CreateToken creates a vote token owned by the signer.
func (c *HTTPclient) CreateToken(req *api.CreateTokenRequest) (common.Address, error) {
	out := &api.CreatedResponse{}
	if err := c.Manage(api.TokensEndpoint, common.Address{}, req, out); err != nil {
		return common.Address{}, err
	}
	return out.ID, nil
}

// Mint mints amount units of token to the given holder.
func (c *HTTPclient) Mint(token, to common.Address, amount *types.BigInt) error {
	return c.Manage(api.TokenMintEndpoint, token, &api.AmountRequest{To: to, Amount: amount}, nil)
}

// Transfer moves amount units of token from the signer.
func (c *HTTPclient) Transfer(token, to common.Address, amount *types.BigInt) error {
	return c.Manage(api.TokenTransferEndpoint, token, &api.AmountRequest{To: to, Amount: amount}, nil)
}

// AllowElection lets election spend from token.
func (c *HTTPclient) AllowElection(token, election common.Address) error {
	return c.Manage(api.TokenElectionsEndpoint, token, &api.MemberRequest{Member: election}, nil)
}

// CreateElection creates an election owned by the signer. The ids of the
// pool and ballot created along a basic election are set in the answer.
func (c *HTTPclient) CreateElection(req *api.CreateElectionRequest) (*api.CreatedResponse, error) {
	out := &api.CreatedResponse{}
	return out, c.Manage(api.ElectionsEndpoint, common.Address{}, req, out)
}

// SetPhase runs a lifecycle action, one of api.PhaseActivate, PhaseClose or
// PhaseAbort, on an election, ballot or pool.
func (c *HTTPclient) SetPhase(id common.Address, action string) error {
	return c.Manage(api.EntityPhaseEndpoint, id, &api.PhaseRequest{Action: action}, nil)
}

// Entity returns the kind, phase and lock flag of any entity.
func (c *HTTPclient) Entity(id common.Address) (*api.EntityResponse, error) {
	out := &api.EntityResponse{}
	return out, c.getJSON(out, nil, "entities", id.Hex())
}
