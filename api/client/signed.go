package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/vocdoni/ballotbox/api"
	"github.com/vocdoni/ballotbox/types"
)

// Signer signs request payloads. *ethereum.SignKeys implements it.
type Signer interface {
	SignEthereum(message []byte) ([]byte, error)
	Address() common.Address
}

// APIError is a non 200 answer of the server.
type APIError struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %d (code %d): %s", errCodeNot200, e.Status, e.Code, e.Message)
}

func newAPIError(status int, data []byte) *APIError {
	e := &APIError{Status: status}
	if err := json.Unmarshal(data, e); err != nil {
		e.Message = strings.TrimSpace(string(data))
	}
	return e
}

// SetSigner configures the key used to sign writes.
func (c *HTTPclient) SetSigner(s Signer) {
	c.signer = s
}

// signedRequest signs the JSON encoding of payload and sends it.
func (c *HTTPclient) signedRequest(method string, payload any, urlPath ...string) error {
	return c.signedCall(method, payload, nil, urlPath...)
}

// signedCall signs the JSON encoding of payload, sends it and decodes the
// answer into out, if not nil.
func (c *HTTPclient) signedCall(method string, payload, out any, urlPath ...string) error {
	if c.signer == nil {
		return fmt.Errorf("no signer configured")
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	sig, err := c.signer.SignEthereum(raw)
	if err != nil {
		return fmt.Errorf("failed to sign payload: %w", err)
	}
	data, status, err := c.Request(method, &api.SignedRequest{Payload: raw, Signature: sig}, nil, urlPath...)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return newAPIError(status, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("could not unmarshal response: %w", err)
	}
	return nil
}

func poolVotesPath(pool common.Address) string {
	return strings.Replace(api.PoolVotesEndpoint, "{"+api.PoolURLParam+"}", pool.Hex(), 1)
}

func fillNonce(v *api.VoteRequest) {
	if len(v.Nonce) == 0 {
		id := uuid.New()
		v.Nonce = id[:]
	}
}

// CastVote submits a new vote to pool, signed as the gateway. A random
// nonce is used when v has none.
func (c *HTTPclient) CastVote(pool common.Address, v *api.VoteRequest) error {
	fillNonce(v)
	return c.signedRequest(HTTPPOST, v, poolVotesPath(pool))
}

// UpdateVote overwrites a vote in pool, signed as the gateway. A random
// nonce is used when v has none.
func (c *HTTPclient) UpdateVote(pool common.Address, v *api.VoteRequest) error {
	fillNonce(v)
	return c.signedRequest(HTTPPUT, v, poolVotesPath(pool))
}

// SetElectionKeys publishes or releases the election keys, signed as the
// revealer.
func (c *HTTPclient) SetElectionKeys(election common.Address, keys *api.KeysRequest) error {
	p := strings.Replace(api.ElectionKeysEndpoint, "{"+api.ElectionURLParam+"}", election.Hex(), 1)
	return c.signedRequest(HTTPPOST, keys, p)
}

// Election returns the election info.
func (c *HTTPclient) Election(id common.Address) (*api.ElectionResponse, error) {
	out := &api.ElectionResponse{}
	return out, c.getJSON(out, nil, "elections", id.Hex())
}

// Pool returns the pool info.
func (c *HTTPclient) Pool(id common.Address) (*api.PoolResponse, error) {
	out := &api.PoolResponse{}
	return out, c.getJSON(out, nil, "pools", id.Hex())
}

// Vote returns a stored vote with its inclusion proof.
func (c *HTTPclient) Vote(pool common.Address, voteID types.HexBytes) (*api.VoteResponse, error) {
	out := &api.VoteResponse{}
	return out, c.getJSON(out, nil, "pools", pool.Hex(), "votes", voteID.String())
}

// VotesRoot returns the commitment root over the votes of pool.
func (c *HTTPclient) VotesRoot(pool common.Address) (*api.RootResponse, error) {
	out := &api.RootResponse{}
	return out, c.getJSON(out, nil, "pools", pool.Hex(), "root")
}

// GroupVotes returns the votes of every pool in a ballot group.
func (c *HTTPclient) GroupVotes(ballot common.Address, group string) (*api.VotesResponse, error) {
	out := &api.VotesResponse{}
	return out, c.getJSON(out, nil, "ballots", ballot.Hex(), "groups", group, "votes")
}

// Utilization returns the votes spent on token since the given time.
func (c *HTTPclient) Utilization(token common.Address, since time.Time) (*api.UtilizationResponse, error) {
	out := &api.UtilizationResponse{}
	params := []string{api.SinceQueryParam, strconv.FormatInt(since.Unix(), 10)}
	return out, c.getJSON(out, params, "tokens", token.Hex(), "utilization")
}
