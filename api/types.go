package api

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/vocdoni/ballotbox/ledger"
	"github.com/vocdoni/ballotbox/state"
	"github.com/vocdoni/ballotbox/types"
)

// SignedRequest wraps the JSON payload of every write. Signature is the
// ethereum personal signature of the payload bytes; the recovered address
// is the caller.
type SignedRequest struct {
	Payload   json.RawMessage `json:"payload"`
	Signature types.HexBytes  `json:"signature"`
}

// VoteRequest is the payload of a vote cast or update, sent by the pool
// gateway.
type VoteRequest = ledger.Submission

// KeysRequest is the payload of a key custody write. Either key may be set;
// the public key is stored first.
type KeysRequest struct {
	PublicKey  types.HexBytes `json:"publicKey,omitempty"`
	PrivateKey types.HexBytes `json:"privateKey,omitempty"`
}

// AccessInfo is the public view of an access control.
type AccessInfo struct {
	Owner  common.Address   `json:"owner"`
	Admins []common.Address `json:"admins"`
	Locked bool             `json:"locked"`
}

// ElectionResponse is the response to an election info request.
type ElectionResponse struct {
	ID           common.Address   `json:"id"`
	UID          string           `json:"uid"`
	Phase        types.Phase      `json:"phase"`
	Access       AccessInfo       `json:"access"`
	Ballots      []common.Address `json:"ballots"`
	Pools        []common.Address `json:"pools"`
	AllowUpdates bool             `json:"allowUpdates"`
	Gateway      common.Address   `json:"gateway"`
	MetadataRef  string           `json:"metadataRef"`
	VoteSource   common.Address   `json:"voteSource"`
	SourceKind   types.Kind       `json:"sourceKind"`
	VoteOwner    common.Address   `json:"voteOwner"`
	Revealer     common.Address   `json:"revealer"`
	PublicKey    types.HexBytes   `json:"publicKey,omitempty"`
	PrivateKey   types.HexBytes   `json:"privateKey,omitempty"`
	BalanceDate  int64            `json:"balanceDate,omitempty"`
	CreatedAt    int64            `json:"createdAt"`
}

// GroupInfo lists the pools of one ballot group.
type GroupInfo struct {
	Name  string           `json:"name"`
	Pools []common.Address `json:"pools"`
}

// BallotResponse is the response to a ballot info request.
type BallotResponse struct {
	ID          common.Address   `json:"id"`
	Election    common.Address   `json:"election"`
	Phase       types.Phase      `json:"phase"`
	Access      AccessInfo       `json:"access"`
	MetadataRef string           `json:"metadataRef"`
	Pools       []common.Address `json:"pools"`
	Groups      []GroupInfo      `json:"groups"`
	CreatedAt   int64            `json:"createdAt"`
}

// PoolResponse is the response to a pool info request.
type PoolResponse struct {
	ID        common.Address   `json:"id"`
	UID       string           `json:"uid"`
	Election  common.Address   `json:"election"`
	Gateway   common.Address   `json:"gateway"`
	Phase     types.Phase      `json:"phase"`
	Access    AccessInfo       `json:"access"`
	Ballots   []common.Address `json:"ballots"`
	AuthIDs   int              `json:"authIds"`
	AuthIDRef string           `json:"authIdRef,omitempty"`
	VoteCount uint64           `json:"voteCount"`
	CreatedAt int64            `json:"createdAt"`
}

// CheckResponse is the response to a pool configuration check.
type CheckResponse struct {
	Pool common.Address `json:"pool"`
	OK   bool           `json:"ok"`
}

// VoteResponse is a stored vote with its inclusion proof.
type VoteResponse struct {
	VoteID    types.HexBytes `json:"voteId"`
	Vote      types.HexBytes `json:"vote"`
	Proof     string         `json:"proof,omitempty"`
	Index     uint64         `json:"index"`
	UpdatedAt int64          `json:"updatedAt"`
	Inclusion *state.Proof   `json:"inclusion"`
}

// VotesResponse is the response to a group tabulation request.
type VotesResponse struct {
	Ballot common.Address   `json:"ballot"`
	Group  string           `json:"group"`
	Votes  []types.HexBytes `json:"votes"`
}

// RootResponse is the commitment root over the votes of a pool.
type RootResponse struct {
	Pool      common.Address `json:"pool"`
	Root      types.HexBytes `json:"root"`
	VoteCount uint64         `json:"voteCount"`
}

// TokenResponse is the response to a token info request.
type TokenResponse struct {
	ID             common.Address `json:"id"`
	Access         AccessInfo     `json:"access"`
	Stake          common.Address `json:"stake"`
	GenerationRate uint64         `json:"generationRate"`
	Mode           string         `json:"mode"`
	Granularity    uint64         `json:"granularity"`
	Unit           *types.BigInt  `json:"unit"`
	Supply         *types.BigInt  `json:"supply"`
	CreatedAt      int64          `json:"createdAt"`
}

// BalanceResponse is the balance of one token holder.
type BalanceResponse struct {
	Token   common.Address `json:"token"`
	Holder  common.Address `json:"holder"`
	Balance *types.BigInt  `json:"balance"`
}

// UtilizationResponse counts the spends recorded since a time.
type UtilizationResponse struct {
	Token   common.Address `json:"token"`
	Since   int64          `json:"since"`
	Votes   uint64         `json:"votes"`
	Windows uint64         `json:"windows"`
}

// Stamp is carried by every management payload. Timestamp is the unix time
// the request was signed at; a payload is accepted once and only while the
// timestamp is within the request window of the server clock. Nonce tells
// apart identical requests signed within the same second.
type Stamp struct {
	Timestamp int64  `json:"timestamp"`
	Nonce     []byte `json:"nonce,omitempty"`
}

// StampAt sets the timestamp to t and draws a random nonce, keeping the
// values already set.
func (s *Stamp) StampAt(t time.Time) {
	if s.Timestamp == 0 {
		s.Timestamp = t.Unix()
	}
	if len(s.Nonce) == 0 {
		id := uuid.New()
		s.Nonce = id[:]
	}
}

// CreateTokenRequest is the payload of a token creation. Mode is "restake"
// (default) or "burn"; Granularity is the bucket width in seconds.
type CreateTokenRequest struct {
	Stamp
	Stake          common.Address `json:"stake"`
	GenerationRate uint64         `json:"generationRate"`
	Mode           string         `json:"mode,omitempty"`
	Granularity    uint64         `json:"granularity,omitempty"`
	Unit           *types.BigInt  `json:"unit,omitempty"`
}

// CreateElectionRequest is the payload of an election creation. With Basic
// set, one pool and one ballot are created and linked in the same call.
type CreateElectionRequest struct {
	Stamp
	ledger.ElectionConfig
	Basic             bool   `json:"basic,omitempty"`
	BallotMetadataRef string `json:"ballotMetadataRef,omitempty"`
}

// CreateBallotRequest is the payload of a ballot creation.
type CreateBallotRequest struct {
	Stamp
	Election    common.Address `json:"election"`
	Admin       common.Address `json:"admin"`
	MetadataRef string         `json:"metadataRef"`
}

// CreatePoolRequest is the payload of a pool creation.
type CreatePoolRequest struct {
	Stamp
	Election common.Address `json:"election"`
	Gateway  common.Address `json:"gateway"`
	UID      string         `json:"uid"`
}

// CreatedResponse returns the ids of the entities created by one call.
// Ballot and Pool are only set by basic election creations.
type CreatedResponse struct {
	ID     common.Address  `json:"id"`
	Ballot *common.Address `json:"ballot,omitempty"`
	Pool   *common.Address `json:"pool,omitempty"`
}

// MemberRequest adds Member to, or with Remove drops it from, a set owned
// by the addressed entity.
type MemberRequest struct {
	Stamp
	Member common.Address `json:"member"`
	Remove bool           `json:"remove,omitempty"`
}

// AmountRequest moves Amount units to To.
type AmountRequest struct {
	Stamp
	To     common.Address `json:"to"`
	Amount *types.BigInt  `json:"amount"`
}

// PhaseRequest moves an entity through its lifecycle. Action is one of
// PhaseActivate, PhaseClose or PhaseAbort.
type PhaseRequest struct {
	Stamp
	Action string `json:"action"`
}

// Lifecycle actions.
const (
	PhaseActivate = "activate"
	PhaseClose    = "close"
	PhaseAbort    = "abort"
)

// LockRequest sets or clears the lock flag.
type LockRequest struct {
	Stamp
	Locked bool `json:"locked"`
}

// GroupRequest adds or removes a ballot group.
type GroupRequest struct {
	Stamp
	Group  string `json:"group"`
	Remove bool   `json:"remove,omitempty"`
}

// BallotPoolRequest links a pool to a ballot or, with Group set, to one of
// its groups.
type BallotPoolRequest struct {
	Stamp
	Pool   common.Address `json:"pool"`
	Group  string         `json:"group,omitempty"`
	Remove bool           `json:"remove,omitempty"`
}

// PoolAuthRequest adds AuthID to the pool auth id list, or sets the list
// reference when Ref is given instead.
type PoolAuthRequest struct {
	Stamp
	AuthID string `json:"authId,omitempty"`
	Ref    string `json:"ref,omitempty"`
}

// GranularityRequest sets the utilization bucket width, in seconds.
type GranularityRequest struct {
	Stamp
	Granularity uint64 `json:"granularity"`
}

// AllowanceVotesRequest grants Votes to Account.
type AllowanceVotesRequest struct {
	Stamp
	Account common.Address `json:"account"`
	Votes   uint64         `json:"votes"`
}

// VoteOwnerRequest changes the vote owner of an election.
type VoteOwnerRequest struct {
	Stamp
	Owner common.Address `json:"owner"`
}

// WithdrawRequest returns Amount unspent units to the vote owner, every
// unspent unit when Amount is empty.
type WithdrawRequest struct {
	Stamp
	Amount *types.BigInt `json:"amount,omitempty"`
}

// EntityResponse is the kind and access control of any entity. Phase is only
// set for elections, ballots and pools.
type EntityResponse struct {
	ID     common.Address `json:"id"`
	Kind   types.Kind     `json:"kind"`
	Phase  *types.Phase   `json:"phase,omitempty"`
	Locked bool           `json:"locked"`
}

// AllowanceResponse is the number of votes left to an account.
type AllowanceResponse struct {
	Allowance common.Address `json:"allowance"`
	Account   common.Address `json:"account"`
	Votes     uint64         `json:"votes"`
}
