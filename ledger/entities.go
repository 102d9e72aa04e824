package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/access"
	"github.com/vocdoni/ballotbox/keyholder"
	"github.com/vocdoni/ballotbox/phase"
	"github.com/vocdoni/ballotbox/registry"
	"github.com/vocdoni/ballotbox/types"
)

// GroupAll is the implicit group every ballot starts with. Pools linked to
// a ballot join it automatically.
const GroupAll = "ALL"

// Election is the top level component: it owns the canonical ballot and
// pool registries and custodies the election key pair.
type Election struct {
	ID           common.Address
	UID          string
	Access       access.Control
	Phase        phase.Machine
	Keys         keyholder.Holder
	Ballots      registry.Registry[common.Address]
	Pools        registry.Registry[common.Address]
	AllowUpdates bool
	AutoActivate bool
	Gateway      common.Address
	MetadataRef  string
	VoteSource   common.Address
	SourceKind   types.Kind
	VoteOwner    common.Address
	// BalanceDate is the unix time of the token balance snapshot, zero if
	// unset.
	BalanceDate int64
	CreatedAt   int64
}

// Ballot maps the pools linked to it into named groups.
type Ballot struct {
	ID          common.Address
	Election    common.Address
	MetadataRef string
	Access      access.Control
	Phase       phase.Machine
	Pools       registry.Registry[common.Address]
	Groups      registry.Registry[string]
	// GroupPools holds the pools of every group, keyed by group name.
	GroupPools map[string]*registry.Registry[common.Address]
	// PoolGroups holds the groups of every linked pool, keyed by the pool
	// address in hex.
	PoolGroups map[string]*registry.Registry[string]
	CreatedAt  int64
}

// Pool is the vote intake of an election. Votes themselves are stored
// outside the entity, under the pool vote prefixes.
type Pool struct {
	ID        common.Address
	UID       string
	Election  common.Address
	Gateway   common.Address
	Access    access.Control
	Phase     phase.Machine
	Ballots   registry.Registry[common.Address]
	AuthIDs   registry.Registry[string]
	AuthIDRef string
	VoteCount uint64
	CreatedAt int64
}

// SpendMode selects what happens to the unit consumed by a vote.
type SpendMode uint8

const (
	// SpendRestake moves the spent unit to the stake sink.
	SpendRestake SpendMode = iota
	// SpendBurn destroys the spent unit.
	SpendBurn
)

func (m SpendMode) String() string {
	if m == SpendBurn {
		return "burn"
	}
	return "restake"
}

// Token is a fungible vote token. Balances, allowed elections and
// utilization buckets are stored outside the entity.
type Token struct {
	ID             common.Address
	Access         access.Control
	Minters        registry.Registry[common.Address]
	Stake          common.Address
	GenerationRate uint64
	Mode           SpendMode
	// Granularity is the utilization bucket width in seconds.
	Granularity uint64
	Unit        *types.BigInt
	Supply      *types.BigInt
	CreatedAt   int64
}

// Allowance is a per-account vote allowance. Account balances and the
// elections allowed to deduct from them are stored outside the entity.
type Allowance struct {
	ID        common.Address
	Access    access.Control
	CreatedAt int64
}

// VoteRecord is a stored vote.
type VoteRecord struct {
	Vote      []byte
	Proof     string
	Index     uint64
	UpdatedAt int64
}

// controlled is implemented by every entity with access control.
type controlled interface {
	control() *access.Control
}

// phased is implemented by elections, ballots and pools.
type phased interface {
	controlled
	machine() *phase.Machine
}

func (e *Election) control() *access.Control { return &e.Access }
func (e *Election) machine() *phase.Machine { return &e.Phase }
func (b *Ballot) control() *access.Control { return &b.Access }
func (b *Ballot) machine() *phase.Machine { return &b.Phase }
func (p *Pool) control() *access.Control { return &p.Access }
func (p *Pool) machine() *phase.Machine { return &p.Phase }
func (tk *Token) control() *access.Control { return &tk.Access }
func (a *Allowance) control() *access.Control { return &a.Access }
