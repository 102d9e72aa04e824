package api

// URL parameters
const (
	ElectionURLParam  = "electionId"
	BallotURLParam    = "ballotId"
	PoolURLParam      = "poolId"
	TokenURLParam     = "tokenId"
	HolderURLParam    = "holder"
	GroupURLParam     = "group"
	VoteURLParam      = "voteId"
	EntityURLParam    = "entityId"
	AllowanceURLParam = "allowanceId"
	// SinceQueryParam is the unix time utilization is counted from.
	SinceQueryParam = "since"
)

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// MetricsEndpoint serves prometheus metrics, when enabled
	MetricsEndpoint = "/metrics"

	// EntityEndpoint returns the kind, phase and access control of any entity
	EntityEndpoint = "/entities/{" + EntityURLParam + "}"
	// EntityPhaseEndpoint activates, closes or aborts an election, ballot
	// or pool
	EntityPhaseEndpoint = EntityEndpoint + "/phase"
	// EntityAdminsEndpoint adds or removes admins
	EntityAdminsEndpoint = EntityEndpoint + "/admins"
	// EntityAuthorizedEndpoint edits the external authorization list
	EntityAuthorizedEndpoint = EntityEndpoint + "/authorized"
	// EntityLockEndpoint sets or clears the lock flag
	EntityLockEndpoint = EntityEndpoint + "/lock"

	// ElectionsEndpoint creates an election, optionally with its pool and
	// ballot
	ElectionsEndpoint = "/elections"
	// ElectionEndpoint returns the election info
	ElectionEndpoint = "/elections/{" + ElectionURLParam + "}"
	// ElectionBallotsEndpoint registers or drops a ballot
	ElectionBallotsEndpoint = ElectionEndpoint + "/ballots"
	// ElectionPoolsEndpoint registers or drops a pool
	ElectionPoolsEndpoint = ElectionEndpoint + "/pools"
	// ElectionVoteOwnerEndpoint changes the account funding the election
	ElectionVoteOwnerEndpoint = ElectionEndpoint + "/voteOwner"
	// ElectionWithdrawEndpoint returns unspent tokens to the vote owner
	ElectionWithdrawEndpoint = ElectionEndpoint + "/withdraw"
	// ElectionKeysEndpoint publishes the election public key or releases
	// its private key. Signed by the revealer.
	ElectionKeysEndpoint = ElectionEndpoint + "/keys"

	// BallotsEndpoint creates a ballot
	BallotsEndpoint = "/ballots"
	// BallotEndpoint returns the ballot info and its groups
	BallotEndpoint = "/ballots/{" + BallotURLParam + "}"
	// BallotGroupsEndpoint adds or removes a group
	BallotGroupsEndpoint = BallotEndpoint + "/groups"
	// BallotPoolsEndpoint links a pool to the ballot or to one of its groups
	BallotPoolsEndpoint = BallotEndpoint + "/pools"
	// BallotGroupVotesEndpoint returns the votes of every pool in a group
	BallotGroupVotesEndpoint = BallotEndpoint + "/groups/{" + GroupURLParam + "}/votes"

	// PoolsEndpoint creates a pool
	PoolsEndpoint = "/pools"
	// PoolEndpoint returns the pool info
	PoolEndpoint = "/pools/{" + PoolURLParam + "}"
	// PoolBallotsEndpoint links or unlinks a ballot on the pool side
	PoolBallotsEndpoint = PoolEndpoint + "/ballots"
	// PoolAuthEndpoint adds an auth id or sets the auth id list reference
	PoolAuthEndpoint = PoolEndpoint + "/auth"
	// PoolCheckEndpoint reports whether the pool is fully linked
	PoolCheckEndpoint = PoolEndpoint + "/check"
	// PoolVotesEndpoint accepts signed votes: POST casts, PUT updates
	PoolVotesEndpoint = PoolEndpoint + "/votes"
	// PoolVoteEndpoint returns a stored vote with its inclusion proof
	PoolVoteEndpoint = PoolVotesEndpoint + "/{" + VoteURLParam + "}"
	// PoolRootEndpoint returns the commitment root over the pool votes
	PoolRootEndpoint = PoolEndpoint + "/root"

	// TokensEndpoint creates a vote token
	TokensEndpoint = "/tokens"
	// TokenEndpoint returns the token info
	TokenEndpoint = "/tokens/{" + TokenURLParam + "}"
	// TokenMintEndpoint mints new units
	TokenMintEndpoint = TokenEndpoint + "/mint"
	// TokenTransferEndpoint moves units from the caller
	TokenTransferEndpoint = TokenEndpoint + "/transfer"
	// TokenMintersEndpoint adds or removes minters
	TokenMintersEndpoint = TokenEndpoint + "/minters"
	// TokenElectionsEndpoint allows or disallows an election to spend
	TokenElectionsEndpoint = TokenEndpoint + "/elections"
	// TokenGranularityEndpoint changes the utilization bucket width
	TokenGranularityEndpoint = TokenEndpoint + "/granularity"
	// TokenBalanceEndpoint returns the balance of a holder
	TokenBalanceEndpoint = TokenEndpoint + "/balances/{" + HolderURLParam + "}"
	// TokenUtilizationEndpoint returns the spends recorded since a time
	TokenUtilizationEndpoint = TokenEndpoint + "/utilization"

	// AllowancesEndpoint creates a vote allowance
	AllowancesEndpoint = "/allowances"
	// AllowanceEndpoint is the base path of one allowance
	AllowanceEndpoint = "/allowances/{" + AllowanceURLParam + "}"
	// AllowanceVotesEndpoint grants votes to an account
	AllowanceVotesEndpoint = AllowanceEndpoint + "/votes"
	// AllowanceElectionsEndpoint lets an account owner allow or disallow an
	// election
	AllowanceElectionsEndpoint = AllowanceEndpoint + "/elections"
	// AllowanceAccountEndpoint returns the votes left to an account
	AllowanceAccountEndpoint = AllowanceEndpoint + "/accounts/{" + HolderURLParam + "}"
)
