package ledger

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/types"
)

// EventType identifies what a committed call changed.
type EventType string

const (
	EventCreated       EventType = "created"
	EventPhaseChanged  EventType = "phase_changed"
	EventVoteCast      EventType = "vote_cast"
	EventVoteUpdated   EventType = "vote_updated"
	EventVoteSpent     EventType = "vote_spent"
	EventMinted        EventType = "minted"
	EventTransferred   EventType = "transferred"
	EventVotesAdded    EventType = "votes_added"
	EventVotesDeducted EventType = "votes_deducted"
	EventKeyPublished  EventType = "key_published"
	EventKeyReleased   EventType = "key_released"
)

// Event describes one effect of a committed ledger call.
type Event struct {
	Type   EventType      `json:"type"`
	Kind   types.Kind     `json:"kind"`
	Entity common.Address `json:"entity"`
	Caller common.Address `json:"caller"`
	// Target is the other principal involved, if any (recipient, election).
	Target common.Address `json:"target,omitempty"`
	Phase  types.Phase    `json:"phase,omitempty"`
	VoteID types.HexBytes `json:"voteId,omitempty"`
	Amount *types.BigInt  `json:"amount,omitempty"`
	Time   time.Time      `json:"time"`
}
