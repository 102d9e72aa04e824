package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/state"
	"github.com/vocdoni/ballotbox/types"
)

func (t *txn) voteTree(poolID common.Address) (*state.VoteTree, error) {
	if _, err := t.pool(poolID); err != nil {
		return nil, err
	}
	votes, err := t.poolVotes(poolID)
	if err != nil {
		return nil, err
	}
	leaves := make([]state.Leaf, 0, len(votes))
	for voteID, vote := range votes {
		leaves = append(leaves, state.Leaf{VoteID: []byte(voteID), Vote: vote})
	}
	return state.New(leaves)
}

// VotesRoot returns the root of the commitment tree over the latest votes
// stored in pool.
func (l *Ledger) VotesRoot(poolID common.Address) (types.HexBytes, error) {
	var root []byte
	err := l.view(func(t *txn) error {
		tree, err := t.voteTree(poolID)
		if err != nil {
			return err
		}
		root, err = tree.Root()
		return err
	})
	return root, err
}

// VoteProof returns the inclusion proof of voteID in the commitment tree of
// pool. A vote id without a stored vote yields types.ErrNotFound.
func (l *Ledger) VoteProof(poolID common.Address, voteID []byte) (*state.Proof, error) {
	var proof *state.Proof
	err := l.view(func(t *txn) error {
		if _, err := t.vote(poolID, voteID); err != nil {
			return err
		}
		tree, err := t.voteTree(poolID)
		if err != nil {
			return err
		}
		proof, err = tree.GenProof(voteID)
		return err
	})
	return proof, err
}
