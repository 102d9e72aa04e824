// Package state builds the vote commitment tree of a pool: a sparse merkle
// tree whose leaves map sha256(voteId) to sha256(vote). Publishing its root
// lets anybody check that a given vote is the one stored for a vote id.
package state

import (
	"crypto/sha256"
	"fmt"

	"github.com/vocdoni/arbo"
	"github.com/vocdoni/arbo/memdb"
)

const (
	// MaxLevels is the depth of the vote tree.
	MaxLevels = 256
	// MaxKeyLen is ceil(MaxLevels/8)
	MaxKeyLen = (MaxLevels + 7) / 8
)

// hashFunc is the hash function used in the vote tree.
var hashFunc = arbo.HashFunctionSha256

// Leaf is one stored vote.
type Leaf struct {
	VoteID []byte
	Vote   []byte
}

// VoteTree is an in-memory commitment tree over a set of leaves.
type VoteTree struct {
	tree *arbo.Tree
}

// New builds the tree holding leaves. Vote ids must be unique.
func New(leaves []Leaf) (*VoteTree, error) {
	tree, err := arbo.NewTree(arbo.Config{
		Database:     memdb.New(),
		MaxLevels:    MaxLevels,
		HashFunction: hashFunc,
	})
	if err != nil {
		return nil, err
	}
	for _, l := range leaves {
		if err := tree.Add(LeafKey(l.VoteID), LeafValue(l.Vote)); err != nil {
			return nil, fmt.Errorf("add vote %x: %w", l.VoteID, err)
		}
	}
	return &VoteTree{tree: tree}, nil
}

// Root returns the tree root.
func (t *VoteTree) Root() ([]byte, error) {
	return t.tree.Root()
}

// LeafKey returns the tree key of a vote id.
func LeafKey(voteID []byte) []byte {
	h := sha256.Sum256(voteID)
	return h[:]
}

// LeafValue returns the tree value of a vote.
func LeafValue(vote []byte) []byte {
	h := sha256.Sum256(vote)
	return h[:]
}
