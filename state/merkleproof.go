package state

import (
	"fmt"

	"github.com/vocdoni/arbo"
	"github.com/vocdoni/ballotbox/types"
)

// Proof is an inclusion (or exclusion) proof of a vote id in a VoteTree.
type Proof struct {
	Root      types.HexBytes `json:"root"`
	Key       types.HexBytes `json:"key"`
	Value     types.HexBytes `json:"value"`
	Siblings  types.HexBytes `json:"siblings"`
	Existence bool           `json:"existence"`
}

// GenProof returns the proof for voteID. If the vote id is not in the tree
// the returned proof has Existence set to false.
func (t *VoteTree) GenProof(voteID []byte) (*Proof, error) {
	root, err := t.tree.Root()
	if err != nil {
		return nil, err
	}
	k, v, siblings, existence, err := t.tree.GenProof(LeafKey(voteID))
	if err != nil {
		return nil, fmt.Errorf("gen proof: %w", err)
	}
	return &Proof{
		Root:      root,
		Key:       k,
		Value:     v,
		Siblings:  siblings,
		Existence: existence,
	}, nil
}

// VerifyProof checks that voteID maps to vote under root, using the packed
// siblings of a Proof.
func VerifyProof(root, voteID, vote, siblings []byte) (bool, error) {
	return arbo.CheckProof(hashFunc, LeafKey(voteID), LeafValue(vote), root, siblings)
}

// Verify checks p against voteID and vote.
func (p *Proof) Verify(voteID, vote []byte) (bool, error) {
	if !p.Existence {
		return false, nil
	}
	return VerifyProof(p.Root, voteID, vote, p.Siblings)
}
