// Copyright (C) 2019-2021 Algorand, Inc.
// This file is part of go-algorand
//
// go-algorand is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-algorand is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-algorand.  If not, see <https://www.gnu.org/licenses/>.

package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func leavesFor(n int) []Digest {
	leaves := make([]Digest, n)
	for i := range leaves {
		leaves[i] = Hash([]byte{byte(i)})
	}
	return leaves
}

func TestMerkleTreeEmpty(t *testing.T) {
	a := require.New(t)
	tree := BuildMerkleTree(nil)
	a.True(tree.Root().IsZero())
}

func TestMerkleTreeSingleLeaf(t *testing.T) {
	a := require.New(t)
	leaves := leavesFor(1)
	tree := BuildMerkleTree(leaves)
	a.Equal(leaves[0], tree.Root())
}

func TestMerkleTreeProofRoundTrip(t *testing.T) {
	a := require.New(t)
	for _, n := range []int{1, 2, 3, 5, 8, 17} {
		leaves := leavesFor(n)
		tree := BuildMerkleTree(leaves)
		root := tree.Root()

		for i := 0; i < n; i++ {
			proof, err := tree.Prove(uint64(i))
			a.NoError(err)
			a.True(VerifyMerkleProof(root, proof), "leaf %d of %d", i, n)
		}
	}
}

func TestMerkleTreeProofRejectsWrongRoot(t *testing.T) {
	a := require.New(t)
	tree := BuildMerkleTree(leavesFor(4))
	proof, err := tree.Prove(1)
	a.NoError(err)
	a.False(VerifyMerkleProof(Hash([]byte("wrong root")), proof))
}

func TestMerkleTreeDeterministicForSameLeaves(t *testing.T) {
	a := require.New(t)
	leaves := leavesFor(6)

	t1 := BuildMerkleTree(leaves)

	copied := make([]Digest, len(leaves))
	copy(copied, leaves)
	t2 := BuildMerkleTree(copied)

	a.Equal(t1.Root(), t2.Root())
}

func TestMerkleTreeProveOutOfRange(t *testing.T) {
	a := require.New(t)
	tree := BuildMerkleTree(leavesFor(3))
	_, err := tree.Prove(10)
	a.Error(err)
}
