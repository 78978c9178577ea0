// Copyright (C) 2019-2024 Algorand, Inc.
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
	"fmt"
	"sort"

	"github.com/atlasdb/atlasdb/protocol"
)

// MerkleTree is a plain binary Merkle tree over a dense array of leaves.
// AtlasDB resolves the state-commitment open question to a plain tree
// rebuilt in full every block (no sparse/tombstone variant, since accounts
// are never deleted, and no parallel builder: the account set per block is
// small enough that a single goroutine suffices).
type MerkleTree struct {
	levels [][]Digest
}

// pair is the Hashable representation of two sibling nodes being combined
// into their parent.
type pair struct {
	l, r Digest
}

func (p pair) ToBeHashed() (protocol.HashID, []byte) {
	buf := make([]byte, 0, 2*DigestSize)
	buf = append(buf, p.l[:]...)
	buf = append(buf, p.r[:]...)
	return protocol.MerkleNode, buf
}

// BuildMerkleTree builds a tree over leaves in the order given. Callers that
// need a canonical commitment (the state root) must sort their leaves by key
// before calling this.
func BuildMerkleTree(leaves []Digest) *MerkleTree {
	t := &MerkleTree{}
	if len(leaves) == 0 {
		return t
	}

	level := make([]Digest, len(leaves))
	copy(level, leaves)
	t.levels = append(t.levels, level)

	for len(t.topLevel()) > 1 {
		t.buildNextLevel()
	}
	return t
}

func (t *MerkleTree) topLevel() []Digest {
	return t.levels[len(t.levels)-1]
}

func (t *MerkleTree) buildNextLevel() {
	cur := t.topLevel()
	next := make([]Digest, (len(cur)+1)/2)
	for i := 0; i < len(next); i++ {
		l := cur[2*i]
		var r Digest
		if 2*i+1 < len(cur) {
			r = cur[2*i+1]
		} else {
			r = l // odd leaf promoted by pairing with itself
		}
		next[i] = HashObj(pair{l: l, r: r})
	}
	t.levels = append(t.levels, next)
}

// Root returns the tree's root digest, or the zero digest for an empty tree.
func (t *MerkleTree) Root() Digest {
	if len(t.levels) == 0 {
		return Digest{}
	}
	return t.topLevel()[0]
}

// MerkleProof is an inclusion proof for a single leaf position: the sibling
// digest at each level on the path from the leaf to the root.
type MerkleProof struct {
	Index   uint64
	Leaf    Digest
	Path    []Digest
	NumLeaf int
}

// Prove returns an inclusion proof for the leaf at idx.
func (t *MerkleTree) Prove(idx uint64) (*MerkleProof, error) {
	if len(t.levels) == 0 {
		return nil, fmt.Errorf("crypto: cannot prove membership in an empty tree")
	}
	numLeaves := len(t.levels[0])
	if idx >= uint64(numLeaves) {
		return nil, fmt.Errorf("crypto: leaf index %d out of range (%d leaves)", idx, numLeaves)
	}

	proof := &MerkleProof{Index: idx, Leaf: t.levels[0][idx], NumLeaf: numLeaves}
	pos := idx
	for l := 0; l < len(t.levels)-1; l++ {
		level := t.levels[l]
		var sibPos uint64
		if pos%2 == 0 {
			sibPos = pos + 1
		} else {
			sibPos = pos - 1
		}
		if sibPos < uint64(len(level)) {
			proof.Path = append(proof.Path, level[sibPos])
		} else {
			proof.Path = append(proof.Path, level[pos]) // odd leaf paired with itself
		}
		pos /= 2
	}
	return proof, nil
}

// VerifyMerkleProof checks that proof is a valid inclusion proof for root.
func VerifyMerkleProof(root Digest, proof *MerkleProof) bool {
	cur := proof.Leaf
	pos := proof.Index
	for _, sib := range proof.Path {
		var p pair
		if pos%2 == 0 {
			p = pair{l: cur, r: sib}
		} else {
			p = pair{l: sib, r: cur}
		}
		cur = HashObj(p)
		pos /= 2
	}
	return cur == root
}

// SortedDigestLeaves sorts keyed leaves by key and returns their digests in
// that order, for building a commitment whose root is independent of the
// caller's iteration order (map iteration, concurrent account writes).
func SortedDigestLeaves(keys [][]byte, hashFn func(i int) Digest) []Digest {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return string(keys[idx[a]]) < string(keys[idx[b]])
	})
	out := make([]Digest, len(idx))
	for i, j := range idx {
		out[i] = hashFn(j)
	}
	return out
}
