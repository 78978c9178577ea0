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

// Package stateroot computes the cryptographic commitment over the global
// account state that every block header carries as state_root.
package stateroot

import (
	"github.com/atlasdb/atlasdb/accounts"
	"github.com/atlasdb/atlasdb/basics"
	"github.com/atlasdb/atlasdb/crypto"
	"github.com/atlasdb/atlasdb/protocol"
)

// Mode selects how Compute derives a root, letting a devnet run without
// paying for a full Merkle build over a large state.
type Mode int

const (
	// ModeReal builds the full binary Merkle tree over every non-zero
	// account. Required outside developer mode.
	ModeReal Mode = iota
	// ModeDevZero returns the all-zero digest unconditionally.
	ModeDevZero
	// ModeDevMock returns H(height || block_hash || "dev"), cheap to compute
	// and still sensitive to which block it commits to, for exercising the
	// header/verification plumbing without hashing the whole state.
	ModeDevMock
)

// devMockContent is the Hashable behind ModeDevMock.
type devMockContent struct {
	Height    uint64
	BlockHash crypto.Digest
}

func (c devMockContent) ToBeHashed() (protocol.HashID, []byte) {
	return protocol.DevRoot, append(protocol.Encode(c), "dev"...)
}

// Compute derives state_root for snap under mode. height and prevBlockHash
// are only consulted by ModeDevMock; prevBlockHash is the predecessor
// block's hash rather than the block being assembled, since state_root is
// itself an input to that block's own hash.
func Compute(mode Mode, snap map[basics.Address]accounts.AccountState, height uint64, prevBlockHash crypto.Digest) crypto.Digest {
	switch mode {
	case ModeDevZero:
		return crypto.Digest{}
	case ModeDevMock:
		return crypto.HashObj(devMockContent{Height: height, BlockHash: prevBlockHash})
	default:
		return computeReal(snap)
	}
}

func computeReal(snap map[basics.Address]accounts.AccountState) crypto.Digest {
	addrs := make([]basics.Address, 0, len(snap))
	for addr, st := range snap {
		if st.IsZero() {
			continue
		}
		addrs = append(addrs, addr)
	}
	keys := make([][]byte, len(addrs))
	for i, addr := range addrs {
		keys[i] = []byte(addr)
	}
	leaves := crypto.SortedDigestLeaves(keys, func(i int) crypto.Digest {
		return accounts.Leaf(addrs[i], snap[addrs[i]])
	})
	return crypto.BuildMerkleTree(leaves).Root()
}
