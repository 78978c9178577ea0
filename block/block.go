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

// Package block defines the Block and Header types committed by consensus,
// and the leader/follower paths that assemble and re-execute them.
package block

import (
	"github.com/atlasdb/atlasdb/crypto"
	"github.com/atlasdb/atlasdb/entry"
	"github.com/atlasdb/atlasdb/protocol"
	"github.com/atlasdb/atlasdb/txn"
)

// Header is everything about a block except its journal. block_hash commits
// to every field here except BlockHash itself: the other fields' encoding
// followed by Signature.
type Header struct {
	Height      uint64
	Round       uint32
	Proposer    crypto.PublicKey
	PrevHash    crypto.Digest
	StateRoot   crypto.Digest
	JournalRoot crypto.Digest
	Timestamp   uint64

	Signature crypto.ByteSignature
	BlockHash crypto.Digest
}

// Block is a committed consensus unit: a header, the ordered journal of
// ledger entries that produced its state_root from the previous block's,
// and the originating transactions in the same order.
//
// Transactions rides alongside Journal, rather than Journal alone, so that
// re-execution (§4.6's follower path) is well-defined: a follower runs the
// same Accounting Engine over the same transactions against its own copy of
// the prior state, and the determinism rule (identical ordering in, so
// identical entries out) is what re-execution actually verifies. Neither
// Transactions nor its ordering feeds block_hash or journal_root — only the
// resulting Journal does, so this choice changes nothing about what the
// header commits to.
type Block struct {
	Header       Header
	Transactions []txn.Transaction
	Journal      []entry.LedgerEntry
}

// headerContent is the canonical encoding block_hash commits to: Header
// minus Signature and BlockHash.
type headerContent struct {
	Height      uint64
	Round       uint32
	Proposer    crypto.PublicKey
	PrevHash    crypto.Digest
	StateRoot   crypto.Digest
	JournalRoot crypto.Digest
	Timestamp   uint64
}

func (c headerContent) ToBeHashed() (protocol.HashID, []byte) {
	return protocol.BlockHeader, protocol.Encode(c)
}

func headerContentOf(h Header) headerContent {
	return headerContent{
		Height:      h.Height,
		Round:       h.Round,
		Proposer:    h.Proposer,
		PrevHash:    h.PrevHash,
		StateRoot:   h.StateRoot,
		JournalRoot: h.JournalRoot,
		Timestamp:   h.Timestamp,
	}
}

// SignedBytes returns the bytes a proposer signs and a voter verifies: the
// canonical encoding of every header field except Signature and BlockHash.
func (h Header) SignedBytes() []byte {
	_, b := headerContentOf(h).ToBeHashed()
	return b
}

// ComputeBlockHash derives block_hash per spec: the hash of the header
// content concatenated with the signature. Two headers that differ only in
// Signature therefore still produce distinct block hashes, which is why the
// signature must be computed first.
func ComputeBlockHash(h Header) crypto.Digest {
	buf := append(append([]byte{}, h.SignedBytes()...), h.Signature...)
	return crypto.Hash(buf)
}

// entryLeafContent is the Hashable for one of journal_root's Merkle leaves:
// one leaf per journal entry, in block order.
type entryLeafContent struct {
	EntryID crypto.Digest
	Legs    []entry.Leg
	TxHash  crypto.Digest
}

func (c entryLeafContent) ToBeHashed() (protocol.HashID, []byte) {
	return protocol.JournalRootLeaf, protocol.Encode(c)
}

// JournalRoot computes the Merkle root over journal in block order. An
// empty journal (a block with no admitted transactions) has the zero root.
func JournalRoot(journal []entry.LedgerEntry) crypto.Digest {
	if len(journal) == 0 {
		return crypto.Digest{}
	}
	leaves := make([]crypto.Digest, len(journal))
	for i, e := range journal {
		leaves[i] = crypto.HashObj(entryLeafContent{EntryID: e.EntryID, Legs: e.Legs, TxHash: e.TxHash})
	}
	return crypto.BuildMerkleTree(leaves).Root()
}
