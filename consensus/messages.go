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

// Package consensus implements C9: leader election, proposal broadcast,
// weighted voting, quorum detection, commit and fork recovery over a static
// validator set.
package consensus

import (
	"github.com/atlasdb/atlasdb/block"
	"github.com/atlasdb/atlasdb/crypto"
	"github.com/atlasdb/atlasdb/protocol"
)

// VoteChoice is a validator's stance on a proposal.
type VoteChoice int

const (
	VoteNo VoteChoice = iota
	VoteYes
	VoteAbstain
)

// RequestVoteMessage is broadcast by a Candidate starting an election.
type RequestVoteMessage struct {
	Term          uint64
	CandidateID   string
	LastHeight    uint64
	LastBlockHash crypto.Digest
}

// RequestVoteReply is a validator's answer to a RequestVoteMessage.
type RequestVoteReply struct {
	Term    uint64
	Granted bool
	VoterID string
}

// HeartbeatMessage is emitted periodically by the current Leader.
type HeartbeatMessage struct {
	From      string
	Timestamp uint64
	Height    uint64
	Term      uint64
}

// ProposalMessage carries one candidate block for a given term and round.
type ProposalMessage struct {
	ID         crypto.Digest
	ProposerID string
	Term       uint64
	Round      uint32
	Content    block.Block
	ParentID   crypto.Digest
	Signature  crypto.ByteSignature
	PublicKey  crypto.PublicKey
}

func (m ProposalMessage) signedContent() proposalSigned {
	return proposalSigned{ID: m.ID, ProposerID: m.ProposerID, Term: m.Term, Round: m.Round, ParentID: m.ParentID}
}

type proposalSigned struct {
	ID         crypto.Digest
	ProposerID string
	Term       uint64
	Round      uint32
	ParentID   crypto.Digest
}

func (c proposalSigned) ToBeHashed() (protocol.HashID, []byte) {
	return protocol.Proposal, protocol.Encode(c)
}

// SignedBytes returns the bytes the proposer signs: the proposal's identity
// fields, not the full (potentially large) block content.
func (m ProposalMessage) SignedBytes() []byte {
	_, b := m.signedContent().ToBeHashed()
	return b
}

// VoteMessage is a validator's signed response to a ProposalMessage.
type VoteMessage struct {
	ProposalID crypto.Digest
	VoterID    string
	Vote       VoteChoice
	Weight     uint64
	Signature  crypto.ByteSignature
	PublicKey  crypto.PublicKey
}

type voteSigned struct {
	ProposalID crypto.Digest
	VoterID    string
	Vote       VoteChoice
}

func (c voteSigned) ToBeHashed() (protocol.HashID, []byte) {
	return protocol.Vote, protocol.Encode(c)
}

// SignedBytes returns the bytes a voter signs.
func (m VoteMessage) SignedBytes() []byte {
	_, b := voteSigned{ProposalID: m.ProposalID, VoterID: m.VoterID, Vote: m.Vote}.ToBeHashed()
	return b
}

// CommitMessage announces that a proposal reached quorum, carrying the set
// of Yes votes as proof.
type CommitMessage struct {
	BlockHash crypto.Digest
	Block     block.Block
	Votes     []VoteMessage
}

// SyncRequestMessage asks a peer for blocks above (Height, BlockHash).
type SyncRequestMessage struct {
	Height    uint64
	BlockHash crypto.Digest
}

// SyncResponseMessage answers a SyncRequestMessage, either with the
// requested blocks or a rejection (the peer's own tip at Height disagreed).
type SyncResponseMessage struct {
	Blocks   []block.Block
	Rejected bool
}
