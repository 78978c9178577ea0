// Copyright (C) 2019-2023 Algorand, Inc.
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

package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTagsAreDistinct(t *testing.T) {
	tags := []Tag{UnknownTag, HeartbeatTag, ProposalTag, RequestVoteTag, SyncRequestTag, SyncResponseTag, TxTag, VoteTag}
	seen := make(map[Tag]bool)
	for _, tag := range tags {
		require.False(t, seen[tag], "duplicate tag value %q", tag)
		seen[tag] = true
		require.Len(t, string(tag), 2, "tag %q is not 2 bytes", tag)
	}
}

func TestHashIDsAreDistinct(t *testing.T) {
	ids := []HashID{AccountLeaf, BlockHeader, Genesis, JournalLeaf, MerkleNode, Proposal, SegmentRec, Transaction, Vote}
	seen := make(map[HashID]bool)
	for _, id := range ids {
		require.False(t, seen[id], "duplicate hash id value %q", id)
		seen[id] = true
	}
}
