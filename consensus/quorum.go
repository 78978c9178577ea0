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

package consensus

import "github.com/atlasdb/atlasdb/crypto"

// voteTally accumulates weighted Yes/No votes for exactly one proposal.
// A voter is counted at most once, per the "a vote is counted toward at
// most one (term, round, block_hash)" ordering guarantee.
type voteTally struct {
	proposalID crypto.Digest
	weights    map[string]uint64
	seen       map[string]VoteChoice
	yesWeight  uint64
	noWeight   uint64
}

func newVoteTally(proposalID crypto.Digest, weights map[string]uint64) *voteTally {
	return &voteTally{
		proposalID: proposalID,
		weights:    weights,
		seen:       make(map[string]VoteChoice),
	}
}

// add records v's vote. It reports false if the voter is unknown or has
// already voted on this proposal, in which case the vote had no effect.
func (t *voteTally) add(v VoteMessage) bool {
	if v.ProposalID != t.proposalID {
		return false
	}
	w, known := t.weights[v.VoterID]
	if !known {
		return false
	}
	if _, voted := t.seen[v.VoterID]; voted {
		return false
	}
	t.seen[v.VoterID] = v.Vote
	switch v.Vote {
	case VoteYes:
		t.yesWeight += w
	case VoteNo:
		t.noWeight += w
	}
	return true
}

// hasQuorum reports whether the accumulated Yes weight meets threshold.
// engine.go retains the raw VoteMessages separately for CommitMessage.Votes;
// the tally only tracks weight sums and per-voter dedup.
func (t *voteTally) hasQuorum(threshold uint64) bool {
	return t.yesWeight >= threshold
}
