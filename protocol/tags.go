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

package protocol

// Tag names the kinds of message a node exchanges. The transport does not
// use it: wire frames carry transport.Tag, whose values differ.
type Tag string

// Tags, in lexicographic order of their values to avoid duplicates.
const (
	UnknownTag      Tag = "??"
	HeartbeatTag    Tag = "HB"
	ProposalTag     Tag = "PP"
	RequestVoteTag  Tag = "RV"
	SyncRequestTag  Tag = "SQ"
	SyncResponseTag Tag = "SR"
	TxTag           Tag = "TX"
	VoteTag         Tag = "VO"
)
