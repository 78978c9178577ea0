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

// HashID is a domain separation prefix mixed into every hash input so that,
// for example, the hash of a LedgerEntry can never collide with the hash of
// a Vote even if their canonical encodings happened to agree on bytes.
type HashID string

// Hash IDs for every object type AtlasDB hashes, in lexicographic order of
// their values to avoid accidental duplicates.
const (
	AccountLeaf     HashID = "AL"
	BlockHeader     HashID = "BH"
	DevRoot         HashID = "DR"
	Genesis         HashID = "GE"
	JournalLeaf     HashID = "JL"
	JournalRootLeaf HashID = "JR"
	MerkleNode      HashID = "MN"
	Proposal        HashID = "PR"
	SegmentRec      HashID = "SR"
	Transaction     HashID = "TX"
	Vote            HashID = "VO"
)
