// Copyright (C) 2019-2022 Algorand, Inc.
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

// NodeType identifies the role a node plays in the cluster. No component
// reads it: every node starts the same services whatever its role.
type NodeType uint64

const (
	// ValidatorNode participates in consensus: it votes, can be elected
	// leader, and accepts transactions into its mempool.
	ValidatorNode NodeType = iota
	// ObserverNode replicates committed blocks and serves reads, but never
	// votes or proposes.
	ObserverNode
)
