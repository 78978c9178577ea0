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

// Package accounts implements the State Store: the single-writer mapping
// from Address to AccountState, mutated only by atomically-applied
// journals of LedgerEntry objects.
package accounts

import (
	"sort"

	"github.com/atlasdb/atlasdb/basics"
	"github.com/atlasdb/atlasdb/crypto"
	"github.com/atlasdb/atlasdb/protocol"
)

// AccountState is the per-address ledger record.
type AccountState struct {
	Balances    map[basics.AssetID]basics.Amount
	Nonce       uint64
	LastTxHash  crypto.Digest
	LastEntryID crypto.Digest
	HasHistory  bool // true once LastTxHash/LastEntryID are meaningful
}

// ZeroState returns the state a never-touched account starts from.
func ZeroState() AccountState {
	return AccountState{Balances: make(map[basics.AssetID]basics.Amount)}
}

// Clone returns a deep copy, so callers holding a snapshot can mutate a
// working copy without affecting the published state.
func (s AccountState) Clone() AccountState {
	balances := make(map[basics.AssetID]basics.Amount, len(s.Balances))
	for k, v := range s.Balances {
		balances[k] = v
	}
	s.Balances = balances
	return s
}

// leafContent is the canonical encoding of one (address, AccountState)
// state-root leaf, per spec.md §4.8: leaf_i = H(address_i || serialize(state_i)).
type leafContent struct {
	Address basics.Address
	Assets  []basics.AssetID
	Amounts []basics.Amount
	Nonce   uint64
}

func (c leafContent) ToBeHashed() (protocol.HashID, []byte) {
	return protocol.AccountLeaf, protocol.Encode(c)
}

// Leaf computes the state-root leaf digest for (addr, state). Balances are
// flattened into parallel, asset-sorted slices so the canonical encoder
// never has to rely on map key order.
func Leaf(addr basics.Address, state AccountState) crypto.Digest {
	assets := make([]basics.AssetID, 0, len(state.Balances))
	for a := range state.Balances {
		assets = append(assets, a)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i] < assets[j] })
	amounts := make([]basics.Amount, len(assets))
	for i, a := range assets {
		amounts[i] = state.Balances[a]
	}
	return crypto.HashObj(leafContent{Address: addr, Assets: assets, Amounts: amounts, Nonce: state.Nonce})
}

// IsZero reports whether state has never been touched: no balances, no
// nonce advancement, no recorded history. AtlasDB never deletes accounts;
// a zero state is simply one that has not yet been written to, and is
// omitted from the state-root leaf set entirely (spec.md §9's resolution
// of the deleted-account open question).
func (s AccountState) IsZero() bool {
	if s.Nonce != 0 || s.HasHistory {
		return false
	}
	for _, amt := range s.Balances {
		if amt != 0 {
			return false
		}
	}
	return true
}
