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

// Package entry defines the double-entry bookkeeping primitives: Leg and
// LedgerEntry. A LedgerEntry is immutable once constructed; reversal is
// always a new entry with swapped leg kinds, never an edit.
package entry

import (
	"github.com/atlasdb/atlasdb/basics"
	"github.com/atlasdb/atlasdb/crypto"
	"github.com/atlasdb/atlasdb/protocol"
	"github.com/atlasdb/atlasdb/serr"
)

// Kind is one side of a Leg.
type Kind uint8

const (
	Debit Kind = iota
	Credit
)

func (k Kind) String() string {
	if k == Credit {
		return "credit"
	}
	return "debit"
}

// Opposite returns the other Kind, used to build a reversal's legs.
func (k Kind) Opposite() Kind {
	if k == Credit {
		return Debit
	}
	return Credit
}

// Leg is one debit or credit component of a LedgerEntry. Amount is always
// strictly positive; which side increases or decreases the account's
// balance is determined by the account's chart classification, not by Kind
// alone (see chart.Classify's CreditNatural).
type Leg struct {
	Account basics.Address
	Asset   basics.AssetID
	Kind    Kind
	Amount  basics.Amount
}

// LedgerEntry is an atomic, balanced accounting record: for every asset
// present in Legs, the sum of Debit amounts equals the sum of Credit
// amounts. Once constructed and assigned an EntryID it is never mutated.
type LedgerEntry struct {
	EntryID        crypto.Digest
	Legs           []Leg
	TxHash         crypto.Digest
	Memo           string
	BlockHeight    uint64
	Timestamp      uint64
	PrevForAccount map[basics.Address]crypto.Digest
}

// content is the canonical-encoded shape entry_id is hashed over: legs,
// tx_hash, block_height and timestamp, exactly the fields spec'd by the
// entry_id formula. EntryID itself, Memo and PrevForAccount are excluded:
// the first because it is the hash being computed, the latter two because
// they are not part of the content the hash commits to.
type content struct {
	Legs        []Leg
	TxHash      crypto.Digest
	BlockHeight uint64
	Timestamp   uint64
}

func (c content) ToBeHashed() (protocol.HashID, []byte) {
	return protocol.JournalLeaf, protocol.Encode(c)
}

// ComputeEntryID computes the deterministic entry_id for a LedgerEntry
// whose Legs, TxHash, BlockHeight and Timestamp are already final.
func ComputeEntryID(legs []Leg, txHash crypto.Digest, blockHeight, timestamp uint64) crypto.Digest {
	return crypto.HashObj(content{Legs: legs, TxHash: txHash, BlockHeight: blockHeight, Timestamp: timestamp})
}

// VerifyBalanced checks the dual-entry invariant: for every asset present
// in legs, the sum of Debit amounts equals the sum of Credit amounts.
func VerifyBalanced(legs []Leg) error {
	if len(legs) < 2 {
		return serr.NewKind(serr.KindUnbalancedJournal, "entry must have at least two legs", "legs", len(legs))
	}
	totals := make(map[basics.AssetID]struct{ debit, credit basics.Amount })
	for _, leg := range legs {
		t := totals[leg.Asset]
		var overflow bool
		if leg.Kind == Debit {
			t.debit, overflow = basics.OAdd(t.debit, leg.Amount)
		} else {
			t.credit, overflow = basics.OAdd(t.credit, leg.Amount)
		}
		if overflow {
			return serr.NewKind(serr.KindBalanceOverflow, "leg total overflow", "asset", string(leg.Asset))
		}
		totals[leg.Asset] = t
	}
	for assetID, t := range totals {
		if t.debit != t.credit {
			return serr.NewKind(serr.KindUnbalancedJournal, "debits do not equal credits for asset",
				"asset", string(assetID), "debit", t.debit, "credit", t.credit)
		}
	}
	return nil
}

// Reverse builds the legs of a compensating entry: every Debit becomes a
// Credit and vice versa, same accounts, assets and amounts, in the same
// order. The caller is responsible for assembling a new LedgerEntry (with
// a fresh EntryID, TxHash, BlockHeight, Timestamp) from the result —
// Reverse never mutates the original.
func Reverse(legs []Leg) []Leg {
	out := make([]Leg, len(legs))
	for i, leg := range legs {
		out[i] = Leg{Account: leg.Account, Asset: leg.Asset, Kind: leg.Kind.Opposite(), Amount: leg.Amount}
	}
	return out
}

// TouchedAccounts returns the distinct accounts referenced by legs, in
// first-seen order, matching the order prev_for_account should be filled.
func TouchedAccounts(legs []Leg) []basics.Address {
	seen := make(map[basics.Address]bool, len(legs))
	var out []basics.Address
	for _, leg := range legs {
		if !seen[leg.Account] {
			seen[leg.Account] = true
			out = append(out, leg.Account)
		}
	}
	return out
}
