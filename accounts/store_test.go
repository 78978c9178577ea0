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

package accounts

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlasdb/atlasdb/basics"
	"github.com/atlasdb/atlasdb/entry"
	"github.com/atlasdb/atlasdb/serr"
)

func openTestStore(t *testing.T) *Store {
	s, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func transferEntry() entry.LedgerEntry {
	legs := []entry.Leg{
		{Account: "vault:issuance:main", Asset: "wallet:mint/ATLAS", Kind: entry.Debit, Amount: 100},
		{Account: "wallet:mint/ATLAS:alice", Asset: "wallet:mint/ATLAS", Kind: entry.Credit, Amount: 100},
	}
	return entry.LedgerEntry{
		EntryID: entry.ComputeEntryID(legs, [32]byte{9}, 1, 1000),
		Legs:    legs,
		TxHash:  [32]byte{9},
	}
}

func TestApplyJournalMovesBalance(t *testing.T) {
	a := require.New(t)
	s := openTestStore(t)
	s.Seed("vault:issuance:main", "wallet:mint/ATLAS", 1000000)

	e := transferEntry()
	a.NoError(s.ApplyJournal([]entry.LedgerEntry{e}, map[basics.Address]uint64{"vault:issuance:main": 1}))

	issuance := s.Get("vault:issuance:main")
	a.EqualValues(999900, issuance.Balances["wallet:mint/ATLAS"])
	a.EqualValues(1, issuance.Nonce)
	a.True(issuance.HasHistory)

	alice := s.Get("wallet:mint/ATLAS:alice")
	a.EqualValues(100, alice.Balances["wallet:mint/ATLAS"])
	a.True(alice.HasHistory)
}

func TestApplyJournalInsufficientBalanceRollsBack(t *testing.T) {
	a := require.New(t)
	s := openTestStore(t)

	legs := []entry.Leg{
		{Account: "wallet:mint/ATLAS:bob", Asset: "wallet:mint/ATLAS", Kind: entry.Debit, Amount: 1},
		{Account: "wallet:mint/ATLAS:alice", Asset: "wallet:mint/ATLAS", Kind: entry.Credit, Amount: 1},
	}
	e := entry.LedgerEntry{EntryID: entry.ComputeEntryID(legs, [32]byte{1}, 1, 1), Legs: legs}

	err := s.ApplyJournal([]entry.LedgerEntry{e}, nil)
	a.Error(err)
	a.True(serr.Is(err, serr.KindInsufficientBalance))

	a.True(s.Get("wallet:mint/ATLAS:bob").IsZero())
	a.True(s.Get("wallet:mint/ATLAS:alice").IsZero())
}

func TestGetReturnsZeroStateForUntouched(t *testing.T) {
	s := openTestStore(t)
	require.True(t, s.Get("wallet:mint/ATLAS:nobody").IsZero())
}

func TestSnapshotReflectsAppliedJournal(t *testing.T) {
	a := require.New(t)
	s := openTestStore(t)
	s.Seed("vault:issuance:main", "wallet:mint/ATLAS", 1000000)

	a.NoError(s.ApplyJournal([]entry.LedgerEntry{transferEntry()}, nil))
	snap := s.Snapshot()
	a.Contains(snap, basics.Address("wallet:mint/ATLAS:alice"))
}
