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

package accounting

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlasdb/atlasdb/accounts"
	"github.com/atlasdb/atlasdb/aec"
	"github.com/atlasdb/atlasdb/asset"
	"github.com/atlasdb/atlasdb/serr"
	"github.com/atlasdb/atlasdb/txn"
	"github.com/atlasdb/atlasdb/util/kvstore"
)

func newTestEngine(t *testing.T) (*Engine, *accounts.Store) {
	store, err := accounts.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(store.Close)

	reg := asset.NewRegistry()
	reg.Register(asset.Metadata{ID: "wallet:mint/ATLAS", Name: "Atlas", Decimals: 6, Issuer: "vault:issuance:main"})

	idx, err := kvstore.NewPebbleDB("", true)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	chain, err := aec.Open(t.TempDir(), idx, 1<<20, 1000)
	require.NoError(t, err)
	t.Cleanup(func() { chain.Close() })

	return New(store, reg, chain), store
}

func TestExecuteTransferMovesBalance(t *testing.T) {
	a := require.New(t)
	e, store := newTestEngine(t)

	// Genesis bootstrap funds the vault directly; Execute only ever moves
	// value that already exists somewhere in the chart.
	store.Seed("vault:issuance:main", "wallet:mint/ATLAS", 1_000_000)

	tx := txn.Transaction{
		From:      "vault:issuance:main",
		To:        "wallet:mint/ATLAS:alice",
		Amount:    100,
		Asset:     "wallet:mint/ATLAS",
		Nonce:     1,
		Timestamp: 1000,
		Nature:    txn.NatureTransfer,
	}

	receipt, le, err := e.Execute(tx, 1)
	a.NoError(err)
	a.Equal(txn.StatusApplied, receipt.Status)
	a.Len(le.Legs, 2)

	alice := store.Get("wallet:mint/ATLAS:alice")
	a.EqualValues(100, alice.Balances["wallet:mint/ATLAS"])

	vault := store.Get("vault:issuance:main")
	a.EqualValues(999900, vault.Balances["wallet:mint/ATLAS"])
	a.EqualValues(1, vault.Nonce)
}

func TestExecuteRejectsNonceMismatch(t *testing.T) {
	a := require.New(t)
	e, store := newTestEngine(t)
	store.Seed("vault:issuance:main", "wallet:mint/ATLAS", 1_000_000)

	tx := txn.Transaction{
		From: "vault:issuance:main", To: "wallet:mint/ATLAS:alice",
		Amount: 10, Asset: "wallet:mint/ATLAS", Nonce: 5, Timestamp: 1000,
	}
	_, _, err := e.Execute(tx, 1)
	a.Error(err)
	a.True(serr.Is(err, serr.KindNonceMismatch))
}

func TestExecuteRejectsInsufficientBalance(t *testing.T) {
	a := require.New(t)
	e, _ := newTestEngine(t)

	tx := txn.Transaction{
		From: "wallet:mint/ATLAS:bob", To: "wallet:mint/ATLAS:alice",
		Amount: 10, Asset: "wallet:mint/ATLAS", Nonce: 1, Timestamp: 1000,
	}
	_, _, err := e.Execute(tx, 1)
	a.Error(err)
	a.True(serr.Is(err, serr.KindInsufficientBalance))
}

func TestExecuteRejectsUnregisteredAsset(t *testing.T) {
	a := require.New(t)
	e, _ := newTestEngine(t)

	tx := txn.Transaction{
		From: "wallet:mint/ATLAS:bob", To: "wallet:mint/ATLAS:alice",
		Amount: 10, Asset: "wallet:mint/USD", Nonce: 1, Timestamp: 1000,
	}
	_, _, err := e.Execute(tx, 1)
	a.Error(err)
	a.True(serr.Is(err, serr.KindAssetNotRegistered))
}

func TestExecuteRejectsUnknownAccountClass(t *testing.T) {
	a := require.New(t)
	e, _ := newTestEngine(t)

	tx := txn.Transaction{
		From: "bogus:sub:id", To: "wallet:mint/ATLAS:alice",
		Amount: 10, Asset: "wallet:mint/ATLAS", Nonce: 1, Timestamp: 1000,
	}
	_, _, err := e.Execute(tx, 1)
	a.Error(err)
	a.True(serr.Is(err, serr.KindUnknownAccountClass))
}
