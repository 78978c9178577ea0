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

// Package accounting implements the Accounting Engine (C6): it converts a
// validated Transaction into a balanced LedgerEntry and applies it
// atomically to the State Store and the Account Event Chain.
package accounting

import (
	"github.com/atlasdb/atlasdb/accounts"
	"github.com/atlasdb/atlasdb/aec"
	"github.com/atlasdb/atlasdb/asset"
	"github.com/atlasdb/atlasdb/basics"
	"github.com/atlasdb/atlasdb/chart"
	"github.com/atlasdb/atlasdb/crypto"
	"github.com/atlasdb/atlasdb/entry"
	"github.com/atlasdb/atlasdb/serr"
	"github.com/atlasdb/atlasdb/txn"
)

// Engine ties the Chart, asset registry, State Store, and AEC together to
// run transactions to completion.
type Engine struct {
	Accounts *accounts.Store
	Assets   *asset.Registry
	Chain    *aec.Store
}

// New constructs an Engine over the given collaborators.
func New(accountsStore *accounts.Store, assets *asset.Registry, chain *aec.Store) *Engine {
	return &Engine{Accounts: accountsStore, Assets: assets, Chain: chain}
}

// Execute runs tx against the current state, producing a committed
// LedgerEntry and a Receipt. blockHeight and tx.Timestamp flow straight
// into the entry as leader-supplied, deterministic inputs: re-execution by
// a follower calling Execute with the same arguments must reach the same
// entry_id.
func (e *Engine) Execute(tx txn.Transaction, blockHeight uint64) (txn.Receipt, entry.LedgerEntry, error) {
	receipt := txn.Receipt{TxHash: tx.Hash(), Memo: tx.Memo}

	feePayer := tx.EffectiveFeePayer()
	for _, addr := range []basics.Address{tx.From, tx.To, feePayer} {
		if err := chart.ValidateAddress(addr); err != nil {
			return fail(receipt, err)
		}
	}
	if _, err := e.Assets.Lookup(tx.Asset); err != nil {
		return fail(receipt, err)
	}
	if tx.Fee > 0 {
		if _, err := e.Assets.Lookup(tx.FeeAsset); err != nil {
			return fail(receipt, err)
		}
	}

	fromState := e.Accounts.Get(tx.From)
	if tx.Nonce != fromState.Nonce+1 {
		return fail(receipt, serr.NewKind(serr.KindNonceMismatch, "nonce mismatch",
			"address", string(tx.From), "expected", fromState.Nonce+1, "got", tx.Nonce))
	}
	if fromState.Balances[tx.Asset] < tx.Amount {
		return fail(receipt, serr.NewKind(serr.KindInsufficientBalance, "insufficient balance",
			"address", string(tx.From), "asset", string(tx.Asset)))
	}

	legs, err := composeLegs(tx)
	if err != nil {
		return fail(receipt, err)
	}
	if err := entry.VerifyBalanced(legs); err != nil {
		return fail(receipt, err)
	}

	entryID := entry.ComputeEntryID(legs, tx.Hash(), blockHeight, tx.Timestamp)
	prevForAccount := make(map[basics.Address]crypto.Digest, len(legs))
	for _, addr := range entry.TouchedAccounts(legs) {
		st := e.Accounts.Get(addr)
		prevForAccount[addr] = st.LastEntryID
	}

	le := entry.LedgerEntry{
		EntryID:        entryID,
		Legs:           legs,
		TxHash:         tx.Hash(),
		Memo:           tx.Memo,
		BlockHeight:    blockHeight,
		Timestamp:      tx.Timestamp,
		PrevForAccount: prevForAccount,
	}

	if err := e.Accounts.ApplyJournal([]entry.LedgerEntry{le}, map[basics.Address]uint64{tx.From: 1}); err != nil {
		return fail(receipt, err)
	}
	if e.Chain != nil {
		if err := e.Chain.Append(le); err != nil {
			return fail(receipt, err)
		}
	}

	receipt.Status = txn.StatusApplied
	receipt.LedgerEntryIDs = []crypto.Digest{le.EntryID}
	return receipt, le, nil
}

func fail(receipt txn.Receipt, err error) (txn.Receipt, entry.LedgerEntry, error) {
	receipt.Status = txn.StatusFailed
	receipt.Error = err.Error()
	return receipt, entry.LedgerEntry{}, err
}

// composeLegs builds the fixed leg template for tx's nature, plus the fee
// legs common to every nature when a fee is present.
func composeLegs(tx txn.Transaction) ([]entry.Leg, error) {
	var legs []entry.Leg
	switch tx.Nature {
	case txn.NatureTransfer, "":
		legs = []entry.Leg{
			{Account: tx.From, Asset: tx.Asset, Kind: entry.Debit, Amount: tx.Amount},
			{Account: tx.To, Asset: tx.Asset, Kind: entry.Credit, Amount: tx.Amount},
		}
	case txn.NatureBurn:
		legs = []entry.Leg{
			{Account: tx.From, Asset: tx.Asset, Kind: entry.Debit, Amount: tx.Amount},
			{Account: "compensacao:clearing:burn", Asset: tx.Asset, Kind: entry.Credit, Amount: tx.Amount},
		}
	case txn.NatureStakingReward:
		legs = []entry.Leg{
			{Account: "vault:rewards:pool", Asset: tx.Asset, Kind: entry.Debit, Amount: tx.Amount},
			{Account: tx.To, Asset: tx.Asset, Kind: entry.Credit, Amount: tx.Amount},
		}
	case txn.NatureSlashing:
		legs = []entry.Leg{
			{Account: tx.From, Asset: tx.Asset, Kind: entry.Debit, Amount: tx.Amount},
			{Account: "compensacao:clearing:slashing", Asset: tx.Asset, Kind: entry.Credit, Amount: tx.Amount},
		}
	default:
		return nil, serr.NewKind(serr.KindUnbalancedJournal, "unknown transaction nature", "nature", string(tx.Nature))
	}

	if tx.Fee > 0 {
		legs = append(legs,
			entry.Leg{Account: tx.EffectiveFeePayer(), Asset: tx.FeeAsset, Kind: entry.Debit, Amount: tx.Fee},
			entry.Leg{Account: chart.RevenueFees, Asset: tx.FeeAsset, Kind: entry.Credit, Amount: tx.Fee},
		)
	}
	return legs, nil
}
