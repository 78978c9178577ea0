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

// Package rpcapi implements C10: the synchronous client-facing request/
// response service (LedgerService) over HTTP.
package rpcapi

import (
	"fmt"

	"github.com/atlasdb/atlasdb/accounts"
	"github.com/atlasdb/atlasdb/aec"
	"github.com/atlasdb/atlasdb/asset"
	"github.com/atlasdb/atlasdb/basics"
	"github.com/atlasdb/atlasdb/chart"
	"github.com/atlasdb/atlasdb/crypto"
	"github.com/atlasdb/atlasdb/mempool"
	"github.com/atlasdb/atlasdb/txn"
)

// LeaderChecker reports whether this node currently holds leadership, so
// the service can apply §4.9's binding policy without importing consensus
// directly (avoiding a dependency cycle: consensus does not need to know
// about rpcapi).
type LeaderChecker interface {
	IsLeader() bool
	LeaderID() string
}

// View is the classified presentation of an account's balances, computed
// via chart.Classify: every non-zero balance of a credit-natural account is
// summed into Liabilities, that of any other account into Assets, and
// Equity is the absolute difference of the two.
type View struct {
	Assets      basics.Amount `json:"assets"`
	Liabilities basics.Amount `json:"liabilities"`
	Equity      basics.Amount `json:"equity"`
}

// BalanceResult is GetBalance's response body.
type BalanceResult struct {
	Address  basics.Address                   `json:"address"`
	Asset    basics.AssetID                   `json:"asset"`
	Balance  basics.Amount                    `json:"balance"`
	Balances map[basics.AssetID]basics.Amount `json:"balances"`
	Nonce    uint64                           `json:"nonce"`
	View     View                             `json:"view"`
}

// StatementEntry is one line of GetStatement's transaction history.
type StatementEntry struct {
	TxHash    crypto.Digest  `json:"tx_hash"`
	From      basics.Address `json:"from"`
	To        basics.Address `json:"to"`
	Amount    basics.Amount  `json:"amount"`
	Asset     basics.AssetID `json:"asset"`
	Timestamp uint64         `json:"timestamp"`
	Memo      string         `json:"memo"`
	FeePayer  basics.Address `json:"fee_payer,omitempty"`
}

// SubmitResult is SubmitTransaction's response body.
type SubmitResult struct {
	Success      bool          `json:"success"`
	TxHash       crypto.Digest `json:"tx_hash"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// LedgerService is the client-facing surface defined in §4.9. Every method
// is synchronous; SubmitTransaction only enqueues and returns, it never
// blocks for the transaction's eventual inclusion in a block.
type LedgerService interface {
	SubmitTransaction(tx txn.Transaction) SubmitResult
	GetBalance(addr basics.Address, asset basics.AssetID) (BalanceResult, error)
	GetStatement(addr basics.Address, limit int) ([]StatementEntry, error)
	GetAccounts() map[basics.Address]accounts.AccountState
	GetTokens() map[basics.AssetID]asset.Metadata
}

// service is the default LedgerService, backed by the node's live state,
// mempool, asset registry, and accounting event chain.
type service struct {
	pool    *mempool.Mempool
	live    *accounts.Store
	assets  *asset.Registry
	chain   *aec.Store
	leader  LeaderChecker
	chainID string
}

// NewService constructs the LedgerService the Orchestrator mounts behind
// the HTTP router. chain may be nil in configurations without a
// per-account event log (GetStatement then always returns an empty slice).
func NewService(pool *mempool.Mempool, live *accounts.Store, assets *asset.Registry, chain *aec.Store, leader LeaderChecker, chainID string) LedgerService {
	return &service{pool: pool, live: live, assets: assets, chain: chain, leader: leader, chainID: chainID}
}

// SubmitTransaction implements LedgerService. Binding policy (§4.9): only
// the leader admits submissions directly; a follower reports the leader's
// id so the caller can retry against it instead of silently dropping the
// request.
func (s *service) SubmitTransaction(tx txn.Transaction) SubmitResult {
	hash := tx.Hash()
	if s.leader != nil && !s.leader.IsLeader() {
		return SubmitResult{
			Success:      false,
			TxHash:       hash,
			ErrorMessage: fmt.Sprintf("not leader, retry against %s", s.leader.LeaderID()),
		}
	}
	if err := s.pool.Add(tx); err != nil {
		return SubmitResult{Success: false, TxHash: hash, ErrorMessage: err.Error()}
	}
	return SubmitResult{Success: true, TxHash: hash}
}

// GetBalance implements LedgerService, reading C4 under its published
// snapshot and classifying the held asset's balance via C3.
func (s *service) GetBalance(addr basics.Address, assetID basics.AssetID) (BalanceResult, error) {
	st := s.live.Get(addr)
	_, _, creditNatural, err := chart.Classify(addr)
	if err != nil {
		return BalanceResult{}, err
	}
	bal := st.Balances[assetID]

	view := View{}
	for _, amount := range st.Balances {
		if amount.IsZero() {
			continue
		}
		if creditNatural {
			view.Liabilities, _ = basics.OAdd(view.Liabilities, amount)
		} else {
			view.Assets, _ = basics.OAdd(view.Assets, amount)
		}
	}
	if view.Assets > view.Liabilities {
		view.Equity, _ = basics.OSub(view.Assets, view.Liabilities)
	} else {
		view.Equity, _ = basics.OSub(view.Liabilities, view.Assets)
	}

	return BalanceResult{
		Address:  addr,
		Asset:    assetID,
		Balance:  bal,
		Balances: st.Balances,
		Nonce:    st.Nonce,
		View:     view,
	}, nil
}

// GetStatement implements LedgerService via a lazy backward walk of addr's
// accounting event chain (C5).
func (s *service) GetStatement(addr basics.Address, limit int) ([]StatementEntry, error) {
	if s.chain == nil {
		return nil, nil
	}
	entries, err := s.chain.WalkBack(addr, limit)
	if err != nil {
		return nil, err
	}
	out := make([]StatementEntry, 0, len(entries))
	for _, le := range entries {
		var from, to basics.Address
		var amount basics.Amount
		var assetID basics.AssetID
		for _, leg := range le.Legs {
			if leg.Account != addr {
				continue
			}
			amount = leg.Amount
			assetID = leg.Asset
		}
		for _, leg := range le.Legs {
			if leg.Kind.String() == "debit" {
				from = leg.Account
			} else {
				to = leg.Account
			}
		}
		out = append(out, StatementEntry{
			TxHash:    le.TxHash,
			From:      from,
			To:        to,
			Amount:    amount,
			Asset:     assetID,
			Timestamp: le.Timestamp,
			Memo:      le.Memo,
		})
	}
	return out, nil
}

// GetAccounts implements LedgerService: a full snapshot export for admin
// and explorer tooling.
func (s *service) GetAccounts() map[basics.Address]accounts.AccountState {
	return s.live.Snapshot()
}

// GetTokens implements LedgerService.
func (s *service) GetTokens() map[basics.AssetID]asset.Metadata {
	out := make(map[basics.AssetID]asset.Metadata)
	for _, md := range s.assets.List() {
		out[md.ID] = md
	}
	return out
}
