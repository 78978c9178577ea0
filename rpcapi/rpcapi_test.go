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

package rpcapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlasdb/atlasdb/accounts"
	"github.com/atlasdb/atlasdb/asset"
	"github.com/atlasdb/atlasdb/basics"
	"github.com/atlasdb/atlasdb/crypto"
	"github.com/atlasdb/atlasdb/mempool"
	"github.com/atlasdb/atlasdb/txn"
)

type fakeLeader struct {
	isLeader bool
	leaderID string
}

func (f fakeLeader) IsLeader() bool   { return f.isLeader }
func (f fakeLeader) LeaderID() string { return f.leaderID }

func newTestService(t *testing.T, leader LeaderChecker) (LedgerService, *accounts.Store, *asset.Registry) {
	store, err := accounts.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(store.Close)
	assets := asset.NewRegistry()
	assets.Register(asset.Metadata{ID: "wallet:mint/ATLAS", Name: "Atlas", Decimals: 6})
	store.Seed("vault:issuance:main", "wallet:mint/ATLAS", 1000000)

	pool := mempool.New(mempool.Config{ChainID: "atlasdb-test", MaxSize: 10, MaxPerSender: 10}, store)
	svc := NewService(pool, store, assets, nil, leader, "atlasdb-test")
	return svc, store, assets
}

func signedTestTx(t *testing.T, auth *crypto.Ed25519Authenticator, nonce uint64) txn.Transaction {
	tx := txn.Transaction{
		ChainID:   "atlasdb-test",
		From:      "vault:issuance:main",
		To:        "wallet:mint/ATLAS:alice",
		Amount:    100,
		Asset:     "wallet:mint/ATLAS",
		Nonce:     nonce,
		Timestamp: 1,
		Nature:    txn.NatureTransfer,
		PublicKey: auth.PublicKey(),
	}
	tx.Signature = auth.SignBytes(tx.SignedBytes())
	return tx
}

func TestSubmitTransactionRejectsWhenNotLeader(t *testing.T) {
	a := require.New(t)
	auth, err := crypto.GenerateEd25519Authenticator()
	a.NoError(err)
	svc, _, _ := newTestService(t, fakeLeader{isLeader: false, leaderID: "leader-1"})

	result := svc.SubmitTransaction(signedTestTx(t, auth, 1))
	a.False(result.Success)
	a.Contains(result.ErrorMessage, "leader-1")
}

func TestSubmitTransactionAdmitsWhenLeader(t *testing.T) {
	a := require.New(t)
	auth, err := crypto.GenerateEd25519Authenticator()
	a.NoError(err)
	svc, _, _ := newTestService(t, fakeLeader{isLeader: true})

	result := svc.SubmitTransaction(signedTestTx(t, auth, 1))
	a.True(result.Success)
	a.Empty(result.ErrorMessage)
}

func TestGetBalanceClassifiesCreditNaturalAccount(t *testing.T) {
	a := require.New(t)
	svc, _, _ := newTestService(t, fakeLeader{isLeader: true})

	result, err := svc.GetBalance("vault:issuance:main", "wallet:mint/ATLAS")
	a.NoError(err)
	a.EqualValues(1000000, result.Balance)
	a.EqualValues(1000000, result.View.Liabilities)
	a.EqualValues(0, result.View.Assets)
}

func TestGetBalanceRejectsMalformedAddress(t *testing.T) {
	a := require.New(t)
	svc, _, _ := newTestService(t, fakeLeader{isLeader: true})

	_, err := svc.GetBalance("not-a-valid-address", "wallet:mint/ATLAS")
	a.Error(err)
}

func TestGetTokensReturnsRegisteredAssets(t *testing.T) {
	a := require.New(t)
	svc, _, _ := newTestService(t, fakeLeader{isLeader: true})

	tokens := svc.GetTokens()
	md, ok := tokens[basics.AssetID("wallet:mint/ATLAS")]
	a.True(ok)
	a.Equal("Atlas", md.Name)
}

func TestGetAccountsIncludesSeededAccount(t *testing.T) {
	a := require.New(t)
	svc, _, _ := newTestService(t, fakeLeader{isLeader: true})

	all := svc.GetAccounts()
	st, ok := all["vault:issuance:main"]
	a.True(ok)
	a.EqualValues(1000000, st.Balances["wallet:mint/ATLAS"])
}

func TestGetStatementWithNilChainReturnsEmpty(t *testing.T) {
	a := require.New(t)
	svc, _, _ := newTestService(t, fakeLeader{isLeader: true})

	entries, err := svc.GetStatement("wallet:mint/ATLAS:alice", 10)
	a.NoError(err)
	a.Empty(entries)
}

func TestRouterServesGetTokens(t *testing.T) {
	a := require.New(t)
	svc, _, _ := newTestService(t, fakeLeader{isLeader: true})
	router := NewRouter(svc, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/tokens", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	a.Equal(http.StatusOK, rec.Code)
	var body map[basics.AssetID]asset.Metadata
	a.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	a.Contains(body, basics.AssetID("wallet:mint/ATLAS"))
}

func TestRouterSubmitTransactionRoundTrip(t *testing.T) {
	a := require.New(t)
	auth, err := crypto.GenerateEd25519Authenticator()
	a.NoError(err)
	svc, _, _ := newTestService(t, fakeLeader{isLeader: true})
	router := NewRouter(svc, nil, nil)

	tx := signedTestTx(t, auth, 1)
	body, err := json.Marshal(tx)
	a.NoError(err)

	req := httptest.NewRequest(http.MethodPost, "/v1/transactions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	a.Equal(http.StatusOK, rec.Code)
	var result SubmitResult
	a.NoError(json.Unmarshal(rec.Body.Bytes(), &result))
	a.True(result.Success)
}

func TestRouterGetBalanceMissingAddressIs404(t *testing.T) {
	a := require.New(t)
	svc, _, _ := newTestService(t, fakeLeader{isLeader: true})
	router := NewRouter(svc, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/accounts//balance", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	a.NotEqual(http.StatusOK, rec.Code)
}
