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

package orchestrator

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atlasdb/atlasdb/accounts"
	"github.com/atlasdb/atlasdb/asset"
	"github.com/atlasdb/atlasdb/block"
	"github.com/atlasdb/atlasdb/config"
	"github.com/atlasdb/atlasdb/consensus"
	"github.com/atlasdb/atlasdb/crypto"
	"github.com/atlasdb/atlasdb/mempool"
	"github.com/atlasdb/atlasdb/rpcapi"
	"github.com/atlasdb/atlasdb/stateroot"
	"github.com/atlasdb/atlasdb/transport"
)

// noopNetwork satisfies transport.Network without delivering anything, for
// a single-node DevMode engine that never needs peers.
type noopNetwork struct{}

func (noopNetwork) Broadcast(transport.Tag, []byte)            {}
func (noopNetwork) SendTo(string, transport.Tag, []byte) error { return nil }
func (noopNetwork) Incoming() <-chan transport.Envelope        { return make(chan transport.Envelope) }

func freeListenAddr(t *testing.T) string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, string) {
	store, err := accounts.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(store.Close)
	assets := asset.NewRegistry()
	assets.Register(asset.Metadata{ID: "wallet:mint/ATLAS", Name: "Atlas", Decimals: 6})
	store.Seed("vault:issuance:main", "wallet:mint/ATLAS", 1000000)

	pool := mempool.New(mempool.Config{ChainID: "atlasdb-test", MaxSize: 10, MaxPerSender: 10}, store)

	auth, err := crypto.GenerateEd25519Authenticator()
	require.NoError(t, err)

	cfg := config.GetDefaultLocal()
	cfg.ChainID = "atlasdb-test"
	cfg.DevMode = true
	cfg.ValidatorWeights = map[string]uint64{"solo": 1}
	cfg.EndpointAddress = freeListenAddr(t)
	cfg.RestReadTimeoutSeconds = 5
	cfg.RestWriteTimeoutSeconds = 5

	asm := block.NewAssembler(assets, auth, stateroot.ModeDevZero)
	exec := block.NewExecutor(store, assets, nil, stateroot.ModeDevZero)

	engine := consensus.New(cfg, "solo", auth, map[string]crypto.PublicKey{"solo": auth.PublicKey()},
		noopNetwork{}, pool, store, asm, exec, nil, nil, block.Header{})

	svc := rpcapi.NewService(pool, store, assets, nil, engine, cfg.ChainID)
	router := rpcapi.NewRouter(svc, nil, nil)

	orch := New(cfg, engine, router, nil)
	engine.SetObserver(orch)
	return orch, cfg.EndpointAddress
}

func TestOrchestratorServesReadEndpointsAndShutsDownCleanly(t *testing.T) {
	a := require.New(t)
	orch, addr := newTestOrchestrator(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- orch.Run(ctx) }()

	var resp *http.Response
	var err error
	a.Eventually(func() bool {
		resp, err = http.Get("http://" + addr + "/v1/tokens")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	a.NoError(err)
	a.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		a.NoError(err)
	case <-time.After(2 * time.Second):
		t.Fatal("orchestrator did not shut down in time")
	}
}
