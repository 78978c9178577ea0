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

package consensus

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atlasdb/atlasdb/accounts"
	"github.com/atlasdb/atlasdb/asset"
	"github.com/atlasdb/atlasdb/block"
	"github.com/atlasdb/atlasdb/config"
	"github.com/atlasdb/atlasdb/crypto"
	"github.com/atlasdb/atlasdb/entry"
	"github.com/atlasdb/atlasdb/mempool"
	"github.com/atlasdb/atlasdb/protocol"
	"github.com/atlasdb/atlasdb/stateroot"
	"github.com/atlasdb/atlasdb/transport"
)

// fakeArchive is an in-memory BlockArchive for exercising fork recovery
// without a real block.FileBlockSink on disk.
type fakeArchive struct {
	blocks map[uint64]block.Block
	tip    uint64
}

func (f *fakeArchive) LoadAt(height uint64) (block.Block, error) {
	b, ok := f.blocks[height]
	if !ok {
		return block.Block{}, fmt.Errorf("no block at height %d", height)
	}
	return b, nil
}

func (f *fakeArchive) LoadAfter(height uint64) ([]block.Block, error) {
	var out []block.Block
	for h := height + 1; h <= f.tip; h++ {
		b, ok := f.blocks[h]
		if !ok {
			return nil, fmt.Errorf("missing block at height %d", h)
		}
		out = append(out, b)
	}
	return out, nil
}

// fakeNetwork wires a named set of in-process nodes directly together via
// buffered channels, standing in for transport.TCPNetwork in tests that
// need deterministic, dial-free delivery.
type fakeNetwork struct {
	self  string
	peers map[string]chan transport.Envelope
	in    chan transport.Envelope
}

func newFakeNetworks(ids []string) map[string]*fakeNetwork {
	chans := make(map[string]chan transport.Envelope, len(ids))
	for _, id := range ids {
		chans[id] = make(chan transport.Envelope, 256)
	}
	nets := make(map[string]*fakeNetwork, len(ids))
	for _, id := range ids {
		nets[id] = &fakeNetwork{self: id, peers: chans, in: chans[id]}
	}
	return nets
}

func (n *fakeNetwork) Broadcast(tag transport.Tag, payload []byte) {
	for id, ch := range n.peers {
		if id == n.self {
			continue
		}
		ch <- transport.Envelope{From: n.self, Tag: tag, Payload: payload}
	}
}

func (n *fakeNetwork) SendTo(peerID string, tag transport.Tag, payload []byte) error {
	ch, ok := n.peers[peerID]
	if !ok {
		return nil
	}
	ch <- transport.Envelope{From: n.self, Tag: tag, Payload: payload}
	return nil
}

func (n *fakeNetwork) Incoming() <-chan transport.Envelope {
	return n.in
}

func newTestEngine(t *testing.T, id string, ids []string, weights map[string]uint64, nets map[string]*fakeNetwork,
	auths map[string]*crypto.Ed25519Authenticator, keys map[string]crypto.PublicKey) *Engine {
	store, err := accounts.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(store.Close)
	assets := asset.NewRegistry()
	assets.Register(asset.Metadata{ID: "wallet:mint/ATLAS", Name: "Atlas", Decimals: 6})
	store.Seed("vault:issuance:main", "wallet:mint/ATLAS", 1000000)

	pool := mempool.New(mempool.Config{ChainID: "atlasdb-test", MaxSize: 10, MaxPerSender: 10}, store)

	cfg := config.GetDefaultLocal()
	cfg.ChainID = "atlasdb-test"
	cfg.ValidatorWeights = weights
	cfg.QuorumFraction = 0.51
	cfg.MinVoters = 1
	cfg.ElectionTimeoutLowMillis = 40
	cfg.ElectionTimeoutHighMillis = 60
	cfg.HeartbeatIntervalMillis = 10
	cfg.RoundTimeoutMillis = 200
	cfg.MaxRoundsPerTerm = 5

	asm := block.NewAssembler(assets, auths[id], stateroot.ModeReal)
	exec := block.NewExecutor(store, assets, nil, stateroot.ModeReal)

	genesis := block.Header{Height: 0, BlockHash: crypto.Digest{}}
	return New(cfg, id, auths[id], keys, nets[id], pool, store, asm, exec, nil, nil, genesis)
}

// TestSingleLeaderElectionUnderDevMode confirms a lone node in DevMode
// self-promotes to Leader on its first tick instead of waiting out an
// election timeout.
func TestSingleLeaderElectionUnderDevMode(t *testing.T) {
	a := require.New(t)
	auth, err := crypto.GenerateEd25519Authenticator()
	a.NoError(err)
	keys := map[string]crypto.PublicKey{"solo": auth.PublicKey()}
	nets := newFakeNetworks([]string{"solo"})
	e := newTestEngine(t, "solo", []string{"solo"}, map[string]uint64{"solo": 1}, nets,
		map[string]*crypto.Ed25519Authenticator{"solo": auth}, keys)
	e.cfg.DevMode = true

	e.tick(time.Now())
	a.Equal(Leader, e.state)
}

// TestCandidateBecomesLeaderOnGrantedQuorum drives the election path
// directly: a candidate that collects enough granted weight becomes Leader
// without needing a live peer.
func TestCandidateBecomesLeaderOnGrantedQuorum(t *testing.T) {
	a := require.New(t)
	auth, err := crypto.GenerateEd25519Authenticator()
	a.NoError(err)
	ids := []string{"a", "b", "c"}
	keys := map[string]crypto.PublicKey{"a": auth.PublicKey()}
	nets := newFakeNetworks(ids)
	e := newTestEngine(t, "a", ids, map[string]uint64{"a": 10, "b": 10, "c": 10}, nets,
		map[string]*crypto.Ed25519Authenticator{"a": auth}, keys)

	e.becomeCandidate()
	a.Equal(Candidate, e.state)
	e.onRequestVoteReply(RequestVoteReply{Term: e.term, Granted: true, VoterID: "b"})
	a.Equal(Leader, e.state)
}

// TestLeaderOfRotatesDeterministically confirms every node derives the same
// leader id for a given term from the same validator set.
func TestLeaderOfRotatesDeterministically(t *testing.T) {
	a := require.New(t)
	auth, err := crypto.GenerateEd25519Authenticator()
	a.NoError(err)
	ids := []string{"a", "b", "c"}
	keys := map[string]crypto.PublicKey{"a": auth.PublicKey()}
	nets := newFakeNetworks(ids)
	e := newTestEngine(t, "a", ids, map[string]uint64{"a": 10, "b": 10, "c": 10}, nets,
		map[string]*crypto.Ed25519Authenticator{"a": auth}, keys)

	l0 := e.leaderOf(0)
	l1 := e.leaderOf(1)
	l3 := e.leaderOf(3)
	a.Equal(l0, l3)
	a.NotEqual(l0, l1)
}

func TestRollbackOneBlockUndoesBalances(t *testing.T) {
	a := require.New(t)
	store, err := accounts.OpenMemory()
	a.NoError(err)
	defer store.Close()
	store.Seed("vault:issuance:main", "wallet:mint/ATLAS", 1000)

	le := entry.LedgerEntry{
		EntryID: crypto.Digest{1},
		Legs: []entry.Leg{
			{Account: "vault:issuance:main", Asset: "wallet:mint/ATLAS", Kind: entry.Debit, Amount: 100},
			{Account: "wallet:mint/ATLAS:alice", Asset: "wallet:mint/ATLAS", Kind: entry.Credit, Amount: 100},
		},
	}
	a.NoError(store.ApplyJournal([]entry.LedgerEntry{le}, nil))
	a.EqualValues(900, store.Get("vault:issuance:main").Balances["wallet:mint/ATLAS"])

	b := block.Block{Journal: []entry.LedgerEntry{le}}
	a.NoError(rollbackOneBlock(store, nil, b))
	a.EqualValues(1000, store.Get("vault:issuance:main").Balances["wallet:mint/ATLAS"])
	a.EqualValues(0, store.Get("wallet:mint/ATLAS:alice").Balances["wallet:mint/ATLAS"])
}

func TestValidatorIDForKeyReverseLookup(t *testing.T) {
	a := require.New(t)
	auth, err := crypto.GenerateEd25519Authenticator()
	a.NoError(err)
	ids := []string{"a"}
	keys := map[string]crypto.PublicKey{"a": auth.PublicKey()}
	nets := newFakeNetworks(ids)
	e := newTestEngine(t, "a", ids, map[string]uint64{"a": 10}, nets,
		map[string]*crypto.Ed25519Authenticator{"a": auth}, keys)

	a.Equal("a", e.validatorIDForKey(auth.PublicKey()))
	a.Equal("", e.validatorIDForKey(crypto.PublicKey([]byte("unknown"))))
}

// TestOnSyncRequestServesBlocksAboveRequesterHeight confirms a node with an
// archive answers a behind-tip peer with the blocks it's missing, rather
// than only ever comparing against its own exact tip.
func TestOnSyncRequestServesBlocksAboveRequesterHeight(t *testing.T) {
	a := require.New(t)
	auth, err := crypto.GenerateEd25519Authenticator()
	a.NoError(err)
	ids := []string{"a", "b"}
	keys := map[string]crypto.PublicKey{"a": auth.PublicKey()}
	nets := newFakeNetworks(ids)
	e := newTestEngine(t, "a", ids, map[string]uint64{"a": 10, "b": 10}, nets,
		map[string]*crypto.Ed25519Authenticator{"a": auth}, keys)

	b1 := block.Block{Header: block.Header{Height: 1, BlockHash: crypto.Digest{1}}}
	b2 := block.Block{Header: block.Header{Height: 2, PrevHash: crypto.Digest{1}, BlockHash: crypto.Digest{2}}}
	e.archive = &fakeArchive{blocks: map[uint64]block.Block{1: b1, 2: b2}, tip: 2}
	e.tip = b2.Header

	e.onSyncRequest("b", SyncRequestMessage{Height: 1, BlockHash: crypto.Digest{1}})

	env := <-nets["b"].in
	a.Equal(transport.TagSyncResp, env.Tag)
	var resp SyncResponseMessage
	a.NoError(protocol.Decode(env.Payload, &resp))
	a.False(resp.Rejected)
	a.Len(resp.Blocks, 1)
	a.Equal(uint64(2), resp.Blocks[0].Header.Height)
}

// TestOnSyncRequestRejectsHashMismatch confirms a genuine disagreement at a
// height both sides claim to know is rejected outright, not served.
func TestOnSyncRequestRejectsHashMismatch(t *testing.T) {
	a := require.New(t)
	auth, err := crypto.GenerateEd25519Authenticator()
	a.NoError(err)
	ids := []string{"a", "b"}
	keys := map[string]crypto.PublicKey{"a": auth.PublicKey()}
	nets := newFakeNetworks(ids)
	e := newTestEngine(t, "a", ids, map[string]uint64{"a": 10, "b": 10}, nets,
		map[string]*crypto.Ed25519Authenticator{"a": auth}, keys)

	b1 := block.Block{Header: block.Header{Height: 1, BlockHash: crypto.Digest{1}}}
	e.archive = &fakeArchive{blocks: map[uint64]block.Block{1: b1}, tip: 1}
	e.tip = b1.Header

	e.onSyncRequest("b", SyncRequestMessage{Height: 1, BlockHash: crypto.Digest{9}})

	env := <-nets["b"].in
	var resp SyncResponseMessage
	a.NoError(protocol.Decode(env.Payload, &resp))
	a.True(resp.Rejected)
}

// TestRollbackAndResyncWalksBackOneBlock confirms a Rejected SyncResponse
// undoes the local tip block's balance effects and re-requests sync from
// its predecessor height.
func TestRollbackAndResyncWalksBackOneBlock(t *testing.T) {
	a := require.New(t)
	auth, err := crypto.GenerateEd25519Authenticator()
	a.NoError(err)
	ids := []string{"a", "b"}
	keys := map[string]crypto.PublicKey{"a": auth.PublicKey()}
	nets := newFakeNetworks(ids)
	e := newTestEngine(t, "a", ids, map[string]uint64{"a": 10, "b": 10}, nets,
		map[string]*crypto.Ed25519Authenticator{"a": auth}, keys)

	le := entry.LedgerEntry{
		EntryID: crypto.Digest{1},
		Legs: []entry.Leg{
			{Account: "vault:issuance:main", Asset: "wallet:mint/ATLAS", Kind: entry.Debit, Amount: 100},
			{Account: "wallet:mint/ATLAS:alice", Asset: "wallet:mint/ATLAS", Kind: entry.Credit, Amount: 100},
		},
	}
	a.NoError(e.live.ApplyJournal([]entry.LedgerEntry{le}, nil))
	a.EqualValues(999900, e.live.Get("vault:issuance:main").Balances["wallet:mint/ATLAS"])

	tipBlock := block.Block{Header: block.Header{Height: 1, BlockHash: crypto.Digest{1}}, Journal: []entry.LedgerEntry{le}}
	e.archive = &fakeArchive{blocks: map[uint64]block.Block{1: tipBlock}, tip: 1}
	e.tip = tipBlock.Header

	e.onSyncResponse("b", SyncResponseMessage{Rejected: true})

	a.EqualValues(1000000, e.live.Get("vault:issuance:main").Balances["wallet:mint/ATLAS"])
	a.EqualValues(0, e.tip.Height)

	env := <-nets["b"].in
	a.Equal(transport.TagSyncRequest, env.Tag)
	var req SyncRequestMessage
	a.NoError(protocol.Decode(env.Payload, &req))
	a.EqualValues(0, req.Height)
}

