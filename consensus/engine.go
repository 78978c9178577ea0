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
	"context"
	"math/rand"
	"sort"
	"sync/atomic"
	"time"

	"github.com/atlasdb/atlasdb/accounts"
	"github.com/atlasdb/atlasdb/aec"
	"github.com/atlasdb/atlasdb/block"
	"github.com/atlasdb/atlasdb/config"
	"github.com/atlasdb/atlasdb/crypto"
	"github.com/atlasdb/atlasdb/entry"
	"github.com/atlasdb/atlasdb/logging"
	"github.com/atlasdb/atlasdb/mempool"
	"github.com/atlasdb/atlasdb/metrics"
	"github.com/atlasdb/atlasdb/protocol"
	"github.com/atlasdb/atlasdb/serr"
	"github.com/atlasdb/atlasdb/transport"
)

// State is one of the three roles a node cycles through.
type State int

const (
	Follower State = iota
	Candidate
	Leader
)

func (s State) String() string {
	switch s {
	case Candidate:
		return "candidate"
	case Leader:
		return "leader"
	default:
		return "follower"
	}
}

// LeadershipObserver is notified of leadership transitions, so the
// Orchestrator can start or stop the leader-only RPC surface (§4.10).
type LeadershipObserver interface {
	OnBecomeLeader()
	OnStepDown()
}

// BlockSink persists a committed block, so a restarted node can reload its
// tip instead of re-syncing from genesis (spec.md §6's persisted state
// layout: blocks/ plus tip.json).
type BlockSink interface {
	SaveBlock(b block.Block) error
}

// BlockArchive reads back what a BlockSink has persisted, so a node can
// serve the blocks above a peer's claimed tip during fork recovery
// (spec.md §4.7) instead of only ever answering "same tip" or a rejection.
type BlockArchive interface {
	LoadAt(height uint64) (block.Block, error)
	LoadAfter(height uint64) ([]block.Block, error)
}

// Engine is C9: the single consensus worker that owns term, round, the
// current proposal and its collected votes, processing peer messages and
// scheduler ticks serially. It is not safe for concurrent use from more
// than one goroutine; Run is the only entry point that should touch it
// after construction.
type Engine struct {
	cfg           config.Local
	selfID        string
	auth          crypto.Authenticator
	validatorKeys map[string]crypto.PublicKey

	net     transport.Network
	pool    *mempool.Mempool
	live    *accounts.Store
	asm     *block.Assembler
	exec    *block.Executor
	log     logging.Logger
	met     *metrics.Registry
	sink    BlockSink
	archive BlockArchive

	observer LeadershipObserver

	state State
	term  uint64
	round uint32
	tip   block.Header

	votesGranted map[string]bool

	proposal  *ProposalMessage
	tally     *voteTally
	rawVotes  []VoteMessage

	electionDeadline time.Time
	heartbeatDue     time.Time
	roundDeadline    time.Time
	roundFailures    uint32

	clock func() time.Time

	// isLeader and currentLeader are read by rpcapi's LeaderChecker from
	// goroutines other than the consensus worker; every other field is
	// owned exclusively by Run and must never be touched concurrently.
	isLeader      atomic.Bool
	currentLeader atomic.Value
}

// New constructs a consensus Engine. tip is the locally known chain head
// (the genesis header, for a fresh chain).
func New(cfg config.Local, selfID string, auth crypto.Authenticator, validatorKeys map[string]crypto.PublicKey,
	net transport.Network, pool *mempool.Mempool, live *accounts.Store, asm *block.Assembler, exec *block.Executor,
	observer LeadershipObserver, log logging.Logger, tip block.Header) *Engine {
	return &Engine{
		cfg:           cfg,
		selfID:        selfID,
		auth:          auth,
		validatorKeys: validatorKeys,
		net:           net,
		pool:          pool,
		live:          live,
		asm:           asm,
		exec:          exec,
		observer:      observer,
		log:           log,
		state:         Follower,
		tip:           tip,
		votesGranted:  make(map[string]bool),
		clock:         time.Now,
	}
}

// SetObserver attaches the LeadershipObserver notified of role transitions.
// Exists alongside the New constructor's observer parameter because the
// Orchestrator typically needs a live Engine reference before it can be
// constructed itself.
func (e *Engine) SetObserver(o LeadershipObserver) {
	e.observer = o
}

// SetMetrics attaches a metrics registry the engine reports role
// transitions, commits, and round failures into. Optional; nil is a valid
// no-op state (the zero value engine_test.go constructs).
func (e *Engine) SetMetrics(m *metrics.Registry) {
	e.met = m
}

// SetBlockSink attaches the BlockSink every committed block is saved to.
// Optional; nil is a valid no-op state.
func (e *Engine) SetBlockSink(s BlockSink) {
	e.sink = s
}

// SetBlockArchive attaches the BlockArchive onSyncRequest and onSyncResponse
// read historical blocks from. Optional; nil means sync requests above the
// local tip and rollback after a rejection are both refused.
func (e *Engine) SetBlockArchive(a BlockArchive) {
	e.archive = a
}

func (e *Engine) persistBlock(b block.Block) {
	if e.sink == nil {
		return
	}
	if err := e.sink.SaveBlock(b); err != nil && e.log != nil {
		e.log.With("error", err).Error("consensus: persist block failed")
	}
}

// IsLeader reports whether this node currently believes itself to be the
// leader. Safe for concurrent use from the RPC layer.
func (e *Engine) IsLeader() bool {
	return e.isLeader.Load()
}

// LeaderID returns the id of the node this Engine currently believes holds
// leadership, or "" if unknown (e.g. mid-election). Safe for concurrent
// use from the RPC layer.
func (e *Engine) LeaderID() string {
	v, _ := e.currentLeader.Load().(string)
	return v
}

func (e *Engine) setRole(role State, leaderID string) {
	e.isLeader.Store(role == Leader)
	e.currentLeader.Store(leaderID)
	if e.met != nil {
		e.met.SetRole(role.String())
	}
}

// Run drives the engine until ctx is cancelled: peer messages from net and
// scheduler ticks are processed serially, one at a time, matching the
// ownership rule that consensus in-flight state belongs to exactly one
// worker.
func (e *Engine) Run(ctx context.Context) {
	e.resetElectionTimer()
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-e.net.Incoming():
			e.handleEnvelope(env)
		case now := <-ticker.C:
			e.tick(now)
		}
	}
}

func (e *Engine) tick(now time.Time) {
	if e.cfg.DevMode {
		if e.state != Leader {
			e.becomeLeader()
		}
	}
	switch e.state {
	case Follower, Candidate:
		if !e.electionDeadline.IsZero() && now.After(e.electionDeadline) {
			e.becomeCandidate()
		}
	case Leader:
		if !e.heartbeatDue.IsZero() && now.After(e.heartbeatDue) {
			e.broadcastHeartbeat(now)
			e.heartbeatDue = now.Add(e.cfg.HeartbeatInterval())
		}
		if e.proposal != nil && !e.roundDeadline.IsZero() && now.After(e.roundDeadline) {
			e.roundTimedOut()
		} else if e.proposal == nil {
			e.proposeBlock(now)
		}
	}
}

func (e *Engine) handleEnvelope(env transport.Envelope) {
	switch env.Tag {
	case transport.TagHeartbeat:
		var m HeartbeatMessage
		if protocol.Decode(env.Payload, &m) == nil {
			e.onHeartbeat(m)
		}
	case transport.TagProposal:
		var m ProposalMessage
		if protocol.Decode(env.Payload, &m) == nil {
			e.onProposal(m)
		}
	case transport.TagVote:
		var m VoteMessage
		if protocol.Decode(env.Payload, &m) == nil {
			e.onVote(m)
		}
	case transport.TagRequestVote:
		var m RequestVoteMessage
		if protocol.Decode(env.Payload, &m) == nil {
			e.onRequestVote(env.From, m)
		}
	case transport.TagVoteGrant:
		var m RequestVoteReply
		if protocol.Decode(env.Payload, &m) == nil {
			e.onRequestVoteReply(m)
		}
	case transport.TagSyncRequest:
		var m SyncRequestMessage
		if protocol.Decode(env.Payload, &m) == nil {
			e.onSyncRequest(env.From, m)
		}
	case transport.TagSyncResp:
		var m SyncResponseMessage
		if protocol.Decode(env.Payload, &m) == nil {
			e.onSyncResponse(env.From, m)
		}
	case transport.TagCommit:
		var m CommitMessage
		if protocol.Decode(env.Payload, &m) == nil {
			e.onCommit(m)
		}
	}
}

func (e *Engine) resetElectionTimer() {
	if e.cfg.DevMode {
		e.electionDeadline = time.Time{}
		return
	}
	lo, hi := e.cfg.ElectionTimeoutLow(), e.cfg.ElectionTimeoutHigh()
	jitter := time.Duration(rand.Int63n(int64(hi - lo + 1)))
	e.electionDeadline = e.clock().Add(lo + jitter)
}

// becomeFollower steps down to Follower for newTerm, discarding any
// in-flight candidacy or proposal. Called whenever a message carrying a
// higher term is observed.
func (e *Engine) becomeFollower(newTerm uint64) {
	wasLeader := e.state == Leader
	e.state = Follower
	e.term = newTerm
	e.proposal = nil
	e.tally = nil
	e.rawVotes = nil
	e.votesGranted = make(map[string]bool)
	e.resetElectionTimer()
	e.setRole(Follower, e.leaderOf(newTerm))
	if wasLeader && e.observer != nil {
		e.observer.OnStepDown()
	}
}

func (e *Engine) becomeCandidate() {
	e.state = Candidate
	e.term++
	e.votesGranted = map[string]bool{e.selfID: true}
	e.resetElectionTimer()
	e.setRole(Candidate, "")
	req := RequestVoteMessage{Term: e.term, CandidateID: e.selfID, LastHeight: e.tip.Height, LastBlockHash: e.tip.BlockHash}
	e.net.Broadcast(transport.TagRequestVote, protocol.Encode(req))
	e.maybeBecomeLeader()
}

// onRequestVote answers a candidate's election bid: a node grants its vote
// to a candidate at a term no lower than its own whose last height is at
// least its own tip height. It keeps no record of votes already granted in
// a term, and the candidate's last block hash is not compared.
func (e *Engine) onRequestVote(candidateID string, m RequestVoteMessage) {
	if m.Term < e.term {
		e.net.SendTo(candidateID, transport.TagVoteGrant, protocol.Encode(RequestVoteReply{Term: e.term, Granted: false, VoterID: e.selfID}))
		return
	}
	if m.Term > e.term {
		e.becomeFollower(m.Term)
	}
	granted := m.LastHeight >= e.tip.Height
	if granted {
		e.resetElectionTimer()
	}
	e.net.SendTo(candidateID, transport.TagVoteGrant, protocol.Encode(RequestVoteReply{Term: e.term, Granted: granted, VoterID: e.selfID}))
}

func (e *Engine) onRequestVoteReply(m RequestVoteReply) {
	if e.state != Candidate || m.Term != e.term {
		return
	}
	if m.Granted {
		e.votesGranted[m.VoterID] = true
		e.maybeBecomeLeader()
	}
}

func (e *Engine) maybeBecomeLeader() {
	if e.state != Candidate {
		return
	}
	weight := uint64(0)
	for id := range e.votesGranted {
		weight += e.cfg.ValidatorWeights[id]
	}
	if weight >= e.cfg.QuorumThreshold() {
		e.becomeLeader()
	}
}

func (e *Engine) becomeLeader() {
	e.state = Leader
	e.electionDeadline = time.Time{}
	e.heartbeatDue = e.clock()
	e.roundFailures = 0
	e.setRole(Leader, e.selfID)
	if e.observer != nil {
		e.observer.OnBecomeLeader()
	}
}

func (e *Engine) onHeartbeat(m HeartbeatMessage) {
	if m.Term < e.term {
		return
	}
	if m.Term > e.term {
		e.becomeFollower(m.Term)
	}
	if e.state != Leader {
		e.resetElectionTimer()
	}
}

// proposeBlock assembles and broadcasts a candidate block for the current
// height. Only called while Leader and with no proposal currently
// in-flight.
func (e *Engine) proposeBlock(now time.Time) {
	b, err := e.asm.Assemble(e.pool, e.live, 1000, e.tip, e.round, uint64(now.Unix()))
	if err != nil {
		if e.log != nil {
			e.log.With("error", err).Warn("consensus: block assembly failed")
		}
		return
	}
	pm := ProposalMessage{
		ID:         b.Header.BlockHash,
		ProposerID: e.selfID,
		Term:       e.term,
		Round:      e.round,
		Content:    b,
		ParentID:   e.tip.BlockHash,
		PublicKey:  e.auth.PublicKey(),
	}
	pm.Signature = e.auth.SignBytes(pm.SignedBytes())

	e.proposal = &pm
	e.tally = newVoteTally(pm.ID, e.cfg.ValidatorWeights)
	e.rawVotes = nil
	e.roundDeadline = now.Add(e.cfg.RoundTimeout())

	e.net.Broadcast(transport.TagProposal, protocol.Encode(pm))
	e.castVote(pm, VoteYes)
}

func (e *Engine) roundTimedOut() {
	e.proposal = nil
	e.tally = nil
	e.round++
	e.roundFailures++
	if e.met != nil {
		e.met.QuorumRoundFailures.Inc()
	}
	if e.roundFailures >= e.cfg.MaxRoundsPerTerm {
		e.becomeFollower(e.term)
	}
}

// onProposal is the follower validation path: leader-of-proposer check,
// term/tip checks, re-execution, then a signed Vote.
func (e *Engine) onProposal(m ProposalMessage) {
	if m.Term < e.term {
		return
	}
	if m.Term > e.term {
		e.becomeFollower(m.Term)
	}
	if m.ProposerID != e.leaderOf(m.Term) {
		if e.log != nil {
			e.log.With("proposer", m.ProposerID).Debug("consensus: rejecting proposal from non-leader")
		}
		return
	}
	key, known := e.validatorKeys[m.ProposerID]
	if !known {
		return
	}
	verifier, err := crypto.NewEd25519Verifier(key)
	if err != nil || verifier.VerifyBytes(m.SignedBytes(), m.Signature) != nil {
		return
	}

	if m.Content.Header.PrevHash != e.tip.BlockHash {
		e.requestSync(m.ProposerID)
		return
	}
	if err := e.exec.Verify(e.tip, key, m.Content); err != nil {
		e.castVoteTo(m.ID, m.ProposerID, VoteNo)
		return
	}
	e.resetElectionTimer()
	e.castVoteTo(m.ID, m.ProposerID, VoteYes)
}

// validatorIDForKey reverse-looks-up a validator id by its public key. The
// validator set is small and static, so a linear scan beats maintaining a
// second index.
func (e *Engine) validatorIDForKey(key crypto.PublicKey) string {
	for id, k := range e.validatorKeys {
		if string(k) == string(key) {
			return id
		}
	}
	return ""
}

// leaderOf returns the elected leader id for term: validator ids sorted
// lexically, rotating by term. Every honest node computes the same
// leader-of-term from the same (fixed, within-term) ValidatorWeights table,
// which is what makes the leader-of-proposer check on every incoming
// proposal meaningful.
func (e *Engine) leaderOf(term uint64) string {
	if len(e.cfg.ValidatorWeights) == 0 {
		return ""
	}
	ids := make([]string, 0, len(e.cfg.ValidatorWeights))
	for id := range e.cfg.ValidatorWeights {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids[term%uint64(len(ids))]
}

func (e *Engine) castVote(pm ProposalMessage, choice VoteChoice) {
	e.castVoteTo(pm.ID, pm.ProposerID, choice)
}

func (e *Engine) castVoteTo(proposalID crypto.Digest, proposerID string, choice VoteChoice) {
	vm := VoteMessage{ProposalID: proposalID, VoterID: e.selfID, Vote: choice, Weight: e.cfg.ValidatorWeights[e.selfID], PublicKey: e.auth.PublicKey()}
	vm.Signature = e.auth.SignBytes(vm.SignedBytes())
	if proposerID == e.selfID {
		e.onVote(vm)
		return
	}
	e.net.SendTo(proposerID, transport.TagVote, protocol.Encode(vm))
}

// onVote is the leader path: tally a signed vote and commit on quorum.
func (e *Engine) onVote(m VoteMessage) {
	if e.state != Leader || e.proposal == nil || e.tally == nil {
		return
	}
	key, known := e.validatorKeys[m.VoterID]
	if !known {
		return
	}
	verifier, err := crypto.NewEd25519Verifier(key)
	if err != nil || verifier.VerifyBytes(m.SignedBytes(), m.Signature) != nil {
		return
	}
	if !e.tally.add(m) {
		return
	}
	e.rawVotes = append(e.rawVotes, m)

	if m.Vote == VoteYes && e.tally.hasQuorum(e.cfg.QuorumThreshold()) {
		e.commitProposal()
	}
}

func (e *Engine) commitProposal() {
	b := e.proposal.Content
	if err := e.exec.Commit(b); err != nil {
		if e.log != nil {
			e.log.With("error", err).Error("consensus: commit failed")
		}
		return
	}
	e.pool.MarkIncluded(txHashes(b))
	e.tip = b.Header
	e.round = 0
	e.roundFailures = 0
	e.reportCommit()
	e.persistBlock(b)

	cm := CommitMessage{BlockHash: b.Header.BlockHash, Block: b, Votes: e.rawVotes}
	e.net.Broadcast(transport.TagCommit, protocol.Encode(cm))

	e.proposal = nil
	e.tally = nil
	e.rawVotes = nil
}

// onCommit is the follower path for step 4 of §4.7's proposal flow: accept
// a Commit carrying proof of quorum (the set of signed Yes votes) and apply
// the block locally.
func (e *Engine) onCommit(m CommitMessage) {
	if m.Block.Header.BlockHash != m.BlockHash {
		return
	}
	if m.Block.Header.PrevHash != e.tip.BlockHash {
		if id := e.validatorIDForKey(m.Block.Header.Proposer); id != "" {
			e.requestSync(id)
		}
		return
	}
	var yesWeight uint64
	seen := make(map[string]bool, len(m.Votes))
	for _, v := range m.Votes {
		if v.ProposalID != m.BlockHash || v.Vote != VoteYes || seen[v.VoterID] {
			continue
		}
		key, known := e.validatorKeys[v.VoterID]
		if !known {
			continue
		}
		verifier, err := crypto.NewEd25519Verifier(key)
		if err != nil || verifier.VerifyBytes(v.SignedBytes(), v.Signature) != nil {
			continue
		}
		seen[v.VoterID] = true
		yesWeight += e.cfg.ValidatorWeights[v.VoterID]
	}
	if yesWeight < e.cfg.QuorumThreshold() {
		return
	}
	if err := e.exec.Verify(e.tip, m.Block.Header.Proposer, m.Block); err != nil {
		return
	}
	if err := e.exec.Commit(m.Block); err != nil {
		if e.log != nil {
			e.log.With("error", err).Error("consensus: commit failed")
		}
		return
	}
	e.pool.MarkIncluded(txHashes(m.Block))
	e.tip = m.Block.Header
	e.round = 0
	e.roundFailures = 0
	e.reportCommit()
	e.persistBlock(m.Block)
	e.proposal = nil
	e.tally = nil
	e.rawVotes = nil
	e.resetElectionTimer()
}

// reportCommit updates the committed-blocks counter and mempool-depth
// gauge after a block has been applied, on both the leader and follower
// apply paths.
func (e *Engine) reportCommit() {
	if e.met == nil {
		return
	}
	e.met.BlocksCommitted.Inc()
	e.met.MempoolDepth.Set(float64(e.pool.Len()))
}

func txHashes(b block.Block) []crypto.Digest {
	out := make([]crypto.Digest, 0, len(b.Journal))
	for _, le := range b.Journal {
		out = append(out, le.TxHash)
	}
	return out
}

func (e *Engine) broadcastHeartbeat(now time.Time) {
	m := HeartbeatMessage{From: e.selfID, Timestamp: uint64(now.Unix()), Height: e.tip.Height, Term: e.term}
	e.net.Broadcast(transport.TagHeartbeat, protocol.Encode(m))
}

// requestSync begins secure state transfer after detecting a tip mismatch
// against peerID: spec's fork-recovery path (§4.7).
func (e *Engine) requestSync(peerID string) {
	req := SyncRequestMessage{Height: e.tip.Height, BlockHash: e.tip.BlockHash}
	e.net.SendTo(peerID, transport.TagSyncRequest, protocol.Encode(req))
}

// onSyncRequest answers a peer's SyncRequest: blocks above Height when the
// peer's claimed (Height, BlockHash) is consistent with this node's own
// chain, or a rejection when it is not — either because the hashes disagree
// at a height both sides have, or because this node cannot prove anything
// past its own tip (no archive wired, or the peer already claims to be
// ahead).
func (e *Engine) onSyncRequest(peerID string, req SyncRequestMessage) {
	reject := func() {
		e.net.SendTo(peerID, transport.TagSyncResp, protocol.Encode(SyncResponseMessage{Rejected: true}))
	}

	if req.Height == e.tip.Height {
		if req.BlockHash != e.tip.BlockHash {
			reject()
			return
		}
		e.net.SendTo(peerID, transport.TagSyncResp, protocol.Encode(SyncResponseMessage{}))
		return
	}
	if req.Height > e.tip.Height || e.archive == nil {
		reject()
		return
	}
	if req.Height > 0 {
		known, err := e.archive.LoadAt(req.Height)
		if err != nil || known.Header.BlockHash != req.BlockHash {
			reject()
			return
		}
	}
	blocks, err := e.archive.LoadAfter(req.Height)
	if err != nil {
		reject()
		return
	}
	e.net.SendTo(peerID, transport.TagSyncResp, protocol.Encode(SyncResponseMessage{Blocks: blocks}))
}

// onSyncResponse applies a (possibly empty) run of blocks received as part
// of fork recovery, verifying prev_hash linkage and state_root reproduction
// on each before committing it. A Rejected response means peerID's chain
// disagreed with this node's claimed tip, so the local tip is itself on the
// losing fork: roll back the one block responsible and ask again from the
// predecessor, repeating one block at a time until a peer accepts the
// claimed tip or the chain is rolled back to genesis.
func (e *Engine) onSyncResponse(peerID string, resp SyncResponseMessage) {
	if resp.Rejected {
		e.rollbackAndResync(peerID)
		return
	}
	for _, b := range resp.Blocks {
		if b.Header.PrevHash != e.tip.BlockHash {
			return
		}
		if err := e.exec.Verify(e.tip, b.Header.Proposer, b); err != nil {
			return
		}
		if err := e.exec.Commit(b); err != nil {
			return
		}
		e.tip = b.Header
		e.persistBlock(b)
	}
}

// rollbackAndResync undoes the local tip block and re-issues a sync request
// from its predecessor, so a node on a losing fork walks itself back one
// block at a time until peerID recognizes its claimed tip.
func (e *Engine) rollbackAndResync(peerID string) {
	if e.tip.Height == 0 || e.archive == nil {
		if e.log != nil {
			e.log.With("kind", serr.KindSyncRejected).Warn("consensus: sync request rejected, nothing left to roll back")
		}
		return
	}
	stale, err := e.archive.LoadAt(e.tip.Height)
	if err != nil {
		if e.log != nil {
			e.log.With("error", err).Error("consensus: loading own tip block for rollback failed")
		}
		return
	}
	if err := rollbackOneBlock(e.live, e.exec.Chain, stale); err != nil {
		if e.log != nil {
			e.log.With("error", err).Error("consensus: rollback failed")
		}
		return
	}

	newTip := block.Header{}
	if stale.Header.Height > 1 {
		pred, err := e.archive.LoadAt(stale.Header.Height - 1)
		if err != nil {
			if e.log != nil {
				e.log.With("error", err).Error("consensus: loading rollback predecessor failed")
			}
			return
		}
		newTip = pred.Header
	}
	e.tip = newTip
	if e.log != nil {
		e.log.With("kind", serr.KindSyncRejected).With("height", e.tip.Height).Warn("consensus: rolled back one block, resuming sync")
	}
	e.requestSync(peerID)
}

// rollbackOneBlock reverts the most recently applied block's journal,
// undoing its balance effects via the entry package's Reverse legs. The
// per-account LastEntryID/LastTxHash pointers left after a rollback point at
// the synthetic reversal entries rather than the true predecessor recorded
// in AEC's PrevForAccount chain; AEC's append-only segment history is
// unaffected (nothing is rewritten), and the next real entry for that
// account re-anchors the pointer, so this is a convenience-index
// inconsistency, not a consensus-relevant one.
func rollbackOneBlock(live *accounts.Store, chain *aec.Store, b block.Block) error {
	reversed := make([]entry.LedgerEntry, len(b.Journal))
	for i, le := range b.Journal {
		reversed[i] = entry.LedgerEntry{
			EntryID:     le.EntryID,
			Legs:        entry.Reverse(le.Legs),
			TxHash:      le.TxHash,
			BlockHeight: le.BlockHeight,
			Timestamp:   le.Timestamp,
		}
	}
	return live.ApplyJournal(reversed, nil)
}
