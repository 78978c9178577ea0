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

// Package mempool implements C7: admission, priority ordering, and
// expiration of pending transactions. The mempool is strictly local state,
// never consensus-material — different replicas may legitimately hold
// different pending sets.
package mempool

import (
	"container/heap"
	"sync"
	"time"

	"github.com/atlasdb/atlasdb/accounts"
	"github.com/atlasdb/atlasdb/basics"
	"github.com/atlasdb/atlasdb/crypto"
	"github.com/atlasdb/atlasdb/protocol"
	"github.com/atlasdb/atlasdb/serr"
	"github.com/atlasdb/atlasdb/txn"
)

// Config bounds admission and retention. It mirrors the relevant
// config.Local fields so the mempool has no direct dependency on config.
type Config struct {
	ChainID      string
	MaxSize      int
	MaxPerSender int
	MaxTxBytes   int
	ExpireAfter  time.Duration
}

// Mempool holds pending transactions, ordered by fee-descending priority
// with FIFO tiebreak, and exposes admission, selection, and expiration.
type Mempool struct {
	cfg      Config
	accounts *accounts.Store

	mu       sync.Mutex
	seq      uint64
	byHash   map[crypto.Digest]*pendingTx
	bySender map[basics.Address]map[uint64]*pendingTx // from -> nonce -> tx
	pq       priorityQueue
}

type pendingTx struct {
	tx      txn.Transaction
	hash    crypto.Digest
	seq     uint64
	addedAt time.Time
	index   int // heap bookkeeping
}

// New constructs an empty Mempool backed by accounts for stateful admission
// checks and expiration.
func New(cfg Config, accountsStore *accounts.Store) *Mempool {
	return &Mempool{
		cfg:      cfg,
		accounts: accountsStore,
		byHash:   make(map[crypto.Digest]*pendingTx),
		bySender: make(map[basics.Address]map[uint64]*pendingTx),
	}
}

// Add admits tx after the stateless and light-stateful checks of spec.md
// §4.5, or replaces an existing pending transaction from the same
// (from, nonce) if tx's fee strictly exceeds it.
func (m *Mempool) Add(tx txn.Transaction) error {
	if err := m.admitStateless(tx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.admitStatefulLocked(tx); err != nil {
		return err
	}

	hash := tx.Hash()
	if existing, ok := m.bySender[tx.From][tx.Nonce]; ok {
		if tx.Fee <= existing.tx.Fee {
			return serr.NewKind(serr.KindFeeTooLow, "replacement fee must exceed the pending transaction's fee",
				"address", string(tx.From), "nonce", tx.Nonce)
		}
		m.removeLocked(existing)
	}

	p := &pendingTx{tx: tx, hash: hash, seq: m.seq, addedAt: timeNow()}
	m.seq++
	m.byHash[hash] = p
	senderPending, ok := m.bySender[tx.From]
	if !ok {
		senderPending = make(map[uint64]*pendingTx)
		m.bySender[tx.From] = senderPending
	}
	senderPending[tx.Nonce] = p
	heap.Push(&m.pq, p)
	return nil
}

func (m *Mempool) admitStateless(tx txn.Transaction) error {
	if tx.ChainID != m.cfg.ChainID {
		return serr.NewKind(serr.KindChainIDMismatch, "chain id mismatch", "got", tx.ChainID, "want", m.cfg.ChainID)
	}
	verifier, err := crypto.NewEd25519Verifier(tx.PublicKey)
	if err != nil {
		return serr.NewKind(serr.KindSignatureInvalid, "malformed public key", "err", err.Error())
	}
	if err := verifier.VerifyBytes(tx.SignedBytes(), tx.Signature); err != nil {
		return serr.NewKind(serr.KindSignatureInvalid, "signature verification failed")
	}
	if m.cfg.MaxTxBytes > 0 && len(protocol.Encode(tx)) > m.cfg.MaxTxBytes {
		return serr.NewKind(serr.KindMempoolFull, "transaction exceeds size bound")
	}

	m.mu.Lock()
	_, dup := m.byHash[tx.Hash()]
	m.mu.Unlock()
	if dup {
		return serr.NewKind(serr.KindDuplicateTransaction, "transaction already pending", "tx_hash", tx.Hash().String())
	}
	return nil
}

// admitStatefulLocked runs the "light stateful" checks. Callers hold m.mu.
func (m *Mempool) admitStatefulLocked(tx txn.Transaction) error {
	from := m.accounts.Get(tx.From)
	if tx.Nonce < from.Nonce+1 {
		return serr.NewKind(serr.KindNonceMismatch, "nonce already used", "address", string(tx.From), "nonce", tx.Nonce)
	}
	if from.Balances[tx.FeeAsset] < tx.Fee {
		return serr.NewKind(serr.KindInsufficientBalance, "insufficient balance for max possible fee", "address", string(tx.From))
	}
	if m.cfg.MaxPerSender > 0 && len(m.bySender[tx.From]) >= m.cfg.MaxPerSender {
		if _, replacing := m.bySender[tx.From][tx.Nonce]; !replacing {
			return serr.NewKind(serr.KindMempoolFull, "per-sender pending limit reached", "address", string(tx.From))
		}
	}
	if m.cfg.MaxSize > 0 && len(m.byHash) >= m.cfg.MaxSize {
		if _, replacing := m.byHash[tx.Hash()]; !replacing {
			return serr.NewKind(serr.KindMempoolFull, "mempool is full")
		}
	}
	return nil
}

// Select returns up to n pending transactions in priority order: highest
// fee first, FIFO among equal fees.
func (m *Mempool) Select(n int) []txn.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	ordered := make([]*pendingTx, len(m.pq))
	copy(ordered, m.pq)
	sortByPriority(ordered)

	if n > len(ordered) {
		n = len(ordered)
	}
	out := make([]txn.Transaction, n)
	for i := 0; i < n; i++ {
		out[i] = ordered[i].tx
	}
	return out
}

// Remove drops a single pending transaction, e.g. after it fails
// re-validation outside a block.
func (m *Mempool) Remove(hash crypto.Digest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.byHash[hash]; ok {
		m.removeLocked(p)
	}
}

// MarkIncluded drops every transaction in hashes, called once a block
// carrying them commits.
func (m *Mempool) MarkIncluded(hashes []crypto.Digest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range hashes {
		if p, ok := m.byHash[h]; ok {
			m.removeLocked(p)
		}
	}
}

// Expire drops every pending transaction whose (from, nonce) has been
// superseded by the current state, that has aged past ExpireAfter, or that
// is no longer funded.
func (m *Mempool) Expire() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := timeNow()
	for _, p := range append([]*pendingTx{}, m.pq...) {
		st := m.accounts.Get(p.tx.From)
		expired := p.tx.Nonce <= st.Nonce ||
			(m.cfg.ExpireAfter > 0 && now.Sub(p.addedAt) > m.cfg.ExpireAfter) ||
			st.Balances[p.tx.FeeAsset] < p.tx.Fee
		if expired {
			m.removeLocked(p)
		}
	}
}

// Len reports the number of pending transactions.
func (m *Mempool) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byHash)
}

func (m *Mempool) removeLocked(p *pendingTx) {
	delete(m.byHash, p.hash)
	if senderPending, ok := m.bySender[p.tx.From]; ok {
		delete(senderPending, p.tx.Nonce)
		if len(senderPending) == 0 {
			delete(m.bySender, p.tx.From)
		}
	}
	if p.index >= 0 && p.index < len(m.pq) && m.pq[p.index] == p {
		heap.Remove(&m.pq, p.index)
	}
}

var timeNow = time.Now
