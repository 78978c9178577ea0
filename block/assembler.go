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

package block

import (
	"github.com/atlasdb/atlasdb/accounting"
	"github.com/atlasdb/atlasdb/accounts"
	"github.com/atlasdb/atlasdb/aec"
	"github.com/atlasdb/atlasdb/asset"
	"github.com/atlasdb/atlasdb/basics"
	"github.com/atlasdb/atlasdb/crypto"
	"github.com/atlasdb/atlasdb/entry"
	"github.com/atlasdb/atlasdb/mempool"
	"github.com/atlasdb/atlasdb/serr"
	"github.com/atlasdb/atlasdb/stateroot"
	"github.com/atlasdb/atlasdb/txn"
)

// Assembler runs the leader half of C8: draining the mempool, executing
// transactions against a provisional fork of the state, and composing a
// signed block extending prev.
type Assembler struct {
	Assets        *asset.Registry
	Auth          crypto.Authenticator
	StateRootMode stateroot.Mode
}

// NewAssembler constructs an Assembler.
func NewAssembler(assets *asset.Registry, auth crypto.Authenticator, mode stateroot.Mode) *Assembler {
	return &Assembler{Assets: assets, Auth: auth, StateRootMode: mode}
}

// Assemble drains up to nMax transactions from pool in priority order,
// executes each against a fork of live, and returns a signed Block
// extending prev. Transactions that fail execution (stale nonce raced by
// another sender, since-spent balance) are silently excluded, not retried,
// and are left in pool; Assemble does not remove them.
func (a *Assembler) Assemble(pool *mempool.Mempool, live *accounts.Store, nMax int, prev Header, round uint32, timestamp uint64) (Block, error) {
	fork, err := live.Fork()
	if err != nil {
		return Block{}, err
	}
	defer fork.Close()

	engine := accounting.New(fork, a.Assets, nil)
	candidates := pool.Select(nMax)

	var included []txn.Transaction
	var journal []entry.LedgerEntry
	for _, tx := range candidates {
		_, le, err := engine.Execute(tx, prev.Height+1)
		if err != nil {
			continue
		}
		included = append(included, tx)
		journal = append(journal, le)
	}

	h := Header{
		Height:      prev.Height + 1,
		Round:       round,
		Proposer:    a.Auth.PublicKey(),
		PrevHash:    prev.BlockHash,
		StateRoot:   stateroot.Compute(a.StateRootMode, fork.Snapshot(), prev.Height+1, prev.BlockHash),
		JournalRoot: JournalRoot(journal),
		Timestamp:   timestamp,
	}
	h.Signature = a.Auth.SignBytes(h.SignedBytes())
	h.BlockHash = ComputeBlockHash(h)

	return Block{Header: h, Transactions: included, Journal: journal}, nil
}

// Executor runs the follower half of C8: re-executing a proposed block and,
// once it carries proof of quorum, committing it to the live state and AEC.
type Executor struct {
	Accounts      *accounts.Store
	Assets        *asset.Registry
	Chain         *aec.Store
	StateRootMode stateroot.Mode
}

// NewExecutor constructs an Executor over the live collaborators a
// follower commits blocks against.
func NewExecutor(accountsStore *accounts.Store, assets *asset.Registry, chain *aec.Store, mode stateroot.Mode) *Executor {
	return &Executor{Accounts: accountsStore, Assets: assets, Chain: chain, StateRootMode: mode}
}

// Verify re-executes b's transactions over a fork of the current state and
// checks that the result matches every commitment in b.Header: block
// linkage against prev, journal_root, state_root, and the proposer's
// signature. It never mutates live state; callers vote No on any error and
// Yes otherwise.
func (x *Executor) Verify(prev Header, proposer crypto.PublicKey, b Block) error {
	if b.Header.Height != prev.Height+1 {
		return serr.NewKind(serr.KindForkDetected, "unexpected block height", "want", prev.Height+1, "got", b.Header.Height)
	}
	if b.Header.PrevHash != prev.BlockHash {
		return serr.NewKind(serr.KindForkDetected, "prev_hash does not match known tip")
	}

	verifier, err := crypto.NewEd25519Verifier(proposer)
	if err != nil {
		return serr.NewKind(serr.KindProposerSignatureInvalid, "malformed proposer key")
	}
	if err := verifier.VerifyBytes(b.Header.SignedBytes(), b.Header.Signature); err != nil {
		return serr.NewKind(serr.KindProposerSignatureInvalid, "proposer signature verification failed")
	}
	if ComputeBlockHash(b.Header) != b.Header.BlockHash {
		return serr.NewKind(serr.KindProposerSignatureInvalid, "block_hash does not match header content")
	}

	fork, err := x.Accounts.Fork()
	if err != nil {
		return err
	}
	defer fork.Close()

	engine := accounting.New(fork, x.Assets, nil)
	journal := make([]entry.LedgerEntry, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		_, le, err := engine.Execute(tx, b.Header.Height)
		if err != nil {
			return err
		}
		journal = append(journal, le)
	}

	if JournalRoot(journal) != b.Header.JournalRoot {
		return serr.NewKind(serr.KindJournalRootMismatch, "journal_root mismatch", "height", b.Header.Height)
	}
	gotStateRoot := stateroot.Compute(x.StateRootMode, fork.Snapshot(), b.Header.Height, prev.BlockHash)
	if gotStateRoot != b.Header.StateRoot {
		return serr.NewKind(serr.KindStateRootMismatch, "state_root mismatch", "height", b.Header.Height)
	}
	return nil
}

// Commit applies b's journal to the live state and AEC. Callers must only
// call Commit once a block carries proof of quorum (a Commit message or
// equivalent); Commit does not itself check for one.
func (x *Executor) Commit(b Block) error {
	if err := x.Accounts.ApplyJournal(b.Journal, senderNonceBumps(b.Transactions)); err != nil {
		return err
	}
	if x.Chain != nil {
		for _, le := range b.Journal {
			if err := x.Chain.Append(le); err != nil {
				return err
			}
		}
	}
	return nil
}

// senderNonceBumps counts, per sender, how many of txs originated from it —
// each successfully executed transaction advances its sender's nonce by
// exactly one, matching what accounting.Engine.Execute applies one
// transaction at a time.
func senderNonceBumps(txs []txn.Transaction) map[basics.Address]uint64 {
	bumps := make(map[basics.Address]uint64, len(txs))
	for _, tx := range txs {
		bumps[tx.From]++
	}
	return bumps
}
