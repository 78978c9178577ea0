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
	"database/sql"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/atlasdb/atlasdb/basics"
	"github.com/atlasdb/atlasdb/chart"
	"github.com/atlasdb/atlasdb/entry"
	"github.com/atlasdb/atlasdb/serr"
	"github.com/atlasdb/atlasdb/util/db"
)

// snapshot is the published, read-only view of the whole account table.
// Readers load it once and never see a half-applied journal; the Store
// swaps in a new snapshot atomically only after a journal has both
// succeeded in memory and been durably written.
type snapshot map[basics.Address]AccountState

// Store is the State Store (C4): the single-writer mapping from Address
// to AccountState, backed by sqlite for durability and by an
// atomically-published in-memory snapshot for lock-free reads.
type Store struct {
	db      db.Accessor
	current atomic.Pointer[snapshot]
}

// Open opens (creating if necessary) the sqlite-backed state table at
// dbPath and loads its contents into the initial published snapshot.
func Open(dbPath string) (*Store, error) {
	return open(dbPath, false)
}

// memStoreSeq gives each OpenMemory call its own in-memory database name.
var memStoreSeq atomic.Uint64

// OpenMemory opens a private, non-durable state store (used by tests and by
// Fork).
func OpenMemory() (*Store, error) {
	return open(fmt.Sprintf("atlasdb-accounts-mem-%d", memStoreSeq.Add(1)), true)
}

func open(dbPath string, inMemory bool) (*Store, error) {
	accessor, err := db.MakeAccessor(dbPath, false, inMemory)
	if err != nil {
		return nil, err
	}
	s := &Store{db: accessor}
	if err := s.createSchema(); err != nil {
		accessor.Close()
		return nil, err
	}
	if err := s.loadSnapshot(); err != nil {
		accessor.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() {
	s.db.Close()
}

func (s *Store) createSchema() error {
	return s.db.Atomic("accounts-schema", func(tx *sql.Tx) error {
		_, err := tx.Exec(`CREATE TABLE IF NOT EXISTS accounts (
			address TEXT PRIMARY KEY,
			balances TEXT NOT NULL,
			nonce INTEGER NOT NULL,
			last_tx_hash BLOB,
			last_entry_id BLOB,
			has_history INTEGER NOT NULL
		)`)
		return err
	})
}

func (s *Store) loadSnapshot() error {
	snap := make(snapshot)
	rows, err := s.db.Handle.Query(`SELECT address, balances, nonce, last_tx_hash, last_entry_id, has_history FROM accounts`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var addr string
		var balancesJSON string
		var nonce uint64
		var lastTxHash, lastEntryID []byte
		var hasHistory bool
		if err := rows.Scan(&addr, &balancesJSON, &nonce, &lastTxHash, &lastEntryID, &hasHistory); err != nil {
			return err
		}
		var balances map[basics.AssetID]basics.Amount
		if err := json.Unmarshal([]byte(balancesJSON), &balances); err != nil {
			return err
		}
		st := AccountState{Balances: balances, Nonce: nonce, HasHistory: hasHistory}
		copy(st.LastTxHash[:], lastTxHash)
		copy(st.LastEntryID[:], lastEntryID)
		snap[basics.Address(addr)] = st
	}
	s.current.Store(&snap)
	return rows.Err()
}

// Get returns a cloned copy of addr's current state, or the zero state if
// addr has never been touched.
func (s *Store) Get(addr basics.Address) AccountState {
	snap := *s.current.Load()
	if st, ok := snap[addr]; ok {
		return st.Clone()
	}
	return ZeroState()
}

// Snapshot returns the full published account table. Callers must treat
// the result as read-only: it is shared with concurrent readers and with
// the Store itself.
func (s *Store) Snapshot() map[basics.Address]AccountState {
	return *s.current.Load()
}

// Seed funds addr directly in the published snapshot, bypassing
// ApplyJournal. Genesis bootstrap uses this: unsigned balances leave no
// room for a journal entry whose other leg would need to go negative, so
// the very first funds in any asset are written in directly rather than
// transferred. Tests use it for the same reason.
func (s *Store) Seed(addr basics.Address, asset basics.AssetID, amount basics.Amount) {
	old := *s.current.Load()
	work := make(snapshot, len(old)+1)
	for k, v := range old {
		work[k] = v
	}
	st := work[addr].Clone()
	if st.Balances == nil {
		st = ZeroState()
	}
	st.Balances[asset] = amount
	work[addr] = st
	s.current.Store(&work)
}

// Fork returns a disposable in-memory Store preloaded with a clone of s's
// current snapshot. The Block Assembler uses it to execute a candidate
// block's transactions speculatively: nothing written to the fork is
// visible to readers of s, and the fork is simply discarded (Close) if the
// candidate block is abandoned.
func (s *Store) Fork() (*Store, error) {
	fork, err := OpenMemory()
	if err != nil {
		return nil, err
	}
	old := *s.current.Load()
	work := make(snapshot, len(old))
	for addr, st := range old {
		work[addr] = st.Clone()
	}
	fork.current.Store(&work)
	return fork, nil
}

// ApplyJournal applies entries to the state atomically: every leg's effect
// on its account's balance (per chart.Classify's natural side), plus a
// nonce bump for each address named in nonceBumps, plus last_entry_id and
// last_tx_hash updates for every account touched by any entry. On any
// error — unknown class, overflow, underflow — no part of the journal is
// applied: neither the in-memory snapshot nor the database changes.
func (s *Store) ApplyJournal(entries []entry.LedgerEntry, nonceBumps map[basics.Address]uint64) error {
	old := *s.current.Load()
	work := make(snapshot, len(old))
	for k, v := range old {
		work[k] = v
	}

	touch := func(addr basics.Address) AccountState {
		st, ok := work[addr]
		if !ok {
			st = ZeroState()
		} else {
			st = st.Clone()
		}
		return st
	}

	for _, e := range entries {
		for _, leg := range e.Legs {
			_, _, creditNatural, err := chart.Classify(leg.Account)
			if err != nil {
				return err
			}
			st := touch(leg.Account)
			increase := (leg.Kind == entry.Credit) == creditNatural
			cur := st.Balances[leg.Asset]
			var overflow bool
			var next basics.Amount
			if increase {
				next, overflow = basics.OAdd(cur, leg.Amount)
				if overflow {
					return serr.NewKind(serr.KindBalanceOverflow, "balance overflow", "address", string(leg.Account), "asset", string(leg.Asset))
				}
			} else {
				next, overflow = basics.OSub(cur, leg.Amount)
				if overflow {
					return serr.NewKind(serr.KindInsufficientBalance, "insufficient balance", "address", string(leg.Account), "asset", string(leg.Asset))
				}
			}
			st.Balances[leg.Asset] = next
			work[leg.Account] = st
		}
		for _, addr := range entry.TouchedAccounts(e.Legs) {
			st := touch(addr)
			st.LastEntryID = e.EntryID
			st.LastTxHash = e.TxHash
			st.HasHistory = true
			work[addr] = st
		}
	}

	for addr, bump := range nonceBumps {
		st := touch(addr)
		next, overflow := basics.OAdd(basics.Amount(st.Nonce), basics.Amount(bump))
		if overflow {
			return serr.NewKind(serr.KindBalanceOverflow, "nonce overflow", "address", string(addr))
		}
		st.Nonce = uint64(next)
		work[addr] = st
	}

	if err := s.persist(work); err != nil {
		return err
	}
	s.current.Store(&work)
	return nil
}

func (s *Store) persist(work snapshot) error {
	return s.db.Atomic("accounts-apply", func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT INTO accounts (address, balances, nonce, last_tx_hash, last_entry_id, has_history)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(address) DO UPDATE SET balances=excluded.balances, nonce=excluded.nonce,
				last_tx_hash=excluded.last_tx_hash, last_entry_id=excluded.last_entry_id, has_history=excluded.has_history`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for addr, st := range work {
			balancesJSON, err := json.Marshal(st.Balances)
			if err != nil {
				return err
			}
			var lastTxHash, lastEntryID []byte
			if st.HasHistory {
				lastTxHash = st.LastTxHash.ToSlice()
				lastEntryID = st.LastEntryID.ToSlice()
			}
			if _, err := stmt.Exec(string(addr), string(balancesJSON), st.Nonce, lastTxHash, lastEntryID, st.HasHistory); err != nil {
				return err
			}
		}
		return nil
	})
}
