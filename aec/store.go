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

// Package aec implements the Account Event Chain: per-account linked hash
// chains of LedgerEntry participation, persisted in append-only segment
// files and indexed by a local key/value store for random access.
package aec

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/atlasdb/atlasdb/basics"
	"github.com/atlasdb/atlasdb/crypto"
	"github.com/atlasdb/atlasdb/entry"
	"github.com/atlasdb/atlasdb/serr"
	"github.com/atlasdb/atlasdb/util/kvstore"
)

// Store is the AEC (C5): append(), tail(), load(), walk_back(), stream().
type Store struct {
	dir       string
	index     kvstore.KVStore
	maxBytes  int64
	maxEvents int

	mu             sync.Mutex
	active         *os.File
	activeID       string
	activeHeader   segmentHeader
	activeOffset   int64
	activeEvents   int
	tails          map[basics.Address]crypto.Digest
}

// Open opens the AEC rooted at dir, using index for the (address, entry_id)
// and tail lookups. It recovers or creates the active segment.
func Open(dir string, index kvstore.KVStore, maxBytes int64, maxEvents int) (*Store, error) {
	s := &Store{
		dir:       dir,
		index:     index,
		maxBytes:  maxBytes,
		maxEvents: maxEvents,
		tails:     make(map[basics.Address]crypto.Digest),
	}
	if err := s.recoverOrCreateActive(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close flushes and closes the active segment. The index is owned by the
// caller and is not closed here.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	return s.active.Close()
}

// Append writes each leg-touched account's participation in e into the
// active segment, updates the index, and rotates the segment if it has
// crossed its configured size or event-count threshold.
func (s *Store) Append(e entry.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	touched := entry.TouchedAccounts(e.Legs)
	batch := s.index.NewBatch()
	for _, addr := range touched {
		prev := s.tails[addr]
		rec := record{Address: addr, Tick: e.BlockHeight, EntryID: e.EntryID, PrevEntryID: prev, Entry: e}
		offset := s.activeOffset
		length, err := writeRecord(s.active, rec)
		if err != nil {
			batch.Cancel()
			return err
		}
		s.activeOffset += int64(length)
		s.activeEvents++
		loc := location{SegmentID: s.activeID, Offset: offset, Length: length}
		if err := batch.Set(entryKey(addr, e.EntryID), encodeLocation(loc)); err != nil {
			batch.Cancel()
			return err
		}
		if err := batch.Set(tailKey(addr), e.EntryID[:]); err != nil {
			batch.Cancel()
			return err
		}
	}
	if e.BlockHeight > s.activeHeader.EndTick {
		s.activeHeader.EndTick = e.BlockHeight
		if _, err := s.active.WriteAt(encodeSegmentHeader(s.activeHeader), 0); err != nil {
			batch.Cancel()
			return err
		}
	}
	if err := s.active.Sync(); err != nil {
		batch.Cancel()
		return err
	}
	if err := batch.Commit(); err != nil {
		return err
	}
	for _, addr := range touched {
		s.tails[addr] = e.EntryID
	}

	if s.activeOffset >= s.maxBytes || s.activeEvents >= s.maxEvents {
		return s.rotate()
	}
	return nil
}

// Tail returns the most recent entry_id recorded for addr, if any.
func (s *Store) Tail(addr basics.Address) (crypto.Digest, bool) {
	s.mu.Lock()
	if d, ok := s.tails[addr]; ok {
		s.mu.Unlock()
		return d, true
	}
	s.mu.Unlock()

	v, err := s.index.Get(tailKey(addr))
	if err != nil || v == nil {
		return crypto.Digest{}, false
	}
	d, err := crypto.DigestFromBytes(v)
	if err != nil {
		return crypto.Digest{}, false
	}
	return d, true
}

// Load returns the LedgerEntry recorded for addr's participation in
// entryID.
func (s *Store) Load(addr basics.Address, entryID crypto.Digest) (entry.LedgerEntry, error) {
	rec, err := s.loadRecord(addr, entryID)
	if err != nil {
		return entry.LedgerEntry{}, err
	}
	return rec.Entry, nil
}

func (s *Store) loadRecord(addr basics.Address, entryID crypto.Digest) (record, error) {
	raw, err := s.index.Get(entryKey(addr, entryID))
	if err != nil {
		return record{}, err
	}
	if raw == nil {
		return record{}, serr.NewKind(serr.KindEventNotFound, "event not found", "address", string(addr), "entry_id", entryID.String())
	}
	loc, err := decodeLocation(raw)
	if err != nil {
		return record{}, err
	}

	s.mu.Lock()
	f, closeAfter, err := s.openSegmentForRead(loc.SegmentID)
	s.mu.Unlock()
	if err != nil {
		return record{}, err
	}
	if closeAfter {
		defer f.Close()
	}
	return readRecordAt(f, loc.Offset)
}

// openSegmentForRead returns the *os.File backing segmentID: the live
// active file handle if it's still open, or a fresh read-only handle onto
// its closed file otherwise (closeAfter reports which).
func (s *Store) openSegmentForRead(segmentID string) (f *os.File, closeAfter bool, err error) {
	if segmentID == s.activeID {
		return s.active, false, nil
	}
	path, err := s.resolveSegmentPath(segmentID)
	if err != nil {
		return nil, false, err
	}
	f, err = os.Open(path)
	return f, true, err
}

// WalkBack follows addr's chain backward from its tail, yielding up to
// limit LedgerEntry objects, most recent first. It is restartable from any
// entry id by callers that already hold one (via Load + PrevForAccount),
// and simply returns fewer than limit entries once the chain is exhausted.
func (s *Store) WalkBack(addr basics.Address, limit int) ([]entry.LedgerEntry, error) {
	tail, ok := s.Tail(addr)
	if !ok {
		return nil, nil
	}
	out := make([]entry.LedgerEntry, 0, limit)
	cur := tail
	for len(out) < limit {
		rec, err := s.loadRecord(addr, cur)
		if err != nil {
			return out, err
		}
		out = append(out, rec.Entry)
		if rec.PrevEntryID.IsZero() {
			break
		}
		cur = rec.PrevEntryID
	}
	return out, nil
}

// Stream returns the raw bytes of every segment overlapping
// [fromTick, toTick], in tick order, for bulk sync and audits. addr is
// accepted for interface symmetry with the other AEC operations; segments
// are not partitioned per account, so the current layout streams every
// account's records in range rather than filtering.
func (s *Store) Stream(addr basics.Address, fromTick, toTick uint64) (io.Reader, error) {
	_ = addr
	paths, err := s.segmentsOverlapping(fromTick, toTick)
	if err != nil {
		return nil, err
	}
	readers := make([]io.Reader, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		readers = append(readers, f)
	}
	return io.MultiReader(readers...), nil
}

func (s *Store) segmentsOverlapping(fromTick, toTick uint64) ([]string, error) {
	all, err := filepath.Glob(filepath.Join(s.dir, "segment_*.bin"))
	if err != nil {
		return nil, err
	}
	sort.Strings(all)

	var hits []string
	for _, p := range all {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		h, err := readSegmentHeader(f)
		f.Close()
		if err != nil {
			continue
		}
		if h.StartTick <= toTick && h.EndTick >= fromTick {
			hits = append(hits, p)
		}
	}
	return hits, nil
}

func (s *Store) resolveSegmentPath(segmentID string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, fmt.Sprintf("segment_%s_*.bin", segmentID)))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", serr.NewKind(serr.KindIndexCorrupt, "segment file missing", "segment_id", segmentID)
	}
	return matches[0], nil
}
