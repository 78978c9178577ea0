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

package kvstore

import (
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"
	"github.com/cockroachdb/pebble/vfs"
)

// PebbleDB implements KVStore over cockroachdb/pebble, the AEC index's
// storage engine.
type PebbleDB struct {
	pdb *pebble.DB
	wo  *pebble.WriteOptions
}

// NewPebbleDB opens (or creates) a PebbleDB rooted at dbdir. When inMem is
// true the store lives entirely in memory (used by tests).
func NewPebbleDB(dbdir string, inMem bool) (*PebbleDB, error) {
	cache := pebble.NewCache(64 << 20)
	defer cache.Unref()
	// based on cockroachdb's DefaultPebbleOptions(); the AEC index is small
	// relative to cockroach's own workloads, so sizes are scaled down.
	opts := &pebble.Options{
		Cache:                       cache,
		L0CompactionThreshold:       2,
		L0StopWritesThreshold:       1000,
		LBaseMaxBytes:               16 << 20,
		Levels:                      make([]pebble.LevelOptions, 7),
		MaxConcurrentCompactions:    func() int { return 2 },
		MemTableSize:                16 << 20,
		MemTableStopWritesThreshold: 4,
	}
	opts.Experimental.ReadSamplingMultiplier = -1
	for i := range opts.Levels {
		l := &opts.Levels[i]
		l.BlockSize = 16 << 10
		l.IndexBlockSize = 128 << 10
		l.FilterPolicy = bloom.FilterPolicy(10)
		l.FilterType = pebble.TableFilter
		if i > 0 {
			l.TargetFileSize = opts.Levels[i-1].TargetFileSize * 2
		}
		l.EnsureDefaults()
	}
	opts.Levels[6].FilterPolicy = nil
	if inMem {
		opts.FS = vfs.NewMem()
	}

	pdb, err := pebble.Open(dbdir, opts)
	if err != nil {
		return nil, err
	}
	return &PebbleDB{pdb: pdb, wo: &pebble.WriteOptions{Sync: true}}, nil
}

// Close closes the database.
func (db *PebbleDB) Close() error { return db.pdb.Close() }

// Get fetches a key, returning (nil, nil) if the key is absent.
func (db *PebbleDB) Get(key []byte) ([]byte, error) {
	value, closer, err := db.pdb.Get(key)
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(value))
	copy(out, value)
	closer.Close()
	return out, nil
}

// Set writes a single key/value pair, fsync'd.
func (db *PebbleDB) Set(key, value []byte) error { return db.pdb.Set(key, value, db.wo) }

// Delete removes a key.
func (db *PebbleDB) Delete(key []byte) error { return db.pdb.Delete(key, db.wo) }

// NewBatch creates a batch writer used when rebuilding the index from segments.
func (db *PebbleDB) NewBatch() BatchWriter { return &pebbleBatch{wb: db.pdb.NewBatch(), wo: db.wo} }

type pebbleBatch struct {
	wb *pebble.Batch
	wo *pebble.WriteOptions
}

func (b *pebbleBatch) Set(key, value []byte) error { return b.wb.Set(key, value, b.wo) }
func (b *pebbleBatch) Delete(key []byte) error     { return b.wb.Delete(key, b.wo) }
func (b *pebbleBatch) Commit() error               { return b.wb.Commit(b.wo) }
func (b *pebbleBatch) Cancel()                     { b.wb.Close() }

// NewIterator scans [start, end); either bound may be nil.
func (db *PebbleDB) NewIterator(start, end []byte) Iterator {
	iter := db.pdb.NewIter(&pebble.IterOptions{LowerBound: start, UpperBound: end})
	iter.First()
	return &pebbleIterator{iter: iter}
}

type pebbleIterator struct {
	iter *pebble.Iterator
}

func (i *pebbleIterator) Next()       { i.iter.Next() }
func (i *pebbleIterator) Valid() bool { return i.iter.Valid() }
func (i *pebbleIterator) Close()      { i.iter.Close() }

func (i *pebbleIterator) Key() []byte {
	k := i.iter.Key()
	out := make([]byte, len(k))
	copy(out, k)
	return out
}

func (i *pebbleIterator) Value() ([]byte, error) {
	v := i.iter.Value()
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}
