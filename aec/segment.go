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

package aec

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/atlasdb/atlasdb/basics"
	"github.com/atlasdb/atlasdb/crypto"
	"github.com/atlasdb/atlasdb/entry"
	"github.com/atlasdb/atlasdb/protocol"
	"github.com/atlasdb/atlasdb/serr"
)

// segmentMagic and segmentVersion identify AtlasDB's AEC segment layout:
// magic(4) | version(2) | start_tick(8) | end_tick(8) | [record]* | checksum(32).
var segmentMagic = [4]byte{'A', 'T', 'L', 'S'}

const segmentVersion uint16 = 1

const headerSize = 4 + 2 + 8 + 8 // magic + version + start_tick + end_tick

// segmentHeader is the fixed-size prefix of every segment file.
type segmentHeader struct {
	StartTick uint64
	EndTick   uint64
}

func encodeSegmentHeader(h segmentHeader) []byte {
	buf := make([]byte, headerSize)
	copy(buf[0:4], segmentMagic[:])
	binary.BigEndian.PutUint16(buf[4:6], segmentVersion)
	binary.BigEndian.PutUint64(buf[6:14], h.StartTick)
	binary.BigEndian.PutUint64(buf[14:22], h.EndTick)
	return buf
}

func writeSegmentHeader(w io.Writer, h segmentHeader) error {
	_, err := w.Write(encodeSegmentHeader(h))
	return err
}

func readSegmentHeader(r io.Reader) (segmentHeader, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return segmentHeader{}, err
	}
	if [4]byte(buf[0:4]) != segmentMagic {
		return segmentHeader{}, serr.NewKind(serr.KindSegmentChecksumFail, "bad segment magic")
	}
	if binary.BigEndian.Uint16(buf[4:6]) != segmentVersion {
		return segmentHeader{}, serr.NewKind(serr.KindSegmentChecksumFail, "unsupported segment version")
	}
	return segmentHeader{
		StartTick: binary.BigEndian.Uint64(buf[6:14]),
		EndTick:   binary.BigEndian.Uint64(buf[14:22]),
	}, nil
}

// record is one account's participation in a committed LedgerEntry: enough
// to reconstruct the entry and to continue walking the account's chain
// backward via PrevEntryID.
type record struct {
	Address     basics.Address
	Tick        uint64
	EntryID     crypto.Digest
	PrevEntryID crypto.Digest
	Entry       entry.LedgerEntry
}

func (r record) ToBeHashed() (protocol.HashID, []byte) {
	return protocol.SegmentRec, protocol.Encode(r)
}

// writeRecord appends a length-prefixed, canonically-encoded record and
// returns the byte offset and length it occupied, for the index to record.
func writeRecord(w io.Writer, r record) (length uint32, err error) {
	_, body := r.ToBeHashed()
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(body)))
	if _, err := w.Write(lenBuf); err != nil {
		return 0, err
	}
	if _, err := w.Write(body); err != nil {
		return 0, err
	}
	return uint32(4 + len(body)), nil
}

// readRecordAt reads the length-prefixed record stored at offset in f.
func readRecordAt(f *os.File, offset int64) (record, error) {
	lenBuf := make([]byte, 4)
	if _, err := f.ReadAt(lenBuf, offset); err != nil {
		return record{}, err
	}
	n := binary.BigEndian.Uint32(lenBuf)
	body := make([]byte, n)
	if _, err := f.ReadAt(body, offset+4); err != nil {
		return record{}, err
	}
	var r record
	if err := protocol.Decode(body, &r); err != nil {
		return record{}, serr.NewKind(serr.KindIndexCorrupt, "record decode failed", "err", err.Error())
	}
	return r, nil
}

// segmentChecksum returns the BLAKE3 digest over everything written to the
// segment so far (header and records, excluding the checksum itself).
func segmentChecksum(path string) (crypto.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return crypto.Digest{}, err
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return crypto.Digest{}, err
	}
	return crypto.Hash(b), nil
}

// segmentID identifies a segment independent of its closed/active state,
// so the index can reference a segment before its end_tick is known.
func segmentIDFor(startTick uint64) string {
	return fmt.Sprintf("%020d", startTick)
}

func closedSegmentFileName(startTick, endTick uint64) string {
	return fmt.Sprintf("segment_%s_%020d.bin", segmentIDFor(startTick), endTick)
}

// activeSegmentFileName names the currently-open segment. spec.md §6 names
// this file segment_{start}_open.bin.
func activeSegmentFileName(startTick uint64) string {
	return fmt.Sprintf("segment_%s_open.bin", segmentIDFor(startTick))
}
