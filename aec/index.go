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

	"github.com/atlasdb/atlasdb/basics"
	"github.com/atlasdb/atlasdb/crypto"
	"github.com/atlasdb/atlasdb/serr"
)

// The KV index is local metadata only (spec.md §4.3: "not consensus-material
// ... may be rebuilt by replay"), so its key/value encodings never need to
// be canonical or cross-node comparable, just internally consistent.

// tailKey points an address at the entry_id of its most recent event.
func tailKey(addr basics.Address) []byte {
	return append([]byte("tail/"), []byte(addr)...)
}

// entryKey points (address, entry_id) at the record's location.
func entryKey(addr basics.Address, entryID crypto.Digest) []byte {
	k := append([]byte("entry/"), []byte(addr)...)
	k = append(k, '/')
	return append(k, entryID[:]...)
}

// location is where one account's record for one entry lives on disk.
type location struct {
	SegmentID string
	Offset    int64
	Length    uint32
}

func encodeLocation(loc location) []byte {
	buf := make([]byte, 2+len(loc.SegmentID)+8+4)
	binary.BigEndian.PutUint16(buf[0:2], uint16(len(loc.SegmentID)))
	copy(buf[2:], loc.SegmentID)
	off := 2 + len(loc.SegmentID)
	binary.BigEndian.PutUint64(buf[off:off+8], uint64(loc.Offset))
	binary.BigEndian.PutUint32(buf[off+8:off+12], loc.Length)
	return buf
}

func decodeLocation(b []byte) (location, error) {
	if len(b) < 2 {
		return location{}, serr.NewKind(serr.KindIndexCorrupt, "truncated location record")
	}
	n := int(binary.BigEndian.Uint16(b[0:2]))
	if len(b) < 2+n+12 {
		return location{}, serr.NewKind(serr.KindIndexCorrupt, "truncated location record")
	}
	segID := string(b[2 : 2+n])
	off := 2 + n
	return location{
		SegmentID: segID,
		Offset:    int64(binary.BigEndian.Uint64(b[off : off+8])),
		Length:    binary.BigEndian.Uint32(b[off+8 : off+12]),
	}, nil
}
