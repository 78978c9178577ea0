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
	"io"
	"os"
	"path/filepath"
	"sort"
)

// rotate finalizes the current active segment (final header, checksum,
// rename to its closed name) and opens a fresh active segment starting
// right after it. Callers hold s.mu.
func (s *Store) rotate() error {
	if err := s.closeActive(); err != nil {
		return err
	}
	return s.openNewActive(s.activeHeader.EndTick + 1)
}

func (s *Store) closeActive() error {
	if _, err := s.active.WriteAt(encodeSegmentHeader(s.activeHeader), 0); err != nil {
		return err
	}
	if err := s.active.Sync(); err != nil {
		return err
	}
	path := s.active.Name()
	if err := s.active.Close(); err != nil {
		return err
	}
	sum, err := segmentChecksum(path)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return err
	}
	if _, err := f.Write(sum[:]); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	closedPath := filepath.Join(s.dir, closedSegmentFileName(s.activeHeader.StartTick, s.activeHeader.EndTick))
	return os.Rename(path, closedPath)
}

func (s *Store) openNewActive(startTick uint64) error {
	path := filepath.Join(s.dir, activeSegmentFileName(startTick))
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return err
	}
	header := segmentHeader{StartTick: startTick, EndTick: startTick}
	if err := writeSegmentHeader(f, header); err != nil {
		f.Close()
		return err
	}
	s.active = f
	s.activeID = segmentIDFor(startTick)
	s.activeHeader = header
	s.activeOffset = headerSize
	s.activeEvents = 0
	return nil
}

// recoverOrCreateActive scans dir for an unclosed active segment. If found,
// it verifies the tail is well-formed and truncates to the last valid
// record on any corruption (spec.md §4.3's crash-recovery rule). If none is
// found, a fresh segment starting at tick 0 is created.
func (s *Store) recoverOrCreateActive() error {
	matches, err := filepath.Glob(filepath.Join(s.dir, "segment_*_open.bin"))
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return s.openNewActive(0)
	}
	sort.Strings(matches)
	path := matches[len(matches)-1]

	f, err := os.OpenFile(path, os.O_RDWR, 0600)
	if err != nil {
		return err
	}
	header, err := readSegmentHeader(f)
	if err != nil {
		f.Close()
		return err
	}

	offset := int64(headerSize)
	events := 0
	for {
		rec, readErr := readRecordAt(f, offset)
		if readErr != nil {
			break
		}
		_, body := rec.ToBeHashed()
		offset += int64(4 + len(body))
		events++
		if rec.Tick > header.EndTick {
			header.EndTick = rec.Tick
		}
	}
	if err := f.Truncate(offset); err != nil {
		f.Close()
		return err
	}
	// readSegmentHeader advanced the cursor by headerSize and the scan loop
	// above used ReadAt, which never moves it; park it at the last valid
	// byte so Append's sequential writes pick up where recovery left off.
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		f.Close()
		return err
	}

	s.active = f
	s.activeID = segmentIDFor(header.StartTick)
	s.activeHeader = header
	s.activeOffset = offset
	s.activeEvents = events
	return nil
}
