// Copyright (C) 2019-2023 Algorand, Inc.
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

package serr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewKindRoundTrip(t *testing.T) {
	a := require.New(t)
	err := NewKind(KindInsufficientBalance, "balance too low", "account", "wallet:bob:1")

	k, ok := KindOf(err)
	a.True(ok)
	a.Equal(KindInsufficientBalance, k)
	a.True(Is(err, KindInsufficientBalance))
	a.False(Is(err, KindNonceMismatch))
}

func TestWithKindOnPlainError(t *testing.T) {
	a := require.New(t)
	plain := errors.New("boom")
	wrapped := WithKind(plain, KindSegmentChecksumFail)

	a.True(Is(wrapped, KindSegmentChecksumFail))
}

func TestKindOfMissing(t *testing.T) {
	a := require.New(t)
	_, ok := KindOf(errors.New("no kind here"))
	a.False(ok)
}

func TestIsFatal(t *testing.T) {
	a := require.New(t)
	a.True(IsFatal(NewKind(KindStateRootMismatch, "mismatch")))
	a.True(IsFatal(NewKind(KindJournalRootMismatch, "mismatch")))
	a.True(IsFatal(NewKind(KindProposerSignatureInvalid, "bad sig")))
	a.False(IsFatal(NewKind(KindNoQuorum, "no quorum")))
	a.False(IsFatal(errors.New("plain")))
}

func TestExtendPreservesExistingKind(t *testing.T) {
	a := require.New(t)
	err := NewKind(KindUnbalancedJournal, "legs don't balance")
	extended := Extend(err, "asset", "ATLAS")

	a.True(Is(extended, KindUnbalancedJournal))
}
