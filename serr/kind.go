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

import "errors"

// Kind classifies a structured Error into one of the named failure modes
// AtlasDB's components report. Kind groups into five bands, matching the
// layer that detects the failure: admission/execution, mempool admission,
// storage, consensus, and protocol-fatal.
type Kind string

const (
	// Admission/execution errors (C3/C5/C6).
	KindUnknownAccountClass Kind = "UnknownAccountClass"
	KindInsufficientBalance Kind = "InsufficientBalance"
	KindNonceMismatch       Kind = "NonceMismatch"
	KindUnbalancedJournal   Kind = "UnbalancedJournal"
	KindBalanceOverflow     Kind = "BalanceOverflow"
	KindAssetNotRegistered  Kind = "AssetNotRegistered"

	// Mempool admission errors (C7).
	KindSignatureInvalid     Kind = "SignatureInvalid"
	KindChainIDMismatch      Kind = "ChainIDMismatch"
	KindDuplicateTransaction Kind = "DuplicateTransaction"
	KindMempoolFull          Kind = "MempoolFull"
	KindTransactionExpired   Kind = "TransactionExpired"
	KindFeeTooLow            Kind = "FeeTooLow"

	// Storage errors (C5).
	KindSegmentChecksumFail Kind = "SegmentChecksumFail"
	KindIndexCorrupt        Kind = "IndexCorrupt"
	KindEventNotFound       Kind = "EventNotFound"

	// Consensus errors (C9).
	KindNoQuorum        Kind = "NoQuorum"
	KindTermMismatch    Kind = "TermMismatch"
	KindUnknownProposer Kind = "UnknownProposer"
	KindForkDetected    Kind = "ForkDetected"
	KindSyncRejected    Kind = "SyncRejected"
	KindTimeout         Kind = "Timeout"

	// Protocol-fatal errors (C8/C9): a node that hits one of these halts
	// rather than continuing with state it cannot trust.
	KindJournalRootMismatch      Kind = "JournalRootMismatch"
	KindStateRootMismatch        Kind = "StateRootMismatch"
	KindProposerSignatureInvalid Kind = "ProposerSignatureInvalid"
)

// fatalKinds holds the Kinds that require a node to halt rather than
// continue operating on state it can no longer trust.
var fatalKinds = map[Kind]bool{
	KindJournalRootMismatch:      true,
	KindStateRootMismatch:        true,
	KindProposerSignatureInvalid: true,
}

// IsFatal reports whether err (or any error it wraps) carries a
// protocol-fatal Kind.
func IsFatal(err error) bool {
	k, ok := KindOf(err)
	return ok && fatalKinds[k]
}

// NewKind creates a structured error carrying the given Kind, message, and
// attribute pairs.
func NewKind(kind Kind, msg string, pairs ...any) *Error {
	e := New(msg, pairs...)
	e.Attrs["kind"] = string(kind)
	return e
}

// KindOf extracts the Kind attached to err via NewKind or WithKind, if any.
func KindOf(err error) (Kind, bool) {
	var serr *Error
	if !errors.As(err, &serr) {
		return "", false
	}
	v, ok := serr.Attrs["kind"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return Kind(s), true
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// WithKind attaches a Kind to an existing error, extending it the way
// Extend extends attributes.
func WithKind(err error, kind Kind) error {
	wrapped := Extend(err, "kind", string(kind))
	return wrapped
}
