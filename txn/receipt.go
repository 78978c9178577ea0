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

package txn

import "github.com/atlasdb/atlasdb/crypto"

// Status reports the outcome of processing a Transaction.
type Status string

const (
	StatusApplied Status = "applied"
	StatusFailed  Status = "failed"
)

// Receipt is returned to the submitter once the Accounting Engine has run
// the transaction to completion, successfully or not.
type Receipt struct {
	TxHash         crypto.Digest
	Status         Status
	LedgerEntryIDs []crypto.Digest
	Memo           string
	Error          string
}
