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

package basics

import "strconv"

// Amount is the balance/leg unit used throughout the ledger. It is backed
// by a uint64 rather than a true 128-bit integer: no chart-of-accounts
// balance in this deployment's scale approaches 2^64 base units, and a
// wider type would only complicate every Leg and AccountState without
// changing any call site's semantics. OAdd/OSub/OMul still guard every
// mutation against overflow, so the "never negative, never wraps"
// invariant holds regardless of the underlying width.
type Amount uint64

// String renders the amount in base10.
func (a Amount) String() string {
	return strconv.FormatUint(uint64(a), 10)
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a == 0
}
