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

// OAdd adds two amounts with overflow detection.
func OAdd(a, b Amount) (res Amount, overflowed bool) {
	res = a + b
	overflowed = res < a
	return
}

// OSub subtracts b from a with underflow detection.
func OSub(a, b Amount) (res Amount, overflowed bool) {
	res = a - b
	overflowed = res > a
	return
}

// OMul multiplies two amounts with overflow detection.
func OMul(a, b Amount) (res Amount, overflowed bool) {
	if b == 0 {
		return 0, false
	}
	c := a * b
	if c/b != a {
		return 0, true
	}
	return c, false
}
