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

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOAdd(t *testing.T) {
	a := require.New(t)

	res, overflowed := OAdd(Amount(5), Amount(6))
	a.False(overflowed)
	a.Equal(Amount(11), res)

	_, overflowed = OAdd(Amount(math.MaxUint64), Amount(1))
	a.True(overflowed)
}

func TestOSub(t *testing.T) {
	a := require.New(t)

	res, overflowed := OSub(Amount(10), Amount(4))
	a.False(overflowed)
	a.Equal(Amount(6), res)

	_, overflowed = OSub(Amount(1), Amount(2))
	a.True(overflowed)
}

func TestOMul(t *testing.T) {
	a := require.New(t)

	res, overflowed := OMul(Amount(7), Amount(6))
	a.False(overflowed)
	a.Equal(Amount(42), res)

	_, overflowed = OMul(Amount(math.MaxUint64), Amount(2))
	a.True(overflowed)

	res, overflowed = OMul(Amount(100), Amount(0))
	a.False(overflowed)
	a.Equal(Amount(0), res)
}
