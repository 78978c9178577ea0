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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressSplit(t *testing.T) {
	a := require.New(t)

	class, sub, id, err := Address("wallet:mint/ATLAS:alice").Split()
	a.NoError(err)
	a.Equal(ClassWallet, class)
	a.Equal("mint/ATLAS", sub)
	a.Equal("alice", id)
}

func TestAddressSplitRejectsMalformed(t *testing.T) {
	a := require.New(t)

	_, _, _, err := Address("wallet:alice").Split()
	a.Error(err)

	_, _, _, err = Address("").Split()
	a.Error(err)
}

func TestAssetIDSymbol(t *testing.T) {
	a := require.New(t)
	a.Equal("ATLAS", AssetID("wallet:mint/ATLAS").Symbol())
	a.Equal("USD", AssetID("wallet:mint/USD").Symbol())
}
