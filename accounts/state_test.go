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

package accounts

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlasdb/atlasdb/basics"
)

func TestZeroStateIsZero(t *testing.T) {
	require.True(t, ZeroState().IsZero())
}

func TestCloneIsIndependent(t *testing.T) {
	a := require.New(t)

	st := ZeroState()
	st.Balances["wallet:mint/ATLAS"] = 100

	clone := st.Clone()
	clone.Balances["wallet:mint/ATLAS"] = 5

	a.EqualValues(100, st.Balances["wallet:mint/ATLAS"])
	a.EqualValues(5, clone.Balances["wallet:mint/ATLAS"])
}

func TestLeafDeterministic(t *testing.T) {
	a := require.New(t)

	st := ZeroState()
	st.Balances["wallet:mint/ATLAS"] = 100
	st.Balances["wallet:mint/USD"] = 50
	st.Nonce = 3

	l1 := Leaf("wallet:mint/ATLAS:alice", st)
	l2 := Leaf("wallet:mint/ATLAS:alice", st.Clone())
	a.Equal(l1, l2)

	other := st.Clone()
	other.Nonce = 4
	a.NotEqual(l1, Leaf("wallet:mint/ATLAS:alice", other))

	a.NotEqual(l1, Leaf("wallet:mint/ATLAS:bob", st))
}

func TestIsZeroFalseWithBalance(t *testing.T) {
	a := require.New(t)
	st := ZeroState()
	st.Balances[basics.AssetID("x")] = 1
	a.False(st.IsZero())
}
