// Copyright (C) 2019-2021 Algorand, Inc.
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

package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlasdb/atlasdb/protocol"
)

func TestEd25519AuthenticatorSignAndVerify(t *testing.T) {
	a := require.New(t)
	auth, err := GenerateEd25519Authenticator()
	a.NoError(err)

	msg := testHashable{id: protocol.Transaction, data: []byte("transfer 10 from alice to bob")}
	sig := auth.Sign(msg)

	a.NoError(auth.Verifier().Verify(msg, sig))
}

func TestEd25519VerifierRejectsTamperedSignature(t *testing.T) {
	a := require.New(t)
	auth, err := GenerateEd25519Authenticator()
	a.NoError(err)

	msg := testHashable{id: protocol.Transaction, data: []byte("transfer 10 from alice to bob")}
	sig := auth.Sign(msg)
	sig[0] ^= 0xFF

	a.ErrorIs(auth.Verifier().Verify(msg, sig), ErrBadSignature)
}

func TestEd25519VerifierRejectsWrongKey(t *testing.T) {
	a := require.New(t)
	auth1, err := GenerateEd25519Authenticator()
	a.NoError(err)
	auth2, err := GenerateEd25519Authenticator()
	a.NoError(err)

	msg := testHashable{id: protocol.Transaction, data: []byte("payload")}
	sig := auth1.Sign(msg)

	a.Error(auth2.Verifier().Verify(msg, sig))
}

func TestNewEd25519AuthenticatorFromSeed(t *testing.T) {
	a := require.New(t)
	auth1, err := GenerateEd25519Authenticator()
	a.NoError(err)

	seed := auth1.private.Seed()
	auth2, err := NewEd25519Authenticator(seed)
	a.NoError(err)

	a.Equal(auth1.PublicKey(), auth2.PublicKey())
}

func TestNewEd25519VerifierRejectsBadLength(t *testing.T) {
	a := require.New(t)
	_, err := NewEd25519Verifier(PublicKey([]byte{1, 2, 3}))
	a.Error(err)
}
