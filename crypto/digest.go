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

package crypto

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"

	"github.com/atlasdb/atlasdb/protocol"
)

// DigestSize is the fixed size, in bytes, of every digest AtlasDB produces.
// AtlasDB resolves the hash-function open question to BLAKE3 everywhere: a
// single fixed hash keeps LedgerEntry IDs, block hashes, and Merkle roots
// comparable without a HashFactory indirection.
const DigestSize = 32

// Digest is a 32-byte BLAKE3 hash output.
type Digest [DigestSize]byte

// String returns the hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether d is the zero digest.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// ToSlice returns the digest's bytes as a slice.
func (d Digest) ToSlice() []byte {
	return d[:]
}

// MarshalText implements encoding.TextMarshaler, so a Digest renders as hex
// in JSON (RPC responses, config) instead of a base64 byte array.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(d[:])), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	if len(b) != DigestSize {
		return fmt.Errorf("crypto: digest must be %d bytes, got %d", DigestSize, len(b))
	}
	copy(d[:], b)
	return nil
}

// DigestFromBytes copies b into a Digest, failing if the length is wrong.
func DigestFromBytes(b []byte) (Digest, error) {
	var d Digest
	if len(b) != DigestSize {
		return d, fmt.Errorf("crypto: digest must be %d bytes, got %d", DigestSize, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// GenericDigest is a variable-length digest, used where a value may come
// from a caller that does not yet know the digest's fixed width (wire
// decoding, untrusted input validation) before it's coerced to a Digest.
type GenericDigest []byte

// ToSlice returns the raw bytes.
func (d GenericDigest) ToSlice() []byte { return d }

// IsEqual compares two digests for equality.
func (d GenericDigest) IsEqual(other GenericDigest) bool {
	return bytes.Equal(d, other)
}

// IsEmpty reports whether the digest carries no bytes.
func (d GenericDigest) IsEmpty() bool {
	return len(d) == 0
}

// Hashable is implemented by any object that can be represented as a
// sequence of bytes to be hashed or signed, tagged with a HashID so that
// two differently-typed objects whose encodings happen to collide never
// produce the same digest.
type Hashable interface {
	ToBeHashed() (protocol.HashID, []byte)
}

// HashRep prepends the domain-separation tag to the bytes to be hashed.
func HashRep(h Hashable) []byte {
	hashID, data := h.ToBeHashed()
	return append([]byte(hashID), data...)
}

// Hash returns the BLAKE3 digest of data.
func Hash(data []byte) Digest {
	return Digest(blake3.Sum256(data))
}

// HashObj computes the digest of a Hashable's tagged representation.
func HashObj(h Hashable) Digest {
	return Hash(HashRep(h))
}

// HashEncoded hashes the canonical encoding of obj under the given HashID.
// Callers that don't need a custom ToBeHashed layout (most callers) use
// this instead of implementing Hashable by hand.
func HashEncoded(id protocol.HashID, obj interface{}) Digest {
	data := append([]byte(id), protocol.Encode(obj)...)
	return Hash(data)
}
