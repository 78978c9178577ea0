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
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
)

// ByteSignature is a cryptographic signature represented as raw bytes.
type ByteSignature []byte

// PublicKey identifies an account or validator's signing identity. It is
// the VerifyingKey half of an Authenticator.
type PublicKey []byte

// ErrBadSignature is returned by Verify when a signature does not check out.
var ErrBadSignature = fmt.Errorf("crypto: invalid signature")

// Authenticator is the signing capability boundary (C1). AtlasDB ships one
// concrete implementation, Ed25519Authenticator, but every component that
// signs or verifies (transaction submission, vote casting, proposal
// certification) depends on this interface rather than on ed25519 directly,
// so key custody can move into an HSM or remote signer without touching
// consensus or accounting code.
type Authenticator interface {
	// Sign produces a signature over the digest of h.
	Sign(h Hashable) ByteSignature
	// SignBytes produces a signature over raw bytes, used for payloads that
	// are not independently hashable (e.g. an already-computed digest).
	SignBytes(msg []byte) ByteSignature
	// PublicKey returns the verifying key corresponding to this signer.
	PublicKey() PublicKey
}

// Verifier checks signatures produced by an Authenticator's matching
// PublicKey. Unlike Authenticator it holds no secret material, so it is
// safe to construct from a PublicKey read off the wire.
type Verifier interface {
	Verify(h Hashable, sig ByteSignature) error
	VerifyBytes(msg []byte, sig ByteSignature) error
}

// Ed25519Authenticator is the default Authenticator: a plain in-process
// ed25519 keypair. Production deployments that need remote or
// hardware-backed signing implement Authenticator themselves.
type Ed25519Authenticator struct {
	public  ed25519.PublicKey
	private ed25519.PrivateKey
}

// GenerateEd25519Authenticator creates a fresh random keypair.
func GenerateEd25519Authenticator() (*Ed25519Authenticator, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("crypto: generating ed25519 key: %w", err)
	}
	return &Ed25519Authenticator{public: pub, private: priv}, nil
}

// NewEd25519Authenticator wraps an existing seed (as produced by a keypair
// file loaded from the path passed to --keypair) into an Authenticator.
func NewEd25519Authenticator(seed []byte) (*Ed25519Authenticator, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("crypto: ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &Ed25519Authenticator{public: priv.Public().(ed25519.PublicKey), private: priv}, nil
}

// Sign implements Authenticator.
func (a *Ed25519Authenticator) Sign(h Hashable) ByteSignature {
	digest := HashObj(h)
	return ed25519.Sign(a.private, digest[:])
}

// SignBytes implements Authenticator.
func (a *Ed25519Authenticator) SignBytes(msg []byte) ByteSignature {
	return ed25519.Sign(a.private, msg)
}

// PublicKey implements Authenticator.
func (a *Ed25519Authenticator) PublicKey() PublicKey {
	return PublicKey(a.public)
}

// Verifier returns a Verifier bound to this authenticator's public key.
func (a *Ed25519Authenticator) Verifier() Verifier {
	return Ed25519Verifier{public: a.public}
}

// Ed25519Verifier verifies signatures produced by an Ed25519Authenticator
// holding the matching private key.
type Ed25519Verifier struct {
	public ed25519.PublicKey
}

// NewEd25519Verifier builds a Verifier from a wire-received PublicKey.
func NewEd25519Verifier(pub PublicKey) (Ed25519Verifier, error) {
	if len(pub) != ed25519.PublicKeySize {
		return Ed25519Verifier{}, fmt.Errorf("crypto: ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(pub))
	}
	return Ed25519Verifier{public: ed25519.PublicKey(pub)}, nil
}

// Verify implements Verifier.
func (v Ed25519Verifier) Verify(h Hashable, sig ByteSignature) error {
	digest := HashObj(h)
	return v.VerifyBytes(digest[:], sig)
}

// VerifyBytes implements Verifier.
func (v Ed25519Verifier) VerifyBytes(msg []byte, sig ByteSignature) error {
	if !ed25519.Verify(v.public, msg, sig) {
		return ErrBadSignature
	}
	return nil
}
