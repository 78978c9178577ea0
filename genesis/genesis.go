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

// Package genesis describes the chain's starting universe: the validator
// set, the asset registry seed, and the initial account allocations.
package genesis

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/atlasdb/atlasdb/accounts"
	"github.com/atlasdb/atlasdb/asset"
	"github.com/atlasdb/atlasdb/basics"
	"github.com/atlasdb/atlasdb/crypto"
	"github.com/atlasdb/atlasdb/protocol"
)

// Allocation funds a single address with a single asset at genesis.
type Allocation struct {
	Address basics.Address `json:"address"`
	Asset   basics.AssetID `json:"asset"`
	Amount  basics.Amount  `json:"amount"`
	Comment string         `json:"comment,omitempty"`
}

// Genesis defines the chain a node joins on first run: its id, the asset
// registry seed, the validator weight table, and the initial allocations.
// Unlike the multi-network bookkeeping.Genesis this is adapted from,
// AtlasDB has no consensus-protocol version field: the module ships one
// fixed protocol.
type Genesis struct {
	ChainID     string            `json:"chain_id"`
	Comment     string            `json:"comment,omitempty"`
	Timestamp   uint64            `json:"timestamp"`
	Validators  map[string]uint64 `json:"validators"`
	// ValidatorKeys maps each validator id named in Validators to its
	// hex-encoded ed25519 public key, so a node can identify itself by
	// matching its loaded keypair against this table and so the
	// consensus Engine can verify proposal and vote signatures.
	ValidatorKeys map[string]string `json:"validator_keys"`
	Assets        []asset.Metadata `json:"assets"`
	Allocations   []Allocation     `json:"allocations"`
}

// Load reads and decodes a genesis.json file.
func Load(path string) (Genesis, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}
	var g Genesis
	if err := protocol.DecodeJSON(text, &g); err != nil {
		return Genesis{}, fmt.Errorf("genesis: decode %s: %w", path, err)
	}
	if err := g.Validate(); err != nil {
		return Genesis{}, err
	}
	return g, nil
}

// Validate checks internal consistency the JSON decoder cannot enforce.
func (g Genesis) Validate() error {
	if g.ChainID == "" {
		return fmt.Errorf("genesis: chain_id must not be empty")
	}
	if len(g.Validators) == 0 {
		return fmt.Errorf("genesis: validators must not be empty")
	}
	for id := range g.Validators {
		key, ok := g.ValidatorKeys[id]
		if !ok {
			return fmt.Errorf("genesis: validator %q has no entry in validator_keys", id)
		}
		if _, err := hex.DecodeString(key); err != nil {
			return fmt.Errorf("genesis: validator %q key is not valid hex: %w", id, err)
		}
	}

	seen := make(map[basics.AssetID]bool, len(g.Assets))
	for _, md := range g.Assets {
		seen[md.ID] = true
	}
	for _, a := range g.Allocations {
		if !seen[a.Asset] {
			return fmt.Errorf("genesis: allocation references unregistered asset %q", a.Asset)
		}
	}
	return nil
}

// PublicKeys decodes ValidatorKeys into the form consensus.New expects.
func (g Genesis) PublicKeys() (map[string]crypto.PublicKey, error) {
	keys := make(map[string]crypto.PublicKey, len(g.ValidatorKeys))
	for id, hexKey := range g.ValidatorKeys {
		raw, err := hex.DecodeString(hexKey)
		if err != nil {
			return nil, fmt.Errorf("genesis: validator %q key is not valid hex: %w", id, err)
		}
		keys[id] = crypto.PublicKey(raw)
	}
	return keys, nil
}

// RegisterAssets loads the asset registry seed into assets. The registry is
// in-memory only, so this runs on every startup, not just a node's first
// run.
func (g Genesis) RegisterAssets(assets *asset.Registry) {
	for _, md := range g.Assets {
		assets.Register(md)
	}
}

// Seed funds every allocation against a freshly opened store. Seed is only
// meaningful on a node's first run: callers should skip it once the store
// already has committed history, or every restart would re-credit the
// allocations on top of whatever balance changes consensus has since
// applied.
func (g Genesis) Seed(store *accounts.Store) {
	for _, a := range g.Allocations {
		store.Seed(a.Address, a.Asset, a.Amount)
	}
}
