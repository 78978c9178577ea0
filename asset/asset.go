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

// Package asset holds the registry of token metadata AtlasDB's chart of
// accounts denominates balances in.
package asset

import (
	"sort"
	"sync"

	"github.com/atlasdb/atlasdb/basics"
	"github.com/atlasdb/atlasdb/serr"
)

// Metadata describes a registered asset.
type Metadata struct {
	ID       basics.AssetID
	Name     string
	Decimals uint32
	Issuer   basics.Address
}

// Registry is the in-memory asset metadata table. It is read far more
// often than written (an asset, once registered, is effectively static),
// so mutation is serialized under a single lock while reads take a
// snapshot copy.
type Registry struct {
	mu     sync.RWMutex
	assets map[basics.AssetID]Metadata
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{assets: make(map[basics.AssetID]Metadata)}
}

// Register adds md to the registry. Registering an id a second time
// overwrites the previous metadata; callers that want genesis-only
// immutability should not call Register after node startup.
func (r *Registry) Register(md Metadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets[md.ID] = md
}

// Lookup returns the metadata for id, or an AssetNotRegistered error.
func (r *Registry) Lookup(id basics.AssetID) (Metadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	md, ok := r.assets[id]
	if !ok {
		return Metadata{}, serr.NewKind(serr.KindAssetNotRegistered, "asset not registered", "asset", string(id))
	}
	return md, nil
}

// List returns all registered assets sorted by id, the shape GetTokens
// needs for a deterministic RPC response.
func (r *Registry) List() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Metadata, 0, len(r.assets))
	for _, md := range r.assets {
		out = append(out, md)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
