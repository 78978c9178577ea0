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

// Package basics holds the primitive value types shared across every
// ledger component: addresses, asset identifiers, and the fixed-point
// amount type balances and legs are denominated in.
package basics

import (
	"fmt"
	"strings"
)

// Address is a ledger account key of the form "class:subclass:identifier".
// The class prefix is dispositive for chart-of-accounts classification; it
// is never inferred from the subclass or identifier.
type Address string

// Class is the root chart-of-accounts class a well-formed Address belongs
// to, taken directly from its prefix.
type Class string

const (
	ClassWallet       Class = "wallet"
	ClassVault        Class = "vault"
	ClassReceita      Class = "receita"
	ClassDespesa      Class = "despesa"
	ClassCompensacao  Class = "compensacao"
)

// Split breaks an Address into its three colon-delimited components. It
// does not validate that Class is a known class.
func (a Address) Split() (class Class, subclass, identifier string, err error) {
	parts := strings.SplitN(string(a), ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("basics: address %q is not of the form class:subclass:identifier", a)
	}
	return Class(parts[0]), parts[1], parts[2], nil
}

// AssetID identifies a registered asset, of the form "wallet:mint/SYMBOL".
type AssetID string

// Symbol returns the asset symbol portion of the id, if present.
func (id AssetID) Symbol() string {
	s := string(id)
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}
