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

// Package chart classifies ledger addresses into the fixed chart of
// accounts. It is a static schema: classification is read off the
// address's class prefix, never inferred or overridden.
package chart

import (
	"github.com/atlasdb/atlasdb/basics"
	"github.com/atlasdb/atlasdb/serr"
)

// SubGroup further categorizes an address within its root Class for
// display/reporting purposes. It carries no accounting semantics of its
// own; only Class and CreditNatural do.
type SubGroup string

const (
	SubGroupGeneral SubGroup = "general"
	SubGroupFees    SubGroup = "fees"
	SubGroupIssuer  SubGroup = "issuance"
)

// classInfo is the fixed, compiled-in schema: one entry per root class.
type classInfo struct {
	class         basics.Class
	creditNatural bool
}

// wallet and vault hold balances the ledger owes to their owner (much as a
// bank ledger treats deposits as a liability of the bank), so, like
// receita (revenue) and compensacao (equity/clearing), they are
// Credit-normal: a credit increases the balance, a debit decreases it.
// despesa (expense) is the one Debit-normal class.
var schema = map[basics.Class]classInfo{
	basics.ClassWallet:      {basics.ClassWallet, true},
	basics.ClassVault:       {basics.ClassVault, true},
	basics.ClassReceita:     {basics.ClassReceita, true},
	basics.ClassDespesa:     {basics.ClassDespesa, false},
	basics.ClassCompensacao: {basics.ClassCompensacao, true},
}

// Classify resolves addr's root class, subgroup, and whether the class is
// credit-natural (credits increase its balance) or debit-natural (debits
// increase its balance). It fails with serr.KindUnknownAccountClass if the
// address's class prefix is not one of the five recognized classes.
func Classify(addr basics.Address) (class basics.Class, sub SubGroup, creditNatural bool, err error) {
	rootClass, subclass, _, splitErr := addr.Split()
	if splitErr != nil {
		return "", "", false, serr.NewKind(serr.KindUnknownAccountClass, "malformed address", "address", string(addr))
	}
	info, ok := schema[rootClass]
	if !ok {
		return "", "", false, serr.NewKind(serr.KindUnknownAccountClass, "unrecognized address class", "address", string(addr), "class", string(rootClass))
	}
	sub = classifySubGroup(rootClass, subclass)
	return info.class, sub, info.creditNatural, nil
}

func classifySubGroup(class basics.Class, subclass string) SubGroup {
	switch {
	case class == basics.ClassReceita && subclass == "fees":
		return SubGroupFees
	case class == basics.ClassVault && subclass == "issuance":
		return SubGroupIssuer
	default:
		return SubGroupGeneral
	}
}

// ValidateAddress reports whether addr resolves to a known class, without
// returning the full classification.
func ValidateAddress(addr basics.Address) error {
	_, _, _, err := Classify(addr)
	return err
}

// RevenueFees is the well-known account that fee natures credit.
const RevenueFees basics.Address = "receita:fees:protocol"
