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

// Package txn defines the client-submitted Transaction and the Receipt
// returned once the Accounting Engine has processed it.
package txn

import (
	"github.com/atlasdb/atlasdb/basics"
	"github.com/atlasdb/atlasdb/crypto"
	"github.com/atlasdb/atlasdb/protocol"
)

// Nature distinguishes the fixed leg templates the Accounting Engine knows
// how to compose. A Transfer is the only nature a client ever submits
// directly today; the others are reserved for internally-generated
// transactions (rewards, slashing) that still flow through the same
// admission and execution path.
type Nature string

const (
	NatureTransfer      Nature = "transfer"
	NatureFee           Nature = "fee"
	NatureBurn          Nature = "burn"
	NatureStakingReward Nature = "staking_reward"
	NatureSlashing      Nature = "slashing"
)

// Transaction is the signed, client-facing request to move value from one
// account to another.
type Transaction struct {
	ChainID   string
	From      basics.Address
	To        basics.Address
	Amount    basics.Amount
	Asset     basics.AssetID
	Nonce     uint64
	Timestamp uint64
	Memo      string
	Nature    Nature

	Signature []byte
	PublicKey []byte

	// FeePayer, if set, sponsors the transaction's fee instead of From.
	FeePayer basics.Address
	Fee      basics.Amount
	FeeAsset basics.AssetID
}

// signedContent is every field that feeds tx_hash, in declaration order,
// excluding Signature: "deterministic hash over canonical serialization of
// all preceding fields (excluding signature)".
type signedContent struct {
	ChainID   string
	From      basics.Address
	To        basics.Address
	Amount    basics.Amount
	Asset     basics.AssetID
	Nonce     uint64
	Timestamp uint64
	Memo      string
	Nature    Nature
	PublicKey []byte
	FeePayer  basics.Address
	Fee       basics.Amount
	FeeAsset  basics.AssetID
}

func (c signedContent) ToBeHashed() (protocol.HashID, []byte) {
	return protocol.Transaction, protocol.Encode(c)
}

// Hash computes tx_hash over the transaction's signed content.
func (t Transaction) Hash() crypto.Digest {
	return crypto.HashObj(signedContent{
		ChainID:   t.ChainID,
		From:      t.From,
		To:        t.To,
		Amount:    t.Amount,
		Asset:     t.Asset,
		Nonce:     t.Nonce,
		Timestamp: t.Timestamp,
		Memo:      t.Memo,
		Nature:    t.Nature,
		PublicKey: t.PublicKey,
		FeePayer:  t.FeePayer,
		Fee:       t.Fee,
		FeeAsset:  t.FeeAsset,
	})
}

// SignedBytes returns the canonical bytes an Authenticator signs and
// verifies: the same bytes Hash folds into tx_hash.
func (t Transaction) SignedBytes() []byte {
	_, b := signedContent{
		ChainID:   t.ChainID,
		From:      t.From,
		To:        t.To,
		Amount:    t.Amount,
		Asset:     t.Asset,
		Nonce:     t.Nonce,
		Timestamp: t.Timestamp,
		Memo:      t.Memo,
		Nature:    t.Nature,
		PublicKey: t.PublicKey,
		FeePayer:  t.FeePayer,
		Fee:       t.Fee,
		FeeAsset:  t.FeeAsset,
	}.ToBeHashed()
	return b
}

// EffectiveFeePayer returns FeePayer if set, otherwise From.
func (t Transaction) EffectiveFeePayer() basics.Address {
	if t.FeePayer != "" {
		return t.FeePayer
	}
	return t.From
}
