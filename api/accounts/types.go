// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/base"
)

// Account is a holder as seen by the pool.
type Account struct {
	Balance      *math.HexOrDecimal256 `json:"balance"`
	Shares       *math.HexOrDecimal256 `json:"shares"`
	Value        *math.HexOrDecimal256 `json:"value"`
	Certificates []uint64              `json:"certificates"`
	Roles        []string              `json:"roles"`
}

type SubmitBody struct {
	Amount   *math.HexOrDecimal256 `json:"amount"`
	Referral base.Address          `json:"referral"`
}

type SubmitResult struct {
	Shares *math.HexOrDecimal256 `json:"shares"`
}

type WithdrawBody struct {
	Shares   *math.HexOrDecimal256 `json:"shares"`
	Referral base.Address          `json:"referral"`
}

type WithdrawResult struct {
	TokenID uint64 `json:"tokenId"`
}
