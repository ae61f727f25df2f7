// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package certificates

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/api/pool"
	"github.com/vechain/stakepool/base"
)

// Certificate is a redemption waiting to be claimed.
type Certificate struct {
	ID           uint64                `json:"id"`
	Owner        base.Address          `json:"owner"`
	Value        *math.HexOrDecimal256 `json:"value"`
	Shares       *math.HexOrDecimal256 `json:"shares"`
	RequestEpoch uint64                `json:"requestEpoch"`
	Claimable    bool                  `json:"claimable"`
	Requests     []*pool.Request       `json:"requests"`
}

type ClaimBody struct {
	Caller base.Address `json:"caller"`
}

type ClaimResult struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}
