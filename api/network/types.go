// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package network

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/base"
)

type Network struct {
	Epoch           uint64 `json:"epoch"`
	WithdrawalDelay uint64 `json:"withdrawalDelay"`
}

type AdvanceBody struct {
	Epochs uint64 `json:"epochs"`
}

type TickBody struct {
	RewardBps uint64 `json:"rewardBps"`
}

type ValidatorBody struct {
	ID            base.Address `json:"id"`
	RewardAddress base.Address `json:"rewardAddress"`
}

type StatusBody struct {
	Status string `json:"status"`
}

type RewardBody struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type SlashBody struct {
	Bps uint64 `json:"bps"`
}

type AmountResult struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}
