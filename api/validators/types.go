// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validators

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/api/pool"
	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/base"
	stakepool "github.com/vechain/stakepool/pool"
)

type Validator struct {
	ID                 base.Address          `json:"id"`
	Index              uint64                `json:"index"`
	Status             string                `json:"status"`
	Stake              *math.HexOrDecimal256 `json:"stake"`
	HandleStake        *math.HexOrDecimal256 `json:"handleStake"`
	ClaimableReward    *math.HexOrDecimal256 `json:"claimableReward"`
	Nonce              uint64                `json:"nonce"`
	Exited             bool                  `json:"exited"`
	DelegationDisabled bool                  `json:"delegationDisabled"`
	Pending            []*pool.Request       `json:"pending"`
}

func convertValidator(v *stakepool.ValidatorView, epoch uint64) *Validator {
	pending := make([]*pool.Request, 0, len(v.Pending))
	for _, r := range v.Pending {
		pending = append(pending, pool.ConvertRequest(r, epoch))
	}
	return &Validator{
		ID:                 v.ID,
		Index:              v.Index,
		Status:             v.Status,
		Stake:              utils.Amount(v.Stake),
		HandleStake:        utils.Amount(v.HandleStake),
		ClaimableReward:    utils.Amount(v.ClaimableReward),
		Nonce:              v.Nonce,
		Exited:             v.Exited,
		DelegationDisabled: v.DelegationDisabled,
		Pending:            pending,
	}
}
