// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/storage"
)

var (
	DelegationLowerBound         = storage.NewConfigVariable("delegation-lower-bound", base.ToWei(1))
	RewardDistributionLowerBound = storage.NewConfigVariable("reward-distribution-lower-bound", base.ToWei(1))

	ProtocolFeeBps  = storage.NewConfigVariable("protocol-fee-bps", big.NewInt(1000))   // 10%
	InsuranceFeeBps = storage.NewConfigVariable("insurance-fee-bps", big.NewInt(2500)) // share of the fee
	DaoFeeBps       = storage.NewConfigVariable("dao-fee-bps", big.NewInt(2500))       // share of the fee

	// DistanceThreshold is the deviation from the mean stake, in percent, that triggers a rebalance.
	DistanceThreshold                 = storage.NewConfigVariable("distance-threshold", big.NewInt(20))
	MaxWithdrawPercentagePerRebalance = storage.NewConfigVariable("max-withdraw-percentage-per-rebalance", big.NewInt(20))

	// All lists every setting, in the order they are reported.
	All = []*storage.ConfigVariable{
		DelegationLowerBound,
		RewardDistributionLowerBound,
		ProtocolFeeBps,
		InsuranceFeeBps,
		DaoFeeBps,
		DistanceThreshold,
		MaxWithdrawPercentagePerRebalance,
	}
)

// Lookup finds a setting by name.
func Lookup(name string) (*storage.ConfigVariable, bool) {
	for _, v := range All {
		if v.Name() == name {
			return v, true
		}
	}
	return nil, false
}
