// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"math"
	"math/big"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/metrics"
)

var (
	metricCommits        = metrics.LazyLoadCounter("node_commits_count")
	metricEpoch          = metrics.LazyLoadGauge("pool_epoch")
	metricPoolBalances   = metrics.LazyLoadGaugeVec("pool_balance_tokens", []string{"kind"})
	metricValidatorStake = metrics.LazyLoadGaugeVec("pool_validator_stake_tokens", []string{"validator"})
)

// tokens converts wei to whole tokens for gauges, saturating at the gauge range.
func tokens(wei *big.Int) int64 {
	if wei == nil {
		return 0
	}
	t := base.ToTokens(wei)
	if t > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(t)
}

func (n *Node) updateGauges() {
	if metrics.NoOp() {
		return
	}
	summary, err := n.deploy.Pool.Summary()
	if err != nil {
		logger.Warn("failed to read pool summary", "error", err)
		return
	}
	metricEpoch().Set(int64(summary.Epoch))
	for kind, value := range map[string]*big.Int{
		"buffered":     summary.Buffered,
		"reserved":     summary.Reserved,
		"delegated":    summary.Delegated,
		"pending":      summary.Pending,
		"total-pooled": summary.TotalPooled,
		"total-shares": summary.TotalShares,
	} {
		metricPoolBalances().SetWithLabel(tokens(value), map[string]string{"kind": kind})
	}

	views, err := n.deploy.Pool.Validators()
	if err != nil {
		logger.Warn("failed to read validators", "error", err)
		return
	}
	for _, v := range views {
		metricValidatorStake().SetWithLabel(tokens(v.Stake), map[string]string{"validator": v.ID.String()})
	}
}
