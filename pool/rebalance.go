// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/pool/params"
)

// RebalanceDelegatedTokens queues withdrawals from validators whose stake exceeds the mean by more
// than the distance threshold, bounded per validator by the max withdraw percentage. The funds
// return to the buffer through ClaimToPool and are spread again by Delegate. It returns the number
// of requests raised.
func (p *Pool) RebalanceDelegatedTokens(caller base.Address) (int, error) {
	logger.Debug("rebalancing", "caller", caller)

	var raised int
	err := p.atomic("rebalance", func() error {
		if err := p.requireRole(params.RoleDAO, caller); err != nil {
			return err
		}
		entries, err := p.validators.All()
		if err != nil {
			return err
		}
		var (
			count int64
			sum   = new(big.Int)
		)
		for _, e := range entries {
			if e.Exited {
				continue
			}
			count++
			sum.Add(sum, e.Stake)
		}
		if count == 0 {
			return nil
		}
		mean := sum.Quo(sum, big.NewInt(count))
		if mean.Sign() == 0 {
			return nil
		}

		threshold, err := p.params.Get(params.DistanceThreshold)
		if err != nil {
			return err
		}
		maxPercent, err := p.params.Get(params.MaxWithdrawPercentagePerRebalance)
		if err != nil {
			return err
		}
		limit := new(big.Int).Mul(mean, threshold)

		epoch, err := p.epoch()
		if err != nil {
			return err
		}
		delay, err := p.network.WithdrawalDelay()
		if err != nil {
			return err
		}

		hundred := big.NewInt(100)
		for _, e := range entries {
			if e.Exited || e.Stake.Cmp(mean) <= 0 {
				continue
			}
			deviation := new(big.Int).Sub(e.Stake, mean)
			if new(big.Int).Mul(deviation, hundred).Cmp(limit) <= 0 {
				continue
			}
			amount := new(big.Int).Mul(e.Stake, maxPercent)
			amount.Quo(amount, hundred)
			if amount.Cmp(deviation) > 0 {
				amount = deviation
			}
			if amount.Sign() == 0 {
				continue
			}
			req, err := p.raiseRequest(e.ID, amount, epoch, delay)
			if err != nil {
				return err
			}
			if err := p.withdrawals.PushSystem(req.Key()); err != nil {
				return err
			}
			raised++
		}
		return nil
	})
	if err != nil {
		logger.Info("rebalance failed", "caller", caller, "error", err)
		return 0, err
	}

	logger.Info("rebalanced", "requests", raised)
	return raised, nil
}
