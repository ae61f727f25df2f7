// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/pool/params"
	"github.com/vechain/stakepool/pool/reverts"
	"github.com/vechain/stakepool/pool/validators"
)

type harvest struct {
	id     base.Address
	handle StakeHandle
	reward *big.Int
}

// rewardSources returns the validators rewards are harvested from: active and not exited.
// Disabling delegation does not stop harvesting.
func (p *Pool) rewardSources() ([]harvest, error) {
	entries, err := p.validators.All()
	if err != nil {
		return nil, err
	}
	var sources []harvest
	for _, e := range entries {
		if e.Exited {
			continue
		}
		status, err := p.directory.StatusOf(e.ID)
		if err != nil {
			return nil, err
		}
		if status != validators.StatusActive {
			continue
		}
		handle, err := p.directory.StakeHandleOf(e.ID)
		if err != nil {
			return nil, err
		}
		reward, err := handle.ClaimableReward()
		if err != nil {
			return nil, err
		}
		sources = append(sources, harvest{id: e.ID, handle: handle, reward: reward})
	}
	return sources, nil
}

func bps(amount *big.Int, rate uint64) *big.Int {
	v := new(big.Int).Mul(amount, new(big.Int).SetUint64(rate))
	return v.Quo(v, big.NewInt(base.BasisPoints))
}

// DistributeRewards harvests every active validator, pays the protocol fee to insurance, the DAO
// and the operators, and adds the rest to the buffer. It returns the amount added to the buffer.
func (p *Pool) DistributeRewards() (*big.Int, error) {
	logger.Debug("distributing rewards")

	toBuffer := new(big.Int)
	err := p.atomic("distributeRewards", func() error {
		if err := p.whenNotPaused(); err != nil {
			return err
		}
		sources, err := p.rewardSources()
		if err != nil {
			return err
		}
		claimable := new(big.Int)
		for _, s := range sources {
			claimable.Add(claimable, s.reward)
		}
		lowerBound, err := p.params.Get(params.RewardDistributionLowerBound)
		if err != nil {
			return err
		}
		if claimable.Sign() == 0 || claimable.Cmp(lowerBound) < 0 {
			return reverts.Newf(reverts.BelowMinimum, "rewards %v below distribution lower bound %v", claimable, lowerBound)
		}

		total := new(big.Int)
		for i, s := range sources {
			if s.reward.Sign() == 0 {
				continue
			}
			harvested, err := s.handle.WithdrawRewards()
			if err != nil {
				return err
			}
			sources[i].reward = harvested
			total.Add(total, harvested)
		}

		feeBps, err := p.params.Uint64(params.ProtocolFeeBps)
		if err != nil {
			return err
		}
		insuranceBps, err := p.params.Uint64(params.InsuranceFeeBps)
		if err != nil {
			return err
		}
		daoBps, err := p.params.Uint64(params.DaoFeeBps)
		if err != nil {
			return err
		}
		fee := bps(total, feeBps)
		insuranceFee := bps(fee, insuranceBps)
		daoFee := bps(fee, daoBps)
		operatorFee := new(big.Int).Sub(fee, insuranceFee)
		operatorFee.Sub(operatorFee, daoFee)

		paid := new(big.Int)
		insurance, err := p.params.InsuranceAddress()
		if err != nil {
			return err
		}
		if err := p.payFee(insurance, base.Address{}, insuranceFee, "insurance", paid); err != nil {
			return err
		}
		dao, err := p.params.DaoAddress()
		if err != nil {
			return err
		}
		if err := p.payFee(dao, base.Address{}, daoFee, "dao", paid); err != nil {
			return err
		}
		if total.Sign() > 0 {
			for _, s := range sources {
				share := new(big.Int).Mul(operatorFee, s.reward)
				share.Quo(share, total)
				if err := p.payFee(s.handle.RewardAddress(), s.id, share, "operator", paid); err != nil {
					return err
				}
			}
		}

		toBuffer.Sub(total, paid)
		if err := p.ledger.AddBuffered(toBuffer); err != nil {
			return err
		}
		return p.emit(Event{
			Kind:   EventRewardsDistributed,
			Amount: total,
			Fee:    paid,
		})
	})
	if err != nil {
		logger.Info("distribute rewards failed", "error", err)
		return nil, err
	}

	logger.Info("distributed rewards", "buffered", toBuffer)
	return toBuffer, nil
}

// payFee pays amount to recipient and adds it to paid. An unset recipient is skipped, so the
// amount stays with the pool.
func (p *Pool) payFee(recipient, validator base.Address, amount *big.Int, kind string, paid *big.Int) error {
	if recipient.IsZero() || amount.Sign() == 0 {
		return nil
	}
	if err := p.payOut(recipient, amount); err != nil {
		return err
	}
	paid.Add(paid, amount)
	return p.emit(Event{
		Kind:      EventFeePaid,
		Account:   recipient,
		Validator: validator,
		Amount:    amount,
		Detail:    kind,
	})
}
