// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakepool/pool/params"
	"github.com/vechain/stakepool/pool/reverts"
	"github.com/vechain/stakepool/pool/validators"
)

// delegationTargets returns the registered validators that accept new stake and earn rewards:
// reported active by the directory, not exited and not disabled by the DAO.
func (p *Pool) delegationTargets() ([]validators.Entry, error) {
	entries, err := p.validators.All()
	if err != nil {
		return nil, err
	}
	targets := make([]validators.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Exited || e.DelegationDisabled {
			continue
		}
		status, err := p.directory.StatusOf(e.ID)
		if err != nil {
			return nil, err
		}
		if status == validators.StatusActive {
			targets = append(targets, e)
		}
	}
	return targets, nil
}

// Delegate spreads the buffer over the delegation targets so each one ends up near
// (Σ stake + buffered) / count. It returns the amount placed; what cannot be placed stays buffered.
func (p *Pool) Delegate() (*big.Int, error) {
	logger.Debug("delegating")

	placed := new(big.Int)
	err := p.atomic("delegate", func() error {
		if err := p.whenNotPaused(); err != nil {
			return err
		}
		buffered, err := p.ledger.Buffered()
		if err != nil {
			return err
		}
		lowerBound, err := p.params.Get(params.DelegationLowerBound)
		if err != nil {
			return err
		}
		if buffered.Cmp(lowerBound) < 0 || buffered.Sign() == 0 {
			return reverts.Newf(reverts.BelowMinimum, "buffered %v below delegation lower bound %v", buffered, lowerBound)
		}

		targets, err := p.delegationTargets()
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			logger.Debug("no validator to delegate to")
			return nil
		}

		target := new(big.Int).Set(buffered)
		for _, e := range targets {
			target.Add(target, e.Stake)
		}
		target.Quo(target, big.NewInt(int64(len(targets))))

		remaining := new(big.Int).Set(buffered)
		for _, e := range targets {
			if remaining.Sign() == 0 {
				break
			}
			amount := new(big.Int).Sub(target, e.Stake)
			if amount.Sign() <= 0 {
				continue
			}
			if amount.Cmp(remaining) > 0 {
				amount.Set(remaining)
			}
			ok, err := p.delegateTo(e, amount)
			if err != nil {
				return err
			}
			if ok {
				remaining.Sub(remaining, amount)
				placed.Add(placed, amount)
			}
		}
		return p.ledger.SubBuffered(placed)
	})
	if err != nil {
		logger.Info("delegate failed", "error", err)
		return nil, err
	}

	logger.Info("delegated", "amount", placed)
	return placed, nil
}

// delegateTo commands one stake handle. A handle rejecting the command is skipped, not fatal.
func (p *Pool) delegateTo(e validators.Entry, amount *big.Int) (bool, error) {
	handle, err := p.directory.StakeHandleOf(e.ID)
	if err != nil {
		logger.Warn("no stake handle", "validator", e.ID, "error", err)
		return false, nil
	}
	checkpoint := p.state.NewCheckpoint()
	if err := handle.Delegate(amount); err != nil {
		p.state.RevertTo(checkpoint)
		logger.Warn("validator rejected delegation", "validator", e.ID, "amount", amount, "error", err)
		return false, nil
	}
	if err := p.validators.AddStake(e.ID, amount); err != nil {
		return false, err
	}
	return true, p.emit(Event{
		Kind:      EventDelegated,
		Validator: e.ID,
		Amount:    amount,
	})
}
