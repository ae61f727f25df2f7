// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/pool/exchange"
	"github.com/vechain/stakepool/pool/reverts"
)

// Submit deposits amount from the caller's balance into the buffer and mints shares at the
// current exchange rate.
func (p *Pool) Submit(caller base.Address, amount *big.Int, referral base.Address) (*big.Int, error) {
	logger.Debug("submitting", "caller", caller, "amount", amount, "referral", referral)

	var shares *big.Int
	err := p.atomic("submit", func() error {
		if err := p.whenNotPaused(); err != nil {
			return err
		}
		if amount == nil || amount.Sign() <= 0 {
			return reverts.New(reverts.InvalidAmount, "amount must be positive")
		}
		balance, err := p.state.GetBalance(caller)
		if err != nil {
			return err
		}
		if balance.Cmp(amount) < 0 {
			return reverts.Newf(reverts.InvalidAmount, "balance %v below %v", balance, amount)
		}
		if _, err := p.reconcileStakes(); err != nil {
			return err
		}

		totalShares, totalPooled, err := p.totals()
		if err != nil {
			return err
		}
		if shares, err = exchange.SharesFor(amount, totalShares, totalPooled); err != nil {
			return err
		}
		if shares.Sign() == 0 {
			return reverts.New(reverts.InvalidAmount, "amount too small for one share")
		}

		if err := p.state.Transfer(caller, p.address, amount); err != nil {
			return err
		}
		if err := p.ledger.AddBuffered(amount); err != nil {
			return err
		}
		if err := p.ledger.Mint(caller, shares); err != nil {
			return err
		}
		return p.emit(Event{
			Kind:     EventSubmitted,
			Account:  caller,
			Amount:   amount,
			Shares:   shares,
			Referral: referral,
		})
	})
	if err != nil {
		logger.Info("submit failed", "caller", caller, "error", err)
		return nil, err
	}

	logger.Info("submitted", "caller", caller, "amount", amount, "shares", shares)
	return shares, nil
}
