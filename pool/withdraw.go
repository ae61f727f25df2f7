// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/pool/exchange"
	"github.com/vechain/stakepool/pool/reverts"
	"github.com/vechain/stakepool/pool/validators"
	"github.com/vechain/stakepool/pool/withdrawals"
)

// drawCandidates returns the validators stake can be withdrawn from: not exited and holding stake.
// Jailed validators keep their stake and stay drawable.
func (p *Pool) drawCandidates() ([]validators.Candidate, error) {
	entries, err := p.validators.All()
	if err != nil {
		return nil, err
	}
	candidates := make([]validators.Candidate, 0, len(entries))
	for _, e := range entries {
		if e.Exited || e.Stake.Sign() == 0 {
			continue
		}
		candidates = append(candidates, validators.Candidate{ID: e.ID, Stake: e.Stake})
	}
	return candidates, nil
}

// raiseRequest undelegates amount from a validator and records the request under its next nonce.
// The pool-side stake drops immediately, before the funds come back.
func (p *Pool) raiseRequest(id base.Address, amount *big.Int, epoch, delay uint64) (*withdrawals.Request, error) {
	handle, err := p.directory.StakeHandleOf(id)
	if err != nil {
		return nil, err
	}
	ref, err := handle.Undelegate(amount)
	if err != nil {
		return nil, errors.WithMessagef(err, "undelegate %v from %v", amount, id)
	}
	if err := p.validators.SubStake(id, amount); err != nil {
		return nil, err
	}
	req, err := p.withdrawals.Create(id, amount, ref, epoch, delay)
	if err != nil {
		return nil, err
	}
	return req, p.emit(Event{
		Kind:      EventRequestCreated,
		Validator: id,
		Amount:    amount,
		Nonce:     req.Nonce,
	})
}

// RequestWithdraw burns shares and returns a certificate for their value, taken from the buffer
// first and from the validators for the rest.
func (p *Pool) RequestWithdraw(caller base.Address, shares *big.Int, referral base.Address) (uint64, error) {
	logger.Debug("requesting withdraw", "caller", caller, "shares", shares, "referral", referral)

	var tokenID uint64
	err := p.atomic("requestWithdraw", func() error {
		if err := p.whenNotPaused(); err != nil {
			return err
		}
		if shares == nil || shares.Sign() <= 0 {
			return reverts.New(reverts.InvalidAmount, "shares must be positive")
		}
		balance, err := p.ledger.SharesOf(caller)
		if err != nil {
			return err
		}
		if balance.Cmp(shares) < 0 {
			return reverts.Newf(reverts.InvalidAmount, "share balance %v below %v", balance, shares)
		}
		if _, err := p.reconcileStakes(); err != nil {
			return err
		}

		totalShares, totalPooled, err := p.totals()
		if err != nil {
			return err
		}
		value, err := exchange.ValueFor(shares, totalShares, totalPooled)
		if err != nil {
			return err
		}
		if value.Sign() == 0 {
			return reverts.Newf(reverts.ZeroSharesToWithdraw, "%v shares are worth nothing", shares)
		}

		buffered, err := p.ledger.Buffered()
		if err != nil {
			return err
		}
		candidates, err := p.drawCandidates()
		if err != nil {
			return err
		}
		capacity := new(big.Int).Set(buffered)
		for _, c := range candidates {
			capacity.Add(capacity, c.Stake)
		}
		if value.Cmp(capacity) > 0 {
			return reverts.Newf(reverts.TooMuchToWithdraw, "value %v exceeds redeemable %v", value, capacity)
		}

		if err := p.ledger.Burn(caller, shares); err != nil {
			return err
		}

		epoch, err := p.epoch()
		if err != nil {
			return err
		}
		delay, err := p.network.WithdrawalDelay()
		if err != nil {
			return err
		}
		cert := &withdrawals.Certificate{
			Value:        value,
			Shares:       shares,
			RequestEpoch: epoch,
		}

		fromBuffer := new(big.Int).Set(value)
		if fromBuffer.Cmp(buffered) > 0 {
			fromBuffer.Set(buffered)
		}
		if fromBuffer.Sign() > 0 {
			if err := p.ledger.SubBuffered(fromBuffer); err != nil {
				return err
			}
			if err := p.ledger.AddReserved(fromBuffer); err != nil {
				return err
			}
			req, err := p.withdrawals.Create(withdrawals.BufferID, fromBuffer, 0, epoch, delay)
			if err != nil {
				return err
			}
			cert.Requests = append(cert.Requests, req.Key())
		}

		if shortfall := new(big.Int).Sub(value, fromBuffer); shortfall.Sign() > 0 {
			draws, err := validators.PlanDraws(candidates, shortfall)
			if err != nil {
				return err
			}
			for _, d := range draws {
				req, err := p.raiseRequest(d.ID, d.Amount, epoch, delay)
				if err != nil {
					return err
				}
				cert.Requests = append(cert.Requests, req.Key())
			}
		}

		if tokenID, err = p.certificates.Mint(caller); err != nil {
			return err
		}
		if err := p.withdrawals.SetCertificate(tokenID, cert); err != nil {
			return err
		}
		return p.emit(Event{
			Kind:     EventWithdrawRequested,
			Account:  caller,
			Amount:   value,
			Shares:   shares,
			TokenID:  tokenID,
			Referral: referral,
		})
	})
	if err != nil {
		logger.Info("request withdraw failed", "caller", caller, "error", err)
		return 0, err
	}

	logger.Info("requested withdraw", "caller", caller, "tokenID", tokenID)
	return tokenID, nil
}

// ClaimTokens pays out a certificate once every request on it has matured, and burns it.
func (p *Pool) ClaimTokens(caller base.Address, tokenID uint64) (*big.Int, error) {
	logger.Debug("claiming tokens", "caller", caller, "tokenID", tokenID)

	total := new(big.Int)
	err := p.atomic("claimTokens", func() error {
		if err := p.whenNotPaused(); err != nil {
			return err
		}
		owner, ok, err := p.certificates.OwnerOf(tokenID)
		if err != nil {
			return err
		}
		if !ok {
			return reverts.Newf(reverts.InvalidIndex, "certificate %d does not exist", tokenID)
		}
		if owner != caller {
			return reverts.Newf(reverts.Unauthorized, "certificate %d is not owned by %v", tokenID, caller)
		}
		cert, err := p.withdrawals.Certificate(tokenID)
		if err != nil {
			return err
		}
		if cert == nil {
			return reverts.Newf(reverts.InvalidIndex, "certificate %d has no requests", tokenID)
		}

		epoch, err := p.epoch()
		if err != nil {
			return err
		}
		requests := make([]*withdrawals.Request, 0, len(cert.Requests))
		for _, key := range cert.Requests {
			req, err := p.withdrawals.Get(key)
			if err != nil {
				return err
			}
			if req == nil {
				return errors.Errorf("certificate %d references missing request %v/%d", tokenID, key.Validator, key.Nonce)
			}
			if !req.IsMatured(epoch) {
				return reverts.Newf(reverts.NotMatured, "certificate %d matures at epoch %d", tokenID, req.MaturesAt())
			}
			requests = append(requests, req)
		}

		for _, req := range requests {
			if req.IsBuffer() {
				if err := p.ledger.SubReserved(req.Amount); err != nil {
					return err
				}
				total.Add(total, req.Amount)
			} else {
				returned, err := p.withdrawMatured(req)
				if err != nil {
					return err
				}
				total.Add(total, returned)
			}
			if err := p.withdrawals.Remove(req.Key()); err != nil {
				return err
			}
		}

		if err := p.payOut(caller, total); err != nil {
			return err
		}
		if err := p.certificates.Burn(tokenID); err != nil {
			return err
		}
		p.withdrawals.DeleteCertificate(tokenID)
		return p.emit(Event{
			Kind:    EventTokensClaimed,
			Account: caller,
			Amount:  total,
			TokenID: tokenID,
		})
	})
	if err != nil {
		logger.Info("claim tokens failed", "caller", caller, "tokenID", tokenID, "error", err)
		return nil, err
	}

	logger.Info("claimed tokens", "caller", caller, "tokenID", tokenID, "amount", total)
	return total, nil
}

func (p *Pool) withdrawMatured(req *withdrawals.Request) (*big.Int, error) {
	handle, err := p.directory.StakeHandleOf(req.Validator)
	if err != nil {
		return nil, err
	}
	returned, err := handle.WithdrawMatured(req.Ref)
	if err != nil {
		return nil, errors.WithMessagef(err, "withdraw %v/%d", req.Validator, req.Nonce)
	}
	return returned, nil
}

// ClaimToPool folds the matured system request at index back into the buffer.
func (p *Pool) ClaimToPool(index int) (*big.Int, error) {
	logger.Debug("claiming to pool", "index", index)

	var returned *big.Int
	err := p.atomic("claimToPool", func() error {
		queue, err := p.withdrawals.SystemQueue()
		if err != nil {
			return err
		}
		if index < 0 || index >= len(queue) {
			return reverts.Newf(reverts.InvalidIndex, "index %d out of range [0, %d)", index, len(queue))
		}
		req, err := p.withdrawals.Get(queue[index])
		if err != nil {
			return err
		}
		if req == nil {
			return errors.Errorf("system queue references missing request %v/%d", queue[index].Validator, queue[index].Nonce)
		}
		epoch, err := p.epoch()
		if err != nil {
			return err
		}
		if !req.IsMatured(epoch) {
			return reverts.Newf(reverts.NotYetClaimable, "request %v/%d matures at epoch %d", req.Validator, req.Nonce, req.MaturesAt())
		}

		if returned, err = p.withdrawMatured(req); err != nil {
			return err
		}
		if err := p.ledger.AddBuffered(returned); err != nil {
			return err
		}
		if err := p.withdrawals.RemoveSystem(index); err != nil {
			return err
		}
		if err := p.withdrawals.Remove(req.Key()); err != nil {
			return err
		}
		return p.emit(Event{
			Kind:      EventClaimedToPool,
			Validator: req.Validator,
			Amount:    returned,
			Nonce:     req.Nonce,
		})
	})
	if err != nil {
		logger.Info("claim to pool failed", "index", index, "error", err)
		return nil, err
	}

	logger.Info("claimed to pool", "index", index, "amount", returned)
	return returned, nil
}
