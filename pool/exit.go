// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/pool/validators"
)

// SyncResult counts what SyncValidators changed.
type SyncResult struct {
	Registered int `json:"registered"`
	Changed    int `json:"changed"`
	Exited     int `json:"exited"`

	// Slashed is the stake the validators lost since the previous sync.
	Slashed *big.Int `json:"slashed"`
}

// OnValidatorStatusChange applies a status reported by the directory. A validator leaving the
// active set for good has its whole stake queued for withdrawal, once.
func (p *Pool) OnValidatorStatusChange(id base.Address, status validators.Status) error {
	logger.Debug("validator status change", "validator", id, "status", status)

	err := p.atomic("statusChange", func() error {
		_, _, err := p.applyStatus(id, status)
		return err
	})
	if err != nil {
		logger.Info("validator status change failed", "validator", id, "error", err)
		return err
	}
	return nil
}

// SyncValidators registers validators newly listed as active, writes down stake lost to slashing
// and applies the current status of every registered validator that has not exited.
func (p *Pool) SyncValidators() (*SyncResult, error) {
	logger.Debug("syncing validators")

	res := &SyncResult{Slashed: new(big.Int)}
	err := p.atomic("syncValidators", func() error {
		active, err := p.directory.ListActive()
		if err != nil {
			return err
		}
		for _, id := range active {
			rec, err := p.validators.Get(id)
			if err != nil {
				return err
			}
			if rec != nil {
				continue
			}
			if _, err := p.validators.Register(id, validators.StatusActive); err != nil {
				return err
			}
			res.Registered++
			if err := p.emit(Event{Kind: EventValidatorRegistered, Validator: id}); err != nil {
				return err
			}
		}

		// before any exit, so a forced exit queues what the validator really holds
		if res.Slashed, err = p.reconcileStakes(); err != nil {
			return err
		}

		entries, err := p.validators.All()
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.Exited {
				continue
			}
			status, err := p.directory.StatusOf(e.ID)
			if err != nil {
				return err
			}
			changed, exited, err := p.applyStatus(e.ID, status)
			if err != nil {
				return err
			}
			if changed {
				res.Changed++
			}
			if exited {
				res.Exited++
			}
		}
		return nil
	})
	if err != nil {
		logger.Info("sync validators failed", "error", err)
		return nil, err
	}

	logger.Info("synced validators",
		"registered", res.Registered, "changed", res.Changed, "exited", res.Exited, "slashed", res.Slashed)
	return res, nil
}

func (p *Pool) applyStatus(id base.Address, status validators.Status) (changed, exited bool, err error) {
	rec, err := p.validators.GetExisting(id)
	if err != nil {
		return false, false, err
	}
	// an exited validator has nothing left with the pool
	if rec.Status == status || rec.Exited {
		return false, false, nil
	}

	if status.IsExit() {
		if err := p.forceExit(id, rec); err != nil {
			return false, false, err
		}
		// stake was moved to the queue
		if rec, err = p.validators.GetExisting(id); err != nil {
			return false, false, err
		}
		rec.Exited = true
		exited = true
	}
	previous := rec.Status
	rec.Status = status
	if err := p.validators.Update(id, rec); err != nil {
		return false, false, err
	}
	logger.Info("validator status changed", "validator", id, "from", previous, "to", status)
	return true, exited, p.emit(Event{Kind: EventStatusChanged, Validator: id, Detail: status.String()})
}

func (p *Pool) forceExit(id base.Address, rec *validators.Record) error {
	amount := rec.Stake
	if amount.Sign() > 0 {
		epoch, err := p.epoch()
		if err != nil {
			return err
		}
		delay, err := p.network.WithdrawalDelay()
		if err != nil {
			return err
		}
		req, err := p.raiseRequest(id, amount, epoch, delay)
		if err != nil {
			return err
		}
		if err := p.withdrawals.PushSystem(req.Key()); err != nil {
			return err
		}
	}
	logger.Info("validator exited", "validator", id, "queued", amount)
	return p.emit(Event{Kind: EventValidatorExited, Validator: id, Amount: amount})
}

// reconcileStakes lowers the pool-side stake of every validator still holding pool funds to what
// its stake handle reports, and returns the total lost. Stake above the pool's record is left alone.
func (p *Pool) reconcileStakes() (*big.Int, error) {
	entries, err := p.validators.All()
	if err != nil {
		return nil, err
	}
	lost := new(big.Int)
	for _, e := range entries {
		if e.Exited || e.Stake.Sign() == 0 {
			continue
		}
		handle, err := p.directory.StakeHandleOf(e.ID)
		if err != nil {
			return nil, err
		}
		current, err := handle.CurrentStake()
		if err != nil {
			return nil, err
		}
		if current.Cmp(e.Stake) >= 0 {
			continue
		}
		loss := new(big.Int).Sub(e.Stake, current)
		if err := p.validators.SubStake(e.ID, loss); err != nil {
			return nil, err
		}
		lost.Add(lost, loss)
		logger.Info("validator stake slashed", "validator", e.ID, "loss", loss)
		if err := p.emit(Event{Kind: EventStakeSlashed, Validator: e.ID, Amount: loss}); err != nil {
			return nil, err
		}
	}
	return lost, nil
}
