// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/pool/params"
	"github.com/vechain/stakepool/pool/reverts"
	"github.com/vechain/stakepool/storage"
)

var slotBootstrapped = storage.Slot("bootstrapped")

// Bootstrap is the initial configuration of a pool.
type Bootstrap struct {
	Admins    []base.Address
	Pausers   []base.Address
	Insurance base.Address
	Dao       base.Address
	Params    map[string]*big.Int
}

// Init applies the bootstrap configuration. It can run only once per pool.
func (p *Pool) Init(b *Bootstrap) error {
	return p.atomic("init", func() error {
		done := storage.NewRaw[bool](storage.NewContext(p.address, p.state), slotBootstrapped)
		initialised, err := done.Get()
		if err != nil {
			return err
		}
		if initialised {
			return errors.New("pool already initialised")
		}
		for _, addr := range b.Admins {
			if err := p.params.GrantRole(params.RoleDAO, addr); err != nil {
				return err
			}
		}
		for _, addr := range b.Pausers {
			if err := p.params.GrantRole(params.RolePauser, addr); err != nil {
				return err
			}
		}
		if err := p.params.SetInsuranceAddress(b.Insurance); err != nil {
			return err
		}
		if err := p.params.SetDaoAddress(b.Dao); err != nil {
			return err
		}
		for name, value := range b.Params {
			v, ok := params.Lookup(name)
			if !ok {
				return errors.Errorf("unknown parameter %q", name)
			}
			if v == params.InsuranceFeeBps || v == params.DaoFeeBps {
				if value == nil || value.Sign() < 0 {
					return reverts.Newf(reverts.InvalidAmount, "%s must not be negative", name)
				}
				if err := p.params.Set(v, value); err != nil {
					return err
				}
				continue
			}
			if err := p.setParam(v, value); err != nil {
				return err
			}
		}
		// the split is checked once both halves are in place
		if err := p.checkFeeSplit(); err != nil {
			return err
		}
		return done.Set(true)
	})
}

func validateParam(v *storage.ConfigVariable, value *big.Int, current func(*storage.ConfigVariable) (uint64, error)) error {
	if value == nil || value.Sign() < 0 {
		return reverts.Newf(reverts.InvalidAmount, "%s must not be negative", v.Name())
	}
	switch v {
	case params.ProtocolFeeBps:
		if value.Cmp(big.NewInt(base.BasisPoints)) > 0 {
			return reverts.Newf(reverts.InvalidAmount, "protocol fee %v exceeds %d bps", value, base.BasisPoints)
		}
	case params.MaxWithdrawPercentagePerRebalance:
		if value.Cmp(big.NewInt(100)) > 0 {
			return reverts.Newf(reverts.InvalidAmount, "max withdraw percentage %v exceeds 100", value)
		}
	case params.InsuranceFeeBps, params.DaoFeeBps:
		other := params.DaoFeeBps
		if v == params.DaoFeeBps {
			other = params.InsuranceFeeBps
		}
		otherValue, err := current(other)
		if err != nil {
			return err
		}
		sum := new(big.Int).Add(value, new(big.Int).SetUint64(otherValue))
		if sum.Cmp(big.NewInt(base.BasisPoints)) > 0 {
			return reverts.Newf(reverts.InvalidAmount, "fee split %v exceeds %d bps", sum, base.BasisPoints)
		}
	}
	return nil
}

func (p *Pool) setParam(v *storage.ConfigVariable, value *big.Int) error {
	if err := validateParam(v, value, p.params.Uint64); err != nil {
		return err
	}
	if err := p.params.Set(v, value); err != nil {
		return err
	}
	return p.emit(Event{Kind: EventParamChanged, Amount: value, Detail: v.Name()})
}

func (p *Pool) admin(op string, caller base.Address, fn func() error) error {
	logger.Debug("admin call", "op", op, "caller", caller)
	err := p.atomic(op, func() error {
		if err := p.requireRole(params.RoleDAO, caller); err != nil {
			return err
		}
		return fn()
	})
	if err != nil {
		logger.Info("admin call failed", "op", op, "caller", caller, "error", err)
		return err
	}
	logger.Info("admin call", "op", op, "caller", caller)
	return nil
}

// SetParam changes any named setting.
func (p *Pool) SetParam(caller base.Address, name string, value *big.Int) error {
	return p.admin("setParam", caller, func() error {
		v, ok := params.Lookup(name)
		if !ok {
			return reverts.Newf(reverts.InvalidIndex, "unknown parameter %q", name)
		}
		return p.setParam(v, value)
	})
}

func (p *Pool) SetDelegationLowerBound(caller base.Address, value *big.Int) error {
	return p.admin("setDelegationLowerBound", caller, func() error {
		return p.setParam(params.DelegationLowerBound, value)
	})
}

func (p *Pool) SetRewardDistributionLowerBound(caller base.Address, value *big.Int) error {
	return p.admin("setRewardDistributionLowerBound", caller, func() error {
		return p.setParam(params.RewardDistributionLowerBound, value)
	})
}

// SetProtocolFee sets the fee, in basis points, taken from harvested rewards.
func (p *Pool) SetProtocolFee(caller base.Address, feeBps uint64) error {
	return p.admin("setProtocolFee", caller, func() error {
		return p.setParam(params.ProtocolFeeBps, new(big.Int).SetUint64(feeBps))
	})
}

// SetFeeSplit sets the insurance and DAO cuts of the protocol fee, in basis points of the fee.
// Operators get the rest.
func (p *Pool) SetFeeSplit(caller base.Address, insuranceBps, daoBps uint64) error {
	return p.admin("setFeeSplit", caller, func() error {
		if err := p.params.Set(params.InsuranceFeeBps, new(big.Int).SetUint64(insuranceBps)); err != nil {
			return err
		}
		if err := p.params.Set(params.DaoFeeBps, new(big.Int).SetUint64(daoBps)); err != nil {
			return err
		}
		if err := p.checkFeeSplit(); err != nil {
			return err
		}
		return p.emit(Event{Kind: EventParamChanged, Detail: "fee-split"})
	})
}

func (p *Pool) checkFeeSplit() error {
	insuranceBps, err := p.params.Uint64(params.InsuranceFeeBps)
	if err != nil {
		return err
	}
	daoBps, err := p.params.Uint64(params.DaoFeeBps)
	if err != nil {
		return err
	}
	sum := new(big.Int).SetUint64(insuranceBps)
	sum.Add(sum, new(big.Int).SetUint64(daoBps))
	if sum.Cmp(big.NewInt(base.BasisPoints)) > 0 {
		return reverts.Newf(reverts.InvalidAmount, "fee split %v exceeds %d bps", sum, base.BasisPoints)
	}
	return nil
}

func (p *Pool) SetDistanceThreshold(caller base.Address, percent uint64) error {
	return p.admin("setDistanceThreshold", caller, func() error {
		return p.setParam(params.DistanceThreshold, new(big.Int).SetUint64(percent))
	})
}

func (p *Pool) SetMaxWithdrawPercentagePerRebalance(caller base.Address, percent uint64) error {
	return p.admin("setMaxWithdrawPercentagePerRebalance", caller, func() error {
		return p.setParam(params.MaxWithdrawPercentagePerRebalance, new(big.Int).SetUint64(percent))
	})
}

func (p *Pool) SetInsuranceAddress(caller, addr base.Address) error {
	return p.admin("setInsuranceAddress", caller, func() error {
		if err := p.params.SetInsuranceAddress(addr); err != nil {
			return err
		}
		return p.emit(Event{Kind: EventParamChanged, Account: addr, Detail: "insurance-address"})
	})
}

func (p *Pool) SetDaoAddress(caller, addr base.Address) error {
	return p.admin("setDaoAddress", caller, func() error {
		if err := p.params.SetDaoAddress(addr); err != nil {
			return err
		}
		return p.emit(Event{Kind: EventParamChanged, Account: addr, Detail: "dao-address"})
	})
}

// SetDelegationEnabled stops or resumes new delegations to a registered validator.
func (p *Pool) SetDelegationEnabled(caller, validator base.Address, enabled bool) error {
	return p.admin("setDelegationEnabled", caller, func() error {
		rec, err := p.validators.Get(validator)
		if err != nil {
			return err
		}
		if rec == nil {
			return reverts.Newf(reverts.InvalidIndex, "validator %v is not registered", validator)
		}
		rec.DelegationDisabled = !enabled
		if err := p.validators.Update(validator, rec); err != nil {
			return err
		}
		detail := "delegation-disabled"
		if enabled {
			detail = "delegation-enabled"
		}
		return p.emit(Event{Kind: EventParamChanged, Validator: validator, Detail: detail})
	})
}

func (p *Pool) GrantRole(caller base.Address, role params.Role, account base.Address) error {
	return p.admin("grantRole", caller, func() error {
		if err := p.params.GrantRole(role, account); err != nil {
			return err
		}
		return p.emit(Event{Kind: EventRoleChanged, Account: account, Detail: "grant " + role.String()})
	})
}

func (p *Pool) RevokeRole(caller base.Address, role params.Role, account base.Address) error {
	return p.admin("revokeRole", caller, func() error {
		p.params.RevokeRole(role, account)
		return p.emit(Event{Kind: EventRoleChanged, Account: account, Detail: "revoke " + role.String()})
	})
}

// Pause blocks deposits, withdrawals, claims, delegation and reward distribution.
func (p *Pool) Pause(caller base.Address) error {
	return p.setPaused(caller, true)
}

func (p *Pool) Unpause(caller base.Address) error {
	return p.setPaused(caller, false)
}

func (p *Pool) setPaused(caller base.Address, paused bool) error {
	op := "unpause"
	if paused {
		op = "pause"
	}
	logger.Debug(op, "caller", caller)
	err := p.atomic(op, func() error {
		if err := p.requireRole(params.RolePauser, caller); err != nil {
			return err
		}
		if err := p.params.SetPaused(paused); err != nil {
			return err
		}
		kind := EventUnpaused
		if paused {
			kind = EventPaused
		}
		return p.emit(Event{Kind: kind, Account: caller})
	})
	if err != nil {
		logger.Info(op+" failed", "caller", caller, "error", err)
		return err
	}
	logger.Info(op, "caller", caller)
	return nil
}

// Recover mints shares directly to the listed accounts and pays compensateAmount out of the buffer.
// It exists to remediate accounting defects and bypasses the usual deposit path.
func (p *Pool) Recover(
	caller base.Address,
	accounts []base.Address,
	shares []*big.Int,
	compensateAddress base.Address,
	compensateAmount *big.Int,
) error {
	return p.admin("recover", caller, func() error {
		if len(accounts) != len(shares) {
			return reverts.Newf(reverts.InvalidAmount, "%d accounts for %d share amounts", len(accounts), len(shares))
		}
		for i, account := range accounts {
			if shares[i] == nil || shares[i].Sign() < 0 {
				return reverts.Newf(reverts.InvalidAmount, "invalid share amount for %v", account)
			}
			if err := p.ledger.Mint(account, shares[i]); err != nil {
				return err
			}
			if err := p.emit(Event{Kind: EventRecovered, Account: account, Shares: shares[i]}); err != nil {
				return err
			}
		}
		if compensateAmount == nil || compensateAmount.Sign() == 0 {
			return nil
		}
		if compensateAmount.Sign() < 0 {
			return reverts.New(reverts.InvalidAmount, "negative compensation")
		}
		if err := p.ledger.SubBuffered(compensateAmount); err != nil {
			return err
		}
		if err := p.payOut(compensateAddress, compensateAmount); err != nil {
			return err
		}
		return p.emit(Event{Kind: EventRecovered, Account: compensateAddress, Amount: compensateAmount})
	})
}
