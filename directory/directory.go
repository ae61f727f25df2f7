// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package directory simulates a validator registry and its stake contracts.
// Everything is kept in the shared state, so it reverts together with the pool.
package directory

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/pool/validators"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/storage"
)

var logger = log.WithContext("pkg", "directory")

// BurnAddress receives slashed stake.
var BurnAddress = base.BytesToAddress([]byte("burn"))

var (
	slotValidators = storage.Slot("validators")
	slotIDs        = storage.Slot("validator-ids")
	slotUnbonds    = storage.Slot("unbonds")
	slotLastRef    = storage.Slot("last-unbond-ref")
)

// Validator is the simulated state of one validator. Its funds sit in the balance of its id.
type Validator struct {
	RewardAddress base.Address
	Status        validators.Status
	Stake         *big.Int
	Rewards       *big.Int
}

// Unbond is stake waiting for the withdrawal delay.
type Unbond struct {
	Validator base.Address
	Amount    *big.Int
	MaturesAt uint64
}

type refKey uint64

func (r refKey) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(r))
}

// Directory serves one delegator, the pool.
type Directory struct {
	state     *state.State
	delegator base.Address
	network   *Network

	validators *storage.Mapping[base.Address, *Validator]
	ids        *storage.Raw[[]base.Address]
	unbonds    *storage.Mapping[refKey, *Unbond]
	lastRef    *storage.Raw[uint64]
}

var _ validators.Directory = (*Directory)(nil)

func New(addr base.Address, st *state.State, delegator base.Address) *Directory {
	sctx := storage.NewContext(addr, st)
	return &Directory{
		state:      st,
		delegator:  delegator,
		network:    newNetwork(sctx),
		validators: storage.NewMapping[base.Address, *Validator](sctx, slotValidators),
		ids:        storage.NewRaw[[]base.Address](sctx, slotIDs),
		unbonds:    storage.NewMapping[refKey, *Unbond](sctx, slotUnbonds),
		lastRef:    storage.NewRaw[uint64](sctx, slotLastRef),
	}
}

func (d *Directory) Network() *Network {
	return d.network
}

// AddValidator lists a new active validator.
func (d *Directory) AddValidator(id, rewardAddress base.Address) error {
	exists, err := d.validators.Exists(id)
	if err != nil {
		return err
	}
	if exists {
		return errors.Errorf("validator %v already exists", id)
	}
	ids, err := d.ids.Get()
	if err != nil {
		return err
	}
	if err := d.ids.Set(append(ids, id)); err != nil {
		return err
	}
	logger.Debug("validator added", "id", id, "rewardAddress", rewardAddress)
	return d.validators.Set(id, &Validator{
		RewardAddress: rewardAddress,
		Status:        validators.StatusActive,
		Stake:         new(big.Int),
		Rewards:       new(big.Int),
	})
}

// Get returns a validator, failing on unknown ids.
func (d *Directory) Get(id base.Address) (*Validator, error) {
	exists, err := d.validators.Exists(id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.Errorf("validator %v not found", id)
	}
	return d.validators.Get(id)
}

func (d *Directory) IDs() ([]base.Address, error) {
	return d.ids.Get()
}

func (d *Directory) SetStatus(id base.Address, status validators.Status) error {
	v, err := d.Get(id)
	if err != nil {
		return err
	}
	if v.Status.IsExit() {
		return errors.Errorf("validator %v already %v", id, v.Status)
	}
	logger.Info("validator status changed", "id", id, "from", v.Status, "to", status)
	v.Status = status
	return d.validators.Set(id, v)
}

func (d *Directory) ListActive() ([]base.Address, error) {
	ids, err := d.ids.Get()
	if err != nil {
		return nil, err
	}
	active := make([]base.Address, 0, len(ids))
	for _, id := range ids {
		v, err := d.validators.Get(id)
		if err != nil {
			return nil, err
		}
		if v.Status == validators.StatusActive {
			active = append(active, id)
		}
	}
	return active, nil
}

func (d *Directory) StatusOf(id base.Address) (validators.Status, error) {
	v, err := d.Get(id)
	if err != nil {
		return validators.StatusUnknown, err
	}
	return v.Status, nil
}

func (d *Directory) StakeHandleOf(id base.Address) (validators.StakeHandle, error) {
	v, err := d.Get(id)
	if err != nil {
		return nil, err
	}
	return &handle{d: d, id: id, rewardAddress: v.RewardAddress}, nil
}

// AccrueRewards credits every active validator with stake * rateBps / 10000 and returns the total.
func (d *Directory) AccrueRewards(rateBps uint64) (*big.Int, error) {
	ids, err := d.ids.Get()
	if err != nil {
		return nil, err
	}
	total := new(big.Int)
	for _, id := range ids {
		v, err := d.validators.Get(id)
		if err != nil {
			return nil, err
		}
		if v.Status != validators.StatusActive || v.Stake.Sign() == 0 {
			continue
		}
		reward := new(big.Int).Mul(v.Stake, new(big.Int).SetUint64(rateBps))
		reward.Quo(reward, big.NewInt(base.BasisPoints))
		if err := d.AccrueReward(id, reward); err != nil {
			return nil, err
		}
		total.Add(total, reward)
	}
	return total, nil
}

// AccrueReward mints a reward for one validator.
func (d *Directory) AccrueReward(id base.Address, amount *big.Int) error {
	v, err := d.Get(id)
	if err != nil {
		return err
	}
	if err := d.state.AddBalance(id, amount); err != nil {
		return err
	}
	v.Rewards.Add(v.Rewards, amount)
	return d.validators.Set(id, v)
}

// Slash burns bps of a validator's stake and returns the amount burnt.
func (d *Directory) Slash(id base.Address, bps uint64) (*big.Int, error) {
	v, err := d.Get(id)
	if err != nil {
		return nil, err
	}
	amount := new(big.Int).Mul(v.Stake, new(big.Int).SetUint64(bps))
	amount.Quo(amount, big.NewInt(base.BasisPoints))
	if err := d.state.Transfer(id, BurnAddress, amount); err != nil {
		return nil, err
	}
	v.Stake.Sub(v.Stake, amount)
	logger.Info("validator slashed", "id", id, "amount", amount)
	return amount, d.validators.Set(id, v)
}

type handle struct {
	d             *Directory
	id            base.Address
	rewardAddress base.Address
}

func (h *handle) RewardAddress() base.Address {
	return h.rewardAddress
}

func (h *handle) Delegate(amount *big.Int) error {
	v, err := h.d.Get(h.id)
	if err != nil {
		return err
	}
	if v.Status != validators.StatusActive {
		return errors.Errorf("validator %v is %v", h.id, v.Status)
	}
	if err := h.d.state.Transfer(h.d.delegator, h.id, amount); err != nil {
		return err
	}
	v.Stake.Add(v.Stake, amount)
	return h.d.validators.Set(h.id, v)
}

// Undelegate unbonds at most the current stake; a slashed validator returns less than asked.
func (h *handle) Undelegate(amount *big.Int) (uint64, error) {
	v, err := h.d.Get(h.id)
	if err != nil {
		return 0, err
	}
	unbonded := new(big.Int).Set(amount)
	if unbonded.Cmp(v.Stake) > 0 {
		unbonded.Set(v.Stake)
	}
	epoch, err := h.d.network.Epoch()
	if err != nil {
		return 0, err
	}
	delay, err := h.d.network.WithdrawalDelay()
	if err != nil {
		return 0, err
	}
	ref, err := h.d.lastRef.Get()
	if err != nil {
		return 0, err
	}
	ref++
	if err := h.d.lastRef.Set(ref); err != nil {
		return 0, err
	}
	v.Stake.Sub(v.Stake, unbonded)
	if err := h.d.validators.Set(h.id, v); err != nil {
		return 0, err
	}
	return ref, h.d.unbonds.Set(refKey(ref), &Unbond{
		Validator: h.id,
		Amount:    unbonded,
		MaturesAt: epoch + delay,
	})
}

func (h *handle) WithdrawMatured(ref uint64) (*big.Int, error) {
	exists, err := h.d.unbonds.Exists(refKey(ref))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.Errorf("unbond %d not found", ref)
	}
	unbond, err := h.d.unbonds.Get(refKey(ref))
	if err != nil {
		return nil, err
	}
	if unbond.Validator != h.id {
		return nil, errors.Errorf("unbond %d belongs to %v", ref, unbond.Validator)
	}
	epoch, err := h.d.network.Epoch()
	if err != nil {
		return nil, err
	}
	if epoch < unbond.MaturesAt {
		return nil, errors.Errorf("unbond %d matures at epoch %d", ref, unbond.MaturesAt)
	}
	if err := h.d.state.Transfer(h.id, h.d.delegator, unbond.Amount); err != nil {
		return nil, err
	}
	h.d.unbonds.Delete(refKey(ref))
	return unbond.Amount, nil
}

func (h *handle) ClaimableReward() (*big.Int, error) {
	v, err := h.d.Get(h.id)
	if err != nil {
		return nil, err
	}
	return v.Rewards, nil
}

func (h *handle) WithdrawRewards() (*big.Int, error) {
	v, err := h.d.Get(h.id)
	if err != nil {
		return nil, err
	}
	amount := v.Rewards
	if err := h.d.state.Transfer(h.id, h.d.delegator, amount); err != nil {
		return nil, err
	}
	v.Rewards = new(big.Int)
	return amount, h.d.validators.Set(h.id, v)
}

func (h *handle) CurrentStake() (*big.Int, error) {
	v, err := h.d.Get(h.id)
	if err != nil {
		return nil, err
	}
	return v.Stake, nil
}
