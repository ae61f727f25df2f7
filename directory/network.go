// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package directory

import (
	"github.com/vechain/stakepool/storage"
)

var (
	slotEpoch = storage.Slot("epoch")
	slotDelay = storage.Slot("withdrawal-delay")
)

// Network is the simulated epoch clock.
type Network struct {
	epoch *storage.Raw[uint64]
	delay *storage.Raw[uint64]
}

func newNetwork(sctx *storage.Context) *Network {
	return &Network{
		epoch: storage.NewRaw[uint64](sctx, slotEpoch),
		delay: storage.NewRaw[uint64](sctx, slotDelay),
	}
}

func (n *Network) Epoch() (uint64, error) {
	return n.epoch.Get()
}

// WithdrawalDelay is the number of epochs an unbond takes to mature.
func (n *Network) WithdrawalDelay() (uint64, error) {
	return n.delay.Get()
}

func (n *Network) SetWithdrawalDelay(delay uint64) error {
	return n.delay.Set(delay)
}

// Advance moves the clock forward and returns the new epoch.
func (n *Network) Advance(epochs uint64) (uint64, error) {
	epoch, err := n.epoch.Get()
	if err != nil {
		return 0, err
	}
	epoch += epochs
	return epoch, n.epoch.Set(epoch)
}
