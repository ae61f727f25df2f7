// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validators

import (
	"math/big"

	"github.com/vechain/stakepool/base"
)

// StakeHandle is the pool's capability over its stake with one validator.
// Every call is expected to complete synchronously within the calling operation.
type StakeHandle interface {
	Delegate(amount *big.Int) error
	// Undelegate starts unbonding amount and returns a reference to claim it with once matured.
	Undelegate(amount *big.Int) (ref uint64, err error)
	// WithdrawMatured moves an unbonded amount back to the pool and returns it.
	WithdrawMatured(ref uint64) (*big.Int, error)
	ClaimableReward() (*big.Int, error)
	// WithdrawRewards moves every claimable reward to the pool and returns the amount.
	WithdrawRewards() (*big.Int, error)
	CurrentStake() (*big.Int, error)
	// RewardAddress receives the operator's share of the protocol fee.
	RewardAddress() base.Address
}

// Directory is the external catalog of validators the pool allocates to.
type Directory interface {
	ListActive() ([]base.Address, error)
	StatusOf(id base.Address) (Status, error)
	StakeHandleOf(id base.Address) (StakeHandle, error)
}
