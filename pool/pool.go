// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/pool/ledger"
	"github.com/vechain/stakepool/pool/params"
	"github.com/vechain/stakepool/pool/reverts"
	"github.com/vechain/stakepool/pool/validators"
	"github.com/vechain/stakepool/pool/withdrawals"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/storage"
)

var logger = log.WithContext("pkg", "pool")

func SetLogger(l log.Logger) {
	logger = l
}

type (
	Directory   = validators.Directory
	StakeHandle = validators.StakeHandle
)

// Network reports the epoch clock the maturity of withdrawals is measured in.
type Network interface {
	Epoch() (uint64, error)
	WithdrawalDelay() (uint64, error)
}

// Certificates issues the non-fungible withdrawal certificates.
type Certificates interface {
	Mint(owner base.Address) (uint64, error)
	Burn(id uint64) error
	OwnerOf(id uint64) (base.Address, bool, error)
	OwnedTokens(owner base.Address) ([]uint64, error)
}

// Pool is the liquid staking pool. Its funds are the balance of its address in the state;
// the accounting lives in the storage of the same address.
//
// A Pool is not safe for concurrent use: callers serialise every call.
type Pool struct {
	address      base.Address
	state        *state.State
	directory    Directory
	network      Network
	certificates Certificates

	ledger      *ledger.Service
	params      *params.Service
	validators  *validators.Service
	withdrawals *withdrawals.Service

	events []Event
}

// New creates a pool at addr. The directory, network and certificates are expected to keep their
// data in st as well, so that a rejected operation reverts them together with the pool.
func New(addr base.Address, st *state.State, directory Directory, network Network, certificates Certificates) *Pool {
	sctx := storage.NewContext(addr, st)
	return &Pool{
		address:      addr,
		state:        st,
		directory:    directory,
		network:      network,
		certificates: certificates,

		ledger:      ledger.New(sctx),
		params:      params.New(sctx),
		validators:  validators.New(sctx),
		withdrawals: withdrawals.New(sctx),
	}
}

func (p *Pool) Address() base.Address {
	return p.address
}

// atomic runs fn as one all-or-nothing step: on error every state change and event it made is dropped.
func (p *Pool) atomic(op string, fn func() error) error {
	checkpoint := p.state.NewCheckpoint()
	emitted := len(p.events)

	err := fn()
	if err != nil {
		p.state.RevertTo(checkpoint)
		p.events = p.events[:emitted]
	}
	metricOperations().AddWithLabel(1, map[string]string{"op": op, "result": result(err)})
	return err
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	if code := reverts.CodeOf(err); code != "" {
		return string(code)
	}
	return "error"
}

func (p *Pool) whenNotPaused() error {
	paused, err := p.params.Paused()
	if err != nil {
		return err
	}
	if paused {
		return reverts.New(reverts.Paused, "pool is paused")
	}
	return nil
}

func (p *Pool) requireRole(role params.Role, caller base.Address) error {
	ok, err := p.params.HasRole(role, caller)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.Newf(reverts.Unauthorized, "%v lacks role %v", caller, role)
	}
	return nil
}

func (p *Pool) epoch() (uint64, error) {
	return p.network.Epoch()
}

// payOut moves funds from the pool's custody to addr.
func (p *Pool) payOut(addr base.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	return p.state.Transfer(p.address, addr, amount)
}
