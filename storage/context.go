// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package storage provides typed slots over the raw per-address storage of a state.
package storage

import (
	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/state"
)

// Context binds typed slots to the storage of one address.
type Context struct {
	address base.Address
	state   *state.State
}

func NewContext(address base.Address, state *state.State) *Context {
	return &Context{address: address, state: state}
}

func (c *Context) Address() base.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// Slot derives the position of a named slot.
func Slot(name string) base.Bytes32 {
	return base.BytesToBytes32([]byte(name))
}
