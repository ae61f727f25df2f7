// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"math/big"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/log"
)

var logger = log.WithContext("pkg", "storage")

// ConfigVariable is a named setting with a default, overridable by a value kept in storage.
// An explicit zero is a valid override; Reset restores the default.
type ConfigVariable struct {
	name         string
	defaultValue *big.Int
}

func NewConfigVariable(name string, defaultValue *big.Int) *ConfigVariable {
	return &ConfigVariable{name: name, defaultValue: defaultValue}
}

func (c *ConfigVariable) Name() string {
	return c.name
}

func (c *ConfigVariable) Slot() base.Bytes32 {
	return Slot(c.name)
}

func (c *ConfigVariable) Default() *big.Int {
	return new(big.Int).Set(c.defaultValue)
}

// Get reads the override from ctx, falling back to the default.
func (c *ConfigVariable) Get(ctx *Context) (*big.Int, error) {
	slot := NewRaw[*big.Int](ctx, c.Slot())
	exists, err := slot.Exists()
	if err != nil {
		logger.Warn("failed to read config value", "slot", c.name, "error", err)
		return nil, err
	}
	if !exists {
		return c.Default(), nil
	}
	return slot.Get()
}

// Uint64 is Get for settings that always fit in 64 bits.
func (c *ConfigVariable) Uint64(ctx *Context) (uint64, error) {
	value, err := c.Get(ctx)
	if err != nil {
		return 0, err
	}
	return value.Uint64(), nil
}

func (c *ConfigVariable) Set(ctx *Context, value *big.Int) error {
	logger.Debug("config value set", "slot", c.name, "value", value)
	return NewRaw[*big.Int](ctx, c.Slot()).Set(value)
}

func (c *ConfigVariable) Reset(ctx *Context) {
	NewRaw[*big.Int](ctx, c.Slot()).Clear()
}
