// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package governance

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/base"
)

type Settings struct {
	Params    map[string]*math.HexOrDecimal256 `json:"params"`
	Insurance base.Address                     `json:"insurance"`
	Dao       base.Address                     `json:"dao"`
	Paused    bool                             `json:"paused"`
}

// Every body names the caller the privileged operation is checked against.

type CallerBody struct {
	Caller base.Address `json:"caller"`
}

type ParamBody struct {
	Caller base.Address          `json:"caller"`
	Name   string                `json:"name"`
	Value  *math.HexOrDecimal256 `json:"value"`
}

type FeeSplitBody struct {
	Caller       base.Address `json:"caller"`
	InsuranceBps uint64       `json:"insuranceBps"`
	DaoBps       uint64       `json:"daoBps"`
}

type AddressBody struct {
	Caller  base.Address `json:"caller"`
	Address base.Address `json:"address"`
}

type RoleBody struct {
	Caller  base.Address `json:"caller"`
	Account base.Address `json:"account"`
	Grant   bool         `json:"grant"`
}

type DelegationBody struct {
	Caller  base.Address `json:"caller"`
	Enabled bool         `json:"enabled"`
}

type RecoverBody struct {
	Caller            base.Address            `json:"caller"`
	Accounts          []base.Address          `json:"accounts"`
	Shares            []*math.HexOrDecimal256 `json:"shares"`
	CompensateAddress base.Address            `json:"compensateAddress"`
	CompensateAmount  *math.HexOrDecimal256   `json:"compensateAmount"`
}
