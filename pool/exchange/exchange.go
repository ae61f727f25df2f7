// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package exchange converts between pool shares and the underlying asset.
// Both directions truncate, so a round trip never yields more than it started with.
package exchange

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/pool/reverts"
)

// SharesFor returns floor(value * totalShares / totalPooled), or value itself while
// either total is zero.
func SharesFor(value, totalShares, totalPooled *big.Int) (*big.Int, error) {
	if value.Sign() == 0 {
		return new(big.Int), nil
	}
	if totalShares.Sign() == 0 || totalPooled.Sign() == 0 {
		if err := fits(value); err != nil {
			return nil, err
		}
		return new(big.Int).Set(value), nil
	}
	return mulDiv(value, totalShares, totalPooled)
}

// ValueFor returns floor(shares * totalPooled / totalShares), or shares itself while
// there is no supply.
func ValueFor(shares, totalShares, totalPooled *big.Int) (*big.Int, error) {
	if totalShares.Sign() == 0 {
		if err := fits(shares); err != nil {
			return nil, err
		}
		return new(big.Int).Set(shares), nil
	}
	return mulDiv(shares, totalPooled, totalShares)
}

func fits(v *big.Int) error {
	if v.Sign() < 0 {
		return reverts.New(reverts.InvalidAmount, "negative amount")
	}
	if v.BitLen() > 256 {
		return reverts.New(reverts.InvalidAmount, "amount overflows 256 bits")
	}
	return nil
}

func mulDiv(x, y, d *big.Int) (*big.Int, error) {
	for _, v := range []*big.Int{x, y, d} {
		if err := fits(v); err != nil {
			return nil, err
		}
	}
	ux, _ := uint256.FromBig(x)
	uy, _ := uint256.FromBig(y)
	ud, _ := uint256.FromBig(d)
	res, overflow := new(uint256.Int).MulDivOverflow(ux, uy, ud)
	if overflow {
		return nil, reverts.New(reverts.InvalidAmount, "conversion overflows 256 bits")
	}
	return res.ToBig(), nil
}
