// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package base

import "math/big"

var bigE18 = big.NewInt(1e18)

// BasisPoints is the denominator of every fee and split ratio.
const BasisPoints = 10_000

// ToWei converts whole tokens into wei.
func ToWei(tokens uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(tokens), bigE18)
}

// ToTokens truncates wei to whole tokens, for logs and gauges.
func ToTokens(wei *big.Int) uint64 {
	if wei == nil {
		return 0
	}
	return new(big.Int).Div(wei, bigE18).Uint64()
}

// Big returns a copy of v, treating nil as zero.
func Big(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
