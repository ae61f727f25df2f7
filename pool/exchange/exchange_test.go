// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package exchange

import (
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/pool/reverts"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name                string
		in, shares, pooled  int64
		wantShares, wantVal int64
	}{
		{"empty pool is 1:1", 1000, 0, 0, 1000, 1000},
		{"even rate", 50, 100, 100, 50, 50},
		{"pool grew", 100, 1000, 1100, 90, 110},
		{"truncates", 1, 3, 2, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := SharesFor(big.NewInt(tt.in), big.NewInt(tt.shares), big.NewInt(tt.pooled))
			require.NoError(t, err)
			assert.Equal(t, big.NewInt(tt.wantShares), shares)

			value, err := ValueFor(big.NewInt(tt.in), big.NewInt(tt.shares), big.NewInt(tt.pooled))
			require.NoError(t, err)
			assert.Equal(t, big.NewInt(tt.wantVal), value)
		})
	}
}

func TestZeroValue(t *testing.T) {
	shares, err := SharesFor(new(big.Int), big.NewInt(10), big.NewInt(20))
	require.NoError(t, err)
	assert.Equal(t, 0, shares.Sign())
}

func TestOverflow(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 255)
	_, err := SharesFor(huge, huge, big.NewInt(1))
	assert.True(t, reverts.Is(err, reverts.InvalidAmount))

	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = ValueFor(tooBig, new(big.Int), new(big.Int))
	assert.True(t, reverts.Is(err, reverts.InvalidAmount))

	_, err = ValueFor(big.NewInt(-1), big.NewInt(1), big.NewInt(1))
	assert.True(t, reverts.Is(err, reverts.InvalidAmount))
}

func TestRoundTripNeverCreatesValue(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for range 2000 {
		var s, supply, pooled uint64
		f.Fuzz(&s)
		f.Fuzz(&supply)
		f.Fuzz(&pooled)
		if supply == 0 {
			supply = 1
		}
		if pooled == 0 {
			pooled = 1
		}
		bs, bsupply, bpooled := new(big.Int).SetUint64(s), new(big.Int).SetUint64(supply), new(big.Int).SetUint64(pooled)

		value, err := ValueFor(bs, bsupply, bpooled)
		require.NoError(t, err)
		back, err := SharesFor(value, bsupply, bpooled)
		require.NoError(t, err)
		assert.LessOrEqual(t, back.Cmp(bs), 0, "shares=%d supply=%d pooled=%d", s, supply, pooled)

		shares, err := SharesFor(bs, bsupply, bpooled)
		require.NoError(t, err)
		value, err = ValueFor(shares, bsupply, bpooled)
		require.NoError(t, err)
		assert.LessOrEqual(t, value.Cmp(bs), 0, "value=%d supply=%d pooled=%d", s, supply, pooled)
	}
}
