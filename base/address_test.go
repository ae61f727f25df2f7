// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package base

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	require.NoError(t, err)
	assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", addr.String())

	noPrefix, err := ParseAddress("7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	require.NoError(t, err)
	assert.Equal(t, addr, noPrefix)

	_, err = ParseAddress("0x1234")
	assert.EqualError(t, err, "invalid length")

	_, err = ParseAddress("1x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	assert.EqualError(t, err, "invalid prefix")

	_, err = ParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffzz")
	assert.Error(t, err)
}

func TestAddressJSON(t *testing.T) {
	addr := BytesToAddress([]byte("validator"))
	data, err := json.Marshal(&addr)
	require.NoError(t, err)

	var decoded Address
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded)

	byKey := map[Address]int{addr: 1}
	data, err = json.Marshal(byKey)
	require.NoError(t, err)
	var decodedMap map[Address]int
	require.NoError(t, json.Unmarshal(data, &decodedMap))
	assert.Equal(t, byKey, decodedMap)
}

func TestBlake2b(t *testing.T) {
	assert.Equal(t, Blake2b([]byte("ab")), Blake2b([]byte("a"), []byte("b")))
	assert.NotEqual(t, Blake2b([]byte("a")), Blake2b([]byte("b")))
	assert.False(t, Blake2b([]byte("a")).IsZero())
}

func TestUnits(t *testing.T) {
	assert.Equal(t, "1000000000000000000", ToWei(1).String())
	assert.Equal(t, uint64(3), ToTokens(new(big.Int).Add(ToWei(3), big.NewInt(1))))
	assert.Equal(t, uint64(0), ToTokens(nil))
	assert.Equal(t, int64(0), Big(nil).Int64())
}
