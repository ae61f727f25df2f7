// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
)

type record struct {
	Owner  base.Address
	Amount *big.Int
	Epoch  uint64
}

func newTestContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(base.BytesToAddress([]byte("contract")), state.New(db))
}

func TestUint256(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint256(ctx, Slot("total"))

	v, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	require.NoError(t, u.Add(big.NewInt(100)))
	require.NoError(t, u.Sub(big.NewInt(30)))
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(70), v)

	assert.Error(t, u.Sub(big.NewInt(71)))
	assert.Error(t, u.Set(big.NewInt(-1)))

	require.NoError(t, u.Set(big.NewInt(0)))
	raw, err := ctx.State().GetRawStorage(ctx.Address(), Slot("total"))
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestRaw(t *testing.T) {
	ctx := newTestContext(t)
	r := NewRaw[*record](ctx, Slot("record"))

	empty, err := r.Get()
	require.NoError(t, err)
	require.NotNil(t, empty)
	assert.Nil(t, empty.Amount)

	exists, err := r.Exists()
	require.NoError(t, err)
	assert.False(t, exists)

	want := &record{Owner: base.BytesToAddress([]byte("alice")), Amount: big.NewInt(5), Epoch: 9}
	require.NoError(t, r.Set(want))

	got, err := r.Get()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	r.Clear()
	exists, err = r.Exists()
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMapping(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[base.Address, uint64](ctx, Slot("nonces"))
	other := NewMapping[base.Address, uint64](ctx, Slot("other"))

	alice := base.BytesToAddress([]byte("alice"))
	require.NoError(t, m.Set(alice, 3))

	v, err := m.Get(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)

	// same key under another base position is a different slot
	v, err = other.Get(alice)
	require.NoError(t, err)
	assert.Zero(t, v)

	m.Delete(alice)
	exists, err := m.Exists(alice)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMappingDecodeError(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[base.Bytes32, *record](ctx, Slot("records"))
	key := base.BytesToBytes32([]byte("k"))

	ctx.State().SetRawStorage(ctx.Address(), base.Blake2b(key.Bytes(), Slot("records").Bytes()), []byte{0xFF})
	_, err := m.Get(key)
	assert.Error(t, err)
}

func TestConfigVariable(t *testing.T) {
	ctx := newTestContext(t)
	c := NewConfigVariable("protocol-fee", big.NewInt(1000))

	v, err := c.Uint64(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), v)

	require.NoError(t, c.Set(ctx, big.NewInt(500)))
	v, err = c.Uint64(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), v)

	// zero is an override, not the default
	require.NoError(t, c.Set(ctx, new(big.Int)))
	v, err = c.Uint64(ctx)
	require.NoError(t, err)
	assert.Zero(t, v)

	c.Reset(ctx)
	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), got)
	assert.Equal(t, Slot("protocol-fee"), c.Slot())
}
