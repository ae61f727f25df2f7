// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package certificate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
)

func TestRegistry(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	st := state.New(db)
	reg := New(base.BytesToAddress([]byte("certificates")), st)
	alice := base.BytesToAddress([]byte("alice"))
	bob := base.BytesToAddress([]byte("bob"))

	id1, err := reg.Mint(alice)
	require.NoError(t, err)
	id2, err := reg.Mint(bob)
	require.NoError(t, err)
	id3, err := reg.Mint(alice)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{id1, id2, id3})

	owned, err := reg.OwnedTokens(alice)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, owned)

	owner, ok, err := reg.OwnerOf(2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, bob, owner)

	require.NoError(t, reg.Burn(1))
	assert.ErrorIs(t, reg.Burn(1), ErrNotFound)

	owned, err = reg.OwnedTokens(alice)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3}, owned)

	exists, err := reg.Exists(1)
	require.NoError(t, err)
	assert.False(t, exists)

	// ids are never reused
	id4, err := reg.Mint(bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), id4)

	_, err = reg.Mint(base.Address{})
	assert.Error(t, err)
}

func TestRevertsWithState(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	st := state.New(db)
	reg := New(base.BytesToAddress([]byte("certificates")), st)
	alice := base.BytesToAddress([]byte("alice"))

	cp := st.NewCheckpoint()
	_, err = reg.Mint(alice)
	require.NoError(t, err)
	st.RevertTo(cp)

	owned, err := reg.OwnedTokens(alice)
	require.NoError(t, err)
	assert.Empty(t, owned)
	id, err := reg.Mint(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}
