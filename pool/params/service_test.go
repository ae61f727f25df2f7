// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/storage"
)

func newService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(storage.NewContext(base.BytesToAddress([]byte("pool")), state.New(db)))
}

func TestSettings(t *testing.T) {
	svc := newService(t)

	fee, err := svc.Uint64(ProtocolFeeBps)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), fee)

	require.NoError(t, svc.Set(ProtocolFeeBps, big.NewInt(500)))
	snapshot, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), snapshot["protocol-fee-bps"])
	assert.Equal(t, base.ToWei(1), snapshot["delegation-lower-bound"])
	assert.Len(t, snapshot, len(All))

	v, ok := Lookup("distance-threshold")
	assert.True(t, ok)
	assert.Equal(t, DistanceThreshold, v)
	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func TestRolesAndPause(t *testing.T) {
	svc := newService(t)
	alice := base.BytesToAddress([]byte("alice"))

	ok, err := svc.HasRole(RoleDAO, alice)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.GrantRole(RoleDAO, alice))
	ok, _ = svc.HasRole(RoleDAO, alice)
	assert.True(t, ok)
	ok, _ = svc.HasRole(RolePauser, alice)
	assert.False(t, ok)

	svc.RevokeRole(RoleDAO, alice)
	ok, _ = svc.HasRole(RoleDAO, alice)
	assert.False(t, ok)

	require.NoError(t, svc.SetPaused(true))
	paused, err := svc.Paused()
	require.NoError(t, err)
	assert.True(t, paused)
	require.NoError(t, svc.SetPaused(false))
	paused, _ = svc.Paused()
	assert.False(t, paused)

	require.NoError(t, svc.SetDaoAddress(alice))
	dao, err := svc.DaoAddress()
	require.NoError(t, err)
	assert.Equal(t, alice, dao)

	role, err := ParseRole("pauser")
	require.NoError(t, err)
	assert.Equal(t, RolePauser, role)
	assert.Equal(t, "pauser", role.String())
	_, err = ParseRole("root")
	assert.Error(t, err)
}
