// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package directory

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/pool/validators"
	"github.com/vechain/stakepool/state"
)

var (
	pool     = base.BytesToAddress([]byte("pool"))
	operator = base.BytesToAddress([]byte("operator"))
	v1       = base.BytesToAddress([]byte("v1"))
)

func newDirectory(t *testing.T) (*Directory, *state.State) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := state.New(db)
	d := New(base.BytesToAddress([]byte("directory")), st, pool)
	require.NoError(t, d.Network().SetWithdrawalDelay(2))
	require.NoError(t, d.AddValidator(v1, operator))
	return d, st
}

func TestDelegateAndUnbond(t *testing.T) {
	d, st := newDirectory(t)
	require.NoError(t, st.SetBalance(pool, big.NewInt(100)))

	h, err := d.StakeHandleOf(v1)
	require.NoError(t, err)
	assert.Equal(t, operator, h.RewardAddress())

	require.NoError(t, h.Delegate(big.NewInt(60)))
	assert.Error(t, h.Delegate(big.NewInt(41)))

	ref, err := h.Undelegate(big.NewInt(25))
	require.NoError(t, err)
	stake, err := h.CurrentStake()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(35), stake)

	_, err = h.WithdrawMatured(ref)
	assert.Error(t, err)

	_, err = d.Network().Advance(2)
	require.NoError(t, err)
	amount, err := h.WithdrawMatured(ref)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(25), amount)

	balance, err := st.GetBalance(pool)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(65), balance)

	_, err = h.WithdrawMatured(ref)
	assert.Error(t, err)
}

func TestRewardsAndSlash(t *testing.T) {
	d, st := newDirectory(t)
	require.NoError(t, st.SetBalance(pool, big.NewInt(10000)))
	h, err := d.StakeHandleOf(v1)
	require.NoError(t, err)
	require.NoError(t, h.Delegate(big.NewInt(10000)))

	total, err := d.AccrueRewards(50)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(50), total)

	reward, err := h.ClaimableReward()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(50), reward)

	got, err := h.WithdrawRewards()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(50), got)
	balance, _ := st.GetBalance(pool)
	assert.Equal(t, big.NewInt(50), balance)

	slashed, err := d.Slash(v1, 1000)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), slashed)

	// unbonding more than what is left returns only what is left
	ref, err := h.Undelegate(big.NewInt(10000))
	require.NoError(t, err)
	_, err = d.Network().Advance(2)
	require.NoError(t, err)
	amount, err := h.WithdrawMatured(ref)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(9000), amount)
}

func TestStatus(t *testing.T) {
	d, st := newDirectory(t)
	require.NoError(t, st.SetBalance(pool, big.NewInt(10)))

	require.NoError(t, d.SetStatus(v1, validators.StatusJailed))
	active, err := d.ListActive()
	require.NoError(t, err)
	assert.Empty(t, active)

	h, err := d.StakeHandleOf(v1)
	require.NoError(t, err)
	assert.Error(t, h.Delegate(big.NewInt(1)))

	require.NoError(t, d.SetStatus(v1, validators.StatusRemoved))
	assert.Error(t, d.SetStatus(v1, validators.StatusActive))

	status, err := d.StatusOf(v1)
	require.NoError(t, err)
	assert.Equal(t, validators.StatusRemoved, status)

	_, err = d.StatusOf(base.BytesToAddress([]byte("nobody")))
	assert.Error(t, err)
	assert.Error(t, d.AddValidator(v1, operator))
}
