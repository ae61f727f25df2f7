// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package network_test

import (
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/api/network"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/node"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/test/datagen"
	"github.com/vechain/stakepool/test/testnode"
)

func initSoloServer(t *testing.T) (*node.Node, *genesis.Genesis, *httptest.Server) {
	n, gen := testnode.New(t)
	router := mux.NewRouter()
	network.New(n).Mount(router, "/network")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return n, gen, ts
}

func TestAdvanceAndTick(t *testing.T) {
	n, gen, ts := initSoloServer(t)
	testnode.Stake(t, n, testnode.Alice, 300)

	body, status := testnode.HTTPPost(t, ts.URL+"/network/advance", network.AdvanceBody{Epochs: 2})
	require.Equal(t, http.StatusOK, status, string(body))
	nw := testnode.Decode[network.Network](t, body)
	assert.Equal(t, uint64(2), nw.Epoch)
	assert.Equal(t, gen.WithdrawalDelay, nw.WithdrawalDelay)

	body, status = testnode.HTTPPost(t, ts.URL+"/network/tick", network.TickBody{RewardBps: 100})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, uint64(3), testnode.Decode[network.Network](t, body).Epoch)

	// 1% of 100 tokens per validator, harvested within the tick: 90% of the 3 tokens is buffered
	require.NoError(t, n.View(func(d *genesis.Deployment) error {
		views, err := d.Pool.Validators()
		require.NoError(t, err)
		for _, v := range views {
			assert.Equal(t, 0, v.ClaimableReward.Sign())
		}
		buffered, err := d.Pool.Buffered()
		require.NoError(t, err)
		assert.Equal(t, new(big.Int).Quo(testnode.Tokens(27), big.NewInt(10)).String(), buffered.String())
		return nil
	}))

	_, status = testnode.HTTPPost(t, ts.URL+"/network/advance", network.AdvanceBody{})
	assert.Equal(t, http.StatusBadRequest, status)
	_, status = testnode.HTTPPost(t, ts.URL+"/network/tick", network.TickBody{RewardBps: 10_001})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestValidatorLifecycle(t *testing.T) {
	n, gen, ts := initSoloServer(t)
	testnode.Stake(t, n, testnode.Alice, 300)

	id := datagen.RandAddress()
	body, status := testnode.HTTPPost(t, ts.URL+"/network/validators", network.ValidatorBody{ID: id, RewardAddress: datagen.RandAddress()})
	require.Equal(t, http.StatusOK, status, string(body))
	_, status = testnode.HTTPPost(t, ts.URL+"/network/validators", network.ValidatorBody{ID: id})
	assert.Equal(t, http.StatusBadRequest, status)

	// the new validator is registered with the pool right away
	require.NoError(t, n.View(func(d *genesis.Deployment) error {
		view, err := d.Pool.Validator(id)
		require.NoError(t, err)
		assert.NotNil(t, view)
		return nil
	}))

	exiting := gen.Validators[0].ID
	url := ts.URL + "/network/validators/" + exiting.String()
	body, status = testnode.HTTPPost(t, url+"/status", network.StatusBody{Status: "ejected"})
	require.Equal(t, http.StatusOK, status, string(body))

	require.NoError(t, n.View(func(d *genesis.Deployment) error {
		view, err := d.Pool.Validator(exiting)
		require.NoError(t, err)
		assert.True(t, view.Exited)
		assert.Equal(t, 0, view.Stake.Sign())
		system, err := d.Pool.SystemRequests()
		require.NoError(t, err)
		require.Len(t, system, 1)
		assert.Equal(t, testnode.Tokens(100).String(), system[0].Amount.String())
		return nil
	}))

	events := drainLog(t, n)
	assert.Contains(t, events, string(pool.EventValidatorExited))

	// exit is final
	_, status = testnode.HTTPPost(t, url+"/status", network.StatusBody{Status: "active"})
	assert.Equal(t, http.StatusBadRequest, status)
	_, status = testnode.HTTPPost(t, url+"/status", network.StatusBody{Status: "retired"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRewardsAndSlash(t *testing.T) {
	n, gen, ts := initSoloServer(t)
	testnode.Stake(t, n, testnode.Alice, 300)
	url := ts.URL + "/network/validators/" + gen.Validators[1].ID.String()

	body, status := testnode.HTTPPost(t, url+"/rewards", network.RewardBody{Amount: (*math.HexOrDecimal256)(big.NewInt(500))})
	require.Equal(t, http.StatusOK, status, string(body))
	_, status = testnode.HTTPPost(t, url+"/rewards", network.RewardBody{})
	assert.Equal(t, http.StatusBadRequest, status)

	body, status = testnode.HTTPPost(t, url+"/slash", network.SlashBody{Bps: 1000})
	require.Equal(t, http.StatusOK, status, string(body))
	slashed := testnode.Decode[network.AmountResult](t, body)
	assert.Equal(t, testnode.Tokens(10).String(), (*big.Int)(slashed.Amount).String())

	require.NoError(t, n.View(func(d *genesis.Deployment) error {
		view, err := d.Pool.Validator(gen.Validators[1].ID)
		require.NoError(t, err)
		assert.Equal(t, "500", view.ClaimableReward.String())
		assert.Equal(t, testnode.Tokens(100).String(), view.Stake.String())
		assert.Equal(t, testnode.Tokens(90).String(), view.HandleStake.String())
		return nil
	}))

	// the next epoch writes the loss down on the pool side
	require.NoError(t, n.Tick(0))
	require.NoError(t, n.View(func(d *genesis.Deployment) error {
		view, err := d.Pool.Validator(gen.Validators[1].ID)
		require.NoError(t, err)
		assert.Equal(t, testnode.Tokens(90).String(), view.Stake.String())
		pooled, err := d.Pool.TotalPooled()
		require.NoError(t, err)
		assert.Equal(t, testnode.Tokens(290).String(), pooled.String())
		return nil
	}))
	assert.Contains(t, drainLog(t, n), string(pool.EventStakeSlashed))

	_, status = testnode.HTTPPost(t, ts.URL+"/network/validators/"+datagen.RandAddress().String()+"/slash", network.SlashBody{Bps: 1})
	assert.Equal(t, http.StatusBadRequest, status)
}

func drainLog(t *testing.T, n *node.Node) []string {
	events, err := n.LogDB().FilterEvents(t.Context(), nil)
	require.NoError(t, err)
	kinds := make([]string, 0, len(events))
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}
