// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool_test

import (
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/api/pool"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/node"
	"github.com/vechain/stakepool/test/testnode"
)

func initPoolServer(t *testing.T) (*node.Node, *httptest.Server) {
	n, _ := testnode.New(t)

	router := mux.NewRouter()
	pool.New(n).Mount(router, "/pool")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return n, ts
}

func TestPool(t *testing.T) {
	n, ts := initPoolServer(t)

	// the cases share one node and run in order
	for _, tt := range []struct {
		name string
		run  func(*testing.T)
	}{
		{"getSummary", func(t *testing.T) { getSummary(t, n, ts) }},
		{"convert", func(t *testing.T) { convert(t, ts) }},
		{"delegate", func(t *testing.T) { delegate(t, n, ts) }},
		{"distributeRewards", func(t *testing.T) { distributeRewards(t, ts) }},
		{"rebalance", func(t *testing.T) { rebalance(t, ts) }},
		{"claimToPool", func(t *testing.T) { claimToPool(t, ts) }},
	} {
		t.Run(tt.name, tt.run)
	}
}

func getSummary(t *testing.T, n *node.Node, ts *httptest.Server) {
	require.NoError(t, n.Exec(func(d *genesis.Deployment) error {
		_, err := d.Pool.Submit(testnode.Alice, testnode.Tokens(30), testnode.Bob)
		return err
	}))

	body, status := testnode.HTTPGet(t, ts.URL+"/pool")
	require.Equal(t, http.StatusOK, status, string(body))

	summary := testnode.Decode[pool.Summary](t, body)
	assert.False(t, summary.Paused)
	assert.Len(t, summary.Params, 7)
	assert.Equal(t, 0, testnode.Tokens(30).Cmp((*big.Int)(summary.Buffered)))
	assert.Equal(t, 0, (*big.Int)(summary.TotalPooled).Cmp((*big.Int)(summary.TotalShares)))
}

func convert(t *testing.T, ts *httptest.Server) {
	body, status := testnode.HTTPGet(t, ts.URL+"/pool/convert?value=1000")
	require.Equal(t, http.StatusOK, status, string(body))
	conv := testnode.Decode[pool.Conversion](t, body)
	assert.Equal(t, "1000", (*big.Int)(conv.Value).String())
	assert.Equal(t, "1000", (*big.Int)(conv.Shares).String())

	_, status = testnode.HTTPGet(t, ts.URL+"/pool/convert?shares=0x10")
	assert.Equal(t, http.StatusOK, status)

	_, status = testnode.HTTPGet(t, ts.URL+"/pool/convert")
	assert.Equal(t, http.StatusBadRequest, status)
	_, status = testnode.HTTPGet(t, ts.URL+"/pool/convert?value=1&shares=1")
	assert.Equal(t, http.StatusBadRequest, status)
	_, status = testnode.HTTPGet(t, ts.URL+"/pool/convert?value=abc")
	assert.Equal(t, http.StatusBadRequest, status)
}

func delegate(t *testing.T, n *node.Node, ts *httptest.Server) {
	require.NoError(t, n.Exec(func(d *genesis.Deployment) error {
		_, err := d.Pool.Submit(testnode.Bob, testnode.Tokens(300), testnode.Bob)
		return err
	}))

	body, status := testnode.HTTPPost(t, ts.URL+"/pool/delegate", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	res := testnode.Decode[pool.AmountResult](t, body)
	assert.Equal(t, 1, (*big.Int)(res.Amount).Sign())

	// the buffer is empty now
	body, status = testnode.HTTPPost(t, ts.URL+"/pool/delegate", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "BelowMinimum")
}

func distributeRewards(t *testing.T, ts *httptest.Server) {
	res, err := http.Post(ts.URL+"/pool/rewards/distribute", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "BelowMinimum", res.Header.Get("X-Revert-Code"))
}

func rebalance(t *testing.T, ts *httptest.Server) {
	body, status := testnode.HTTPPost(t, ts.URL+"/pool/rebalance", pool.CallerBody{Caller: testnode.Alice})
	assert.Equal(t, http.StatusForbidden, status, string(body))

	body, status = testnode.HTTPPost(t, ts.URL+"/pool/rebalance", pool.CallerBody{Caller: testnode.Admin})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, 0, testnode.Decode[pool.RebalanceResult](t, body).Raised)

	_, status = testnode.HTTPPost(t, ts.URL+"/pool/rebalance", map[string]any{"unknown": 1})
	assert.Equal(t, http.StatusBadRequest, status)
}

func claimToPool(t *testing.T, ts *httptest.Server) {
	body, status := testnode.HTTPGet(t, ts.URL+"/pool/withdrawals")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, testnode.Decode[[]*pool.Request](t, body))

	body, status = testnode.HTTPPost(t, ts.URL+"/pool/withdrawals/0/claim", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "InvalidIndex")

	_, status = testnode.HTTPPost(t, ts.URL+"/pool/withdrawals/x/claim", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
