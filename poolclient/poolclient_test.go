// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package poolclient_test

import (
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/api"
	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/pool/reverts"
	"github.com/vechain/stakepool/poolclient"
	"github.com/vechain/stakepool/poolclient/httpclient"
	"github.com/vechain/stakepool/poolclient/wsclient"
	"github.com/vechain/stakepool/test/testnode"
)

func newClient(t *testing.T) (*poolclient.Client, base.Address) {
	n, gen := testnode.New(t)
	handler, closeFunc := api.New(n, gen, api.Options{SoloMode: true, LogsLimit: 100})
	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		ts.Close()
		closeFunc()
	})

	client, err := poolclient.NewWithWS(ts.URL)
	require.NoError(t, err)
	return client, gen.PoolAddress
}

func TestStakeAndRedeem(t *testing.T) {
	client, poolAddr := newClient(t)

	addr, err := client.PoolAddress()
	require.NoError(t, err)
	assert.Equal(t, poolAddr, addr)

	submitted, err := client.Submit(testnode.Alice, testnode.Tokens(300), base.Address{})
	require.NoError(t, err)
	assert.Equal(t, 0, testnode.Tokens(300).Cmp((*big.Int)(submitted.Shares)))

	summary, err := client.GetPool()
	require.NoError(t, err)
	assert.Equal(t, 0, testnode.Tokens(300).Cmp((*big.Int)(summary.TotalPooled)))

	conv, err := client.ConvertToShares(testnode.Tokens(100))
	require.NoError(t, err)
	assert.Equal(t, 0, testnode.Tokens(100).Cmp((*big.Int)(conv.Shares)))

	cert, err := client.Redeem(testnode.Alice)
	require.NoError(t, err)
	assert.Equal(t, testnode.Alice, cert.Owner)
	assert.Equal(t, 0, testnode.Tokens(300).Cmp((*big.Int)(cert.Shares)))

	acc, err := client.GetAccount(testnode.Alice)
	require.NoError(t, err)
	assert.Equal(t, []uint64{cert.ID}, acc.Certificates)

	_, err = client.Redeem(testnode.Alice)
	assert.ErrorContains(t, err, "no shares")
}

func TestErrors(t *testing.T) {
	client, _ := newClient(t)

	_, err := client.Pause(testnode.Alice)
	require.Error(t, err)
	assert.ErrorIs(t, err, httpclient.ErrNot200Status)
	assert.NotErrorIs(t, err, httpclient.ErrNotFound)

	var httpErr *httpclient.Error
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusForbidden, httpErr.Status)
	assert.Equal(t, reverts.Unauthorized, httpErr.RevertCode)

	_, err = client.GetCertificate(9999)
	assert.ErrorIs(t, err, httpclient.ErrNotFound)

	_, err = client.Submit(testnode.Alice, new(big.Int), base.Address{})
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, reverts.InvalidAmount, httpErr.RevertCode)
}

func TestGovernanceAndNetwork(t *testing.T) {
	client, _ := newClient(t)

	settings, err := client.Pause(testnode.Admin)
	require.NoError(t, err)
	assert.True(t, settings.Paused)

	settings, err = client.Unpause(testnode.Admin)
	require.NoError(t, err)
	assert.False(t, settings.Paused)

	before, err := client.GetNetwork()
	require.NoError(t, err)
	after, err := client.Advance(2)
	require.NoError(t, err)
	assert.Equal(t, before.Epoch+2, after.Epoch)

	validators, err := client.GetValidators()
	require.NoError(t, err)
	assert.Len(t, validators, 3)

	v, err := client.GetValidator(validators[0].ID)
	require.NoError(t, err)
	assert.Equal(t, validators[0].ID, v.ID)
}

func TestSubscribeEvents(t *testing.T) {
	client, _ := newClient(t)

	bob := testnode.Bob
	sub, err := client.SubscribeEvents(&wsclient.EventQuery{Account: &bob})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	// the handshake completes before the server subscribes to the feed
	require.Eventually(t, func() bool {
		if _, err := client.Submit(bob, testnode.Tokens(10), base.Address{}); err != nil {
			return false
		}
		select {
		case ev := <-sub.EventChan:
			return ev.Error == nil && ev.Data.Account != nil && *ev.Data.Account == bob
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, sub.Unsubscribe())
	assert.NoError(t, sub.Unsubscribe())
}

func TestHTTPOnlyClient(t *testing.T) {
	client := poolclient.New("http://localhost:1")
	_, err := client.SubscribeEvents(nil)
	assert.Error(t, err)
}
