// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package certificates_test

import (
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/api/certificates"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/test/testnode"
)

func TestCertificates(t *testing.T) {
	n, gen := testnode.New(t)
	router := mux.NewRouter()
	certificates.New(n).Mount(router, "/certificates")
	ts := httptest.NewServer(router)
	defer ts.Close()

	// 300 tokens spread over the three validators, then 30 redeemed from them
	testnode.Stake(t, n, testnode.Alice, 300)
	var tokenID uint64
	require.NoError(t, n.Exec(func(d *genesis.Deployment) (err error) {
		tokenID, err = d.Pool.RequestWithdraw(testnode.Alice, testnode.Tokens(30), testnode.Bob)
		return
	}))
	url := fmt.Sprintf("%s/certificates/%d", ts.URL, tokenID)

	body, status := testnode.HTTPGet(t, url)
	require.Equal(t, http.StatusOK, status, string(body))
	cert := testnode.Decode[certificates.Certificate](t, body)
	assert.Equal(t, testnode.Alice, cert.Owner)
	assert.False(t, cert.Claimable)
	assert.Len(t, cert.Requests, 3)
	assert.Equal(t, 0, testnode.Tokens(30).Cmp((*big.Int)(cert.Value)))
	for _, r := range cert.Requests {
		assert.Equal(t, gen.WithdrawalDelay, r.MaturesAt-r.RequestEpoch)
	}

	// not matured yet
	body, status = testnode.HTTPPost(t, url+"/claim", certificates.ClaimBody{Caller: testnode.Alice})
	assert.Equal(t, http.StatusConflict, status, string(body))
	assert.Contains(t, string(body), "NotMatured")

	require.NoError(t, n.Exec(func(d *genesis.Deployment) error {
		_, err := d.Directory.Network().Advance(gen.WithdrawalDelay)
		return err
	}))

	body, _ = testnode.HTTPGet(t, url)
	assert.True(t, testnode.Decode[certificates.Certificate](t, body).Claimable)

	// only the owner claims
	_, status = testnode.HTTPPost(t, url+"/claim", certificates.ClaimBody{Caller: testnode.Bob})
	assert.Equal(t, http.StatusForbidden, status)

	body, status = testnode.HTTPPost(t, url+"/claim", certificates.ClaimBody{Caller: testnode.Alice})
	require.Equal(t, http.StatusOK, status, string(body))
	res := testnode.Decode[certificates.ClaimResult](t, body)
	assert.Equal(t, 0, testnode.Tokens(30).Cmp((*big.Int)(res.Amount)))

	// burnt
	_, status = testnode.HTTPGet(t, url)
	assert.Equal(t, http.StatusNotFound, status)
	_, status = testnode.HTTPGet(t, ts.URL+"/certificates/abc")
	assert.Equal(t, http.StatusBadRequest, status)
}
