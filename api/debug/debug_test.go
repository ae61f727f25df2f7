// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package debug_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/api/debug"
	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/test/datagen"
	"github.com/vechain/stakepool/test/testnode"
)

func newServer(t *testing.T) (*httptest.Server, func(func(d *genesis.Deployment) error) error) {
	n, _ := testnode.New(t)
	router := mux.NewRouter()
	debug.New(n).Mount(router, "/debug")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, n.Exec
}

func TestDumpState(t *testing.T) {
	ts, exec := newServer(t)
	require.NoError(t, exec(func(d *genesis.Deployment) error {
		_, err := d.Pool.Submit(testnode.Alice, testnode.Tokens(10), base.Address{})
		return err
	}))

	res, err := http.Get(ts.URL + "/debug/state")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", res.Header.Get("Content-Type"))

	body, status := testnode.HTTPGet(t, ts.URL+"/debug/state")
	require.Equal(t, http.StatusOK, status)
	dump := string(body)
	assert.Contains(t, dump, "# summary")
	assert.Contains(t, dump, "# validators")
	assert.Contains(t, dump, "# system queue")
	assert.Contains(t, dump, "10000000000000000000")
}

func TestGetStorage(t *testing.T) {
	ts, exec := newServer(t)
	addr := datagen.RandAddress()
	key := base.BytesToBytes32([]byte("slot"))
	require.NoError(t, exec(func(d *genesis.Deployment) error {
		d.State.SetRawStorage(addr, key, []byte{0xab, 0xcd})
		return nil
	}))

	body, status := testnode.HTTPGet(t, ts.URL+"/debug/storage/"+addr.String()+"/"+key.String())
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "0xabcd", testnode.Decode[map[string]string](t, body)["value"])

	body, status = testnode.HTTPGet(t, ts.URL+"/debug/storage/"+addr.String()+"/"+base.Bytes32{}.String())
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "0x", testnode.Decode[map[string]string](t, body)["value"])

	_, status = testnode.HTTPGet(t, ts.URL+"/debug/storage/"+addr.String()+"/0x1234")
	assert.Equal(t, http.StatusBadRequest, status)
	_, status = testnode.HTTPGet(t, ts.URL+"/debug/storage/nope/"+key.String())
	assert.Equal(t, http.StatusBadRequest, status)
}
