// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/api/middleware"
	"github.com/vechain/stakepool/test/testnode"
)

func newServer(t *testing.T, opts Options) *httptest.Server {
	n, gen := testnode.New(t)
	handler, closeSubs := New(n, gen, opts)
	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		ts.Close()
		closeSubs()
	})
	return ts
}

func TestRoutes(t *testing.T) {
	ts := newServer(t, Options{AllowedOrigins: "*", LogsLimit: 10})

	for _, path := range []string{"/pool", "/validators", "/governance", "/pool/withdrawals", "/node/info", "/debug/state", "/doc/stakepool.yaml"} {
		_, status := testnode.HTTPGet(t, ts.URL+path)
		assert.Equal(t, http.StatusOK, status, path)
	}
	body, status := testnode.HTTPPost(t, ts.URL+"/logs/event", map[string]any{})
	assert.Equal(t, http.StatusOK, status, string(body))

	// network control is a solo feature
	_, status = testnode.HTTPGet(t, ts.URL+"/network")
	assert.Equal(t, http.StatusNotFound, status)
	// pprof is off by default
	_, status = testnode.HTTPGet(t, ts.URL+"/debug/pprof/")
	assert.Equal(t, http.StatusNotFound, status)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	res, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusTemporaryRedirect, res.StatusCode)
	assert.Equal(t, "/doc/stakepool.yaml", res.Header.Get("Location"))
}

func TestSoloRoutes(t *testing.T) {
	ts := newServer(t, Options{AllowedOrigins: "*", SoloMode: true, PprofOn: true, SkipLogs: true})

	_, status := testnode.HTTPGet(t, ts.URL+"/network")
	assert.Equal(t, http.StatusOK, status)
	_, status = testnode.HTTPGet(t, ts.URL+"/debug/pprof/")
	assert.Equal(t, http.StatusOK, status)
	_, status = testnode.HTTPPost(t, ts.URL+"/logs/event", map[string]any{})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCORS(t *testing.T) {
	ts := newServer(t, Options{AllowedOrigins: "https://app.example, https://Other.example"})

	get := func(origin string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/pool", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", origin)
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		res.Body.Close()
		return res
	}

	assert.Equal(t, "https://app.example", get("https://app.example").Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "https://other.example", get("https://other.example").Header.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, get("https://evil.example").Header.Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger(t *testing.T) {
	var enabled atomic.Bool
	ts := newServer(t, Options{AllowedOrigins: "*", EnableReqLogger: &enabled})

	res, err := http.Get(ts.URL + "/pool")
	require.NoError(t, err)
	res.Body.Close()
	assert.Empty(t, res.Header.Get(middleware.RequestIDHeader))

	enabled.Store(true)
	res, err = http.Get(ts.URL + "/pool")
	require.NoError(t, err)
	res.Body.Close()
	assert.NotEmpty(t, res.Header.Get(middleware.RequestIDHeader))
}
