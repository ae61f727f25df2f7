// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/test/testnode"
)

func TestAPIServer(t *testing.T) {
	var deadline atomic.Bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Context().Deadline()
		deadline.Store(ok)
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	url, closeFunc, err := StartAPIServer("localhost:0", handler, time.Second)
	require.NoError(t, err)
	defer closeFunc()

	resp, err := http.Post(url, "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, deadline.Load())

	resp, err = http.Post(url, "application/json", bytes.NewReader(make([]byte, MaxRequestBodySize+1)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	req.Header.Set("Upgrade", "websocket")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.False(t, deadline.Load())
}

func TestAPIServerNoTimeout(t *testing.T) {
	var deadline atomic.Bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Context().Deadline()
		deadline.Store(ok)
	})

	url, closeFunc, err := StartAPIServer("localhost:0", handler, 0)
	require.NoError(t, err)
	defer closeFunc()

	resp, err := http.Get(url)
	require.NoError(t, err)
	resp.Body.Close()
	assert.False(t, deadline.Load())
}

func TestStartAPIServerBadAddr(t *testing.T) {
	_, _, err := StartAPIServer("256.0.0.1:bad", http.NotFoundHandler(), 0)
	assert.Error(t, err)
}

func TestAdminServer(t *testing.T) {
	n, _ := testnode.New(t)

	var level slog.LevelVar
	var apiLogs atomic.Bool
	url, closeFunc, err := StartAdminServer("localhost:0", &level, n, &apiLogs, time.Second)
	require.NoError(t, err)
	defer closeFunc()
	assert.True(t, strings.HasSuffix(url, "/admin"))

	body, status := testnode.HTTPGet(t, url+"/loglevel")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "info")

	// no epoch loop is running
	_, status = testnode.HTTPGet(t, url+"/health")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestMetricsServer(t *testing.T) {
	metrics.InitializePrometheusMetrics()
	metrics.Counter("httpserver_test_count").Add(3)

	url, closeFunc, err := StartMetricsServer("localhost:0")
	require.NoError(t, err)
	defer closeFunc()

	body, status := testnode.HTTPGet(t, url)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "stakepool_httpserver_test_count 3")
}
