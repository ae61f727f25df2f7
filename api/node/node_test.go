// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/api/doc"
	"github.com/vechain/stakepool/api/node"
	"github.com/vechain/stakepool/test/testnode"
)

func TestNodeInfo(t *testing.T) {
	n, gen := testnode.New(t)
	router := mux.NewRouter()
	node.New(n, gen, "1.2.3-test", true).Mount(router, "/node")
	ts := httptest.NewServer(router)
	defer ts.Close()

	require.NoError(t, n.Tick(0))

	body, status := testnode.HTTPGet(t, ts.URL+"/node/info")
	require.Equal(t, http.StatusOK, status, string(body))
	info := testnode.Decode[node.Status](t, body)
	assert.Equal(t, "1.2.3-test", info.Version)
	assert.Equal(t, doc.Version(), info.APIVersion)
	assert.True(t, info.SoloMode)
	assert.Equal(t, gen.PoolAddress, info.PoolAddress)
	assert.Equal(t, gen.DirectoryAddress, info.DirectoryAddress)
	assert.Equal(t, gen.CertificatesAddress, info.CertificatesAddress)
	assert.Equal(t, uint64(1), info.Epoch)
	assert.False(t, info.StartedAt.IsZero())
}
