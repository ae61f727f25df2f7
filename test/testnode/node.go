// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testnode builds in-memory nodes over the solo genesis for tests.
package testnode

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/logdb"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/node"
	"github.com/vechain/stakepool/state"
)

var (
	// Admin holds every role of the solo genesis.
	Admin = genesis.DevAccounts[0]
	// Alice and Bob are funded accounts without roles.
	Alice = genesis.DevAccounts[1]
	Bob   = genesis.DevAccounts[2]
)

// New builds a node over the solo genesis. Everything is released when the test ends.
func New(t testing.TB) (*node.Node, *genesis.Genesis) {
	gen := genesis.Dev()

	db, err := lvldb.NewMem()
	require.NoError(t, err)
	logDB, err := logdb.NewMem()
	require.NoError(t, err)

	st := state.New(db)
	deploy, err := gen.Build(st)
	require.NoError(t, err)
	_, err = st.Commit()
	require.NoError(t, err)

	n := node.New(st, deploy, logDB)
	t.Cleanup(func() {
		n.Close()
		logDB.Close()
		db.Close()
	})
	return n, gen
}

// Stake submits and delegates amount tokens from account.
func Stake(t testing.TB, n *node.Node, account base.Address, tokens uint64) {
	require.NoError(t, n.Exec(func(d *genesis.Deployment) error {
		if _, err := d.Pool.Submit(account, base.ToWei(tokens), base.Address{}); err != nil {
			return err
		}
		_, err := d.Pool.Delegate()
		return err
	}))
}

// HTTPGet fetches url and returns the body with the status code.
func HTTPGet(t testing.TB, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

// HTTPPost posts obj as json to url and returns the body with the status code.
func HTTPPost(t testing.TB, url string, obj any) ([]byte, int) {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

// Decode unmarshals a response body, failing the test on error.
func Decode[T any](t testing.TB, body []byte) T {
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

// Tokens converts whole tokens for comparisons against response amounts.
func Tokens(n uint64) *big.Int {
	return base.ToWei(n)
}
