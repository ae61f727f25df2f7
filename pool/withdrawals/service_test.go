// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package withdrawals

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/storage"
)

var validator = base.BytesToAddress([]byte("validator"))

func newService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(storage.NewContext(base.BytesToAddress([]byte("pool")), state.New(db)))
}

func TestCreateAndRemove(t *testing.T) {
	svc := newService(t)

	first, err := svc.Create(validator, big.NewInt(10), 7, 3, 2)
	require.NoError(t, err)
	second, err := svc.Create(validator, big.NewInt(20), 8, 4, 2)
	require.NoError(t, err)
	buffer, err := svc.Create(BufferID, big.NewInt(5), 0, 4, 2)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first.Nonce)
	assert.Equal(t, uint64(2), second.Nonce)
	assert.Equal(t, uint64(1), buffer.Nonce)
	assert.True(t, buffer.IsBuffer())
	assert.False(t, first.IsBuffer())

	assert.Equal(t, uint64(5), first.MaturesAt())
	assert.False(t, first.IsMatured(4))
	assert.True(t, first.IsMatured(5))

	pending, err := svc.Pending(validator)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first, pending[0])

	require.NoError(t, svc.Remove(first.Key()))
	assert.Error(t, svc.Remove(first.Key()))

	got, err := svc.Get(first.Key())
	require.NoError(t, err)
	assert.Nil(t, got)

	pending, err = svc.Pending(validator)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, uint64(2), pending[0].Nonce)

	// nonces never go back
	third, err := svc.Create(validator, big.NewInt(1), 9, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), third.Nonce)
	nonce, err := svc.Nonce(validator)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), nonce)
}

func TestSystemQueue(t *testing.T) {
	svc := newService(t)
	for i := range 3 {
		req, err := svc.Create(validator, big.NewInt(int64(10*(i+1))), 0, 1, 1)
		require.NoError(t, err)
		require.NoError(t, svc.PushSystem(req.Key()))
	}

	total, err := svc.SystemTotal()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(60), total)

	require.NoError(t, svc.RemoveSystem(1))
	assert.Error(t, svc.RemoveSystem(2))

	requests, err := svc.SystemRequests()
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, uint64(1), requests[0].Nonce)
	assert.Equal(t, uint64(3), requests[1].Nonce)
}

func TestCertificates(t *testing.T) {
	svc := newService(t)

	cert := &Certificate{
		Value:        big.NewInt(30),
		Shares:       big.NewInt(25),
		RequestEpoch: 2,
		Requests:     []Key{{BufferID, 1}, {validator, 1}},
	}
	require.NoError(t, svc.SetCertificate(4, cert))

	got, err := svc.Certificate(4)
	require.NoError(t, err)
	assert.Equal(t, cert, got)

	svc.DeleteCertificate(4)
	got, err = svc.Certificate(4)
	require.NoError(t, err)
	assert.Nil(t, got)
}
