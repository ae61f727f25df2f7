// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/lvldb"
)

type countingProgress struct {
	total uint64
	done  uint64
}

func (p *countingProgress) Total(n uint64) { p.total = n }
func (p *countingProgress) Add(n uint64)   { p.done += n }

func newStore(t *testing.T) *lvldb.LevelDB {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestExportImport(t *testing.T) {
	src := newStore(t)
	for i := range 5000 {
		require.NoError(t, src.Put(fmt.Appendf(nil, "key-%05d", i), fmt.Appendf(nil, "value-%d", i)))
	}
	id := base.Blake2b([]byte("genesis"))

	var buf bytes.Buffer
	var exported countingProgress
	n, err := Export(context.Background(), src, id, &buf, &exported)
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), n)
	assert.Equal(t, exported.total, exported.done)

	hdr, err := ReadHeader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, id, hdr.GenesisID)
	assert.Equal(t, uint64(5000), hdr.Count)

	dst := newStore(t)
	var imported countingProgress
	n, err = Import(context.Background(), dst, id, bytes.NewReader(buf.Bytes()), &imported)
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), n)
	assert.Equal(t, uint64(5000), imported.done)

	val, err := dst.Get([]byte("key-04321"))
	require.NoError(t, err)
	assert.Equal(t, "value-4321", string(val))

	// a second import is refused
	_, err = Import(context.Background(), dst, id, bytes.NewReader(buf.Bytes()), nil)
	assert.ErrorContains(t, err, "not empty")
}

func TestImportRejects(t *testing.T) {
	src := newStore(t)
	require.NoError(t, src.Put([]byte("k"), []byte("v")))
	id := base.Blake2b([]byte("genesis"))

	var buf bytes.Buffer
	_, err := Export(context.Background(), src, id, &buf, nil)
	require.NoError(t, err)

	_, err = Import(context.Background(), newStore(t), base.Blake2b([]byte("other")), bytes.NewReader(buf.Bytes()), nil)
	assert.ErrorIs(t, err, ErrGenesisMismatch)

	_, err = Import(context.Background(), newStore(t), id, bytes.NewReader([]byte("garbage")), nil)
	assert.Error(t, err)

	truncated := buf.Bytes()[:buf.Len()-4]
	_, err = Import(context.Background(), newStore(t), id, bytes.NewReader(truncated), nil)
	assert.Error(t, err)
}

func TestSnapshotReopensDeployment(t *testing.T) {
	gen := genesis.Dev()
	src := newStore(t)
	_, d, err := gen.Instantiate(src)
	require.NoError(t, err)
	poolAddr := d.Pool.Address()

	var buf bytes.Buffer
	_, err = Export(context.Background(), src, gen.ID(), &buf, nil)
	require.NoError(t, err)

	dst := newStore(t)
	_, err = Import(context.Background(), dst, gen.ID(), &buf, nil)
	require.NoError(t, err)

	_, restored, err := gen.Instantiate(dst)
	require.NoError(t, err)
	assert.Equal(t, poolAddr, restored.Pool.Address())

	validators, err := restored.Directory.IDs()
	require.NoError(t, err)
	assert.Len(t, validators, len(gen.Validators))
}
