// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/state"
)

var (
	metaBucket = kv.Bucket("m")
	idKey      = []byte("genesis-id")
)

// ID identifies the configuration. Two genesis describing the same deployment share the ID,
// whichever format they were read from.
func (g *Genesis) ID() base.Bytes32 {
	data, err := json.Marshal(g)
	if err != nil {
		panic(err)
	}
	return base.Blake2b(data)
}

// Instantiate opens the deployment kept in store, building and committing the genesis state on
// first use. It refuses a store built from another genesis.
func (g *Genesis) Instantiate(store kv.Store) (*state.State, *Deployment, error) {
	meta := metaBucket.NewStore(store)
	id := g.ID()

	stored, err := meta.Get(idKey)
	if err != nil && !meta.IsNotFound(err) {
		return nil, nil, errors.Wrap(err, "read genesis id")
	}
	st := state.New(store)
	if len(stored) > 0 {
		if !bytes.Equal(stored, id.Bytes()) {
			return nil, nil, errors.Errorf("store was built from genesis %v, not %v", base.BytesToBytes32(stored), id)
		}
		return st, g.Open(st), nil
	}

	d, err := g.Build(st)
	if err != nil {
		return nil, nil, err
	}
	if _, err := st.Commit(); err != nil {
		return nil, nil, errors.Wrap(err, "commit genesis state")
	}
	if err := meta.Put(idKey, id.Bytes()); err != nil {
		return nil, nil, errors.Wrap(err, "write genesis id")
	}
	return st, d, nil
}
