// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package debug

import (
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/node"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

type Debug struct {
	node *node.Node
}

func New(n *node.Node) *Debug {
	return &Debug{n}
}

// handleDumpState writes a human readable dump of the pool accounting, its validators and the
// system queue.
func (d *Debug) handleDumpState(w http.ResponseWriter, _ *http.Request) error {
	var sb strings.Builder
	if err := d.node.View(func(dep *genesis.Deployment) error {
		summary, err := dep.Pool.Summary()
		if err != nil {
			return err
		}
		views, err := dep.Pool.Validators()
		if err != nil {
			return err
		}
		system, err := dep.Pool.SystemRequests()
		if err != nil {
			return err
		}
		sb.WriteString("# summary\n")
		dumper.Fdump(&sb, summary)
		sb.WriteString("# validators\n")
		dumper.Fdump(&sb, views)
		sb.WriteString("# system queue\n")
		dumper.Fdump(&sb, system)
		return nil
	}); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := w.Write([]byte(sb.String()))
	return err
}

func parseBytes32(s string) (base.Bytes32, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(s) != 64 {
		return base.Bytes32{}, errors.New("invalid length")
	}
	var b base.Bytes32
	if _, err := hex.Decode(b[:], []byte(s)); err != nil {
		return base.Bytes32{}, err
	}
	return b, nil
}

// handleGetStorage returns the raw encoded value under one storage key.
func (d *Debug) handleGetStorage(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	key, err := parseBytes32(mux.Vars(req)["key"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "key"))
	}
	var raw []byte
	if err := d.node.View(func(dep *genesis.Deployment) (err error) {
		raw, err = dep.State.GetRawStorage(addr, key)
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"value": hexutil.Encode(raw)})
}

func (d *Debug) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/state").
		Methods(http.MethodGet).
		Name("GET /debug/state").
		HandlerFunc(utils.WrapHandlerFunc(d.handleDumpState))
	sub.Path("/storage/{address}/{key}").
		Methods(http.MethodGet).
		Name("GET /debug/storage/{address}/{key}").
		HandlerFunc(utils.WrapHandlerFunc(d.handleGetStorage))
}
