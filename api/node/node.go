// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/api/doc"
	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/node"
)

// Info describes the running node.
type Info struct {
	Version             string       `json:"version"`
	APIVersion          string       `json:"apiVersion"`
	SoloMode            bool         `json:"soloMode"`
	PoolAddress         base.Address `json:"poolAddress"`
	DirectoryAddress    base.Address `json:"directoryAddress"`
	CertificatesAddress base.Address `json:"certificatesAddress"`
}

type Status struct {
	Info
	Epoch     uint64    `json:"epoch"`
	StartedAt time.Time `json:"startedAt"`
}

type Node struct {
	node      *node.Node
	info      Info
	startedAt time.Time
}

func New(n *node.Node, gen *genesis.Genesis, version string, soloMode bool) *Node {
	return &Node{
		node: n,
		info: Info{
			Version:             version,
			APIVersion:          doc.Version(),
			SoloMode:            soloMode,
			PoolAddress:         gen.PoolAddress,
			DirectoryAddress:    gen.DirectoryAddress,
			CertificatesAddress: gen.CertificatesAddress,
		},
		startedAt: time.Now().UTC(),
	}
}

func (n *Node) handleNodeInfo(w http.ResponseWriter, _ *http.Request) error {
	status := Status{Info: n.info, StartedAt: n.startedAt}
	if err := n.node.View(func(d *genesis.Deployment) (err error) {
		status.Epoch, err = d.Directory.Network().Epoch()
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, status)
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/info").
		Methods(http.MethodGet).
		Name("GET /node/info").
		HandlerFunc(utils.WrapHandlerFunc(n.handleNodeInfo))
}
