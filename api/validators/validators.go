// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validators

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/node"
	stakepool "github.com/vechain/stakepool/pool"
)

type Validators struct {
	node *node.Node
}

func New(n *node.Node) *Validators {
	return &Validators{n}
}

func (v *Validators) handleGetValidators(w http.ResponseWriter, _ *http.Request) error {
	var list []*Validator
	if err := v.node.View(func(d *genesis.Deployment) error {
		epoch, err := d.Directory.Network().Epoch()
		if err != nil {
			return err
		}
		views, err := d.Pool.Validators()
		if err != nil {
			return err
		}
		list = make([]*Validator, 0, len(views))
		for _, view := range views {
			list = append(list, convertValidator(view, epoch))
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, list)
}

func (v *Validators) handleGetValidator(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.AddressVar(req, "id")
	if err != nil {
		return err
	}

	var validator *Validator
	if err := v.node.View(func(d *genesis.Deployment) error {
		epoch, err := d.Directory.Network().Epoch()
		if err != nil {
			return err
		}
		view, err := d.Pool.Validator(id)
		if err != nil {
			return err
		}
		if view == nil {
			return utils.NotFound(errors.Errorf("validator %v is not registered", id))
		}
		validator = convertValidator(view, epoch)
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, validator)
}

// handleSync is permissionless, it only mirrors what the directory reports.
func (v *Validators) handleSync(w http.ResponseWriter, _ *http.Request) error {
	var res *stakepool.SyncResult
	if err := v.node.Exec(func(d *genesis.Deployment) (err error) {
		res, err = d.Pool.SyncValidators()
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (v *Validators) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /validators").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetValidators))
	sub.Path("/sync").
		Methods(http.MethodPost).
		Name("POST /validators/sync").
		HandlerFunc(utils.WrapHandlerFunc(v.handleSync))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /validators/{id}").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetValidator))
}
