// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package governance

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/node"
	"github.com/vechain/stakepool/pool/params"
)

type Governance struct {
	node *node.Node
}

func New(n *node.Node) *Governance {
	return &Governance{n}
}

func (g *Governance) handleGetSettings(w http.ResponseWriter, _ *http.Request) error {
	var settings *Settings
	if err := g.node.View(func(d *genesis.Deployment) error {
		s, err := d.Pool.Summary()
		if err != nil {
			return err
		}
		settings = &Settings{
			Params:    make(map[string]*math.HexOrDecimal256, len(s.Params)),
			Insurance: s.Insurance,
			Dao:       s.Dao,
			Paused:    s.Paused,
		}
		for name, value := range s.Params {
			settings.Params[name] = utils.Amount(value)
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, settings)
}

// exec decodes the body and runs fn as one node transaction, answering with the settings
// it left behind.
func exec[T any](g *Governance, w http.ResponseWriter, req *http.Request, fn func(d *genesis.Deployment, body *T) error) error {
	var body T
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := g.node.Exec(func(d *genesis.Deployment) error {
		return fn(d, &body)
	}); err != nil {
		return err
	}
	return g.handleGetSettings(w, req)
}

func (g *Governance) handleSetParam(w http.ResponseWriter, req *http.Request) error {
	return exec(g, w, req, func(d *genesis.Deployment, body *ParamBody) error {
		if body.Value == nil {
			return utils.BadRequest(errors.New("value: required"))
		}
		return d.Pool.SetParam(body.Caller, body.Name, utils.BigOf(body.Value))
	})
}

func (g *Governance) handleSetFeeSplit(w http.ResponseWriter, req *http.Request) error {
	return exec(g, w, req, func(d *genesis.Deployment, body *FeeSplitBody) error {
		return d.Pool.SetFeeSplit(body.Caller, body.InsuranceBps, body.DaoBps)
	})
}

func (g *Governance) handleSetInsurance(w http.ResponseWriter, req *http.Request) error {
	return exec(g, w, req, func(d *genesis.Deployment, body *AddressBody) error {
		return d.Pool.SetInsuranceAddress(body.Caller, body.Address)
	})
}

func (g *Governance) handleSetDao(w http.ResponseWriter, req *http.Request) error {
	return exec(g, w, req, func(d *genesis.Deployment, body *AddressBody) error {
		return d.Pool.SetDaoAddress(body.Caller, body.Address)
	})
}

func (g *Governance) handleRole(w http.ResponseWriter, req *http.Request) error {
	role, err := params.ParseRole(mux.Vars(req)["role"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "role"))
	}
	return exec(g, w, req, func(d *genesis.Deployment, body *RoleBody) error {
		if body.Grant {
			return d.Pool.GrantRole(body.Caller, role, body.Account)
		}
		return d.Pool.RevokeRole(body.Caller, role, body.Account)
	})
}

func (g *Governance) handlePause(w http.ResponseWriter, req *http.Request) error {
	return exec(g, w, req, func(d *genesis.Deployment, body *CallerBody) error {
		return d.Pool.Pause(body.Caller)
	})
}

func (g *Governance) handleUnpause(w http.ResponseWriter, req *http.Request) error {
	return exec(g, w, req, func(d *genesis.Deployment, body *CallerBody) error {
		return d.Pool.Unpause(body.Caller)
	})
}

func (g *Governance) handleSetDelegation(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.AddressVar(req, "id")
	if err != nil {
		return err
	}
	return exec(g, w, req, func(d *genesis.Deployment, body *DelegationBody) error {
		return d.Pool.SetDelegationEnabled(body.Caller, id, body.Enabled)
	})
}

func (g *Governance) handleRecover(w http.ResponseWriter, req *http.Request) error {
	return exec(g, w, req, func(d *genesis.Deployment, body *RecoverBody) error {
		shares := make([]*big.Int, len(body.Shares))
		for i, s := range body.Shares {
			if s == nil {
				return utils.BadRequest(errors.Errorf("shares[%d]: null not allowed", i))
			}
			shares[i] = utils.BigOf(s)
		}
		return d.Pool.Recover(body.Caller, body.Accounts, shares, body.CompensateAddress, utils.BigOf(body.CompensateAmount))
	})
}

func (g *Governance) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /governance").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGetSettings))
	sub.Path("/params").
		Methods(http.MethodPost).
		Name("POST /governance/params").
		HandlerFunc(utils.WrapHandlerFunc(g.handleSetParam))
	sub.Path("/fee-split").
		Methods(http.MethodPost).
		Name("POST /governance/fee-split").
		HandlerFunc(utils.WrapHandlerFunc(g.handleSetFeeSplit))
	sub.Path("/insurance").
		Methods(http.MethodPost).
		Name("POST /governance/insurance").
		HandlerFunc(utils.WrapHandlerFunc(g.handleSetInsurance))
	sub.Path("/dao").
		Methods(http.MethodPost).
		Name("POST /governance/dao").
		HandlerFunc(utils.WrapHandlerFunc(g.handleSetDao))
	sub.Path("/roles/{role}").
		Methods(http.MethodPost).
		Name("POST /governance/roles/{role}").
		HandlerFunc(utils.WrapHandlerFunc(g.handleRole))
	sub.Path("/pause").
		Methods(http.MethodPost).
		Name("POST /governance/pause").
		HandlerFunc(utils.WrapHandlerFunc(g.handlePause))
	sub.Path("/unpause").
		Methods(http.MethodPost).
		Name("POST /governance/unpause").
		HandlerFunc(utils.WrapHandlerFunc(g.handleUnpause))
	sub.Path("/validators/{id}/delegation").
		Methods(http.MethodPost).
		Name("POST /governance/validators/{id}/delegation").
		HandlerFunc(utils.WrapHandlerFunc(g.handleSetDelegation))
	sub.Path("/recover").
		Methods(http.MethodPost).
		Name("POST /governance/recover").
		HandlerFunc(utils.WrapHandlerFunc(g.handleRecover))
}
