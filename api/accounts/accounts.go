// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/node"
	"github.com/vechain/stakepool/pool/params"
)

type Accounts struct {
	node *node.Node
}

func New(n *node.Node) *Accounts {
	return &Accounts{n}
}

func (a *Accounts) getAccount(addr base.Address) (*Account, error) {
	acc := &Account{Roles: []string{}}
	err := a.node.View(func(d *genesis.Deployment) error {
		balance, err := d.State.GetBalance(addr)
		if err != nil {
			return err
		}
		shares, err := d.Pool.SharesOf(addr)
		if err != nil {
			return err
		}
		value, err := d.Pool.ConvertToValue(shares)
		if err != nil {
			return err
		}
		tokens, err := d.Pool.CertificatesOf(addr)
		if err != nil {
			return err
		}
		for _, role := range []params.Role{params.RoleDAO, params.RolePauser} {
			ok, err := d.Pool.HasRole(role, addr)
			if err != nil {
				return err
			}
			if ok {
				acc.Roles = append(acc.Roles, role.String())
			}
		}
		acc.Balance = utils.Amount(balance)
		acc.Shares = utils.Amount(shares)
		acc.Value = utils.Amount(value)
		acc.Certificates = append([]uint64{}, tokens...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	acc, err := a.getAccount(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, acc)
}

func (a *Accounts) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var body SubmitBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}

	var shares *big.Int
	if err := a.node.Exec(func(d *genesis.Deployment) (err error) {
		shares, err = d.Pool.Submit(addr, utils.BigOf(body.Amount), body.Referral)
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &SubmitResult{Shares: utils.Amount(shares)})
}

func (a *Accounts) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var body WithdrawBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}

	var tokenID uint64
	if err := a.node.Exec(func(d *genesis.Deployment) (err error) {
		tokenID, err = d.Pool.RequestWithdraw(addr, utils.BigOf(body.Shares), body.Referral)
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &WithdrawResult{TokenID: tokenID})
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
	sub.Path("/{address}/submit").
		Methods(http.MethodPost).
		Name("POST /accounts/{address}/submit").
		HandlerFunc(utils.WrapHandlerFunc(a.handleSubmit))
	sub.Path("/{address}/withdraw").
		Methods(http.MethodPost).
		Name("POST /accounts/{address}/withdraw").
		HandlerFunc(utils.WrapHandlerFunc(a.handleWithdraw))
}
