// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/node"
)

type Pool struct {
	node *node.Node
}

func New(n *node.Node) *Pool {
	return &Pool{n}
}

func (p *Pool) handleGetSummary(w http.ResponseWriter, _ *http.Request) error {
	var summary *Summary
	if err := p.node.View(func(d *genesis.Deployment) error {
		s, err := d.Pool.Summary()
		if err != nil {
			return err
		}
		summary = convertSummary(s)
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, summary)
}

// handleConvert answers ?value= with the shares it buys and ?shares= with the value they redeem.
func (p *Pool) handleConvert(w http.ResponseWriter, req *http.Request) error {
	query := req.URL.Query()
	if query.Has("value") == query.Has("shares") {
		return utils.BadRequest(errors.New("exactly one of value or shares is required"))
	}

	var conv Conversion
	if query.Has("value") {
		value, err := utils.BigQuery(req, "value")
		if err != nil {
			return err
		}
		var shares *big.Int
		if err := p.node.View(func(d *genesis.Deployment) (err error) {
			shares, err = d.Pool.ConvertToShares(value)
			return
		}); err != nil {
			return err
		}
		conv = Conversion{Value: utils.Amount(value), Shares: utils.Amount(shares)}
	} else {
		shares, err := utils.BigQuery(req, "shares")
		if err != nil {
			return err
		}
		var value *big.Int
		if err := p.node.View(func(d *genesis.Deployment) (err error) {
			value, err = d.Pool.ConvertToValue(shares)
			return
		}); err != nil {
			return err
		}
		conv = Conversion{Value: utils.Amount(value), Shares: utils.Amount(shares)}
	}
	return utils.WriteJSON(w, conv)
}

func (p *Pool) handleDelegate(w http.ResponseWriter, _ *http.Request) error {
	var amount *big.Int
	if err := p.node.Exec(func(d *genesis.Deployment) (err error) {
		amount, err = d.Pool.Delegate()
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &AmountResult{Amount: utils.Amount(amount)})
}

func (p *Pool) handleDistributeRewards(w http.ResponseWriter, _ *http.Request) error {
	var amount *big.Int
	if err := p.node.Exec(func(d *genesis.Deployment) (err error) {
		amount, err = d.Pool.DistributeRewards()
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &AmountResult{Amount: utils.Amount(amount)})
}

func (p *Pool) handleRebalance(w http.ResponseWriter, req *http.Request) error {
	var body CallerBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	var raised int
	if err := p.node.Exec(func(d *genesis.Deployment) (err error) {
		raised, err = d.Pool.RebalanceDelegatedTokens(body.Caller)
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &RebalanceResult{Raised: raised})
}

func (p *Pool) handleGetWithdrawals(w http.ResponseWriter, _ *http.Request) error {
	var requests []*Request
	if err := p.node.View(func(d *genesis.Deployment) error {
		epoch, err := d.Directory.Network().Epoch()
		if err != nil {
			return err
		}
		pending, err := d.Pool.SystemRequests()
		if err != nil {
			return err
		}
		requests = make([]*Request, 0, len(pending))
		for _, r := range pending {
			requests = append(requests, ConvertRequest(r, epoch))
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, requests)
}

func (p *Pool) handleClaimToPool(w http.ResponseWriter, req *http.Request) error {
	index, err := utils.Uint64Var(req, "index")
	if err != nil {
		return err
	}
	var amount *big.Int
	if err := p.node.Exec(func(d *genesis.Deployment) (err error) {
		amount, err = d.Pool.ClaimToPool(int(index))
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &AmountResult{Amount: utils.Amount(amount)})
}

func (p *Pool) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /pool").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetSummary))
	sub.Path("/convert").
		Methods(http.MethodGet).
		Name("GET /pool/convert").
		HandlerFunc(utils.WrapHandlerFunc(p.handleConvert))
	sub.Path("/delegate").
		Methods(http.MethodPost).
		Name("POST /pool/delegate").
		HandlerFunc(utils.WrapHandlerFunc(p.handleDelegate))
	sub.Path("/rewards/distribute").
		Methods(http.MethodPost).
		Name("POST /pool/rewards/distribute").
		HandlerFunc(utils.WrapHandlerFunc(p.handleDistributeRewards))
	sub.Path("/rebalance").
		Methods(http.MethodPost).
		Name("POST /pool/rebalance").
		HandlerFunc(utils.WrapHandlerFunc(p.handleRebalance))
	sub.Path("/withdrawals").
		Methods(http.MethodGet).
		Name("GET /pool/withdrawals").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetWithdrawals))
	sub.Path("/withdrawals/{index}/claim").
		Methods(http.MethodPost).
		Name("POST /pool/withdrawals/{index}/claim").
		HandlerFunc(utils.WrapHandlerFunc(p.handleClaimToPool))
}
