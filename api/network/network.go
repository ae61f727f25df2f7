// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package network drives the simulated validator directory. It is only mounted in solo mode.
package network

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/node"
	"github.com/vechain/stakepool/pool/validators"
)

const maxBps = 10_000

type Solo struct {
	node *node.Node
}

func New(n *node.Node) *Solo {
	return &Solo{n}
}

// exec runs fn on the node. Directory failures are caused by the request, pool failures keep
// their own status.
func (s *Solo) exec(fn func(d *genesis.Deployment) error) error {
	return s.node.Exec(func(d *genesis.Deployment) error {
		if err := fn(d); err != nil {
			return err
		}
		_, err := d.Pool.SyncValidators()
		return err
	})
}

func (s *Solo) handleGetNetwork(w http.ResponseWriter, _ *http.Request) error {
	var nw Network
	if err := s.node.View(func(d *genesis.Deployment) (err error) {
		if nw.Epoch, err = d.Directory.Network().Epoch(); err != nil {
			return err
		}
		nw.WithdrawalDelay, err = d.Directory.Network().WithdrawalDelay()
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &nw)
}

func (s *Solo) handleAdvance(w http.ResponseWriter, req *http.Request) error {
	var body AdvanceBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Epochs == 0 {
		return utils.BadRequest(errors.New("epochs: must be positive"))
	}
	var nw Network
	if err := s.exec(func(d *genesis.Deployment) (err error) {
		if nw.Epoch, err = d.Directory.Network().Advance(body.Epochs); err != nil {
			return err
		}
		nw.WithdrawalDelay, err = d.Directory.Network().WithdrawalDelay()
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &nw)
}

func (s *Solo) handleTick(w http.ResponseWriter, req *http.Request) error {
	var body TickBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.RewardBps > maxBps {
		return utils.BadRequest(errors.New("rewardBps: exceeds 10000"))
	}
	if err := s.node.Tick(body.RewardBps); err != nil {
		return err
	}
	return s.handleGetNetwork(w, req)
}

func (s *Solo) handleAddValidator(w http.ResponseWriter, req *http.Request) error {
	var body ValidatorBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.ID.IsZero() {
		return utils.BadRequest(errors.New("id: required"))
	}
	if err := s.exec(func(d *genesis.Deployment) error {
		if err := d.Directory.AddValidator(body.ID, body.RewardAddress); err != nil {
			return utils.BadRequest(err)
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &body)
}

// handleSetStatus changes the directory status and notifies the pool, the way a real directory
// calls back into its delegators.
func (s *Solo) handleSetStatus(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.AddressVar(req, "id")
	if err != nil {
		return err
	}
	var body StatusBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	status, err := validators.ParseStatus(body.Status)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "status"))
	}
	if err := s.exec(func(d *genesis.Deployment) error {
		if err := d.Directory.SetStatus(id, status); err != nil {
			return utils.BadRequest(err)
		}
		return d.Pool.OnValidatorStatusChange(id, status)
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &body)
}

func (s *Solo) handleAccrue(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.AddressVar(req, "id")
	if err != nil {
		return err
	}
	var body RewardBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount := utils.BigOf(body.Amount)
	if amount.Sign() <= 0 {
		return utils.BadRequest(errors.New("amount: must be positive"))
	}
	if err := s.exec(func(d *genesis.Deployment) error {
		if err := d.Directory.AccrueReward(id, amount); err != nil {
			return utils.BadRequest(err)
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &AmountResult{Amount: utils.Amount(amount)})
}

func (s *Solo) handleSlash(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.AddressVar(req, "id")
	if err != nil {
		return err
	}
	var body SlashBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Bps == 0 || body.Bps > maxBps {
		return utils.BadRequest(errors.New("bps: must be in (0, 10000]"))
	}
	var slashed *big.Int
	if err := s.exec(func(d *genesis.Deployment) (err error) {
		if slashed, err = d.Directory.Slash(id, body.Bps); err != nil {
			return utils.BadRequest(err)
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &AmountResult{Amount: utils.Amount(slashed)})
}

func (s *Solo) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /network").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetNetwork))
	sub.Path("/advance").
		Methods(http.MethodPost).
		Name("POST /network/advance").
		HandlerFunc(utils.WrapHandlerFunc(s.handleAdvance))
	sub.Path("/tick").
		Methods(http.MethodPost).
		Name("POST /network/tick").
		HandlerFunc(utils.WrapHandlerFunc(s.handleTick))
	sub.Path("/validators").
		Methods(http.MethodPost).
		Name("POST /network/validators").
		HandlerFunc(utils.WrapHandlerFunc(s.handleAddValidator))
	sub.Path("/validators/{id}/status").
		Methods(http.MethodPost).
		Name("POST /network/validators/{id}/status").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSetStatus))
	sub.Path("/validators/{id}/rewards").
		Methods(http.MethodPost).
		Name("POST /network/validators/{id}/rewards").
		HandlerFunc(utils.WrapHandlerFunc(s.handleAccrue))
	sub.Path("/validators/{id}/slash").
		Methods(http.MethodPost).
		Name("POST /network/validators/{id}/slash").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSlash))
}
