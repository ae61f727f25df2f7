// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package certificates

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/pool"
	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/node"
)

type Certificates struct {
	node *node.Node
}

func New(n *node.Node) *Certificates {
	return &Certificates{n}
}

func (c *Certificates) handleGetCertificate(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.Uint64Var(req, "id")
	if err != nil {
		return err
	}

	var cert *Certificate
	if err := c.node.View(func(d *genesis.Deployment) error {
		owner, ok, err := d.Certificates.OwnerOf(id)
		if err != nil {
			return err
		}
		if !ok {
			return utils.NotFound(errors.Errorf("certificate %d does not exist", id))
		}
		record, err := d.Pool.Certificate(id)
		if err != nil {
			return err
		}
		requests, err := d.Pool.CertificateRequests(id)
		if err != nil {
			return err
		}
		epoch, err := d.Directory.Network().Epoch()
		if err != nil {
			return err
		}

		cert = &Certificate{
			ID:        id,
			Owner:     owner,
			Claimable: true,
			Requests:  make([]*pool.Request, 0, len(requests)),
		}
		if record != nil {
			cert.Value = utils.Amount(record.Value)
			cert.Shares = utils.Amount(record.Shares)
			cert.RequestEpoch = record.RequestEpoch
		}
		for _, r := range requests {
			converted := pool.ConvertRequest(r, epoch)
			cert.Claimable = cert.Claimable && converted.Matured
			cert.Requests = append(cert.Requests, converted)
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, cert)
}

func (c *Certificates) handleClaim(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.Uint64Var(req, "id")
	if err != nil {
		return err
	}
	var body ClaimBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}

	var amount *big.Int
	if err := c.node.Exec(func(d *genesis.Deployment) (err error) {
		amount, err = d.Pool.ClaimTokens(body.Caller, id)
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &ClaimResult{Amount: utils.Amount(amount)})
}

func (c *Certificates) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /certificates/{id}").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGetCertificate))
	sub.Path("/{id}/claim").
		Methods(http.MethodPost).
		Name("POST /certificates/{id}/claim").
		HandlerFunc(utils.WrapHandlerFunc(c.handleClaim))
}
