// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/pool/exchange"
	"github.com/vechain/stakepool/pool/params"
	"github.com/vechain/stakepool/pool/reverts"
	"github.com/vechain/stakepool/pool/validators"
	"github.com/vechain/stakepool/pool/withdrawals"
)

//
// Getters - no state change
//

// TotalPooled is the value backing the shares: the buffer, the stake with validators and the
// system requests on their way back to the buffer. Reserved funds and the requests of certificates
// already belong to their holders.
func (p *Pool) TotalPooled() (*big.Int, error) {
	buffered, err := p.ledger.Buffered()
	if err != nil {
		return nil, err
	}
	delegated, err := p.validators.TotalStake()
	if err != nil {
		return nil, err
	}
	pending, err := p.withdrawals.SystemTotal()
	if err != nil {
		return nil, err
	}
	return buffered.Add(buffered, delegated).Add(buffered, pending), nil
}

func (p *Pool) totals() (totalShares, totalPooled *big.Int, err error) {
	if totalShares, err = p.ledger.TotalShares(); err != nil {
		return nil, nil, err
	}
	if totalPooled, err = p.TotalPooled(); err != nil {
		return nil, nil, err
	}
	return totalShares, totalPooled, nil
}

// ConvertToShares returns the shares value would mint now.
func (p *Pool) ConvertToShares(value *big.Int) (*big.Int, error) {
	totalShares, totalPooled, err := p.totals()
	if err != nil {
		return nil, err
	}
	return exchange.SharesFor(value, totalShares, totalPooled)
}

// ConvertToValue returns what shares would redeem for now.
func (p *Pool) ConvertToValue(shares *big.Int) (*big.Int, error) {
	totalShares, totalPooled, err := p.totals()
	if err != nil {
		return nil, err
	}
	return exchange.ValueFor(shares, totalShares, totalPooled)
}

func (p *Pool) SharesOf(holder base.Address) (*big.Int, error) {
	return p.ledger.SharesOf(holder)
}

func (p *Pool) Buffered() (*big.Int, error) {
	return p.ledger.Buffered()
}

func (p *Pool) Reserved() (*big.Int, error) {
	return p.ledger.Reserved()
}

func (p *Pool) TotalShares() (*big.Int, error) {
	return p.ledger.TotalShares()
}

func (p *Pool) Paused() (bool, error) {
	return p.params.Paused()
}

func (p *Pool) HasRole(role params.Role, account base.Address) (bool, error) {
	return p.params.HasRole(role, account)
}

// CertificateRequests lists the requests of a certificate in creation order.
func (p *Pool) CertificateRequests(tokenID uint64) ([]*withdrawals.Request, error) {
	cert, err := p.withdrawals.Certificate(tokenID)
	if err != nil {
		return nil, err
	}
	if cert == nil {
		return nil, reverts.Newf(reverts.InvalidIndex, "certificate %d does not exist", tokenID)
	}
	requests := make([]*withdrawals.Request, 0, len(cert.Requests))
	for _, key := range cert.Requests {
		req, err := p.withdrawals.Get(key)
		if err != nil {
			return nil, err
		}
		if req != nil {
			requests = append(requests, req)
		}
	}
	return requests, nil
}

// CertificateValue sums the requests of a certificate.
func (p *Pool) CertificateValue(tokenID uint64) (*big.Int, error) {
	requests, err := p.CertificateRequests(tokenID)
	if err != nil {
		return nil, err
	}
	total := new(big.Int)
	for _, req := range requests {
		total.Add(total, req.Amount)
	}
	return total, nil
}

// Certificate returns the raw certificate record, nil if unknown.
func (p *Pool) Certificate(tokenID uint64) (*withdrawals.Certificate, error) {
	return p.withdrawals.Certificate(tokenID)
}

// CertificatesOf lists the certificates held by owner.
func (p *Pool) CertificatesOf(owner base.Address) ([]uint64, error) {
	return p.certificates.OwnedTokens(owner)
}

// SystemRequests lists the requests raised by rebalances and forced exits, in queue order.
func (p *Pool) SystemRequests() ([]*withdrawals.Request, error) {
	return p.withdrawals.SystemRequests()
}

// Summary is a snapshot of the pool accounting.
type Summary struct {
	Epoch       uint64              `json:"epoch"`
	Buffered    *big.Int            `json:"buffered"`
	Reserved    *big.Int            `json:"reserved"`
	Delegated   *big.Int            `json:"delegated"`
	Pending     *big.Int            `json:"pending"`
	TotalPooled *big.Int            `json:"totalPooled"`
	TotalShares *big.Int            `json:"totalShares"`
	Custody     *big.Int            `json:"custody"`
	Paused      bool                `json:"paused"`
	Insurance   base.Address        `json:"insurance"`
	Dao         base.Address        `json:"dao"`
	Params      map[string]*big.Int `json:"params"`
}

func (p *Pool) Summary() (*Summary, error) {
	var (
		s   = &Summary{}
		err error
	)
	if s.Epoch, err = p.epoch(); err != nil {
		return nil, err
	}
	if s.Buffered, err = p.ledger.Buffered(); err != nil {
		return nil, err
	}
	if s.Reserved, err = p.ledger.Reserved(); err != nil {
		return nil, err
	}
	if s.Delegated, err = p.validators.TotalStake(); err != nil {
		return nil, err
	}
	if s.Pending, err = p.withdrawals.SystemTotal(); err != nil {
		return nil, err
	}
	if s.TotalShares, err = p.ledger.TotalShares(); err != nil {
		return nil, err
	}
	if s.Custody, err = p.state.GetBalance(p.address); err != nil {
		return nil, err
	}
	if s.Paused, err = p.params.Paused(); err != nil {
		return nil, err
	}
	if s.Insurance, err = p.params.InsuranceAddress(); err != nil {
		return nil, err
	}
	if s.Dao, err = p.params.DaoAddress(); err != nil {
		return nil, err
	}
	if s.Params, err = p.params.Snapshot(); err != nil {
		return nil, err
	}
	s.TotalPooled = new(big.Int).Add(s.Buffered, s.Delegated)
	s.TotalPooled.Add(s.TotalPooled, s.Pending)
	return s, nil
}

// ValidatorView is a registered validator as seen by the pool and by its stake handle.
type ValidatorView struct {
	ID                 base.Address           `json:"id"`
	Index              uint64                 `json:"index"`
	Status             string                 `json:"status"`
	Stake              *big.Int               `json:"stake"`
	HandleStake        *big.Int               `json:"handleStake"`
	ClaimableReward    *big.Int               `json:"claimableReward"`
	Nonce              uint64                 `json:"nonce"`
	Exited             bool                   `json:"exited"`
	DelegationDisabled bool                   `json:"delegationDisabled"`
	Pending            []*withdrawals.Request `json:"pending"`
}

// Validators reports every registered validator with the handle's view of its stake next to the
// pool's, so the two can be reconciled.
func (p *Pool) Validators() ([]*ValidatorView, error) {
	entries, err := p.validators.All()
	if err != nil {
		return nil, err
	}
	views := make([]*ValidatorView, 0, len(entries))
	for _, e := range entries {
		view, err := p.validatorView(e)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Validator returns one registered validator, nil if unknown.
func (p *Pool) Validator(id base.Address) (*ValidatorView, error) {
	rec, err := p.validators.Get(id)
	if err != nil || rec == nil {
		return nil, err
	}
	return p.validatorView(validators.Entry{ID: id, Record: rec})
}

func (p *Pool) validatorView(e validators.Entry) (*ValidatorView, error) {
	view := &ValidatorView{
		ID:                 e.ID,
		Index:              e.Index,
		Status:             e.Status.String(),
		Stake:              e.Stake,
		Exited:             e.Exited,
		DelegationDisabled: e.DelegationDisabled,
	}
	handle, err := p.directory.StakeHandleOf(e.ID)
	if err != nil {
		return nil, err
	}
	if view.HandleStake, err = handle.CurrentStake(); err != nil {
		return nil, err
	}
	if view.ClaimableReward, err = handle.ClaimableReward(); err != nil {
		return nil, err
	}
	if view.Nonce, err = p.withdrawals.Nonce(e.ID); err != nil {
		return nil, err
	}
	if view.Pending, err = p.withdrawals.Pending(e.ID); err != nil {
		return nil, err
	}
	return view, nil
}
