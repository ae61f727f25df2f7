// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/base"
	stakepool "github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/pool/withdrawals"
)

type Summary struct {
	Epoch       uint64                           `json:"epoch"`
	Buffered    *math.HexOrDecimal256            `json:"buffered"`
	Reserved    *math.HexOrDecimal256            `json:"reserved"`
	Delegated   *math.HexOrDecimal256            `json:"delegated"`
	Pending     *math.HexOrDecimal256            `json:"pending"`
	TotalPooled *math.HexOrDecimal256            `json:"totalPooled"`
	TotalShares *math.HexOrDecimal256            `json:"totalShares"`
	Custody     *math.HexOrDecimal256            `json:"custody"`
	Paused      bool                             `json:"paused"`
	Insurance   base.Address                     `json:"insurance"`
	Dao         base.Address                     `json:"dao"`
	Params      map[string]*math.HexOrDecimal256 `json:"params"`
}

func convertSummary(s *stakepool.Summary) *Summary {
	params := make(map[string]*math.HexOrDecimal256, len(s.Params))
	for name, value := range s.Params {
		params[name] = utils.Amount(value)
	}
	return &Summary{
		Epoch:       s.Epoch,
		Buffered:    utils.Amount(s.Buffered),
		Reserved:    utils.Amount(s.Reserved),
		Delegated:   utils.Amount(s.Delegated),
		Pending:     utils.Amount(s.Pending),
		TotalPooled: utils.Amount(s.TotalPooled),
		TotalShares: utils.Amount(s.TotalShares),
		Custody:     utils.Amount(s.Custody),
		Paused:      s.Paused,
		Insurance:   s.Insurance,
		Dao:         s.Dao,
		Params:      params,
	}
}

// Request is a withdrawal request against a validator, or against the buffer when the validator
// is the zero address.
type Request struct {
	Validator    base.Address          `json:"validator"`
	Nonce        uint64                `json:"nonce"`
	Amount       *math.HexOrDecimal256 `json:"amount"`
	RequestEpoch uint64                `json:"requestEpoch"`
	MaturesAt    uint64                `json:"maturesAt"`
	Matured      bool                  `json:"matured"`
}

// ConvertRequest is shared with the certificate endpoints.
func ConvertRequest(r *withdrawals.Request, epoch uint64) *Request {
	return &Request{
		Validator:    r.Validator,
		Nonce:        r.Nonce,
		Amount:       utils.Amount(r.Amount),
		RequestEpoch: r.RequestEpoch,
		MaturesAt:    r.MaturesAt(),
		Matured:      r.IsMatured(epoch),
	}
}

type Conversion struct {
	Value  *math.HexOrDecimal256 `json:"value"`
	Shares *math.HexOrDecimal256 `json:"shares"`
}

type CallerBody struct {
	Caller base.Address `json:"caller"`
}

type AmountResult struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type RebalanceResult struct {
	Raised int `json:"raised"`
}
