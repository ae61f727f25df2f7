// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/base"
)

// Amount converts a value for a response body. nil stays nil.
func Amount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		return nil
	}
	h := math.HexOrDecimal256(*new(big.Int).Set(v))
	return &h
}

// BigOf converts an amount read from a request body, nil reads as zero.
func BigOf(h *math.HexOrDecimal256) *big.Int {
	if h == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(h))
}

// AddressVar parses the named path variable as an address.
func AddressVar(req *http.Request, name string) (base.Address, error) {
	addr, err := base.ParseAddress(mux.Vars(req)[name])
	if err != nil {
		return base.Address{}, BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

// Uint64Var parses the named path variable as an unsigned integer.
func Uint64Var(req *http.Request, name string) (uint64, error) {
	n, err := strconv.ParseUint(mux.Vars(req)[name], 0, 64)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return n, nil
}

// BigQuery parses the named query parameter as a decimal or hex integer.
func BigQuery(req *http.Request, name string) (*big.Int, error) {
	s := req.URL.Query().Get(name)
	if s == "" {
		return nil, BadRequest(errors.Errorf("%s: required", name))
	}
	v, ok := math.ParseBig256(s)
	if !ok {
		return nil, BadRequest(errors.Errorf("%s: invalid integer", name))
	}
	return v, nil
}
