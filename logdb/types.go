// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/vechain/stakepool/base"
)

// Event is a pool event as stored in the db.
type Event struct {
	Epoch     uint64
	Index     uint32 // position inside the epoch, assigned on insert
	Kind      string
	Account   base.Address
	Validator base.Address
	Referral  base.Address
	Amount    *big.Int
	Shares    *big.Int
	Fee       *big.Int
	TokenID   uint64
	Nonce     uint64
	Detail    string
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range bounds the epochs of a query, both ends included.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventCriteria matches events on every field set. Criteria of a filter are OR'ed.
type EventCriteria struct {
	Kind      string
	Account   *base.Address
	Validator *base.Address
	TokenID   *uint64
}

// EventFilter filter
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
