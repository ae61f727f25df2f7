// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/logdb"
)

type FilteredEvent struct {
	Epoch     uint64                `json:"epoch"`
	Index     uint32                `json:"index"`
	Kind      string                `json:"kind"`
	Account   *base.Address         `json:"account,omitempty"`
	Validator *base.Address         `json:"validator,omitempty"`
	Referral  *base.Address         `json:"referral,omitempty"`
	Amount    *math.HexOrDecimal256 `json:"amount,omitempty"`
	Shares    *math.HexOrDecimal256 `json:"shares,omitempty"`
	Fee       *math.HexOrDecimal256 `json:"fee,omitempty"`
	TokenID   uint64                `json:"tokenId,omitempty"`
	Nonce     uint64                `json:"nonce,omitempty"`
	Detail    string                `json:"detail,omitempty"`
}

func optionalAddress(addr base.Address) *base.Address {
	if addr.IsZero() {
		return nil
	}
	return &addr
}

// ConvertEvent is shared with the subscriptions endpoint.
func ConvertEvent(ev *logdb.Event) *FilteredEvent {
	return &FilteredEvent{
		Epoch:     ev.Epoch,
		Index:     ev.Index,
		Kind:      ev.Kind,
		Account:   optionalAddress(ev.Account),
		Validator: optionalAddress(ev.Validator),
		Referral:  optionalAddress(ev.Referral),
		Amount:    utils.Amount(ev.Amount),
		Shares:    utils.Amount(ev.Shares),
		Fee:       utils.Amount(ev.Fee),
		TokenID:   ev.TokenID,
		Nonce:     ev.Nonce,
		Detail:    ev.Detail,
	}
}

type EventCriteria struct {
	Kind      string        `json:"kind"`
	Account   *base.Address `json:"account"`
	Validator *base.Address `json:"validator"`
	TokenID   *uint64       `json:"tokenId"`
}

type Range struct {
	From *uint64 `json:"from"`
	To   *uint64 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *Range           `json:"range"`
	Options     *Options         `json:"options"`
	Order       logdb.Order      `json:"order"`
}

func convertEventFilter(f *EventFilter) *logdb.EventFilter {
	filter := &logdb.EventFilter{Order: f.Order}
	for _, c := range f.CriteriaSet {
		filter.CriteriaSet = append(filter.CriteriaSet, &logdb.EventCriteria{
			Kind:      c.Kind,
			Account:   c.Account,
			Validator: c.Validator,
			TokenID:   c.TokenID,
		})
	}
	if f.Range != nil {
		r := &logdb.Range{From: 0, To: ^uint64(0)}
		if f.Range.From != nil {
			r.From = *f.Range.From
		}
		if f.Range.To != nil {
			r.To = *f.Range.To
		}
		filter.Range = r
	}
	if f.Options != nil {
		filter.Options = &logdb.Options{Offset: f.Options.Offset, Limit: f.Options.Limit}
	}
	return filter
}
