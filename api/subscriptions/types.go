// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/events"
	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/logdb"
)

// EventMessage is one event pushed to a subscriber.
type EventMessage = events.FilteredEvent

// EventFilter selects the events a subscriber receives. Unset fields match everything.
type EventFilter struct {
	Kind      string
	Account   *base.Address
	Validator *base.Address
	TokenID   *uint64
}

func parseAddress(query url.Values, name string) (*base.Address, error) {
	s := query.Get(name)
	if s == "" {
		return nil, nil
	}
	addr, err := base.ParseAddress(s)
	if err != nil {
		return nil, errors.WithMessage(err, name)
	}
	return &addr, nil
}

func parseEventFilter(query url.Values) (*EventFilter, error) {
	filter := &EventFilter{Kind: query.Get("kind")}

	var err error
	if filter.Account, err = parseAddress(query, "account"); err != nil {
		return nil, err
	}
	if filter.Validator, err = parseAddress(query, "validator"); err != nil {
		return nil, err
	}
	if s := query.Get("tokenId"); s != "" {
		id, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return nil, errors.WithMessage(err, "tokenId")
		}
		filter.TokenID = &id
	}
	return filter, nil
}

func (f *EventFilter) match(ev *logdb.Event) bool {
	if f.Kind != "" && f.Kind != ev.Kind {
		return false
	}
	if f.Account != nil && *f.Account != ev.Account {
		return false
	}
	if f.Validator != nil && *f.Validator != ev.Validator {
		return false
	}
	if f.TokenID != nil && *f.TokenID != ev.TokenID {
		return false
	}
	return true
}
