// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakepool/base"
)

type EventKind string

const (
	EventSubmitted           EventKind = "Submitted"
	EventDelegated           EventKind = "Delegated"
	EventWithdrawRequested   EventKind = "WithdrawRequested"
	EventRequestCreated      EventKind = "RequestCreated"
	EventTokensClaimed       EventKind = "TokensClaimed"
	EventClaimedToPool       EventKind = "ClaimedToPool"
	EventRewardsDistributed  EventKind = "RewardsDistributed"
	EventFeePaid             EventKind = "FeePaid"
	EventValidatorRegistered EventKind = "ValidatorRegistered"
	EventValidatorExited     EventKind = "ValidatorExited"
	EventStakeSlashed        EventKind = "StakeSlashed"
	EventStatusChanged       EventKind = "StatusChanged"
	EventParamChanged        EventKind = "ParamChanged"
	EventRoleChanged         EventKind = "RoleChanged"
	EventPaused              EventKind = "Paused"
	EventUnpaused            EventKind = "Unpaused"
	EventRecovered           EventKind = "Recovered"
)

// Event records one effect of a pool operation. Fields not relevant to the kind are left zero.
type Event struct {
	Kind      EventKind    `json:"kind"`
	Epoch     uint64       `json:"epoch"`
	Account   base.Address `json:"account"`
	Validator base.Address `json:"validator"`
	Amount    *big.Int     `json:"amount,omitempty"`
	Shares    *big.Int     `json:"shares,omitempty"`
	Fee       *big.Int     `json:"fee,omitempty"`
	TokenID   uint64       `json:"tokenId,omitempty"`
	Nonce     uint64       `json:"nonce,omitempty"`
	Referral  base.Address `json:"referral"`
	Detail    string       `json:"detail,omitempty"`
}

func (p *Pool) emit(ev Event) error {
	epoch, err := p.epoch()
	if err != nil {
		return err
	}
	ev.Epoch = epoch
	p.events = append(p.events, ev)
	return nil
}

// DrainEvents returns the events emitted by committed operations and forgets them.
func (p *Pool) DrainEvents() []Event {
	events := p.events
	p.events = nil
	return events
}
