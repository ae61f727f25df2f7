// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"sync"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/health"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/logdb"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/state"
)

var logger = log.WithContext("pkg", "node")

// Node owns the pool deployment. Every call goes through Exec or View, one at a time; what Exec
// commits is persisted, logged and published to subscribers.
type Node struct {
	mu     sync.Mutex
	state  *state.State
	deploy *genesis.Deployment
	logDB  *logdb.LogDB
	health health.Health
	epoch  uint64

	feed  event.Feed
	scope event.SubscriptionScope
}

// New creates a node. logDB may be nil, events are then only published.
func New(st *state.State, deploy *genesis.Deployment, logDB *logdb.LogDB) *Node {
	n := &Node{
		state:  st,
		deploy: deploy,
		logDB:  logDB,
	}
	if epoch, err := deploy.Directory.Network().Epoch(); err == nil {
		n.epoch = epoch
		n.health.NewEpoch(epoch)
	}
	n.updateGauges()
	return n
}

func (n *Node) LogDB() *logdb.LogDB {
	return n.logDB
}

func (n *Node) Health() *health.Health {
	return &n.health
}

// Exec runs fn with exclusive access to the deployment. When fn fails every change it made is
// dropped, otherwise the changes are committed and the emitted events recorded.
func (n *Node) Exec(fn func(d *genesis.Deployment) error) error {
	events, err := n.exec(fn)
	if err != nil {
		return err
	}
	if len(events) > 0 {
		n.feed.Send(events)
	}
	return nil
}

func (n *Node) exec(fn func(d *genesis.Deployment) error) ([]*logdb.Event, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	checkpoint := n.state.NewCheckpoint()
	if err := fn(n.deploy); err != nil {
		n.state.RevertTo(checkpoint)
		n.deploy.Pool.DrainEvents()
		return nil, err
	}

	events := convertEvents(n.deploy.Pool.DrainEvents())
	keys, err := n.state.Commit()
	if err != nil {
		logger.Error("failed to commit state", "error", err)
		return nil, errors.Wrap(err, "commit state")
	}
	if n.logDB != nil {
		if err := n.logDB.Insert(events); err != nil {
			logger.Error("failed to write events", "error", err)
			return nil, errors.Wrap(err, "write events")
		}
	}
	metricCommits().Add(1)
	logger.Debug("committed", "keys", keys, "events", len(events))

	if epoch, err := n.deploy.Directory.Network().Epoch(); err == nil && epoch != n.epoch {
		n.epoch = epoch
		n.health.NewEpoch(epoch)
	}
	n.updateGauges()
	return events, nil
}

// View runs fn with exclusive access to the deployment. fn must not change anything.
func (n *Node) View(fn func(d *genesis.Deployment) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return fn(n.deploy)
}

// SubscribeEvents delivers the events of every committed Exec, in commit order.
func (n *Node) SubscribeEvents(ch chan []*logdb.Event) event.Subscription {
	return n.scope.Track(n.feed.Subscribe(ch))
}

// Close ends all subscriptions.
func (n *Node) Close() {
	n.scope.Close()
}

func convertEvents(events []pool.Event) []*logdb.Event {
	converted := make([]*logdb.Event, 0, len(events))
	for _, ev := range events {
		converted = append(converted, &logdb.Event{
			Epoch:     ev.Epoch,
			Kind:      string(ev.Kind),
			Account:   ev.Account,
			Validator: ev.Validator,
			Referral:  ev.Referral,
			Amount:    ev.Amount,
			Shares:    ev.Shares,
			Fee:       ev.Fee,
			TokenID:   ev.TokenID,
			Nonce:     ev.Nonce,
			Detail:    ev.Detail,
		})
	}
	return converted
}
