// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"math/big"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/pool/reverts"
)

// Tick moves the simulated network one epoch forward: validators accrue rewardBps of their stake,
// the pool picks up validators that joined, left or were slashed, harvests rewards and folds
// matured system withdrawals back into the buffer.
// The epoch advance is committed on its own, so a failing pool step never holds the clock back.
func (n *Node) Tick(rewardBps uint64) error {
	var (
		epoch   uint64
		accrued *big.Int
	)
	err := n.Exec(func(d *genesis.Deployment) (err error) {
		if epoch, err = d.Directory.Network().Advance(1); err != nil {
			return err
		}
		accrued, err = d.Directory.AccrueRewards(rewardBps)
		return err
	})
	if err != nil {
		return errors.WithMessage(err, "advance epoch")
	}
	logger.Debug("epoch", "number", epoch, "accrued", accrued)

	var firstErr error
	keep := func(step string, err error) {
		if err == nil {
			return
		}
		logger.Warn("epoch step failed", "step", step, "epoch", epoch, "error", err)
		if firstErr == nil {
			firstErr = errors.WithMessage(err, step)
		}
	}
	keep("sync validators", n.syncValidators())
	keep("distribute rewards", n.harvest())
	keep("claim to pool", n.claimMatured())
	return firstErr
}

func (n *Node) syncValidators() error {
	return n.Exec(func(d *genesis.Deployment) error {
		res, err := d.Pool.SyncValidators()
		if err != nil {
			return err
		}
		if res.Exited > 0 || res.Slashed.Sign() > 0 {
			logger.Info("validators synced", "exited", res.Exited, "slashed", res.Slashed)
		}
		return nil
	})
}

// harvest distributes the claimable rewards. Too little to distribute, or a paused pool, is
// not a failure.
func (n *Node) harvest() error {
	return n.Exec(func(d *genesis.Deployment) error {
		_, err := d.Pool.DistributeRewards()
		if reverts.Is(err, reverts.BelowMinimum) || reverts.Is(err, reverts.Paused) {
			return nil
		}
		return err
	})
}

// claimMatured claims every matured system request, one commit each.
func (n *Node) claimMatured() error {
	for {
		claimed := false
		err := n.Exec(func(d *genesis.Deployment) error {
			epoch, err := d.Directory.Network().Epoch()
			if err != nil {
				return err
			}
			queue, err := d.Pool.SystemRequests()
			if err != nil {
				return err
			}
			for i, req := range queue {
				if !req.IsMatured(epoch) {
					continue
				}
				if _, err := d.Pool.ClaimToPool(i); err != nil {
					return err
				}
				claimed = true
				return nil
			}
			return nil
		})
		if err != nil || !claimed {
			return err
		}
	}
}

// RunEpochs ticks every interval until ctx is done.
func (n *Node) RunEpochs(ctx context.Context, interval time.Duration, rewardBps uint64) {
	logger.Debug("enter epoch loop")
	defer logger.Debug("leave epoch loop")

	n.health.EpochLoopStatus(true)
	defer n.health.EpochLoopStatus(false)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := n.Tick(rewardBps); err != nil {
				logger.Warn("failed to advance epoch", "error", err)
			}
		}
	}
}
