// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"
)

type EpochProgress struct {
	Epoch     *uint64    `json:"epoch"`
	Timestamp *time.Time `json:"timestamp"`
}

type Status struct {
	Healthy       bool           `json:"healthy"`
	EpochProgress *EpochProgress `json:"epochProgress"`
	EpochLoop     bool           `json:"epochLoop"`
}

// Health tracks how the node's epochs move forward.
type Health struct {
	lock       sync.RWMutex
	advancedAt time.Time
	epoch      *uint64
	running    bool
}

func (h *Health) NewEpoch(epoch uint64) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.advancedAt = time.Now()
	h.epoch = &epoch
}

func (h *Health) EpochLoopStatus(running bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.running = running
}

// Status reports healthy while the epoch loop runs and the last epoch began no longer than
// maxTimeBetweenEpochs ago.
func (h *Health) Status(maxTimeBetweenEpochs time.Duration) (*Status, error) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	progress := &EpochProgress{Epoch: h.epoch}
	if h.epoch != nil {
		at := h.advancedAt
		progress.Timestamp = &at
	}

	healthy := h.running &&
		h.epoch != nil &&
		time.Since(h.advancedAt) <= maxTimeBetweenEpochs

	return &Status{
		Healthy:       healthy,
		EpochProgress: progress,
		EpochLoop:     h.running,
	}, nil
}
