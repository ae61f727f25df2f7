// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"
)

const ntpServer = "pool.ntp.org"

// houseKeeping runs the periodic node checks until ctx is done.
func houseKeeping(ctx context.Context, epochInterval time.Duration) {
	logger.Debug("enter house keeping")

	clockSyncTicker := time.NewTicker(10 * time.Minute)
	defer func() {
		logger.Debug("leave house keeping")
		clockSyncTicker.Stop()
	}()

	go checkClockOffset(ntpServer, epochInterval/2)
	for {
		select {
		case <-ctx.Done():
			return
		case <-clockSyncTicker.C:
			go checkClockOffset(ntpServer, epochInterval/2)
		}
	}
}

// checkClockOffset warns when the local clock drifts enough to skew epoch timing.
func checkClockOffset(server string, tolerance time.Duration) bool {
	resp, err := ntp.Query(server)
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return false
	}
	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}
	if offset > tolerance {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
		return true
	}
	return false
}
