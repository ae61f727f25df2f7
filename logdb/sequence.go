// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import "github.com/pkg/errors"

// sequence orders events by epoch, then by their index inside the epoch.
type sequence int64

const (
	epochBits = 32
	indexBits = 28

	epochMask = 1<<epochBits - 1
	indexMask = 1<<indexBits - 1
)

func newSequence(epoch uint64, index uint32) (sequence, error) {
	if epoch > epochMask {
		return 0, errors.New("epoch out of range")
	}
	if index > indexMask {
		return 0, errors.New("index out of range")
	}
	return (sequence(epoch) << indexBits) | sequence(index), nil
}

func (s sequence) Epoch() uint64 {
	return uint64(s>>indexBits) & epochMask
}

func (s sequence) Index() uint32 {
	return uint32(s & indexMask)
}
