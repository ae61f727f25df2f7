// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validators

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/base"
)

// Status is the lifecycle state a validator directory reports.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusActive
	StatusJailed
	StatusEjected
	StatusRemoved
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusJailed:
		return "jailed"
	case StatusEjected:
		return "ejected"
	case StatusRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, error) {
	for _, status := range []Status{StatusActive, StatusJailed, StatusEjected, StatusRemoved} {
		if status.String() == s {
			return status, nil
		}
	}
	return StatusUnknown, errors.Errorf("unknown validator status %q", s)
}

// IsExit reports whether the status takes a validator out of the allocation set for good.
func (s Status) IsExit() bool {
	return s == StatusEjected || s == StatusRemoved
}

// Record is the pool-side view of a validator.
type Record struct {
	Index              uint64   // registration order
	Stake              *big.Int // delegated stake as accounted by the pool
	Status             Status   // last status observed from the directory
	Exited             bool
	DelegationDisabled bool
}

// Entry pairs a record with its validator id.
type Entry struct {
	ID base.Address
	*Record
}
