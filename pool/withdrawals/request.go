// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package withdrawals

import (
	"encoding/binary"
	"math/big"

	"github.com/vechain/stakepool/base"
)

// BufferID is the pseudo validator id of requests satisfied from the pool's own buffer.
var BufferID = base.Address{}

// Key addresses a request by validator and nonce.
type Key struct {
	Validator base.Address
	Nonce     uint64
}

func (k Key) Bytes() []byte {
	return binary.BigEndian.AppendUint64(k.Validator.Bytes(), k.Nonce)
}

// IsBuffer reports whether the request is backed by buffered funds rather than a validator.
func (k Key) IsBuffer() bool {
	return k.Validator.IsZero()
}

// Request is one per-validator withdrawal.
type Request struct {
	Validator     base.Address
	Nonce         uint64
	Amount        *big.Int
	Ref           uint64 // stake handle reference, unused for buffer requests
	RequestEpoch  uint64
	MaturityDelay uint64
}

func (r *Request) Key() Key {
	return Key{Validator: r.Validator, Nonce: r.Nonce}
}

func (r *Request) IsBuffer() bool {
	return r.Key().IsBuffer()
}

func (r *Request) MaturesAt() uint64 {
	return r.RequestEpoch + r.MaturityDelay
}

func (r *Request) IsMatured(epoch uint64) bool {
	return epoch >= r.MaturesAt()
}

// Certificate lists the requests raised by one redemption.
type Certificate struct {
	Value        *big.Int // underlying value at request time
	Shares       *big.Int // shares burnt for it
	RequestEpoch uint64
	Requests     []Key
}

type tokenKey uint64

func (t tokenKey) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(t))
}
