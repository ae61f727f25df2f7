// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package certificate keeps the ownership of withdrawal certificates.
// Certificates are minted and burnt by the pool only and cannot be transferred.
package certificate

import (
	"encoding/binary"
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/storage"
)

var logger = log.WithContext("pkg", "certificate")

var (
	slotLastID = storage.Slot("last-token-id")
	slotOwners = storage.Slot("owners")
	slotOwned  = storage.Slot("owned")
)

type tokenKey uint64

func (t tokenKey) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(t))
}

// ErrNotFound is returned when burning an unknown certificate.
var ErrNotFound = errors.New("certificate not found")

type Registry struct {
	lastID *storage.Raw[uint64]
	owners *storage.Mapping[tokenKey, base.Address]
	owned  *storage.Mapping[base.Address, []uint64]
}

func New(addr base.Address, st *state.State) *Registry {
	sctx := storage.NewContext(addr, st)
	return &Registry{
		lastID: storage.NewRaw[uint64](sctx, slotLastID),
		owners: storage.NewMapping[tokenKey, base.Address](sctx, slotOwners),
		owned:  storage.NewMapping[base.Address, []uint64](sctx, slotOwned),
	}
}

// Mint issues the next token id, starting at 1, to owner.
func (r *Registry) Mint(owner base.Address) (uint64, error) {
	if owner.IsZero() {
		return 0, errors.New("mint to the zero address")
	}
	id, err := r.lastID.Get()
	if err != nil {
		return 0, err
	}
	id++
	if err := r.lastID.Set(id); err != nil {
		return 0, err
	}
	if err := r.owners.Set(tokenKey(id), owner); err != nil {
		return 0, err
	}
	tokens, err := r.owned.Get(owner)
	if err != nil {
		return 0, err
	}
	if err := r.owned.Set(owner, append(tokens, id)); err != nil {
		return 0, err
	}
	logger.Debug("minted certificate", "id", id, "owner", owner)
	return id, nil
}

func (r *Registry) Burn(id uint64) error {
	owner, ok, err := r.OwnerOf(id)
	if err != nil {
		return err
	}
	if !ok {
		return errors.WithMessagef(ErrNotFound, "token %d", id)
	}
	tokens, err := r.owned.Get(owner)
	if err != nil {
		return err
	}
	if i := slices.Index(tokens, id); i >= 0 {
		tokens = slices.Delete(tokens, i, i+1)
	}
	if len(tokens) == 0 {
		r.owned.Delete(owner)
	} else if err := r.owned.Set(owner, tokens); err != nil {
		return err
	}
	r.owners.Delete(tokenKey(id))
	logger.Debug("burnt certificate", "id", id, "owner", owner)
	return nil
}

// OwnerOf returns the holder of a token; ok is false when the token does not exist.
func (r *Registry) OwnerOf(id uint64) (owner base.Address, ok bool, err error) {
	exists, err := r.owners.Exists(tokenKey(id))
	if err != nil || !exists {
		return base.Address{}, false, err
	}
	owner, err = r.owners.Get(tokenKey(id))
	return owner, err == nil, err
}

// OwnedTokens lists the tokens of owner in mint order.
func (r *Registry) OwnedTokens(owner base.Address) ([]uint64, error) {
	return r.owned.Get(owner)
}

func (r *Registry) Exists(id uint64) (bool, error) {
	return r.owners.Exists(tokenKey(id))
}
