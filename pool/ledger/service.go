// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/pool/reverts"
	"github.com/vechain/stakepool/storage"
)

var (
	slotBuffered    = storage.Slot("buffered")
	slotReserved    = storage.Slot("reserved")
	slotTotalShares = storage.Slot("total-shares")
	slotShares      = storage.Slot("shares")
)

// Service keeps the pool's unstaked funds, the part of them promised to redemptions,
// and the share balances.
type Service struct {
	buffered    *storage.Uint256
	reserved    *storage.Uint256
	totalShares *storage.Uint256
	shares      *storage.Mapping[base.Address, *big.Int]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		buffered:    storage.NewUint256(sctx, slotBuffered),
		reserved:    storage.NewUint256(sctx, slotReserved),
		totalShares: storage.NewUint256(sctx, slotTotalShares),
		shares:      storage.NewMapping[base.Address, *big.Int](sctx, slotShares),
	}
}

func (s *Service) Buffered() (*big.Int, error) {
	return s.buffered.Get()
}

func (s *Service) AddBuffered(amount *big.Int) error {
	return s.buffered.Add(amount)
}

func (s *Service) SubBuffered(amount *big.Int) error {
	return sub(s.buffered, amount, "buffered")
}

func (s *Service) Reserved() (*big.Int, error) {
	return s.reserved.Get()
}

func (s *Service) AddReserved(amount *big.Int) error {
	return s.reserved.Add(amount)
}

func (s *Service) SubReserved(amount *big.Int) error {
	return sub(s.reserved, amount, "reserved")
}

func (s *Service) TotalShares() (*big.Int, error) {
	return s.totalShares.Get()
}

// SharesOf returns the share balance of holder, zero if it never held any.
func (s *Service) SharesOf(holder base.Address) (*big.Int, error) {
	balance, err := s.shares.Get(holder)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		return new(big.Int), nil
	}
	return balance, nil
}

func (s *Service) Mint(holder base.Address, amount *big.Int) error {
	balance, err := s.SharesOf(holder)
	if err != nil {
		return err
	}
	if err := s.shares.Set(holder, balance.Add(balance, amount)); err != nil {
		return err
	}
	return s.totalShares.Add(amount)
}

func (s *Service) Burn(holder base.Address, amount *big.Int) error {
	balance, err := s.SharesOf(holder)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return reverts.Newf(reverts.InvalidAmount, "burning %v shares, holder has %v", amount, balance)
	}
	balance.Sub(balance, amount)
	if balance.Sign() == 0 {
		s.shares.Delete(holder)
	} else if err := s.shares.Set(holder, balance); err != nil {
		return err
	}
	return sub(s.totalShares, amount, "total shares")
}

func sub(slot *storage.Uint256, amount *big.Int, name string) error {
	current, err := slot.Get()
	if err != nil {
		return err
	}
	if current.Cmp(amount) < 0 {
		return reverts.Newf(reverts.InvalidAmount, "%s is %v, cannot subtract %v", name, current, amount)
	}
	return slot.Set(current.Sub(current, amount))
}
