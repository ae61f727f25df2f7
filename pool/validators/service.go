// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validators

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/storage"
)

var (
	slotRecords = storage.Slot("validator-records")
	slotIDs     = storage.Slot("validator-ids")
)

// Service keeps the pool-side validator records in registration order.
type Service struct {
	records *storage.Mapping[base.Address, *Record]
	ids     *storage.Raw[[]base.Address]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		records: storage.NewMapping[base.Address, *Record](sctx, slotRecords),
		ids:     storage.NewRaw[[]base.Address](sctx, slotIDs),
	}
}

// Register adds a validator with no stake. Registering twice is a no-op returning the existing record.
func (s *Service) Register(id base.Address, status Status) (*Record, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	ids, err := s.ids.Get()
	if err != nil {
		return nil, err
	}
	rec := &Record{
		Index:  uint64(len(ids)),
		Stake:  new(big.Int),
		Status: status,
	}
	if err := s.records.Set(id, rec); err != nil {
		return nil, err
	}
	if err := s.ids.Set(append(ids, id)); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns the record, nil if the validator is not registered.
func (s *Service) Get(id base.Address) (*Record, error) {
	exists, err := s.records.Exists(id)
	if err != nil || !exists {
		return nil, err
	}
	return s.records.Get(id)
}

// GetExisting is Get failing on unknown validators.
func (s *Service) GetExisting(id base.Address) (*Record, error) {
	rec, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.Errorf("validator %v is not registered", id)
	}
	return rec, nil
}

func (s *Service) Update(id base.Address, rec *Record) error {
	return s.records.Set(id, rec)
}

func (s *Service) AddStake(id base.Address, amount *big.Int) error {
	rec, err := s.GetExisting(id)
	if err != nil {
		return err
	}
	rec.Stake.Add(rec.Stake, amount)
	return s.records.Set(id, rec)
}

func (s *Service) SubStake(id base.Address, amount *big.Int) error {
	rec, err := s.GetExisting(id)
	if err != nil {
		return err
	}
	if rec.Stake.Cmp(amount) < 0 {
		return errors.Errorf("validator %v stake %v below %v", id, rec.Stake, amount)
	}
	rec.Stake.Sub(rec.Stake, amount)
	return s.records.Set(id, rec)
}

func (s *Service) IDs() ([]base.Address, error) {
	return s.ids.Get()
}

// All returns every record in registration order.
func (s *Service) All() ([]Entry, error) {
	ids, err := s.ids.Get()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		rec, err := s.records.Get(id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{ID: id, Record: rec})
	}
	return entries, nil
}

// TotalStake sums the pool-side stake of every record.
func (s *Service) TotalStake() (*big.Int, error) {
	entries, err := s.All()
	if err != nil {
		return nil, err
	}
	total := new(big.Int)
	for _, e := range entries {
		total.Add(total, e.Stake)
	}
	return total, nil
}
