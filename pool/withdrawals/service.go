// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package withdrawals

import (
	"math/big"
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/storage"
)

var (
	slotRequests     = storage.Slot("withdraw-requests")
	slotQueues       = storage.Slot("withdraw-queues")
	slotNonces       = storage.Slot("withdraw-nonces")
	slotSystemQueue  = storage.Slot("withdraw-system-queue")
	slotCertificates = storage.Slot("withdraw-certificates")
)

// Service owns the withdrawal requests, each validator's queue of pending nonces, the system queue
// of requests not tied to a certificate, and the certificate to request mapping.
type Service struct {
	requests     *storage.Mapping[Key, *Request]
	queues       *storage.Mapping[base.Address, []uint64]
	nonces       *storage.Mapping[base.Address, uint64]
	system       *storage.Raw[[]Key]
	certificates *storage.Mapping[tokenKey, *Certificate]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		requests:     storage.NewMapping[Key, *Request](sctx, slotRequests),
		queues:       storage.NewMapping[base.Address, []uint64](sctx, slotQueues),
		nonces:       storage.NewMapping[base.Address, uint64](sctx, slotNonces),
		system:       storage.NewRaw[[]Key](sctx, slotSystemQueue),
		certificates: storage.NewMapping[tokenKey, *Certificate](sctx, slotCertificates),
	}
}

// Nonce returns the nonce of the latest request raised against the validator, 0 if none.
func (s *Service) Nonce(validator base.Address) (uint64, error) {
	return s.nonces.Get(validator)
}

// Create raises a request with the validator's next nonce and appends it to the validator's queue.
func (s *Service) Create(validator base.Address, amount *big.Int, ref, epoch, delay uint64) (*Request, error) {
	nonce, err := s.nonces.Get(validator)
	if err != nil {
		return nil, err
	}
	nonce++
	if err := s.nonces.Set(validator, nonce); err != nil {
		return nil, err
	}

	req := &Request{
		Validator:     validator,
		Nonce:         nonce,
		Amount:        new(big.Int).Set(amount),
		Ref:           ref,
		RequestEpoch:  epoch,
		MaturityDelay: delay,
	}
	if err := s.requests.Set(req.Key(), req); err != nil {
		return nil, err
	}
	queue, err := s.queues.Get(validator)
	if err != nil {
		return nil, err
	}
	if err := s.queues.Set(validator, append(queue, nonce)); err != nil {
		return nil, err
	}
	return req, nil
}

// Get returns the request, nil if it does not exist.
func (s *Service) Get(key Key) (*Request, error) {
	exists, err := s.requests.Exists(key)
	if err != nil || !exists {
		return nil, err
	}
	return s.requests.Get(key)
}

// Remove deletes a request and drops it from its validator's queue.
func (s *Service) Remove(key Key) error {
	queue, err := s.queues.Get(key.Validator)
	if err != nil {
		return err
	}
	i := slices.Index(queue, key.Nonce)
	if i < 0 {
		return errors.Errorf("request %v/%d is not queued", key.Validator, key.Nonce)
	}
	queue = slices.Delete(queue, i, i+1)
	if len(queue) == 0 {
		s.queues.Delete(key.Validator)
	} else if err := s.queues.Set(key.Validator, queue); err != nil {
		return err
	}
	s.requests.Delete(key)
	return nil
}

// Pending returns the validator's outstanding requests, oldest first.
func (s *Service) Pending(validator base.Address) ([]*Request, error) {
	queue, err := s.queues.Get(validator)
	if err != nil {
		return nil, err
	}
	requests := make([]*Request, 0, len(queue))
	for _, nonce := range queue {
		req, err := s.requests.Get(Key{validator, nonce})
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func (s *Service) PushSystem(key Key) error {
	queue, err := s.system.Get()
	if err != nil {
		return err
	}
	return s.system.Set(append(queue, key))
}

func (s *Service) SystemQueue() ([]Key, error) {
	return s.system.Get()
}

// SystemRequests resolves the system queue, in order.
func (s *Service) SystemRequests() ([]*Request, error) {
	keys, err := s.system.Get()
	if err != nil {
		return nil, err
	}
	requests := make([]*Request, 0, len(keys))
	for _, key := range keys {
		req, err := s.requests.Get(key)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// RemoveSystem drops the entry at index, keeping the order of the rest.
func (s *Service) RemoveSystem(index int) error {
	queue, err := s.system.Get()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(queue) {
		return errors.Errorf("system queue index %d out of range", index)
	}
	queue = slices.Delete(queue, index, index+1)
	if len(queue) == 0 {
		s.system.Clear()
		return nil
	}
	return s.system.Set(queue)
}

// SystemTotal sums the amounts of every request in the system queue.
func (s *Service) SystemTotal() (*big.Int, error) {
	requests, err := s.SystemRequests()
	if err != nil {
		return nil, err
	}
	total := new(big.Int)
	for _, req := range requests {
		total.Add(total, req.Amount)
	}
	return total, nil
}

func (s *Service) SetCertificate(tokenID uint64, cert *Certificate) error {
	return s.certificates.Set(tokenKey(tokenID), cert)
}

// Certificate returns the requests of a certificate, nil if unknown.
func (s *Service) Certificate(tokenID uint64) (*Certificate, error) {
	exists, err := s.certificates.Exists(tokenKey(tokenID))
	if err != nil || !exists {
		return nil, err
	}
	return s.certificates.Get(tokenKey(tokenID))
}

func (s *Service) DeleteCertificate(tokenID uint64) {
	s.certificates.Delete(tokenKey(tokenID))
}
