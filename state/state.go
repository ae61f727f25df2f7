// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/qianbin/directcache"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/stackedmap"
)

const (
	balanceBucket = kv.Bucket("b")
	storageBucket = kv.Bucket("s")

	defaultCacheSize = 4096
	slotCacheBytes   = 16 * 1024 * 1024
)

// ErrInsufficientBalance is returned by Transfer when the sender cannot cover the amount.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type balanceKey base.Address

type storageKey struct {
	addr base.Address
	key  base.Bytes32
}

// State holds account balances and per-address storage slots.
// Writes are journaled so they can be reverted to a checkpoint, and flushed by Commit.
type State struct {
	store    kv.Store
	balances kv.Store
	storage  kv.Store
	cache    *lru.Cache         // committed balances
	slots    *directcache.Cache // committed storage slots, keyed by address and key
	sm       *stackedmap.StackedMap[any, []byte]
}

// New creates a state backed by the store.
func New(store kv.Store) *State {
	cache, _ := lru.New(defaultCacheSize)
	s := &State{
		store:    store,
		balances: balanceBucket.NewStore(store),
		storage:  storageBucket.NewStore(store),
		cache:    cache,
		slots:    directcache.New(slotCacheBytes),
	}
	s.sm = stackedmap.New[any, []byte](s.load)
	return s
}

func (k storageKey) bytes() []byte {
	return append(k.addr.Bytes(), k.key.Bytes()...)
}

func (s *State) load(key any) ([]byte, bool, error) {
	switch k := key.(type) {
	case balanceKey:
		if v, ok := s.cache.Get(k); ok {
			metricCacheHitMiss().AddWithLabel(1, map[string]string{"type": "balance", "event": "hit"})
			return v.([]byte), true, nil
		}
		metricCacheHitMiss().AddWithLabel(1, map[string]string{"type": "balance", "event": "miss"})
		raw, err := s.balances.Get(k[:])
		if err != nil {
			if !s.balances.IsNotFound(err) {
				return nil, false, err
			}
			raw = nil
		}
		s.cache.Add(k, raw)
		return raw, true, nil
	case storageKey:
		slot := k.bytes()
		if v, ok := s.slots.Get(slot); ok {
			metricCacheHitMiss().AddWithLabel(1, map[string]string{"type": "slot", "event": "hit"})
			return v, true, nil
		}
		metricCacheHitMiss().AddWithLabel(1, map[string]string{"type": "slot", "event": "miss"})
		raw, err := s.storage.Get(slot)
		if err != nil {
			if !s.storage.IsNotFound(err) {
				return nil, false, err
			}
			raw = nil
		}
		s.slots.Set(slot, raw)
		return raw, true, nil
	default:
		panic(fmt.Errorf("unexpected key type %+v", key))
	}
}

// GetBalance returns the balance of the address.
func (s *State) GetBalance(addr base.Address) (*big.Int, error) {
	raw, _, err := s.sm.Get(balanceKey(addr))
	if err != nil {
		return nil, &Error{err}
	}
	balance := new(big.Int)
	if len(raw) == 0 {
		return balance, nil
	}
	if err := rlp.DecodeBytes(raw, balance); err != nil {
		return nil, &Error{err}
	}
	return balance, nil
}

// SetBalance sets the balance of the address. Negative balances are rejected.
func (s *State) SetBalance(addr base.Address, balance *big.Int) error {
	if balance.Sign() < 0 {
		return &Error{errors.New("negative balance")}
	}
	if balance.Sign() == 0 {
		s.sm.Put(balanceKey(addr), nil)
		return nil
	}
	raw, err := rlp.EncodeToBytes(balance)
	if err != nil {
		return &Error{err}
	}
	s.sm.Put(balanceKey(addr), raw)
	return nil
}

// AddBalance credits the address.
func (s *State) AddBalance(addr base.Address, amount *big.Int) error {
	balance, err := s.GetBalance(addr)
	if err != nil {
		return err
	}
	return s.SetBalance(addr, balance.Add(balance, amount))
}

// Transfer moves amount from one address to another.
func (s *State) Transfer(from, to base.Address, amount *big.Int) error {
	if amount.Sign() == 0 || from == to {
		return nil
	}
	fromBalance, err := s.GetBalance(from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return errors.WithMessagef(ErrInsufficientBalance, "%v has %v, needs %v", from, fromBalance, amount)
	}
	if err := s.SetBalance(from, fromBalance.Sub(fromBalance, amount)); err != nil {
		return err
	}
	return s.AddBalance(to, amount)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr base.Address, key base.Bytes32) (rlp.RawValue, error) {
	raw, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return raw, nil
}

// SetRawStorage set storage value in rlp raw. An empty value clears the slot.
func (s *State) SetRawStorage(addr base.Address, key base.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
func (s *State) EncodeStorage(addr base.Address, key base.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
func (s *State) DecodeStorage(addr base.Address, key base.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Commit writes every journaled change to the store in one bulk and resets the journal.
// It returns the number of keys written.
func (s *State) Commit() (int, error) {
	latest := make(map[any][]byte)
	var order []any
	for _, entry := range s.sm.Journal() {
		if _, ok := latest[entry.Key]; !ok {
			order = append(order, entry.Key)
		}
		latest[entry.Key] = entry.Value
	}
	if len(order) == 0 {
		return 0, nil
	}

	bulk := s.store.Bulk()
	balances := balanceBucket.NewPutter(bulk)
	storage := storageBucket.NewPutter(bulk)
	for _, key := range order {
		var (
			putter kv.Putter
			k      []byte
		)
		switch typed := key.(type) {
		case balanceKey:
			putter, k = balances, typed[:]
		case storageKey:
			putter, k = storage, typed.bytes()
		}
		var err error
		if v := latest[key]; len(v) == 0 {
			err = putter.Delete(k)
		} else {
			err = putter.Put(k, v)
		}
		if err != nil {
			return 0, &Error{err}
		}
	}
	if err := bulk.Write(); err != nil {
		return 0, &Error{err}
	}

	for _, key := range order {
		switch typed := key.(type) {
		case balanceKey:
			s.cache.Add(typed, latest[key])
		case storageKey:
			s.slots.Set(typed.bytes(), latest[key])
		}
	}
	s.sm.PopTo(0)
	s.sm.Push()

	metricCommittedKeys().Add(int64(len(order)))
	return len(order), nil
}
