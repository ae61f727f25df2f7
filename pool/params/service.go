// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/storage"
)

// Role is a capability checked by privileged pool operations.
type Role byte

const (
	RoleDAO Role = iota + 1
	RolePauser
)

func (r Role) String() string {
	switch r {
	case RoleDAO:
		return "dao"
	case RolePauser:
		return "pauser"
	default:
		return "unknown"
	}
}

// ParseRole is the inverse of Role.String.
func ParseRole(s string) (Role, error) {
	switch s {
	case "dao":
		return RoleDAO, nil
	case "pauser":
		return RolePauser, nil
	}
	return 0, errors.Errorf("unknown role %q", s)
}

type roleKey struct {
	role Role
	addr base.Address
}

func (k roleKey) Bytes() []byte {
	return append([]byte{byte(k.role)}, k.addr.Bytes()...)
}

var (
	slotRoles     = storage.Slot("roles")
	slotInsurance = storage.Slot("insurance-address")
	slotDao       = storage.Slot("dao-address")
	slotPaused    = storage.Slot("paused")
)

// Service holds the pool settings, fee recipients, role grants and the pause switch.
type Service struct {
	sctx      *storage.Context
	roles     *storage.Mapping[roleKey, bool]
	insurance *storage.Raw[base.Address]
	dao       *storage.Raw[base.Address]
	paused    *storage.Raw[bool]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		sctx:      sctx,
		roles:     storage.NewMapping[roleKey, bool](sctx, slotRoles),
		insurance: storage.NewRaw[base.Address](sctx, slotInsurance),
		dao:       storage.NewRaw[base.Address](sctx, slotDao),
		paused:    storage.NewRaw[bool](sctx, slotPaused),
	}
}

func (s *Service) Get(v *storage.ConfigVariable) (*big.Int, error) {
	return v.Get(s.sctx)
}

func (s *Service) Uint64(v *storage.ConfigVariable) (uint64, error) {
	return v.Uint64(s.sctx)
}

func (s *Service) Set(v *storage.ConfigVariable, value *big.Int) error {
	return v.Set(s.sctx, value)
}

func (s *Service) InsuranceAddress() (base.Address, error) {
	return s.insurance.Get()
}

func (s *Service) SetInsuranceAddress(addr base.Address) error {
	return s.insurance.Set(addr)
}

func (s *Service) DaoAddress() (base.Address, error) {
	return s.dao.Get()
}

func (s *Service) SetDaoAddress(addr base.Address) error {
	return s.dao.Set(addr)
}

func (s *Service) HasRole(role Role, addr base.Address) (bool, error) {
	return s.roles.Get(roleKey{role, addr})
}

func (s *Service) GrantRole(role Role, addr base.Address) error {
	return s.roles.Set(roleKey{role, addr}, true)
}

func (s *Service) RevokeRole(role Role, addr base.Address) {
	s.roles.Delete(roleKey{role, addr})
}

func (s *Service) Paused() (bool, error) {
	return s.paused.Get()
}

func (s *Service) SetPaused(paused bool) error {
	if !paused {
		s.paused.Clear()
		return nil
	}
	return s.paused.Set(true)
}

// Snapshot reads every setting at once.
func (s *Service) Snapshot() (map[string]*big.Int, error) {
	values := make(map[string]*big.Int, len(All))
	for _, v := range All {
		value, err := v.Get(s.sctx)
		if err != nil {
			return nil, err
		}
		values[v.Name()] = value
	}
	return values, nil
}
