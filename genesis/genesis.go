// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis describes and builds the initial state of a pool deployment.
package genesis

import (
	"math/big"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/certificate"
	"github.com/vechain/stakepool/directory"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/pool/params"
	"github.com/vechain/stakepool/state"
)

// Genesis is the deployment configuration, read from yaml or json.
type Genesis struct {
	PoolAddress         base.Address                `yaml:"poolAddress" json:"poolAddress"`
	DirectoryAddress    base.Address                `yaml:"directoryAddress" json:"directoryAddress"`
	CertificatesAddress base.Address                `yaml:"certificatesAddress" json:"certificatesAddress"`
	WithdrawalDelay     uint64                      `yaml:"withdrawalDelay" json:"withdrawalDelay"`
	Admins              []base.Address              `yaml:"admins" json:"admins"`
	Pausers             []base.Address              `yaml:"pausers" json:"pausers"`
	Insurance           base.Address                `yaml:"insurance" json:"insurance"`
	Dao                 base.Address                `yaml:"dao" json:"dao"`
	Params              map[string]*HexOrDecimal256 `yaml:"params" json:"params"`
	Accounts            []Account                   `yaml:"accounts" json:"accounts"`
	Validators          []Validator                 `yaml:"validators" json:"validators"`
}

// Account is funded at genesis.
type Account struct {
	Address base.Address     `yaml:"address" json:"address"`
	Balance *HexOrDecimal256 `yaml:"balance" json:"balance"`
}

// Validator is listed in the simulated directory at genesis.
type Validator struct {
	ID            base.Address `yaml:"id" json:"id"`
	RewardAddress base.Address `yaml:"rewardAddress" json:"rewardAddress"`
}

// Load reads and validates a genesis file. yaml is a superset of json, so both are accepted.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrap(err, "read genesis")
	}
	var gen Genesis
	if err := yaml.Unmarshal(data, &gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	if err := gen.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "invalid genesis %v", path)
	}
	return &gen, nil
}

// Validate checks the configuration without building anything.
func (g *Genesis) Validate() error {
	if g.PoolAddress.IsZero() {
		return errors.New("poolAddress must be set")
	}
	if g.DirectoryAddress.IsZero() || g.CertificatesAddress.IsZero() {
		return errors.New("directoryAddress and certificatesAddress must be set")
	}
	if g.PoolAddress == g.DirectoryAddress || g.PoolAddress == g.CertificatesAddress || g.DirectoryAddress == g.CertificatesAddress {
		return errors.New("pool, directory and certificates addresses must differ")
	}
	if len(g.Admins) == 0 {
		return errors.New("at least one admin")
	}
	for name, value := range g.Params {
		if _, ok := params.Lookup(name); !ok {
			return errors.Errorf("unknown param %q", name)
		}
		if value == nil || value.Int().Sign() < 0 {
			return errors.Errorf("param %q must be a non-negative integer", name)
		}
	}
	for _, a := range g.Accounts {
		if a.Balance == nil || a.Balance.Int().Sign() < 1 {
			return errors.Errorf("%v: balance must be a non-zero integer", a.Address)
		}
	}
	seen := make(map[base.Address]bool, len(g.Validators))
	for _, v := range g.Validators {
		if v.ID.IsZero() {
			return errors.New("validator id must be set")
		}
		if seen[v.ID] {
			return errors.Errorf("duplicate validator %v", v.ID)
		}
		seen[v.ID] = true
	}
	return nil
}

// Deployment is the set of components living in the state.
type Deployment struct {
	State        *state.State
	Pool         *pool.Pool
	Directory    *directory.Directory
	Certificates *certificate.Registry
}

// Open wires the components over st without writing anything, for a state built earlier.
func (g *Genesis) Open(st *state.State) *Deployment {
	dir := directory.New(g.DirectoryAddress, st, g.PoolAddress)
	certs := certificate.New(g.CertificatesAddress, st)
	return &Deployment{
		State:        st,
		Pool:         pool.New(g.PoolAddress, st, dir, dir.Network(), certs),
		Directory:    dir,
		Certificates: certs,
	}
}

// Build writes the genesis state: balances, validators and the pool configuration. The state is
// left uncommitted.
func (g *Genesis) Build(st *state.State) (*Deployment, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	d := g.Open(st)

	for _, a := range g.Accounts {
		if err := st.AddBalance(a.Address, a.Balance.Int()); err != nil {
			return nil, err
		}
	}
	if err := d.Directory.Network().SetWithdrawalDelay(g.WithdrawalDelay); err != nil {
		return nil, err
	}
	for _, v := range g.Validators {
		if err := d.Directory.AddValidator(v.ID, v.RewardAddress); err != nil {
			return nil, err
		}
	}

	values := make(map[string]*big.Int, len(g.Params))
	for name, value := range g.Params {
		values[name] = value.Int()
	}
	if err := d.Pool.Init(&pool.Bootstrap{
		Admins:    g.Admins,
		Pausers:   g.Pausers,
		Insurance: g.Insurance,
		Dao:       g.Dao,
		Params:    values,
	}); err != nil {
		return nil, errors.WithMessage(err, "init pool")
	}
	if len(g.Validators) > 0 {
		if _, err := d.Pool.SyncValidators(); err != nil {
			return nil, errors.WithMessage(err, "sync validators")
		}
	}
	// genesis events are not part of the history
	d.Pool.DrainEvents()
	return d, nil
}

func devAddress(name string) base.Address {
	return base.BytesToAddress([]byte(name))
}

// DevAccounts are the funded accounts of the solo genesis.
var DevAccounts = []base.Address{
	devAddress("dev-account-1"),
	devAddress("dev-account-2"),
	devAddress("dev-account-3"),
}

// Dev returns the solo genesis: three validators and funded dev accounts, the first one holding
// every role.
func Dev() *Genesis {
	gen := &Genesis{
		PoolAddress:         devAddress("stakepool"),
		DirectoryAddress:    devAddress("directory"),
		CertificatesAddress: devAddress("certificates"),
		WithdrawalDelay:     3,
		Admins:              []base.Address{DevAccounts[0]},
		Pausers:             []base.Address{DevAccounts[0]},
		Insurance:           devAddress("insurance"),
		Dao:                 devAddress("dao"),
	}
	for _, addr := range DevAccounts {
		gen.Accounts = append(gen.Accounts, Account{Address: addr, Balance: NewHexOrDecimal256(base.ToWei(1_000_000))})
	}
	for _, name := range []string{"validator-1", "validator-2", "validator-3"} {
		gen.Validators = append(gen.Validators, Validator{
			ID:            devAddress(name),
			RewardAddress: devAddress(name + "-op"),
		})
	}
	return gen
}
