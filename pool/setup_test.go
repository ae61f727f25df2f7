// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/certificate"
	"github.com/vechain/stakepool/directory"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/pool/validators"
	"github.com/vechain/stakepool/state"
)

const withdrawalDelay = 2

var (
	poolAddr      = base.BytesToAddress([]byte("pool"))
	directoryAddr = base.BytesToAddress([]byte("directory"))
	certAddr      = base.BytesToAddress([]byte("certificates"))

	admin     = base.BytesToAddress([]byte("admin"))
	pauser    = base.BytesToAddress([]byte("pauser"))
	insurance = base.BytesToAddress([]byte("insurance"))
	dao       = base.BytesToAddress([]byte("dao"))
	alice     = base.BytesToAddress([]byte("alice"))
	bob       = base.BytesToAddress([]byte("bob"))
	referrer  = base.BytesToAddress([]byte("referrer"))
)

func validatorID(i int) base.Address {
	return base.BytesToAddress([]byte{'v', byte('0' + i)})
}

func operatorOf(i int) base.Address {
	return base.BytesToAddress([]byte{'o', 'p', byte('0' + i)})
}

type testEnv struct {
	state     *state.State
	directory *directory.Directory
	pool      *Pool
}

// newTestEnv creates a bootstrapped pool with no delegation or reward floor and the given
// number of validators registered.
func newTestEnv(t *testing.T, validatorCount int) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	dir := directory.New(directoryAddr, st, poolAddr)
	require.NoError(t, dir.Network().SetWithdrawalDelay(withdrawalDelay))

	p := New(poolAddr, st, dir, dir.Network(), certificate.New(certAddr, st))
	require.NoError(t, p.Init(&Bootstrap{
		Admins:    []base.Address{admin},
		Pausers:   []base.Address{pauser},
		Insurance: insurance,
		Dao:       dao,
		Params: map[string]*big.Int{
			"delegation-lower-bound":          new(big.Int),
			"reward-distribution-lower-bound": new(big.Int),
		},
	}))

	env := &testEnv{state: st, directory: dir, pool: p}
	for i := 1; i <= validatorCount; i++ {
		env.addValidator(t, i)
	}
	if validatorCount > 0 {
		_, err := p.SyncValidators()
		require.NoError(t, err)
	}
	p.DrainEvents()
	return env
}

func (env *testEnv) addValidator(t *testing.T, i int) {
	require.NoError(t, env.directory.AddValidator(validatorID(i), operatorOf(i)))
}

func (env *testEnv) fund(t *testing.T, addr base.Address, amount int64) {
	require.NoError(t, env.state.AddBalance(addr, big.NewInt(amount)))
}

func (env *testEnv) advance(t *testing.T, epochs uint64) {
	_, err := env.directory.Network().Advance(epochs)
	require.NoError(t, err)
}

func (env *testEnv) balance(t *testing.T, addr base.Address) *big.Int {
	balance, err := env.state.GetBalance(addr)
	require.NoError(t, err)
	return balance
}

func assertBig(t *testing.T, want any, got *big.Int, msgAndArgs ...any) {
	t.Helper()
	var w *big.Int
	switch v := want.(type) {
	case int:
		w = big.NewInt(int64(v))
	case int64:
		w = big.NewInt(v)
	case *big.Int:
		w = v
	default:
		t.Fatalf("unsupported expectation %T", want)
	}
	require.NotNil(t, got, msgAndArgs...)
	assert.Equal(t, w.String(), got.String(), msgAndArgs...)
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	env *testEnv

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(env *testEnv) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), env: env}
}

func (st *TestSequence) AddFunc(f TestFunc) *TestSequence {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.funcs = append(st.funcs, f)
	return st
}

func (st *TestSequence) Submit(addr base.Address, amount int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.env.fund(t, addr, amount)
		shares, err := st.env.pool.Submit(addr, big.NewInt(amount), referrer)
		if err != nil {
			t.Fatalf("failed to submit %d for %s: %v", amount, addr, err)
		}
		t.Logf("submitted %d for %s, minted %s shares", amount, addr, shares)
	})
}

func (st *TestSequence) Delegate() *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		placed, err := st.env.pool.Delegate()
		if err != nil {
			t.Fatalf("failed to delegate: %v", err)
		}
		t.Logf("delegated %s", placed)
	})
}

func (st *TestSequence) AddValidator(i int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.env.addValidator(t, i)
		if _, err := st.env.pool.SyncValidators(); err != nil {
			t.Fatalf("failed to sync validators: %v", err)
		}
		t.Logf("added validator %s", validatorID(i))
	})
}

func (st *TestSequence) SetStatus(i int, status validators.Status) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.directory.SetStatus(validatorID(i), status); err != nil {
			t.Fatalf("failed to set status of %s: %v", validatorID(i), err)
		}
		if _, err := st.env.pool.SyncValidators(); err != nil {
			t.Fatalf("failed to sync validators: %v", err)
		}
		t.Logf("validator %s is now %s", validatorID(i), status)
	})
}

func (st *TestSequence) RequestWithdraw(addr base.Address, shares int64, tokenID *uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		id, err := st.env.pool.RequestWithdraw(addr, big.NewInt(shares), referrer)
		if err != nil {
			t.Fatalf("failed to request withdraw of %d shares for %s: %v", shares, addr, err)
		}
		if tokenID != nil {
			*tokenID = id
		}
		t.Logf("requested withdraw of %d shares for %s, certificate %d", shares, addr, id)
	})
}

func (st *TestSequence) Advance(epochs uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.env.advance(t, epochs)
		t.Logf("advanced %d epochs", epochs)
	})
}

func (st *TestSequence) AccrueReward(i int, amount *big.Int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.directory.AccrueReward(validatorID(i), amount); err != nil {
			t.Fatalf("failed to accrue reward for %s: %v", validatorID(i), err)
		}
	})
}

func (st *TestSequence) Run(t *testing.T) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, f := range st.funcs {
		f(t)
	}

	t.Logf("All test functions executed successfully")
}

type PoolAssertions struct {
	pool *Pool

	buffered    *big.Int
	reserved    *big.Int
	totalPooled *big.Int
	totalShares *big.Int
}

func AssertPool(pool *Pool) *PoolAssertions {
	return &PoolAssertions{pool: pool}
}

func (pa *PoolAssertions) Buffered(expected int64) *PoolAssertions {
	pa.buffered = big.NewInt(expected)
	return pa
}

func (pa *PoolAssertions) Reserved(expected int64) *PoolAssertions {
	pa.reserved = big.NewInt(expected)
	return pa
}

func (pa *PoolAssertions) TotalPooled(expected int64) *PoolAssertions {
	pa.totalPooled = big.NewInt(expected)
	return pa
}

func (pa *PoolAssertions) TotalShares(expected int64) *PoolAssertions {
	pa.totalShares = big.NewInt(expected)
	return pa
}

func (pa *PoolAssertions) Assert(t *testing.T) {
	summary, err := pa.pool.Summary()
	require.NoError(t, err, "failed to get pool summary")

	if pa.buffered != nil {
		assertBig(t, pa.buffered, summary.Buffered, "buffered mismatch")
	}
	if pa.reserved != nil {
		assertBig(t, pa.reserved, summary.Reserved, "reserved mismatch")
	}
	if pa.totalPooled != nil {
		assertBig(t, pa.totalPooled, summary.TotalPooled, "total pooled mismatch")
		pooled, err := pa.pool.TotalPooled()
		require.NoError(t, err)
		assertBig(t, pa.totalPooled, pooled, "total pooled view mismatch")
	}
	if pa.totalShares != nil {
		assertBig(t, pa.totalShares, summary.TotalShares, "total shares mismatch")
	}

	// the pool always holds exactly its buffered and reserved funds
	custody := new(big.Int).Add(summary.Buffered, summary.Reserved)
	assertBig(t, custody, summary.Custody, "custody mismatch")
}

type ValidatorAssertions struct {
	pool *Pool
	id   base.Address

	stake  *big.Int
	nonce  *uint64
	exited *bool
}

func AssertValidator(pool *Pool, i int) *ValidatorAssertions {
	return &ValidatorAssertions{pool: pool, id: validatorID(i)}
}

func (va *ValidatorAssertions) Stake(expected int64) *ValidatorAssertions {
	va.stake = big.NewInt(expected)
	return va
}

func (va *ValidatorAssertions) Nonce(expected uint64) *ValidatorAssertions {
	va.nonce = &expected
	return va
}

func (va *ValidatorAssertions) Exited(expected bool) *ValidatorAssertions {
	va.exited = &expected
	return va
}

func (va *ValidatorAssertions) Assert(t *testing.T) {
	view, err := va.pool.Validator(va.id)
	require.NoError(t, err, "failed to get validator %s", va.id)
	require.NotNil(t, view, "validator %s not registered", va.id)

	if va.stake != nil {
		assertBig(t, va.stake, view.Stake, "validator %s stake mismatch", va.id)
		assertBig(t, va.stake, view.HandleStake, "validator %s handle stake mismatch", va.id)
	}
	if va.nonce != nil {
		assert.Equal(t, *va.nonce, view.Nonce, "validator %s nonce mismatch", va.id)
	}
	if va.exited != nil {
		assert.Equal(t, *va.exited, view.Exited, "validator %s exited mismatch", va.id)
	}
}
