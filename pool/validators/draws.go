// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validators

import (
	"math/big"
	"sort"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/base"
)

// Candidate is a validator stake that can be drawn from, listed in registration order.
type Candidate struct {
	ID    base.Address
	Stake *big.Int
}

// Draw is an amount to undelegate from one validator.
type Draw struct {
	ID     base.Address
	Amount *big.Int
}

// Mean returns floor(Σ stake / len(candidates)).
func Mean(candidates []Candidate) *big.Int {
	if len(candidates) == 0 {
		return new(big.Int)
	}
	sum := new(big.Int)
	for _, c := range candidates {
		sum.Add(sum, c.Stake)
	}
	return sum.Quo(sum, big.NewInt(int64(len(candidates))))
}

// PlanDraws spreads amount over the candidates so that stake converges to the mean.
//
// Validators above the mean are drawn down to it first, largest deviation first. Anything still
// owed is then taken proportionally to the remaining stakes, and the truncation remainder is handed
// out one unit at a time, largest stake first. Ties go to the earlier registered validator.
// A validator may appear twice: once for each phase it is drawn in.
func PlanDraws(candidates []Candidate, amount *big.Int) ([]Draw, error) {
	stakes := make([]*big.Int, len(candidates))
	total := new(big.Int)
	for i, c := range candidates {
		stakes[i] = new(big.Int).Set(c.Stake)
		total.Add(total, c.Stake)
	}
	if total.Cmp(amount) < 0 {
		return nil, errors.Errorf("cannot draw %v from a total stake of %v", amount, total)
	}

	var (
		draws     []Draw
		remaining = new(big.Int).Set(amount)
		mean      = Mean(candidates)
	)

	// unbalanced phase
	above := make([]int, 0, len(candidates))
	for i := range candidates {
		if stakes[i].Cmp(mean) > 0 {
			above = append(above, i)
		}
	}
	sort.SliceStable(above, func(a, b int) bool {
		return stakes[above[a]].Cmp(stakes[above[b]]) > 0
	})
	for _, i := range above {
		if remaining.Sign() == 0 {
			break
		}
		d := new(big.Int).Sub(stakes[i], mean)
		if d.Cmp(remaining) > 0 {
			d.Set(remaining)
		}
		stakes[i].Sub(stakes[i], d)
		remaining.Sub(remaining, d)
		draws = append(draws, Draw{ID: candidates[i].ID, Amount: d})
	}
	if remaining.Sign() == 0 {
		return draws, nil
	}

	// balanced phase
	total.SetInt64(0)
	for _, s := range stakes {
		total.Add(total, s)
	}
	parts := make([]*big.Int, len(candidates))
	left := new(big.Int).Set(remaining)
	for i := range candidates {
		parts[i] = new(big.Int).Mul(remaining, stakes[i])
		parts[i].Quo(parts[i], total)
		left.Sub(left, parts[i])
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return stakes[order[a]].Cmp(stakes[order[b]]) > 0
	})
	one := big.NewInt(1)
	for left.Sign() > 0 {
		progressed := false
		for _, i := range order {
			if left.Sign() == 0 {
				break
			}
			if parts[i].Cmp(stakes[i]) >= 0 {
				continue
			}
			parts[i].Add(parts[i], one)
			left.Sub(left, one)
			progressed = true
		}
		if !progressed {
			return nil, errors.New("draw remainder exceeds stake")
		}
	}

	for i, part := range parts {
		if part.Sign() > 0 {
			draws = append(draws, Draw{ID: candidates[i].ID, Amount: part})
		}
	}
	return draws, nil
}
