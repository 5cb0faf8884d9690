// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"github.com/holiman/uint256"

	"github.com/vechain/gemfarm/farm/checked"
	"github.com/vechain/gemfarm/farm/reverts"
)

// VariableRate spreads whatever is pending evenly over the remaining window and
// shares each emission among the gems staked at the time.
type VariableRate struct {
	// AccruedPerGem is the cumulative reward per staked gem, scaled by Precision.
	AccruedPerGem uint256.Int
	LastUpdatedTs uint64
}

func (v *VariableRate) update(now uint64, funds *FundsTracker, times *TimeTracker, poolGems uint64, pos *Position) error {
	ub := times.UpperBound(now)
	if ub > v.LastUpdatedTs {
		// nothing is emitted while the pool is empty, the amount stays pending
		if poolGems > 0 {
			pending, err := funds.Pending()
			if err != nil {
				return err
			}
			emitted, err := checked.MulDiv(pending, ub-v.LastUpdatedTs, times.RewardEndTs-v.LastUpdatedTs)
			if err != nil {
				return err
			}
			gems := uint256.NewInt(poolGems)
			perGem, err := checked.MulDivU256(uint256.NewInt(emitted), Precision, gems, false)
			if err != nil {
				return err
			}
			// rounded up so the sum of participant credits never exceeds the accrued total
			accrued, err := checked.MulDivU256(perGem, gems, Precision, true)
			if err != nil {
				return err
			}
			acc, err := checked.AddU256(&v.AccruedPerGem, perGem)
			if err != nil {
				return err
			}
			if err := funds.Accrue(accrued.Uint64()); err != nil {
				return err
			}
			v.AccruedPerGem = *acc
		}
		v.LastUpdatedTs = ub
	}

	if pos == nil {
		return nil
	}
	delta, err := checked.SubU256(&v.AccruedPerGem, &pos.Tracker.Cursor)
	if err != nil {
		return reverts.New(reverts.BookkeepingInvariantViolated, 0, "participant cursor ahead of stream")
	}
	amount, err := checked.MulDivU256(delta, uint256.NewInt(pos.Gems), Precision, false)
	if err != nil {
		return err
	}
	credit, err := checked.ToUint64(amount)
	if err != nil {
		return err
	}
	if err := pos.Tracker.credit(credit); err != nil {
		return err
	}
	pos.Tracker.Cursor = v.AccruedPerGem
	return nil
}

func (v *VariableRate) fund(now, amount, duration uint64, funds *FundsTracker, times *TimeTracker) error {
	if err := funds.Fund(amount); err != nil {
		return err
	}
	if err := times.ExtendOrReset(now, duration); err != nil {
		return err
	}
	v.LastUpdatedTs = now
	return nil
}

func (v *VariableRate) cancel(now uint64, funds *FundsTracker, times *TimeTracker) (uint64, error) {
	refund, err := funds.Pending()
	if err != nil {
		return 0, err
	}
	if err := funds.Refund(refund); err != nil {
		return 0, err
	}
	if err := times.EndNow(now); err != nil {
		return 0, err
	}
	v.LastUpdatedTs = min(v.LastUpdatedTs, times.RewardEndTs)
	return refund, nil
}
