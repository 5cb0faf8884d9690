// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"github.com/holiman/uint256"

	"github.com/vechain/gemfarm/farm/checked"
)

// Tracker is a participant's view of one stream.
type Tracker struct {
	AccruedUnclaimed uint64
	TotalAccrued     uint64
	TotalClaimed     uint64

	// Cursor is the last per-gem accumulator value the participant was credited up to.
	Cursor uint256.Int
	// MadeWhole is set once a fixed-rate position has been settled on unstaking.
	MadeWhole bool
	// BeginTs is when the current fixed-rate position was opened.
	BeginTs uint64
}

// Position is the participant side of an accrual update.
type Position struct {
	Gems    uint64
	Tracker *Tracker
}

func (t *Tracker) credit(amount uint64) error {
	unclaimed, err := checked.Add(t.AccruedUnclaimed, amount)
	if err != nil {
		return err
	}
	total, err := checked.Add(t.TotalAccrued, amount)
	if err != nil {
		return err
	}
	t.AccruedUnclaimed = unclaimed
	t.TotalAccrued = total
	return nil
}

// Claim pays out everything credited so far.
func (t *Tracker) Claim() (uint64, error) {
	amount := t.AccruedUnclaimed
	if err := checked.AddAssign(&t.TotalClaimed, amount); err != nil {
		return 0, err
	}
	t.AccruedUnclaimed = 0
	return amount, nil
}
