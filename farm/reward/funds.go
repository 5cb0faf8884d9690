// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"github.com/vechain/gemfarm/farm/checked"
	"github.com/vechain/gemfarm/farm/reverts"
)

// FundsTracker keeps the three running totals of a stream. All of them only grow.
type FundsTracker struct {
	TotalFunded   uint64
	TotalRefunded uint64
	TotalAccrued  uint64
}

func (f *FundsTracker) Fund(amount uint64) error {
	return checked.AddAssign(&f.TotalFunded, amount)
}

func (f *FundsTracker) Refund(amount uint64) error {
	return checked.AddAssign(&f.TotalRefunded, amount)
}

func (f *FundsTracker) Accrue(amount uint64) error {
	return checked.AddAssign(&f.TotalAccrued, amount)
}

// Pending returns the funded amount neither refunded nor accrued yet.
func (f *FundsTracker) Pending() (uint64, error) {
	left, err := checked.Sub(f.TotalFunded, f.TotalRefunded)
	if err == nil {
		left, err = checked.Sub(left, f.TotalAccrued)
	}
	if err != nil {
		return 0, reverts.New(reverts.BookkeepingInvariantViolated, f.TotalFunded,
			"funded %d < refunded %d + accrued %d", f.TotalFunded, f.TotalRefunded, f.TotalAccrued)
	}
	return left, nil
}
