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

// FixedRate pays every participating gem the same per-second rate. Funds for a
// position are reserved when the position is opened (or when the stream is
// re-funded) so that a promised rate can always be honoured.
type FixedRate struct {
	GemsParticipating uint64
	GemsMadeWhole     uint64

	// RatePerGem is the reward per gem per second, scaled by Precision.
	RatePerGem uint256.Int
	// AccruedPerGem is the cumulative reward per participating gem at LastUpdatedTs, scaled by Precision.
	AccruedPerGem uint256.Int
	LastUpdatedTs uint64
	// ReservedAmount is promised to participating gems and not credited yet.
	ReservedAmount uint64
}

// accruedPerGemAt extrapolates the accumulator to ts.
func (f *FixedRate) accruedPerGemAt(ts uint64) (*uint256.Int, error) {
	if ts <= f.LastUpdatedTs {
		return new(uint256.Int).Set(&f.AccruedPerGem), nil
	}
	inc, err := checked.MulU256(&f.RatePerGem, uint256.NewInt(ts-f.LastUpdatedTs))
	if err != nil {
		return nil, err
	}
	return checked.AddU256(&f.AccruedPerGem, inc)
}

func (f *FixedRate) checkpoint(now uint64, times *TimeTracker) error {
	ub := times.UpperBound(now)
	acc, err := f.accruedPerGemAt(ub)
	if err != nil {
		return err
	}
	f.AccruedPerGem = *acc
	f.LastUpdatedTs = max(f.LastUpdatedTs, ub)
	return nil
}

// future is what gems earn from now until the window closes.
func (f *FixedRate) future(gems, now uint64, times *TimeTracker, roundUp bool) (uint64, error) {
	remaining := times.RemainingDuration(now)
	if gems == 0 || remaining == 0 || f.RatePerGem.IsZero() {
		return 0, nil
	}
	perGems, err := checked.MulU256(&f.RatePerGem, uint256.NewInt(gems))
	if err != nil {
		return 0, err
	}
	amount, err := checked.MulDivU256(perGems, uint256.NewInt(remaining), Precision, roundUp)
	if err != nil {
		return 0, err
	}
	return checked.ToUint64(amount)
}

func (f *FixedRate) release(amount uint64) error {
	if err := checked.SubAssign(&f.ReservedAmount, amount); err != nil {
		return reverts.New(reverts.BookkeepingInvariantViolated, amount,
			"release %d exceeds reserved %d", amount, f.ReservedAmount)
	}
	return nil
}

func (f *FixedRate) available(funds *FundsTracker) (uint64, error) {
	pending, err := funds.Pending()
	if err != nil {
		return 0, err
	}
	avail, err := checked.Sub(pending, f.ReservedAmount)
	if err != nil {
		return 0, reverts.New(reverts.BookkeepingInvariantViolated, f.ReservedAmount,
			"reserved %d exceeds pending %d", f.ReservedAmount, pending)
	}
	return avail, nil
}

// update credits a participant. The pool-wide update is a no-op: the accumulator
// is extrapolated on demand.
func (f *FixedRate) update(now uint64, funds *FundsTracker, times *TimeTracker, pos *Position) error {
	if pos == nil || pos.Tracker.MadeWhole {
		return nil
	}
	acc, err := f.accruedPerGemAt(times.UpperBound(now))
	if err != nil {
		return err
	}
	delta, err := checked.SubU256(acc, &pos.Tracker.Cursor)
	if err != nil {
		return reverts.New(reverts.BookkeepingInvariantViolated, 0, "participant cursor ahead of stream")
	}
	scaled, err := checked.MulDivU256(delta, uint256.NewInt(pos.Gems), Precision, false)
	if err != nil {
		return err
	}
	amount, err := checked.ToUint64(scaled)
	if err != nil {
		return err
	}
	if amount > 0 {
		if err := f.release(amount); err != nil {
			return err
		}
		if err := funds.Accrue(amount); err != nil {
			return err
		}
		if err := pos.Tracker.credit(amount); err != nil {
			return err
		}
	}
	pos.Tracker.Cursor = *acc
	return nil
}

func (f *FixedRate) fund(now uint64, params FundParams, funds *FundsTracker, times *TimeTracker) error {
	if err := f.checkpoint(now, times); err != nil {
		return err
	}
	promised, err := f.future(f.GemsParticipating, now, times, false)
	if err != nil {
		return err
	}
	if err := f.release(promised); err != nil {
		return err
	}
	if err := funds.Fund(params.Amount); err != nil {
		return err
	}
	avail, err := f.available(funds)
	if err != nil {
		return err
	}

	base := max(f.GemsParticipating, params.GemsFunded, 1)
	span, err := checked.MulU256(uint256.NewInt(params.DurationSec), uint256.NewInt(base))
	if err != nil {
		return err
	}
	rate, err := checked.MulDivU256(uint256.NewInt(avail), Precision, span, false)
	if err != nil {
		return err
	}
	if err := times.ExtendOrReset(now, params.DurationSec); err != nil {
		return err
	}
	f.RatePerGem = *rate
	f.LastUpdatedTs = now

	// current participants keep earning, at the new rate, for the new window
	promised, err = f.future(f.GemsParticipating, now, times, true)
	if err != nil {
		return err
	}
	return checked.AddAssign(&f.ReservedAmount, promised)
}

func (f *FixedRate) cancel(now uint64, funds *FundsTracker, times *TimeTracker) (uint64, error) {
	if err := f.checkpoint(now, times); err != nil {
		return 0, err
	}
	promised, err := f.future(f.GemsParticipating, now, times, false)
	if err != nil {
		return 0, err
	}
	if err := f.release(promised); err != nil {
		return 0, err
	}
	f.RatePerGem.Clear()
	if err := times.EndNow(now); err != nil {
		return 0, err
	}
	refund, err := f.available(funds)
	if err != nil {
		return 0, err
	}
	if err := funds.Refund(refund); err != nil {
		return 0, err
	}
	return refund, nil
}

// enroll opens (fresh) or grows a position by gems, reserving what they will earn.
func (f *FixedRate) enroll(now, gems uint64, fresh bool, funds *FundsTracker, times *TimeTracker, tr *Tracker) error {
	reserve, err := f.future(gems, now, times, true)
	if err != nil {
		return err
	}
	avail, err := f.available(funds)
	if err != nil {
		return err
	}
	if reserve > avail {
		return reverts.New(reverts.RewardUnderfunded, reserve-avail,
			"%d gems need %d, only %d available", gems, reserve, avail)
	}
	participating, err := checked.Add(f.GemsParticipating, gems)
	if err != nil {
		return err
	}
	if fresh || tr.MadeWhole {
		acc, err := f.accruedPerGemAt(times.UpperBound(now))
		if err != nil {
			return err
		}
		tr.Cursor = *acc
		tr.MadeWhole = false
		tr.BeginTs = now
	}
	f.ReservedAmount += reserve
	f.GemsParticipating = participating
	return nil
}

// makeWhole settles a position: what was earned has been credited, the
// unearned remainder goes back to the stream.
func (f *FixedRate) makeWhole(now, gems uint64, times *TimeTracker, tr *Tracker) error {
	if tr.MadeWhole {
		return nil
	}
	unearned, err := f.future(gems, now, times, false)
	if err != nil {
		return err
	}
	if err := f.release(unearned); err != nil {
		return err
	}
	participating, err := checked.Sub(f.GemsParticipating, gems)
	if err != nil {
		return reverts.New(reverts.BookkeepingInvariantViolated, gems,
			"%d gems leaving, %d participating", gems, f.GemsParticipating)
	}
	if err := checked.AddAssign(&f.GemsMadeWhole, gems); err != nil {
		return err
	}
	f.GemsParticipating = participating
	if participating == 0 {
		// rounding leftovers
		f.ReservedAmount = 0
	}
	tr.MadeWhole = true
	return nil
}
