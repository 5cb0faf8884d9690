// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"github.com/vechain/gemfarm/farm/checked"
	"github.com/vechain/gemfarm/farm/reverts"
)

// TimeTracker holds the active window and the lock window of a stream, in unix seconds.
type TimeTracker struct {
	DurationSec uint64
	RewardEndTs uint64
	LockEndTs   uint64
}

// RemainingDuration saturates at zero once the stream has ended.
func (t *TimeTracker) RemainingDuration(now uint64) uint64 {
	if now >= t.RewardEndTs {
		return 0
	}
	return t.RewardEndTs - now
}

func (t *TimeTracker) Elapsed(now uint64) (uint64, error) {
	return checked.Sub(t.DurationSec, t.RemainingDuration(now))
}

// UpperBound is the latest instant rewards may accrue for, as of now.
func (t *TimeTracker) UpperBound(now uint64) uint64 {
	return min(now, t.RewardEndTs)
}

func (t *TimeTracker) IsLocked(now uint64) bool {
	return now < t.LockEndTs
}

// StartTs is the instant the current window opened.
func (t *TimeTracker) StartTs() uint64 {
	if t.DurationSec > t.RewardEndTs {
		return 0
	}
	return t.RewardEndTs - t.DurationSec
}

// ExtendOrReset opens a new window of duration seconds starting now.
func (t *TimeTracker) ExtendOrReset(now, duration uint64) error {
	end, err := checked.Add(now, duration)
	if err != nil {
		return err
	}
	t.RewardEndTs = end
	t.DurationSec = duration
	return nil
}

// EndNow closes a running window at now. An ended window is left untouched.
func (t *TimeTracker) EndNow(now uint64) error {
	remaining := t.RemainingDuration(now)
	if remaining == 0 {
		return nil
	}
	duration, err := checked.Sub(t.DurationSec, remaining)
	if err != nil {
		return reverts.New(reverts.BookkeepingInvariantViolated, remaining,
			"remaining %d exceeds duration %d", remaining, t.DurationSec)
	}
	t.DurationSec = duration
	t.RewardEndTs = now
	return nil
}

// Lock freezes the window until its current end.
func (t *TimeTracker) Lock() {
	t.LockEndTs = max(t.LockEndTs, t.RewardEndTs)
}
