// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

// ExtraStakePolicy decides how adding gems to a live position affects the
// minimum staking period.
type ExtraStakePolicy uint8

const (
	// KeepClock leaves the minimum period running from the original stake.
	KeepClock ExtraStakePolicy = iota
	// ResetClock restarts the minimum period for the whole position.
	ResetClock
)

func (p ExtraStakePolicy) String() string {
	if p == ResetClock {
		return "reset"
	}
	return "keep"
}

// ParseExtraStakePolicy accepts "keep", "reset" or an empty string (keep).
func ParseExtraStakePolicy(s string) (ExtraStakePolicy, bool) {
	switch s {
	case "", "keep":
		return KeepClock, true
	case "reset":
		return ResetClock, true
	default:
		return 0, false
	}
}

// Config is fixed when the pool is created.
type Config struct {
	MinStakingPeriodSec uint64
	CooldownPeriodSec   uint64
	// UnstakingFee is charged through custody whenever a position is closed.
	UnstakingFee     uint64
	ExtraStakePolicy ExtraStakePolicy
}
