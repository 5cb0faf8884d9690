// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/vechain/gemfarm/farm/reward"
)

type State uint8

const (
	Unstaked State = iota
	Staked
	PendingCooldown
)

func (s State) String() string {
	switch s {
	case Unstaked:
		return "unstaked"
	case Staked:
		return "staked"
	case PendingCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// Participant is a farmer of one pool.
type Participant struct {
	Owner common.Address
	State State

	GemsStaked       uint64
	BeginStakingTs   uint64
	MinStakingEndsTs uint64
	CooldownEndsTs   uint64
	// CooldownGems are the gems on their way out, still locked in the vault.
	CooldownGems uint64

	RewardA reward.Tracker
	RewardB reward.Tracker
}

func NewParticipant(owner common.Address) *Participant {
	return &Participant{Owner: owner}
}

// Clone returns a deep copy.
func (p *Participant) Clone() *Participant {
	c := *p
	return &c
}

// LockedGems are the gems the vault must hold back.
func (p *Participant) LockedGems() uint64 {
	return p.GemsStaked + p.CooldownGems
}
