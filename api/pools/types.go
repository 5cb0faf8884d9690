// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/gemfarm/farm"
	"github.com/vechain/gemfarm/farm/reward"
)

type Config struct {
	MinStakingPeriodSec math.HexOrDecimal64 `json:"minStakingPeriodSec"`
	CooldownPeriodSec   math.HexOrDecimal64 `json:"cooldownPeriodSec"`
	UnstakingFee        math.HexOrDecimal64 `json:"unstakingFee"`
	ExtraStakePolicy    string              `json:"extraStakePolicy"`
}

type StreamSpec struct {
	Asset common.Address `json:"asset"`
	Kind  string         `json:"kind"`
}

type CreatePool struct {
	Pool    common.Address `json:"pool"`
	Manager common.Address `json:"manager"`
	Config  Config         `json:"config"`
	RewardA StreamSpec     `json:"rewardA"`
	RewardB StreamSpec     `json:"rewardB"`
}

// Caller names the account acting on a manager or funder operation.
type Caller struct {
	Caller common.Address `json:"caller"`
}

type FunderChange struct {
	Caller common.Address `json:"caller"`
	Funder common.Address `json:"funder"`
}

type Fund struct {
	Funder      common.Address      `json:"funder"`
	Amount      math.HexOrDecimal64 `json:"amount"`
	DurationSec math.HexOrDecimal64 `json:"durationSec"`
	GemsFunded  math.HexOrDecimal64 `json:"gemsFunded"`
}

type StakeExtra struct {
	Gems math.HexOrDecimal64 `json:"gems"`
}

type Amount struct {
	Amount uint64 `json:"amount"`
}

type Unstake struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Gems     uint64 `json:"gems"`
	Released uint64 `json:"released"`
	Fee      uint64 `json:"fee"`
}

type Stream struct {
	Asset          common.Address `json:"asset"`
	Kind           string         `json:"kind"`
	TotalFunded    uint64         `json:"totalFunded"`
	TotalRefunded  uint64         `json:"totalRefunded"`
	TotalAccrued   uint64         `json:"totalAccrued"`
	DurationSec    uint64         `json:"durationSec"`
	RewardEndTs    uint64         `json:"rewardEndTs"`
	LockEndTs      uint64         `json:"lockEndTs"`
	AccruedPerGem  string         `json:"accruedPerGem"`
	LastUpdatedTs  uint64         `json:"lastUpdatedTs"`
	RatePerGem     string         `json:"ratePerGem,omitempty"`
	ReservedAmount uint64         `json:"reservedAmount,omitempty"`
	GemsEnrolled   uint64         `json:"gemsParticipating,omitempty"`
	GemsMadeWhole  uint64         `json:"gemsMadeWhole,omitempty"`
}

type Pool struct {
	Pool                   common.Address `json:"pool"`
	Version                uint16         `json:"version"`
	Manager                common.Address `json:"manager"`
	Config                 Config         `json:"config"`
	ParticipantCount       uint64         `json:"participantCount"`
	StakedParticipantCount uint64         `json:"stakedParticipantCount"`
	GemsStaked             uint64         `json:"gemsStaked"`
	AuthorizedFunderCount  uint64         `json:"authorizedFunderCount"`
	RewardA                Stream         `json:"rewardA"`
	RewardB                Stream         `json:"rewardB"`
}

type Tracker struct {
	AccruedUnclaimed uint64 `json:"accruedUnclaimed"`
	TotalAccrued     uint64 `json:"totalAccrued"`
	TotalClaimed     uint64 `json:"totalClaimed"`
	MadeWhole        bool   `json:"madeWhole"`
}

type Farmer struct {
	Owner            common.Address `json:"owner"`
	State            string         `json:"state"`
	GemsStaked       uint64         `json:"gemsStaked"`
	BeginStakingTs   uint64         `json:"beginStakingTs"`
	MinStakingEndsTs uint64         `json:"minStakingEndsTs"`
	CooldownEndsTs   uint64         `json:"cooldownEndsTs"`
	CooldownGems     uint64         `json:"cooldownGems"`
	RewardA          Tracker        `json:"rewardA"`
	RewardB          Tracker        `json:"rewardB"`
}

type Receipt struct {
	Funder         common.Address `json:"funder"`
	Asset          common.Address `json:"asset"`
	TotalDeposited uint64         `json:"totalDeposited"`
	TotalRefunded  uint64         `json:"totalRefunded"`
	LastFundedTs   uint64         `json:"lastFundedTs"`
}

func convertConfig(c farm.Config) Config {
	return Config{
		MinStakingPeriodSec: math.HexOrDecimal64(c.MinStakingPeriodSec),
		CooldownPeriodSec:   math.HexOrDecimal64(c.CooldownPeriodSec),
		UnstakingFee:        math.HexOrDecimal64(c.UnstakingFee),
		ExtraStakePolicy:    c.ExtraStakePolicy.String(),
	}
}

func convertStream(s *reward.Stream) Stream {
	out := Stream{
		Asset:         s.AssetID,
		Kind:          s.Kind.String(),
		TotalFunded:   s.Funds.TotalFunded,
		TotalRefunded: s.Funds.TotalRefunded,
		TotalAccrued:  s.Funds.TotalAccrued,
		DurationSec:   s.Times.DurationSec,
		RewardEndTs:   s.Times.RewardEndTs,
		LockEndTs:     s.Times.LockEndTs,
	}
	switch s.Kind {
	case reward.Fixed:
		out.AccruedPerGem = s.Fixed.AccruedPerGem.Dec()
		out.LastUpdatedTs = s.Fixed.LastUpdatedTs
		out.RatePerGem = s.Fixed.RatePerGem.Dec()
		out.ReservedAmount = s.Fixed.ReservedAmount
		out.GemsEnrolled = s.Fixed.GemsParticipating
		out.GemsMadeWhole = s.Fixed.GemsMadeWhole
	default:
		out.AccruedPerGem = s.Variable.AccruedPerGem.Dec()
		out.LastUpdatedTs = s.Variable.LastUpdatedTs
	}
	return out
}

func convertPool(id common.Address, p *farm.Pool) *Pool {
	return &Pool{
		Pool:                   id,
		Version:                p.Version,
		Manager:                p.Manager,
		Config:                 convertConfig(p.Config),
		ParticipantCount:       p.ParticipantCount,
		StakedParticipantCount: p.StakedParticipantCount,
		GemsStaked:             p.GemsStaked,
		AuthorizedFunderCount:  p.AuthorizedFunderCount,
		RewardA:                convertStream(&p.RewardA),
		RewardB:                convertStream(&p.RewardB),
	}
}

func convertTracker(t *reward.Tracker) Tracker {
	return Tracker{
		AccruedUnclaimed: t.AccruedUnclaimed,
		TotalAccrued:     t.TotalAccrued,
		TotalClaimed:     t.TotalClaimed,
		MadeWhole:        t.MadeWhole,
	}
}

func convertFarmer(f *farm.Participant) *Farmer {
	return &Farmer{
		Owner:            f.Owner,
		State:            f.State.String(),
		GemsStaked:       f.GemsStaked,
		BeginStakingTs:   f.BeginStakingTs,
		MinStakingEndsTs: f.MinStakingEndsTs,
		CooldownEndsTs:   f.CooldownEndsTs,
		CooldownGems:     f.CooldownGems,
		RewardA:          convertTracker(&f.RewardA),
		RewardB:          convertTracker(&f.RewardB),
	}
}
