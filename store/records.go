// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package store

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/farm"
	"github.com/vechain/gemfarm/farm/reward"
)

// recordVersion prefixes every encoded record.
const recordVersion byte = 1

func encode(v any) ([]byte, error) {
	data, err := rlp.EncodeToBytes(v)
	if err != nil {
		return nil, err
	}
	return append([]byte{recordVersion}, data...), nil
}

func decode(data []byte, v any) error {
	if len(data) == 0 {
		return errors.New("empty record")
	}
	if data[0] != recordVersion {
		return errors.Errorf("unsupported record version %d", data[0])
	}
	return rlp.DecodeBytes(data[1:], v)
}

type streamRecord struct {
	AssetID common.Address
	Kind    uint8

	TotalFunded   uint64
	TotalRefunded uint64
	TotalAccrued  uint64

	DurationSec uint64
	RewardEndTs uint64
	LockEndTs   uint64

	GemsParticipating  uint64
	GemsMadeWhole      uint64
	RatePerGem         *uint256.Int
	FixedAccruedPerGem *uint256.Int
	FixedLastUpdatedTs uint64
	ReservedAmount     uint64

	VariableAccruedPerGem *uint256.Int
	VariableLastUpdatedTs uint64
}

type poolRecord struct {
	Version uint16
	Manager common.Address

	MinStakingPeriodSec uint64
	CooldownPeriodSec   uint64
	UnstakingFee        uint64
	ExtraStakePolicy    uint8

	ParticipantCount       uint64
	StakedParticipantCount uint64
	GemsStaked             uint64
	AuthorizedFunderCount  uint64

	RewardA streamRecord
	RewardB streamRecord
}

type trackerRecord struct {
	AccruedUnclaimed uint64
	TotalAccrued     uint64
	TotalClaimed     uint64
	Cursor           *uint256.Int
	MadeWhole        bool
	BeginTs          uint64
}

type participantRecord struct {
	Owner            common.Address
	State            uint8
	GemsStaked       uint64
	BeginStakingTs   uint64
	MinStakingEndsTs uint64
	CooldownEndsTs   uint64
	CooldownGems     uint64
	RewardA          trackerRecord
	RewardB          trackerRecord
}

func u256(v uint256.Int) *uint256.Int { return &v }

func fromStream(s *reward.Stream) streamRecord {
	return streamRecord{
		AssetID:               s.AssetID,
		Kind:                  uint8(s.Kind),
		TotalFunded:           s.Funds.TotalFunded,
		TotalRefunded:         s.Funds.TotalRefunded,
		TotalAccrued:          s.Funds.TotalAccrued,
		DurationSec:           s.Times.DurationSec,
		RewardEndTs:           s.Times.RewardEndTs,
		LockEndTs:             s.Times.LockEndTs,
		GemsParticipating:     s.Fixed.GemsParticipating,
		GemsMadeWhole:         s.Fixed.GemsMadeWhole,
		RatePerGem:            u256(s.Fixed.RatePerGem),
		FixedAccruedPerGem:    u256(s.Fixed.AccruedPerGem),
		FixedLastUpdatedTs:    s.Fixed.LastUpdatedTs,
		ReservedAmount:        s.Fixed.ReservedAmount,
		VariableAccruedPerGem: u256(s.Variable.AccruedPerGem),
		VariableLastUpdatedTs: s.Variable.LastUpdatedTs,
	}
}

func (r *streamRecord) stream() reward.Stream {
	return reward.Stream{
		AssetID: r.AssetID,
		Kind:    reward.Kind(r.Kind),
		Funds: reward.FundsTracker{
			TotalFunded:   r.TotalFunded,
			TotalRefunded: r.TotalRefunded,
			TotalAccrued:  r.TotalAccrued,
		},
		Times: reward.TimeTracker{
			DurationSec: r.DurationSec,
			RewardEndTs: r.RewardEndTs,
			LockEndTs:   r.LockEndTs,
		},
		Fixed: reward.FixedRate{
			GemsParticipating: r.GemsParticipating,
			GemsMadeWhole:     r.GemsMadeWhole,
			RatePerGem:        *r.RatePerGem,
			AccruedPerGem:     *r.FixedAccruedPerGem,
			LastUpdatedTs:     r.FixedLastUpdatedTs,
			ReservedAmount:    r.ReservedAmount,
		},
		Variable: reward.VariableRate{
			AccruedPerGem: *r.VariableAccruedPerGem,
			LastUpdatedTs: r.VariableLastUpdatedTs,
		},
	}
}

func fromPool(p *farm.Pool) *poolRecord {
	return &poolRecord{
		Version:                p.Version,
		Manager:                p.Manager,
		MinStakingPeriodSec:    p.Config.MinStakingPeriodSec,
		CooldownPeriodSec:      p.Config.CooldownPeriodSec,
		UnstakingFee:           p.Config.UnstakingFee,
		ExtraStakePolicy:       uint8(p.Config.ExtraStakePolicy),
		ParticipantCount:       p.ParticipantCount,
		StakedParticipantCount: p.StakedParticipantCount,
		GemsStaked:             p.GemsStaked,
		AuthorizedFunderCount:  p.AuthorizedFunderCount,
		RewardA:                fromStream(&p.RewardA),
		RewardB:                fromStream(&p.RewardB),
	}
}

func (r *poolRecord) pool() *farm.Pool {
	return &farm.Pool{
		Version: r.Version,
		Manager: r.Manager,
		Config: farm.Config{
			MinStakingPeriodSec: r.MinStakingPeriodSec,
			CooldownPeriodSec:   r.CooldownPeriodSec,
			UnstakingFee:        r.UnstakingFee,
			ExtraStakePolicy:    farm.ExtraStakePolicy(r.ExtraStakePolicy),
		},
		ParticipantCount:       r.ParticipantCount,
		StakedParticipantCount: r.StakedParticipantCount,
		GemsStaked:             r.GemsStaked,
		AuthorizedFunderCount:  r.AuthorizedFunderCount,
		RewardA:                r.RewardA.stream(),
		RewardB:                r.RewardB.stream(),
	}
}

func fromTracker(t *reward.Tracker) trackerRecord {
	return trackerRecord{
		AccruedUnclaimed: t.AccruedUnclaimed,
		TotalAccrued:     t.TotalAccrued,
		TotalClaimed:     t.TotalClaimed,
		Cursor:           u256(t.Cursor),
		MadeWhole:        t.MadeWhole,
		BeginTs:          t.BeginTs,
	}
}

func (r *trackerRecord) tracker() reward.Tracker {
	return reward.Tracker{
		AccruedUnclaimed: r.AccruedUnclaimed,
		TotalAccrued:     r.TotalAccrued,
		TotalClaimed:     r.TotalClaimed,
		Cursor:           *r.Cursor,
		MadeWhole:        r.MadeWhole,
		BeginTs:          r.BeginTs,
	}
}

func fromParticipant(f *farm.Participant) *participantRecord {
	return &participantRecord{
		Owner:            f.Owner,
		State:            uint8(f.State),
		GemsStaked:       f.GemsStaked,
		BeginStakingTs:   f.BeginStakingTs,
		MinStakingEndsTs: f.MinStakingEndsTs,
		CooldownEndsTs:   f.CooldownEndsTs,
		CooldownGems:     f.CooldownGems,
		RewardA:          fromTracker(&f.RewardA),
		RewardB:          fromTracker(&f.RewardB),
	}
}

func (r *participantRecord) participant() *farm.Participant {
	return &farm.Participant{
		Owner:            r.Owner,
		State:            farm.State(r.State),
		GemsStaked:       r.GemsStaked,
		BeginStakingTs:   r.BeginStakingTs,
		MinStakingEndsTs: r.MinStakingEndsTs,
		CooldownEndsTs:   r.CooldownEndsTs,
		CooldownGems:     r.CooldownGems,
		RewardA:          r.RewardA.tracker(),
		RewardB:          r.RewardB.tracker(),
	}
}

// Funder is an account authorized to fund a pool.
type Funder struct {
	Address      common.Address
	AuthorizedAt uint64
}

// FundingReceipt records what a funder put into and got back from one stream.
type FundingReceipt struct {
	Funder         common.Address
	AssetID        common.Address
	TotalDeposited uint64
	TotalRefunded  uint64
	LastFundedTs   uint64
}
