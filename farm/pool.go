// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/vechain/gemfarm/farm/checked"
	"github.com/vechain/gemfarm/farm/reverts"
	"github.com/vechain/gemfarm/farm/reward"
)

// LatestPoolVersion is the record version written by this code.
const LatestPoolVersion uint16 = 1

// StreamSpec configures one of the two reward streams at creation.
type StreamSpec struct {
	AssetID common.Address
	Kind    reward.Kind
}

// Pool is a farm: the staked gem aggregates and the two reward streams.
// Methods are not safe for concurrent use and must be applied to a clone when
// the caller needs to discard the outcome on failure.
type Pool struct {
	Version uint16
	Manager common.Address
	Config  Config

	ParticipantCount       uint64
	StakedParticipantCount uint64
	GemsStaked             uint64
	AuthorizedFunderCount  uint64

	RewardA reward.Stream
	RewardB reward.Stream
}

func New(manager common.Address, cfg Config, a, b StreamSpec) (*Pool, error) {
	if a.AssetID == b.AssetID {
		return nil, reverts.New(reverts.DuplicateRewardAsset, 0, "both streams pay %s", a.AssetID.Hex())
	}
	streamA, err := reward.NewStream(a.AssetID, a.Kind)
	if err != nil {
		return nil, err
	}
	streamB, err := reward.NewStream(b.AssetID, b.Kind)
	if err != nil {
		return nil, err
	}
	return &Pool{
		Version: LatestPoolVersion,
		Manager: manager,
		Config:  cfg,
		RewardA: streamA,
		RewardB: streamB,
	}, nil
}

// Clone returns a deep copy.
func (p *Pool) Clone() *Pool {
	c := *p
	return &c
}

func (p *Pool) streams() [2]*reward.Stream {
	return [2]*reward.Stream{&p.RewardA, &p.RewardB}
}

func (f *Participant) trackers() [2]*reward.Tracker {
	return [2]*reward.Tracker{&f.RewardA, &f.RewardB}
}

// Stream returns the stream paying asset.
func (p *Pool) Stream(asset common.Address) (*reward.Stream, error) {
	_, s, err := p.match(asset)
	return s, err
}

func (p *Pool) match(asset common.Address) (int, *reward.Stream, error) {
	for i, s := range p.streams() {
		if s.AssetID == asset {
			return i, s, nil
		}
	}
	return 0, nil, reverts.New(reverts.UnknownRewardAsset, 0, "no stream pays %s", asset.Hex())
}

// UpdateRewards brings both streams up to now, crediting farmer when given.
// Every state change goes through here first, using the state as it was before
// the change.
func (p *Pool) UpdateRewards(now uint64, farmer *Participant) error {
	var trackers [2]*reward.Tracker
	if farmer != nil {
		trackers = farmer.trackers()
	}
	for i, s := range p.streams() {
		var pos *reward.Position
		if farmer != nil {
			pos = &reward.Position{Gems: farmer.GemsStaked, Tracker: trackers[i]}
		}
		if err := s.Update(now, p.GemsStaked, pos); err != nil {
			return err
		}
	}
	return nil
}

// Fund adds rewards to the stream paying asset.
func (p *Pool) Fund(now uint64, asset common.Address, params reward.FundParams) error {
	s, err := p.Stream(asset)
	if err != nil {
		return err
	}
	if err := p.UpdateRewards(now, nil); err != nil {
		return err
	}
	return s.Fund(now, params)
}

// Cancel ends the stream paying asset and returns what the funder gets back.
func (p *Pool) Cancel(now uint64, asset common.Address) (uint64, error) {
	s, err := p.Stream(asset)
	if err != nil {
		return 0, err
	}
	if err := p.UpdateRewards(now, nil); err != nil {
		return 0, err
	}
	return s.Cancel(now)
}

// Lock freezes the stream paying asset until its window closes. There is no unlock.
func (p *Pool) Lock(asset common.Address) error {
	s, err := p.Stream(asset)
	if err != nil {
		return err
	}
	s.Lock()
	return nil
}

// Register counts a newly provisioned participant.
func (p *Pool) Register(farmer *Participant) error {
	if farmer.State != Unstaked || farmer.GemsStaked != 0 {
		return reverts.New(reverts.InvalidState, farmer.GemsStaked, "farmer %s is %s", farmer.Owner.Hex(), farmer.State)
	}
	return checked.AddAssign(&p.ParticipantCount, 1)
}

// BeginStaking opens a position of gems for an unstaked farmer.
func (p *Pool) BeginStaking(now uint64, farmer *Participant, gems uint64) error {
	if farmer.State != Unstaked {
		return reverts.New(reverts.InvalidState, uint64(farmer.State), "farmer %s is %s", farmer.Owner.Hex(), farmer.State)
	}
	if gems == 0 {
		return reverts.New(reverts.VaultEmpty, 0, "farmer %s has no gems", farmer.Owner.Hex())
	}
	if err := p.UpdateRewards(now, farmer); err != nil {
		return err
	}

	staked, err := checked.Add(p.GemsStaked, gems)
	if err != nil {
		return err
	}
	active, err := checked.Add(p.StakedParticipantCount, 1)
	if err != nil {
		return err
	}
	minEnd, err := checked.Add(now, p.Config.MinStakingPeriodSec)
	if err != nil {
		return err
	}
	trackers := farmer.trackers()
	for i, s := range p.streams() {
		if err := s.Enroll(now, gems, true, trackers[i]); err != nil {
			return err
		}
	}

	p.GemsStaked = staked
	p.StakedParticipantCount = active
	farmer.State = Staked
	farmer.GemsStaked = gems
	farmer.BeginStakingTs = now
	farmer.MinStakingEndsTs = minEnd
	return nil
}

// StakeExtra grows a live position by extra gems.
func (p *Pool) StakeExtra(now uint64, farmer *Participant, extra uint64) error {
	if farmer.State != Staked {
		return reverts.New(reverts.InvalidState, uint64(farmer.State), "farmer %s is %s", farmer.Owner.Hex(), farmer.State)
	}
	if extra == 0 {
		return reverts.New(reverts.VaultEmpty, 0, "no extra gems for farmer %s", farmer.Owner.Hex())
	}
	if err := p.UpdateRewards(now, farmer); err != nil {
		return err
	}

	staked, err := checked.Add(p.GemsStaked, extra)
	if err != nil {
		return err
	}
	gems, err := checked.Add(farmer.GemsStaked, extra)
	if err != nil {
		return err
	}
	minEnd := farmer.MinStakingEndsTs
	if p.Config.ExtraStakePolicy == ResetClock {
		if minEnd, err = checked.Add(now, p.Config.MinStakingPeriodSec); err != nil {
			return err
		}
	}
	trackers := farmer.trackers()
	for i, s := range p.streams() {
		if err := s.Enroll(now, extra, false, trackers[i]); err != nil {
			return err
		}
	}

	p.GemsStaked = staked
	farmer.GemsStaked = gems
	farmer.MinStakingEndsTs = minEnd
	return nil
}

// Unstake reports the outcome of EndStaking.
type Unstake struct {
	From State
	To   State
	// Gems left the pool aggregates during this call.
	Gems uint64
	// Released gems may be unlocked in the vault.
	Released uint64
	// Fee is the unstaking fee to charge.
	Fee uint64
}

// EndStaking moves a farmer one step towards Unstaked.
func (p *Pool) EndStaking(now uint64, farmer *Participant) (Unstake, error) {
	switch farmer.State {
	case Unstaked:
		return Unstake{From: Unstaked, To: Unstaked}, nil
	case Staked:
		return p.leave(now, farmer)
	case PendingCooldown:
		if now < farmer.CooldownEndsTs {
			return Unstake{}, reverts.New(reverts.CooldownNotElapsed, farmer.CooldownEndsTs-now,
				"farmer %s cools down until %d", farmer.Owner.Hex(), farmer.CooldownEndsTs)
		}
		released := farmer.CooldownGems
		farmer.CooldownGems = 0
		farmer.CooldownEndsTs = 0
		farmer.State = Unstaked
		return Unstake{From: PendingCooldown, To: Unstaked, Released: released}, nil
	default:
		return Unstake{}, reverts.New(reverts.InvalidState, uint64(farmer.State), "farmer %s is %s", farmer.Owner.Hex(), farmer.State)
	}
}

func (p *Pool) leave(now uint64, farmer *Participant) (Unstake, error) {
	if now < farmer.MinStakingEndsTs {
		return Unstake{}, reverts.New(reverts.MinStakingPeriodNotElapsed, farmer.MinStakingEndsTs-now,
			"farmer %s staked until %d", farmer.Owner.Hex(), farmer.MinStakingEndsTs)
	}
	if err := p.UpdateRewards(now, farmer); err != nil {
		return Unstake{}, err
	}

	gems := farmer.GemsStaked
	staked, err := checked.Sub(p.GemsStaked, gems)
	if err != nil {
		return Unstake{}, reverts.New(reverts.BookkeepingInvariantViolated, gems,
			"pool stakes %d, farmer %s leaves with %d", p.GemsStaked, farmer.Owner.Hex(), gems)
	}
	active, err := checked.Sub(p.StakedParticipantCount, 1)
	if err != nil {
		return Unstake{}, reverts.New(reverts.BookkeepingInvariantViolated, 0, "no staked farmer to remove")
	}
	cooldownEnd, err := checked.Add(now, p.Config.CooldownPeriodSec)
	if err != nil {
		return Unstake{}, err
	}
	trackers := farmer.trackers()
	for i, s := range p.streams() {
		if err := s.Withdraw(now, gems, trackers[i]); err != nil {
			return Unstake{}, err
		}
	}

	p.GemsStaked = staked
	p.StakedParticipantCount = active
	farmer.GemsStaked = 0
	out := Unstake{From: Staked, Gems: gems, Fee: p.Config.UnstakingFee}
	if p.Config.CooldownPeriodSec == 0 {
		farmer.State = Unstaked
		out.To = Unstaked
		out.Released = gems
	} else {
		farmer.State = PendingCooldown
		farmer.CooldownEndsTs = cooldownEnd
		farmer.CooldownGems = gems
		out.To = PendingCooldown
	}
	return out, nil
}

// Claim credits farmer up to now and pays out everything owed in asset.
func (p *Pool) Claim(now uint64, farmer *Participant, asset common.Address) (uint64, error) {
	i, _, err := p.match(asset)
	if err != nil {
		return 0, err
	}
	if err := p.UpdateRewards(now, farmer); err != nil {
		return 0, err
	}
	return farmer.trackers()[i].Claim()
}

// Refresh credits farmer up to now.
func (p *Pool) Refresh(now uint64, farmer *Participant) error {
	return p.UpdateRewards(now, farmer)
}

// CheckInvariants verifies the stream bookkeeping.
func (p *Pool) CheckInvariants() error {
	for _, s := range p.streams() {
		pending, err := s.Funds.Pending()
		if err != nil {
			return err
		}
		if s.Kind == reward.Fixed && s.Fixed.ReservedAmount > pending {
			return reverts.New(reverts.BookkeepingInvariantViolated, s.Fixed.ReservedAmount,
				"stream %s reserves %d of %d pending", s.AssetID.Hex(), s.Fixed.ReservedAmount, pending)
		}
	}
	return nil
}
