// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/gemfarm/farm/reverts"
	"github.com/vechain/gemfarm/farm/reward"
)

var (
	alice = common.HexToAddress("0xa11ce")
	bob   = common.HexToAddress("0xb0b")
)

func TestNewPool(t *testing.T) {
	pool := newTestPool(t, Config{}, reward.Variable, reward.Fixed)
	assert.Equal(t, LatestPoolVersion, pool.Version)
	assert.Equal(t, manager, pool.Manager)

	_, err := New(manager, Config{}, StreamSpec{assetA, reward.Fixed}, StreamSpec{assetA, reward.Variable})
	assert.True(t, reverts.Is(err, reverts.DuplicateRewardAsset))

	_, err = New(manager, Config{}, StreamSpec{assetA, reward.Fixed}, StreamSpec{assetB, 0})
	assert.True(t, reverts.Is(err, reverts.InvalidState))
}

func TestVariableScenario(t *testing.T) {
	pool := newTestPool(t, Config{}, reward.Variable, reward.Fixed)

	NewSequence(pool).
		Fund(0, assetA, 1000, 1000).
		Stake(0, alice, 10).
		Refresh(500, alice).
		Assert(func(t *testing.T, _ *Pool, farmers map[common.Address]*Participant) {
			AssertFarmer(t, farmers, alice).AccruedA(t, 500)
		}).
		Stake(500, bob, 10).
		Refresh(1000, alice).
		Refresh(1000, bob).
		Assert(func(t *testing.T, pool *Pool, farmers map[common.Address]*Participant) {
			AssertFarmer(t, farmers, alice).AccruedA(t, 750).AccruedB(t, 0)
			AssertFarmer(t, farmers, bob).AccruedA(t, 250)
			assert.Equal(t, uint64(1000), pool.RewardA.Funds.TotalAccrued)
			assert.Equal(t, pool.RewardA.Funds.TotalFunded, pool.RewardA.Funds.TotalAccrued)
			assert.Equal(t, uint64(2), pool.ParticipantCount)
			assert.Equal(t, uint64(20), pool.GemsStaked)
		}).
		Run(t)
}

func TestFixedScenario(t *testing.T) {
	pool := newTestPool(t, Config{}, reward.Fixed, reward.Variable)

	NewSequence(pool).
		Fund(0, assetA, 100, 100).
		Stake(0, alice, 1).
		Refresh(50, alice).
		Assert(func(t *testing.T, _ *Pool, farmers map[common.Address]*Participant) {
			AssertFarmer(t, farmers, alice).AccruedA(t, 50)
		}).
		Unstake(50, alice).
		Assert(func(t *testing.T, pool *Pool, farmers map[common.Address]*Participant) {
			AssertFarmer(t, farmers, alice).State(t, Unstaked).Gems(t, 0).AccruedA(t, 50)
			assert.Equal(t, uint64(1), pool.RewardA.Fixed.GemsMadeWhole)
			assert.True(t, farmers[alice].RewardA.MadeWhole)
		}).
		Fund(60, assetA, 500, 100).
		Refresh(200, alice).
		Assert(func(t *testing.T, _ *Pool, farmers map[common.Address]*Participant) {
			AssertFarmer(t, farmers, alice).AccruedA(t, 50)
		}).
		Run(t)
}

func TestLifecycleRoundTrip(t *testing.T) {
	pool := newTestPool(t, Config{MinStakingPeriodSec: 10, CooldownPeriodSec: 20, UnstakingFee: 5}, reward.Variable, reward.Fixed)
	farmer := NewParticipant(alice)
	require.NoError(t, pool.Register(farmer))

	require.NoError(t, pool.BeginStaking(0, farmer, 3))
	assert.Equal(t, Staked, farmer.State)
	assert.Equal(t, uint64(10), farmer.MinStakingEndsTs)

	_, err := pool.EndStaking(5, farmer)
	assert.True(t, reverts.Is(err, reverts.MinStakingPeriodNotElapsed))
	var ve *reverts.ErrRevert
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, uint64(5), ve.Quantity())

	out, err := pool.EndStaking(10, farmer)
	require.NoError(t, err)
	assert.Equal(t, Unstake{From: Staked, To: PendingCooldown, Gems: 3, Fee: 5}, out)
	assert.Equal(t, PendingCooldown, farmer.State)
	assert.Equal(t, uint64(30), farmer.CooldownEndsTs)
	assert.Equal(t, uint64(3), farmer.LockedGems())
	assert.Zero(t, pool.GemsStaked)
	assert.Zero(t, pool.StakedParticipantCount)

	_, err = pool.EndStaking(20, farmer)
	assert.True(t, reverts.Is(err, reverts.CooldownNotElapsed))

	out, err = pool.EndStaking(30, farmer)
	require.NoError(t, err)
	assert.Equal(t, Unstake{From: PendingCooldown, To: Unstaked, Released: 3}, out)
	assert.Zero(t, farmer.LockedGems())

	// idempotent once unstaked
	out, err = pool.EndStaking(31, farmer)
	require.NoError(t, err)
	assert.Equal(t, Unstake{From: Unstaked, To: Unstaked}, out)

	require.NoError(t, pool.BeginStaking(40, farmer, 2))
	assert.Equal(t, uint64(2), pool.GemsStaked)
}

func TestNoCooldownUnstakesDirectly(t *testing.T) {
	pool := newTestPool(t, Config{}, reward.Variable, reward.Fixed)
	farmer := NewParticipant(alice)

	require.NoError(t, pool.BeginStaking(0, farmer, 3))
	out, err := pool.EndStaking(0, farmer)
	require.NoError(t, err)
	assert.Equal(t, Unstaked, out.To)
	assert.Equal(t, uint64(3), out.Released)
	assert.Equal(t, Unstaked, farmer.State)
}

func TestStakeExtraPolicies(t *testing.T) {
	for _, tc := range []struct {
		policy   ExtraStakePolicy
		earliest uint64
	}{
		{KeepClock, 100},
		{ResetClock, 150},
	} {
		t.Run(tc.policy.String(), func(t *testing.T) {
			pool := newTestPool(t, Config{MinStakingPeriodSec: 100, ExtraStakePolicy: tc.policy}, reward.Variable, reward.Fixed)
			farmer := NewParticipant(alice)

			require.NoError(t, pool.BeginStaking(0, farmer, 1))
			require.NoError(t, pool.StakeExtra(50, farmer, 2))
			assert.Equal(t, uint64(3), farmer.GemsStaked)
			assert.Equal(t, uint64(3), pool.GemsStaked)
			assert.Equal(t, uint64(3), pool.RewardB.Fixed.GemsParticipating)

			_, err := pool.EndStaking(tc.earliest-1, farmer)
			assert.True(t, reverts.Is(err, reverts.MinStakingPeriodNotElapsed))

			_, err = pool.EndStaking(tc.earliest, farmer)
			require.NoError(t, err)
		})
	}

	p, ok := ParseExtraStakePolicy("reset")
	assert.True(t, ok)
	assert.Equal(t, ResetClock, p)
	_, ok = ParseExtraStakePolicy("sometimes")
	assert.False(t, ok)
}

func TestStakeExtraAccruesFirst(t *testing.T) {
	pool := newTestPool(t, Config{}, reward.Variable, reward.Fixed)

	NewSequence(pool).
		Fund(0, assetA, 1000, 100).
		Stake(0, alice, 1).
		Stake(0, bob, 1).
		StakeExtra(50, alice, 2).
		Refresh(100, alice).
		Refresh(100, bob).
		Assert(func(t *testing.T, _ *Pool, farmers map[common.Address]*Participant) {
			// 250 each for the first half, then 375 / 125
			AssertFarmer(t, farmers, alice).AccruedA(t, 625)
			AssertFarmer(t, farmers, bob).AccruedA(t, 375)
		}).
		Run(t)
}

func TestInvalidTransitions(t *testing.T) {
	pool := newTestPool(t, Config{}, reward.Variable, reward.Fixed)

	NewSequence(pool).
		ExpectRevert(reverts.VaultEmpty, func(p *Pool, _ map[common.Address]*Participant) error {
			return p.BeginStaking(0, NewParticipant(alice), 0)
		}).
		ExpectRevert(reverts.InvalidState, func(p *Pool, _ map[common.Address]*Participant) error {
			return p.StakeExtra(0, NewParticipant(alice), 1)
		}).
		Stake(0, alice, 1).
		ExpectRevert(reverts.InvalidState, func(p *Pool, farmers map[common.Address]*Participant) error {
			return p.BeginStaking(0, farmers[alice], 1)
		}).
		ExpectRevert(reverts.VaultEmpty, func(p *Pool, farmers map[common.Address]*Participant) error {
			return p.StakeExtra(0, farmers[alice], 0)
		}).
		ExpectRevert(reverts.InvalidState, func(p *Pool, farmers map[common.Address]*Participant) error {
			return p.Register(farmers[alice])
		}).
		Run(t)
}

func TestUnknownRewardAsset(t *testing.T) {
	pool := newTestPool(t, Config{}, reward.Variable, reward.Fixed)
	other := common.HexToAddress("0xcccc")

	err := pool.Fund(0, other, reward.FundParams{Amount: 1, DurationSec: 1})
	assert.True(t, reverts.Is(err, reverts.UnknownRewardAsset))
	_, err = pool.Cancel(0, other)
	assert.True(t, reverts.Is(err, reverts.UnknownRewardAsset))
	assert.True(t, reverts.Is(pool.Lock(other), reverts.UnknownRewardAsset))
	_, err = pool.Claim(0, NewParticipant(alice), other)
	assert.True(t, reverts.Is(err, reverts.UnknownRewardAsset))
}

func TestLockIsIrreversible(t *testing.T) {
	pool := newTestPool(t, Config{}, reward.Variable, reward.Fixed)

	require.NoError(t, pool.Fund(0, assetA, reward.FundParams{Amount: 100, DurationSec: 100}))
	require.NoError(t, pool.Lock(assetA))

	for _, now := range []uint64{1, 50, 99} {
		err := pool.Fund(now, assetA, reward.FundParams{Amount: 1, DurationSec: 1})
		assert.True(t, reverts.Is(err, reverts.RewardLocked))
		_, err = pool.Cancel(now, assetA)
		assert.True(t, reverts.Is(err, reverts.RewardLocked))
	}
	// the other stream is unaffected
	require.NoError(t, pool.Fund(10, assetB, reward.FundParams{Amount: 100, DurationSec: 100}))

	_, err := pool.Cancel(100, assetA)
	require.NoError(t, err)
}

func TestClaim(t *testing.T) {
	pool := newTestPool(t, Config{}, reward.Variable, reward.Fixed)
	farmer := NewParticipant(alice)

	require.NoError(t, pool.Fund(0, assetA, reward.FundParams{Amount: 100, DurationSec: 100}))
	require.NoError(t, pool.BeginStaking(0, farmer, 1))

	amount, err := pool.Claim(40, farmer, assetA)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), amount)
	assert.Zero(t, farmer.RewardA.AccruedUnclaimed)

	amount, err = pool.Claim(100, farmer, assetA)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), amount)
	assert.Equal(t, uint64(100), farmer.RewardA.TotalClaimed)
}

func TestCloneIsIndependent(t *testing.T) {
	pool := newTestPool(t, Config{}, reward.Variable, reward.Fixed)
	farmer := NewParticipant(alice)
	require.NoError(t, pool.Fund(0, assetA, reward.FundParams{Amount: 100, DurationSec: 100}))
	require.NoError(t, pool.BeginStaking(0, farmer, 1))

	p2, f2 := pool.Clone(), farmer.Clone()
	require.NoError(t, p2.Refresh(50, f2))
	_, err := p2.EndStaking(50, f2)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), pool.GemsStaked)
	assert.Zero(t, pool.RewardA.Funds.TotalAccrued)
	assert.Equal(t, Staked, farmer.State)
	assert.True(t, farmer.RewardA.Cursor.IsZero())
	assert.False(t, f2.RewardA.Cursor.IsZero())
}
