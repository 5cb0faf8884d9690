// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/gemfarm/farm/reverts"
	"github.com/vechain/gemfarm/farm/reward"
)

var (
	manager = common.HexToAddress("0x1000")
	assetA  = common.HexToAddress("0xaaaa")
	assetB  = common.HexToAddress("0xbbbb")
)

func newTestPool(t *testing.T, cfg Config, kindA, kindB reward.Kind) *Pool {
	pool, err := New(manager, cfg, StreamSpec{assetA, kindA}, StreamSpec{assetB, kindB})
	require.NoError(t, err)
	return pool
}

type TestFunc func(t *testing.T)

// TestSequence runs pool operations in order, failing fast.
type TestSequence struct {
	pool    *Pool
	farmers map[common.Address]*Participant

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(pool *Pool) *TestSequence {
	return &TestSequence{pool: pool, farmers: make(map[common.Address]*Participant), funcs: make([]TestFunc, 0)}
}

func (st *TestSequence) AddFunc(f TestFunc) *TestSequence {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.funcs = append(st.funcs, f)
	return st
}

func (st *TestSequence) farmer(t *testing.T, owner common.Address) *Participant {
	f, ok := st.farmers[owner]
	if !ok {
		f = NewParticipant(owner)
		if err := st.pool.Register(f); err != nil {
			t.Fatalf("failed to register farmer %s: %v", owner, err)
		}
		st.farmers[owner] = f
	}
	return f
}

func (st *TestSequence) Fund(now uint64, asset common.Address, amount, duration uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.pool.Fund(now, asset, reward.FundParams{Amount: amount, DurationSec: duration}); err != nil {
			t.Fatalf("failed to fund %s: %v", asset, err)
		}
		t.Logf("funded %d of %s for %ds at %d", amount, asset, duration, now)
	})
}

func (st *TestSequence) Stake(now uint64, owner common.Address, gems uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.pool.BeginStaking(now, st.farmer(t, owner), gems); err != nil {
			t.Fatalf("failed to stake for %s: %v", owner, err)
		}
		t.Logf("%s staked %d at %d", owner, gems, now)
	})
}

func (st *TestSequence) StakeExtra(now uint64, owner common.Address, gems uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.pool.StakeExtra(now, st.farmer(t, owner), gems); err != nil {
			t.Fatalf("failed to add stake for %s: %v", owner, err)
		}
	})
}

func (st *TestSequence) Unstake(now uint64, owner common.Address) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		out, err := st.pool.EndStaking(now, st.farmer(t, owner))
		if err != nil {
			t.Fatalf("failed to unstake for %s: %v", owner, err)
		}
		t.Logf("%s went from %s to %s at %d", owner, out.From, out.To, now)
	})
}

func (st *TestSequence) ExpectRevert(kind reverts.Kind, op func(p *Pool, farmers map[common.Address]*Participant) error) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		err := op(st.pool, st.farmers)
		assert.True(t, reverts.Is(err, kind), "expected %s, got %v", kind, err)
	})
}

func (st *TestSequence) Refresh(now uint64, owner common.Address) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.pool.Refresh(now, st.farmer(t, owner)); err != nil {
			t.Fatalf("failed to refresh %s: %v", owner, err)
		}
	})
}

func (st *TestSequence) Assert(f func(t *testing.T, pool *Pool, farmers map[common.Address]*Participant)) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		f(t, st.pool, st.farmers)
	})
}

func (st *TestSequence) Run(t *testing.T) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, f := range st.funcs {
		f(t)
		require.NoError(t, st.pool.CheckInvariants())
		st.assertGemsStaked(t)
	}
}

func (st *TestSequence) assertGemsStaked(t *testing.T) {
	var sum uint64
	var active uint64
	for _, f := range st.farmers {
		sum += f.GemsStaked
		if f.State == Staked {
			active++
		}
	}
	assert.Equal(t, st.pool.GemsStaked, sum, "pool gems")
	assert.Equal(t, st.pool.StakedParticipantCount, active, "staked farmers")
}

type FarmerAssertions struct {
	farmer *Participant
}

func AssertFarmer(t *testing.T, farmers map[common.Address]*Participant, owner common.Address) *FarmerAssertions {
	f, ok := farmers[owner]
	require.True(t, ok, "unknown farmer %s", owner)
	return &FarmerAssertions{farmer: f}
}

func (fa *FarmerAssertions) State(t *testing.T, expected State) *FarmerAssertions {
	assert.Equal(t, expected, fa.farmer.State, "state of %s", fa.farmer.Owner)
	return fa
}

func (fa *FarmerAssertions) Gems(t *testing.T, expected uint64) *FarmerAssertions {
	assert.Equal(t, expected, fa.farmer.GemsStaked, "gems of %s", fa.farmer.Owner)
	return fa
}

func (fa *FarmerAssertions) AccruedA(t *testing.T, expected uint64) *FarmerAssertions {
	assert.Equal(t, expected, fa.farmer.RewardA.AccruedUnclaimed, "reward A of %s", fa.farmer.Owner)
	return fa
}

func (fa *FarmerAssertions) AccruedB(t *testing.T, expected uint64) *FarmerAssertions {
	assert.Equal(t, expected, fa.farmer.RewardB.AccruedUnclaimed, "reward B of %s", fa.farmer.Owner)
	return fa
}
