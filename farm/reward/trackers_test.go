// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/gemfarm/farm/reverts"
)

func TestFundsTracker(t *testing.T) {
	var f FundsTracker
	require.NoError(t, f.Fund(100))
	require.NoError(t, f.Accrue(30))
	require.NoError(t, f.Refund(20))

	pending, err := f.Pending()
	require.NoError(t, err)
	assert.Equal(t, uint64(50), pending)

	require.NoError(t, f.Accrue(60))
	_, err = f.Pending()
	assert.True(t, reverts.Is(err, reverts.BookkeepingInvariantViolated))

	f.TotalFunded = math.MaxUint64
	assert.True(t, reverts.Is(f.Fund(1), reverts.ArithmeticOverflow))
	assert.Equal(t, uint64(math.MaxUint64), f.TotalFunded)
}

func TestTimeTracker(t *testing.T) {
	var tt TimeTracker
	require.NoError(t, tt.ExtendOrReset(100, 50))
	assert.Equal(t, uint64(150), tt.RewardEndTs)
	assert.Equal(t, uint64(50), tt.DurationSec)
	assert.Equal(t, uint64(100), tt.StartTs())

	assert.Equal(t, uint64(30), tt.RemainingDuration(120))
	assert.Equal(t, uint64(0), tt.RemainingDuration(200))
	assert.Equal(t, uint64(120), tt.UpperBound(120))
	assert.Equal(t, uint64(150), tt.UpperBound(200))

	elapsed, err := tt.Elapsed(120)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), elapsed)

	assert.False(t, tt.IsLocked(120))
	tt.Lock()
	assert.True(t, tt.IsLocked(120))
	assert.False(t, tt.IsLocked(150))

	require.NoError(t, tt.EndNow(130))
	assert.Equal(t, uint64(130), tt.RewardEndTs)
	assert.Equal(t, uint64(30), tt.DurationSec)

	// ended windows stay put
	require.NoError(t, tt.EndNow(500))
	assert.Equal(t, uint64(130), tt.RewardEndTs)

	// a lock never shrinks
	tt.Lock()
	assert.Equal(t, uint64(150), tt.LockEndTs)

	assert.True(t, reverts.Is(tt.ExtendOrReset(math.MaxUint64, 1), reverts.ArithmeticOverflow))
}

func TestTrackerClaim(t *testing.T) {
	var tr Tracker
	require.NoError(t, tr.credit(40))
	require.NoError(t, tr.credit(2))

	amount, err := tr.Claim()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), amount)
	assert.Equal(t, uint64(0), tr.AccruedUnclaimed)
	assert.Equal(t, uint64(42), tr.TotalClaimed)
	assert.Equal(t, uint64(42), tr.TotalAccrued)

	amount, err = tr.Claim()
	require.NoError(t, err)
	assert.Zero(t, amount)
}
