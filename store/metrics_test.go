// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package store

import (
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/gemfarm/metrics"
)

func TestMain(m *testing.M) {
	metrics.InitializePrometheusMetrics()
	os.Exit(m.Run())
}

func cacheCounts(t *testing.T) map[string]float64 {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	out := make(map[string]float64)
	for _, f := range families {
		if f.GetName() != "gemfarm_store_cache_hit_miss_count" {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := make(map[string]string)
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["type"] == "pool" {
				out[labels["event"]] = m.GetGauge().GetValue()
			}
		}
	}
	return out
}

func TestPoolCacheMetrics(t *testing.T) {
	repo, db := newRepo(t)
	pool, _ := busyPool(t)
	require.NoError(t, repo.NewUpdate().PutPool(poolID, pool).Commit())

	cold, err := New(db, 8)
	require.NoError(t, err)
	for range 3 {
		_, err := cold.Pool(poolID)
		require.NoError(t, err)
	}
	assert.Equal(t, map[string]float64{"hit": 2, "miss": 1}, cacheCounts(t))
}
