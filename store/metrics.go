// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package store

import "github.com/vechain/gemfarm/metrics"

var metricCacheHitMiss = metrics.LazyLoadGaugeVec("store_cache_hit_miss_count", []string{"type", "event"})

func (r *Repository) observeCache() {
	hit, miss := r.pools.Stats()
	metricCacheHitMiss().SetWithLabel(hit, map[string]string{"type": "pool", "event": "hit"})
	metricCacheHitMiss().SetWithLabel(miss, map[string]string{"type": "pool", "event": "miss"})
}
