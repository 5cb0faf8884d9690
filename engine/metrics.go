// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/vechain/gemfarm/farm"
	"github.com/vechain/gemfarm/farm/reverts"
	"github.com/vechain/gemfarm/farm/reward"
	"github.com/vechain/gemfarm/metrics"
)

var (
	metricOperations = metrics.LazyLoadCounterVec("operations_total", []string{"op", "result"})
	metricOpDuration = metrics.LazyLoadHistogramVec("operation_duration_ms", []string{"op"}, metrics.BucketOps)
	metricGemsStaked = metrics.LazyLoadGaugeVec("gems_staked", []string{"pool"})
	metricFarmers    = metrics.LazyLoadGaugeVec("staked_farmers", []string{"pool"})
	metricPending    = metrics.LazyLoadGaugeVec("reward_pending", []string{"pool", "asset"})
)

// result labels an operation outcome with the revert kind, if any.
func result(err error) string {
	if err == nil {
		return "ok"
	}
	if kind, ok := reverts.KindOf(err); ok {
		return kind.String()
	}
	return "error"
}

func observePool(id common.Address, p *farm.Pool) {
	pool := id.Hex()
	metricGemsStaked().SetWithLabel(int64(p.GemsStaked), map[string]string{"pool": pool})
	metricFarmers().SetWithLabel(int64(p.StakedParticipantCount), map[string]string{"pool": pool})
	for _, s := range []*reward.Stream{&p.RewardA, &p.RewardB} {
		if pending, err := s.Funds.Pending(); err == nil {
			metricPending().SetWithLabel(int64(pending), map[string]string{"pool": pool, "asset": s.AssetID.Hex()})
		}
	}
}
