// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	server := httptest.NewServer(HTTPHandler())
	t.Cleanup(server.Close)

	ops := CounterVec("ops", []string{"op"})
	gauge := Gauge("gauge")
	gaugeVec := GaugeVec("gauge_vec", []string{"pool"})
	hist := HistogramVec("hist", []string{"op"}, BucketOps)

	for i := range 10 {
		ops.AddWithLabel(1, map[string]string{"nonsense": "fine"})
		gauge.Set(int64(i))
		gauge.Add(1)
		gaugeVec.SetWithLabel(int64(i), map[string]string{"pool": "x"})
		hist.ObserveWithLabels(int64(i), nil)
	}

	resp, err := server.Client().Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
