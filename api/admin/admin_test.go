// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/gemfarm/log"
)

type fakePools struct {
	ids []common.Address
	err error
}

func (f *fakePools) Pools() ([]common.Address, error) { return f.ids, f.err }

func newAdmin() (*Admin, *slog.LevelVar, *atomic.Bool, *fakePools) {
	var level slog.LevelVar
	level.Set(log.LevelInfo)
	var apiLogs atomic.Bool
	pools := &fakePools{ids: []common.Address{{1}, {2}}}
	return New(&level, &apiLogs, pools), &level, &apiLogs, pools
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	h.ServeHTTP(rec, req)
	return rec
}

func TestLogLevel(t *testing.T) {
	a, level, _, _ := newAdmin()
	h := a.NewHTTPHandler()

	tests := []struct {
		name   string
		method string
		body   string
		status int
		level  string
	}{
		{"get", http.MethodGet, "", http.StatusOK, "info"},
		{"set debug", http.MethodPost, `{"level":"debug"}`, http.StatusOK, "debug"},
		{"set trace", http.MethodPost, `{"level":"trace"}`, http.StatusOK, "trace"},
		{"invalid level", http.MethodPost, `{"level":"loud"}`, http.StatusBadRequest, ""},
		{"invalid body", http.MethodPost, `{"verbosity":1}`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.method, "/admin/loglevel", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status != http.StatusOK {
				return
			}
			var res LogLevel
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.Equal(t, tt.level, res.Level)
			assert.Equal(t, tt.level, log.LevelString(level.Level()))
		})
	}
}

func TestAPILogs(t *testing.T) {
	a, _, apiLogs, _ := newAdmin()
	h := a.NewHTTPHandler()

	rec := serve(h, http.MethodPost, "/admin/apilogs", `{"enabled":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, apiLogs.Load())

	rec = serve(h, http.MethodGet, "/admin/apilogs", "")
	assert.JSONEq(t, `{"enabled":true}`, rec.Body.String())

	rec = serve(h, http.MethodPost, "/admin/apilogs", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	a, _, _, pools := newAdmin()
	h := a.NewHTTPHandler()

	rec := serve(h, http.MethodGet, "/admin/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Healthy)
	assert.Equal(t, 2, res.Pools)

	pools.err = errors.New("db closed")
	rec = serve(h, http.MethodGet, "/admin/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Healthy)
	assert.Equal(t, "db closed", res.Error)
}
