// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/gemfarm/engine"
	"github.com/vechain/gemfarm/lvldb"
	"github.com/vechain/gemfarm/store"
)

var (
	poolID  = common.HexToAddress("0xf00")
	manager = common.HexToAddress("0x1")
	funder  = common.HexToAddress("0xf1")
	alice   = common.HexToAddress("0xa11ce")
	assetA  = common.HexToAddress("0xaaaa")
	assetB  = common.HexToAddress("0xbbbb")
)

type testServer struct {
	t     *testing.T
	ts    *httptest.Server
	vault *engine.MemVault
	now   uint64
}

func newTestServer(t *testing.T) *testServer {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo, err := store.New(db, 4)
	require.NoError(t, err)

	s := &testServer{t: t, vault: engine.NewMemVault()}
	e := engine.New(repo, s.vault, engine.NewMemCustody(), engine.WithClock(func() uint64 { return s.now }))

	router := mux.NewRouter()
	New(e).Mount(router, "/pools")
	s.ts = httptest.NewServer(router)
	t.Cleanup(s.ts.Close)
	return s
}

func (s *testServer) do(method, path string, body any) (int, []byte) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.ts.URL+path, reader)
	require.NoError(s.t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(s.t, err)
	return res.StatusCode, data
}

func (s *testServer) post(path string, body any) (int, []byte) {
	return s.do(http.MethodPost, path, body)
}

func (s *testServer) get(path string, v any) int {
	code, data := s.do(http.MethodGet, path, nil)
	if code == http.StatusOK && v != nil {
		require.NoError(s.t, json.Unmarshal(data, v))
	}
	return code
}

func (s *testServer) createPool() {
	code, data := s.post("/pools", map[string]any{
		"pool":    poolID,
		"manager": manager,
		"config": map[string]any{
			"minStakingPeriodSec": "10",
			"cooldownPeriodSec":   "0x0",
			"unstakingFee":        "0",
			"extraStakePolicy":    "reset",
		},
		"rewardA": map[string]any{"asset": assetA, "kind": "variable"},
		"rewardB": map[string]any{"asset": assetB, "kind": "fixed"},
	})
	require.Equal(s.t, http.StatusCreated, code, string(data))
}

func poolPath(parts ...string) string {
	p := "/pools/" + poolID.Hex()
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

func TestPools(t *testing.T) {
	s := newTestServer(t)
	s.createPool()

	tests := []struct {
		name string
		fn   func(*testing.T, *testServer)
	}{
		{"getPool", testGetPool},
		{"listPools", testListPools},
		{"fundAndClaim", testFundAndClaim},
		{"unauthorizedFund", testUnauthorizedFund},
		{"managerOnly", testManagerOnly},
		{"badRequests", testBadRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.t = t
			tt.fn(t, s)
		})
	}
}

func testGetPool(t *testing.T, s *testServer) {
	var pool Pool
	require.Equal(t, http.StatusOK, s.get(poolPath(), &pool))
	assert.Equal(t, manager, pool.Manager)
	assert.Equal(t, "reset", pool.Config.ExtraStakePolicy)
	assert.Equal(t, uint64(10), uint64(pool.Config.MinStakingPeriodSec))
	assert.Equal(t, "variable", pool.RewardA.Kind)
	assert.Equal(t, "fixed", pool.RewardB.Kind)
	assert.Equal(t, "0", pool.RewardA.AccruedPerGem)

	assert.Equal(t, http.StatusNotFound, s.get("/pools/"+common.HexToAddress("0xdead").Hex(), nil))
}

func testListPools(t *testing.T, s *testServer) {
	var ids []common.Address
	require.Equal(t, http.StatusOK, s.get("/pools", &ids))
	assert.Contains(t, ids, poolID)
}

func testFundAndClaim(t *testing.T, s *testServer) {
	code, _ := s.post(poolPath("funders", "authorize"), FunderChange{Caller: manager, Funder: funder})
	require.Equal(t, http.StatusNoContent, code)

	s.now = 100
	code, data := s.post(poolPath("rewards", assetA.Hex(), "fund"), map[string]any{
		"funder": funder, "amount": "1000", "durationSec": "100", "gemsFunded": "0",
	})
	require.Equal(t, http.StatusNoContent, code, string(data))

	require.NoError(t, s.vault.DepositGems(poolID, alice, 4))
	code, data = s.post(poolPath("farmers", alice.Hex(), "stake"), nil)
	require.Equal(t, http.StatusNoContent, code, string(data))

	s.now = 125
	var farmer Farmer
	require.Equal(t, http.StatusOK, s.get(poolPath("farmers", alice.Hex())+"?preview=true", &farmer))
	assert.Equal(t, "staked", farmer.State)
	assert.Equal(t, uint64(250), farmer.RewardA.AccruedUnclaimed)

	code, data = s.post(poolPath("farmers", alice.Hex(), "claim", assetA.Hex()), nil)
	require.Equal(t, http.StatusOK, code, string(data))
	var amount Amount
	require.NoError(t, json.Unmarshal(data, &amount))
	assert.Equal(t, uint64(250), amount.Amount)

	code, data = s.post(poolPath("farmers", alice.Hex(), "unstake"), nil)
	require.Equal(t, http.StatusOK, code, string(data))
	var out Unstake
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, Unstake{From: "staked", To: "unstaked", Gems: 4, Released: 4}, out)

	var receipt Receipt
	require.Equal(t, http.StatusOK, s.get(poolPath("receipts", funder.Hex(), assetA.Hex()), &receipt))
	assert.Equal(t, uint64(1000), receipt.TotalDeposited)
	assert.Equal(t, uint64(100), receipt.LastFundedTs)
}

func testUnauthorizedFund(t *testing.T, s *testServer) {
	code, _ := s.post(poolPath("rewards", assetB.Hex(), "fund"), map[string]any{
		"funder": common.HexToAddress("0xbad"), "amount": "1", "durationSec": "1", "gemsFunded": "1",
	})
	assert.Equal(t, http.StatusForbidden, code)
}

func testManagerOnly(t *testing.T, s *testServer) {
	code, _ := s.post(poolPath("rewards", assetB.Hex(), "lock"), Caller{Caller: alice})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.post(poolPath("rewards", common.HexToAddress("0xcccc").Hex(), "lock"), Caller{Caller: manager})
	assert.Equal(t, http.StatusNotFound, code)

	code, data := s.post(poolPath("rewards", assetB.Hex(), "cancel"), Caller{Caller: manager})
	require.Equal(t, http.StatusOK, code, string(data))
}

func testBadRequests(t *testing.T, s *testServer) {
	code, _ := s.post(poolPath("farmers", "0xnothex", "stake"), nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.post(poolPath("farmers", alice.Hex(), "stake-extra"), map[string]any{"gems": "1", "extra": 1})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.post("/pools", map[string]any{
		"pool":    common.HexToAddress("0xf01"),
		"manager": manager,
		"rewardA": map[string]any{"asset": assetA, "kind": "linear"},
		"rewardB": map[string]any{"asset": assetB, "kind": "fixed"},
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.post(poolPath("farmers", common.HexToAddress("0xb0b").Hex(), "unstake"), nil)
	assert.Equal(t, http.StatusNotFound, code)
}
