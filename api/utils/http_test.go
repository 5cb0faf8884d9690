// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/gemfarm/farm/reverts"
)

func serve(f HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	WrapHandlerFunc(f)(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"ok", nil, http.StatusOK},
		{"bad request", BadRequest(errors.New("body")), http.StatusBadRequest},
		{"forbidden", Forbidden(errors.New("nope")), http.StatusForbidden},
		{"not found", reverts.New(reverts.NotFound, 0, "pool"), http.StatusNotFound},
		{"wrapped revert", errors.Wrap(reverts.New(reverts.NotPoolManager, 0, "x"), "lock"), http.StatusForbidden},
		{"conflict", reverts.New(reverts.CooldownNotElapsed, 5, "x"), http.StatusConflict},
		{"internal", errors.New("disk"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(func(http.ResponseWriter, *http.Request) error { return tt.err })
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestWrapHandlerFunc_RevertHeader(t *testing.T) {
	rec := serve(func(http.ResponseWriter, *http.Request) error {
		return reverts.New(reverts.RewardLocked, 10, "locked")
	})
	assert.Equal(t, reverts.RewardLocked.String(), rec.Header().Get("X-Revert-Kind"))
	assert.Contains(t, rec.Body.String(), "locked")
}

func TestParseJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	require.NoError(t, ParseJSON(strings.NewReader(`{"a":1}`), &v))
	assert.Equal(t, 1, v.A)
	assert.Error(t, ParseJSON(strings.NewReader(`{"b":1}`), &v))
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)
	assert.Equal(t, byte(0xaa), addr[19])

	_, err = ParseAddress("0xzz")
	assert.Error(t, err)
}
