// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContextFollowsRoot(t *testing.T) {
	pkgLogger := WithContext("pkg", "test")

	var buf bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(slog.LevelInfo)
	SetDefault(NewLogger(JSONHandlerWithLevel(&buf, &lvl)))
	defer SetDefault(NewLogger(DiscardHandler()))

	pkgLogger.Debug("hidden")
	pkgLogger.Info("staked", "pool", common.HexToAddress("0x1"), "acc", uint256.NewInt(42))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "staked", rec["msg"])
	assert.Equal(t, "info", rec["lvl"])
	assert.Equal(t, "test", rec["pkg"])
	assert.Equal(t, common.HexToAddress("0x1").Hex(), rec["pool"])
	assert.Equal(t, "42", rec["acc"])
}

func TestLogfmt(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LogfmtHandler(&buf))
	l.Warn("cooldown", "left", 3)

	assert.Contains(t, buf.String(), "lvl=warn")
	assert.Contains(t, buf.String(), "msg=cooldown")
	assert.Contains(t, buf.String(), "left=3")
}

func TestLevels(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, FromLegacyLevel(LegacyLevelInfo))
	assert.Equal(t, LevelCrit, FromLegacyLevel(0))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
	assert.Equal(t, "trace", LevelString(LevelTrace))
	assert.Equal(t, "crit", LevelString(LevelCrit))
	assert.False(t, NewLogger(DiscardHandler()).Enabled(t.Context(), LevelCrit))
}
