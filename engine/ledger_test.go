// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerRollback(t *testing.T) {
	l := newLedger[string, uint64]()
	l.set("kept", 1)
	l.checkpoint()

	l.set("kept", 2)
	l.set("kept", 3)
	l.set("new", 7)

	changed := map[string]uint64{}
	l.dirty(func(k string, v uint64) { changed[k] = v })
	assert.Equal(t, map[string]uint64{"kept": 3, "new": 7}, changed)

	l.rollback()
	assert.Equal(t, uint64(1), l.get("kept"))
	_, ok := l.entries["new"]
	assert.False(t, ok)

	l.dirty(func(string, uint64) { t.Fatal("nothing should be dirty") })
}
