// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

// ledger is a map remembering the values it had before the current
// transaction, so that the transaction can be undone.
type ledger[K comparable, V any] struct {
	entries map[K]V
	prev    map[K]*V // nil when the key was absent
}

func newLedger[K comparable, V any]() ledger[K, V] {
	return ledger[K, V]{entries: make(map[K]V), prev: make(map[K]*V)}
}

func (l *ledger[K, V]) get(k K) V {
	return l.entries[k]
}

func (l *ledger[K, V]) set(k K, v V) {
	if _, ok := l.prev[k]; !ok {
		if old, ok := l.entries[k]; ok {
			l.prev[k] = &old
		} else {
			l.prev[k] = nil
		}
	}
	l.entries[k] = v
}

// dirty calls fn for every key changed in the current transaction.
func (l *ledger[K, V]) dirty(fn func(K, V)) {
	for k := range l.prev {
		fn(k, l.entries[k])
	}
}

func (l *ledger[K, V]) rollback() {
	for k, v := range l.prev {
		if v == nil {
			delete(l.entries, k)
		} else {
			l.entries[k] = *v
		}
	}
	clear(l.prev)
}

func (l *ledger[K, V]) checkpoint() {
	clear(l.prev)
}
