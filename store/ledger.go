// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package store

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/kv"
)

var (
	vaultPrefix   = []byte("vault/")
	escrowPrefix  = []byte("escrow/")
	balancePrefix = []byte("balance/")
	feePrefix     = []byte("fee/")
)

// VaultEntry is the gem vault of a farmer.
type VaultEntry struct {
	Pool   common.Address
	Owner  common.Address
	Gems   uint64
	Locked bool
}

// LedgerEntry is an amount of Asset held for Account.
// Escrow entries are held for a pool, fee entries have no asset.
type LedgerEntry struct {
	Account common.Address
	Asset   common.Address
	Amount  uint64
}

func iterate[T any](r *Repository, prefix []byte, what string) ([]*T, error) {
	it := r.db.Iterate(kv.PrefixRange(prefix))
	defer it.Release()

	var out []*T
	for it.Next() {
		v := new(T)
		if err := decode(it.Value(), v); err != nil {
			return nil, errors.Wrapf(err, "decode %s", what)
		}
		out = append(out, v)
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrapf(err, "iterate %s", what)
	}
	return out, nil
}

func (r *Repository) VaultEntries() ([]*VaultEntry, error) {
	return iterate[VaultEntry](r, vaultPrefix, "vault")
}

func (r *Repository) Escrows() ([]*LedgerEntry, error) {
	return iterate[LedgerEntry](r, escrowPrefix, "escrow")
}

func (r *Repository) Balances() ([]*LedgerEntry, error) {
	return iterate[LedgerEntry](r, balancePrefix, "balance")
}

func (r *Repository) Fees() ([]*LedgerEntry, error) {
	return iterate[LedgerEntry](r, feePrefix, "fee")
}

func (u *Update) PutVaultEntry(e *VaultEntry) *Update {
	u.put(makeKey(vaultPrefix, e.Pool, e.Owner), e, "vault")
	return u
}

func (u *Update) PutEscrow(e *LedgerEntry) *Update {
	u.put(makeKey(escrowPrefix, e.Account, e.Asset), e, "escrow")
	return u
}

func (u *Update) PutBalance(e *LedgerEntry) *Update {
	u.put(makeKey(balancePrefix, e.Account, e.Asset), e, "balance")
	return u
}

func (u *Update) PutFee(e *LedgerEntry) *Update {
	u.put(makeKey(feePrefix, e.Account), e, "fee")
	return u
}
