// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/farm/checked"
	"github.com/vechain/gemfarm/store"
)

// Vault holds the gems of a farmer.
type Vault interface {
	// GemCount returns the gems the farmer keeps in the pool's vault.
	GemCount(pool, owner common.Address) (uint64, error)
	// SetLock locks or unlocks the farmer's vault.
	SetLock(pool, owner common.Address, locked bool) error
}

// Custody moves reward tokens. The engine only decides amounts.
//
// Calls happen before the records of the operation are committed. A Custody
// that is also a Journal is rolled back when the commit fails; any other
// implementation sees the call repeated when the operation is retried, so
// Payout must be safe to replay.
type Custody interface {
	Deposit(pool, from, asset common.Address, amount uint64) error
	Payout(pool, to, asset common.Address, amount uint64) error
	ChargeFee(pool, from common.Address, amount uint64) error
}

// Authorizer tells whether an account may fund a pool.
type Authorizer interface {
	IsAuthorizedFunder(pool, funder common.Address) (bool, error)
}

// Journal is implemented by collaborators that keep their state next to the
// farm records. The engine brackets each operation with Begin and End, and
// stages the changes into the batch that commits the operation.
type Journal interface {
	Begin()
	Stage(u *store.Update)
	// End keeps the changes made since Begin, or undoes them.
	End(commit bool)
}

type vaultKey struct {
	pool, owner common.Address
}

type vaultEntry struct {
	gems   uint64
	locked bool
}

// MemVault is an in-memory Vault, optionally kept in a store.
type MemVault struct {
	tx      sync.Mutex
	mu      sync.Mutex
	entries ledger[vaultKey, vaultEntry]
	repo    *store.Repository
}

func NewMemVault() *MemVault {
	return &MemVault{entries: newLedger[vaultKey, vaultEntry]()}
}

// LoadMemVault restores the vault kept in repo. Changes are written back to it.
func LoadMemVault(repo *store.Repository) (*MemVault, error) {
	list, err := repo.VaultEntries()
	if err != nil {
		return nil, err
	}
	v := NewMemVault()
	v.repo = repo
	for _, e := range list {
		v.entries.entries[vaultKey{e.Pool, e.Owner}] = vaultEntry{gems: e.Gems, locked: e.Locked}
	}
	return v, nil
}

func (v *MemVault) GemCount(pool, owner common.Address) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.entries.get(vaultKey{pool, owner}).gems, nil
}

func (v *MemVault) SetLock(pool, owner common.Address, locked bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	k := vaultKey{pool, owner}
	e := v.entries.get(k)
	e.locked = locked
	v.entries.set(k, e)
	return nil
}

func (v *MemVault) IsLocked(pool, owner common.Address) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.entries.get(vaultKey{pool, owner}).locked
}

// DepositGems adds gems to the farmer's vault.
func (v *MemVault) DepositGems(pool, owner common.Address, gems uint64) error {
	return v.apply(func() error {
		k := vaultKey{pool, owner}
		e := v.entries.get(k)
		if err := checked.AddAssign(&e.gems, gems); err != nil {
			return err
		}
		v.entries.set(k, e)
		return nil
	})
}

// WithdrawGems takes gems out of an unlocked vault.
func (v *MemVault) WithdrawGems(pool, owner common.Address, gems uint64) error {
	return v.apply(func() error {
		k := vaultKey{pool, owner}
		e := v.entries.get(k)
		if e.locked {
			return errors.New("vault is locked")
		}
		if err := checked.SubAssign(&e.gems, gems); err != nil {
			return err
		}
		v.entries.set(k, e)
		return nil
	})
}

// apply runs fn as a transaction of its own.
func (v *MemVault) apply(fn func() error) (err error) {
	v.Begin()
	defer func() { v.End(err == nil) }()

	v.mu.Lock()
	err = fn()
	v.mu.Unlock()
	if err != nil || v.repo == nil {
		return err
	}
	u := v.repo.NewUpdate()
	v.Stage(u)
	return u.Commit()
}

func (v *MemVault) Begin() {
	v.tx.Lock()
}

func (v *MemVault) Stage(u *store.Update) {
	if v.repo == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries.dirty(func(k vaultKey, e vaultEntry) {
		u.PutVaultEntry(&store.VaultEntry{Pool: k.pool, Owner: k.owner, Gems: e.gems, Locked: e.locked})
	})
}

func (v *MemVault) End(commit bool) {
	v.mu.Lock()
	if commit {
		v.entries.checkpoint()
	} else {
		v.entries.rollback()
	}
	v.mu.Unlock()
	v.tx.Unlock()
}

type ledgerKey struct {
	account, asset common.Address
}

// MemCustody is an in-memory Custody, optionally kept in a store.
// Deposits go into a per-pool escrow, payouts come out of it.
type MemCustody struct {
	tx       sync.Mutex
	mu       sync.Mutex
	escrow   ledger[ledgerKey, uint64]
	balances ledger[ledgerKey, uint64]
	fees     ledger[common.Address, uint64]
	repo     *store.Repository
}

func NewMemCustody() *MemCustody {
	return &MemCustody{
		escrow:   newLedger[ledgerKey, uint64](),
		balances: newLedger[ledgerKey, uint64](),
		fees:     newLedger[common.Address, uint64](),
	}
}

// LoadMemCustody restores the ledgers kept in repo. Changes are written back to it.
func LoadMemCustody(repo *store.Repository) (*MemCustody, error) {
	escrow, err := repo.Escrows()
	if err != nil {
		return nil, err
	}
	balances, err := repo.Balances()
	if err != nil {
		return nil, err
	}
	fees, err := repo.Fees()
	if err != nil {
		return nil, err
	}
	c := NewMemCustody()
	c.repo = repo
	for _, e := range escrow {
		c.escrow.entries[ledgerKey{e.Account, e.Asset}] = e.Amount
	}
	for _, e := range balances {
		c.balances.entries[ledgerKey{e.Account, e.Asset}] = e.Amount
	}
	for _, e := range fees {
		c.fees.entries[e.Account] = e.Amount
	}
	return c, nil
}

func (c *MemCustody) Deposit(pool, _ common.Address, asset common.Address, amount uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := ledgerKey{pool, asset}
	v := c.escrow.get(k)
	if err := checked.AddAssign(&v, amount); err != nil {
		return err
	}
	c.escrow.set(k, v)
	return nil
}

func (c *MemCustody) Payout(pool, to, asset common.Address, amount uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := ledgerKey{pool, asset}
	escrow := c.escrow.get(k)
	if err := checked.SubAssign(&escrow, amount); err != nil {
		return errors.Wrapf(err, "escrow of %s holds %d", asset.Hex(), c.escrow.get(k))
	}
	b := ledgerKey{to, asset}
	balance := c.balances.get(b)
	if err := checked.AddAssign(&balance, amount); err != nil {
		return err
	}
	c.escrow.set(k, escrow)
	c.balances.set(b, balance)
	return nil
}

func (c *MemCustody) ChargeFee(pool, _ common.Address, amount uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.fees.get(pool)
	if err := checked.AddAssign(&v, amount); err != nil {
		return err
	}
	c.fees.set(pool, v)
	return nil
}

func (c *MemCustody) Escrow(pool, asset common.Address) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.escrow.get(ledgerKey{pool, asset})
}

func (c *MemCustody) Balance(account, asset common.Address) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balances.get(ledgerKey{account, asset})
}

func (c *MemCustody) Fees(pool common.Address) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fees.get(pool)
}

func (c *MemCustody) Begin() {
	c.tx.Lock()
}

func (c *MemCustody) Stage(u *store.Update) {
	if c.repo == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.escrow.dirty(func(k ledgerKey, amount uint64) {
		u.PutEscrow(&store.LedgerEntry{Account: k.account, Asset: k.asset, Amount: amount})
	})
	c.balances.dirty(func(k ledgerKey, amount uint64) {
		u.PutBalance(&store.LedgerEntry{Account: k.account, Asset: k.asset, Amount: amount})
	})
	c.fees.dirty(func(pool common.Address, amount uint64) {
		u.PutFee(&store.LedgerEntry{Account: pool, Amount: amount})
	})
}

func (c *MemCustody) End(commit bool) {
	c.mu.Lock()
	if commit {
		c.escrow.checkpoint()
		c.balances.checkpoint()
		c.fees.checkpoint()
	} else {
		c.escrow.rollback()
		c.balances.rollback()
		c.fees.rollback()
	}
	c.mu.Unlock()
	c.tx.Unlock()
}
