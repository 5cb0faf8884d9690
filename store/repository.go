// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package store persists pools, farmers and funders.
package store

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/cache"
	"github.com/vechain/gemfarm/farm"
	"github.com/vechain/gemfarm/farm/reverts"
	"github.com/vechain/gemfarm/kv"
)

var (
	poolPrefix    = []byte("pool/")
	farmerPrefix  = []byte("farmer/")
	funderPrefix  = []byte("funder/")
	receiptPrefix = []byte("receipt/")
)

func makeKey(prefix []byte, parts ...common.Address) []byte {
	key := make([]byte, 0, len(prefix)+len(parts)*common.AddressLength)
	key = append(key, prefix...)
	for _, p := range parts {
		key = append(key, p.Bytes()...)
	}
	return key
}

// Repository reads and writes farm records. Decoded pools are cached.
type Repository struct {
	db    kv.Store
	pools *cache.LRU
}

func New(db kv.Store, cacheSize int) (*Repository, error) {
	pools, err := cache.NewLRU(max(cacheSize, 1))
	if err != nil {
		return nil, errors.Wrap(err, "create pool cache")
	}
	return &Repository{db: db, pools: pools}, nil
}

func (r *Repository) get(key []byte, v any, what string) (bool, error) {
	data, err := r.db.Get(key)
	if err != nil {
		if r.db.IsNotFound(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "read %s", what)
	}
	if err := decode(data, v); err != nil {
		return false, errors.Wrapf(err, "decode %s", what)
	}
	return true, nil
}

// Pool returns a copy of the pool, or a NotFound revert.
func (r *Repository) Pool(id common.Address) (*farm.Pool, error) {
	v, err := r.pools.GetOrLoad(id, func(any) (any, error) {
		var rec poolRecord
		found, err := r.get(makeKey(poolPrefix, id), &rec, "pool")
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, reverts.New(reverts.NotFound, 0, "pool %s", id.Hex())
		}
		return rec.pool(), nil
	})
	r.observeCache()
	if err != nil {
		return nil, err
	}
	return v.(*farm.Pool).Clone(), nil
}

func (r *Repository) HasPool(id common.Address) (bool, error) {
	if r.pools.Contains(id) {
		return true, nil
	}
	return r.db.Has(makeKey(poolPrefix, id))
}

// Pools lists the ids of all pools.
func (r *Repository) Pools() ([]common.Address, error) {
	it := r.db.Iterate(kv.PrefixRange(poolPrefix))
	defer it.Release()

	var ids []common.Address
	for it.Next() {
		ids = append(ids, common.BytesToAddress(it.Key()[len(poolPrefix):]))
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrap(err, "iterate pools")
	}
	return ids, nil
}

// Participant returns the farmer record of owner, or a NotFound revert.
func (r *Repository) Participant(pool, owner common.Address) (*farm.Participant, error) {
	var rec participantRecord
	found, err := r.get(makeKey(farmerPrefix, pool, owner), &rec, "farmer")
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, reverts.New(reverts.NotFound, 0, "farmer %s in pool %s", owner.Hex(), pool.Hex())
	}
	return rec.participant(), nil
}

// Funder returns the funder record, nil if the account is not authorized.
func (r *Repository) Funder(pool, funder common.Address) (*Funder, error) {
	var rec Funder
	found, err := r.get(makeKey(funderPrefix, pool, funder), &rec, "funder")
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}

// IsAuthorizedFunder reports whether funder may fund pool.
func (r *Repository) IsAuthorizedFunder(pool, funder common.Address) (bool, error) {
	f, err := r.Funder(pool, funder)
	return f != nil, err
}

// Receipt returns the funding receipt, zero valued if funder never funded asset.
func (r *Repository) Receipt(pool, funder, asset common.Address) (*FundingReceipt, error) {
	rec := FundingReceipt{Funder: funder, AssetID: asset}
	if _, err := r.get(makeKey(receiptPrefix, pool, funder, asset), &rec, "receipt"); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update collects writes committed atomically.
type Update struct {
	repo  *Repository
	batch kv.Batch
	pools map[common.Address]*farm.Pool
	err   error
}

func (r *Repository) NewUpdate() *Update {
	return &Update{repo: r, batch: r.db.NewBatch(), pools: make(map[common.Address]*farm.Pool)}
}

func (u *Update) put(key []byte, v any, what string) {
	if u.err != nil {
		return
	}
	data, err := encode(v)
	if err != nil {
		u.err = errors.Wrapf(err, "encode %s", what)
		return
	}
	if err := u.batch.Put(key, data); err != nil {
		u.err = errors.Wrapf(err, "write %s", what)
	}
}

func (u *Update) PutPool(id common.Address, p *farm.Pool) *Update {
	u.put(makeKey(poolPrefix, id), fromPool(p), "pool")
	u.pools[id] = p.Clone()
	return u
}

func (u *Update) PutParticipant(pool common.Address, f *farm.Participant) *Update {
	u.put(makeKey(farmerPrefix, pool, f.Owner), fromParticipant(f), "farmer")
	return u
}

func (u *Update) PutFunder(pool common.Address, f *Funder) *Update {
	u.put(makeKey(funderPrefix, pool, f.Address), f, "funder")
	return u
}

func (u *Update) DeleteFunder(pool, funder common.Address) *Update {
	if u.err == nil {
		if err := u.batch.Delete(makeKey(funderPrefix, pool, funder)); err != nil {
			u.err = errors.Wrap(err, "delete funder")
		}
	}
	return u
}

func (u *Update) PutReceipt(pool common.Address, rec *FundingReceipt) *Update {
	u.put(makeKey(receiptPrefix, pool, rec.Funder, rec.AssetID), rec, "receipt")
	return u
}

// Commit writes everything or nothing.
func (u *Update) Commit() error {
	if u.err != nil {
		return u.err
	}
	if err := u.batch.Write(); err != nil {
		return errors.Wrap(err, "commit")
	}
	for id, p := range u.pools {
		u.repo.pools.Add(id, p)
	}
	return nil
}
