// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package engine applies farm operations against stored records and the
// external vault, custody and authorization collaborators.
//
// Every operation works on copies of the records it touches and commits them
// in a single batch only after all collaborator calls succeeded.
package engine

import (
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vechain/gemfarm/farm"
	"github.com/vechain/gemfarm/farm/reverts"
	"github.com/vechain/gemfarm/farm/reward"
	"github.com/vechain/gemfarm/log"
	"github.com/vechain/gemfarm/store"
)

var logger = log.WithContext("pkg", "engine")

// Clock returns the current unix time in seconds.
type Clock func() uint64

func systemClock() uint64 { return uint64(time.Now().Unix()) }

type Option func(*Engine)

// WithAuthorizer replaces the store backed funder authorization.
func WithAuthorizer(a Authorizer) Option {
	return func(e *Engine) { e.auth = a }
}

func WithClock(c Clock) Option {
	return func(e *Engine) { e.now = c }
}

type Engine struct {
	mu      sync.Mutex
	repo    *store.Repository
	vault   Vault
	custody Custody
	auth    Authorizer
	now     Clock

	journals []Journal
}

func New(repo *store.Repository, vault Vault, custody Custody, opts ...Option) *Engine {
	e := &Engine{
		repo:    repo,
		vault:   vault,
		custody: custody,
		auth:    repo,
		now:     systemClock,
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, c := range []any{vault, custody} {
		if j, ok := c.(Journal); ok && !slices.Contains(e.journals, j) {
			e.journals = append(e.journals, j)
		}
	}
	return e
}

// run serializes op and records its outcome. Collaborator changes made by a
// failed op are undone.
func (e *Engine) run(name string, op func(now uint64) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, j := range e.journals {
		j.Begin()
	}
	start := time.Now()
	err := op(e.now())
	for _, j := range e.journals {
		j.End(err == nil)
	}
	metricOpDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"op": name})
	metricOperations().AddWithLabel(1, map[string]string{"op": name, "result": result(err)})
	if err != nil && !reverts.IsRevertErr(err) {
		logger.Warn("operation failed", "op", name, "err", err)
	}
	return err
}

func (e *Engine) managedPool(id, caller common.Address) (*farm.Pool, error) {
	pool, err := e.repo.Pool(id)
	if err != nil {
		return nil, err
	}
	if pool.Manager != caller {
		return nil, reverts.New(reverts.NotPoolManager, 0, "%s does not manage pool %s", caller.Hex(), id.Hex())
	}
	return pool, nil
}

// farmer loads the farmer record, provisioning it on first contact.
func (e *Engine) farmer(id common.Address, pool *farm.Pool, owner common.Address) (*farm.Participant, error) {
	f, err := e.repo.Participant(id, owner)
	if reverts.Is(err, reverts.NotFound) {
		f = farm.NewParticipant(owner)
		if err := pool.Register(f); err != nil {
			return nil, err
		}
		logger.Debug("farmer registered", "pool", id, "owner", owner)
		return f, nil
	}
	return f, err
}

// write commits u together with the pending collaborator changes.
func (e *Engine) write(u *store.Update) error {
	for _, j := range e.journals {
		j.Stage(u)
	}
	return u.Commit()
}

func (e *Engine) commit(id common.Address, pool *farm.Pool, farmer *farm.Participant) error {
	u := e.repo.NewUpdate().PutPool(id, pool)
	if farmer != nil {
		u.PutParticipant(id, farmer)
	}
	if err := e.write(u); err != nil {
		return err
	}
	observePool(id, pool)
	return nil
}

// CreatePool stores a new pool managed by manager.
func (e *Engine) CreatePool(id, manager common.Address, cfg farm.Config, a, b farm.StreamSpec) (*farm.Pool, error) {
	var created *farm.Pool
	err := e.run("create", func(uint64) error {
		exists, err := e.repo.HasPool(id)
		if err != nil {
			return err
		}
		if exists {
			return reverts.New(reverts.InvalidState, 0, "pool %s exists", id.Hex())
		}
		pool, err := farm.New(manager, cfg, a, b)
		if err != nil {
			return err
		}
		if err := e.commit(id, pool, nil); err != nil {
			return err
		}
		created = pool
		logger.Info("pool created", "pool", id, "manager", manager,
			"rewardA", a.AssetID, "kindA", a.Kind, "rewardB", b.AssetID, "kindB", b.Kind)
		return nil
	})
	return created, err
}

// AuthorizeFunder lets funder fund the pool. Authorizing twice is a no-op.
func (e *Engine) AuthorizeFunder(id, caller, funder common.Address) error {
	return e.run("authorize", func(now uint64) error {
		pool, err := e.managedPool(id, caller)
		if err != nil {
			return err
		}
		existing, err := e.repo.Funder(id, funder)
		if err != nil || existing != nil {
			return err
		}
		pool.AuthorizedFunderCount++
		err = e.write(e.repo.NewUpdate().
			PutPool(id, pool).
			PutFunder(id, &store.Funder{Address: funder, AuthorizedAt: now}))
		if err == nil {
			logger.Info("funder authorized", "pool", id, "funder", funder)
		}
		return err
	})
}

func (e *Engine) DeauthorizeFunder(id, caller, funder common.Address) error {
	return e.run("deauthorize", func(uint64) error {
		pool, err := e.managedPool(id, caller)
		if err != nil {
			return err
		}
		existing, err := e.repo.Funder(id, funder)
		if err != nil {
			return err
		}
		if existing == nil {
			return reverts.New(reverts.NotFound, 0, "funder %s of pool %s", funder.Hex(), id.Hex())
		}
		pool.AuthorizedFunderCount--
		err = e.write(e.repo.NewUpdate().PutPool(id, pool).DeleteFunder(id, funder))
		if err == nil {
			logger.Info("funder deauthorized", "pool", id, "funder", funder)
		}
		return err
	})
}

// Fund takes params.Amount of asset from funder into the pool.
func (e *Engine) Fund(id, funder, asset common.Address, params reward.FundParams) error {
	return e.run("fund", func(now uint64) error {
		ok, err := e.auth.IsAuthorizedFunder(id, funder)
		if err != nil {
			return err
		}
		if !ok {
			return reverts.New(reverts.UnauthorizedFunder, params.Amount, "%s may not fund pool %s", funder.Hex(), id.Hex())
		}
		pool, err := e.repo.Pool(id)
		if err != nil {
			return err
		}
		if err := pool.Fund(now, asset, params); err != nil {
			return err
		}
		receipt, err := e.repo.Receipt(id, funder, asset)
		if err != nil {
			return err
		}
		receipt.TotalDeposited += params.Amount
		receipt.LastFundedTs = now

		if err := e.custody.Deposit(id, funder, asset, params.Amount); err != nil {
			return err
		}
		if err := e.write(e.repo.NewUpdate().PutPool(id, pool).PutReceipt(id, receipt)); err != nil {
			return err
		}
		observePool(id, pool)
		ctx := []any{"pool", id, "funder", funder, "asset", asset, "amount", params.Amount, "duration", params.DurationSec}
		if s, err := pool.Stream(asset); err == nil && s.Kind == reward.Fixed {
			ctx = append(ctx, "ratePerGem", &s.Fixed.RatePerGem)
		}
		logger.Info("reward funded", ctx...)
		return nil
	})
}

// Cancel ends the stream paying asset and refunds the manager.
func (e *Engine) Cancel(id, caller, asset common.Address) (uint64, error) {
	var refund uint64
	err := e.run("cancel", func(now uint64) error {
		pool, err := e.managedPool(id, caller)
		if err != nil {
			return err
		}
		if refund, err = pool.Cancel(now, asset); err != nil {
			return err
		}
		if refund > 0 {
			if err := e.custody.Payout(id, caller, asset, refund); err != nil {
				return err
			}
		}
		if err := e.commit(id, pool, nil); err != nil {
			return err
		}
		logger.Info("reward cancelled", "pool", id, "asset", asset, "refund", refund)
		return nil
	})
	return refund, err
}

func (e *Engine) Lock(id, caller, asset common.Address) error {
	return e.run("lock", func(uint64) error {
		pool, err := e.managedPool(id, caller)
		if err != nil {
			return err
		}
		if err := pool.Lock(asset); err != nil {
			return err
		}
		if err := e.commit(id, pool, nil); err != nil {
			return err
		}
		s, _ := pool.Stream(asset)
		logger.Info("reward locked", "pool", id, "asset", asset, "until", s.Times.LockEndTs)
		return nil
	})
}

// Stake stakes every gem in the owner's vault and locks it.
func (e *Engine) Stake(id, owner common.Address) error {
	return e.run("stake", func(now uint64) error {
		pool, err := e.repo.Pool(id)
		if err != nil {
			return err
		}
		farmer, err := e.farmer(id, pool, owner)
		if err != nil {
			return err
		}
		gems, err := e.vault.GemCount(id, owner)
		if err != nil {
			return err
		}
		if err := pool.BeginStaking(now, farmer, gems); err != nil {
			return err
		}
		if err := e.vault.SetLock(id, owner, true); err != nil {
			return err
		}
		if err := e.commit(id, pool, farmer); err != nil {
			return err
		}
		logger.Debug("staked", "pool", id, "owner", owner, "gems", gems)
		return nil
	})
}

// StakeExtra adds extra gems, already in the vault, to a live position.
func (e *Engine) StakeExtra(id, owner common.Address, extra uint64) error {
	return e.run("stake_extra", func(now uint64) error {
		pool, err := e.repo.Pool(id)
		if err != nil {
			return err
		}
		farmer, err := e.repo.Participant(id, owner)
		if err != nil {
			return err
		}
		held, err := e.vault.GemCount(id, owner)
		if err != nil {
			return err
		}
		if need := farmer.LockedGems() + extra; held < need {
			return reverts.New(reverts.VaultEmpty, need-held, "vault holds %d gems, %d needed", held, need)
		}
		if err := pool.StakeExtra(now, farmer, extra); err != nil {
			return err
		}
		if err := e.commit(id, pool, farmer); err != nil {
			return err
		}
		logger.Debug("stake added", "pool", id, "owner", owner, "extra", extra, "gems", farmer.GemsStaked)
		return nil
	})
}

// Unstake moves the owner one step towards Unstaked, charging the fee when a
// position is closed and unlocking the vault once the gems are released.
func (e *Engine) Unstake(id, owner common.Address) (farm.Unstake, error) {
	var out farm.Unstake
	err := e.run("unstake", func(now uint64) error {
		pool, err := e.repo.Pool(id)
		if err != nil {
			return err
		}
		farmer, err := e.repo.Participant(id, owner)
		if err != nil {
			return err
		}
		if out, err = pool.EndStaking(now, farmer); err != nil {
			return err
		}
		if out.Fee > 0 {
			if err := e.custody.ChargeFee(id, owner, out.Fee); err != nil {
				return err
			}
		}
		if out.Released > 0 {
			if err := e.vault.SetLock(id, owner, false); err != nil {
				return err
			}
		}
		if err := e.commit(id, pool, farmer); err != nil {
			return err
		}
		logger.Debug("unstaked", "pool", id, "owner", owner, "from", out.From, "to", out.To, "released", out.Released)
		return nil
	})
	return out, err
}

// Claim pays out everything the owner earned in asset.
func (e *Engine) Claim(id, owner, asset common.Address) (uint64, error) {
	var amount uint64
	err := e.run("claim", func(now uint64) error {
		pool, err := e.repo.Pool(id)
		if err != nil {
			return err
		}
		farmer, err := e.repo.Participant(id, owner)
		if err != nil {
			return err
		}
		if amount, err = pool.Claim(now, farmer, asset); err != nil {
			return err
		}
		if amount > 0 {
			if err := e.custody.Payout(id, owner, asset, amount); err != nil {
				return err
			}
		}
		if err := e.commit(id, pool, farmer); err != nil {
			return err
		}
		logger.Debug("claimed", "pool", id, "owner", owner, "asset", asset, "amount", amount)
		return nil
	})
	return amount, err
}

// Refresh credits the owner up to now.
func (e *Engine) Refresh(id, owner common.Address) error {
	return e.run("refresh", func(now uint64) error {
		pool, err := e.repo.Pool(id)
		if err != nil {
			return err
		}
		farmer, err := e.repo.Participant(id, owner)
		if err != nil {
			return err
		}
		if err := pool.Refresh(now, farmer); err != nil {
			return err
		}
		return e.commit(id, pool, farmer)
	})
}

func (e *Engine) Pool(id common.Address) (*farm.Pool, error) {
	return e.repo.Pool(id)
}

func (e *Engine) Pools() ([]common.Address, error) {
	return e.repo.Pools()
}

func (e *Engine) Participant(id, owner common.Address) (*farm.Participant, error) {
	return e.repo.Participant(id, owner)
}

func (e *Engine) Receipt(id, funder, asset common.Address) (*store.FundingReceipt, error) {
	return e.repo.Receipt(id, funder, asset)
}

// Preview returns the pool and the farmer as a Refresh would leave them now,
// without storing anything.
func (e *Engine) Preview(id, owner common.Address) (*farm.Pool, *farm.Participant, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, err := e.repo.Pool(id)
	if err != nil {
		return nil, nil, err
	}
	farmer, err := e.repo.Participant(id, owner)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Refresh(e.now(), farmer); err != nil {
		return nil, nil, err
	}
	return pool, farmer, nil
}
