// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/api/utils"
	"github.com/vechain/gemfarm/engine"
	"github.com/vechain/gemfarm/farm"
	"github.com/vechain/gemfarm/farm/reward"
)

type Pools struct {
	engine *engine.Engine
}

func New(e *engine.Engine) *Pools {
	return &Pools{engine: e}
}

func (p *Pools) handleListPools(w http.ResponseWriter, _ *http.Request) error {
	ids, err := p.engine.Pools()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, ids)
}

func parseStreamSpec(s StreamSpec) (farm.StreamSpec, error) {
	kind, ok := reward.ParseKind(s.Kind)
	if !ok {
		return farm.StreamSpec{}, errors.Errorf("unknown reward kind %q", s.Kind)
	}
	return farm.StreamSpec{AssetID: s.Asset, Kind: kind}, nil
}

func (p *Pools) handleCreatePool(w http.ResponseWriter, req *http.Request) error {
	var body CreatePool
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	policy, ok := farm.ParseExtraStakePolicy(body.Config.ExtraStakePolicy)
	if !ok {
		return utils.BadRequest(errors.Errorf("config.extraStakePolicy: unknown policy %q", body.Config.ExtraStakePolicy))
	}
	a, err := parseStreamSpec(body.RewardA)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "rewardA"))
	}
	b, err := parseStreamSpec(body.RewardB)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "rewardB"))
	}
	cfg := farm.Config{
		MinStakingPeriodSec: uint64(body.Config.MinStakingPeriodSec),
		CooldownPeriodSec:   uint64(body.Config.CooldownPeriodSec),
		UnstakingFee:        uint64(body.Config.UnstakingFee),
		ExtraStakePolicy:    policy,
	}
	pool, err := p.engine.CreatePool(body.Pool, body.Manager, cfg, a, b)
	if err != nil {
		return err
	}
	w.WriteHeader(http.StatusCreated)
	return utils.WriteJSON(w, convertPool(body.Pool, pool))
}

func (p *Pools) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ParseAddress(mux.Vars(req)["pool"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "pool"))
	}
	pool, err := p.engine.Pool(id)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertPool(id, pool))
}

// handleGetFarmer returns the stored farmer, or with ?preview=true the farmer
// as a refresh would leave it now.
func (p *Pools) handleGetFarmer(w http.ResponseWriter, req *http.Request) error {
	id, owner, err := poolAndAddress(req, "owner")
	if err != nil {
		return err
	}
	var farmer *farm.Participant
	if req.URL.Query().Get("preview") == "true" {
		_, farmer, err = p.engine.Preview(id, owner)
	} else {
		farmer, err = p.engine.Participant(id, owner)
	}
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertFarmer(farmer))
}

func (p *Pools) handleGetReceipt(w http.ResponseWriter, req *http.Request) error {
	id, funder, err := poolAndAddress(req, "funder")
	if err != nil {
		return err
	}
	asset, err := utils.ParseAddress(mux.Vars(req)["asset"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "asset"))
	}
	r, err := p.engine.Receipt(id, funder, asset)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Receipt{
		Funder:         r.Funder,
		Asset:          r.AssetID,
		TotalDeposited: r.TotalDeposited,
		TotalRefunded:  r.TotalRefunded,
		LastFundedTs:   r.LastFundedTs,
	})
}

func (p *Pools) handleAuthorizeFunder(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ParseAddress(mux.Vars(req)["pool"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "pool"))
	}
	var body FunderChange
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if mux.Vars(req)["action"] == "deauthorize" {
		err = p.engine.DeauthorizeFunder(id, body.Caller, body.Funder)
	} else {
		err = p.engine.AuthorizeFunder(id, body.Caller, body.Funder)
	}
	if err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (p *Pools) handleFund(w http.ResponseWriter, req *http.Request) error {
	id, asset, err := poolAndAddress(req, "asset")
	if err != nil {
		return err
	}
	var body Fund
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	params := reward.FundParams{
		Amount:      uint64(body.Amount),
		DurationSec: uint64(body.DurationSec),
		GemsFunded:  uint64(body.GemsFunded),
	}
	if err := p.engine.Fund(id, body.Funder, asset, params); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (p *Pools) handleCancel(w http.ResponseWriter, req *http.Request) error {
	id, asset, err := poolAndAddress(req, "asset")
	if err != nil {
		return err
	}
	var body Caller
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	refund, err := p.engine.Cancel(id, body.Caller, asset)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Amount{Amount: refund})
}

func (p *Pools) handleLock(w http.ResponseWriter, req *http.Request) error {
	id, asset, err := poolAndAddress(req, "asset")
	if err != nil {
		return err
	}
	var body Caller
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.engine.Lock(id, body.Caller, asset); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (p *Pools) handleStake(w http.ResponseWriter, req *http.Request) error {
	id, owner, err := poolAndAddress(req, "owner")
	if err != nil {
		return err
	}
	if err := p.engine.Stake(id, owner); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (p *Pools) handleStakeExtra(w http.ResponseWriter, req *http.Request) error {
	id, owner, err := poolAndAddress(req, "owner")
	if err != nil {
		return err
	}
	var body StakeExtra
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.engine.StakeExtra(id, owner, uint64(body.Gems)); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (p *Pools) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	id, owner, err := poolAndAddress(req, "owner")
	if err != nil {
		return err
	}
	out, err := p.engine.Unstake(id, owner)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Unstake{
		From:     out.From.String(),
		To:       out.To.String(),
		Gems:     out.Gems,
		Released: out.Released,
		Fee:      out.Fee,
	})
}

func (p *Pools) handleClaim(w http.ResponseWriter, req *http.Request) error {
	id, owner, err := poolAndAddress(req, "owner")
	if err != nil {
		return err
	}
	asset, err := utils.ParseAddress(mux.Vars(req)["asset"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "asset"))
	}
	amount, err := p.engine.Claim(id, owner, asset)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Amount{Amount: amount})
}

func (p *Pools) handleRefresh(w http.ResponseWriter, req *http.Request) error {
	id, owner, err := poolAndAddress(req, "owner")
	if err != nil {
		return err
	}
	if err := p.engine.Refresh(id, owner); err != nil {
		return err
	}
	farmer, err := p.engine.Participant(id, owner)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertFarmer(farmer))
}

func poolAndAddress(req *http.Request, name string) (pool, addr common.Address, err error) {
	vars := mux.Vars(req)
	if pool, err = utils.ParseAddress(vars["pool"]); err != nil {
		return pool, addr, utils.BadRequest(errors.WithMessage(err, "pool"))
	}
	if addr, err = utils.ParseAddress(vars[name]); err != nil {
		return pool, addr, utils.BadRequest(errors.WithMessage(err, name))
	}
	return pool, addr, nil
}

func (p *Pools) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleListPools))
	sub.Path("").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleCreatePool))
	sub.Path("/{pool}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/{pool}/funders/{action:authorize|deauthorize}").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleAuthorizeFunder))
	sub.Path("/{pool}/receipts/{funder}/{asset}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetReceipt))
	sub.Path("/{pool}/rewards/{asset}/fund").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleFund))
	sub.Path("/{pool}/rewards/{asset}/cancel").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleCancel))
	sub.Path("/{pool}/rewards/{asset}/lock").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleLock))
	sub.Path("/{pool}/farmers/{owner}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetFarmer))
	sub.Path("/{pool}/farmers/{owner}/stake").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleStake))
	sub.Path("/{pool}/farmers/{owner}/stake-extra").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleStakeExtra))
	sub.Path("/{pool}/farmers/{owner}/unstake").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleUnstake))
	sub.Path("/{pool}/farmers/{owner}/claim/{asset}").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleClaim))
	sub.Path("/{pool}/farmers/{owner}/refresh").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleRefresh))
}
