// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package dev exposes the in-memory vault and custody ledgers used by a
// standalone daemon, so gems can be deposited and balances inspected.
package dev

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/api/utils"
	"github.com/vechain/gemfarm/engine"
)

type Dev struct {
	vault   *engine.MemVault
	custody *engine.MemCustody
}

func New(vault *engine.MemVault, custody *engine.MemCustody) *Dev {
	return &Dev{vault: vault, custody: custody}
}

type Vault struct {
	Gems   uint64 `json:"gems"`
	Locked bool   `json:"locked"`
}

type Gems struct {
	Gems math.HexOrDecimal64 `json:"gems"`
}

func parsePair(req *http.Request, a, b string) ([2]common.Address, error) {
	var addrs [2]common.Address
	v := mux.Vars(req)
	for i, name := range []string{a, b} {
		addr, err := utils.ParseAddress(v[name])
		if err != nil {
			return addrs, utils.BadRequest(errors.WithMessage(err, name))
		}
		addrs[i] = addr
	}
	return addrs, nil
}

func (d *Dev) handleGetVault(w http.ResponseWriter, req *http.Request) error {
	addrs, err := parsePair(req, "pool", "owner")
	if err != nil {
		return err
	}
	gems, err := d.vault.GemCount(addrs[0], addrs[1])
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Vault{Gems: gems, Locked: d.vault.IsLocked(addrs[0], addrs[1])})
}

func (d *Dev) handleMoveGems(w http.ResponseWriter, req *http.Request) error {
	addrs, err := parsePair(req, "pool", "owner")
	if err != nil {
		return err
	}
	var body Gems
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if mux.Vars(req)["action"] == "withdraw" {
		err = d.vault.WithdrawGems(addrs[0], addrs[1], uint64(body.Gems))
	} else {
		err = d.vault.DepositGems(addrs[0], addrs[1], uint64(body.Gems))
	}
	if err != nil {
		return utils.HTTPError(err, http.StatusConflict)
	}
	return d.handleGetVault(w, req)
}

func (d *Dev) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addrs, err := parsePair(req, "account", "asset")
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"amount": d.custody.Balance(addrs[0], addrs[1])})
}

func (d *Dev) handleGetEscrow(w http.ResponseWriter, req *http.Request) error {
	addrs, err := parsePair(req, "pool", "asset")
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{
		"amount": d.custody.Escrow(addrs[0], addrs[1]),
		"fees":   d.custody.Fees(addrs[0]),
	})
}

func (d *Dev) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/vaults/{pool}/{owner}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(d.handleGetVault))
	sub.Path("/vaults/{pool}/{owner}/{action:deposit|withdraw}").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(d.handleMoveGems))
	sub.Path("/balances/{account}/{asset}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(d.handleGetBalance))
	sub.Path("/escrow/{pool}/{asset}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(d.handleGetEscrow))
}
