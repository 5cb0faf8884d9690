// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/gemfarm/engine"
	"github.com/vechain/gemfarm/farm"
	"github.com/vechain/gemfarm/farm/reverts"
	"github.com/vechain/gemfarm/farm/reward"
)

// bootstrap lists the pools a daemon makes sure exist on start.
type bootstrap struct {
	Pools []poolConfig `yaml:"pools" toml:"pools"`
}

type streamConfig struct {
	Asset string `yaml:"asset" toml:"asset"`
	Kind  string `yaml:"kind" toml:"kind"`
}

type poolConfig struct {
	ID                  string       `yaml:"id" toml:"id"`
	Manager             string       `yaml:"manager" toml:"manager"`
	MinStakingPeriodSec uint64       `yaml:"minStakingPeriodSec" toml:"minStakingPeriodSec"`
	CooldownPeriodSec   uint64       `yaml:"cooldownPeriodSec" toml:"cooldownPeriodSec"`
	UnstakingFee        uint64       `yaml:"unstakingFee" toml:"unstakingFee"`
	ExtraStakePolicy    string       `yaml:"extraStakePolicy" toml:"extraStakePolicy"`
	RewardA             streamConfig `yaml:"rewardA" toml:"rewardA"`
	RewardB             streamConfig `yaml:"rewardB" toml:"rewardB"`
	Funders             []string     `yaml:"funders" toml:"funders"`
}

func loadBootstrap(path string) (*bootstrap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read bootstrap file")
	}
	var b bootstrap
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&b); err != nil {
			return nil, errors.Wrap(err, "decode yaml bootstrap")
		}
	case ".toml":
		meta, err := toml.Decode(string(data), &b)
		if err != nil {
			return nil, errors.Wrap(err, "decode toml bootstrap")
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Errorf("unknown bootstrap field %q", undecoded[0].String())
		}
	default:
		return nil, errors.Errorf("unsupported bootstrap file extension %q", ext)
	}
	return &b, nil
}

func parseAddress(name, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Errorf("%s: invalid address %q", name, s)
	}
	return common.HexToAddress(s), nil
}

func (s streamConfig) spec(name string) (farm.StreamSpec, error) {
	asset, err := parseAddress(name+".asset", s.Asset)
	if err != nil {
		return farm.StreamSpec{}, err
	}
	kind, ok := reward.ParseKind(s.Kind)
	if !ok {
		return farm.StreamSpec{}, errors.Errorf("%s.kind: unknown reward kind %q", name, s.Kind)
	}
	return farm.StreamSpec{AssetID: asset, Kind: kind}, nil
}

// apply creates the pools that do not exist yet and authorizes the listed
// funders. Existing pools keep their stored configuration.
func (b *bootstrap) apply(e *engine.Engine) error {
	for i, pc := range b.Pools {
		if err := pc.apply(e); err != nil {
			return errors.WithMessagef(err, "pools[%d]", i)
		}
	}
	return nil
}

func (pc *poolConfig) apply(e *engine.Engine) error {
	id, err := parseAddress("id", pc.ID)
	if err != nil {
		return err
	}
	manager, err := parseAddress("manager", pc.Manager)
	if err != nil {
		return err
	}
	policy, ok := farm.ParseExtraStakePolicy(pc.ExtraStakePolicy)
	if !ok {
		return errors.Errorf("extraStakePolicy: unknown policy %q", pc.ExtraStakePolicy)
	}
	a, err := pc.RewardA.spec("rewardA")
	if err != nil {
		return err
	}
	b, err := pc.RewardB.spec("rewardB")
	if err != nil {
		return err
	}
	funders := make([]common.Address, 0, len(pc.Funders))
	for j, f := range pc.Funders {
		addr, err := parseAddress("funders", f)
		if err != nil {
			return errors.WithMessagef(err, "funders[%d]", j)
		}
		funders = append(funders, addr)
	}

	cfg := farm.Config{
		MinStakingPeriodSec: pc.MinStakingPeriodSec,
		CooldownPeriodSec:   pc.CooldownPeriodSec,
		UnstakingFee:        pc.UnstakingFee,
		ExtraStakePolicy:    policy,
	}
	if _, err := e.Pool(id); reverts.Is(err, reverts.NotFound) {
		if _, err := e.CreatePool(id, manager, cfg, a, b); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	for _, f := range funders {
		if err := e.AuthorizeFunder(id, manager, f); err != nil {
			return err
		}
	}
	return nil
}
