// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/vechain/gemfarm/farm/reverts"
)

// Precision scales the per-gem accumulators.
var Precision = uint256.NewInt(1e18)

// Kind selects the accrual model of a stream.
type Kind uint8

const (
	Variable Kind = iota + 1
	Fixed
)

func (k Kind) String() string {
	switch k {
	case Variable:
		return "variable"
	case Fixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "variable":
		return Variable, true
	case "fixed":
		return Fixed, true
	default:
		return 0, false
	}
}

// FundParams describes a funding.
type FundParams struct {
	Amount      uint64
	DurationSec uint64
	// GemsFunded is the number of gems a fixed-rate funding is sized for.
	// Zero sizes it for the gems participating at funding time.
	GemsFunded uint64
}

// Stream is one reward stream of a pool.
type Stream struct {
	AssetID common.Address
	Kind    Kind

	Funds FundsTracker
	Times TimeTracker

	// only the model matching Kind is in use
	Fixed    FixedRate
	Variable VariableRate
}

func NewStream(asset common.Address, kind Kind) (Stream, error) {
	if kind != Variable && kind != Fixed {
		return Stream{}, reverts.New(reverts.InvalidState, uint64(kind), "unknown reward kind %d", kind)
	}
	return Stream{AssetID: asset, Kind: kind}, nil
}

func (s *Stream) unknownKind() error {
	return reverts.New(reverts.InvalidState, uint64(s.Kind), "stream %s has unknown kind %d", s.AssetID.Hex(), s.Kind)
}

func (s *Stream) checkUnlocked(now uint64) error {
	if s.Times.IsLocked(now) {
		return reverts.New(reverts.RewardLocked, s.Times.LockEndTs-now,
			"stream %s locked until %d", s.AssetID.Hex(), s.Times.LockEndTs)
	}
	return nil
}

// Update brings accrual up to now. With a nil position only the stream itself
// advances; otherwise the position is credited as well.
func (s *Stream) Update(now, poolGems uint64, pos *Position) error {
	switch s.Kind {
	case Variable:
		return s.Variable.update(now, &s.Funds, &s.Times, poolGems, pos)
	case Fixed:
		return s.Fixed.update(now, &s.Funds, &s.Times, pos)
	default:
		return s.unknownKind()
	}
}

// Fund adds rewards and opens a new window of params.DurationSec from now.
// The pool must have been updated up to now.
func (s *Stream) Fund(now uint64, params FundParams) error {
	if err := s.checkUnlocked(now); err != nil {
		return err
	}
	if params.DurationSec == 0 {
		return reverts.New(reverts.InvalidDuration, 0, "funding %s needs a non-zero duration", s.AssetID.Hex())
	}
	switch s.Kind {
	case Variable:
		return s.Variable.fund(now, params.Amount, params.DurationSec, &s.Funds, &s.Times)
	case Fixed:
		return s.Fixed.fund(now, params, &s.Funds, &s.Times)
	default:
		return s.unknownKind()
	}
}

// Cancel ends the stream now and returns the refundable amount.
func (s *Stream) Cancel(now uint64) (uint64, error) {
	if err := s.checkUnlocked(now); err != nil {
		return 0, err
	}
	switch s.Kind {
	case Variable:
		return s.Variable.cancel(now, &s.Funds, &s.Times)
	case Fixed:
		return s.Fixed.cancel(now, &s.Funds, &s.Times)
	default:
		return 0, s.unknownKind()
	}
}

// Lock forbids funding and cancelling until the current window closes.
func (s *Stream) Lock() {
	s.Times.Lock()
}

// Enroll registers gems joining the stream. fresh marks a new position.
// Variable-rate streams need nothing beyond the preceding Update.
func (s *Stream) Enroll(now, gems uint64, fresh bool, tr *Tracker) error {
	switch s.Kind {
	case Variable:
		return nil
	case Fixed:
		return s.Fixed.enroll(now, gems, fresh, &s.Funds, &s.Times, tr)
	default:
		return s.unknownKind()
	}
}

// Withdraw registers a position of gems leaving the stream.
func (s *Stream) Withdraw(now, gems uint64, tr *Tracker) error {
	switch s.Kind {
	case Variable:
		return nil
	case Fixed:
		return s.Fixed.makeWhole(now, gems, &s.Times, tr)
	default:
		return s.unknownKind()
	}
}
