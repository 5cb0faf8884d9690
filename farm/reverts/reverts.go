// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure.
type Kind uint8

const (
	ArithmeticOverflow Kind = iota + 1
	ArithmeticUnderflow
	UnknownRewardAsset
	RewardLocked
	MinStakingPeriodNotElapsed
	CooldownNotElapsed
	VaultEmpty
	BookkeepingInvariantViolated
	RewardUnderfunded
	InvalidDuration
	InvalidState
	DuplicateRewardAsset
	UnauthorizedFunder
	NotPoolManager
	NotFound
)

var kindNames = map[Kind]string{
	ArithmeticOverflow:           "arithmetic overflow",
	ArithmeticUnderflow:          "arithmetic underflow",
	UnknownRewardAsset:           "unknown reward asset",
	RewardLocked:                 "reward locked",
	MinStakingPeriodNotElapsed:   "min staking period not elapsed",
	CooldownNotElapsed:           "cooldown not elapsed",
	VaultEmpty:                   "vault empty",
	BookkeepingInvariantViolated: "bookkeeping invariant violated",
	RewardUnderfunded:            "reward underfunded",
	InvalidDuration:              "invalid duration",
	InvalidState:                 "invalid state",
	DuplicateRewardAsset:         "duplicate reward asset",
	UnauthorizedFunder:           "unauthorized funder",
	NotPoolManager:               "not pool manager",
	NotFound:                     "not found",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ErrRevert is a domain failure. The operation that produced it left no
// observable change behind.
type ErrRevert struct {
	kind     Kind
	message  string
	quantity uint64
}

// New creates a revert of the given kind. quantity is the offending value,
// e.g. the seconds still to wait or the amount that could not be covered.
func New(kind Kind, quantity uint64, format string, args ...any) *ErrRevert {
	return &ErrRevert{
		kind:     kind,
		message:  fmt.Sprintf(format, args...),
		quantity: quantity,
	}
}

func (e *ErrRevert) Error() string {
	return e.kind.String() + ": " + e.message
}

func (e *ErrRevert) Kind() Kind { return e.kind }

func (e *ErrRevert) Quantity() uint64 { return e.quantity }

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf unwraps err and returns its kind.
func KindOf(err error) (Kind, bool) {
	var ve *ErrRevert
	if err == nil || !errors.As(err, &ve) {
		return 0, false
	}
	return ve.kind, true
}

// Is reports whether err is a revert of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
