// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package checked provides arithmetic that fails instead of wrapping.
package checked

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"

	"github.com/vechain/gemfarm/farm/reverts"
)

func Add(a, b uint64) (uint64, error) {
	v, overflow := math.SafeAdd(a, b)
	if overflow {
		return 0, reverts.New(reverts.ArithmeticOverflow, b, "%d + %d", a, b)
	}
	return v, nil
}

func Sub(a, b uint64) (uint64, error) {
	v, underflow := math.SafeSub(a, b)
	if underflow {
		return 0, reverts.New(reverts.ArithmeticUnderflow, b, "%d - %d", a, b)
	}
	return v, nil
}

func Mul(a, b uint64) (uint64, error) {
	v, overflow := math.SafeMul(a, b)
	if overflow {
		return 0, reverts.New(reverts.ArithmeticOverflow, b, "%d * %d", a, b)
	}
	return v, nil
}

// AddAssign adds v to *dst, leaving *dst untouched on failure.
func AddAssign(dst *uint64, v uint64) error {
	sum, err := Add(*dst, v)
	if err != nil {
		return err
	}
	*dst = sum
	return nil
}

// SubAssign subtracts v from *dst, leaving *dst untouched on failure.
func SubAssign(dst *uint64, v uint64) error {
	diff, err := Sub(*dst, v)
	if err != nil {
		return err
	}
	*dst = diff
	return nil
}

// MulDiv returns floor(a * b / c) computed in 256 bits.
func MulDiv(a, b, c uint64) (uint64, error) {
	z, err := MulDivU256(uint256.NewInt(a), uint256.NewInt(b), uint256.NewInt(c), false)
	if err != nil {
		return 0, err
	}
	return ToUint64(z)
}

// MulDivU256 returns a * b / c, rounded up when roundUp is set.
func MulDivU256(a, b, c *uint256.Int, roundUp bool) (*uint256.Int, error) {
	if c.IsZero() {
		return nil, reverts.New(reverts.ArithmeticOverflow, 0, "division by zero")
	}
	z, overflow := new(uint256.Int).MulDivOverflow(a, b, c)
	if overflow {
		return nil, reverts.New(reverts.ArithmeticOverflow, 0, "%s * %s / %s", a.Dec(), b.Dec(), c.Dec())
	}
	if roundUp {
		var rem uint256.Int
		rem.MulMod(a, b, c)
		if !rem.IsZero() {
			if _, overflow := z.AddOverflow(z, uint256.NewInt(1)); overflow {
				return nil, reverts.New(reverts.ArithmeticOverflow, 1, "rounding up %s", z.Dec())
			}
		}
	}
	return z, nil
}

// AddU256 returns a + b.
func AddU256(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, reverts.New(reverts.ArithmeticOverflow, 0, "%s + %s", a.Dec(), b.Dec())
	}
	return z, nil
}

// SubU256 returns a - b.
func SubU256(a, b *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, reverts.New(reverts.ArithmeticUnderflow, 0, "%s - %s", a.Dec(), b.Dec())
	}
	return z, nil
}

// MulU256 returns a * b.
func MulU256(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, reverts.New(reverts.ArithmeticOverflow, 0, "%s * %s", a.Dec(), b.Dec())
	}
	return z, nil
}

// ToUint64 narrows x, failing if it does not fit.
func ToUint64(x *uint256.Int) (uint64, error) {
	if !x.IsUint64() {
		return 0, reverts.New(reverts.ArithmeticOverflow, 0, "%s exceeds 64 bits", x.Dec())
	}
	return x.Uint64(), nil
}
