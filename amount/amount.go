// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package amount implements checked arithmetic over non-negative 128-bit amounts.
// Values are carried in *uint256.Int and every result is bounds-checked against Max.
package amount

import (
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var (
	ErrOverflow     = errors.New("amount: overflow")
	ErrUnderflow    = errors.New("amount: underflow")
	ErrDivideByZero = errors.New("amount: divide by zero")
	ErrInvalid      = errors.New("amount: invalid")
)

// Max is the largest representable amount, 2^128-1.
var Max = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 128), 1)

// Zero returns a fresh zero amount.
func Zero() *uint256.Int {
	return new(uint256.Int)
}

// New returns an amount holding v.
func New(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

// Or returns v, or a zero amount when v is nil. Decoded records may carry nil pointers.
func Or(v *uint256.Int) *uint256.Int {
	if v == nil {
		return Zero()
	}
	return v
}

// Add returns a+b.
func Add(a, b *uint256.Int) (*uint256.Int, error) {
	a, b = Or(a), Or(b)
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow || z.Gt(Max) {
		return nil, errors.Wrapf(ErrOverflow, "%s + %s", a.Dec(), b.Dec())
	}
	return z, nil
}

// Sub returns a-b.
func Sub(a, b *uint256.Int) (*uint256.Int, error) {
	a, b = Or(a), Or(b)
	z, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, errors.Wrapf(ErrUnderflow, "%s - %s", a.Dec(), b.Dec())
	}
	return z, nil
}

// Sum adds all values.
func Sum(values ...*uint256.Int) (*uint256.Int, error) {
	total := Zero()
	for _, v := range values {
		var err error
		if total, err = Add(total, v); err != nil {
			return nil, err
		}
	}
	return total, nil
}

// MulDiv returns base*num/den, truncating. The product is computed in 256 bits.
func MulDiv(base, num, den *uint256.Int) (*uint256.Int, error) {
	base, num, den = Or(base), Or(num), Or(den)
	if den.IsZero() {
		return nil, errors.Wrapf(ErrDivideByZero, "%s * %s / 0", base.Dec(), num.Dec())
	}
	product, overflow := new(uint256.Int).MulOverflow(base, num)
	if overflow {
		return nil, errors.Wrapf(ErrOverflow, "%s * %s", base.Dec(), num.Dec())
	}
	z := product.Div(product, den)
	if z.Gt(Max) {
		return nil, errors.Wrapf(ErrOverflow, "%s * %s / %s", base.Dec(), num.Dec(), den.Dec())
	}
	return z, nil
}

// Parse reads a decimal amount.
func Parse(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.Wrap(ErrInvalid, "empty")
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalid, "%q: %v", s, err)
	}
	if v.Gt(Max) {
		return nil, errors.Wrapf(ErrOverflow, "%q", s)
	}
	return v, nil
}

// Copy returns a copy of v, treating nil as zero.
func Copy(v *uint256.Int) *uint256.Int {
	return new(uint256.Int).Set(Or(v))
}
