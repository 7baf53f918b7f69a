// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/revpool/amount"
)

// Raw is a single RLP encoded value stored under a fixed key.
type Raw[T any] struct {
	context *Context
	key     []byte
}

func NewRaw[T any](context *Context, key string) *Raw[T] {
	return &Raw[T]{context: context, key: []byte(key)}
}

// Get returns the stored value, or nil if unset.
func (r *Raw[T]) Get() (*T, error) {
	var value *T
	_, err := r.context.load(r.key, func(raw []byte) error {
		value = new(T)
		return errors.Wrapf(rlp.DecodeBytes(raw, value), "decode %s", r.key)
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (r *Raw[T]) Set(value *T) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrapf(err, "encode %s", r.key)
	}
	return r.context.store(r.key, raw)
}

func (r *Raw[T]) Delete() error {
	return r.context.remove(r.key)
}

// Uint64 is a counter slot. Unset reads as zero.
type Uint64 struct {
	raw *Raw[uint64]
}

func NewUint64(context *Context, key string) *Uint64 {
	return &Uint64{raw: NewRaw[uint64](context, key)}
}

func (u *Uint64) Get() (uint64, error) {
	v, err := u.raw.Get()
	if err != nil || v == nil {
		return 0, err
	}
	return *v, nil
}

func (u *Uint64) Set(value uint64) error {
	return u.raw.Set(&value)
}

// Increment adds one and returns the new value.
func (u *Uint64) Increment() (uint64, error) {
	v, err := u.Get()
	if err != nil {
		return 0, err
	}
	if v+1 < v {
		return 0, errors.Wrapf(amount.ErrOverflow, "increment %s", u.raw.key)
	}
	v++
	return v, u.Set(v)
}

// Uint256 is an amount slot. Unset reads as zero.
type Uint256 struct {
	raw *Raw[uint256.Int]
}

func NewUint256(context *Context, key string) *Uint256 {
	return &Uint256{raw: NewRaw[uint256.Int](context, key)}
}

func (u *Uint256) Get() (*uint256.Int, error) {
	v, err := u.raw.Get()
	if err != nil {
		return nil, err
	}
	return amount.Or(v), nil
}

func (u *Uint256) Set(value *uint256.Int) error {
	return u.raw.Set(amount.Or(value))
}

func (u *Uint256) Add(value *uint256.Int) error {
	v, err := u.Get()
	if err != nil {
		return err
	}
	sum, err := amount.Add(v, value)
	if err != nil {
		return errors.WithMessagef(err, "add to %s", u.raw.key)
	}
	return u.Set(sum)
}

func (u *Uint256) Sub(value *uint256.Int) error {
	v, err := u.Get()
	if err != nil {
		return err
	}
	diff, err := amount.Sub(v, value)
	if err != nil {
		return errors.WithMessagef(err, "sub from %s", u.raw.key)
	}
	return u.Set(diff)
}
