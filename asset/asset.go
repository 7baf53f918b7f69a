// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package asset describes the fungible assets the pool accepts and the transfer
// instructions it emits. Moving funds is left to the caller.
package asset

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/revpool/types"
)

// Kind is the asset family.
type Kind string

const (
	// Native is a chain-native denomination, identified by its denom.
	Native Kind = "native"
	// Token is a contract token, identified by its contract address.
	Token Kind = "token"
)

const keySeparator = ":"

var ErrInvalidAsset = errors.New("invalid asset")

// Asset is a fungible asset descriptor.
type Asset struct {
	Kind Kind
	ID   string
}

// NewNative returns the native asset with the given denom.
func NewNative(denom string) Asset {
	return Asset{Kind: Native, ID: denom}
}

// NewToken returns the token asset at the given contract.
func NewToken(contract string) Asset {
	return Asset{Kind: Token, ID: contract}
}

// Key returns the canonical key, "kind:id".
func (a Asset) Key() string {
	return string(a.Kind) + keySeparator + a.ID
}

func (a Asset) String() string {
	return a.Key()
}

// Validate checks the descriptor is well formed.
func (a Asset) Validate() error {
	switch a.Kind {
	case Native, Token:
	default:
		return errors.Wrapf(ErrInvalidAsset, "unknown kind %q", a.Kind)
	}
	if a.ID == "" {
		return errors.Wrap(ErrInvalidAsset, "empty id")
	}
	for _, r := range a.ID {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return errors.Wrapf(ErrInvalidAsset, "bad id %q", a.ID)
		}
	}
	return nil
}

// ParseKey is the inverse of Key.
func ParseKey(key string) (Asset, error) {
	kind, id, ok := strings.Cut(key, keySeparator)
	if !ok {
		return Asset{}, errors.Wrapf(ErrInvalidAsset, "missing separator in %q", key)
	}
	a := Asset{Kind: Kind(kind), ID: id}
	if err := a.Validate(); err != nil {
		return Asset{}, err
	}
	return a, nil
}

// MarshalText implements encoding.TextMarshaler.
func (a Asset) MarshalText() ([]byte, error) {
	return []byte(a.Key()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Asset) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Transfer instructs the caller to move Amount of Asset to Recipient.
type Transfer struct {
	Asset     Asset
	Recipient types.Address
	Amount    *uint256.Int
}

func (t Transfer) String() string {
	return fmt.Sprintf("%s %s -> %s", t.Amount.Dec(), t.Asset.Key(), t.Recipient)
}

// BalanceQuerier reports how much of an asset an address currently holds.
type BalanceQuerier interface {
	QueryBalance(ctx context.Context, a Asset, holder types.Address) (*uint256.Int, error)
}

// BalanceQuerierFunc adapts a function to BalanceQuerier.
type BalanceQuerierFunc func(ctx context.Context, a Asset, holder types.Address) (*uint256.Int, error)

func (f BalanceQuerierFunc) QueryBalance(ctx context.Context, a Asset, holder types.Address) (*uint256.Int, error) {
	return f(ctx, a, holder)
}
