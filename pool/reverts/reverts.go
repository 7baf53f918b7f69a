// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts holds the caller-facing faults of the pool. A revert aborts
// the operation and is reported back; every other error is an internal fault.
package reverts

import (
	"errors"
)

type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

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

var (
	// authorization
	ErrAccountNotFound = New("account not found")
	ErrUnauthorized    = New("unauthorized")

	// validation
	ErrAssetNotAccepted       = New("asset not accepted")
	ErrTaxRateExceeded        = New("aggregate tax rate exceeds 100%")
	ErrImmutableRecipient     = New("tax recipient is immutable")
	ErrNoDelegation           = New("pool has no delegation")
	ErrInsufficientDelegation = New("insufficient delegation")
	ErrZeroAmount             = New("amount must be positive")
	ErrBelowMinStake          = New("stake below minimum")
	ErrNotInitialized         = New("pool not initialized")
	ErrAlreadyInitialized     = New("pool already initialized")
)
