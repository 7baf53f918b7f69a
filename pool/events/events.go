// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"github.com/holiman/uint256"

	"github.com/vechain/revpool/amount"
)

// BalanceEntry is the revenue deposited for one asset within a window of the
// global sequence. Deposits made while the entry is open accumulate in Amount.
type BalanceEntry struct {
	Amount          *uint256.Int
	TotalDelegation *uint256.Int // pool delegation when the entry was opened
	RefCount        uint64       // accounts that still have to settle past the entry
	Accounts        uint64       // account count when the entry was opened
	Generation      uint64
}

// Untouched reports whether no account has settled past the entry yet.
func (b *BalanceEntry) Untouched() bool {
	return b.RefCount == b.Accounts
}

// Share returns the part of the entry owed to an account holding delegation.
func (b *BalanceEntry) Share(delegation *uint256.Int) (*uint256.Int, error) {
	if amount.Or(delegation).IsZero() {
		return amount.Zero(), nil
	}
	return amount.MulDiv(b.Amount, delegation, b.TotalDelegation)
}

// DelegationEntry is an account's total delegation right after a change.
type DelegationEntry struct {
	Delegation *uint256.Int
}

type BalanceItem struct {
	Seq   uint64
	Entry *BalanceEntry
}

type DelegationItem struct {
	Seq   uint64
	Entry *DelegationEntry
}
