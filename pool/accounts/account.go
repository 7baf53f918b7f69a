// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"github.com/holiman/uint256"

	"github.com/vechain/revpool/amount"
)

// Account is created on first stake and never removed.
type Account struct {
	CreatedAt    uint64 // unix seconds
	CreatedAtSeq uint64
	Delegation   *uint256.Int
}

// SyncState tracks how far an account has settled one revenue asset.
type SyncState struct {
	Checkpoint uint64       // sequence settled up to, exclusive
	Amount     *uint256.Int // settled and not yet claimed
	SyncedAt   uint64
}

// NewSyncState returns the state of an account that never settled the asset.
func NewSyncState(checkpoint, now uint64) *SyncState {
	return &SyncState{Checkpoint: checkpoint, Amount: amount.Zero(), SyncedAt: now}
}

// Unbonding is principal waiting to mature after an unstake.
type Unbonding struct {
	Amount    *uint256.Int
	MaturesAt uint64
}

// Matured reports whether the principal can be claimed at now.
func (u *Unbonding) Matured(now uint64) bool {
	return now >= u.MaturesAt
}

// Merge folds another unbonding of value maturing at maturesAt into u.
// The merged maturity is the amount-weighted average of both maturities.
func (u *Unbonding) Merge(value *uint256.Int, maturesAt uint64) error {
	total, err := amount.Add(u.Amount, value)
	if err != nil {
		return err
	}
	if total.IsZero() {
		u.Amount, u.MaturesAt = total, maturesAt
		return nil
	}

	// bounded by 2^64 * 2^128 * 2, no overflow in 256 bits
	weighted := new(uint256.Int).Mul(uint256.NewInt(u.MaturesAt), amount.Or(u.Amount))
	weighted.Add(weighted, new(uint256.Int).Mul(uint256.NewInt(maturesAt), amount.Or(value)))
	weighted.Div(weighted, total)

	u.Amount, u.MaturesAt = total, weighted.Uint64()
	return nil
}
