// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package consolidator records deposits in the balance series, merging
// back-to-back deposits of an asset into one entry while the delegation
// snapshot it carries is still current.
package consolidator

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/revpool/amount"
	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/pool/events"
	"github.com/vechain/revpool/pool/globalstats"
)

type Consolidator struct {
	events *events.Service
	stats  *globalstats.Service
}

func New(ev *events.Service, stats *globalstats.Service) *Consolidator {
	return &Consolidator{events: ev, stats: stats}
}

// mergeable reports whether entry can take more revenue: same generation and
// no account has settled past it.
func mergeable(entry *events.BalanceEntry, generation uint64) bool {
	return entry != nil && entry.Generation == generation && entry.Untouched()
}

// Deposit adds revenue to the balance series of a. It returns the sequence of
// the entry written and whether an existing entry was extended.
func (c *Consolidator) Deposit(a asset.Asset, revenue *uint256.Int) (uint64, bool, error) {
	seq, err := c.stats.Sequence()
	if err != nil {
		return 0, false, err
	}
	generation, err := c.stats.Generation()
	if err != nil {
		return 0, false, err
	}

	if seq > 0 {
		prev, err := c.events.Balance(a, seq-1)
		if err != nil {
			return 0, false, err
		}
		if mergeable(prev, generation) {
			if prev.Amount, err = amount.Add(prev.Amount, revenue); err != nil {
				return 0, false, errors.WithMessagef(err, "merge into %s@%d", a, seq-1)
			}
			if err := c.events.SetBalance(a, seq-1, prev); err != nil {
				return 0, false, err
			}
			return seq - 1, true, nil
		}
	}

	total, err := c.stats.TotalDelegation()
	if err != nil {
		return 0, false, err
	}
	accounts, err := c.stats.AccountCount()
	if err != nil {
		return 0, false, err
	}
	if seq, err = c.stats.AllocateSequence(); err != nil {
		return 0, false, err
	}
	entry := &events.BalanceEntry{
		Amount:          amount.Copy(revenue),
		TotalDelegation: total,
		RefCount:        accounts,
		Accounts:        accounts,
		Generation:      generation,
	}
	if err := c.events.SetBalance(a, seq, entry); err != nil {
		return 0, false, err
	}
	if err := c.stats.SetLastBalanceAsset(a); err != nil {
		return 0, false, err
	}
	return seq, false, nil
}

// Open returns the sequence of the entry the next deposit could merge into.
// Settling past it would close it, so background settlement stops short of it.
func (c *Consolidator) Open() (uint64, bool, error) {
	seq, err := c.stats.Sequence()
	if err != nil || seq == 0 {
		return 0, false, err
	}
	last, err := c.stats.LastBalanceAsset()
	if err != nil || last == nil {
		return 0, false, err
	}
	generation, err := c.stats.Generation()
	if err != nil {
		return 0, false, err
	}
	entry, err := c.events.Balance(*last, seq-1)
	if err != nil {
		return 0, false, err
	}
	if !mergeable(entry, generation) {
		return 0, false, nil
	}
	return seq - 1, true, nil
}
