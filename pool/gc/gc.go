// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package gc retires log entries that no future settlement can read.
package gc

import (
	"github.com/pkg/errors"

	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/log"
	"github.com/vechain/revpool/pool/events"
	"github.com/vechain/revpool/types"
)

var logger = log.WithContext("pkg", "gc")

// ErrReleased means a balance entry was released more times than it has readers.
var ErrReleased = errors.New("gc: balance entry already released")

// Stats counts what one collection deleted.
type Stats struct {
	Released    int // balance entries decremented
	Balances    int // balance entries deleted
	Delegations int // delegation entries deleted
}

func (s *Stats) Add(other Stats) {
	s.Released += other.Released
	s.Balances += other.Balances
	s.Delegations += other.Delegations
}

type Collector struct {
	events *events.Service
}

func New(ev *events.Service) *Collector {
	return &Collector{events: ev}
}

// ReleaseBalances drops one reference from each scanned entry, deleting the
// entries nobody else has to read. Call it only after the settled amount has
// been stored.
func (c *Collector) ReleaseBalances(a asset.Asset, scanned []events.BalanceItem) (Stats, error) {
	var stats Stats
	for _, item := range scanned {
		entry := item.Entry
		if entry.RefCount == 0 {
			return stats, errors.Wrapf(ErrReleased, "%s@%d", a, item.Seq)
		}
		entry.RefCount--
		stats.Released++

		if entry.RefCount == 0 {
			if err := c.events.DeleteBalance(a, item.Seq); err != nil {
				return stats, err
			}
			stats.Balances++
			continue
		}
		if err := c.events.SetBalance(a, item.Seq, entry); err != nil {
			return stats, err
		}
	}
	if stats.Balances > 0 {
		logger.Debug("balance entries deleted", "asset", a, "count", stats.Balances)
	}
	return stats, nil
}

// PruneDelegations deletes the delegation entries of addr that every asset
// has settled past. minCheckpoint is the lowest checkpoint over all of the
// account's revenue assets. The latest entry at or before it opens the next
// settlement and is kept.
func (c *Collector) PruneDelegations(addr types.Address, minCheckpoint uint64) (Stats, error) {
	var stats Stats
	if minCheckpoint == ^uint64(0) {
		return stats, errors.New("gc: checkpoint out of range")
	}
	items, err := c.events.Delegations(addr, 0, minCheckpoint+1)
	if err != nil {
		return stats, err
	}
	if len(items) < 2 {
		return stats, nil
	}
	for _, item := range items[:len(items)-1] {
		if err := c.events.DeleteDelegation(addr, item.Seq); err != nil {
			return stats, err
		}
		stats.Delegations++
	}
	logger.Trace("delegation entries deleted", "account", addr, "count", stats.Delegations)
	return stats, nil
}
