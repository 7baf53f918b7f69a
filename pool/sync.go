// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/pkg/errors"

	"github.com/vechain/revpool/amount"
	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/pool/accounts"
	"github.com/vechain/revpool/pool/gc"
	"github.com/vechain/revpool/pool/ledger"
	"github.com/vechain/revpool/types"
)

// syncState loads the sync state of addr for ra, or the state of an account
// that never settled it. Such an account starts at its creation or at the
// listing of the asset, whichever came later.
func (s *state) syncState(addr types.Address, acc *accounts.Account, ra ledger.RevenueAsset) (*accounts.SyncState, error) {
	st, err := s.accounts.SyncState(addr, ra.Asset)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return accounts.NewSyncState(max(acc.CreatedAtSeq, ra.ListedAt), acc.CreatedAt), nil
	}
	st.Amount = amount.Or(st.Amount)
	return st, nil
}

// settleAsset brings the sync state of addr for ra up to horizon. Unless
// previewing, the state is stored first and the scanned balance entries are
// released after.
func (s *state) settleAsset(
	addr types.Address,
	acc *accounts.Account,
	ra ledger.RevenueAsset,
	horizon uint64,
	preview bool,
) (*accounts.SyncState, gc.Stats, error) {
	var stats gc.Stats

	st, err := s.syncState(addr, acc, ra)
	if err != nil {
		return nil, stats, err
	}
	if st.Checkpoint >= horizon {
		return st, stats, nil
	}

	res, err := s.engine.Settle(addr, ra.Asset, st.Checkpoint, horizon, acc.Delegation)
	if err != nil {
		return nil, stats, err
	}
	if st.Amount, err = amount.Add(st.Amount, res.Amount); err != nil {
		return nil, stats, errors.WithMessagef(err, "settled %s of %s", ra.Asset, addr)
	}
	st.Checkpoint = horizon
	st.SyncedAt = s.env.Time
	if preview {
		return st, stats, nil
	}

	if err := s.accounts.SetSyncState(addr, ra.Asset, st); err != nil {
		return nil, stats, err
	}
	if stats, err = s.collector.ReleaseBalances(ra.Asset, res.Scanned); err != nil {
		return nil, stats, err
	}
	metricScannedEntries().Observe(int64(len(res.Scanned)))
	return st, stats, nil
}

// settle brings addr up to horizon for every revenue asset, or only for
// `only` when set, then prunes the delegation entries all assets are past.
// It returns the resulting sync states keyed by asset key.
func (s *state) settle(
	addr types.Address,
	acc *accounts.Account,
	horizon uint64,
	only *asset.Asset,
	preview bool,
) (map[string]*accounts.SyncState, error) {
	assets, err := s.ledger.RevenueAssets()
	if err != nil {
		return nil, err
	}

	var (
		states        = make(map[string]*accounts.SyncState, len(assets))
		minCheckpoint = horizon
		total         gc.Stats
	)
	for _, ra := range assets {
		var st *accounts.SyncState
		if only == nil || *only == ra.Asset {
			var stats gc.Stats
			if st, stats, err = s.settleAsset(addr, acc, ra, horizon, preview); err != nil {
				return nil, err
			}
			total.Add(stats)
		} else if st, err = s.syncState(addr, acc, ra); err != nil {
			return nil, err
		}
		states[ra.Asset.Key()] = st
		minCheckpoint = min(minCheckpoint, st.Checkpoint)
	}
	if preview {
		return states, nil
	}

	stats, err := s.collector.PruneDelegations(addr, minCheckpoint)
	if err != nil {
		return nil, err
	}
	total.Add(stats)
	observeCollection(total)
	return states, nil
}

// amortize settles a batch of other accounts. While the latest balance entry
// still takes deposits they stop short of it, so it stays open.
func (s *state) amortize(acting *types.Address) (int, error) {
	horizon, err := s.stats.Sequence()
	if err != nil {
		return 0, err
	}
	open, ok, err := s.consolidator.Open()
	if err != nil {
		return 0, err
	}
	if ok {
		horizon = open
	}
	count, err := s.stats.AccountCount()
	if err != nil {
		return 0, err
	}

	return s.scheduler.Run(acting, count, func(addr types.Address) error {
		acc, err := s.account(addr)
		if err != nil {
			return err
		}
		_, err = s.settle(addr, acc, horizon, nil, false)
		return err
	})
}
