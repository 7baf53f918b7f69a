// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/vechain/revpool/metrics"
	"github.com/vechain/revpool/pool/gc"
	"github.com/vechain/revpool/pool/globalstats"
	"github.com/vechain/revpool/pool/record"
	"github.com/vechain/revpool/pool/reverts"
)

var (
	metricOperations     = metrics.LazyLoadCounterVec("pool_operations_count", []string{"action", "status"})
	metricStoreAccess    = metrics.LazyLoadCounterVec("pool_store_access_count", []string{"action", "kind"})
	metricScannedEntries = metrics.LazyLoadHistogram("pool_settlement_scanned_entries", metrics.BucketEntries)
	metricGCDeleted      = metrics.LazyLoadCounterVec("pool_gc_deleted_count", []string{"series"})
	metricAccounts       = metrics.LazyLoadCounter("pool_accounts_created_count")
	metricGlobals        = metrics.LazyLoadGaugeVec("pool_globals", []string{"name"})
)

func observeOperation(action Action, usage record.Usage, err error) {
	status := "ok"
	switch {
	case reverts.IsRevertErr(err):
		status = "reverted"
	case err != nil:
		status = "failed"
	}
	metricOperations().AddWithLabel(1, map[string]string{"action": string(action), "status": status})
	if err != nil {
		return
	}
	for kind, n := range map[string]uint64{"read": usage.Reads, "write": usage.Writes, "delete": usage.Deletes} {
		metricStoreAccess().AddWithLabel(int64(n), map[string]string{"action": string(action), "kind": kind})
	}
}

func observeCollection(stats gc.Stats) {
	if stats.Balances > 0 {
		metricGCDeleted().AddWithLabel(int64(stats.Balances), map[string]string{"series": "balance"})
	}
	if stats.Delegations > 0 {
		metricGCDeleted().AddWithLabel(int64(stats.Delegations), map[string]string{"series": "delegation"})
	}
}

// observeStats publishes the global aggregates after a commit. Amounts beyond
// int64 saturate.
func observeStats(created int, stats *globalstats.Stats) {
	metricAccounts().Add(int64(created))

	gauge := func(name string, v uint64) {
		if v > math.MaxInt64 {
			v = math.MaxInt64
		}
		metricGlobals().SetWithLabel(int64(v), map[string]string{"name": name})
	}
	gauge("sequence", stats.Sequence)
	gauge("accounts", stats.Accounts)
	gauge("total_delegation", saturate(stats.TotalDelegation))
	gauge("total_unbonding", saturate(stats.TotalUnbonding))
}

func saturate(v *uint256.Int) uint64 {
	if !v.IsUint64() {
		return math.MaxUint64
	}
	return v.Uint64()
}
