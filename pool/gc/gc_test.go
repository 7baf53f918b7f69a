// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gc

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/kv"
	"github.com/vechain/revpool/lvldb"
	"github.com/vechain/revpool/pool/events"
	"github.com/vechain/revpool/pool/record"
	"github.com/vechain/revpool/types"
)

var (
	uluna = asset.NewNative("uluna")
	alice = types.BytesToAddress([]byte("alice"))
)

func withCollector(t *testing.T, fn func(ev *events.Service, c *Collector)) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Update(func(rw kv.ReadWriter) error {
		ev := events.New(record.NewContext(rw))
		fn(ev, New(ev))
		return nil
	}))
}

func TestReleaseBalances(t *testing.T) {
	withCollector(t, func(ev *events.Service, c *Collector) {
		for seq := uint64(0); seq < 3; seq++ {
			require.NoError(t, ev.SetBalance(uluna, seq, &events.BalanceEntry{
				Amount:          uint256.NewInt(10),
				TotalDelegation: uint256.NewInt(10),
				RefCount:        seq + 1,
				Accounts:        seq + 1,
			}))
		}

		scanned, err := ev.Balances(uluna, 0, 3)
		require.NoError(t, err)
		stats, err := c.ReleaseBalances(uluna, scanned)
		require.NoError(t, err)
		assert.Equal(t, Stats{Released: 3, Balances: 1}, stats)

		live, err := ev.AllBalances(uluna)
		require.NoError(t, err)
		require.Len(t, live, 2)
		assert.Equal(t, uint64(1), live[0].Entry.RefCount)
		assert.Equal(t, uint64(2), live[1].Entry.RefCount)

		// a second reader of every entry retires entry 1
		stats, err = c.ReleaseBalances(uluna, live)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Balances)

		live, err = ev.AllBalances(uluna)
		require.NoError(t, err)
		require.Len(t, live, 1)
		assert.Equal(t, uint64(2), live[0].Seq)
	})
}

func TestReleaseBalances_OverRelease(t *testing.T) {
	withCollector(t, func(ev *events.Service, c *Collector) {
		item := events.BalanceItem{Seq: 4, Entry: &events.BalanceEntry{Amount: uint256.NewInt(1)}}
		_, err := c.ReleaseBalances(uluna, []events.BalanceItem{item})
		assert.ErrorIs(t, err, ErrReleased)
	})
}

func TestPruneDelegations(t *testing.T) {
	withCollector(t, func(ev *events.Service, c *Collector) {
		for _, seq := range []uint64{1, 4, 6, 9} {
			require.NoError(t, ev.SetDelegation(alice, seq, uint256.NewInt(seq)))
		}

		// nothing before the opening entry of checkpoint 3
		stats, err := c.PruneDelegations(alice, 3)
		require.NoError(t, err)
		assert.Zero(t, stats.Delegations)

		stats, err = c.PruneDelegations(alice, 6)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Delegations)

		left, err := ev.AllDelegations(alice)
		require.NoError(t, err)
		require.Len(t, left, 2)
		assert.Equal(t, uint64(6), left[0].Seq)
		assert.Equal(t, uint64(9), left[1].Seq)

		// the latest entry always survives
		stats, err = c.PruneDelegations(alice, 100)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Delegations)
		left, err = ev.AllDelegations(alice)
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, uint64(9), left[0].Seq)
	})
}
