// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consolidator

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/kv"
	"github.com/vechain/revpool/lvldb"
	"github.com/vechain/revpool/pool/events"
	"github.com/vechain/revpool/pool/globalstats"
	"github.com/vechain/revpool/pool/record"
)

var (
	uluna = asset.NewNative("uluna")
	uusd  = asset.NewNative("uusd")
)

type fixture struct {
	ev    *events.Service
	stats *globalstats.Service
	c     *Consolidator
}

func withConsolidator(t *testing.T, fn func(f *fixture)) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Update(func(rw kv.ReadWriter) error {
		ctx := record.NewContext(rw)
		ev := events.New(ctx)
		stats := globalstats.New(ctx)
		require.NoError(t, stats.AddDelegation(uint256.NewInt(100)))
		_, err := stats.AddAccount()
		require.NoError(t, err)
		fn(&fixture{ev: ev, stats: stats, c: New(ev, stats)})
		return nil
	}))
}

func TestDeposit_Consolidates(t *testing.T) {
	withConsolidator(t, func(f *fixture) {
		for i := range 5 {
			seq, merged, err := f.c.Deposit(uluna, uint256.NewInt(10))
			require.NoError(t, err)
			assert.Equal(t, uint64(0), seq)
			assert.Equal(t, i > 0, merged)
		}

		entries, err := f.ev.AllBalances(uluna)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, uint64(50), entries[0].Entry.Amount.Uint64())
		assert.Equal(t, uint64(100), entries[0].Entry.TotalDelegation.Uint64())
		assert.Equal(t, uint64(1), entries[0].Entry.RefCount)

		seq, err := f.stats.Sequence()
		require.NoError(t, err)
		assert.Equal(t, uint64(1), seq)

		open, ok, err := f.c.Open()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, uint64(0), open)
	})
}

func TestDeposit_NewEntry(t *testing.T) {
	withConsolidator(t, func(f *fixture) {
		_, _, err := f.c.Deposit(uluna, uint256.NewInt(10))
		require.NoError(t, err)

		// another asset takes the next sequence and closes uluna's window
		seq, merged, err := f.c.Deposit(uusd, uint256.NewInt(10))
		require.NoError(t, err)
		assert.False(t, merged)
		assert.Equal(t, uint64(1), seq)

		seq, merged, err = f.c.Deposit(uluna, uint256.NewInt(10))
		require.NoError(t, err)
		assert.False(t, merged)
		assert.Equal(t, uint64(2), seq)

		// a generation change closes the window
		require.NoError(t, f.stats.AdvanceGeneration())
		_, ok, err := f.c.Open()
		require.NoError(t, err)
		assert.False(t, ok)
		seq, merged, err = f.c.Deposit(uluna, uint256.NewInt(10))
		require.NoError(t, err)
		assert.False(t, merged)
		assert.Equal(t, uint64(3), seq)

		// so does an account settling past the entry
		entry, err := f.ev.Balance(uluna, 3)
		require.NoError(t, err)
		entry.RefCount--
		require.NoError(t, f.ev.SetBalance(uluna, 3, entry))
		seq, merged, err = f.c.Deposit(uluna, uint256.NewInt(10))
		require.NoError(t, err)
		assert.False(t, merged)
		assert.Equal(t, uint64(4), seq)
	})
}
