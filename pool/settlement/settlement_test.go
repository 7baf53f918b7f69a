// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package settlement

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/revpool/amount"
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
	bob   = types.BytesToAddress([]byte("bob"))
)

func withEngine(t *testing.T, fn func(ev *events.Service, e *Engine)) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Update(func(rw kv.ReadWriter) error {
		ev := events.New(record.NewContext(rw))
		fn(ev, New(ev))
		return nil
	}))
}

func deposit(t *testing.T, ev *events.Service, seq, revenue, total uint64) {
	require.NoError(t, ev.SetBalance(uluna, seq, &events.BalanceEntry{
		Amount:          uint256.NewInt(revenue),
		TotalDelegation: uint256.NewInt(total),
		RefCount:        2,
		Accounts:        2,
	}))
}

func TestSettle_SoleAccount(t *testing.T) {
	withEngine(t, func(ev *events.Service, e *Engine) {
		require.NoError(t, ev.SetDelegation(alice, 0, uint256.NewInt(100)))
		deposit(t, ev, 0, 1000, 100)

		res, err := e.Settle(alice, uluna, 0, 1, uint256.NewInt(100))
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), res.Amount.Uint64())
		require.Len(t, res.Scanned, 1)
		assert.Equal(t, 1, res.Intervals)
	})
}

func TestSettle_ProRata(t *testing.T) {
	withEngine(t, func(ev *events.Service, e *Engine) {
		require.NoError(t, ev.SetDelegation(alice, 0, uint256.NewInt(100)))
		require.NoError(t, ev.SetDelegation(bob, 0, uint256.NewInt(200)))
		deposit(t, ev, 0, 1000, 300)

		a, err := e.Settle(alice, uluna, 0, 1, uint256.NewInt(100))
		require.NoError(t, err)
		b, err := e.Settle(bob, uluna, 0, 1, uint256.NewInt(200))
		require.NoError(t, err)

		assert.Equal(t, uint64(333), a.Amount.Uint64())
		assert.Equal(t, uint64(666), b.Amount.Uint64())
		sum, err := amount.Add(a.Amount, b.Amount)
		require.NoError(t, err)
		assert.LessOrEqual(t, sum.Uint64(), uint64(1000))
	})
}

func TestSettle_DelegationChanges(t *testing.T) {
	withEngine(t, func(ev *events.Service, e *Engine) {
		require.NoError(t, ev.SetDelegation(alice, 0, uint256.NewInt(100)))
		deposit(t, ev, 0, 1000, 100)
		// a stake at seq 1 and a deposit at seq 1: the deposit sees the new delegation
		require.NoError(t, ev.SetDelegation(alice, 1, uint256.NewInt(300)))
		deposit(t, ev, 1, 600, 600)
		require.NoError(t, ev.SetDelegation(alice, 2, uint256.NewInt(0)))
		deposit(t, ev, 2, 999, 100)

		res, err := e.Settle(alice, uluna, 0, 3, amount.Zero())
		require.NoError(t, err)
		assert.Equal(t, 3, res.Intervals)
		assert.Equal(t, uint64(1000+300), res.Amount.Uint64())
		assert.Len(t, res.Scanned, 3)

		// resuming from a checkpoint uses the delegation held there
		res, err = e.Settle(alice, uluna, 1, 2, amount.Zero())
		require.NoError(t, err)
		assert.Equal(t, uint64(300), res.Amount.Uint64())
	})
}

func TestSettle_OpeningBeforeCheckpoint(t *testing.T) {
	withEngine(t, func(ev *events.Service, e *Engine) {
		require.NoError(t, ev.SetDelegation(alice, 0, uint256.NewInt(50)))
		deposit(t, ev, 3, 100, 100)
		deposit(t, ev, 5, 100, 100)

		res, err := e.Settle(alice, uluna, 4, 6, uint256.NewInt(50))
		require.NoError(t, err)
		assert.Equal(t, uint64(50), res.Amount.Uint64())
		require.Len(t, res.Scanned, 1)
		assert.Equal(t, uint64(5), res.Scanned[0].Seq)
	})
}

func TestSettle_Idempotent(t *testing.T) {
	withEngine(t, func(ev *events.Service, e *Engine) {
		require.NoError(t, ev.SetDelegation(alice, 0, uint256.NewInt(100)))
		deposit(t, ev, 0, 1000, 100)

		for _, cp := range []uint64{1, 2} {
			res, err := e.Settle(alice, uluna, cp, 1, uint256.NewInt(100))
			require.NoError(t, err)
			assert.True(t, res.Amount.IsZero())
			assert.Empty(t, res.Scanned)
		}
	})
}

func TestSettle_Faults(t *testing.T) {
	withEngine(t, func(ev *events.Service, e *Engine) {
		_, err := e.Settle(alice, uluna, 0, 1, uint256.NewInt(100))
		assert.ErrorIs(t, err, ErrMissingOpening)

		require.NoError(t, ev.SetDelegation(alice, 0, uint256.NewInt(100)))
		deposit(t, ev, 0, 1000, 0)
		_, err = e.Settle(alice, uluna, 0, 1, uint256.NewInt(100))
		assert.ErrorIs(t, err, amount.ErrDivideByZero)

		// zero delegation never divides
		require.NoError(t, ev.SetDelegation(bob, 0, amount.Zero()))
		res, err := e.Settle(bob, uluna, 0, 1, amount.Zero())
		require.NoError(t, err)
		assert.True(t, res.Amount.IsZero())
		assert.Len(t, res.Scanned, 1)
	})
}
