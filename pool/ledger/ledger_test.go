// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/revpool/amount"
	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/kv"
	"github.com/vechain/revpool/lvldb"
	"github.com/vechain/revpool/pool/record"
	"github.com/vechain/revpool/types"
)

var (
	uluna = asset.NewNative("uluna")
	token = asset.NewToken("0x0000000000000000000000000000456e65726779")
	alice = types.BytesToAddress([]byte("alice"))
	bob   = types.BytesToAddress([]byte("bob"))
)

func withService(t *testing.T, fn func(svc *Service)) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Update(func(rw kv.ReadWriter) error {
		fn(New(record.NewContext(rw)))
		return nil
	}))
}

func TestHouse(t *testing.T) {
	withService(t, func(svc *Service) {
		h, err := svc.House()
		require.NoError(t, err)
		assert.Nil(t, h)

		require.NoError(t, svc.SetHouse(&House{Name: "house", CreatedAt: 100, StakingAsset: uluna, Manager: alice}))
		h, err = svc.House()
		require.NoError(t, err)
		assert.Equal(t, "house", h.Name)
		assert.Equal(t, uluna, h.StakingAsset)
		assert.True(t, h.MinStake.IsZero())
		assert.Equal(t, types.DeriveAddress("house", 100), h.Address())
	})
}

func TestRevenueAssets(t *testing.T) {
	withService(t, func(svc *Service) {
		added, err := svc.ListRevenueAsset(uluna, 0)
		require.NoError(t, err)
		assert.True(t, added)
		added, err = svc.ListRevenueAsset(token, 7)
		require.NoError(t, err)
		assert.True(t, added)
		added, err = svc.ListRevenueAsset(uluna, 9)
		require.NoError(t, err)
		assert.False(t, added)

		ra, err := svc.RevenueAsset(token)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), ra.ListedAt)

		ra, err = svc.RevenueAsset(asset.NewNative("uusd"))
		require.NoError(t, err)
		assert.Nil(t, ra)

		all, err := svc.RevenueAssets()
		require.NoError(t, err)
		require.Len(t, all, 2)
		// keys are length prefixed, shorter asset keys sort first
		assert.Equal(t, uluna, all[0].Asset)
		assert.Equal(t, token, all[1].Asset)
	})
}

func TestHoldings(t *testing.T) {
	withService(t, func(svc *Service) {
		require.NoError(t, svc.AddHoldings(uluna, uint256.NewInt(10)))
		require.NoError(t, svc.SubHoldings(uluna, uint256.NewInt(4)))
		assert.ErrorIs(t, svc.SubHoldings(uluna, uint256.NewInt(7)), amount.ErrUnderflow)

		held, err := svc.Holdings(uluna)
		require.NoError(t, err)
		assert.Equal(t, uint64(6), held.Uint64())

		held, err = svc.Holdings(token)
		require.NoError(t, err)
		assert.True(t, held.IsZero())
	})
}

func TestDeposits(t *testing.T) {
	withService(t, func(svc *Service) {
		require.NoError(t, svc.RecordDeposit(uluna, uint256.NewInt(10)))
		require.NoError(t, svc.RecordDeposit(uluna, uint256.NewInt(5)))
		require.NoError(t, svc.RecordDepositor(uluna, alice, uint256.NewInt(10)))
		require.NoError(t, svc.RecordDepositor(uluna, bob, uint256.NewInt(5)))
		require.NoError(t, svc.RecordDepositor(token, bob, uint256.NewInt(1)))

		totals, err := svc.DepositTotals(uluna)
		require.NoError(t, err)
		assert.Equal(t, uint64(15), totals.Amount.Uint64())
		assert.Equal(t, uint64(2), totals.Count)

		totals, err = svc.DepositTotals(token)
		require.NoError(t, err)
		assert.Zero(t, totals.Count)

		depositors, err := svc.Depositors(uluna)
		require.NoError(t, err)
		require.Len(t, depositors, 2)
		assert.Equal(t, bob, depositors[0].Address)
		assert.Equal(t, uint64(5), depositors[0].Totals.Amount.Uint64())
		assert.Equal(t, alice, depositors[1].Address)
	})
}
