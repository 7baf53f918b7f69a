// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package taxes

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/kv"
	"github.com/vechain/revpool/lvldb"
	"github.com/vechain/revpool/pool/record"
	"github.com/vechain/revpool/pool/reverts"
	"github.com/vechain/revpool/types"
)

var (
	uluna    = asset.NewNative("uluna")
	treasury = types.BytesToAddress([]byte("treasury"))
	devs     = types.BytesToAddress([]byte("devs"))
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

func TestSetRecipient(t *testing.T) {
	withService(t, func(svc *Service) {
		require.NoError(t, svc.SetRecipient(treasury, &Recipient{Pct: 600_000}))
		require.NoError(t, svc.SetRecipient(devs, &Recipient{Pct: 400_000, Immutable: true}))

		pct, err := svc.AggregatePct()
		require.NoError(t, err)
		assert.Equal(t, uint64(PctDenominator), pct)

		assert.ErrorIs(t, svc.SetRecipient(types.BytesToAddress([]byte("x")), &Recipient{Pct: 1}), reverts.ErrTaxRateExceeded)
		assert.ErrorIs(t, svc.SetRecipient(devs, &Recipient{Pct: 1}), reverts.ErrImmutableRecipient)
		assert.ErrorIs(t, svc.SetRecipient(treasury, &Recipient{Pct: PctDenominator + 1}), reverts.ErrTaxRateExceeded)

		// replacing a recipient frees its own share
		require.NoError(t, svc.SetRecipient(treasury, &Recipient{Pct: 500_000, Name: "treasury"}))
		r, err := svc.Recipient(treasury)
		require.NoError(t, err)
		assert.Equal(t, "treasury", r.Name)
	})
}

func TestSplit(t *testing.T) {
	withService(t, func(svc *Service) {
		require.NoError(t, svc.SetRecipient(treasury, &Recipient{Pct: 100_000}))
		require.NoError(t, svc.SetRecipient(devs, &Recipient{Pct: 50_000, Autosend: true}))

		transfers, net, err := svc.Split(uluna, uint256.NewInt(1000))
		require.NoError(t, err)
		assert.Equal(t, uint64(850), net.Uint64())
		require.Len(t, transfers, 1)
		assert.Equal(t, devs, transfers[0].Recipient)
		assert.Equal(t, uint64(50), transfers[0].Amount.Uint64())

		_, _, err = svc.Split(uluna, uint256.NewInt(1000))
		require.NoError(t, err)

		held, err := svc.Retained(uluna)
		require.NoError(t, err)
		assert.Equal(t, uint64(200), held.Uint64())

		totals, err := svc.Totals(treasury, uluna)
		require.NoError(t, err)
		assert.Equal(t, uint64(200), totals.Balance.Uint64())
		assert.Equal(t, uint64(200), totals.Total.Uint64())

		totals, err = svc.Totals(devs, uluna)
		require.NoError(t, err)
		assert.True(t, totals.Balance.IsZero())
		assert.Equal(t, uint64(100), totals.Total.Uint64())
	})
}

func TestSplit_NoRecipients(t *testing.T) {
	withService(t, func(svc *Service) {
		transfers, net, err := svc.Split(uluna, uint256.NewInt(7))
		require.NoError(t, err)
		assert.Empty(t, transfers)
		assert.Equal(t, uint64(7), net.Uint64())
	})
}
