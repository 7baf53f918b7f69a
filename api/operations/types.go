// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package operations

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/revpool/api/utils"
	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/pool"
	"github.com/vechain/revpool/types"
)

type Deposit struct {
	Sender types.Address         `json:"sender"`
	Asset  asset.Asset           `json:"asset"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type Stake struct {
	Sender     types.Address         `json:"sender"`
	Amount     *math.HexOrDecimal256 `json:"amount"`
	OnBehalfOf *types.Address        `json:"onBehalfOf,omitempty"`
}

// Unstake without an amount unstakes everything.
type Unstake struct {
	Sender     types.Address         `json:"sender"`
	Amount     *math.HexOrDecimal256 `json:"amount,omitempty"`
	OnBehalfOf *types.Address        `json:"onBehalfOf,omitempty"`
}

type Claim struct {
	Sender types.Address `json:"sender"`
	Asset  asset.Asset   `json:"asset"`
}

type AddRevenueAsset struct {
	Sender types.Address `json:"sender"`
	Asset  asset.Asset   `json:"asset"`
}

type SetTaxRecipient struct {
	Sender    types.Address `json:"sender"`
	Address   types.Address `json:"address"`
	Pct       uint64        `json:"pct"`
	Autosend  bool          `json:"autosend"`
	Immutable bool          `json:"immutable"`
	Name      string        `json:"name"`
	Logo      string        `json:"logo"`
}

type Transfer struct {
	Asset     asset.Asset           `json:"asset"`
	Recipient types.Address         `json:"recipient"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
}

// Receipt is the outcome of an operation. The caller executes the transfers.
type Receipt struct {
	Action    string        `json:"action"`
	Sender    types.Address `json:"sender"`
	Time      uint64        `json:"time"`
	Sequence  uint64        `json:"sequence"`
	Transfers []Transfer    `json:"transfers"`
	Amortized int           `json:"amortized"`
}

func ConvertReceipt(r *pool.Receipt) *Receipt {
	receipt := &Receipt{
		Action:    string(r.Action),
		Sender:    r.Sender,
		Time:      r.Time,
		Sequence:  r.Sequence,
		Transfers: make([]Transfer, 0, len(r.Transfers)),
		Amortized: r.Amortized,
	}
	for _, t := range r.Transfers {
		receipt.Transfers = append(receipt.Transfers, Transfer{
			Asset:     t.Asset,
			Recipient: t.Recipient,
			Amount:    utils.Amount(t.Amount),
		})
	}
	return receipt
}
