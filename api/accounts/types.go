// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/revpool/api/utils"
	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/pool"
	"github.com/vechain/revpool/types"
)

type Balance struct {
	Asset  asset.Asset           `json:"asset"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type Unbonding struct {
	Amount    *math.HexOrDecimal256 `json:"amount"`
	MaturesAt uint64                `json:"maturesAt"`
	Matured   bool                  `json:"matured"`
}

// Account for marshal account
type Account struct {
	Address      types.Address         `json:"address"`
	CreatedAt    uint64                `json:"createdAt"`
	CreatedAtSeq uint64                `json:"createdAtSeq"`
	Delegation   *math.HexOrDecimal256 `json:"delegation"`
	Balances     []Balance             `json:"balances"`
	Unbonding    *Unbonding            `json:"unbonding"`
}

func convertAccount(view *pool.AccountView, now uint64) *Account {
	acc := &Account{
		Address:      view.Address,
		CreatedAt:    view.CreatedAt,
		CreatedAtSeq: view.CreatedAtSeq,
		Delegation:   utils.Amount(view.Delegation),
		Balances:     make([]Balance, 0, len(view.Balances)),
	}
	for _, b := range view.Balances {
		acc.Balances = append(acc.Balances, Balance{Asset: b.Asset, Amount: utils.Amount(b.Amount)})
	}
	if u := view.Unbonding; u != nil {
		acc.Unbonding = &Unbonding{
			Amount:    utils.Amount(u.Amount),
			MaturesAt: u.MaturesAt,
			Matured:   u.Matured(now),
		}
	}
	return acc
}
