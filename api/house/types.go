// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package house

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/revpool/api/utils"
	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/pool"
	"github.com/vechain/revpool/types"
)

type AssetAmount struct {
	Asset  asset.Asset           `json:"asset"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type RevenueAsset struct {
	Asset    asset.Asset `json:"asset"`
	ListedAt uint64      `json:"listedAt"`
}

type House struct {
	Name             string                `json:"name"`
	Description      string                `json:"description"`
	Logo             string                `json:"logo"`
	Address          types.Address         `json:"address"`
	CreatedAt        uint64                `json:"createdAt"`
	CreatedBy        types.Address         `json:"createdBy"`
	Manager          types.Address         `json:"manager"`
	StakingAsset     asset.Asset           `json:"stakingAsset"`
	UnbondingSeconds uint64                `json:"unbondingSeconds"`
	MinStake         *math.HexOrDecimal256 `json:"minStake"`
	Sequence         uint64                `json:"sequence"`
	Generation       uint64                `json:"generation"`
	Accounts         uint64                `json:"accounts"`
	TotalDelegation  *math.HexOrDecimal256 `json:"totalDelegation"`
	TotalUnbonding   *math.HexOrDecimal256 `json:"totalUnbonding"`
	RevenueAssets    []RevenueAsset        `json:"revenueAssets"`
	Holdings         []AssetAmount         `json:"holdings"`
	RetainedTaxes    []AssetAmount         `json:"retainedTaxes"`
	TaxPct           uint64                `json:"taxPct"`
}

type Totals struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
	Count  uint64                `json:"count"`
}

type Depositor struct {
	Address types.Address `json:"address"`
	Totals
}

type Deposits struct {
	Asset      asset.Asset `json:"asset"`
	Totals     Totals      `json:"totals"`
	Depositors []Depositor `json:"depositors"`
}

type TaxTotals struct {
	Balance *math.HexOrDecimal256 `json:"balance"`
	Total   *math.HexOrDecimal256 `json:"total"`
}

type TaxRecipient struct {
	Address   types.Address        `json:"address"`
	Pct       uint64               `json:"pct"`
	Autosend  bool                 `json:"autosend"`
	Immutable bool                 `json:"immutable"`
	Name      string               `json:"name"`
	Logo      string               `json:"logo"`
	Totals    map[string]TaxTotals `json:"totals"`
}

type Taxes struct {
	Recipients []TaxRecipient `json:"recipients"`
	Pct        uint64         `json:"pct"`
}

func convertAmounts(in []pool.AssetAmount) []AssetAmount {
	out := make([]AssetAmount, 0, len(in))
	for _, a := range in {
		out = append(out, AssetAmount{Asset: a.Asset, Amount: utils.Amount(a.Amount)})
	}
	return out
}

func convertHouse(v *pool.HouseView) *House {
	h := &House{
		Name:             v.Name,
		Description:      v.Description,
		Logo:             v.Logo,
		Address:          v.Address,
		CreatedAt:        v.CreatedAt,
		CreatedBy:        v.CreatedBy,
		Manager:          v.Manager,
		StakingAsset:     v.StakingAsset,
		UnbondingSeconds: v.UnbondingSeconds,
		MinStake:         utils.Amount(v.MinStake),
		Sequence:         v.Stats.Sequence,
		Generation:       v.Stats.Generation,
		Accounts:         v.Stats.Accounts,
		TotalDelegation:  utils.Amount(v.Stats.TotalDelegation),
		TotalUnbonding:   utils.Amount(v.Stats.TotalUnbonding),
		RevenueAssets:    make([]RevenueAsset, 0, len(v.RevenueAssets)),
		Holdings:         convertAmounts(v.Holdings),
		RetainedTaxes:    convertAmounts(v.RetainedTaxes),
		TaxPct:           v.TaxPct,
	}
	for _, ra := range v.RevenueAssets {
		h.RevenueAssets = append(h.RevenueAssets, RevenueAsset{Asset: ra.Asset, ListedAt: ra.ListedAt})
	}
	return h
}

func convertDeposits(views []pool.DepositsView) []Deposits {
	out := make([]Deposits, 0, len(views))
	for _, v := range views {
		d := Deposits{
			Asset:      v.Asset,
			Totals:     Totals{Amount: utils.Amount(v.Totals.Amount), Count: v.Totals.Count},
			Depositors: make([]Depositor, 0, len(v.Depositors)),
		}
		for _, item := range v.Depositors {
			d.Depositors = append(d.Depositors, Depositor{
				Address: item.Address,
				Totals:  Totals{Amount: utils.Amount(item.Totals.Amount), Count: item.Totals.Count},
			})
		}
		out = append(out, d)
	}
	return out
}

func convertTaxes(v *pool.TaxesView) *Taxes {
	t := &Taxes{Pct: v.Pct, Recipients: make([]TaxRecipient, 0, len(v.Recipients))}
	for _, r := range v.Recipients {
		tr := TaxRecipient{
			Address:   r.Address,
			Pct:       r.Pct,
			Autosend:  r.Autosend,
			Immutable: r.Immutable,
			Name:      r.Name,
			Logo:      r.Logo,
			Totals:    make(map[string]TaxTotals, len(r.Totals)),
		}
		for key, totals := range r.Totals {
			tr.Totals[key] = TaxTotals{Balance: utils.Amount(totals.Balance), Total: utils.Amount(totals.Total)}
		}
		t.Recipients = append(t.Recipients, tr)
	}
	return t
}
