// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/holiman/uint256"

	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/pool/accounts"
	"github.com/vechain/revpool/pool/globalstats"
	"github.com/vechain/revpool/pool/ledger"
	"github.com/vechain/revpool/pool/taxes"
	"github.com/vechain/revpool/types"
)

// AssetAmount is an amount of one asset.
type AssetAmount struct {
	Asset  asset.Asset
	Amount *uint256.Int
}

// AccountView is an account with every share settled as of now.
type AccountView struct {
	Address      types.Address
	CreatedAt    uint64
	CreatedAtSeq uint64
	Delegation   *uint256.Int
	Balances     []AssetAmount
	Unbonding    *accounts.Unbonding
}

// Account returns the account of addr, or nil if it never staked. Balances
// are previewed up to the current sequence; nothing is written.
func (p *Pool) Account(env Env, addr types.Address) (*AccountView, error) {
	var view *AccountView
	err := p.view(env, func(st *state) error {
		if _, err := st.house(); err != nil {
			return err
		}
		acc, err := st.accounts.Get(addr)
		if err != nil || acc == nil {
			return err
		}
		seq, err := st.stats.Sequence()
		if err != nil {
			return err
		}
		states, err := st.settle(addr, acc, seq, nil, true)
		if err != nil {
			return err
		}
		assets, err := st.ledger.RevenueAssets()
		if err != nil {
			return err
		}
		u, err := st.accounts.Unbonding(addr)
		if err != nil {
			return err
		}

		view = &AccountView{
			Address:      addr,
			CreatedAt:    acc.CreatedAt,
			CreatedAtSeq: acc.CreatedAtSeq,
			Delegation:   acc.Delegation,
			Unbonding:    u,
		}
		for _, ra := range assets {
			view.Balances = append(view.Balances, AssetAmount{Asset: ra.Asset, Amount: states[ra.Asset.Key()].Amount})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// HouseView describes the pool as a whole.
type HouseView struct {
	ledger.House
	Address       types.Address
	Stats         globalstats.Stats
	RevenueAssets []ledger.RevenueAsset
	Holdings      []AssetAmount
	RetainedTaxes []AssetAmount
	TaxPct        uint64
}

func (p *Pool) House(env Env) (*HouseView, error) {
	var view *HouseView
	err := p.view(env, func(st *state) error {
		house, err := st.house()
		if err != nil {
			return err
		}
		stats, err := st.stats.Stats()
		if err != nil {
			return err
		}
		assets, err := st.ledger.RevenueAssets()
		if err != nil {
			return err
		}
		pct, err := st.taxes.AggregatePct()
		if err != nil {
			return err
		}
		view = &HouseView{
			House:         *house,
			Address:       house.Address(),
			Stats:         *stats,
			RevenueAssets: assets,
			TaxPct:        pct,
		}

		held := []asset.Asset{house.StakingAsset}
		for _, ra := range assets {
			if ra.Asset != house.StakingAsset {
				held = append(held, ra.Asset)
			}
		}
		for _, a := range held {
			v, err := st.ledger.Holdings(a)
			if err != nil {
				return err
			}
			view.Holdings = append(view.Holdings, AssetAmount{Asset: a, Amount: v})
		}
		for _, ra := range assets {
			v, err := st.taxes.Retained(ra.Asset)
			if err != nil {
				return err
			}
			view.RetainedTaxes = append(view.RetainedTaxes, AssetAmount{Asset: ra.Asset, Amount: v})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// DepositsView is the deposit history of one asset.
type DepositsView struct {
	Asset      asset.Asset
	Totals     *ledger.DepositTotals
	Depositors []ledger.DepositorItem
}

func (p *Pool) Deposits(env Env) ([]DepositsView, error) {
	var views []DepositsView
	err := p.view(env, func(st *state) error {
		if _, err := st.house(); err != nil {
			return err
		}
		assets, err := st.ledger.RevenueAssets()
		if err != nil {
			return err
		}
		for _, ra := range assets {
			totals, err := st.ledger.DepositTotals(ra.Asset)
			if err != nil {
				return err
			}
			depositors, err := st.ledger.Depositors(ra.Asset)
			if err != nil {
				return err
			}
			views = append(views, DepositsView{Asset: ra.Asset, Totals: totals, Depositors: depositors})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// TaxRecipientView is a recipient with what it received per asset.
type TaxRecipientView struct {
	Address types.Address
	taxes.Recipient
	Totals map[string]*taxes.Totals // by asset key
}

type TaxesView struct {
	Recipients []TaxRecipientView
	Pct        uint64
}

func (p *Pool) Taxes(env Env) (*TaxesView, error) {
	var view *TaxesView
	err := p.view(env, func(st *state) error {
		if _, err := st.house(); err != nil {
			return err
		}
		recipients, err := st.taxes.Recipients()
		if err != nil {
			return err
		}
		assets, err := st.ledger.RevenueAssets()
		if err != nil {
			return err
		}

		view = &TaxesView{}
		for _, item := range recipients {
			rv := TaxRecipientView{
				Address:   item.Address,
				Recipient: *item.Recipient,
				Totals:    make(map[string]*taxes.Totals, len(assets)),
			}
			for _, ra := range assets {
				t, err := st.taxes.Totals(item.Address, ra.Asset)
				if err != nil {
					return err
				}
				rv.Totals[ra.Asset.Key()] = t
			}
			view.Pct += item.Recipient.Pct
			view.Recipients = append(view.Recipients, rv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}
