// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/holiman/uint256"

	"github.com/vechain/revpool/amount"
	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/pool/ledger"
	"github.com/vechain/revpool/pool/reverts"
	"github.com/vechain/revpool/pool/taxes"
	"github.com/vechain/revpool/types"
)

// TaxRecipientParams configures one tax recipient at initialization.
type TaxRecipientParams struct {
	Address types.Address
	taxes.Recipient
}

// InitParams configures a new pool.
type InitParams struct {
	Name             string
	Description      string
	Logo             string
	StakingAsset     asset.Asset
	RevenueAssets    []asset.Asset
	UnbondingSeconds uint64
	MinStake         *uint256.Int
	Manager          *types.Address // defaults to the sender
	Taxes            []TaxRecipientParams
}

// Init configures the pool. It can run only once.
func (p *Pool) Init(env Env, params InitParams) (*Receipt, error) {
	return p.update(ActionInit, env, func(st *state, _ *Receipt) error {
		existing, err := st.ledger.House()
		if err != nil {
			return err
		}
		if existing != nil {
			return reverts.ErrAlreadyInitialized
		}
		if err := params.StakingAsset.Validate(); err != nil {
			return reverts.New(err.Error())
		}

		manager := env.Sender
		if params.Manager != nil {
			manager = *params.Manager
		}
		house := &ledger.House{
			Name:             params.Name,
			Description:      params.Description,
			Logo:             params.Logo,
			CreatedAt:        env.Time,
			CreatedBy:        env.Sender,
			Manager:          manager,
			StakingAsset:     params.StakingAsset,
			UnbondingSeconds: params.UnbondingSeconds,
			MinStake:         amount.Copy(params.MinStake),
		}
		if err := st.ledger.SetHouse(house); err != nil {
			return err
		}

		for _, a := range params.RevenueAssets {
			if err := st.listRevenueAsset(a); err != nil {
				return err
			}
		}
		for _, t := range params.Taxes {
			recipient := t.Recipient
			if err := st.taxes.SetRecipient(t.Address, &recipient); err != nil {
				return err
			}
		}

		logger.Info("pool initialized",
			"name", house.Name,
			"address", house.Address(),
			"staking", house.StakingAsset,
			"revenue", len(params.RevenueAssets),
			"taxes", len(params.Taxes),
		)
		return nil
	})
}

// AddRevenueAsset accepts a in deposits from now on. Manager only.
func (p *Pool) AddRevenueAsset(env Env, a asset.Asset) (*Receipt, error) {
	return p.update(ActionAddRevenueAsset, env, func(st *state, _ *Receipt) error {
		if err := st.requireManager(); err != nil {
			return err
		}
		return st.listRevenueAsset(a)
	})
}

// SetTaxRecipient adds or replaces a tax recipient. Manager only.
func (p *Pool) SetTaxRecipient(env Env, addr types.Address, recipient taxes.Recipient) (*Receipt, error) {
	return p.update(ActionSetTaxRecipient, env, func(st *state, _ *Receipt) error {
		if err := st.requireManager(); err != nil {
			return err
		}
		return st.taxes.SetRecipient(addr, &recipient)
	})
}

func (s *state) requireManager() error {
	house, err := s.house()
	if err != nil {
		return err
	}
	if s.env.Sender != house.Manager {
		return reverts.ErrUnauthorized
	}
	return nil
}

// listRevenueAsset accepts a from the current sequence on. Accounts start
// earning it from there.
func (s *state) listRevenueAsset(a asset.Asset) error {
	if err := a.Validate(); err != nil {
		return reverts.New(err.Error())
	}
	seq, err := s.stats.Sequence()
	if err != nil {
		return err
	}
	added, err := s.ledger.ListRevenueAsset(a, seq)
	if err != nil {
		return err
	}
	if !added {
		return reverts.New("revenue asset already listed: " + a.Key())
	}
	return nil
}
