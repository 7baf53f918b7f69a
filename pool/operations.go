// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/revpool/amount"
	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/pool/accounts"
	"github.com/vechain/revpool/pool/reverts"
	"github.com/vechain/revpool/types"
)

// Deposit pays value of a into the pool as revenue. The returned receipt
// carries the transfers to autosend tax recipients.
func (p *Pool) Deposit(ctx context.Context, env Env, a asset.Asset, value *uint256.Int) (*Receipt, error) {
	return p.update(ActionDeposit, env, func(st *state, r *Receipt) error {
		house, err := st.house()
		if err != nil {
			return err
		}
		if amount.Or(value).IsZero() {
			return reverts.ErrZeroAmount
		}
		ra, err := st.ledger.RevenueAsset(a)
		if err != nil {
			return err
		}
		if ra == nil {
			return errors.WithMessagef(reverts.ErrAssetNotAccepted, "%s", a)
		}
		totalDelegation, err := st.stats.TotalDelegation()
		if err != nil {
			return err
		}
		if totalDelegation.IsZero() {
			return reverts.ErrNoDelegation
		}

		if err := st.ledger.RecordDepositor(a, env.Sender, value); err != nil {
			return err
		}
		untracked, err := st.untrackedBalance(ctx, house.Address(), a, value)
		if err != nil {
			return err
		}
		revenue := value
		if !untracked.IsZero() {
			if err := st.ledger.RecordDepositor(a, house.Address(), untracked); err != nil {
				return err
			}
			if revenue, err = amount.Add(value, untracked); err != nil {
				return err
			}
			logger.Debug("untracked balance synced", "asset", a, "amount", untracked)
		}

		transfers, net, err := st.taxes.Split(a, revenue)
		if err != nil {
			return err
		}
		if _, _, err := st.consolidator.Deposit(a, net); err != nil {
			return err
		}
		if err := st.ledger.RecordDeposit(a, revenue); err != nil {
			return err
		}

		sent := make([]*uint256.Int, 0, len(transfers))
		for _, t := range transfers {
			sent = append(sent, t.Amount)
		}
		autosent, err := amount.Sum(sent...)
		if err != nil {
			return err
		}
		kept, err := amount.Sub(revenue, autosent)
		if err != nil {
			return err
		}
		if err := st.ledger.AddHoldings(a, kept); err != nil {
			return err
		}

		r.Transfers = transfers
		r.Amortized, err = st.amortize(nil)
		return err
	})
}

// untrackedBalance returns what the pool holds of a beyond what it accounts
// for, this deposit included. Zero without a querier.
func (s *state) untrackedBalance(ctx context.Context, holder types.Address, a asset.Asset, value *uint256.Int) (*uint256.Int, error) {
	if s.querier == nil {
		return amount.Zero(), nil
	}
	external, err := s.querier.QueryBalance(ctx, a, holder)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query balance of %s", a)
	}
	held, err := s.ledger.Holdings(a)
	if err != nil {
		return nil, err
	}
	tracked, err := amount.Add(held, value)
	if err != nil {
		return nil, err
	}
	untracked, err := amount.Sub(external, tracked)
	if err != nil {
		// the deposit may not have landed in the queried balance yet
		return amount.Zero(), nil
	}
	return untracked, nil
}

// Stake adds value to the delegation of onBehalfOf, or of the sender when
// nil. Anyone may stake for anyone.
func (p *Pool) Stake(env Env, value *uint256.Int, onBehalfOf *types.Address) (*Receipt, error) {
	return p.update(ActionStake, env, func(st *state, r *Receipt) error {
		house, err := st.house()
		if err != nil {
			return err
		}
		if amount.Or(value).IsZero() {
			return reverts.ErrZeroAmount
		}
		if value.Lt(house.MinStake) {
			return reverts.ErrBelowMinStake
		}

		target := env.Sender
		if onBehalfOf != nil {
			target = *onBehalfOf
		}
		seq, err := st.stats.Sequence()
		if err != nil {
			return err
		}

		acc, err := st.accounts.Get(target)
		if err != nil {
			return err
		}
		if acc == nil {
			acc = &accounts.Account{CreatedAt: env.Time, CreatedAtSeq: seq, Delegation: amount.Zero()}
			if _, err := st.stats.AddAccount(); err != nil {
				return err
			}
			if err := st.scheduler.Enqueue(target); err != nil {
				return err
			}
			st.created++
		} else if _, err := st.settle(target, acc, seq, nil, false); err != nil {
			return err
		}

		if acc.Delegation, err = amount.Add(acc.Delegation, value); err != nil {
			return err
		}
		if err := st.setDelegation(target, acc, seq); err != nil {
			return err
		}
		if err := st.stats.AddDelegation(value); err != nil {
			return err
		}
		if err := st.ledger.AddHoldings(house.StakingAsset, value); err != nil {
			return err
		}

		r.Amortized, err = st.amortize(&target)
		return err
	})
}

// Unstake moves value of the delegation of onBehalfOf, or of the sender when
// nil, into unbonding. A nil value unstakes everything. Only the manager may
// unstake for someone else.
func (p *Pool) Unstake(env Env, value *uint256.Int, onBehalfOf *types.Address) (*Receipt, error) {
	return p.update(ActionUnstake, env, func(st *state, r *Receipt) error {
		house, err := st.house()
		if err != nil {
			return err
		}

		target := env.Sender
		if onBehalfOf != nil && *onBehalfOf != env.Sender {
			if env.Sender != house.Manager {
				return errors.WithMessagef(reverts.ErrUnauthorized, "unstake for %s", onBehalfOf)
			}
			target = *onBehalfOf
		}
		acc, err := st.account(target)
		if err != nil {
			return err
		}
		seq, err := st.stats.Sequence()
		if err != nil {
			return err
		}
		if _, err := st.settle(target, acc, seq, nil, false); err != nil {
			return err
		}

		if value == nil {
			value = amount.Copy(acc.Delegation)
		}
		if value.IsZero() {
			return reverts.ErrZeroAmount
		}
		if value.Gt(acc.Delegation) {
			return reverts.ErrInsufficientDelegation
		}

		if acc.Delegation, err = amount.Sub(acc.Delegation, value); err != nil {
			return err
		}
		if err := st.setDelegation(target, acc, seq); err != nil {
			return err
		}
		if err := st.stats.RemoveDelegation(value); err != nil {
			return err
		}
		if err := st.stats.AddUnbonding(value); err != nil {
			return err
		}

		maturesAt := env.Time + house.UnbondingSeconds
		u, err := st.accounts.Unbonding(target)
		if err != nil {
			return err
		}
		if u == nil {
			u = &accounts.Unbonding{Amount: amount.Copy(value), MaturesAt: maturesAt}
		} else if err := u.Merge(value, maturesAt); err != nil {
			return err
		}
		if err := st.accounts.SetUnbonding(target, u); err != nil {
			return err
		}

		r.Amortized, err = st.amortize(&target)
		return err
	})
}

// Claim pays the sender its settled share of a. If its unbonding has matured
// the principal is paid too, in the staking asset.
func (p *Pool) Claim(env Env, a asset.Asset) (*Receipt, error) {
	return p.update(ActionClaim, env, func(st *state, r *Receipt) error {
		house, err := st.house()
		if err != nil {
			return err
		}
		acc, err := st.account(env.Sender)
		if err != nil {
			return err
		}
		ra, err := st.ledger.RevenueAsset(a)
		if err != nil {
			return err
		}
		if ra == nil && a != house.StakingAsset {
			return errors.WithMessagef(reverts.ErrAssetNotAccepted, "%s", a)
		}

		if ra != nil {
			seq, err := st.stats.Sequence()
			if err != nil {
				return err
			}
			states, err := st.settle(env.Sender, acc, seq, &a, false)
			if err != nil {
				return err
			}
			settled := states[a.Key()]
			if !settled.Amount.IsZero() {
				r.Transfers = append(r.Transfers, asset.Transfer{Asset: a, Recipient: env.Sender, Amount: settled.Amount})
				if err := st.ledger.SubHoldings(a, settled.Amount); err != nil {
					return err
				}
				settled.Amount = amount.Zero()
				if err := st.accounts.SetSyncState(env.Sender, a, settled); err != nil {
					return err
				}
			}
		}

		u, err := st.accounts.Unbonding(env.Sender)
		if err != nil {
			return err
		}
		if u != nil && u.Matured(env.Time) {
			principal := amount.Or(u.Amount)
			if !principal.IsZero() {
				r.Transfers = append(r.Transfers, asset.Transfer{Asset: house.StakingAsset, Recipient: env.Sender, Amount: principal})
			}
			if err := st.accounts.DeleteUnbonding(env.Sender); err != nil {
				return err
			}
			if err := st.stats.RemoveUnbonding(principal); err != nil {
				return err
			}
			if err := st.ledger.SubHoldings(house.StakingAsset, principal); err != nil {
				return err
			}
		}

		r.Amortized, err = st.amortize(&env.Sender)
		return err
	})
}

// setDelegation stores the account and snapshots its delegation at seq. The
// generation moves so the next deposit opens a balance entry carrying the new
// pool total.
func (s *state) setDelegation(addr types.Address, acc *accounts.Account, seq uint64) error {
	if err := s.accounts.Set(addr, acc); err != nil {
		return err
	}
	if err := s.events.SetDelegation(addr, seq, acc.Delegation); err != nil {
		return err
	}
	return s.stats.AdvanceGeneration()
}
