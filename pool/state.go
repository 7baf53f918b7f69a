// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/pool/accounts"
	"github.com/vechain/revpool/pool/amortize"
	"github.com/vechain/revpool/pool/consolidator"
	"github.com/vechain/revpool/pool/events"
	"github.com/vechain/revpool/pool/gc"
	"github.com/vechain/revpool/pool/globalstats"
	"github.com/vechain/revpool/pool/ledger"
	"github.com/vechain/revpool/pool/record"
	"github.com/vechain/revpool/pool/reverts"
	"github.com/vechain/revpool/pool/settlement"
	"github.com/vechain/revpool/pool/taxes"
	"github.com/vechain/revpool/types"
)

// state binds every service to one transaction.
type state struct {
	env     Env
	querier asset.BalanceQuerier
	created int // accounts created by the operation

	ledger       *ledger.Service
	accounts     *accounts.Service
	events       *events.Service
	stats        *globalstats.Service
	taxes        *taxes.Service
	engine       *settlement.Engine
	collector    *gc.Collector
	consolidator *consolidator.Consolidator
	scheduler    *amortize.Scheduler
}

func newState(ctx *record.Context, env Env, options Options) *state {
	ev := events.New(ctx)
	stats := globalstats.New(ctx)
	return &state{
		env:          env,
		querier:      options.Querier,
		ledger:       ledger.New(ctx),
		accounts:     accounts.New(ctx),
		events:       ev,
		stats:        stats,
		taxes:        taxes.New(ctx),
		engine:       settlement.New(ev),
		collector:    gc.New(ev),
		consolidator: consolidator.New(ev, stats),
		scheduler:    amortize.NewScheduler(amortize.NewQueue(ctx), options.Amortization),
	}
}

// house returns the configuration, failing if the pool is not initialized.
func (s *state) house() (*ledger.House, error) {
	h, err := s.ledger.House()
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, reverts.ErrNotInitialized
	}
	return h, nil
}

// account returns the account of addr, failing if it never staked.
func (s *state) account(addr types.Address) (*accounts.Account, error) {
	acc, err := s.accounts.Get(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, reverts.ErrAccountNotFound
	}
	return acc, nil
}
