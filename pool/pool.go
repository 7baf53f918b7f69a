// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool is a revenue-sharing pool. Depositors pay revenue in, stakers
// earn a pro-rata share of every deposit made while they are staked, and
// claim it back out.
//
// Shares are settled lazily, one account at a time, against a sparse event
// log. Every operation is one store transaction; operations are serialized.
package pool

import (
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/event"

	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/kv"
	"github.com/vechain/revpool/log"
	"github.com/vechain/revpool/pool/amortize"
	"github.com/vechain/revpool/pool/globalstats"
	"github.com/vechain/revpool/pool/record"
	"github.com/vechain/revpool/types"
)

var logger = log.WithContext("pkg", "pool")

// Options options for the pool.
type Options struct {
	Amortization amortize.Config
	// Querier, when set, reports the pool's external balances so that funds
	// sent to the pool outside of deposits are shared as revenue.
	Querier asset.BalanceQuerier
}

// Env is the context of one operation.
type Env struct {
	Sender types.Address
	Time   uint64 // unix seconds
}

type Action string

const (
	ActionInit            Action = "init"
	ActionAddRevenueAsset Action = "add-revenue-asset"
	ActionSetTaxRecipient Action = "set-tax-recipient"
	ActionDeposit         Action = "deposit"
	ActionStake           Action = "stake"
	ActionUnstake         Action = "unstake"
	ActionClaim           Action = "claim"
)

// Receipt is the outcome of a committed operation. The caller executes the
// transfers.
type Receipt struct {
	Action    Action
	Sender    types.Address
	Time      uint64
	Sequence  uint64 // global sequence after the operation
	Transfers []asset.Transfer
	Amortized int // accounts settled in the background
}

// Pool runs operations against a store.
type Pool struct {
	store   kv.Store
	options Options

	mu      sync.Mutex
	version atomic.Uint64

	receiptFeed event.Feed
	scope       event.SubscriptionScope
}

func New(store kv.Store, options Options) *Pool {
	if options.Amortization.Cap == 0 {
		options.Amortization = amortize.DefaultConfig()
	}
	return &Pool{store: store, options: options}
}

// Version increases with every committed operation.
func (p *Pool) Version() uint64 {
	return p.version.Load()
}

// SubscribeReceipt delivers the receipt of every committed operation.
func (p *Pool) SubscribeReceipt(ch chan *Receipt) event.Subscription {
	return p.scope.Track(p.receiptFeed.Subscribe(ch))
}

// Close ends all subscriptions.
func (p *Pool) Close() {
	p.scope.Close()
}

// update runs fn in one serialized write transaction and publishes the receipt
// once committed.
func (p *Pool) update(action Action, env Env, fn func(st *state, r *Receipt) error) (*Receipt, error) {
	receipt, err := func() (*Receipt, error) {
		p.mu.Lock()
		defer p.mu.Unlock()

		receipt := &Receipt{Action: action, Sender: env.Sender, Time: env.Time}
		var (
			usage   record.Usage
			created int
			stats   *globalstats.Stats
		)
		err := p.store.Update(func(rw kv.ReadWriter) error {
			ctx := record.NewContext(rw)
			st := newState(ctx, env, p.options)
			if err := fn(st, receipt); err != nil {
				return err
			}
			var err error
			if stats, err = st.stats.Stats(); err != nil {
				return err
			}
			receipt.Sequence = stats.Sequence
			usage, created = ctx.Usage(), st.created
			return nil
		})
		observeOperation(action, usage, err)
		if err != nil {
			return nil, err
		}
		p.version.Add(1)
		observeStats(created, stats)
		return receipt, nil
	}()
	if err != nil {
		logger.Debug("operation failed", "action", action, "sender", env.Sender, "err", err)
		return nil, err
	}

	logger.Debug("operation committed",
		"action", action,
		"sender", env.Sender,
		"seq", receipt.Sequence,
		"transfers", len(receipt.Transfers),
		"amortized", receipt.Amortized,
	)
	p.receiptFeed.Send(receipt)
	return receipt, nil
}

// view runs fn in a read-only snapshot.
func (p *Pool) view(env Env, fn func(st *state) error) error {
	return p.store.View(func(r kv.Reader) error {
		return fn(newState(record.NewReadOnlyContext(r), env, p.options))
	})
}
