// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package settlement replays an account's delegation history against the
// balance series of an asset and computes what the account is owed.
package settlement

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/revpool/amount"
	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/log"
	"github.com/vechain/revpool/pool/events"
	"github.com/vechain/revpool/types"
)

var logger = log.WithContext("pkg", "settlement")

// ErrMissingOpening means the delegation series has no entry at or before the
// checkpoint. The series is corrupt: the latest such entry is never pruned.
var ErrMissingOpening = errors.New("settlement: no delegation entry at checkpoint")

// Result is the outcome of one settlement pass.
type Result struct {
	Amount *uint256.Int
	// Scanned lists every balance entry read, once each. Each must be
	// released exactly once after Amount has been recorded.
	Scanned   []events.BalanceItem
	Intervals int
}

func empty() *Result {
	return &Result{Amount: amount.Zero()}
}

type interval struct {
	from, to   uint64
	delegation *uint256.Int
}

type Engine struct {
	events *events.Service
}

func New(ev *events.Service) *Engine {
	return &Engine{events: ev}
}

// Settle computes what addr earned from asset a over [checkpoint, horizon).
// current is the account's delegation now and closes the last interval.
// Nothing is written.
func (e *Engine) Settle(addr types.Address, a asset.Asset, checkpoint, horizon uint64, current *uint256.Int) (*Result, error) {
	if checkpoint >= horizon {
		return empty(), nil
	}

	intervals, err := e.intervals(addr, checkpoint, horizon, current)
	if err != nil {
		return nil, err
	}

	res := empty()
	res.Intervals = len(intervals)
	for _, iv := range intervals {
		entries, err := e.events.Balances(a, iv.from, iv.to)
		if err != nil {
			return nil, err
		}
		for _, item := range entries {
			share, err := item.Entry.Share(iv.delegation)
			if err != nil {
				return nil, errors.WithMessagef(err, "share of %s@%d for %s", a, item.Seq, addr)
			}
			if res.Amount, err = amount.Add(res.Amount, share); err != nil {
				return nil, err
			}
			res.Scanned = append(res.Scanned, item)
		}
	}

	logger.Trace("settled",
		"account", addr,
		"asset", a,
		"from", checkpoint,
		"to", horizon,
		"intervals", res.Intervals,
		"scanned", len(res.Scanned),
		"amount", res.Amount,
	)
	return res, nil
}

// intervals splits [checkpoint, horizon) at every delegation change. The
// first interval starts at the checkpoint with the delegation held there.
func (e *Engine) intervals(addr types.Address, checkpoint, horizon uint64, current *uint256.Int) ([]interval, error) {
	opening, err := e.events.DelegationAt(addr, checkpoint)
	if err != nil {
		return nil, err
	}
	if opening == nil {
		return nil, errors.Wrapf(ErrMissingOpening, "%s@%d", addr, checkpoint)
	}

	changes, err := e.events.Delegations(addr, checkpoint+1, horizon)
	if err != nil {
		return nil, err
	}

	points := make([]events.DelegationItem, 0, len(changes)+2)
	points = append(points, events.DelegationItem{Seq: checkpoint, Entry: opening.Entry})
	points = append(points, changes...)
	// terminal entry, closes the last open interval
	points = append(points, events.DelegationItem{Seq: horizon, Entry: &events.DelegationEntry{Delegation: amount.Copy(current)}})

	out := make([]interval, 0, len(points)-1)
	for i := 0; i+1 < len(points); i++ {
		out = append(out, interval{
			from:       points[i].Seq,
			to:         points[i+1].Seq,
			delegation: amount.Or(points[i].Entry.Delegation),
		})
	}
	return out, nil
}
