// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package taxes skims a configured share of every deposit to tax recipients.
package taxes

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/revpool/amount"
	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/kv"
	"github.com/vechain/revpool/pool/record"
	"github.com/vechain/revpool/pool/reverts"
	"github.com/vechain/revpool/types"
)

// PctDenominator is 100% in tax pct units (parts per million).
const PctDenominator = 1_000_000

const (
	prefixRecipients = "t/"
	prefixTotals     = "T/"
	prefixRetained   = "R/"
)

// Recipient is a tax recipient's configuration.
type Recipient struct {
	Pct       uint64 // parts per million of every deposit
	Autosend  bool   // transfer on deposit instead of retaining
	Immutable bool
	Name      string
	Logo      string
}

// Totals is what a recipient received of one asset.
type Totals struct {
	Balance *uint256.Int // retained, not yet sent
	Total   *uint256.Int // all time
}

type RecipientItem struct {
	Address   types.Address
	Recipient *Recipient
}

type Service struct {
	recipients *record.Mapping[types.Address, Recipient]
	totals     *record.Mapping[record.Bytes, Totals]
	retained   *record.Mapping[record.String, uint256.Int]
}

func New(ctx *record.Context) *Service {
	return &Service{
		recipients: record.NewMapping[types.Address, Recipient](ctx, prefixRecipients),
		totals:     record.NewMapping[record.Bytes, Totals](ctx, prefixTotals),
		retained:   record.NewMapping[record.String, uint256.Int](ctx, prefixRetained),
	}
}

func (s *Service) Recipient(addr types.Address) (*Recipient, error) {
	return s.recipients.Get(addr)
}

// Recipients returns every recipient in address order.
func (s *Service) Recipients() ([]RecipientItem, error) {
	items, err := s.recipients.Scan(kv.Range{}, 0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tax recipients")
	}
	out := make([]RecipientItem, 0, len(items))
	for _, item := range items {
		out = append(out, RecipientItem{Address: types.BytesToAddress(item.Key), Recipient: item.Value})
	}
	return out, nil
}

// AggregatePct sums the pct of every recipient.
func (s *Service) AggregatePct() (uint64, error) {
	recipients, err := s.Recipients()
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, r := range recipients {
		total += r.Recipient.Pct
	}
	return total, nil
}

// SetRecipient adds or replaces a recipient. Immutable recipients cannot be
// changed and the aggregate may not exceed 100%.
func (s *Service) SetRecipient(addr types.Address, r *Recipient) error {
	if r.Pct > PctDenominator {
		return reverts.ErrTaxRateExceeded
	}
	existing, err := s.recipients.Get(addr)
	if err != nil {
		return err
	}
	if existing != nil && existing.Immutable {
		return errors.WithMessagef(reverts.ErrImmutableRecipient, "%s", addr)
	}

	total, err := s.AggregatePct()
	if err != nil {
		return err
	}
	if existing != nil {
		total -= existing.Pct
	}
	if total+r.Pct > PctDenominator {
		return reverts.ErrTaxRateExceeded
	}
	return s.recipients.Set(addr, r)
}

func totalsKey(addr types.Address, a asset.Asset) record.Bytes {
	return record.Join(addr, record.String(a.Key()))
}

// Totals returns what addr received of a. Never nil.
func (s *Service) Totals(addr types.Address, a asset.Asset) (*Totals, error) {
	t, err := s.totals.Get(totalsKey(addr, a))
	if err != nil {
		return nil, err
	}
	if t == nil {
		return &Totals{Balance: amount.Zero(), Total: amount.Zero()}, nil
	}
	t.Balance, t.Total = amount.Or(t.Balance), amount.Or(t.Total)
	return t, nil
}

// Retained returns the tax of a held by the pool on behalf of recipients.
func (s *Service) Retained(a asset.Asset) (*uint256.Int, error) {
	v, err := s.retained.Get(record.String(a.Key()))
	if err != nil {
		return nil, err
	}
	return amount.Or(v), nil
}

// Split takes every recipient's tax out of revenue. Autosend recipients get a
// transfer; the rest is retained. It returns the transfers and what is left.
func (s *Service) Split(a asset.Asset, revenue *uint256.Int) ([]asset.Transfer, *uint256.Int, error) {
	recipients, err := s.Recipients()
	if err != nil {
		return nil, nil, err
	}

	var (
		transfers []asset.Transfer
		taxed     = amount.Zero()
		retained  = amount.Zero()
	)
	for _, item := range recipients {
		r := item.Recipient
		tax, err := amount.MulDiv(revenue, uint256.NewInt(r.Pct), uint256.NewInt(PctDenominator))
		if err != nil {
			return nil, nil, err
		}
		if taxed, err = amount.Add(taxed, tax); err != nil {
			return nil, nil, err
		}

		totals, err := s.Totals(item.Address, a)
		if err != nil {
			return nil, nil, err
		}
		if totals.Total, err = amount.Add(totals.Total, tax); err != nil {
			return nil, nil, err
		}
		if r.Autosend {
			if !tax.IsZero() {
				transfers = append(transfers, asset.Transfer{Asset: a, Recipient: item.Address, Amount: tax})
			}
		} else {
			if totals.Balance, err = amount.Add(totals.Balance, tax); err != nil {
				return nil, nil, err
			}
			if retained, err = amount.Add(retained, tax); err != nil {
				return nil, nil, err
			}
		}
		if err := s.totals.Set(totalsKey(item.Address, a), totals); err != nil {
			return nil, nil, err
		}
	}

	if !retained.IsZero() {
		held, err := s.Retained(a)
		if err != nil {
			return nil, nil, err
		}
		if held, err = amount.Add(held, retained); err != nil {
			return nil, nil, err
		}
		if err := s.retained.Set(record.String(a.Key()), held); err != nil {
			return nil, nil, err
		}
	}

	net, err := amount.Sub(revenue, taxed)
	if err != nil {
		return nil, nil, err
	}
	return transfers, net, nil
}
