// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger keeps the pool's configuration and book-keeping: the
// accepted revenue assets, what the pool holds of each asset and who
// deposited how much.
package ledger

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/revpool/amount"
	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/kv"
	"github.com/vechain/revpool/pool/record"
	"github.com/vechain/revpool/types"
)

const (
	slotHouse        = "c/house"
	prefixRevenue    = "r/"
	prefixHoldings   = "h/"
	prefixDeposits   = "D/agg/"
	prefixDepositors = "D/dep/"
)

// House is the pool configuration set at initialization.
type House struct {
	Name             string
	Description      string
	Logo             string
	CreatedAt        uint64
	CreatedBy        types.Address
	Manager          types.Address
	StakingAsset     asset.Asset
	UnbondingSeconds uint64
	MinStake         *uint256.Int
}

// Address is the pool's own holder address.
func (h *House) Address() types.Address {
	return types.DeriveAddress(h.Name, h.CreatedAt)
}

// RevenueAsset is an asset accepted in deposits.
type RevenueAsset struct {
	Asset    asset.Asset
	ListedAt uint64 // sequence when the asset was accepted
}

// DepositTotals counts deposits of one asset.
type DepositTotals struct {
	Amount *uint256.Int
	Count  uint64
}

type DepositorItem struct {
	Address types.Address
	Totals  *DepositTotals
}

type Service struct {
	house      *record.Raw[House]
	revenue    *record.Mapping[record.String, RevenueAsset]
	holdings   *record.Mapping[record.String, uint256.Int]
	deposits   *record.Mapping[record.String, DepositTotals]
	depositors *record.Mapping[record.Bytes, DepositTotals]
}

func New(ctx *record.Context) *Service {
	return &Service{
		house:      record.NewRaw[House](ctx, slotHouse),
		revenue:    record.NewMapping[record.String, RevenueAsset](ctx, prefixRevenue),
		holdings:   record.NewMapping[record.String, uint256.Int](ctx, prefixHoldings),
		deposits:   record.NewMapping[record.String, DepositTotals](ctx, prefixDeposits),
		depositors: record.NewMapping[record.Bytes, DepositTotals](ctx, prefixDepositors),
	}
}

// House returns the configuration, or nil before initialization.
func (s *Service) House() (*House, error) {
	h, err := s.house.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get house")
	}
	if h != nil {
		h.MinStake = amount.Or(h.MinStake)
	}
	return h, nil
}

func (s *Service) SetHouse(h *House) error {
	return s.house.Set(h)
}

func assetKey(a asset.Asset) record.String {
	return record.String(a.Key())
}

// ListRevenueAsset accepts a in deposits from sequence seq on. It reports
// false if a was already accepted.
func (s *Service) ListRevenueAsset(a asset.Asset, seq uint64) (bool, error) {
	has, err := s.revenue.Has(assetKey(a))
	if err != nil || has {
		return false, err
	}
	return true, s.revenue.Set(assetKey(a), &RevenueAsset{Asset: a, ListedAt: seq})
}

// RevenueAsset returns the listing of a, or nil if a is not accepted.
func (s *Service) RevenueAsset(a asset.Asset) (*RevenueAsset, error) {
	return s.revenue.Get(assetKey(a))
}

// RevenueAssets returns every accepted asset in key order.
func (s *Service) RevenueAssets() ([]RevenueAsset, error) {
	items, err := s.revenue.Scan(kv.Range{}, 0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list revenue assets")
	}
	out := make([]RevenueAsset, 0, len(items))
	for _, item := range items {
		out = append(out, *item.Value)
	}
	return out, nil
}

// Holdings returns how much of a the pool is accountable for.
func (s *Service) Holdings(a asset.Asset) (*uint256.Int, error) {
	v, err := s.holdings.Get(assetKey(a))
	if err != nil {
		return nil, err
	}
	return amount.Or(v), nil
}

func (s *Service) AddHoldings(a asset.Asset, value *uint256.Int) error {
	held, err := s.Holdings(a)
	if err != nil {
		return err
	}
	if held, err = amount.Add(held, value); err != nil {
		return errors.WithMessagef(err, "holdings of %s", a)
	}
	return s.holdings.Set(assetKey(a), held)
}

func (s *Service) SubHoldings(a asset.Asset, value *uint256.Int) error {
	held, err := s.Holdings(a)
	if err != nil {
		return err
	}
	if held, err = amount.Sub(held, value); err != nil {
		return errors.WithMessagef(err, "holdings of %s", a)
	}
	return s.holdings.Set(assetKey(a), held)
}

func addTotals(t *DepositTotals, value *uint256.Int) (*DepositTotals, error) {
	if t == nil {
		t = &DepositTotals{}
	}
	sum, err := amount.Add(t.Amount, value)
	if err != nil {
		return nil, err
	}
	t.Amount = sum
	t.Count++
	return t, nil
}

// RecordDeposit adds one deposit of value to the aggregate totals of a.
func (s *Service) RecordDeposit(a asset.Asset, value *uint256.Int) error {
	t, err := s.deposits.Get(assetKey(a))
	if err != nil {
		return err
	}
	if t, err = addTotals(t, value); err != nil {
		return errors.WithMessagef(err, "deposit totals of %s", a)
	}
	return s.deposits.Set(assetKey(a), t)
}

func depositorKey(a asset.Asset, addr types.Address) record.Bytes {
	return record.Join(assetKey(a), addr)
}

// RecordDepositor adds one deposit of value by addr.
func (s *Service) RecordDepositor(a asset.Asset, addr types.Address, value *uint256.Int) error {
	t, err := s.depositors.Get(depositorKey(a, addr))
	if err != nil {
		return err
	}
	if t, err = addTotals(t, value); err != nil {
		return errors.WithMessagef(err, "depositor totals of %s", a)
	}
	return s.depositors.Set(depositorKey(a, addr), t)
}

// DepositTotals returns the aggregate totals of a. Never nil.
func (s *Service) DepositTotals(a asset.Asset) (*DepositTotals, error) {
	t, err := s.deposits.Get(assetKey(a))
	if err != nil {
		return nil, err
	}
	if t == nil {
		return &DepositTotals{Amount: amount.Zero()}, nil
	}
	t.Amount = amount.Or(t.Amount)
	return t, nil
}

// Depositors returns the totals of everyone who deposited a.
func (s *Service) Depositors(a asset.Asset) ([]DepositorItem, error) {
	items, err := s.depositors.ScanPrefix(assetKey(a))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list depositors of %s", a)
	}
	out := make([]DepositorItem, 0, len(items))
	for _, item := range items {
		out = append(out, DepositorItem{Address: types.BytesToAddress(item.Key), Totals: item.Value})
	}
	return out, nil
}
