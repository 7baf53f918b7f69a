// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

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
	prefixBalances    = "b/"
	prefixDelegations = "d/"
)

// Service is the event log: a balance series per asset and a delegation
// series per account, both keyed by global sequence.
type Service struct {
	balances    *record.Mapping[record.Bytes, BalanceEntry]
	delegations *record.Mapping[record.Bytes, DelegationEntry]
}

func New(ctx *record.Context) *Service {
	return &Service{
		balances:    record.NewMapping[record.Bytes, BalanceEntry](ctx, prefixBalances),
		delegations: record.NewMapping[record.Bytes, DelegationEntry](ctx, prefixDelegations),
	}
}

func balanceKey(a asset.Asset, seq uint64) record.Bytes {
	return record.Join(record.String(a.Key()), record.Seq(seq))
}

func delegationKey(addr types.Address, seq uint64) record.Bytes {
	return record.Join(addr, record.Seq(seq))
}

// Balance returns the balance entry of a at seq, or nil.
func (s *Service) Balance(a asset.Asset, seq uint64) (*BalanceEntry, error) {
	entry, err := s.balances.Get(balanceKey(a, seq))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get balance entry %s@%d", a, seq)
	}
	return entry, nil
}

func (s *Service) SetBalance(a asset.Asset, seq uint64, entry *BalanceEntry) error {
	return s.balances.Set(balanceKey(a, seq), entry)
}

func (s *Service) DeleteBalance(a asset.Asset, seq uint64) error {
	return s.balances.Delete(balanceKey(a, seq))
}

// Balances returns the balance entries of a with from <= seq < to, in order.
func (s *Service) Balances(a asset.Asset, from, to uint64) ([]BalanceItem, error) {
	if from >= to {
		return nil, nil
	}
	items, err := s.balances.Scan(kv.Range{
		Start: balanceKey(a, from),
		Limit: balanceKey(a, to),
	}, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan balance entries %s [%d, %d)", a, from, to)
	}
	return toBalanceItems(items)
}

// AllBalances returns every live balance entry of a.
func (s *Service) AllBalances(a asset.Asset) ([]BalanceItem, error) {
	items, err := s.balances.ScanPrefix(record.String(a.Key()))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan balance entries %s", a)
	}
	return toBalanceItems(items)
}

// Delegation returns the delegation entry of addr at seq, or nil.
func (s *Service) Delegation(addr types.Address, seq uint64) (*DelegationEntry, error) {
	entry, err := s.delegations.Get(delegationKey(addr, seq))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get delegation entry %s@%d", addr, seq)
	}
	return entry, nil
}

// SetDelegation records the delegation of addr at seq, replacing any
// snapshot already taken at the same sequence.
func (s *Service) SetDelegation(addr types.Address, seq uint64, delegation *uint256.Int) error {
	return s.delegations.Set(delegationKey(addr, seq), &DelegationEntry{Delegation: amount.Copy(delegation)})
}

func (s *Service) DeleteDelegation(addr types.Address, seq uint64) error {
	return s.delegations.Delete(delegationKey(addr, seq))
}

// DelegationAt returns the latest delegation entry of addr with seq <= at, or nil.
func (s *Service) DelegationAt(addr types.Address, at uint64) (*DelegationItem, error) {
	items, err := s.delegations.Scan(kv.Range{
		Start:   addr.Bytes(),
		Limit:   kv.After(delegationKey(addr, at)),
		Reverse: true,
	}, 1)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find delegation entry %s@%d", addr, at)
	}
	if len(items) == 0 {
		return nil, nil
	}
	out, err := toDelegationItems(items)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Delegations returns the delegation entries of addr with from <= seq < to, in order.
func (s *Service) Delegations(addr types.Address, from, to uint64) ([]DelegationItem, error) {
	if from >= to {
		return nil, nil
	}
	items, err := s.delegations.Scan(kv.Range{
		Start: delegationKey(addr, from),
		Limit: delegationKey(addr, to),
	}, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan delegation entries %s [%d, %d)", addr, from, to)
	}
	return toDelegationItems(items)
}

// AllDelegations returns every live delegation entry of addr.
func (s *Service) AllDelegations(addr types.Address) ([]DelegationItem, error) {
	items, err := s.delegations.ScanPrefix(addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan delegation entries %s", addr)
	}
	return toDelegationItems(items)
}

func toBalanceItems(items []record.Item[BalanceEntry]) ([]BalanceItem, error) {
	out := make([]BalanceItem, 0, len(items))
	for _, item := range items {
		seq, err := record.SeqFromBytes(item.Key)
		if err != nil {
			return nil, err
		}
		out = append(out, BalanceItem{Seq: uint64(seq), Entry: item.Value})
	}
	return out, nil
}

func toDelegationItems(items []record.Item[DelegationEntry]) ([]DelegationItem, error) {
	out := make([]DelegationItem, 0, len(items))
	for _, item := range items {
		seq, err := record.SeqFromBytes(item.Key)
		if err != nil {
			return nil, err
		}
		out = append(out, DelegationItem{Seq: uint64(seq), Entry: item.Value})
	}
	return out, nil
}
