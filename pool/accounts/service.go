// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"github.com/pkg/errors"

	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/pool/record"
	"github.com/vechain/revpool/types"
)

const (
	prefixAccounts   = "a/"
	prefixSyncStates = "s/"
	prefixUnbondings = "u/"
)

type Service struct {
	accounts   *record.Mapping[types.Address, Account]
	syncStates *record.Mapping[record.Bytes, SyncState]
	unbondings *record.Mapping[types.Address, Unbonding]
}

func New(ctx *record.Context) *Service {
	return &Service{
		accounts:   record.NewMapping[types.Address, Account](ctx, prefixAccounts),
		syncStates: record.NewMapping[record.Bytes, SyncState](ctx, prefixSyncStates),
		unbondings: record.NewMapping[types.Address, Unbonding](ctx, prefixUnbondings),
	}
}

// Get returns the account, or nil if it never staked.
func (s *Service) Get(addr types.Address) (*Account, error) {
	acc, err := s.accounts.Get(addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get account %s", addr)
	}
	return acc, nil
}

func (s *Service) Set(addr types.Address, acc *Account) error {
	return s.accounts.Set(addr, acc)
}

func syncKey(addr types.Address, a asset.Asset) record.Bytes {
	return record.Join(addr, record.String(a.Key()))
}

// SyncState returns the stored sync state, or nil if the account never
// settled the asset.
func (s *Service) SyncState(addr types.Address, a asset.Asset) (*SyncState, error) {
	st, err := s.syncStates.Get(syncKey(addr, a))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get sync state %s/%s", addr, a)
	}
	return st, nil
}

func (s *Service) SetSyncState(addr types.Address, a asset.Asset, st *SyncState) error {
	return s.syncStates.Set(syncKey(addr, a), st)
}

// Unbonding returns the pending unbonding of addr, or nil.
func (s *Service) Unbonding(addr types.Address) (*Unbonding, error) {
	u, err := s.unbondings.Get(addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get unbonding %s", addr)
	}
	return u, nil
}

func (s *Service) SetUnbonding(addr types.Address, u *Unbonding) error {
	return s.unbondings.Set(addr, u)
}

func (s *Service) DeleteUnbonding(addr types.Address) error {
	return s.unbondings.Delete(addr)
}
