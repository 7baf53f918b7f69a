// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package globalstats

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/pool/record"
)

const (
	slotSequence         = "g/sequence"
	slotGeneration       = "g/generation"
	slotAccounts         = "g/accounts"
	slotTotalDelegation  = "g/total-delegation"
	slotTotalUnbonding   = "g/total-unbonding"
	slotLastBalanceAsset = "g/last-balance-asset"
)

// Service manages pool-wide counters and totals.
// The sequence orders every event in the log; the generation tells whether
// the delegation snapshot of the latest balance entry is still current.
type Service struct {
	sequence   *record.Uint64
	generation *record.Uint64
	accounts   *record.Uint64

	totalDelegation *record.Uint256
	totalUnbonding  *record.Uint256

	lastBalanceAsset *record.Raw[asset.Asset]
}

func New(ctx *record.Context) *Service {
	return &Service{
		sequence:         record.NewUint64(ctx, slotSequence),
		generation:       record.NewUint64(ctx, slotGeneration),
		accounts:         record.NewUint64(ctx, slotAccounts),
		totalDelegation:  record.NewUint256(ctx, slotTotalDelegation),
		totalUnbonding:   record.NewUint256(ctx, slotTotalUnbonding),
		lastBalanceAsset: record.NewRaw[asset.Asset](ctx, slotLastBalanceAsset),
	}
}

// Sequence returns the next sequence number to be allocated.
func (s *Service) Sequence() (uint64, error) {
	return s.sequence.Get()
}

// AllocateSequence returns the current sequence number and advances the counter.
func (s *Service) AllocateSequence() (uint64, error) {
	next, err := s.sequence.Increment()
	if err != nil {
		return 0, errors.Wrap(err, "failed to allocate sequence")
	}
	return next - 1, nil
}

func (s *Service) Generation() (uint64, error) {
	return s.generation.Get()
}

// AdvanceGeneration closes the latest balance entry to further deposits.
func (s *Service) AdvanceGeneration() error {
	_, err := s.generation.Increment()
	return err
}

func (s *Service) AccountCount() (uint64, error) {
	return s.accounts.Get()
}

// AddAccount bumps the account count and returns the new count.
func (s *Service) AddAccount() (uint64, error) {
	return s.accounts.Increment()
}

func (s *Service) TotalDelegation() (*uint256.Int, error) {
	return s.totalDelegation.Get()
}

func (s *Service) AddDelegation(amount *uint256.Int) error {
	return s.totalDelegation.Add(amount)
}

func (s *Service) RemoveDelegation(amount *uint256.Int) error {
	return s.totalDelegation.Sub(amount)
}

func (s *Service) TotalUnbonding() (*uint256.Int, error) {
	return s.totalUnbonding.Get()
}

func (s *Service) AddUnbonding(amount *uint256.Int) error {
	return s.totalUnbonding.Add(amount)
}

func (s *Service) RemoveUnbonding(amount *uint256.Int) error {
	return s.totalUnbonding.Sub(amount)
}

// LastBalanceAsset returns the asset of the balance entry at the latest
// allocated sequence, or nil when nothing was deposited yet.
func (s *Service) LastBalanceAsset() (*asset.Asset, error) {
	return s.lastBalanceAsset.Get()
}

func (s *Service) SetLastBalanceAsset(a asset.Asset) error {
	return s.lastBalanceAsset.Set(&a)
}

// Stats is a snapshot of the global aggregates.
type Stats struct {
	Sequence        uint64
	Generation      uint64
	Accounts        uint64
	TotalDelegation *uint256.Int
	TotalUnbonding  *uint256.Int
}

func (s *Service) Stats() (*Stats, error) {
	var (
		stats = &Stats{}
		err   error
	)
	if stats.Sequence, err = s.Sequence(); err != nil {
		return nil, err
	}
	if stats.Generation, err = s.Generation(); err != nil {
		return nil, err
	}
	if stats.Accounts, err = s.AccountCount(); err != nil {
		return nil, err
	}
	if stats.TotalDelegation, err = s.TotalDelegation(); err != nil {
		return nil, err
	}
	if stats.TotalUnbonding, err = s.TotalUnbonding(); err != nil {
		return nil, err
	}
	return stats, nil
}
