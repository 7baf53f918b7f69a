// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package amortize rotates through every staked account, settling a small
// batch on each operation so no account falls far behind the log.
package amortize

import (
	"github.com/pkg/errors"

	"github.com/vechain/revpool/log"
	"github.com/vechain/revpool/types"
)

var logger = log.WithContext("pkg", "amortize")

const (
	DefaultCap     = 5
	DefaultDivisor = 10
)

type Config struct {
	Cap     uint64 // most accounts touched per operation
	Divisor uint64 // batch grows by one per Divisor accounts
}

func DefaultConfig() Config {
	return Config{Cap: DefaultCap, Divisor: DefaultDivisor}
}

// BatchSize returns min(Cap, queueLen, ceil(accounts/Divisor)).
func (c Config) BatchSize(queueLen, accounts uint64) uint64 {
	divisor := c.Divisor
	if divisor == 0 {
		divisor = DefaultDivisor
	}
	n := accounts / divisor
	if accounts%divisor != 0 {
		n++
	}
	return min(c.Cap, queueLen, n)
}

type Scheduler struct {
	queue *Queue
	cfg   Config
}

func NewScheduler(queue *Queue, cfg Config) *Scheduler {
	return &Scheduler{queue: queue, cfg: cfg}
}

// Enqueue adds a newly created account to the rotation.
func (s *Scheduler) Enqueue(addr types.Address) error {
	return s.queue.Push(addr)
}

// Run pops a batch off the queue, calls settle for each account and pushes it
// back to the tail. The acting account, if any, is rotated without settling
// since the operation already settled it. Run returns the number settled.
func (s *Scheduler) Run(acting *types.Address, accounts uint64, settle func(types.Address) error) (int, error) {
	queueLen, err := s.queue.Len()
	if err != nil {
		return 0, err
	}

	batch := s.cfg.BatchSize(queueLen, accounts)
	settled := 0
	for range batch {
		addr, err := s.queue.Pop()
		if err != nil {
			return settled, err
		}
		if acting == nil || addr != *acting {
			if err := settle(addr); err != nil {
				return settled, errors.WithMessagef(err, "amortize %s", addr)
			}
			settled++
		}
		if err := s.queue.Push(addr); err != nil {
			return settled, err
		}
	}
	if batch > 0 {
		logger.Trace("amortized", "batch", batch, "settled", settled)
	}
	return settled, nil
}
