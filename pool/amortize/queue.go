// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package amortize

import (
	"github.com/pkg/errors"

	"github.com/vechain/revpool/pool/record"
	"github.com/vechain/revpool/types"
)

const (
	slotHead   = "q/head"
	slotTail   = "q/tail"
	slotCount  = "q/count"
	prefixNext = "q/next/"
)

var errEmpty = errors.New("amortization queue is empty")

// Queue is a persistent FIFO of account addresses.
type Queue struct {
	head  *record.Raw[types.Address]
	tail  *record.Raw[types.Address]
	count *record.Uint64
	next  *record.Mapping[types.Address, types.Address]
}

func NewQueue(ctx *record.Context) *Queue {
	return &Queue{
		head:  record.NewRaw[types.Address](ctx, slotHead),
		tail:  record.NewRaw[types.Address](ctx, slotTail),
		count: record.NewUint64(ctx, slotCount),
		next:  record.NewMapping[types.Address, types.Address](ctx, prefixNext),
	}
}

// Push appends an address at the tail.
func (q *Queue) Push(addr types.Address) error {
	oldTail, err := q.tail.Get()
	if err != nil {
		return err
	}

	if oldTail == nil {
		// empty queue, the entry becomes head and tail
		if err := q.head.Set(&addr); err != nil {
			return err
		}
	} else if err := q.next.Set(*oldTail, &addr); err != nil {
		return err
	}

	if err := q.tail.Set(&addr); err != nil {
		return err
	}
	_, err = q.count.Increment()
	return err
}

// Pop removes and returns the head.
func (q *Queue) Pop() (types.Address, error) {
	head, err := q.head.Get()
	if err != nil {
		return types.Address{}, err
	}
	if head == nil {
		return types.Address{}, errEmpty
	}

	next, err := q.next.Get(*head)
	if err != nil {
		return types.Address{}, err
	}
	if next == nil {
		if err := q.head.Delete(); err != nil {
			return types.Address{}, err
		}
		if err := q.tail.Delete(); err != nil {
			return types.Address{}, err
		}
	} else {
		if err := q.head.Set(next); err != nil {
			return types.Address{}, err
		}
		if err := q.next.Delete(*head); err != nil {
			return types.Address{}, err
		}
	}

	n, err := q.count.Get()
	if err != nil {
		return types.Address{}, err
	}
	if err := q.count.Set(n - 1); err != nil {
		return types.Address{}, err
	}
	return *head, nil
}

func (q *Queue) Len() (uint64, error) {
	return q.count.Get()
}
