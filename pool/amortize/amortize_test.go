// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package amortize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/revpool/kv"
	"github.com/vechain/revpool/lvldb"
	"github.com/vechain/revpool/pool/record"
	"github.com/vechain/revpool/types"
)

func withQueue(t *testing.T, fn func(q *Queue)) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Update(func(rw kv.ReadWriter) error {
		fn(NewQueue(record.NewContext(rw)))
		return nil
	}))
}

func addrs(n int) []types.Address {
	out := make([]types.Address, n)
	for i := range out {
		out[i] = types.BytesToAddress([]byte{byte(i + 1)})
	}
	return out
}

func drain(t *testing.T, q *Queue) []types.Address {
	var out []types.Address
	ptr, err := q.head.Get()
	require.NoError(t, err)
	for ptr != nil {
		out = append(out, *ptr)
		ptr, err = q.next.Get(*ptr)
		require.NoError(t, err)
	}
	return out
}

func TestQueue_FIFO(t *testing.T) {
	withQueue(t, func(q *Queue) {
		_, err := q.Pop()
		assert.ErrorIs(t, err, errEmpty)

		all := addrs(3)
		for _, a := range all {
			require.NoError(t, q.Push(a))
		}
		n, err := q.Len()
		require.NoError(t, err)
		assert.Equal(t, uint64(3), n)
		assert.Equal(t, all, drain(t, q))

		head, err := q.Pop()
		require.NoError(t, err)
		assert.Equal(t, all[0], head)
		require.NoError(t, q.Push(head))
		assert.Equal(t, []types.Address{all[1], all[2], all[0]}, drain(t, q))

		for range 3 {
			_, err := q.Pop()
			require.NoError(t, err)
		}
		n, err = q.Len()
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, drain(t, q))

		// usable again once drained
		require.NoError(t, q.Push(all[2]))
		assert.Equal(t, []types.Address{all[2]}, drain(t, q))
	})
}

func TestConfig_BatchSize(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		queueLen, accounts, want uint64
	}{
		{0, 0, 0},
		{1, 1, 1},
		{10, 10, 1},
		{11, 11, 2},
		{100, 100, 5},
		{3, 1000, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cfg.BatchSize(tt.queueLen, tt.accounts), "queue=%d accounts=%d", tt.queueLen, tt.accounts)
	}
	assert.Equal(t, uint64(1), Config{Cap: 5}.BatchSize(3, 3), "zero divisor falls back to default")
}

func TestScheduler_Run(t *testing.T) {
	withQueue(t, func(q *Queue) {
		all := addrs(25)
		s := NewScheduler(q, DefaultConfig())
		for _, a := range all {
			require.NoError(t, s.Enqueue(a))
		}

		var seen []types.Address
		settle := func(a types.Address) error {
			seen = append(seen, a)
			return nil
		}

		// ceil(25/10) = 3, acting account is skipped but still rotated
		acting := all[1]
		n, err := s.Run(&acting, 25, settle)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []types.Address{all[0], all[2]}, seen)

		order := drain(t, q)
		assert.Equal(t, all[3], order[0])
		assert.Equal(t, []types.Address{all[0], all[1], all[2]}, order[22:])

		seen = nil
		n, err = s.Run(nil, 25, settle)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, all[3:6], seen)
	})
}

func TestScheduler_RunError(t *testing.T) {
	withQueue(t, func(q *Queue) {
		s := NewScheduler(q, DefaultConfig())
		require.NoError(t, s.Enqueue(addrs(1)[0]))

		boom := errors.New("boom")
		_, err := s.Run(nil, 1, func(types.Address) error { return boom })
		assert.ErrorIs(t, err, boom)
	})
}
