// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kvtest checks that a kv.Store implementation honours the kv contract.
package kvtest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/revpool/kv"
)

// Run runs the conformance suite. open must return a fresh, empty store.
func Run(t *testing.T, open func(t *testing.T) kv.Store) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s kv.Store)
	}{
		{"GetPutDelete", testGetPutDelete},
		{"ReadOwnWrites", testReadOwnWrites},
		{"Rollback", testRollback},
		{"Ranges", testRanges},
		{"StopEarly", testStopEarly},
		{"Bucket", testBucket},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := open(t)
			defer s.Close()
			tt.fn(t, s)
		})
	}
}

func keys(t *testing.T, r kv.Reader, rng kv.Range) []string {
	var out []string
	require.NoError(t, r.Iterate(rng, func(p kv.Pair) bool {
		out = append(out, string(p.Key()))
		return true
	}))
	return out
}

func seed(t *testing.T, s kv.Store, ks ...string) {
	require.NoError(t, s.Update(func(rw kv.ReadWriter) error {
		for _, k := range ks {
			if err := rw.Put([]byte(k), []byte("v"+k)); err != nil {
				return err
			}
		}
		return nil
	}))
}

func testGetPutDelete(t *testing.T, s kv.Store) {
	seed(t, s, "k1")

	require.NoError(t, s.View(func(r kv.Reader) error {
		v, err := r.Get([]byte("k1"))
		require.NoError(t, err)
		assert.Equal(t, []byte("vk1"), v)

		has, err := r.Has([]byte("k1"))
		require.NoError(t, err)
		assert.True(t, has)

		has, err = r.Has([]byte("k2"))
		require.NoError(t, err)
		assert.False(t, has)

		_, err = r.Get([]byte("k2"))
		assert.True(t, r.IsNotFound(err))
		return nil
	}))

	require.NoError(t, s.Update(func(rw kv.ReadWriter) error {
		return rw.Delete([]byte("k1"))
	}))
	require.NoError(t, s.View(func(r kv.Reader) error {
		_, err := r.Get([]byte("k1"))
		assert.True(t, r.IsNotFound(err))
		return nil
	}))
}

func testReadOwnWrites(t *testing.T, s kv.Store) {
	seed(t, s, "a", "c")
	require.NoError(t, s.Update(func(rw kv.ReadWriter) error {
		require.NoError(t, rw.Put([]byte("b"), []byte("vb")))
		require.NoError(t, rw.Delete([]byte("c")))

		v, err := rw.Get([]byte("b"))
		require.NoError(t, err)
		assert.Equal(t, []byte("vb"), v)
		assert.Equal(t, []string{"a", "b"}, keys(t, rw, kv.Range{}))
		return nil
	}))
}

func testRollback(t *testing.T, s kv.Store) {
	seed(t, s, "a")
	errAbort := errors.New("abort")
	err := s.Update(func(rw kv.ReadWriter) error {
		require.NoError(t, rw.Put([]byte("b"), []byte("vb")))
		require.NoError(t, rw.Delete([]byte("a")))
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	require.NoError(t, s.View(func(r kv.Reader) error {
		assert.Equal(t, []string{"a"}, keys(t, r, kv.Range{}))
		return nil
	}))
}

func testRanges(t *testing.T, s kv.Store) {
	seed(t, s, "a1", "a2", "a3", "b1", "b2")

	require.NoError(t, s.View(func(r kv.Reader) error {
		tests := []struct {
			rng  kv.Range
			want []string
		}{
			{kv.Range{}, []string{"a1", "a2", "a3", "b1", "b2"}},
			{kv.Range{Reverse: true}, []string{"b2", "b1", "a3", "a2", "a1"}},
			{kv.Range{Start: []byte("a2"), Limit: []byte("b1")}, []string{"a2", "a3"}},
			{kv.Range{Start: []byte("a2"), Limit: []byte("b1"), Reverse: true}, []string{"a3", "a2"}},
			{kv.Range{Start: []byte("a15"), Limit: []byte("a25")}, []string{"a2"}},
			{kv.Range{Start: []byte("a15"), Limit: []byte("a25"), Reverse: true}, []string{"a2"}},
			{kv.Range{Start: []byte("a2"), Limit: kv.After([]byte("a3"))}, []string{"a2", "a3"}},
			{kv.Range{Limit: []byte("a2"), Reverse: true}, []string{"a1"}},
			{kv.Range{Start: []byte("b"), Reverse: true}, []string{"b2", "b1"}},
			{kv.Prefix([]byte("b")), []string{"b1", "b2"}},
			{kv.Range{Start: []byte("c")}, nil},
			{kv.Range{Start: []byte("a3"), Limit: []byte("a3")}, nil},
			{kv.Range{Start: []byte("b"), Limit: []byte("a"), Reverse: true}, nil},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.want, keys(t, r, tt.rng), "%+v", tt.rng)
		}
		return nil
	}))
}

func testStopEarly(t *testing.T, s kv.Store) {
	seed(t, s, "a", "b", "c")
	require.NoError(t, s.View(func(r kv.Reader) error {
		var got []string
		require.NoError(t, r.Iterate(kv.Range{Reverse: true}, func(p kv.Pair) bool {
			got = append(got, string(p.Key()))
			return false
		}))
		assert.Equal(t, []string{"c"}, got)
		return nil
	}))
}

func testBucket(t *testing.T, s kv.Store) {
	bs := kv.Bucket("x/").NewStore(s)
	require.NoError(t, bs.Update(func(rw kv.ReadWriter) error {
		return rw.Put([]byte("1"), []byte("v"))
	}))
	seed(t, s, "w", "y")
	require.NoError(t, bs.View(func(r kv.Reader) error {
		assert.Equal(t, []string{"1"}, keys(t, r, kv.Range{}))
		assert.Equal(t, []string{"1"}, keys(t, r, kv.Range{Reverse: true}))
		return nil
	}))
}
