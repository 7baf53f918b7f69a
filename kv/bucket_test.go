// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mem map[string]string

func (m mem) Get(k []byte) ([]byte, error) {
	if v, ok := m[string(k)]; ok {
		return []byte(v), nil
	}
	return nil, errors.New("not found")
}

func (m mem) Has(k []byte) (bool, error) {
	_, ok := m[string(k)]
	return ok, nil
}

func (m mem) Put(k, v []byte) error {
	m[string(k)] = string(v)
	return nil
}

func (m mem) Delete(k []byte) error {
	delete(m, string(k))
	return nil
}
func (m mem) IsNotFound(err error) bool {
	return true
}

func (m mem) Iterate(r Range, fn func(Pair) bool) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		if r.Contains([]byte(k)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if r.Reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	}
	for _, k := range keys {
		if !fn(NewPair([]byte(k), []byte(m[k]))) {
			break
		}
	}
	return nil
}

func TestBucket_GetterGet(t *testing.T) {
	m := mem{"k1": "v1", "k2": "v2"}

	tests := []struct {
		b    Bucket
		key  string
		want string
	}{
		{Bucket(""), "k1", "v1"},
		{Bucket(""), "k2", "v2"},
		{Bucket("k"), "k1", ""},
		{Bucket("k"), "1", "v1"},
		{Bucket("k"), "2", "v2"},
		{Bucket("k1"), "", "v1"},
	}
	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			if got, _ := tt.b.NewGetter(m).Get([]byte(tt.key)); !reflect.DeepEqual(string(got), tt.want) {
				t.Errorf("Bucket.NewGetter.Get = %v, want %v", string(got), tt.want)
			}
		})
	}
}

func TestBucket_GetterHas(t *testing.T) {
	m := mem{"k1": "v1", "k2": "v2"}

	tests := []struct {
		b    Bucket
		key  string
		want bool
	}{
		{Bucket(""), "k1", true},
		{Bucket(""), "k2", true},
		{Bucket("k"), "k1", false},
		{Bucket("k"), "1", true},
		{Bucket("k"), "2", true},
		{Bucket("k1"), "", true},
	}
	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			if got, _ := tt.b.NewGetter(m).Has([]byte(tt.key)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Bucket.NewGetter.Has = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBucket_Putter(t *testing.T) {
	m := mem{}
	p := Bucket("x/").NewPutter(m)
	require.NoError(t, p.Put([]byte("a"), []byte("1")))
	assert.Equal(t, mem{"x/a": "1"}, m)
	require.NoError(t, p.Delete([]byte("a")))
	assert.Empty(t, m)
}

func collect(t *testing.T, it Iterable, r Range) []string {
	var keys []string
	require.NoError(t, it.Iterate(r, func(p Pair) bool {
		keys = append(keys, string(p.Key()))
		return true
	}))
	return keys
}

func TestBucket_Iterate(t *testing.T) {
	m := mem{"a1": "", "a2": "", "a3": "", "b1": "", "a": ""}
	it := Bucket("a").NewIterable(m)

	assert.Equal(t, []string{"", "1", "2", "3"}, collect(t, it, Range{}))
	assert.Equal(t, []string{"3", "2", "1", ""}, collect(t, it, Range{Reverse: true}))
	assert.Equal(t, []string{"2"}, collect(t, it, Range{Start: []byte("2"), Limit: []byte("3")}))
	assert.Equal(t, []string{"2", "3"}, collect(t, it, Range{Start: []byte("2")}))
	assert.Equal(t, []string{"2", "1"}, collect(t, it, Range{Start: []byte("1"), Limit: []byte("3"), Reverse: true}))
}

func TestPrefixAndAfter(t *testing.T) {
	m := mem{"ab": "", "abc": "", "ac": "", "b": ""}
	assert.Equal(t, []string{"ab", "abc"}, collect(t, m, Prefix([]byte("ab"))))
	assert.Equal(t, []string{"ab"}, collect(t, m, Range{Start: []byte("a"), Limit: After([]byte("ab"))}))

	r := Prefix([]byte("a"))
	assert.True(t, r.Contains([]byte("a")))
	assert.True(t, r.Contains([]byte("azz")))
	assert.False(t, r.Contains([]byte("b")))
	assert.True(t, Range{}.Contains([]byte{0xff}))
}

func TestBucket_Store(t *testing.T) {
	m := mem{"p1": "v"}
	s := Bucket("p").NewStore(memStore{m})

	require.NoError(t, s.Update(func(rw ReadWriter) error {
		return rw.Put([]byte("2"), []byte("w"))
	}))
	require.NoError(t, s.View(func(r Reader) error {
		assert.Equal(t, []string{"1", "2"}, collect(t, r, Range{}))
		return nil
	}))
	assert.Equal(t, "w", m["p2"])
	assert.NoError(t, s.Close())
}

type memStore struct{ m mem }

func (s memStore) View(fn func(Reader) error) error        { return fn(s.m) }
func (s memStore) Update(fn func(ReadWriter) error) error { return fn(s.m) }
func (s memStore) Close() error                           { return nil }
