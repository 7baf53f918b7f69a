// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Prefix returns the range covering all keys with the given prefix.
func Prefix(prefix []byte) Range {
	r := util.BytesPrefix(prefix)
	return Range{Start: r.Start, Limit: r.Limit}
}

// After returns the smallest key greater than key.
// Use it as Limit to make an inclusive upper bound.
func After(key []byte) []byte {
	return append(append(make([]byte, 0, len(key)+1), key...), 0)
}

// Contains reports whether key falls inside r.
func (r Range) Contains(key []byte) bool {
	if string(key) < string(r.Start) {
		return false
	}
	return len(r.Limit) == 0 || string(key) < string(r.Limit)
}

// NewPair returns a Pair for key and value.
func NewPair(key, value []byte) Pair {
	return &struct {
		KeyFunc
		ValueFunc
	}{
		func() []byte { return key },
		func() []byte { return value },
	}
}
