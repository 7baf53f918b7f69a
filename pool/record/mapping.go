// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/revpool/kv"
)

// Mapping is a keyed collection of RLP encoded records sharing one prefix.
type Mapping[K Key, V any] struct {
	context *Context
	prefix  string
}

func NewMapping[K Key, V any](context *Context, prefix string) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, prefix: prefix}
}

func (m *Mapping[K, V]) key(k K) []byte {
	return append([]byte(m.prefix), k.Bytes()...)
}

// Get returns the value stored under key, or nil if there is none.
func (m *Mapping[K, V]) Get(key K) (*V, error) {
	var value *V
	_, err := m.context.load(m.key(key), func(raw []byte) error {
		value = new(V)
		return errors.Wrapf(rlp.DecodeBytes(raw, value), "decode %s%x", m.prefix, key.Bytes())
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (m *Mapping[K, V]) Has(key K) (bool, error) {
	return m.context.has(m.key(key))
}

func (m *Mapping[K, V]) Set(key K, value *V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrapf(err, "encode %s%x", m.prefix, key.Bytes())
	}
	return m.context.store(m.key(key), raw)
}

func (m *Mapping[K, V]) Delete(key K) error {
	return m.context.remove(m.key(key))
}

// Item is a decoded entry returned by Scan. Key has the mapping prefix stripped.
type Item[V any] struct {
	Key   []byte
	Value *V
}

// Scan decodes the entries in r, at most max of them when max > 0.
// The range is relative to the mapping prefix.
func (m *Mapping[K, V]) Scan(r kv.Range, max int) ([]Item[V], error) {
	var (
		items  []Item[V]
		decErr error
	)
	err := m.context.iterate(m.prefix, r, func(p kv.Pair) bool {
		value := new(V)
		if decErr = rlp.DecodeBytes(p.Value(), value); decErr != nil {
			decErr = errors.Wrapf(decErr, "decode %s%x", m.prefix, p.Key())
			return false
		}
		items = append(items, Item[V]{Key: append([]byte(nil), p.Key()...), Value: value})
		return max <= 0 || len(items) < max
	})
	if err != nil {
		return nil, err
	}
	if decErr != nil {
		return nil, decErr
	}
	return items, nil
}

// ScanPrefix decodes all entries whose key starts with prefix.
func (m *Mapping[K, V]) ScanPrefix(prefix Key) ([]Item[V], error) {
	return m.Scan(kv.Prefix(prefix.Bytes()), 0)
}
