// Copyright (c) 2019 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Getter defines methods to read kv.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
}

// Putter defines methods to write kv.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// Pair defines key-value pair.
// Key and Value are only valid until the iteration callback returns.
type Pair interface {
	Key() []byte
	Value() []byte
}

// Range is the key range.
type Range struct {
	Start   []byte // start of key range (included)
	Limit   []byte // limit of key range (excluded), empty means unbounded
	Reverse bool   // iterate from the last key down to Start
}

// Iterable defines ordered iteration over a key range.
// Iteration stops when fn returns false.
// fn must not write to the store it is iterating.
type Iterable interface {
	Iterate(r Range, fn func(Pair) bool) error
}

// Reader is a consistent read view of the store.
type Reader interface {
	Getter
	Iterable
}

// ReadWriter is a transaction that can read its own writes.
type ReadWriter interface {
	Reader
	Putter
}

// Store defines the full functional kv store.
// Update commits the writes of fn atomically, or none of them if fn returns an error.
type Store interface {
	View(fn func(Reader) error) error
	Update(fn func(ReadWriter) error) error
	Close() error
}
