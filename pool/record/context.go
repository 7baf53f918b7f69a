// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"github.com/pkg/errors"

	"github.com/vechain/revpool/kv"
)

var ErrReadOnly = errors.New("record: write in read-only context")

// Usage counts storage accesses made through a Context.
type Usage struct {
	Reads   uint64
	Writes  uint64
	Deletes uint64
}

// Context binds records to one store transaction.
type Context struct {
	reader kv.Reader
	putter kv.Putter
	usage  Usage
}

// NewContext creates a context over a read-write transaction.
func NewContext(rw kv.ReadWriter) *Context {
	return &Context{reader: rw, putter: rw}
}

// NewReadOnlyContext creates a context over a read view. Writes fail with ErrReadOnly.
func NewReadOnlyContext(r kv.Reader) *Context {
	return &Context{reader: r}
}

// ReadOnly reports whether writes are rejected.
func (c *Context) ReadOnly() bool {
	return c.putter == nil
}

// Usage returns the accesses made so far.
func (c *Context) Usage() Usage {
	return c.usage
}

// load calls fn with the raw value of key. fn is not called if the key is missing.
func (c *Context) load(key []byte, fn func(raw []byte) error) (bool, error) {
	c.usage.Reads++
	raw, err := c.reader.Get(key)
	if err != nil {
		if c.reader.IsNotFound(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "get %x", key)
	}
	return true, fn(raw)
}

func (c *Context) has(key []byte) (bool, error) {
	c.usage.Reads++
	has, err := c.reader.Has(key)
	return has, errors.Wrapf(err, "has %x", key)
}

func (c *Context) store(key, val []byte) error {
	if c.putter == nil {
		return ErrReadOnly
	}
	c.usage.Writes++
	return errors.Wrapf(c.putter.Put(key, val), "put %x", key)
}

func (c *Context) remove(key []byte) error {
	if c.putter == nil {
		return ErrReadOnly
	}
	c.usage.Deletes++
	return errors.Wrapf(c.putter.Delete(key), "delete %x", key)
}

func (c *Context) iterate(prefix string, r kv.Range, fn func(kv.Pair) bool) error {
	return kv.Bucket(prefix).NewIterable(c.reader).Iterate(r, func(p kv.Pair) bool {
		c.usage.Reads++
		return fn(p)
	})
}
