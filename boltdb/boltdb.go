// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package boltdb implements kv.Store on a single bbolt bucket.
package boltdb

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/vechain/revpool/kv"
)

var _ kv.Store = (*BoltDB)(nil)

var (
	bucketName = []byte("revpool")

	// ErrNotFound is returned by Get when the key does not exist.
	ErrNotFound = errors.New("boltdb: not found")
)

// Options options for opening a bolt db.
type Options struct {
	Timeout time.Duration
	NoSync  bool
}

// BoltDB wraps a bbolt database.
type BoltDB struct {
	db *bbolt.DB
}

// New opens or creates the bolt database at path.
// The parent directory is created if it does not exist.
func New(path string, opts Options) (*BoltDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.Wrap(err, "create directory")
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: opts.Timeout, NoSync: opts.NoSync})
	if err != nil {
		return nil, errors.Wrap(err, "open bolt db")
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create bucket")
	}
	return &BoltDB{db: db}, nil
}

// View runs fn inside a read-only transaction.
func (b *BoltDB) View(fn func(kv.Reader) error) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		return fn(newReader(tx.Bucket(bucketName)))
	})
}

// Update runs fn inside a read-write transaction. Returning an error rolls it back.
func (b *BoltDB) Update(fn func(kv.ReadWriter) error) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(bucketName)
		return fn(&struct {
			kv.Reader
			kv.PutFunc
			kv.DeleteFunc
		}{
			newReader(bkt),
			bkt.Put,
			bkt.Delete,
		})
	})
}

// Close closes the underlying database.
func (b *BoltDB) Close() error {
	return b.db.Close()
}

func newReader(bkt *bbolt.Bucket) kv.Reader {
	return &struct {
		kv.GetFunc
		kv.HasFunc
		kv.IsNotFoundFunc
		kv.IterateFunc
	}{
		func(key []byte) ([]byte, error) {
			k, v := bkt.Cursor().Seek(key)
			if k == nil || !bytes.Equal(k, key) {
				return nil, ErrNotFound
			}
			return append([]byte(nil), v...), nil
		},
		func(key []byte) (bool, error) {
			k, _ := bkt.Cursor().Seek(key)
			return k != nil && bytes.Equal(k, key), nil
		},
		func(err error) bool { return errors.Is(err, ErrNotFound) },
		func(r kv.Range, fn func(kv.Pair) bool) error {
			iterate(bkt.Cursor(), r, fn)
			return nil
		},
	}
}

func iterate(c *bbolt.Cursor, r kv.Range, fn func(kv.Pair) bool) {
	var k, v []byte
	pair := &struct {
		kv.KeyFunc
		kv.ValueFunc
	}{
		func() []byte { return k },
		func() []byte { return v },
	}

	if r.Reverse {
		if len(r.Limit) == 0 {
			k, v = c.Last()
		} else if k, v = c.Seek(r.Limit); k == nil {
			k, v = c.Last()
		} else {
			k, v = c.Prev()
		}
		for ; k != nil && bytes.Compare(k, r.Start) >= 0; k, v = c.Prev() {
			if !fn(pair) {
				return
			}
		}
		return
	}

	for k, v = c.Seek(r.Start); k != nil; k, v = c.Next() {
		if len(r.Limit) > 0 && bytes.Compare(k, r.Limit) >= 0 {
			return
		}
		if !fn(pair) {
			return
		}
	}
}
