// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package badgerdb implements kv.Store on badger.
package badgerdb

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/vechain/revpool/kv"
	"github.com/vechain/revpool/log"
)

var _ kv.Store = (*BadgerDB)(nil)

var logger = log.WithContext("pkg", "badgerdb")

const defaultGCInterval = 5 * time.Minute

// Options options for opening a badger db.
type Options struct {
	// GCInterval is how often the value log is garbage collected. Zero uses the default.
	GCInterval time.Duration
}

// BadgerDB wraps a badger database.
type BadgerDB struct {
	db     *badger.DB
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New opens or creates the badger database in dir.
func New(dir string, opts Options) (*BadgerDB, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).
		WithLogger(badgerLogger{}).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, errors.Wrap(err, "open badger db")
	}
	interval := opts.GCInterval
	if interval == 0 {
		interval = defaultGCInterval
	}
	b := &BadgerDB{db: db, stopCh: make(chan struct{})}
	b.wg.Add(1)
	go b.gcLoop(interval)
	return b, nil
}

// NewMem creates a badger database in memory.
func NewMem() (*BadgerDB, error) {
	db, err := badger.Open(badger.DefaultOptions("").
		WithLogger(badgerLogger{}).
		WithLoggingLevel(badger.WARNING).
		WithInMemory(true))
	if err != nil {
		return nil, errors.Wrap(err, "open badger db")
	}
	return &BadgerDB{db: db}, nil
}

func (b *BadgerDB) gcLoop(interval time.Duration) {
	defer b.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			for {
				if err := b.db.RunValueLogGC(0.5); err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						logger.Warn("value log gc failed", "err", err)
					}
					break
				}
			}
		case <-b.stopCh:
			return
		}
	}
}

// View runs fn inside a read-only transaction.
func (b *BadgerDB) View(fn func(kv.Reader) error) error {
	return b.db.View(func(txn *badger.Txn) error {
		return fn(newReader(txn))
	})
}

// Update runs fn inside a read-write transaction. Returning an error discards it.
func (b *BadgerDB) Update(fn func(kv.ReadWriter) error) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return fn(&struct {
			kv.Reader
			kv.PutFunc
			kv.DeleteFunc
		}{
			newReader(txn),
			func(key, val []byte) error {
				// badger keeps the slices until commit
				return txn.Set(bytes.Clone(key), bytes.Clone(val))
			},
			func(key []byte) error {
				return txn.Delete(bytes.Clone(key))
			},
		})
	})
}

// Close stops the value log gc and closes the database.
func (b *BadgerDB) Close() error {
	if b.stopCh != nil {
		close(b.stopCh)
		b.wg.Wait()
		b.stopCh = nil
	}
	return b.db.Close()
}

func newReader(txn *badger.Txn) kv.Reader {
	return &struct {
		kv.GetFunc
		kv.HasFunc
		kv.IsNotFoundFunc
		kv.IterateFunc
	}{
		func(key []byte) ([]byte, error) {
			item, err := txn.Get(key)
			if err != nil {
				return nil, err
			}
			return item.ValueCopy(nil)
		},
		func(key []byte) (bool, error) {
			_, err := txn.Get(key)
			if errors.Is(err, badger.ErrKeyNotFound) {
				return false, nil
			}
			return err == nil, err
		},
		func(err error) bool { return errors.Is(err, badger.ErrKeyNotFound) },
		func(r kv.Range, fn func(kv.Pair) bool) error {
			return iterate(txn, r, fn)
		},
	}
}

func iterate(txn *badger.Txn, r kv.Range, fn func(kv.Pair) bool) error {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = r.Reverse
	it := txn.NewIterator(opts)
	defer it.Close()

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
			it.Rewind()
		} else {
			// seeks to the largest key <= Limit
			it.Seek(r.Limit)
			if it.Valid() && bytes.Equal(it.Item().Key(), r.Limit) {
				it.Next()
			}
		}
	} else {
		it.Seek(r.Start)
	}

	for ; it.Valid(); it.Next() {
		item := it.Item()
		k = item.Key()
		if r.Reverse {
			if bytes.Compare(k, r.Start) < 0 {
				return nil
			}
		} else if len(r.Limit) > 0 && bytes.Compare(k, r.Limit) >= 0 {
			return nil
		}
		var err error
		if v, err = item.ValueCopy(v[:0]); err != nil {
			return err
		}
		if !fn(pair) {
			return nil
		}
	}
	return nil
}

type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...any) {
	logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Warningf(format string, args ...any) {
	logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Infof(format string, args ...any) {
	logger.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Debugf(format string, args ...any) {
	logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
