// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/vechain/revpool/kv"
)

var _ kv.Store = (*LevelDB)(nil)

// Options options for creating level db instance.
type Options struct {
	CacheSize              int
	OpenFilesCacheCapacity int
}

var (
	writeOpt = opt.WriteOptions{Sync: true}
	readOpt  = opt.ReadOptions{}
)

// LevelDB wraps level db impls.
type LevelDB struct {
	db  *leveldb.DB
	stg storage.Storage
}

// New create a persistent level db instance.
// Create an empty one if not exists, or open if already there.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "new persistent level db")
	}
	return openLevelDB(stg, opts.CacheSize, opts.OpenFilesCacheCapacity)
}

// NewMem create a level db in memory.
func NewMem() (*LevelDB, error) {
	return openLevelDB(storage.NewMemStorage(), 0, 0)
}

func openLevelDB(stg storage.Storage, cacheSize, openFilesCacheCapacity int) (*LevelDB, error) {
	if cacheSize < 16 {
		cacheSize = 16
	}

	if openFilesCacheCapacity < 16 {
		openFilesCacheCapacity = 16
	}

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: openFilesCacheCapacity,
		BlockCacheCapacity:     cacheSize / 2 * opt.MiB,
		WriteBuffer:            cacheSize / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})

	if err != nil {
		stg.Close()
		return nil, errors.Wrap(err, "open level db")
	}
	return &LevelDB{db: db, stg: stg}, nil
}

// View runs fn against a consistent snapshot.
func (ldb *LevelDB) View(fn func(kv.Reader) error) error {
	snapshot, err := ldb.db.GetSnapshot()
	if err != nil {
		return errors.Wrap(err, "get snapshot")
	}
	defer snapshot.Release()

	return fn(&struct {
		kv.GetFunc
		kv.HasFunc
		kv.IsNotFoundFunc
		kv.IterateFunc
	}{
		func(key []byte) ([]byte, error) { return snapshot.Get(key, &readOpt) },
		func(key []byte) (bool, error) { return snapshot.Has(key, &readOpt) },
		isNotFound,
		func(r kv.Range, fn func(kv.Pair) bool) error {
			return iterate(snapshot.NewIterator(toUtilRange(r), &readOpt), r.Reverse, fn)
		},
	})
}

// Update runs fn inside a transaction. The transaction is committed if fn returns nil
// and discarded otherwise.
func (ldb *LevelDB) Update(fn func(kv.ReadWriter) error) error {
	tr, err := ldb.db.OpenTransaction()
	if err != nil {
		return errors.Wrap(err, "open transaction")
	}

	if err := fn(&struct {
		kv.GetFunc
		kv.HasFunc
		kv.IsNotFoundFunc
		kv.IterateFunc
		kv.PutFunc
		kv.DeleteFunc
	}{
		func(key []byte) ([]byte, error) { return tr.Get(key, &readOpt) },
		func(key []byte) (bool, error) { return tr.Has(key, &readOpt) },
		isNotFound,
		func(r kv.Range, fn func(kv.Pair) bool) error {
			return iterate(tr.NewIterator(toUtilRange(r), &readOpt), r.Reverse, fn)
		},
		func(key, val []byte) error { return tr.Put(key, val, &writeOpt) },
		func(key []byte) error { return tr.Delete(key, &writeOpt) },
	}); err != nil {
		tr.Discard()
		return err
	}
	return errors.Wrap(tr.Commit(), "commit transaction")
}

// Close closes the level db and releases its storage, including the lock on
// the data dir. Later operations will all fail.
func (ldb *LevelDB) Close() error {
	if err := ldb.db.Close(); err != nil {
		return err
	}
	return ldb.stg.Close()
}

func isNotFound(err error) bool {
	return err == leveldb.ErrNotFound
}

func toUtilRange(r kv.Range) *util.Range {
	rng := &util.Range{Start: r.Start}
	if len(r.Limit) > 0 {
		rng.Limit = r.Limit
	}
	return rng
}

func iterate(it iterator.Iterator, reverse bool, fn func(kv.Pair) bool) error {
	defer it.Release()

	pair := &struct {
		kv.KeyFunc
		kv.ValueFunc
	}{it.Key, it.Value}

	if reverse {
		for ok := it.Last(); ok; ok = it.Prev() {
			if !fn(pair) {
				break
			}
		}
	} else {
		for it.Next() {
			if !fn(pair) {
				break
			}
		}
	}
	return it.Error()
}
