// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket provides logical bucket for kv store.
type Bucket string

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
	}{
		func(key []byte) ([]byte, error) {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			buf.k = append(append(buf.k[:0], b...), key...)

			return src.Get(buf.k)
		},
		func(key []byte) (bool, error) {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			buf.k = append(append(buf.k[:0], b...), key...)

			return src.Has(buf.k)
		},
		src.IsNotFound,
	}
}

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter {
	return &struct {
		PutFunc
		DeleteFunc
	}{
		func(key, val []byte) error {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			buf.k = append(append(buf.k[:0], b...), key...)

			return src.Put(buf.k, val)
		},
		func(key []byte) error {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			buf.k = append(append(buf.k[:0], b...), key...)

			return src.Delete(buf.k)
		},
	}
}

// NewIterable creates a bucket iterable from the source. Keys passed to fn have the bucket stripped.
func (b Bucket) NewIterable(src Iterable) Iterable {
	return IterateFunc(func(r Range, fn func(Pair) bool) error {
		r.Start = append([]byte(b), r.Start...)
		if len(r.Limit) == 0 {
			r.Limit = util.BytesPrefix([]byte(b)).Limit
		} else {
			r.Limit = append([]byte(b), r.Limit...)
		}
		return src.Iterate(r, func(p Pair) bool {
			return fn(&struct {
				KeyFunc
				ValueFunc
			}{
				// strip the bucket
				func() []byte { return p.Key()[len(b):] },
				p.Value,
			})
		})
	})
}

// NewReader creates a bucket reader from the source reader.
func (b Bucket) NewReader(src Reader) Reader {
	return &struct {
		Getter
		Iterable
	}{
		b.NewGetter(src),
		b.NewIterable(src),
	}
}

// NewReadWriter creates a bucket read-writer from the source read-writer.
func (b Bucket) NewReadWriter(src ReadWriter) ReadWriter {
	return &struct {
		Reader
		Putter
	}{
		b.NewReader(src),
		b.NewPutter(src),
	}
}

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src Store) Store {
	return &bucketStore{b, src}
}

type bucketStore struct {
	b   Bucket
	src Store
}

func (s *bucketStore) View(fn func(Reader) error) error {
	return s.src.View(func(r Reader) error {
		return fn(s.b.NewReader(r))
	})
}

func (s *bucketStore) Update(fn func(ReadWriter) error) error {
	return s.src.Update(func(rw ReadWriter) error {
		return fn(s.b.NewReadWriter(rw))
	})
}

func (s *bucketStore) Close() error {
	return s.src.Close()
}

type buf struct {
	k []byte
}

var bufPool = sync.Pool{
	New: func() any {
		return &buf{}
	},
}
