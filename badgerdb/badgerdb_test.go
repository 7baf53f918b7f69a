// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package badgerdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/revpool/kv"
	"github.com/vechain/revpool/kv/kvtest"
)

func TestMemBadgerDB(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kv.Store {
		db, err := NewMem()
		require.NoError(t, err)
		return db
	})
}

func TestPersistentBadgerDB(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kv.Store {
		db, err := New(t.TempDir(), Options{GCInterval: 10 * time.Millisecond})
		require.NoError(t, err)
		return db
	})
}

func TestReopen(t *testing.T) {
	dir := t.TempDir()

	db, err := New(dir, Options{})
	require.NoError(t, err)
	require.NoError(t, db.Update(func(rw kv.ReadWriter) error {
		return rw.Put([]byte("k"), []byte("v"))
	}))
	require.NoError(t, db.Close())

	db, err = New(dir, Options{})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.View(func(r kv.Reader) error {
		v, err := r.Get([]byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), v)
		return nil
	}))
}
