// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/vechain/revpool/api/utils"
	"github.com/vechain/revpool/pool"
	"github.com/vechain/revpool/types"
)

const cacheSize = 1024

type cacheKey struct {
	addr    types.Address
	version uint64
}

type Accounts struct {
	pool  *pool.Pool
	now   func() time.Time
	cache *lru.Cache
}

func New(p *pool.Pool, now func() time.Time) *Accounts {
	if now == nil {
		now = time.Now
	}
	cache, _ := lru.New(cacheSize)
	return &Accounts{pool: p, now: now, cache: cache}
}

// getAccount previews the account. Views are cached per pool version, so a
// commit invalidates every cached entry at once.
func (a *Accounts) getAccount(addr types.Address) (*pool.AccountView, error) {
	key := cacheKey{addr, a.pool.Version()}
	if cached, ok := a.cache.Get(key); ok {
		return cached.(*pool.AccountView), nil
	}
	view, err := a.pool.Account(pool.Env{Sender: addr, Time: uint64(a.now().Unix())}, addr)
	if err != nil {
		return nil, err
	}
	a.cache.Add(key, view)
	return view, nil
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := types.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	view, err := a.getAccount(*addr)
	if err != nil {
		return utils.Revert(err)
	}
	if view == nil {
		return utils.WriteJSON(w, nil)
	}
	return utils.WriteJSON(w, convertAccount(view, uint64(a.now().Unix())))
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("accounts_get_account").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
}
