// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package house

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/vechain/revpool/api/utils"
	"github.com/vechain/revpool/pool"
)

type Handler struct {
	pool *pool.Pool
	now  func() time.Time
}

func New(p *pool.Pool, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{pool: p, now: now}
}

func (h *Handler) env() pool.Env {
	return pool.Env{Time: uint64(h.now().Unix())}
}

func (h *Handler) handleGetHouse(w http.ResponseWriter, _ *http.Request) error {
	view, err := h.pool.House(h.env())
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, convertHouse(view))
}

func (h *Handler) handleGetDeposits(w http.ResponseWriter, _ *http.Request) error {
	views, err := h.pool.Deposits(h.env())
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, convertDeposits(views))
}

func (h *Handler) handleGetTaxes(w http.ResponseWriter, _ *http.Request) error {
	view, err := h.pool.Taxes(h.env())
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, convertTaxes(view))
}

func (h *Handler) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("house_get_house").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetHouse))
	sub.Path("/deposits").
		Methods(http.MethodGet).
		Name("house_get_deposits").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetDeposits))
	sub.Path("/taxes").
		Methods(http.MethodGet).
		Name("house_get_taxes").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetTaxes))
}
