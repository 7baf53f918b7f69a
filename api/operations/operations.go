// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package operations serves the pool's state changing operations. The sender
// is taken from the request body; authenticating it is left to whatever sits
// in front of the API.
package operations

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/revpool/api/utils"
	"github.com/vechain/revpool/pool"
	"github.com/vechain/revpool/pool/taxes"
	"github.com/vechain/revpool/types"
)

type Operations struct {
	pool *pool.Pool
	now  func() time.Time
}

func New(p *pool.Pool, now func() time.Time) *Operations {
	if now == nil {
		now = time.Now
	}
	return &Operations{pool: p, now: now}
}

func (o *Operations) env(sender types.Address) pool.Env {
	return pool.Env{Sender: sender, Time: uint64(o.now().Unix())}
}

func (o *Operations) respond(w http.ResponseWriter, r *pool.Receipt, err error) error {
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, ConvertReceipt(r))
}

func (o *Operations) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	var body Deposit
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	value, err := utils.ToAmount(body.Amount, "amount")
	if err != nil {
		return err
	}
	r, err := o.pool.Deposit(req.Context(), o.env(body.Sender), body.Asset, value)
	return o.respond(w, r, err)
}

func (o *Operations) handleStake(w http.ResponseWriter, req *http.Request) error {
	var body Stake
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	value, err := utils.ToAmount(body.Amount, "amount")
	if err != nil {
		return err
	}
	r, err := o.pool.Stake(o.env(body.Sender), value, body.OnBehalfOf)
	return o.respond(w, r, err)
}

func (o *Operations) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	var body Unstake
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	var value *uint256.Int
	if body.Amount != nil {
		var err error
		if value, err = utils.ToAmount(body.Amount, "amount"); err != nil {
			return err
		}
	}
	r, err := o.pool.Unstake(o.env(body.Sender), value, body.OnBehalfOf)
	return o.respond(w, r, err)
}

func (o *Operations) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body Claim
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	r, err := o.pool.Claim(o.env(body.Sender), body.Asset)
	return o.respond(w, r, err)
}

func (o *Operations) handleAddRevenueAsset(w http.ResponseWriter, req *http.Request) error {
	var body AddRevenueAsset
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	r, err := o.pool.AddRevenueAsset(o.env(body.Sender), body.Asset)
	return o.respond(w, r, err)
}

func (o *Operations) handleSetTaxRecipient(w http.ResponseWriter, req *http.Request) error {
	var body SetTaxRecipient
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	r, err := o.pool.SetTaxRecipient(o.env(body.Sender), body.Address, taxes.Recipient{
		Pct:       body.Pct,
		Autosend:  body.Autosend,
		Immutable: body.Immutable,
		Name:      body.Name,
		Logo:      body.Logo,
	})
	return o.respond(w, r, err)
}

// Mount registers the routes on root itself. A catch-all subrouter would swallow
// the method mismatch of these routes and turn 405 into 404.
func (o *Operations) Mount(root *mux.Router, pathPrefix string) {
	sub := root
	if pathPrefix != "" {
		sub = root.PathPrefix(pathPrefix).Subrouter()
	}

	sub.Path("/deposit").
		Methods(http.MethodPost).
		Name("operations_deposit").
		HandlerFunc(utils.WrapHandlerFunc(o.handleDeposit))
	sub.Path("/stake").
		Methods(http.MethodPost).
		Name("operations_stake").
		HandlerFunc(utils.WrapHandlerFunc(o.handleStake))
	sub.Path("/unstake").
		Methods(http.MethodPost).
		Name("operations_unstake").
		HandlerFunc(utils.WrapHandlerFunc(o.handleUnstake))
	sub.Path("/claim").
		Methods(http.MethodPost).
		Name("operations_claim").
		HandlerFunc(utils.WrapHandlerFunc(o.handleClaim))
	sub.Path("/admin/revenue-assets").
		Methods(http.MethodPost).
		Name("operations_add_revenue_asset").
		HandlerFunc(utils.WrapHandlerFunc(o.handleAddRevenueAsset))
	sub.Path("/admin/tax-recipients").
		Methods(http.MethodPost).
		Name("operations_set_tax_recipient").
		HandlerFunc(utils.WrapHandlerFunc(o.handleSetTaxRecipient))
}
