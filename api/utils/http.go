// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/revpool/amount"
	"github.com/vechain/revpool/log"
	"github.com/vechain/revpool/pool/reverts"
)

var logger = log.WithContext("pkg", "api-utils")

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

// HTTPError create an error with http status code.
func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

// BadRequest convenience method to create http bad request error.
func BadRequest(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusBadRequest,
	}
}

// Forbidden convenience method to create http forbidden error.
func Forbidden(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusForbidden,
	}
}

// Revert maps a pool error to its http status. Reverts are the caller's
// fault, anything else is passed through as an internal error.
func Revert(err error) error {
	if !reverts.IsRevertErr(err) {
		return err
	}
	if errors.Is(err, reverts.ErrUnauthorized) {
		return Forbidden(err)
	}
	return BadRequest(err)
}

// HandlerFunc like http.HandlerFunc, bu it returns an error.
// If the returned error is httpError type, httpError.status will be responded,
// otherwise http.StatusInternalServerError responded.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc convert HandlerFunc to http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err != nil {
			if he, ok := err.(*httpError); ok {
				if he.cause != nil {
					http.Error(w, he.cause.Error(), he.status)
				} else {
					w.WriteHeader(he.status)
				}
			} else {
				logger.Warn("request failed", "uri", r.URL.String(), "err", err)
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

// content types
const (
	JSONContentType = "application/json; charset=utf-8"
)

// ParseJSON parse a JSON object using strict mode.
func ParseJSON(r io.Reader, v any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON response an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// Amount converts v for marshalling.
func Amount(v *uint256.Int) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(amount.Or(v).ToBig())
}

// ToAmount converts a request amount, reporting name on failure.
func ToAmount(v *math.HexOrDecimal256, name string) (*uint256.Int, error) {
	if v == nil {
		return nil, BadRequest(errors.New(name + ": missing"))
	}
	b := (*big.Int)(v)
	if b.Sign() < 0 {
		return nil, BadRequest(errors.New(name + ": negative"))
	}
	u, overflow := uint256.FromBig(b)
	if overflow || u.Gt(amount.Max) {
		return nil, BadRequest(errors.WithMessage(amount.ErrOverflow, name))
	}
	return u, nil
}

// M shortcut for type map[string]any.
type M map[string]any
