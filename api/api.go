// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/revpool/api/accounts"
	"github.com/vechain/revpool/api/house"
	"github.com/vechain/revpool/api/middleware"
	"github.com/vechain/revpool/api/operations"
	"github.com/vechain/revpool/api/subscriptions"
	"github.com/vechain/revpool/log"
	"github.com/vechain/revpool/metrics"
	"github.com/vechain/revpool/pool"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       []string
	EnableReqLogger      bool
	SlowQueriesThreshold time.Duration
	EnableMetrics        bool
	// Now is the clock operations are stamped with. Defaults to time.Now.
	Now func() time.Time
}

// New return api router
func New(p *pool.Pool, opts Options) (http.HandlerFunc, func()) {
	router := mux.NewRouter()

	operations.New(p, opts.Now).
		Mount(router, "")
	accounts.New(p, opts.Now).
		Mount(router, "/accounts")
	house.New(p, opts.Now).
		Mount(router, "/house")
	subs := subscriptions.New(p, opts.AllowedOrigins)
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
		router.Use(metricsMiddleware)
	}
	router.Use(middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold))

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(opts.AllowedOrigins),
		handlers.AllowedHeaders([]string{"content-type", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)(handler)
	handler = middleware.RequestID(handler)

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
