// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/revpool/api"
	"github.com/vechain/revpool/log"
	"github.com/vechain/revpool/metrics"
	"github.com/vechain/revpool/pool"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "revpool",
		Usage:   "Pooled revenue sharing ledger",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			backendFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			enableMetricsFlag,
			verbosityFlag,
			jsonLogsFlag,
			ntpServerFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	initLogger(cfg, os.Stderr)
	defer func() { logger.Info("exited") }()

	if cfg.EnableMetrics {
		metrics.InitializePrometheusMetrics()
	}
	checkClock(cfg.NTPServer)

	store, err := openStore(cfg)
	if err != nil {
		return errors.WithMessage(err, "open store")
	}
	defer func() { logger.Info("closing store..."); store.Close() }()

	p := pool.New(store, pool.Options{Amortization: cfg.AmortizationConfig()})
	defer p.Close()

	if err := initPool(p, &cfg.House, time.Now()); err != nil {
		return err
	}

	handler, closeSubs := api.New(p, api.Options{
		AllowedOrigins:       cfg.CORSOrigins(),
		EnableReqLogger:      ctx.Bool(enableAPILogsFlag.Name),
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		EnableMetrics:        cfg.EnableMetrics,
	})
	srv, listener, err := startAPIServer(cfg.APIAddr, handler)
	if err != nil {
		return err
	}
	printStartupMessage(os.Stdout, cfg, "http://"+listener.Addr().String()+"/")

	exitCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(exitCtx)
	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "serve API")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("stopping API server...")
		// hijacked websocket connections are not tracked by the server
		closeSubs()
		return shutdown(srv, 5*time.Second)
	})
	return g.Wait()
}
