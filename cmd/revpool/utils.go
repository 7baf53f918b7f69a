// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/beevik/ntp"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/revpool/badgerdb"
	"github.com/vechain/revpool/boltdb"
	"github.com/vechain/revpool/config"
	"github.com/vechain/revpool/kv"
	"github.com/vechain/revpool/log"
	"github.com/vechain/revpool/lvldb"
	"github.com/vechain/revpool/pool"
	"github.com/vechain/revpool/pool/reverts"
)

// maxClockOffset is the drift beyond which unbonding maturity and settlement
// times are no longer trustworthy.
const maxClockOffset = 5 * time.Second

// loadConfig reads the configuration file and lets explicitly set flags win.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.String(configFlag.Name))
	if err != nil {
		return nil, err
	}
	if ctx.IsSet(dataDirFlag.Name) {
		cfg.DataDir = ctx.String(dataDirFlag.Name)
	}
	if ctx.IsSet(backendFlag.Name) {
		cfg.Backend = ctx.String(backendFlag.Name)
	}
	if ctx.IsSet(cacheFlag.Name) {
		cfg.CacheSize = ctx.Int(cacheFlag.Name)
	}
	if ctx.IsSet(apiAddrFlag.Name) {
		cfg.APIAddr = ctx.String(apiAddrFlag.Name)
	}
	if ctx.IsSet(apiCorsFlag.Name) {
		cfg.APICors = ctx.String(apiCorsFlag.Name)
	}
	if ctx.IsSet(enableMetricsFlag.Name) {
		cfg.EnableMetrics = ctx.Bool(enableMetricsFlag.Name)
	}
	if ctx.IsSet(verbosityFlag.Name) {
		cfg.Verbosity = int(ctx.Uint64(verbosityFlag.Name))
	}
	if ctx.IsSet(jsonLogsFlag.Name) {
		cfg.JSONLogs = ctx.Bool(jsonLogsFlag.Name)
	}
	if ctx.IsSet(ntpServerFlag.Name) {
		cfg.NTPServer = ctx.String(ntpServerFlag.Name)
	}
	return cfg, cfg.Validate()
}

func initLogger(cfg *config.Config, w io.Writer) *slog.LevelVar {
	level := &slog.LevelVar{}
	level.Set(log.FromLegacyLevel(cfg.Verbosity))

	var handler slog.Handler
	if cfg.JSONLogs {
		handler = log.JSONHandlerWithLevel(w, level)
	} else {
		handler = log.LogfmtHandlerWithLevel(w, level)
	}
	log.SetDefault(log.NewLogger(handler))
	return level
}

func openStore(cfg *config.Config) (kv.Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, errors.Wrapf(err, "create data dir [%v]", cfg.DataDir)
	}
	switch cfg.Backend {
	case config.BackendBolt:
		return boltdb.New(filepath.Join(cfg.DataDir, "pool.bolt"), boltdb.Options{})
	case config.BackendBadger:
		return badgerdb.New(filepath.Join(cfg.DataDir, "pool.badger"), badgerdb.Options{})
	default:
		return lvldb.New(filepath.Join(cfg.DataDir, "pool.db"), lvldb.Options{
			CacheSize:              cfg.CacheSize,
			OpenFilesCacheCapacity: 500,
		})
	}
}

// initPool creates the configured house on first start. A pool that already
// exists is left untouched.
func initPool(p *pool.Pool, house *config.House, now time.Time) error {
	if house.StakingAsset == "" {
		logger.Warn("no house configured, pool stays uninitialized until one is")
		return nil
	}
	params, err := house.InitParams()
	if err != nil {
		return errors.WithMessage(err, "house config")
	}
	env := pool.Env{Time: uint64(now.Unix())}
	if params.Manager != nil {
		env.Sender = *params.Manager
	}
	if _, err := p.Init(env, params); err != nil {
		if errors.Is(err, reverts.ErrAlreadyInitialized) {
			logger.Debug("pool already initialized")
			return nil
		}
		return errors.WithMessage(err, "init pool")
	}
	return nil
}

// checkClock warns when the local clock drifts from the NTP server.
func checkClock(server string) {
	if server == "" {
		return
	}
	resp, err := ntp.Query(server)
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}
	if offset > maxClockOffset {
		logger.Warn("clock offset detected", "offset", resp.ClockOffset)
	}
}

func startAPIServer(addr string, handler http.Handler) (*http.Server, net.Listener, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	return srv, listener, nil
}

func printStartupMessage(w io.Writer, cfg *config.Config, apiURL string) {
	// banners only make sense on a terminal, log collectors get the log line
	if f, ok := w.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		logger.Info("revpool started", "backend", cfg.Backend, "dataDir", cfg.DataDir, "api", apiURL)
		return
	}
	fmt.Fprintf(w, `Starting %v
    Backend     [ %v ]
    Data dir    [ %v ]
    API portal  [ %v ]
    Metrics     [ %v ]
`,
		fullVersion(),
		cfg.Backend,
		cfg.DataDir,
		apiURL,
		cfg.EnableMetrics)
}

func shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
