// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/revpool/config"
	"github.com/vechain/revpool/log"
	"github.com/vechain/revpool/pool"
)

func runWithFlags(t *testing.T, args ...string) *config.Config {
	var cfg *config.Config
	app := cli.NewApp()
	app.Flags = []cli.Flag{
		configFlag, dataDirFlag, backendFlag, cacheFlag, apiAddrFlag, apiCorsFlag,
		enableMetricsFlag, verbosityFlag, jsonLogsFlag, ntpServerFlag,
	}
	app.Action = func(ctx *cli.Context) error {
		var err error
		cfg, err = loadConfig(ctx)
		return err
	}
	require.NoError(t, app.Run(append([]string{"revpool"}, args...)))
	return cfg
}

func TestLoadConfigFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "revpool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: bolt\napiAddr: 0.0.0.0:9000\nverbosity: 4\n"), 0600))

	// unset flags keep the file values
	cfg := runWithFlags(t, "--config", path)
	assert.Equal(t, config.BackendBolt, cfg.Backend)
	assert.Equal(t, "0.0.0.0:9000", cfg.APIAddr)
	assert.Equal(t, 4, cfg.Verbosity)

	cfg = runWithFlags(t, "--config", path, "--backend", "badger", "--api-addr", "localhost:1", "--verbosity", "1", "--json-logs")
	assert.Equal(t, config.BackendBadger, cfg.Backend)
	assert.Equal(t, "localhost:1", cfg.APIAddr)
	assert.Equal(t, 1, cfg.Verbosity)
	assert.True(t, cfg.JSONLogs)
}

func TestInitLogger(t *testing.T) {
	defer log.SetDefault(log.NewLogger(log.LogfmtHandler(os.Stderr)))

	var buf bytes.Buffer
	cfg := config.Default()
	cfg.JSONLogs = true
	cfg.Verbosity = log.LegacyLevelWarn
	initLogger(cfg, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec), buf.String())
	assert.Equal(t, "shown", rec["msg"])
}

func TestOpenStore(t *testing.T) {
	for _, backend := range []string{config.BackendLevelDB, config.BackendBolt, config.BackendBadger} {
		t.Run(backend, func(t *testing.T) {
			cfg := config.Default()
			cfg.DataDir = filepath.Join(t.TempDir(), "nested")
			cfg.Backend = backend

			store, err := openStore(cfg)
			require.NoError(t, err)
			assert.NoError(t, store.Close())
		})
	}
}

func TestInitPool(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	store, err := openStore(cfg)
	require.NoError(t, err)
	defer store.Close()

	p := pool.New(store, pool.Options{})
	defer p.Close()

	// nothing configured
	require.NoError(t, initPool(p, &config.House{}, time.Unix(1000, 0)))

	house := &config.House{
		Name:          "house",
		Manager:       "0x000000000000000000000000000000000000beef",
		StakingAsset:  "native:uluna",
		RevenueAssets: []string{"native:uluna"},
	}
	require.NoError(t, initPool(p, house, time.Unix(1000, 0)))
	// restarts keep the existing pool
	require.NoError(t, initPool(p, house, time.Unix(2000, 0)))

	view, err := p.House(pool.Env{Time: 2000})
	require.NoError(t, err)
	assert.Equal(t, "house", view.Name)
	assert.Equal(t, uint64(1000), view.CreatedAt)
	assert.Equal(t, house.Manager, view.Manager.String())

	house.StakingAsset = "uluna"
	assert.Error(t, initPool(p, house, time.Unix(3000, 0)))
}

func TestPrintStartupMessage(t *testing.T) {
	// not a terminal, nothing is printed
	var buf bytes.Buffer
	printStartupMessage(&buf, config.Default(), "http://localhost:8669/")
	assert.Empty(t, buf.String())
}
