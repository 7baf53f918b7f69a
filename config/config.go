// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads the settings of a revpool node. Values come from
// defaults, then an optional YAML file, then REVPOOL_* environment variables.
// Command line flags are applied on top by the caller.
package config

import (
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/revpool/amount"
	"github.com/vechain/revpool/asset"
	"github.com/vechain/revpool/pool"
	"github.com/vechain/revpool/pool/amortize"
	"github.com/vechain/revpool/pool/taxes"
	"github.com/vechain/revpool/types"
)

const envPrefix = "revpool"

// storage backends
const (
	BackendLevelDB = "leveldb"
	BackendBolt    = "bolt"
	BackendBadger  = "badger"
)

type Config struct {
	DataDir       string `yaml:"dataDir"       split_words:"true"`
	Backend       string `yaml:"backend"`
	CacheSize     int    `yaml:"cacheSize"     split_words:"true"` // leveldb cache in MiB
	APIAddr       string `yaml:"apiAddr"       envconfig:"API_ADDR"`
	APICors       string `yaml:"apiCors"       envconfig:"API_CORS"`
	EnableMetrics bool   `yaml:"enableMetrics" split_words:"true"`
	Verbosity     int    `yaml:"verbosity"`
	JSONLogs      bool   `yaml:"jsonLogs"      envconfig:"JSON_LOGS"`
	NTPServer     string `yaml:"ntpServer"     envconfig:"NTP_SERVER"`

	Amortization Amortization `yaml:"amortization"`
	House        House        `yaml:"house"        ignored:"true"`
}

type Amortization struct {
	Cap     uint64 `yaml:"cap"`
	Divisor uint64 `yaml:"divisor"`
}

// House is the pool created on first start. Assets are written as
// "kind:id", e.g. "native:uluna".
type House struct {
	Name             string   `yaml:"name"`
	Description      string   `yaml:"description"`
	Logo             string   `yaml:"logo"`
	Manager          string   `yaml:"manager"`
	StakingAsset     string   `yaml:"stakingAsset"`
	RevenueAssets    []string `yaml:"revenueAssets"`
	UnbondingSeconds uint64   `yaml:"unbondingSeconds"`
	MinStake         string   `yaml:"minStake"`
	Taxes            []Tax    `yaml:"taxes"`
}

type Tax struct {
	Address   string `yaml:"address"`
	Pct       uint64 `yaml:"pct"` // parts per million
	Autosend  bool   `yaml:"autosend"`
	Immutable bool   `yaml:"immutable"`
	Name      string `yaml:"name"`
	Logo      string `yaml:"logo"`
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		DataDir:   "data",
		Backend:   BackendLevelDB,
		CacheSize: 64,
		APIAddr:   "localhost:8669",
		APICors:   "",
		Verbosity: 3,
		NTPServer: "pool.ntp.org",
		Amortization: Amortization{
			Cap:     amortize.DefaultCap,
			Divisor: amortize.DefaultDivisor,
		},
		House: House{
			UnbondingSeconds: 21 * 24 * 3600,
		},
	}
}

// Load reads path, when not empty, over the defaults and applies environment
// overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, errors.Wrap(err, "parse config file")
		}
	}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, errors.Wrap(err, "process environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLevelDB, BackendBolt, BackendBadger:
	default:
		return errors.Errorf("unknown backend %q", c.Backend)
	}
	if c.DataDir == "" {
		return errors.New("empty data dir")
	}
	if c.Amortization.Cap == 0 {
		return errors.New("amortization cap must be positive")
	}
	var total uint64
	for _, t := range c.House.Taxes {
		total += t.Pct
		if t.Pct > taxes.PctDenominator || total > taxes.PctDenominator {
			return errors.Errorf("aggregate tax exceeds %d ppm", taxes.PctDenominator)
		}
	}
	return nil
}

// AmortizationConfig returns the scheduler settings.
func (c *Config) AmortizationConfig() amortize.Config {
	return amortize.Config{Cap: c.Amortization.Cap, Divisor: c.Amortization.Divisor}
}

// CORSOrigins splits the comma separated origin list.
func (c *Config) CORSOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.APICors, ",") {
		if o = strings.ToLower(strings.TrimSpace(o)); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// InitParams converts the house section into pool initialization parameters.
func (h *House) InitParams() (pool.InitParams, error) {
	params := pool.InitParams{
		Name:             h.Name,
		Description:      h.Description,
		Logo:             h.Logo,
		UnbondingSeconds: h.UnbondingSeconds,
	}
	var err error
	if params.StakingAsset, err = asset.ParseKey(h.StakingAsset); err != nil {
		return pool.InitParams{}, errors.WithMessage(err, "staking asset")
	}
	for _, key := range h.RevenueAssets {
		a, err := asset.ParseKey(key)
		if err != nil {
			return pool.InitParams{}, errors.WithMessage(err, "revenue asset")
		}
		params.RevenueAssets = append(params.RevenueAssets, a)
	}
	if h.MinStake != "" {
		if params.MinStake, err = amount.Parse(h.MinStake); err != nil {
			return pool.InitParams{}, errors.WithMessage(err, "min stake")
		}
	}
	if h.Manager != "" {
		if params.Manager, err = types.ParseAddress(h.Manager); err != nil {
			return pool.InitParams{}, errors.WithMessage(err, "manager")
		}
	}
	for _, t := range h.Taxes {
		addr, err := types.ParseAddress(t.Address)
		if err != nil {
			return pool.InitParams{}, errors.WithMessagef(err, "tax recipient %s", t.Name)
		}
		params.Taxes = append(params.Taxes, pool.TaxRecipientParams{
			Address: *addr,
			Recipient: taxes.Recipient{
				Pct:       t.Pct,
				Autosend:  t.Autosend,
				Immutable: t.Immutable,
				Name:      t.Name,
				Logo:      t.Logo,
			},
		})
	}
	return params, nil
}
