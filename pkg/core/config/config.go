// Package config centralizes every tunable threshold of the extraction
// pipeline. Values load from an optional YAML file, then FILINGS_* env vars
// override individual fields, matching how they are tuned in deployment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Paths    Paths    `yaml:"paths"`
	Resolver Resolver `yaml:"resolver"`
	Extract  Extract  `yaml:"extract"`
	Anomaly  Anomaly  `yaml:"anomaly"`
	Pipeline Pipeline `yaml:"pipeline"`
	Database Database `yaml:"database"`
}

type Paths struct {
	CompanyMap   string `yaml:"company_map"`
	LatestPrices string `yaml:"latest_prices"`
	AnnounceMeta string `yaml:"announce_meta"`
	AlertsDir    string `yaml:"alerts_dir"`
	ReportDir    string `yaml:"report_dir"`
}

type Resolver struct {
	// Minimum fuzzy-match scores per caller. Issuer names are formal and
	// match tighter than free-form holder names.
	IssuerMinScore float64 `yaml:"issuer_min_score"`
	HolderMinScore float64 `yaml:"holder_min_score"`
	NonIDXMinScore float64 `yaml:"non_idx_min_score"`
	SuggestTopK    int     `yaml:"suggest_top_k"`
}

type Extract struct {
	PriceCeiling     float64 `yaml:"price_ceiling"`
	NarrativeFloor   float64 `yaml:"narrative_price_floor"`
	NarrativeCeiling float64 `yaml:"narrative_price_ceiling"`
	WindowSize       int     `yaml:"window_size"`
	DirectionEpsilon float64 `yaml:"direction_epsilon"`
}

type Anomaly struct {
	WithinDocRatioLow  float64 `yaml:"within_doc_ratio_low"`
	WithinDocRatioHigh float64 `yaml:"within_doc_ratio_high"`

	MarketRefDays   int     `yaml:"market_ref_n_days"`
	MarketRatioLow  float64 `yaml:"market_ratio_low"`
	MarketRatioHigh float64 `yaml:"market_ratio_high"`

	ZeroMissingX10Min  float64 `yaml:"zero_missing_x10_min"`
	ZeroMissingX10Max  float64 `yaml:"zero_missing_x10_max"`
	ZeroMissingX100Min float64 `yaml:"zero_missing_x100_min"`
	ZeroMissingX100Max float64 `yaml:"zero_missing_x100_max"`

	SuggestPriceRatio float64 `yaml:"suggest_price_ratio"`
	PercentTolPP      float64 `yaml:"percent_tol_pp"`
	PriceLookbackDays int     `yaml:"price_lookback_days"`
}

type Pipeline struct {
	Workers    int `yaml:"workers"`
	DocTimeout int `yaml:"doc_timeout_seconds"`
}

type Database struct {
	URL string `yaml:"url"`
}

// Default returns the production thresholds. Each value is overridable via
// YAML or its FILINGS_* env var.
func Default() Config {
	return Config{
		Paths: Paths{
			CompanyMap:   "data/company/company_map.json",
			LatestPrices: "data/company/company_map.json",
			AnnounceMeta: "data/downloaded_pdfs.json",
			AlertsDir:    "artifacts",
			ReportDir:    "artifacts",
		},
		Resolver: Resolver{
			IssuerMinScore: 85,
			HolderMinScore: 80,
			NonIDXMinScore: 88,
			SuggestTopK:    3,
		},
		Extract: Extract{
			PriceCeiling:     500_000,
			NarrativeFloor:   50,
			NarrativeCeiling: 100_000,
			WindowSize:       14,
			DirectionEpsilon: 1e-3,
		},
		Anomaly: Anomaly{
			WithinDocRatioLow:  0.5,
			WithinDocRatioHigh: 1.5,
			MarketRefDays:      20,
			MarketRatioLow:     0.6,
			MarketRatioHigh:    1.4,
			ZeroMissingX10Min:  8.0,
			ZeroMissingX10Max:  15.0,
			ZeroMissingX100Min: 80.0,
			ZeroMissingX100Max: 150.0,
			SuggestPriceRatio:  0.15,
			PercentTolPP:       0.25,
			PriceLookbackDays:  14,
		},
		Pipeline: Pipeline{
			Workers:    4,
			DocTimeout: 60,
		},
		Database: Database{
			URL: os.Getenv("DATABASE_URL"),
		},
	}
}

// Load reads the YAML file when path is non-empty, then applies env
// overrides. A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	envStr("FILINGS_COMPANY_MAP", &c.Paths.CompanyMap)
	envStr("FILINGS_LATEST_PRICES", &c.Paths.LatestPrices)
	envStr("FILINGS_ANNOUNCE_META", &c.Paths.AnnounceMeta)
	envStr("FILINGS_ALERTS_DIR", &c.Paths.AlertsDir)
	envStr("FILINGS_REPORT_DIR", &c.Paths.ReportDir)

	envFloat("FILINGS_ISSUER_MIN_SCORE", &c.Resolver.IssuerMinScore)
	envFloat("FILINGS_HOLDER_MIN_SCORE", &c.Resolver.HolderMinScore)
	envFloat("FILINGS_NONIDX_RESOLVE_MIN_SCORE", &c.Resolver.NonIDXMinScore)
	envInt("FILINGS_SUGGEST_TOP_K", &c.Resolver.SuggestTopK)

	envFloat("FILINGS_PRICE_CEILING", &c.Extract.PriceCeiling)
	envFloat("FILINGS_NARRATIVE_PRICE_FLOOR", &c.Extract.NarrativeFloor)
	envFloat("FILINGS_NARRATIVE_PRICE_CEILING", &c.Extract.NarrativeCeiling)
	envInt("FILINGS_WINDOW_SIZE", &c.Extract.WindowSize)
	envFloat("FILINGS_DIRECTION_EPSILON", &c.Extract.DirectionEpsilon)

	envFloat("FILINGS_WITHIN_DOC_RATIO_LOW", &c.Anomaly.WithinDocRatioLow)
	envFloat("FILINGS_WITHIN_DOC_RATIO_HIGH", &c.Anomaly.WithinDocRatioHigh)
	envInt("FILINGS_MARKET_REF_N_DAYS", &c.Anomaly.MarketRefDays)
	envFloat("FILINGS_MARKET_RATIO_LOW", &c.Anomaly.MarketRatioLow)
	envFloat("FILINGS_MARKET_RATIO_HIGH", &c.Anomaly.MarketRatioHigh)
	envFloat("FILINGS_ZERO_MISSING_X10_MIN", &c.Anomaly.ZeroMissingX10Min)
	envFloat("FILINGS_ZERO_MISSING_X10_MAX", &c.Anomaly.ZeroMissingX10Max)
	envFloat("FILINGS_ZERO_MISSING_X100_MIN", &c.Anomaly.ZeroMissingX100Min)
	envFloat("FILINGS_ZERO_MISSING_X100_MAX", &c.Anomaly.ZeroMissingX100Max)
	envFloat("FILINGS_SUGGEST_PRICE_RATIO", &c.Anomaly.SuggestPriceRatio)
	envFloat("FILINGS_PERCENT_TOL_PP", &c.Anomaly.PercentTolPP)
	envInt("FILINGS_PRICE_LOOKBACK_DAYS", &c.Anomaly.PriceLookbackDays)

	envInt("FILINGS_WORKERS", &c.Pipeline.Workers)
	envInt("FILINGS_DOC_TIMEOUT_SECONDS", &c.Pipeline.DocTimeout)

	envStr("DATABASE_URL", &c.Database.URL)
}

func envStr(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
